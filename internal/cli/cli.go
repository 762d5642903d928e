// Package cli implements the pedigree command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pedigree/internal/config"
	"github.com/matzehuels/pedigree/pkg/animal"
	"github.com/matzehuels/pedigree/pkg/artifact"
	s3sink "github.com/matzehuels/pedigree/pkg/artifact/s3"
	"github.com/matzehuels/pedigree/pkg/buildinfo"
	"github.com/matzehuels/pedigree/pkg/cache"
	"github.com/matzehuels/pedigree/pkg/export"
	"github.com/matzehuels/pedigree/pkg/pedigree"
	"github.com/matzehuels/pedigree/pkg/render"
	"github.com/matzehuels/pedigree/pkg/render/nodelink"
	"github.com/matzehuels/pedigree/pkg/store/memory"
	"github.com/matzehuels/pedigree/pkg/store/mongo"
	"github.com/matzehuels/pedigree/pkg/store/sqlstore"
)

// =============================================================================
// Constants
// =============================================================================

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "pedigree",
		Short:        "Pedigree records animals and draws their ancestry",
		Long:         `Pedigree keeps a registry of animals with their parents and renders multi-generation ancestry trees as images, documents or JSON.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/pedigree/config.toml)")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.animalCommand())
	root.AddCommand(c.typeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Factories
// =============================================================================

func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	return cfg, nil
}

// openRegistry opens the configured store.
func (c *CLI) openRegistry(ctx context.Context, cfg *config.Config) (*animal.Registry, error) {
	c.Logger.Debug("opening store", "driver", cfg.Store.Driver)
	switch cfg.Store.Driver {
	case config.StoreMemory:
		return animal.NewRegistry(memory.New()), nil
	case config.StoreSQLite, config.StorePostgres:
		s, err := sqlstore.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		return animal.NewRegistry(s), nil
	case config.StoreMongo:
		s, err := mongo.Open(ctx, cfg.Store.DSN, cfg.Store.Database)
		if err != nil {
			return nil, err
		}
		return animal.NewRegistry(s), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func (c *CLI) newResolver(reg *animal.Registry) *pedigree.Resolver {
	return pedigree.NewResolver(reg, pedigree.Options{Logger: c.Logger})
}

// newCache opens the configured artifact cache.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Driver {
	case config.CacheFile:
		fc, err := cache.NewFileCache(cfg.Cache.Dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		return cache.NewNullCache(), nil
	}
}

// newSink opens the configured artifact sink. It returns nil when none is
// configured.
func (c *CLI) newSink(ctx context.Context, cfg *config.Config) (artifact.Sink, error) {
	switch cfg.Artifacts.Driver {
	case config.ArtifactDir:
		sink, err := artifact.NewDirSink(cfg.Artifacts.Dir)
		if err != nil {
			return nil, err
		}
		return sink, nil
	case config.ArtifactS3:
		sink, err := s3sink.New(ctx, s3sink.Config{
			Bucket:    cfg.Artifacts.Bucket,
			Region:    cfg.Artifacts.Region,
			Endpoint:  cfg.Artifacts.Endpoint,
			PathStyle: cfg.Artifacts.PathStyle,
			Prefix:    cfg.Artifacts.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return sink, nil
	default:
		return nil, nil
	}
}

// newRenderer builds the node-link renderer. Paginated capture is enabled
// only when rsvg-convert is installed.
func (c *CLI) newRenderer(cfg *config.Config) (*nodelink.Renderer, error) {
	orientation, err := render.ParseOrientation(cfg.Render.Orientation)
	if err != nil {
		return nil, err
	}
	conv, err := render.LookupConverter()
	if err != nil {
		c.Logger.Debug("pdf export disabled", "reason", err)
		conv = nil
	}
	return nodelink.NewRenderer(nodelink.Options{
		Orientation: orientation,
		RankSep:     cfg.Render.RankSep,
		NodeSep:     cfg.Render.NodeSep,
	}, conv), nil
}

// pipelineDeps are the resources a pipeline holds open.
type pipelineDeps struct {
	Pipeline *export.Pipeline
	Renderer *nodelink.Renderer
	cache    cache.Cache
}

func (d *pipelineDeps) Close() error { return d.cache.Close() }

// newPipeline wires renderer, cache and sink into an export pipeline. A nil
// scope runs every export one at a time.
func (c *CLI) newPipeline(ctx context.Context, cfg *config.Config, surface export.Surface, sink artifact.Sink, noCache bool, scope func(*pedigree.Node) string) (*pipelineDeps, error) {
	renderer, err := c.newRenderer(cfg)
	if err != nil {
		return nil, err
	}
	ch, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	caps := export.Capabilities{Raster: renderer}
	if renderer.CanPaginate() {
		caps.Paginated = renderer
	}
	p := export.New(export.Options{
		Capabilities: caps,
		Surface:      surface,
		Raster:       cfg.RasterOptions(),
		Page:         cfg.PageOptions(),
		Cache:        ch,
		Keyer:        cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Cache.Prefix),
		CacheTTL:     cfg.Cache.TTL,
		Sink:         sink,
		Scope:        scope,
		Logger:       c.Logger,
	})
	return &pipelineDeps{Pipeline: p, Renderer: renderer, cache: ch}, nil
}
