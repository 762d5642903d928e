// Package config loads pedigree settings from a TOML file and the
// environment.
//
// Lookup order for the file is the --config flag, $PEDIGREE_CONFIG, then
// $XDG_CONFIG_HOME/pedigree/config.toml (~/.config/pedigree/config.toml).
// A missing default file is not an error; a missing explicit file is.
// Environment variables override file values:
//
//	PEDIGREE_STORE_DRIVER      memory | sqlite | postgres | mongo
//	PEDIGREE_STORE_DSN         file path, postgres DSN or mongo URI
//	PEDIGREE_STORE_DATABASE    mongo database name
//	PEDIGREE_ADDR              HTTP listen address
//	PEDIGREE_CACHE_DRIVER      none | file | redis
//	PEDIGREE_CACHE_DIR         file cache directory
//	PEDIGREE_REDIS_ADDR        redis host:port
//	PEDIGREE_REDIS_PASSWORD
//	PEDIGREE_ARTIFACT_DRIVER   none | dir | s3
//	PEDIGREE_ARTIFACT_DIR
//	PEDIGREE_S3_BUCKET
//	PEDIGREE_S3_REGION
//	PEDIGREE_S3_ENDPOINT
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/pedigree"
	"github.com/matzehuels/pedigree/pkg/render"
)

const appName = "pedigree"

// Store drivers.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

// Cache drivers.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Artifact drivers.
const (
	ArtifactNone = "none"
	ArtifactDir  = "dir"
	ArtifactS3   = "s3"
)

// Config is the full application configuration.
type Config struct {
	Store     Store     `toml:"store"`
	Server    Server    `toml:"server"`
	Cache     Cache     `toml:"cache"`
	Artifacts Artifacts `toml:"artifacts"`
	Render    Render    `toml:"render"`
	Export    Export    `toml:"export"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-"`
}

type Store struct {
	Driver   string `toml:"driver"`
	DSN      string `toml:"dsn"`
	Database string `toml:"database"`
}

type Server struct {
	Addr            string        `toml:"addr"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

type Cache struct {
	Driver        string        `toml:"driver"`
	Dir           string        `toml:"dir"`
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	Prefix        string        `toml:"prefix"`
	TTL           time.Duration `toml:"ttl"`
}

type Artifacts struct {
	Driver    string `toml:"driver"`
	Dir       string `toml:"dir"`
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	PathStyle bool   `toml:"path_style"`
	Prefix    string `toml:"prefix"`
}

// Render holds layout settings for the node-link view.
type Render struct {
	Orientation string  `toml:"orientation"`
	RankSep     float64 `toml:"rank_sep"`
	NodeSep     float64 `toml:"node_sep"`
}

// Export holds capture settings.
type Export struct {
	Generations int     `toml:"generations"`
	Scale       float64 `toml:"scale"`
	PageSize    string  `toml:"page_size"`
	Landscape   bool    `toml:"landscape"`
	Margin      float64 `toml:"margin"`
	PageScale   float64 `toml:"page_scale"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Store: Store{Driver: StoreSQLite, DSN: filepath.Join(dataDir(), "pedigree.db"), Database: appName},
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Cache:     Cache{Driver: CacheFile, Dir: cacheDir(), Prefix: appName + ":", TTL: 24 * time.Hour},
		Artifacts: Artifacts{Driver: ArtifactNone},
		Render:    Render{Orientation: string(render.Horizontal)},
		Export:    Export{Generations: pedigree.DefaultGenerations, Scale: 2, PageSize: render.PageA4.Name, Margin: 10},
	}
}

// Load reads the configuration. path may be empty.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		if p := os.Getenv("PEDIGREE_CONFIG"); p != "" {
			path, explicit = p, true
		} else {
			path = filepath.Join(configDir(), "config.toml")
		}
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !explicit && os.IsNotExist(err) {
			path = ""
		} else {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	cfg.Path = path

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := []struct {
		key string
		dst *string
	}{
		{"PEDIGREE_STORE_DRIVER", &c.Store.Driver},
		{"PEDIGREE_STORE_DSN", &c.Store.DSN},
		{"PEDIGREE_STORE_DATABASE", &c.Store.Database},
		{"PEDIGREE_ADDR", &c.Server.Addr},
		{"PEDIGREE_CACHE_DRIVER", &c.Cache.Driver},
		{"PEDIGREE_CACHE_DIR", &c.Cache.Dir},
		{"PEDIGREE_REDIS_ADDR", &c.Cache.RedisAddr},
		{"PEDIGREE_REDIS_PASSWORD", &c.Cache.RedisPassword},
		{"PEDIGREE_ARTIFACT_DRIVER", &c.Artifacts.Driver},
		{"PEDIGREE_ARTIFACT_DIR", &c.Artifacts.Dir},
		{"PEDIGREE_S3_BUCKET", &c.Artifacts.Bucket},
		{"PEDIGREE_S3_REGION", &c.Artifacts.Region},
		{"PEDIGREE_S3_ENDPOINT", &c.Artifacts.Endpoint},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok {
			*s.dst = v
		}
	}
	if v, ok := lookup("PEDIGREE_REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidInput, "PEDIGREE_REDIS_DB: %q is not a number", v)
		}
		c.Cache.RedisDB = n
	}
	return nil
}

// Validate rejects unknown drivers and settings a driver cannot run
// without.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreMemory:
	case StoreSQLite, StorePostgres, StoreMongo:
		if c.Store.DSN == "" {
			return invalid("store.dsn is required for the %s driver", c.Store.Driver)
		}
	default:
		return invalid("unknown store driver %q (use memory, sqlite, postgres or mongo)", c.Store.Driver)
	}

	switch c.Cache.Driver {
	case CacheNone, "":
	case CacheFile:
		if c.Cache.Dir == "" {
			return invalid("cache.dir is required for the file cache")
		}
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return invalid("cache.redis_addr is required for the redis cache")
		}
	default:
		return invalid("unknown cache driver %q (use none, file or redis)", c.Cache.Driver)
	}

	switch c.Artifacts.Driver {
	case ArtifactNone, "":
	case ArtifactDir:
		if c.Artifacts.Dir == "" {
			return invalid("artifacts.dir is required for the dir sink")
		}
	case ArtifactS3:
		if c.Artifacts.Bucket == "" {
			return invalid("artifacts.bucket is required for the s3 sink")
		}
	default:
		return invalid("unknown artifact driver %q (use none, dir or s3)", c.Artifacts.Driver)
	}

	if _, err := render.ParseOrientation(c.Render.Orientation); err != nil {
		return err
	}
	if _, err := render.ParsePageSize(c.Export.PageSize); err != nil {
		return err
	}
	if g := c.Export.Generations; g < pedigree.MinGenerations || g > pedigree.MaxGenerations {
		return invalid("export.generations must be between %d and %d, got %d", pedigree.MinGenerations, pedigree.MaxGenerations, g)
	}
	return nil
}

// PageOptions returns the paginated capture settings.
func (c *Config) PageOptions() render.PageOptions {
	size, _ := render.ParsePageSize(c.Export.PageSize)
	return render.PageOptions{Size: size, Landscape: c.Export.Landscape, Margin: c.Export.Margin, Scale: c.Export.PageScale}
}

// RasterOptions returns the raster capture settings.
func (c *Config) RasterOptions() render.RasterOptions {
	return render.RasterOptions{Scale: c.Export.Scale}
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidInput, "config: "+format, args...)
}

func configDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", appName)
}

func cacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, ".cache", appName)
}

func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", appName)
}
