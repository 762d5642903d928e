package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/matzehuels/pedigree/pkg/artifact"
	"github.com/matzehuels/pedigree/pkg/cache"
	"github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/observability"
	"github.com/matzehuels/pedigree/pkg/pedigree"
	"github.com/matzehuels/pedigree/pkg/render"
	"github.com/matzehuels/pedigree/pkg/render/presentation"
)

// RasterCapturer renders a presentation tree as a PNG image.
type RasterCapturer interface {
	CaptureRaster(ctx context.Context, view *presentation.Node, opts render.RasterOptions) ([]byte, error)
}

// PaginatedCapturer renders a presentation tree as a PDF document.
type PaginatedCapturer interface {
	CapturePaginated(ctx context.Context, view *presentation.Node, opts render.PageOptions) ([]byte, error)
}

// Fingerprinter is implemented by capturers whose output depends on
// settings beyond the presentation tree. The fingerprint is folded into
// artifact cache keys.
type Fingerprinter interface {
	Fingerprint() string
}

// Capabilities lists the capture backends available to a pipeline. Nil
// fields are unavailable.
type Capabilities struct {
	Raster    RasterCapturer
	Paginated PaginatedCapturer
}

// Options configures a Pipeline. Only Capabilities is needed for captures;
// everything else has a working default.
type Options struct {
	Capabilities Capabilities
	Surface      Surface
	Raster       render.RasterOptions
	Page         render.PageOptions

	// Cache stores captured artifacts. Defaults to a NullCache.
	Cache    cache.Cache
	Keyer    cache.Keyer
	CacheTTL time.Duration

	// Sink, when set, receives every successful artifact.
	Sink artifact.Sink

	// Scope names the slot an export of tree occupies. Exports in the same
	// scope run one at a time and the rest proceed in parallel. Nil puts
	// every export in one scope, which a viewer sharing one Surface needs.
	Scope func(tree *pedigree.Node) string

	// Clock stamps file names. Defaults to time.Now.
	Clock  func() time.Time
	Logger *log.Logger
}

// PerRoot scopes exports by the root animal, so only exports of the same
// pedigree exclude each other.
func PerRoot(tree *pedigree.Node) string { return tree.ID }

// Pipeline runs exports, one at a time per scope.
type Pipeline struct {
	caps     Capabilities
	surface  Surface
	raster   render.RasterOptions
	page     render.PageOptions
	cache    cache.Cache
	keyer    cache.Keyer
	cacheTTL time.Duration
	sink     artifact.Sink
	clock    func() time.Time
	logger   *log.Logger
	newID    func() string
	scope    func(*pedigree.Node) string

	mu    sync.Mutex
	slots map[string]*scopeSlot
}

type scopeSlot struct {
	sem  *semaphore.Weighted
	refs int
}

// New returns a pipeline configured by opts.
func New(opts Options) *Pipeline {
	if opts.Surface == nil {
		opts.Surface = NopSurface{}
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Pipeline{
		caps:     opts.Capabilities,
		surface:  opts.Surface,
		raster:   opts.Raster,
		page:     opts.Page,
		cache:    opts.Cache,
		keyer:    opts.Keyer,
		cacheTTL: opts.CacheTTL,
		sink:     opts.Sink,
		clock:    opts.Clock,
		logger:   opts.Logger,
		newID:    uuid.NewString,
		scope:    opts.Scope,
		slots:    make(map[string]*scopeSlot),
	}
}

// Export dispatches on format (png, pdf or json).
func (p *Pipeline) Export(ctx context.Context, format string, tree *pedigree.Node) (*artifact.Artifact, error) {
	switch format {
	case render.FormatPNG:
		return p.ExportImage(ctx, tree)
	case render.FormatPDF:
		return p.ExportDocument(ctx, tree)
	case render.FormatJSON:
		return p.ExportData(ctx, tree)
	default:
		err := errors.New(errors.ErrCodeInvalidFormat, "unsupported export format %q", format)
		p.surface.Failure(err)
		return nil, err
	}
}

// ExportImage captures tree as a PNG.
func (p *Pipeline) ExportImage(ctx context.Context, tree *pedigree.Node) (*artifact.Artifact, error) {
	return p.run(ctx, render.FormatPNG, tree, func(ctx context.Context) ([]byte, bool, error) {
		if p.caps.Raster == nil {
			return nil, false, unavailable("raster capture")
		}
		view := presentation.Build(tree, tree.Identifier)
		key, err := p.artifactKey(view, p.caps.Raster, cache.ArtifactKeyOpts{
			Format: render.FormatPNG,
			Scale:  p.raster.Scale,
		})
		if err != nil {
			return nil, false, err
		}
		return p.cached(ctx, key, func() ([]byte, error) {
			return p.caps.Raster.CaptureRaster(ctx, view, p.raster)
		})
	})
}

// ExportDocument captures tree as a PDF.
func (p *Pipeline) ExportDocument(ctx context.Context, tree *pedigree.Node) (*artifact.Artifact, error) {
	return p.run(ctx, render.FormatPDF, tree, func(ctx context.Context) ([]byte, bool, error) {
		if p.caps.Paginated == nil {
			return nil, false, unavailable("paginated capture")
		}
		view := presentation.Build(tree, tree.Identifier)
		key, err := p.artifactKey(view, p.caps.Paginated, cache.ArtifactKeyOpts{
			Format:    render.FormatPDF,
			Scale:     p.page.Scale,
			PageSize:  p.page.Size.Name,
			Landscape: p.page.Landscape,
			Margin:    p.page.Margin,
		})
		if err != nil {
			return nil, false, err
		}
		return p.cached(ctx, key, func() ([]byte, error) {
			return p.caps.Paginated.CapturePaginated(ctx, view, p.page)
		})
	})
}

// ExportData serializes a deep copy of tree as indented JSON.
func (p *Pipeline) ExportData(ctx context.Context, tree *pedigree.Node) (*artifact.Artifact, error) {
	return p.run(ctx, render.FormatJSON, tree, func(context.Context) ([]byte, bool, error) {
		snapshot := tree.Clone()
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snapshot); err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeSerialization, err, "encode pedigree of %s", tree.Identifier)
		}
		return buf.Bytes(), false, nil
	})
}

type produceFunc func(ctx context.Context) (data []byte, cached bool, err error)

func (p *Pipeline) run(ctx context.Context, format string, tree *pedigree.Node, produce produceFunc) (a *artifact.Artifact, err error) {
	key := ""
	if tree != nil && p.scope != nil {
		key = p.scope(tree)
	}
	release, ok := p.tryAcquire(key)
	if !ok {
		err = errors.New(errors.ErrCodeBusy, "another export is already in progress")
		p.surface.Failure(err)
		return nil, err
	}
	defer release()

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnExportStart(ctx, format)

	loading := false
	defer func() {
		size := 0
		if err != nil {
			p.logger.Warn("export failed", "format", format, "error", err)
			p.surface.Failure(err)
		} else {
			size = len(a.Data)
			p.logger.Info("exported pedigree", "file", a.Name, "bytes", size, "cached", a.Cached)
			p.surface.Success(fmt.Sprintf("Exported %s to %s", strings.ToUpper(format), a.Name))
		}
		if loading {
			p.surface.HideLoading()
		}
		hooks.OnExportComplete(ctx, format, size, time.Since(start), err)
	}()

	if tree == nil {
		return nil, errors.New(errors.ErrCodeEmptyDataset, "no pedigree is loaded")
	}

	p.surface.CloseOverlay()
	p.surface.ShowLoading(fmt.Sprintf("Exporting %s…", strings.ToUpper(format)))
	loading = true

	name := FileName(tree, format, p.clock())
	data, cached, err := produce(ctx)
	if err != nil {
		return nil, err
	}

	a = &artifact.Artifact{
		ID:          p.newID(),
		Name:        name,
		Format:      format,
		ContentType: render.ContentType(format),
		Data:        data,
		CreatedAt:   p.clock(),
		Cached:      cached,
	}
	if p.sink != nil {
		loc, err := p.sink.Put(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("store artifact: %w", err)
		}
		a.Location = loc
	}
	return a, nil
}

// tryAcquire takes the slot for key without waiting. The returned func
// gives it back.
func (p *Pipeline) tryAcquire(key string) (func(), bool) {
	p.mu.Lock()
	s := p.slots[key]
	if s == nil {
		s = &scopeSlot{sem: semaphore.NewWeighted(1)}
		p.slots[key] = s
	}
	s.refs++
	p.mu.Unlock()

	drop := func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if s.refs--; s.refs == 0 {
			delete(p.slots, key)
		}
	}
	if !s.sem.TryAcquire(1) {
		drop()
		return nil, false
	}
	return func() {
		s.sem.Release(1)
		drop()
	}, true
}

// marshalView encodes the presentation tree hashed into artifact keys.
var marshalView = json.Marshal

func (p *Pipeline) artifactKey(view *presentation.Node, capturer any, opts cache.ArtifactKeyOpts) (string, error) {
	content, err := marshalView(view)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeSerialization, err, "encode %s artifact key", opts.Format)
	}
	if f, ok := capturer.(Fingerprinter); ok {
		content = append(content, f.Fingerprint()...)
	}
	return p.keyer.ArtifactKey(cache.Hash(content), opts), nil
}

// cached returns the artifact under key, capturing and storing it on a
// miss. Cache failures are logged and otherwise ignored.
func (p *Pipeline) cached(ctx context.Context, key string, capture func() ([]byte, error)) ([]byte, bool, error) {
	hooks := observability.Cache()
	data, hit, err := p.cache.Get(ctx, key)
	if err != nil {
		p.logger.Warn("artifact cache read failed", "error", err)
	}
	if hit {
		hooks.OnCacheHit(ctx, "artifact")
		return data, true, nil
	}
	hooks.OnCacheMiss(ctx, "artifact")

	data, err = capture()
	if err != nil {
		return nil, false, err
	}
	if err := p.cache.Set(ctx, key, data, p.cacheTTL); err != nil {
		p.logger.Warn("artifact cache write failed", "error", err)
	} else {
		hooks.OnCacheSet(ctx, "artifact", len(data))
	}
	return data, false, nil
}

func unavailable(capability string) error {
	return errors.New(errors.ErrCodeCapabilityUnavailable, "%s is not available", capability)
}
