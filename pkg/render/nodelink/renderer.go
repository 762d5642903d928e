package nodelink

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/observability"
	"github.com/matzehuels/pedigree/pkg/render"
	"github.com/matzehuels/pedigree/pkg/render/presentation"
)

// Renderer captures presentation trees as images and documents.
type Renderer struct {
	layout Options
	conv   *render.Converter
}

// NewRenderer returns a renderer using layout for every capture. conv may be
// nil, in which case paginated capture reports CAPABILITY_UNAVAILABLE.
func NewRenderer(layout Options, conv *render.Converter) *Renderer {
	return &Renderer{layout: layout, conv: conv}
}

// CanPaginate reports whether CapturePaginated can succeed.
func (r *Renderer) CanPaginate() bool { return r.conv != nil }

// Fingerprint identifies the layout settings so cached captures from a
// differently configured renderer are not reused.
func (r *Renderer) Fingerprint() string {
	return fmt.Sprintf("nodelink:%s:%g:%g", r.layout.Orientation, r.layout.RankSep, r.layout.NodeSep)
}

// SVG renders view as SVG.
func (r *Renderer) SVG(ctx context.Context, view *presentation.Node) (out []byte, err error) {
	defer observe(ctx, render.FormatSVG, view)(&err)
	return RenderSVG(ctx, ToDOT(view, r.layout))
}

// CaptureRaster renders view as PNG.
func (r *Renderer) CaptureRaster(ctx context.Context, view *presentation.Node, opts render.RasterOptions) (out []byte, err error) {
	defer observe(ctx, render.FormatPNG, view)(&err)
	layout := r.layout
	layout.DPI = opts.DPI()
	return RenderPNG(ctx, ToDOT(view, layout))
}

// CapturePaginated renders view as a single-page PDF.
func (r *Renderer) CapturePaginated(ctx context.Context, view *presentation.Node, opts render.PageOptions) (out []byte, err error) {
	if r.conv == nil {
		return nil, errors.New(errors.ErrCodeCapabilityUnavailable, "paginated capture is not available (rsvg-convert not found)")
	}
	defer observe(ctx, render.FormatPDF, view)(&err)
	svg, err := RenderSVG(ctx, ToDOT(view, r.layout))
	if err != nil {
		return nil, err
	}
	return r.conv.ToPDF(ctx, svg, opts)
}

func observe(ctx context.Context, format string, view *presentation.Node) func(*error) {
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, format, view.Count())
	return func(err *error) {
		hooks.OnRenderComplete(ctx, format, time.Since(start), *err)
	}
}
