// Package observability lets library packages report resolve, render,
// export, cache and HTTP events without depending on a metrics backend.
//
// The server installs Prometheus-backed hooks at startup; the CLI and tests
// see the no-op defaults:
//
//	observability.SetPipelineHooks(metrics)
//	observability.SetCacheHooks(metrics)
//
// Emitters fetch the current hooks at the start of each operation:
//
//	hooks := observability.Pipeline()
//	hooks.OnResolveStart(ctx, rootID, generations)
//	defer func() { hooks.OnResolveComplete(ctx, rootID, tree.Count(), time.Since(start), err) }()
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineHooks receives events from the resolve, render and export stages.
type PipelineHooks interface {
	OnResolveStart(ctx context.Context, rootID string, generations int)
	OnResolveComplete(ctx context.Context, rootID string, animals int, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, format string, nodes int)
	OnRenderComplete(ctx context.Context, format string, duration time.Duration, err error)

	OnExportStart(ctx context.Context, format string)
	OnExportComplete(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// CacheHooks receives artifact cache lookups and writes. kind names the
// cached value, e.g. "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, kind string)
	OnCacheMiss(ctx context.Context, kind string)
	OnCacheSet(ctx context.Context, kind string, size int)
}

// HTTPHooks receives completed API requests. route is the matched pattern,
// never the raw path, so label cardinality stays bounded.
type HTTPHooks interface {
	OnResponse(ctx context.Context, method, route string, status int, duration time.Duration)
}

type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnResolveStart(context.Context, string, int)                          {}
func (NoopPipelineHooks) OnResolveComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string, int)                           {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, time.Duration, error)       {}
func (NoopPipelineHooks) OnExportStart(context.Context, string)                                {}
func (NoopPipelineHooks) OnExportComplete(context.Context, string, int, time.Duration, error)  {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// slot holds the installed implementation of one hook interface.
type slot[T any] struct {
	p   atomic.Pointer[T]
	def T
}

func (s *slot[T]) get() T {
	if h := s.p.Load(); h != nil {
		return *h
	}
	return s.def
}

func (s *slot[T]) set(h T) { s.p.Store(&h) }
func (s *slot[T]) reset()  { s.p.Store(nil) }

var (
	pipelineSlot = slot[PipelineHooks]{def: NoopPipelineHooks{}}
	cacheSlot    = slot[CacheHooks]{def: NoopCacheHooks{}}
	httpSlot     = slot[HTTPHooks]{def: NoopHTTPHooks{}}
)

// SetPipelineHooks installs h for every later resolve, render and export.
// A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		pipelineSlot.set(h)
	}
}

// SetCacheHooks installs h for artifact cache events. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheSlot.set(h)
	}
}

// SetHTTPHooks installs h for API request events. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpSlot.set(h)
	}
}

func Pipeline() PipelineHooks { return pipelineSlot.get() }
func Cache() CacheHooks       { return cacheSlot.get() }
func HTTP() HTTPHooks         { return httpSlot.get() }

// Reset restores the no-op hooks.
func Reset() {
	pipelineSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
