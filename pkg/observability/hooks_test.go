package observability

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recordingHooks struct {
	NoopPipelineHooks
	NoopCacheHooks

	mu     sync.Mutex
	events []string
}

func (r *recordingHooks) record(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingHooks) OnResolveStart(_ context.Context, rootID string, _ int) {
	r.record("resolve " + rootID)
}

func (r *recordingHooks) OnCacheHit(_ context.Context, kind string) {
	r.record("hit " + kind)
}

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T", Pipeline())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T", Cache())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T", HTTP())
	}

	Pipeline().OnResolveComplete(ctx, "a1", 15, time.Second, nil)
	Pipeline().OnExportComplete(ctx, "json", 2048, time.Second, nil)
	Cache().OnCacheSet(ctx, "artifact", 1024)
	HTTP().OnResponse(ctx, "GET", "/api/v1/animals/{id}/pedigree", 200, time.Second)
}

func TestInstalledHooksReceiveEvents(t *testing.T) {
	t.Cleanup(Reset)
	ctx := context.Background()

	rec := &recordingHooks{}
	SetPipelineHooks(rec)
	SetCacheHooks(rec)

	Pipeline().OnResolveStart(ctx, "calf", 3)
	Cache().OnCacheHit(ctx, "artifact")
	Cache().OnCacheMiss(ctx, "artifact")

	want := []string{"resolve calf", "hit artifact"}
	if len(rec.events) != len(want) {
		t.Fatalf("events = %v, want %v", rec.events, want)
	}
	for i := range want {
		if rec.events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, rec.events[i], want[i])
		}
	}
}

func TestSetNilKeepsCurrent(t *testing.T) {
	t.Cleanup(Reset)

	rec := &recordingHooks{}
	SetPipelineHooks(rec)
	SetPipelineHooks(nil)
	SetCacheHooks(nil)
	SetHTTPHooks(nil)

	if Pipeline() != PipelineHooks(rec) {
		t.Errorf("Pipeline() = %T after SetPipelineHooks(nil)", Pipeline())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T", Cache())
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T after Reset", Pipeline())
	}
}
