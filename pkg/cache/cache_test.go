package cache

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCacheNeverStores(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "artifact:x", []byte("png"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "artifact:x")
	if err != nil || hit || data != nil {
		t.Errorf("Get = (%q, %v, %v), want a clean miss", data, hit, err)
	}
	if err := c.Delete(ctx, "artifact:x"); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestHash(t *testing.T) {
	a, b := Hash([]byte("digraph{}")), Hash([]byte("digraph{ a }"))
	if a != Hash([]byte("digraph{}")) {
		t.Error("Hash is not deterministic")
	}
	if a == b {
		t.Error("different content hashed equal")
	}
	if len(a) != 64 {
		t.Errorf("len(Hash) = %d, want 64", len(a))
	}
}

func TestArtifactKeys(t *testing.T) {
	base := ArtifactKeyOpts{Format: "png", Scale: 2}
	k := NewDefaultKeyer()

	tests := []struct {
		name    string
		content string
		opts    ArtifactKeyOpts
		same    bool
	}{
		{"identical", "h1", base, true},
		{"other content", "h2", base, false},
		{"other scale", "h1", ArtifactKeyOpts{Format: "png", Scale: 1}, false},
		{"other format", "h1", ArtifactKeyOpts{Format: "pdf", Scale: 2}, false},
		{"landscape", "h1", ArtifactKeyOpts{Format: "png", Scale: 2, Landscape: true}, false},
	}

	want := k.ArtifactKey("h1", base)
	if !strings.HasPrefix(want, "artifact:") {
		t.Fatalf("ArtifactKey = %q, want artifact: prefix", want)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := k.ArtifactKey(tt.content, tt.opts)
			if (got == want) != tt.same {
				t.Errorf("ArtifactKey(%q, %+v) equal = %v, want %v", tt.content, tt.opts, got == want, tt.same)
			}
		})
	}
}

func TestScopedKeyer(t *testing.T) {
	opts := ArtifactKeyOpts{Format: "pdf", PageSize: "a4"}
	want := "pedigree:staging:" + NewDefaultKeyer().ArtifactKey("h", opts)

	for name, k := range map[string]Keyer{
		"explicit inner": NewScopedKeyer(NewDefaultKeyer(), "pedigree:staging:"),
		"nil inner":      NewScopedKeyer(nil, "pedigree:staging:"),
	} {
		if got := k.ArtifactKey("h", opts); got != want {
			t.Errorf("%s: ArtifactKey = %q, want %q", name, got, want)
		}
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Fatalf("empty cache Get = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("png bytes"), 0); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "png bytes" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry still present after Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2025, time.May, 6, 14, 30, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("fresh entry missing")
	}
	now = now.Add(2 * time.Hour)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry file was not removed")
	}
}

func TestFileCacheBinaryData(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	want := []byte("\x89PNG\r\n\x1a\n\x00\n42\n")

	if err := c.Set(ctx, "png", want, 0); err != nil {
		t.Fatal(err)
	}
	got, hit, err := c.Get(ctx, "png")
	if err != nil || !hit || !bytes.Equal(got, want) {
		t.Fatalf("Get = %q, %v, %v; want %q", got, hit, err, want)
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}

	for _, raw := range []string{"no header line", "soon\ndata"} {
		if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
			t.Errorf("corrupt entry %q: hit %v, err %v", raw, hit, err)
		}
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, _ := NewFileCache(dir)
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("cache dir still has %d entries", len(entries))
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("PEDIGREE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PEDIGREE_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisOptions{Addr: addr})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	key := "pedigree-test:" + t.Name()
	if err := c.Set(ctx, key, []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("entry still present after Delete")
	}
}
