package cache

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// FileCache keeps one file per entry below a directory. The CLI uses it so
// repeated exports of an unchanged pedigree skip rendering.
//
// Each file holds a single header line with the expiry as Unix nanoseconds
// (0 for none) followed by the raw artifact bytes. Files are written to a
// temporary name and renamed into place, so a reader never sees a partial
// entry.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache opens a cache rooted at dir, creating it if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

// Dir returns the cache root.
func (c *FileCache) Dir() string { return c.dir }

func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	expires, data, ok := decodeEntry(raw)
	if !ok || (expires > 0 && c.now().UnixNano() > expires) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return data, true, nil
}

func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	var expires int64
	if ttl > 0 {
		expires = c.now().Add(ttl).UnixNano()
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return err
	}
	w := bufio.NewWriter(tmp)
	fmt.Fprintf(w, "%d\n", expires)
	w.Write(data)
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (c *FileCache) Delete(_ context.Context, key string) error {
	err := os.Remove(c.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (c *FileCache) Close() error { return nil }

// Clear removes every entry and returns how many were removed. The cache
// root itself is kept.
func (c *FileCache) Clear() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, e := range entries {
		full := filepath.Join(c.dir, e.Name())
		if !e.IsDir() {
			if err := os.Remove(full); err != nil {
				return count, err
			}
			count++
			continue
		}
		files, err := os.ReadDir(full)
		if err != nil {
			return count, err
		}
		for _, f := range files {
			if !f.IsDir() {
				count++
			}
		}
		if err := os.RemoveAll(full); err != nil {
			return count, err
		}
	}
	return count, nil
}

// path shards entries by the first byte of the key hash.
func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:])
}

func decodeEntry(raw []byte) (expires int64, data []byte, ok bool) {
	header, body, found := bytes.Cut(raw, []byte("\n"))
	if !found {
		return 0, nil, false
	}
	expires, err := strconv.ParseInt(string(header), 10, 64)
	if err != nil {
		return 0, nil, false
	}
	return expires, body, true
}

var _ Cache = (*FileCache)(nil)
