// Package cache stores rendered export artifacts so repeated exports of an
// unchanged pedigree skip the Graphviz and rsvg work.
//
// # Backends
//
//   - [NullCache]: caching disabled
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: shared cache for the API server
//
// # Keys
//
// Keys are derived from the content being rendered, never from record IDs,
// so an edited ancestor produces a new key automatically:
//
//	key := keyer.ArtifactKey(cache.Hash([]byte(dot)), cache.ArtifactKeyOpts{Format: "png", Scale: 2})
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A zero ttl means the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
