package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer generates cache keys.
type Keyer interface {
	// ArtifactKey returns the key for an artifact rendered from content with
	// the given hash.
	ArtifactKey(contentHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts lists every rendering option that changes the output
// bytes.
type ArtifactKeyOpts struct {
	Format    string  `json:"format"`
	Scale     float64 `json:"scale,omitempty"`
	PageSize  string  `json:"page_size,omitempty"`
	Landscape bool    `json:"landscape,omitempty"`
	Margin    float64 `json:"margin,omitempty"`
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DefaultKeyer produces keys of the form "artifact:<sha256>", hashing the
// content hash together with the options.
type DefaultKeyer struct{}

func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) ArtifactKey(contentHash string, opts ArtifactKeyOpts) string {
	h := sha256.New()
	h.Write([]byte(contentHash))
	h.Write([]byte{0})
	// Encoding a struct of scalars cannot fail.
	_ = json.NewEncoder(h).Encode(opts)
	return "artifact:" + hex.EncodeToString(h.Sum(nil))
}

// ScopedKeyer prefixes every key of an inner Keyer so several deployments
// can share one Redis instance.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "pedigree:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or a DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) ArtifactKey(contentHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(contentHash, opts)
}
