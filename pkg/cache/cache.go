// Package cache stores expensive pipeline artifacts between runs.
//
// starscape caches the normalized density field: generating it dominates the
// run time, and it is a pure function of the seed and the grid geometry.
// Entries are opaque byte slices addressed by keys from a [Keyer].
//
// Three backends are provided: [FileCache] for local CLI use, [RedisCache] for
// sharing fields between machines, and [NullCache] to disable caching.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiration.
type Cache interface {
	// Get returns the stored value and true, or false on a miss.
	// Expired and unreadable entries count as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero keeps the entry until deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources held by the cache.
	Close() error
}

// Keyer derives cache keys from the inputs that determine an artifact.
type Keyer interface {
	// FieldKey returns the key of the normalized density field.
	FieldKey(opts FieldKeyOpts) string
}

// FieldKeyOpts lists every input the density field depends on.
type FieldKeyOpts struct {
	Seed    int64      `json:"seed"`
	Grid    [3]int     `json:"grid"`
	Chunk   [3]int     `json:"chunk"`
	Feature [3]float64 `json:"feature"`
}

// fieldFormat is bumped whenever the noise implementation or the stored
// encoding changes, so stale fields are never read back.
const fieldFormat = "opensimplex-f64le-v1"

// DefaultKeyer hashes the key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// FieldKey returns "field:<sha256>" over the format tag and opts.
//
// Chunking does not change the sampled values, but it is part of the key so a
// cached field always matches a freshly generated one for the same options.
func (DefaultKeyer) FieldKey(opts FieldKeyOpts) string {
	return hashKey("field", fieldFormat, opts)
}
