// Package cache stores encoded recomposition artifacts.
//
// Artifacts are keyed by the SHA-256 of the input image bytes plus every
// parameter that affects the output, so a hit is byte-identical to a fresh
// run. Three backends implement [Cache]:
//
//   - [NullCache]: never stores anything (--no-cache)
//   - [FileCache]: JSON entries under the user cache directory (CLI default)
//   - [RedisCache]: shared cache for several machines (cache.redis_url)
//
// The cache is an optimization only. Callers treat Get and Set failures as
// misses and carry on.
package cache

import (
	"context"
	"time"
)

// TTLs per artifact kind. Zero means no expiration.
const (
	// TTLArtifact is the lifetime of an encoded composite or stage image.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiration.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
