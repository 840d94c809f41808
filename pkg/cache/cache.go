// Package cache stores reconstruction results and rendered diagrams.
//
// Reconstructions are deterministic in their input and options, so a result
// computed once can be served again without re-running the enumeration. The
// [Cache] interface has three backends:
//
//   - [FileCache]: one JSON file per entry under a local directory (CLI)
//   - [RedisCache]: a shared Redis instance (HTTP API)
//   - [NullCache]: caching disabled
//
// Keys come from a [Keyer], which hashes the mutation set together with every
// option that changes the outcome.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored value and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Default time-to-live per entry kind.
const (
	TTLResult   = 7 * 24 * time.Hour
	TTLArtifact = 30 * 24 * time.Hour
)
