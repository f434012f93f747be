// Package cache stores generated layouts and rendered artifacts by content
// key, so repeated runs of the same blueprint, seed and tunables skip the
// search.
//
// Three backends implement [Cache]:
//   - [FileCache]: entries as files under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for API servers
//   - [NullCache]: stores nothing, for --no-cache
//
// Keys come from a [Keyer]. [DefaultKeyer] hashes every input that affects
// the result, and [ScopedKeyer] prefixes keys to separate tenants.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values.
const (
	// LayoutTTL applies to generated layouts. Generation is deterministic, so
	// entries only expire to bound disk use.
	LayoutTTL = 7 * 24 * time.Hour

	// ArtifactTTL applies to rendered images and diagrams.
	ArtifactTTL = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. ttl <= 0 keeps the entry until deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
