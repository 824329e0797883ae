// Package cache provides persistent byte caches for dataset assets.
//
// The explorer keeps decoded trees in memory for the lifetime of a session
// (see package recon). The caches here sit one level below: they hold the
// raw JSON bytes fetched from a remote data directory so that a later
// session, or another server replica, does not need to download them again.
//
// Backends:
//   - [FileCache]: files under ~/.cache/latentscope (CLI default)
//   - [RedisCache]: shared cache for multi-instance servers
//   - [MongoCache]: document store for deployments that already run MongoDB
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys for dataset assets.
type Keyer interface {
	// AssetKey returns the key for the asset name read from source
	// (a data directory path or base URL).
	AssetKey(source, name string) string
}

// DefaultKeyer hashes the source so keys stay short and filesystem-safe.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// AssetKey implements Keyer.
func (DefaultKeyer) AssetKey(source, name string) string {
	return hashKey("asset", source) + ":" + name
}
