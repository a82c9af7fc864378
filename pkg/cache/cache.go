// Package cache stores rendered artifacts between runs.
//
// Rendering a layer diagram boots the Graphviz WebAssembly runtime and, for
// PDF and PNG, shells out to rsvg-convert. The pipeline keys each artifact by
// the hash of its DOT source and output format, so rerunning `hyperkey graph`
// on an unchanged tree is a file read.
//
// [FileCache] is the CLI cache under the user cache directory; [NullCache]
// disables caching.
package cache

import (
	"context"
	"time"
)

// TTLArtifact is how long a rendered artifact stays valid. Artifacts are a
// pure function of their key, so the TTL only bounds disk usage.
const TTLArtifact = 30 * 24 * time.Hour

// Cache is a byte store with per-entry expiration.
type Cache interface {
	// Get returns the data for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources held by the cache.
	Close() error
}

// ArtifactKey returns the cache key for source rendered as format.
func ArtifactKey(source, format string) string {
	return hashKey("artifact", format, Hash([]byte(source)))
}
