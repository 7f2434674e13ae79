// Package cache stores normalized schemas and rendered artifacts so repeated
// requests for the same declaration skip the pipeline.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [NullCache]: stores nothing, for tests and --no-cache
//
// # Keys
//
// A [Keyer] derives keys from everything that affects the cached value: the
// project content hash, the declaration path and the normalizer settings for
// schemas, plus the output format for artifacts. [ScopedKeyer] prefixes every
// key to give tenants separate namespaces.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry. A zero ttl never expires.
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// SchemaKey identifies a normalized declaration.
	SchemaKey(projectHash, declaration string, opts SchemaKeyOpts) string

	// ArtifactKey identifies a schema rendered in one format.
	ArtifactKey(schemaHash string, opts ArtifactKeyOpts) string
}

// SchemaKeyOpts holds the normalizer settings that change a schema.
type SchemaKeyOpts struct {
	Strict           bool `json:"strict"`
	MaxDepth         int  `json:"max_depth"`
	DereferenceDepth int  `json:"dereference_depth"`
	MaxNodes         int  `json:"max_nodes"`
}

// ArtifactKeyOpts holds the render settings that change an artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed"`
}

// DefaultKeyer hashes key components into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SchemaKey returns "schema:<sha256>".
func (DefaultKeyer) SchemaKey(projectHash, declaration string, opts SchemaKeyOpts) string {
	return hashKey("schema", projectHash, declaration, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(schemaHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", schemaHash, opts)
}

// Default entry lifetimes.
const (
	TTLSchema   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
