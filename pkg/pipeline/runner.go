package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/typeshape/pkg/cache"
	"github.com/matzehuels/typeshape/pkg/errors"
	"github.com/matzehuels/typeshape/pkg/normalize"
	"github.com/matzehuels/typeshape/pkg/observability"
	"github.com/matzehuels/typeshape/pkg/schema"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides cache.TTLSchema and cache.TTLArtifact when non-zero.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → normalize → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		Declaration: opts.Declaration,
		ProjectHash: cache.Hash(opts.Project),
	}
	schemaKey := r.Keyer.SchemaKey(result.ProjectHash, opts.Declaration, opts.SchemaKeyOpts())

	// A cached schema needs neither the project nor the normalizer.
	var n *schema.Node
	if !opts.Refresh {
		n = r.lookupSchema(ctx, schemaKey)
	}
	if n != nil {
		result.CacheInfo.SchemaHit = true
		r.Logger.Info("schema cache hit", "declaration", opts.Declaration)
	} else {
		// Stage 1: Load
		loadStart := time.Now()
		project, err := r.Load(ctx, opts)
		if err != nil {
			return nil, err
		}
		result.Stats.LoadTime = time.Since(loadStart)
		result.Stats.Declarations = project.Index.Len()

		r.Logger.Info("loaded project",
			"declarations", result.Stats.Declarations,
			"duration", result.Stats.LoadTime)

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Stage 2: Normalize
		normalizeStart := time.Now()
		n, result.Stats.Embedded, err = r.normalize(ctx, project, opts, schemaKey)
		if err != nil {
			return nil, err
		}
		result.Stats.NormalizeTime = time.Since(normalizeStart)

		r.Logger.Info("normalized declaration",
			"declaration", opts.Declaration,
			"embedded", result.Stats.Embedded,
			"duration", result.Stats.NormalizeTime)
	}
	result.Schema = n
	result.SchemaHash = SchemaHash(n)
	result.Stats.NodeCount = schema.Count(n)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, n, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load parses and indexes the project in opts.
func (r *Runner) Load(ctx context.Context, opts Options) (*Project, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, opts.Source)
	start := time.Now()

	project, err := Load(opts.Project, opts.DereferenceDepth)

	declarations := 0
	if project != nil {
		declarations = project.Index.Len()
	}
	hooks.OnLoadComplete(ctx, opts.Source, declarations, time.Since(start), err)
	return project, err
}

// NormalizeWithCacheInfo normalizes the declaration named in opts with
// caching and returns cache hit info.
func (r *Runner) NormalizeWithCacheInfo(ctx context.Context, project *Project, opts Options) (*schema.Node, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForNormalize(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.SchemaKey(project.Hash, opts.Declaration, opts.SchemaKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if n := r.lookupSchema(ctx, cacheKey); n != nil {
			return n, true, nil
		}
	}

	n, _, err := r.normalize(ctx, project, opts, cacheKey)
	if err != nil {
		return nil, false, err
	}
	return n, false, nil // Cache miss
}

// lookupSchema returns the cached schema under key, or nil on a miss.
func (r *Runner) lookupSchema(ctx context.Context, key string) *schema.Node {
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		var n schema.Node
		if err := json.Unmarshal(data, &n); err == nil {
			observability.Cache().OnCacheHit(ctx, "schema")
			return &n
		}
		// If deserialization fails, fall through to recompute
	}
	observability.Cache().OnCacheMiss(ctx, "schema")
	return nil
}

// normalize resolves and normalizes the declaration in opts and caches the
// schema under key. It also returns the number of embedded targets.
func (r *Runner) normalize(ctx context.Context, project *Project, opts Options, key string) (*schema.Node, int, error) {
	hooks := observability.Pipeline()
	hooks.OnNormalizeStart(ctx, opts.Declaration)
	start := time.Now()

	decl, embedded, err := project.Resolve(opts.Declaration)
	var n *schema.Node
	if err == nil {
		n, err = normalize.New(opts.NormalizeOptions()).NormalizeDeclaration(decl, opts.Declaration)
	}
	if err == nil && n == nil {
		err = errors.New(errors.ErrCodeUnsupported, "declaration %q has no supported type", opts.Declaration)
	}
	hooks.OnNormalizeComplete(ctx, opts.Declaration, schema.Count(n), time.Since(start), err)
	if err != nil {
		return nil, 0, err
	}

	if data, err := json.Marshal(n); err == nil {
		r.put(ctx, "schema", key, data, r.ttl(cache.TTLSchema))
	}
	return n, embedded, nil
}

// Normalize is a convenience wrapper that calls NormalizeWithCacheInfo and discards the cache hit info.
func (r *Runner) Normalize(ctx context.Context, project *Project, opts Options) (*schema.Node, error) {
	n, _, err := r.NormalizeWithCacheInfo(ctx, project, opts)
	return n, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, n *schema.Node, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	schemaHash := SchemaHash(n)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(schemaHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, "artifact")
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil // All artifacts from cache
	}

	// Render all formats
	rendered, err := Render(ctx, n, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(schemaHash, opts.ArtifactKeyOpts(format))
		r.put(ctx, "artifact", cacheKey, data, r.ttl(cache.TTLArtifact))
	}

	return rendered, false, nil // Cache miss
}

// put writes an entry, retrying transient backend failures. Cache writes
// never fail the run.
func (r *Runner) put(ctx context.Context, kind, key string, data []byte, ttl time.Duration) {
	err := cache.RetryWithBackoff(ctx, func() error {
		return r.Cache.Set(ctx, key, data, ttl)
	})
	if err != nil {
		r.Logger.Warn("cache write failed", "kind", kind, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, n *schema.Node, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, n, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// SchemaHash returns the content hash of n's compact JSON encoding.
func SchemaHash(n *schema.Node) string {
	data, err := json.Marshal(n)
	if err != nil {
		return cache.Hash([]byte(fmt.Sprintf("%p", n)))
	}
	return cache.Hash(data)
}
