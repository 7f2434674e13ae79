// Package pipeline provides the load → normalize → render pipeline shared by
// the CLI and the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Parse the documentation JSON and index declarations by path
//  2. Normalize: Embed the reference targets reachable from one declaration
//     and convert it into a schema tree
//  3. Render: Encode the schema in the requested formats (json, dot, svg, tree)
//
// Normalize and render results are cached by content hash. The schema cache
// is keyed by the hash of the raw JSON, so a repeated request against an
// unchanged project skips all three stages.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Project:     data,
//	    Declaration: "SupabaseClient.from",
//	    Formats:     []string{"json", "svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/typeshape/pkg/cache"
	"github.com/matzehuels/typeshape/pkg/errors"
	"github.com/matzehuels/typeshape/pkg/normalize"
	"github.com/matzehuels/typeshape/pkg/render"
	"github.com/matzehuels/typeshape/pkg/schema"
	"github.com/matzehuels/typeshape/pkg/typedoc"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMaxDepth bounds normalizer recursion.
	DefaultMaxDepth = normalize.DefaultMaxDepth

	// DefaultMaxNodes bounds the size of one normalized schema.
	DefaultMaxNodes = normalize.DefaultMaxNodes

	// DefaultDereferenceDepth bounds how deeply reference targets are embedded.
	DefaultDereferenceDepth = typedoc.DefaultDereferenceDepth

	// DefaultFormat is the output format when none is requested.
	DefaultFormat = render.FormatJSON
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Project          []byte `json:"-"`
	Source           string `json:"source,omitempty"` // label for logs, e.g. the file path
	DereferenceDepth int    `json:"dereference_depth,omitempty"`

	// Normalize options
	Declaration string `json:"declaration"`
	Strict      bool   `json:"strict,omitempty"`
	MaxDepth    int    `json:"max_depth,omitempty"`
	MaxNodes    int    `json:"max_nodes,omitempty"`
	Refresh     bool   `json:"refresh,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Declaration is the normalized declaration path.
	Declaration string

	// ProjectHash is the content hash of the input project.
	ProjectHash string

	// SchemaHash is the content hash of the encoded schema.
	SchemaHash string

	// Schema is the normalized tree.
	Schema *schema.Node

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Declarations  int
	Embedded      int
	NodeCount     int
	LoadTime      time.Duration
	NormalizeTime time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SchemaHit bool // Whether the schema came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := errors.ValidateFormat(f, render.Formats); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForNormalize(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for loading.
func (o *Options) ValidateForLoad() error {
	if len(o.Project) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "project is required")
	}
	if o.DereferenceDepth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "dereference depth must not be negative")
	}
	if o.DereferenceDepth == 0 {
		o.DereferenceDepth = DefaultDereferenceDepth
	}
	o.setLogger()
	return nil
}

// ValidateForNormalize checks the declaration path and normalizer limits.
func (o *Options) ValidateForNormalize() error {
	if err := errors.ValidateDeclarationPath(o.Declaration); err != nil {
		return err
	}
	if o.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max depth must not be negative")
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxNodes < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max nodes must not be negative")
	}
	if o.MaxNodes == 0 {
		o.MaxNodes = DefaultMaxNodes
	}
	o.setLogger()
	return nil
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	o.setLogger()
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// NormalizeOptions returns the normalizer configuration.
func (o *Options) NormalizeOptions() normalize.Options {
	return normalize.Options{
		Strict:   o.Strict,
		MaxDepth: o.MaxDepth,
		MaxNodes: o.MaxNodes,
		Logger:   o.Logger,
	}
}

// SchemaKeyOpts returns cache key options for normalization.
func (o *Options) SchemaKeyOpts() cache.SchemaKeyOpts {
	return cache.SchemaKeyOpts{
		Strict:           o.Strict,
		MaxDepth:         o.MaxDepth,
		DereferenceDepth: o.DereferenceDepth,
		MaxNodes:         o.MaxNodes,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Detailed: o.Detailed,
	}
}
