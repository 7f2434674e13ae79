package normalize

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/typeshape/pkg/errors"
	"github.com/matzehuels/typeshape/pkg/schema"
	"github.com/matzehuels/typeshape/pkg/typedoc"
)

// Defaults for unset Options limits.
const (
	DefaultMaxDepth = 256
	DefaultMaxNodes = 50000
)

// Kind is a raw kind tag the dispatcher recognizes.
type Kind string

const (
	KindArray           Kind = typedoc.KindArray
	KindIndexedAccess   Kind = typedoc.KindIndexedAccess
	KindIntersection    Kind = typedoc.KindIntersection
	KindIntrinsic       Kind = typedoc.KindIntrinsic
	KindLiteral         Kind = typedoc.KindLiteral
	KindReference       Kind = typedoc.KindReference
	KindReflection      Kind = typedoc.KindReflection
	KindTypeOperator    Kind = typedoc.KindTypeOperator
	KindUnion           Kind = typedoc.KindUnion
	KindTemplateLiteral Kind = typedoc.KindTemplateLiteral
)

// Kinds lists every kind that produces output, in dispatch order.
var Kinds = []Kind{
	KindArray,
	KindIndexedAccess,
	KindIntersection,
	KindIntrinsic,
	KindLiteral,
	KindReference,
	KindReflection,
	KindTypeOperator,
	KindUnion,
}

// Supported reports whether kind yields a node rather than nil.
func Supported(kind string) bool {
	for _, k := range Kinds {
		if string(k) == kind {
			return true
		}
	}
	return false
}

// Options configures a Normalizer.
type Options struct {
	// Strict turns an unsatisfied generic-parameter lookup into
	// ErrCodeParamNotInScope instead of falling back to the reference.
	Strict bool

	// MaxDepth bounds nested handler calls. Zero means DefaultMaxDepth.
	MaxDepth int

	// MaxNodes bounds the handler calls of one top-level call. Shared
	// dereferenced targets are expanded once per use, so a small input can
	// still describe a very large tree. Zero means DefaultMaxNodes.
	MaxNodes int

	// Logger receives debug output. Nil discards it.
	Logger *log.Logger
}

// ValidateAndSetDefaults fills in zero values and rejects impossible ones.
func (o *Options) ValidateAndSetDefaults() error {
	if o.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max depth must be positive, got %d", o.MaxDepth)
	}
	if o.MaxNodes < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max nodes must not be negative, got %d", o.MaxNodes)
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxNodes == 0 {
		o.MaxNodes = DefaultMaxNodes
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return nil
}

// Normalizer converts raw type nodes into schema nodes. It holds no state
// between calls and is safe for concurrent use.
type Normalizer struct {
	opts Options
}

// New returns a Normalizer. Invalid options fall back to their defaults.
func New(opts Options) *Normalizer {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		opts = Options{Strict: opts.Strict, Logger: opts.Logger}
		_ = opts.ValidateAndSetDefaults()
	}
	return &Normalizer{opts: opts}
}

// Options returns the effective options.
func (nz *Normalizer) Options() Options {
	return nz.opts
}

var defaultNormalizer = New(Options{})

// Normalize converts node using the default lenient Normalizer.
func Normalize(kind string, node *typedoc.RawNode, scope *Scope, diagnostic string) (*schema.Node, error) {
	return defaultNormalizer.Normalize(kind, node, scope, diagnostic)
}

// Normalize converts node, whose type expression has the given kind, into a
// schema node. scope holds node's ancestors, innermost first; nil is the
// empty chain. diagnostic labels the call in log output and never affects
// the result.
//
// A nil node with a nil error means the kind is unsupported and the caller
// should omit the node.
func (nz *Normalizer) Normalize(kind string, node *typedoc.RawNode, scope *Scope, diagnostic string) (*schema.Node, error) {
	p := &pass{nz: nz, log: nz.opts.Logger, diagnostic: diagnostic}
	return p.normalize(kind, node, scope, 0)
}

// pass carries the per-call settings through the recursion.
type pass struct {
	nz         *Normalizer
	log        *log.Logger
	diagnostic string
	nodes      int
}

func (p *pass) normalize(kind string, node *typedoc.RawNode, scope *Scope, depth int) (*schema.Node, error) {
	if node == nil {
		return nil, nil
	}
	if err := p.enter(node, depth); err != nil {
		return nil, err
	}

	switch Kind(kind) {
	case KindArray:
		return p.array(node, scope, depth)
	case KindIndexedAccess:
		return p.indexedAccess(node, scope, depth)
	case KindIntersection:
		return p.intersection(node, scope, depth)
	case KindIntrinsic:
		return p.intrinsic(node), nil
	case KindLiteral:
		return p.literal(node), nil
	case KindReference:
		return p.reference(node, scope, depth)
	case KindReflection:
		return p.reflection(node, scope, depth)
	case KindTypeOperator:
		return p.typeOperator(node, scope, depth)
	case KindUnion:
		return p.union(node, scope, depth)
	case KindTemplateLiteral:
		return nil, nil
	default:
		return nil, nil
	}
}

// enter checks the depth and node budgets before a handler runs.
func (p *pass) enter(node *typedoc.RawNode, depth int) error {
	if depth > p.nz.opts.MaxDepth {
		return errors.New(errors.ErrCodeDepthExceeded,
			"type nesting exceeds %d levels at %q (%s)", p.nz.opts.MaxDepth, node.Name, p.diagnostic)
	}
	p.nodes++
	if p.nodes > p.nz.opts.MaxNodes {
		return errors.New(errors.ErrCodeLimitExceeded,
			"schema exceeds %d nodes at %q (%s)", p.nz.opts.MaxNodes, node.Name, p.diagnostic)
	}
	return nil
}

// child normalizes a bare type expression found inside node.
func (p *pass) child(t *typedoc.RawType, scope *Scope, depth int) (*schema.Node, error) {
	if t == nil || t.Kind == "" {
		return nil, nil
	}
	return p.normalize(t.Kind, t.Node(), scope, depth+1)
}

// member normalizes a declaration found inside node, such as a property or
// parameter. Members without a type expression are skipped.
func (p *pass) member(n *typedoc.RawNode, scope *Scope, depth int) (*schema.Node, error) {
	kind := n.TypeKind()
	if kind == "" {
		return nil, nil
	}
	return p.normalize(kind, n, scope, depth+1)
}

// members normalizes each entry of ns and drops the unsupported ones. The
// result is never nil.
func (p *pass) members(ns []*typedoc.RawNode, scope *Scope, depth int) ([]*schema.Node, error) {
	out := make([]*schema.Node, 0, len(ns))
	for _, n := range ns {
		c, err := p.member(n, scope, depth)
		if err != nil {
			return nil, err
		}
		if c != nil {
			out = append(out, c)
		}
	}
	return out, nil
}

// children normalizes each type expression of ts and drops the missing,
// kindless and unsupported ones. The result is never nil.
func (p *pass) children(ts []*typedoc.RawType, scope *Scope, depth int) ([]*schema.Node, error) {
	out := make([]*schema.Node, 0, len(ts))
	for _, t := range ts {
		c, err := p.child(t, scope, depth)
		if err != nil {
			return nil, err
		}
		if c != nil {
			out = append(out, c)
		}
	}
	return out, nil
}
