package typedoc

// DefaultDereferenceDepth bounds how many embedded targets may nest inside
// one another.
const DefaultDereferenceDepth = 8

// DereferenceOptions configures [Dereference].
type DereferenceOptions struct {
	// MaxDepth is the maximum nesting of embedded targets. Zero means
	// DefaultDereferenceDepth.
	MaxDepth int
}

// Dereference returns a copy of root in which every reference type that names
// its target by id, and has no embedded target yet, carries the expanded
// target declaration in Dereferenced. root is not modified.
//
// Each target is expanded once and the expansion is shared by every
// reference to it, so the result is a DAG whose size is linear in the input.
// Shared expansions must be treated as read-only. An expansion never
// contains itself: references back to a declaration that is being walked
// are left as plain references. The second return value counts the expanded
// targets.
func Dereference(root *RawNode, opts DereferenceOptions) (*RawNode, int) {
	if root == nil {
		return nil, 0
	}
	return DereferenceNode(NewIndex(root), root, opts)
}

// DereferenceNode is [Dereference] for a single declaration n, resolving
// target ids against idx. Only the targets reachable from n are expanded.
func DereferenceNode(idx *Index, n *RawNode, opts DereferenceOptions) (*RawNode, int) {
	if n == nil {
		return nil, 0
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultDereferenceDepth
	}
	d := &dereferencer{
		idx:      idx,
		maxDepth: opts.MaxDepth,
		active:   make(map[int]bool),
		expanded: make(map[int]*RawNode),
	}
	out := n.Clone()
	d.node(out, 0)
	return out, len(d.expanded)
}

type dereferencer struct {
	idx      *Index
	maxDepth int

	// active holds the ids whose declaration is being walked.
	active map[int]bool

	// expanded holds finished expansions by target id.
	expanded map[int]*RawNode
}

func (d *dereferencer) node(n *RawNode, depth int) {
	if n == nil {
		return
	}
	if n.ID != 0 && !d.active[n.ID] {
		d.active[n.ID] = true
		defer delete(d.active, n.ID)
	}

	d.typ(n.Type, depth)
	for _, c := range n.Children {
		d.node(c, depth)
	}
	for _, s := range n.Signatures {
		d.node(s, depth)
	}
	for _, p := range n.Parameters {
		d.node(p, depth)
	}
	d.node(n.IndexSignature, depth)
	for _, tp := range n.TypeParameters {
		if tp == nil {
			continue
		}
		d.typ(tp.Type, depth)
		d.typ(tp.Default, depth)
	}
}

func (d *dereferencer) typ(t *RawType, depth int) {
	if t == nil {
		return
	}
	if t.Kind == KindReference && t.Dereferenced == nil && t.TargetID != nil {
		d.embed(t, *t.TargetID, depth)
	}
	for _, m := range t.Types {
		d.typ(m, depth)
	}
	d.typ(t.ElementType, depth)
	for _, a := range t.TypeArguments {
		d.typ(a, depth)
	}
	d.node(t.Declaration, depth)
	d.typ(t.ObjectType, depth)
	d.typ(t.IndexType, depth)
	d.typ(t.Target, depth)
}

// embed points t at the expansion of id, building it on first use. An
// expansion is stored only once finished, so one that is still in progress
// is never shared into itself.
func (d *dereferencer) embed(t *RawType, id int, depth int) {
	if d.active[id] {
		return
	}
	if e, ok := d.expanded[id]; ok {
		t.Dereferenced = e
		return
	}
	if depth >= d.maxDepth {
		return
	}
	target, ok := d.idx.ByID(id)
	if !ok {
		return
	}
	e := target.Clone()
	d.node(e, depth+1)
	d.expanded[id] = e
	t.Dereferenced = e
}
