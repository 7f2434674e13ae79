package normalize

import "github.com/matzehuels/typeshape/pkg/typedoc"

// Scope is one frame of the ancestor chain: the enclosing declaration and
// the generic parameters it declares. Frames are immutable; Push returns a
// new frame and never modifies the receiver, so one chain can be shared by
// any number of sibling calls.
//
// A nil *Scope is the empty chain.
type Scope struct {
	parent *Scope
	node   *typedoc.RawNode
	params []*typedoc.TypeParameter
	depth  int
}

// NewScope returns a root frame declaring params. Callers use it to supply
// substitutions that do not live on any node in the tree.
func NewScope(params ...*typedoc.TypeParameter) *Scope {
	return &Scope{params: params, depth: 1}
}

// Push returns a frame for n whose parent is s. The frame declares n's type
// parameters, if any.
func (s *Scope) Push(n *typedoc.RawNode) *Scope {
	f := &Scope{parent: s, node: n, depth: s.Len() + 1}
	if n != nil {
		f.params = n.TypeParameters
	}
	return f
}

// Parent returns the enclosing frame, or nil at the root.
func (s *Scope) Parent() *Scope {
	if s == nil {
		return nil
	}
	return s.parent
}

// Node returns the declaration this frame was pushed for. Root frames built
// with NewScope have none.
func (s *Scope) Node() *typedoc.RawNode {
	if s == nil {
		return nil
	}
	return s.node
}

// Params returns the generic parameters declared by this frame alone.
func (s *Scope) Params() []*typedoc.TypeParameter {
	if s == nil {
		return nil
	}
	return s.params
}

// Len returns the number of frames in the chain.
func (s *Scope) Len() int {
	if s == nil {
		return 0
	}
	return s.depth
}

// Nearest walks outward from s and returns the first frame that declares at
// least one generic parameter, together with that list. Outer frames are
// never consulted once a list is found.
func (s *Scope) Nearest() (*Scope, []*typedoc.TypeParameter, bool) {
	for f := s; f != nil; f = f.parent {
		if len(f.params) > 0 {
			return f, f.params, true
		}
	}
	return nil, nil, false
}

// lookupParam returns the parameter named name in params.
func lookupParam(params []*typedoc.TypeParameter, name string) (*typedoc.TypeParameter, bool) {
	for _, p := range params {
		if p != nil && p.Name == name {
			return p, true
		}
	}
	return nil, false
}
