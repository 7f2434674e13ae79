package typedoc

import (
	"encoding/json"
	"slices"
)

// Clone returns a deep copy of n. Opaque JSON payloads are copied too, so the
// clone can be modified without affecting n.
func (n *RawNode) Clone() *RawNode {
	if n == nil {
		return nil
	}
	c := *n
	c.Comment = cloneRaw(n.Comment)
	c.DefaultValue = cloneRaw(n.DefaultValue)
	if n.Flags != nil {
		f := *n.Flags
		c.Flags = &f
	}
	c.Type = n.Type.Clone()
	c.Children = cloneNodes(n.Children)
	c.Signatures = cloneNodes(n.Signatures)
	c.Parameters = cloneNodes(n.Parameters)
	c.IndexSignature = n.IndexSignature.Clone()
	if n.TypeParameters != nil {
		c.TypeParameters = make([]*TypeParameter, len(n.TypeParameters))
		for i, tp := range n.TypeParameters {
			c.TypeParameters[i] = tp.Clone()
		}
	}
	return &c
}

// Clone returns a deep copy of tp.
func (tp *TypeParameter) Clone() *TypeParameter {
	if tp == nil {
		return nil
	}
	c := *tp
	c.Comment = cloneRaw(tp.Comment)
	c.Type = tp.Type.Clone()
	c.Default = tp.Default.Clone()
	return &c
}

// Clone returns a deep copy of t.
func (t *RawType) Clone() *RawType {
	if t == nil {
		return nil
	}
	c := *t
	c.Value = cloneRaw(t.Value)
	c.Types = cloneTypes(t.Types)
	c.ElementType = t.ElementType.Clone()
	c.TypeArguments = cloneTypes(t.TypeArguments)
	c.Dereferenced = t.Dereferenced.Clone()
	c.Declaration = t.Declaration.Clone()
	c.ObjectType = t.ObjectType.Clone()
	c.IndexType = t.IndexType.Clone()
	c.Target = t.Target.Clone()
	if t.TargetID != nil {
		id := *t.TargetID
		c.TargetID = &id
	}
	return &c
}

func cloneNodes(nodes []*RawNode) []*RawNode {
	if nodes == nil {
		return nil
	}
	out := make([]*RawNode, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

func cloneTypes(types []*RawType) []*RawType {
	if types == nil {
		return nil
	}
	out := make([]*RawType, len(types))
	for i, t := range types {
		out[i] = t.Clone()
	}
	return out
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return slices.Clone(raw)
}
