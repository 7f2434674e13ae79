package normalize

import (
	"github.com/matzehuels/typeshape/pkg/schema"
	"github.com/matzehuels/typeshape/pkg/typedoc"
)

// Names the compiler gives to anonymous type bodies. They never reach output.
const (
	anonymousType   = "__type"
	anonymousObject = "__object"
)

// IsAnonymous reports whether name is a placeholder for a synthesized
// anonymous declaration.
func IsAnonymous(name string) bool {
	return name == anonymousType || name == anonymousObject
}

// metadataOf returns a node holding only the common fields n actually
// supplies. The body is left nil for the caller to fill in.
func metadataOf(n *typedoc.RawNode) *schema.Node {
	out := &schema.Node{}
	if n == nil {
		return out
	}
	if n.Name != "" && !IsAnonymous(n.Name) {
		out.Name = n.Name
	}
	if typedoc.Present(n.Comment) {
		out.Comment = n.Comment
	}
	if typedoc.Present(n.DefaultValue) {
		out.DefaultValue = n.DefaultValue
	}
	if n.Flags != nil && n.Flags.IsOptional != nil {
		v := *n.Flags.IsOptional
		out.IsOptional = &v
	}
	return out
}

// withBody attaches b to the metadata of n.
func withBody(n *typedoc.RawNode, b schema.Body) *schema.Node {
	out := metadataOf(n)
	out.Body = b
	return out
}

// overlay copies every field present in meta onto dst, replacing what dst
// had. dst's body is kept.
func overlay(dst, meta *schema.Node) *schema.Node {
	if meta.Name != "" {
		dst.Name = meta.Name
	}
	if meta.Comment != nil {
		dst.Comment = meta.Comment
	}
	if meta.DefaultValue != nil {
		dst.DefaultValue = meta.DefaultValue
	}
	if meta.IsOptional != nil {
		dst.IsOptional = meta.IsOptional
	}
	return dst
}
