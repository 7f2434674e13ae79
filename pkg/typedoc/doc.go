// Package typedoc models the raw declaration tree emitted by TypeDoc-style
// type-introspection tools.
//
// # Overview
//
// The raw tree mixes several shapes: declarations ([RawNode]) carry names,
// comments, children, call signatures and index signatures, while type
// expressions ([RawType]) carry a kind tag (the JSON "type" key) and
// kind-specific fields. Generic parameters are declared on enclosing nodes as
// [TypeParameter] lists.
//
// Values decode directly from the tool's JSON output. Opaque payloads such as
// comments, default values and literal values are kept as raw JSON and passed
// through untouched.
//
// # Projects
//
// [ReadProject] and [LoadProject] decode a whole project file. [NewIndex]
// builds a lookup table by numeric id and by dotted declaration path:
//
//	p, err := typedoc.LoadProject("docs.json")
//	idx := typedoc.NewIndex(p)
//	decl, ok := idx.Lookup("SupabaseClient.from")
//
// # Dereferencing
//
// Reference types usually name their target by numeric id only. [Dereference]
// embeds a copy of each target into the reference's Dereferenced field so
// that downstream consumers never need the index. Targets that are already
// being embedded higher up the chain are skipped, so self-referential types
// terminate.
package typedoc
