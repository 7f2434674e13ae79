// Package schema defines the normalized type schema handed to documentation
// renderers.
//
// Every [Node] carries the optional common fields (name, comment, default
// value, optionality) and a [Body]. Body is a sealed interface with one
// struct per variant, so a type switch over it is exhaustive:
//
//	switch b := n.Body.(type) {
//	case *schema.Array:
//	case *schema.Union:
//	...
//	}
//
// # JSON
//
// Nodes encode as
//
//	{"name": "...", "comment": ..., "defaultValue": ..., "isOptional": true,
//	 "type": {"type": "<kind>", ...variant fields}}
//
// Absent fields are omitted, never written as null. Intrinsic bodies encode
// their intrinsic name as the kind ({"type": "string"}).
package schema

import "encoding/json"

// Kind tags written to the "type" key of an encoded body.
const (
	KindArray             = "array"
	KindInterface         = "interface"
	KindIndexedObject     = "indexedObject"
	KindFunctionSignature = "functionSignature"
	KindFunction          = "function"
	KindLiteral           = "literal"
	KindUnion             = "union"
	KindIntersection      = "intersection"
	KindReference         = "reference"
	KindTypeParamDefault  = "typeParamDefault"
	KindIndexedAccess     = "indexedAccess"
)

// Type operators that produce composite kind labels such as "readonly array".
const (
	OperatorReadonly = "readonly"
	OperatorKeyof    = "keyof"
)

// Node is one element of a normalized schema.
type Node struct {
	Name         string
	Comment      json.RawMessage
	DefaultValue json.RawMessage
	IsOptional   *bool
	Body         Body
}

// Kind returns the kind tag of n's body, or "" when n or its body is nil.
func (n *Node) Kind() string {
	if n == nil || n.Body == nil {
		return ""
	}
	return n.Body.Kind()
}

// Body is the variant-specific part of a node.
type Body interface {
	// Kind returns the tag written to the "type" key.
	Kind() string
	sealed()
}

type body struct{}

func (body) sealed() {}

// Intrinsic is a built-in type such as string, number or any. Its kind tag
// is the intrinsic name itself.
type Intrinsic struct {
	body
	Name string `json:"-"`
}

// Kind returns the intrinsic name.
func (b *Intrinsic) Kind() string { return b.Name }

// Literal is a literal type. Value is the raw JSON literal, possibly null.
type Literal struct {
	body
	Value json.RawMessage `json:"value"`
}

// Kind returns KindLiteral.
func (*Literal) Kind() string { return KindLiteral }

// Array is T[]. ElementType is nil when the element could not be normalized.
type Array struct {
	body
	ElementType *Node `json:"elementType,omitempty"`
}

// Kind returns KindArray.
func (*Array) Kind() string { return KindArray }

// Union is A | B | ... in source order, without deduplication.
type Union struct {
	body
	Types []*Node `json:"types"`
}

// Kind returns KindUnion.
func (*Union) Kind() string { return KindUnion }

// Intersection is A & B & ... in source order.
type Intersection struct {
	body
	Types []*Node `json:"types"`
}

// Kind returns KindIntersection.
func (*Intersection) Kind() string { return KindIntersection }

// Interface is a structural type with named members.
type Interface struct {
	body
	Properties []*Node `json:"properties"`
}

// Kind returns KindInterface.
func (*Interface) Kind() string { return KindInterface }

// IndexedObject is a structural type described by an index signature,
// e.g. { [key: string]: number }.
type IndexedObject struct {
	body
	Indexes []*Node `json:"indexes"`
	Value   *Node   `json:"value,omitempty"`
}

// Kind returns KindIndexedObject.
func (*IndexedObject) Kind() string { return KindIndexedObject }

// FunctionSignature is one call signature of a function-like type.
type FunctionSignature struct {
	body
	Parameters []*Node `json:"parameters"`
	Returns    *Node   `json:"returns,omitempty"`
}

// Kind returns KindFunctionSignature.
func (*FunctionSignature) Kind() string { return KindFunctionSignature }

// Function is a function-like type with one node per overload. Each
// signature node has a *FunctionSignature body.
type Function struct {
	body
	Signatures []*Node `json:"signatures"`
}

// Kind returns KindFunction.
func (*Function) Kind() string { return KindFunction }

// Reference is a named type whose target could not be resolved. The name
// lives on the enclosing node.
type Reference struct {
	body
	TypeArguments []*Node `json:"typeArguments"`
}

// Kind returns KindReference.
func (*Reference) Kind() string { return KindReference }

// TypeParamDefault is a generic parameter that resolved to its declared
// default rather than a concrete substitution.
type TypeParamDefault struct {
	body
	InnerType *Node `json:"innerType,omitempty"`
}

// Kind returns KindTypeParamDefault.
func (*TypeParamDefault) Kind() string { return KindTypeParamDefault }

// Operator wraps the operand of a readonly or keyof type operator. Its kind
// label combines both, e.g. "readonly array".
type Operator struct {
	body
	Operator  string `json:"-"`
	InnerType *Node  `json:"innerType"`
}

// Kind returns the operator followed by the operand's kind.
func (b *Operator) Kind() string { return b.Operator + " " + b.InnerType.Kind() }

// IndexedAccess is T[K].
type IndexedAccess struct {
	body
	ObjectType *Node `json:"objectType,omitempty"`
	IndexType  *Node `json:"indexType,omitempty"`
}

// Kind returns KindIndexedAccess.
func (*IndexedAccess) Kind() string { return KindIndexedAccess }

var (
	_ Body = (*Intrinsic)(nil)
	_ Body = (*Literal)(nil)
	_ Body = (*Array)(nil)
	_ Body = (*Union)(nil)
	_ Body = (*Intersection)(nil)
	_ Body = (*Interface)(nil)
	_ Body = (*IndexedObject)(nil)
	_ Body = (*FunctionSignature)(nil)
	_ Body = (*Function)(nil)
	_ Body = (*Reference)(nil)
	_ Body = (*TypeParamDefault)(nil)
	_ Body = (*Operator)(nil)
	_ Body = (*IndexedAccess)(nil)
)
