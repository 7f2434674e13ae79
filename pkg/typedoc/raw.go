package typedoc

import (
	"bytes"
	"encoding/json"
)

// Kind tags carried in the "type" key of a type expression.
const (
	KindArray           = "array"
	KindIndexedAccess   = "indexedAccess"
	KindIntersection    = "intersection"
	KindIntrinsic       = "intrinsic"
	KindLiteral         = "literal"
	KindReference       = "reference"
	KindReflection      = "reflection"
	KindTemplateLiteral = "template-literal"
	KindTypeOperator    = "typeOperator"
	KindUnion           = "union"
)

// KindString values that the normalizer distinguishes.
const (
	KindStringCallSignature  = "Call signature"
	KindStringInterface      = "Interface"
	KindStringTypeParameter  = "Type parameter"
	KindStringIndexSignature = "Index signature"
)

// Flags holds the boolean modifiers of a declaration.
type Flags struct {
	IsOptional *bool `json:"isOptional,omitempty"`
	IsRest     *bool `json:"isRest,omitempty"`
}

// RawNode is one declaration in the raw tree: a property, parameter,
// signature, interface, type alias or the project root itself.
type RawNode struct {
	ID             int              `json:"id,omitempty"`
	Name           string           `json:"name,omitempty"`
	Kind           int              `json:"kind,omitempty"`
	KindString     string           `json:"kindString,omitempty"`
	Comment        json.RawMessage  `json:"comment,omitempty"`
	DefaultValue   json.RawMessage  `json:"defaultValue,omitempty"`
	Flags          *Flags           `json:"flags,omitempty"`
	Type           *RawType         `json:"type,omitempty"`
	Children       []*RawNode       `json:"children,omitempty"`
	Signatures     []*RawNode       `json:"signatures,omitempty"`
	Parameters     []*RawNode       `json:"parameters,omitempty"`
	IndexSignature *RawNode         `json:"indexSignature,omitempty"`
	TypeParameters []*TypeParameter `json:"typeParameters,omitempty"`
}

// rawNodeJSON mirrors RawNode with the legacy spellings some tool versions use.
type rawNodeJSON struct {
	rawNodeAlias
	TypeParameter   []*TypeParameter `json:"typeParameter,omitempty"`
	IndexSignatures []*RawNode       `json:"indexSignatures,omitempty"`
}

type rawNodeAlias RawNode

// UnmarshalJSON accepts both "typeParameter" and "typeParameters", and both the
// single "indexSignature" and the list form "indexSignatures" (first entry wins).
func (n *RawNode) UnmarshalJSON(data []byte) error {
	var aux rawNodeJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*n = RawNode(aux.rawNodeAlias)
	if len(n.TypeParameters) == 0 && len(aux.TypeParameter) > 0 {
		n.TypeParameters = aux.TypeParameter
	}
	if n.IndexSignature == nil && len(aux.IndexSignatures) > 0 {
		n.IndexSignature = aux.IndexSignatures[0]
	}
	return nil
}

// IsEmpty reports whether n carries nothing a consumer could use. A nil node
// is empty.
func (n *RawNode) IsEmpty() bool {
	if n == nil {
		return true
	}
	return n.Name == "" &&
		n.Type == nil &&
		len(n.Children) == 0 &&
		len(n.Signatures) == 0 &&
		n.IndexSignature == nil &&
		!Present(n.Comment)
}

// TypeKind returns the kind tag of n's type expression, or "" when n has none.
func (n *RawNode) TypeKind() string {
	if n == nil || n.Type == nil {
		return ""
	}
	return n.Type.Kind
}

// TypeParameter declares a generic parameter on an enclosing signature or
// alias. Type is a concrete substitution and Default the declared fallback.
type TypeParameter struct {
	ID         int             `json:"id,omitempty"`
	Name       string          `json:"name"`
	KindString string          `json:"kindString,omitempty"`
	Comment    json.RawMessage `json:"comment,omitempty"`
	Type       *RawType        `json:"type,omitempty"`
	Default    *RawType        `json:"default,omitempty"`
}

// RawType is a type expression. Kind selects which of the remaining fields
// are meaningful.
type RawType struct {
	Kind string `json:"type,omitempty"`
	Name string `json:"name,omitempty"`

	// Value is the literal value for KindLiteral, including a JSON null.
	Value json.RawMessage `json:"value,omitempty"`

	// Types holds union and intersection members. Entries may be nil.
	Types []*RawType `json:"types,omitempty"`

	ElementType   *RawType   `json:"elementType,omitempty"`
	TypeArguments []*RawType `json:"typeArguments,omitempty"`

	// RefersToTypeParameter marks a reference to a generic parameter of an
	// enclosing declaration rather than to a named type.
	RefersToTypeParameter bool `json:"refersToTypeParameter,omitempty"`

	// Dereferenced is a pre-expanded copy of what a reference points to.
	Dereferenced *RawNode `json:"dereferenced,omitempty"`

	// Declaration is the anonymous structural body of a reflection.
	Declaration *RawNode `json:"declaration,omitempty"`

	Operator   string   `json:"operator,omitempty"`
	ObjectType *RawType `json:"objectType,omitempty"`
	IndexType  *RawType `json:"indexType,omitempty"`

	// Target is the operand of a type operator. TargetID is the numeric id
	// a reference points to. Both arrive under the JSON key "target".
	Target   *RawType `json:"-"`
	TargetID *int     `json:"-"`
}

type rawTypeAlias RawType

type rawTypeJSON struct {
	rawTypeAlias
	Target json.RawMessage `json:"target,omitempty"`
}

// UnmarshalJSON decodes "target" either as an operand type (object form) or
// as a reflection id (number form). Other shapes are ignored.
func (t *RawType) UnmarshalJSON(data []byte) error {
	var aux rawTypeJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*t = RawType(aux.rawTypeAlias)

	target := bytes.TrimSpace(aux.Target)
	switch {
	case len(target) == 0:
	case target[0] == '{':
		var op RawType
		if err := json.Unmarshal(target, &op); err != nil {
			return err
		}
		t.Target = &op
	case target[0] == '-' || (target[0] >= '0' && target[0] <= '9'):
		var id int
		if err := json.Unmarshal(target, &id); err == nil {
			t.TargetID = &id
		}
	}
	return nil
}

// MarshalJSON writes "target" back in whichever form was decoded.
func (t RawType) MarshalJSON() ([]byte, error) {
	aux := rawTypeJSON{rawTypeAlias: rawTypeAlias(t)}
	var err error
	switch {
	case t.Target != nil:
		aux.Target, err = json.Marshal(t.Target)
	case t.TargetID != nil:
		aux.Target, err = json.Marshal(*t.TargetID)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(aux)
}

// Node wraps a type expression in an otherwise empty declaration so that it
// can be passed where a RawNode is expected.
func (t *RawType) Node() *RawNode {
	return &RawNode{Type: t}
}

// Present reports whether an opaque JSON payload was supplied. Missing fields
// and explicit nulls are both absent.
func Present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
