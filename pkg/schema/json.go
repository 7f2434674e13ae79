package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type nodeJSON struct {
	Name         string          `json:"name,omitempty"`
	Comment      json.RawMessage `json:"comment,omitempty"`
	DefaultValue json.RawMessage `json:"defaultValue,omitempty"`
	IsOptional   *bool           `json:"isOptional,omitempty"`
	Type         json.RawMessage `json:"type,omitempty"`
}

// MarshalJSON encodes n with the common fields first and the body under "type".
func (n Node) MarshalJSON() ([]byte, error) {
	aux := nodeJSON{
		Name:         n.Name,
		Comment:      n.Comment,
		DefaultValue: n.DefaultValue,
		IsOptional:   n.IsOptional,
	}
	if n.Body != nil {
		b, err := encodeBody(n.Body)
		if err != nil {
			return nil, err
		}
		aux.Type = b
	}
	return json.Marshal(aux)
}

// encodeBody writes {"type": kind, ...fields}.
func encodeBody(b Body) (json.RawMessage, error) {
	kind, err := json.Marshal(b.Kind())
	if err != nil {
		return nil, err
	}
	fields, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", b.Kind(), err)
	}

	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	buf.Write(kind)
	if inner := bytes.TrimSpace(fields[1 : len(fields)-1]); len(inner) > 0 {
		buf.WriteByte(',')
		buf.Write(inner)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a node previously written by MarshalJSON. Unknown
// kind tags decode as intrinsics.
func (n *Node) UnmarshalJSON(data []byte) error {
	var aux nodeJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*n = Node{
		Name:         aux.Name,
		Comment:      nonNull(aux.Comment),
		DefaultValue: nonNull(aux.DefaultValue),
		IsOptional:   aux.IsOptional,
	}
	if nonNull(aux.Type) == nil {
		return nil
	}
	b, err := decodeBody(aux.Type)
	if err != nil {
		return err
	}
	n.Body = b
	return nil
}

func decodeBody(data []byte) (Body, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}

	var b Body
	switch head.Type {
	case "":
		return nil, fmt.Errorf("decode body: missing kind tag")
	case KindArray:
		b = &Array{}
	case KindInterface:
		b = &Interface{}
	case KindIndexedObject:
		b = &IndexedObject{}
	case KindFunctionSignature:
		b = &FunctionSignature{}
	case KindFunction:
		b = &Function{}
	case KindLiteral:
		b = &Literal{}
	case KindUnion:
		b = &Union{}
	case KindIntersection:
		b = &Intersection{}
	case KindReference:
		b = &Reference{}
	case KindTypeParamDefault:
		b = &TypeParamDefault{}
	case KindIndexedAccess:
		b = &IndexedAccess{}
	default:
		op, _, found := strings.Cut(head.Type, " ")
		if found && (op == OperatorReadonly || op == OperatorKeyof) {
			b = &Operator{Operator: op}
			break
		}
		return &Intrinsic{Name: head.Type}, nil
	}

	if err := json.Unmarshal(data, b); err != nil {
		return nil, fmt.Errorf("decode %s: %w", head.Type, err)
	}
	return b, nil
}

func nonNull(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return raw
}
