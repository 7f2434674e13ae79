package render

import (
	"strings"

	"github.com/matzehuels/typeshape/pkg/schema"
)

// Describe returns a compact one-line type expression for n, close to how
// the type would be written in source:
//
//	string
//	"ok" | "timed out"
//	Row[]
//	Promise<void>
//	(table: string) => QueryBuilder
//
// Interfaces and indexed objects are abbreviated; use [Tree] for the full
// structure.
func Describe(n *schema.Node) string {
	if n == nil || n.Body == nil {
		return "unknown"
	}
	switch b := n.Body.(type) {
	case *schema.Intrinsic:
		return b.Name
	case *schema.Literal:
		if len(b.Value) == 0 {
			return "null"
		}
		return string(b.Value)
	case *schema.Array:
		elem := Describe(b.ElementType)
		if needsParens(b.ElementType) {
			elem = "(" + elem + ")"
		}
		return elem + "[]"
	case *schema.Union:
		return joinDescribed(b.Types, " | ", "never")
	case *schema.Intersection:
		return joinDescribed(b.Types, " & ", "unknown")
	case *schema.Interface:
		names := make([]string, 0, len(b.Properties))
		for _, p := range b.Properties {
			names = append(names, memberName(p))
		}
		return "{ " + strings.Join(names, "; ") + " }"
	case *schema.IndexedObject:
		keys := make([]string, 0, len(b.Indexes))
		for _, k := range b.Indexes {
			keys = append(keys, memberName(k)+": "+Describe(k))
		}
		return "{ [" + strings.Join(keys, ", ") + "]: " + Describe(b.Value) + " }"
	case *schema.FunctionSignature:
		params := make([]string, 0, len(b.Parameters))
		for _, p := range b.Parameters {
			params = append(params, memberName(p)+": "+Describe(p))
		}
		ret := "void"
		if b.Returns != nil {
			ret = refName(b.Returns)
		}
		return "(" + strings.Join(params, ", ") + ") => " + ret
	case *schema.Function:
		sigs := make([]string, 0, len(b.Signatures))
		for _, s := range b.Signatures {
			sigs = append(sigs, Describe(s))
		}
		if len(sigs) == 0 {
			return "Function"
		}
		return strings.Join(sigs, " & ")
	case *schema.Reference:
		name := n.Name
		if name == "" {
			name = "unknown"
		}
		if len(b.TypeArguments) == 0 {
			return name
		}
		return name + "<" + joinDescribed(b.TypeArguments, ", ", "") + ">"
	case *schema.TypeParamDefault:
		return Describe(b.InnerType)
	case *schema.Operator:
		return b.Operator + " " + Describe(b.InnerType)
	case *schema.IndexedAccess:
		return Describe(b.ObjectType) + "[" + Describe(b.IndexType) + "]"
	}
	return n.Kind()
}

// refName prefers a named reference over spelling out its structure.
func refName(n *schema.Node) string {
	if n == nil {
		return Describe(n)
	}
	switch n.Body.(type) {
	case *schema.Interface, *schema.IndexedObject:
		if n.Name != "" {
			return n.Name
		}
	}
	return Describe(n)
}

func memberName(n *schema.Node) string {
	name := n.Name
	if name == "" {
		name = "_"
	}
	if n.IsOptional != nil && *n.IsOptional {
		name += "?"
	}
	return name
}

func joinDescribed(ns []*schema.Node, sep, empty string) string {
	if len(ns) == 0 {
		return empty
	}
	parts := make([]string, 0, len(ns))
	for _, n := range ns {
		parts = append(parts, refName(n))
	}
	return strings.Join(parts, sep)
}

func needsParens(n *schema.Node) bool {
	if n == nil {
		return false
	}
	switch n.Body.(type) {
	case *schema.Union, *schema.Intersection, *schema.FunctionSignature, *schema.Function:
		return true
	}
	return false
}
