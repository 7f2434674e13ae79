package schema

import "fmt"

// Edge links a node to one of its children. Label names the field the child
// sits in, with an index for list fields ("types[1]").
type Edge struct {
	Label string
	Node  *Node
}

// Children returns n's direct children in field order. Absent children are
// skipped.
func (n *Node) Children() []Edge {
	if n == nil || n.Body == nil {
		return nil
	}
	var out []Edge
	one := func(label string, c *Node) {
		if c != nil {
			out = append(out, Edge{Label: label, Node: c})
		}
	}
	list := func(label string, cs []*Node) {
		for i, c := range cs {
			one(fmt.Sprintf("%s[%d]", label, i), c)
		}
	}

	switch b := n.Body.(type) {
	case *Array:
		one("elementType", b.ElementType)
	case *Union:
		list("types", b.Types)
	case *Intersection:
		list("types", b.Types)
	case *Interface:
		list("properties", b.Properties)
	case *IndexedObject:
		list("indexes", b.Indexes)
		one("value", b.Value)
	case *FunctionSignature:
		list("parameters", b.Parameters)
		one("returns", b.Returns)
	case *Function:
		list("signatures", b.Signatures)
	case *Reference:
		list("typeArguments", b.TypeArguments)
	case *TypeParamDefault:
		one("innerType", b.InnerType)
	case *Operator:
		one("innerType", b.InnerType)
	case *IndexedAccess:
		one("objectType", b.ObjectType)
		one("indexType", b.IndexType)
	case *Intrinsic, *Literal:
	}
	return out
}

// Walk calls fn for n and every descendant in depth-first pre-order. depth is
// 0 for n. Returning false from fn skips that node's children.
func Walk(n *Node, fn func(n *Node, label string, depth int) bool) {
	walk(n, "", 0, fn)
}

func walk(n *Node, label string, depth int, fn func(*Node, string, int) bool) {
	if n == nil {
		return
	}
	if !fn(n, label, depth) {
		return
	}
	for _, e := range n.Children() {
		walk(e.Node, e.Label, depth+1, fn)
	}
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n *Node) int {
	count := 0
	Walk(n, func(*Node, string, int) bool {
		count++
		return true
	})
	return count
}
