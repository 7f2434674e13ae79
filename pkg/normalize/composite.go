package normalize

import (
	"github.com/matzehuels/typeshape/pkg/schema"
	"github.com/matzehuels/typeshape/pkg/typedoc"
)

func (p *pass) intrinsic(node *typedoc.RawNode) *schema.Node {
	return withBody(node, &schema.Intrinsic{Name: node.Type.Name})
}

func (p *pass) literal(node *typedoc.RawNode) *schema.Node {
	return withBody(node, &schema.Literal{Value: node.Type.Value})
}

// array keeps the array even when its element cannot be normalized, so a
// list of an unsupported type still reads as a list.
func (p *pass) array(node *typedoc.RawNode, scope *Scope, depth int) (*schema.Node, error) {
	elem, err := p.child(node.Type.ElementType, scope.Push(node), depth)
	if err != nil {
		return nil, err
	}
	return withBody(node, &schema.Array{ElementType: elem}), nil
}

func (p *pass) union(node *typedoc.RawNode, scope *Scope, depth int) (*schema.Node, error) {
	types, err := p.children(node.Type.Types, scope.Push(node), depth)
	if err != nil {
		return nil, err
	}
	return withBody(node, &schema.Union{Types: types}), nil
}

func (p *pass) intersection(node *typedoc.RawNode, scope *Scope, depth int) (*schema.Node, error) {
	types, err := p.children(node.Type.Types, scope.Push(node), depth)
	if err != nil {
		return nil, err
	}
	return withBody(node, &schema.Intersection{Types: types}), nil
}

func (p *pass) indexedAccess(node *typedoc.RawNode, scope *Scope, depth int) (*schema.Node, error) {
	inner := scope.Push(node)
	obj, err := p.child(node.Type.ObjectType, inner, depth)
	if err != nil {
		return nil, err
	}
	idx, err := p.child(node.Type.IndexType, inner, depth)
	if err != nil {
		return nil, err
	}
	return withBody(node, &schema.IndexedAccess{ObjectType: obj, IndexType: idx}), nil
}

// typeOperator handles readonly and keyof. Other operators, and operands that
// cannot be normalized, make the whole node unsupported.
func (p *pass) typeOperator(node *typedoc.RawNode, scope *Scope, depth int) (*schema.Node, error) {
	op := node.Type.Operator
	if op != schema.OperatorReadonly && op != schema.OperatorKeyof {
		return nil, nil
	}
	inner, err := p.child(node.Type.Target, scope.Push(node), depth)
	if err != nil || inner == nil {
		return nil, err
	}
	return withBody(node, &schema.Operator{Operator: op, InnerType: inner}), nil
}
