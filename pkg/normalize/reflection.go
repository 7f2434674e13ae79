package normalize

import (
	"github.com/matzehuels/typeshape/pkg/schema"
	"github.com/matzehuels/typeshape/pkg/typedoc"
)

// reflection normalizes an anonymous structural type. The declaration is
// tried as an interface, then as an index signature, then as a function.
func (p *pass) reflection(node *typedoc.RawNode, scope *Scope, depth int) (*schema.Node, error) {
	decl := node.Type.Declaration
	if decl == nil {
		return nil, nil
	}
	body, err := p.structuralBody(decl, scope.Push(node), depth)
	if err != nil || body == nil {
		return nil, err
	}
	return withBody(node, body), nil
}

// structural normalizes a declaration that has no type expression of its
// own, keeping the declaration's metadata.
func (p *pass) structural(decl *typedoc.RawNode, scope *Scope, depth int) (*schema.Node, error) {
	if err := p.enter(decl, depth); err != nil {
		return nil, err
	}
	body, err := p.structuralBody(decl, scope, depth)
	if err != nil || body == nil {
		return nil, err
	}
	return withBody(decl, body), nil
}

func (p *pass) structuralBody(decl *typedoc.RawNode, scope *Scope, depth int) (schema.Body, error) {
	inner := scope.Push(decl)

	switch {
	case len(decl.Children) > 0:
		props, err := p.members(decl.Children, inner, depth)
		if err != nil {
			return nil, err
		}
		return &schema.Interface{Properties: props}, nil

	case decl.IndexSignature != nil:
		return p.indexSignature(decl.IndexSignature, inner, depth)

	case len(decl.Signatures) > 0:
		sigs := make([]*schema.Node, 0, len(decl.Signatures))
		for _, s := range decl.Signatures {
			sig, err := p.signature(s, inner, depth)
			if err != nil {
				return nil, err
			}
			if sig != nil {
				sigs = append(sigs, sig)
			}
		}
		return &schema.Function{Signatures: sigs}, nil
	}
	return nil, nil
}

func (p *pass) indexSignature(is *typedoc.RawNode, scope *Scope, depth int) (schema.Body, error) {
	inner := scope.Push(is)
	indexes, err := p.members(is.Parameters, inner, depth)
	if err != nil {
		return nil, err
	}
	value, err := p.child(is.Type, inner, depth)
	if err != nil {
		return nil, err
	}
	return &schema.IndexedObject{Indexes: indexes, Value: value}, nil
}

// signature normalizes one call signature. Signatures that declare a
// different kind, such as constructors, are skipped.
func (p *pass) signature(sig *typedoc.RawNode, scope *Scope, depth int) (*schema.Node, error) {
	if sig == nil {
		return nil, nil
	}
	if sig.KindString != "" && sig.KindString != typedoc.KindStringCallSignature {
		p.log.Debug("skipping signature", "kindString", sig.KindString, "name", sig.Name, "at", p.diagnostic)
		return nil, nil
	}
	inner := scope.Push(sig)
	params, err := p.members(sig.Parameters, inner, depth)
	if err != nil {
		return nil, err
	}
	returns, err := p.child(sig.Type, inner, depth)
	if err != nil {
		return nil, err
	}
	return withBody(sig, &schema.FunctionSignature{Parameters: params, Returns: returns}), nil
}
