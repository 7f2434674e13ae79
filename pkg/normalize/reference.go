package normalize

import (
	"github.com/matzehuels/typeshape/pkg/errors"
	"github.com/matzehuels/typeshape/pkg/schema"
	"github.com/matzehuels/typeshape/pkg/typedoc"
)

// reference resolves a named type. The first applicable source wins:
//
//  1. a generic parameter of the nearest enclosing declaration that has any,
//  2. the pre-expanded dereferenced target,
//  3. an unresolved reference carrying the name and type arguments.
func (p *pass) reference(node *typedoc.RawNode, scope *Scope, depth int) (*schema.Node, error) {
	if out, ok, err := p.typeParam(node, scope, depth); ok || err != nil {
		return out, err
	}
	if out, err := p.dereferenced(node, scope, depth); out != nil || err != nil {
		return out, err
	}

	args, err := p.children(node.Type.TypeArguments, scope.Push(node), depth)
	if err != nil {
		return nil, err
	}
	out := withBody(node, &schema.Reference{TypeArguments: args})
	if out.Name == "" {
		out.Name = node.Type.Name
	}
	return out, nil
}

// typeParam substitutes a generic parameter. ok is false when the reference
// should fall through to the next source. A parameter with a concrete type
// always settles the reference, so an unsupported substitution omits the
// node rather than trying the dereferenced target.
func (p *pass) typeParam(node *typedoc.RawNode, scope *Scope, depth int) (*schema.Node, bool, error) {
	frame, params, found := scope.Nearest()
	if !found {
		return nil, false, nil
	}
	name := node.Type.Name
	param, ok := lookupParam(params, name)
	if !ok {
		if p.nz.opts.Strict && node.Type.RefersToTypeParameter {
			return nil, false, errors.New(errors.ErrCodeParamNotInScope,
				"type parameter %q is not declared by the nearest generic scope (%s)", name, p.diagnostic)
		}
		return nil, false, nil
	}

	switch {
	case param.Type != nil && param.Type.Kind != "":
		sub, err := p.normalize(param.Type.Kind, param.Type.Node(), frame, depth+1)
		if err != nil || sub == nil {
			return nil, true, err
		}
		return withBody(node, sub.Body), true, nil

	case param.Default != nil && param.Default.Kind != "":
		def, err := p.normalize(param.Default.Kind, param.Default.Node(), frame, depth+1)
		if err != nil {
			return nil, false, err
		}
		return withBody(node, &schema.TypeParamDefault{InnerType: def}), true, nil
	}

	p.log.Debug("type parameter has no substitution", "name", name, "at", p.diagnostic)
	return nil, false, nil
}

// dereferenced normalizes the pre-expanded target of a reference as though it
// stood in place of node, then stamps node's own metadata over the result.
// It returns nil when there is no usable target.
func (p *pass) dereferenced(node *typedoc.RawNode, scope *Scope, depth int) (*schema.Node, error) {
	target := node.Type.Dereferenced
	if target.IsEmpty() {
		return nil, nil
	}

	var (
		out *schema.Node
		err error
	)
	if kind := target.TypeKind(); kind != "" {
		out, err = p.normalize(kind, target, scope, depth+1)
	} else {
		out, err = p.structural(target, scope, depth+1)
	}
	if err != nil || out == nil {
		return nil, err
	}
	return overlay(out, metadataOf(node)), nil
}
