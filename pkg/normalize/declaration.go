package normalize

import (
	"github.com/matzehuels/typeshape/pkg/schema"
	"github.com/matzehuels/typeshape/pkg/typedoc"
)

// NormalizeDeclaration converts a top-level declaration such as a property,
// type alias, interface or method. Declarations with a type expression are
// dispatched on its kind. The rest are read structurally: members become an
// interface, an index signature an indexed object, signatures a function.
//
// The declaration's own generic parameters are in scope for its members.
func (nz *Normalizer) NormalizeDeclaration(decl *typedoc.RawNode, diagnostic string) (*schema.Node, error) {
	if decl == nil {
		return nil, nil
	}
	p := &pass{nz: nz, log: nz.opts.Logger, diagnostic: diagnostic}
	if kind := decl.TypeKind(); kind != "" {
		return p.normalize(kind, decl, NewScope(decl.TypeParameters...), 0)
	}
	return p.structural(decl, nil, 0)
}

// NormalizeDeclaration converts decl using the default lenient Normalizer.
func NormalizeDeclaration(decl *typedoc.RawNode, diagnostic string) (*schema.Node, error) {
	return defaultNormalizer.NormalizeDeclaration(decl, diagnostic)
}
