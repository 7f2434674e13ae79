package pipeline

import (
	"github.com/matzehuels/typeshape/pkg/cache"
	"github.com/matzehuels/typeshape/pkg/errors"
	"github.com/matzehuels/typeshape/pkg/typedoc"
)

// Project is a loaded documentation tree ready for normalization.
type Project struct {
	// Root is the parsed tree. Reference targets are embedded per
	// declaration by [Project.Resolve], not here.
	Root *typedoc.RawNode

	// Index addresses declarations in Root by path and id.
	Index *typedoc.Index

	// Hash is the content hash of the raw JSON.
	Hash string

	// DereferenceDepth bounds how deeply Resolve embeds reference targets.
	DereferenceDepth int
}

// Load parses data and indexes the result. A non-positive derefDepth uses
// the default when declarations are resolved.
func Load(data []byte, derefDepth int) (*Project, error) {
	root, err := typedoc.ParseProject(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse project")
	}
	return &Project{
		Root:             root,
		Index:            typedoc.NewIndex(root),
		Hash:             cache.Hash(data),
		DereferenceDepth: derefDepth,
	}, nil
}

// Resolve returns a copy of the declaration at path with the reference
// targets reachable from it embedded, and the number of distinct targets
// embedded.
func (p *Project) Resolve(path string) (*typedoc.RawNode, int, error) {
	raw, ok := p.Index.Lookup(path)
	if !ok {
		return nil, 0, errors.New(errors.ErrCodeDeclarationNotFound, "no declaration at %q", path)
	}
	decl, embedded := typedoc.DereferenceNode(p.Index, raw, typedoc.DereferenceOptions{MaxDepth: p.DereferenceDepth})
	return decl, embedded, nil
}

// Declaration is [Project.Resolve] without the embed count.
func (p *Project) Declaration(path string) (*typedoc.RawNode, error) {
	decl, _, err := p.Resolve(path)
	return decl, err
}
