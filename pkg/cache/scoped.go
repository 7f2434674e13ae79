package cache

// ScopedKeyer wraps a Keyer with a prefix so that several tenants can share
// one backend. The HTTP server scopes keys per API version:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SchemaKey generates a prefixed schema key.
func (k *ScopedKeyer) SchemaKey(projectHash, declaration string, opts SchemaKeyOpts) string {
	return k.prefix + k.inner.SchemaKey(projectHash, declaration, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(schemaHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(schemaHash, opts)
}
