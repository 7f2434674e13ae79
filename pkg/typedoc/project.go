package typedoc

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// ReadProject decodes a project file from r. The project root is an ordinary
// RawNode whose children are the top-level declarations.
func ReadProject(r io.Reader) (*RawNode, error) {
	var p RawNode
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}
	return &p, nil
}

// ParseProject decodes a project from an in-memory JSON document.
func ParseProject(data []byte) (*RawNode, error) {
	var p RawNode
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}
	return &p, nil
}

// LoadProject reads and decodes the project file at path.
func LoadProject(path string) (*RawNode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadProject(f)
}

// Index provides lookup of declarations by id and by dotted path.
// An Index is read-only after construction and safe for concurrent use.
type Index struct {
	byID   map[int]*RawNode
	byPath map[string]*RawNode
	paths  []string
}

// NewIndex walks root's children recursively and records every named
// declaration. The root itself is not addressable by path.
//
// Paths join declaration names with dots. Names that are not plain
// identifiers, such as module names, are quoted:
//
//	"@supabase/supabase-js".SupabaseClient.from
//
// When two declarations share a path the first one in source order wins.
func NewIndex(root *RawNode) *Index {
	idx := &Index{
		byID:   make(map[int]*RawNode),
		byPath: make(map[string]*RawNode),
	}
	if root == nil {
		return idx
	}
	if root.ID != 0 {
		idx.byID[root.ID] = root
	}
	for _, child := range root.Children {
		idx.add(child, "")
	}
	return idx
}

func (idx *Index) add(n *RawNode, prefix string) {
	if n == nil {
		return
	}
	if n.ID != 0 {
		if _, ok := idx.byID[n.ID]; !ok {
			idx.byID[n.ID] = n
		}
	}
	path := prefix
	if n.Name != "" {
		path = joinPath(prefix, n.Name)
		if _, ok := idx.byPath[path]; !ok {
			idx.byPath[path] = n
			idx.paths = append(idx.paths, path)
		}
	}
	for _, child := range n.Children {
		idx.add(child, path)
	}
	// Signatures and type parameters are addressable by id only.
	for _, sig := range n.Signatures {
		idx.addIDs(sig)
	}
	if n.IndexSignature != nil {
		idx.addIDs(n.IndexSignature)
	}
}

func (idx *Index) addIDs(n *RawNode) {
	if n == nil {
		return
	}
	if n.ID != 0 {
		if _, ok := idx.byID[n.ID]; !ok {
			idx.byID[n.ID] = n
		}
	}
	for _, p := range n.Parameters {
		idx.addIDs(p)
	}
}

// ByID returns the declaration with the given reflection id.
func (idx *Index) ByID(id int) (*RawNode, bool) {
	n, ok := idx.byID[id]
	return n, ok
}

// Lookup returns the declaration at a dotted path.
func (idx *Index) Lookup(path string) (*RawNode, bool) {
	n, ok := idx.byPath[path]
	return n, ok
}

// Declarations returns every addressable path in source order.
func (idx *Index) Declarations() []string {
	out := make([]string, len(idx.paths))
	copy(out, idx.paths)
	return out
}

// Len returns the number of addressable paths.
func (idx *Index) Len() int {
	return len(idx.paths)
}

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

func joinPath(prefix, name string) string {
	seg := name
	if !identRe.MatchString(name) {
		seg = `"` + strings.ReplaceAll(name, `"`, `'`) + `"`
	}
	if prefix == "" {
		return seg
	}
	return prefix + "." + seg
}
