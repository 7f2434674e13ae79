package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/typeshape/pkg/schema"
)

// WriteJSON encodes n as indented JSON and writes it to w.
// The output can be read back with [ReadJSON].
func WriteJSON(n *schema.Node, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(n); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes n to a JSON file at path.
func ExportJSON(n *schema.Node, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(n, f)
}

// ReadJSON decodes a schema previously written by [WriteJSON]. ReadJSON does
// not close r.
func ReadJSON(r io.Reader) (*schema.Node, error) {
	var n schema.Node
	if err := json.NewDecoder(r).Decode(&n); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &n, nil
}

// ImportJSON reads a schema from a JSON file at path.
func ImportJSON(path string) (*schema.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
