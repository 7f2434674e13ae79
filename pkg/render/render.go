package render

import (
	"bytes"
	"context"

	"github.com/matzehuels/typeshape/pkg/errors"
	"github.com/matzehuels/typeshape/pkg/schema"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatTree = "tree"
)

// Formats lists every supported output format.
var Formats = []string{FormatJSON, FormatDOT, FormatSVG, FormatTree}

var contentTypes = map[string]string{
	FormatJSON: "application/json",
	FormatDOT:  "text/vnd.graphviz",
	FormatSVG:  "image/svg+xml",
	FormatTree: "text/plain; charset=utf-8",
}

// ContentType returns the MIME type for format, or application/octet-stream
// for unknown formats.
func ContentType(format string) string {
	if ct, ok := contentTypes[format]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Render encodes n in the given format.
func Render(ctx context.Context, n *schema.Node, format string, opts DOTOptions) ([]byte, error) {
	if err := errors.ValidateFormat(format, Formats); err != nil {
		return nil, err
	}
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		if err := WriteJSON(n, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatDOT:
		return []byte(ToDOT(n, opts)), nil
	case FormatSVG:
		return RenderSVG(ctx, ToDOT(n, opts))
	default:
		return []byte(Tree(n) + "\n"), nil
	}
}
