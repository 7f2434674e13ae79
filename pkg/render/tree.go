package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss/tree"

	"github.com/matzehuels/typeshape/pkg/schema"
)

// Tree renders n as an indented outline, one line per node:
//
//	from: function
//	└── from: functionSignature
//	    ├── table: string
//	    └── returns: QueryBuilder interface
//	        └── url: string
//
// Leaves show their type expression; containers show their kind.
func Tree(n *schema.Node) string {
	if n == nil {
		return ""
	}
	return buildTree(n, "").String()
}

func buildTree(n *schema.Node, edge string) *tree.Tree {
	t := tree.Root(treeLabel(n, edge))
	for _, e := range n.Children() {
		if len(e.Node.Children()) == 0 {
			t.Child(treeLabel(e.Node, e.Label))
			continue
		}
		t.Child(buildTree(e.Node, e.Label))
	}
	return t
}

func treeLabel(n *schema.Node, edge string) string {
	var desc string
	if len(n.Children()) == 0 {
		desc = Describe(n)
	} else {
		desc = n.Kind()
	}

	name := n.Name
	if edge != "" && !isIndexed(edge) {
		if name != "" && !strings.HasPrefix(desc, name) {
			desc = name + " " + desc
		}
		name = edge
	}
	if name == "" {
		name = edge
	}
	if name == "" {
		return desc
	}
	if n.IsOptional != nil && *n.IsOptional {
		name += "?"
	}
	return name + ": " + desc
}

// isIndexed reports whether edge names a list position such as "types[0]".
func isIndexed(edge string) bool {
	return len(edge) > 0 && edge[len(edge)-1] == ']'
}
