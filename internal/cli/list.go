package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/typeshape/pkg/pipeline"
	"github.com/matzehuels/typeshape/pkg/typedoc"
)

// declaration is one row of the list and browse views.
type declaration struct {
	Path string
	Kind string // kindString, e.g. "Method"
	Type string // type kind, or "structural" for declarations without one
}

// listCommand creates the list command that prints the declarations of a project.
func (c *CLI) listCommand() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list [project.json]",
		Short: "List the declarations of a documentation project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decls, err := loadDeclarations(cmd.Context(), args[0], filter)
			if err != nil {
				return err
			}
			if len(decls) == 0 {
				printWarning("No declarations match %q", filter)
				return nil
			}

			rows := make([][]string, len(decls))
			for i, d := range decls {
				rows[i] = []string{d.Path, d.Kind, d.Type}
			}
			fmt.Fprintln(c.out, renderTable([]string{"Declaration", "Kind", "Type"}, rows))
			printDetail("%d declarations", len(decls))
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "only show paths containing this text")
	return cmd
}

// loadDeclarations parses input and returns its declarations in source order.
func loadDeclarations(ctx context.Context, input, filter string) ([]declaration, error) {
	data, err := readInput(input)
	if err != nil {
		return nil, err
	}
	project, err := pipeline.Load(data, 0)
	if err != nil {
		return nil, err
	}
	loggerFromContext(ctx).Debug("loaded project", "declarations", project.Index.Len())
	return declarations(project.Index, filter), nil
}

func declarations(idx *typedoc.Index, filter string) []declaration {
	var out []declaration
	for _, path := range idx.Declarations() {
		if filter != "" && !strings.Contains(path, filter) {
			continue
		}
		n, _ := idx.Lookup(path)
		d := declaration{Path: path, Kind: n.KindString, Type: n.TypeKind()}
		if d.Kind == "" {
			d.Kind = "-"
		}
		if d.Type == "" {
			d.Type = "structural"
		}
		out = append(out, d)
	}
	return out
}
