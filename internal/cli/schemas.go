package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/typeshape/pkg/render"
	"github.com/matzehuels/typeshape/pkg/store"
)

// schemasCommand creates the command group for stored schemas.
func (c *CLI) schemasCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schemas",
		Short: "Manage schemas saved with 'normalize --save'",
	}

	cmd.AddCommand(c.schemasListCommand())
	cmd.AddCommand(c.schemasShowCommand())
	cmd.AddCommand(c.schemasDeleteCommand())

	return cmd
}

func (c *CLI) schemasListCommand() *cobra.Command {
	var opts store.ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored schemas, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.newStore(cmd.Context())
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			recs, err := st.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				printInfo("No stored schemas")
				return nil
			}

			rows := make([][]string, len(recs))
			for i, r := range recs {
				rows[i] = []string{r.ID, r.Declaration, r.Schema.Kind(), r.CreatedAt.Local().Format(time.DateTime)}
			}
			fmt.Fprintln(c.out, renderTable([]string{"ID", "Declaration", "Kind", "Created"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Declaration, "declaration", "", "only show schemas for this declaration path")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of schemas to show")
	return cmd
}

func (c *CLI) schemasShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Print a stored schema as a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.newStore(cmd.Context())
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			rec, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printInfo("%s %s", StyleHighlight.Render(rec.Declaration), StyleDim.Render(rec.CreatedAt.Local().Format(time.DateTime)))
			fmt.Fprintln(c.out, render.Tree(rec.Schema))
			return nil
		},
	}
}

func (c *CLI) schemasDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a stored schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.newStore(cmd.Context())
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			if err := st.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
	}
}
