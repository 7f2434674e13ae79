package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/typeshape/pkg/errors"
	"github.com/matzehuels/typeshape/pkg/pipeline"
	"github.com/matzehuels/typeshape/pkg/render"
	"github.com/matzehuels/typeshape/pkg/schema"
)

// renderCommand creates the render command for re-rendering a saved schema.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		detailed   bool
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "render [schema.json | record-id]",
		Short: "Render a normalized schema",
		Long: `Render a normalized schema to DOT, SVG, a text tree or JSON.

The argument is either a schema file written by 'normalize -f json' or the ID
of a schema stored with 'normalize --save'. Rendering is purely presentational;
use 'normalize' to go directly from a project to output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{
				Formats:  parseFormats(formatsStr),
				Detailed: detailed,
				Logger:   c.Logger,
			}
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): json (default), dot, svg, tree (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "add type expressions to diagram nodes")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	n, err := c.loadSchema(ctx, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, n, opts)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	loggerFromContext(ctx).Debug("rendered", "formats", opts.Formats, "cached", cacheHit)

	paths, err := writeArtifacts(c.out, artifacts, opts.Formats, output)
	if err != nil {
		return err
	}
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// loadSchema reads a schema from a file or, when input is a record ID, from
// the store.
func (c *CLI) loadSchema(ctx context.Context, input string) (*schema.Node, error) {
	if errors.ValidateRecordID(input) != nil {
		n, err := render.ImportJSON(input)
		if err != nil {
			return nil, fmt.Errorf("load schema %s: %w", input, err)
		}
		return n, nil
	}

	st, err := c.newStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	rec, err := st.Get(ctx, input)
	if err != nil {
		return nil, err
	}
	return rec.Schema, nil
}
