package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/typeshape/pkg/pipeline"
	"github.com/matzehuels/typeshape/pkg/store"
)

// normalizeFlags holds the flags shared by normalize and browse.
type normalizeFlags struct {
	formats    string
	output     string
	strict     bool
	maxDepth   int
	maxNodes   int
	derefDepth int
	detailed   bool
	noCache    bool
	refresh    bool
	save       bool
}

func (f *normalizeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): json (default), dot, svg, tree (comma-separated)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail on type parameters missing from the nearest generic scope")
	cmd.Flags().IntVar(&f.maxDepth, "max-depth", 0, fmt.Sprintf("maximum nesting depth (default %d)", pipeline.DefaultMaxDepth))
	cmd.Flags().IntVar(&f.maxNodes, "max-nodes", 0, fmt.Sprintf("maximum schema size in nodes (default %d)", pipeline.DefaultMaxNodes))
	cmd.Flags().IntVar(&f.derefDepth, "deref-depth", 0, fmt.Sprintf("maximum nesting of embedded reference targets (default %d)", pipeline.DefaultDereferenceDepth))
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "add type expressions to diagram nodes")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().BoolVar(&f.save, "save", false, "store the schema for later retrieval")
}

// apply overlays explicitly set flags on the configured defaults.
func (f *normalizeFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	if cmd.Flags().Changed("strict") {
		opts.Strict = f.strict
	}
	if f.maxDepth != 0 {
		opts.MaxDepth = f.maxDepth
	}
	if f.maxNodes != 0 {
		opts.MaxNodes = f.maxNodes
	}
	if f.derefDepth != 0 {
		opts.DereferenceDepth = f.derefDepth
	}
	opts.Formats = parseFormats(f.formats)
	opts.Detailed = f.detailed
	opts.Refresh = f.refresh
}

// normalizeCommand creates the normalize command.
func (c *CLI) normalizeCommand() *cobra.Command {
	var flags normalizeFlags

	cmd := &cobra.Command{
		Use:   "normalize [project.json] [declaration]",
		Short: "Normalize one declaration of a documentation project",
		Long: `Normalize one declaration of a TypeDoc project into a schema.

The declaration is addressed by its dotted path, for example
"SupabaseClient.from". Use 'typeshape list' to see the available paths, or
'-' as the file name to read the project from stdin.

Without --output the result is written to stdout.`,
		Example: `  typeshape normalize docs.json SupabaseClient.from
  typeshape normalize docs.json SupabaseClient.from -f json,svg -o from
  typeshape normalize docs.json PostgrestBuilder.then --strict --save`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.baseOptions()
			if err != nil {
				return err
			}
			flags.apply(cmd, &opts)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runNormalize(cmd.Context(), args[0], args[1], opts, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) runNormalize(ctx context.Context, input, declaration string, opts pipeline.Options, flags normalizeFlags) error {
	data, err := readInput(input)
	if err != nil {
		return err
	}
	opts.Project = data
	opts.Source = input
	opts.Declaration = declaration

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}
	prog.done("Normalized " + declaration)

	paths, err := writeArtifacts(c.out, result.Artifacts, opts.Formats, flags.output)
	if err != nil {
		return err
	}
	if len(paths) > 0 {
		printSuccess("Wrote %s", declaration)
		for _, p := range paths {
			printFile(p)
		}
		printStats(result.Stats, result.CacheInfo)
	}

	if flags.save {
		return c.saveSchema(ctx, result)
	}
	return nil
}

// saveSchema stores result's schema and prints the record ID.
func (c *CLI) saveSchema(ctx context.Context, result *pipeline.Result) error {
	st, err := c.newStore(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	rec := store.New(result.Declaration, result.ProjectHash, result.Schema)
	if err := st.Put(ctx, rec); err != nil {
		return err
	}
	printSuccess("Saved schema %s", StyleHighlight.Render(rec.ID))
	printNextStep("Render it later", "typeshape render "+rec.ID+" -f svg")
	return nil
}
