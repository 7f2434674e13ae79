package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/typeshape/pkg/observability"
	"github.com/matzehuels/typeshape/pkg/render"
	"github.com/matzehuels/typeshape/pkg/schema"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, n *schema.Node, opts Options) (map[string][]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, err := renderFormats(ctx, n, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func renderFormats(ctx context.Context, n *schema.Node, opts Options) (map[string][]byte, error) {
	dotOpts := render.DOTOptions{Detailed: opts.Detailed}
	artifacts := make(map[string][]byte, len(opts.Formats))

	// SVG reuses the DOT source when both are requested.
	var dot string
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case render.FormatDOT, render.FormatSVG:
			if dot == "" {
				dot = render.ToDOT(n, dotOpts)
			}
			if format == render.FormatDOT {
				data = []byte(dot)
			} else {
				data, err = render.RenderSVG(ctx, dot)
			}
		default:
			data, err = render.Render(ctx, n, format, dotOpts)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
