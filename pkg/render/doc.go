// Package render turns normalized schemas into output documents.
//
// # Overview
//
// A [schema.Node] tree can be written as:
//
//   - JSON, the wire format renderers consume ([WriteJSON], [ReadJSON])
//   - Graphviz DOT, one box per node ([ToDOT])
//   - SVG, rendered in-process from DOT ([RenderSVG])
//   - a text outline for terminals ([Tree])
//
// [Render] selects one of these by format name:
//
//	out, err := render.Render(ctx, node, render.FormatSVG, render.DOTOptions{})
//
// [Describe] produces the one-line type expression used in labels.
//
// # Dependencies
//
// SVG output uses [github.com/goccy/go-graphviz], which embeds Graphviz as
// WebAssembly, so no system install is required. Outlines are drawn with
// [github.com/charmbracelet/lipgloss/tree].
package render
