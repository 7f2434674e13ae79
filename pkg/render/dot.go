package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/typeshape/pkg/schema"
)

// DOTOptions configures diagram generation.
type DOTOptions struct {
	// Detailed adds the one-line type expression under each node's kind.
	Detailed bool
}

// ToDOT converts a schema tree to Graphviz DOT with one box per node and an
// arrow per parent-child link, labelled with the field the child sits in.
// The result can be rendered with [RenderSVG].
func ToDOT(n *schema.Node, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10, fontcolor=grey40];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	var edges []string
	next := 0
	var visit func(n *schema.Node) string
	visit = func(n *schema.Node) string {
		id := fmt.Sprintf("n%d", next)
		next++
		fmt.Fprintf(&buf, "  %s [%s];\n", id, strings.Join(fmtAttrs(n, opts.Detailed), ", "))
		for _, e := range n.Children() {
			child := visit(e.Node)
			edges = append(edges, fmt.Sprintf("  %s -> %s [label=%q];\n", id, child, e.Label))
		}
		return id
	}
	if n != nil {
		visit(n)
	}

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *schema.Node, detailed bool) string {
	kind := n.Kind()
	if kind == "" {
		kind = "unknown"
	}
	label := kind
	if n.Name != "" {
		label = n.Name + "\n" + kind
	}
	if detailed && n.Body != nil {
		label += "\n" + Describe(n)
	}
	return label
}

func fmtAttrs(n *schema.Node, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, detailed))}
	if n.IsOptional != nil && *n.IsOptional {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	switch n.Body.(type) {
	case *schema.Reference:
		attrs = append(attrs, "fillcolor=lightyellow")
	case *schema.Interface, *schema.IndexedObject:
		attrs = append(attrs, "fillcolor=aliceblue")
	case *schema.Function, *schema.FunctionSignature:
		attrs = append(attrs, "fillcolor=honeydew")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales from the
// origin at its natural size.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
