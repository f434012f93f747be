package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/roomweaver/pkg/graph"
	"github.com/matzehuels/roomweaver/pkg/graph/decompose"
	"github.com/matzehuels/roomweaver/pkg/render"
	"github.com/matzehuels/roomweaver/pkg/shape"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds floor, group and tags to node labels.
	Detailed bool
}

// Palette colours chains in [ChainsDOT], cycling when there are more chains
// than colours.
var Palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// ToDOT converts a room graph to Graphviz DOT.
func ToDOT(g *graph.Graph, opts Options) string {
	return write(g, opts, func(buf *bytes.Buffer) {
		for _, e := range g.Edges() {
			fmt.Fprintf(buf, "  %d -- %d [%s];\n", e.From, e.To, strings.Join(edgeAttrs(e), ", "))
		}
	})
}

// ChainsDOT converts a room graph to DOT with every edge coloured and
// labelled by the chain that places it.
func ChainsDOT(g *graph.Graph, chains []decompose.Chain, opts Options) string {
	return write(g, opts, func(buf *bytes.Buffer) {
		for i, c := range chains {
			color := Palette[i%len(Palette)]
			for j, t := range c.Edges {
				attrs := append(edgeAttrs(t.Edge),
					fmt.Sprintf("color=%q", color),
					fmt.Sprintf("fontcolor=%q", color),
					fmt.Sprintf("label=\"%d.%d\"", i, j),
				)
				fmt.Fprintf(buf, "  %d -- %d [%s];\n", t.From(), t.To(), strings.Join(attrs, ", "))
			}
		}
	})
}

func write(g *graph.Graph, opts Options, edges func(*bytes.Buffer)) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=12];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %d [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	edges(&buf)
	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n *graph.Node, detailed bool) []string {
	label := n.Label()
	if detailed {
		parts := []string{label, fmt.Sprintf("floor: %d", n.Floor), "group: " + n.Group}
		if len(n.Tags) > 0 {
			parts = append(parts, "tags: "+strings.Join(n.Tags, ","))
		}
		label = strings.Join(parts, "\n")
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.Color != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", n.Color))
	}
	return attrs
}

func edgeAttrs(e *graph.Edge) []string {
	var attrs []string
	switch e.Direction {
	case shape.ForwardFixed, shape.ForwardFlexible:
		attrs = append(attrs, "dir=forward")
	case shape.ReverseFixed, shape.ReverseFlexible:
		attrs = append(attrs, "dir=back")
	}
	if e.MayHaveRoom() {
		attrs = append(attrs, "style=dashed")
	}
	if len(attrs) == 0 {
		attrs = append(attrs, "style=solid")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
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

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// viewBox so the SVG scales in browsers.
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

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
