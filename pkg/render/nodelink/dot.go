package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/clonetree/pkg/errors"
	"github.com/matzehuels/clonetree/pkg/phylo"
	"github.com/matzehuels/clonetree/pkg/render"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds per-sample AAF values to node labels.
	Detailed bool
	// Samples attaches sample leaves to tree diagrams.
	Samples bool
}

const header = `digraph G {
  rankdir=TB;
  bgcolor="transparent";
  node [shape=box, style="rounded,filled", fillcolor=white, fontsize=18, margin="0.2,0.1"];
  ranksep=0.5;
  nodesep=0.3;

`

// GraphDOT converts a constraint network to Graphviz DOT. Nodes of a level
// share a rank.
func GraphDOT(g *phylo.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString(header)

	for _, level := range g.Levels() {
		buf.WriteString("  { rank=same;")
		for _, n := range g.NodesAtLevel(level) {
			fmt.Fprintf(&buf, " n%d;", n.ID)
		}
		buf.WriteString(" }\n")
	}
	for _, n := range g.Nodes() {
		writeNode(&buf, n, g.SampleCount(), opts)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  n%d -> n%d;\n", e.From.ID, e.To.ID)
	}
	buf.WriteString("}\n")
	return buf.String()
}

// TreeDOT converts a lineage tree to Graphviz DOT. With Options.Samples set,
// one ellipse per sample hangs below the deepest nodes occurring in it,
// labelled from names.
func TreeDOT(t *phylo.Tree, names []string, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString(header)

	for _, n := range t.Nodes() {
		writeNode(&buf, n, t.SampleCount(), opts)
	}
	buf.WriteString("\n")
	for _, e := range t.Edges() {
		fmt.Fprintf(&buf, "  n%d -> n%d;\n", e.From.ID, e.To.ID)
	}

	if opts.Samples {
		buf.WriteString("\n")
		for i := 0; i < t.SampleCount(); i++ {
			name := "sample " + strconv.Itoa(i)
			if i < len(names) && names[i] != "" {
				name = names[i]
			}
			fmt.Fprintf(&buf, "  s%d [label=%q, shape=ellipse, fillcolor=lightgrey];\n", i, name)
			for _, p := range t.SampleParents(i) {
				fmt.Fprintf(&buf, "  n%d -> s%d [style=dashed];\n", p.ID, i)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, n *phylo.Node, samples int, opts Options) {
	attrs := []string{fmt.Sprintf("label=%q", label(n, samples, opts.Detailed))}
	if n.IsRoot() {
		attrs = append(attrs, "fillcolor=lightyellow")
	} else if n.Group != nil && !n.Group.Robust {
		attrs = append(attrs, `style="rounded,filled,dashed"`)
	}
	fmt.Fprintf(buf, "  n%d [%s];\n", n.ID, strings.Join(attrs, ", "))
}

func label(n *phylo.Node, samples int, detailed bool) string {
	if !detailed || n.IsRoot() {
		return n.Label()
	}
	parts := make([]string, 0, samples)
	for i := 0; i < samples; i++ {
		if n.Contains(i) {
			parts = append(parts, fmt.Sprintf("%d: %.2f", i, n.AAF(i)))
		}
	}
	size := n.Group.Clusters[n.Cluster].Size
	if size > 0 {
		return fmt.Sprintf("%s (%d)\n%s", n.Label(), size, strings.Join(parts, "\n"))
	}
	return n.Label() + "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return Render(ctx, dot, render.FormatSVG)
}

// Render renders DOT source in the given format. FormatDOT returns the
// source unchanged.
func Render(ctx context.Context, dot string, format render.Format) ([]byte, error) {
	var gvFormat graphviz.Format
	switch format {
	case render.FormatDOT:
		return []byte(dot), nil
	case render.FormatSVG:
		gvFormat = graphviz.SVG
	case render.FormatPNG:
		gvFormat = graphviz.PNG
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format %q", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if format == render.FormatSVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with a
// zero-origin viewBox so the diagram scales with its container.
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
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
