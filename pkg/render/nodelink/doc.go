// Package nodelink renders constraint networks and lineage trees as
// node-link diagrams.
//
// # Usage
//
// Convert a graph or tree to DOT, then render it:
//
//	dot := nodelink.GraphDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
//	dot = nodelink.TreeDOT(t, set.SampleNames, nodelink.Options{Samples: true})
//	png, err := nodelink.Render(ctx, dot, render.FormatPNG)
//
// # Layout
//
// Network diagrams place every level on its own rank, root on top. Tree
// diagrams optionally attach one leaf per sample below the deepest
// sub-populations occurring in it.
//
// # Dependencies
//
// Rendering runs Graphviz in-process through [github.com/goccy/go-graphviz].
package nodelink
