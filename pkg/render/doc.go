// Package render defines the output formats shared by the clonetree
// renderers.
//
// The [nodelink] subpackage draws constraint networks and lineage trees as
// Graphviz diagrams. This package only names the formats so the CLI and the
// HTTP API agree on them.
//
// [nodelink]: github.com/matzehuels/clonetree/pkg/render/nodelink
package render
