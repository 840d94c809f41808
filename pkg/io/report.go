package io

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/matzehuels/clonetree/pkg/errors"
	"github.com/matzehuels/clonetree/pkg/phylo"
	"github.com/matzehuels/clonetree/pkg/phylo/evaluate"
)

// Report is the serialized outcome of one reconstruction.
type Report struct {
	RunID   string   `json:"run_id,omitempty"`
	Samples []string `json:"samples"`

	Nodes []NodeInfo `json:"nodes"`
	Edges []EdgeInfo `json:"edges"`

	// Enumerated counts spanning trees before filtering.
	Enumerated int  `json:"enumerated"`
	Truncated  bool `json:"truncated,omitempty"`
	// Rebuilt is set when the network was rebuilt from robust groups.
	Rebuilt bool `json:"rebuilt,omitempty"`

	Stats    evaluate.ScoreStats `json:"stats"`
	Trees    []TreeInfo          `json:"trees"`
	Lineages []LineageInfo       `json:"lineages,omitempty"`
}

// NodeInfo describes one network node.
type NodeInfo struct {
	ID      int    `json:"id"`
	Label   string `json:"label"`
	Level   int    `json:"level"`
	Tag     string `json:"tag,omitempty"`
	Cluster int    `json:"cluster,omitempty"`
}

// EdgeInfo is a network or tree edge by node ID.
type EdgeInfo struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// TreeInfo is one ranked tree.
type TreeInfo struct {
	Rank  int        `json:"rank"`
	Score float64    `json:"score"`
	Edges []EdgeInfo `json:"edges"`
}

// LineageInfo is the lineage text of one sample in the best tree.
type LineageInfo struct {
	Sample string `json:"sample"`
	Text   string `json:"text"`
}

// NewReport describes g and the ranked trees. Lineages are rendered for the
// first tree, which callers pass in best-first order.
func NewReport(g *phylo.Graph, trees []*phylo.Tree) *Report {
	set := g.Set()
	r := &Report{
		Nodes: make([]NodeInfo, 0, g.NodeCount()),
		Edges: edgeInfos(g.Edges()),
		Stats: evaluate.Stats(trees),
		Trees: make([]TreeInfo, 0, len(trees)),
	}
	for i := 0; i < g.SampleCount(); i++ {
		name := "sample" + strconv.Itoa(i)
		if set != nil {
			name = set.SampleName(i)
		}
		r.Samples = append(r.Samples, name)
	}
	for _, n := range g.Nodes() {
		info := NodeInfo{ID: n.ID, Label: n.Label(), Level: n.Level}
		if n.Group != nil {
			info.Tag = n.Group.Tag
			info.Cluster = n.Cluster
		}
		r.Nodes = append(r.Nodes, info)
	}
	for i, t := range trees {
		r.Trees = append(r.Trees, TreeInfo{Rank: i + 1, Score: t.ErrorScore(), Edges: edgeInfos(t.Edges())})
	}
	if len(trees) > 0 {
		for i, name := range r.Samples {
			r.Lineages = append(r.Lineages, LineageInfo{Sample: name, Text: trees[0].Lineage(i, name)})
		}
	}
	return r
}

func edgeInfos(edges []phylo.Edge) []EdgeInfo {
	out := make([]EdgeInfo, len(edges))
	for i, e := range edges {
		out[i] = EdgeInfo{From: e.From.ID, To: e.To.ID}
	}
	return out
}

// Tree rebuilds ranked tree i against g, which must be built from the same
// input and options as the report.
func (r *Report) Tree(g *phylo.Graph, i int) (*phylo.Tree, error) {
	if i < 0 || i >= len(r.Trees) {
		return nil, errors.New(errors.ErrCodeNotFound, "tree %d not in report (%d trees)", i+1, len(r.Trees))
	}
	t := phylo.NewTree(g.SampleCount())
	t.AddNode(g.Root())
	for _, e := range r.Trees[i].Edges {
		from, to := g.Node(e.From), g.Node(e.To)
		if from == nil || to == nil || !g.HasEdge(from, to) {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "tree %d edge %d -> %d not in network", i+1, e.From, e.To)
		}
		t.AddEdge(from, to)
	}
	return t, nil
}

// WriteReport encodes r as indented JSON.
func WriteReport(r *Report, w io.Writer) error {
	return encode(r, w)
}

// ReadReport decodes a report written by [WriteReport].
func ReadReport(rd io.Reader) (*Report, error) {
	var r Report
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode report")
	}
	return &r, nil
}
