package phylo

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Tree is an arborescence over constraint network nodes.
//
// Nodes keep their insertion order and each node has at most one parent.
// Nodes are shared with the graph; [Tree.Clone] copies structure only.
// A recorded tree is treated as immutable apart from its cached score.
type Tree struct {
	samples  int
	nodes    []*Node
	in       map[int]bool
	parent   map[int]*Node
	children map[int][]*Node

	score  float64
	scored bool
}

// NewTree returns an empty tree over nodes with the given sample count.
func NewTree(samples int) *Tree {
	return &Tree{
		samples:  samples,
		in:       make(map[int]bool),
		parent:   make(map[int]*Node),
		children: make(map[int][]*Node),
	}
}

// SampleCount returns the sample count used for scoring and lineages.
func (t *Tree) SampleCount() int { return t.samples }

// AddNode adds n if it is not already present.
func (t *Tree) AddNode(n *Node) {
	if t.in[n.ID] {
		return
	}
	t.in[n.ID] = true
	t.nodes = append(t.nodes, n)
	t.scored = false
}

// AddEdge makes from the parent of to. Both nodes are added if missing.
// An existing parent of to is replaced.
func (t *Tree) AddEdge(from, to *Node) {
	t.AddNode(from)
	t.AddNode(to)
	if old, ok := t.parent[to.ID]; ok {
		if old == from {
			return
		}
		t.detach(old, to)
	}
	t.parent[to.ID] = from
	t.children[from.ID] = append(t.children[from.ID], to)
	t.scored = false
}

// RemoveEdge removes from→to if present. The target is removed from the
// node set as it no longer has a parent.
func (t *Tree) RemoveEdge(from, to *Node) {
	if p, ok := t.parent[to.ID]; !ok || p != from {
		return
	}
	t.detach(from, to)
	delete(t.parent, to.ID)
	delete(t.in, to.ID)
	// The target is usually the most recent node during enumeration.
	if k := len(t.nodes) - 1; k >= 0 && t.nodes[k] == to {
		t.nodes = t.nodes[:k]
	} else if i := slices.Index(t.nodes, to); i >= 0 {
		t.nodes = slices.Delete(t.nodes, i, i+1)
	}
	t.scored = false
}

func (t *Tree) detach(from, to *Node) {
	cs := t.children[from.ID]
	if i := slices.Index(cs, to); i >= 0 {
		cs = slices.Delete(cs, i, i+1)
	}
	if len(cs) == 0 {
		delete(t.children, from.ID)
	} else {
		t.children[from.ID] = cs
	}
}

// ContainsNode reports whether n is in the tree.
func (t *Tree) ContainsNode(n *Node) bool { return t.in[n.ID] }

// ContainsEdge reports whether from is the parent of to.
func (t *Tree) ContainsEdge(from, to *Node) bool {
	p, ok := t.parent[to.ID]
	return ok && p == from
}

// Parent returns n's parent, or nil for the root and absent nodes.
func (t *Tree) Parent(n *Node) *Node { return t.parent[n.ID] }

// Children returns n's children in insertion order. The slice must not be
// modified.
func (t *Tree) Children(n *Node) []*Node { return t.children[n.ID] }

// Nodes returns the tree's nodes in insertion order. The slice must not be
// modified.
func (t *Tree) Nodes() []*Node { return t.nodes }

// NodeCount returns the number of nodes in the tree.
func (t *Tree) NodeCount() int { return len(t.nodes) }

// Root returns the first node added, or nil for an empty tree.
func (t *Tree) Root() *Node {
	if len(t.nodes) == 0 {
		return nil
	}
	return t.nodes[0]
}

// Edges returns the tree edges ordered by target insertion order.
func (t *Tree) Edges() []Edge {
	edges := make([]Edge, 0, len(t.parent))
	for _, n := range t.nodes {
		if p, ok := t.parent[n.ID]; ok {
			edges = append(edges, Edge{From: p, To: n})
		}
	}
	return edges
}

// IsDescendant reports whether w is a proper descendant of v.
func (t *Tree) IsDescendant(v, w *Node) bool {
	for p := t.parent[w.ID]; p != nil; p = t.parent[p.ID] {
		if p == v {
			return true
		}
	}
	return false
}

// Depth returns the number of edges between the root and n.
func (t *Tree) Depth(n *Node) int {
	d := 0
	for p := t.parent[n.ID]; p != nil; p = t.parent[p.ID] {
		d++
	}
	return d
}

// Clone returns a structural copy sharing the same nodes. The cached score
// is not carried over.
func (t *Tree) Clone() *Tree {
	c := &Tree{
		samples:  t.samples,
		nodes:    slices.Clone(t.nodes),
		in:       make(map[int]bool, len(t.in)),
		parent:   make(map[int]*Node, len(t.parent)),
		children: make(map[int][]*Node, len(t.children)),
	}
	for id := range t.in {
		c.in[id] = true
	}
	for id, p := range t.parent {
		c.parent[id] = p
	}
	for id, cs := range t.children {
		c.children[id] = slices.Clone(cs)
	}
	return c
}

// Key returns a canonical form of the edge set: two trees have the same key
// exactly when they have the same edges.
func (t *Tree) Key() string {
	edges := t.Edges()
	slices.SortFunc(edges, func(a, b Edge) int {
		return cmp.Or(cmp.Compare(a.From.ID, b.From.ID), cmp.Compare(a.To.ID, b.To.ID))
	})
	var b strings.Builder
	for i, e := range edges {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d>%d", e.From.ID, e.To.ID)
	}
	return b.String()
}

// SampleParents returns the nodes a leaf for sample attaches to when the
// tree is drawn: nodes occurring in the sample none of whose descendants
// also occur in it. A sample no sub-population occurs in attaches to the
// root.
func (t *Tree) SampleParents(sample int) []*Node {
	leaf := NewSampleLeaf(-1, sample)
	var present []*Node
	for _, n := range t.nodes {
		if !n.IsRoot() && Orient(n, leaf, t.samples, 0) == RelationForward {
			present = append(present, n)
		}
	}
	var parents []*Node
	for _, n := range present {
		deepest := true
		for _, m := range present {
			if m != n && t.IsDescendant(n, m) {
				deepest = false
				break
			}
		}
		if deepest {
			parents = append(parents, n)
		}
	}
	if len(parents) == 0 && len(t.nodes) > 0 {
		parents = append(parents, t.nodes[0])
	}
	return parents
}

func (t *Tree) String() string {
	var b strings.Builder
	b.WriteString("--- SPANNING TREE ---\n")
	for _, e := range t.Edges() {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}
