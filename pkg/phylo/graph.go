package phylo

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/clonetree/pkg/mutation"
)

var (
	// ErrUnknownNode is returned by [Graph.AddEdge] when an endpoint does not
	// belong to the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrRootTarget is returned by [Graph.AddEdge] for edges into the root.
	// The germline root precedes every sub-population.
	ErrRootTarget = errors.New("edge points into the root")

	// ErrSelfLoop is returned by [Graph.AddEdge] when both endpoints are the
	// same node.
	ErrSelfLoop = errors.New("self loop")

	// ErrDisconnected is returned by [Build] when a node still has no parent
	// after connectivity repair. It indicates malformed input.
	ErrDisconnected = errors.New("node unreachable from root")
)

// Edge is a happened-before relation: From's mutations precede To's.
type Edge struct {
	From *Node
	To   *Node
}

func (e Edge) String() string { return fmt.Sprintf("%d -> %d", e.From.ID, e.To.ID) }

// Graph is the constraint network over the sub-populations of a mutation set.
//
// Nodes are indexed by ID and bucketed by level; edges are kept in insertion
// order and addressed by index, which is what the spanning tree enumerator
// uses to mask edges without mutating the graph.
//
// The zero value is not usable - use [Build] or [NewGraph].
type Graph struct {
	set     *mutation.Set
	opts    BuildOptions
	samples int

	nodes  []*Node
	levels map[int][]*Node
	edges  []Edge
	out    [][]int // node ID -> outgoing edge indices
	in     [][]int // node ID -> incoming edge indices
	index  map[[2]int]int
}

// NewGraph returns a graph holding only the germline root for the given
// sample count. Sub-population nodes are added by [Build].
func NewGraph(samples int, rootAAF float64) *Graph {
	g := &Graph{
		samples: samples,
		levels:  make(map[int][]*Node),
		index:   make(map[[2]int]int),
	}
	g.addNode(newRoot(samples, rootAAF))
	return g
}

func (g *Graph) addNode(n *Node) {
	n.ID = len(g.nodes)
	g.nodes = append(g.nodes, n)
	g.levels[n.Level] = append(g.levels[n.Level], n)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
}

// AddSubpopulation adds a node for cluster c of group and returns it.
func (g *Graph) AddSubpopulation(group *mutation.Group, c int) *Node {
	n := newSubpopulation(group, c)
	g.addNode(n)
	return n
}

// AddEdge adds the edge from→to. Adding an existing edge is a no-op and
// reports false.
func (g *Graph) AddEdge(from, to *Node) (bool, error) {
	if !g.owns(from) || !g.owns(to) {
		return false, ErrUnknownNode
	}
	if from == to {
		return false, ErrSelfLoop
	}
	if to.IsRoot() {
		return false, ErrRootTarget
	}
	key := [2]int{from.ID, to.ID}
	if _, ok := g.index[key]; ok {
		return false, nil
	}
	i := len(g.edges)
	g.edges = append(g.edges, Edge{From: from, To: to})
	g.index[key] = i
	g.out[from.ID] = append(g.out[from.ID], i)
	g.in[to.ID] = append(g.in[to.ID], i)
	return true, nil
}

func (g *Graph) owns(n *Node) bool {
	return n != nil && n.ID >= 0 && n.ID < len(g.nodes) && g.nodes[n.ID] == n
}

// Root returns the germline root.
func (g *Graph) Root() *Node { return g.nodes[0] }

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id int) *Node {
	if id < 0 || id >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// Nodes returns all nodes ordered by ID. The slice must not be modified.
func (g *Graph) Nodes() []*Node { return g.nodes }

// NodeCount returns the number of nodes including the root.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// SampleCount returns the global sample count N.
func (g *Graph) SampleCount() int { return g.samples }

// Set returns the mutation set the graph was built from.
func (g *Graph) Set() *mutation.Set { return g.set }

// Options returns the options the graph was built with.
func (g *Graph) Options() BuildOptions { return g.opts }

// NodesAtLevel returns the nodes of a level in insertion order.
func (g *Graph) NodesAtLevel(level int) []*Node { return g.levels[level] }

// Levels returns the occupied levels in descending order, root first.
func (g *Graph) Levels() []int {
	ls := slices.Sorted(maps.Keys(g.levels))
	slices.Reverse(ls)
	return ls
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// EdgeAt returns the edge with index i.
func (g *Graph) EdgeAt(i int) Edge { return g.edges[i] }

// OutEdges returns the indices of the edges leaving node id, in insertion
// order. The slice must not be modified.
func (g *Graph) OutEdges(id int) []int { return g.out[id] }

// InEdges returns the indices of the edges entering node id, in insertion
// order. The slice must not be modified.
func (g *Graph) InEdges(id int) []int { return g.in[id] }

// HasEdge reports whether the edge from→to exists.
func (g *Graph) HasEdge(from, to *Node) bool {
	_, ok := g.index[[2]int{from.ID, to.ID}]
	return ok
}

// Children returns the targets of n's outgoing edges.
func (g *Graph) Children(n *Node) []*Node {
	out := make([]*Node, 0, len(g.out[n.ID]))
	for _, i := range g.out[n.ID] {
		out = append(out, g.edges[i].To)
	}
	return out
}

// Parents returns the sources of n's incoming edges.
func (g *Graph) Parents(n *Node) []*Node {
	out := make([]*Node, 0, len(g.in[n.ID]))
	for _, i := range g.in[n.ID] {
		out = append(out, g.edges[i].From)
	}
	return out
}

// InDegree returns the number of edges entering n.
func (g *Graph) InDegree(n *Node) int { return len(g.in[n.ID]) }

// OutDegree returns the number of edges leaving n.
func (g *Graph) OutDegree(n *Node) int { return len(g.out[n.ID]) }

// Groups returns the distinct groups of the graph's nodes in node order.
func (g *Graph) Groups() []*mutation.Group {
	var groups []*mutation.Group
	for _, n := range g.nodes {
		if n.Group != nil && !slices.Contains(groups, n.Group) {
			groups = append(groups, n.Group)
		}
	}
	return groups
}

// Validate checks that every non-root node has a parent.
func (g *Graph) Validate() error {
	for _, n := range g.nodes[1:] {
		if len(g.in[n.ID]) == 0 {
			return fmt.Errorf("%w: node %d (%s)", ErrDisconnected, n.ID, n.Label())
		}
	}
	return nil
}

// String returns a text dump of the graph: nodes by level, then edges.
func (g *Graph) String() string {
	var b strings.Builder
	b.WriteString("--- CONSTRAINT GRAPH ---\n")
	fmt.Fprintf(&b, "nodes = %d, edges = %d\n", len(g.nodes), len(g.edges))
	b.WriteString("NODES:\n")
	for level := g.samples + 1; level >= 1; level-- {
		fmt.Fprintf(&b, "level = %d:\n", level)
		ns := g.levels[level]
		if len(ns) == 0 {
			b.WriteString("EMPTY\n")
			continue
		}
		for _, n := range ns {
			b.WriteString(n.String())
			b.WriteByte('\n')
		}
	}
	b.WriteString("EDGES:\n")
	for _, e := range g.edges {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}
