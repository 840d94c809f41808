package spanning

import (
	"context"
	"slices"

	"github.com/matzehuels/clonetree/pkg/errors"
	"github.com/matzehuels/clonetree/pkg/phylo"
)

// DefaultProgressEvery is how many trees pass between progress callbacks
// when Options.ProgressEvery is zero.
const DefaultProgressEvery = 10000

// cancelCheckEvery is how many grow steps pass between context checks.
const cancelCheckEvery = 1024

// Options bounds and observes an enumeration. The zero value enumerates
// everything silently.
type Options struct {
	// MaxTrees stops enumeration once this many trees are recorded.
	// Zero means no limit.
	MaxTrees int

	// Progress, when set, is called with the running tree count every
	// ProgressEvery trees.
	Progress func(count int)

	// ProgressEvery defaults to DefaultProgressEvery.
	ProgressEvery int
}

// Result holds the enumerated trees.
type Result struct {
	// Trees are complete arborescences in enumeration order.
	Trees []*phylo.Tree
	// Truncated is set when a tree budget or the context stopped the run
	// early. The trees found so far are still valid and distinct.
	Truncated bool
}

type enumerator struct {
	ctx   context.Context
	g     *phylo.Graph
	opts  Options
	steps int

	active   []bool
	frontier []int
	tree     *phylo.Tree
	last     *phylo.Tree

	trees   []*phylo.Tree
	stopped bool
}

// Enumerate returns every spanning arborescence of g rooted at its root.
//
// A graph holding only the root yields an empty result. Hitting the tree
// budget or a cancelled context is not an error: the partial result is
// returned with Truncated set. A nil ctx never cancels.
func Enumerate(ctx context.Context, g *phylo.Graph, opts Options) (*Result, error) {
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "graph is nil")
	}
	if opts.MaxTrees < 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "max trees must not be negative")
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = DefaultProgressEvery
	}
	if ctx == nil {
		ctx = context.Background()
	}

	res := &Result{}
	if g.NodeCount() <= 1 {
		return res, nil
	}

	e := &enumerator{
		ctx:    ctx,
		g:      g,
		opts:   opts,
		active: make([]bool, g.EdgeCount()),
		tree:   phylo.NewTree(g.SampleCount()),
	}
	for i := range e.active {
		e.active[i] = true
	}
	root := g.Root()
	e.tree.AddNode(root)
	e.frontier = slices.Clone(g.OutEdges(root.ID))

	e.grow()

	res.Trees = e.trees
	res.Truncated = e.stopped
	return res, nil
}

func (e *enumerator) grow() {
	if e.steps%cancelCheckEvery == 0 && e.ctx.Err() != nil {
		e.stopped = true
	}
	e.steps++
	if e.stopped {
		return
	}
	if e.tree.NodeCount() == e.g.NodeCount() {
		e.record()
		return
	}

	var taken []int
	for len(e.frontier) > 0 {
		top := len(e.frontier) - 1
		ei := e.frontier[top]
		e.frontier = e.frontier[:top]
		saved := slices.Clone(e.frontier)

		edge := e.g.EdgeAt(ei)
		v := edge.To
		e.tree.AddEdge(edge.From, v)

		for _, oi := range e.g.OutEdges(v.ID) {
			if e.active[oi] && !e.tree.ContainsNode(e.g.EdgeAt(oi).To) {
				e.frontier = append(e.frontier, oi)
			}
		}
		e.frontier = slices.DeleteFunc(e.frontier, func(fi int) bool {
			return e.g.EdgeAt(fi).To == v
		})

		e.grow()

		e.frontier = saved
		e.tree.RemoveEdge(edge.From, v)
		e.active[ei] = false
		taken = append(taken, ei)

		if e.stopped || e.bridge(v) {
			break
		}
	}

	for i := len(taken) - 1; i >= 0; i-- {
		e.active[taken[i]] = true
		e.frontier = append(e.frontier, taken[i])
	}
}

// bridge reports whether every remaining edge into v comes from a
// descendant of v in the last recorded tree. Such edges cannot give v a new
// parent in any tree not yet produced, so the current level is exhausted.
func (e *enumerator) bridge(v *phylo.Node) bool {
	if e.last == nil {
		return true
	}
	for _, ii := range e.g.InEdges(v.ID) {
		if !e.active[ii] {
			continue
		}
		if !e.last.IsDescendant(v, e.g.EdgeAt(ii).From) {
			return false
		}
	}
	return true
}

func (e *enumerator) record() {
	e.last = e.tree.Clone()
	e.trees = append(e.trees, e.last)
	n := len(e.trees)
	if e.opts.Progress != nil && n%e.opts.ProgressEvery == 0 {
		e.opts.Progress(n)
	}
	if e.opts.MaxTrees > 0 && n >= e.opts.MaxTrees {
		e.stopped = true
	}
}
