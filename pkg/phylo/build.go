package phylo

import (
	"math"

	"github.com/matzehuels/clonetree/pkg/errors"
	"github.com/matzehuels/clonetree/pkg/mutation"
)

const (
	// DefaultErrorMargin is the AAF tolerance ε shared by edge orientation
	// and constraint checking.
	DefaultErrorMargin = 0.08

	// DefaultRootAAF is the germline root's AAF in every sample.
	DefaultRootAAF = 1.0
)

// BuildOptions configures constraint network construction.
// Zero values select the defaults.
type BuildOptions struct {
	// ErrorMargin is the AAF tolerance ε. Zero selects DefaultErrorMargin.
	ErrorMargin float64
	// RootAAF is the germline root's AAF. Zero selects DefaultRootAAF.
	RootAAF float64
	// KeepShortcuts adds level-pairing edges into nodes that already have a
	// parent among their own group's sub-populations, even when that
	// sibling is the closer ancestor.
	KeepShortcuts bool
	// AllLevels orients every pair of levels instead of adjacent ones only.
	AllLevels bool
}

// WithDefaults returns a copy of o with zero values replaced by defaults.
func (o BuildOptions) WithDefaults() BuildOptions {
	if o.ErrorMargin == 0 {
		o.ErrorMargin = DefaultErrorMargin
	}
	if o.RootAAF == 0 {
		o.RootAAF = DefaultRootAAF
	}
	return o
}

// Validate checks the options after defaults are applied.
func (o BuildOptions) Validate() error {
	if math.IsNaN(o.ErrorMargin) || o.ErrorMargin < 0 || o.ErrorMargin >= 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "error margin %v outside [0, 1)", o.ErrorMargin)
	}
	if math.IsNaN(o.RootAAF) || o.RootAAF <= 0 || o.RootAAF > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "root AAF %v outside (0, 1]", o.RootAAF)
	}
	return nil
}

// Build validates set and constructs its constraint network.
//
// Malformed input is rejected before any node is created. The returned graph
// satisfies the reachability invariant: every non-root node has at least one
// parent. A violation after repair is reported as an internal error wrapping
// [ErrDisconnected].
func Build(set *mutation.Set, opts BuildOptions) (*Graph, error) {
	if set == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mutation set is nil")
	}
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}

	g := NewGraph(set.NumSamples(), opts.RootAAF)
	g.set = set
	g.opts = opts

	for _, grp := range set.Groups {
		siblings := make([]*Node, len(grp.Clusters))
		for c := range grp.Clusters {
			siblings[c] = g.AddSubpopulation(grp, c)
		}
		for i := range siblings {
			for j := i + 1; j < len(siblings); j++ {
				g.CheckAndAddEdge(siblings[i], siblings[j])
			}
		}
	}

	g.pairLevels()
	if opts.AllLevels {
		g.AddHiddenEdges()
	}
	if err := g.repair(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "connectivity repair")
	}
	if err := g.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "connectivity repair")
	}
	return g, nil
}

// pairLevels orients every node of an occupied level against every node of
// the nearest occupied level below it.
//
// Unless KeepShortcuts is set, a node that already has a parent among its
// own group's sub-populations does not receive a parent that could also
// parent that sibling: the sibling is the closer ancestor. Parents from
// other groups that are incompatible with the sibling are kept.
func (g *Graph) pairLevels() {
	var siblings map[int][]*Node
	if !g.opts.KeepShortcuts {
		siblings = make(map[int][]*Node)
		for _, e := range g.edges {
			if e.From.Group != nil && e.From.Group == e.To.Group {
				siblings[e.To.ID] = append(siblings[e.To.ID], e.From)
			}
		}
	}

	for level := g.samples + 1; level > 1; level-- {
		upper := g.levels[level]
		if len(upper) == 0 {
			continue
		}
		lower := g.nextLevelBelow(level)
		if len(lower) == 0 {
			continue
		}
		for _, n1 := range upper {
			for _, n2 := range lower {
				r := Orient(n1, n2, g.samples, g.opts.ErrorMargin)
				if (r == RelationForward && g.shortcut(n1, siblings[n2.ID])) ||
					(r == RelationBackward && g.shortcut(n2, siblings[n1.ID])) {
					continue
				}
				g.addRelation(n1, n2, r)
			}
		}
	}
}

// shortcut reports whether p is, or could be, a parent of one of sibs.
func (g *Graph) shortcut(p *Node, sibs []*Node) bool {
	for _, s := range sibs {
		if p == s || g.HasEdge(p, s) || Orient(p, s, g.samples, g.opts.ErrorMargin) == RelationForward {
			return true
		}
	}
	return false
}

func (g *Graph) nextLevelBelow(level int) []*Node {
	for l := level - 1; l > 0; l-- {
		if ns := g.levels[l]; len(ns) > 0 {
			return ns
		}
	}
	return nil
}

// repair gives every parentless node a parent: the first compatible node two
// or more levels up, else the root. Only parent→child edges are added.
func (g *Graph) repair() error {
	root := g.Root()
	for _, n := range g.nodes[1:] {
		if len(g.in[n.ID]) > 0 {
			continue
		}
		parent := g.findParentAbove(n)
		if parent == nil {
			parent = root
		}
		if _, err := g.AddEdge(parent, n); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) findParentAbove(n *Node) *Node {
	for level := n.Level + 2; level <= g.samples+1; level++ {
		for _, p := range g.levels[level] {
			if Orient(p, n, g.samples, g.opts.ErrorMargin) == RelationForward {
				return p
			}
		}
	}
	return nil
}

// AddHiddenEdges orients every node pair across all occupied levels, not
// only adjacent ones. It returns the number of edges added.
func (g *Graph) AddHiddenEdges() int {
	before := len(g.edges)
	for hi := g.samples + 1; hi > 1; hi-- {
		upper := g.levels[hi]
		if len(upper) == 0 {
			continue
		}
		for lo := hi - 1; lo > 0; lo-- {
			for _, n1 := range upper {
				for _, n2 := range g.levels[lo] {
					g.CheckAndAddEdge(n1, n2)
				}
			}
		}
	}
	return len(g.edges) - before
}

// FixNetwork rebuilds the network from the robust groups of its input,
// preserving input order and build options. It is a full reconstruction.
func (g *Graph) FixNetwork() (*Graph, error) {
	if g.set == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "graph has no source mutation set")
	}
	return Build(g.set.Robust(), g.opts)
}
