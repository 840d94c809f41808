package evaluate

import (
	"github.com/matzehuels/clonetree/pkg/phylo"
)

// Violation describes one failed sum constraint.
type Violation struct {
	Node   *phylo.Node // Parent whose children exceed it
	Sample int         // Sample the constraint fails in
	Sum    float64     // Children AAF sum
	Limit  float64     // Parent AAF plus margin per child

	// Capacity is the nearest ancestor of Node with spare frequency in
	// Sample, or nil if there is none.
	Capacity *phylo.Node
}

// CheckAAFConstraints reports whether t satisfies the sum constraint: for
// every internal node n with children C and every sample i, the children's
// AAF sum stays strictly below n.AAF(i) + margin·|C|.
func CheckAAFConstraints(t *phylo.Tree, samples int, margin float64) bool {
	for _, n := range t.Nodes() {
		cs := t.Children(n)
		if len(cs) == 0 {
			continue
		}
		for i := 0; i < samples; i++ {
			if childSum(cs, i) >= limit(n, cs, i, margin) {
				return false
			}
		}
	}
	return true
}

// Violations lists every (node, sample) pair failing the sum constraint in
// tree order. A tree passing [CheckAAFConstraints] has none.
func Violations(t *phylo.Tree, samples int, margin float64) []Violation {
	var caps CapacityMap
	var out []Violation
	for _, n := range t.Nodes() {
		cs := t.Children(n)
		if len(cs) == 0 {
			continue
		}
		for i := 0; i < samples; i++ {
			sum, lim := childSum(cs, i), limit(n, cs, i, margin)
			if sum < lim {
				continue
			}
			if caps == nil {
				caps = Capacity(t, samples)
			}
			out = append(out, Violation{Node: n, Sample: i, Sum: sum, Limit: lim, Capacity: caps.Ancestor(n, i)})
		}
	}
	return out
}

func childSum(cs []*phylo.Node, sample int) float64 {
	var sum float64
	for _, c := range cs {
		sum += c.AAF(sample)
	}
	return sum
}

func limit(n *phylo.Node, cs []*phylo.Node, sample int, margin float64) float64 {
	return n.AAF(sample) + margin*float64(len(cs))
}

// Filter returns the trees passing [CheckAAFConstraints], keeping order.
// The input slice is not modified.
func Filter(trees []*phylo.Tree, samples int, margin float64) []*phylo.Tree {
	var out []*phylo.Tree
	for _, t := range trees {
		if CheckAAFConstraints(t, samples, margin) {
			out = append(out, t)
		}
	}
	return out
}
