package evaluate

import "github.com/matzehuels/clonetree/pkg/phylo"

// CapacityMap maps a node ID to, per sample, the nearest proper ancestor
// whose children leave it spare frequency. Entries are nil where no such
// ancestor exists.
//
// The map is traversal state for one tree; nodes shared with other trees
// are never annotated.
type CapacityMap map[int][]*phylo.Node

// Ancestor returns the capacity ancestor of n in sample, or nil.
func (m CapacityMap) Ancestor(n *phylo.Node, sample int) *phylo.Node {
	anc := m[n.ID]
	if sample < 0 || sample >= len(anc) {
		return nil
	}
	return anc[sample]
}

// Capacity computes the capacity map of t by breadth-first traversal from
// the root. A child inherits its parent as capacity ancestor in a sample
// when the parent's AAF exceeds its children's sum there, and the parent's
// own capacity ancestor otherwise.
func Capacity(t *phylo.Tree, samples int) CapacityMap {
	m := make(CapacityMap)
	root := t.Root()
	if root == nil {
		return m
	}
	m[root.ID] = make([]*phylo.Node, samples)

	queue := []*phylo.Node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		cs := t.Children(n)
		for _, c := range cs {
			m[c.ID] = make([]*phylo.Node, samples)
		}
		for i := 0; i < samples; i++ {
			spare := childSum(cs, i) < n.AAF(i)
			for _, c := range cs {
				if spare {
					m[c.ID][i] = n
				} else {
					m[c.ID][i] = m[n.ID][i]
				}
			}
		}
		queue = append(queue, cs...)
	}
	return m
}
