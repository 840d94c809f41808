package phylo

// Relation is the outcome of orienting a node pair.
type Relation int

const (
	// RelationNone means neither direction is compatible with the data.
	// This is a valid network state, not an error.
	RelationNone Relation = -1
	// RelationForward means n1 happened before n2.
	RelationForward Relation = 0
	// RelationBackward means n2 happened before n1.
	RelationBackward Relation = 1
)

func (r Relation) String() string {
	switch r {
	case RelationForward:
		return "forward"
	case RelationBackward:
		return "backward"
	default:
		return "none"
	}
}

// Orient decides the happened-before direction between n1 and n2, where n1
// is at an equal or higher level than n2.
//
// A sample leaf n2 is a child of n1 exactly when n1 occurs in the leaf's
// sample. Otherwise each direction is scored over all samples: the tentative
// parent must reach the child's AAF minus margin in every sample, and a
// parent absent from a sample the child occurs in ends the scan for that
// direction. If both directions hold, the one with the strictly lower
// accumulated AAF excess wins and ties favor n1→n2.
func Orient(n1, n2 *Node, samples int, margin float64) Relation {
	if n2.IsLeaf() {
		if n1.AAF(n2.SampleID) > 0 {
			return RelationForward
		}
		return RelationNone
	}

	comp12, err12 := compatibility(n1, n2, samples, margin)
	comp21, err21 := compatibility(n2, n1, samples, margin)
	full12, full21 := comp12 == samples, comp21 == samples

	switch {
	case full12 && full21:
		if err21 < err12 {
			return RelationBackward
		}
		return RelationForward
	case full12:
		return RelationForward
	case full21:
		return RelationBackward
	}
	return RelationNone
}

// compatibility counts the samples in which parent can precede child and
// sums the AAF by which child exceeds parent.
func compatibility(parent, child *Node, samples int, margin float64) (count int, excess float64) {
	for i := 0; i < samples; i++ {
		p, c := parent.AAF(i), child.AAF(i)
		if p == 0 && c != 0 {
			break
		}
		if p >= c-margin {
			count++
		}
		if p < c {
			excess += c - p
		}
	}
	return count, excess
}

// CheckAndAddEdge orients n1 and n2 with the graph's error margin and adds
// the resulting edge. Relations that would point into the root are dropped
// and reported as [RelationNone].
func (g *Graph) CheckAndAddEdge(n1, n2 *Node) Relation {
	return g.addRelation(n1, n2, Orient(n1, n2, g.samples, g.opts.ErrorMargin))
}

func (g *Graph) addRelation(n1, n2 *Node, r Relation) Relation {
	var err error
	switch r {
	case RelationForward:
		_, err = g.AddEdge(n1, n2)
	case RelationBackward:
		_, err = g.AddEdge(n2, n1)
	}
	if err != nil {
		return RelationNone
	}
	return r
}
