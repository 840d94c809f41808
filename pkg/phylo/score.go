package phylo

import "math"

// ErrorScore returns how far the tree deviates from the AAF sum constraint:
// the square root of the summed squared excess of children AAF over their
// parent's, over every internal node and sample. Lower is better; a tree
// with no excess scores 0.
//
// The score is computed on first call and cached.
func (t *Tree) ErrorScore() float64 {
	if !t.scored {
		t.score = t.computeErrorScore()
		t.scored = true
	}
	return t.score
}

func (t *Tree) computeErrorScore() float64 {
	var total float64
	for _, n := range t.nodes {
		cs := t.children[n.ID]
		if len(cs) == 0 {
			continue
		}
		for i := 0; i < t.samples; i++ {
			var sum float64
			for _, c := range cs {
				sum += c.AAF(i)
			}
			if excess := sum - n.AAF(i); excess > 0 {
				total += excess * excess
			}
		}
	}
	return math.Sqrt(total)
}
