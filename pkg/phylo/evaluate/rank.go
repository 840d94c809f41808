package evaluate

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/matzehuels/clonetree/pkg/phylo"
)

// Rank sorts trees in place by ascending error score. Equal scores keep
// their enumeration order.
func Rank(trees []*phylo.Tree) {
	slices.SortStableFunc(trees, func(a, b *phylo.Tree) int {
		return cmp.Compare(a.ErrorScore(), b.ErrorScore())
	})
}

// ScoreStats summarizes the error scores of a tree collection.
type ScoreStats struct {
	Count  int     `json:"count"`
	Best   float64 `json:"best"`
	Worst  float64 `json:"worst"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

// Stats computes score statistics. An empty collection yields the zero value.
func Stats(trees []*phylo.Tree) ScoreStats {
	if len(trees) == 0 {
		return ScoreStats{}
	}
	scores := make([]float64, len(trees))
	for i, t := range trees {
		scores[i] = t.ErrorScore()
	}
	s := ScoreStats{
		Count: len(scores),
		Best:  floats.Min(scores),
		Worst: floats.Max(scores),
	}
	if len(scores) > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(scores, nil)
	} else {
		s.Mean = scores[0]
	}
	return s
}
