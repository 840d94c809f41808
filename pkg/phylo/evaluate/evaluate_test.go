package evaluate

import (
	"math"
	"testing"

	"github.com/matzehuels/clonetree/pkg/mutation"
	"github.com/matzehuels/clonetree/pkg/phylo"
)

const margin = phylo.DefaultErrorMargin

type fixture struct {
	g     *phylo.Graph
	nodes []*phylo.Node
}

// newFixture adds one sub-population per centroid, each its own group
// occurring in every sample.
func newFixture(samples int, centroids ...[]float64) *fixture {
	g := phylo.NewGraph(samples, 1)
	f := &fixture{g: g, nodes: []*phylo.Node{g.Root()}}
	tag := mutation.TagFromSamples(allSamples(samples), samples)
	for _, c := range centroids {
		grp := mutation.NewGroup(tag, true, mutation.Cluster{Centroid: c, StdDev: make([]float64, len(c))})
		f.nodes = append(f.nodes, g.AddSubpopulation(grp, 0))
	}
	return f
}

func allSamples(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	return ids
}

func (f *fixture) tree(edges ...[2]int) *phylo.Tree {
	t := phylo.NewTree(f.g.SampleCount())
	t.AddNode(f.g.Root())
	for _, e := range edges {
		t.AddEdge(f.nodes[e[0]], f.nodes[e[1]])
	}
	return t
}

func TestCheckAAFConstraints(t *testing.T) {
	f := newFixture(2,
		[]float64{0.4, 0.3}, // 1
		[]float64{0.2, 0.1}, // 2
		[]float64{0.1, 0.1}, // 3
		[]float64{0.5, 0.1}, // 4
	)

	pass := f.tree([2]int{0, 1}, [2]int{1, 2}, [2]int{1, 3})
	if !CheckAAFConstraints(pass, 2, margin) {
		t.Error("consistent tree rejected")
	}
	if v := Violations(pass, 2, margin); len(v) != 0 {
		t.Errorf("Violations() = %v, want none", v)
	}

	// Only node 1 in sample 0 fails: 0.5 + 0.1 >= 0.4 + 2*0.08.
	fail := f.tree([2]int{0, 1}, [2]int{1, 4}, [2]int{1, 3})
	if CheckAAFConstraints(fail, 2, margin) {
		t.Error("violating tree accepted")
	}
	v := Violations(fail, 2, margin)
	if len(v) != 1 {
		t.Fatalf("len(Violations()) = %d, want 1", len(v))
	}
	if v[0].Node != f.nodes[1] || v[0].Sample != 0 {
		t.Errorf("violation at node %d sample %d, want node 1 sample 0", v[0].Node.ID, v[0].Sample)
	}
	if math.Abs(v[0].Sum-0.6) > 1e-9 || math.Abs(v[0].Limit-0.56) > 1e-9 {
		t.Errorf("violation sum/limit = %v/%v, want 0.6/0.56", v[0].Sum, v[0].Limit)
	}
	if v[0].Capacity != f.g.Root() {
		t.Errorf("capacity ancestor = %v, want root", v[0].Capacity)
	}
}

func TestCheckAAFConstraints_Boundary(t *testing.T) {
	f := newFixture(1, []float64{0.5}, []float64{0.5}, []float64{0.25})
	tr := f.tree([2]int{0, 1}, [2]int{1, 2}, [2]int{1, 3})

	// Sum equal to the limit is a violation.
	if CheckAAFConstraints(tr, 1, 0.125) {
		t.Error("sum == limit accepted")
	}
	if !CheckAAFConstraints(tr, 1, 0.25) {
		t.Error("sum below limit rejected")
	}
}

func TestFilter(t *testing.T) {
	f := newFixture(1, []float64{0.5}, []float64{0.3})
	ok1 := f.tree([2]int{0, 1}, [2]int{0, 2})
	bad := f.tree([2]int{0, 2}, [2]int{2, 1})
	ok2 := f.tree([2]int{0, 1}, [2]int{1, 2})

	got := Filter([]*phylo.Tree{ok1, bad, ok2}, 1, margin)
	if len(got) != 2 || got[0] != ok1 || got[1] != ok2 {
		t.Errorf("Filter() = %v, want [ok1 ok2]", got)
	}
	if got := Filter(nil, 1, margin); len(got) != 0 {
		t.Errorf("Filter(nil) = %v", got)
	}
}

func TestRank(t *testing.T) {
	f := newFixture(1, []float64{0.5}, []float64{0.4}, []float64{0.35})
	deep := f.tree([2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3})   // no excess
	flat := f.tree([2]int{0, 1}, [2]int{0, 2}, [2]int{0, 3})   // 1.25 over 1.0
	mixed := f.tree([2]int{0, 2}, [2]int{2, 1}, [2]int{2, 3})  // 0.85 over 0.4
	mixed2 := f.tree([2]int{0, 2}, [2]int{2, 3}, [2]int{2, 1}) // same score as mixed

	trees := []*phylo.Tree{flat, mixed, deep, mixed2}
	Rank(trees)

	want := []*phylo.Tree{deep, flat, mixed, mixed2}
	for i := range want {
		if trees[i] != want[i] {
			t.Fatalf("Rank()[%d] score %v, want score %v", i, trees[i].ErrorScore(), want[i].ErrorScore())
		}
	}
}

func TestCapacity(t *testing.T) {
	f := newFixture(1, []float64{0.4}, []float64{0.4}, []float64{0.1})
	tr := f.tree([2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3})
	caps := Capacity(tr, 1)

	tests := []struct {
		node int
		want *phylo.Node
	}{
		{0, nil},
		{1, f.g.Root()},
		{2, f.g.Root()},
		{3, f.nodes[2]},
	}
	for _, tt := range tests {
		if got := caps.Ancestor(f.nodes[tt.node], 0); got != tt.want {
			t.Errorf("Ancestor(node %d) = %v, want %v", tt.node, got, tt.want)
		}
	}
	if got := caps.Ancestor(f.nodes[3], 5); got != nil {
		t.Errorf("Ancestor(out of range sample) = %v, want nil", got)
	}
}

func TestStats(t *testing.T) {
	if got := Stats(nil); got != (ScoreStats{}) {
		t.Errorf("Stats(nil) = %+v, want zero", got)
	}

	f := newFixture(1, []float64{0.5}, []float64{0.4}, []float64{0.3})
	deep := f.tree([2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3})
	flat := f.tree([2]int{0, 1}, [2]int{0, 2}, [2]int{0, 3})
	s := Stats([]*phylo.Tree{flat, deep})

	if s.Count != 2 || s.Best != 0 {
		t.Errorf("Stats() = %+v, want count 2 best 0", s)
	}
	if math.Abs(s.Worst-0.2) > 1e-9 || math.Abs(s.Mean-0.1) > 1e-9 {
		t.Errorf("Stats() worst/mean = %v/%v, want 0.2/0.1", s.Worst, s.Mean)
	}

	one := Stats([]*phylo.Tree{flat})
	if one.StdDev != 0 || math.Abs(one.Mean-0.2) > 1e-9 {
		t.Errorf("Stats(single) = %+v", one)
	}
}
