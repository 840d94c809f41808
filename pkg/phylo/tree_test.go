package phylo

import (
	"math"
	"slices"
	"strings"
	"testing"
)

// chain returns a graph with root, A and B where A and B are sub-populations
// of one group, and a tree root -> A -> B.
func chain() (*Graph, *Tree) {
	g := mustBuild(set(twoSamples, group("11", cluster(0.4, 0.3), cluster(0.1, 0.05))), BuildOptions{})
	t := NewTree(g.SampleCount())
	t.AddNode(g.Root())
	t.AddEdge(g.Node(0), g.Node(1))
	t.AddEdge(g.Node(1), g.Node(2))
	return g, t
}

func TestTreeStructure(t *testing.T) {
	g, tr := chain()
	root, a, b := g.Node(0), g.Node(1), g.Node(2)

	if tr.NodeCount() != 3 {
		t.Fatalf("NodeCount() = %d, want 3", tr.NodeCount())
	}
	if tr.Root() != root {
		t.Errorf("Root() = %v, want root", tr.Root())
	}
	if tr.Parent(b) != a || tr.Parent(root) != nil {
		t.Error("unexpected parents")
	}
	if !tr.ContainsEdge(a, b) || tr.ContainsEdge(root, b) {
		t.Error("ContainsEdge mismatch")
	}
	if !tr.IsDescendant(root, b) || tr.IsDescendant(b, root) || tr.IsDescendant(a, a) {
		t.Error("IsDescendant mismatch")
	}
	if tr.Depth(b) != 2 {
		t.Errorf("Depth(B) = %d, want 2", tr.Depth(b))
	}

	tr.RemoveEdge(a, b)
	if tr.ContainsNode(b) {
		t.Error("RemoveEdge should drop the orphaned target")
	}
	if len(tr.Children(a)) != 0 {
		t.Errorf("Children(A) = %v, want none", tr.Children(a))
	}
	if tr.NodeCount() != 2 {
		t.Errorf("NodeCount() after RemoveEdge = %d, want 2", tr.NodeCount())
	}
}

func TestTreeClone(t *testing.T) {
	g, tr := chain()
	c := tr.Clone()
	tr.RemoveEdge(g.Node(1), g.Node(2))

	if !c.ContainsEdge(g.Node(1), g.Node(2)) {
		t.Error("clone shares structure with the original")
	}
	if c.Nodes()[1] != tr.Nodes()[1] {
		t.Error("clone should share node pointers")
	}
}

func TestTreeKey(t *testing.T) {
	g := mustBuild(set(twoSamples,
		group("11", cluster(0.4, 0.3)),
		group("11", cluster(0.3, 0.35)),
	), BuildOptions{})
	root, a, c := g.Node(0), g.Node(1), g.Node(2)

	t1 := NewTree(2)
	t1.AddEdge(root, a)
	t1.AddEdge(root, c)
	t2 := NewTree(2)
	t2.AddEdge(root, c)
	t2.AddEdge(root, a)

	if t1.Key() != t2.Key() {
		t.Errorf("Key() differs for equal edge sets: %q vs %q", t1.Key(), t2.Key())
	}
	if t1.Key() != "0>1,0>2" {
		t.Errorf("Key() = %q, want %q", t1.Key(), "0>1,0>2")
	}
	if !strings.Contains(t1.String(), "0 -> 2") {
		t.Errorf("String() = %q", t1.String())
	}
}

func TestErrorScore(t *testing.T) {
	g := NewGraph(2, 1)
	a := g.AddSubpopulation(group("11", cluster(0.4, 0.3)), 0)
	grp := group("11", cluster(0.3, 0.2), cluster(0.2, 0.2))
	b := g.AddSubpopulation(grp, 0)
	c := g.AddSubpopulation(grp, 1)

	tr := NewTree(2)
	tr.AddEdge(g.Root(), a)
	tr.AddEdge(a, b)
	tr.AddEdge(a, c)

	want := math.Sqrt(0.1*0.1 + 0.1*0.1)
	if got := tr.ErrorScore(); math.Abs(got-want) > 1e-9 {
		t.Errorf("ErrorScore() = %v, want %v", got, want)
	}

	_, consistent := chain()
	if got := consistent.ErrorScore(); got != 0 {
		t.Errorf("ErrorScore() of consistent tree = %v, want 0", got)
	}
}

func TestErrorScoreCached(t *testing.T) {
	_, tr := chain()
	first := tr.ErrorScore()
	if !tr.scored {
		t.Fatal("score not cached")
	}
	tr.score = 42
	if got := tr.ErrorScore(); got != 42 {
		t.Errorf("ErrorScore() recomputed: got %v, first %v", got, first)
	}
}

func TestSampleParents(t *testing.T) {
	g := NewGraph(2, 1)
	a := g.AddSubpopulation(group("11", cluster(0.5, 0.5)), 0)
	b := g.AddSubpopulation(group("10", cluster(0.2)), 0)
	tr := NewTree(2)
	tr.AddEdge(g.Root(), a)
	tr.AddEdge(a, b)

	if got := tr.SampleParents(0); !slices.Equal(got, []*Node{b}) {
		t.Errorf("SampleParents(0) = %v, want [B]", got)
	}
	if got := tr.SampleParents(1); !slices.Equal(got, []*Node{a}) {
		t.Errorf("SampleParents(1) = %v, want [A]", got)
	}

	empty := NewTree(1)
	empty.AddNode(g.Root())
	if got := empty.SampleParents(0); !slices.Equal(got, []*Node{g.Root()}) {
		t.Errorf("SampleParents on bare root = %v, want [root]", got)
	}
}

func TestLineage(t *testing.T) {
	_, tr := chain()
	want := "s0:\nGERMLINE\n\t11.0: 0.40 [0.00]\n\t\t11.1: 0.10 [0.00]\n"
	if got := tr.Lineage(0, "s0"); got != want {
		t.Errorf("Lineage() = %q, want %q", got, want)
	}
}

func TestLineageSkipsAbsentSample(t *testing.T) {
	g := NewGraph(2, 1)
	x := g.AddSubpopulation(group("10", withStd([]float64{0.5}, []float64{0.02})), 0)
	y := g.AddSubpopulation(group("11", withStd([]float64{0.3, 0.1}, []float64{0.01, 0.03})), 0)
	tr := NewTree(2)
	tr.AddEdge(g.Root(), x)
	tr.AddEdge(x, y)

	want := "met:\nGERMLINE\n\t\t11: 0.10 [0.03]\n"
	if got := tr.Lineage(1, "met"); got != want {
		t.Errorf("Lineage() = %q, want %q", got, want)
	}
	want = "primary:\nGERMLINE\n\t10: 0.50 [0.02]\n\t\t11: 0.30 [0.01]\n"
	if got := tr.Lineage(0, "primary"); got != want {
		t.Errorf("Lineage() = %q, want %q", got, want)
	}
}
