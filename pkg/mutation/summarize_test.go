package mutation

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	c := Summarize([][]float64{
		{0.2, 0.5},
		{0.4, 0.5},
	})

	if c.Size != 2 {
		t.Errorf("Size = %d, want 2", c.Size)
	}
	if math.Abs(c.Centroid[0]-0.3) > 1e-9 || math.Abs(c.Centroid[1]-0.5) > 1e-9 {
		t.Errorf("Centroid = %v, want [0.3 0.5]", c.Centroid)
	}
	if math.Abs(c.StdDev[0]-math.Sqrt(0.02)) > 1e-9 {
		t.Errorf("StdDev[0] = %v, want %v", c.StdDev[0], math.Sqrt(0.02))
	}
	if c.StdDev[1] != 0 {
		t.Errorf("StdDev[1] = %v, want 0", c.StdDev[1])
	}
}

func TestSummarizeSingleMember(t *testing.T) {
	c := Summarize([][]float64{{0.25}})
	if c.Centroid[0] != 0.25 || c.StdDev[0] != 0 || c.Size != 1 {
		t.Errorf("Summarize single = %+v, want centroid 0.25, stddev 0, size 1", c)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	c := Summarize(nil)
	if c.Centroid != nil || c.Size != 0 {
		t.Errorf("Summarize(nil) = %+v, want zero cluster", c)
	}
}
