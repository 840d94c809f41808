package mutation

import (
	"math"
	"testing"

	"github.com/matzehuels/clonetree/pkg/errors"
)

func validSet() *Set {
	return &Set{
		SampleNames: []string{"s0", "s1"},
		Groups: []*Group{
			NewGroup("11", true, Cluster{Centroid: []float64{0.4, 0.3}, StdDev: []float64{0.01, 0.02}}),
			NewGroup("10", true, Cluster{Centroid: []float64{0.2}, StdDev: []float64{0.01}}),
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Set)
		code   errors.Code
	}{
		{"valid", func(s *Set) {}, ""},
		{"no samples", func(s *Set) { s.SampleNames = nil }, errors.ErrCodeInvalidInput},
		{"negative AAF", func(s *Set) { s.Groups[0].Clusters[0].Centroid[1] = -0.1 }, errors.ErrCodeInvalidAAF},
		{"NaN AAF", func(s *Set) { s.Groups[0].Clusters[0].Centroid[0] = math.NaN() }, errors.ErrCodeInvalidAAF},
		{"AAF above one", func(s *Set) { s.Groups[1].Clusters[0].Centroid[0] = 1.5 }, errors.ErrCodeInvalidAAF},
		{"negative std-dev", func(s *Set) { s.Groups[1].Clusters[0].StdDev[0] = -1 }, errors.ErrCodeInvalidAAF},
		{"centroid length mismatch", func(s *Set) { s.Groups[0].Clusters[0].Centroid = []float64{0.4} }, errors.ErrCodeInvalidAAF},
		{"stddev length mismatch", func(s *Set) { s.Groups[1].Clusters[0].StdDev = nil }, errors.ErrCodeInvalidAAF},
		{"sample out of range", func(s *Set) { s.Groups[1].Samples = []int{5}; s.Groups[1].Tag = "" }, errors.ErrCodeInvalidInput},
		{"duplicate sample", func(s *Set) { s.Groups[0].Samples = []int{0, 0}; s.Groups[0].Tag = "" }, errors.ErrCodeInvalidInput},
		{"tag disagrees", func(s *Set) { s.Groups[1].Tag = "01" }, errors.ErrCodeInvalidInput},
		{"no clusters", func(s *Set) { s.Groups[1].Clusters = nil }, errors.ErrCodeInvalidInput},
		{"empty group", func(s *Set) { s.Groups[1].Samples = nil; s.Groups[1].Tag = "" }, errors.ErrCodeInvalidInput},
		{"nil group", func(s *Set) { s.Groups[1] = nil }, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSet()
			tt.mutate(s)
			err := s.Validate()
			if tt.code == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want %s", tt.code)
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("Validate() code = %v, want %v (%v)", got, tt.code, err)
			}
		})
	}
}
