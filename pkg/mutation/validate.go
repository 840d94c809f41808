package mutation

import (
	"fmt"
	"math"

	"github.com/matzehuels/clonetree/pkg/errors"
)

// Validate checks the set for malformed numeric input.
//
// It runs before any graph construction so a bad vector is reported up
// front rather than discovered mid-enumeration. Returned errors carry
// [errors.ErrCodeInvalidInput] for structural problems and
// [errors.ErrCodeInvalidAAF] for bad frequency vectors.
func (s *Set) Validate() error {
	n := s.NumSamples()
	if n < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "at least one sample is required")
	}
	for _, name := range s.SampleNames {
		if err := errors.ValidateSampleName(name); err != nil {
			return err
		}
	}
	for gi, g := range s.Groups {
		if g == nil {
			return errors.New(errors.ErrCodeInvalidInput, "group %d is nil", gi)
		}
		if err := g.validate(n); err != nil {
			err.Message = fmt.Sprintf("group %d (%s): %s", gi, g.Tag, err.Message)
			return err
		}
	}
	return nil
}

func (g *Group) validate(n int) *errors.Error {
	if len(g.Samples) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "group occurs in no sample")
	}
	seen := make(map[int]bool, len(g.Samples))
	for _, id := range g.Samples {
		if id < 0 || id >= n {
			return errors.New(errors.ErrCodeInvalidInput, "sample id %d out of range [0, %d)", id, n)
		}
		if seen[id] {
			return errors.New(errors.ErrCodeInvalidInput, "sample id %d listed twice", id)
		}
		seen[id] = true
	}
	if g.Tag != "" {
		if err := errors.ValidateTag(g.Tag, n); err != nil {
			return errors.New(errors.ErrCodeInvalidInput, "%s", errors.UserMessage(err))
		}
		if want := TagFromSamples(g.Samples, n); want != g.Tag {
			return errors.New(errors.ErrCodeInvalidInput, "tag %q disagrees with samples %v", g.Tag, g.Samples)
		}
	}
	if len(g.Clusters) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "group has no sub-population clusters")
	}
	for ci, c := range g.Clusters {
		if len(c.Centroid) != len(g.Samples) {
			return errors.New(errors.ErrCodeInvalidAAF, "cluster %d centroid has %d values, want %d", ci, len(c.Centroid), len(g.Samples))
		}
		if len(c.StdDev) != len(g.Samples) {
			return errors.New(errors.ErrCodeInvalidAAF, "cluster %d stddev has %d values, want %d", ci, len(c.StdDev), len(g.Samples))
		}
		for i, v := range c.Centroid {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 1 {
				return errors.New(errors.ErrCodeInvalidAAF, "cluster %d has AAF %v at sample %d, want a value in [0, 1]", ci, v, g.Samples[i])
			}
		}
		for i, v := range c.StdDev {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return errors.New(errors.ErrCodeInvalidAAF, "cluster %d has std-dev %v at sample %d", ci, v, g.Samples[i])
			}
		}
	}
	return nil
}
