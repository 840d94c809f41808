package mutation

import (
	"slices"
	"strconv"
	"strings"
)

// Cluster is one sub-population of a mutation group.
// Centroid and StdDev are indexed by the owning group's local sample order.
type Cluster struct {
	Centroid []float64 `json:"centroid"`
	StdDev   []float64 `json:"stddev"`
	// Size is the number of member mutations, informational only.
	Size int `json:"size,omitempty"`
}

// Group is a set of mutations sharing the same sample-presence pattern.
type Group struct {
	// Tag is the binary presence string, one character per global sample.
	Tag string `json:"tag"`
	// Samples lists the global sample ids the group occurs in, in the
	// order used by every cluster vector.
	Samples []int `json:"samples,omitempty"`
	// Clusters holds the sub-populations found inside the group.
	Clusters []Cluster `json:"clusters"`
	// Robust marks groups upstream clustering considers well supported.
	// Only robust groups survive a network rebuild.
	Robust bool `json:"robust"`
}

// NewGroup creates a group whose sample list is derived from tag.
func NewGroup(tag string, robust bool, clusters ...Cluster) *Group {
	return &Group{
		Tag:      tag,
		Samples:  SamplesFromTag(tag),
		Clusters: clusters,
		Robust:   robust,
	}
}

// SamplesFromTag returns the positions of '1' characters in tag.
func SamplesFromTag(tag string) []int {
	var ids []int
	for i, c := range tag {
		if c == '1' {
			ids = append(ids, i)
		}
	}
	return ids
}

// TagFromSamples builds a presence tag of length n from sample ids.
// Ids outside [0, n) are ignored.
func TagFromSamples(ids []int, n int) string {
	b := []byte(strings.Repeat("0", n))
	for _, id := range ids {
		if id >= 0 && id < n {
			b[id] = '1'
		}
	}
	return string(b)
}

// NumSamples returns how many samples the group occurs in.
// This is the level of the group's nodes in the constraint network.
func (g *Group) NumSamples() int { return len(g.Samples) }

// SampleIndex returns the local vector index of a global sample id,
// or -1 if the group does not occur in that sample.
func (g *Group) SampleIndex(sample int) int {
	return slices.Index(g.Samples, sample)
}

// ContainsSample reports whether the group occurs in sample.
func (g *Group) ContainsSample(sample int) bool {
	return g.SampleIndex(sample) >= 0
}

// AAF returns the centroid AAF of cluster c for a global sample id.
// Absent samples yield 0.
func (g *Group) AAF(c, sample int) float64 {
	i := g.SampleIndex(sample)
	if i < 0 {
		return 0
	}
	return g.Clusters[c].Centroid[i]
}

// StdDev returns the centroid standard deviation of cluster c for a global
// sample id. Absent samples yield 0.
func (g *Group) StdDev(c, sample int) float64 {
	i := g.SampleIndex(sample)
	if i < 0 {
		return 0
	}
	return g.Clusters[c].StdDev[i]
}

// Set is the complete input of one reconstruction.
type Set struct {
	// SampleNames holds one display name per global sample id.
	SampleNames []string `json:"samples"`
	// Groups in input order; node creation follows this order.
	Groups []*Group `json:"groups"`
}

// NumSamples returns the global sample count N.
func (s *Set) NumSamples() int { return len(s.SampleNames) }

// SampleName returns the display name of a sample, falling back to its id.
func (s *Set) SampleName(id int) string {
	if id >= 0 && id < len(s.SampleNames) && s.SampleNames[id] != "" {
		return s.SampleNames[id]
	}
	return "sample" + strconv.Itoa(id)
}

// Robust returns a new set holding only the robust groups, in input order.
// Groups are shared with the receiver, not copied.
func (s *Set) Robust() *Set {
	out := &Set{SampleNames: s.SampleNames}
	for _, g := range s.Groups {
		if g.Robust {
			out.Groups = append(out.Groups, g)
		}
	}
	return out
}

// NodeCount returns the number of sub-population nodes the set produces.
func (s *Set) NodeCount() int {
	n := 0
	for _, g := range s.Groups {
		n += len(g.Clusters)
	}
	return n
}
