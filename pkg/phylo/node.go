package phylo

import (
	"fmt"

	"github.com/matzehuels/clonetree/pkg/mutation"
)

// Kind distinguishes the germline root, sub-population nodes and the sample
// leaves that anchor rendered lineages.
type Kind int

const (
	// KindSubpopulation is a (group, cluster) node of the constraint network.
	KindSubpopulation Kind = iota
	// KindRoot is the germline root. Its AAF is fixed at the configured maximum.
	KindRoot
	// KindSample is a sample leaf. Leaves never take part in enumeration.
	KindSample
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindSample:
		return "sample"
	default:
		return "subpopulation"
	}
}

// Node is a vertex of the constraint network.
//
// Nodes are immutable after construction and shared by pointer between the
// graph and every tree that contains them.
type Node struct {
	ID    int  // Dense identifier, root = 0, assigned in construction order
	Level int  // Number of samples the group occurs in; root = N+1, leaf = 0
	Kind  Kind // Root, sub-population or sample leaf

	Group    *mutation.Group // Owning group (sub-populations only)
	Cluster  int             // Cluster index within Group
	SampleID int             // Represented sample (leaves only)

	rootAAF float64
}

func newRoot(samples int, aaf float64) *Node {
	return &Node{Level: samples + 1, Kind: KindRoot, rootAAF: aaf}
}

func newSubpopulation(g *mutation.Group, cluster int) *Node {
	return &Node{Level: g.NumSamples(), Kind: KindSubpopulation, Group: g, Cluster: cluster}
}

// NewSampleLeaf returns a leaf node for sample. Leaves are not part of any
// graph; they exist so renderers can attach samples to the deepest
// sub-populations present in them.
func NewSampleLeaf(id, sample int) *Node {
	return &Node{ID: id, Kind: KindSample, SampleID: sample}
}

// IsRoot reports whether n is the germline root.
func (n *Node) IsRoot() bool { return n.Kind == KindRoot }

// IsLeaf reports whether n is a sample leaf.
func (n *Node) IsLeaf() bool { return n.Kind == KindSample }

// AAF returns the node's allele frequency in sample.
// The root returns its configured maximum, sample leaves return 0, and a
// sub-population returns its cluster centroid or 0 when its group does not
// occur in sample.
func (n *Node) AAF(sample int) float64 {
	switch n.Kind {
	case KindRoot:
		return n.rootAAF
	case KindSample:
		return 0
	}
	return n.Group.AAF(n.Cluster, sample)
}

// StdDev returns the centroid standard deviation in sample, or 0 for the
// root, leaves and samples the group does not occur in.
func (n *Node) StdDev(sample int) float64 {
	if n.Kind != KindSubpopulation {
		return 0
	}
	return n.Group.StdDev(n.Cluster, sample)
}

// Contains reports whether the node's mutations occur in sample.
func (n *Node) Contains(sample int) bool {
	return n.Kind == KindSubpopulation && n.Group.ContainsSample(sample)
}

// Label returns a short display name: the group tag for sub-populations,
// suffixed with the cluster index when the group has several clusters.
func (n *Node) Label() string {
	switch n.Kind {
	case KindRoot:
		return "GERMLINE"
	case KindSample:
		return fmt.Sprintf("sample %d", n.SampleID)
	}
	if len(n.Group.Clusters) > 1 {
		return fmt.Sprintf("%s.%d", n.Group.Tag, n.Cluster)
	}
	return n.Group.Tag
}

func (n *Node) String() string {
	switch n.Kind {
	case KindRoot:
		return fmt.Sprintf("Node %d: root", n.ID)
	case KindSample:
		return fmt.Sprintf("Node %d: leaf sample id = %d", n.ID, n.SampleID)
	}
	c := n.Group.Clusters[n.Cluster]
	return fmt.Sprintf("Node %d: group tag = %s, centroid = %v, stddev = %v", n.ID, n.Group.Tag, c.Centroid, c.StdDev)
}
