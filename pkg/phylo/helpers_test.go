package phylo

import "github.com/matzehuels/clonetree/pkg/mutation"

func cluster(centroid ...float64) mutation.Cluster {
	return mutation.Cluster{Centroid: centroid, StdDev: make([]float64, len(centroid))}
}

func group(tag string, clusters ...mutation.Cluster) *mutation.Group {
	return mutation.NewGroup(tag, true, clusters...)
}

func subpop(tag string, centroid ...float64) *Node {
	return newSubpopulation(group(tag, cluster(centroid...)), 0)
}

func set(names []string, groups ...*mutation.Group) *mutation.Set {
	return &mutation.Set{SampleNames: names, Groups: groups}
}

func mustBuild(s *mutation.Set, opts BuildOptions) *Graph {
	g, err := Build(s, opts)
	if err != nil {
		panic(err)
	}
	return g
}

func withStd(centroid, std []float64) mutation.Cluster {
	return mutation.Cluster{Centroid: centroid, StdDev: std}
}
