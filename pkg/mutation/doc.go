// Package mutation holds the input model consumed by the lineage builder.
//
// A [Set] is the collection of mutation groups observed across N tumor
// samples. Each [Group] is identified by a binary presence tag ("0110"
// means the mutations occur in samples 1 and 2) and carries one or more
// sub-population [Cluster] records. A cluster stores, per sample the
// group occurs in, the centroid alternative allele frequency (AAF) and
// its standard deviation.
//
// Groups index their vectors locally: Group.Samples maps local vector
// positions to global sample ids. A sample absent from a group has AAF 0
// in every cluster of that group.
//
// Parsing raw variant files and clustering mutations into sub-populations
// happen upstream; this package only validates and summarizes what those
// collaborators produce. [Summarize] computes a cluster centroid from
// member mutation AAF rows when a caller already knows the membership.
package mutation
