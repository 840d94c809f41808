// Package phylo provides the constraint network and lineage tree model used
// to reconstruct the clonal evolution of a tumor across multiple samples.
//
// # Overview
//
// Every sub-population cluster of a [mutation.Group] becomes a [Node] of the
// constraint [Graph]. A directed edge u→v states that the mutations of u
// happened before those of v: u's allele frequency (AAF) bounds v's in every
// sample, within a shared error margin. Nodes are bucketed by level, the
// number of samples their group occurs in, and a single germline root sits
// above every level.
//
// # Building
//
// [Build] validates a [mutation.Set] and constructs the graph in three
// passes:
//
//  1. Sub-populations of the same group are compared pairwise.
//  2. Every occupied level is paired with the nearest occupied level below it
//     and each node pair is oriented with [Orient].
//  3. Nodes left without a parent are connected to the closest compatible
//     node two or more levels up, falling back to the root.
//
// When no lineage tree survives evaluation, [Graph.FixNetwork] rebuilds the
// graph from robust groups only.
//
// # Trees
//
// A [Tree] is an arborescence over graph nodes. Nodes are shared by pointer
// between the graph and every tree; cloning a tree copies its structure
// only. Trees cache their error score on first use and render per-sample
// lineage reports with [Tree.Lineage].
//
// Spanning tree enumeration lives in the spanning subpackage and constraint
// filtering in the evaluate subpackage.
//
// # Concurrency
//
// A built Graph is read-only and may be shared by concurrent readers. Trees
// are not safe for concurrent mutation.
package phylo
