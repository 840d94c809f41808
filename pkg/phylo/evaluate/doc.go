// Package evaluate checks lineage trees against the AAF sum constraint and
// orders candidate trees by fit.
//
// A sub-population's frequency bounds the combined frequency of its
// children in every sample, up to a per-child error margin. [Filter] drops
// trees violating this, [Rank] orders the rest by [phylo.Tree.ErrorScore],
// and [Violations] with [Capacity] explain where a rejected tree fails and
// which ancestor still has frequency to spare.
package evaluate
