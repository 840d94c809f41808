// Package spanning enumerates the spanning arborescences of a constraint
// network.
//
// [Enumerate] implements the incremental scheme of Gabow and Myers: a
// partial tree grows from the root by taking edges off a frontier stack, and
// on backtrack the taken edge is masked out and a bridge test decides
// whether any further tree can use the current vertex differently. Every
// spanning arborescence rooted at the germline root is produced exactly
// once, in an order that depends only on graph insertion order.
//
// The graph is never modified. Edge removal during backtracking is an
// enumeration-local mask, so several enumerations may share one graph.
//
// Output size is combinatorial in the number of nodes. [Options] bounds the
// run by tree count, and a context deadline bounds it by time; either stop
// yields a partial but valid [Result] with Truncated set.
package spanning
