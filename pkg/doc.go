// Package pkg provides the core libraries for clonetree lineage reconstruction.
//
// # Overview
//
// Clonetree infers how the sub-populations of a tumor descend from each
// other. Mutations seen in several biopsies are grouped by the samples they
// occur in, clustered by allele frequency, and arranged into every tree
// that is consistent with the frequency sum rule. The pkg directory is
// organized into these areas:
//
//  1. [mutation] - Input model (groups, clusters, validation, centroids)
//  2. [phylo] - Constraint network, trees and lineage text
//  3. [phylo/spanning] - Enumeration of all spanning trees of the network
//  4. [phylo/evaluate] - AAF constraint filter, error-score ranking
//  5. [io] - JSON and mutation-table import, result reports
//  6. [pipeline] - Orchestration (build → enumerate → evaluate) with caching
//  7. [render] - Graphviz diagrams of networks and trees
//  8. [cache], [config], [errors], [observability] - Infrastructure
//
// # Architecture
//
// The typical data flow through clonetree:
//
//	Mutation set (JSON) or AAF table (TSV)
//	         ↓
//	    [io] package (import + validate)
//	         ↓
//	    [phylo] package (constraint network, levels, repair)
//	         ↓
//	    [phylo/spanning] package (Gabow–Myers enumeration)
//	         ↓
//	    [phylo/evaluate] package (filter + rank)
//	         ↓
//	    Lineage text, JSON report, SVG/PNG/DOT
//
// # Quick Start
//
//	set, _ := io.ImportJSON("patient.json")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Execute(ctx, set, pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	for i, name := range set.SampleNames {
//	    fmt.Print(res.Best().Lineage(i, name))
//	}
//
// # Error Handling
//
// Library errors carry a code from [errors] (INVALID_AAF, NO_VALID_LINEAGE,
// BUDGET_EXCEEDED, ...) so the CLI and HTTP API can map them to exit
// messages and status codes. Graph-model failures wrap the sentinel errors
// of [phylo].
package pkg
