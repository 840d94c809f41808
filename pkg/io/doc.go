// Package io reads mutation sets and writes reconstruction reports.
//
// # Mutation Sets
//
// The JSON format carries pre-clustered mutation groups:
//
//	{
//	  "samples": ["primary", "met1", "met2"],
//	  "groups": [
//	    {
//	      "tag": "111",
//	      "robust": true,
//	      "clusters": [
//	        {"centroid": [0.42, 0.38, 0.40], "stddev": [0.02, 0.03, 0.02], "size": 31}
//	      ]
//	    },
//	    {
//	      "tag": "011",
//	      "samples": [1, 2],
//	      "robust": false,
//	      "clusters": [{"centroid": [0.2, 0.1], "stddev": [0.01, 0.01]}]
//	    }
//	  ]
//	}
//
// A group's "samples" lists global sample ids in the order of its cluster
// vectors. When omitted it is derived from the binary tag.
//
// Use [ReadJSON] or [ImportJSON] to load a set and [WriteJSON] or
// [ExportJSON] to store one. Loaded sets are validated before they are
// returned.
//
// # Mutation Tables
//
// [ReadTable] accepts a tab-separated table of per-mutation allele
// frequencies and groups it by presence pattern:
//
//	#chrom	pos	primary	met1	met2
//	chr1	10523	0.41	0.39	0.40
//	chr2	88211	0.00	0.21	0.12
//
// A mutation occurs in a sample when its AAF exceeds the table's minimum.
// Each distinct presence tag becomes one group holding a single cluster
// whose centroid and deviation are computed from its member rows.
//
// # Reports
//
// A [Report] is the serialized outcome of one reconstruction: the network,
// the ranked trees as edge lists, score statistics and per-sample lineages
// of the best tree. Reports are what the CLI prints as JSON, what the API
// returns and what the result cache stores. [Report.Tree] rebuilds a live
// tree from a report against a graph constructed from the same input.
package io
