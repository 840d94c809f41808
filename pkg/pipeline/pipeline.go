// Package pipeline runs complete clonetree reconstructions.
//
// It chains the library stages into the build → enumerate → filter → rank
// flow shared by the CLI and the HTTP API, so both entry points behave the
// same way:
//
//  1. Build: construct the constraint network from the mutation set
//  2. Enumerate: list every spanning tree rooted at the germline root
//  3. Evaluate: drop trees violating the AAF sum constraint, rank the rest
//
// When no tree survives, the network is rebuilt once from robust groups
// only before the run fails with NO_VALID_LINEAGE.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, set, pipeline.Options{MaxTrees: 100000})
//	if err != nil {
//	    return err
//	}
//	best := result.Trees[0]
//	fmt.Print(best.Lineage(0, set.SampleName(0)))
//
// Results are cached by the hash of the input and every option that changes
// the outcome; a cached report is re-attached to a freshly built network so
// callers always receive live trees.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/clonetree/pkg/cache"
	"github.com/matzehuels/clonetree/pkg/errors"
	cio "github.com/matzehuels/clonetree/pkg/io"
	"github.com/matzehuels/clonetree/pkg/phylo"
)

// DefaultTop is how many ranked trees a report keeps.
const DefaultTop = 20

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a reconstruction.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Build options
	ErrorMargin   float64 `json:"error_margin,omitempty"`
	RootAAF       float64 `json:"root_aaf,omitempty"`
	KeepShortcuts bool    `json:"keep_shortcuts,omitempty"`
	AllLevels     bool    `json:"all_levels,omitempty"`

	// Enumeration options
	MaxTrees int `json:"max_trees,omitempty"` // 0 = unbounded

	// Report options
	Top       int  `json:"top,omitempty"`        // ranked trees kept
	NoRebuild bool `json:"no_rebuild,omitempty"` // skip the robust-group retry
	Refresh   bool `json:"refresh,omitempty"`    // bypass cached results

	// Runtime options (not serialized)
	Logger   *log.Logger     `json:"-"`
	Progress func(trees int) `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks ranges and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	b := o.BuildOptions().WithDefaults()
	if err := b.Validate(); err != nil {
		return err
	}
	o.ErrorMargin, o.RootAAF = b.ErrorMargin, b.RootAAF

	if o.MaxTrees < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_trees must be >= 0, got %d", o.MaxTrees)
	}
	if o.Top < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "top must be >= 0, got %d", o.Top)
	}
	if o.Top == 0 {
		o.Top = DefaultTop
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// BuildOptions returns the network construction options.
func (o *Options) BuildOptions() phylo.BuildOptions {
	return phylo.BuildOptions{
		ErrorMargin:   o.ErrorMargin,
		RootAAF:       o.RootAAF,
		KeepShortcuts: o.KeepShortcuts,
		AllLevels:     o.AllLevels,
	}
}

// ResultKeyOpts returns the cache key options of a reconstruction.
func (o *Options) ResultKeyOpts() cache.ResultKeyOpts {
	return cache.ResultKeyOpts{
		ErrorMargin:   o.ErrorMargin,
		RootAAF:       o.RootAAF,
		KeepShortcuts: o.KeepShortcuts,
		AllLevels:     o.AllLevels,
		MaxTrees:      o.MaxTrees,
		NoRebuild:     o.NoRebuild,
		Top:           o.Top,
	}
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a reconstruction.
type Result struct {
	// RunID identifies the run that computed the report.
	RunID string

	// Graph is the constraint network the trees span. After a rebuild it
	// holds robust groups only.
	Graph *phylo.Graph

	// Trees are the best Options.Top valid trees, best first.
	Trees []*phylo.Tree

	// Report is the serializable summary, also used as cache payload.
	Report *cio.Report

	// Key is the result cache key.
	Key string

	Stats     Stats
	CacheInfo CacheInfo
}

// Best returns the lowest-scoring tree.
func (r *Result) Best() *phylo.Tree {
	if len(r.Trees) == 0 {
		return nil
	}
	return r.Trees[0]
}

// Stats contains execution statistics.
type Stats struct {
	NodeCount     int
	EdgeCount     int
	Enumerated    int // spanning trees before filtering
	Valid         int // trees satisfying the AAF constraints
	BuildTime     time.Duration
	EnumerateTime time.Duration
	EvaluateTime  time.Duration
}

// CacheInfo tracks whether the report came from the cache.
type CacheInfo struct {
	Hit bool
}
