package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/clonetree/pkg/cache"
	"github.com/matzehuels/clonetree/pkg/errors"
	cio "github.com/matzehuels/clonetree/pkg/io"
	"github.com/matzehuels/clonetree/pkg/mutation"
	"github.com/matzehuels/clonetree/pkg/observability"
	"github.com/matzehuels/clonetree/pkg/phylo"
	"github.com/matzehuels/clonetree/pkg/phylo/evaluate"
	"github.com/matzehuels/clonetree/pkg/phylo/spanning"
)

// Runner executes reconstructions with caching.
//
// The Runner holds no per-run state; one Runner may serve concurrent
// Execute calls with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is the lifetime of cached reports; zero means cache.TTLResult.
	TTL time.Duration
}

// NewRunner creates a runner. A nil keyer selects the default keyer, a nil
// cache disables caching and a nil logger uses the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute reconstructs the lineage trees of set.
//
// A cancelled context ends enumeration early. If valid trees were found by
// then the partial result is returned with Report.Truncated set; otherwise
// the run fails with TIMEOUT.
func (r *Runner) Execute(ctx context.Context, set *mutation.Set, opts Options) (*Result, error) {
	if set == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nil mutation set")
	}
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	var input bytes.Buffer
	if err := cio.WriteJSON(set, &input); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash input")
	}
	key := r.Keyer.ResultKey(cache.Hash(input.Bytes()), opts.ResultKeyOpts())

	if !opts.Refresh {
		if res, ok := r.fromCache(ctx, key, set, opts); ok {
			return res, nil
		}
	}

	res, err := r.reconstruct(ctx, set, opts)
	if err != nil {
		return nil, err
	}
	res.Key = key

	// Runs stopped by the context depend on timing, not input.
	if !(res.Report.Truncated && ctx.Err() != nil) {
		r.store(ctx, key, res.Report)
	}
	return res, nil
}

func (r *Runner) reconstruct(ctx context.Context, set *mutation.Set, opts Options) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}

	g, err := r.build(ctx, set, opts, &res.Stats)
	if err != nil {
		return nil, err
	}
	valid, enumerated, truncated, err := r.evaluate(ctx, g, opts, &res.Stats)
	if err != nil {
		return nil, err
	}

	rebuilt := false
	if len(valid) == 0 && !opts.NoRebuild {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "no valid tree before the deadline (%d enumerated)", enumerated)
		}
		robust := set.Robust()
		observability.Pipeline().OnRebuild(ctx, len(robust.Groups))
		opts.Logger.Warn("no tree satisfies the AAF constraints, rebuilding from robust groups",
			"groups", len(set.Groups),
			"robust", len(robust.Groups))

		g, err = r.build(ctx, robust, opts, &res.Stats)
		if err != nil {
			return nil, err
		}
		valid, enumerated, truncated, err = r.evaluate(ctx, g, opts, &res.Stats)
		if err != nil {
			return nil, err
		}
		rebuilt = true
	}

	if len(valid) == 0 {
		switch {
		case ctx.Err() != nil:
			return nil, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "no valid tree before the deadline (%d enumerated)", enumerated)
		case truncated:
			return nil, errors.New(errors.ErrCodeBudgetExceeded, "no valid tree among the first %d enumerated", enumerated)
		}
		return nil, errors.New(errors.ErrCodeNoValidLineage, "no lineage tree satisfies the AAF constraints (%d enumerated)", enumerated)
	}

	report := cio.NewReport(g, valid)
	report.RunID = res.RunID
	report.Enumerated = enumerated
	report.Truncated = truncated
	report.Rebuilt = rebuilt
	if len(report.Trees) > opts.Top {
		report.Trees = report.Trees[:opts.Top]
	}

	res.Graph = g
	res.Trees = valid[:min(len(valid), opts.Top)]
	res.Report = report
	if truncated {
		opts.Logger.Warn("enumeration stopped early, result is partial", "trees", enumerated)
	}
	return res, nil
}

func (r *Runner) build(ctx context.Context, set *mutation.Set, opts Options, stats *Stats) (*phylo.Graph, error) {
	start := time.Now()
	observability.Pipeline().OnBuildStart(ctx, len(set.Groups))

	g, err := phylo.Build(set, opts.BuildOptions())
	stats.BuildTime = time.Since(start)
	if err != nil {
		observability.Pipeline().OnBuildComplete(ctx, 0, 0, stats.BuildTime, err)
		return nil, fmt.Errorf("build: %w", err)
	}
	stats.NodeCount, stats.EdgeCount = g.NodeCount(), g.EdgeCount()
	observability.Pipeline().OnBuildComplete(ctx, g.NodeCount(), g.EdgeCount(), stats.BuildTime, nil)

	opts.Logger.Info("built constraint network",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", stats.BuildTime)
	opts.Logger.Debug(g.String())
	return g, nil
}

// evaluate enumerates the spanning trees of g and returns the valid ones
// ranked best first.
func (r *Runner) evaluate(ctx context.Context, g *phylo.Graph, opts Options, stats *Stats) ([]*phylo.Tree, int, bool, error) {
	start := time.Now()
	observability.Pipeline().OnEnumerateStart(ctx, g.EdgeCount())

	enum, err := spanning.Enumerate(ctx, g, spanning.Options{
		MaxTrees: opts.MaxTrees,
		Progress: opts.Progress,
	})
	stats.EnumerateTime = time.Since(start)
	if err != nil {
		observability.Pipeline().OnEnumerateComplete(ctx, 0, false, stats.EnumerateTime, err)
		return nil, 0, false, fmt.Errorf("enumerate: %w", err)
	}
	stats.Enumerated = len(enum.Trees)
	observability.Pipeline().OnEnumerateComplete(ctx, len(enum.Trees), enum.Truncated, stats.EnumerateTime, nil)

	opts.Logger.Info("enumerated spanning trees",
		"trees", len(enum.Trees),
		"truncated", enum.Truncated,
		"duration", stats.EnumerateTime)

	start = time.Now()
	valid := evaluate.Filter(enum.Trees, g.SampleCount(), g.Options().ErrorMargin)
	evaluate.Rank(valid)
	stats.EvaluateTime = time.Since(start)
	stats.Valid = len(valid)
	observability.Pipeline().OnEvaluate(ctx, len(valid), len(enum.Trees), stats.EvaluateTime)

	opts.Logger.Info("evaluated trees",
		"valid", len(valid),
		"rejected", len(enum.Trees)-len(valid),
		"duration", stats.EvaluateTime)
	return valid, len(enum.Trees), enum.Truncated, nil
}

// fromCache restores a cached report and re-attaches its trees to a
// freshly built network. Any inconsistency is treated as a miss.
func (r *Runner) fromCache(ctx context.Context, key string, set *mutation.Set, opts Options) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		opts.Logger.Warn("cache read failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "result")
		return nil, false
	}
	report, err := cio.ReadReport(bytes.NewReader(data))
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, "result")
		return nil, false
	}

	src := set
	if report.Rebuilt {
		src = set.Robust()
	}
	res := &Result{RunID: report.RunID, Report: report, Key: key, CacheInfo: CacheInfo{Hit: true}}
	g, err := r.build(ctx, src, opts, &res.Stats)
	if err != nil {
		return nil, false
	}
	for i := range report.Trees {
		t, err := report.Tree(g, i)
		if err != nil {
			opts.Logger.Warn("discarding stale cache entry", "key", key, "err", err)
			observability.Cache().OnCacheMiss(ctx, "result")
			return nil, false
		}
		res.Trees = append(res.Trees, t)
	}
	res.Graph = g
	res.Stats.Enumerated = report.Enumerated
	res.Stats.Valid = report.Stats.Count

	observability.Cache().OnCacheHit(ctx, "result")
	opts.Logger.Info("using cached result", "run", report.RunID, "trees", len(res.Trees))
	return res, true
}

func (r *Runner) store(ctx context.Context, key string, report *cio.Report) {
	var buf bytes.Buffer
	if err := cio.WriteReport(report, &buf); err != nil {
		return
	}
	ttl := r.TTL
	if ttl <= 0 {
		ttl = cache.TTLResult
	}
	if err := r.Cache.Set(ctx, key, buf.Bytes(), ttl); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "result", buf.Len())
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
