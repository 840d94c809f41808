package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/clonetree/pkg/cache"
	"github.com/matzehuels/clonetree/pkg/errors"
	cio "github.com/matzehuels/clonetree/pkg/io"
	"github.com/matzehuels/clonetree/pkg/mutation"
	"github.com/matzehuels/clonetree/pkg/observability"
	"github.com/matzehuels/clonetree/pkg/phylo"
	"github.com/matzehuels/clonetree/pkg/render"
)

func cluster(centroid ...float64) mutation.Cluster {
	return mutation.Cluster{Centroid: centroid, StdDev: make([]float64, len(centroid))}
}

// chainSet yields the single tree GERMLINE -> 11 -> 10.
func chainSet() *mutation.Set {
	return &mutation.Set{
		SampleNames: []string{"primary", "met"},
		Groups: []*mutation.Group{
			mutation.NewGroup("11", true, cluster(0.45, 0.3)),
			mutation.NewGroup("10", true, cluster(0.2)),
		},
	}
}

// crowdedSet yields one tree whose only internal node is overfull in sample
// 0; dropping the non-robust groups leaves a valid tree.
func crowdedSet(robust bool) *mutation.Set {
	return &mutation.Set{
		SampleNames: []string{"primary", "met"},
		Groups: []*mutation.Group{
			mutation.NewGroup("11", robust, cluster(0.5, 0.5)),
			mutation.NewGroup("10", false, cluster(0.45)),
			mutation.NewGroup("10", false, cluster(0.45)),
		},
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.ErrorMargin != phylo.DefaultErrorMargin {
		t.Errorf("ErrorMargin = %v, want %v", opts.ErrorMargin, phylo.DefaultErrorMargin)
	}
	if opts.RootAAF != phylo.DefaultRootAAF {
		t.Errorf("RootAAF = %v, want %v", opts.RootAAF, phylo.DefaultRootAAF)
	}
	if opts.Top != DefaultTop {
		t.Errorf("Top = %d, want %d", opts.Top, DefaultTop)
	}
	if opts.Logger == nil {
		t.Error("Logger not defaulted")
	}

	opts.Top = 3
	if err := opts.ValidateAndSetDefaults(); err != nil || opts.Top != 3 {
		t.Errorf("second call changed options: top = %d, err = %v", opts.Top, err)
	}
}

func TestOptionsInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"margin", Options{ErrorMargin: 1.2}},
		{"root", Options{RootAAF: -1}},
		{"budget", Options{MaxTrees: -5}},
		{"top", Options{Top: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), chainSet(), Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(res.Trees) != 1 {
		t.Fatalf("got %d trees, want 1", len(res.Trees))
	}
	if got := res.Best().Key(); got != "0>1,1>2" {
		t.Errorf("best tree = %s, want 0>1,1>2", got)
	}
	if res.RunID == "" || res.Report.RunID != res.RunID {
		t.Errorf("RunID = %q, report run = %q", res.RunID, res.Report.RunID)
	}
	if res.Stats.NodeCount != 3 || res.Stats.Enumerated != 1 || res.Stats.Valid != 1 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if res.Report.Rebuilt || res.Report.Truncated {
		t.Errorf("report flags rebuilt = %v, truncated = %v", res.Report.Rebuilt, res.Report.Truncated)
	}
	if len(res.Report.Lineages) != 2 || !strings.HasPrefix(res.Report.Lineages[0].Text, "primary:\nGERMLINE\n") {
		t.Errorf("Lineages = %+v", res.Report.Lineages)
	}
	if res.CacheInfo.Hit {
		t.Error("null cache reported a hit")
	}
}

func TestExecuteRebuildsFromRobustGroups(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), crowdedSet(true), Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Report.Rebuilt {
		t.Error("Rebuilt not set")
	}
	if res.Graph.NodeCount() != 2 {
		t.Errorf("rebuilt graph has %d nodes, want 2", res.Graph.NodeCount())
	}
	if got := res.Best().Key(); got != "0>1" {
		t.Errorf("best tree = %s, want 0>1", got)
	}
}

func TestExecuteNoValidLineage(t *testing.T) {
	r := NewRunner(nil, nil, nil)

	_, err := r.Execute(context.Background(), crowdedSet(false), Options{})
	if !errors.Is(err, errors.ErrCodeNoValidLineage) {
		t.Errorf("error = %v, want NO_VALID_LINEAGE", err)
	}

	_, err = r.Execute(context.Background(), crowdedSet(true), Options{NoRebuild: true})
	if !errors.Is(err, errors.ErrCodeNoValidLineage) {
		t.Errorf("NoRebuild error = %v, want NO_VALID_LINEAGE", err)
	}
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(nil, nil, nil).Execute(ctx, chainSet(), Options{})
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("error = %v, want TIMEOUT", err)
	}
}

func TestExecuteInvalidInput(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(context.Background(), nil, Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("nil set error = %v, want INVALID_INPUT", err)
	}

	bad := chainSet()
	bad.Groups[0].Clusters[0].Centroid[0] = -0.1
	if _, err := r.Execute(context.Background(), bad, Options{}); !errors.Is(err, errors.ErrCodeInvalidAAF) {
		t.Errorf("negative AAF error = %v, want INVALID_AAF", err)
	}
}

func TestExecuteCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	ctx := context.Background()

	first, err := r.Execute(ctx, crowdedSet(true), Options{})
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	second, err := r.Execute(ctx, crowdedSet(true), Options{})
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.Hit {
		t.Fatal("second run missed the cache")
	}
	if second.RunID != first.RunID || second.Key != first.Key {
		t.Errorf("cached run = %s/%s, want %s/%s", second.RunID, second.Key, first.RunID, first.Key)
	}
	if second.Best().Key() != first.Best().Key() {
		t.Errorf("cached best tree = %s, want %s", second.Best().Key(), first.Best().Key())
	}
	if second.Graph.NodeCount() != 2 {
		t.Error("cached rebuilt result not re-attached to the robust network")
	}

	third, err := r.Execute(ctx, crowdedSet(true), Options{ErrorMargin: 0.05})
	if err != nil {
		t.Fatalf("third Execute: %v", err)
	}
	if third.CacheInfo.Hit {
		t.Error("different margin hit the cache")
	}

	fresh, err := r.Execute(ctx, crowdedSet(true), Options{Refresh: true})
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if fresh.CacheInfo.Hit || fresh.RunID == first.RunID {
		t.Error("Refresh served a cached result")
	}
}

// forkSet yields four valid trees with AllLevels: 10 and 01 each hang
// below GERMLINE or 11.
func forkSet() *mutation.Set {
	return &mutation.Set{
		SampleNames: []string{"primary", "met"},
		Groups: []*mutation.Group{
			mutation.NewGroup("11", true, cluster(0.5, 0.5)),
			mutation.NewGroup("10", true, cluster(0.2)),
			mutation.NewGroup("01", true, cluster(0.2)),
		},
	}
}

func TestExecuteCacheKeyOptions(t *testing.T) {
	ctx := context.Background()

	t.Run("no_rebuild", func(t *testing.T) {
		c, err := cache.NewFileCache(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		r := NewRunner(c, nil, nil)
		res, err := r.Execute(ctx, crowdedSet(true), Options{})
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if !res.Report.Rebuilt {
			t.Fatal("first run did not rebuild")
		}

		res, err = r.Execute(ctx, crowdedSet(true), Options{NoRebuild: true})
		if !errors.Is(err, errors.ErrCodeNoValidLineage) {
			t.Errorf("NoRebuild error = %v, want NO_VALID_LINEAGE", err)
		}
		if res != nil {
			t.Errorf("NoRebuild returned a result (hit = %v, rebuilt = %v)", res.CacheInfo.Hit, res.Report.Rebuilt)
		}
	})

	t.Run("top", func(t *testing.T) {
		c, err := cache.NewFileCache(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		r := NewRunner(c, nil, nil)
		one, err := r.Execute(ctx, forkSet(), Options{AllLevels: true, Top: 1})
		if err != nil {
			t.Fatalf("Execute top 1: %v", err)
		}
		if len(one.Trees) != 1 || len(one.Report.Trees) != 1 {
			t.Fatalf("top 1 kept %d/%d trees", len(one.Trees), len(one.Report.Trees))
		}

		all, err := r.Execute(ctx, forkSet(), Options{AllLevels: true})
		if err != nil {
			t.Fatalf("Execute default top: %v", err)
		}
		if all.CacheInfo.Hit {
			t.Error("default top served the top 1 entry")
		}
		if len(all.Trees) <= 1 || len(all.Report.Trees) != len(all.Trees) {
			t.Errorf("default top kept %d/%d trees, want more than 1", len(all.Trees), len(all.Report.Trees))
		}
	})
}

func TestExecuteHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	defer observability.Reset()

	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(context.Background(), crowdedSet(true), Options{}); err != nil {
		t.Fatal(err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	want := []string{"build", "enumerate", "evaluate", "rebuild", "build", "enumerate", "evaluate"}
	if strings.Join(h.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", h.events, want)
	}
	if h.misses != 1 {
		t.Errorf("cache misses = %d, want 1", h.misses)
	}
}

func TestRender(t *testing.T) {
	ctx := context.Background()
	res, err := NewRunner(nil, nil, nil).Execute(ctx, chainSet(), Options{})
	if err != nil {
		t.Fatal(err)
	}

	out, err := Render(ctx, res, RenderOptions{Formats: []render.Format{render.FormatDOT}, Samples: true})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	dot := string(out[render.FormatDOT])
	if !strings.Contains(dot, `s0 [label="primary"`) || !strings.Contains(dot, "n1 -> n2;") {
		t.Errorf("tree DOT:\n%s", dot)
	}

	out, err = Render(ctx, res, RenderOptions{Kind: KindGraph, Formats: []render.Format{render.FormatDOT}})
	if err != nil {
		t.Fatalf("Render graph: %v", err)
	}
	if !strings.Contains(string(out[render.FormatDOT]), "rank=same") {
		t.Error("graph DOT missing level ranks")
	}

	if _, err := Render(ctx, res, RenderOptions{Tree: 3}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing tree error = %v, want NOT_FOUND", err)
	}
	if _, err := Render(ctx, res, RenderOptions{Kind: "tower"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad kind error = %v, want INVALID_INPUT", err)
	}
	if _, err := Render(ctx, res, RenderOptions{Formats: []render.Format{"pdf"}}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("bad format error = %v, want UNSUPPORTED", err)
	}
}

func TestRenderWithCacheInfo(t *testing.T) {
	ctx := context.Background()
	c, _ := cache.NewFileCache(t.TempDir())
	r := NewRunner(c, nil, nil)
	res, err := r.Execute(ctx, chainSet(), Options{})
	if err != nil {
		t.Fatal(err)
	}

	opts := RenderOptions{Formats: []render.Format{render.FormatDOT}}
	first, hit, err := r.RenderWithCacheInfo(ctx, res, opts)
	if err != nil || hit {
		t.Fatalf("first render hit = %v, err = %v", hit, err)
	}
	second, hit, err := r.RenderWithCacheInfo(ctx, res, opts)
	if err != nil || !hit {
		t.Fatalf("second render hit = %v, err = %v", hit, err)
	}
	if string(first[render.FormatDOT]) != string(second[render.FormatDOT]) {
		t.Error("cached artifact differs")
	}
}

func TestReadInput(t *testing.T) {
	table := "#chrom\tpos\tprimary\tmet\n1\t100\t0.30\t0.20\n1\t200\t0.25\t0.00\n"
	set, err := ReadInput(strings.NewReader(table), "", cio.TableOptions{})
	if err != nil {
		t.Fatalf("ReadInput(table): %v", err)
	}
	if len(set.Groups) != 2 || set.Groups[0].Tag != "11" {
		t.Errorf("table groups = %d, first tag %q", len(set.Groups), set.Groups[0].Tag)
	}

	js := `{"samples": ["a"], "groups": [{"tag": "1", "robust": true, "clusters": [{"centroid": [0.3], "stddev": [0.01]}]}]}`
	set, err = ReadInput(strings.NewReader(js), "", cio.TableOptions{})
	if err != nil {
		t.Fatalf("ReadInput(json): %v", err)
	}
	if set.NumSamples() != 1 || len(set.Groups[0].Samples) != 1 {
		t.Errorf("json set = %+v", set)
	}

	if _, err := ReadInput(strings.NewReader(js), "xml", cio.TableOptions{}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("unknown format error = %v", err)
	}
}

func TestDetectInputFormat(t *testing.T) {
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"set.json", InputJSON, true},
		{"SNV.TSV", InputTable, true},
		{"db.txt", InputTable, true},
		{"set.yaml", "", false},
	}
	for _, tt := range tests {
		got, err := DetectInputFormat(tt.path)
		if got != tt.want || (err == nil) != tt.ok {
			t.Errorf("DetectInputFormat(%q) = %q, %v", tt.path, got, err)
		}
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	observability.NoopCacheHooks

	mu     sync.Mutex
	events []string
	misses int
}

func (h *recordingHooks) record(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnBuildStart(context.Context, int) { h.record("build") }
func (h *recordingHooks) OnEnumerateStart(context.Context, int) {
	h.record("enumerate")
}
func (h *recordingHooks) OnEvaluate(context.Context, int, int, time.Duration) {
	h.record("evaluate")
}
func (h *recordingHooks) OnRebuild(context.Context, int) { h.record("rebuild") }
func (h *recordingHooks) OnCacheMiss(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses++
}

func TestLoadExampleInputs(t *testing.T) {
	tests := []struct {
		path    string
		samples int
		groups  int
	}{
		{"../../examples/mutations/two_samples.json", 2, 3},
		// 111 trunk, 110 branch, 100 primary private, 001 liver private
		{"../../examples/mutations/snvs.tsv", 3, 4},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			set, err := LoadInput(tt.path, "", cio.TableOptions{})
			if err != nil {
				t.Fatalf("LoadInput: %v", err)
			}
			if set.NumSamples() != tt.samples {
				t.Errorf("samples = %d, want %d", set.NumSamples(), tt.samples)
			}
			if len(set.Groups) != tt.groups {
				t.Errorf("groups = %d, want %d", len(set.Groups), tt.groups)
			}
		})
	}
}
