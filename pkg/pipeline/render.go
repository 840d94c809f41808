package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/clonetree/pkg/cache"
	"github.com/matzehuels/clonetree/pkg/errors"
	"github.com/matzehuels/clonetree/pkg/observability"
	"github.com/matzehuels/clonetree/pkg/render"
	"github.com/matzehuels/clonetree/pkg/render/nodelink"
)

// Diagram kinds.
const (
	KindGraph = "graph"
	KindTree  = "tree"
)

// RenderOptions selects what to draw from a result.
type RenderOptions struct {
	Kind     string          `json:"kind,omitempty"` // graph or tree (default)
	Tree     int             `json:"tree,omitempty"` // 0-based rank
	Formats  []render.Format `json:"formats,omitempty"`
	Detailed bool            `json:"detailed,omitempty"`
	Samples  bool            `json:"samples,omitempty"`
}

// ValidateAndSetDefaults checks the selection against res and applies
// defaults: a tree diagram of the best tree in SVG.
func (o *RenderOptions) ValidateAndSetDefaults(res *Result) error {
	if o.Kind == "" {
		o.Kind = KindTree
	}
	if len(o.Formats) == 0 {
		o.Formats = []render.Format{render.FormatSVG}
	}
	for _, f := range o.Formats {
		if _, err := render.ParseFormat(string(f)); err != nil {
			return err
		}
	}
	switch o.Kind {
	case KindGraph:
	case KindTree:
		if o.Tree < 0 || o.Tree >= len(res.Trees) {
			return errors.New(errors.ErrCodeNotFound, "tree %d not available (%d ranked)", o.Tree+1, len(res.Trees))
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown diagram kind %q (want graph or tree)", o.Kind)
	}
	return nil
}

func (o *RenderOptions) artifactKeyOpts(format render.Format) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Kind:     o.Kind,
		Tree:     o.Tree,
		Format:   string(format),
		Detailed: o.Detailed,
		Samples:  o.Samples,
	}
}

// DOT returns the Graphviz source of the selected diagram.
func DOT(res *Result, opts RenderOptions) string {
	nopts := nodelink.Options{Detailed: opts.Detailed, Samples: opts.Samples}
	if opts.Kind == KindGraph {
		return nodelink.GraphDOT(res.Graph, nopts)
	}
	return nodelink.TreeDOT(res.Trees[opts.Tree], res.Report.Samples, nopts)
}

// Render draws the selected diagram in every requested format.
func Render(ctx context.Context, res *Result, opts RenderOptions) (map[render.Format][]byte, error) {
	if err := opts.ValidateAndSetDefaults(res); err != nil {
		return nil, err
	}
	dot := DOT(res, opts)

	artifacts := make(map[render.Format][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := nodelink.Render(ctx, dot, format)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderWithCacheInfo renders with artifact caching and reports whether
// every format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res *Result, opts RenderOptions) (map[render.Format][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(res); err != nil {
		return nil, false, err
	}
	base := cache.Hash([]byte(res.Key))

	artifacts := make(map[render.Format][]byte, len(opts.Formats))
	if res.Key != "" {
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(base, opts.artifactKeyOpts(format)))
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	rendered, err := Render(ctx, res, opts)
	if err != nil {
		return nil, false, err
	}
	if res.Key != "" {
		for format, data := range rendered {
			if err := r.Cache.Set(ctx, r.Keyer.ArtifactKey(base, opts.artifactKeyOpts(format)), data, cache.TTLArtifact); err == nil {
				observability.Cache().OnCacheSet(ctx, "artifact", len(data))
			}
		}
	}
	return rendered, false, nil
}
