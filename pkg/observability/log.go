package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. It implements
// all three hook interfaces.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks logging to logger, or to the default logger
// when nil.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger.WithPrefix("hooks")}
}

func (h *LogHooks) OnBuildStart(_ context.Context, groups int) {
	h.logger.Debug("build started", "groups", groups)
}

func (h *LogHooks) OnBuildComplete(_ context.Context, nodes, edges int, d time.Duration, err error) {
	h.logger.Debug("build finished", "nodes", nodes, "edges", edges, "duration", d, "err", err)
}

func (h *LogHooks) OnEnumerateStart(_ context.Context, edges int) {
	h.logger.Debug("enumeration started", "edges", edges)
}

func (h *LogHooks) OnEnumerateComplete(_ context.Context, trees int, truncated bool, d time.Duration, err error) {
	h.logger.Debug("enumeration finished", "trees", trees, "truncated", truncated, "duration", d, "err", err)
}

func (h *LogHooks) OnEvaluate(_ context.Context, kept, total int, d time.Duration) {
	h.logger.Debug("constraint filter", "kept", kept, "total", total, "duration", d)
}

func (h *LogHooks) OnRebuild(_ context.Context, groups int) {
	h.logger.Debug("rebuilding from robust groups", "groups", groups)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
