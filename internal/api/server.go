// Package api serves reconstructions over HTTP.
//
// Routes:
//
//	GET  /healthz         liveness and build version
//	POST /v1/reconstruct  mutation set in, ranked lineage report out
//	POST /v1/render       mutation set in, diagram out (svg, png or dot)
//
// Request bodies carry the mutation set in the JSON input format together
// with pipeline options. Errors are JSON objects with a machine-readable
// code; the status follows the error code.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/clonetree/pkg/observability"
	"github.com/matzehuels/clonetree/pkg/pipeline"
)

// Defaults for Config.
const (
	DefaultTimeout      = 2 * time.Minute
	DefaultMaxBodyBytes = 8 << 20
	DefaultMaxTrees     = 1_000_000
)

// Config bounds the work a single request may cause.
type Config struct {
	// Timeout cancels a request's enumeration.
	Timeout time.Duration
	// MaxBodyBytes limits request bodies.
	MaxBodyBytes int64
	// MaxTrees caps enumeration when the request does not set a lower
	// budget.
	MaxTrees int
	// Defaults are applied to options a request leaves unset.
	Defaults pipeline.Options
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.MaxTrees <= 0 {
		c.MaxTrees = DefaultMaxTrees
	}
	return c
}

// Server is the HTTP front end of a pipeline runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	cfg    Config
}

// New creates a server. A nil logger uses the runner's logger.
func New(runner *pipeline.Runner, logger *log.Logger, cfg Config) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	return &Server{runner: runner, logger: logger, cfg: cfg.withDefaults()}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/reconstruct", s.handleReconstruct)
		r.Post("/render", s.handleRender)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// observe reports requests to the HTTP hooks and the logger.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		d := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), d)
		s.logger.Debug("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", d)
	})
}
