package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/matzehuels/clonetree/pkg/buildinfo"
	"github.com/matzehuels/clonetree/pkg/errors"
	cio "github.com/matzehuels/clonetree/pkg/io"
	"github.com/matzehuels/clonetree/pkg/pipeline"
	"github.com/matzehuels/clonetree/pkg/render"
)

// ReconstructRequest is the body of /v1/reconstruct and /v1/render.
type ReconstructRequest struct {
	Set     json.RawMessage        `json:"set"`
	Options pipeline.Options       `json:"options"`
	Render  pipeline.RenderOptions `json:"render"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleReconstruct(w http.ResponseWriter, r *http.Request) {
	res, _, err := s.execute(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("X-Cache", cacheStatus(res.CacheInfo.Hit))
	writeJSON(w, http.StatusOK, res.Report)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	res, req, err := s.execute(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ropts := req.Render
	if len(ropts.Formats) > 1 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "render accepts a single format"))
		return
	}
	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), res, ropts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var format render.Format
	for f := range artifacts {
		format = f
	}
	data := artifacts[format]

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Cache", cacheStatus(hit))
	w.Header().Set("X-Run-ID", res.RunID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// execute decodes the request and runs the pipeline under the server's
// timeout and tree budget.
func (s *Server) execute(w http.ResponseWriter, r *http.Request) (*pipeline.Result, *ReconstructRequest, error) {
	var req ReconstructRequest
	req.Options = s.cfg.Defaults
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request")
	}
	if len(req.Set) == 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "request has no mutation set")
	}
	set, err := cio.ReadJSON(bytes.NewReader(req.Set))
	if err != nil {
		return nil, nil, err
	}

	opts := req.Options
	if opts.MaxTrees == 0 || opts.MaxTrees > s.cfg.MaxTrees {
		opts.MaxTrees = s.cfg.MaxTrees
	}
	opts.Logger = s.logger

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Timeout)
	defer cancel()
	res, err := s.runner.Execute(ctx, set, opts)
	if err != nil {
		return nil, nil, err
	}
	return res, &req, nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
