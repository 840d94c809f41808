package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/clonetree/pkg/cache"
	cio "github.com/matzehuels/clonetree/pkg/io"
	"github.com/matzehuels/clonetree/pkg/pipeline"
)

const chainSet = `{
  "samples": ["primary", "met"],
  "groups": [
    {"tag": "11", "robust": true, "clusters": [{"centroid": [0.45, 0.3], "stddev": [0.02, 0.01]}]},
    {"tag": "10", "robust": true, "clusters": [{"centroid": [0.2], "stddev": [0.01]}]}
  ]
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	srv := New(pipeline.NewRunner(c, nil, logger), nil, Config{})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("healthz = %d %v", resp.StatusCode, body)
	}
}

func TestReconstruct(t *testing.T) {
	ts := newTestServer(t)
	req := `{"set": ` + chainSet + `, "options": {"error_margin": 0.08}}`

	resp := post(t, ts, "/v1/reconstruct", req)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, b)
	}
	if got := resp.Header.Get("X-Cache"); got != "MISS" {
		t.Errorf("X-Cache = %q, want MISS", got)
	}
	report, err := cio.ReadReport(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if report.RunID == "" || len(report.Trees) != 1 || report.Enumerated != 1 {
		t.Errorf("report = %+v", report)
	}
	if report.Samples[1] != "met" {
		t.Errorf("Samples = %v", report.Samples)
	}

	again := post(t, ts, "/v1/reconstruct", req)
	if got := again.Header.Get("X-Cache"); got != "HIT" {
		t.Errorf("second X-Cache = %q, want HIT", got)
	}
}

func TestReconstructErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed", `{"set": `, http.StatusBadRequest, "INVALID_FORMAT"},
		{"unknown field", `{"set": ` + chainSet + `, "budget": 3}`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"missing set", `{"options": {}}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad aaf", `{"set": {"samples": ["a"], "groups": [{"tag": "1", "clusters": [{"centroid": [1.5], "stddev": [0]}]}]}}`, http.StatusBadRequest, "INVALID_AAF"},
		{"bad options", `{"set": ` + chainSet + `, "options": {"error_margin": 2}}`, http.StatusBadRequest, "INVALID_CONFIG"},
		{"no lineage", `{"set": {"samples": ["a", "b"], "groups": [
			{"tag": "11", "clusters": [{"centroid": [0.5, 0.5], "stddev": [0, 0]}]},
			{"tag": "10", "clusters": [{"centroid": [0.45], "stddev": [0]}]},
			{"tag": "10", "clusters": [{"centroid": [0.45], "stddev": [0]}]}]}}`, http.StatusUnprocessableEntity, "NO_VALID_LINEAGE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, "/v1/reconstruct", tt.body)
			var body ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.status || body.Code != tt.code {
				t.Errorf("got %d %s (%s), want %d %s", resp.StatusCode, body.Code, body.Message, tt.status, tt.code)
			}
		})
	}
}

func TestReconstructRejectsOtherContentTypes(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/v1/reconstruct", "text/plain", strings.NewReader(chainSet))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", resp.StatusCode)
	}
}

func TestRender(t *testing.T) {
	ts := newTestServer(t)
	req := `{"set": ` + chainSet + `, "render": {"kind": "tree", "formats": ["dot"], "samples": true}}`

	resp := post(t, ts, "/v1/render", req)
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.Contains(body, []byte(`s1 [label="met"`)) {
		t.Errorf("DOT missing sample leaf:\n%s", body)
	}

	bad := post(t, ts, "/v1/render", `{"set": `+chainSet+`, "render": {"formats": ["pdf"]}}`)
	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("pdf status = %d, want 400", bad.StatusCode)
	}
	missing := post(t, ts, "/v1/render", `{"set": `+chainSet+`, "render": {"tree": 5, "formats": ["dot"]}}`)
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("missing tree status = %d, want 404", missing.StatusCode)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	srv := New(pipeline.NewRunner(nil, nil, logger), nil, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe = %v, want nil after shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
