package render

import (
	"testing"

	"github.com/matzehuels/clonetree/pkg/errors"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"svg", FormatSVG, true},
		{" PNG ", FormatPNG, true},
		{"dot", FormatDOT, true},
		{"pdf", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeUnsupported) {
			t.Errorf("ParseFormat(%q) code = %v, want UNSUPPORTED", tt.in, errors.GetCode(err))
		}
	}
}

func TestContentType(t *testing.T) {
	if got := FormatSVG.ContentType(); got != "image/svg+xml" {
		t.Errorf("ContentType(svg) = %q", got)
	}
	if got := FormatDOT.ContentType(); got != "text/vnd.graphviz" {
		t.Errorf("ContentType(dot) = %q", got)
	}
}
