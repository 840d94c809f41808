package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/clonetree/pkg/mutation"
)

// WriteJSON encodes a mutation set as indented JSON.
// The output can be re-read with [ReadJSON].
func WriteJSON(set *mutation.Set, w io.Writer) error {
	return encode(set, w)
}

// ExportJSON writes a mutation set to a JSON file at path.
func ExportJSON(set *mutation.Set, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(set, f)
}

func encode(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
