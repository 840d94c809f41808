package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/clonetree/pkg/errors"
	"github.com/matzehuels/clonetree/pkg/mutation"
)

// ReadJSON decodes and validates a mutation set from r.
//
// Groups without an explicit sample list get one derived from their tag.
// Malformed JSON is reported as [errors.ErrCodeInvalidFormat]; validation
// failures keep the codes of [mutation.Set.Validate]. ReadJSON does not
// close r.
func ReadJSON(r io.Reader) (*mutation.Set, error) {
	var set mutation.Set
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&set); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode mutation set")
	}
	for _, g := range set.Groups {
		if g != nil && len(g.Samples) == 0 {
			g.Samples = mutation.SamplesFromTag(g.Tag)
		}
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}

// ImportJSON reads a mutation set from the JSON file at path.
func ImportJSON(path string) (*mutation.Set, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSON(f)
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	return f, nil
}
