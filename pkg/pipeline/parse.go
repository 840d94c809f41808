package pipeline

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/clonetree/pkg/errors"
	cio "github.com/matzehuels/clonetree/pkg/io"
	"github.com/matzehuels/clonetree/pkg/mutation"
)

// Input formats.
const (
	InputJSON  = "json"
	InputTable = "table"
)

// DetectInputFormat guesses the format of path from its extension.
// .json is a mutation set, .tsv, .txt and .tab are mutation tables.
func DetectInputFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return InputJSON, nil
	case ".tsv", ".txt", ".tab":
		return InputTable, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "cannot detect input format of %s (use --format json|table)", path)
}

// ReadInput reads a mutation set in the given format. An empty format
// sniffs the content: a leading '{' means JSON.
func ReadInput(r io.Reader, format string, opts cio.TableOptions) (*mutation.Set, error) {
	if format == "" {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read input")
		}
		format = InputTable
		if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
			format = InputJSON
		}
		r = bytes.NewReader(data)
	}

	switch format {
	case InputJSON:
		return cio.ReadJSON(r)
	case InputTable:
		return cio.ReadTable(r, opts)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unknown input format %q (want json or table)", format)
}

// LoadInput reads a mutation set from path, or from stdin when path is "-".
func LoadInput(path, format string, opts cio.TableOptions) (*mutation.Set, error) {
	if path == "-" {
		return ReadInput(os.Stdin, format, opts)
	}
	if format == "" {
		var err error
		if format, err = DetectInputFormat(path); err != nil {
			return nil, err
		}
	}
	switch format {
	case InputJSON:
		return cio.ImportJSON(path)
	case InputTable:
		return cio.ImportTable(path, opts)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unknown input format %q (want json or table)", format)
}
