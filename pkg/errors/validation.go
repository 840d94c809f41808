package errors

import (
	"strings"
	"unicode"
)

// ValidateSampleName validates a tumor sample name taken from an input header.
//
// Sample names end up in lineage reports, DOT labels and cache keys, so the
// rules are conservative:
//   - No empty names
//   - No control characters (tabs would break the TSV round trip)
//   - Maximum length of 128 characters
func ValidateSampleName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "sample name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "sample name too long (max 128 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "sample name %q contains control characters", name)
		}
	}
	return nil
}

// ValidateTag validates a binary presence tag such as "0110".
// The tag must have exactly one character per sample and contain at least one '1'.
func ValidateTag(tag string, samples int) error {
	if len(tag) != samples {
		return New(ErrCodeInvalidInput, "tag %q has %d positions, want %d", tag, len(tag), samples)
	}
	if strings.Trim(tag, "01") != "" {
		return New(ErrCodeInvalidInput, "tag %q must only contain '0' and '1'", tag)
	}
	if !strings.Contains(tag, "1") {
		return New(ErrCodeInvalidInput, "tag %q does not occur in any sample", tag)
	}
	return nil
}

// ValidatePath validates an output path supplied on the command line or via the API.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}
