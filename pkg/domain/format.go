package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is the on-disk syntax of a document.
type Format string

const (
	// FormatJSON is JSON, read leniently with comments and trailing commas.
	FormatJSON Format = "json"
	// FormatJSON5 is read as JSON5 and written back as plain JSON.
	FormatJSON5 Format = "json5"
	// FormatYAML covers both .yaml and .yml files.
	FormatYAML Format = "yaml"
	// FormatTOML is TOML v1.0.
	FormatTOML Format = "toml"
)

// FormatFromPath detects the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "json":
		return FormatJSON, nil
	case "json5":
		return FormatJSON5, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Base(path))
}
