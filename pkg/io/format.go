package io

import (
	"path/filepath"
	"strings"

	rwerrors "github.com/matzehuels/roomweaver/pkg/errors"
)

// Format is a blueprint file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat parses a format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", rwerrors.New(rwerrors.ErrCodeUnsupported, "unsupported blueprint format %q (use toml, yaml or json)", s)
}

// FormatFromPath selects the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", rwerrors.New(rwerrors.ErrCodeUnsupported, "cannot infer blueprint format of %q", path)
	}
	return ParseFormat(ext)
}
