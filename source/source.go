// Package source picks a format driver by name or file extension and
// decodes documents into recmap value trees.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/reoring/recmap"
	jsonsrc "github.com/reoring/recmap/source/json"
	tomlsrc "github.com/reoring/recmap/source/toml"
	yamlsrc "github.com/reoring/recmap/source/yaml"
)

// Format names a document syntax.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	TOML Format = "toml"
)

// ErrUnknownFormat is returned for formats or extensions without a driver.
var ErrUnknownFormat = errors.New("source: unknown format")

// ParseFormat accepts json, yaml/yml and toml (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath derives the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Open returns a token Source for data in the given format.
func Open(format Format, data []byte) (recmap.Source, error) {
	switch format {
	case JSON:
		return jsonsrc.NewBytes(data), nil
	case YAML:
		return yamlsrc.NewBytes(data)
	case TOML:
		return tomlsrc.NewBytes(data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
}

// Document is a decoded value tree with the findings that did not stop
// decoding.
type Document struct {
	Root     *recmap.Node
	Format   Format
	Warnings recmap.Issues
}

// Parse decodes data in the given format. Syntax errors and enforcement
// failures come back as recmap.Issues.
func Parse(format Format, data []byte, opts ...recmap.SourceOpt) (*Document, error) {
	src, err := Open(format, data)
	if err != nil {
		if errors.Is(err, ErrUnknownFormat) {
			return nil, err
		}
		return nil, recmap.Issues{parseIssue(err)}
	}
	root, warnings, err := recmap.DecodeSource(src, opts...)
	if err != nil {
		return nil, err
	}
	return &Document{Root: root, Format: format, Warnings: warnings}, nil
}

// Load reads and decodes a file, choosing the format from its extension.
func Load(path string, opts ...recmap.SourceOpt) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", path, err)
	}
	doc, err := Parse(format, data, opts...)
	if err != nil {
		return nil, fmt.Errorf("source: %s: %w", path, err)
	}
	return doc, nil
}

func parseIssue(err error) recmap.Issue {
	is := recmap.IssueAt(nil, nil, recmap.CodeParseError, nil)
	is.Message += ": " + err.Error()
	is.Cause = err
	return is
}
