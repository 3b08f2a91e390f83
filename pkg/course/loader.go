package course

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// Format identifies the on-disk encoding of a course document. The format
// is detected from the file extension on load and reused on save so a file
// never changes encoding behind the user's back.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DetectFormat maps a file path to its course document format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", errors.Errorf("unsupported course file extension %q", filepath.Ext(path))
	}
}

// Load reads and decodes a course document. Decoding is strict: unknown
// fields are an error, so a rewrite can never silently drop content the
// model does not carry.
func Load(ctx context.Context, path string) (*Course, Format, error) {
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loading course file")

	format, err := DetectFormat(path)
	if err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", errors.Errorf("reading course file: %w", err)
	}

	var c *Course
	switch format {
	case FormatJSON:
		c, err = decodeJSON(data)
	case FormatYAML:
		c, err = decodeYAML(data)
	}
	if err != nil {
		return nil, "", errors.Errorf("parsing %s: %w", path, err)
	}

	return c, format, nil
}

// Marshal encodes a course document in the given format. JSON keeps stable
// struct field order, two-space indentation and verbatim non-ASCII (no HTML
// escaping). YAML uses two-space indentation.
func Marshal(c *Course, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(c); err != nil {
			return nil, errors.Errorf("encoding JSON: %w", err)
		}
		return buf.Bytes(), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return nil, errors.Errorf("encoding YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Errorf("encoding YAML: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, errors.Errorf("unsupported course format %q", format)
	}
}

func decodeJSON(data []byte) (*Course, error) {
	var c Course
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&c); err != nil {
		return nil, errors.Errorf("parsing JSON: %w", err)
	}
	return &c, nil
}

func decodeYAML(data []byte) (*Course, error) {
	var c Course
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&c); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &c, nil
}
