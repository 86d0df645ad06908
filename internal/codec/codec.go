// Package codec converts documents between bytes and domain Values.
//
// JSON input is read as JWCC (JSON with comments and trailing commas) so
// hand-edited config files parse. JSON5 files accept the full JSON5 syntax.
// Both are written back as plain indented JSON.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/aretw0/tgadmin/pkg/domain"
)

// Codec implements ports.Codec for JSON, YAML and TOML.
type Codec struct{}

// New returns a Codec.
func New() Codec {
	return Codec{}
}

// Parse decodes data written in format.
func (Codec) Parse(data []byte, format domain.Format) (domain.Value, error) {
	switch format {
	case domain.FormatJSON:
		return parseJSON(data)
	case domain.FormatJSON5:
		return parseJSON5(data)
	case domain.FormatYAML:
		return parseYAML(data)
	case domain.FormatTOML:
		return parseTOML(data)
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
}

// Serialize encodes v in format.
func (Codec) Serialize(v domain.Value, format domain.Format) ([]byte, error) {
	switch format {
	case domain.FormatJSON, domain.FormatJSON5:
		return serializeJSON(v)
	case domain.FormatYAML:
		return serializeYAML(v)
	case domain.FormatTOML:
		return serializeTOML(v)
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
}

// Canonicalize reorders v in place so that its key order matches what
// Serialize would write for format. Only TOML moves keys: plain values
// come before tables.
func Canonicalize(v domain.Value, format domain.Format) {
	if format != domain.FormatTOML {
		return
	}
	canonicalizeTOML(v)
}

// ParseLiteral reads a value typed by an operator. It accepts the same
// lenient JSON as document files: `42`, `"text"`, `[1, 2,]`, `{"a": true}`.
func ParseLiteral(text string) (domain.Value, error) {
	trimmed := bytes.TrimSpace([]byte(text))
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty input", domain.ErrMalformedValue)
	}
	v, err := parseJSON(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedValue, err)
	}
	return v, nil
}

func serializeJSON(v domain.Value) ([]byte, error) {
	compact, err := domain.MarshalJSON(v)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSerialize, err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}
