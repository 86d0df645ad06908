package domain

import (
	"fmt"
	"strings"
)

// Separator joins encoded segments. The root address is the bare separator,
// so an encoded path is never empty (chat transports reject empty payloads).
const Separator = "/"

// Escapes for segment text. Every segment round-trips, including segments
// containing the separator, the escape rune or nothing at all.
const (
	escapeTilde = "~0"
	escapeSlash = "~1"
	escapeEmpty = "~e"
)

// Path addresses a location inside a document as a sequence of object keys.
// The zero value is the root.
type Path struct {
	segments []string
}

// Root is the address of the document root.
var Root = Path{}

// NewPath returns the path made of segments.
func NewPath(segments ...string) Path {
	if len(segments) == 0 {
		return Root
	}
	out := make([]string, len(segments))
	copy(out, segments)
	return Path{segments: out}
}

// Join returns a new path one level below p.
func (p Path) Join(segment string) Path {
	out := make([]string, len(p.segments), len(p.segments)+1)
	copy(out, p.segments)
	return Path{segments: append(out, segment)}
}

// Parent returns the path one level above p. The parent of the root is the root.
func (p Path) Parent() Path {
	if len(p.segments) <= 1 {
		return Root
	}
	return NewPath(p.segments[:len(p.segments)-1]...)
}

// Base returns the last segment, or "" at the root.
func (p Path) Base() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// Segments returns a copy of the segments.
func (p Path) Segments() []string {
	out := make([]string, len(p.segments))
	copy(out, p.segments)
	return out
}

// IsRoot reports whether p addresses the document root.
func (p Path) IsRoot() bool {
	return len(p.segments) == 0
}

// Equal reports whether p and other address the same location.
func (p Path) Equal(other Path) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}
	for i := range p.segments {
		if p.segments[i] != other.segments[i] {
			return false
		}
	}
	return true
}

// String returns the canonical encoding, e.g. "/", "/server/port" or "/a~1b".
func (p Path) String() string {
	if len(p.segments) == 0 {
		return Separator
	}
	var b strings.Builder
	for _, seg := range p.segments {
		b.WriteString(Separator)
		b.WriteString(escapeSegment(seg))
	}
	return b.String()
}

// ParsePath decodes the canonical encoding produced by String.
// Non-canonical text (missing leading separator, raw empty segments,
// unknown escapes) is rejected so that decoding stays a bijection.
func ParsePath(s string) (Path, error) {
	if s == Separator {
		return Root, nil
	}
	if !strings.HasPrefix(s, Separator) {
		return Root, fmt.Errorf("%w: %q must start with %q", ErrMalformedPath, s, Separator)
	}
	parts := strings.Split(s[len(Separator):], Separator)
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		seg, err := unescapeSegment(part)
		if err != nil {
			return Root, fmt.Errorf("%w: %q: %v", ErrMalformedPath, s, err)
		}
		segments = append(segments, seg)
	}
	return Path{segments: segments}, nil
}

func escapeSegment(seg string) string {
	if seg == "" {
		return escapeEmpty
	}
	seg = strings.ReplaceAll(seg, "~", escapeTilde)
	return strings.ReplaceAll(seg, Separator, escapeSlash)
}

func unescapeSegment(part string) (string, error) {
	if part == "" {
		return "", fmt.Errorf("empty segment")
	}
	if part == escapeEmpty {
		return "", nil
	}
	if !strings.Contains(part, "~") {
		return part, nil
	}
	var b strings.Builder
	for i := 0; i < len(part); i++ {
		if part[i] != '~' {
			b.WriteByte(part[i])
			continue
		}
		if i+1 >= len(part) {
			return "", fmt.Errorf("dangling escape")
		}
		switch part[i+1] {
		case '0':
			b.WriteByte('~')
		case '1':
			b.WriteString(Separator)
		default:
			return "", fmt.Errorf("unknown escape ~%c", part[i+1])
		}
		i++
	}
	return b.String(), nil
}
