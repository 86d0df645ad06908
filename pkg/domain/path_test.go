package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		encoded  string
	}{
		{"Root", nil, "/"},
		{"Single", []string{"age"}, "/age"},
		{"Nested", []string{"server", "http", "port"}, "/server/http/port"},
		{"Separator In Key", []string{"a/b"}, "/a~1b"},
		{"Tilde In Key", []string{"~home"}, "/~0home"},
		{"Escape Lookalike", []string{"~e"}, "/~0e"},
		{"Empty Key", []string{""}, "/~e"},
		{"Empty Key Nested", []string{"a", "", "b"}, "/a/~e/b"},
		{"Unicode", []string{"ключ", "値"}, "/ключ/値"},
		{"Spaces", []string{"two words"}, "/two words"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPath(tt.segments...)
			assert.Equal(t, tt.encoded, p.String())

			decoded, err := ParsePath(p.String())
			require.NoError(t, err)
			assert.True(t, p.Equal(decoded), "decode(encode(%q)) = %q", tt.segments, decoded.Segments())
			assert.Len(t, decoded.Segments(), len(tt.segments))
		})
	}
}

func TestParsePath_Rejects(t *testing.T) {
	for _, in := range []string{"", "age", "/a//b", "/a/", "/~", "/~2", "/a~"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParsePath(in)
			assert.ErrorIs(t, err, ErrMalformedPath)
		})
	}
}

func TestPath_Navigation(t *testing.T) {
	p := Root
	assert.True(t, p.IsRoot())
	assert.Equal(t, "", p.Base())
	assert.True(t, p.Parent().IsRoot(), "parent of root is root")

	for _, seg := range []string{"key1", "key2", "key3"} {
		p = p.Join(seg)
		assert.Equal(t, seg, p.Base())
		assert.NotEqual(t, "", p.Parent().String())
	}
	assert.Equal(t, []string{"key1", "key2", "key3"}, p.Segments())
	assert.Equal(t, "/key1/key2", p.Parent().String())
	assert.Equal(t, "/key1", p.Parent().Parent().String())
	assert.True(t, p.Parent().Parent().Parent().IsRoot())
}

func TestPath_JoinDoesNotAlias(t *testing.T) {
	base := NewPath("a", "b").Parent()
	left := base.Join("left")
	right := base.Join("right")

	assert.Equal(t, "/a/left", left.String())
	assert.Equal(t, "/a/right", right.String())
}
