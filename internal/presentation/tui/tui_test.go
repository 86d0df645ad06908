package tui

import (
	"bytes"
	"testing"

	"github.com/aretw0/tgadmin/internal/menu"
	"github.com/aretw0/tgadmin/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "v1.2.3", "/srv/app.yaml")

	assert.Contains(t, buf.String(), "v1.2.3")
	assert.Contains(t, buf.String(), "/srv/app.yaml")
}

func TestMenuMarkdown(t *testing.T) {
	root := domain.NewObject()
	root.Set("tags", &domain.Array{Items: []domain.Value{domain.String("a"), domain.String("b")}})

	m, err := menu.Render(root, domain.NewPath("tags"))
	require.NoError(t, err)

	md := MenuMarkdown(m)
	assert.Contains(t, md, "# /tags\n")
	assert.Contains(t, md, "> 2 elements")
	assert.Contains(t, md, "- **..** `open`")
	assert.Contains(t, md, "`append`")
	assert.Contains(t, md, "`remove`")
}

func TestNewRenderer(t *testing.T) {
	render, err := NewRenderer(60)
	require.NoError(t, err)

	out, err := render("# Title\n\n- item")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "item")
}
