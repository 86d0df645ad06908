package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/tgadmin/internal/menu"
	"github.com/aretw0/tgadmin/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown for the terminal.
// A zero width keeps glamour's default word wrap.
func NewRenderer(width int) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	return r.Render, nil
}

// MenuMarkdown describes a menu as markdown: the header as a quote and one
// list entry per button with the action it would send.
func MenuMarkdown(m menu.Menu) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", m.Address)
	for _, line := range strings.Split(m.Header, "\n") {
		fmt.Fprintf(&b, "> %s\n", line)
	}
	b.WriteString("\n")
	for _, it := range m.Items {
		fmt.Fprintf(&b, "- **%s** `%s`\n", escape(it.Label), actionName(it.Action.Kind))
	}
	return b.String()
}

func actionName(k domain.ActionKind) string {
	switch k {
	case domain.ActionGo:
		return "open"
	case domain.ActionUpdateAt:
		return "update"
	case domain.ActionAddTo:
		return "append"
	case domain.ActionRemoveFrom:
		return "remove"
	default:
		return k.String()
	}
}

var markdownEscaper = strings.NewReplacer(`*`, `\*`, `_`, `\_`, "`", "\\`", `[`, `\[`, `]`, `\]`)

func escape(s string) string {
	return markdownEscaper.Replace(s)
}
