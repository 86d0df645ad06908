package graph

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/tgadmin/pkg/domain"
)

// LabelRunes caps the literal shown for a scalar entry.
const LabelRunes = 40

// GraphOverlay marks a position on the diagram.
type GraphOverlay struct {
	// Current is highlighted; its ancestors are styled as visited.
	Current domain.Path
}

// GenerateMermaid produces a Mermaid flowchart of the document tree, in key order.
// Shapes follow what the entry offers in chat:
// - Root: ((Circle))
// - Object: [Rectangle], opens a menu
// - Array: [[Subroutine]], append and remove
// - Scalar: [/Parallelogram/], replaced by typing a value
// Array elements are summarized by count since they have no address.
func GenerateMermaid(root domain.Value, overlay *GraphOverlay) string {
	g := &generator{ids: make(map[string]string)}
	g.sb.WriteString("graph LR\n")
	g.node(root, domain.Root, "/")

	if overlay != nil {
		g.sb.WriteString("\n    %% Overlay Styles\n")
		g.sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		g.sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		segs := overlay.Current.Segments()
		for i := 0; i < len(segs); i++ {
			if id, ok := g.ids[domain.NewPath(segs[:i]...).String()]; ok {
				fmt.Fprintf(&g.sb, "    class %s visited;\n", id)
			}
		}
		if id, ok := g.ids[overlay.Current.String()]; ok {
			fmt.Fprintf(&g.sb, "    class %s current;\n", id)
		}
	}

	return g.sb.String()
}

type generator struct {
	sb   strings.Builder
	next int
	ids  map[string]string
}

func (g *generator) node(v domain.Value, addr domain.Path, label string) string {
	id := fmt.Sprintf("n%d", g.next)
	g.next++
	g.ids[addr.String()] = id

	opener, closer := "[/", "/]"
	switch t := v.(type) {
	case *domain.Object:
		opener, closer = "[", "]"
		label = "{} " + label
	case *domain.Array:
		opener, closer = "[[", "]]"
		label = fmt.Sprintf("%s <br/> %d elements", label, t.Len())
	default:
		label = label + ": " + truncate(domain.Literal(v), LabelRunes)
	}
	if addr.IsRoot() {
		opener, closer = "((", "))"
	}
	fmt.Fprintf(&g.sb, "    %s%s\"%s\"%s\n", id, opener, sanitizeMermaidLabel(label), closer)

	if obj, ok := v.(*domain.Object); ok {
		for _, key := range obj.Keys() {
			child, _ := obj.Get(key)
			childID := g.node(child, addr.Join(key), key)
			fmt.Fprintf(&g.sb, "    %s --> %s\n", id, childID)
		}
	}
	return id
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

func sanitizeMermaidLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "#quot;")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
