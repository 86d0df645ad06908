// Package menu renders a document position as a chat menu.
//
// Render is a pure function: the same root and address always produce the
// same Menu, so a refreshed menu is byte-identical to the one it replaces.
package menu

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/tgadmin/pkg/domain"
)

const (
	// PreviewElements is how many trailing array elements the header shows.
	PreviewElements = 25
	// PreviewRunes caps each previewed element.
	PreviewRunes = 80
	// LabelRunes caps a button label.
	LabelRunes = 48

	// UpLabel is the label of the button that opens the parent.
	UpLabel = ".."
	// AddLabel is the label of the button that appends to an array.
	AddLabel = "➕ Add value"
	// RemoveLabel is the label of the button that removes an array element.
	RemoveLabel = "➖ Remove value"
)

// Item is one menu button.
type Item struct {
	Label   string
	Action  domain.Action
	Payload string
}

// Menu is the rendered form of one address.
type Menu struct {
	Address domain.Path
	Header  string
	Items   []Item
	// Unaddressable counts children left out because their button payload
	// would exceed domain.MaxPayloadBytes.
	Unaddressable int
}

// Message converts the menu into a transport message.
func (m Menu) Message() domain.OutboundMessage {
	buttons := make([]domain.Button, len(m.Items))
	for i, it := range m.Items {
		buttons[i] = domain.Button{Label: it.Label, Payload: it.Payload}
	}
	return domain.OutboundMessage{Text: m.Header, Buttons: buttons}
}

// Render builds the menu for addr. It fails with domain.ErrAddressNotFound
// when addr does not resolve to an object or array.
func Render(root domain.Value, addr domain.Path) (Menu, error) {
	node, ok := domain.Lookup(root, addr)
	if !ok {
		return Menu{}, fmt.Errorf("%w: %s", domain.ErrAddressNotFound, addr)
	}

	m := Menu{Address: addr}
	if !addr.IsRoot() {
		m.add(UpLabel, domain.Action{Kind: domain.ActionGo, Target: addr.Parent()})
	}

	switch t := node.(type) {
	case *domain.Object:
		for _, key := range t.Keys() {
			child, _ := t.Get(key)
			childAddr := addr.Join(key)
			switch c := child.(type) {
			case *domain.Object:
				m.add("{} "+key, domain.Action{Kind: domain.ActionGo, Target: childAddr})
			case *domain.Array:
				m.add(fmt.Sprintf("[%d] %s", c.Len(), key), domain.Action{Kind: domain.ActionGo, Target: childAddr})
			default:
				m.add(key+": "+domain.Literal(child), domain.Action{Kind: domain.ActionUpdateAt, Target: childAddr})
			}
		}
		m.Header = objectHeader(addr, t, m.Unaddressable)
	case *domain.Array:
		m.add(AddLabel, domain.Action{Kind: domain.ActionAddTo, Target: addr})
		m.add(RemoveLabel, domain.Action{Kind: domain.ActionRemoveFrom, Target: addr})
		m.Header = arrayHeader(addr, t, m.Unaddressable)
	default:
		return Menu{}, fmt.Errorf("%w: %s is a %s, not a container", domain.ErrAddressNotFound, addr, node.Kind())
	}
	return m, nil
}

func (m *Menu) add(label string, action domain.Action) {
	payload, err := action.Encode()
	if err != nil {
		m.Unaddressable++
		return
	}
	m.Items = append(m.Items, Item{Label: truncate(label, LabelRunes), Action: action, Payload: payload})
}

func objectHeader(addr domain.Path, obj *domain.Object, unaddressable int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📂 %s\n%d %s", addr, obj.Len(), plural(obj.Len(), "key", "keys"))
	writeUnaddressable(&b, unaddressable)
	return b.String()
}

func arrayHeader(addr domain.Path, arr *domain.Array, unaddressable int) string {
	var b strings.Builder
	n := arr.Len()
	fmt.Fprintf(&b, "📋 %s\n%d %s", addr, n, plural(n, "element", "elements"))

	start := 0
	if n > PreviewElements {
		start = n - PreviewElements
		fmt.Fprintf(&b, ", showing the last %d", PreviewElements)
	}
	for i := start; i < n; i++ {
		fmt.Fprintf(&b, "\n%d. %s", i+1, truncate(domain.Literal(arr.Items[i]), PreviewRunes))
	}
	writeUnaddressable(&b, unaddressable)
	return b.String()
}

func writeUnaddressable(b *strings.Builder, n int) {
	if n == 0 {
		return
	}
	fmt.Fprintf(b, "\n⚠️ %d %s too deep or long to address from chat", n, plural(n, "entry is", "entries are"))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
