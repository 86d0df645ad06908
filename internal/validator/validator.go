// Package validator reports the parts of a document that cannot be edited from chat.
package validator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/tgadmin/internal/mutation"
	"github.com/aretw0/tgadmin/pkg/domain"
)

// Severity ranks an Issue.
type Severity string

const (
	// SeverityError means the document cannot be managed at all.
	SeverityError Severity = "error"
	// SeverityWarning means some entries will be unavailable or restricted.
	SeverityWarning Severity = "warning"
)

// Issue is one finding at an address.
type Issue struct {
	Address  domain.Path
	Severity Severity
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s: %s", i.Severity, i.Address, i.Message)
}

// ValidateDocument walks every address reachable through object keys and
// reports entries that a chat operator could not reach or edit.
func ValidateDocument(root domain.Value) []Issue {
	var issues []Issue
	switch root.(type) {
	case *domain.Object, *domain.Array:
	default:
		return []Issue{{
			Address:  domain.Root,
			Severity: SeverityError,
			Message:  fmt.Sprintf("document root is a %s, there is nothing to browse", root.Kind()),
		}}
	}
	walk(root, domain.Root, &issues)
	return issues
}

// ValidateTree fails when any issue has SeverityError, or any issue at all when strict.
func ValidateTree(root domain.Value, strict bool) error {
	var errs []string
	for _, issue := range ValidateDocument(root) {
		if issue.Severity == SeverityError || strict {
			errs = append(errs, issue.String())
		}
	}
	if len(errs) > 0 {
		return errors.New("validation failed:\n" + strings.Join(errs, "\n"))
	}
	return nil
}

func walk(node domain.Value, addr domain.Path, issues *[]Issue) {
	switch t := node.(type) {
	case *domain.Object:
		for _, key := range t.Keys() {
			child, _ := t.Get(key)
			childAddr := addr.Join(key)

			kind := domain.ActionUpdateAt
			if _, ok := child.(*domain.Object); ok {
				kind = domain.ActionGo
			} else if _, ok := child.(*domain.Array); ok {
				kind = domain.ActionGo
			}
			if !addressable(kind, childAddr, issues) {
				continue
			}
			walk(child, childAddr, issues)
		}
	case *domain.Array:
		if !addressable(domain.ActionRemoveFrom, addr, issues) {
			return
		}
		checkElements(t, addr, issues)
	}
}

func addressable(kind domain.ActionKind, addr domain.Path, issues *[]Issue) bool {
	_, err := domain.Action{Kind: kind, Target: addr}.Encode()
	if err == nil {
		return true
	}
	*issues = append(*issues, Issue{
		Address:  addr,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf("address does not fit in a button (limit %d bytes), the entry is hidden from the menu", domain.MaxPayloadBytes),
	})
	return false
}

func checkElements(arr *domain.Array, addr domain.Path, issues *[]Issue) {
	want, ok := mutation.ElementKind(arr)
	if !ok {
		return
	}

	seen := map[domain.Kind]bool{}
	for _, item := range arr.Items {
		seen[item.Kind()] = true
	}
	if len(seen) > 1 {
		kinds := make([]string, 0, len(seen))
		for k := range seen {
			kinds = append(kinds, k.String())
		}
		sort.Strings(kinds)
		*issues = append(*issues, Issue{
			Address:  addr,
			Severity: SeverityWarning,
			Message: fmt.Sprintf("elements mix %s, only %s values can be appended or removed",
				strings.Join(kinds, " and "), want),
		})
	}
	if want == domain.KindObject || want == domain.KindArray {
		*issues = append(*issues, Issue{
			Address:  addr,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("elements are %ss, they can only be appended or removed whole as JSON literals", want),
		})
	}
}
