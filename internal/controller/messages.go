package controller

import (
	"fmt"

	"github.com/aretw0/tgadmin/pkg/domain"
)

const (
	textAccessDenied = "Access denied."
	textUnhandled    = "Sorry, I cannot handle this input. Send /admin to open the menu."
	textGone         = "That entry no longer exists, back to the top."
	textReloaded     = "Document reloaded from disk."
	textCancelled    = "Edit cancelled."
	textInternal     = "Something went wrong on our side. Send /admin to start over."
	literalHelp      = "Write it as JSON: 42, \"text\", true, null, [1, 2] or {\"key\": \"value\"}.\nSend /cancel to go back."
)

func promptText(p domain.PendingMutation, current domain.Value) string {
	switch p.Kind {
	case domain.MutationReplace:
		if current != nil {
			return fmt.Sprintf("New value for %s (now %s)?\n%s", p.Target, domain.Literal(current), literalHelp)
		}
		return fmt.Sprintf("New value for %s?\n%s", p.Target, literalHelp)
	case domain.MutationAppend:
		return fmt.Sprintf("Value to add to %s?\n%s", p.Target, literalHelp)
	case domain.MutationRemove:
		return fmt.Sprintf("Value to remove from %s?\n%s", p.Target, literalHelp)
	}
	return literalHelp
}

func confirmText(p domain.PendingMutation, v domain.Value) string {
	switch p.Kind {
	case domain.MutationAppend:
		return fmt.Sprintf("✅ Added %s to %s.", domain.Literal(v), p.Target)
	case domain.MutationRemove:
		return fmt.Sprintf("✅ Removed %s from %s.", domain.Literal(v), p.Target)
	}
	return fmt.Sprintf("✅ %s is now %s.", p.Target, domain.Literal(v))
}
