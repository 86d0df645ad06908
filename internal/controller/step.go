package controller

import (
	"github.com/aretw0/tgadmin/pkg/domain"
)

// Commands understood by the controller, without the leading slash.
const (
	CommandAdmin  = "admin"
	CommandStart  = "start"
	CommandReload = "reload"
	CommandCancel = "cancel"
)

// Verdict is what the controller must do with an event.
type Verdict int

const (
	// VerdictReject answers with the generic reply and changes nothing.
	VerdictReject Verdict = iota
	// VerdictDeny refuses a requester missing from the allow-list.
	VerdictDeny
	// VerdictAuthorize moves the chat to Authorized and handles the event again.
	VerdictAuthorize
	// VerdictOpenMenu sends a fresh root menu.
	VerdictOpenMenu
	// VerdictReload re-reads the document and sends a fresh menu.
	VerdictReload
	// VerdictNavigate re-renders the live menu at Decision.Action.Target.
	VerdictNavigate
	// VerdictPrompt asks for the value of an edit.
	VerdictPrompt
	// VerdictSubmit applies the pending edit with the event text.
	VerdictSubmit
	// VerdictCancel drops the pending edit.
	VerdictCancel
)

func (v Verdict) String() string {
	switch v {
	case VerdictReject:
		return "reject"
	case VerdictDeny:
		return "deny"
	case VerdictAuthorize:
		return "authorize"
	case VerdictOpenMenu:
		return "open_menu"
	case VerdictReload:
		return "reload"
	case VerdictNavigate:
		return "navigate"
	case VerdictPrompt:
		return "prompt"
	case VerdictSubmit:
		return "submit"
	case VerdictCancel:
		return "cancel"
	}
	return "unknown"
}

// Decision is the outcome of Step.
type Decision struct {
	Verdict Verdict
	// Action is the decoded button for VerdictNavigate and VerdictPrompt.
	Action domain.Action
	// Reason explains a VerdictReject, for logs.
	Reason string
}

// Step is the transition table of a conversation. It is pure: it only looks
// at the current state, the event and whether the requester is allowed.
// Access is checked on every event, so an authorized group chat does not
// hand its menus to members missing from the allow-list.
func Step(state domain.ConversationState, ev domain.Event, allowed bool) Decision {
	if !allowed {
		return Decision{Verdict: VerdictDeny}
	}
	if _, ok := state.(domain.Unauthorized); ok || state == nil {
		return Decision{Verdict: VerdictAuthorize}
	}

	if ev.Kind == domain.EventCommand {
		switch ev.Command {
		case CommandAdmin, CommandStart:
			return Decision{Verdict: VerdictOpenMenu}
		case CommandReload:
			return Decision{Verdict: VerdictReload}
		case CommandCancel:
			if _, ok := state.(domain.AwaitingInput); ok {
				return Decision{Verdict: VerdictCancel}
			}
			return reject("nothing to cancel")
		}
		return reject("unknown command")
	}

	switch state.(type) {
	case domain.Authorized, domain.Navigating:
		// Authorized chats accept buttons too: menus sent before a restart
		// keep working once the chat is authorized again.
		if ev.Kind != domain.EventButton {
			return reject("expected a button press")
		}
		action, err := domain.DecodeAction(ev.Payload)
		if err != nil {
			return reject(err.Error())
		}
		if action.Kind == domain.ActionGo {
			return Decision{Verdict: VerdictNavigate, Action: action}
		}
		return Decision{Verdict: VerdictPrompt, Action: action}
	case domain.AwaitingInput:
		if ev.Kind == domain.EventText {
			return Decision{Verdict: VerdictSubmit}
		}
		return reject("expected a value")
	}
	return reject("unknown state")
}

func reject(reason string) Decision {
	return Decision{Verdict: VerdictReject, Reason: reason}
}
