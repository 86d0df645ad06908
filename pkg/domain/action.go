package domain

import (
	"fmt"
)

// MaxPayloadBytes is the largest button payload the chat transport accepts.
const MaxPayloadBytes = 64

// ActionKind is what a menu button asks the controller to do.
type ActionKind byte

// Standard Action Kinds. The byte is the first character of the wire payload.
const (
	// ActionGo opens the menu of a container.
	ActionGo ActionKind = 'g'
	// ActionUpdateAt asks for a new scalar value at the target.
	ActionUpdateAt ActionKind = 'u'
	// ActionAddTo asks for a value to append to the target array.
	ActionAddTo ActionKind = 'a'
	// ActionRemoveFrom asks for a value to remove from the target array.
	ActionRemoveFrom ActionKind = 'r'
)

func (k ActionKind) String() string {
	switch k {
	case ActionGo:
		return "go"
	case ActionUpdateAt:
		return "update"
	case ActionAddTo:
		return "add"
	case ActionRemoveFrom:
		return "remove"
	}
	return fmt.Sprintf("ActionKind(%d)", byte(k))
}

func (k ActionKind) valid() bool {
	switch k {
	case ActionGo, ActionUpdateAt, ActionAddTo, ActionRemoveFrom:
		return true
	}
	return false
}

// Action is the decoded form of a button payload.
type Action struct {
	Kind   ActionKind
	Target Path
}

// Encode returns the wire payload: the kind byte followed by the encoded path.
// Payloads over MaxPayloadBytes are rejected, never truncated.
func (a Action) Encode() (string, error) {
	if !a.Kind.valid() {
		return "", fmt.Errorf("%w: unknown kind %q", ErrMalformedAction, byte(a.Kind))
	}
	payload := string(a.Kind) + a.Target.String()
	if len(payload) > MaxPayloadBytes {
		return "", fmt.Errorf("%w: %d bytes for %s %s (limit %d)", ErrPayloadTooLong, len(payload), a.Kind, a.Target, MaxPayloadBytes)
	}
	return payload, nil
}

// DecodeAction parses a wire payload produced by Encode.
func DecodeAction(payload string) (Action, error) {
	if len(payload) < 2 {
		return Action{}, fmt.Errorf("%w: %q", ErrMalformedAction, payload)
	}
	kind := ActionKind(payload[0])
	if !kind.valid() {
		return Action{}, fmt.Errorf("%w: unknown kind in %q", ErrMalformedAction, payload)
	}
	target, err := ParsePath(payload[1:])
	if err != nil {
		return Action{}, fmt.Errorf("%w: %v", ErrMalformedAction, err)
	}
	return Action{Kind: kind, Target: target}, nil
}

// MutationKind is a typed update the mutation engine can apply.
type MutationKind int

const (
	// MutationReplace overwrites (or creates) an object key.
	MutationReplace MutationKind = iota + 1
	// MutationAppend appends to an array.
	MutationAppend
	// MutationRemove removes the first equal element of an array.
	MutationRemove
)

func (k MutationKind) String() string {
	switch k {
	case MutationReplace:
		return "replace"
	case MutationAppend:
		return "append"
	case MutationRemove:
		return "remove"
	}
	return "unknown"
}

// MutationFor maps an editing action to the mutation it prepares.
func MutationFor(kind ActionKind) (MutationKind, bool) {
	switch kind {
	case ActionUpdateAt:
		return MutationReplace, true
	case ActionAddTo:
		return MutationAppend, true
	case ActionRemoveFrom:
		return MutationRemove, true
	}
	return 0, false
}

// PendingMutation is the edit a chat is collecting a value for.
type PendingMutation struct {
	Kind   MutationKind
	Target Path
}

// ReturnAddress is where the menu goes once the mutation is done:
// the parent after a replace, the array itself otherwise.
func (p PendingMutation) ReturnAddress() Path {
	if p.Kind == MutationReplace {
		return p.Target.Parent()
	}
	return p.Target
}
