package domain

import (
	"context"
	"time"
)

// EventKind defines the category of an inbound event.
type EventKind string

const (
	EventCommand EventKind = "command"
	EventButton  EventKind = "button"
	EventText    EventKind = "text"
)

// Event is an inbound update from the chat transport.
type Event struct {
	Kind     EventKind
	ChatID   int64
	SenderID int64

	// MessageID is the message the event came from. For a button press this is
	// the menu message carrying the button.
	MessageID int

	// Command is set for EventCommand, lower-cased and without the leading slash.
	Command string
	// Payload is set for EventButton.
	Payload string
	// Text is set for EventText.
	Text string

	ReceivedAt time.Time
}

// Button is a labelled action attached to an outbound message.
type Button struct {
	Label   string
	Payload string
}

// OutboundMessage is a message the controller asks the transport to show.
type OutboundMessage struct {
	Text    string
	Buttons []Button
}

// EventBase contains common fields for all lifecycle events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	ChatID    int64     `json:"chat_id"`
}

// TransitionEvent reports a state change of a chat.
type TransitionEvent struct {
	EventBase
	Trigger EventKind `json:"trigger"`
	From    Phase     `json:"from"`
	To      Phase     `json:"to"`
}

// MutationEvent reports an attempted mutation. Err is nil on success.
type MutationEvent struct {
	EventBase
	Kind   MutationKind `json:"kind"`
	Target string       `json:"target"`
	Err    error        `json:"-"`
}

// MenuEvent reports a rendered menu. Fallback is set when editing the live
// menu failed and a new message was sent instead.
type MenuEvent struct {
	EventBase
	Address  string `json:"address"`
	Fallback bool   `json:"fallback,omitempty"`
}

// AccessEvent reports a requester refused by the allow-list.
type AccessEvent struct {
	EventBase
	SenderID int64 `json:"sender_id"`
}

// LifecycleHooks defines callbacks for controller observability.
type LifecycleHooks struct {
	OnEvent      func(context.Context, *Event)
	OnTransition func(context.Context, *TransitionEvent)
	OnMutation   func(context.Context, *MutationEvent)
	OnMenu       func(context.Context, *MenuEvent)
	OnDenied     func(context.Context, *AccessEvent)
}
