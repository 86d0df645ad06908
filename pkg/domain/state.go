package domain

// Phase names the variant of a ConversationState, for logs and metrics.
type Phase string

const (
	PhaseUnauthorized  Phase = "unauthorized"
	PhaseAuthorized    Phase = "authorized"
	PhaseNavigating    Phase = "navigating"
	PhaseAwaitingInput Phase = "awaiting_input"
)

// ConversationState is the per-chat state. The set of implementations is closed:
// Unauthorized, Authorized, Navigating and AwaitingInput.
type ConversationState interface {
	Phase() Phase
	isConversationState()
}

// Unauthorized is the state of a chat on first contact.
type Unauthorized struct{}

// Authorized is a chat that passed the allow-list but has no live menu.
type Authorized struct{}

// Navigating is a chat browsing the document through a single live menu message.
type Navigating struct {
	Address       Path
	MenuMessageID int
}

// AwaitingInput is a chat whose next text message is the value for Pending.
type AwaitingInput struct {
	Pending       PendingMutation
	MenuMessageID int
}

func (Unauthorized) Phase() Phase  { return PhaseUnauthorized }
func (Authorized) Phase() Phase    { return PhaseAuthorized }
func (Navigating) Phase() Phase    { return PhaseNavigating }
func (AwaitingInput) Phase() Phase { return PhaseAwaitingInput }

func (Unauthorized) isConversationState()  {}
func (Authorized) isConversationState()    {}
func (Navigating) isConversationState()    {}
func (AwaitingInput) isConversationState() {}

// NewConversation returns the state of a chat on first contact.
func NewConversation() ConversationState {
	return Unauthorized{}
}

// MenuMessageID returns the id of the live menu message, or 0 when there is none.
func MenuMessageID(s ConversationState) int {
	switch t := s.(type) {
	case Navigating:
		return t.MenuMessageID
	case AwaitingInput:
		return t.MenuMessageID
	}
	return 0
}
