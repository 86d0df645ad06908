package ports

import (
	"context"

	"github.com/aretw0/tgadmin/pkg/domain"
)

// StateStore defines where the conversation state of each chat lives.
type StateStore interface {
	// Save stores the state for a chat.
	Save(ctx context.Context, chatID int64, state domain.ConversationState) error

	// Load retrieves the state for a chat.
	// Returns domain.ErrStateNotFound if the chat was never seen.
	Load(ctx context.Context, chatID int64) (domain.ConversationState, error)

	// Delete forgets a chat.
	Delete(ctx context.Context, chatID int64) error

	// List returns the chats with a stored state.
	List(ctx context.Context) ([]int64, error)
}
