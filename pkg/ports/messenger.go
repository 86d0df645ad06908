package ports

import (
	"context"

	"github.com/aretw0/tgadmin/pkg/domain"
)

// Messenger is the outbound side of the chat transport.
type Messenger interface {
	// Send posts a new message and returns its id.
	Send(ctx context.Context, chatID int64, msg domain.OutboundMessage) (int, error)

	// Edit replaces the text and buttons of an existing message.
	// Returns an error wrapping domain.ErrEditFailed when the message can no
	// longer be edited (deleted, too old), so callers can fall back to Send.
	Edit(ctx context.Context, chatID int64, messageID int, msg domain.OutboundMessage) error
}
