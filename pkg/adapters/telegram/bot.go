// Package telegram connects the controller to the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/tgadmin/internal/logging"
	"github.com/aretw0/tgadmin/pkg/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// DefaultPollTimeout is the long-poll timeout for getUpdates.
const DefaultPollTimeout = 60 * time.Second

// Descriptions returned by the Bot API when a message cannot be edited.
var editGone = []string{
	"message to edit not found",
	"message can't be edited",
	"message_id_invalid",
}

// Bot implements ports.Messenger and polls for inbound updates.
type Bot struct {
	api         *tgbotapi.BotAPI
	logger      *slog.Logger
	pollTimeout time.Duration
	endpoint    string
	client      *http.Client
}

// Option configures a Bot.
type Option func(*Bot)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		b.logger = logger
	}
}

// WithPollTimeout sets the long-poll timeout.
func WithPollTimeout(d time.Duration) Option {
	return func(b *Bot) {
		if d > 0 {
			b.pollTimeout = d
		}
	}
}

// WithEndpoint overrides the API endpoint format, e.g. for a local Bot API server.
// The format takes the token and the method name. A nil client keeps the default.
func WithEndpoint(endpoint string, client *http.Client) Option {
	return func(b *Bot) {
		if endpoint != "" {
			b.endpoint = endpoint
		}
		if client != nil {
			b.client = client
		}
	}
}

// New authenticates the token against the Bot API and returns a ready Bot.
func New(token string, opts ...Option) (*Bot, error) {
	b := &Bot{
		logger:      logging.NewNop(),
		pollTimeout: DefaultPollTimeout,
		endpoint:    tgbotapi.APIEndpoint,
		client:      &http.Client{},
	}
	for _, opt := range opts {
		opt(b)
	}

	api, err := tgbotapi.NewBotAPIWithClient(token, b.endpoint, b.client)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	b.api = api
	b.logger.Info("Connected to telegram", "bot", api.Self.UserName)
	return b, nil
}

// Username returns the bot's handle.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Send posts a new message with one button per keyboard row.
func (b *Bot) Send(_ context.Context, chatID int64, msg domain.OutboundMessage) (int, error) {
	cfg := tgbotapi.NewMessage(chatID, msg.Text)
	if len(msg.Buttons) > 0 {
		cfg.ReplyMarkup = keyboard(msg.Buttons)
	}
	sent, err := b.api.Send(cfg)
	if err != nil {
		return 0, fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}
	return sent.MessageID, nil
}

// Edit replaces the text and keyboard of a message in place.
func (b *Bot) Edit(_ context.Context, chatID int64, messageID int, msg domain.OutboundMessage) error {
	cfg := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, msg.Text, keyboard(msg.Buttons))
	_, err := b.api.Request(cfg)
	switch {
	case err == nil:
		return nil
	case isNotModified(err):
		return nil
	case isEditGone(err):
		return fmt.Errorf("%w: message %d in chat %d: %v", domain.ErrEditFailed, messageID, chatID, err)
	default:
		return fmt.Errorf("failed to edit message %d in chat %d: %w", messageID, chatID, err)
	}
}

// Listen long-polls for updates and hands each convertible one to fn until ctx is done.
// Button presses are acknowledged before fn runs so the client stops its spinner.
func (b *Bot) Listen(ctx context.Context, fn func(domain.Event)) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(b.pollTimeout / time.Second)
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return errors.New("telegram update channel closed")
			}
			if cq := update.CallbackQuery; cq != nil {
				if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
					b.logger.Warn("Failed to answer callback query", "err", err)
				}
			}
			ev, ok := EventFromUpdate(update, time.Now())
			if !ok {
				b.logger.Debug("Ignoring update", "update_id", update.UpdateID)
				continue
			}
			fn(ev)
		}
	}
}

// EventFromUpdate converts a Bot API update into an inbound event.
// Updates other than text messages and button presses are not convertible.
func EventFromUpdate(u tgbotapi.Update, now time.Time) (domain.Event, bool) {
	if cq := u.CallbackQuery; cq != nil {
		if cq.Message == nil || cq.Message.Chat == nil {
			return domain.Event{}, false
		}
		ev := domain.Event{
			Kind:       domain.EventButton,
			ChatID:     cq.Message.Chat.ID,
			MessageID:  cq.Message.MessageID,
			Payload:    cq.Data,
			ReceivedAt: now,
		}
		if cq.From != nil {
			ev.SenderID = cq.From.ID
		}
		return ev, true
	}

	m := u.Message
	if m == nil || m.Chat == nil || m.Text == "" {
		return domain.Event{}, false
	}
	ev := domain.Event{
		ChatID:     m.Chat.ID,
		MessageID:  m.MessageID,
		ReceivedAt: now,
	}
	if m.From != nil {
		ev.SenderID = m.From.ID
	}
	if m.IsCommand() {
		ev.Kind = domain.EventCommand
		ev.Command = strings.ToLower(m.Command())
	} else {
		ev.Kind = domain.EventText
		ev.Text = m.Text
	}
	return ev, true
}

func keyboard(buttons []domain.Button) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, btn := range buttons {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Payload),
		))
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func isNotModified(err error) bool {
	return strings.Contains(describe(err), "message is not modified")
}

func isEditGone(err error) bool {
	desc := describe(err)
	for _, s := range editGone {
		if strings.Contains(desc, s) {
			return true
		}
	}
	return false
}

func describe(err error) string {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return strings.ToLower(apiErr.Message)
	}
	return strings.ToLower(err.Error())
}
