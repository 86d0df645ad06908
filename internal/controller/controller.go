// Package controller runs the per-chat conversation that authorizes an
// operator, walks the document through menus and collects edits.
//
// Step holds the transition table and is pure. Controller executes its
// decisions against the document, the menu renderer and the messenger,
// one event per chat at a time.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/tgadmin/internal/codec"
	"github.com/aretw0/tgadmin/internal/logging"
	"github.com/aretw0/tgadmin/internal/menu"
	"github.com/aretw0/tgadmin/internal/mutation"
	"github.com/aretw0/tgadmin/internal/tree"
	"github.com/aretw0/tgadmin/pkg/domain"
	"github.com/aretw0/tgadmin/pkg/ports"
	"github.com/aretw0/tgadmin/pkg/session"
)

// Controller executes conversation decisions.
type Controller struct {
	doc       *tree.Document
	sessions  *session.Manager
	messenger ports.Messenger

	allow    AllowList
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	maxInput int
	now      func() time.Time
}

// Option configures the Controller.
type Option func(*Controller)

// WithAllowList restricts who may administer the document.
func WithAllowList(a AllowList) Option {
	return func(c *Controller) {
		c.allow = a
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(h domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = h
	}
}

// WithLogger configures a logger for the Controller.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithMaxInputSize bounds the value literals accepted from chat.
func WithMaxInputSize(n int) Option {
	return func(c *Controller) {
		c.maxInput = n
	}
}

// New creates a Controller over one shared document.
func New(doc *tree.Document, sessions *session.Manager, messenger ports.Messenger, opts ...Option) *Controller {
	c := &Controller{
		doc:       doc,
		sessions:  sessions,
		messenger: messenger,
		logger:    logging.NewNop(),
		maxInput:  DefaultMaxInputSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Handle processes one inbound event. Events of one chat must be handed in
// arrival order; Handle itself serializes them through the session manager.
// A returned error means the chat was left in its last committed state.
func (c *Controller) Handle(ctx context.Context, ev domain.Event) error {
	if c.hooks.OnEvent != nil {
		c.hooks.OnEvent(ctx, &ev)
	}

	return c.sessions.Transact(ctx, ev.ChatID, func(ctx context.Context, state domain.ConversationState) (domain.ConversationState, error) {
		next, err := c.dispatch(ctx, state, ev)
		if next != nil && next.Phase() != state.Phase() && c.hooks.OnTransition != nil {
			c.hooks.OnTransition(ctx, &domain.TransitionEvent{
				EventBase: c.base(ev.ChatID),
				Trigger:   ev.Kind,
				From:      state.Phase(),
				To:        next.Phase(),
			})
		}
		if err != nil {
			c.logger.Warn("Event failed, chat keeps its last committed state",
				"chat_id", ev.ChatID,
				"kind", ev.Kind,
				"err", err,
			)
		}
		return next, err
	})
}

// dispatch returns the next state, or nil to keep the current one.
func (c *Controller) dispatch(ctx context.Context, state domain.ConversationState, ev domain.Event) (domain.ConversationState, error) {
	d := Step(state, ev, c.allow.Allows(ev))
	c.logger.Debug("Event", "chat_id", ev.ChatID, "phase", state.Phase(), "kind", ev.Kind, "verdict", d.Verdict)

	switch d.Verdict {
	case VerdictDeny:
		c.logger.Info("Access denied", "chat_id", ev.ChatID, "sender_id", ev.SenderID)
		if c.hooks.OnDenied != nil {
			c.hooks.OnDenied(ctx, &domain.AccessEvent{EventBase: c.base(ev.ChatID), SenderID: ev.SenderID})
		}
		return nil, c.send(ctx, ev.ChatID, textAccessDenied)

	case VerdictAuthorize:
		c.logger.Info("Chat authorized", "chat_id", ev.ChatID, "sender_id", ev.SenderID)
		next, err := c.dispatch(ctx, domain.Authorized{}, ev)
		if next == nil {
			next = domain.Authorized{}
		}
		return next, err

	case VerdictOpenMenu:
		return c.openMenu(ctx, ev.ChatID, domain.Root)

	case VerdictReload:
		return c.reload(ctx, state, ev.ChatID)

	case VerdictNavigate:
		menuID := domain.MenuMessageID(state)
		if menuID == 0 {
			menuID = ev.MessageID
		}
		return c.navigate(ctx, ev.ChatID, menuID, d.Action.Target)

	case VerdictPrompt:
		return c.prompt(ctx, state, ev, d.Action)

	case VerdictSubmit:
		return c.submit(ctx, state.(domain.AwaitingInput), ev)

	case VerdictCancel:
		pending := state.(domain.AwaitingInput).Pending
		if err := c.send(ctx, ev.ChatID, textCancelled); err != nil {
			return nil, err
		}
		return c.openMenu(ctx, ev.ChatID, pending.ReturnAddress())
	}

	c.logger.Debug("Unhandled input", "chat_id", ev.ChatID, "phase", state.Phase(), "reason", d.Reason)
	return nil, c.send(ctx, ev.ChatID, textUnhandled)
}

func (c *Controller) reload(ctx context.Context, state domain.ConversationState, chatID int64) (domain.ConversationState, error) {
	if err := c.doc.Reload(ctx); err != nil {
		c.logger.Error("Reload failed", "path", c.doc.Path(), "err", err)
		return nil, c.send(ctx, chatID, "❌ Reload failed: "+err.Error())
	}
	if err := c.send(ctx, chatID, textReloaded); err != nil {
		return nil, err
	}

	addr := domain.Root
	switch s := state.(type) {
	case domain.Navigating:
		addr = s.Address
	case domain.AwaitingInput:
		addr = s.Pending.ReturnAddress()
	}
	return c.openMenu(ctx, chatID, addr)
}

func (c *Controller) prompt(ctx context.Context, state domain.ConversationState, ev domain.Event, action domain.Action) (domain.ConversationState, error) {
	kind, ok := domain.MutationFor(action.Kind)
	if !ok {
		return nil, c.send(ctx, ev.ChatID, textUnhandled)
	}
	pending := domain.PendingMutation{Kind: kind, Target: action.Target}

	var current domain.Value
	if kind == domain.MutationReplace {
		current, _ = c.doc.Get(action.Target)
	}
	if err := c.send(ctx, ev.ChatID, promptText(pending, current)); err != nil {
		return nil, err
	}

	menuID := domain.MenuMessageID(state)
	if menuID == 0 {
		menuID = ev.MessageID
	}
	return domain.AwaitingInput{Pending: pending, MenuMessageID: menuID}, nil
}

func (c *Controller) submit(ctx context.Context, state domain.AwaitingInput, ev domain.Event) (domain.ConversationState, error) {
	pending := state.Pending

	input, err := SanitizeInput(ev.Text, c.maxInput)
	if err != nil {
		return nil, c.send(ctx, ev.ChatID, "❌ "+err.Error()+"\n"+promptText(pending, nil))
	}
	v, err := codec.ParseLiteral(input)
	if err != nil {
		return nil, c.send(ctx, ev.ChatID, "❌ That is not a value I can read.\n"+promptText(pending, nil))
	}

	err = c.doc.WithWrite(ctx, func(w *tree.Writer) error {
		if err := mutation.Apply(w.Root(), pending.Target, pending.Kind, v); err != nil {
			return err
		}
		return w.Persist()
	})
	if c.hooks.OnMutation != nil {
		c.hooks.OnMutation(ctx, &domain.MutationEvent{
			EventBase: c.base(ev.ChatID),
			Kind:      pending.Kind,
			Target:    pending.Target.String(),
			Err:       err,
		})
	}

	switch {
	case err == nil:
		c.logger.Info("Document updated", "chat_id", ev.ChatID, "kind", pending.Kind, "target", pending.Target.String())
		// The edit is on disk: leave AwaitingInput even if the chat cannot
		// be told, or a resent value would be applied twice.
		applied := domain.Navigating{Address: pending.ReturnAddress(), MenuMessageID: state.MenuMessageID}
		if err := c.send(ctx, ev.ChatID, confirmText(pending, v)); err != nil {
			return applied, err
		}
		next, err := c.openMenu(ctx, ev.ChatID, pending.ReturnAddress())
		if err != nil {
			return applied, err
		}
		return next, nil

	case errors.Is(err, domain.ErrTypeMismatch), errors.Is(err, domain.ErrEmptyArray), errors.Is(err, domain.ErrValueNotFound):
		c.logger.Info("Mutation refused", "chat_id", ev.ChatID, "target", pending.Target.String(), "err", err)
		return nil, c.send(ctx, ev.ChatID, "❌ "+err.Error()+"\nSend another value or /cancel.")

	case errors.Is(err, domain.ErrAddressNotFound):
		c.logger.Info("Mutation target vanished", "chat_id", ev.ChatID, "target", pending.Target.String())
		if err := c.send(ctx, ev.ChatID, textGone); err != nil {
			return nil, err
		}
		return c.openMenu(ctx, ev.ChatID, domain.Root)

	case errors.Is(err, domain.ErrInvariant):
		c.logger.Error("Mutation invariant violated", "chat_id", ev.ChatID, "target", pending.Target.String(), "err", err)
		return nil, c.send(ctx, ev.ChatID, textInternal)
	}

	c.logger.Error("Persist failed, change rolled back", "chat_id", ev.ChatID, "path", c.doc.Path(), "err", err)
	return nil, c.send(ctx, ev.ChatID, "❌ Could not save: "+err.Error()+"\nSend another value or /cancel.")
}

// openMenu renders addr as a new message and makes it the live menu.
func (c *Controller) openMenu(ctx context.Context, chatID int64, addr domain.Path) (domain.ConversationState, error) {
	m, addr, err := c.render(ctx, chatID, addr)
	if err != nil {
		return nil, err
	}
	id, err := c.messenger.Send(ctx, chatID, m.Message())
	if err != nil {
		return nil, fmt.Errorf("failed to send menu: %w", err)
	}
	c.menuShown(ctx, chatID, addr, false)
	return domain.Navigating{Address: addr, MenuMessageID: id}, nil
}

// navigate edits the live menu in place, or sends a new one when the old
// message can no longer be edited.
func (c *Controller) navigate(ctx context.Context, chatID int64, menuID int, addr domain.Path) (domain.ConversationState, error) {
	if menuID == 0 {
		return c.openMenu(ctx, chatID, addr)
	}
	m, addr, err := c.render(ctx, chatID, addr)
	if err != nil {
		return nil, err
	}

	err = c.messenger.Edit(ctx, chatID, menuID, m.Message())
	if err == nil {
		c.menuShown(ctx, chatID, addr, false)
		return domain.Navigating{Address: addr, MenuMessageID: menuID}, nil
	}
	if !errors.Is(err, domain.ErrEditFailed) {
		return nil, fmt.Errorf("failed to edit menu: %w", err)
	}

	c.logger.Debug("Menu message not editable, sending a new one", "chat_id", chatID, "message_id", menuID, "err", err)
	id, err := c.messenger.Send(ctx, chatID, m.Message())
	if err != nil {
		return nil, fmt.Errorf("failed to send menu: %w", err)
	}
	c.menuShown(ctx, chatID, addr, true)
	return domain.Navigating{Address: addr, MenuMessageID: id}, nil
}

// render renders addr, falling back to the root when addr no longer
// resolves to a container (the document was reloaded under the menu).
func (c *Controller) render(ctx context.Context, chatID int64, addr domain.Path) (menu.Menu, domain.Path, error) {
	var m menu.Menu
	err := c.doc.View(func(root domain.Value) error {
		var err error
		m, err = menu.Render(root, addr)
		if errors.Is(err, domain.ErrAddressNotFound) && !addr.IsRoot() {
			addr = domain.Root
			m, err = menu.Render(root, addr)
		}
		return err
	})
	if err != nil {
		// The root itself is a scalar: there is nothing to browse.
		c.logger.Error("Cannot render menu", "chat_id", chatID, "address", addr.String(), "err", err)
		return menu.Menu{}, addr, fmt.Errorf("failed to render %s: %w", addr, err)
	}
	if m.Unaddressable > 0 {
		c.logger.Warn("Menu entries exceed the payload limit", "address", addr.String(), "count", m.Unaddressable)
	}
	return m, addr, nil
}

func (c *Controller) menuShown(ctx context.Context, chatID int64, addr domain.Path, fallback bool) {
	if c.hooks.OnMenu != nil {
		c.hooks.OnMenu(ctx, &domain.MenuEvent{EventBase: c.base(chatID), Address: addr.String(), Fallback: fallback})
	}
}

func (c *Controller) send(ctx context.Context, chatID int64, text string) error {
	if _, err := c.messenger.Send(ctx, chatID, domain.OutboundMessage{Text: text}); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (c *Controller) base(chatID int64) domain.EventBase {
	return domain.EventBase{Timestamp: c.now(), ChatID: chatID}
}
