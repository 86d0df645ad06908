package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/tgadmin/internal/logging"
	"github.com/aretw0/tgadmin/pkg/domain"
	"github.com/aretw0/tgadmin/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates access to conversation state, one chat at a time.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.StateStore

	mu    sync.Mutex
	locks map[int64]*lockEntry

	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager over the given store.
func NewManager(store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		locks:  make(map[int64]*lockEntry),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(chatID) after unlocking.
func (m *Manager) acquire(chatID int64) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[chatID]
	if !exists {
		entry = &lockEntry{}
		m.locks[chatID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[chatID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, chatID)
	}
}

// Load returns the state of a chat, or a fresh conversation if the chat is unknown.
func (m *Manager) Load(ctx context.Context, chatID int64) (domain.ConversationState, error) {
	var state domain.ConversationState
	err := m.withLock(ctx, chatID, func(ctx context.Context) error {
		var err error
		state, err = m.loadOrNew(ctx, chatID)
		return err
	})
	return state, err
}

// Transact runs fn with the current state of a chat while holding its lock.
// A non-nil state returned by fn is stored, even when fn also returns an error,
// so handlers can commit a partial transition and still report a failure.
func (m *Manager) Transact(ctx context.Context, chatID int64, fn func(context.Context, domain.ConversationState) (domain.ConversationState, error)) error {
	return m.withLock(ctx, chatID, func(ctx context.Context) error {
		current, err := m.loadOrNew(ctx, chatID)
		if err != nil {
			return err
		}

		next, fnErr := fn(ctx, current)
		if next != nil {
			if err := m.store.Save(ctx, chatID, next); err != nil {
				m.logger.Error("Failed to save conversation state", "chat_id", chatID, "phase", next.Phase(), "err", err)
				return errors.Join(fnErr, fmt.Errorf("failed to save conversation state: %w", err))
			}
		}
		return fnErr
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]int64, error) {
	return m.store.List(ctx)
}

// withLock executes a function while holding the lock for the chat.
func (m *Manager) withLock(ctx context.Context, chatID int64, fn func(context.Context) error) error {
	entry := m.acquire(chatID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(chatID)
	}()

	return fn(ctx)
}

func (m *Manager) loadOrNew(ctx context.Context, chatID int64) (domain.ConversationState, error) {
	state, err := m.store.Load(ctx, chatID)
	if errors.Is(err, domain.ErrStateNotFound) {
		m.logger.Debug("New conversation", "chat_id", chatID)
		return domain.NewConversation(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation state: %w", err)
	}
	return state, nil
}
