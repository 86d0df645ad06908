// Package dispatch fans inbound events out to per-chat workers.
//
// Events of one chat are handled one at a time in arrival order; different
// chats proceed in parallel. A chat's worker exits once its queue drains.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/aretw0/tgadmin/internal/logging"
	"github.com/aretw0/tgadmin/pkg/domain"
)

const (
	// DefaultQueueSize bounds the backlog of a single chat.
	DefaultQueueSize = 16
	// DefaultConcurrency bounds how many chats are handled at once.
	DefaultConcurrency = 8
)

var (
	ErrQueueFull = errors.New("chat queue is full")
	ErrClosed    = errors.New("dispatcher is closed")
)

// Handler processes a single event.
type Handler func(ctx context.Context, ev domain.Event)

type worker struct {
	jobs chan domain.Event
}

// Dispatcher serializes events per chat.
type Dispatcher struct {
	handle    Handler
	queueSize int
	sem       chan struct{}
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	workers map[int64]*worker
	closed  bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithQueueSize sets the per-chat backlog.
func WithQueueSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queueSize = n
		}
	}
}

// WithConcurrency sets how many chats may be handled at once.
func WithConcurrency(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.sem = make(chan struct{}, n)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// New creates a Dispatcher. Handlers run with a context derived from parent;
// cancelling parent cancels in-flight handlers and drops queued events.
func New(parent context.Context, handle Handler, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		handle:    handle,
		queueSize: DefaultQueueSize,
		sem:       make(chan struct{}, DefaultConcurrency),
		logger:    logging.NewNop(),
		workers:   make(map[int64]*worker),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.ctx, d.cancel = context.WithCancel(parent)
	return d
}

// Enqueue queues ev behind the chat's earlier events. It never blocks:
// a full backlog returns ErrQueueFull and the event is dropped.
func (d *Dispatcher) Enqueue(ev domain.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || d.ctx.Err() != nil {
		return ErrClosed
	}

	w, ok := d.workers[ev.ChatID]
	if !ok {
		w = &worker{jobs: make(chan domain.Event, d.queueSize)}
		d.workers[ev.ChatID] = w
		d.wg.Add(1)
		go d.run(ev.ChatID, w)
	}

	select {
	case w.jobs <- ev:
		return nil
	default:
		d.logger.Warn("Dropping event, chat queue is full", "chat_id", ev.ChatID, "queue_len", len(w.jobs))
		return ErrQueueFull
	}
}

func (d *Dispatcher) run(chatID int64, w *worker) {
	defer d.wg.Done()
	for {
		select {
		case ev := <-w.jobs:
			if d.ctx.Err() != nil {
				d.retire(chatID)
				return
			}
			d.process(ev)
		default:
			// Enqueue holds mu while sending, so an empty queue seen here stays empty.
			d.mu.Lock()
			if len(w.jobs) == 0 {
				delete(d.workers, chatID)
				d.mu.Unlock()
				return
			}
			d.mu.Unlock()
		}
	}
}

func (d *Dispatcher) retire(chatID int64) {
	d.mu.Lock()
	delete(d.workers, chatID)
	d.mu.Unlock()
}

func (d *Dispatcher) process(ev domain.Event) {
	select {
	case d.sem <- struct{}{}:
	case <-d.ctx.Done():
		return
	}
	defer func() { <-d.sem }()
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Event handler panicked", "chat_id", ev.ChatID, "panic", r)
		}
	}()
	d.handle(d.ctx, ev)
}

// Active returns the number of chats with a live worker.
func (d *Dispatcher) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.workers)
}

// Drain stops accepting events and waits until every queued event is handled.
func (d *Dispatcher) Drain() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.wg.Wait()
	d.cancel()
}
