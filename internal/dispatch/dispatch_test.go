package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/tgadmin/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDispatcher_PreservesOrderPerChat(t *testing.T) {
	var mu sync.Mutex
	seen := map[int64][]int{}

	d := New(context.Background(), func(_ context.Context, ev domain.Event) {
		time.Sleep(time.Millisecond)
		mu.Lock()
		seen[ev.ChatID] = append(seen[ev.ChatID], ev.MessageID)
		mu.Unlock()
	}, WithQueueSize(64))

	for i := 0; i < 20; i++ {
		for chat := int64(1); chat <= 3; chat++ {
			require.NoError(t, d.Enqueue(domain.Event{ChatID: chat, MessageID: i}))
		}
	}
	d.Drain()

	for chat := int64(1); chat <= 3; chat++ {
		require.Len(t, seen[chat], 20)
		for i, id := range seen[chat] {
			assert.Equal(t, i, id, "chat %d out of order", chat)
		}
	}
	assert.Equal(t, 0, d.Active())
}

func TestDispatcher_OneEventPerChatAtATime(t *testing.T) {
	var inFlight, maxInFlight int32

	d := New(context.Background(), func(context.Context, domain.Event) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
	}, WithQueueSize(32))

	for i := 0; i < 10; i++ {
		require.NoError(t, d.Enqueue(domain.Event{ChatID: 7, MessageID: i}))
	}
	d.Drain()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight))
}

func TestDispatcher_ChatsRunInParallel(t *testing.T) {
	release := make(chan struct{})
	started := make(chan int64, 2)

	d := New(context.Background(), func(_ context.Context, ev domain.Event) {
		started <- ev.ChatID
		<-release
	}, WithConcurrency(2))

	require.NoError(t, d.Enqueue(domain.Event{ChatID: 1}))
	require.NoError(t, d.Enqueue(domain.Event{ChatID: 2}))

	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(time.Second):
			t.Fatal("chats were not handled in parallel")
		}
	}
	close(release)
	d.Drain()
}

func TestDispatcher_QueueFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	d := New(context.Background(), func(_ context.Context, ev domain.Event) {
		if ev.MessageID == 0 {
			close(started)
		}
		<-release
	}, WithQueueSize(1))

	require.NoError(t, d.Enqueue(domain.Event{ChatID: 1, MessageID: 0}))
	<-started
	require.NoError(t, d.Enqueue(domain.Event{ChatID: 1, MessageID: 1}))
	assert.ErrorIs(t, d.Enqueue(domain.Event{ChatID: 1, MessageID: 2}), ErrQueueFull)

	close(release)
	d.Drain()
}

func TestDispatcher_ParentCancelStopsHandlers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	var handled int32

	d := New(ctx, func(ctx context.Context, _ domain.Event) {
		if atomic.AddInt32(&handled, 1) == 1 {
			close(started)
		}
		<-ctx.Done()
	})

	require.NoError(t, d.Enqueue(domain.Event{ChatID: 1}))
	require.NoError(t, d.Enqueue(domain.Event{ChatID: 1}))
	<-started
	assert.Equal(t, 1, d.Active())

	cancel()
	d.Drain()

	assert.Equal(t, int32(1), atomic.LoadInt32(&handled), "queued event is dropped")
	assert.Equal(t, 0, d.Active())
	assert.ErrorIs(t, d.Enqueue(domain.Event{ChatID: 1}), ErrClosed)
}

func TestDispatcher_RecoversFromPanic(t *testing.T) {
	var handled int32
	d := New(context.Background(), func(_ context.Context, ev domain.Event) {
		if ev.MessageID == 0 {
			panic("boom")
		}
		atomic.AddInt32(&handled, 1)
	})

	require.NoError(t, d.Enqueue(domain.Event{ChatID: 1, MessageID: 0}))
	require.NoError(t, d.Enqueue(domain.Event{ChatID: 1, MessageID: 1}))
	d.Drain()

	assert.Equal(t, int32(1), atomic.LoadInt32(&handled))
}
