package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/tgadmin/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces lock keys when none is configured.
const DefaultPrefix = "tgadmin:"

// DefaultPollInterval is how often a blocked Lock retries.
const DefaultPollInterval = 50 * time.Millisecond

var (
	// ErrLockAcquire is returned when the lock cannot be acquired.
	ErrLockAcquire = errors.New("failed to acquire distributed lock")
)

// unlockScript deletes the key only if it still holds our token.
var unlockScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// Locker implements ports.DistributedLocker using Redis.
type Locker struct {
	client backend.UniversalClient
	prefix string
	poll   time.Duration
}

// Option configures the Locker.
type Option func(*Locker)

// WithPrefix sets the key namespace.
func WithPrefix(prefix string) Option {
	return func(l *Locker) {
		l.prefix = prefix
	}
}

// WithPollInterval sets how often a blocked Lock retries.
func WithPollInterval(d time.Duration) Option {
	return func(l *Locker) {
		if d > 0 {
			l.poll = d
		}
	}
}

// NewLocker creates a new Redis locker.
func NewLocker(client backend.UniversalClient, opts ...Option) *Locker {
	l := &Locker{
		client: client,
		prefix: DefaultPrefix,
		poll:   DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Ping checks the connection, so a misconfigured address fails at startup.
func (l *Locker) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Lock acquires a distributed lock for the given key using Redis SET NX PX.
// The stored token is unique per acquisition, so a holder whose lock expired
// cannot release the lock of its successor.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: %s: %v", ErrLockAcquire, lockKey, err)
		}
		if ok {
			return func(ctx context.Context) error {
				return unlockScript.Run(ctx, l.client, []string{lockKey}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
