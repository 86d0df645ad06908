package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker defines the interface for distributed concurrency control.
// It lets several tgadmin processes managing the same file take turns writing it.
type DistributedLocker interface {
	// Lock blocks until the lock for key is acquired or ctx is done.
	// The lock expires after ttl if it is never released.
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
