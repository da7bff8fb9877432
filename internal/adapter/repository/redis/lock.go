package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// LockOptions configures SettleLocker.
type LockOptions struct {
	// Expiry bounds how long a crashed holder keeps the lock.
	Expiry time.Duration
	// Tries is the number of acquisition attempts.
	Tries int
	// RetryDelay is the wait between attempts.
	RetryDelay time.Duration
	// DriftFactor accounts for clock drift between nodes.
	DriftFactor float64
}

// DefaultLockOptions returns the options used for settlement locks.
func DefaultLockOptions() LockOptions {
	return LockOptions{
		Expiry:      10 * time.Second,
		Tries:       32,
		RetryDelay:  100 * time.Millisecond,
		DriftFactor: 0.01,
	}
}

// SettleLocker implements usecase.Locker with a Redis mutex per key, so settlements
// of one (payer, creditor) pair are serialized across server instances.
type SettleLocker struct {
	redsync *redsync.Redsync
	opts    LockOptions
	logger  zerolog.Logger
}

// NewSettleLocker creates a new SettleLocker.
func NewSettleLocker(client *redis.Client, opts LockOptions, logger zerolog.Logger) *SettleLocker {
	return &SettleLocker{
		redsync: redsync.New(goredis.NewPool(client)),
		opts:    opts,
		logger:  logger,
	}
}

// WithLock runs fn while holding the mutex for key.
func (l *SettleLocker) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	mutex := l.redsync.NewMutex(
		"lock:"+key,
		redsync.WithExpiry(l.opts.Expiry),
		redsync.WithTries(l.opts.Tries),
		redsync.WithRetryDelay(l.opts.RetryDelay),
		redsync.WithDriftFactor(l.opts.DriftFactor),
	)

	if err := mutex.LockContext(ctx); err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}

	defer func() {
		// release even when ctx was cancelled while fn ran
		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()

		if ok, err := mutex.UnlockContext(unlockCtx); !ok || err != nil {
			l.logger.Warn().Err(err).Str("key", key).Msg("failed to release lock")
		}
	}()

	return fn(ctx)
}
