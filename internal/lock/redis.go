package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	"expensely/internal/logger"
)

// Options tunes the Redis lock.
type Options struct {
	// Expiry bounds how long a crashed holder can keep the lock.
	Expiry time.Duration
	// Tries is the number of acquisition attempts.
	Tries int
	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration
}

// DefaultOptions suits request-scoped critical sections.
func DefaultOptions() Options {
	return Options{
		Expiry:     10 * time.Second,
		Tries:      32,
		RetryDelay: 50 * time.Millisecond,
	}
}

type redisLocker struct {
	rs   *redsync.Redsync
	opts Options
}

// NewRedis creates a distributed Locker backed by client.
func NewRedis(client redis.UniversalClient, opts Options) (Locker, error) {
	if client == nil {
		return nil, errors.New("lock: redis client is nil")
	}
	if opts.Expiry <= 0 {
		return nil, fmt.Errorf("lock: expiry must be positive, got %s", opts.Expiry)
	}
	if opts.Tries < 1 {
		return nil, fmt.Errorf("lock: tries must be at least 1, got %d", opts.Tries)
	}
	if opts.RetryDelay < 0 {
		return nil, fmt.Errorf("lock: retry delay cannot be negative, got %s", opts.RetryDelay)
	}

	pool := goredis.NewPool(client)
	return &redisLocker{rs: redsync.New(pool), opts: opts}, nil
}

func (l *redisLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if key == "" {
		return ErrEmptyKey
	}

	mutex := l.rs.NewMutex(key,
		redsync.WithExpiry(l.opts.Expiry),
		redsync.WithTries(l.opts.Tries),
		redsync.WithRetryDelay(l.opts.RetryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, err)
	}

	defer func() {
		// Unlock on a fresh context so a cancelled request still releases the key.
		unlockCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if ok, err := mutex.UnlockContext(unlockCtx); err != nil || !ok {
			logger.Get().Warnw("failed to release lock", "key", key, "error", err)
		}
	}()

	return fn(ctx)
}
