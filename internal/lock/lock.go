// Package lock serializes read-check-write sequences on a single expense.
//
// The Redis implementation coordinates every API instance through redsync;
// the local implementation serves single-instance deployments and tests.
package lock

import (
	"context"
	"errors"
)

var (
	// ErrEmptyKey is returned when WithLock is called without a key.
	ErrEmptyKey = errors.New("lock: key cannot be empty")
	// ErrNotAcquired is returned when the lock stayed held by someone else
	// for every acquisition attempt.
	ErrNotAcquired = errors.New("lock: could not acquire lock")
)

// Locker runs fn while holding the named lock.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// ExpenseKey is the lock name for one expense.
func ExpenseKey(expenseID string) string {
	return "lock:expense:" + expenseID
}
