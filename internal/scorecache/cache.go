// Package scorecache memoizes validated expressions per score so that
// synthesis runs at most once per TTL window.
package scorecache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultTTL is how long a cached expression set stays valid.
const DefaultTTL = 24 * time.Hour

// ErrEmptyExpressions is returned by Put for an empty expression set.
var ErrEmptyExpressions = errors.New("scorecache: empty expression set")

// Key identifies a cached expression set. Expressions are built from the
// base number, so each base has its own entries.
type Key struct {
	Target int
	Base   int
}

// String renders the key for logs and external stores.
func (k Key) String() string {
	return fmt.Sprintf("%d:%d", k.Base, k.Target)
}

// Entry is one cached expression set.
//
// Invariant: every expression evaluates to Key.Target.
type Entry struct {
	Key         Key
	Expressions []string
	CreatedAt   time.Time
}

// Store is the cache contract. Put replaces the whole set for a key; there
// are no partial updates.
type Store interface {
	// Get returns the expressions for key, or false when absent or expired.
	Get(ctx context.Context, key Key) ([]string, bool, error)
	// Put stores exprs for key, replacing any previous set.
	Put(ctx context.Context, key Key, exprs []string) error
}
