package scorecache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store. Expired entries are not evicted on read;
// they are reported absent and removed by Sweep or overwritten by Put.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[Key]Entry
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

// NewMemory creates an empty Memory store.
//
// Precondition: ttl > 0.
func NewMemory(ttl time.Duration, opts ...MemoryOption) *Memory {
	m := &Memory{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[Key]Entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns a copy of the cached set for key.
//
// Postcondition: Returns (nil, false, nil) when the entry is missing or its
// age exceeds the TTL.
func (m *Memory) Get(_ context.Context, key Key) ([]string, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || m.expired(e) {
		return nil, false, nil
	}
	out := make([]string, len(e.Expressions))
	copy(out, e.Expressions)
	return out, true, nil
}

// Put stores a copy of exprs under key with the current time.
func (m *Memory) Put(_ context.Context, key Key, exprs []string) error {
	if len(exprs) == 0 {
		return ErrEmptyExpressions
	}
	stored := make([]string, len(exprs))
	copy(stored, exprs)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = Entry{Key: key, Expressions: stored, CreatedAt: m.now()}
	return nil
}

// Sweep removes expired entries and returns how many were removed.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for k, e := range m.entries {
		if m.expired(e) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) expired(e Entry) bool {
	return m.now().Sub(e.CreatedAt) > m.ttl
}
