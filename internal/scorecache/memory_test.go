package scorecache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)}
}

func TestMemory_PutThenGet(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	m := NewMemory(DefaultTTL, WithClock(clock.Now))
	key := Key{Target: 57, Base: 6}

	_, ok, err := m.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Put(ctx, key, []string{"(6*9)+3", "57"}))
	got, ok, err := m.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"(6*9)+3", "57"}, got)
}

func TestMemory_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	m := NewMemory(DefaultTTL, WithClock(clock.Now))
	key := Key{Target: 1, Base: 6}
	require.NoError(t, m.Put(ctx, key, []string{"(6/6)"}))

	clock.Advance(DefaultTTL)
	_, ok, _ := m.Get(ctx, key)
	assert.True(t, ok, "an entry exactly TTL old is still valid")

	clock.Advance(time.Nanosecond)
	_, ok, _ = m.Get(ctx, key)
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len(), "expired entries are not evicted on read")

	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 0, m.Len())
}

func TestMemory_PutReplacesWholeSet(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	m := NewMemory(time.Hour, WithClock(clock.Now))
	key := Key{Target: 2, Base: 6}
	require.NoError(t, m.Put(ctx, key, []string{"a", "b"}))
	clock.Advance(50 * time.Minute)
	require.NoError(t, m.Put(ctx, key, []string{"c"}))
	clock.Advance(50 * time.Minute)

	got, ok, _ := m.Get(ctx, key)
	assert.True(t, ok, "replacing restarts the TTL window")
	assert.Equal(t, []string{"c"}, got)
}

func TestMemory_IsolatesCallerSlices(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Hour)
	key := Key{Target: 3, Base: 6}
	in := []string{"x"}
	require.NoError(t, m.Put(ctx, key, in))
	in[0] = "mutated"

	got, _, _ := m.Get(ctx, key)
	got[0] = "also mutated"
	again, _, _ := m.Get(ctx, key)
	assert.Equal(t, []string{"x"}, again)
}

func TestMemory_RejectsEmptySet(t *testing.T) {
	m := NewMemory(time.Hour)
	assert.ErrorIs(t, m.Put(context.Background(), Key{}, nil), ErrEmptyExpressions)
}

func TestMemory_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Hour)
	require.NoError(t, m.Put(ctx, Key{Target: 5, Base: 6}, []string{"six"}))
	_, ok, _ := m.Get(ctx, Key{Target: 5, Base: 7})
	assert.False(t, ok)
}

// Property: until the TTL elapses, Get returns exactly what Put stored.
func TestPropertyMemory_GetReturnsPut(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		clock := newClock()
		m := NewMemory(DefaultTTL, WithClock(clock.Now))
		key := Key{
			Target: rapid.IntRange(0, 100).Draw(rt, "target"),
			Base:   rapid.IntRange(1, 9).Draw(rt, "base"),
		}
		exprs := rapid.SliceOfN(rapid.StringMatching(`[0-9()+*-]{1,12}`), 1, 5).Draw(rt, "exprs")
		elapsed := time.Duration(rapid.Int64Range(0, int64(2*DefaultTTL)).Draw(rt, "elapsed"))

		if err := m.Put(ctx, key, exprs); err != nil {
			rt.Fatalf("Put: %v", err)
		}
		clock.Advance(elapsed)
		got, ok, err := m.Get(ctx, key)
		if err != nil {
			rt.Fatalf("Get: %v", err)
		}
		if elapsed > DefaultTTL {
			if ok {
				rt.Fatalf("entry still present after %s", elapsed)
			}
			return
		}
		if !ok {
			rt.Fatalf("entry missing after %s", elapsed)
		}
		assert.Equal(rt, exprs, got)
	})
}

func TestKey_String(t *testing.T) {
	assert.Equal(t, "6:57", Key{Target: 57, Base: 6}.String())
}
