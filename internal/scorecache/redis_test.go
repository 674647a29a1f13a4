package scorecache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/fortune/internal/scorecache"
	"github.com/cory-johannsen/fortune/internal/testutil"
)

func TestRedis_PutGetAndExpiry(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	rc := testutil.NewRedisContainer(t)
	ctx := context.Background()
	store := scorecache.NewRedis(rc.Client, time.Second)
	require.NoError(t, store.Ping(ctx))

	key := scorecache.Key{Target: 57, Base: 6}
	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, key, []string{"((6*9)+3)", "57"}))
	got, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"((6*9)+3)", "57"}, got)

	require.NoError(t, store.Put(ctx, key, []string{"57"}))
	got, _, _ = store.Get(ctx, key)
	assert.Equal(t, []string{"57"}, got, "Put replaces the whole set")

	assert.Eventually(t, func() bool {
		_, ok, err := store.Get(ctx, key)
		return err == nil && !ok
	}, 5*time.Second, 100*time.Millisecond)

	assert.ErrorIs(t, store.Put(ctx, key, nil), scorecache.ErrEmptyExpressions)
}
