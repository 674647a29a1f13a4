// Package storagetest holds the behavioural test suite every
// storage.RecordStore implementation must pass.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/fortune/internal/storage"
)

// UniqueName returns a name that will not collide with earlier test runs
// against the same database.
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano()%1_000_000_000)
}

// Run exercises store against the RecordStore contract.
//
// Precondition: store must be empty of names produced by UniqueName.
func Run(t *testing.T, store storage.RecordStore) {
	t.Helper()

	t.Run("CreateAndGet", func(t *testing.T) {
		ctx := context.Background()
		name := UniqueName("create")
		rec, err := store.Create(ctx, name, "password123")
		require.NoError(t, err)
		assert.Greater(t, rec.ID, int64(0))
		assert.Equal(t, name, rec.Name)
		assert.NotEmpty(t, rec.Secret)
		assert.Empty(t, rec.Code)
		assert.False(t, rec.EverMax)
		assert.False(t, rec.CreatedAt.IsZero())
		assert.NotEqual(t, "password123", rec.PasswordHash)

		got, err := store.GetByName(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID)
		assert.Equal(t, rec.Secret, got.Secret)
	})

	t.Run("CreateDuplicate", func(t *testing.T) {
		ctx := context.Background()
		name := UniqueName("dup")
		_, err := store.Create(ctx, name, "password123")
		require.NoError(t, err)
		_, err = store.Create(ctx, name, "other")
		assert.ErrorIs(t, err, storage.ErrExists)
	})

	t.Run("Authenticate", func(t *testing.T) {
		ctx := context.Background()
		name := UniqueName("auth")
		created, err := store.Create(ctx, name, "hunter22")
		require.NoError(t, err)

		rec, err := store.Authenticate(ctx, name, "hunter22")
		require.NoError(t, err)
		assert.Equal(t, created.Secret, rec.Secret)

		_, err = store.Authenticate(ctx, name, "wrong")
		assert.ErrorIs(t, err, storage.ErrInvalidCredentials)

		_, err = store.Authenticate(ctx, UniqueName("ghost"), "hunter22")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("BindAndUnbind", func(t *testing.T) {
		ctx := context.Background()
		name := UniqueName("bind")
		_, err := store.Create(ctx, name, "password123")
		require.NoError(t, err)

		require.NoError(t, store.BindCode(ctx, name, "1234-ABCD-5678-EF90"))
		rec, err := store.GetByName(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, "1234-ABCD-5678-EF90", rec.Code)

		assert.ErrorIs(t, store.BindCode(ctx, name, "bogus"), storage.ErrInvalidCode)

		require.NoError(t, store.UnbindCode(ctx, name))
		rec, err = store.GetByName(ctx, name)
		require.NoError(t, err)
		assert.Empty(t, rec.Code)

		assert.ErrorIs(t, store.BindCode(ctx, UniqueName("ghost"), "1234-ABCD-5678-EF90"), storage.ErrNotFound)
		assert.ErrorIs(t, store.UnbindCode(ctx, UniqueName("ghost")), storage.ErrNotFound)
	})

	t.Run("MarkEverMax", func(t *testing.T) {
		ctx := context.Background()
		name := UniqueName("max")
		_, err := store.Create(ctx, name, "password123")
		require.NoError(t, err)

		first, err := store.MarkEverMax(ctx, name)
		require.NoError(t, err)
		assert.True(t, first)

		again, err := store.MarkEverMax(ctx, name)
		require.NoError(t, err)
		assert.False(t, again)

		rec, err := store.GetByName(ctx, name)
		require.NoError(t, err)
		assert.True(t, rec.EverMax)

		_, err = store.MarkEverMax(ctx, UniqueName("ghost"))
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})

	t.Run("MarkEverMaxConcurrent", func(t *testing.T) {
		ctx := context.Background()
		name := UniqueName("race")
		_, err := store.Create(ctx, name, "password123")
		require.NoError(t, err)

		var firsts atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if first, err := store.MarkEverMax(ctx, name); err == nil && first {
					firsts.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), firsts.Load())
	})
}
