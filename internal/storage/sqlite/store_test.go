package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/fortune/internal/storage/storagetest"
)

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestStore_Contract(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "fortune.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	storagetest.Run(t, store)
}

func TestStore_InMemory(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	storagetest.Run(t, store)
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fortune.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	created, err := store.Create(ctx, "alice", "password123")
	require.NoError(t, err)
	require.NoError(t, store.BindCode(ctx, "alice", "1234-ABCD-5678-EF90"))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	rec, err := reopened.GetByName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.Secret, rec.Secret)
	assert.Equal(t, "1234-ABCD-5678-EF90", rec.Code)
}
