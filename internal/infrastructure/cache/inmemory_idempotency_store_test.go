package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	clock := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	t.Run("clave nueva se marca una sola vez", func(t *testing.T) {
		ok, err := store.MarkProcessed(ctx, "k1", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.MarkProcessed(ctx, "k1", time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expira tras el TTL", func(t *testing.T) {
		ok, err := store.MarkProcessed(ctx, "k2", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		clock = clock.Add(30 * time.Second)
		ok, err = store.MarkProcessed(ctx, "k2", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok, "vigente antes del TTL")

		clock = clock.Add(2 * time.Minute)
		ok, err = store.MarkProcessed(ctx, "k2", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "una clave expirada se puede volver a marcar")
	})

	t.Run("Forget permite reintentar", func(t *testing.T) {
		_, _ = store.MarkProcessed(ctx, "k3", time.Hour)
		require.NoError(t, store.Forget(ctx, "k3"))
		ok, err := store.MarkProcessed(ctx, "k3", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("cleanup elimina expirados", func(t *testing.T) {
		before := store.Size()
		clock = clock.Add(48 * time.Hour)
		store.cleanup()
		assert.Less(t, store.Size(), before)
		assert.Equal(t, 0, store.Size())
	})
}

func TestInMemoryIdempotencyStore_CloseIdempotente(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Millisecond)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
