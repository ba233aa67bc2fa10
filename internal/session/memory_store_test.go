package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-user-sessions/internal/types"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	alice := types.Identity{UserID: 1, UserName: "Alice"}

	token, err := store.Create(ctx, alice)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := store.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	other, err := store.Create(ctx, alice)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)

	require.NoError(t, store.Destroy(ctx, token))
	_, err = store.Get(ctx, token)
	assert.ErrorIs(t, err, types.ErrSessionNotFound)

	_, err = store.Get(ctx, other)
	assert.NoError(t, err, "destroying one session must not touch another")
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(20 * time.Millisecond)

	token, err := store.Create(ctx, types.Identity{UserID: 1, UserName: "Alice"})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	_, err = store.Get(ctx, token)
	assert.ErrorIs(t, err, types.ErrSessionNotFound)
}

func TestMemoryStoreUnknownToken(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	_, err := store.Get(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, types.ErrSessionNotFound)
	assert.NoError(t, store.Destroy(context.Background(), "does-not-exist"))
}
