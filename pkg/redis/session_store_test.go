package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestNewSessionStore_KeyValidation(t *testing.T) {
	_, err := NewSessionStore("zz")
	assert.Error(t, err)
	_, err = NewSessionStore("0011")
	assert.Error(t, err)
	_, err = NewSessionStore(testKey)
	assert.NoError(t, err)
}

func TestSessionStore_RoundTrip(t *testing.T) {
	mr := useMiniredis(t)
	store, err := NewSessionStore(testKey)
	require.NoError(t, err)
	ctx := context.Background()

	userID := uuid.New()
	id, err := store.CreateSession(ctx, &SessionData{UserID: userID, AccessToken: "access", RefreshToken: "refresh"}, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	raw, err := mr.Get(sessionKeyPrefix + id)
	require.NoError(t, err)
	assert.False(t, strings.Contains(raw, "access"), "session must be stored encrypted")

	got, err := store.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, "access", got.AccessToken)
	assert.False(t, got.CreatedAt.IsZero())

	require.NoError(t, store.DeleteSession(ctx, id))
	_, err = store.GetSession(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_TamperedCiphertext(t *testing.T) {
	mr := useMiniredis(t)
	store, err := NewSessionStore(testKey)
	require.NoError(t, err)

	require.NoError(t, mr.Set(sessionKeyPrefix+"bad-hex", "not-hex"))
	_, err = store.GetSession(context.Background(), "bad-hex")
	assert.Error(t, err)

	require.NoError(t, mr.Set(sessionKeyPrefix+"short", "00ff"))
	_, err = store.GetSession(context.Background(), "short")
	assert.Error(t, err)
}
