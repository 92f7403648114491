package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fwojciec/docchat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore_None(t *testing.T) {
	t.Parallel()

	store, closeFn, err := openStore(context.Background(), storeConfig{Kind: "none"})
	require.NoError(t, err)
	assert.Nil(t, store)
	assert.NoError(t, closeFn())
}

func TestOpenStore_FileRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, closeFn, err := openStore(ctx, storeConfig{Kind: "file", Path: filepath.Join(t.TempDir(), "sessions")})
	require.NoError(t, err)
	defer closeFn()

	s := docchat.NewSession("acme")
	s.ID = "s1"
	s.Messages = []docchat.ChatMessage{docchat.NewUserMessage("hi")}
	require.NoError(t, store.Save(ctx, s))

	got, err := loadOrCreateSession(ctx, store, "s1", "acme")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "hi", got.Messages[0].Content)
}

func TestOpenStore_SQLiteCreatesDirectory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "sessions.db")
	store, closeFn, err := openStore(ctx, storeConfig{Kind: "sqlite", Path: path})
	require.NoError(t, err)
	defer closeFn()

	_, err = store.Load(ctx, "missing")
	assert.ErrorIs(t, err, docchat.ErrSessionNotFound)
}

func TestOpenStore_RedisUnreachable(t *testing.T) {
	t.Parallel()

	_, _, err := openStore(context.Background(), storeConfig{Kind: "redis", Addr: "127.0.0.1:1"})
	require.Error(t, err)
}

func TestLoadOrCreateSession_New(t *testing.T) {
	t.Parallel()

	s, err := loadOrCreateSession(context.Background(), nil, "", "acme")
	require.NoError(t, err)
	assert.Empty(t, s.ID)
	assert.Equal(t, "acme", s.TenantID)
	assert.Empty(t, s.Messages)
}

func TestLoadOrCreateSession_ResumeWithoutStore(t *testing.T) {
	t.Parallel()

	_, err := loadOrCreateSession(context.Background(), nil, "s1", "acme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a session store")
}

func TestLoadOrCreateSession_TenantMismatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, _, err := openStore(ctx, storeConfig{Kind: "file", Path: t.TempDir()})
	require.NoError(t, err)
	s := docchat.NewSession("other")
	s.ID = "s1"
	require.NoError(t, store.Save(ctx, s))

	_, err = loadOrCreateSession(ctx, store, "s1", "acme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `belongs to tenant "other"`)
}

func TestLoadOrCreateSession_NotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, _, err := openStore(ctx, storeConfig{Kind: "file", Path: t.TempDir()})
	require.NoError(t, err)

	_, err = loadOrCreateSession(ctx, store, "missing", "acme")
	assert.ErrorIs(t, err, docchat.ErrSessionNotFound)
}
