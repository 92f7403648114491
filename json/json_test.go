package json_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/docchat"
	docjson "github.com/fwojciec/docchat/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() docchat.Session {
	return docchat.Session{
		ID:        "sess-123",
		TenantID:  "acme",
		CreatedAt: time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 2, 18, 12, 5, 0, 0, time.UTC),
		Messages: []docchat.ChatMessage{
			{
				ID:        "m1",
				Role:      docchat.RoleUser,
				Content:   "What is the refund window?",
				Timestamp: time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC),
			},
			{
				ID:        "m2",
				Role:      docchat.RoleAssistant,
				Content:   "Refunds are accepted within **30 days**.",
				Timestamp: time.Date(2026, 2, 18, 12, 0, 1, 0, time.UTC),
				Sources: []docchat.Source{{
					DocumentID: "doc-7",
					Title:      "Refund Policy",
					URL:        "https://docs.example/refunds",
					Snippet:    "within 30 days of purchase",
					Score:      0.87,
				}},
				ToolCalls: []docchat.ToolCall{
					{Name: "hybrid_search", Args: json.RawMessage(`{"query":"refund window"}`)},
				},
			},
			{
				ID:        "m3",
				Role:      docchat.RoleAssistant,
				Content:   "The second half was",
				Timestamp: time.Date(2026, 2, 18, 12, 0, 2, 0, time.UTC),
				Partial:   true,
			},
		},
	}
}

func TestMarshalSession_RoundTrip(t *testing.T) {
	t.Parallel()
	session := testSession()

	data, err := docjson.MarshalSession(session)
	require.NoError(t, err)

	got, err := docjson.UnmarshalSession(data)
	require.NoError(t, err)

	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, session.TenantID, got.TenantID)
	assert.True(t, session.CreatedAt.Equal(got.CreatedAt), "CreatedAt mismatch")
	assert.True(t, session.UpdatedAt.Equal(got.UpdatedAt), "UpdatedAt mismatch")
	require.Len(t, got.Messages, 3)

	assert.Equal(t, docchat.RoleUser, got.Messages[0].Role)
	assert.Equal(t, "What is the refund window?", got.Messages[0].Content)

	am := got.Messages[1]
	assert.Equal(t, "m2", am.ID)
	assert.Equal(t, session.Messages[1].Sources, am.Sources)
	require.Len(t, am.ToolCalls, 1)
	assert.Equal(t, "hybrid_search", am.ToolCalls[0].Name)
	assert.JSONEq(t, `{"query":"refund window"}`, string(am.ToolCalls[0].Args))
	assert.False(t, am.Partial)

	assert.True(t, got.Messages[2].Partial)
}

func TestMarshalSession_V1Envelope(t *testing.T) {
	t.Parallel()

	data, err := docjson.MarshalSession(docchat.Session{ID: "test-id", TenantID: "acme"})
	require.NoError(t, err)

	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &envelope))

	var version int
	require.NoError(t, json.Unmarshal(envelope["version"], &version))
	assert.Equal(t, 1, version)

	var tenant string
	require.NoError(t, json.Unmarshal(envelope["tenant_id"], &tenant))
	assert.Equal(t, "acme", tenant)
}

func TestMarshalSession_JSONFieldNames(t *testing.T) {
	t.Parallel()

	data, err := docjson.MarshalSession(testSession())
	require.NoError(t, err)

	var raw struct {
		Messages []map[string]json.RawMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw.Messages, 3)

	user := raw.Messages[0]
	for _, key := range []string{"id", "role", "content", "timestamp"} {
		assert.Contains(t, user, key)
	}
	assert.NotContains(t, user, "sources")
	assert.NotContains(t, user, "partial")

	assistant := raw.Messages[1]
	assert.Contains(t, assistant, "sources")
	assert.Contains(t, assistant, "tool_calls")
}

func TestMarshalSession_RejectsInvalidMessage(t *testing.T) {
	t.Parallel()

	s := docchat.Session{Messages: []docchat.ChatMessage{{ID: "x", Role: "system"}}}
	_, err := docjson.MarshalSession(s)
	require.ErrorIs(t, err, docchat.ErrValidation)
	assert.Contains(t, err.Error(), "message 0")
}

func TestUnmarshalSession_UnknownRole(t *testing.T) {
	t.Parallel()

	data := []byte(`{"version":1,"id":"s","messages":[{"id":"m","role":"system","content":"x"}]}`)
	_, err := docjson.UnmarshalSession(data)
	require.ErrorIs(t, err, docchat.ErrValidation)
}

func TestUnmarshalSession_UnsupportedVersion(t *testing.T) {
	t.Parallel()

	_, err := docjson.UnmarshalSession([]byte(`{"version":2,"id":"s"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported envelope version: 2")
}

func TestMarshalSession_RequiresTenant(t *testing.T) {
	t.Parallel()

	_, err := docjson.MarshalSession(docchat.Session{ID: "s"})
	require.ErrorIs(t, err, docchat.ErrValidation)
	assert.Contains(t, err.Error(), "no tenant id")
}

func TestUnmarshalSession_RequiresTenant(t *testing.T) {
	t.Parallel()

	_, err := docjson.UnmarshalSession([]byte(`{"version":1,"id":"s","messages":[]}`))
	require.ErrorIs(t, err, docchat.ErrValidation)
}

func TestSave_Overwrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "s.json")
	first := testSession()
	require.NoError(t, docjson.Save(path, first))

	second := testSession()
	second.Messages = second.Messages[:1]
	require.NoError(t, docjson.Save(path, second))

	got, err := docjson.Load(path)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 1)
}

func TestUnmarshalSession_InvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := docjson.UnmarshalSession([]byte(`{`))
	require.Error(t, err)
}

func TestSave_And_Load(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "session.json")
	session := testSession()

	require.NoError(t, docjson.Save(path, session))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n  \"version\": 1,"))
	assert.True(t, strings.HasSuffix(string(data), "}\n"))

	got, err := docjson.Load(path)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Len(t, got.Messages, 3)
}

func TestLoad_NonexistentFile(t *testing.T) {
	t.Parallel()

	_, err := docjson.Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestStore(t *testing.T) {
	t.Parallel()

	t.Run("save then load", func(t *testing.T) {
		t.Parallel()
		store := docjson.NewStore(filepath.Join(t.TempDir(), "sessions"))
		session := testSession()

		require.NoError(t, store.Save(context.Background(), session))
		got, err := store.Load(context.Background(), session.ID)
		require.NoError(t, err)
		assert.Equal(t, session.TenantID, got.TenantID)
		assert.Len(t, got.Messages, 3)
	})

	t.Run("overwrites", func(t *testing.T) {
		t.Parallel()
		store := docjson.NewStore(t.TempDir())
		session := testSession()
		require.NoError(t, store.Save(context.Background(), session))

		session.Messages = session.Messages[:1]
		require.NoError(t, store.Save(context.Background(), session))

		got, err := store.Load(context.Background(), session.ID)
		require.NoError(t, err)
		assert.Len(t, got.Messages, 1)
	})

	t.Run("missing session", func(t *testing.T) {
		t.Parallel()
		store := docjson.NewStore(t.TempDir())
		_, err := store.Load(context.Background(), "nope")
		assert.ErrorIs(t, err, docchat.ErrSessionNotFound)
	})

	t.Run("rejects path-like ids", func(t *testing.T) {
		t.Parallel()
		store := docjson.NewStore(t.TempDir())
		for _, id := range []string{"", "..", "../escape", `a\b`} {
			err := store.Save(context.Background(), docchat.Session{ID: id})
			assert.ErrorIs(t, err, docchat.ErrValidation, "id %q", id)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		store := docjson.NewStore(t.TempDir())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, store.Save(ctx, testSession()), context.Canceled)
	})
}

func TestStore_List(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	store := docjson.NewStore(dir)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for id, age := range map[string]time.Duration{"old": 0, "mid": time.Hour, "new": 2 * time.Hour} {
		s := docchat.Session{ID: id, TenantID: "acme", CreatedAt: base, UpdatedAt: base.Add(age)}
		require.NoError(t, store.Save(ctx, s))
	}
	require.NoError(t, store.Save(ctx, docchat.Session{ID: "other", TenantID: "globex", UpdatedAt: base}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	ids, err := store.List(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "mid", "old"}, ids)

	t.Run("missing directory", func(t *testing.T) {
		t.Parallel()
		ids, err := docjson.NewStore(filepath.Join(t.TempDir(), "none")).List(ctx, "acme")
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}
