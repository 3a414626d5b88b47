package internal

import (
	"testing"
	"time"

	"github.com/iksnae/research-session/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestSessionStore_MigratesLegacyHistory(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(LegacyHistoryKey, `[{"id":"1","role":"user","content":"hello"}]`))

	store := NewSessionStore(kv, WithClock(fixedNow))
	require.NoError(t, store.Load())

	sessions := store.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "hello", sessions[0].Title)
	require.Len(t, sessions[0].Messages, 1)
	assert.Equal(t, "1", sessions[0].Messages[0].ID)
	assert.Equal(t, sessions[0].ID, store.ActiveID())
	assert.Equal(t, fixedNow().UnixMilli()-1, sessions[0].CreatedAt)
	assert.Equal(t, fixedNow().UnixMilli(), sessions[0].UpdatedAt)

	_, ok, err := kv.Get(LegacyHistoryKey)
	require.NoError(t, err)
	assert.False(t, ok, "legacy key must be removed")
}

func TestSessionMigrator_Idempotent(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(LegacyHistoryKey, `[{"id":"1","role":"user","content":"hello"}]`))

	m := NewSessionMigrator(kv, fixedNow)
	first, err := m.Run()
	require.NoError(t, err)
	require.NotNil(t, first)

	// Put the legacy key back as if deletion had failed
	require.NoError(t, kv.Set(LegacyHistoryKey, `[{"id":"1","role":"user","content":"hello"}]`))
	second, err := m.Run()
	require.NoError(t, err)
	assert.Nil(t, second)

	store := NewSessionStore(kv)
	require.NoError(t, store.Load())
	assert.Equal(t, 1, store.Len())
}

func TestSessionMigrator_NeedsMigration(t *testing.T) {
	tests := []struct {
		name     string
		sessions *string
		legacy   *string
		want     bool
		wantMsgs int
	}{
		{name: "nothing stored", want: false},
		{name: "legacy only", legacy: strPtr(`[{"id":"1","role":"user","content":"hi"}]`), want: true, wantMsgs: 1},
		{name: "empty legacy list", legacy: strPtr(`[]`), want: false},
		{name: "malformed legacy", legacy: strPtr(`{oops`), want: false},
		{name: "blank legacy", legacy: strPtr("  "), want: false},
		{name: "new format present", sessions: strPtr(`[]`), legacy: strPtr(`[{"id":"1","role":"user","content":"hi"}]`), want: false},
		{name: "blank new format", sessions: strPtr(""), legacy: strPtr(`[{"id":"1","role":"user","content":"hi"}]`), want: true, wantMsgs: 1},
		{name: "corrupt new format retries migration", sessions: strPtr(`[{"id":`), legacy: strPtr(`[{"id":"1","role":"user","content":"hi"}]`), want: true, wantMsgs: 1},
		{name: "corrupt new format without legacy", sessions: strPtr(`[{"id":`), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := NewMemoryKV()
			if tt.sessions != nil {
				require.NoError(t, kv.Set(SessionsKey, *tt.sessions))
			}
			if tt.legacy != nil {
				require.NoError(t, kv.Set(LegacyHistoryKey, *tt.legacy))
			}

			got, msgs, err := NewSessionMigrator(kv, fixedNow).NeedsMigration()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, msgs, tt.wantMsgs)
		})
	}
}

func TestSessionMigrator_Titles(t *testing.T) {
	tests := []struct {
		name   string
		legacy string
		want   string
	}{
		{
			name:   "first user message",
			legacy: `[{"id":"1","role":"user","content":"Explain   Article 21"},{"id":"2","role":"assistant","content":"..."}]`,
			want:   "Explain Article 21",
		},
		{
			name:   "assistant first",
			legacy: `[{"id":"1","role":"assistant","content":"Welcome"},{"id":"2","role":"user","content":"hi"}]`,
			want:   MigratedSessionTitle,
		},
		{
			name:   "blank first message",
			legacy: `[{"id":"1","role":"user","content":"   "}]`,
			want:   MigratedSessionTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := NewMemoryKV()
			require.NoError(t, kv.Set(LegacyHistoryKey, tt.legacy))

			session, err := NewSessionMigrator(kv, fixedNow).Run()
			require.NoError(t, err)
			require.NotNil(t, session)
			assert.Equal(t, tt.want, session.Title)
		})
	}
}

func TestSessionMigrator_FillsMissingIDs(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(LegacyHistoryKey, `[{"role":"user","content":"no id"}]`))

	session, err := NewSessionMigrator(kv, fixedNow).Run()
	require.NoError(t, err)
	require.Len(t, session.Messages, 1)
	assert.NotEmpty(t, session.Messages[0].ID)
}

func TestSessionMigrator_PreservesMetadata(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(LegacyHistoryKey, `[
		{"id":"1","role":"user","content":"cases on bail"},
		{"id":"2","role":"assistant","content":"Found 1","metadata":{"type":"legal_search","results":[{"title":"A"}]}}
	]`))

	session, err := NewSessionMigrator(kv, fixedNow).Run()
	require.NoError(t, err)
	payload, err := session.Messages[1].Metadata.Payload()
	require.NoError(t, err)
	assert.Equal(t, LegalSearchResults{{Title: "A"}}, payload)
}

func strPtr(s string) *string { return &s }

func TestSessionMigrator_SQLiteStore(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	testutil.InsertKV(t, db, LegacyHistoryKey, `[]`)
	testutil.InsertKV(t, db, LegacyHistoryKey, string(testutil.LoadFixture(t, "legacy_history.json")))
	testutil.InsertKV(t, db, "theme", "dark")
	kv := NewSQLiteKV(db)

	store := NewSessionStore(kv, WithClock(fixedNow))
	require.NoError(t, store.Load())

	sessions := store.Sessions()
	require.Len(t, sessions, 1)
	session := sessions[0]
	assert.Equal(t, "Anticipatory bail in NDPS cases", session.Title)
	require.Len(t, session.Messages, 4)
	assert.Equal(t, RoleAssistant, session.Messages[3].Role)

	payload, err := session.Messages[1].Metadata.Payload()
	require.NoError(t, err)
	docs, ok := payload.(LegalSearchResults)
	require.True(t, ok)
	require.Len(t, docs, 2)
	assert.Equal(t, Text("1015538"), docs[0].DocID)
	assert.Equal(t, Text("112347"), docs[1].DocID)

	_, ok, err = kv.Get(LegacyHistoryKey)
	require.NoError(t, err)
	assert.False(t, ok)
	theme, ok, err := kv.Get("theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", theme)
}
