package internal

import (
	"encoding/json"
	"strings"
	"time"
)

// SessionMigrator upgrades the legacy single-thread history (a flat list
// of messages under LegacyHistoryKey) into the multi-session format.
type SessionMigrator struct {
	kv  KeyValueStore
	now func() time.Time
}

// NewSessionMigrator creates a migrator over kv; now may be nil
func NewSessionMigrator(kv KeyValueStore, now func() time.Time) *SessionMigrator {
	if now == nil {
		now = time.Now
	}
	return &SessionMigrator{kv: kv, now: now}
}

// NeedsMigration reports whether the new-format key is unusable and the
// legacy key holds a non-empty history. A corrupt new-format value counts
// as unusable so that history which was never migrated is not lost.
func (m *SessionMigrator) NeedsMigration() (bool, []ChatMessage, error) {
	current, ok, err := m.kv.Get(SessionsKey)
	if err != nil {
		return false, nil, &StorageError{Path: SessionsKey, Op: "get", Err: err}
	}
	if ok && strings.TrimSpace(current) != "" {
		var probe []json.RawMessage
		if json.Unmarshal([]byte(current), &probe) == nil {
			return false, nil, nil
		}
		LogWarn("Session data under %s is corrupt; checking legacy history", SessionsKey)
	}

	raw, ok, err := m.kv.Get(LegacyHistoryKey)
	if err != nil {
		return false, nil, &StorageError{Path: LegacyHistoryKey, Op: "get", Err: err}
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return false, nil, nil
	}

	var legacy []ChatMessage
	if err := json.Unmarshal([]byte(raw), &legacy); err != nil {
		LogWarn("Ignoring malformed legacy history: %v", &ParseError{Source: "legacy", Key: LegacyHistoryKey, Err: err})
		return false, nil, nil
	}
	if len(legacy) == 0 {
		return false, nil, nil
	}
	for i := range legacy {
		if legacy[i].ID == "" {
			legacy[i].ID = NewMessageID()
		}
	}
	return true, legacy, nil
}

// Run performs the migration if needed and returns the created session.
// It is idempotent: once the new-format key is written, later runs are
// no-ops.
func (m *SessionMigrator) Run() (*ChatSession, error) {
	needed, legacy, err := m.NeedsMigration()
	if err != nil || !needed {
		return nil, err
	}

	now := m.now()
	session := &ChatSession{
		ID:        NewSessionID(),
		Title:     migratedTitle(legacy),
		Messages:  legacy,
		CreatedAt: now.Add(-time.Millisecond).UnixMilli(),
		UpdatedAt: now.UnixMilli(),
	}

	data, err := encodeSessions([]*ChatSession{session})
	if err != nil {
		return nil, &StorageError{Path: SessionsKey, Op: "encode", Err: err}
	}
	if err := m.kv.Set(SessionsKey, data); err != nil {
		return nil, &StorageError{Path: SessionsKey, Op: "set", Err: err}
	}
	if err := m.kv.Set(ActiveSessionKey, session.ID); err != nil {
		return nil, &StorageError{Path: ActiveSessionKey, Op: "set", Err: err}
	}
	if err := m.kv.Delete(LegacyHistoryKey); err != nil {
		// The new key is written, so a leftover legacy key will not re-migrate
		LogWarn("Failed to remove legacy history key: %v", err)
	}

	LogInfo("Migrated %d legacy message(s) into session %s", len(legacy), session.ID)
	return session, nil
}

func migratedTitle(messages []ChatMessage) string {
	first := messages[0]
	if first.Role != RoleUser {
		return MigratedSessionTitle
	}
	if title := DeriveTitle(first.Content); title != "" {
		return title
	}
	return MigratedSessionTitle
}
