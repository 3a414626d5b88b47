package internal

import (
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// Storage keys. They must stay stable across releases.
const (
	SessionsKey      = "chat_sessions"
	ActiveSessionKey = "active_chat_session"
	LegacyHistoryKey = "chat_history"
)

// SessionStore owns every chat session and the active pointer. All
// mutations are written through to the KeyValueStore before returning.
type SessionStore struct {
	mu       sync.Mutex
	kv       KeyValueStore
	now      func() time.Time
	sessions []*ChatSession // front is newest-created
	activeID string

	loadOnce sync.Once
	loaded   chan struct{}
	loadErr  error // set when the persisted collection could not be read
}

// StoreOption configures a SessionStore
type StoreOption func(*SessionStore)

// WithClock overrides the time source
func WithClock(now func() time.Time) StoreOption {
	return func(s *SessionStore) {
		s.now = now
	}
}

// NewSessionStore creates a store over kv. Call Load before use.
func NewSessionStore(kv KeyValueStore, opts ...StoreOption) *SessionStore {
	s := &SessionStore{
		kv:     kv,
		now:    time.Now,
		loaded: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load migrates legacy history if needed and reads the persisted
// collection. Missing or malformed data yields an empty collection. A
// storage read failure leaves the store read-only: every mutation returns
// that error so the saved collection is never overwritten.
// Only the first call does any work.
func (s *SessionStore) Load() error {
	var loadErr error
	s.loadOnce.Do(func() {
		defer close(s.loaded)
		loadErr = s.load()
		if loadErr != nil {
			s.mu.Lock()
			s.loadErr = loadErr
			s.mu.Unlock()
		}
	})
	return loadErr
}

func (s *SessionStore) load() error {
	migrator := NewSessionMigrator(s.kv, s.now)
	if _, err := migrator.Run(); err != nil {
		// A failed migration leaves the legacy key in place for the next run
		LogWarn("Legacy history migration failed: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.kv.Get(SessionsKey)
	if err != nil {
		return &StorageError{Path: SessionsKey, Op: "get", Err: err}
	}
	if ok && strings.TrimSpace(raw) != "" {
		sessions, err := decodeSessions(raw)
		if err != nil {
			LogWarn("Discarding malformed session data: %v", err)
		} else {
			s.sessions = sessions
		}
	}

	activeID, ok, err := s.kv.Get(ActiveSessionKey)
	if err != nil {
		return &StorageError{Path: ActiveSessionKey, Op: "get", Err: err}
	}
	if ok && s.indexOf(activeID) >= 0 {
		s.activeID = activeID
	} else if ok && activeID != "" {
		LogDebug("Persisted active session %s no longer exists", activeID)
		s.activeID = s.fallbackActiveID()
	}

	LogDebug("Loaded %d session(s), active=%q", len(s.sessions), s.activeID)
	return nil
}

// Loaded is closed once the initial Load has finished
func (s *SessionStore) Loaded() <-chan struct{} {
	return s.loaded
}

// LoadErr returns the error that made Load fail, if any
func (s *SessionStore) LoadErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// writableLocked reports why the store cannot accept mutations
func (s *SessionStore) writableLocked() error {
	if !s.IsLoaded() {
		return ErrStoreNotLoaded
	}
	return s.loadErr
}

// IsLoaded reports whether Load has finished
func (s *SessionStore) IsLoaded() bool {
	select {
	case <-s.loaded:
		return true
	default:
		return false
	}
}

// CreateSession inserts an empty session at the front and makes it active
func (s *SessionStore) CreateSession() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writableLocked(); err != nil {
		return "", err
	}

	id := s.createLocked()
	return id, s.saveLocked()
}

func (s *SessionStore) createLocked() string {
	now := s.now().UnixMilli()
	session := &ChatSession{
		ID:        NewSessionID(),
		Title:     DefaultSessionTitle,
		Messages:  []ChatMessage{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions = append([]*ChatSession{session}, s.sessions...)
	s.activeID = session.ID
	return session.ID
}

// SelectSession makes id the active session
func (s *SessionStore) SelectSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writableLocked(); err != nil {
		return err
	}

	if s.indexOf(id) < 0 {
		return ErrSessionNotFound
	}
	if s.activeID == id {
		return nil
	}
	s.activeID = id
	return s.saveActiveLocked()
}

// RenameSession sets an explicit title. Blank titles are ignored.
func (s *SessionStore) RenameSession(id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writableLocked(); err != nil {
		return err
	}

	i := s.indexOf(id)
	if i < 0 {
		return ErrSessionNotFound
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	s.sessions[i].Title = title
	s.sessions[i].Renamed = true
	return s.saveLocked()
}

// DeleteSession removes a session, moving the active pointer if needed
func (s *SessionStore) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writableLocked(); err != nil {
		return err
	}

	i := s.indexOf(id)
	if i < 0 {
		return ErrSessionNotFound
	}
	s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
	if s.activeID == id {
		s.activeID = s.fallbackActiveID()
	}
	return s.saveLocked()
}

// AppendMessage adds msg to the end of a session's history
func (s *SessionStore) AppendMessage(id string, msg ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writableLocked(); err != nil {
		return err
	}

	i := s.indexOf(id)
	if i < 0 {
		return ErrSessionNotFound
	}
	session := s.sessions[i]

	if msg.Role == RoleUser && !session.Renamed && !session.HasUserMessage() {
		if title := DeriveTitle(msg.Content); title != "" {
			session.Title = title
		}
	}
	session.Messages = append(session.Messages, msg)
	if now := s.now().UnixMilli(); now > session.UpdatedAt {
		session.UpdatedAt = now
	}
	return s.saveLocked()
}

// ActiveID returns the active session id, or "" when none
func (s *SessionStore) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Active returns a copy of the active session, or nil
func (s *SessionStore) Active() *ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(s.activeID); i >= 0 {
		return s.sessions[i].Clone()
	}
	return nil
}

// Session returns a copy of the session with id
func (s *SessionStore) Session(id string) (*ChatSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.sessions[i].Clone(), true
	}
	return nil, false
}

// Has reports whether id is in the collection
func (s *SessionStore) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(id) >= 0
}

// Sessions returns copies of all sessions in collection order
func (s *SessionStore) Sessions() []*ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*ChatSession, len(s.sessions))
	for i, session := range s.sessions {
		out[i] = session.Clone()
	}
	return out
}

// Len returns the number of sessions
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// ResolveID accepts a full id or a unique prefix of one. A prefix shared
// by several sessions returns ErrAmbiguousSessionID.
func (s *SessionStore) ResolveID(ref string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(ref) >= 0 {
		return ref, nil
	}
	match := ""
	for _, session := range s.sessions {
		if ref != "" && strings.HasPrefix(session.ID, ref) {
			if match != "" {
				return "", ErrAmbiguousSessionID
			}
			match = session.ID
		}
	}
	if match == "" {
		return "", ErrSessionNotFound
	}
	return match, nil
}

func (s *SessionStore) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, session := range s.sessions {
		if session.ID == id {
			return i
		}
	}
	return -1
}

// fallbackActiveID picks the most recently updated session, ties going to
// the earlier position in the collection.
func (s *SessionStore) fallbackActiveID() string {
	if len(s.sessions) == 0 {
		return ""
	}
	best := s.sessions[0]
	for _, session := range s.sessions[1:] {
		if session.UpdatedAt > best.UpdatedAt {
			best = session
		}
	}
	return best.ID
}

func (s *SessionStore) saveLocked() error {
	data, err := encodeSessions(s.sessions)
	if err != nil {
		return &StorageError{Path: SessionsKey, Op: "encode", Err: err}
	}
	if err := s.kv.Set(SessionsKey, data); err != nil {
		LogError("Failed to persist sessions: %v", err)
		return &StorageError{Path: SessionsKey, Op: "set", Err: err}
	}
	return s.saveActiveLocked()
}

func (s *SessionStore) saveActiveLocked() error {
	var err error
	if s.activeID == "" {
		err = s.kv.Delete(ActiveSessionKey)
	} else {
		err = s.kv.Set(ActiveSessionKey, s.activeID)
	}
	if err != nil {
		LogError("Failed to persist active session: %v", err)
		return &StorageError{Path: ActiveSessionKey, Op: "set", Err: err}
	}
	return nil
}

func encodeSessions(sessions []*ChatSession) (string, error) {
	if sessions == nil {
		sessions = []*ChatSession{}
	}
	data, err := json.Marshal(sessions)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeSessions(raw string) ([]*ChatSession, error) {
	var sessions []*ChatSession
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		return nil, &ParseError{Source: "sessions", Key: SessionsKey, Err: err}
	}
	valid := sessions[:0]
	for _, session := range sessions {
		if session == nil || session.ID == "" {
			continue
		}
		if session.Messages == nil {
			session.Messages = []ChatMessage{}
		}
		valid = append(valid, session)
	}
	return valid, nil
}
