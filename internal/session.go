package internal

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// DefaultSessionTitle is the title of a session with no user messages yet
	DefaultSessionTitle = "New Chat"
	// MigratedSessionTitle is used when legacy history has no usable first message
	MigratedSessionTitle = "Previous Chat"

	titleMaxRunes = 40
)

// ChatSession is one independent conversation thread
type ChatSession struct {
	ID        string        `json:"id" yaml:"id"`
	Title     string        `json:"title" yaml:"title"`
	Messages  []ChatMessage `json:"messages" yaml:"messages"`
	CreatedAt int64         `json:"createdAt" yaml:"created_at"`
	UpdatedAt int64         `json:"updatedAt" yaml:"updated_at"`
	Renamed   bool          `json:"renamed,omitempty" yaml:"renamed,omitempty"`
}

// NewSessionID returns a fresh session identifier
func NewSessionID() string {
	return uuid.NewString()
}

// GetCreatedAt returns the creation time
func (s *ChatSession) GetCreatedAt() time.Time {
	if s.CreatedAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(s.CreatedAt)
}

// GetUpdatedAt returns the last update time, falling back to creation time
func (s *ChatSession) GetUpdatedAt() time.Time {
	if s.UpdatedAt == 0 {
		return s.GetCreatedAt()
	}
	return time.UnixMilli(s.UpdatedAt)
}

// HasUserMessage reports whether any user message was appended yet
func (s *ChatSession) HasUserMessage() bool {
	for _, m := range s.Messages {
		if m.Role == RoleUser {
			return true
		}
	}
	return false
}

// Clone copies the session and its message slice
func (s *ChatSession) Clone() *ChatSession {
	c := *s
	c.Messages = make([]ChatMessage, len(s.Messages))
	copy(c.Messages, s.Messages)
	return &c
}

// DeriveTitle turns message content into a short session label
func DeriveTitle(content string) string {
	title := strings.Join(strings.Fields(content), " ")
	if title == "" {
		return ""
	}
	if utf8.RuneCountInString(title) <= titleMaxRunes {
		return title
	}
	runes := []rune(title)
	return strings.TrimSpace(string(runes[:titleMaxRunes])) + "..."
}

// SessionGroup is a labelled bucket of sessions for display
type SessionGroup struct {
	Label    string
	Sessions []*ChatSession
}

// GroupSessionsByDate buckets sessions into Today, Yesterday, Previous 7
// Days and Older by last update, newest first. Empty groups are dropped.
func GroupSessionsByDate(sessions []*ChatSession, now time.Time) []SessionGroup {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)
	weekAgo := today.AddDate(0, 0, -7)

	groups := []SessionGroup{
		{Label: "Today"},
		{Label: "Yesterday"},
		{Label: "Previous 7 Days"},
		{Label: "Older"},
	}

	for _, s := range SortByUpdated(sessions) {
		updated := s.GetUpdatedAt()
		switch {
		case !updated.Before(today):
			groups[0].Sessions = append(groups[0].Sessions, s)
		case !updated.Before(yesterday):
			groups[1].Sessions = append(groups[1].Sessions, s)
		case !updated.Before(weekAgo):
			groups[2].Sessions = append(groups[2].Sessions, s)
		default:
			groups[3].Sessions = append(groups[3].Sessions, s)
		}
	}

	result := make([]SessionGroup, 0, len(groups))
	for _, g := range groups {
		if len(g.Sessions) > 0 {
			result = append(result, g)
		}
	}
	return result
}

// SortByUpdated returns a copy ordered by UpdatedAt descending. The sort is
// stable so equal timestamps keep collection order.
func SortByUpdated(sessions []*ChatSession) []*ChatSession {
	sorted := make([]*ChatSession, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt > sorted[j].UpdatedAt
	})
	return sorted
}
