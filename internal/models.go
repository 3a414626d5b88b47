package internal

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is a single immutable entry in a session's history
type ChatMessage struct {
	ID       string    `json:"id" yaml:"id"`
	Role     Role      `json:"role" yaml:"role"`
	Content  string    `json:"content" yaml:"content"`
	Metadata *Metadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Metadata carries the structured result attached to an assistant message.
// Results is kept raw so a round trip through storage is lossless; use
// Payload to get the validated, route-specific shape.
type Metadata struct {
	Type    string          `json:"type,omitempty" yaml:"type,omitempty"`
	Results json.RawMessage `json:"results,omitempty" yaml:"-"`
}

// Payload decodes the metadata results according to the route type
func (m *Metadata) Payload() (Payload, error) {
	if m == nil {
		return nil, nil
	}
	return DecodePayload(Route(m.Type), m.Results)
}

// NewMessageID returns a lexically sortable id derived from the current time
func NewMessageID() string {
	return ulid.Make().String()
}

// NewUserMessage creates a user message with a fresh id
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{
		ID:      NewMessageID(),
		Role:    RoleUser,
		Content: content,
	}
}

// NewAssistantMessage creates an assistant message with a fresh id
func NewAssistantMessage(content string, metadata *Metadata) ChatMessage {
	return ChatMessage{
		ID:       NewMessageID(),
		Role:     RoleAssistant,
		Content:  content,
		Metadata: metadata,
	}
}

// MessageTime returns the creation time encoded in a ULID message id.
// Ids that are not ULIDs (legacy millisecond ids) are parsed as Unix
// milliseconds; anything else yields the zero time.
func MessageTime(id string) time.Time {
	if u, err := ulid.Parse(id); err == nil {
		return ulid.Time(u.Time())
	}
	var ms int64
	for _, c := range id {
		if c < '0' || c > '9' {
			return time.Time{}
		}
		ms = ms*10 + int64(c-'0')
	}
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
