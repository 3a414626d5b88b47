package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/iksnae/research-session/internal"
)

// JSONLExporter exports sessions in JSONL format (one message per line)
type JSONLExporter struct{}

type jsonlLine struct {
	SessionID string          `json:"session_id"`
	ID        string          `json:"id"`
	Role      internal.Role   `json:"role"`
	Content   string          `json:"content"`
	Timestamp string          `json:"timestamp,omitempty"`
	Route     string          `json:"route,omitempty"`
	Results   json.RawMessage `json:"results,omitempty"`
}

// Export exports a session to JSONL format
func (e *JSONLExporter) Export(session *internal.ChatSession, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range session.Messages {
		line := jsonlLine{
			SessionID: session.ID,
			ID:        msg.ID,
			Role:      msg.Role,
			Content:   msg.Content,
		}
		if ts := internal.MessageTime(msg.ID); !ts.IsZero() {
			line.Timestamp = ts.UTC().Format(time.RFC3339)
		}
		if msg.Metadata != nil {
			line.Route = msg.Metadata.Type
			line.Results = msg.Metadata.Results
		}

		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
