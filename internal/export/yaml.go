package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/research-session/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports sessions in YAML format
type YAMLExporter struct{}

type yamlMessage struct {
	ID      string        `yaml:"id"`
	Role    internal.Role `yaml:"role"`
	Content string        `yaml:"content"`
	Route   string        `yaml:"route,omitempty"`
	Results interface{}   `yaml:"results,omitempty"`
}

type yamlSession struct {
	ID        string        `yaml:"id"`
	Title     string        `yaml:"title"`
	CreatedAt string        `yaml:"created_at"`
	UpdatedAt string        `yaml:"updated_at"`
	Renamed   bool          `yaml:"renamed,omitempty"`
	Messages  []yamlMessage `yaml:"messages"`
}

// Export exports a session to YAML format. Message results are re-encoded
// as YAML rather than embedded JSON strings.
func (e *YAMLExporter) Export(session *internal.ChatSession, w io.Writer) error {
	doc := yamlSession{
		ID:        session.ID,
		Title:     session.Title,
		CreatedAt: formatTime(session.GetCreatedAt()),
		UpdatedAt: formatTime(session.GetUpdatedAt()),
		Renamed:   session.Renamed,
		Messages:  make([]yamlMessage, 0, len(session.Messages)),
	}
	for _, msg := range session.Messages {
		m := yamlMessage{ID: msg.ID, Role: msg.Role, Content: msg.Content}
		if msg.Metadata != nil {
			m.Route = msg.Metadata.Type
			if len(msg.Metadata.Results) > 0 {
				var v interface{}
				if err := json.Unmarshal(msg.Metadata.Results, &v); err == nil {
					m.Results = v
				}
			}
		}
		doc.Messages = append(doc.Messages, m)
	}

	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(&doc)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
