package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iksnae/research-session/internal"
)

func TestJSONLExporter_Export(t *testing.T) {
	tests := []struct {
		name    string
		session *internal.ChatSession
		want    []string
	}{
		{
			name:    "empty session",
			session: internal.CreateTestSessionWithMessages("test1", []internal.ChatMessage{}),
			want:    []string{},
		},
		{
			name:    "session with messages",
			session: internal.CreateTestSession("test2"),
			want: []string{
				`"role":"user"`,
				`"role":"assistant"`,
				`"route":"general_chat"`,
				`"session_id":"test2"`,
			},
		},
		{
			name: "legacy id timestamp",
			session: internal.CreateTestSessionWithMessages("test3", []internal.ChatMessage{
				{ID: "1672531200000", Role: internal.RoleUser, Content: "Hello"},
			}),
			want: []string{
				`"timestamp":"2023-01-01T00:00:00Z"`,
			},
		},
		{
			name: "unparseable id has no timestamp",
			session: internal.CreateTestSessionWithMessages("test4", []internal.ChatMessage{
				{ID: "abc", Role: internal.RoleUser, Content: "Hello"},
			}),
			want: []string{
				`"role":"user"`,
				`"content":"Hello"`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			exporter := &JSONLExporter{}

			if err := exporter.Export(tt.session, &buf); err != nil {
				t.Fatalf("JSONLExporter.Export() error = %v", err)
			}

			output := buf.String()
			if len(tt.session.Messages) == 0 {
				if output != "" {
					t.Errorf("Empty session should produce empty output, got: %q", output)
				}
				return
			}

			lines := strings.Split(strings.TrimSpace(output), "\n")
			if len(lines) != len(tt.session.Messages) {
				t.Errorf("got %d lines, want %d", len(lines), len(tt.session.Messages))
			}
			for i, line := range lines {
				var msg map[string]interface{}
				if err := json.Unmarshal([]byte(line), &msg); err != nil {
					t.Errorf("Line %d is not valid JSON: %v", i, err)
				}
				for _, field := range []string{"id", "role", "content"} {
					if _, ok := msg[field]; !ok {
						t.Errorf("Line %d missing %q field", i, field)
					}
				}
			}

			for _, wantStr := range tt.want {
				if !strings.Contains(output, wantStr) {
					t.Errorf("Output should contain %q", wantStr)
				}
			}
			if tt.name == "unparseable id has no timestamp" && strings.Contains(output, "timestamp") {
				t.Errorf("Output should not contain a timestamp: %s", output)
			}
		})
	}
}

func TestJSONLExporter_Extension(t *testing.T) {
	exporter := &JSONLExporter{}
	if got := exporter.Extension(); got != "jsonl" {
		t.Errorf("JSONLExporter.Extension() = %v, want jsonl", got)
	}
}
