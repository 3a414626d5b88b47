package cmd

import (
	"bufio"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/research-session/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCommand_InvalidFormat(t *testing.T) {
	env := newTestEnv(t, "http://localhost:8000")
	_, err := env.run("export", "--format", "invalid")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestExportCommand(t *testing.T) {
	backend := testutil.NewJSONBackend(t, http.StatusOK, legalSearchReply)
	env := newTestEnv(t, backend.URL)
	_, err := env.run("ask", "bail in NDPS cases")
	require.NoError(t, err)
	_, err = env.run("ask", "--new", "tenant eviction notice")
	require.NoError(t, err)

	tests := []struct {
		format string
		ext    string
	}{
		{"jsonl", "jsonl"},
		{"md", "md"},
		{"yaml", "yaml"},
		{"json", "json"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			outDir := filepath.Join(t.TempDir(), "exports")
			out, err := env.run("export", "--format", tt.format, "--out", outDir)
			require.NoError(t, err)
			assert.Contains(t, out, "2 session(s) exported")

			files, err := filepath.Glob(filepath.Join(outDir, "session_*."+tt.ext))
			require.NoError(t, err)
			assert.Len(t, files, 2)
		})
	}
}

func TestExportCommand_SingleSession(t *testing.T) {
	backend := testutil.NewJSONBackend(t, http.StatusOK, legalSearchReply)
	env := newTestEnv(t, backend.URL)
	_, err := env.run("ask", "bail in NDPS cases")
	require.NoError(t, err)
	id, err := env.run("new")
	require.NoError(t, err)
	id = strings.TrimSpace(id)

	outDir := t.TempDir()
	_, err = env.run("export", "--session-id", id[:8], "--out", outDir)
	require.NoError(t, err)

	path := filepath.Join(outDir, "session_"+id+".jsonl")
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	// An empty session exports no lines
	assert.False(t, bufio.NewScanner(f).Scan())

	_, err = env.run("export", "--session-id", "unknown", "--out", outDir)
	assert.ErrorContains(t, err, "session not found")
}

func TestExportCommand_JSONLContent(t *testing.T) {
	backend := testutil.NewJSONBackend(t, http.StatusOK, legalSearchReply)
	env := newTestEnv(t, backend.URL)
	_, err := env.run("ask", "bail in NDPS cases")
	require.NoError(t, err)

	outDir := t.TempDir()
	_, err = env.run("export", "--out", outDir)
	require.NoError(t, err)

	files, _ := filepath.Glob(filepath.Join(outDir, "*.jsonl"))
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	var reply map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &reply))
	assert.Equal(t, "assistant", reply["role"])
	assert.Equal(t, "legal_search", reply["route"])
}

func TestExportCommand_NoSessions(t *testing.T) {
	env := newTestEnv(t, "http://localhost:8000")
	outDir := filepath.Join(t.TempDir(), "exports")
	_, err := env.run("export", "--out", outDir)
	require.NoError(t, err)
	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr), "no directory is created when nothing is exported")
}
