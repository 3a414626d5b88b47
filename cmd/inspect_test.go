package cmd

import (
	"encoding/json"
	"testing"

	"github.com/iksnae/research-session/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectCommand_LegacyStore(t *testing.T) {
	env := newTestEnv(t, "http://localhost:8000")
	env.dataDir = testutil.CreateLegacyDataDir(t)

	out, err := env.run("inspect")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 key(s)")
	assert.Contains(t, out, "chat_history")
	assert.Contains(t, out, "(2 element(s))")
	assert.Contains(t, out, "Legacy chat history present")

	// Inspecting does not migrate
	out, err = env.run("inspect", "--format", "json")
	require.NoError(t, err)
	var keys []KeyInfo
	require.NoError(t, json.Unmarshal([]byte(out), &keys))
	require.Len(t, keys, 1)
	assert.Equal(t, "chat_history", keys[0].Key)

	// Loading sessions does
	_, err = env.run("list")
	require.NoError(t, err)
	out, err = env.run("inspect", "--format", "json", "--sample", "0")
	require.NoError(t, err)
	keys = nil
	require.NoError(t, json.Unmarshal([]byte(out), &keys))

	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, k.Key)
		assert.Empty(t, k.Sample)
	}
	assert.ElementsMatch(t, []string{"active_chat_session", "chat_sessions"}, names)
}

func TestInspectCommand_InvalidFormat(t *testing.T) {
	env := newTestEnv(t, "http://localhost:8000")
	_, err := env.run("inspect", "--format", "xml")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestSampleValue(t *testing.T) {
	assert.Equal(t, "short", sampleValue("short", 1))
	assert.Equal(t, "first...", sampleValue("first\nsecond", 1))
	long := ""
	for i := 0; i < 50; i++ {
		long += "ab"
	}
	assert.Equal(t, long[:40]+"...", sampleValue(long, 1))
}
