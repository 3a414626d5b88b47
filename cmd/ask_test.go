package cmd

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/iksnae/research-session/internal"
	"github.com/iksnae/research-session/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legalSearchReply = `{"message":"Found 1 judgment","route":"legal_search","result":{"results":[{"title":"State v. Rao","citation":"2020 SCC 1","url":"https://indiankanoon.org/doc/1/"}]}}`

func TestAskCommand(t *testing.T) {
	backend := testutil.NewJSONBackend(t, http.StatusOK, legalSearchReply)
	env := newTestEnv(t, backend.URL)

	out, err := env.run("ask", "bail", "in", "NDPS", "cases")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 judgment")
	assert.Contains(t, out, "State v. Rao (2020 SCC 1)")

	reqs := backend.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/api/query", reqs[0].Path)
	assert.JSONEq(t, `{"query":"bail in NDPS cases"}`, reqs[0].Body)

	out, err = env.run("show")
	require.NoError(t, err)
	assert.Contains(t, out, "bail in NDPS cases")
	assert.Contains(t, out, "[2/2]")

	// A second question lands in the same active session
	_, err = env.run("ask", "and anticipatory bail?")
	require.NoError(t, err)
	out, err = env.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 session(s)")
}

func TestAskCommand_NewAndSession(t *testing.T) {
	backend := testutil.NewJSONBackend(t, http.StatusOK, `{"message":"ok"}`)
	env := newTestEnv(t, backend.URL)

	_, err := env.run("ask", "first question")
	require.NoError(t, err)
	_, err = env.run("ask", "--new", "second question")
	require.NoError(t, err)

	out, err := env.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 2 session(s)")

	out, err = env.run("--backend", "sqlite", "inspect", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"key": "chat_sessions"`)

	_, err = env.run("ask", "--session", "nope", "third")
	assert.ErrorIs(t, err, internal.ErrSessionNotFound)

	_, err = env.run("ask", "--new", "--session", "x", "q")
	assert.Error(t, err)
}

func TestAskCommand_BackendFailure(t *testing.T) {
	backend := testutil.NewJSONBackend(t, http.StatusInternalServerError, `{"detail":"index offline"}`)
	env := newTestEnv(t, backend.URL)

	out, err := env.run("ask", "limitation for recovery suit")
	require.Error(t, err)
	var dispatchErr *internal.DispatchError
	require.True(t, errors.As(err, &dispatchErr), "error %v is not a DispatchError", err)
	assert.Equal(t, http.StatusInternalServerError, dispatchErr.Status)
	assert.Contains(t, out, "Sorry, I encountered an error")

	// The apology is kept in the session
	out, err = env.run("show")
	require.NoError(t, err)
	assert.Contains(t, out, "limitation for recovery suit")
	assert.Contains(t, out, "Sorry, I encountered an error")
}

func TestAskCommand_BlankQuery(t *testing.T) {
	backend := testutil.NewJSONBackend(t, http.StatusOK, `{"message":"unused"}`)
	env := newTestEnv(t, backend.URL)

	out, err := env.run("ask", "  ")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to send")
	assert.Empty(t, backend.Requests())

	out, err = env.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found")
}

func TestOpenCommand(t *testing.T) {
	backend := testutil.NewJSONBackend(t, http.StatusOK, `{"message":"Article 21 protects life and personal liberty."}`)
	env := newTestEnv(t, backend.URL)

	out, err := env.run("open", "/research?prompt=Explain%20Article%2021")
	require.NoError(t, err)
	assert.Contains(t, out, "Article 21 protects")
	assert.Equal(t, 1, backend.RequestCount())

	out, err = env.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "Explain Article 21")
}

func TestOpenCommand_NoPrompt(t *testing.T) {
	backend := testutil.NewJSONBackend(t, http.StatusOK, `{"message":"unused"}`)
	env := newTestEnv(t, backend.URL)

	for _, link := range []string{"/research", "/research?prompt=", "/research?prompt=%20%20"} {
		out, err := env.run("open", link)
		require.NoError(t, err, link)
		assert.Contains(t, out, "No prompt in link")
	}
	assert.Zero(t, backend.RequestCount())

	out, err := env.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found")
}

func TestOpenCommand_BadURL(t *testing.T) {
	env := newTestEnv(t, "http://localhost:8000")
	_, err := env.run("open", "http://[::1")
	var parseErr *internal.ParseError
	assert.True(t, errors.As(err, &parseErr), "got %v", err)
}

func TestDisplayOutcome(t *testing.T) {
	var out strings.Builder
	assert.NoError(t, displayOutcome(&out, nil))
	assert.NoError(t, displayOutcome(&out, &internal.Outcome{State: internal.DispatchSkipped}))
	assert.Contains(t, out.String(), "Nothing to send")
	assert.NoError(t, displayOutcome(&out, &internal.Outcome{State: internal.DispatchDiscarded}))
	assert.Contains(t, out.String(), "deleted before the reply")
}
