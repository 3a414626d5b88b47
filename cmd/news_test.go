package cmd

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/research-session/internal"
	"github.com/iksnae/research-session/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const newsBody = `{"news":[
	{"id":"n1","title":"Supreme Court expands bail jurisprudence","summary":"A three-judge bench clarified the twin conditions.","date":"March 1, 2026","link":"https://example.org/1"},
	{"id":"n2","title":"","summary":"untitled items are dropped"}
]}`

func newsBackend(t *testing.T) *testutil.Backend {
	return testutil.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/news":
			_, _ = io.WriteString(w, newsBody)
		case "/api/query":
			_, _ = io.WriteString(w, `{"message":"The ruling narrows the twin test."}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func countPath(reqs []testutil.Request, path string) int {
	n := 0
	for _, r := range reqs {
		if r.Path == path {
			n++
		}
	}
	return n
}

func TestNewsCommand(t *testing.T) {
	backend := newsBackend(t)
	env := newTestEnv(t, backend.URL)

	out, err := env.run("news")
	require.NoError(t, err)
	assert.Contains(t, out, "(backend)")
	assert.Contains(t, out, "1. Supreme Court expands bail jurisprudence")
	assert.Contains(t, out, "March 1, 2026")
	assert.NotContains(t, out, "untitled items")

	// The second run is served from the disk cache
	out, err = env.run("news")
	require.NoError(t, err)
	assert.Contains(t, out, "(cache)")
	assert.Equal(t, 1, countPath(backend.Requests(), "/api/news"))

	out, err = env.run("news", "--refresh")
	require.NoError(t, err)
	assert.Contains(t, out, "(backend)")
	assert.Equal(t, 2, countPath(backend.Requests(), "/api/news"))
}

func TestNewsCommand_Analyse(t *testing.T) {
	backend := newsBackend(t)
	env := newTestEnv(t, backend.URL)

	out, err := env.run("news", "--analyse", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "The ruling narrows the twin test.")

	var query string
	for _, r := range backend.Requests() {
		if r.Path == "/api/query" {
			query = r.Body
		}
	}
	assert.Contains(t, query, "Supreme Court expands bail jurisprudence")
	assert.Contains(t, query, "Analyse the legal implications")

	out, err = env.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "Supreme Court expands bail jurisprudence...")

	_, err = env.run("news", "--analyse", "9")
	assert.ErrorContains(t, err, "no headline 9")
}

func TestNewsCommand_RSSFallback(t *testing.T) {
	backend := testutil.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rss" {
			w.Header().Set("Content-Type", "application/rss+xml")
			_, _ = io.WriteString(w, testutil.RSSFixture)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	env := newTestEnv(t, backend.URL)

	out, err := env.run("news", "--rss-base", backend.URL+"/rss")
	require.NoError(t, err)
	assert.Contains(t, out, "(live)")
	assert.Equal(t, len(internal.NewsQueries), countPath(backend.Requests(), "/rss"))
}

func TestNewsCommand_StaticFallback(t *testing.T) {
	backend := testutil.NewJSONBackend(t, http.StatusServiceUnavailable, `{"detail":"down"}`)
	env := newTestEnv(t, backend.URL)

	out, err := env.run("news", "--rss-base", backend.URL+"/rss")
	require.NoError(t, err)
	assert.Contains(t, out, "(static)")
	assert.Contains(t, out, internal.StaticNews()[0].Title)
}

func TestDisplayNews(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var out strings.Builder
	displayNews(&out, &internal.NewsResponse{
		News:        []internal.NewsItem{{Title: "Headline", Summary: "Summary", Link: "#"}},
		Source:      internal.NewsSourceStatic,
		LastUpdated: now.Add(-time.Hour),
		NextUpdate:  now.Add(3 * time.Hour),
	}, now)

	assert.Contains(t, out.String(), "1. Headline")
	assert.Contains(t, out.String(), "1 hour ago")
	assert.Contains(t, out.String(), "3 hours from now")
	assert.NotContains(t, out.String(), "#\n")
}
