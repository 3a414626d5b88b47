package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// LegacyHistoryJSON is a single-thread history as written before sessions
const LegacyHistoryJSON = `[
	{"id":"1700000000000","role":"user","content":"What is the limitation period for a civil suit?"},
	{"id":"1700000000001","role":"assistant","content":"Under the Limitation Act, 1963 it depends on the suit.","metadata":{"type":"general_chat","results":{"answer":"It depends.","confidence":"medium"}}}
]`

// SessionsJSON is a two-session collection in the current format
const SessionsJSON = `[
	{"id":"11111111-1111-1111-1111-111111111111","title":"Bail in economic offences","messages":[
		{"id":"01HZY0000000000000000000AA","role":"user","content":"Bail in economic offences"}
	],"createdAt":1700000000000,"updatedAt":1700000500000},
	{"id":"22222222-2222-2222-2222-222222222222","title":"Tenant eviction","messages":[],"createdAt":1690000000000,"updatedAt":1690000000000,"renamed":true}
]`

// RSSFixture is a minimal Google News search feed
const RSSFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>Search</title>
<item>
	<title>Supreme Court expands right to privacy</title>
	<link>https://news.example/privacy</link>
	<pubDate>Mon, 02 Feb 2026 10:00:00 GMT</pubDate>
	<description>&lt;a href="https://news.example/privacy"&gt;Supreme Court expands right to privacy&lt;/a&gt;&amp;nbsp;&lt;font&gt;Law Daily&lt;/font&gt;</description>
</item>
<item>
	<title>High Court rules on arbitration awards</title>
	<link>https://news.example/arbitration</link>
	<pubDate>Sun, 01 Feb 2026 09:00:00 GMT</pubDate>
	<description><![CDATA[<p>Arbitration awards &amp; enforcement</p>]]></description>
</item>
</channel></rss>`

// CreateSQLiteFixture creates a SQLite store file holding entries
func CreateSQLiteFixture(t *testing.T, dbPath string, entries map[string]string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT
	)`
	if _, err := db.Exec(createTableSQL); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	for key, value := range entries {
		if _, err := db.Exec("INSERT INTO kv (key, value) VALUES (?, ?)", key, value); err != nil {
			t.Fatalf("Failed to insert %s: %v", key, err)
		}
	}
}

// CreateCacheFixture creates a cache file fixture
func CreateCacheFixture(t *testing.T, cachePath string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
		t.Fatalf("Failed to create cache directory: %v", err)
	}
	if err := os.WriteFile(cachePath, data, 0644); err != nil {
		t.Fatalf("Failed to write cache file: %v", err)
	}
}

// CreateLegacyDataDir creates a data directory whose SQLite store only
// holds a legacy history
func CreateLegacyDataDir(t *testing.T) string {
	t.Helper()
	dir := CreateTempDir(t)
	CreateSQLiteFixture(t, filepath.Join(dir, "sessions.db"), map[string]string{
		"chat_history": LegacyHistoryJSON,
	})
	return dir
}
