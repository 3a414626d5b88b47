package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"RESEARCH_API_URL",
	"RESEARCH_NEWS_URL",
	"RESEARCH_TIMEOUT",
	"RESEARCH_DATA_DIR",
	"RESEARCH_BACKEND",
	"RESEARCH_LOG_FORMAT",
}

// isolateConfig points HOME at an empty directory and unsets every
// override so only what the test sets is seen.
func isolateConfig(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range configEnvKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	return home
}

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolateConfig(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "http://localhost:8000/api/news", cfg.ResolvedNewsURL())
}

func TestLoadConfig_DefaultFile(t *testing.T) {
	home := isolateConfig(t)
	writeConfig(t, filepath.Join(home, ".research-session", "config.yaml"),
		"api_url: http://research.internal:9000\ntimeout: 45s\nbackend: pebble\n")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "http://research.internal:9000", cfg.APIURL)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, BackendPebble, cfg.Backend)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	isolateConfig(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeConfig(t, path, "news_url: https://news.example/feed\nlog_format: json\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://news.example/feed", cfg.ResolvedNewsURL())
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	isolateConfig(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	isolateConfig(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	writeConfig(t, path, "timeout: [not, a, duration\n")

	_, err := LoadConfig(path)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "config", parseErr.Source)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	isolateConfig(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "api_url: http://from-file\nbackend: pebble\n")
	t.Setenv("RESEARCH_API_URL", "http://from-env")
	t.Setenv("RESEARCH_TIMEOUT", "5s")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, BackendPebble, cfg.Backend, "unset variables leave file values alone")
}

func TestLoadConfig_InvalidEnv(t *testing.T) {
	isolateConfig(t)
	t.Setenv("RESEARCH_TIMEOUT", "soon")

	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{name: "defaults", modify: func(*Config) {}, ok: true},
		{name: "memory backend", modify: func(c *Config) { c.Backend = BackendMemory }, ok: true},
		{name: "blank api url", modify: func(c *Config) { c.APIURL = "  " }},
		{name: "zero timeout", modify: func(c *Config) { c.Timeout = 0 }},
		{name: "unknown backend", modify: func(c *Config) { c.Backend = "redis" }},
		{name: "unknown log format", modify: func(c *Config) { c.LogFormat = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestConfig_ResolvedNewsURL_TrailingSlash(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIURL = "http://localhost:8000/"
	assert.Equal(t, "http://localhost:8000/api/news", cfg.ResolvedNewsURL())
}
