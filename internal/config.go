package internal

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. RESEARCH_API_URL
const EnvPrefix = "RESEARCH"

// DefaultAPIURL is the research backend used when nothing is configured
const DefaultAPIURL = "http://localhost:8000"

// Config holds client configuration
type Config struct {
	APIURL    string        `yaml:"api_url" envconfig:"API_URL"`
	NewsURL   string        `yaml:"news_url" envconfig:"NEWS_URL"`
	Timeout   time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	DataDir   string        `yaml:"data_dir" envconfig:"DATA_DIR"`
	Backend   string        `yaml:"backend" envconfig:"BACKEND"`
	LogFormat string        `yaml:"log_format" envconfig:"LOG_FORMAT"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() Config {
	return Config{
		APIURL:    DefaultAPIURL,
		Timeout:   DefaultTimeout,
		Backend:   BackendSQLite,
		LogFormat: "console",
	}
}

// LoadConfig resolves configuration from defaults, the YAML file at path
// (optional), a .env file in the working directory and the environment,
// later layers winning. An explicit path that does not exist is an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return cfg, err
			}
		}
	}

	// Existing environment variables take precedence over .env
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		LogWarn("Ignoring unreadable .env: %v", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to load config from environment: %w", err)
	}

	return cfg, cfg.Validate()
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return &ParseError{Source: "config", Key: path, Err: err}
	}
	LogDebug("Loaded config from %s", path)
	return nil
}

// Validate checks field values
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return fmt.Errorf("api_url must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	switch c.Backend {
	case BackendSQLite, BackendPebble, BackendMemory:
	default:
		return fmt.Errorf("unsupported backend: %s (supported: sqlite, pebble, memory)", c.Backend)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported log format: %s (supported: console, json)", c.LogFormat)
	}
	return nil
}

// ResolvedNewsURL is NewsURL, defaulting to the backend news endpoint
func (c Config) ResolvedNewsURL() string {
	if c.NewsURL != "" {
		return c.NewsURL
	}
	return strings.TrimRight(c.APIURL, "/") + "/api/news"
}
