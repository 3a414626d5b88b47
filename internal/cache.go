package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// NewsCacheVersion is bumped when the cached layout changes
const NewsCacheVersion = "1.0"

// CacheManager persists the news feed between runs
type CacheManager struct {
	cacheDir string
}

// CacheMetadata stores metadata about the cache
type CacheMetadata struct {
	Source       string    `yaml:"source"`
	CacheVersion string    `yaml:"cache_version"`
	FetchedAt    time.Time `yaml:"fetched_at"`
}

// NewsCacheFile is the on-disk layout of the news cache
type NewsCacheFile struct {
	News     []NewsItem    `yaml:"news"`
	Metadata CacheMetadata `yaml:"metadata"`
}

// NewCacheManager creates a new cache manager. An empty cacheDir disables
// persistence.
func NewCacheManager(cacheDir string) *CacheManager {
	return &CacheManager{
		cacheDir: cacheDir,
	}
}

// Enabled reports whether the cache has a directory to write to
func (cm *CacheManager) Enabled() bool {
	return cm != nil && cm.cacheDir != ""
}

// EnsureCacheDir ensures the cache directory exists
func (cm *CacheManager) EnsureCacheDir() error {
	return os.MkdirAll(cm.cacheDir, 0755)
}

// GetCacheDir returns the cache directory path
func (cm *CacheManager) GetCacheDir() string {
	return cm.cacheDir
}

// GetNewsPath returns the path to the news cache YAML file
func (cm *CacheManager) GetNewsPath() string {
	return filepath.Join(cm.cacheDir, "news.yaml")
}

// IsCacheValid reports whether a cached feed exists and is younger than ttl
func (cm *CacheManager) IsCacheValid(now time.Time, ttl time.Duration) bool {
	cached, err := cm.LoadNews()
	if err != nil || len(cached.News) == 0 {
		return false
	}
	if cached.Metadata.CacheVersion != NewsCacheVersion {
		return false
	}
	return now.Sub(cached.Metadata.FetchedAt) < ttl
}

// LoadNews loads the cached feed
func (cm *CacheManager) LoadNews() (*NewsCacheFile, error) {
	if !cm.Enabled() {
		return nil, os.ErrNotExist
	}
	data, err := os.ReadFile(cm.GetNewsPath())
	if err != nil {
		return nil, err
	}

	var cached NewsCacheFile
	if err := yaml.Unmarshal(data, &cached); err != nil {
		return nil, &ParseError{Source: "cache", Key: cm.GetNewsPath(), Err: err}
	}
	return &cached, nil
}

// SaveNews writes items as the current feed
func (cm *CacheManager) SaveNews(items []NewsItem, source string, fetchedAt time.Time) error {
	if !cm.Enabled() {
		return nil
	}
	if err := cm.EnsureCacheDir(); err != nil {
		return &StorageError{Path: cm.cacheDir, Op: "mkdir", Err: err}
	}

	cached := NewsCacheFile{
		News: items,
		Metadata: CacheMetadata{
			Source:       source,
			CacheVersion: NewsCacheVersion,
			FetchedAt:    fetchedAt.UTC(),
		},
	}
	data, err := yaml.Marshal(&cached)
	if err != nil {
		return fmt.Errorf("failed to marshal news cache: %w", err)
	}

	if err := os.WriteFile(cm.GetNewsPath(), data, 0644); err != nil {
		return &StorageError{Path: cm.GetNewsPath(), Op: "write", Err: err}
	}
	return nil
}

// ClearCache removes the cached feed
func (cm *CacheManager) ClearCache() error {
	if !cm.Enabled() {
		return nil
	}
	if err := os.Remove(cm.GetNewsPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
