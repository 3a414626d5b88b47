package internal

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// KeyValueStore is the durable local storage sessions are persisted into
type KeyValueStore interface {
	// Get returns the value and whether the key exists
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	// Keys lists keys with the given prefix in lexical order
	Keys(prefix string) ([]string, error)
	Close() error
}

// Backend names accepted by OpenKeyValueStore
const (
	BackendSQLite = "sqlite"
	BackendPebble = "pebble"
	BackendMemory = "memory"
)

// OpenKeyValueStore opens the named backend inside dataDir
func OpenKeyValueStore(backend, dataDir string) (KeyValueStore, error) {
	switch backend {
	case "", BackendSQLite:
		return OpenSQLiteKV(filepath.Join(dataDir, "sessions.db"))
	case BackendPebble:
		return OpenPebbleKV(filepath.Join(dataDir, "pebble"))
	case BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s (supported: sqlite, pebble, memory)", backend)
	}
}

// MemoryKV is a process-local KeyValueStore
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKV creates an empty MemoryKV
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

// Get implements KeyValueStore
func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set implements KeyValueStore
func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Delete implements KeyValueStore
func (m *MemoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Keys implements KeyValueStore
func (m *MemoryKV) Keys(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close implements KeyValueStore
func (m *MemoryKV) Close() error {
	return nil
}
