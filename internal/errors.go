package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when a session id is not in the collection
	ErrSessionNotFound = errors.New("session not found")
	// ErrAmbiguousSessionID is returned when an id prefix matches more than one session
	ErrAmbiguousSessionID = errors.New("session id prefix is ambiguous")
	// ErrDispatchInFlight is returned when a session already has a query outstanding
	ErrDispatchInFlight = errors.New("a query is already in flight for this session")
	// ErrStoreNotLoaded is returned when the store is used before Load completed
	ErrStoreNotLoaded = errors.New("session store not loaded")
)

// StorageError represents errors accessing the key-value store
type StorageError struct {
	Path string
	Op   string // "open", "get", "set", "delete"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ParseError represents errors parsing persisted or remote data
type ParseError struct {
	Source string // "sessions", "legacy", "response", "news"
	Key    string // storage key or route
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DispatchError represents a failed query round trip
type DispatchError struct {
	SessionID string
	Status    int // HTTP status, 0 for transport failures
	Err       error
}

func (e *DispatchError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("dispatch error [%s] status %d: %v", e.SessionID, e.Status, e.Err)
	}
	return fmt.Sprintf("dispatch error [%s]: %v", e.SessionID, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
