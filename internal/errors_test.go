package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorageError(t *testing.T) {
	originalErr := errors.New("permission denied")
	err := &StorageError{
		Path: "/test/path",
		Op:   "open",
		Err:  originalErr,
	}

	assert.Contains(t, err.Error(), "storage error")
	assert.Contains(t, err.Error(), "/test/path")
	assert.ErrorIs(t, err, originalErr)
}

func TestParseError(t *testing.T) {
	originalErr := errors.New("invalid JSON")
	err := &ParseError{
		Source: "sessions",
		Key:    "chat_sessions",
		Err:    originalErr,
	}

	assert.Contains(t, err.Error(), "parse error")
	assert.Contains(t, err.Error(), "chat_sessions")
	assert.ErrorIs(t, err, originalErr)
}

func TestDispatchError(t *testing.T) {
	originalErr := errors.New("connection refused")

	tests := []struct {
		name     string
		err      *DispatchError
		contains []string
	}{
		{
			name:     "transport failure",
			err:      &DispatchError{SessionID: "s1", Err: originalErr},
			contains: []string{"dispatch error", "s1", "connection refused"},
		},
		{
			name:     "server error",
			err:      &DispatchError{SessionID: "s2", Status: 500, Err: originalErr},
			contains: []string{"dispatch error", "s2", "status 500"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, want := range tt.contains {
				assert.Contains(t, tt.err.Error(), want)
			}
			assert.ErrorIs(t, tt.err, originalErr)
		})
	}
}

func TestExportError(t *testing.T) {
	originalErr := errors.New("write failed")
	err := &ExportError{
		Format: "jsonl",
		Path:   "/output/file.jsonl",
		Err:    originalErr,
	}

	assert.Contains(t, err.Error(), "export error")
	assert.Contains(t, err.Error(), "jsonl")
	assert.ErrorIs(t, err, originalErr)
}

func TestSentinelErrors(t *testing.T) {
	assert.NotErrorIs(t, ErrAmbiguousSessionID, ErrSessionNotFound)
	assert.NotErrorIs(t, ErrStoreNotLoaded, ErrSessionNotFound)
}
