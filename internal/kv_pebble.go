package internal

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// PebbleKV is a KeyValueStore backed by a Pebble LSM directory
type PebbleKV struct {
	db   *pebble.DB
	path string
}

// OpenPebbleKV opens (or creates) a Pebble database at path
func OpenPebbleKV(path string) (*PebbleKV, error) {
	LogDebug("Opening pebble store at %s", path)
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, &StorageError{Path: path, Op: "open", Err: err}
	}
	return &PebbleKV{db: db, path: path}, nil
}

// Get implements KeyValueStore
func (p *PebbleKV) Get(key string) (string, bool, error) {
	v, closer, err := p.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	defer closer.Close()
	// v is only valid until closer.Close
	return string(v), true, nil
}

// Set implements KeyValueStore
func (p *PebbleKV) Set(key, value string) error {
	if err := p.db.Set([]byte(key), []byte(value), pebble.Sync); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete implements KeyValueStore
func (p *PebbleKV) Delete(key string) error {
	if err := p.db.Delete([]byte(key), pebble.Sync); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Keys implements KeyValueStore
func (p *PebbleKV) Keys(prefix string) ([]string, error) {
	iter, err := p.db.NewIter(&pebble.IterOptions{LowerBound: []byte(prefix)})
	if err != nil {
		return nil, fmt.Errorf("iterate %s: %w", prefix, err)
	}
	defer iter.Close()

	var keys []string
	for iter.First(); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), []byte(prefix)) {
			break
		}
		keys = append(keys, string(iter.Key()))
	}
	return keys, nil
}

// Close implements KeyValueStore
func (p *PebbleKV) Close() error {
	return p.db.Close()
}

// Path returns the pebble directory
func (p *PebbleKV) Path() string {
	return p.path
}
