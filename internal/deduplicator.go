package internal

import (
	"crypto/sha256"
	"encoding/hex"
)

// Deduplicator removes news items that repeat an earlier headline
type Deduplicator struct{}

// NewDeduplicator creates a new Deduplicator
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// Deduplicate keeps the first item for each title, preserving order
func (d *Deduplicator) Deduplicate(items []NewsItem) []NewsItem {
	seen := make(map[string]bool)
	var unique []NewsItem

	for _, item := range items {
		hash := d.hashTitle(item)
		if !seen[hash] {
			seen[hash] = true
			unique = append(unique, item)
		}
	}

	return unique
}

func (d *Deduplicator) hashTitle(item NewsItem) string {
	h := sha256.Sum256([]byte(item.Title))
	return hex.EncodeToString(h[:])
}
