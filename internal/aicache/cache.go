// Package aicache provides a content-addressed cache for AI-derived
// artifacts. An entry is usable only while unexpired AND while the
// caller's current input hash matches the hash that produced it;
// content identity, not wall-clock time alone, defines staleness.
package aicache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// Kind categorizes cached artifacts.
type Kind string

const (
	KindRecommendations   Kind = "recommendations"
	KindFolderSuggestions Kind = "folder_suggestions"
)

// Entry is a single cached artifact.
type Entry struct {
	Key       string          `json:"key"`
	Kind      Kind            `json:"kind"`
	Value     json.RawMessage `json:"value"`
	InputHash string          `json:"inputHash"`
	CreatedAt time.Time       `json:"createdAt"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// Stats reports cache telemetry. ApproxBytes is the serialized length of
// the stored values, advisory only.
type Stats struct {
	Entries     int          `json:"entries"`
	ApproxBytes int          `json:"approxBytes"`
	ByKind      map[Kind]int `json:"byKind"`
}

// Cache holds entries in memory with optional JSON file persistence.
type Cache struct {
	path    string // "" = memory only
	entries map[string]Entry
}

// New creates a Cache backed by the given file path. A missing or
// unreadable file yields an empty cache; expired entries are pruned on load.
// Pass "" for a memory-only cache.
func New(path string) *Cache {
	c := &Cache{
		path:    path,
		entries: make(map[string]Entry),
	}

	if path == "" {
		return c
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}

	var stored []Entry
	if err := json.Unmarshal(data, &stored); err != nil {
		return c
	}

	now := time.Now()
	for _, e := range stored {
		if now.Before(e.ExpiresAt) {
			c.entries[e.Key] = e
		}
	}
	return c
}

// GetOrCompute returns the cached value for key when the entry is
// unexpired and inputHash matches; otherwise it runs compute, stores the
// result with a fresh expiry, and returns it. The bool reports whether
// the value came from the cache.
func (c *Cache) GetOrCompute(
	ctx context.Context,
	key string,
	kind Kind,
	inputHash string,
	ttl time.Duration,
	forceRefresh bool,
	compute func(ctx context.Context) (json.RawMessage, error),
) (json.RawMessage, bool, error) {
	if !forceRefresh {
		if value, ok := c.Get(key, inputHash); ok {
			return value, true, nil
		}
	}

	value, err := compute(ctx)
	if err != nil {
		return nil, false, err
	}

	c.Set(key, kind, value, inputHash, ttl)
	return value, false, nil
}

// Get returns the stored value for key if the entry is unexpired and the
// hashes match.
func (c *Cache) Get(key, inputHash string) (json.RawMessage, bool) {
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !time.Now().Before(entry.ExpiresAt) {
		return nil, false
	}
	if entry.InputHash != inputHash {
		return nil, false
	}
	return entry.Value, true
}

// Set stores a value under key, overwriting any previous entry.
func (c *Cache) Set(key string, kind Kind, value json.RawMessage, inputHash string, ttl time.Duration) {
	now := time.Now()
	c.entries[key] = Entry{
		Key:       key,
		Kind:      kind,
		Value:     value,
		InputHash: inputHash,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Delete removes a single entry.
func (c *Cache) Delete(key string) {
	delete(c.entries, key)
}

// ClearKind removes all entries of the given kind.
func (c *Cache) ClearKind(kind Kind) {
	for key, entry := range c.entries {
		if entry.Kind == kind {
			delete(c.entries, key)
		}
	}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.entries = make(map[string]Entry)
}

// Stats returns entry count, approximate byte size, and per-kind counts.
func (c *Cache) Stats() Stats {
	stats := Stats{ByKind: make(map[Kind]int)}
	for _, entry := range c.entries {
		stats.Entries++
		stats.ApproxBytes += len(entry.Value)
		stats.ByKind[entry.Kind]++
	}
	return stats
}

// Save persists the cache to its file path. A memory-only cache saves to nothing.
func (c *Cache) Save() error {
	if c.path == "" {
		return nil
	}

	entries := make([]Entry, 0, len(c.entries))
	now := time.Now()
	for _, e := range c.entries {
		if now.Before(e.ExpiresAt) {
			entries = append(entries, e)
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(c.path, data, 0644)
}

// DefaultCachePath returns the default cache file path: ~/.config/bmtidy/ai-cache.json
func DefaultCachePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("cannot determine home directory")
	}
	return filepath.Join(homeDir, ".config", "bmtidy", "ai-cache.json"), nil
}

// HashStrings returns a hex sha256 over the given parts, used as the
// content identity of a batch of inputs.
func HashStrings(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
