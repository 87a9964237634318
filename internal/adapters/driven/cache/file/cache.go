// Package file provides a file-backed answer cache. Each entry is a
// JSON document named by its key, so the cache survives restarts and
// can be wiped with a plain directory delete.
package file

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/athena-labs/athena-cli/internal/core/domain"
	"github.com/athena-labs/athena-cli/internal/core/ports/driven"
)

// Ensure AnswerCache implements the interface.
var _ driven.AnswerCache = (*AnswerCache)(nil)

// AnswerCache stores answers as <key>.json files under a directory.
type AnswerCache struct {
	dir string
}

// NewAnswerCache creates a cache rooted at dir, creating it if needed.
func NewAnswerCache(dir string) (*AnswerCache, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create directory: %w", err)
	}
	return &AnswerCache{dir: dir}, nil
}

// Key derives the digest for a question and its ordered context IDs.
// The IDs are joined in order, so the same sources in a different
// ranking produce a different key.
func (c *AnswerCache) Key(question string, contextIDs []string) string {
	sum := sha256.Sum256([]byte(question + "|" + strings.Join(contextIDs, "|")))
	return hex.EncodeToString(sum[:])
}

// Load returns the entry for the key, or (nil, nil) when absent.
func (c *AnswerCache) Load(key string) (*domain.CacheEntry, error) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &domain.CacheError{Op: "load", Key: key, Err: err}
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, &domain.CacheError{Op: "load", Key: key, Err: err}
	}
	return &entry, nil
}

// Save writes the entry, overwriting any existing entry with the key.
func (c *AnswerCache) Save(key string, entry domain.CacheEntry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return &domain.CacheError{Op: "save", Key: key, Err: err}
	}
	if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
		return &domain.CacheError{Op: "save", Key: key, Err: err}
	}
	return nil
}

// Clear removes every cached entry.
func (c *AnswerCache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return &domain.CacheError{Op: "clear", Err: err}
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return &domain.CacheError{Op: "clear", Key: e.Name(), Err: err}
		}
	}
	return nil
}

func (c *AnswerCache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}
