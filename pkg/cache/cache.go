// Package cache maps content fingerprints to previously computed embedding
// vectors so that re-ingesting unchanged content never re-embeds it.
//
// The fingerprint is a SHA-256 digest of the exact chunk text, so any edit
// produces a new key and stale entries are simply never looked up again; no
// explicit invalidation exists. The cache is persisted as a single JSON file
// rewritten wholesale after every store. A failed write is logged and
// non-fatal: the in-memory state stays valid for the rest of the process.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrWrite is returned when persisting the cache to disk fails.
var ErrWrite = errors.New("cache write failed")

// Entry is a cached embedding with the time it was last stored.
type Entry struct {
	Embedding []float32 `json:"embedding"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmbeddingCache is a fingerprint-keyed embedding cache, safe for
// concurrent use. Stores are idempotent per fingerprint, so last-write-wins
// on the backing file is sufficient.
type EmbeddingCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	path    string
	logger  *zap.Logger
}

// Fingerprint returns the deterministic digest of the exact chunk text used
// as the cache key.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// New creates an embedding cache persisted at path. If the file exists its
// entries are loaded; a missing file starts the cache empty. An empty path
// disables persistence entirely.
func New(path string, logger *zap.Logger) (*EmbeddingCache, error) {
	c := &EmbeddingCache{
		entries: make(map[string]Entry),
		path:    path,
		logger:  logger,
	}

	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			// An unreadable cache costs recomputation, never correctness.
			logger.Warn("embedding cache not readable, starting empty",
				zap.String("path", path),
				zap.Error(err),
			)
		}
		return c, nil
	}

	if err := json.Unmarshal(data, &c.entries); err != nil {
		logger.Warn("discarding corrupt embedding cache",
			zap.String("path", path),
			zap.Error(err),
		)
		c.entries = make(map[string]Entry)
	}

	return c, nil
}

// Lookup returns the cached embedding for a fingerprint, if present.
func (c *EmbeddingCache) Lookup(fingerprint string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[fingerprint]
	if !ok {
		return nil, false
	}
	return entry.Embedding, true
}

// Store records an embedding under a fingerprint and persists the cache.
// Persistence failure is logged and reported as ErrWrite but leaves the
// in-memory entry in place.
func (c *EmbeddingCache) Store(fingerprint string, embedding []float32) error {
	c.mu.Lock()
	c.entries[fingerprint] = Entry{
		Embedding: embedding,
		UpdatedAt: time.Now().UTC(),
	}
	c.mu.Unlock()

	if err := c.persist(); err != nil {
		c.logger.Warn("embedding cache not persisted",
			zap.String("path", c.path),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// Len returns the number of cached entries.
func (c *EmbeddingCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// persist rewrites the whole cache file. The write goes to a temp file
// first and is moved into place, so readers never observe a partial file.
func (c *EmbeddingCache) persist() error {
	if c.path == "" {
		return nil
	}

	c.mu.RLock()
	data, err := json.Marshal(c.entries)
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("%w: marshaling entries: %v", ErrWrite, err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating cache dir: %v", ErrWrite, err)
	}

	tmp, err := os.CreateTemp(dir, ".embeddings-*.json")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", ErrWrite, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: writing temp file: %v", ErrWrite, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: closing temp file: %v", ErrWrite, err)
	}

	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: replacing cache file: %v", ErrWrite, err)
	}

	return nil
}
