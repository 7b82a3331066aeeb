package verifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/zzkhangg/entity-resolution-mini-project/internal/fileutil"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/logging"
)

// Cache is the persistent content-addressed store of verifier results,
// keyed by the hex SHA-256 of the serialized record pair. The whole
// file is loaded at open and rewritten after every insert, so a crash
// loses at most the in-flight call. A file lock next to the cache file
// keeps two concurrent runs from interleaving full-file rewrites.
type Cache struct {
	path     string
	logger   *slog.Logger
	fileLock *flock.Flock

	mu      sync.RWMutex
	entries map[string]Result
}

// OpenCache loads the cache at path, creating an empty one when the
// file does not exist. If path is empty the cache is non-functional
// (every lookup misses, stores are dropped). Callers must Close the
// cache to release the file lock.
func OpenCache(path string, logger *slog.Logger) (*Cache, error) {
	logger = logging.NewComponentLogger(logger, "verifier-cache")

	c := &Cache{
		path:    path,
		logger:  logger,
		entries: make(map[string]Result),
	}
	if path == "" {
		return c, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	c.fileLock = flock.New(path + ".lock")
	locked, err := c.fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock cache: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("cache %s is locked by another run", path)
	}

	if err := c.load(); err != nil {
		_ = c.fileLock.Unlock()
		return nil, err
	}
	return c, nil
}

// Close releases the cache file lock.
func (c *Cache) Close() error {
	if c == nil || c.fileLock == nil {
		return nil
	}
	return c.fileLock.Unlock()
}

// Lookup returns the stored result for a content key.
func (c *Cache) Lookup(key string) (Result, bool) {
	if key == "" || c.path == "" {
		return Result{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	result, found := c.entries[key]
	return result, found
}

// Store inserts a result under its content key and persists the cache
// synchronously. Persist-per-insert trades throughput for durability.
func (c *Cache) Store(key string, result Result) error {
	if key == "" {
		return errors.New("cache key cannot be empty")
	}
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = result

	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}

	c.logger.Debug("cached verifier result",
		logging.String("key", key),
		logging.String("label", result.Label),
		logging.Float64("confidence", result.Confidence))
	return nil
}

// Count returns the number of cached results.
func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns all cache keys in unspecified order.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	return keys
}

// Clear removes all entries and persists the empty cache.
func (c *Cache) Clear() error {
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Result)

	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	c.logger.Debug("cleared verifier cache")
	return nil
}

func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // fresh start
		}
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	entries := make(map[string]Result)
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}
	c.entries = entries

	c.logger.Debug("loaded verifier cache",
		logging.Int("entry_count", len(entries)),
		logging.String("path", c.path))
	return nil
}

// save writes the cache to disk atomically via a temp file rename.
func (c *Cache) save() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	return fileutil.WriteFileAtomic(c.path, data, 0o644)
}
