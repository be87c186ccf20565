package metacache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"questlog/internal/logging"
)

// Entry is a cached resolution outcome. A nil Value records a confirmed
// absence, distinct from the key not being present at all.
type Entry struct {
	Value    *float64  `json:"value"`
	CachedAt time.Time `json:"cached_at"`
}

// Store provides TTL-differentiated access to one cache document.
type Store struct {
	path        string
	positiveTTL time.Duration
	negativeTTL time.Duration
	logger      *slog.Logger
}

// NewStore creates a store backed by the JSON document at path. Positive
// entries stay fresh for positiveTTL, negative (nil-value) entries for
// negativeTTL.
func NewStore(path string, positiveTTL, negativeTTL time.Duration, logger *slog.Logger) *Store {
	return &Store{
		path:        path,
		positiveTTL: positiveTTL,
		negativeTTL: negativeTTL,
		logger:      logging.NewComponentLogger(logger, "metacache"),
	}
}

// Lookup returns the entry for key if it exists and is still fresh. The
// applicable TTL depends on whether the entry holds a value.
func (s *Store) Lookup(key string) (Entry, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Entry{}, false
	}

	entries := s.load()
	entry, found := entries[key]
	if !found {
		return Entry{}, false
	}

	ttl := s.positiveTTL
	if entry.Value == nil {
		ttl = s.negativeTTL
	}
	if time.Since(entry.CachedAt) > ttl {
		s.logger.Debug("cache entry expired",
			logging.String(logging.FieldCacheKey, key),
			logging.Duration("age", time.Since(entry.CachedAt)))
		return Entry{}, false
	}
	return entry, true
}

// Put inserts or overwrites the entry for key and persists the whole map.
func (s *Store) Put(key string, value *float64) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("cache key cannot be empty")
	}

	entries := s.load()
	entries[key] = Entry{Value: value, CachedAt: time.Now().UTC()}

	if err := s.save(entries); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	s.logger.Debug("cache entry stored",
		logging.String(logging.FieldCacheKey, key),
		logging.Bool("negative", value == nil))
	return nil
}

// Clear deletes the backing document. A missing document is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove cache document: %w", err)
	}
	s.logger.Debug("cache cleared", logging.String("path", s.path))
	return nil
}

// List returns every stored entry, fresh or stale, for inspection.
func (s *Store) List() map[string]Entry {
	return s.load()
}

// load reads the document into a map. A missing or unparsable document is
// treated as an empty cache, never as an error.
func (s *Store) load() map[string]Entry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("failed to read cache document, starting empty",
				logging.String("path", s.path),
				logging.Error(err))
		}
		return map[string]Entry{}
	}

	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn("failed to parse cache document, starting empty",
			logging.String("path", s.path),
			logging.Error(err))
		return map[string]Entry{}
	}
	if entries == nil {
		entries = map[string]Entry{}
	}
	return entries
}

// save writes the document atomically via a temp-file rename.
func (s *Store) save(entries map[string]Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
