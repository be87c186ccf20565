package hltb

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

// buildRecord is the persisted build identifier document.
type buildRecord struct {
	BuildID string    `json:"build_id"`
	TS      time.Time `json:"ts"`
}

// BuildCache persists the scraped build identifier with its own TTL. The
// identifier changes whenever the upstream site redeploys, so it is
// refreshed lazily on expiry or absence.
type BuildCache struct {
	path   string
	ttl    time.Duration
	logger *slog.Logger
}

// NewBuildCache creates a cache backed by the JSON document at path.
func NewBuildCache(path string, ttl time.Duration, logger *slog.Logger) *BuildCache {
	return &BuildCache{
		path:   path,
		ttl:    ttl,
		logger: logging.NewComponentLogger(logger, "hltb"),
	}
}

// Lookup returns the cached build identifier if present and fresh.
func (c *BuildCache) Lookup() (string, bool) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return "", false
	}
	var record buildRecord
	if err := json.Unmarshal(data, &record); err != nil {
		c.logger.Warn("failed to parse build id document, refetching",
			logging.String("path", c.path),
			logging.Error(err))
		return "", false
	}
	if strings.TrimSpace(record.BuildID) == "" || time.Since(record.TS) > c.ttl {
		return "", false
	}
	return record.BuildID, true
}

// Store persists the build identifier with the current timestamp.
func (c *BuildCache) Store(buildID string) error {
	buildID = strings.TrimSpace(buildID)
	if buildID == "" {
		return errors.New("build id cannot be empty")
	}
	data, err := json.Marshal(buildRecord{BuildID: buildID, TS: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal build id: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Clear removes the document; absence is not an error.
func (c *BuildCache) Clear() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove build id document: %w", err)
	}
	return nil
}
