package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// HLTB contains configuration for the HowLongToBeat source.
type HLTB struct {
	BaseURL          string `toml:"base_url"`
	PositiveTTLHours int    `toml:"positive_ttl_hours"`
	NegativeTTLHours int    `toml:"negative_ttl_hours"`
	BuildTTLHours    int    `toml:"build_ttl_hours"`
	TimeoutSeconds   int    `toml:"timeout_seconds"`
}

// OpenCritic contains configuration for the critic-score gateway. The API
// key is deliberately absent: it is read from the environment at call time.
type OpenCritic struct {
	Host             string `toml:"host"`
	PositiveTTLHours int    `toml:"positive_ttl_hours"`
	NegativeTTLHours int    `toml:"negative_ttl_hours"`
	TimeoutSeconds   int    `toml:"timeout_seconds"`
}

// Steam contains configuration for the storefront price source.
type Steam struct {
	Region         string `toml:"region"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for questlog.
type Config struct {
	Paths      Paths      `toml:"paths"`
	HLTB       HLTB       `toml:"hltb"`
	OpenCritic OpenCritic `toml:"opencritic"`
	Steam      Steam      `toml:"steam"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/questlog/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("questlog.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CompletionCachePath returns the completion-time cache document path.
func (c *Config) CompletionCachePath() string {
	return filepath.Join(c.Paths.DataDir, "hltb_cache.json")
}

// ScoreCachePath returns the critic-score cache document path.
func (c *Config) ScoreCachePath() string {
	return filepath.Join(c.Paths.DataDir, "opencritic_cache.json")
}

// BuildCachePath returns the build-identifier cache document path.
func (c *Config) BuildCachePath() string {
	return filepath.Join(c.Paths.DataDir, "hltb_build_id.json")
}

// HLTBPositiveTTL returns the completion-time positive-entry TTL.
func (c *Config) HLTBPositiveTTL() time.Duration {
	return time.Duration(c.HLTB.PositiveTTLHours) * time.Hour
}

// HLTBNegativeTTL returns the completion-time negative-entry TTL.
func (c *Config) HLTBNegativeTTL() time.Duration {
	return time.Duration(c.HLTB.NegativeTTLHours) * time.Hour
}

// BuildTTL returns the build-identifier TTL.
func (c *Config) BuildTTL() time.Duration {
	return time.Duration(c.HLTB.BuildTTLHours) * time.Hour
}

// ScorePositiveTTL returns the critic-score positive-entry TTL.
func (c *Config) ScorePositiveTTL() time.Duration {
	return time.Duration(c.OpenCritic.PositiveTTLHours) * time.Hour
}

// ScoreNegativeTTL returns the critic-score negative-entry TTL.
func (c *Config) ScoreNegativeTTL() time.Duration {
	return time.Duration(c.OpenCritic.NegativeTTLHours) * time.Hour
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
