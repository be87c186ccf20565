package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Error("exists = true for a missing file")
	}
	if resolved != path {
		t.Errorf("resolved = %q, want %q", resolved, path)
	}
	if cfg.HLTB.PositiveTTLHours != defaultHLTBPositiveTTLHours {
		t.Errorf("PositiveTTLHours = %d, want %d", cfg.HLTB.PositiveTTLHours, defaultHLTBPositiveTTLHours)
	}
	if cfg.Steam.Region != "us" {
		t.Errorf("Region = %q, want us", cfg.Steam.Region)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + dir + `/data"

[hltb]
positive_ttl_hours = 48

[steam]
region = "DE"

[logging]
format = "JSON"
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Error("exists = false for a present file")
	}
	if cfg.HLTB.PositiveTTLHours != 48 {
		t.Errorf("PositiveTTLHours = %d, want 48", cfg.HLTB.PositiveTTLHours)
	}
	if cfg.HLTBPositiveTTL() != 48*time.Hour {
		t.Errorf("HLTBPositiveTTL = %v, want 48h", cfg.HLTBPositiveTTL())
	}
	if cfg.Steam.Region != "de" {
		t.Errorf("Region = %q, want lowercased de", cfg.Steam.Region)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Format = %q, want lowercased json", cfg.Logging.Format)
	}
	// Untouched sections keep their defaults.
	if cfg.OpenCritic.PositiveTTLHours != defaultScorePositiveTTLHours {
		t.Errorf("score TTL = %d, want default %d", cfg.OpenCritic.PositiveTTLHours, defaultScorePositiveTTLHours)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	for name, content := range map[string]string{
		"zero ttl":     "[hltb]\npositive_ttl_hours = 0\n",
		"bad format":   "[logging]\nformat = \"yaml\"\n",
		"bad level":    "[logging]\nlevel = \"verbose\"\n",
		"zero timeout": "[steam]\ntimeout_seconds = 0\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, _, _, err := Load(path); err == nil {
				t.Errorf("Load accepted invalid config %q", content)
			}
		})
	}
}

func TestCachePaths(t *testing.T) {
	cfg := Default()
	cfg.Paths.DataDir = "/data"

	if got := cfg.CompletionCachePath(); got != filepath.Join("/data", "hltb_cache.json") {
		t.Errorf("CompletionCachePath = %q", got)
	}
	if got := cfg.ScoreCachePath(); got != filepath.Join("/data", "opencritic_cache.json") {
		t.Errorf("ScoreCachePath = %q", got)
	}
	if got := cfg.BuildCachePath(); got != filepath.Join("/data", "hltb_build_id.json") {
		t.Errorf("BuildCachePath = %q", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	got, err := ExpandPath("~/x/y")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	if got != filepath.Join(home, "x", "y") {
		t.Errorf("ExpandPath = %q, want under %q", got, home)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[hltb]") {
		t.Error("sample is missing the [hltb] section")
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("sample does not load: %v", err)
	}
	if !exists {
		t.Error("exists = false for the written sample")
	}
	if cfg.HLTB.BaseURL != defaultHLTBBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.HLTB.BaseURL, defaultHLTBBaseURL)
	}
}
