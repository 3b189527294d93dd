package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Strategy != DefaultStrategy {
		t.Errorf("Strategy = %q, want %q", cfg.Strategy, DefaultStrategy)
	}
	if cfg.MaxDepth != DefaultMaxDepth {
		t.Errorf("MaxDepth = %d, want %d", cfg.MaxDepth, DefaultMaxDepth)
	}
	if cfg.DefaultPath != DefaultScanPath {
		t.Errorf("DefaultPath = %q, want %q", cfg.DefaultPath, DefaultScanPath)
	}
	if len(cfg.ArchiveExts) == 0 || len(cfg.PreviewExts) == 0 {
		t.Error("extension defaults should not be empty")
	}
	if cfg.Cache.Capacity != DefaultCacheCapacity {
		t.Errorf("Cache.Capacity = %d, want %d", cfg.Cache.Capacity, DefaultCacheCapacity)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("Cache.TTL = %v, want 5m", cfg.Cache.TTL)
	}
	if !cfg.Cache.Persist {
		t.Error("Cache.Persist = false, want true")
	}
	if cfg.Walk.VisitedCap != DefaultVisitedCap {
		t.Errorf("Walk.VisitedCap = %d, want %d", cfg.Walk.VisitedCap, DefaultVisitedCap)
	}
	if cfg.Walk.HygieneInterval != DefaultHygieneInterval {
		t.Errorf("Walk.HygieneInterval = %d, want %d", cfg.Walk.HygieneInterval, DefaultHygieneInterval)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want true")
	}
	if cfg.History.RetentionDays != DefaultRetentionDays {
		t.Errorf("History.RetentionDays = %d, want %d", cfg.History.RetentionDays, DefaultRetentionDays)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoad_FromFile(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".config", "pairscan")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configContent := `
strategy: bestmatch
max_depth: 3
archive_exts:
  - .zip
  - .stl
cache:
  capacity: 16
  ttl: 90s
  persist: false
  max_memory: 10MB
walk:
  visited_cap: 100
history:
  enabled: false
  retention_days: 7
`
	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Strategy != "bestmatch" {
		t.Errorf("Strategy = %q, want bestmatch", cfg.Strategy)
	}
	if cfg.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want 3", cfg.MaxDepth)
	}
	if len(cfg.ArchiveExts) != 2 {
		t.Errorf("ArchiveExts = %v, want the two configured", cfg.ArchiveExts)
	}
	if cfg.Cache.Capacity != 16 {
		t.Errorf("Cache.Capacity = %d, want 16", cfg.Cache.Capacity)
	}
	if cfg.Cache.TTL != 90*time.Second {
		t.Errorf("Cache.TTL = %v, want 90s", cfg.Cache.TTL)
	}
	if cfg.Cache.Persist {
		t.Error("Cache.Persist = true, want false")
	}
	if cfg.Walk.VisitedCap != 100 {
		t.Errorf("Walk.VisitedCap = %d, want 100", cfg.Walk.VisitedCap)
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled = true, want false")
	}
	if cfg.History.RetentionDays != 7 {
		t.Errorf("History.RetentionDays = %d, want 7", cfg.History.RetentionDays)
	}

	// Unspecified keys keep their defaults.
	if cfg.Walk.HygieneInterval != DefaultHygieneInterval {
		t.Errorf("Walk.HygieneInterval = %d, want default", cfg.Walk.HygieneInterval)
	}
}

func TestLoad_XDGConfigHome(t *testing.T) {
	tempDir := t.TempDir()
	xdgConfigDir := filepath.Join(tempDir, "xdg-config", "pairscan")
	if err := os.MkdirAll(xdgConfigDir, 0o755); err != nil {
		t.Fatalf("failed to create XDG config dir: %v", err)
	}

	configContent := `strategy: allcombinations`
	configPath := filepath.Join(xdgConfigDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tempDir, "xdg-config"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Strategy != "allcombinations" {
		t.Errorf("Strategy = %q, want allcombinations", cfg.Strategy)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("PAIRSCAN_STRATEGY", "bestmatch")
	t.Setenv("PAIRSCAN_CACHE_CAPACITY", "42")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Strategy != "bestmatch" {
		t.Errorf("Strategy = %q, want the env override", cfg.Strategy)
	}
	if cfg.Cache.Capacity != 42 {
		t.Errorf("Cache.Capacity = %d, want the env override", cfg.Cache.Capacity)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".config", "pairscan")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("strategy: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail on malformed YAML")
	}
}

func TestMaxMemoryBytes(t *testing.T) {
	c := CacheConfig{MaxMemory: "100MB"}
	bytes, err := c.MaxMemoryBytes()
	if err != nil {
		t.Fatalf("MaxMemoryBytes() error = %v", err)
	}
	if bytes != 100*1024*1024 {
		t.Errorf("MaxMemoryBytes() = %d, want %d", bytes, 100*1024*1024)
	}

	c.MaxMemory = "not-a-size"
	if _, err := c.MaxMemoryBytes(); err == nil {
		t.Error("MaxMemoryBytes() should fail on garbage input")
	}
}

func TestWriteDefault(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tempDir, "config"))

	if err := WriteDefault(); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	configPath := filepath.Join(tempDir, "config", "pairscan", "config.yaml")
	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("expected config file at %s: %v", configPath, err)
	}

	// The written file must load.
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() of written default failed: %v", err)
	}
	if cfg.Strategy != DefaultStrategy {
		t.Errorf("Strategy = %q, want %q", cfg.Strategy, DefaultStrategy)
	}

	// Writing again is a no-op, not an overwrite.
	if err := os.WriteFile(configPath, []byte("strategy: bestmatch\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteDefault(); err != nil {
		t.Fatalf("second WriteDefault() error = %v", err)
	}
	cfg, err = Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Strategy != "bestmatch" {
		t.Error("WriteDefault() must not overwrite an existing config")
	}
}

func TestExpandPath(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)

	expanded, err := ExpandPath("~/history")
	if err != nil {
		t.Fatalf("ExpandPath() error = %v", err)
	}
	if expanded != filepath.Join(tempDir, "history") {
		t.Errorf("ExpandPath() = %q, want under %q", expanded, tempDir)
	}

	plain, err := ExpandPath("/absolute/path")
	if err != nil {
		t.Fatal(err)
	}
	if plain != "/absolute/path" {
		t.Errorf("ExpandPath() = %q, want unchanged", plain)
	}
}
