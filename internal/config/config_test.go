package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/samdwyer/dualcrawl/internal/camera"
)

// clearEnv unsets every variable Config reads and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"DUALCRAWL_SEED", "DUALCRAWL_MAX_LEVELS", "DUALCRAWL_START_VIEW",
		"DUALCRAWL_FOG_OF_WAR", "DUALCRAWL_TEST_MODE", "DUALCRAWL_SAVE_PATH",
		"DUALCRAWL_SAVE_SLOT", "DUALCRAWL_RESUME", "DUALCRAWL_LOG_FILE",
		"DUALCRAWL_LOG_LEVEL", "DUALCRAWL_SPECTATE_ADDR", "DUALCRAWL_TELEMETRY",
		"HONEYCOMB_DUALCRAWL_API_KEY", "HONEYCOMB_DUALCRAWL_DATASET",
	}
	for _, key := range keys {
		if old, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, old) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxLevels != 21 {
		t.Errorf("MaxLevels = %d, want 21", cfg.MaxLevels)
	}
	if cfg.StartView != camera.ModeGrid {
		t.Errorf("StartView = %s, want grid", cfg.StartView)
	}
	if !cfg.FogOfWar || cfg.TestMode {
		t.Errorf("FogOfWar = %v TestMode = %v, want true and false", cfg.FogOfWar, cfg.TestMode)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %s, want INFO", cfg.LogLevel)
	}
	if cfg.SpectateAddr != "" {
		t.Errorf("SpectateAddr = %q, want disabled", cfg.SpectateAddr)
	}
	if cfg.HoneycombDataset != "dualcrawl" {
		t.Errorf("HoneycombDataset = %q", cfg.HoneycombDataset)
	}
}

func TestLoadDotenvAndOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	content := "DUALCRAWL_MAX_LEVELS=5\nDUALCRAWL_START_VIEW=first_person\nDUALCRAWL_SEED=9\nDUALCRAWL_LOG_LEVEL=DEBUG\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	os.Setenv("DUALCRAWL_SEED", "42")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxLevels != 5 {
		t.Errorf("MaxLevels = %d, want 5", cfg.MaxLevels)
	}
	if cfg.StartView != camera.ModeFirstPerson {
		t.Errorf("StartView = %s, want first_person", cfg.StartView)
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want the environment to win with 42", cfg.Seed)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %s, want DEBUG", cfg.LogLevel)
	}

	g := cfg.Game()
	if g.MaxLevels != 5 || g.Seed != 42 || g.StartMode != camera.ModeFirstPerson || !g.FogOfWar {
		t.Errorf("Game() = %+v", g)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"DUALCRAWL_MAX_LEVELS", "0"},
		{"DUALCRAWL_MAX_LEVELS", "many"},
		{"DUALCRAWL_START_VIEW", "isometric"},
		{"DUALCRAWL_FOG_OF_WAR", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			os.Setenv(tt.key, tt.value)
			if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
				t.Errorf("Load() with %s=%s succeeded, want error", tt.key, tt.value)
			}
		})
	}
}
