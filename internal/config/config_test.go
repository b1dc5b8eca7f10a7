package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}

	if cfg.Gesture.PinchThreshold != 40 {
		t.Errorf("PinchThreshold = %v, want 40", cfg.Gesture.PinchThreshold)
	}
	if cfg.Palette.Default != 4 {
		t.Errorf("Palette.Default = %d, want 4", cfg.Palette.Default)
	}
	if cfg.Journal.Path != "" || cfg.Preview.Addr != "" || cfg.Tray {
		t.Error("optional features should be disabled by default")
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := []byte(`
gesture:
  pinch_threshold: 30
  smoothing: 0.25
audio:
  tone: 25ms
journal:
  path: /tmp/ironcanvas.db
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Gesture.PinchThreshold != 30 {
		t.Errorf("PinchThreshold = %v, want 30", cfg.Gesture.PinchThreshold)
	}
	if cfg.Gesture.Smoothing != 0.25 {
		t.Errorf("Smoothing = %v, want 0.25", cfg.Gesture.Smoothing)
	}
	if cfg.Audio.Tone != 25*time.Millisecond {
		t.Errorf("Audio.Tone = %v, want 25ms", cfg.Audio.Tone)
	}
	if cfg.Journal.Path != "/tmp/ironcanvas.db" {
		t.Errorf("Journal.Path = %q", cfg.Journal.Path)
	}

	// Untouched keys keep their defaults.
	if cfg.Gesture.GuardLine != 200 {
		t.Errorf("GuardLine = %d, want default 200", cfg.Gesture.GuardLine)
	}
	if cfg.Audio.Idle != 50*time.Millisecond {
		t.Errorf("Audio.Idle = %v, want default 50ms", cfg.Audio.Idle)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(dir, "nope.yaml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		os.WriteFile(path, []byte("gesture: [1, 2"), 0644)
		if _, err := Load(path); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		path := filepath.Join(dir, "invalid.yaml")
		os.WriteFile(path, []byte("gesture:\n  smoothing: 0\n"), 0644)
		_, err := Load(path)
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("Load() error = %v, want ErrInvalid", err)
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"smoothing above one", func(c *Config) { c.Gesture.Smoothing = 1.5 }},
		{"negative smoothing", func(c *Config) { c.Gesture.Smoothing = -0.1 }},
		{"zero pinch threshold", func(c *Config) { c.Gesture.PinchThreshold = 0 }},
		{"zero brush", func(c *Config) { c.Brush.Size = 0 }},
		{"default out of range", func(c *Config) { c.Palette.Default = PaletteSize }},
		{"even blur kernel", func(c *Config) { c.Glow.Kernel = 14 }},
		{"glow scale zero", func(c *Config) { c.Glow.Scale = 0 }},
		{"empty frequency range", func(c *Config) { c.Audio.MinHz = 900 }},
		{"zero idle", func(c *Config) { c.Audio.Idle = 0 }},
		{"long quit key", func(c *Config) { c.Window.QuitKey = "quit" }},
		{"zero width", func(c *Config) { c.Camera.Width = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() error = %v, want ErrInvalid", err)
			}
		})
	}

	t.Run("glow disabled skips glow checks", func(t *testing.T) {
		cfg := Default()
		cfg.Glow.Enabled = false
		cfg.Glow.Kernel = 0
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("smoothing of one is allowed", func(t *testing.T) {
		cfg := Default()
		cfg.Gesture.Smoothing = 1
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})
}
