package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anim8.yaml")
	data := "name: Walk cycle\npreset: \"9:16\"\nfps: 24\nbrush_color: \"#000000\"\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Name != "Walk cycle" || cfg.FPS != 24 || cfg.BrushColor != "#000000" {
		t.Errorf("Unexpected config: %+v", cfg)
	}
	if cfg.Width != 720 || cfg.Height != 1280 {
		t.Errorf("Preset not applied: %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.BrushSize != 5 || !cfg.OnionSkinning {
		t.Error("Missing keys should keep defaults")
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("preset: 3:2\n"), 0644)
	if _, err := Load(bad); !errors.Is(err, ErrInvalid) {
		t.Errorf("Load() = %v, want ErrInvalid", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		wantFPS int
	}{
		{"default", func(c *Config) {}, false, 12},
		{"fps too high", func(c *Config) { c.FPS = 120 }, false, 60},
		{"fps zero", func(c *Config) { c.FPS = 0 }, false, 1},
		{"zero width", func(c *Config) { c.Width = 0 }, true, 0},
		{"brush too large", func(c *Config) { c.BrushSize = 101 }, true, 0},
		{"brush zero", func(c *Config) { c.BrushSize = 0 }, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("Validate() = %v, want ErrInvalid", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() = %v", err)
			}
			if c.FPS != tt.wantFPS {
				t.Errorf("FPS = %d, want %d", c.FPS, tt.wantFPS)
			}
		})
	}
}

func TestValidateWorkers(t *testing.T) {
	c := Default()
	c.Workers = -3
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if c.Workers != 1 {
		t.Errorf("Workers = %d, want 1", c.Workers)
	}
}
