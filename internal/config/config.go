package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/anim8/internal/model"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Limits accepted by Validate.
const (
	MinFPS       = 1
	MaxFPS       = 60
	MinBrushSize = 1
	MaxBrushSize = 100
)

type Config struct {
	Name   string `yaml:"name"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Preset string `yaml:"preset"`

	FPS           int    `yaml:"fps"`
	OnionSkinning bool   `yaml:"onion_skinning"`
	BrushColor    string `yaml:"brush_color"`
	BrushSize     int    `yaml:"brush_size"`

	InputPath   string `yaml:"input"`
	DPI         int    `yaml:"dpi"`
	ScriptPath  string `yaml:"script"`
	ProjectPath string `yaml:"load"`

	OutputDir     string `yaml:"output_dir"`
	ExportPNG     bool   `yaml:"png"`
	ExportProject bool   `yaml:"project"`
	ExportVideo   bool   `yaml:"video"`
	VideoEncoder  string `yaml:"video_encoder"`
	Quality       int    `yaml:"quality"`

	Workers      int    `yaml:"workers"`
	ShowStats    bool   `yaml:"stats"`
	Verbose      bool   `yaml:"verbose"`
	BuildVersion string `yaml:"-"`
}

// Default mirrors a freshly created document.
func Default() Config {
	return Config{
		Name:          model.DefaultName,
		Width:         model.DefaultWidth,
		Height:        model.DefaultHeight,
		FPS:           model.DefaultFPS,
		OnionSkinning: true,
		BrushColor:    model.DefaultBrushColor,
		BrushSize:     model.DefaultBrushSize,
		DPI:           150,
		OutputDir:     "output",
		Workers:       runtime.NumCPU(),
	}
}

// Load reads a YAML file over Default. Keys missing from the file keep
// their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.ApplyPreset(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyPreset overrides Width and Height from Preset.
func (c *Config) ApplyPreset() error {
	switch c.Preset {
	case "":
	case "16:9":
		c.Width, c.Height = 1280, 720
	case "9:16":
		c.Width, c.Height = 720, 1280
	case "4:5":
		c.Width, c.Height = 1080, 1350
	case "4:3":
		c.Width, c.Height = model.DefaultWidth, model.DefaultHeight
	default:
		return fmt.Errorf("%w: unknown preset %q", ErrInvalid, c.Preset)
	}
	return nil
}

// Validate rejects sizes and brush settings the editor cannot use and
// clamps FPS and Workers into range.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, c.Width, c.Height)
	}
	if c.BrushSize < MinBrushSize || c.BrushSize > MaxBrushSize {
		return fmt.Errorf("%w: brush size %d outside %d..%d", ErrInvalid, c.BrushSize, MinBrushSize, MaxBrushSize)
	}
	if c.DPI <= 0 {
		return fmt.Errorf("%w: dpi %d", ErrInvalid, c.DPI)
	}
	c.FPS = ClampFPS(c.FPS)
	if c.Workers < 1 {
		c.Workers = 1
	}
	return nil
}

// ClampFPS limits fps to MinFPS..MaxFPS.
func ClampFPS(fps int) int {
	return max(MinFPS, min(fps, MaxFPS))
}
