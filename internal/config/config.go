package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Width          int           `yaml:"width"`
	Height         int           `yaml:"height"`
	ReferenceWidth int           `yaml:"reference_width"` // width the layout styles were authored at
	FPS            int           `yaml:"fps"`
	Workers        int           `yaml:"workers"`
	OutputDir      string        `yaml:"output_dir"`
	ProxyURL       string        `yaml:"proxy_url"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
	MinImageBytes  int           `yaml:"min_image_bytes"`
	PacingDelay    time.Duration `yaml:"pacing_delay"`
	VideoEncoder   string        `yaml:"video_encoder"` // "auto", "avi", libx264, h264_nvenc, h264_videotoolbox
	Quality        int           `yaml:"quality"`       // 0 picks a per-encoder default
	FontDir        string        `yaml:"font_dir"`
	PDFDPI         int           `yaml:"pdf_dpi"`
	Preset         string        `yaml:"preset"`
	StopOnError    bool          `yaml:"stop_on_error"`
	ShowStats      bool          `yaml:"show_stats"`
	BuildVersion   string        `yaml:"-"`
}

const (
	DefaultWidth          = 1080
	DefaultHeight         = 1350
	DefaultReferenceWidth = 1080
	DefaultFPS            = 30
	DefaultMinImageBytes  = 100
	DefaultPacingDelay    = 500 * time.Millisecond
	DefaultFetchTimeout   = 15 * time.Second
	DefaultPDFDPI         = 150
)

// Default returns a Config with every field set to its default.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// SetDefaults fills unset fields. A preset only supplies the sides that are
// not set explicitly.
func (c *Config) SetDefaults() {
	if w, h, ok := presetSize(c.Preset); ok {
		if c.Width <= 0 {
			c.Width = w
		}
		if c.Height <= 0 {
			c.Height = h
		}
	}
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	if c.ReferenceWidth <= 0 {
		c.ReferenceWidth = DefaultReferenceWidth
	}
	if c.FPS <= 0 {
		c.FPS = DefaultFPS
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.OutputDir == "" {
		c.OutputDir = "output"
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.MinImageBytes <= 0 {
		c.MinImageBytes = DefaultMinImageBytes
	}
	if c.PacingDelay < 0 {
		c.PacingDelay = 0
	}
	if c.VideoEncoder == "" {
		c.VideoEncoder = "auto"
	}
	if c.PDFDPI <= 0 {
		c.PDFDPI = DefaultPDFDPI
	}
}

// ApplyPreset overrides the export size for a named aspect preset.
// Unknown or empty presets leave the size untouched.
func (c *Config) ApplyPreset(preset string) {
	if w, h, ok := presetSize(preset); ok {
		c.Width, c.Height = w, h
	}
}

func presetSize(preset string) (w, h int, ok bool) {
	switch preset {
	case "16:9":
		return 1920, 1080, true
	case "9:16":
		return 1080, 1920, true
	case "4:5":
		return 1080, 1350, true
	case "1:1":
		return 1080, 1080, true
	}
	return 0, 0, false
}

// Scale is the export-to-reference resolution ratio applied to every
// pixel-valued style parameter.
func (c *Config) Scale() float64 {
	if c.ReferenceWidth <= 0 {
		return 1
	}
	return float64(c.Width) / float64(c.ReferenceWidth)
}

// Load reads a YAML config file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.SetDefaults()
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.SetDefaults()
	return cfg, nil
}
