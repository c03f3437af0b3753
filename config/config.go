package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/xopoww/go-triangle/shaders"
)

// Config represents the main configuration
type Config struct {
	Window WindowConfig `yaml:"window"`
	GL     GLConfig     `yaml:"gl"`
	Render RenderConfig `yaml:"render"`
	Log    LogConfig    `yaml:"log"`
}

// WindowConfig describes the drawing surface
type WindowConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Title     string `yaml:"title"`
	Resizable bool   `yaml:"resizable"`
}

// GLConfig is the requested context version
type GLConfig struct {
	Major int `yaml:"major"`
	Minor int `yaml:"minor"`
}

// RenderConfig contains what gets drawn
type RenderConfig struct {
	ClearColor [4]float32   `yaml:"clear_color"`
	Precision  string       `yaml:"precision"` // fragment float precision: lowp, mediump, highp
	Vertices   [][2]float32 `yaml:"vertices"`
	Screenshot string       `yaml:"screenshot"` // PNG path, empty to skip
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:     640,
			Height:    480,
			Title:     "Go Triangle",
			Resizable: false,
		},
		GL: GLConfig{
			Major: 4,
			Minor: 6,
		},
		Render: RenderConfig{
			ClearColor: [4]float32{0, 0, 0, 0},
			Precision:  shaders.DefaultPrecision,
			Vertices:   [][2]float32{{0, 0}, {0, 0.5}, {0.7, 0}},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads the configuration from a file.
// The defaults are returned along with any error.
func LoadConfig(filePath string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}

	err = yaml.UnmarshalStrict(data, config)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("parse config %q: %w", filePath, err)
	}

	if err := config.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("config %q: %w", filePath, err)
	}
	return config, nil
}

// SaveConfig saves the configuration to a file
func SaveConfig(config *Config, filePath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("serialize config: %w", err)
	}

	err = os.WriteFile(filePath, data, 0644)
	if err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	// GLSL ES 3.00 sources need ES3 compatibility, core since 4.3
	if c.GL.Major < 4 || (c.GL.Major == 4 && c.GL.Minor < 3) {
		return fmt.Errorf("GL %d.%d is too old, need at least 4.3", c.GL.Major, c.GL.Minor)
	}
	if n := len(c.Render.Vertices); n != 3 {
		return fmt.Errorf("render.vertices must hold 3 points, got %d", n)
	}
	for _, v := range c.Render.ClearColor {
		if v < 0 || v > 1 {
			return fmt.Errorf("render.clear_color components must be in [0,1], got %v", c.Render.ClearColor)
		}
	}
	if !shaders.ValidPrecision(c.Render.Precision) {
		return fmt.Errorf("render.precision must be lowp, mediump or highp, got %q", c.Render.Precision)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// SlogLevel falls back to info for unknown levels
func (c LogConfig) SlogLevel() slog.Level {
	level, _ := parseLevel(c.Level)
	return level
}
