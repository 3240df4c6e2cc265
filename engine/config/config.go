// Package config loads the engine configuration from YAML.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"gopkg.in/yaml.v3"
)

// Window configures the platform window.
type Window struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Render configures the default render pass.
type Render struct {
	ClearColour [4]float32 `yaml:"clear_colour"`
	DepthClear  float32    `yaml:"depth_clear"`
}

// Splitter configures the parallel visibility splitter.
type Splitter struct {
	Workers        int `yaml:"workers"`
	ChunkThreshold int `yaml:"chunk_threshold"`
}

// Config is the engine configuration.
type Config struct {
	Window    Window        `yaml:"window"`
	Render    Render        `yaml:"render"`
	Splitter  Splitter      `yaml:"splitter"`
	FrameTime time.Duration `yaml:"frame_time"`
	LogLevel  string        `yaml:"log_level"`
	Profiling bool          `yaml:"profiling"`
}

// Default returns the configuration used for every unset field.
//
// Returns:
//   - Config: the defaults
func Default() Config {
	return Config{
		Window: Window{
			Title:  "oxy-frame",
			Width:  800,
			Height: 600,
		},
		Render: Render{
			ClearColour: [4]float32{0, 0, 0, 1},
			DepthClear:  1,
		},
		Splitter: Splitter{
			Workers:        0,
			ChunkThreshold: 64,
		},
		FrameTime: 33 * time.Millisecond,
		LogLevel:  "info",
	}
}

// Load reads a YAML configuration file. Fields missing from the file keep their defaults.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - Config: the merged configuration
//   - error: a read, parse or validation error
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes. Fields missing from data keep their defaults.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Config: the merged configuration
//   - error: a parse or validation error
func Parse(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	c = c.withDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports the first invalid field.
//
// Returns:
//   - error: nil if the configuration is usable
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("config: window extent %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.FrameTime < 0 {
		return fmt.Errorf("config: negative frame_time %s", c.FrameTime)
	}
	if c.Splitter.Workers < 0 || c.Splitter.ChunkThreshold < 0 {
		return fmt.Errorf("config: negative splitter setting")
	}
	if c.Render.DepthClear < 0 || c.Render.DepthClear > 1 {
		return fmt.Errorf("config: depth_clear %v outside [0, 1]", c.Render.DepthClear)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the slog level named by LogLevel.
//
// Returns:
//   - slog.Level: the level, slog.LevelInfo if LogLevel is invalid
func (c Config) Level() slog.Level {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

// withDefaults fills every zero field from Default. A zero clear colour or depth clear
// cannot be expressed; use an almost-zero value instead.
func (c Config) withDefaults() Config {
	d := Default()
	c.Window.Title = common.Coalesce(c.Window.Title, d.Window.Title)
	c.Window.Width = common.Coalesce(c.Window.Width, d.Window.Width)
	c.Window.Height = common.Coalesce(c.Window.Height, d.Window.Height)
	c.Render.ClearColour = common.Coalesce(c.Render.ClearColour, d.Render.ClearColour)
	c.Render.DepthClear = common.Coalesce(c.Render.DepthClear, d.Render.DepthClear)
	c.Splitter.Workers = common.Coalesce(c.Splitter.Workers, d.Splitter.Workers)
	c.Splitter.ChunkThreshold = common.Coalesce(c.Splitter.ChunkThreshold, d.Splitter.ChunkThreshold)
	c.FrameTime = common.Coalesce(c.FrameTime, d.FrameTime)
	c.LogLevel = common.Coalesce(c.LogLevel, d.LogLevel)
	return c
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("config: log_level: %w", err)
	}
	return l, nil
}
