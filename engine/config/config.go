// Package config loads the engine configuration from TOML.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/anima-gfx/engine/core"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// MaxStages is the capacity of the stage graph.
const MaxStages = 1024

type Config struct {
	Gfx    GfxConfig     `toml:"gfx"`
	Jobs   JobsConfig    `toml:"jobs"`
	Log    LogConfig     `toml:"log"`
	Assets AssetsConfig  `toml:"assets"`
	Stages []StageConfig `toml:"stages"`
}

type GfxConfig struct {
	// Debug turns contract assertions on.
	Debug     bool `toml:"debug"`
	Width     int  `toml:"width"`
	Height    int  `toml:"height"`
	// Pipelined ends frames with Present and Commit instead of FrameEnd.
	Pipelined bool `toml:"pipelined"`
}

type JobsConfig struct {
	// NumThreads counts the main thread, so it must be at least 1.
	NumThreads int `toml:"num_threads"`
	QueueSize  int `toml:"queue_size"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type AssetsConfig struct {
	Dir       string `toml:"dir"`
	HotReload bool   `toml:"hot_reload"`
}

// StageConfig declares one node of the stage tree. Parents must be declared
// before their children.
type StageConfig struct {
	Name     string `toml:"name"`
	Parent   string `toml:"parent"`
	Disabled bool   `toml:"disabled"`
}

func Default() *Config {
	return &Config{
		Gfx: GfxConfig{
			Debug:  true,
			Width:  1280,
			Height: 720,
		},
		Jobs: JobsConfig{
			NumThreads: 4,
			QueueSize:  64,
		},
		Log: LogConfig{
			Level: "info",
		},
		Assets: AssetsConfig{
			Dir:       "assets",
			HotReload: true,
		},
	}
}

// Load reads and validates the TOML file at path. Missing keys keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Gfx.Width <= 0 || c.Gfx.Height <= 0 {
		return fmt.Errorf("%w: gfx size %dx%d", ErrInvalidConfig, c.Gfx.Width, c.Gfx.Height)
	}
	if c.Jobs.NumThreads < 1 {
		return fmt.Errorf("%w: jobs.num_threads must be at least 1, got %d", ErrInvalidConfig, c.Jobs.NumThreads)
	}
	if c.Jobs.QueueSize < 0 {
		return fmt.Errorf("%w: jobs.queue_size must not be negative", ErrInvalidConfig)
	}
	if _, err := core.ParseLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
	}
	if len(c.Stages) > MaxStages {
		return fmt.Errorf("%w: %d stages declared, maximum is %d", ErrInvalidConfig, len(c.Stages), MaxStages)
	}

	declared := make(map[string]struct{}, len(c.Stages))
	for i, s := range c.Stages {
		if s.Name == "" {
			return fmt.Errorf("%w: stage #%d has no name", ErrInvalidConfig, i)
		}
		if _, dup := declared[s.Name]; dup {
			return fmt.Errorf("%w: stage '%s' declared twice", ErrInvalidConfig, s.Name)
		}
		if s.Parent != "" {
			if _, ok := declared[s.Parent]; !ok {
				return fmt.Errorf("%w: stage '%s' references undeclared parent '%s'", ErrInvalidConfig, s.Name, s.Parent)
			}
		}
		declared[s.Name] = struct{}{}
	}
	return nil
}

// LogLevel returns the parsed log level. Call after Validate.
func (c *Config) LogLevel() core.LogLevel {
	lvl, err := core.ParseLogLevel(c.Log.Level)
	if err != nil {
		return core.InfoLevel
	}
	return lvl
}
