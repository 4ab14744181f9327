package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/anima-gfx/engine/core"
)

const sample = `
[gfx]
debug = false
width = 640
height = 480

[jobs]
num_threads = 8

[log]
level = "debug"

[[stages]]
name = "shadow"

[[stages]]
name = "opaque"
parent = "shadow"

[[stages]]
name = "ui"
disabled = true
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Gfx.Debug || cfg.Gfx.Width != 640 || cfg.Gfx.Height != 480 {
		t.Errorf("gfx = %+v", cfg.Gfx)
	}
	if cfg.Jobs.NumThreads != 8 {
		t.Errorf("jobs.num_threads = %d, want 8", cfg.Jobs.NumThreads)
	}
	if cfg.Jobs.QueueSize != Default().Jobs.QueueSize {
		t.Errorf("jobs.queue_size = %d, want default", cfg.Jobs.QueueSize)
	}
	if cfg.LogLevel() != core.DebugLevel {
		t.Errorf("LogLevel() = %v", cfg.LogLevel())
	}
	if len(cfg.Stages) != 3 || cfg.Stages[1].Parent != "shadow" || !cfg.Stages[2].Disabled {
		t.Errorf("stages = %+v", cfg.Stages)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"no threads", func(c *Config) { c.Jobs.NumThreads = 0 }},
		{"negative queue", func(c *Config) { c.Jobs.QueueSize = -1 }},
		{"bad level", func(c *Config) { c.Log.Level = "chatty" }},
		{"zero size", func(c *Config) { c.Gfx.Width = 0 }},
		{"unnamed stage", func(c *Config) { c.Stages = []StageConfig{{}} }},
		{"duplicate stage", func(c *Config) { c.Stages = []StageConfig{{Name: "a"}, {Name: "a"}} }},
		{"parent after child", func(c *Config) {
			c.Stages = []StageConfig{{Name: "child", Parent: "root"}, {Name: "root"}}
		}},
		{"too many stages", func(c *Config) { c.Stages = make([]StageConfig, MaxStages+1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			if err := c.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gfx.toml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Gfx.Width != 640 {
		t.Errorf("width = %d", cfg.Gfx.Width)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load of a missing file should fail")
	}
	if _, err := Parse([]byte("[gfx\n")); err == nil {
		t.Error("Parse of malformed TOML should fail")
	}
}
