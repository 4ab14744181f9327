package systems

import (
	"errors"

	"github.com/spaghettifunk/anima-gfx/engine/assets"
	"github.com/spaghettifunk/anima-gfx/engine/config"
	"github.com/spaghettifunk/anima-gfx/engine/core"
	"github.com/spaghettifunk/anima-gfx/engine/renderer"
)

type SystemManager struct {
	JobSystem      *JobSystem
	RendererSystem *RendererSystem
	ShaderSystem   *ShaderSystem
	TextureSystem  *TextureSystem

	Assets *assets.Registry
}

// NewSystemManager starts the job system, the renderer on top of backend and
// the asset systems. When hot reload is enabled the asset directory is
// watched for changes.
func NewSystemManager(cfg *config.Config, backend renderer.Backend, frames renderer.FrameSource) (*SystemManager, error) {
	js, err := NewJobSystem(cfg.Jobs.NumThreads, cfg.Jobs.QueueSize)
	if err != nil {
		return nil, err
	}
	rs, err := NewRendererSystem(cfg, backend, js, frames)
	if err != nil {
		_ = js.Shutdown()
		return nil, err
	}

	registry := assets.NewRegistry()
	ss, err := NewShaderSystem(registry, rs)
	if err != nil {
		return nil, errors.Join(err, rs.Shutdown(), js.Shutdown())
	}
	ts, err := NewTextureSystem(registry, rs)
	if err != nil {
		return nil, errors.Join(err, rs.Shutdown(), js.Shutdown())
	}

	if cfg.Assets.HotReload && cfg.Assets.Dir != "" {
		if err := registry.Watch(cfg.Assets.Dir); err != nil {
			core.LogWarn("hot reload disabled: %s", err.Error())
		}
	}

	return &SystemManager{
		JobSystem:      js,
		RendererSystem: rs,
		ShaderSystem:   ss,
		TextureSystem:  ts,
		Assets:         registry,
	}, nil
}

// Update applies pending asset reloads. Call it from the main thread before
// recording starts.
func (sm *SystemManager) Update() {
	if n := sm.Assets.Update(); n > 0 {
		core.LogDebug("%d assets reloaded", n)
	}
	sm.RendererSystem.BeginFrame()
}

// DrawFrame replays and submits the recorded frame.
func (sm *SystemManager) DrawFrame() int {
	return sm.RendererSystem.EndFrame()
}

func (sm *SystemManager) Shutdown() error {
	if err := sm.JobSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.Assets.Close(); err != nil {
		core.LogError(err.Error())
	}
	if err := sm.RendererSystem.Shutdown(); err != nil {
		return err
	}
	return nil
}
