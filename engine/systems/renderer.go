package systems

import (
	"fmt"

	"github.com/spaghettifunk/anima-gfx/engine/config"
	"github.com/spaghettifunk/anima-gfx/engine/core"
	"github.com/spaghettifunk/anima-gfx/engine/renderer"
	"github.com/spaghettifunk/anima-gfx/engine/renderer/metadata"
)

// RendererSystem owns the renderer and drives it once per frame from the
// main thread.
type RendererSystem struct {
	*renderer.Renderer

	// Stages declared in the configuration, by name.
	stages map[string]metadata.Stage

	// Frames end with Present and Commit when set.
	pipelined bool

	// The current framebuffer size.
	FramebufferWidth  int
	FramebufferHeight int
}

func NewRendererSystem(cfg *config.Config, backend renderer.Backend, jobs renderer.Jobs, frames renderer.FrameSource) (*RendererSystem, error) {
	core.SetAssertions(cfg.Gfx.Debug)

	r, err := renderer.New(backend, jobs, frames)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	rs := &RendererSystem{
		Renderer:          r,
		pipelined:         cfg.Gfx.Pipelined,
		FramebufferWidth:  cfg.Gfx.Width,
		FramebufferHeight: cfg.Gfx.Height,
	}
	rs.stages = r.RegisterStages(cfg.Stages)
	return rs, nil
}

// Stage returns the configured stage with the given name.
func (rs *RendererSystem) Stage(name string) (metadata.Stage, error) {
	s, ok := rs.stages[name]
	if !ok {
		return 0, fmt.Errorf("stage '%s' is not declared in the configuration", name)
	}
	return s, nil
}

// BeginFrame resets the per-frame statistics before recording starts.
func (rs *RendererSystem) BeginFrame() {
	rs.ResetFrameStats(metadata.TraceZoneCommon)
}

// EndFrame replays everything recorded this frame, submits it and collects
// the resources that are no longer in flight. It returns the number of
// commands executed.
func (rs *RendererSystem) EndFrame() int {
	var n int
	if rs.pipelined {
		n = rs.presentFrame()
	} else {
		n = rs.FrameEnd()
		rs.SubmitFrame()
	}
	if destroyed := rs.Update(); destroyed > 0 {
		core.LogDebug("%d resources destroyed", destroyed)
	}
	return n
}

// presentFrame hands the recorded feed set to the render side and commits
// it. The feed set is free for recording again once Present returns.
func (rs *RendererSystem) presentFrame() int {
	rs.Present(0)
	n := rs.Commit(0)
	rs.ResetFrame()
	return n
}

// OnResize records the new framebuffer size for the default pass.
func (rs *RendererSystem) OnResize(width, height int) {
	rs.FramebufferWidth = width
	rs.FramebufferHeight = height
}

func (rs *RendererSystem) Shutdown() error {
	return rs.Renderer.Shutdown()
}
