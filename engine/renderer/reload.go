package renderer

import (
	"sync"

	"github.com/spaghettifunk/anima-gfx/engine/core"
	"github.com/spaghettifunk/anima-gfx/engine/renderer/metadata"
)

// pipelineTracker remembers the shader every live pipeline was made with so
// pipelines can be rebound when the shader is reloaded.
type pipelineTracker struct {
	mu      sync.RWMutex
	shaders map[metadata.Pipeline]metadata.Shader
}

func newPipelineTracker() *pipelineTracker {
	return &pipelineTracker{shaders: make(map[metadata.Pipeline]metadata.Shader)}
}

func (t *pipelineTracker) track(pip metadata.Pipeline, shd metadata.Shader) {
	t.mu.Lock()
	t.shaders[pip] = shd
	t.mu.Unlock()
}

func (t *pipelineTracker) untrack(pip metadata.Pipeline) {
	t.mu.Lock()
	delete(t.shaders, pip)
	t.mu.Unlock()
}

func (t *pipelineTracker) shader(pip metadata.Pipeline) (metadata.Shader, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	shd, ok := t.shaders[pip]
	return shd, ok
}

func (t *pipelineTracker) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.shaders)
}

// ReloadShader points every pipeline made with prev at next and queues prev
// for destruction. It returns the number of pipelines rebound.
// Call it from the main thread outside of command execution.
func (r *Renderer) ReloadShader(prev, next metadata.Shader) int {
	core.Assert(prev.Valid() && next.Valid(), "ReloadShader needs two valid shaders")
	if prev == next {
		return 0
	}

	t := r.pipelines
	t.mu.Lock()
	var rebound []metadata.Pipeline
	for pip, shd := range t.shaders {
		if shd == prev {
			t.shaders[pip] = next
			rebound = append(rebound, pip)
		}
	}
	t.mu.Unlock()

	for _, pip := range rebound {
		r.backend.SetPipelineShader(pip, next)
	}
	r.DestroyShader(prev)
	core.LogDebug("shader %d reloaded as %d, %d pipelines rebound", prev, next, len(rebound))
	return len(rebound)
}
