// Package renderer records GPU commands from several workers into per-slot
// command buffers and replays them, sorted by stage, into a Backend.
package renderer

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/anima-gfx/engine/core"
	"github.com/spaghettifunk/anima-gfx/engine/renderer/metadata"
)

var (
	ErrNoBackend     = errors.New("renderer needs a backend")
	ErrNoJobs        = errors.New("renderer needs a job system")
	ErrNoFrameSource = errors.New("renderer needs a frame source")
	ErrNoThreads     = errors.New("renderer needs at least one recording slot")
)

type Renderer struct {
	backend Backend
	frames  FrameSource

	stages *stageGraph

	// feed is recorded into this frame, render is executed by Commit.
	feed   []*commandBuffer
	render []*commandBuffer
	// reused across executions
	sorted []commandRef

	streams   *streamTracker
	garbage   *destroyQueue
	pipelines *pipelineTracker
	trace     *tracer
	textures  builtinTextures

	immediateStage metadata.Stage

	Staged    *Staged
	Immediate *Immediate
}

// New creates a renderer with one feed and one render command buffer per
// job slot, and creates the built-in textures.
func New(backend Backend, jobs Jobs, frames FrameSource) (*Renderer, error) {
	if backend == nil {
		return nil, ErrNoBackend
	}
	if jobs == nil {
		return nil, ErrNoJobs
	}
	if frames == nil {
		return nil, ErrNoFrameSource
	}
	numThreads := jobs.ThreadCount()
	if numThreads < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrNoThreads, numThreads)
	}

	r := &Renderer{
		backend:   backend,
		frames:    frames,
		stages:    newStageGraph(),
		feed:      make([]*commandBuffer, numThreads),
		render:    make([]*commandBuffer, numThreads),
		streams:   &streamTracker{},
		garbage:   &destroyQueue{},
		pipelines: newPipelineTracker(),
		trace:     newTracer(),
	}
	for i := 0; i < numThreads; i++ {
		r.feed[i] = newCommandBuffer(i)
		r.render[i] = newCommandBuffer(i)
	}
	r.Staged = &Staged{r: r}
	r.Immediate = &Immediate{r: r}

	r.initTextures()

	core.LogInfo("renderer initialized: backend=%s slots=%d", backend.Kind(), numThreads)
	return r, nil
}

// Shutdown executes every pending command, releases the built-in textures
// and destroys everything still queued for destruction.
func (r *Renderer) Shutdown() error {
	r.FrameEnd()
	r.releaseTextures()
	n := r.collectGarbage(r.frames.FrameIndex() + shutdownFrameMargin)
	core.LogDebug("renderer shutdown: %d resources destroyed", n)
	return nil
}

func (r *Renderer) Backend() Backend {
	return r.backend
}

// ThreadCount returns the number of recording slots.
func (r *Renderer) ThreadCount() int {
	return len(r.feed)
}

func (r *Renderer) markUsed(id metadata.ResourceID) {
	r.backend.MarkUsed(id, r.frames.FrameIndex())
}

func (r *Renderer) MakeBuffer(desc *metadata.BufferDesc) metadata.Buffer {
	buf := r.backend.MakeBuffer(desc)
	r.trackBuffer(buf, desc)
	return buf
}

func (r *Renderer) MakeImage(desc *metadata.ImageDesc) metadata.Image {
	img := r.backend.MakeImage(desc)
	r.trace.makeImage(img, desc)
	return img
}

func (r *Renderer) MakeShader(desc *metadata.ShaderDesc) metadata.Shader {
	shd := r.backend.MakeShader(desc)
	r.trace.makeShader(shd)
	return shd
}

func (r *Renderer) MakePipeline(desc *metadata.PipelineDesc) metadata.Pipeline {
	pip := r.backend.MakePipeline(desc)
	r.trackPipeline(pip, desc)
	return pip
}

func (r *Renderer) MakePass(desc *metadata.PassDesc) metadata.Pass {
	pass := r.backend.MakePass(desc)
	r.trace.makePass(pass)
	return pass
}

func (r *Renderer) AllocBuffer() metadata.Buffer     { return r.backend.AllocBuffer() }
func (r *Renderer) AllocImage() metadata.Image       { return r.backend.AllocImage() }
func (r *Renderer) AllocShader() metadata.Shader     { return r.backend.AllocShader() }
func (r *Renderer) AllocPipeline() metadata.Pipeline { return r.backend.AllocPipeline() }
func (r *Renderer) AllocPass() metadata.Pass         { return r.backend.AllocPass() }

// InitBuffer completes a buffer created with AllocBuffer.
func (r *Renderer) InitBuffer(buf metadata.Buffer, desc *metadata.BufferDesc) {
	r.backend.InitBuffer(buf, desc)
	r.trackBuffer(buf, desc)
}

func (r *Renderer) InitImage(img metadata.Image, desc *metadata.ImageDesc) {
	r.backend.InitImage(img, desc)
	r.trace.makeImage(img, desc)
}

func (r *Renderer) InitShader(shd metadata.Shader, desc *metadata.ShaderDesc) {
	r.backend.InitShader(shd, desc)
	r.trace.makeShader(shd)
}

func (r *Renderer) InitPipeline(pip metadata.Pipeline, desc *metadata.PipelineDesc) {
	r.backend.InitPipeline(pip, desc)
	r.trackPipeline(pip, desc)
}

func (r *Renderer) InitPass(pass metadata.Pass, desc *metadata.PassDesc) {
	r.backend.InitPass(pass, desc)
	r.trace.makePass(pass)
}

func (r *Renderer) trackBuffer(buf metadata.Buffer, desc *metadata.BufferDesc) {
	if !buf.Valid() {
		return
	}
	if desc.Usage == metadata.UsageStream {
		r.streams.add(buf, desc.Size)
	}
	r.trace.makeBuffer(buf, desc)
}

func (r *Renderer) trackPipeline(pip metadata.Pipeline, desc *metadata.PipelineDesc) {
	if !pip.Valid() {
		return
	}
	r.pipelines.track(pip, desc.Shader)
	r.trace.makePipeline(pip)
}

func (r *Renderer) QueryBufferState(buf metadata.Buffer) metadata.ResourceState {
	return r.backend.ResourceState(buf.Resource())
}

func (r *Renderer) QueryImageState(img metadata.Image) metadata.ResourceState {
	return r.backend.ResourceState(img.Resource())
}

func (r *Renderer) QueryShaderState(shd metadata.Shader) metadata.ResourceState {
	return r.backend.ResourceState(shd.Resource())
}

func (r *Renderer) QueryPipelineState(pip metadata.Pipeline) metadata.ResourceState {
	return r.backend.ResourceState(pip.Resource())
}

func (r *Renderer) QueryPassState(pass metadata.Pass) metadata.ResourceState {
	return r.backend.ResourceState(pass.Resource())
}
