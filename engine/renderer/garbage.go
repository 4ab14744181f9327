package renderer

import (
	"slices"
	"sync"

	"github.com/spaghettifunk/anima-gfx/engine/core"
	"github.com/spaghettifunk/anima-gfx/engine/renderer/metadata"
)

// shutdownFrameMargin is added to the frame index when collecting at
// shutdown so every pending resource qualifies.
const shutdownFrameMargin = 100

// destroyQueue holds resources released by the application until the GPU
// can no longer be using them.
type destroyQueue struct {
	mu        sync.Mutex
	buffers   []metadata.Buffer
	images    []metadata.Image
	shaders   []metadata.Shader
	pipelines []metadata.Pipeline
	passes    []metadata.Pass
}

func queueDestroy[T comparable](q *destroyQueue, list *[]T, h T, kind metadata.ResourceKind) {
	q.mu.Lock()
	defer q.mu.Unlock()
	core.Assert(!slices.Contains(*list, h), "%s %v is already queued for destruction", kind, h)
	*list = append(*list, h)
}

// collectQueue destroys and removes every entry of list not used in the
// previous frame.
func collectQueue[T any](q *destroyQueue, list *[]T, frame int64, id func(T) metadata.ResourceID, used func(metadata.ResourceID) int64, destroy func(T)) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := (*list)[:0]
	destroyed := 0
	for _, h := range *list {
		if frame > used(id(h))+1 {
			destroy(h)
			destroyed++
		} else {
			kept = append(kept, h)
		}
	}
	clear((*list)[len(kept):])
	*list = kept
	return destroyed
}

func (q *destroyQueue) pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buffers) + len(q.images) + len(q.shaders) + len(q.pipelines) + len(q.passes)
}

func (r *Renderer) DestroyBuffer(buf metadata.Buffer) {
	r.backend.MarkUsed(buf.Resource(), r.frames.FrameIndex())
	queueDestroy(r.garbage, &r.garbage.buffers, buf, metadata.ResourceBuffer)
}

func (r *Renderer) DestroyImage(img metadata.Image) {
	r.backend.MarkUsed(img.Resource(), r.frames.FrameIndex())
	queueDestroy(r.garbage, &r.garbage.images, img, metadata.ResourceImage)
}

func (r *Renderer) DestroyShader(shd metadata.Shader) {
	r.backend.MarkUsed(shd.Resource(), r.frames.FrameIndex())
	queueDestroy(r.garbage, &r.garbage.shaders, shd, metadata.ResourceShader)
}

func (r *Renderer) DestroyPipeline(pip metadata.Pipeline) {
	r.backend.MarkUsed(pip.Resource(), r.frames.FrameIndex())
	queueDestroy(r.garbage, &r.garbage.pipelines, pip, metadata.ResourcePipeline)
}

func (r *Renderer) DestroyPass(pass metadata.Pass) {
	r.backend.MarkUsed(pass.Resource(), r.frames.FrameIndex())
	queueDestroy(r.garbage, &r.garbage.passes, pass, metadata.ResourcePass)
}

// collectGarbage physically destroys every queued resource whose last use
// is more than one frame behind frame. It returns the number destroyed.
// Pipelines go before the shaders they reference.
func (r *Renderer) collectGarbage(frame int64) int {
	q := r.garbage
	used := r.backend.UsedFrame
	n := collectQueue(q, &q.buffers, frame, metadata.Buffer.Resource, used, func(buf metadata.Buffer) {
		r.streams.remove(buf)
		r.trace.destroyBuffer(buf)
		r.backend.DestroyBuffer(buf)
	})
	n += collectQueue(q, &q.pipelines, frame, metadata.Pipeline.Resource, used, func(pip metadata.Pipeline) {
		r.pipelines.untrack(pip)
		r.trace.destroyPipeline(pip)
		r.backend.DestroyPipeline(pip)
	})
	n += collectQueue(q, &q.shaders, frame, metadata.Shader.Resource, used, func(shd metadata.Shader) {
		r.trace.destroyShader(shd)
		r.backend.DestroyShader(shd)
	})
	n += collectQueue(q, &q.passes, frame, metadata.Pass.Resource, used, func(pass metadata.Pass) {
		r.trace.destroyPass(pass)
		r.backend.DestroyPass(pass)
	})
	n += collectQueue(q, &q.images, frame, metadata.Image.Resource, used, func(img metadata.Image) {
		r.trace.destroyImage(img)
		r.backend.DestroyImage(img)
	})
	return n
}

// Update collects deferred destructions for the current frame.
func (r *Renderer) Update() int {
	return r.collectGarbage(r.frames.FrameIndex())
}

// PendingDestroys returns how many resources wait for destruction.
func (r *Renderer) PendingDestroys() int {
	return r.garbage.pending()
}
