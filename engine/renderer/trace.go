package renderer

import (
	"sync"

	"github.com/spaghettifunk/anima-gfx/engine/core"
	"github.com/spaghettifunk/anima-gfx/engine/renderer/metadata"
)

type imageTrace struct {
	size         int64
	renderTarget bool
}

// tracer keeps resource counts, memory totals and per-frame call counters.
type tracer struct {
	mu      sync.Mutex
	info    metadata.TraceInfo
	buffers map[metadata.Buffer]int64
	images  map[metadata.Image]imageTrace
	// handles counted in info, so that destroying a handle that was only
	// allocated leaves the counts alone
	counted map[metadata.ResourceID]struct{}
}

func newTracer() *tracer {
	return &tracer{
		buffers: make(map[metadata.Buffer]int64),
		images:  make(map[metadata.Image]imageTrace),
		counted: make(map[metadata.ResourceID]struct{}),
	}
}

func (t *tracer) makeBuffer(buf metadata.Buffer, desc *metadata.BufferDesc) {
	if !buf.Valid() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.info.NumBuffers++
	t.info.BufferSize += int64(desc.Size)
	t.info.BufferPeak = max(t.info.BufferPeak, t.info.BufferSize)
	t.buffers[buf] = int64(desc.Size)
}

func (t *tracer) destroyBuffer(buf metadata.Buffer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	size, ok := t.buffers[buf]
	if !ok {
		return
	}
	delete(t.buffers, buf)
	t.info.NumBuffers--
	t.info.BufferSize -= size
}

func (t *tracer) makeImage(img metadata.Image, desc *metadata.ImageDesc) {
	if !img.Valid() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	it := imageTrace{size: desc.ByteSize(), renderTarget: desc.RenderTarget}
	t.images[img] = it
	t.info.NumImages++
	if it.renderTarget {
		t.info.RenderTargetSize += it.size
		t.info.RenderTargetPeak = max(t.info.RenderTargetPeak, t.info.RenderTargetSize)
	} else {
		t.info.TextureSize += it.size
		t.info.TexturePeak = max(t.info.TexturePeak, t.info.TextureSize)
	}
}

func (t *tracer) destroyImage(img metadata.Image) {
	t.mu.Lock()
	defer t.mu.Unlock()
	it, ok := t.images[img]
	if !ok {
		return
	}
	delete(t.images, img)
	t.info.NumImages--
	if it.renderTarget {
		t.info.RenderTargetSize -= it.size
	} else {
		t.info.TextureSize -= it.size
	}
}

// count adds id to the counted set and bumps *n unless id is already there.
func (t *tracer) count(id metadata.ResourceID, n *int) {
	if _, ok := t.counted[id]; ok {
		return
	}
	t.counted[id] = struct{}{}
	*n++
}

// uncount removes id from the counted set and decrements *n if it was there.
func (t *tracer) uncount(id metadata.ResourceID, n *int) {
	if _, ok := t.counted[id]; !ok {
		return
	}
	delete(t.counted, id)
	*n--
}

func (t *tracer) makeShader(shd metadata.Shader) {
	if !shd.Valid() {
		return
	}
	t.mu.Lock()
	t.count(shd.Resource(), &t.info.NumShaders)
	t.mu.Unlock()
}

func (t *tracer) destroyShader(shd metadata.Shader) {
	t.mu.Lock()
	t.uncount(shd.Resource(), &t.info.NumShaders)
	t.mu.Unlock()
}

func (t *tracer) makePipeline(pip metadata.Pipeline) {
	if !pip.Valid() {
		return
	}
	t.mu.Lock()
	t.count(pip.Resource(), &t.info.NumPipelines)
	t.mu.Unlock()
}

func (t *tracer) destroyPipeline(pip metadata.Pipeline) {
	t.mu.Lock()
	t.uncount(pip.Resource(), &t.info.NumPipelines)
	t.mu.Unlock()
}

func (t *tracer) makePass(pass metadata.Pass) {
	if !pass.Valid() {
		return
	}
	t.mu.Lock()
	t.count(pass.Resource(), &t.info.NumPasses)
	t.mu.Unlock()
}

func (t *tracer) destroyPass(pass metadata.Pass) {
	t.mu.Lock()
	t.uncount(pass.Resource(), &t.info.NumPasses)
	t.mu.Unlock()
}

func (t *tracer) frame(fn func(f *metadata.PerFrameTraceInfo)) {
	t.mu.Lock()
	fn(&t.info.Frame[t.info.ActiveZone])
	t.mu.Unlock()
}

func (t *tracer) draw(numElements, numInstances int) {
	t.frame(func(f *metadata.PerFrameTraceInfo) {
		f.NumDraws++
		f.NumInstances += int64(numInstances)
		f.NumElements += int64(numElements)
	})
}

func (t *tracer) applyPipeline() {
	t.frame(func(f *metadata.PerFrameTraceInfo) { f.NumApplyPipelines++ })
}

func (t *tracer) beginPass() {
	t.frame(func(f *metadata.PerFrameTraceInfo) { f.NumApplyPasses++ })
}

func (t *tracer) resetFrame(zone metadata.TraceZone) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.info.Frame[zone] = metadata.PerFrameTraceInfo{}
	t.info.ActiveZone = zone
}

func (t *tracer) snapshot() metadata.TraceInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.info
}

// TraceInfo returns a copy of the current statistics.
func (r *Renderer) TraceInfo() metadata.TraceInfo {
	return r.trace.snapshot()
}

// ResetFrameStats zeros the per-frame counters of zone and makes it the
// zone subsequent calls are counted in.
func (r *Renderer) ResetFrameStats(zone metadata.TraceZone) {
	core.Assert(zone >= 0 && zone < metadata.TraceZoneCount, "invalid trace zone %d", zone)
	r.trace.resetFrame(zone)
}
