// Package headless implements renderer.Backend without a GPU. It keeps
// resource slots, buffer contents and a log of every call, which makes it
// useful for tests and for running the engine on machines without a display.
package headless

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/spaghettifunk/anima-gfx/engine/core"
	"github.com/spaghettifunk/anima-gfx/engine/renderer/metadata"
)

type resource struct {
	state     metadata.ResourceState
	usedFrame atomic.Int64
	label     string

	// buffers
	data   []byte
	cursor int
	// images
	content metadata.ImageContent
	// pipelines
	shader metadata.Shader
}

// setContent copies every face and mip of content into res. The top level
// pixels are kept in data as well.
func (res *resource) setContent(content *metadata.ImageContent) {
	for face := range content.Subimage {
		for mip, pix := range content.Subimage[face] {
			res.content.Subimage[face][mip] = append([]byte(nil), pix...)
		}
	}
	res.data = append(res.data[:0], content.Subimage[0][0]...)
}

type Backend struct {
	mu        sync.RWMutex
	pools     [metadata.ResourceKindCount]*core.IdentifierPool
	resources map[metadata.ResourceID]*resource

	callMu sync.Mutex
	calls  []string

	commits   atomic.Int64
	destroyed [metadata.ResourceKindCount]atomic.Int64
}

func New() *Backend {
	b := &Backend{
		resources: make(map[metadata.ResourceID]*resource),
	}
	for i := range b.pools {
		b.pools[i] = core.NewIdentifierPool(64)
	}
	return b
}

func (b *Backend) Kind() metadata.BackendType {
	return metadata.BackendHeadless
}

func (b *Backend) record(format string, args ...interface{}) {
	b.callMu.Lock()
	b.calls = append(b.calls, fmt.Sprintf(format, args...))
	b.callMu.Unlock()
}

// Calls returns a copy of the call log, one entry per backend call made
// through the command interface.
func (b *Backend) Calls() []string {
	b.callMu.Lock()
	defer b.callMu.Unlock()
	return append([]string(nil), b.calls...)
}

// CallNames returns the call log without arguments.
func (b *Backend) CallNames() []string {
	calls := b.Calls()
	for i, c := range calls {
		if j := strings.IndexByte(c, ' '); j >= 0 {
			calls[i] = c[:j]
		}
	}
	return calls
}

func (b *Backend) ResetCalls() {
	b.callMu.Lock()
	b.calls = b.calls[:0]
	b.callMu.Unlock()
}

// Commits returns how many times Commit was called.
func (b *Backend) Commits() int {
	return int(b.commits.Load())
}

// Destroyed returns how many resources of kind were destroyed.
func (b *Backend) Destroyed(kind metadata.ResourceKind) int {
	return int(b.destroyed[kind].Load())
}

// Alive reports whether id names a resource that was not destroyed.
func (b *Backend) Alive(id metadata.ResourceID) bool {
	return b.lookup(id) != nil
}

func (b *Backend) lookup(id metadata.ResourceID) *resource {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.resources[id]
}

func (b *Backend) alloc(kind metadata.ResourceKind) uint32 {
	res := &resource{state: metadata.ResourceStateAlloc}
	id := b.pools[kind].Acquire(res)

	b.mu.Lock()
	b.resources[metadata.ResourceID{Kind: kind, ID: id}] = res
	b.mu.Unlock()
	return id
}

func (b *Backend) init(id metadata.ResourceID, label string, fn func(res *resource)) {
	res := b.lookup(id)
	core.Assert(res != nil, "init of unknown %s %d", id.Kind, id.ID)
	if res == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	core.Assert(res.state == metadata.ResourceStateAlloc, "%s %d initialized twice", id.Kind, id.ID)
	res.label = label
	if fn != nil {
		fn(res)
	}
	res.state = metadata.ResourceStateValid
	core.LogDebug("headless: created %s %d '%s'", id.Kind, id.ID, label)
}

func (b *Backend) destroy(id metadata.ResourceID) {
	b.mu.Lock()
	_, ok := b.resources[id]
	delete(b.resources, id)
	b.mu.Unlock()
	if !ok {
		core.LogWarn("headless: destroying unknown %s %d", id.Kind, id.ID)
		return
	}
	if err := b.pools[id.Kind].Release(id.ID); err != nil {
		core.LogError("headless: %s", err.Error())
	}
	b.destroyed[id.Kind].Add(1)
	b.record("Destroy %s %d", id.Kind, id.ID)
}

func (b *Backend) AllocBuffer() metadata.Buffer {
	return metadata.Buffer(b.alloc(metadata.ResourceBuffer))
}

func (b *Backend) AllocImage() metadata.Image {
	return metadata.Image(b.alloc(metadata.ResourceImage))
}

func (b *Backend) AllocShader() metadata.Shader {
	return metadata.Shader(b.alloc(metadata.ResourceShader))
}

func (b *Backend) AllocPipeline() metadata.Pipeline {
	return metadata.Pipeline(b.alloc(metadata.ResourcePipeline))
}

func (b *Backend) AllocPass() metadata.Pass {
	return metadata.Pass(b.alloc(metadata.ResourcePass))
}

func (b *Backend) InitBuffer(buf metadata.Buffer, desc *metadata.BufferDesc) {
	b.init(buf.Resource(), desc.Label, func(res *resource) {
		size := max(desc.Size, len(desc.Content))
		res.data = make([]byte, size)
		copy(res.data, desc.Content)
	})
}

func (b *Backend) InitImage(img metadata.Image, desc *metadata.ImageDesc) {
	b.init(img.Resource(), desc.Label, func(res *resource) {
		res.setContent(&desc.Content)
	})
}

func (b *Backend) InitShader(shd metadata.Shader, desc *metadata.ShaderDesc) {
	b.init(shd.Resource(), desc.Label, nil)
}

func (b *Backend) InitPipeline(pip metadata.Pipeline, desc *metadata.PipelineDesc) {
	b.init(pip.Resource(), desc.Label, func(res *resource) {
		res.shader = desc.Shader
	})
}

func (b *Backend) InitPass(pass metadata.Pass, desc *metadata.PassDesc) {
	b.init(pass.Resource(), desc.Label, nil)
}

func (b *Backend) MakeBuffer(desc *metadata.BufferDesc) metadata.Buffer {
	buf := b.AllocBuffer()
	b.InitBuffer(buf, desc)
	return buf
}

func (b *Backend) MakeImage(desc *metadata.ImageDesc) metadata.Image {
	img := b.AllocImage()
	b.InitImage(img, desc)
	return img
}

func (b *Backend) MakeShader(desc *metadata.ShaderDesc) metadata.Shader {
	shd := b.AllocShader()
	b.InitShader(shd, desc)
	return shd
}

func (b *Backend) MakePipeline(desc *metadata.PipelineDesc) metadata.Pipeline {
	pip := b.AllocPipeline()
	b.InitPipeline(pip, desc)
	return pip
}

func (b *Backend) MakePass(desc *metadata.PassDesc) metadata.Pass {
	pass := b.AllocPass()
	b.InitPass(pass, desc)
	return pass
}

func (b *Backend) DestroyBuffer(buf metadata.Buffer)     { b.destroy(buf.Resource()) }
func (b *Backend) DestroyImage(img metadata.Image)       { b.destroy(img.Resource()) }
func (b *Backend) DestroyShader(shd metadata.Shader)     { b.destroy(shd.Resource()) }
func (b *Backend) DestroyPipeline(pip metadata.Pipeline) { b.destroy(pip.Resource()) }
func (b *Backend) DestroyPass(pass metadata.Pass)        { b.destroy(pass.Resource()) }

func (b *Backend) ResourceState(id metadata.ResourceID) metadata.ResourceState {
	res := b.lookup(id)
	if res == nil {
		return metadata.ResourceStateInvalid
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return res.state
}

func (b *Backend) UsedFrame(id metadata.ResourceID) int64 {
	res := b.lookup(id)
	if res == nil {
		return 0
	}
	return res.usedFrame.Load()
}

// MarkUsed never moves the used frame backwards.
func (b *Backend) MarkUsed(id metadata.ResourceID, frame int64) {
	res := b.lookup(id)
	if res == nil {
		return
	}
	for {
		cur := res.usedFrame.Load()
		if frame <= cur || res.usedFrame.CompareAndSwap(cur, frame) {
			return
		}
	}
}

// PipelineShader returns the shader pip currently draws with.
func (b *Backend) PipelineShader(pip metadata.Pipeline) metadata.Shader {
	res := b.lookup(pip.Resource())
	if res == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return res.shader
}

func (b *Backend) SetPipelineShader(pip metadata.Pipeline, shd metadata.Shader) {
	res := b.lookup(pip.Resource())
	core.Assert(res != nil, "SetPipelineShader on unknown pipeline %d", pip)
	if res == nil {
		return
	}
	b.mu.Lock()
	res.shader = shd
	b.mu.Unlock()
	b.record("SetPipelineShader %d %d", pip, shd)
}

// BufferData returns a copy of the contents of buf.
func (b *Backend) BufferData(buf metadata.Buffer) []byte {
	res := b.lookup(buf.Resource())
	if res == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]byte(nil), res.data...)
}

func (b *Backend) writeBuffer(buf metadata.Buffer, offset int, data []byte) {
	res := b.lookup(buf.Resource())
	core.Assert(res != nil, "write to unknown buffer %d", buf)
	if res == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	core.Assert(offset+len(data) <= len(res.data), "write of %d bytes at %d overflows buffer %d (size %d)",
		len(data), offset, buf, len(res.data))
	copy(res.data[offset:], data)
}

func (b *Backend) BeginDefaultPass(action *metadata.PassAction, width, height int) {
	b.record("BeginDefaultPass %dx%d", width, height)
}

func (b *Backend) BeginPass(pass metadata.Pass, action *metadata.PassAction) {
	b.record("BeginPass %d", pass)
}

func (b *Backend) ApplyViewport(x, y, width, height int, originTopLeft bool) {
	b.record("ApplyViewport %d %d %d %d", x, y, width, height)
}

func (b *Backend) ApplyScissorRect(x, y, width, height int, originTopLeft bool) {
	b.record("ApplyScissorRect %d %d %d %d", x, y, width, height)
}

func (b *Backend) ApplyPipeline(pip metadata.Pipeline) {
	b.record("ApplyPipeline %d", pip)
}

func (b *Backend) ApplyBindings(bind *metadata.Bindings) {
	b.record("ApplyBindings vb0=%d ib=%d", bind.VertexBuffers[0], bind.IndexBuffer)
}

func (b *Backend) ApplyUniforms(stage metadata.ShaderStage, ubIndex int, data []byte) {
	b.record("ApplyUniforms %s %d %x", stage, ubIndex, data)
}

func (b *Backend) Draw(baseElement, numElements, numInstances int) {
	b.record("Draw %d %d %d", baseElement, numElements, numInstances)
}

func (b *Backend) Dispatch(threadGroupX, threadGroupY, threadGroupZ int) {
	b.record("Dispatch %d %d %d", threadGroupX, threadGroupY, threadGroupZ)
}

func (b *Backend) EndPass() {
	b.record("EndPass")
}

func (b *Backend) UpdateBuffer(buf metadata.Buffer, data []byte) {
	b.writeBuffer(buf, 0, data)
	b.record("UpdateBuffer %d %d", buf, len(data))
}

func (b *Backend) AppendBuffer(buf metadata.Buffer, data []byte) int {
	res := b.lookup(buf.Resource())
	core.Assert(res != nil, "append to unknown buffer %d", buf)
	if res == nil {
		return 0
	}
	b.mu.Lock()
	offset := res.cursor
	res.cursor += len(data)
	b.mu.Unlock()
	b.writeBuffer(buf, offset, data)
	b.record("AppendBuffer %d %d %d", buf, offset, len(data))
	return offset
}

func (b *Backend) MapBuffer(buf metadata.Buffer, offset int, data []byte) {
	b.writeBuffer(buf, offset, data)
	b.record("MapBuffer %d %d %d", buf, offset, len(data))
}

func (b *Backend) UpdateImage(img metadata.Image, content *metadata.ImageContent) {
	res := b.lookup(img.Resource())
	core.Assert(res != nil, "update of unknown image %d", img)
	if res == nil {
		return
	}
	b.mu.Lock()
	res.setContent(content)
	b.mu.Unlock()
	for face := range content.Subimage {
		for mip, pix := range content.Subimage[face] {
			if pix != nil {
				b.record("UpdateImage %d %d %d %d", img, face, mip, len(pix))
			}
		}
	}
}

// ImageData returns a copy of the top level pixels of img.
func (b *Backend) ImageData(img metadata.Image) []byte {
	res := b.lookup(img.Resource())
	if res == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]byte(nil), res.data...)
}

// ImageSubimage returns a copy of the pixels of one face and mip level of img.
func (b *Backend) ImageSubimage(img metadata.Image, face, mip int) []byte {
	res := b.lookup(img.Resource())
	if res == nil || face >= metadata.CubeFaceNum || mip >= metadata.MaxMipmaps {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]byte(nil), res.content.Subimage[face][mip]...)
}

func (b *Backend) PushDebugGroup(name string) {
	b.record("PushDebugGroup %s", name)
}

func (b *Backend) PopDebugGroup() {
	b.record("PopDebugGroup")
}

func (b *Backend) BeginProfileSample(name string) {
	b.record("BeginProfileSample %s", name)
}

func (b *Backend) EndProfileSample() {
	b.record("EndProfileSample")
}

// Commit rewinds every append cursor, like a GPU backend starting a new frame.
func (b *Backend) Commit() {
	b.mu.Lock()
	for _, res := range b.resources {
		res.cursor = 0
	}
	b.mu.Unlock()
	b.commits.Add(1)
	b.record("Commit")
}
