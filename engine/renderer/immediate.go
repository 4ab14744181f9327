package renderer

import (
	"github.com/spaghettifunk/anima-gfx/engine/core"
	"github.com/spaghettifunk/anima-gfx/engine/renderer/metadata"
)

// Immediate forwards every call straight to the backend. It must only be
// used from the main thread.
type Immediate struct {
	r *Renderer
}

func (im *Immediate) BeginStage(stage metadata.Stage) bool {
	r := im.r
	core.Assert(!r.immediateStage.Valid(), "EndStage must be called before beginning another stage")
	name, _, ok := r.stages.begin(stage)
	if !ok {
		return false
	}
	r.immediateStage = stage
	r.backend.PushDebugGroup(name)
	r.backend.BeginProfileSample("Stage: " + name)
	return true
}

func (im *Immediate) EndStage() {
	r := im.r
	core.Assert(r.immediateStage.Valid(), "EndStage called without a running stage")
	r.backend.EndProfileSample()
	r.stages.end(r.immediateStage)
	r.backend.PopDebugGroup()
	r.immediateStage = 0
}

func (im *Immediate) BeginDefaultPass(action *metadata.PassAction, width, height int) {
	im.r.trace.beginPass()
	im.r.backend.BeginDefaultPass(action, width, height)
}

func (im *Immediate) BeginPass(pass metadata.Pass, action *metadata.PassAction) {
	im.r.markUsed(pass.Resource())
	im.r.trace.beginPass()
	im.r.backend.BeginPass(pass, action)
}

func (im *Immediate) ApplyViewport(x, y, width, height int, originTopLeft bool) {
	im.r.backend.ApplyViewport(x, y, width, height, originTopLeft)
}

func (im *Immediate) ApplyScissorRect(x, y, width, height int, originTopLeft bool) {
	im.r.backend.ApplyScissorRect(x, y, width, height, originTopLeft)
}

func (im *Immediate) ApplyPipeline(pip metadata.Pipeline) {
	im.r.markUsed(pip.Resource())
	if shd, ok := im.r.pipelines.shader(pip); ok {
		im.r.markUsed(shd.Resource())
	}
	im.r.trace.applyPipeline()
	im.r.backend.ApplyPipeline(pip)
}

func (im *Immediate) ApplyBindings(bind *metadata.Bindings) {
	bind.EachBuffer(func(buf metadata.Buffer) { im.r.markUsed(buf.Resource()) })
	bind.EachImage(func(img metadata.Image) { im.r.markUsed(img.Resource()) })
	im.r.backend.ApplyBindings(bind)
}

func (im *Immediate) ApplyUniforms(stage metadata.ShaderStage, ubIndex int, data []byte) {
	im.r.backend.ApplyUniforms(stage, ubIndex, data)
}

func (im *Immediate) Draw(baseElement, numElements, numInstances int) {
	im.r.trace.draw(numElements, numInstances)
	im.r.backend.Draw(baseElement, numElements, numInstances)
}

func (im *Immediate) Dispatch(threadGroupX, threadGroupY, threadGroupZ int) {
	im.r.backend.Dispatch(threadGroupX, threadGroupY, threadGroupZ)
}

func (im *Immediate) EndPass() {
	im.r.backend.EndPass()
}

func (im *Immediate) UpdateBuffer(buf metadata.Buffer, data []byte) {
	im.r.markUsed(buf.Resource())
	im.r.backend.UpdateBuffer(buf, data)
}

// AppendBuffer appends at the backend's own cursor and returns the offset.
func (im *Immediate) AppendBuffer(buf metadata.Buffer, data []byte) int {
	im.r.markUsed(buf.Resource())
	return im.r.backend.AppendBuffer(buf, data)
}

func (im *Immediate) UpdateImage(img metadata.Image, content *metadata.ImageContent) {
	im.r.markUsed(img.Resource())
	im.r.backend.UpdateImage(img, content)
}

func (im *Immediate) BeginProfileSample(name string) {
	im.r.backend.BeginProfileSample(name)
}

func (im *Immediate) EndProfileSample() {
	im.r.backend.EndProfileSample()
}
