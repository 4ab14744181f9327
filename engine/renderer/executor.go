package renderer

import (
	"cmp"
	"slices"

	"github.com/spaghettifunk/anima-gfx/engine/core"
	"github.com/spaghettifunk/anima-gfx/engine/renderer/metadata"
)

// Present swaps the feed and render sets. What was recorded so far becomes
// the input of the next Commit. Must be called from slot 0 while no worker
// is recording.
func (r *Renderer) Present(slot int) {
	core.Assert(slot == 0, "Present must be called from slot 0, got %d", slot)
	r.feed, r.render = r.render, r.feed
}

// Commit validates stage dependencies and replays the render set. The
// backend is committed only if at least one command ran.
func (r *Renderer) Commit(slot int) int {
	core.Assert(slot == 0, "Commit must be called from slot 0, got %d", slot)
	r.stages.validate()
	n := r.executeCommandBuffers(r.render)
	if n > 0 {
		r.backend.Commit()
	}
	return n
}

// FrameEnd replays whatever is left in both sets, render first, then
// rewinds stage states and stream cursors for the next frame.
func (r *Renderer) FrameEnd() int {
	r.stages.validate()
	n := r.executeCommandBuffers(r.render)
	n += r.executeCommandBuffers(r.feed)
	r.ResetFrame()
	return n
}

// ResetFrame rewinds stage states and stream cursors so the next frame can
// be recorded. FrameEnd does this itself; callers driving frames with
// Present and Commit call it after Commit.
func (r *Renderer) ResetFrame() {
	r.stages.resetStates()
	r.streams.resetOffsets()
}

// SubmitFrame commits the backend.
func (r *Renderer) SubmitFrame() {
	r.backend.Commit()
}

// PendingCommands returns the number of recorded commands waiting in the
// feed and render sets.
func (r *Renderer) PendingCommands() (feed, render int) {
	for _, cb := range r.feed {
		feed += cb.pending()
	}
	for _, cb := range r.render {
		render += cb.pending()
	}
	return feed, render
}

func (r *Renderer) executeCommandBuffers(set []*commandBuffer) int {
	count := 0
	for _, cb := range set {
		core.Assert(!cb.runningStage.Valid(), "slot %d is still recording stage %d, call EndStage first", cb.index, cb.runningStage)
		count += cb.pending()
	}
	if count == 0 {
		return 0
	}

	refs := r.sorted[:0]
	for _, cb := range set {
		refs = append(refs, cb.refs...)
	}
	slices.SortStableFunc(refs, func(a, b commandRef) int {
		return cmp.Compare(a.key, b.key)
	})

	for i := range refs {
		r.dispatch(set[refs[i].buffer], &refs[i])
	}

	for _, cb := range set {
		cb.reset()
	}
	clear(refs)
	r.sorted = refs[:0]
	return count
}

func (r *Renderer) checkParams(ref *commandRef, s span) {
	core.Assert(s.offset == ref.params, "%s payload at %d, recorded at %d", ref.cmd.Type(), s.offset, ref.params)
}

func (r *Renderer) dispatch(cb *commandBuffer, ref *commandRef) {
	params := &cb.params
	switch c := ref.cmd.(type) {
	case *beginDefaultPassCmd:
		r.trace.beginPass()
		r.backend.BeginDefaultPass(&c.action, c.width, c.height)
	case *beginPassCmd:
		r.trace.beginPass()
		r.backend.BeginPass(c.pass, &c.action)
	case *applyViewportCmd:
		r.backend.ApplyViewport(c.x, c.y, c.width, c.height, c.originTopLeft)
	case *applyScissorRectCmd:
		r.backend.ApplyScissorRect(c.x, c.y, c.width, c.height, c.originTopLeft)
	case *applyPipelineCmd:
		r.trace.applyPipeline()
		r.backend.ApplyPipeline(c.pip)
	case *applyBindingsCmd:
		r.backend.ApplyBindings(&c.bind)
	case *applyUniformsCmd:
		r.checkParams(ref, c.data)
		r.backend.ApplyUniforms(c.stage, c.ubIndex, params.bytes(c.data))
	case *drawCmd:
		r.trace.draw(c.numElements, c.numInstances)
		r.backend.Draw(c.baseElement, c.numElements, c.numInstances)
	case *dispatchCmd:
		r.backend.Dispatch(c.x, c.y, c.z)
	case endPassCmd:
		r.backend.EndPass()
	case *updateBufferCmd:
		r.checkParams(ref, c.data)
		r.backend.UpdateBuffer(c.buf, params.bytes(c.data))
	case *updateImageCmd:
		var content metadata.ImageContent
		for _, sub := range c.subimages {
			content.Subimage[sub.face][sub.mip] = params.bytes(sub.data)
		}
		r.backend.UpdateImage(c.img, &content)
	case *appendBufferCmd:
		r.checkParams(ref, c.data)
		core.Assert(r.streams.find(c.buf) != nil, "stream buffer %d was destroyed before its appends were executed", c.buf)
		r.backend.MapBuffer(c.buf, c.offset, params.bytes(c.data))
	case *beginProfileCmd:
		r.checkParams(ref, c.name)
		r.backend.BeginProfileSample(params.string(c.name))
	case endProfileCmd:
		r.backend.EndProfileSample()
	case *stagePushCmd:
		r.checkParams(ref, c.name)
		r.backend.PushDebugGroup(params.string(c.name))
	case stagePopCmd:
		r.backend.PopDebugGroup()
	default:
		core.Assert(false, "unknown command %T", ref.cmd)
	}
}
