package renderer

import (
	"github.com/spaghettifunk/anima-gfx/engine/core"
	"github.com/spaghettifunk/anima-gfx/engine/renderer/metadata"
)

// Staged records commands into the feed buffer of a worker slot. Every
// call takes the slot of the calling worker. A slot must only be used by
// one goroutine at a time.
type Staged struct {
	r *Renderer
}

func (s *Staged) feedBuffer(slot int) *commandBuffer {
	core.Assert(slot >= 0 && slot < len(s.r.feed), "invalid worker slot %d (have %d)", slot, len(s.r.feed))
	return s.r.feed[slot]
}

// recording returns the feed buffer of slot, which must be inside a stage.
func (s *Staged) recording(slot int) *commandBuffer {
	cb := s.feedBuffer(slot)
	core.Assert(cb.runningStage.Valid(), "slot %d must call BeginStage before recording commands", slot)
	return cb
}

// BeginStage starts recording stage on slot. It returns false, recording
// nothing, when the stage is disabled.
func (s *Staged) BeginStage(slot int, stage metadata.Stage) bool {
	cb := s.feedBuffer(slot)
	core.Assert(!cb.runningStage.Valid(), "slot %d must call EndStage before beginning another stage", slot)

	name, order, ok := s.r.stages.begin(stage)
	if !ok {
		return false
	}
	cb.runningStage = stage
	cb.stageOrder = order

	push := cb.params.writeString(name)
	cb.push(&stagePushCmd{name: push}, push.offset)
	prof := cb.params.writeString("Stage: " + name)
	cb.push(&beginProfileCmd{name: prof}, prof.offset)
	return true
}

func (s *Staged) EndStage(slot int) {
	cb := s.recording(slot)
	cb.push(endProfileCmd{}, cb.params.len())
	s.r.stages.end(cb.runningStage)
	cb.push(stagePopCmd{}, cb.params.len())
	cb.runningStage = 0
}

func (s *Staged) BeginDefaultPass(slot int, action *metadata.PassAction, width, height int) {
	cb := s.recording(slot)
	cb.push(&beginDefaultPassCmd{action: *action, width: width, height: height}, cb.params.len())
}

func (s *Staged) BeginPass(slot int, pass metadata.Pass, action *metadata.PassAction) {
	cb := s.recording(slot)
	cb.push(&beginPassCmd{pass: pass, action: *action}, cb.params.len())
	s.r.markUsed(pass.Resource())
}

func (s *Staged) ApplyViewport(slot int, x, y, width, height int, originTopLeft bool) {
	cb := s.recording(slot)
	cb.push(&applyViewportCmd{x: x, y: y, width: width, height: height, originTopLeft: originTopLeft}, cb.params.len())
}

func (s *Staged) ApplyScissorRect(slot int, x, y, width, height int, originTopLeft bool) {
	cb := s.recording(slot)
	cb.push(&applyScissorRectCmd{x: x, y: y, width: width, height: height, originTopLeft: originTopLeft}, cb.params.len())
}

func (s *Staged) ApplyPipeline(slot int, pip metadata.Pipeline) {
	cb := s.recording(slot)
	cb.push(&applyPipelineCmd{pip: pip}, cb.params.len())
	s.r.markUsed(pip.Resource())
	if shd, ok := s.r.pipelines.shader(pip); ok {
		s.r.markUsed(shd.Resource())
	}
}

func (s *Staged) ApplyBindings(slot int, bind *metadata.Bindings) {
	cb := s.recording(slot)
	cb.push(&applyBindingsCmd{bind: *bind}, cb.params.len())
	bind.EachBuffer(func(buf metadata.Buffer) { s.r.markUsed(buf.Resource()) })
	bind.EachImage(func(img metadata.Image) { s.r.markUsed(img.Resource()) })
}

func (s *Staged) ApplyUniforms(slot int, stage metadata.ShaderStage, ubIndex int, data []byte) {
	cb := s.recording(slot)
	d := cb.params.write(data)
	cb.push(&applyUniformsCmd{stage: stage, ubIndex: ubIndex, data: d}, d.offset)
}

func (s *Staged) Draw(slot int, baseElement, numElements, numInstances int) {
	cb := s.recording(slot)
	cb.push(&drawCmd{baseElement: baseElement, numElements: numElements, numInstances: numInstances}, cb.params.len())
}

func (s *Staged) Dispatch(slot int, threadGroupX, threadGroupY, threadGroupZ int) {
	cb := s.recording(slot)
	cb.push(&dispatchCmd{x: threadGroupX, y: threadGroupY, z: threadGroupZ}, cb.params.len())
}

func (s *Staged) EndPass(slot int) {
	cb := s.recording(slot)
	cb.push(endPassCmd{}, cb.params.len())
}

// UpdateBuffer copies data, it may be reused as soon as the call returns.
func (s *Staged) UpdateBuffer(slot int, buf metadata.Buffer, data []byte) {
	cb := s.recording(slot)
	d := cb.params.write(data)
	cb.push(&updateBufferCmd{buf: buf, data: d}, d.offset)
	s.r.markUsed(buf.Resource())
}

// AppendBuffer reserves len(data) bytes in a stream buffer and returns the
// offset the data will be written at when the command executes. Workers
// appending to the same buffer get disjoint ranges.
func (s *Staged) AppendBuffer(slot int, buf metadata.Buffer, data []byte) int {
	cb := s.recording(slot)
	entry := s.r.streams.find(buf)
	core.Assert(entry != nil, "buffer %d must be created with stream usage to be appended to", buf)
	if entry == nil {
		return 0
	}

	size := int64(len(data))
	end := entry.offset.Add(size)
	offset := end - size
	core.Assert(end <= entry.size, "appending %d bytes at offset %d overflows stream buffer %d (size %d)",
		size, offset, buf, entry.size)

	d := cb.params.write(data)
	cb.push(&appendBufferCmd{buf: buf, offset: int(offset), data: d}, d.offset)
	s.r.markUsed(buf.Resource())
	return int(offset)
}

// UpdateImage copies every non-empty sub-image of content.
func (s *Staged) UpdateImage(slot int, img metadata.Image, content *metadata.ImageContent) {
	cb := s.recording(slot)
	params := cb.params.len()
	var subs []subimageSpan
	for face := range content.Subimage {
		for mip, data := range content.Subimage[face] {
			if len(data) == 0 {
				continue
			}
			subs = append(subs, subimageSpan{face: face, mip: mip, data: cb.params.write(data)})
		}
	}
	cb.push(&updateImageCmd{img: img, subimages: subs}, params)
	s.r.markUsed(img.Resource())
}

func (s *Staged) BeginProfileSample(slot int, name string) {
	cb := s.recording(slot)
	n := cb.params.writeString(name)
	cb.push(&beginProfileCmd{name: n}, n.offset)
}

func (s *Staged) EndProfileSample(slot int) {
	cb := s.recording(slot)
	cb.push(endProfileCmd{}, cb.params.len())
}
