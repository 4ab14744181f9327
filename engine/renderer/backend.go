package renderer

import "github.com/spaghettifunk/anima-gfx/engine/renderer/metadata"

// Backend is the immediate-mode GPU API the recorded commands are replayed
// into. Calls are made from the main thread only, except MarkUsed and
// UsedFrame which are also called from recording workers.
type Backend interface {
	Kind() metadata.BackendType

	MakeBuffer(desc *metadata.BufferDesc) metadata.Buffer
	MakeImage(desc *metadata.ImageDesc) metadata.Image
	MakeShader(desc *metadata.ShaderDesc) metadata.Shader
	MakePipeline(desc *metadata.PipelineDesc) metadata.Pipeline
	MakePass(desc *metadata.PassDesc) metadata.Pass

	AllocBuffer() metadata.Buffer
	AllocImage() metadata.Image
	AllocShader() metadata.Shader
	AllocPipeline() metadata.Pipeline
	AllocPass() metadata.Pass

	InitBuffer(buf metadata.Buffer, desc *metadata.BufferDesc)
	InitImage(img metadata.Image, desc *metadata.ImageDesc)
	InitShader(shd metadata.Shader, desc *metadata.ShaderDesc)
	InitPipeline(pip metadata.Pipeline, desc *metadata.PipelineDesc)
	InitPass(pass metadata.Pass, desc *metadata.PassDesc)

	DestroyBuffer(buf metadata.Buffer)
	DestroyImage(img metadata.Image)
	DestroyShader(shd metadata.Shader)
	DestroyPipeline(pip metadata.Pipeline)
	DestroyPass(pass metadata.Pass)

	ResourceState(id metadata.ResourceID) metadata.ResourceState

	BeginDefaultPass(action *metadata.PassAction, width, height int)
	BeginPass(pass metadata.Pass, action *metadata.PassAction)
	ApplyViewport(x, y, width, height int, originTopLeft bool)
	ApplyScissorRect(x, y, width, height int, originTopLeft bool)
	ApplyPipeline(pip metadata.Pipeline)
	ApplyBindings(bind *metadata.Bindings)
	ApplyUniforms(stage metadata.ShaderStage, ubIndex int, data []byte)
	Draw(baseElement, numElements, numInstances int)
	Dispatch(threadGroupX, threadGroupY, threadGroupZ int)
	EndPass()

	UpdateBuffer(buf metadata.Buffer, data []byte)
	// AppendBuffer writes data at the buffer's own append cursor and
	// returns the offset it was written at.
	AppendBuffer(buf metadata.Buffer, data []byte) int
	// MapBuffer writes data at a caller chosen offset.
	MapBuffer(buf metadata.Buffer, offset int, data []byte)
	UpdateImage(img metadata.Image, content *metadata.ImageContent)

	PushDebugGroup(name string)
	PopDebugGroup()
	BeginProfileSample(name string)
	EndProfileSample()

	// UsedFrame returns the last frame the resource was referenced in.
	UsedFrame(id metadata.ResourceID) int64
	MarkUsed(id metadata.ResourceID, frame int64)

	// SetPipelineShader swaps the shader of a live pipeline.
	SetPipelineShader(pip metadata.Pipeline, shd metadata.Shader)

	// Commit submits everything replayed since the previous Commit.
	Commit()
}

// Jobs reports how many worker slots may record at the same time.
// Slot 0 is the thread that executes.
type Jobs interface {
	ThreadCount() int
}

// FrameSource provides the index of the frame being recorded.
type FrameSource interface {
	FrameIndex() int64
}
