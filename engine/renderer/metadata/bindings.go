package metadata

/** @brief Resources bound for the next draw or dispatch. */
type Bindings struct {
	VertexBuffers       [MaxShaderStageBuffers]Buffer
	VertexBufferOffsets [MaxShaderStageBuffers]int
	IndexBuffer         Buffer
	IndexBufferOffset   int

	VSImages [MaxShaderStageImages]Image
	FSImages [MaxShaderStageImages]Image
	CSImages [MaxShaderStageImages]Image

	VSBuffers    [MaxShaderStageBuffers]Buffer
	FSBuffers    [MaxShaderStageBuffers]Buffer
	CSBuffers    [MaxShaderStageBuffers]Buffer
	CSBufferUAVs [MaxShaderStageBuffers]Buffer
	CSImageUAVs  [MaxShaderStageImages]Image
}

// EachBuffer calls fn for every valid buffer in b.
func (b *Bindings) EachBuffer(fn func(Buffer)) {
	visit := func(bufs []Buffer) {
		for _, buf := range bufs {
			if buf.Valid() {
				fn(buf)
			}
		}
	}
	visit(b.VertexBuffers[:])
	if b.IndexBuffer.Valid() {
		fn(b.IndexBuffer)
	}
	visit(b.VSBuffers[:])
	visit(b.FSBuffers[:])
	visit(b.CSBuffers[:])
	visit(b.CSBufferUAVs[:])
}

// EachImage calls fn for every valid image in b.
func (b *Bindings) EachImage(fn func(Image)) {
	visit := func(imgs []Image) {
		for _, img := range imgs {
			if img.Valid() {
				fn(img)
			}
		}
	}
	visit(b.VSImages[:])
	visit(b.FSImages[:])
	visit(b.CSImages[:])
	visit(b.CSImageUAVs[:])
}
