package metadata

type PrimitiveType int

const (
	PrimitiveTriangles PrimitiveType = iota
	PrimitiveTriangleStrip
	PrimitiveLines
	PrimitiveLineStrip
	PrimitivePoints
)

type IndexType int

const (
	IndexTypeNone IndexType = iota
	IndexTypeUint16
	IndexTypeUint32
)

type VertexFormat int

const (
	VertexFormatFloat VertexFormat = iota
	VertexFormatFloat2
	VertexFormatFloat3
	VertexFormatFloat4
	VertexFormatUbyte4N
)

type VertexAttrDesc struct {
	Format      VertexFormat
	Offset      int
	BufferIndex int
}

type VertexLayoutDesc struct {
	Strides [MaxShaderStageBuffers]int
	Attrs   [MaxVertexAttributes]VertexAttrDesc
}

/** @brief Describes the fixed-function state bound together with a shader. */
type PipelineDesc struct {
	Shader        Shader
	Layout        VertexLayoutDesc
	PrimitiveType PrimitiveType
	IndexType     IndexType
	ColorFormat   PixelFormat
	DepthFormat   PixelFormat
	DepthWrite    bool
	Label         string
}
