package metadata

const (
	/** @brief The maximum number of color attachments of a pass. */
	MaxColorAttachments = 4
	/** @brief The maximum number of buffers bound per shader stage. */
	MaxShaderStageBuffers = 8
	/** @brief The maximum number of images bound per shader stage. */
	MaxShaderStageImages = 12
	/** @brief The maximum number of uniform blocks per shader stage. */
	MaxShaderStageUniformBlocks = 4
	/** @brief The maximum number of vertex attributes in a layout. */
	MaxVertexAttributes = 16
	/** @brief The maximum number of mip levels of an image. */
	MaxMipmaps = 16
	/** @brief The number of faces of a cube image. */
	CubeFaceNum = 6
	/** @brief Width and height of the built-in checker texture. */
	CheckerTextureSize = 128
)

/** @brief Identifies the backend implementation. */
type BackendType int

const (
	BackendHeadless BackendType = iota
	BackendVulkan
	BackendGL
	BackendMetal
	BackendD3D11
)

func (b BackendType) String() string {
	switch b {
	case BackendHeadless:
		return "headless"
	case BackendVulkan:
		return "vulkan"
	case BackendGL:
		return "gl"
	case BackendMetal:
		return "metal"
	case BackendD3D11:
		return "d3d11"
	}
	return "unknown"
}

type Usage int

const (
	UsageImmutable Usage = iota
	UsageDynamic
	/** @brief Rewritten every frame, appended to with AppendBuffer. */
	UsageStream
)

type ShaderStage int

const (
	ShaderStageVS ShaderStage = iota
	ShaderStageFS
	ShaderStageCS
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVS:
		return "vs"
	case ShaderStageFS:
		return "fs"
	case ShaderStageCS:
		return "cs"
	}
	return "unknown"
}
