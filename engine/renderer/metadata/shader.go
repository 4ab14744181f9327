package metadata

/** @brief Code and reflection data of a single shader stage. */
type ShaderStageDesc struct {
	Source   []byte
	Bytecode []byte
	Entry    string
	/** @brief Size in bytes of each uniform block. 0 means unused. */
	UniformBlocks [MaxShaderStageUniformBlocks]int
}

/** @brief Describes a shader program. Compute programs only fill CS. */
type ShaderDesc struct {
	VS    ShaderStageDesc
	FS    ShaderStageDesc
	CS    ShaderStageDesc
	Label string
}
