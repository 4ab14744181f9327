package metadata

/** @brief A GPU buffer handle. 0 is the invalid handle. */
type Buffer uint32

/** @brief A GPU image handle. 0 is the invalid handle. */
type Image uint32

/** @brief A shader program handle. 0 is the invalid handle. */
type Shader uint32

/** @brief A pipeline state handle. 0 is the invalid handle. */
type Pipeline uint32

/** @brief A render pass handle. 0 is the invalid handle. */
type Pass uint32

/**
 * @brief A stage handle. Ids start at 1, 0 means "no stage"
 * and InvalidStage is returned by lookups that find nothing.
 */
type Stage uint32

const InvalidStage Stage = ^Stage(0)

func (b Buffer) Valid() bool   { return b != 0 }
func (i Image) Valid() bool    { return i != 0 }
func (s Shader) Valid() bool   { return s != 0 }
func (p Pipeline) Valid() bool { return p != 0 }
func (p Pass) Valid() bool     { return p != 0 }

// Valid reports whether s names a registered stage slot.
func (s Stage) Valid() bool { return s != 0 && s != InvalidStage }

/** @brief Kinds of backend resources. */
type ResourceKind int

const (
	ResourceBuffer ResourceKind = iota
	ResourceImage
	ResourceShader
	ResourcePipeline
	ResourcePass
	ResourceKindCount
)

var resourceKindNames = [ResourceKindCount]string{"buffer", "image", "shader", "pipeline", "pass"}

func (k ResourceKind) String() string {
	if k < 0 || k >= ResourceKindCount {
		return "unknown"
	}
	return resourceKindNames[k]
}

/** @brief Identifies any backend resource regardless of its kind. */
type ResourceID struct {
	Kind ResourceKind
	ID   uint32
}

func (b Buffer) Resource() ResourceID   { return ResourceID{Kind: ResourceBuffer, ID: uint32(b)} }
func (i Image) Resource() ResourceID    { return ResourceID{Kind: ResourceImage, ID: uint32(i)} }
func (s Shader) Resource() ResourceID   { return ResourceID{Kind: ResourceShader, ID: uint32(s)} }
func (p Pipeline) Resource() ResourceID { return ResourceID{Kind: ResourcePipeline, ID: uint32(p)} }
func (p Pass) Resource() ResourceID     { return ResourceID{Kind: ResourcePass, ID: uint32(p)} }

/** @brief Lifecycle of a backend resource slot. */
type ResourceState int

const (
	ResourceStateInitial ResourceState = iota
	ResourceStateAlloc
	ResourceStateValid
	ResourceStateFailed
	ResourceStateInvalid
)

var resourceStateNames = [...]string{
	ResourceStateInitial: "initial",
	ResourceStateAlloc:   "alloc",
	ResourceStateValid:   "valid",
	ResourceStateFailed:  "failed",
	ResourceStateInvalid: "invalid",
}

func (s ResourceState) String() string {
	if s < 0 || int(s) >= len(resourceStateNames) {
		return "unknown"
	}
	return resourceStateNames[s]
}
