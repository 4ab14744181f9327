package metadata

type BufferType int

const (
	BufferTypeVertex BufferType = iota
	BufferTypeIndex
	BufferTypeStorage
)

/**
 * @brief Describes a buffer to be created.
 * Content is uploaded on creation and is required for immutable buffers.
 */
type BufferDesc struct {
	Size    int
	Type    BufferType
	Usage   Usage
	Content []byte
	Label   string
}
