package metadata

type ImageType int

const (
	ImageType2D ImageType = iota
	ImageTypeCube
	ImageType3D
	ImageTypeArray
)

type PixelFormat int

const (
	PixelFormatNone PixelFormat = iota
	PixelFormatR8
	PixelFormatRG8
	PixelFormatRGBA8
	PixelFormatBGRA8
	PixelFormatR32F
	PixelFormatRGBA16F
	PixelFormatRGBA32F
	PixelFormatDepth
	PixelFormatDepthStencil
)

// ByteSize returns the size of one pixel in bytes.
func (f PixelFormat) ByteSize() int {
	switch f {
	case PixelFormatR8:
		return 1
	case PixelFormatRG8:
		return 2
	case PixelFormatRGBA8, PixelFormatBGRA8, PixelFormatR32F, PixelFormatDepth, PixelFormatDepthStencil:
		return 4
	case PixelFormatRGBA16F:
		return 8
	case PixelFormatRGBA32F:
		return 16
	}
	return 0
}

func (f PixelFormat) IsDepth() bool {
	return f == PixelFormatDepth || f == PixelFormatDepthStencil
}

/**
 * @brief Pixel data of an image, indexed by cube face (or 0) and mip level.
 * Empty entries are skipped.
 */
type ImageContent struct {
	Subimage [CubeFaceNum][MaxMipmaps][]byte
}

/** @brief Describes an image to be created. */
type ImageDesc struct {
	Type         ImageType
	RenderTarget bool
	Width        int
	Height       int
	/** @brief Depth of 3D images or number of layers of array images. 0 means 1. */
	Layers      int
	NumMipmaps  int
	Usage       Usage
	PixelFormat PixelFormat
	SampleCount int
	Content     ImageContent
	Label       string
}

// ByteSize is the memory footprint of the top mip level of every layer.
func (d *ImageDesc) ByteSize() int64 {
	layers := d.Layers
	if layers <= 0 {
		layers = 1
	}
	if d.Type == ImageTypeCube {
		layers = CubeFaceNum
	}
	return int64(d.Width) * int64(d.Height) * int64(layers) * int64(d.PixelFormat.ByteSize())
}
