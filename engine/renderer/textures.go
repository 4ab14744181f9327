package renderer

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/spaghettifunk/anima-gfx/engine/renderer/metadata"
)

var (
	checkerColorA = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	checkerColorB = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

type builtinTextures struct {
	white   metadata.Image
	black   metadata.Image
	checker metadata.Image
}

func (r *Renderer) makeRGBAImage(img *image.RGBA, label string) metadata.Image {
	b := img.Bounds()
	desc := &metadata.ImageDesc{
		Type:        metadata.ImageType2D,
		Width:       b.Dx(),
		Height:      b.Dy(),
		NumMipmaps:  1,
		PixelFormat: metadata.PixelFormatRGBA8,
		Label:       label,
	}
	desc.Content.Subimage[0][0] = img.Pix
	return r.MakeImage(desc)
}

func solidImage(size int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

// checkerImage returns a size x size image of cells x cells alternating tiles.
func checkerImage(size, cells int) *image.RGBA {
	src := image.NewRGBA(image.Rect(0, 0, cells, cells))
	for y := 0; y < cells; y++ {
		for x := 0; x < cells; x++ {
			if (x+y)%2 == 0 {
				src.SetRGBA(x, y, checkerColorA)
			} else {
				src.SetRGBA(x, y, checkerColorB)
			}
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func (r *Renderer) initTextures() {
	r.textures.white = r.makeRGBAImage(solidImage(1, color.White), "white")
	r.textures.black = r.makeRGBAImage(solidImage(1, color.Black), "black")
	r.textures.checker = r.makeRGBAImage(checkerImage(metadata.CheckerTextureSize, 2), "checker")
}

func (r *Renderer) releaseTextures() {
	for _, img := range []metadata.Image{r.textures.white, r.textures.black, r.textures.checker} {
		if img.Valid() {
			r.DestroyImage(img)
		}
	}
	r.textures = builtinTextures{}
}

// TextureWhite returns a 1x1 opaque white image.
func (r *Renderer) TextureWhite() metadata.Image { return r.textures.white }

// TextureBlack returns a 1x1 opaque black image.
func (r *Renderer) TextureBlack() metadata.Image { return r.textures.black }

// TextureChecker returns a magenta and white checker board, used in place of
// textures that failed to load.
func (r *Renderer) TextureChecker() metadata.Image { return r.textures.checker }
