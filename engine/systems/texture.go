package systems

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/anima-gfx/engine/assets"
	"github.com/spaghettifunk/anima-gfx/engine/assets/loaders"
	"github.com/spaghettifunk/anima-gfx/engine/core"
	"github.com/spaghettifunk/anima-gfx/engine/renderer/metadata"
)

const TextureAssetType = "texture"

// Texture is a decoded image uploaded to the GPU.
type Texture struct {
	Name   string
	Handle metadata.Image
	Width  int
	Height int

	pixels *image.RGBA
}

// TextureOptions can be passed to Acquire.
type TextureOptions struct {
	// FlipY stores the rows bottom-up.
	FlipY bool
}

type TextureSystem struct {
	registry *assets.Registry
	renderer *RendererSystem
}

func NewTextureSystem(registry *assets.Registry, rs *RendererSystem) (*TextureSystem, error) {
	ts := &TextureSystem{
		registry: registry,
		renderer: rs,
	}
	err := registry.RegisterType(TextureAssetType, loaders.ImageExtensions, assets.Callbacks{
		Prepare:  ts.prepare,
		Load:     ts.load,
		Finalize: ts.finalize,
		Release:  ts.release,
	})
	if err != nil {
		return nil, err
	}
	return ts, nil
}

// Acquire loads the image at path. On failure the error is logged and the
// checker texture is returned so that the caller can keep rendering.
func (ts *TextureSystem) Acquire(path string, opts *TextureOptions) (metadata.Image, error) {
	var options interface{}
	if opts != nil {
		options = *opts
	}
	a, err := ts.registry.Load(TextureAssetType, path, options)
	if err != nil {
		core.LogWarn("using checker texture for '%s': %s", path, err.Error())
		return ts.renderer.TextureChecker(), err
	}
	return a.Obj.(*Texture).Handle, nil
}

// Get returns the current texture of a loaded image. The returned value
// changes when the image is hot reloaded.
func (ts *TextureSystem) Get(path string) (*Texture, bool) {
	a, ok := ts.registry.Get(path)
	if !ok || a.Type != TextureAssetType {
		return nil, false
	}
	return a.Obj.(*Texture), true
}

func (ts *TextureSystem) Release(path string) error {
	a, ok := ts.registry.Get(path)
	if !ok {
		return fmt.Errorf("%w: %s", assets.ErrNotLoaded, path)
	}
	return ts.registry.Unload(a)
}

func (ts *TextureSystem) White() metadata.Image   { return ts.renderer.TextureWhite() }
func (ts *TextureSystem) Black() metadata.Image   { return ts.renderer.TextureBlack() }
func (ts *TextureSystem) Checker() metadata.Image { return ts.renderer.TextureChecker() }

func (ts *TextureSystem) prepare(params assets.LoadParams) (interface{}, error) {
	name := strings.TrimSuffix(filepath.Base(params.Path), filepath.Ext(params.Path))
	return &Texture{Name: name}, nil
}

func (ts *TextureSystem) load(obj interface{}, data []byte, params assets.LoadParams) error {
	tex := obj.(*Texture)

	opts, _ := params.Options.(TextureOptions)
	img, format, err := loaders.DecodeImage(data, opts.FlipY)
	if err != nil {
		return err
	}
	tex.pixels = img
	tex.Width = img.Bounds().Dx()
	tex.Height = img.Bounds().Dy()
	core.LogDebug("texture '%s' decoded (%s %dx%d)", tex.Name, format, tex.Width, tex.Height)
	return nil
}

func (ts *TextureSystem) finalize(obj interface{}, _ assets.LoadParams) error {
	tex := obj.(*Texture)
	desc := &metadata.ImageDesc{
		Type:        metadata.ImageType2D,
		Width:       tex.Width,
		Height:      tex.Height,
		NumMipmaps:  1,
		PixelFormat: metadata.PixelFormatRGBA8,
		Label:       tex.Name,
	}
	desc.Content.Subimage[0][0] = tex.pixels.Pix
	tex.Handle = ts.renderer.MakeImage(desc)
	tex.pixels = nil
	return nil
}

func (ts *TextureSystem) release(obj interface{}) {
	tex := obj.(*Texture)
	if tex.Handle.Valid() {
		ts.renderer.DestroyImage(tex.Handle)
		tex.Handle = 0
	}
}
