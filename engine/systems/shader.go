package systems

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/anima-gfx/engine/assets"
	"github.com/spaghettifunk/anima-gfx/engine/assets/loaders"
	"github.com/spaghettifunk/anima-gfx/engine/core"
	"github.com/spaghettifunk/anima-gfx/engine/renderer/metadata"
)

const ShaderAssetType = "shader"

// Shader is a loaded shader program.
type Shader struct {
	Name   string
	Handle metadata.Shader
	Desc   metadata.ShaderDesc
}

type ShaderSystem struct {
	registry *assets.Registry
	renderer *RendererSystem
}

func NewShaderSystem(registry *assets.Registry, rs *RendererSystem) (*ShaderSystem, error) {
	ss := &ShaderSystem{
		registry: registry,
		renderer: rs,
	}
	err := registry.RegisterType(ShaderAssetType, []string{".shader"}, assets.Callbacks{
		Prepare:  ss.prepare,
		Load:     ss.load,
		Finalize: ss.finalize,
		Reload:   ss.reload,
		Release:  ss.release,
	})
	if err != nil {
		return nil, err
	}
	return ss, nil
}

// Acquire loads the shader manifest at path, or returns it if already loaded.
func (ss *ShaderSystem) Acquire(path string) (*Shader, error) {
	a, err := ss.registry.Load(ShaderAssetType, path, nil)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return a.Obj.(*Shader), nil
}

// Get returns the current program of a loaded shader. The returned value
// changes when the shader is hot reloaded.
func (ss *ShaderSystem) Get(path string) (*Shader, bool) {
	a, ok := ss.registry.Get(path)
	if !ok || a.Type != ShaderAssetType {
		return nil, false
	}
	return a.Obj.(*Shader), true
}

func (ss *ShaderSystem) Release(path string) error {
	a, ok := ss.registry.Get(path)
	if !ok {
		return fmt.Errorf("%w: %s", assets.ErrNotLoaded, path)
	}
	return ss.registry.Unload(a)
}

func (ss *ShaderSystem) prepare(params assets.LoadParams) (interface{}, error) {
	name := strings.TrimSuffix(filepath.Base(params.Path), filepath.Ext(params.Path))
	return &Shader{Name: name}, nil
}

func (ss *ShaderSystem) load(obj interface{}, data []byte, params assets.LoadParams) error {
	shd := obj.(*Shader)
	desc, err := loaders.LoadShader(data, filepath.Dir(params.Path))
	if err != nil {
		return fmt.Errorf("shader '%s': %w", shd.Name, err)
	}
	shd.Desc = *desc
	if shd.Desc.Label == "" {
		shd.Desc.Label = shd.Name
	}
	return nil
}

func (ss *ShaderSystem) finalize(obj interface{}, _ assets.LoadParams) error {
	shd := obj.(*Shader)
	shd.Handle = ss.renderer.MakeShader(&shd.Desc)
	if state := ss.renderer.QueryShaderState(shd.Handle); state != metadata.ResourceStateValid {
		ss.renderer.DestroyShader(shd.Handle)
		shd.Handle = 0
		return fmt.Errorf("shader '%s' could not be created: %s", shd.Name, state)
	}
	return nil
}

// reload rebinds the pipelines of the previous program to the new one. The
// previous program is queued for destruction by the renderer.
func (ss *ShaderSystem) reload(a *assets.Asset, prev interface{}) {
	old := prev.(*Shader)
	shd := a.Obj.(*Shader)
	n := ss.renderer.ReloadShader(old.Handle, shd.Handle)
	old.Handle = 0
	core.LogInfo("shader '%s' reloaded, %d pipelines rebound", shd.Name, n)
}

func (ss *ShaderSystem) release(obj interface{}) {
	shd := obj.(*Shader)
	if shd.Handle.Valid() {
		ss.renderer.DestroyShader(shd.Handle)
		shd.Handle = 0
	}
}
