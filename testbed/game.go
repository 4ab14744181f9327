package testbed

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/anima-gfx/engine"
	"github.com/spaghettifunk/anima-gfx/engine/config"
	"github.com/spaghettifunk/anima-gfx/engine/core"
	"github.com/spaghettifunk/anima-gfx/engine/renderer/metadata"
)

const (
	quadsPerStage  = 16
	vertexStride   = 4 * 4
	streamCapacity = 1 << 16
)

// DefaultStages is used when the configuration declares no stage tree.
var DefaultStages = []config.StageConfig{
	{Name: "shadow"},
	{Name: "opaque", Parent: "shadow"},
	{Name: "transparent", Parent: "shadow"},
	{Name: "ui"},
}

type TestGame struct {
	*engine.Game
}

type gameState struct {
	elapsed float64
	width   int
	height  int

	stages  []metadata.Stage
	names   []string
	shader  metadata.Shader
	pip     metadata.Pipeline
	target  metadata.Image
	depth   metadata.Image
	pass    metadata.Pass
	stream  metadata.Buffer
	texture metadata.Image
}

func NewTestGame(cfg *config.Config) *TestGame {
	if len(cfg.Stages) == 0 {
		cfg.Stages = DefaultStages
	}
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: &engine.ApplicationConfig{
				Name:      "Testbed",
				Config:    cfg,
				TargetFPS: 60,
			},
			State: &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")

	if g.SystemManager == nil {
		return fmt.Errorf("the engine is not yet initialized with all the system managers")
	}
	state := g.State.(*gameState)
	rs := g.SystemManager.RendererSystem
	cfg := g.ApplicationConfig.Config

	for _, sc := range cfg.Stages {
		s, err := rs.Stage(sc.Name)
		if err != nil {
			return err
		}
		state.stages = append(state.stages, s)
		state.names = append(state.names, sc.Name)
	}

	shd, err := g.loadShader(cfg.Assets.Dir)
	if err != nil {
		return err
	}
	state.shader = shd

	state.texture, err = g.SystemManager.TextureSystem.Acquire(filepath.Join(cfg.Assets.Dir, "textures", "testbed.png"), nil)
	if err != nil {
		core.LogWarn("testbed texture missing, using checker")
	}

	state.stream = rs.MakeBuffer(&metadata.BufferDesc{
		Size:  streamCapacity,
		Type:  metadata.BufferTypeVertex,
		Usage: metadata.UsageStream,
		Label: "testbed_quads",
	})

	var layout metadata.VertexLayoutDesc
	layout.Strides[0] = vertexStride
	layout.Attrs[0] = metadata.VertexAttrDesc{Format: metadata.VertexFormatFloat2}
	layout.Attrs[1] = metadata.VertexAttrDesc{Format: metadata.VertexFormatFloat2, Offset: 8}
	state.pip = rs.MakePipeline(&metadata.PipelineDesc{
		Shader:        state.shader,
		Layout:        layout,
		PrimitiveType: metadata.PrimitiveTriangles,
		ColorFormat:   metadata.PixelFormatRGBA8,
		DepthFormat:   metadata.PixelFormatDepth,
		DepthWrite:    true,
		Label:         "testbed_quads",
	})

	state.width = cfg.Gfx.Width
	state.height = cfg.Gfx.Height
	return g.makeTarget(state.width, state.height)
}

// loadShader loads the testbed shader from the asset directory, or builds an
// inline one when the directory does not have it.
func (g *TestGame) loadShader(dir string) (metadata.Shader, error) {
	path := filepath.Join(dir, "shaders", "testbed.shader")
	if _, err := os.Stat(path); err == nil {
		shd, err := g.SystemManager.ShaderSystem.Acquire(path)
		if err != nil {
			return 0, err
		}
		return shd.Handle, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return 0, err
	}

	desc := &metadata.ShaderDesc{Label: "testbed_inline"}
	desc.VS.Source = []byte("void main() {}")
	desc.VS.Entry = "main"
	desc.VS.UniformBlocks[0] = 16
	desc.FS.Source = []byte("void main() {}")
	desc.FS.Entry = "main"
	return g.SystemManager.RendererSystem.MakeShader(desc), nil
}

func (g *TestGame) makeTarget(width, height int) error {
	state := g.State.(*gameState)
	rs := g.SystemManager.RendererSystem

	if state.pass.Valid() {
		rs.DestroyPass(state.pass)
		rs.DestroyImage(state.target)
		rs.DestroyImage(state.depth)
	}
	state.target = rs.MakeImage(&metadata.ImageDesc{
		Type:         metadata.ImageType2D,
		RenderTarget: true,
		Width:        width,
		Height:       height,
		NumMipmaps:   1,
		PixelFormat:  metadata.PixelFormatRGBA8,
		Label:        "testbed_color",
	})
	state.depth = rs.MakeImage(&metadata.ImageDesc{
		Type:         metadata.ImageType2D,
		RenderTarget: true,
		Width:        width,
		Height:       height,
		NumMipmaps:   1,
		PixelFormat:  metadata.PixelFormatDepth,
		Label:        "testbed_depth",
	})
	desc := &metadata.PassDesc{Label: "testbed"}
	desc.ColorAttachments[0].Image = state.target
	desc.DepthStencilAttachment.Image = state.depth
	state.pass = rs.MakePass(desc)
	if state.pass == 0 {
		return fmt.Errorf("unable to create testbed pass")
	}
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	state.elapsed += deltaTime
	return nil
}

// Render records every stage from its own job slot.
func (g *TestGame) Render(_ float64) error {
	state := g.State.(*gameState)
	js := g.SystemManager.JobSystem

	return js.Dispatch(context.Background(), len(state.stages), func(_ context.Context, slot, index int) error {
		g.recordStage(slot, index)
		return nil
	})
}

func (g *TestGame) recordStage(slot, index int) {
	state := g.State.(*gameState)
	staged := g.SystemManager.RendererSystem.Staged

	if !staged.BeginStage(slot, state.stages[index]) {
		return
	}
	defer staged.EndStage(slot)

	var action metadata.PassAction
	if index == 0 {
		action.Colors[0] = metadata.ColorAttachmentAction{Action: metadata.ActionClear, Value: [4]float32{0, 0, 0.2, 1}}
		action.Depth = metadata.DepthAttachmentAction{Action: metadata.ActionClear, Value: 1}
	} else {
		action.Colors[0].Action = metadata.ActionLoad
		action.Depth.Action = metadata.ActionLoad
	}
	if state.names[index] == "ui" {
		staged.BeginDefaultPass(slot, &action, state.width, state.height)
	} else {
		staged.BeginPass(slot, state.pass, &action)
	}
	staged.ApplyViewport(slot, 0, 0, state.width, state.height, true)
	staged.ApplyPipeline(slot, state.pip)

	vertices := quadVertices(index, state.elapsed)
	offset := staged.AppendBuffer(slot, state.stream, vertices)

	var bind metadata.Bindings
	bind.VertexBuffers[0] = state.stream
	bind.VertexBufferOffsets[0] = offset
	bind.FSImages[0] = state.texture
	staged.ApplyBindings(slot, &bind)

	var uniforms [16]byte
	binary.LittleEndian.PutUint32(uniforms[0:], math.Float32bits(float32(state.elapsed)))
	binary.LittleEndian.PutUint32(uniforms[4:], uint32(index))
	staged.ApplyUniforms(slot, metadata.ShaderStageVS, 0, uniforms[:])

	staged.Draw(slot, 0, quadsPerStage*6, 1)
	staged.EndPass(slot)
}

// quadVertices lays out quadsPerStage quads on a circle as two triangles
// each, with position and uv per vertex.
func quadVertices(row int, t float64) []byte {
	const size = 0.05
	corners := [6][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 0}, {1, 1}, {0, 1}}

	buf := make([]byte, 0, quadsPerStage*len(corners)*vertexStride)
	for q := 0; q < quadsPerStage; q++ {
		angle := t + float64(q)*2*math.Pi/quadsPerStage
		cx := float32(math.Cos(angle)) * 0.8
		cy := float32(math.Sin(angle))*0.8 - float32(row)*0.1
		for _, c := range corners {
			for _, v := range [4]float32{cx + c[0]*size, cy + c[1]*size, c[0], c[1]} {
				buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
			}
		}
	}
	return buf
}

func (g *TestGame) OnResize(width, height int) error {
	state := g.State.(*gameState)
	if width == state.width && height == state.height {
		return nil
	}
	state.width = width
	state.height = height
	if !state.pass.Valid() {
		return nil
	}
	return g.makeTarget(width, height)
}

func (g *TestGame) Shutdown() error {
	state := g.State.(*gameState)
	rs := g.SystemManager.RendererSystem

	rs.DestroyPipeline(state.pip)
	rs.DestroyPass(state.pass)
	rs.DestroyImage(state.target)
	rs.DestroyImage(state.depth)
	rs.DestroyBuffer(state.stream)
	if _, loaded := g.SystemManager.ShaderSystem.Get(filepath.Join(g.ApplicationConfig.Config.Assets.Dir, "shaders", "testbed.shader")); !loaded {
		rs.DestroyShader(state.shader)
	}
	return nil
}
