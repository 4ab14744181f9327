package systems

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/anima-gfx/engine/config"
	"github.com/spaghettifunk/anima-gfx/engine/core"
	"github.com/spaghettifunk/anima-gfx/engine/renderer/headless"
	"github.com/spaghettifunk/anima-gfx/engine/renderer/metadata"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Jobs.NumThreads = 2
	cfg.Assets.Dir = t.TempDir()
	cfg.Assets.HotReload = false
	cfg.Stages = []config.StageConfig{
		{Name: "scene"},
		{Name: "opaque", Parent: "scene"},
		{Name: "debug", Disabled: true},
	}
	return cfg
}

func newTestManager(t *testing.T, cfg *config.Config) (*SystemManager, *headless.Backend, *core.FrameClock) {
	t.Helper()
	be := headless.New()
	frames := core.NewFrameClock()
	sm, err := NewSystemManager(cfg, be, frames)
	if err != nil {
		t.Fatal(err)
	}
	return sm, be, frames
}

func writeShader(t *testing.T, dir, vs string) string {
	t.Helper()
	files := map[string]string{
		"basic.shader": "label = \"basic\"\n[vs]\nfile = \"basic.vert\"\nuniform_blocks = [16]\n[fs]\nfile = \"basic.frag\"\n",
		"basic.vert":   vs,
		"basic.frag":   "fragment",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return filepath.Join(dir, "basic.shader")
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSystemManagerStagesFromConfig(t *testing.T) {
	sm, _, _ := newTestManager(t, testConfig(t))
	defer sm.Shutdown()

	rs := sm.RendererSystem
	scene, err := rs.Stage("scene")
	if err != nil {
		t.Fatal(err)
	}
	opaque, _ := rs.Stage("opaque")
	debug, _ := rs.Stage("debug")
	if rs.StageParent(opaque) != scene {
		t.Error("opaque is not a child of scene")
	}
	if rs.StageEnabled(debug) {
		t.Error("debug stage should start disabled")
	}
	if _, err := rs.Stage("missing"); err == nil {
		t.Error("Stage of an undeclared name should fail")
	}
	if rs.ThreadCount() != 2 {
		t.Errorf("renderer slots = %d, want 2", rs.ThreadCount())
	}
	if !core.AssertionsEnabled() {
		t.Error("gfx.debug should enable assertions")
	}
}

func TestFrameLoop(t *testing.T) {
	for _, pipelined := range []bool{false, true} {
		t.Run(fmt.Sprintf("pipelined=%v", pipelined), func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Gfx.Pipelined = pipelined
			sm, be, frames := newTestManager(t, cfg)
			defer sm.Shutdown()

			rs := sm.RendererSystem
			scene, _ := rs.Stage("scene")
			opaque, _ := rs.Stage("opaque")
			stages := []metadata.Stage{scene, opaque}
			stream := rs.MakeBuffer(&metadata.BufferDesc{Size: 64, Usage: metadata.UsageStream})

			for frame := 0; frame < 3; frame++ {
				sm.Update()
				err := sm.JobSystem.Dispatch(context.Background(), len(stages), func(_ context.Context, slot, index int) error {
					if rs.Staged.BeginStage(slot, stages[index]) {
						if index == 0 {
							if off := rs.Staged.AppendBuffer(slot, stream, make([]byte, 48)); off != 0 {
								return fmt.Errorf("frame %d appended at offset %d", frame, off)
							}
						}
						rs.Staged.Draw(slot, index, 3, 1)
						rs.Staged.EndStage(slot)
					}
					return nil
				})
				if err != nil {
					t.Fatal(err)
				}
				if n := sm.DrawFrame(); n == 0 {
					t.Errorf("frame %d executed no commands", frame)
				}
				if got := rs.TraceInfo().Frame[metadata.TraceZoneCommon].NumDraws; got != 2 {
					t.Errorf("frame %d draws = %d, want 2", frame, got)
				}
				if feed, render := rs.PendingCommands(); feed != 0 || render != 0 {
					t.Errorf("frame %d left commands behind: feed=%d render=%d", frame, feed, render)
				}
				frames.Advance()
			}
			if be.Commits() != 3 {
				t.Errorf("commits = %d, want 3", be.Commits())
			}
		})
	}
}

func TestShaderSystem(t *testing.T) {
	cfg := testConfig(t)
	sm, be, frames := newTestManager(t, cfg)
	path := writeShader(t, cfg.Assets.Dir, "vertex v1")

	shd, err := sm.ShaderSystem.Acquire(path)
	if err != nil {
		t.Fatal(err)
	}
	if !shd.Handle.Valid() || shd.Name != "basic" || string(shd.Desc.VS.Source) != "vertex v1" {
		t.Fatalf("shader = %+v", shd)
	}
	if again, _ := sm.ShaderSystem.Acquire(path); again != shd {
		t.Error("Acquire did not return the cached shader")
	}

	pip := sm.RendererSystem.MakePipeline(&metadata.PipelineDesc{Shader: shd.Handle, Label: "p"})

	// hot reload rebinds the pipeline and retires the old program
	writeShader(t, cfg.Assets.Dir, "vertex v2")
	if err := sm.Assets.Reload(path); err != nil {
		t.Fatal(err)
	}
	next, ok := sm.ShaderSystem.Get(path)
	if !ok || next == shd || string(next.Desc.VS.Source) != "vertex v2" {
		t.Fatalf("reloaded shader = %+v", next)
	}
	if got := be.PipelineShader(pip); got != next.Handle {
		t.Errorf("pipeline shader = %d, want %d", got, next.Handle)
	}
	if shd.Handle.Valid() {
		t.Error("previous program still owns its handle")
	}
	if sm.RendererSystem.PendingDestroys() != 1 {
		t.Errorf("pending destroys = %d, want the old program", sm.RendererSystem.PendingDestroys())
	}

	frames.Advance()
	frames.Advance()
	sm.DrawFrame()
	if be.Destroyed(metadata.ResourceShader) != 1 {
		t.Errorf("shaders destroyed = %d, want 1", be.Destroyed(metadata.ResourceShader))
	}

	if err := sm.ShaderSystem.Release(path); err != nil {
		t.Fatal(err)
	}
	sm.RendererSystem.DestroyPipeline(pip)
	if err := sm.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if be.Destroyed(metadata.ResourceShader) != 2 {
		t.Errorf("shaders destroyed after shutdown = %d, want 2", be.Destroyed(metadata.ResourceShader))
	}
}

func TestShaderSystemRejectsBadManifest(t *testing.T) {
	cfg := testConfig(t)
	sm, _, _ := newTestManager(t, cfg)
	defer sm.Shutdown()

	path := filepath.Join(cfg.Assets.Dir, "bad.shader")
	if err := os.WriteFile(path, []byte("[vs]\nfile = \"only.vert\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := sm.ShaderSystem.Acquire(path); err == nil {
		t.Error("Acquire of a vs-only manifest should fail")
	}
}

func TestTextureSystem(t *testing.T) {
	cfg := testConfig(t)
	sm, be, _ := newTestManager(t, cfg)
	path := filepath.Join(cfg.Assets.Dir, "grid.png")
	writePNG(t, path, 4, 2)

	img, err := sm.TextureSystem.Acquire(path, &TextureOptions{FlipY: true})
	if err != nil {
		t.Fatal(err)
	}
	tex, ok := sm.TextureSystem.Get(path)
	if !ok || tex.Handle != img || tex.Width != 4 || tex.Height != 2 {
		t.Fatalf("texture = %+v", tex)
	}
	pix := be.ImageData(img)
	if len(pix) != 4*2*4 {
		t.Fatalf("uploaded %d bytes", len(pix))
	}
	// flipped: first row holds y=1
	if pix[1] != 1 || pix[4*4+1] != 0 {
		t.Errorf("rows not flipped: green of row 0 = %d, row 1 = %d", pix[1], pix[4*4+1])
	}

	missing, err := sm.TextureSystem.Acquire(filepath.Join(cfg.Assets.Dir, "missing.png"), nil)
	if err == nil {
		t.Error("Acquire of a missing file should fail")
	}
	if missing != sm.TextureSystem.Checker() {
		t.Error("missing texture should fall back to the checker")
	}

	if err := sm.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if be.Alive(img.Resource()) {
		t.Error("texture still alive after shutdown")
	}
}
