package testbed

import (
	"encoding/binary"
	"io"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/spaghettifunk/anima-gfx/engine"
	"github.com/spaghettifunk/anima-gfx/engine/config"
	"github.com/spaghettifunk/anima-gfx/engine/core"
	"github.com/spaghettifunk/anima-gfx/engine/renderer/headless"
)

func TestMain(m *testing.M) {
	core.SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

func TestQuadVertices(t *testing.T) {
	buf := quadVertices(1, 0)
	if len(buf) != quadsPerStage*6*vertexStride {
		t.Fatalf("vertex bytes = %d", len(buf))
	}
	// second vertex of the first quad: corner (1, 0)
	v := buf[vertexStride : 2*vertexStride]
	u := math.Float32frombits(binary.LittleEndian.Uint32(v[8:]))
	w := math.Float32frombits(binary.LittleEndian.Uint32(v[12:]))
	if u != 1 || w != 0 {
		t.Errorf("uv = (%v, %v), want (1, 0)", u, w)
	}
}

func TestTestbedFrames(t *testing.T) {
	cfg, err := config.Load("../anima.toml")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Assets.Dir = "../assets"
	cfg.Assets.HotReload = false
	cfg.Log.Level = "error"
	if !cfg.Gfx.Pipelined {
		t.Fatal("testbed config should end frames with Present and Commit")
	}

	tb := NewTestGame(cfg)
	tb.ApplicationConfig.TargetFPS = 0
	tb.ApplicationConfig.MaxFrames = 3

	be := headless.New()
	e, err := engine.New(tb.Game, be)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}
	if _, ok := tb.SystemManager.ShaderSystem.Get("../assets/shaders/testbed.shader"); !ok {
		t.Error("testbed shader not loaded from the asset directory")
	}
	be.ResetCalls()

	if err := e.Run(); err != nil {
		t.Fatal(err)
	}

	var draws, groups []string
	for _, c := range be.Calls() {
		switch {
		case strings.HasPrefix(c, "Draw"):
			draws = append(draws, c)
		case strings.HasPrefix(c, "PushDebugGroup"):
			groups = append(groups, c)
		}
	}
	if len(draws) != 3*len(cfg.Stages) {
		t.Errorf("draws = %d, want %d", len(draws), 3*len(cfg.Stages))
	}
	// root stages first, ordered by registration, then their children
	want := []string{"shadow", "ui", "opaque", "transparent"}
	for i, name := range want {
		if groups[i] != "PushDebugGroup "+name {
			t.Errorf("group %d = %q, want %q", i, groups[i], name)
		}
	}

	if be.Commits() != 3 {
		t.Errorf("commits = %d, want one per frame", be.Commits())
	}
	if feed, render := tb.SystemManager.RendererSystem.PendingCommands(); feed != 0 || render != 0 {
		t.Errorf("commands left after the last frame: feed=%d render=%d", feed, render)
	}

	state := tb.State.(*gameState)
	if state.texture != tb.SystemManager.TextureSystem.Checker() {
		t.Error("missing testbed texture should fall back to the checker")
	}
	if err := e.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if be.Alive(state.pip.Resource()) || be.Alive(state.stream.Resource()) {
		t.Error("testbed resources survived shutdown")
	}
}
