package engine

import (
	"errors"
	"io"
	"os"
	"testing"

	"github.com/spaghettifunk/anima-gfx/engine/config"
	"github.com/spaghettifunk/anima-gfx/engine/core"
	"github.com/spaghettifunk/anima-gfx/engine/renderer/headless"
)

func TestMain(m *testing.M) {
	core.SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

type countingGame struct {
	updates, renders int
	resized          [2]int
	shutdown         bool
}

func newCountingGame(t *testing.T, maxFrames int64) (*Game, *countingGame) {
	t.Helper()
	cfg := config.Default()
	cfg.Jobs.NumThreads = 2
	cfg.Assets.HotReload = false
	cfg.Log.Level = "error"
	cfg.Stages = []config.StageConfig{{Name: "main"}}

	cg := &countingGame{}
	g := &Game{
		ApplicationConfig: &ApplicationConfig{Name: "test", Config: cfg, MaxFrames: maxFrames},
		FnUpdate:          func(float64) error { cg.updates++; return nil },
		FnRender:          func(float64) error { cg.renders++; return nil },
		FnOnResize: func(w, h int) error {
			cg.resized = [2]int{w, h}
			return nil
		},
		FnShutdown: func() error { cg.shutdown = true; return nil },
	}
	return g, cg
}

func TestRunStopsAfterMaxFrames(t *testing.T) {
	g, cg := newCountingGame(t, 5)
	be := headless.New()
	e, err := New(g, be)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Run(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Run before Initialize = %v", err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}
	if g.SystemManager == nil {
		t.Fatal("Initialize did not hand the system manager to the game")
	}
	if cg.resized != [2]int{1280, 720} {
		t.Errorf("initial resize = %v", cg.resized)
	}

	if err := e.Run(); err != nil {
		t.Fatal(err)
	}
	if e.Frame() != 5 || cg.updates != 5 || cg.renders != 5 {
		t.Errorf("frame %d, updates %d, renders %d; want 5 each", e.Frame(), cg.updates, cg.renders)
	}
	if be.Commits() != 5 {
		t.Errorf("backend commits = %d, want 5", be.Commits())
	}

	if err := e.OnResize(640, 480); err != nil {
		t.Fatal(err)
	}
	if cg.resized != [2]int{640, 480} || g.SystemManager.RendererSystem.FramebufferWidth != 640 {
		t.Error("resize not forwarded")
	}

	if err := e.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if !cg.shutdown {
		t.Error("game shutdown not called")
	}
	if err := e.Shutdown(); err != nil {
		t.Errorf("second Shutdown = %v", err)
	}
}

func TestRunReturnsRenderError(t *testing.T) {
	g, _ := newCountingGame(t, 0)
	boom := errors.New("boom")
	g.FnRender = func(float64) error { return boom }

	e, err := New(g, headless.New())
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}
	if err := e.Run(); !errors.Is(err, boom) {
		t.Errorf("Run = %v, want boom", err)
	}
	if err := e.Shutdown(); err != nil {
		t.Fatal(err)
	}
}

func TestNewValidates(t *testing.T) {
	g, _ := newCountingGame(t, 1)
	if _, err := New(g, nil); err == nil {
		t.Error("New without backend should fail")
	}
	g.ApplicationConfig.Config.Jobs.NumThreads = 0
	if _, err := New(g, headless.New()); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("New with invalid config = %v", err)
	}
	if _, err := New(&Game{}, headless.New()); err == nil {
		t.Error("New without application config should fail")
	}
}
