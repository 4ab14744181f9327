package engine

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/anima-gfx/engine/config"
	"github.com/spaghettifunk/anima-gfx/engine/core"
	"github.com/spaghettifunk/anima-gfx/engine/renderer"
	"github.com/spaghettifunk/anima-gfx/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released every system
	EngineStageShutdown
)

var ErrNotInitialized = errors.New("engine is not initialized")

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	isRunning     atomic.Bool
	config        *config.Config
	backend       renderer.Backend
	systemManager *systems.SystemManager
	clock         *core.Clock
	frames        *core.FrameClock
	metrics       *core.Metrics
	lastTime      float64
}

// New prepares an engine rendering into backend. Systems are created by
// Initialize.
func New(g *Game, backend renderer.Backend) (*Engine, error) {
	if g.ApplicationConfig == nil {
		return nil, fmt.Errorf("game has no application config")
	}
	if backend == nil {
		return nil, renderer.ErrNoBackend
	}
	cfg := g.ApplicationConfig.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	core.SetLogLevel(cfg.LogLevel())
	if g.ApplicationConfig.Name != "" {
		core.SetLogPrefix(g.ApplicationConfig.Name + " ")
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       cfg,
		backend:      backend,
		clock:        core.NewClock(),
		frames:       core.NewFrameClock(),
		metrics:      core.NewMetrics(),
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	sm, err := systems.NewSystemManager(e.config, e.backend, e.frames)
	if err != nil {
		return err
	}
	e.systemManager = sm
	e.gameInstance.SystemManager = sm

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.config.Gfx.Width, e.config.Gfx.Height); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

// Run drives the frame loop until Shutdown is called, a game callback fails
// or the configured number of frames has been rendered.
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return ErrNotInitialized
	}
	e.currentStage = EngineStageRunning
	e.isRunning.Store(true)

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	var targetFrameSeconds float64
	if fps := e.gameInstance.ApplicationConfig.TargetFPS; fps > 0 {
		targetFrameSeconds = 1.0 / float64(fps)
	}
	maxFrames := e.gameInstance.ApplicationConfig.MaxFrames

	for e.isRunning.Load() {
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStart := time.Now()

		e.systemManager.Update()

		if err := e.gameInstance.FnUpdate(delta); err != nil {
			core.LogError("Game update failed, shutting down: %s", err.Error())
			e.isRunning.Store(false)
			return err
		}

		if err := e.gameInstance.FnRender(delta); err != nil {
			core.LogError("Game render failed, shutting down: %s", err.Error())
			e.isRunning.Store(false)
			return err
		}

		e.systemManager.DrawFrame()
		frame := e.frames.Advance()

		frameElapsed := time.Since(frameStart).Seconds()
		if remaining := targetFrameSeconds - frameElapsed; remaining > 0 {
			time.Sleep(time.Duration(remaining * float64(time.Second)))
		}
		e.metrics.Update(frameElapsed)

		e.lastTime = currentTime

		if maxFrames > 0 && frame >= maxFrames {
			e.isRunning.Store(false)
		}
	}
	return nil
}

// Stop asks the frame loop to return after the current frame.
func (e *Engine) Stop() {
	e.isRunning.Store(false)
}

// Shutdown releases the game and every system. Run must have returned.
func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShutdown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown

	var errs []error
	if e.gameInstance.FnShutdown != nil {
		errs = append(errs, e.gameInstance.FnShutdown())
	}
	if e.systemManager != nil {
		errs = append(errs, e.systemManager.Shutdown())
	}
	e.currentStage = EngineStageShutdown
	return errors.Join(errs...)
}

func (e *Engine) Frame() int64 {
	return e.frames.FrameIndex()
}

// Metrics returns the frames per second and the average frame time in ms.
func (e *Engine) Metrics() (float64, float64) {
	return e.metrics.Frame()
}

// OnResize forwards a framebuffer size change to the renderer and the game.
func (e *Engine) OnResize(width, height int) error {
	if e.systemManager == nil {
		return ErrNotInitialized
	}
	core.LogDebug("Window resize: %d, %d", width, height)
	e.systemManager.RendererSystem.OnResize(width, height)
	if e.gameInstance.FnOnResize != nil {
		return e.gameInstance.FnOnResize(width, height)
	}
	return nil
}
