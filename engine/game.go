package engine

import (
	"github.com/spaghettifunk/anima-gfx/engine/systems"
)

type Game struct {
	ApplicationConfig *ApplicationConfig
	SystemManager     *systems.SystemManager
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnRender          Render
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error

// Render records the frame. It runs on the main thread and may fan out
// recording to the job system.
type Render func(deltaTime float64) error
type OnResize func(width, height int) error
type Shutdown func() error
