package engine

import (
	"github.com/spaghettifunk/anima-gfx/engine/config"
)

type ApplicationConfig struct {
	// The application name used in logs.
	Name string
	// Engine configuration. Nil means config.Default().
	Config *config.Config
	// Target frames per second. 0 disables the frame limiter.
	TargetFPS int
	// Stop after this many frames. 0 runs until Shutdown.
	MaxFrames int64
}
