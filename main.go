/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/anima-gfx/engine"
	"github.com/spaghettifunk/anima-gfx/engine/config"
	"github.com/spaghettifunk/anima-gfx/engine/core"
	"github.com/spaghettifunk/anima-gfx/engine/renderer/headless"
	"github.com/spaghettifunk/anima-gfx/testbed"
)

func main() {
	configPath := flag.String("config", "anima.toml", "path to the TOML configuration")
	frames := flag.Int64("frames", 0, "stop after this many frames (0 runs until interrupted)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if errors.Is(err, os.ErrNotExist) {
		core.LogInfo("no configuration at %s, using defaults", *configPath)
		cfg = config.Default()
	} else if err != nil {
		core.LogFatal(err.Error())
	}

	tb := testbed.NewTestGame(cfg)
	tb.ApplicationConfig.MaxFrames = *frames

	e, err := engine.New(tb.Game, headless.New())
	if err != nil {
		core.LogFatal(err.Error())
	}

	if err := e.Initialize(); err != nil {
		core.LogFatal(err.Error())
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// stop the frame loop on sigterm and other system calls
	go func() {
		<-sigCh
		e.Stop()
	}()

	runErr := e.Run()
	fps, frameMS := e.Metrics()
	core.LogInfo("rendered %d frames (%.1f fps, %.2f ms)", e.Frame(), fps, frameMS)

	if err := errors.Join(runErr, e.Shutdown()); err != nil {
		core.LogFatal(err.Error())
	}
}
