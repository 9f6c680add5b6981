package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/gekko3d/softbody"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file")
	debug := flag.Bool("debug", false, "Enable debug logging and the profiler overlay")
	flag.Parse()

	cfg, err := softbody.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *debug {
		cfg.Debug = true
	}

	app := softbody.NewAppBuilder().
		UseStates(softbody.StateRunning, softbody.StateQuit).
		UseModule(
			softbody.LoggingModule{Prefix: "softbody", Debug: cfg.Debug},
			softbody.TimeModule{FrameDelay: time.Duration(cfg.FrameDelayMs) * time.Millisecond},
			softbody.NewPlatformWindow(cfg.Window),
			softbody.InputModule{CaptureMouse: cfg.Window.CaptureMouse},
			softbody.SceneModule{GroundHeight: cfg.Simulation.GroundHeight},
			softbody.SimulationModule{Settings: cfg.SimulationSettings()},
			softbody.FlyingCameraModule{Config: cfg.Camera},
			softbody.RendererModule{Config: cfg.Render, Debug: cfg.Debug},
		).
		Build()
	defer app.Shutdown()

	app.Run()
}
