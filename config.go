package softbody

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/gekko3d/softbody/rt/gpu"
	"github.com/gekko3d/softbody/sim"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
)

var ErrInvalidConfig = errors.New("invalid config")

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`

	// CaptureMouse hides and traps the cursor at startup for mouse look.
	CaptureMouse bool `toml:"capture_mouse"`
}

type CameraConfig struct {
	Position    [3]float32 `toml:"position"`
	Direction   [3]float32 `toml:"direction"`
	FOVDegrees  float32    `toml:"fov_degrees"`
	Near        float32    `toml:"near"`
	Far         float32    `toml:"far"`
	Speed       float32    `toml:"speed"`
	Sensitivity float32    `toml:"sensitivity"`
}

type SimulationConfig struct {
	Dt             float32    `toml:"dt"`
	Gravity        [3]float32 `toml:"gravity"`
	GravityEnabled bool       `toml:"gravity_enabled"`
	Paused         bool       `toml:"paused"`
	WeldTolerance  float32    `toml:"weld_tolerance"`
	GroundHeight   float32    `toml:"ground_height"`
}

type RenderConfig struct {
	FramesInFlight int        `toml:"frames_in_flight"`
	ShadowMapSize  uint32     `toml:"shadow_map_size"`
	ClearColor     [4]float64 `toml:"clear_color"`
	ShowHUD        bool       `toml:"show_hud"`
}

type Config struct {
	Debug        bool             `toml:"debug"`
	FrameDelayMs int              `toml:"frame_delay_ms"`
	Window       WindowConfig     `toml:"window"`
	Camera       CameraConfig     `toml:"camera"`
	Simulation   SimulationConfig `toml:"simulation"`
	Render       RenderConfig     `toml:"render"`
}

func DefaultConfig() Config {
	s := sim.DefaultSettings()
	return Config{
		FrameDelayMs: 16,
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "Soft Body",

			CaptureMouse: true,
		},
		Camera: CameraConfig{
			Position:    [3]float32{0, 0, -1},
			Direction:   [3]float32{0, 0, 1},
			FOVDegrees:  90,
			Near:        0.1,
			Far:         100,
			Speed:       1.5,
			Sensitivity: 0.09,
		},
		Simulation: SimulationConfig{
			Dt:             s.Dt,
			Gravity:        s.Gravity,
			GravityEnabled: s.GravityEnabled,
			Paused:         s.Paused,
			WeldTolerance:  s.WeldTolerance,
			GroundHeight:   -1,
		},
		Render: RenderConfig{
			FramesInFlight: gpu.DefaultFramesInFlight,
			ShadowMapSize:  2048,
			ClearColor:     [4]float64{0.1, 0.12, 0.15, 1},
			ShowHUD:        true,
		},
	}
}

// LoadConfig reads a TOML file over the defaults. An empty path returns the
// defaults. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	case c.Camera.FOVDegrees < 15 || c.Camera.FOVDegrees > 90:
		return fmt.Errorf("%w: fov_degrees %v outside [15, 90]", ErrInvalidConfig, c.Camera.FOVDegrees)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("%w: near %v far %v", ErrInvalidConfig, c.Camera.Near, c.Camera.Far)
	case c.Simulation.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidConfig, c.Simulation.Dt)
	case !(c.Simulation.WeldTolerance > 0) || math.IsInf(float64(c.Simulation.WeldTolerance), 1):
		return fmt.Errorf("%w: weld_tolerance must be positive and finite, got %v", ErrInvalidConfig, c.Simulation.WeldTolerance)
	case c.Render.FramesInFlight < 1 || c.Render.FramesInFlight > gpu.MaxFramesInFlight:
		return fmt.Errorf("%w: frames_in_flight %d outside [1, %d]", ErrInvalidConfig, c.Render.FramesInFlight, gpu.MaxFramesInFlight)
	case c.Render.ShadowMapSize == 0:
		return fmt.Errorf("%w: shadow_map_size must be positive", ErrInvalidConfig)
	case c.FrameDelayMs < 0:
		return fmt.Errorf("%w: frame_delay_ms must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (c Config) SimulationSettings() sim.Settings {
	return sim.Settings{
		Dt:             c.Simulation.Dt,
		Gravity:        mgl32.Vec3(c.Simulation.Gravity),
		GravityEnabled: c.Simulation.GravityEnabled,
		Paused:         c.Simulation.Paused,
		GroundHeight:   c.Simulation.GroundHeight,
		WeldTolerance:  c.Simulation.WeldTolerance,
	}
}
