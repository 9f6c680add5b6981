package sim

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Settings are the runtime knobs read once per tick by the Simulation.
type Settings struct {
	Dt             float32
	Gravity        mgl32.Vec3
	GravityEnabled bool
	Paused         bool
	GroundHeight   float32
	WeldTolerance  float32

	// PointMassCount is informational, written by Simulation.Setup.
	PointMassCount int
}

func DefaultSettings() Settings {
	return Settings{
		Dt:             1.0 / 60.0,
		Gravity:        mgl32.Vec3{0, -9.81, 0},
		GravityEnabled: true,
		Paused:         false,
		GroundHeight:   0,
		WeldTolerance:  DefaultWeldTolerance,
	}
}

// EffectiveGravity is the acceleration applied this tick.
func (s Settings) EffectiveGravity() mgl32.Vec3 {
	if !s.GravityEnabled {
		return mgl32.Vec3{0, 0, 0}
	}
	return s.Gravity
}

// SettingsHandle is the shared owner of Settings. The input layer writes
// through Update, the simulation reads a Snapshot once per tick.
type SettingsHandle struct {
	mu       sync.Mutex
	settings Settings
}

func NewSettingsHandle(s Settings) *SettingsHandle {
	return &SettingsHandle{settings: s}
}

func (h *SettingsHandle) Snapshot() Settings {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.settings
}

func (h *SettingsHandle) Update(fn func(s *Settings)) {
	h.mu.Lock()
	fn(&h.settings)
	h.mu.Unlock()
}

// TogglePaused flips the pause flag and returns the new value.
func (h *SettingsHandle) TogglePaused() bool {
	var paused bool
	h.Update(func(s *Settings) {
		s.Paused = !s.Paused
		paused = s.Paused
	})
	return paused
}

// ToggleGravity flips the gravity flag and returns the new value.
func (h *SettingsHandle) ToggleGravity() bool {
	var enabled bool
	h.Update(func(s *Settings) {
		s.GravityEnabled = !s.GravityEnabled
		enabled = s.GravityEnabled
	})
	return enabled
}
