package softbody

import (
	"github.com/gekko3d/softbody/sim"
)

type SimulationState struct {
	Sim      *sim.Simulation
	Settings *sim.SettingsHandle
}

// SimulationModule builds point masses for every non-static scene mesh and
// steps them once per frame. It needs the Scene resource.
type SimulationModule struct {
	Settings sim.Settings
}

func (m SimulationModule) Install(app *App, cmd *Commands) {
	scene, ok := Resource[Scene](app)
	if !ok {
		panic("SimulationModule requires SceneModule")
	}
	logger := app.Logger()

	handle := sim.NewSettingsHandle(m.Settings)
	s := sim.NewSimulation(scene.Sources(), handle)
	if err := s.Setup(); err != nil {
		panic(err)
	}
	for i, mesh := range scene.Simulated() {
		n, _ := s.PointMassCount(i)
		logger.Infof("simulation: %q %d vertices -> %d point masses", mesh.Name, mesh.VertexCount(), n)
	}
	state := &SimulationState{Sim: s, Settings: handle}
	cmd.AddResources(state)

	if _, ok := Resource[Input](app); ok {
		cmd.UseSystem(System(func(input *Input, state *SimulationState, c *Commands) {
			simulationControlSystem(input, state, c, logger)
		}).InStage(PreUpdate))
	}
	cmd.UseSystem(System(simulationStepSystem).InStage(Update))
	cmd.UseSystem(System(lightFollowSystem).InStage(PostUpdate))
}

func simulationControlSystem(input *Input, state *SimulationState, cmd *Commands, logger Logger) {
	if input.Clicked(KeyEscape) {
		logger.Infof("quit requested")
		cmd.Quit()
	}
	if input.Clicked(KeyP) {
		logger.Infof("simulation paused=%v", state.Settings.TogglePaused())
	}
	if input.Clicked(KeyG) {
		logger.Infof("gravity enabled=%v", state.Settings.ToggleGravity())
	}
	if input.Clicked(KeyR) {
		if err := state.Sim.Reset(); err != nil {
			logger.Errorf("simulation reset: %v", err)
			return
		}
		logger.Infof("simulation reset to rest pose")
	}
}

func simulationStepSystem(state *SimulationState) {
	state.Sim.Update()
}

func lightFollowSystem(scene *Scene, state *SimulationState) {
	if center, err := state.Sim.Center(); err == nil {
		scene.Light.Aim(center)
	}
}
