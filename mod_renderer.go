package softbody

import (
	"fmt"

	rtapp "github.com/gekko3d/softbody/rt/app"
)

type RendererState struct {
	App     *rtapp.App
	ShowHUD bool
	Debug   bool

	logger Logger
}

func (r *RendererState) Close() {
	if r.App != nil {
		r.App.Release()
		r.App = nil
	}
}

// RendererModule draws the Scene with the simulated positions. It needs the
// window, scene, simulation and camera resources.
type RendererModule struct {
	Config RenderConfig
	Debug  bool
}

func (m RendererModule) Install(app *App, cmd *Commands) {
	ws, ok := Resource[WindowState](app)
	if !ok {
		panic("RendererModule requires PlatformWindowModule")
	}
	scene, ok := Resource[Scene](app)
	if !ok {
		panic("RendererModule requires SceneModule")
	}
	claimRenderer(app, "wgpu")
	logger := app.Logger()

	opts := rtapp.DefaultOptions()
	opts.FramesInFlight = m.Config.FramesInFlight
	opts.ShadowMapSize = m.Config.ShadowMapSize
	opts.ClearColor = m.Config.ClearColor

	r := rtapp.NewApp(ws.Window(), opts)
	if err := r.Init(); err != nil {
		panic(fmt.Errorf("renderer init: %w", err))
	}
	for _, mesh := range scene.Meshes {
		if err := r.AddMesh(mesh, scene.SimIndex(mesh)); err != nil {
			panic(fmt.Errorf("renderer mesh %q: %w", mesh.Name, err))
		}
	}
	logger.Infof("renderer: format %v, %d meshes, %d frames in flight", r.Format(), len(scene.Meshes), r.Buffers.Ring.Len())

	cmd.AddResources(&RendererState{App: r, ShowHUD: m.Config.ShowHUD, Debug: m.Debug, logger: logger})
	cmd.UseSystem(System(rendererResizeSystem).InStage(PreRender))
	cmd.UseSystem(System(hudSystem).InStage(PreRender))
	cmd.UseSystem(System(rendererSyncSystem).InStage(PreRender))
	cmd.UseSystem(System(renderSystem).InStage(Render))
}

func rendererResizeSystem(ws *WindowState, r *RendererState) {
	if !ws.Resized {
		return
	}
	if err := r.App.Resize(ws.WindowWidth, ws.WindowHeight); err != nil {
		r.logger.Errorf("renderer resize: %v", err)
	}
}

func hudSystem(input *Input, r *RendererState, state *SimulationState) {
	if input.Clicked(KeyF1) {
		r.ShowHUD = !r.ShowHUD
	}
	r.App.ClearText()
	if !r.ShowHUD {
		return
	}
	lines := hudLines(r.App.FPS, state)
	if r.Debug {
		lines = append(lines, r.App.Profiler.Lines()...)
	}
	y := float32(10)
	step := r.App.Text.Renderer.LineHeight(1)
	for _, line := range lines {
		r.App.DrawText(line, 10, y, 1, [4]float32{1, 1, 1, 1})
		y += step
	}
}

// hudLines formats the status overlay.
func hudLines(fps float64, state *SimulationState) []string {
	s := state.Settings.Snapshot()
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	return []string{
		fmt.Sprintf("FPS %.1f", fps),
		fmt.Sprintf("paused %s  gravity %s", onOff(s.Paused), onOff(s.GravityEnabled)),
		fmt.Sprintf("point masses %d", state.Sim.TotalPointMasses()),
		"P pause  G gravity  R reset  Tab mouse  F1 hud  Esc quit",
	}
}

func rendererSyncSystem(r *RendererState, cam *CameraState, scene *Scene) {
	if err := r.App.Update(cam.Camera, scene.Light); err != nil {
		r.logger.Errorf("renderer update: %v", err)
	}
}

func renderSystem(r *RendererState, state *SimulationState) {
	r.App.Profiler.SetCount("masses", state.Sim.TotalPointMasses())
	drawn, err := r.App.Render(state.Sim)
	if err != nil {
		r.logger.Errorf("render: %v", err)
		return
	}
	if !drawn {
		r.logger.Debugf("render: all %d frames in flight, skipped", r.App.Buffers.Ring.Len())
	}
}
