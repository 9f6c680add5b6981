package softbody

import (
	"github.com/gekko3d/softbody/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

type CameraState struct {
	Camera *core.Camera
}

type FlyingCameraModule struct {
	Config CameraConfig
}

func (m FlyingCameraModule) Install(app *App, cmd *Commands) {
	aspect := float32(1)
	if ws, ok := Resource[WindowState](app); ok {
		aspect = ws.AspectRatio()
	}
	cam := core.NewCamera(
		mgl32.Vec3(m.Config.Position),
		mgl32.Vec3(m.Config.Direction),
		mgl32.DegToRad(m.Config.FOVDegrees),
		aspect,
		m.Config.Near,
		m.Config.Far,
	)
	if m.Config.Speed > 0 {
		cam.Speed = m.Config.Speed
	}
	if m.Config.Sensitivity > 0 {
		cam.Sensitivity = m.Config.Sensitivity
	}
	cmd.AddResources(&CameraState{Camera: cam})

	if _, ok := Resource[WindowState](app); ok {
		cmd.UseSystem(System(cameraResizeSystem).InStage(PreUpdate))
	}
	cmd.UseSystem(System(flyingCameraSystem).InStage(Update))
}

func cameraResizeSystem(ws *WindowState, state *CameraState) {
	if ws.Resized && ws.WindowWidth > 0 && ws.WindowHeight > 0 {
		state.Camera.SetAspectRatio(ws.AspectRatio())
	}
}

// movementFromInput sums the held movement keys into a velocity along the
// camera basis.
func movementFromInput(input *Input, cam *core.Camera) mgl32.Vec3 {
	var v mgl32.Vec3
	if input.Down(KeyW) {
		v = v.Add(cam.Direction())
	}
	if input.Down(KeyS) {
		v = v.Sub(cam.Direction())
	}
	if input.Down(KeyD) {
		v = v.Add(cam.Right())
	}
	if input.Down(KeyA) {
		v = v.Sub(cam.Right())
	}
	if input.Down(KeySpace) {
		v = v.Add(cam.Up())
	}
	if input.Down(KeyShift) {
		v = v.Sub(cam.Up())
	}
	return v
}

func flyingCameraSystem(input *Input, state *CameraState, t *Time) {
	cam := state.Camera

	dx, dy := input.TakeMouseDelta()
	if input.MouseCaptured && (dx != 0 || dy != 0) {
		// screen y grows downwards
		cam.AdjustOrientation(float32(dx), float32(-dy))
	}
	if _, sy := input.TakeScroll(); sy != 0 {
		cam.AdjustFOV(float32(sy))
	}

	cam.SetVelocity(movementFromInput(input, cam))
	cam.Update(t.Seconds())
}
