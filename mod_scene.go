package softbody

import (
	"github.com/gekko3d/softbody/rt/core"
	"github.com/gekko3d/softbody/sim"
	"github.com/go-gl/mathgl/mgl32"
)

// Scene is the ordered mesh list shared by the simulation and the renderer.
type Scene struct {
	Meshes []*core.Mesh
	Light  *core.DirectionalLight
}

func NewScene() *Scene {
	return &Scene{Light: core.NewDirectionalLight()}
}

func (s *Scene) Add(meshes ...*core.Mesh) {
	s.Meshes = append(s.Meshes, meshes...)
}

// Simulated returns the non-static meshes in scene order. Index i of the
// result is the simulation index of that mesh.
func (s *Scene) Simulated() []*core.Mesh {
	var out []*core.Mesh
	for _, m := range s.Meshes {
		if !m.Static {
			out = append(out, m)
		}
	}
	return out
}

// SimIndex maps a scene mesh to its simulation index, -1 for static meshes.
func (s *Scene) SimIndex(mesh *core.Mesh) int {
	i := 0
	for _, m := range s.Meshes {
		if m.Static {
			continue
		}
		if m.Id == mesh.Id {
			return i
		}
		i++
	}
	return -1
}

func (s *Scene) Sources() []sim.VertexSource {
	meshes := s.Simulated()
	out := make([]sim.VertexSource, len(meshes))
	for i, m := range meshes {
		out[i] = m
	}
	return out
}

// DemoScene places a floor and three deformable shapes in front of the
// default camera.
func DemoScene(groundHeight float32) *Scene {
	s := NewScene()
	s.Add(
		core.NewGroundQuad(12, groundHeight).Translate(mgl32.Vec3{0, 0, 3}),
		core.NewCube(0.5, mgl32.Vec3{-0.9, groundHeight + 1.2, 2.5}).WithColor(0.85, 0.35, 0.3),
		core.NewSphere(0.35, 12, 18, mgl32.Vec3{0.9, groundHeight + 1.6, 2.8}).WithColor(0.3, 0.6, 0.9),
		core.NewClothGrid(1.4, 10, groundHeight+2.2).Translate(mgl32.Vec3{0, 0, 3.2}).WithColor(0.9, 0.8, 0.35),
	)
	s.Light.Aim(mgl32.Vec3{0, groundHeight, 3})
	return s
}

type SceneModule struct {
	GroundHeight float32
}

func (m SceneModule) Install(app *App, cmd *Commands) {
	scene := DemoScene(m.GroundHeight)
	for _, mesh := range scene.Meshes {
		app.Logger().Debugf("scene: mesh %s %q vertices=%d static=%v", mesh.Id, mesh.Name, mesh.VertexCount(), mesh.Static)
	}
	cmd.AddResources(scene)
}
