package sim

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Simulation owns one SimulationObject per mesh. Object i always belongs to
// mesh i of the list it was built from.
type Simulation struct {
	meshes   []VertexSource
	objects  []*SimulationObject
	settings *SettingsHandle
	tick     uint64
}

func NewSimulation(meshes []VertexSource, settings *SettingsHandle) *Simulation {
	if settings == nil {
		settings = NewSettingsHandle(DefaultSettings())
	}
	list := make([]VertexSource, len(meshes))
	copy(list, meshes)
	return &Simulation{
		meshes:   list,
		settings: settings,
	}
}

// Setup builds the point masses of every mesh from its rest pose.
func (s *Simulation) Setup() error {
	tolerance := s.settings.Snapshot().WeldTolerance
	objects := make([]*SimulationObject, len(s.meshes))
	total := 0
	for i, mesh := range s.meshes {
		obj := NewSimulationObject()
		if err := obj.GeneratePointMasses(mesh, tolerance); err != nil {
			return fmt.Errorf("mesh %d: %w", i, err)
		}
		objects[i] = obj
		total += obj.PointMassCount()
	}
	s.objects = objects
	s.tick++
	s.settings.Update(func(st *Settings) {
		st.PointMassCount = total
	})
	return nil
}

// Reset restores every object to its rest pose.
func (s *Simulation) Reset() error {
	return s.Setup()
}

// Update advances every object by one fixed step. It is a no-op while paused
// and reports whether a step was taken.
func (s *Simulation) Update() bool {
	st := s.settings.Snapshot()
	if st.Paused {
		return false
	}
	gravity := st.EffectiveGravity()
	for _, obj := range s.objects {
		obj.Update(st.Dt, gravity, st.GroundHeight)
	}
	s.tick++
	return true
}

// Tick increases whenever positions may have changed.
func (s *Simulation) Tick() uint64 {
	return s.tick
}

func (s *Simulation) Settings() *SettingsHandle {
	return s.settings
}

func (s *Simulation) ObjectCount() int {
	return len(s.objects)
}

func (s *Simulation) Object(meshIndex int) (*SimulationObject, error) {
	if meshIndex < 0 || meshIndex >= len(s.objects) {
		return nil, fmt.Errorf("mesh index %d out of range [0,%d): %w", meshIndex, len(s.objects), ErrInvalidArgument)
	}
	return s.objects[meshIndex], nil
}

func (s *Simulation) PositionList(meshIndex int) ([]mgl32.Vec3, error) {
	obj, err := s.Object(meshIndex)
	if err != nil {
		return nil, err
	}
	return obj.PositionList(), nil
}

func (s *Simulation) RemapTable(meshIndex int) ([]int, error) {
	obj, err := s.Object(meshIndex)
	if err != nil {
		return nil, err
	}
	return obj.RemapTable(), nil
}

func (s *Simulation) PointMassCount(meshIndex int) (int, error) {
	obj, err := s.Object(meshIndex)
	if err != nil {
		return 0, err
	}
	return obj.PointMassCount(), nil
}

func (s *Simulation) TotalPointMasses() int {
	total := 0
	for _, obj := range s.objects {
		total += obj.PointMassCount()
	}
	return total
}

// ExpandPositions writes the per-vertex position stream of mesh meshIndex
// into dst, reusing its capacity.
func (s *Simulation) ExpandPositions(meshIndex int, dst []float32) ([]float32, error) {
	obj, err := s.Object(meshIndex)
	if err != nil {
		return dst[:0], err
	}
	return obj.ExpandInto(dst)
}

// Center is the mean position over all point masses of all objects.
func (s *Simulation) Center() (mgl32.Vec3, error) {
	var sum mgl32.Vec3
	n := 0
	for _, obj := range s.objects {
		sum = sum.Add(obj.positionSum())
		n += obj.PointMassCount()
	}
	if n == 0 {
		return mgl32.Vec3{}, ErrNoPointMasses
	}
	return sum.Mul(1.0 / float32(n)), nil
}
