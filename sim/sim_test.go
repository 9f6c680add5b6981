package sim

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// packedMesh stores positions inside records of the given stride.
type packedMesh struct {
	count  int
	layout VertexLayout
	data   []byte
}

func newPackedMesh(stride, offset int, positions ...mgl32.Vec3) *packedMesh {
	data := make([]byte, stride*len(positions))
	for i, p := range positions {
		for c := 0; c < 3; c++ {
			binary.LittleEndian.PutUint32(data[i*stride+offset+c*4:], math.Float32bits(p[c]))
		}
		// fill the rest of the record with garbage so layout bugs show up
		for b := 0; b < stride; b++ {
			if b < offset || b >= offset+12 {
				data[i*stride+b] = 0xAB
			}
		}
	}
	return &packedMesh{count: len(positions), layout: VertexLayout{Stride: stride, PositionOffset: offset}, data: data}
}

func (m *packedMesh) VertexCount() int           { return m.count }
func (m *packedMesh) VertexLayout() VertexLayout { return m.layout }
func (m *packedMesh) VertexBytes() []byte        { return m.data }

func triangleMesh() *packedMesh {
	return newPackedMesh(12, 0,
		mgl32.Vec3{0, 1, 0},
		mgl32.Vec3{0, 1, 0},
		mgl32.Vec3{1, 0, 0},
	)
}

func cubeCorners() []mgl32.Vec3 {
	var out []mgl32.Vec3
	for _, x := range []float32{-1, 1} {
		for _, y := range []float32{1, 3} {
			for _, z := range []float32{-1, 1} {
				out = append(out, mgl32.Vec3{x, y, z})
			}
		}
	}
	return out
}

func TestPointMassIntegrate(t *testing.T) {
	p := NewPointMass(mgl32.Vec3{0, 1, 0})
	p.Integrate(1.0/60.0, mgl32.Vec3{0, -9.81, 0})

	assert.InDelta(t, -0.1635, p.Velocity.Y(), 1e-4)
	assert.InDelta(t, 0.99727, p.Position.Y(), 1e-5)
	assert.Equal(t, float32(1), p.Mass)
}

func TestResolveGroundCollision(t *testing.T) {
	p := PointMass{Position: mgl32.Vec3{1, -0.5, 2}, Velocity: mgl32.Vec3{3, -4, 5}}

	p.ResolveGroundCollision(0)
	once := p
	p.ResolveGroundCollision(0)

	assert.Equal(t, once, p, "ground clamp should be idempotent")
	assert.Equal(t, mgl32.Vec3{1, 0, 2}, p.Position)
	assert.Equal(t, mgl32.Vec3{3, 0, 5}, p.Velocity)

	above := PointMass{Position: mgl32.Vec3{0, 2, 0}, Velocity: mgl32.Vec3{0, -1, 0}}
	above.ResolveGroundCollision(0)
	assert.Equal(t, float32(-1), above.Velocity.Y(), "masses above the ground keep their velocity")
}

func TestGeneratePointMasses_Triangle(t *testing.T) {
	obj := NewSimulationObject()
	require.NoError(t, obj.GeneratePointMasses(triangleMesh(), DefaultWeldTolerance))

	assert.Equal(t, 2, obj.PointMassCount())
	assert.Equal(t, 3, obj.VertexCount())
	assert.Equal(t, []int{0, 0, 1}, obj.RemapTable())
}

func TestGeneratePointMasses_Dedup(t *testing.T) {
	corners := cubeCorners()
	// every corner is shared by three faces
	var vertices []mgl32.Vec3
	for i := 0; i < 3; i++ {
		vertices = append(vertices, corners...)
	}
	obj := NewSimulationObject()
	require.NoError(t, obj.GeneratePointMasses(newPackedMesh(32, 16, vertices...), DefaultWeldTolerance))

	assert.Equal(t, len(corners), obj.PointMassCount())
	remap := obj.RemapTable()
	require.Len(t, remap, len(vertices))
	for i, idx := range remap {
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, len(corners))
		assert.Equal(t, remap[i%len(corners)], idx)
	}
	for _, pm := range obj.PointMasses() {
		assert.Equal(t, mgl32.Vec3{}, pm.Velocity)
		assert.Equal(t, float32(1), pm.Mass)
	}
}

func TestGeneratePointMasses_Tolerance(t *testing.T) {
	mesh := newPackedMesh(12, 0, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0.0001, 0, 0})

	coarse := NewSimulationObject()
	require.NoError(t, coarse.GeneratePointMasses(mesh, 1e-3))
	assert.Equal(t, 1, coarse.PointMassCount())

	fine := NewSimulationObject()
	require.NoError(t, fine.GeneratePointMasses(mesh, 1e-5))
	assert.Equal(t, 2, fine.PointMassCount())

	err := NewSimulationObject().GeneratePointMasses(mesh, 0)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestGeneratePointMasses_TinyTolerance(t *testing.T) {
	mesh := newPackedMesh(12, 0,
		mgl32.Vec3{1, 2, 3},
		mgl32.Vec3{4, 5, 6},
		mgl32.Vec3{-7, 8, 9},
		mgl32.Vec3{1, 2, 3},
	)

	for _, tol := range []float32{1e-20, math.SmallestNonzeroFloat32} {
		obj := NewSimulationObject()
		require.NoError(t, obj.GeneratePointMasses(mesh, tol))
		assert.Equal(t, 3, obj.PointMassCount(), "tolerance %v", tol)
		assert.Equal(t, []int{0, 1, 2, 0}, obj.RemapTable(), "tolerance %v", tol)
	}
}

func TestGeneratePointMasses_ExtremeCoordinates(t *testing.T) {
	negZero := float32(math.Copysign(0, -1))
	mesh := newPackedMesh(12, 0,
		mgl32.Vec3{math.MaxFloat32, 0, 0},
		mgl32.Vec3{-math.MaxFloat32, 0, 0},
		mgl32.Vec3{0, 0, 0},
		mgl32.Vec3{negZero, 0, 0},
	)

	obj := NewSimulationObject()
	require.NoError(t, obj.GeneratePointMasses(mesh, 1e-6))
	assert.Equal(t, []int{0, 1, 2, 2}, obj.RemapTable())
}

func TestGeneratePointMasses_InfiniteTolerance(t *testing.T) {
	err := NewSimulationObject().GeneratePointMasses(triangleMesh(), float32(math.Inf(1)))
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestGeneratePointMasses_BadLayout(t *testing.T) {
	mesh := newPackedMesh(12, 0, mgl32.Vec3{0, 0, 0})
	mesh.layout = VertexLayout{Stride: 8, PositionOffset: 0}
	err := NewSimulationObject().GeneratePointMasses(mesh, DefaultWeldTolerance)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	short := newPackedMesh(12, 0, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1})
	short.data = short.data[:20]
	err = NewSimulationObject().GeneratePointMasses(short, DefaultWeldTolerance)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestRemapRoundTrip(t *testing.T) {
	var vertices []mgl32.Vec3
	corners := cubeCorners()
	for i := range corners {
		vertices = append(vertices, corners[i], corners[(i+3)%len(corners)])
	}
	mesh := newPackedMesh(32, 0, vertices...)

	obj := NewSimulationObject()
	require.NoError(t, obj.GeneratePointMasses(mesh, DefaultWeldTolerance))

	flat, err := ExpandPositions(nil, obj.PositionList(), obj.RemapTable())
	require.NoError(t, err)
	require.Len(t, flat, 3*len(vertices))
	for i, v := range vertices {
		assert.Equal(t, v, mgl32.Vec3{flat[3*i], flat[3*i+1], flat[3*i+2]}, "vertex %d", i)
	}

	viaObject, err := obj.ExpandInto(make([]float32, 0, 4))
	require.NoError(t, err)
	assert.Equal(t, flat, viaObject)
}

func TestExpandPositions_CorruptRemap(t *testing.T) {
	positions := []mgl32.Vec3{{1, 2, 3}}

	_, err := ExpandPositions(nil, positions, []int{0, 1})
	assert.True(t, errors.Is(err, ErrCorruptRemap))

	_, err = ExpandPositions(nil, positions, []int{-1})
	assert.True(t, errors.Is(err, ErrCorruptRemap))
}

func TestExpandInto_CorruptRemapMatchesExpandPositions(t *testing.T) {
	obj := NewSimulationObject()
	require.NoError(t, obj.GeneratePointMasses(triangleMesh(), DefaultWeldTolerance))

	for _, remap := range [][]int{{0, 2, 1}, {-1, 0, 1}} {
		obj.remapTable = remap

		viaObject, err := obj.ExpandInto(nil)
		assert.True(t, errors.Is(err, ErrCorruptRemap), "remap %v", remap)
		assert.Empty(t, viaObject)

		_, err = ExpandPositions(nil, obj.PositionList(), remap)
		assert.True(t, errors.Is(err, ErrCorruptRemap), "remap %v", remap)
	}
}

func TestExpandPositions_ReusesBuffer(t *testing.T) {
	buf := make([]float32, 0, 64)
	out, err := ExpandPositions(buf, []mgl32.Vec3{{1, 2, 3}}, []int{0, 0})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 1, 2, 3}, out)
	assert.Equal(t, &buf[:1][0], &out[0], "expansion should write into the provided buffer")
}

func TestCalculateCenter(t *testing.T) {
	_, err := NewSimulationObject().CalculateCenter()
	assert.True(t, errors.Is(err, ErrNoPointMasses))

	obj := NewSimulationObject()
	require.NoError(t, obj.GeneratePointMasses(triangleMesh(), DefaultWeldTolerance))
	center, err := obj.CalculateCenter()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, center.X(), 1e-6)
	assert.InDelta(t, 0.5, center.Y(), 1e-6)
}

func newTestSimulation(t *testing.T, settings Settings, meshes ...VertexSource) *Simulation {
	t.Helper()
	s := NewSimulation(meshes, NewSettingsHandle(settings))
	require.NoError(t, s.Setup())
	return s
}

func TestSimulation_SingleTick(t *testing.T) {
	s := newTestSimulation(t, DefaultSettings(), triangleMesh())

	assert.True(t, s.Update())

	obj, err := s.Object(0)
	require.NoError(t, err)
	masses := obj.PointMasses()
	assert.InDelta(t, -0.1635, masses[0].Velocity.Y(), 1e-4)
	assert.InDelta(t, 0.99727, masses[0].Position.Y(), 1e-5)
	// mass 1 starts on the ground and is clamped back
	assert.Equal(t, float32(0), masses[1].Position.Y())
	assert.Equal(t, float32(0), masses[1].Velocity.Y())
}

func TestSimulation_GravityOff(t *testing.T) {
	settings := DefaultSettings()
	settings.GravityEnabled = false
	s := newTestSimulation(t, settings, triangleMesh(), newPackedMesh(12, 0, cubeCorners()...))

	before0, _ := s.Object(0)
	snapshot := before0.PointMasses()
	for i := 0; i < 100; i++ {
		s.Update()
	}
	assert.Equal(t, snapshot, before0.PointMasses())
}

func TestSimulation_Paused(t *testing.T) {
	settings := DefaultSettings()
	settings.Paused = true
	s := newTestSimulation(t, settings, triangleMesh())

	obj, _ := s.Object(0)
	snapshot := obj.PointMasses()
	tick := s.Tick()
	for i := 0; i < 10; i++ {
		assert.False(t, s.Update())
	}
	assert.Equal(t, snapshot, obj.PointMasses())
	assert.Equal(t, tick, s.Tick())

	s.Settings().TogglePaused()
	assert.True(t, s.Update())
	assert.NotEqual(t, snapshot, obj.PointMasses())
}

func TestSimulation_GroundClamp(t *testing.T) {
	s := newTestSimulation(t, DefaultSettings(), newPackedMesh(12, 0, cubeCorners()...))
	for i := 0; i < 600; i++ {
		s.Update()
	}
	obj, _ := s.Object(0)
	for _, pm := range obj.PointMasses() {
		assert.GreaterOrEqual(t, pm.Position.Y(), float32(0))
	}
}

func TestSimulation_Accessors(t *testing.T) {
	s := newTestSimulation(t, DefaultSettings(), triangleMesh(), newPackedMesh(12, 0, cubeCorners()...))

	assert.Equal(t, 2, s.ObjectCount())
	assert.Equal(t, 10, s.TotalPointMasses())
	assert.Equal(t, 10, s.Settings().Snapshot().PointMassCount)

	n, err := s.PointMassCount(1)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	remap, err := s.RemapTable(0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 1}, remap)
	remap[0] = 99
	again, _ := s.RemapTable(0)
	assert.Equal(t, 0, again[0], "remap table must not be mutable through the accessor")

	positions, err := s.PositionList(0)
	require.NoError(t, err)
	assert.Len(t, positions, 2)

	for _, idx := range []int{-1, 2, 100} {
		_, err = s.PositionList(idx)
		assert.True(t, errors.Is(err, ErrInvalidArgument), "PositionList(%d)", idx)
		_, err = s.RemapTable(idx)
		assert.True(t, errors.Is(err, ErrInvalidArgument), "RemapTable(%d)", idx)
		_, err = s.PointMassCount(idx)
		assert.True(t, errors.Is(err, ErrInvalidArgument), "PointMassCount(%d)", idx)
		_, err = s.ExpandPositions(idx, nil)
		assert.True(t, errors.Is(err, ErrInvalidArgument), "ExpandPositions(%d)", idx)
	}
}

func TestSimulation_Reset(t *testing.T) {
	s := newTestSimulation(t, DefaultSettings(), triangleMesh())
	for i := 0; i < 30; i++ {
		s.Update()
	}
	require.NoError(t, s.Reset())

	positions, err := s.PositionList(0)
	require.NoError(t, err)
	assert.Equal(t, []mgl32.Vec3{{0, 1, 0}, {1, 0, 0}}, positions)
}

func TestSimulation_Center(t *testing.T) {
	empty := NewSimulation(nil, nil)
	require.NoError(t, empty.Setup())
	_, err := empty.Center()
	assert.True(t, errors.Is(err, ErrNoPointMasses))

	s := newTestSimulation(t, DefaultSettings(), newPackedMesh(12, 0, cubeCorners()...))
	center, err := s.Center()
	require.NoError(t, err)
	assert.InDelta(t, 2.0, center.Y(), 1e-6)
}

func TestSettingsHandle(t *testing.T) {
	h := NewSettingsHandle(DefaultSettings())
	assert.False(t, h.ToggleGravity())
	assert.Equal(t, mgl32.Vec3{}, h.Snapshot().EffectiveGravity())
	assert.True(t, h.ToggleGravity())
	assert.Equal(t, mgl32.Vec3{0, -9.81, 0}, h.Snapshot().EffectiveGravity())
	assert.True(t, h.TogglePaused())
}
