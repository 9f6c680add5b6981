package sim

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultWeldTolerance is the grid spacing used to decide that two rest
// positions coincide. Positions within the same grid cell share a point mass.
// Positions straddling a cell boundary may land in different cells even when
// closer than the tolerance.
const DefaultWeldTolerance float32 = 1e-3

// weldKey holds the rounded cell coordinates as float64 so that very small
// tolerances cannot overflow an integer cell index.
type weldKey [3]float64

func makeWeldKey(p mgl32.Vec3, tolerance float32) weldKey {
	inv := 1.0 / float64(tolerance)
	return weldKey{
		math.Round(float64(p[0]) * inv),
		math.Round(float64(p[1]) * inv),
		math.Round(float64(p[2]) * inv),
	}
}

// SimulationObject owns the reduced point-mass set of one mesh and the table
// mapping each original vertex to its point mass.
type SimulationObject struct {
	pointMasses []PointMass
	remapTable  []int
	vertexCount int
}

func NewSimulationObject() *SimulationObject {
	return &SimulationObject{}
}

// GeneratePointMasses rebuilds the object from the rest pose of src. Vertices
// whose positions quantize to the same tolerance cell are merged into one
// point mass; the remap table records the point mass of every vertex.
func (o *SimulationObject) GeneratePointMasses(src VertexSource, tolerance float32) error {
	if !(tolerance > 0) || math.IsInf(float64(tolerance), 1) {
		return fmt.Errorf("weld tolerance %v must be positive and finite: %w", tolerance, ErrInvalidArgument)
	}
	positions, err := RestPositions(src)
	if err != nil {
		return err
	}

	o.pointMasses = o.pointMasses[:0]
	o.remapTable = make([]int, 0, len(positions))
	o.vertexCount = len(positions)

	unique := make(map[weldKey]int, len(positions))
	for _, p := range positions {
		key := makeWeldKey(p, tolerance)
		idx, ok := unique[key]
		if !ok {
			idx = len(o.pointMasses)
			o.pointMasses = append(o.pointMasses, NewPointMass(p))
			unique[key] = idx
		}
		o.remapTable = append(o.remapTable, idx)
	}
	return nil
}

// Update integrates every point mass under gravity and then resolves the
// ground plane.
func (o *SimulationObject) Update(dt float32, gravity mgl32.Vec3, groundHeight float32) {
	for i := range o.pointMasses {
		p := &o.pointMasses[i]
		p.Integrate(dt, gravity)
		p.ResolveGroundCollision(groundHeight)
	}
}

// PositionList returns the current position of every point mass.
func (o *SimulationObject) PositionList() []mgl32.Vec3 {
	return o.AppendPositions(make([]mgl32.Vec3, 0, len(o.pointMasses)))
}

// AppendPositions appends the current point-mass positions to dst.
func (o *SimulationObject) AppendPositions(dst []mgl32.Vec3) []mgl32.Vec3 {
	for i := range o.pointMasses {
		dst = append(dst, o.pointMasses[i].Position)
	}
	return dst
}

// RemapTable returns a copy of the vertex to point-mass table.
func (o *SimulationObject) RemapTable() []int {
	out := make([]int, len(o.remapTable))
	copy(out, o.remapTable)
	return out
}

func (o *SimulationObject) PointMassCount() int {
	return len(o.pointMasses)
}

func (o *SimulationObject) VertexCount() int {
	return o.vertexCount
}

// PointMasses returns a snapshot of the point masses.
func (o *SimulationObject) PointMasses() []PointMass {
	out := make([]PointMass, len(o.pointMasses))
	copy(out, o.pointMasses)
	return out
}

// CalculateCenter returns the mean point-mass position.
func (o *SimulationObject) CalculateCenter() (mgl32.Vec3, error) {
	if len(o.pointMasses) == 0 {
		return mgl32.Vec3{}, ErrNoPointMasses
	}
	return o.positionSum().Mul(1.0 / float32(len(o.pointMasses))), nil
}

func (o *SimulationObject) positionSum() mgl32.Vec3 {
	var sum mgl32.Vec3
	for i := range o.pointMasses {
		sum = sum.Add(o.pointMasses[i].Position)
	}
	return sum
}

// ExpandInto writes the per-vertex position stream of the object into dst.
func (o *SimulationObject) ExpandInto(dst []float32) ([]float32, error) {
	return expandMasses(dst, o.pointMasses, o.remapTable)
}
