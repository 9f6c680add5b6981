package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func assertVecNear(t *testing.T, want, got mgl32.Vec3, eps float64) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], eps, "component %d of %v", i, got)
	}
}

func assertBasis(t *testing.T, c *Camera) {
	t.Helper()
	const eps = 1e-4
	assert.InDelta(t, 1, c.Direction().Len(), eps)
	assert.InDelta(t, 1, c.Right().Len(), eps)
	assert.InDelta(t, 1, c.Up().Len(), eps)
	assert.InDelta(t, 0, c.Direction().Dot(c.Right()), eps)
	assert.InDelta(t, 0, c.Direction().Dot(c.Up()), eps)
	assert.InDelta(t, 0, c.Right().Dot(c.Up()), eps)
	// right-handed: right x up == -direction
	assertVecNear(t, c.Direction().Mul(-1), c.Right().Cross(c.Up()), eps)
}

func TestCamera_DefaultFacesDirection(t *testing.T) {
	c := NewCamera(mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 0, 1}, mgl32.DegToRad(90), 16.0/9.0, 0.1, 100)

	assert.InDelta(t, 90, c.Yaw(), 1e-3)
	assert.InDelta(t, 0, c.Pitch(), 1e-3)
	assertVecNear(t, mgl32.Vec3{0, 0, 1}, c.Direction(), 1e-5)
	assertBasis(t, c)
}

func TestCamera_OrientationKeepsBasis(t *testing.T) {
	c := NewCamera(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, mgl32.DegToRad(60), 1, 0.1, 100)

	deltas := [][2]float32{{10, 3}, {-250, 40}, {3000, -9000}, {0.5, 0.25}, {-77, 1200}}
	for _, d := range deltas {
		c.AdjustOrientation(d[0], d[1])
		assertBasis(t, c)
		assert.LessOrEqual(t, c.Pitch(), float32(PitchLimit))
		assert.GreaterOrEqual(t, c.Pitch(), float32(-PitchLimit))
	}
}

func TestCamera_PitchClamped(t *testing.T) {
	c := NewCamera(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, mgl32.DegToRad(60), 1, 0.1, 100)

	c.AdjustOrientation(0, 1e6)
	assert.Equal(t, float32(PitchLimit), c.Pitch())

	c.AdjustOrientation(0, -1e6)
	assert.Equal(t, float32(-PitchLimit), c.Pitch())
	assertBasis(t, c)
}

func TestCamera_FOVClamped(t *testing.T) {
	c := NewCamera(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, mgl32.DegToRad(200), 1, 0.1, 100)
	assert.Equal(t, MaxFOV, c.FOV())

	c.AdjustFOV(-1e4)
	assert.Equal(t, MinFOV, c.FOV())

	c.AdjustFOV(1e4)
	assert.Equal(t, MaxFOV, c.FOV())
}

func TestCamera_VelocityReplacedNotAccumulated(t *testing.T) {
	c := NewCamera(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, mgl32.DegToRad(60), 1, 0.1, 100)
	c.Speed = 2

	c.SetVelocity(mgl32.Vec3{1, 0, 0})
	c.SetVelocity(mgl32.Vec3{0, 0, 1})
	c.Update(0.5)

	assertVecNear(t, mgl32.Vec3{0, 0, 1}, c.Position(), 1e-6)

	c.SetVelocity(mgl32.Vec3{})
	c.Update(1)
	assertVecNear(t, mgl32.Vec3{0, 0, 1}, c.Position(), 1e-6)
}

func TestPerspectiveRH_DepthRange(t *testing.T) {
	near, far := float32(0.1), float32(100)
	p := PerspectiveRH(mgl32.DegToRad(90), 1, near, far)

	nearClip := p.Mul4x1(mgl32.Vec4{0, 0, -near, 1})
	farClip := p.Mul4x1(mgl32.Vec4{0, 0, -far, 1})

	assert.InDelta(t, 0, nearClip.Z()/nearClip.W(), 1e-5)
	assert.InDelta(t, 1, farClip.Z()/farClip.W(), 1e-5)
}

func TestOrthoRH_DepthRange(t *testing.T) {
	o := OrthoRH(-1, 1, -1, 1, 0.5, 10)

	assert.InDelta(t, 0, o.Mul4x1(mgl32.Vec4{0, 0, -0.5, 1}).Z(), 1e-6)
	assert.InDelta(t, 1, o.Mul4x1(mgl32.Vec4{0, 0, -10, 1}).Z(), 1e-6)
}

func TestCamera_ViewProjectionTracksPosition(t *testing.T) {
	c := NewCamera(mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 0, 1}, mgl32.DegToRad(90), 1, 0.1, 100)

	ahead := c.ViewProjection().Mul4x1(mgl32.Vec4{0, 0, 5, 1})
	assert.InDelta(t, 0, ahead.X()/ahead.W(), 1e-5)
	assert.InDelta(t, 0, ahead.Y()/ahead.W(), 1e-5)
	assert.Greater(t, ahead.W(), float32(0))

	behind := c.ViewProjection().Mul4x1(mgl32.Vec4{0, 0, -5, 1})
	assert.Less(t, behind.W(), float32(0))
}
