package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	PitchLimit = 89.0

	DefaultCameraSpeed       = 1.5
	DefaultCameraSensitivity = 0.09
)

var (
	MinFOV = mgl32.DegToRad(15)
	MaxFOV = mgl32.DegToRad(90)

	worldUp = mgl32.Vec3{0, 1, 0}
)

// CameraUniforms matches the camera block in main.wgsl.
type CameraUniforms struct {
	View           mgl32.Mat4
	Projection     mgl32.Mat4
	ViewProjection mgl32.Mat4
}

// Camera is a free-fly camera. Yaw and pitch are in degrees, FOV in radians.
// Direction, Right and Up always form a right-handed orthonormal basis.
type Camera struct {
	position  mgl32.Vec3
	direction mgl32.Vec3
	up        mgl32.Vec3
	right     mgl32.Vec3

	fov         float32
	aspectRatio float32
	nearPlane   float32
	farPlane    float32

	Speed       float32
	Sensitivity float32
	velocity    mgl32.Vec3
	yaw         float32
	pitch       float32

	uniforms CameraUniforms
}

func NewCamera(position, direction mgl32.Vec3, fov, aspectRatio, nearPlane, farPlane float32) *Camera {
	c := &Camera{
		position:    position,
		fov:         mgl32.Clamp(fov, MinFOV, MaxFOV),
		aspectRatio: aspectRatio,
		nearPlane:   nearPlane,
		farPlane:    farPlane,
		Speed:       DefaultCameraSpeed,
		Sensitivity: DefaultCameraSensitivity,
		yaw:         90,
	}
	if direction.Len() > 0 {
		d := direction.Normalize()
		c.yaw = mgl32.RadToDeg(float32(math.Atan2(float64(d.Z()), float64(d.X()))))
		c.pitch = mgl32.RadToDeg(float32(math.Asin(float64(mgl32.Clamp(d.Y(), -1, 1)))))
	}
	c.pitch = mgl32.Clamp(c.pitch, -PitchLimit, PitchLimit)
	c.updateDirection()
	c.updateUniforms()
	return c
}

func (c *Camera) Position() mgl32.Vec3  { return c.position }
func (c *Camera) Direction() mgl32.Vec3 { return c.direction }
func (c *Camera) Right() mgl32.Vec3     { return c.right }
func (c *Camera) Up() mgl32.Vec3        { return c.up }
func (c *Camera) Velocity() mgl32.Vec3  { return c.velocity }
func (c *Camera) FOV() float32          { return c.fov }
func (c *Camera) Yaw() float32          { return c.yaw }
func (c *Camera) Pitch() float32        { return c.pitch }
func (c *Camera) AspectRatio() float32  { return c.aspectRatio }

func (c *Camera) Uniforms() CameraUniforms   { return c.uniforms }
func (c *Camera) View() mgl32.Mat4           { return c.uniforms.View }
func (c *Camera) Projection() mgl32.Mat4     { return c.uniforms.Projection }
func (c *Camera) ViewProjection() mgl32.Mat4 { return c.uniforms.ViewProjection }

// SetVelocity replaces the velocity. It is not accumulated, so a frame with no
// movement input stops the camera.
func (c *Camera) SetVelocity(v mgl32.Vec3) {
	c.velocity = v
}

func (c *Camera) SetProjection(fov, aspectRatio, nearPlane, farPlane float32) {
	c.fov = mgl32.Clamp(fov, MinFOV, MaxFOV)
	c.aspectRatio = aspectRatio
	c.nearPlane = nearPlane
	c.farPlane = farPlane
	c.updateUniforms()
}

func (c *Camera) SetAspectRatio(aspectRatio float32) {
	c.SetProjection(c.fov, aspectRatio, c.nearPlane, c.farPlane)
}

// AdjustOrientation applies a mouse delta to yaw and pitch.
func (c *Camera) AdjustOrientation(dx, dy float32) {
	c.yaw += dx * c.Sensitivity
	c.pitch = mgl32.Clamp(c.pitch+dy*c.Sensitivity, -PitchLimit, PitchLimit)
	c.updateDirection()
}

// AdjustFOV zooms by a wheel delta.
func (c *Camera) AdjustFOV(dy float32) {
	c.fov = mgl32.Clamp(c.fov+dy*c.Sensitivity, MinFOV, MaxFOV)
}

func (c *Camera) Update(dt float32) {
	c.position = c.position.Add(c.velocity.Mul(dt * c.Speed))
	c.updateUniforms()
}

func (c *Camera) updateDirection() {
	yaw := float64(mgl32.DegToRad(c.yaw))
	pitch := float64(mgl32.DegToRad(c.pitch))
	c.direction = mgl32.Vec3{
		float32(math.Cos(pitch) * math.Cos(yaw)),
		float32(math.Sin(pitch)),
		float32(math.Cos(pitch) * math.Sin(yaw)),
	}.Normalize()
	c.right = c.direction.Cross(worldUp).Normalize()
	c.up = c.right.Cross(c.direction).Normalize()
}

func (c *Camera) updateUniforms() {
	c.uniforms.View = mgl32.LookAtV(c.position, c.position.Add(c.direction), c.up)
	c.uniforms.Projection = PerspectiveRH(c.fov, c.aspectRatio, c.nearPlane, c.farPlane)
	c.uniforms.ViewProjection = c.uniforms.Projection.Mul4(c.uniforms.View)
}

// PerspectiveRH is a right-handed perspective projection with a [0,1] depth
// range as WebGPU expects.
func PerspectiveRH(fovy, aspect, near, far float32) mgl32.Mat4 {
	ys := 1 / float32(math.Tan(float64(fovy)*0.5))
	xs := ys / aspect
	zs := far / (near - far)
	return mgl32.Mat4{
		xs, 0, 0, 0,
		0, ys, 0, 0,
		0, 0, zs, -1,
		0, 0, near * zs, 0,
	}
}

// OrthoRH is a right-handed orthographic projection with a [0,1] depth range.
func OrthoRH(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	return mgl32.Mat4{
		2 / (right - left), 0, 0, 0,
		0, 2 / (top - bottom), 0, 0,
		0, 0, -1 / (far - near), 0,
		-(right + left) / (right - left), -(top + bottom) / (top - bottom), -near / (far - near), 1,
	}
}
