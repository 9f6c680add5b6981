package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// LightUniforms matches the light block shared by main.wgsl and shadow.wgsl.
type LightUniforms struct {
	ViewProjection mgl32.Mat4
	Direction      [4]float32 // xyz towards the light, w unused
	Color          [4]float32 // rgb, w ambient
}

// DirectionalLight casts the shadow map. The orthographic box is centred on
// Target, which follows the simulated objects.
type DirectionalLight struct {
	Direction mgl32.Vec3
	Color     mgl32.Vec3
	Ambient   float32
	Target    mgl32.Vec3
	Extent    float32
	Distance  float32
}

func NewDirectionalLight() *DirectionalLight {
	return &DirectionalLight{
		Direction: mgl32.Vec3{0.4, 1, 0.3}.Normalize(),
		Color:     mgl32.Vec3{1, 0.97, 0.9},
		Ambient:   0.25,
		Extent:    4,
		Distance:  10,
	}
}

func (l *DirectionalLight) Aim(target mgl32.Vec3) {
	l.Target = target
}

func (l *DirectionalLight) ViewProjection() mgl32.Mat4 {
	dir := l.Direction.Normalize()
	eye := l.Target.Add(dir.Mul(l.Distance))
	up := worldUp
	if abs32(dir.Dot(up)) > 0.99 {
		up = mgl32.Vec3{0, 0, 1}
	}
	view := mgl32.LookAtV(eye, l.Target, up)
	e := l.Extent
	proj := OrthoRH(-e, e, -e, e, 0.1, l.Distance*2)
	return proj.Mul4(view)
}

func (l *DirectionalLight) Uniforms() LightUniforms {
	d := l.Direction.Normalize()
	return LightUniforms{
		ViewProjection: l.ViewProjection(),
		Direction:      [4]float32{d.X(), d.Y(), d.Z(), 0},
		Color:          [4]float32{l.Color.X(), l.Color.Y(), l.Color.Z(), l.Ambient},
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
