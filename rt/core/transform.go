package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform places a mesh in world space. Simulated positions are in object
// space, so the same transform applies to the dynamic position stream.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewTransform() *Transform {
	return &Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Matrix returns T * R * S.
func (t Transform) Matrix() mgl32.Mat4 {
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return translate.Mul4(t.Rotation.Mat4()).Mul4(scale)
}

// Inverse builds inv(S) * inv(R) * inv(T) from the components.
func (t Transform) Inverse() mgl32.Mat4 {
	invScale := mgl32.Scale3D(1/t.Scale.X(), 1/t.Scale.Y(), 1/t.Scale.Z())
	invTranslate := mgl32.Translate3D(-t.Position.X(), -t.Position.Y(), -t.Position.Z())
	return invScale.Mul4(t.Rotation.Conjugate().Mat4()).Mul4(invTranslate)
}

// NormalMatrix is the inverse transpose of the model matrix, padded to a mat4
// for uniform alignment.
func (t Transform) NormalMatrix() mgl32.Mat4 {
	return t.Inverse().Transpose()
}

func (t Transform) Apply(p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.TransformCoordinate(p, t.Matrix())
}
