package sim

import (
	"github.com/go-gl/mathgl/mgl32"
)

// PointMass is a single particle. Mass is stored but the integrator applies
// accelerations directly.
type PointMass struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Mass     float32
}

func NewPointMass(position mgl32.Vec3) PointMass {
	return PointMass{
		Position: position,
		Velocity: mgl32.Vec3{0, 0, 0},
		Mass:     1.0,
	}
}

// Integrate performs one semi-implicit Euler step: velocity first, then
// position from the new velocity.
func (p *PointMass) Integrate(dt float32, acceleration mgl32.Vec3) {
	p.Velocity = p.Velocity.Add(acceleration.Mul(dt))
	p.Position = p.Position.Add(p.Velocity.Mul(dt))
}

// ResolveGroundCollision clamps the mass onto the ground plane and kills its
// vertical velocity. Must run after Integrate.
func (p *PointMass) ResolveGroundCollision(groundHeight float32) {
	if p.Position[1] < groundHeight {
		p.Position[1] = groundHeight
		p.Velocity[1] = 0
	}
}
