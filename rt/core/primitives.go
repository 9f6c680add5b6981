package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// NewCube builds a cube with flat-shaded faces. Every corner is emitted once
// per adjacent face, so 24 vertices collapse to 8 point masses.
func NewCube(size float32, center mgl32.Vec3) *Mesh {
	h := size / 2
	normals := []mgl32.Vec3{
		{1, 0, 0}, {-1, 0, 0},
		{0, 1, 0}, {0, -1, 0},
		{0, 0, 1}, {0, 0, -1},
	}
	vertices := make([]Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, n := range normals {
		u := mgl32.Vec3{n.Y(), n.Z(), n.X()}
		v := n.Cross(u)
		base := uint32(len(vertices))
		for _, c := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := center.Add(n.Mul(h)).Add(u.Mul(c[0] * h)).Add(v.Mul(c[1] * h))
			vertices = append(vertices, vtx(p, n))
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return NewMesh("cube", vertices, indices)
}

// NewSphere builds a UV sphere. The seam column and both pole rows repeat
// positions, which the simulation welds.
func NewSphere(radius float32, rings, sectors int, center mgl32.Vec3) *Mesh {
	if rings < 2 {
		rings = 2
	}
	if sectors < 3 {
		sectors = 3
	}
	vertices := make([]Vertex, 0, (rings+1)*(sectors+1))
	for i := 0; i <= rings; i++ {
		phi := math.Pi * float64(i) / float64(rings)
		for j := 0; j <= sectors; j++ {
			theta := 2 * math.Pi * float64(j) / float64(sectors)
			n := mgl32.Vec3{
				float32(math.Sin(phi) * math.Cos(theta)),
				float32(math.Cos(phi)),
				float32(math.Sin(phi) * math.Sin(theta)),
			}
			vertices = append(vertices, vtx(center.Add(n.Mul(radius)), n))
		}
	}
	stride := uint32(sectors + 1)
	indices := make([]uint32, 0, rings*sectors*6)
	for i := 0; i < rings; i++ {
		for j := 0; j < sectors; j++ {
			k1 := uint32(i)*stride + uint32(j)
			k2 := k1 + stride
			if i != 0 {
				indices = append(indices, k1, k1+1, k2)
			}
			if i != rings-1 {
				indices = append(indices, k1+1, k2+1, k2)
			}
		}
	}
	return NewMesh("sphere", vertices, indices)
}

// NewClothGrid builds a horizontal sheet of segments x segments quads at the
// given height. Each quad owns its four corners.
func NewClothGrid(size float32, segments int, height float32) *Mesh {
	if segments < 1 {
		segments = 1
	}
	step := size / float32(segments)
	half := size / 2
	up := mgl32.Vec3{0, 1, 0}
	vertices := make([]Vertex, 0, segments*segments*4)
	indices := make([]uint32, 0, segments*segments*6)
	for i := 0; i < segments; i++ {
		for j := 0; j < segments; j++ {
			x0 := -half + float32(i)*step
			z0 := -half + float32(j)*step
			base := uint32(len(vertices))
			vertices = append(vertices,
				vtx(mgl32.Vec3{x0, height, z0}, up),
				vtx(mgl32.Vec3{x0, height, z0 + step}, up),
				vtx(mgl32.Vec3{x0 + step, height, z0 + step}, up),
				vtx(mgl32.Vec3{x0 + step, height, z0}, up),
			)
			indices = append(indices, base, base+1, base+2, base, base+2, base+3)
		}
	}
	return NewMesh("cloth", vertices, indices)
}

func NewTriangle() *Mesh {
	n := mgl32.Vec3{0, 0, 1}
	vertices := []Vertex{
		vtx(mgl32.Vec3{-0.5, -0.5, 0}, n),
		vtx(mgl32.Vec3{0.5, -0.5, 0}, n),
		vtx(mgl32.Vec3{0, 0.5, 0}, n),
	}
	return NewMesh("triangle", vertices, []uint32{0, 1, 2})
}

// NewGroundQuad builds the static floor at the given height.
func NewGroundQuad(size, height float32) *Mesh {
	m := NewClothGrid(size, 1, height)
	m.Name = "ground"
	m.Static = true
	m.Color = [4]float32{0.35, 0.37, 0.4, 1}
	return m
}
