package core

import (
	"unsafe"

	"github.com/gekko3d/softbody/sim"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type MeshId string

func NewMeshId() MeshId {
	return MeshId(uuid.NewString())
}

// Vertex is padded to 16-byte lanes so the static buffer can be read as two
// vec3<f32> attributes at offsets 0 and 16.
type Vertex struct {
	Pos    [3]float32
	_      float32
	Normal [3]float32
	_      float32
}

const (
	VertexStride         = int(unsafe.Sizeof(Vertex{}))
	VertexPositionOffset = int(unsafe.Offsetof(Vertex{}.Pos))
	VertexNormalOffset   = int(unsafe.Offsetof(Vertex{}.Normal))
)

// Mesh is an indexed triangle list. It satisfies sim.VertexSource so the
// simulation can read rest positions straight out of the vertex bytes.
type Mesh struct {
	Id       MeshId
	Name     string
	Vertices []Vertex
	Indices  []uint32
	Color    [4]float32
	Model    Transform
	// Static meshes are drawn but never simulated.
	Static bool
}

func NewMesh(name string, vertices []Vertex, indices []uint32) *Mesh {
	return &Mesh{
		Id:       NewMeshId(),
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
		Color:    [4]float32{0.8, 0.8, 0.8, 1},
		Model:    *NewTransform(),
	}
}

func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

func (m *Mesh) VertexLayout() sim.VertexLayout {
	return sim.VertexLayout{Stride: VertexStride, PositionOffset: VertexPositionOffset}
}

func (m *Mesh) VertexBytes() []byte {
	if len(m.Vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&m.Vertices[0])), len(m.Vertices)*VertexStride)
}

func (m *Mesh) IndexBytes() []byte {
	if len(m.Indices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&m.Indices[0])), len(m.Indices)*4)
}

func (m *Mesh) IndexCount() int {
	return len(m.Indices)
}

func (m *Mesh) WithColor(r, g, b float32) *Mesh {
	m.Color = [4]float32{r, g, b, 1}
	return m
}

// Translate shifts the rest pose. Meshes are built in world space so the
// ground plane and gravity need no model transform.
func (m *Mesh) Translate(d mgl32.Vec3) *Mesh {
	for i := range m.Vertices {
		m.Vertices[i].Pos = mgl32.Vec3(m.Vertices[i].Pos).Add(d)
	}
	return m
}

func vtx(p, n [3]float32) Vertex {
	return Vertex{Pos: p, Normal: n}
}
