package gpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/gekko3d/softbody/rt/core"
	"github.com/gekko3d/softbody/sim"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/cogentcore/webgpu/wgpu"
)

const (
	CameraUniformSize = 256
	LightUniformSize  = 128
	ModelUniformSize  = 256

	// PositionStride is one float32x3 entry of the dynamic position stream.
	PositionStride = 12
)

// MeshBuffers holds everything the passes need to draw one mesh. Simulated
// meshes own one position buffer per frame slot; static meshes own one.
type MeshBuffers struct {
	Mesh     *core.Mesh
	SimIndex int

	VertexBuf    *wgpu.Buffer
	IndexBuf     *wgpu.Buffer
	PositionBufs []*wgpu.Buffer
	ModelBuf     *wgpu.Buffer
	ModelGroup   *wgpu.BindGroup
	IndexCount   uint32
}

func (b *MeshBuffers) Simulated() bool {
	return b.SimIndex >= 0
}

func (b *MeshBuffers) PositionBuffer(slot int) *wgpu.Buffer {
	if slot < 0 {
		slot = 0
	}
	return b.PositionBufs[slot%len(b.PositionBufs)]
}

type GpuBufferManager struct {
	Device *wgpu.Device
	Ring   *FrameRing

	CameraBuf *wgpu.Buffer
	LightBuf  *wgpu.Buffer

	ModelLayout *wgpu.BindGroupLayout
	Meshes      []*MeshBuffers

	scratch []float32
}

func NewGpuBufferManager(device *wgpu.Device, framesInFlight int) (*GpuBufferManager, error) {
	m := &GpuBufferManager{
		Device: device,
		Ring:   NewFrameRing(framesInFlight),
	}
	if err := m.ensureBuffer("CameraUB", &m.CameraBuf, CameraUniformSize, wgpu.BufferUsageUniform); err != nil {
		return nil, err
	}
	if err := m.ensureBuffer("LightUB", &m.LightBuf, LightUniformSize, wgpu.BufferUsageUniform); err != nil {
		return nil, err
	}
	layout, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "ModelBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: ModelUniformSize,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("model bind group layout: %w", err)
	}
	m.ModelLayout = layout
	return m, nil
}

// ensureBuffer creates buf, or replaces it when it is smaller than size.
func (m *GpuBufferManager) ensureBuffer(name string, buf **wgpu.Buffer, size uint64, usage wgpu.BufferUsage) error {
	if size%4 != 0 {
		size += 4 - size%4
	}
	current := *buf
	if current != nil && current.GetSize() >= size {
		return nil
	}
	if current != nil {
		current.Release()
	}
	newBuf, err := m.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: name,
		Size:  size,
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	*buf = newBuf
	return nil
}

// AddMesh uploads the static vertex and index data and allocates the position
// stream. simIndex is the mesh's index in the Simulation, or -1 for meshes
// that are only drawn.
func (m *GpuBufferManager) AddMesh(mesh *core.Mesh, simIndex int) (*MeshBuffers, error) {
	if mesh.VertexCount() == 0 || mesh.IndexCount() == 0 {
		return nil, fmt.Errorf("mesh %q: %w", mesh.Name, sim.ErrInvalidArgument)
	}
	b := &MeshBuffers{
		Mesh:       mesh,
		SimIndex:   simIndex,
		IndexCount: uint32(mesh.IndexCount()),
	}
	queue := m.Device.GetQueue()

	vertexBytes := mesh.VertexBytes()
	if err := m.ensureBuffer(mesh.Name+"VB", &b.VertexBuf, uint64(len(vertexBytes)), wgpu.BufferUsageVertex); err != nil {
		return nil, err
	}
	queue.WriteBuffer(b.VertexBuf, 0, vertexBytes)

	indexBytes := mesh.IndexBytes()
	if err := m.ensureBuffer(mesh.Name+"IB", &b.IndexBuf, uint64(len(indexBytes)), wgpu.BufferUsageIndex); err != nil {
		return nil, err
	}
	queue.WriteBuffer(b.IndexBuf, 0, indexBytes)

	slots := 1
	if simIndex >= 0 {
		slots = m.Ring.Len()
	}
	posSize := uint64(mesh.VertexCount() * PositionStride)
	b.PositionBufs = make([]*wgpu.Buffer, slots)
	for i := range b.PositionBufs {
		if err := m.ensureBuffer(fmt.Sprintf("%sPositions%d", mesh.Name, i), &b.PositionBufs[i], posSize, wgpu.BufferUsageVertex); err != nil {
			return nil, err
		}
	}
	rest, err := sim.RestPositions(mesh)
	if err != nil {
		return nil, fmt.Errorf("mesh %q: %w", mesh.Name, err)
	}
	restBytes := Float32Bytes(flattenVec3(nil, rest))
	for _, buf := range b.PositionBufs {
		queue.WriteBuffer(buf, 0, restBytes)
	}

	if err := m.ensureBuffer(mesh.Name+"ModelUB", &b.ModelBuf, ModelUniformSize, wgpu.BufferUsageUniform); err != nil {
		return nil, err
	}
	queue.WriteBuffer(b.ModelBuf, 0, PackModelUniforms(mesh.Model, mesh.Color))
	b.ModelGroup, err = m.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  mesh.Name + "ModelBG",
		Layout: m.ModelLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.ModelBuf, Size: ModelUniformSize},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mesh %q model bind group: %w", mesh.Name, err)
	}

	m.Meshes = append(m.Meshes, b)
	m.Ring.Invalidate()
	return b, nil
}

func (m *GpuBufferManager) UpdateCamera(cam *core.Camera) {
	m.Device.GetQueue().WriteBuffer(m.CameraBuf, 0, PackCameraUniforms(cam.Uniforms(), cam.Position()))
}

func (m *GpuBufferManager) UpdateLight(light *core.DirectionalLight) {
	m.Device.GetQueue().WriteBuffer(m.LightBuf, 0, PackLightUniforms(light.Uniforms()))
}

// UpdateModels rewrites every mesh's model uniform from its transform.
func (m *GpuBufferManager) UpdateModels() {
	queue := m.Device.GetQueue()
	for _, b := range m.Meshes {
		queue.WriteBuffer(b.ModelBuf, 0, PackModelUniforms(b.Mesh.Model, b.Mesh.Color))
	}
}

// UploadPositions expands each simulated mesh's point masses into the slot's
// position buffers. It does nothing when the slot already holds the current
// simulation tick, which is the case for every frame after the first while
// paused.
func (m *GpuBufferManager) UploadPositions(slot int, s *sim.Simulation) (bool, error) {
	tick := s.Tick()
	if m.Ring.IsCurrent(slot, tick) {
		return false, nil
	}
	queue := m.Device.GetQueue()
	for _, b := range m.Meshes {
		if !b.Simulated() {
			continue
		}
		var err error
		m.scratch, err = s.ExpandPositions(b.SimIndex, m.scratch)
		if err != nil {
			return false, fmt.Errorf("upload %q: %w", b.Mesh.Name, err)
		}
		queue.WriteBuffer(b.PositionBuffer(slot), 0, Float32Bytes(m.scratch))
	}
	m.Ring.MarkUploaded(slot, tick)
	return true, nil
}

func (m *GpuBufferManager) Release() {
	for _, b := range m.Meshes {
		if b.ModelGroup != nil {
			b.ModelGroup.Release()
		}
		for _, buf := range []*wgpu.Buffer{b.VertexBuf, b.IndexBuf, b.ModelBuf} {
			if buf != nil {
				buf.Release()
			}
		}
		for _, buf := range b.PositionBufs {
			if buf != nil {
				buf.Release()
			}
		}
	}
	m.Meshes = nil
	if m.ModelLayout != nil {
		m.ModelLayout.Release()
	}
	if m.CameraBuf != nil {
		m.CameraBuf.Release()
	}
	if m.LightBuf != nil {
		m.LightBuf.Release()
	}
}

// PackCameraUniforms lays out
//
//	view_proj: mat4x4<f32>  0
//	view:      mat4x4<f32>  64
//	proj:      mat4x4<f32>  128
//	position:  vec4<f32>    192
func PackCameraUniforms(u core.CameraUniforms, position mgl32.Vec3) []byte {
	buf := make([]byte, CameraUniformSize)
	putMat4(buf, 0, u.ViewProjection)
	putMat4(buf, 64, u.View)
	putMat4(buf, 128, u.Projection)
	putVec4(buf, 192, [4]float32{position.X(), position.Y(), position.Z(), 1})
	return buf
}

// PackLightUniforms lays out
//
//	view_proj: mat4x4<f32>  0
//	direction: vec4<f32>    64
//	color:     vec4<f32>    80
func PackLightUniforms(u core.LightUniforms) []byte {
	buf := make([]byte, LightUniformSize)
	putMat4(buf, 0, u.ViewProjection)
	putVec4(buf, 64, u.Direction)
	putVec4(buf, 80, u.Color)
	return buf
}

// PackModelUniforms lays out
//
//	model:  mat4x4<f32>  0
//	normal: mat4x4<f32>  64
//	color:  vec4<f32>    128
func PackModelUniforms(t core.Transform, color [4]float32) []byte {
	buf := make([]byte, ModelUniformSize)
	putMat4(buf, 0, t.Matrix())
	putMat4(buf, 64, t.NormalMatrix())
	putVec4(buf, 128, color)
	return buf
}

func putMat4(buf []byte, offset int, mat mgl32.Mat4) {
	for i, v := range mat {
		binary.LittleEndian.PutUint32(buf[offset+i*4:], math.Float32bits(v))
	}
}

func putVec4(buf []byte, offset int, v [4]float32) {
	for i, c := range v {
		binary.LittleEndian.PutUint32(buf[offset+i*4:], math.Float32bits(c))
	}
}

// Float32Bytes views v as raw bytes without copying.
func Float32Bytes(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}

func flattenVec3(dst []float32, v []mgl32.Vec3) []float32 {
	for _, p := range v {
		dst = append(dst, p[0], p[1], p[2])
	}
	return dst
}
