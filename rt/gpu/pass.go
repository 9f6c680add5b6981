package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// FrameContext carries the per-frame state a pass records into.
type FrameContext struct {
	Encoder    *wgpu.CommandEncoder
	ColorView  *wgpu.TextureView
	Slot       int
	ClearColor wgpu.Color
}

// RenderPass records one pass into the frame's command encoder.
type RenderPass interface {
	Name() string
	Encode(ctx *FrameContext) error
	Release()
}

// drawMeshes binds each mesh's model group and streams and issues its draw.
// normals selects whether the static vertex buffer is bound to slot 1.
func drawMeshes(pass *wgpu.RenderPassEncoder, meshes []*MeshBuffers, slot int, normals bool) {
	for _, b := range meshes {
		pass.SetBindGroup(1, b.ModelGroup, nil)
		pass.SetVertexBuffer(0, b.PositionBuffer(slot), 0, wgpu.WholeSize)
		if normals {
			pass.SetVertexBuffer(1, b.VertexBuf, 0, wgpu.WholeSize)
		}
		pass.SetIndexBuffer(b.IndexBuf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(b.IndexCount, 1, 0, 0, 0)
	}
}

func positionLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: PositionStride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{
				Format:         wgpu.VertexFormatFloat32x3,
				Offset:         0,
				ShaderLocation: 0,
			},
		},
	}
}

func keepStencil() wgpu.StencilFaceState {
	return wgpu.StencilFaceState{
		Compare:     wgpu.CompareFunctionAlways,
		FailOp:      wgpu.StencilOperationKeep,
		DepthFailOp: wgpu.StencilOperationKeep,
		PassOp:      wgpu.StencilOperationKeep,
	}
}
