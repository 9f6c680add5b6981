package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/softbody/rt/core"
	"github.com/gekko3d/softbody/rt/shaders"
)

const DepthFormat = wgpu.TextureFormatDepth32Float

// MainPass draws every mesh lit by the directional light and shadowed by the
// ShadowPass depth map. Positions come from the per-slot stream, normals from
// the static vertex buffer.
type MainPass struct {
	Device   *wgpu.Device
	Manager  *GpuBufferManager
	Pipeline *wgpu.RenderPipeline

	sceneGroup *wgpu.BindGroup
	depth      *wgpu.Texture
	depthView  *wgpu.TextureView
}

func NewMainPass(device *wgpu.Device, format wgpu.TextureFormat, manager *GpuBufferManager, shadow *ShadowPass, width, height uint32) (*MainPass, error) {
	p := &MainPass{Device: device, Manager: manager}

	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "MainShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.MainWGSL},
	})
	if err != nil {
		return nil, err
	}

	sceneLayout, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "SceneBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: CameraUniformSize,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: LightUniformSize,
				},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeDepth,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    3,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeComparison,
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{sceneLayout, manager.ModelLayout},
	})
	if err != nil {
		return nil, err
	}

	p.Pipeline, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "MainPipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				positionLayout(),
				{
					ArrayStride: uint64(core.VertexStride),
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{
							Format:         wgpu.VertexFormatFloat32x3,
							Offset:         uint64(core.VertexNormalOffset),
							ShaderLocation: 1,
						},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      keepStencil(),
			StencilBack:       keepStencil(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}

	p.sceneGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "SceneBG",
		Layout: sceneLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: manager.CameraBuf, Size: CameraUniformSize},
			{Binding: 1, Buffer: manager.LightBuf, Size: LightUniformSize},
			{Binding: 2, TextureView: shadow.View},
			{Binding: 3, Sampler: shadow.Sampler},
		},
	})
	if err != nil {
		return nil, err
	}

	if err := p.Resize(width, height); err != nil {
		return nil, err
	}
	return p, nil
}

// Resize recreates the depth attachment to match the surface.
func (p *MainPass) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return nil
	}
	p.releaseDepth()
	var err error
	p.depth, err = p.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "DepthBuffer",
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("depth buffer: %w", err)
	}
	p.depthView, err = p.depth.CreateView(nil)
	if err != nil {
		return fmt.Errorf("depth view: %w", err)
	}
	return nil
}

func (p *MainPass) Name() string { return "main" }

func (p *MainPass) Encode(ctx *FrameContext) error {
	pass := ctx.Encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "MainPass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       ctx.ColorView,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: ctx.ClearColor,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            p.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1,
		},
	})
	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, p.sceneGroup, nil)
	drawMeshes(pass, p.Manager.Meshes, ctx.Slot, true)
	return pass.End()
}

func (p *MainPass) releaseDepth() {
	if p.depthView != nil {
		p.depthView.Release()
		p.depthView = nil
	}
	if p.depth != nil {
		p.depth.Release()
		p.depth = nil
	}
}

func (p *MainPass) Release() {
	p.releaseDepth()
	if p.sceneGroup != nil {
		p.sceneGroup.Release()
	}
	if p.Pipeline != nil {
		p.Pipeline.Release()
	}
}
