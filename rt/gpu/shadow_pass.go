package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/softbody/rt/shaders"
)

const ShadowFormat = wgpu.TextureFormatDepth32Float

// ShadowPass renders every mesh's depth from the directional light.
type ShadowPass struct {
	Manager  *GpuBufferManager
	Size     uint32
	Texture  *wgpu.Texture
	View     *wgpu.TextureView
	Sampler  *wgpu.Sampler
	Pipeline *wgpu.RenderPipeline

	lightGroup *wgpu.BindGroup
}

func NewShadowPass(device *wgpu.Device, manager *GpuBufferManager, size uint32) (*ShadowPass, error) {
	p := &ShadowPass{Manager: manager, Size: size}

	var err error
	p.Texture, err = device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "ShadowMap",
		Size:          wgpu.Extent3D{Width: size, Height: size, DepthOrArrayLayers: 1},
		Format:        ShadowFormat,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("shadow map: %w", err)
	}
	p.View, err = p.Texture.CreateView(nil)
	if err != nil {
		return nil, fmt.Errorf("shadow map view: %w", err)
	}
	p.Sampler, err = device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   1,
		Compare:       wgpu.CompareFunctionLessEqual,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("shadow sampler: %w", err)
	}

	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "ShadowShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.ShadowWGSL},
	})
	if err != nil {
		return nil, err
	}
	lightLayout, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "ShadowLightBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: LightUniformSize,
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{lightLayout, manager.ModelLayout},
	})
	if err != nil {
		return nil, err
	}
	p.Pipeline, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "ShadowPipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{positionLayout()},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:              ShadowFormat,
			DepthWriteEnabled:   true,
			DepthCompare:        wgpu.CompareFunctionLess,
			StencilFront:        keepStencil(),
			StencilBack:         keepStencil(),
			DepthBias:           2,
			DepthBiasSlopeScale: 2,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}
	p.lightGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "ShadowLightBG",
		Layout: lightLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: manager.LightBuf, Size: LightUniformSize},
		},
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *ShadowPass) Name() string { return "shadow" }

func (p *ShadowPass) Encode(ctx *FrameContext) error {
	pass := ctx.Encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "ShadowPass",
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            p.View,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1,
		},
	})
	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, p.lightGroup, nil)
	drawMeshes(pass, p.Manager.Meshes, ctx.Slot, false)
	return pass.End()
}

func (p *ShadowPass) Release() {
	if p.lightGroup != nil {
		p.lightGroup.Release()
	}
	if p.Pipeline != nil {
		p.Pipeline.Release()
	}
	if p.Sampler != nil {
		p.Sampler.Release()
	}
	if p.View != nil {
		p.View.Release()
	}
	if p.Texture != nil {
		p.Texture.Release()
	}
}
