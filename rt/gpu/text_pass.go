package gpu

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/softbody/rt/core"
	"github.com/gekko3d/softbody/rt/shaders"
)

const textVertexHeadroom = 256

// TextPass overlays HUD labels on top of the main pass output.
type TextPass struct {
	Device   *wgpu.Device
	Renderer *core.TextRenderer
	Pipeline *wgpu.RenderPipeline

	atlas       *wgpu.Texture
	atlasView   *wgpu.TextureView
	sampler     *wgpu.Sampler
	group       *wgpu.BindGroup
	vertexBuf   *wgpu.Buffer
	vertexCap   int
	vertexCount uint32
	vertices    []core.TextVertex
}

func NewTextPass(device *wgpu.Device, format wgpu.TextureFormat, tr *core.TextRenderer) (*TextPass, error) {
	p := &TextPass{Device: device, Renderer: tr}

	w, h := tr.Atlas.Bounds().Dx(), tr.Atlas.Bounds().Dy()
	var err error
	p.atlas, err = device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "TextAtlas",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("text atlas: %w", err)
	}
	device.GetQueue().WriteTexture(p.atlas.AsImageCopy(), tr.Atlas.Pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(tr.Atlas.Stride),
		RowsPerImage: uint32(h),
	}, &wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1})

	p.atlasView, err = p.atlas.CreateView(nil)
	if err != nil {
		return nil, fmt.Errorf("text atlas view: %w", err)
	}
	p.sampler, err = device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		LodMaxClamp:   1,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("text sampler: %w", err)
	}

	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "TextShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.TextWGSL},
	})
	if err != nil {
		return nil, err
	}
	p.Pipeline, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "TextPipeline",
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(unsafe.Sizeof(core.TextVertex{})),
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format: format,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
				},
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}
	p.group, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "TextBG",
		Layout: p.Pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: p.atlasView},
			{Binding: 1, Sampler: p.sampler},
		},
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SetItems lays out the labels and uploads the quads, growing the vertex
// buffer when needed.
func (p *TextPass) SetItems(items []core.TextItem, screenW, screenH int) error {
	p.vertices = p.Renderer.Layout(p.vertices[:0], items, screenW, screenH)
	p.vertexCount = uint32(len(p.vertices))
	if len(p.vertices) == 0 {
		return nil
	}
	stride := int(unsafe.Sizeof(core.TextVertex{}))
	if p.vertexBuf == nil || p.vertexCap < len(p.vertices) {
		if p.vertexBuf != nil {
			p.vertexBuf.Release()
		}
		p.vertexCap = len(p.vertices) + textVertexHeadroom
		buf, err := p.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "TextVB",
			Size:  uint64(p.vertexCap * stride),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			p.vertexBuf, p.vertexCap, p.vertexCount = nil, 0, 0
			return fmt.Errorf("text vertex buffer: %w", err)
		}
		p.vertexBuf = buf
	}
	size := len(p.vertices) * stride
	p.Device.GetQueue().WriteBuffer(p.vertexBuf, 0, unsafe.Slice((*byte)(unsafe.Pointer(&p.vertices[0])), size))
	return nil
}

func (p *TextPass) Name() string { return "text" }

func (p *TextPass) Encode(ctx *FrameContext) error {
	if p.vertexCount == 0 || p.vertexBuf == nil {
		return nil
	}
	pass := ctx.Encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "TextPass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    ctx.ColorView,
			LoadOp:  wgpu.LoadOpLoad,
			StoreOp: wgpu.StoreOpStore,
		}},
	})
	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, p.group, nil)
	pass.SetVertexBuffer(0, p.vertexBuf, 0, wgpu.WholeSize)
	pass.Draw(p.vertexCount, 1, 0, 0)
	return pass.End()
}

func (p *TextPass) Release() {
	if p.vertexBuf != nil {
		p.vertexBuf.Release()
	}
	if p.group != nil {
		p.group.Release()
	}
	if p.Pipeline != nil {
		p.Pipeline.Release()
	}
	if p.sampler != nil {
		p.sampler.Release()
	}
	if p.atlasView != nil {
		p.atlasView.Release()
	}
	if p.atlas != nil {
		p.atlas.Release()
	}
}
