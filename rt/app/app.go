package app

import (
	"errors"
	"fmt"

	"github.com/gekko3d/softbody/rt/core"
	"github.com/gekko3d/softbody/rt/gpu"
	"github.com/gekko3d/softbody/sim"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

var ErrNotInitialized = errors.New("renderer: not initialized")

type Options struct {
	FramesInFlight int
	ShadowMapSize  uint32
	ClearColor     [4]float64
	FontSize       float64
}

func DefaultOptions() Options {
	return Options{
		FramesInFlight: gpu.DefaultFramesInFlight,
		ShadowMapSize:  2048,
		ClearColor:     [4]float64{0.1, 0.12, 0.15, 1},
		FontSize:       18,
	}
}

// App owns the WebGPU device, the surface and every pass. All methods run on
// the thread that owns the window.
type App struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	Buffers *gpu.GpuBufferManager
	Shadow  *gpu.ShadowPass
	Main    *gpu.MainPass
	Text    *gpu.TextPass
	Passes  []gpu.RenderPass

	Profiler   *Profiler
	Options    Options
	TextItems  []core.TextItem
	ClearColor wgpu.Color

	LastRenderTime float64
	FrameCount     int
	FPS            float64
	FPSTime        float64
	SkippedFrames  int
}

func NewApp(window *glfw.Window, opts Options) *App {
	return &App{
		Window:   window,
		Options:  opts,
		Profiler: NewProfiler(),
		ClearColor: wgpu.Color{
			R: opts.ClearColor[0],
			G: opts.ClearColor[1],
			B: opts.ClearColor[2],
			A: opts.ClearColor[3],
		},
	}
}

func (a *App) Init() error {
	a.Instance = wgpu.CreateInstance(nil)
	a.Surface = a.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(a.Window))

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}
	a.Adapter = adapter

	a.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}
	a.Queue = a.Device.GetQueue()

	width, height := a.Window.GetFramebufferSize()
	caps := a.Surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		return errors.New("renderer: surface reports no formats")
	}
	a.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	a.Surface.Configure(adapter, a.Device, a.Config)

	a.Buffers, err = gpu.NewGpuBufferManager(a.Device, a.Options.FramesInFlight)
	if err != nil {
		return err
	}
	a.Shadow, err = gpu.NewShadowPass(a.Device, a.Buffers, a.Options.ShadowMapSize)
	if err != nil {
		return fmt.Errorf("shadow pass: %w", err)
	}
	a.Main, err = gpu.NewMainPass(a.Device, a.Config.Format, a.Buffers, a.Shadow, a.Config.Width, a.Config.Height)
	if err != nil {
		return fmt.Errorf("main pass: %w", err)
	}
	a.Passes = []gpu.RenderPass{a.Shadow, a.Main}

	tr, err := core.NewDefaultTextRenderer(a.Options.FontSize)
	if err != nil {
		return fmt.Errorf("text renderer: %w", err)
	}
	a.Text, err = gpu.NewTextPass(a.Device, a.Config.Format, tr)
	if err != nil {
		return fmt.Errorf("text pass: %w", err)
	}
	a.Passes = append(a.Passes, a.Text)
	return nil
}

func (a *App) Format() wgpu.TextureFormat {
	if a.Config == nil {
		return wgpu.TextureFormatUndefined
	}
	return a.Config.Format
}

func (a *App) AddMesh(mesh *core.Mesh, simIndex int) error {
	if a.Buffers == nil {
		return ErrNotInitialized
	}
	_, err := a.Buffers.AddMesh(mesh, simIndex)
	return err
}

func (a *App) Resize(w, h int) error {
	if w <= 0 || h <= 0 || a.Config == nil {
		return nil
	}
	a.Config.Width = uint32(w)
	a.Config.Height = uint32(h)
	a.Surface.Configure(a.Adapter, a.Device, a.Config)
	return a.Main.Resize(a.Config.Width, a.Config.Height)
}

func (a *App) ClearText() {
	a.TextItems = a.TextItems[:0]
}

func (a *App) DrawText(text string, x, y float32, scale float32, color [4]float32) {
	a.TextItems = append(a.TextItems, core.TextItem{
		Text:     text,
		Position: [2]float32{x, y},
		Scale:    scale,
		Color:    color,
	})
}

// Update writes the per-frame uniforms and HUD quads.
func (a *App) Update(cam *core.Camera, light *core.DirectionalLight) error {
	if a.Buffers == nil {
		return ErrNotInitialized
	}
	a.Buffers.UpdateCamera(cam)
	a.Buffers.UpdateLight(light)
	a.Buffers.UpdateModels()
	return a.Text.SetItems(a.TextItems, int(a.Config.Width), int(a.Config.Height))
}

// Render draws one frame. It returns false without drawing when every frame
// slot is still in flight on the GPU.
func (a *App) Render(s *sim.Simulation) (bool, error) {
	if a.Buffers == nil {
		return false, ErrNotInitialized
	}
	a.Device.Poll(false, nil)

	ring := a.Buffers.Ring
	slot, ok := ring.Acquire()
	if !ok {
		a.SkippedFrames++
		return false, nil
	}
	submitted := false
	defer func() {
		if !submitted {
			ring.Release(slot)
		}
	}()

	a.Profiler.BeginScope("upload")
	_, err := a.Buffers.UploadPositions(slot, s)
	a.Profiler.EndScope("upload")
	if err != nil {
		return false, err
	}

	a.Profiler.BeginScope("encode")
	nextTexture, err := a.Surface.GetCurrentTexture()
	if err != nil {
		return false, fmt.Errorf("get current texture: %w", err)
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		return false, fmt.Errorf("create view: %w", err)
	}
	defer view.Release()

	encoder, err := a.Device.CreateCommandEncoder(nil)
	if err != nil {
		return false, fmt.Errorf("create command encoder: %w", err)
	}
	ctx := &gpu.FrameContext{
		Encoder:    encoder,
		ColorView:  view,
		Slot:       slot,
		ClearColor: a.ClearColor,
	}
	for _, pass := range a.Passes {
		if err := pass.Encode(ctx); err != nil {
			return false, fmt.Errorf("%s pass: %w", pass.Name(), err)
		}
	}
	cmd, err := encoder.Finish(nil)
	if err != nil {
		return false, fmt.Errorf("encoder finish: %w", err)
	}
	a.Profiler.EndScope("encode")

	a.Profiler.BeginScope("present")
	a.Queue.Submit(cmd)
	submitted = true
	a.Queue.OnSubmittedWorkDone(func(wgpu.QueueWorkDoneStatus) {
		ring.Release(slot)
	})
	a.Surface.Present()
	a.Profiler.EndScope("present")
	a.Profiler.SetCount("in flight", ring.InFlight())

	now := glfw.GetTime()
	if a.LastRenderTime > 0 {
		a.FrameCount++
		a.FPSTime += now - a.LastRenderTime
		if a.FPSTime >= 1.0 {
			a.FPS = float64(a.FrameCount) / a.FPSTime
			a.FrameCount = 0
			a.FPSTime = 0
		}
	}
	a.LastRenderTime = now
	return true, nil
}

func (a *App) Release() {
	for _, p := range a.Passes {
		p.Release()
	}
	a.Passes = nil
	if a.Buffers != nil {
		a.Buffers.Release()
	}
	if a.Queue != nil {
		a.Queue.Release()
	}
	if a.Device != nil {
		a.Device.Release()
	}
	if a.Adapter != nil {
		a.Adapter.Release()
	}
	if a.Surface != nil {
		a.Surface.Release()
	}
	if a.Instance != nil {
		a.Instance.Release()
	}
}
