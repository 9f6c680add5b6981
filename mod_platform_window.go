package softbody

import (
	"fmt"
	"reflect"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

type WindowState struct {
	windowGlfw   *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string

	// Resized is set by the framebuffer callback and cleared at the end of
	// the frame, after the camera and renderer have seen it.
	Resized bool
}

func (s *WindowState) Window() *glfw.Window {
	return s.windowGlfw
}

func (s *WindowState) AspectRatio() float32 {
	if s.WindowHeight <= 0 {
		return 1
	}
	return float32(s.WindowWidth) / float32(s.WindowHeight)
}

func (s *WindowState) Close() {
	if s.windowGlfw != nil {
		s.windowGlfw.Destroy()
		s.windowGlfw = nil
	}
	glfw.Terminate()
}

func createWindowState(windowWidth int, windowHeight int, windowTitle string) (*WindowState, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}

	fbw, fbh := win.GetFramebufferSize()
	s := &WindowState{
		windowGlfw:   win,
		WindowWidth:  fbw,
		WindowHeight: fbh,
		windowTitle:  windowTitle,
	}
	win.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		s.WindowWidth = width
		s.WindowHeight = height
		s.Resized = true
	})
	return s, nil
}

// PlatformWindowModule creates the single GLFW window shared by input and the
// renderer. Install is a no-op when a WindowState already exists.
type PlatformWindowModule struct {
	Width  int
	Height int
	Title  string
}

func NewPlatformWindow(cfg WindowConfig) *PlatformWindowModule {
	m := &PlatformWindowModule{Width: cfg.Width, Height: cfg.Height, Title: cfg.Title}
	if m.Width <= 0 {
		m.Width = 1280
	}
	if m.Height <= 0 {
		m.Height = 720
	}
	if m.Title == "" {
		m.Title = "Soft Body"
	}
	return m
}

func (m PlatformWindowModule) Install(app *App, cmd *Commands) {
	if app.hasResource(reflect.TypeOf((*WindowState)(nil)).Elem()) {
		return
	}

	ws, err := createWindowState(m.Width, m.Height, m.Title)
	if err != nil {
		panic(err)
	}
	app.Logger().Infof("window %q %dx%d (framebuffer %dx%d)", m.Title, m.Width, m.Height, ws.WindowWidth, ws.WindowHeight)
	cmd.AddResources(ws)
	cmd.UseSystem(System(windowCloseSystem).InStage(PreUpdate))
	cmd.UseSystem(System(windowFrameEndSystem).InStage(PostRender))
}

func windowCloseSystem(s *WindowState, cmd *Commands) {
	if s.windowGlfw != nil && s.windowGlfw.ShouldClose() {
		cmd.Quit()
	}
}

func windowFrameEndSystem(s *WindowState) {
	s.Resized = false
}
