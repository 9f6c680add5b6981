package softbody

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	KeyA int = iota
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeySpace
	KeyEnter
	KeyEscape
	KeyTab
	KeyBackspace
	KeyInsert
	KeyDelete
	KeyRight
	KeyLeft
	KeyDown
	KeyUp
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyMinus
	KeyEqual
	KeyKPPlus
	KeyKPMinus
	KeyShift
	KeyControl
	KeyLeftAlt
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle
)

// InputModule polls keyboard and mouse each frame. With CaptureMouse the
// cursor starts trapped so mouse look works without pressing Tab.
type InputModule struct {
	CaptureMouse bool
}

// Input is polled once per frame. Pressed is the level state, JustPressed
// and JustReleased are edges for this frame only. Mouse motion and wheel
// deltas accumulate until taken.
type Input struct {
	Pressed [256]bool

	JustPressed  [256]bool
	JustReleased [256]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	ScrollX, ScrollY         float64
	MouseCaptured            bool

	WindowWidth, WindowHeight int

	cursorKnown bool
}

// Down reports whether key is held.
func (input *Input) Down(key int) bool {
	return input.Pressed[key]
}

// Clicked reports whether key went down this frame.
func (input *Input) Clicked(key int) bool {
	return input.JustPressed[key]
}

// TakeMouseDelta returns the motion since the last call and resets it.
func (input *Input) TakeMouseDelta() (dx, dy float64) {
	dx, dy = input.MouseDeltaX, input.MouseDeltaY
	input.MouseDeltaX, input.MouseDeltaY = 0, 0
	return dx, dy
}

// TakeScroll returns the wheel motion since the last call and resets it.
func (input *Input) TakeScroll() (dx, dy float64) {
	dx, dy = input.ScrollX, input.ScrollY
	input.ScrollX, input.ScrollY = 0, 0
	return dx, dy
}

func (input *Input) setKey(key int, down bool) {
	input.JustPressed[key] = down && !input.Pressed[key]
	input.JustReleased[key] = !down && input.Pressed[key]
	input.Pressed[key] = down
}

func (input *Input) moveCursor(x, y float64) {
	if input.MouseCaptured && input.cursorKnown {
		input.MouseDeltaX += x - input.MouseX
		input.MouseDeltaY += y - input.MouseY
	}
	input.MouseX, input.MouseY = x, y
	input.cursorKnown = true
}

func (input *Input) scroll(dx, dy float64) {
	input.ScrollX += dx
	input.ScrollY += dy
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	input := &Input{MouseCaptured: mod.CaptureMouse}
	cmd.AddResources(input)

	ws, ok := Resource[WindowState](app)
	if !ok || ws.windowGlfw == nil {
		app.Logger().Warnf("input: no window, keyboard and mouse are not polled")
		return
	}
	if input.MouseCaptured {
		ws.windowGlfw.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	}
	ws.windowGlfw.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		input.scroll(xoff, yoff)
	})
	cmd.UseSystem(System(inputSystem).InStage(PreUpdate))
}

func inputSystem(s *WindowState, input *Input) {
	glfw.PollEvents()

	for key, glfwKey := range keyToGlfw {
		input.setKey(key, s.windowGlfw.GetKey(glfwKey) == glfw.Press)
	}
	for btn, glfwBtn := range mouseToGlfw {
		input.setKey(btn, s.windowGlfw.GetMouseButton(glfwBtn) == glfw.Press)
	}

	if input.Clicked(KeyTab) {
		input.MouseCaptured = !input.MouseCaptured
		input.cursorKnown = false
		if input.MouseCaptured {
			s.windowGlfw.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
		} else {
			s.windowGlfw.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
		}
	}

	input.moveCursor(s.windowGlfw.GetCursorPos())
	input.WindowWidth, input.WindowHeight = s.WindowWidth, s.WindowHeight
}

var mouseToGlfw = map[int]glfw.MouseButton{
	MouseButtonLeft:   glfw.MouseButtonLeft,
	MouseButtonRight:  glfw.MouseButtonRight,
	MouseButtonMiddle: glfw.MouseButtonMiddle,
}

var keyToGlfw = map[int]glfw.Key{
	KeyA:         glfw.KeyA,
	KeyB:         glfw.KeyB,
	KeyC:         glfw.KeyC,
	KeyD:         glfw.KeyD,
	KeyE:         glfw.KeyE,
	KeyF:         glfw.KeyF,
	KeyG:         glfw.KeyG,
	KeyH:         glfw.KeyH,
	KeyI:         glfw.KeyI,
	KeyJ:         glfw.KeyJ,
	KeyK:         glfw.KeyK,
	KeyL:         glfw.KeyL,
	KeyM:         glfw.KeyM,
	KeyN:         glfw.KeyN,
	KeyO:         glfw.KeyO,
	KeyP:         glfw.KeyP,
	KeyQ:         glfw.KeyQ,
	KeyR:         glfw.KeyR,
	KeyS:         glfw.KeyS,
	KeyT:         glfw.KeyT,
	KeyU:         glfw.KeyU,
	KeyV:         glfw.KeyV,
	KeyW:         glfw.KeyW,
	KeyX:         glfw.KeyX,
	KeyY:         glfw.KeyY,
	KeyZ:         glfw.KeyZ,
	Key0:         glfw.Key0,
	Key1:         glfw.Key1,
	Key2:         glfw.Key2,
	Key3:         glfw.Key3,
	Key4:         glfw.Key4,
	Key5:         glfw.Key5,
	Key6:         glfw.Key6,
	Key7:         glfw.Key7,
	Key8:         glfw.Key8,
	Key9:         glfw.Key9,
	KeySpace:     glfw.KeySpace,
	KeyEnter:     glfw.KeyEnter,
	KeyEscape:    glfw.KeyEscape,
	KeyTab:       glfw.KeyTab,
	KeyBackspace: glfw.KeyBackspace,
	KeyInsert:    glfw.KeyInsert,
	KeyDelete:    glfw.KeyDelete,
	KeyRight:     glfw.KeyRight,
	KeyLeft:      glfw.KeyLeft,
	KeyDown:      glfw.KeyDown,
	KeyUp:        glfw.KeyUp,
	KeyF1:        glfw.KeyF1,
	KeyF2:        glfw.KeyF2,
	KeyF3:        glfw.KeyF3,
	KeyF4:        glfw.KeyF4,
	KeyF5:        glfw.KeyF5,
	KeyF6:        glfw.KeyF6,
	KeyF7:        glfw.KeyF7,
	KeyF8:        glfw.KeyF8,
	KeyF9:        glfw.KeyF9,
	KeyF10:       glfw.KeyF10,
	KeyF11:       glfw.KeyF11,
	KeyF12:       glfw.KeyF12,
	KeyMinus:     glfw.KeyMinus,
	KeyEqual:     glfw.KeyEqual,
	KeyKPPlus:    glfw.KeyKPAdd,
	KeyKPMinus:   glfw.KeyKPSubtract,
	KeyShift:     glfw.KeyLeftShift,
	KeyControl:   glfw.KeyLeftControl,
	KeyLeftAlt:   glfw.KeyLeftAlt,
}
