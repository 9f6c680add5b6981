package softbody

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInput_KeyEdges(t *testing.T) {
	input := &Input{}

	input.setKey(KeyP, true)
	assert.True(t, input.Down(KeyP))
	assert.True(t, input.Clicked(KeyP))

	input.setKey(KeyP, true)
	assert.True(t, input.Down(KeyP))
	assert.False(t, input.Clicked(KeyP))

	input.setKey(KeyP, false)
	assert.False(t, input.Down(KeyP))
	assert.True(t, input.JustReleased[KeyP])

	input.setKey(KeyP, false)
	assert.False(t, input.JustReleased[KeyP])
}

func TestInput_MouseDeltaOnlyWhenCaptured(t *testing.T) {
	input := &Input{}

	input.moveCursor(10, 10)
	input.moveCursor(20, 15)
	dx, dy := input.TakeMouseDelta()
	assert.Zero(t, dx)
	assert.Zero(t, dy)

	input.MouseCaptured = true
	input.moveCursor(25, 5)
	input.moveCursor(30, 0)
	dx, dy = input.TakeMouseDelta()
	assert.Equal(t, 10.0, dx)
	assert.Equal(t, -15.0, dy)

	dx, dy = input.TakeMouseDelta()
	assert.Zero(t, dx)
	assert.Zero(t, dy)
}

func TestInput_FirstCapturedSampleHasNoDelta(t *testing.T) {
	input := &Input{MouseCaptured: true}

	input.moveCursor(400, 300)
	dx, dy := input.TakeMouseDelta()

	assert.Zero(t, dx)
	assert.Zero(t, dy)
}

func TestInput_Scroll(t *testing.T) {
	input := &Input{}

	input.scroll(0, 1)
	input.scroll(0, 2)
	_, sy := input.TakeScroll()
	assert.Equal(t, 3.0, sy)

	_, sy = input.TakeScroll()
	assert.Zero(t, sy)
}

func TestInputModule_Headless(t *testing.T) {
	app := NewAppBuilder().UseModule(InputModule{}).Build()

	input, ok := Resource[Input](app)
	assert.True(t, ok)
	assert.False(t, input.MouseCaptured)
	assert.True(t, app.Step())
}

func TestInputModule_CaptureMouseAtStartup(t *testing.T) {
	app := NewAppBuilder().UseModule(InputModule{CaptureMouse: true}).Build()

	input, ok := Resource[Input](app)
	assert.True(t, ok)
	assert.True(t, input.MouseCaptured)

	input.moveCursor(100, 100)
	input.moveCursor(110, 90)
	dx, dy := input.TakeMouseDelta()
	assert.Equal(t, 10.0, dx)
	assert.Equal(t, -10.0, dy)
}
