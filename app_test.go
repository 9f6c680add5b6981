package softbody

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func NewMockResource1(name string) *MockResource1 {
	return &MockResource1{name: name}
}
func NewMockResource2(name string) *MockResource2 {
	return &MockResource2{name: name}
}

func TestApp_changeState(t *testing.T) {
	app := &App{
		stateful:     true,
		initialState: 1,
		state:        1,
		finalState:   2,
	}

	app.changeState(2)
	assert.Equal(t, State(2), app.nextState)
	assert.True(t, app.stateTransitioning)

	app.executeChangeState(2)
	assert.Equal(t, State(2), app.state)
}

func TestApp_addResources(t *testing.T) {
	app := newApp()

	resource1 := NewMockResource1("Resource1")
	app.addResources(resource1)
	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem())

	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1)
	})

	resource2 := NewMockResource2("Resource2")
	app.addResources(resource2)
	got, ok := Resource[MockResource2](app)
	require.True(t, ok)
	assert.Same(t, resource2, got)

	assert.Panics(t, func() { app.addResources(MockResource1{}) })
}

func TestApp_SystemInjection(t *testing.T) {
	var seen *MockResource1
	var gotCommands bool
	app := NewAppBuilder().Build()
	app.addResources(NewMockResource1("injected"))
	app.UseSystem(System(func(r *MockResource1, cmd *Commands) {
		seen = r
		gotCommands = cmd != nil
		cmd.Quit()
	}))

	assert.False(t, app.Step())
	require.NotNil(t, seen)
	assert.Equal(t, "injected", seen.name)
	assert.True(t, gotCommands)
}

func TestApp_UnresolvedDependencyPanics(t *testing.T) {
	app := NewAppBuilder().Build()
	app.UseSystem(System(func(r *MockResource2) {}))

	assert.Panics(t, func() { app.Step() })
}

func TestApp_StageOrder(t *testing.T) {
	var order []string
	app := NewAppBuilder().Build()
	record := func(name string) func() {
		return func() { order = append(order, name) }
	}
	app.UseSystem(System(record("render")).InStage(Render))
	app.UseSystem(System(record("prelude")).InStage(Prelude))
	app.UseSystem(System(record("update")))
	custom := Stage{Name: "Physics"}
	app.UseStage(custom, AfterStage(Update))
	app.UseSystem(System(record("physics")).InStage(custom))
	app.UseSystem(System(func(cmd *Commands) { cmd.Quit() }).InStage(Finale))

	app.Run()

	assert.Equal(t, []string{"prelude", "update", "physics", "render"}, order)
	assert.Equal(t, uint64(1), app.Frame())
}

func TestApp_StatefulQuit(t *testing.T) {
	var entered, exited, frames int
	app := NewAppBuilder().UseStates(StateRunning, StateQuit).Build()
	app.UseSystem(System(func() { entered++ }).InState(OnEnter(StateRunning)))
	app.UseSystem(System(func() { exited++ }).InState(OnExit(StateRunning)))
	app.UseSystem(System(func(cmd *Commands) {
		frames++
		if frames == 3 {
			cmd.Quit()
		}
	}).InState(OnExecute(StateRunning)))

	app.Run()

	assert.Equal(t, 1, entered)
	assert.Equal(t, 1, exited)
	assert.Equal(t, 3, frames)
	assert.Equal(t, StateQuit, app.State())
	assert.False(t, app.Step())
}

func TestApp_StatefulSystemInStatelessAppPanics(t *testing.T) {
	app := NewAppBuilder().Build()
	assert.Panics(t, func() {
		app.UseSystem(System(func() {}).InState(OnEnter(StateRunning)))
	})
}

type closingResource struct {
	closed *[]string
	name   string
}

func (c *closingResource) Close() { *c.closed = append(*c.closed, c.name) }

type closingResource2 struct{ closingResource }

func TestApp_ShutdownClosesNewestFirst(t *testing.T) {
	var closed []string
	app := newApp()
	app.addResources(&closingResource{closed: &closed, name: "first"})
	app.addResources(&closingResource2{closingResource{closed: &closed, name: "second"}})
	app.addResources(NewMockResource1("not a closer"))

	app.Shutdown()

	assert.Equal(t, []string{"second", "first"}, closed)
}

func TestApp_LoggerFallback(t *testing.T) {
	var nilApp *App
	assert.NotNil(t, nilApp.Logger())
	assert.NotNil(t, newApp().Logger())

	app := NewAppBuilder().UseModule(LoggingModule{Prefix: "test", Debug: true}).Build()
	l := app.Logger()
	assert.True(t, l.DebugEnabled())
	l.SetDebug(false)
	assert.False(t, l.DebugEnabled())
}
