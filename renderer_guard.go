package softbody

import (
	"fmt"
)

// RendererTag records which renderer owns the window surface.
type RendererTag struct {
	Name string
}

// claimRenderer installs the tag for name. A second, different renderer
// panics since both would configure the same surface.
func claimRenderer(app *App, name string) {
	if tag, ok := Resource[RendererTag](app); ok {
		if tag.Name != name {
			app.Logger().Errorf("multiple renderers installed: %s and %s", tag.Name, name)
			panic(fmt.Sprintf("multiple renderers installed: %s and %s", tag.Name, name))
		}
		return
	}
	app.addResources(&RendererTag{Name: name})
}
