package softbody

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimRenderer(t *testing.T) {
	app := newApp()

	claimRenderer(app, "wgpu")
	claimRenderer(app, "wgpu")
	tag, ok := Resource[RendererTag](app)
	require.True(t, ok)
	assert.Equal(t, "wgpu", tag.Name)

	assert.PanicsWithValue(t, "multiple renderers installed: wgpu and other", func() {
		claimRenderer(app, "other")
	})
}
