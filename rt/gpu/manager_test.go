package gpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gekko3d/softbody/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFloat(buf []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
}

func TestPackCameraUniforms(t *testing.T) {
	cam := core.NewCamera(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{0, 0, 1}, mgl32.DegToRad(60), 1, 0.1, 100)
	buf := PackCameraUniforms(cam.Uniforms(), cam.Position())

	require.Len(t, buf, CameraUniformSize)
	vp := cam.ViewProjection()
	for i := 0; i < 16; i++ {
		assert.Equal(t, vp[i], readFloat(buf, i*4))
	}
	assert.Equal(t, cam.View()[5], readFloat(buf, 64+5*4))
	assert.Equal(t, cam.Projection()[10], readFloat(buf, 128+10*4))
	assert.Equal(t, float32(1), readFloat(buf, 192))
	assert.Equal(t, float32(2), readFloat(buf, 196))
	assert.Equal(t, float32(3), readFloat(buf, 200))
	assert.Equal(t, float32(1), readFloat(buf, 204))
}

func TestPackLightUniforms(t *testing.T) {
	light := core.NewDirectionalLight()
	light.Ambient = 0.5
	buf := PackLightUniforms(light.Uniforms())

	require.Len(t, buf, LightUniformSize)
	d := light.Direction.Normalize()
	assert.Equal(t, d.X(), readFloat(buf, 64))
	assert.Equal(t, d.Y(), readFloat(buf, 68))
	assert.Equal(t, float32(0.5), readFloat(buf, 92))
}

func TestPackModelUniforms(t *testing.T) {
	tr := core.NewTransform()
	tr.Position = mgl32.Vec3{4, 5, 6}
	buf := PackModelUniforms(*tr, [4]float32{0.1, 0.2, 0.3, 1})

	require.Len(t, buf, ModelUniformSize)
	// translation column of the model matrix
	assert.Equal(t, float32(4), readFloat(buf, 48))
	assert.Equal(t, float32(5), readFloat(buf, 52))
	assert.Equal(t, float32(6), readFloat(buf, 56))
	assert.Equal(t, float32(0.2), readFloat(buf, 132))
}

func TestFloat32Bytes(t *testing.T) {
	assert.Nil(t, Float32Bytes(nil))

	v := []float32{1.5, -2, 3}
	b := Float32Bytes(v)
	require.Len(t, b, 12)
	assert.Equal(t, float32(-2), readFloat(b, 4))
}

func TestFlattenVec3(t *testing.T) {
	got := flattenVec3(nil, []mgl32.Vec3{{1, 2, 3}, {4, 5, 6}})
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, got)
}
