package sim

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexLayout describes where the three float32 position components sit in
// each vertex record.
type VertexLayout struct {
	Stride         int
	PositionOffset int
}

// VertexSource is the capability a mesh must offer to be simulated: its vertex
// layout and a read-only view of the raw little-endian vertex bytes in
// original vertex order.
type VertexSource interface {
	VertexCount() int
	VertexLayout() VertexLayout
	VertexBytes() []byte
}

const positionSize = 3 * 4

// RestPositions decodes the rest-pose positions of src in vertex order.
func RestPositions(src VertexSource) ([]mgl32.Vec3, error) {
	count := src.VertexCount()
	layout := src.VertexLayout()
	data := src.VertexBytes()

	if count < 0 {
		return nil, fmt.Errorf("negative vertex count %d: %w", count, ErrInvalidArgument)
	}
	if layout.PositionOffset < 0 || layout.Stride < layout.PositionOffset+positionSize {
		return nil, fmt.Errorf("vertex layout stride=%d offset=%d cannot hold a float3 position: %w",
			layout.Stride, layout.PositionOffset, ErrInvalidArgument)
	}
	if count > 0 && len(data) < (count-1)*layout.Stride+layout.PositionOffset+positionSize {
		return nil, fmt.Errorf("vertex buffer has %d bytes, too small for %d vertices of stride %d: %w",
			len(data), count, layout.Stride, ErrInvalidArgument)
	}

	positions := make([]mgl32.Vec3, count)
	for i := 0; i < count; i++ {
		base := i*layout.Stride + layout.PositionOffset
		for c := 0; c < 3; c++ {
			bits := binary.LittleEndian.Uint32(data[base+c*4:])
			positions[i][c] = math.Float32frombits(bits)
		}
	}
	return positions, nil
}
