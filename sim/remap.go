package sim

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ExpandPositions expands a reduced position list back to original vertex
// order. Slot i of the result holds positions[remap[i]] as three consecutive
// float32 values. dst is reused when it has enough capacity.
func ExpandPositions(dst []float32, positions []mgl32.Vec3, remap []int) ([]float32, error) {
	return expand(dst, len(positions), remap, func(i int) mgl32.Vec3 { return positions[i] })
}

func expandMasses(dst []float32, masses []PointMass, remap []int) ([]float32, error) {
	return expand(dst, len(masses), remap, func(i int) mgl32.Vec3 { return masses[i].Position })
}

// expand is the only remap loop; at is called with indices in [0, n).
func expand(dst []float32, n int, remap []int, at func(int) mgl32.Vec3) ([]float32, error) {
	dst = resizeFloats(dst, 3*len(remap))
	for i, idx := range remap {
		if idx < 0 || idx >= n {
			return dst[:0], fmt.Errorf("vertex %d maps to point mass %d of %d: %w", i, idx, n, ErrCorruptRemap)
		}
		p := at(idx)
		dst[3*i] = p[0]
		dst[3*i+1] = p[1]
		dst[3*i+2] = p[2]
	}
	return dst, nil
}

func resizeFloats(dst []float32, n int) []float32 {
	if cap(dst) < n {
		return make([]float32, n)
	}
	return dst[:n]
}
