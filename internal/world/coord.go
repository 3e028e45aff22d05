package world

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ChunkCoord is a position on the 2D chunk grid (not world units).
type ChunkCoord struct {
	X, Z int
}

// ChunkCoordAt converts a world-space position to the coordinate of the
// chunk containing it: floor(pos / width) on X and Z.
func ChunkCoordAt(pos mgl32.Vec3, width int) ChunkCoord {
	return ChunkCoord{
		X: floorDiv(int(math.Floor(float64(pos.X()))), width),
		Z: floorDiv(int(math.Floor(float64(pos.Z()))), width),
	}
}

// ChunkCoordOfBlock returns the chunk containing world block column (x, z)
// and the local coordinates of that column inside it.
func ChunkCoordOfBlock(x, z, width int) (ChunkCoord, int, int) {
	return ChunkCoord{X: floorDiv(x, width), Z: floorDiv(z, width)}, mod(x, width), mod(z, width)
}

// Offset returns the coordinate shifted by (dx, dz).
func (c ChunkCoord) Offset(dx, dz int) ChunkCoord {
	return ChunkCoord{X: c.X + dx, Z: c.Z + dz}
}

// Chebyshev returns the chessboard distance between two coordinates.
func (c ChunkCoord) Chebyshev(o ChunkCoord) int {
	return max(abs(c.X-o.X), abs(c.Z-o.Z))
}

// Origin returns the world-space position of the chunk's (0,0,0) corner.
func (c ChunkCoord) Origin(width int) mgl32.Vec3 {
	return mgl32.Vec3{float32(c.X * width), 0, float32(c.Z * width)}
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Z)
}

// floorDiv divides rounding towards negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// mod returns a non-negative remainder.
func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
