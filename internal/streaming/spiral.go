package streaming

import "sync"

// Step is one offset of the streaming spiral, relative to the center chunk.
type Step struct {
	DX, DZ int
	// Border marks the outer ring at distance radius+1. Chunks there are
	// unloaded so the working set stays (2R+1)^2 chunks.
	Border bool
}

var spiralCache sync.Map // int -> []Step

// Spiral returns the visiting order of a square of side 2R+3 centered on
// the origin. The walk starts at (0,0) heading (0,-1) and turns left on the
// diagonals, so nearer chunks always come first. The result is cached and
// shared; callers must not modify it.
func Spiral(radius int) []Step {
	if radius < 0 {
		radius = 0
	}
	if v, ok := spiralCache.Load(radius); ok {
		return v.([]Step)
	}
	v, _ := spiralCache.LoadOrStore(radius, buildSpiral(radius))
	return v.([]Step)
}

func buildSpiral(radius int) []Step {
	side := 2*radius + 3
	border := radius + 1
	steps := make([]Step, 0, side*side)

	x, z := 0, 0
	dx, dz := 0, -1
	for i := 0; i < side*side; i++ {
		// -side/2 < x <= side/2, kept in integers
		if 2*x > -side && 2*x <= side && 2*z > -side && 2*z <= side {
			steps = append(steps, Step{
				DX:     x,
				DZ:     z,
				Border: abs(x) == border || abs(z) == border,
			})
		}
		if x == z || (x < 0 && x == -z) || (x > 0 && x == 1-z) {
			dx, dz = -dz, dx
		}
		x += dx
		z += dz
	}
	return steps
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
