package world

import (
	"math"
)

// valueNoise is seeded 2D value noise summed over octaves. Lattice points are
// hashed, so sampling is stateless and safe from any goroutine.
type valueNoise struct {
	seed        int64
	octaves     int
	persistence float64 // amplitude factor per octave
	lacunarity  float64 // frequency factor per octave
}

// mix64 is the SplitMix64 finalizer.
func mix64(v uint64) uint64 {
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	return v ^ (v >> 31)
}

// octaveSeed derives an independent seed for octave i.
func (n valueNoise) octaveSeed(i int) uint64 {
	return mix64(uint64(n.seed) + uint64(i+1)*0x9E3779B97F4A7C15)
}

// lattice maps the integer point (x,z) to [0,1] for the given octave seed.
func lattice(x, z int64, seed uint64) float64 {
	h := mix64(seed ^ uint64(x)*0x8CB92BA72F3D8DD7 ^ uint64(z)*0xC2B2AE3D27D4EB4F)
	return float64(h>>11) / float64(1<<53)
}

// smooth is the quintic fade 6t^5 - 15t^4 + 10t^3.
func smooth(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// sample interpolates the four lattice values around (x,z).
func sample(x, z float64, seed uint64) float64 {
	fx, fz := math.Floor(x), math.Floor(z)
	ix, iz := int64(fx), int64(fz)
	tx, tz := smooth(x-fx), smooth(z-fz)

	top := lerp(lattice(ix, iz, seed), lattice(ix+1, iz, seed), tx)
	bottom := lerp(lattice(ix, iz+1, seed), lattice(ix+1, iz+1, seed), tx)
	return lerp(top, bottom, tz)
}

// At returns the normalized octave sum at (x,z), in [0,1]. Zero octaves
// yield 0.
func (n valueNoise) At(x, z float64) float64 {
	var sum, norm float64
	amp, freq := 1.0, 1.0
	for i := range n.octaves {
		sum += amp * sample(x*freq, z*freq, n.octaveSeed(i))
		norm += amp
		amp *= n.persistence
		freq *= n.lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}
