package world

import (
	"fmt"
	"math"
)

// Heightmap holds one surface height per column of a chunk, indexed z*Width+x.
type Heightmap struct {
	Width   int
	Heights []int
}

// NewHeightmap allocates a zeroed heightmap for a chunk of the given width.
func NewHeightmap(width int) Heightmap {
	return Heightmap{Width: width, Heights: make([]int, width*width)}
}

// At returns the height of column (x, z).
func (h Heightmap) At(x, z int) int {
	return h.Heights[z*h.Width+x]
}

// TerrainGenerator produces terrain for one chunk at a time. Implementations
// must be safe to call from build workers and may only write to the chunk
// they are handed.
type TerrainGenerator interface {
	// Heightmap computes the surface height of every column of the chunk at coord.
	Heightmap(coord ChunkCoord, width int) Heightmap
	// Fill writes solid material from y=0 up to (and including) the height of each column.
	Fill(c *Chunk, hm Heightmap)
}

// Layers names the materials a generator writes into a column.
type Layers struct {
	Surface    Material // top cell
	Subsurface Material // the SubsurfaceDepth cells below the top
	Base       Material // everything underneath
}

// SubsurfaceDepth is how many cells under the surface use Layers.Subsurface.
const SubsurfaceDepth = 3

// DefaultLayers is grass over dirt over stone.
var DefaultLayers = Layers{Surface: Grass, Subsurface: Dirt, Base: Stone}

// fillLayers writes the layered column stack for every column of hm.
func fillLayers(c *Chunk, hm Heightmap, layers Layers) {
	c.Populate(func(g *VoxelGrid) {
		for z := 0; z < hm.Width; z++ {
			for x := 0; x < hm.Width; x++ {
				top := hm.At(x, z)
				if top < 0 {
					continue
				}
				if top >= g.Height() {
					top = g.Height() - 1
				}
				for y := 0; y <= top; y++ {
					switch {
					case y == top:
						g.Set(x, y, z, layers.Surface)
					case y >= top-SubsurfaceDepth:
						g.Set(x, y, z, layers.Subsurface)
					default:
						g.Set(x, y, z, layers.Base)
					}
				}
			}
		}
	})
}

// NoiseGenerator samples octave value noise per column, normalizes it to
// [0,1], scales it to MaxHeight and truncates to an integer height.
type NoiseGenerator struct {
	noise     valueNoise
	scale     float64
	maxHeight int
	layers    Layers
}

// NoiseOptions tunes a NoiseGenerator. Zero fields take defaults.
type NoiseOptions struct {
	Scale       float64
	MaxHeight   int
	Octaves     int
	Persistence float64
	Lacunarity  float64
	Layers      Layers
}

// NewNoiseGenerator creates a generator with default settings for the given seed.
func NewNoiseGenerator(seed int64, opts NoiseOptions) *NoiseGenerator {
	g := &NoiseGenerator{
		noise:     valueNoise{seed: seed, octaves: 4, persistence: 0.5, lacunarity: 2.0},
		scale:     1.0 / 16.0,
		maxHeight: 16,
		layers:    DefaultLayers,
	}
	if opts.Scale > 0 {
		g.scale = opts.Scale
	}
	if opts.MaxHeight > 0 {
		g.maxHeight = opts.MaxHeight
	}
	if opts.Octaves > 0 {
		g.noise.octaves = opts.Octaves
	}
	if opts.Persistence > 0 {
		g.noise.persistence = opts.Persistence
	}
	if opts.Lacunarity > 0 {
		g.noise.lacunarity = opts.Lacunarity
	}
	if opts.Layers != (Layers{}) {
		g.layers = opts.Layers
	}
	return g
}

// HeightAt computes the surface height (block Y) at world X,Z.
func (g *NoiseGenerator) HeightAt(worldX, worldZ int) int {
	n := g.noise.At(float64(worldX)*g.scale, float64(worldZ)*g.scale)
	return int(math.Floor(n * float64(g.maxHeight)))
}

// Heightmap implements TerrainGenerator.
func (g *NoiseGenerator) Heightmap(coord ChunkCoord, width int) Heightmap {
	hm := NewHeightmap(width)
	for z := 0; z < width; z++ {
		for x := 0; x < width; x++ {
			hm.Heights[z*width+x] = g.HeightAt(coord.X*width+x, coord.Z*width+z)
		}
	}
	return hm
}

// Fill implements TerrainGenerator.
func (g *NoiseGenerator) Fill(c *Chunk, hm Heightmap) {
	fillLayers(c, hm, g.layers)
}

// FlatGenerator produces a constant-height world.
type FlatGenerator struct {
	height int
	layers Layers
}

// NewFlatGenerator creates a flat generator with its surface at height.
func NewFlatGenerator(height int) *FlatGenerator {
	return &FlatGenerator{height: height, layers: DefaultLayers}
}

// HeightAt returns the constant surface height.
func (g *FlatGenerator) HeightAt(_, _ int) int {
	return g.height
}

// Heightmap implements TerrainGenerator.
func (g *FlatGenerator) Heightmap(_ ChunkCoord, width int) Heightmap {
	hm := NewHeightmap(width)
	for i := range hm.Heights {
		hm.Heights[i] = g.height
	}
	return hm
}

// Fill implements TerrainGenerator.
func (g *FlatGenerator) Fill(c *Chunk, hm Heightmap) {
	fillLayers(c, hm, g.layers)
}

// Generator kinds accepted by NewGenerator.
const (
	KindNoise = "noise"
	KindFlat  = "flat"
)

// NewGenerator builds a generator by kind name.
func NewGenerator(kind string, seed int64, opts NoiseOptions) (TerrainGenerator, error) {
	switch kind {
	case "", KindNoise:
		return NewNoiseGenerator(seed, opts), nil
	case KindFlat:
		g := NewFlatGenerator(opts.MaxHeight / 2)
		if opts.Layers != (Layers{}) {
			g.layers = opts.Layers
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown generator %q", kind)
	}
}
