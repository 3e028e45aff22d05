package world

import (
	"fmt"
	"sync"
)

// Chunk is one column of the world, addressed by its 2D chunk coordinate.
// All access to the voxel grid goes through the chunk so writes are
// serialized and the mesher only ever sees consistent snapshots.
type Chunk struct {
	coord ChunkCoord

	mu        sync.Mutex
	grid      *VoxelGrid
	version   uint64 // bumped on every mutation
	dirty     bool
	generated bool
	// edits made before terrain exists, replayed over the fill
	pending map[int]Material

	genMu sync.Mutex
}

// NewChunk creates an empty (all air) chunk. New chunks start dirty and
// without terrain.
func NewChunk(coord ChunkCoord, width, height int) *Chunk {
	return &Chunk{
		coord: coord,
		grid:  NewVoxelGrid(width, height),
		dirty: true,
	}
}

// Coord returns the chunk coordinate.
func (c *Chunk) Coord() ChunkCoord {
	return c.coord
}

// Width returns the chunk size along X and Z.
func (c *Chunk) Width() int {
	return c.grid.Width()
}

// Height returns the chunk size along Y.
func (c *Chunk) Height() int {
	return c.grid.Height()
}

// Block returns the material at local coordinates (Air when out of range).
func (c *Chunk) Block(x, y, z int) Material {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.grid.At(x, y, z)
}

// SetBlock writes a material at local coordinates. When the cell changes the
// chunk becomes dirty, including while a build for it is in flight, so the
// follow-up rebuild is never lost. Before terrain is generated every write
// pins its cell: the terrain fill will not overwrite it.
func (c *Chunk) SetBlock(x, y, z int, m Material) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.generated {
		i, ok := c.grid.Index(x, y, z)
		if !ok {
			return false
		}
		if prev, pinned := c.pending[i]; pinned && prev == m {
			return false
		}
		if c.pending == nil {
			c.pending = make(map[int]Material)
		}
		c.pending[i] = m
		c.grid.blocks[i] = m
	} else if !c.grid.Set(x, y, z, m) {
		return false
	}
	c.version++
	c.dirty = true
	return true
}

// Populate applies a bulk mutation under the chunk lock. It is meant for terrain
// generators running inside a build: the version moves forward but the dirty
// flag is left alone because the running build meshes the result anyway.
func (c *Chunk) Populate(fn func(g *VoxelGrid)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.grid)
	c.version++
}

// Snapshot returns a private copy of the grid and the version it reflects.
func (c *Chunk) Snapshot() (*VoxelGrid, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.grid.Clone(), c.version
}

// Version returns the current mutation counter.
func (c *Chunk) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// IsDirty returns whether the chunk mesh is stale.
func (c *Chunk) IsDirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// MarkDirty flags the chunk for another build.
func (c *Chunk) MarkDirty() {
	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
}

// TakeDirty clears the dirty flag and reports whether it was set.
func (c *Chunk) TakeDirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.dirty
	c.dirty = false
	return d
}

// IsGenerated reports whether terrain has been filled.
func (c *Chunk) IsGenerated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generated
}

// EnsureTerrain fills the chunk with gen exactly once. It returns true when
// this call did the fill. Edits made before the fill, including ones that
// land while it runs, are written back over the terrain. A panicking
// generator leaves the chunk ungenerated and is reported as an error so the
// next build can retry.
func (c *Chunk) EnsureTerrain(gen TerrainGenerator) (filled bool, err error) {
	if gen == nil {
		return false, nil
	}
	c.genMu.Lock()
	defer c.genMu.Unlock()
	if c.IsGenerated() {
		return false, nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generate chunk %v: %v", c.coord, r)
			filled = false
		}
	}()

	hm := gen.Heightmap(c.coord, c.Width())
	gen.Fill(c, hm)

	c.mu.Lock()
	for i, m := range c.pending {
		c.grid.blocks[i] = m
	}
	c.pending = nil
	c.generated = true
	c.version++
	c.mu.Unlock()
	return true, nil
}
