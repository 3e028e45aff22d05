package world

import "fmt"

// VoxelGrid is a dense width x height x width array of materials for one chunk.
// Cells are laid out Y-major: index(x,y,z) = width*width*y + width*z + x.
type VoxelGrid struct {
	width  int
	height int
	blocks []Material
}

// NewVoxelGrid creates an all-air grid. It panics on non-positive dimensions.
func NewVoxelGrid(width, height int) *VoxelGrid {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("world: invalid grid size %dx%d", width, height))
	}
	return &VoxelGrid{
		width:  width,
		height: height,
		blocks: make([]Material, width*height*width),
	}
}

// Width returns the horizontal size of the grid (X and Z).
func (g *VoxelGrid) Width() int { return g.width }

// Height returns the vertical size of the grid (Y).
func (g *VoxelGrid) Height() int { return g.height }

// Dims returns the grid size along X, Y and Z.
func (g *VoxelGrid) Dims() [3]int { return [3]int{g.width, g.height, g.width} }

// Volume returns the number of cells.
func (g *VoxelGrid) Volume() int { return len(g.blocks) }

// InBounds reports whether local coordinates address a cell of the grid.
func (g *VoxelGrid) InBounds(x, y, z int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height && z >= 0 && z < g.width
}

// Index converts local coordinates to a flat index.
func (g *VoxelGrid) Index(x, y, z int) (int, bool) {
	if !g.InBounds(x, y, z) {
		return -1, false
	}
	return g.width*g.width*y + g.width*z + x, true
}

// At returns the material at local coordinates; out-of-range queries return Air
// so neighbor lookups at the chunk edge need no special casing.
func (g *VoxelGrid) At(x, y, z int) Material {
	i, ok := g.Index(x, y, z)
	if !ok {
		return Air
	}
	return g.blocks[i]
}

// Set writes a material and reports whether the cell changed.
// Out-of-range writes are ignored.
func (g *VoxelGrid) Set(x, y, z int, m Material) bool {
	i, ok := g.Index(x, y, z)
	if !ok || g.blocks[i] == m {
		return false
	}
	g.blocks[i] = m
	return true
}

// Fill sets every cell to m.
func (g *VoxelGrid) Fill(m Material) {
	for i := range g.blocks {
		g.blocks[i] = m
	}
}

// FillColumn sets cells (x, 0..top, z) to m; top is clamped to the grid height.
func (g *VoxelGrid) FillColumn(x, z, top int, m Material) {
	if top >= g.height {
		top = g.height - 1
	}
	for y := 0; y <= top; y++ {
		g.Set(x, y, z, m)
	}
}

// Count returns how many cells hold m.
func (g *VoxelGrid) Count(m Material) int {
	n := 0
	for _, b := range g.blocks {
		if b == m {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (g *VoxelGrid) Clone() *VoxelGrid {
	c := &VoxelGrid{
		width:  g.width,
		height: g.height,
		blocks: make([]Material, len(g.blocks)),
	}
	copy(c.blocks, g.blocks)
	return c
}
