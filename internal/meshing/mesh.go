package meshing

import "blockworld/internal/world"

// Per-vertex layout of Interleaved: position.xyz, normal.xyz, uv, tile.col/row.
const (
	PositionSize = 3
	NormalSize   = 3
	TexCoordSize = 2
	TileSize     = 2

	VertexStride = PositionSize + NormalSize + TexCoordSize + TileSize
)

// ChunkMesh is the GPU-ready surface of one chunk. Positions are
// chunk-local; the renderer adds the chunk origin through its model matrix.
// Every quad contributes 4 vertices and 6 indices.
type ChunkMesh struct {
	Coord   world.ChunkCoord
	Version uint64 // chunk version the mesh was built from

	Positions []float32
	Normals   []float32
	TexCoords []float32 // scaled by quad size so tiles repeat
	Tiles     []float32 // atlas column and row of the face's tile
	Indices   []uint32

	// Unknown lists material ids that were missing from the catalog and
	// were drawn with the fallback block.
	Unknown []world.Material
}

func (m *ChunkMesh) VertexCount() int {
	if m == nil {
		return 0
	}
	return len(m.Positions) / PositionSize
}

func (m *ChunkMesh) IndexCount() int {
	if m == nil {
		return 0
	}
	return len(m.Indices)
}

func (m *ChunkMesh) QuadCount() int     { return m.VertexCount() / 4 }
func (m *ChunkMesh) TriangleCount() int { return m.IndexCount() / 3 }

// Empty reports whether the mesh has nothing to draw.
func (m *ChunkMesh) Empty() bool {
	return m.IndexCount() == 0
}

// Interleaved packs the vertex attributes into one buffer of VertexStride
// floats per vertex, ready for a single VBO upload.
func (m *ChunkMesh) Interleaved() []float32 {
	n := m.VertexCount()
	out := make([]float32, 0, n*VertexStride)
	for i := 0; i < n; i++ {
		out = append(out, m.Positions[i*PositionSize:(i+1)*PositionSize]...)
		out = append(out, m.Normals[i*NormalSize:(i+1)*NormalSize]...)
		out = append(out, m.TexCoords[i*TexCoordSize:(i+1)*TexCoordSize]...)
		out = append(out, m.Tiles[i*TileSize:(i+1)*TileSize]...)
	}
	return out
}

// Quad returns the four corner positions of quad q.
func (m *ChunkMesh) Quad(q int) [4][3]float32 {
	var out [4][3]float32
	for k := 0; k < 4; k++ {
		p := (q*4 + k) * PositionSize
		out[k] = [3]float32{m.Positions[p], m.Positions[p+1], m.Positions[p+2]}
	}
	return out
}
