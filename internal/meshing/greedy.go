package meshing

import (
	"blockworld/internal/profiling"
	"blockworld/internal/registry"
	"blockworld/internal/world"
)

// Build greedy-meshes one chunk grid. It sweeps each axis in both
// directions, builds a 2D mask of visible faces per slice and merges equal
// neighbors into maximal rectangles: width along u first, then height
// along v. The result is a pure function of (grid, cat).
//
// Cells outside the grid count as air, so faces on the chunk boundary are
// always emitted.
func Build(grid *world.VoxelGrid, cat *registry.Catalog) *ChunkMesh {
	defer profiling.Track("meshing.Build")()

	b := &builder{
		mesh: &ChunkMesh{
			Positions: make([]float32, 0, 1024),
			Normals:   make([]float32, 0, 1024),
			TexCoords: make([]float32, 0, 683),
			Tiles:     make([]float32, 0, 683),
			Indices:   make([]uint32, 0, 1536),
		},
		cat: cat,
	}
	dims := grid.Dims()

	for d := 0; d < 3; d++ {
		u := (d + 1) % 3
		v := (d + 2) % 3
		mask := make([]world.Material, dims[u]*dims[v])

		var q [3]int
		q[d] = 1

		for _, back := range [2]bool{true, false} {
			var x [3]int
			for x[d] = -1; x[d] < dims[d]; {
				n := 0
				for x[v] = 0; x[v] < dims[v]; x[v]++ {
					for x[u] = 0; x[u] < dims[u]; x[u]++ {
						a := grid.At(x[0], x[1], x[2])
						c := grid.At(x[0]+q[0], x[1]+q[1], x[2]+q[2])
						mask[n] = b.face(a, c, back)
						n++
					}
				}
				x[d]++

				n = 0
				for j := 0; j < dims[v]; j++ {
					for i := 0; i < dims[u]; {
						m := mask[n]
						if m == world.Air {
							i++
							n++
							continue
						}

						w := 1
						for i+w < dims[u] && mask[n+w] == m {
							w++
						}

						h := 1
					grow:
						for j+h < dims[v] {
							for k := 0; k < w; k++ {
								if mask[n+k+h*dims[u]] != m {
									break grow
								}
							}
							h++
						}

						x[u], x[v] = i, j
						b.quad(x, d, u, v, w, h, m, back)

						for l := 0; l < h; l++ {
							for k := 0; k < w; k++ {
								mask[n+k+l*dims[u]] = world.Air
							}
						}
						i += w
						n += w
					}
				}
			}
		}
	}

	for id, seen := range b.unknown {
		if seen {
			b.mesh.Unknown = append(b.mesh.Unknown, world.Material(id))
		}
	}
	return b.mesh
}

type builder struct {
	mesh    *ChunkMesh
	cat     *registry.Catalog
	unknown [256]bool
}

// face decides the mask entry for the boundary between a (at slice s) and
// c (at s+1). The back pass records faces of c looking towards -axis, the
// front pass faces of a looking towards +axis.
func (b *builder) face(a, c world.Material, back bool) world.Material {
	if back {
		if b.cat.SeeThrough(c) || !b.cat.SeeThrough(a) {
			return world.Air
		}
		return c
	}
	if b.cat.SeeThrough(a) || !b.cat.SeeThrough(c) {
		return world.Air
	}
	return a
}

// Triangle order per quad, relative to its first vertex. Both keep the
// front face counter-clockwise when seen from the side the normal points to.
var (
	backIndices  = [6]uint32{2, 0, 1, 1, 3, 2}
	frontIndices = [6]uint32{2, 3, 1, 1, 0, 2}
)

// quad emits the w x h rectangle starting at x on the plane x[d].
// Vertex order: x, x+dv, x+du, x+du+dv.
func (b *builder) quad(x [3]int, d, u, v, w, h int, mat world.Material, back bool) {
	m := b.mesh
	base := uint32(m.VertexCount())

	var du, dv [3]int
	du[u] = w
	dv[v] = h

	corners := [4][3]int{
		x,
		{x[0] + dv[0], x[1] + dv[1], x[2] + dv[2]},
		{x[0] + du[0], x[1] + du[1], x[2] + du[2]},
		{x[0] + du[0] + dv[0], x[1] + du[1] + dv[1], x[2] + du[2] + dv[2]},
	}
	for _, c := range corners {
		m.Positions = append(m.Positions, float32(c[0]), float32(c[1]), float32(c[2]))
	}

	idx := frontIndices
	if back {
		idx = backIndices
	}
	for _, i := range idx {
		m.Indices = append(m.Indices, base+i)
	}

	fw, fh := float32(w), float32(h)
	if d == 0 {
		// u is Y and v is Z on X faces; keep the texture upright.
		m.TexCoords = append(m.TexCoords, 0, 0, fh, 0, 0, fw, fh, fw)
	} else {
		m.TexCoords = append(m.TexCoords, 0, 0, 0, fh, fw, 0, fw, fh)
	}

	face := world.FaceFor(d, !back)
	n := face.Normal()
	blk := b.cat.Resolve(mat)
	if !b.cat.Known(mat) {
		b.unknown[mat] = true
	}
	col, row := registry.TileCoords(blk.Tile(face))
	for k := 0; k < 4; k++ {
		m.Normals = append(m.Normals, n[0], n[1], n[2])
		m.Tiles = append(m.Tiles, float32(col), float32(row))
	}
}

// NaiveQuadCount counts exposed unit faces, i.e. the quads a mesher without
// merging would emit for the same grid and visibility rules.
func NaiveQuadCount(grid *world.VoxelGrid, cat *registry.Catalog) int {
	dims := grid.Dims()
	count := 0
	for y := 0; y < dims[1]; y++ {
		for z := 0; z < dims[2]; z++ {
			for x := 0; x < dims[0]; x++ {
				if cat.SeeThrough(grid.At(x, y, z)) {
					continue
				}
				for f := world.FaceEast; f <= world.FaceSouth; f++ {
					n := f.Normal()
					if cat.SeeThrough(grid.At(x+int(n[0]), y+int(n[1]), z+int(n[2]))) {
						count++
					}
				}
			}
		}
	}
	return count
}
