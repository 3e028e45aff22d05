// Package export writes chunk meshes to Wavefront OBJ files for inspection
// in external tools.
package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"

	"blockworld/internal/meshing"
)

// Placed is a chunk mesh together with its world-space origin.
type Placed struct {
	Origin mgl32.Vec3
	Mesh   *meshing.ChunkMesh
}

// Summary counts what WriteOBJ wrote.
type Summary struct {
	Objects   int
	Vertices  int
	Triangles int
}

// WriteOBJ writes one object per mesh. Vertices are translated by the
// mesh origin; position, texture and normal indices share numbering and are
// 1-based across the whole file. Empty meshes are skipped.
func WriteOBJ(w io.Writer, meshes []Placed) (Summary, error) {
	bw := bufio.NewWriterSize(w, 64*1024)
	var sum Summary

	fmt.Fprintln(bw, "# blockworld chunk export")
	base := 1
	for _, p := range meshes {
		m := p.Mesh
		if m.Empty() {
			continue
		}
		fmt.Fprintf(bw, "o chunk_%d_%d\n", m.Coord.X, m.Coord.Z)

		n := m.VertexCount()
		for i := 0; i < n; i++ {
			fmt.Fprintf(bw, "v %g %g %g\n",
				m.Positions[i*3]+p.Origin.X(),
				m.Positions[i*3+1]+p.Origin.Y(),
				m.Positions[i*3+2]+p.Origin.Z())
		}
		for i := 0; i < n; i++ {
			fmt.Fprintf(bw, "vt %g %g\n", m.TexCoords[i*2], m.TexCoords[i*2+1])
		}
		for i := 0; i < n; i++ {
			fmt.Fprintf(bw, "vn %g %g %g\n", m.Normals[i*3], m.Normals[i*3+1], m.Normals[i*3+2])
		}
		for t := 0; t < m.TriangleCount(); t++ {
			a := base + int(m.Indices[t*3])
			b := base + int(m.Indices[t*3+1])
			c := base + int(m.Indices[t*3+2])
			fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
		}

		base += n
		sum.Objects++
		sum.Vertices += n
		sum.Triangles += m.TriangleCount()
	}

	if err := bw.Flush(); err != nil {
		return sum, fmt.Errorf("write obj: %w", err)
	}
	return sum, nil
}
