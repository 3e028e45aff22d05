package export

import (
	"bufio"
	"context"
	"bytes"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"blockworld/internal/meshing"
	"blockworld/internal/registry"
	"blockworld/internal/streaming"
	"blockworld/internal/world"
)

func cubeMesh(coord world.ChunkCoord) *meshing.ChunkMesh {
	g := world.NewVoxelGrid(2, 2)
	g.Set(0, 0, 0, world.Stone)
	m := meshing.Build(g, registry.Default())
	m.Coord = coord
	return m
}

func countPrefixes(t *testing.T, r io.Reader) map[string]int {
	t.Helper()
	out := make(map[string]int)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) > 0 {
			out[fields[0]]++
		}
	}
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestWriteOBJCounts(t *testing.T) {
	meshes := []Placed{
		{Origin: mgl32.Vec3{0, 0, 0}, Mesh: cubeMesh(world.ChunkCoord{})},
		{Origin: mgl32.Vec3{2, 0, 0}, Mesh: &meshing.ChunkMesh{}},
		{Origin: mgl32.Vec3{4, 0, 0}, Mesh: cubeMesh(world.ChunkCoord{X: 2})},
	}
	var buf bytes.Buffer
	sum, err := WriteOBJ(&buf, meshes)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Objects != 2 || sum.Vertices != 48 || sum.Triangles != 24 {
		t.Fatalf("summary: %+v", sum)
	}

	got := countPrefixes(t, &buf)
	if got["o"] != 2 || got["v"] != 48 || got["vt"] != 48 || got["vn"] != 48 || got["f"] != 24 {
		t.Fatalf("line counts: %v", got)
	}
}

func TestWriteOBJOffsetsIndices(t *testing.T) {
	meshes := []Placed{
		{Mesh: cubeMesh(world.ChunkCoord{})},
		{Origin: mgl32.Vec3{10, 0, 0}, Mesh: cubeMesh(world.ChunkCoord{X: 5})},
	}
	var buf bytes.Buffer
	if _, err := WriteOBJ(&buf, meshes); err != nil {
		t.Fatal(err)
	}

	var faces [][]int
	translated := false
	for _, l := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(l, "v 11 ") {
			translated = true
		}
		if !strings.HasPrefix(l, "f ") {
			continue
		}
		var idx []int
		for _, ref := range strings.Fields(l)[1:] {
			n, err := strconv.Atoi(strings.SplitN(ref, "/", 2)[0])
			if err != nil {
				t.Fatalf("bad face %q: %v", l, err)
			}
			idx = append(idx, n)
		}
		faces = append(faces, idx)
	}
	if len(faces) != 24 {
		t.Fatalf("faces = %d, want 24", len(faces))
	}
	for i, f := range faces {
		lo, hi := 1, 24
		if i >= 12 {
			lo, hi = 25, 48
		}
		for _, n := range f {
			if n < lo || n > hi {
				t.Fatalf("face %d references vertex %d, want %d..%d", i, n, lo, hi)
			}
		}
	}
	if !translated {
		t.Fatal("second cube was not translated by its origin")
	}
}

func TestCreateCompressedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"plain.obj", "nested/packed.obj.zst"} {
		path := filepath.Join(dir, name)
		w, err := Create(path)
		if err != nil {
			t.Fatalf("Create(%s): %v", name, err)
		}
		sum, err := WriteOBJ(w, []Placed{{Mesh: cubeMesh(world.ChunkCoord{})}})
		if err != nil {
			t.Fatal(err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close(%s): %v", name, err)
		}

		r, err := Open(path)
		if err != nil {
			t.Fatalf("Open(%s): %v", name, err)
		}
		got := countPrefixes(t, r)
		r.Close()
		if got["f"] != sum.Triangles || got["v"] != sum.Vertices {
			t.Fatalf("%s: read back %v, wrote %+v", name, got, sum)
		}
	}
}

func TestCollectSkipsMissingMeshes(t *testing.T) {
	store := streaming.NewStore(streaming.Options{
		Generator:   world.NewFlatGenerator(1),
		ChunkWidth:  4,
		ChunkHeight: 4,
		Workers:     1,
	})
	defer store.Close()

	built := []world.ChunkCoord{{X: 0, Z: 0}, {X: 1, Z: 0}}
	if err := store.Prime(context.Background(), built); err != nil {
		t.Fatal(err)
	}
	placed := Collect(store, append(built, world.ChunkCoord{X: 9, Z: 9}))
	if len(placed) != 2 {
		t.Fatalf("collected %d meshes, want 2", len(placed))
	}
	if placed[1].Origin != (mgl32.Vec3{4, 0, 0}) {
		t.Fatalf("origin = %v", placed[1].Origin)
	}
}
