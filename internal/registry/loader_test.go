package registry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"blockworld/internal/world"
)

const sampleCatalog = `
blocks:
  - id: 1
    name: grass
    textures: {top: [1, 15], bottom: [2, 15], side: [0, 15]}
  - id: 2
    name: dirt
    textures: {all: [2, 15]}
  - id: 9
    name: glass
    opaque: false
    textures: {side: 17}
`

func TestLoadSample(t *testing.T) {
	c, err := Load(strings.NewReader(sampleCatalog))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 4 {
		t.Fatalf("entries: got %d, want 4", c.Len())
	}

	grass, _ := c.Lookup(world.Grass)
	if !grass.Opaque || !grass.Collidable {
		t.Fatalf("grass should default to opaque+collidable: %+v", grass)
	}
	if grass.Tile(world.FaceTop) != TileIndex(1, 15) || grass.Tile(world.FaceWest) != TileIndex(0, 15) {
		t.Fatalf("grass tiles: %+v", grass.Textures)
	}

	dirt, _ := c.Lookup(world.Dirt)
	if dirt.Textures.Top != TileIndex(2, 15) || dirt.Textures.Side != TileIndex(2, 15) {
		t.Fatalf("dirt tiles: %+v", dirt.Textures)
	}

	glass, ok := c.Lookup(9)
	if !ok || glass.Opaque || glass.Collidable {
		t.Fatalf("glass: %+v (ok=%v)", glass, ok)
	}
	if glass.Tile(world.FaceTop) != 17 {
		t.Fatalf("glass top falls back to side: got %d", glass.Tile(world.FaceTop))
	}
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"missing blocks": "other: 1\n",
		"id too large":   "blocks:\n  - {id: 300, name: big}\n",
		"missing name":   "blocks:\n  - {id: 4}\n",
		"unknown field":  "blocks:\n  - {id: 4, name: x, shiny: true}\n",
		"bad tile pair":  "blocks:\n  - {id: 4, name: x, textures: {top: [1, 2, 3]}}\n",
		"empty":          "",
	}
	for name, doc := range cases {
		if _, err := Load(strings.NewReader(doc)); !errors.Is(err, ErrInvalidCatalog) {
			t.Errorf("%s: got %v, want ErrInvalidCatalog", name, err)
		}
	}
}

func TestLoadRejectsDuplicateAndAir(t *testing.T) {
	dup := "blocks:\n  - {id: 1, name: a}\n  - {id: 1, name: b}\n"
	if _, err := Load(strings.NewReader(dup)); !errors.Is(err, ErrDuplicateBlock) {
		t.Fatalf("duplicate: got %v", err)
	}
	air := "blocks:\n  - {id: 0, name: air, opaque: true}\n"
	if _, err := Load(strings.NewReader(air)); !errors.Is(err, ErrReservedAir) {
		t.Fatalf("opaque air: got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.yaml")
	if err := os.WriteFile(path, []byte(sampleCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if _, ok := c.ByName("glass"); !ok {
		t.Fatal("glass not registered")
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadShippedCatalog(t *testing.T) {
	cat, err := LoadFile("../../configs/blocks.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if cat.Digest() == Default().Digest() {
		t.Fatal("shipped catalog should extend the built-in one")
	}
	for _, id := range []world.Material{world.Grass, world.Dirt, world.Stone} {
		want, _ := Default().Lookup(id)
		got, ok := cat.Lookup(id)
		if !ok || got != want {
			t.Errorf("block %v: got %+v, want %+v", id, got, want)
		}
	}
	glass, ok := cat.ByName("glass")
	if !ok || !cat.SeeThrough(glass) {
		t.Fatal("glass should be see-through")
	}
}
