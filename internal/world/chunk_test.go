package world

import (
	"sync"
	"testing"
)

func TestNewChunkStartsDirtyAndEmpty(t *testing.T) {
	c := NewChunk(ChunkCoord{X: 1, Z: -2}, 4, 4)
	if !c.IsDirty() {
		t.Fatal("new chunk should be dirty")
	}
	if c.IsGenerated() {
		t.Fatal("new chunk should not have terrain")
	}
	g, _ := c.Snapshot()
	if got := g.Count(Air); got != 64 {
		t.Fatalf("air cells: got %d, want 64", got)
	}
}

func TestSetBlockRaisesDirtyAfterTake(t *testing.T) {
	c := NewChunk(ChunkCoord{}, 4, 4)
	if !c.TakeDirty() {
		t.Fatal("TakeDirty on new chunk: got false")
	}
	if c.TakeDirty() {
		t.Fatal("second TakeDirty should report clean")
	}

	v0 := c.Version()
	if !c.SetBlock(1, 2, 3, Stone) {
		t.Fatal("SetBlock reported no change")
	}
	if !c.IsDirty() {
		t.Fatal("SetBlock should re-raise dirty")
	}
	if c.Version() != v0+1 {
		t.Fatalf("version: got %d, want %d", c.Version(), v0+1)
	}
	if c.SetBlock(1, 2, 3, Stone) {
		t.Fatal("idempotent SetBlock should report no change")
	}
	if m := c.Block(1, 2, 3); m != Stone {
		t.Fatalf("Block: got %v, want stone", m)
	}
}

func TestSnapshotIsStable(t *testing.T) {
	c := NewChunk(ChunkCoord{}, 4, 4)
	c.SetBlock(0, 0, 0, Grass)
	snap, v := c.Snapshot()
	c.SetBlock(0, 0, 0, Dirt)

	if m := snap.At(0, 0, 0); m != Grass {
		t.Fatalf("snapshot changed: got %v, want grass", m)
	}
	if c.Version() <= v {
		t.Fatalf("version did not advance past snapshot: %d <= %d", c.Version(), v)
	}
}

func TestConcurrentSetBlockAndSnapshot(t *testing.T) {
	c := NewChunk(ChunkCoord{}, 8, 8)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			c.SetBlock(i%8, (i/8)%8, (i/64)%8, Material(1+i%3))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			g, _ := c.Snapshot()
			if g.Volume() != 512 {
				t.Errorf("snapshot volume: got %d, want 512", g.Volume())
				return
			}
		}
	}()
	wg.Wait()
}

type panicGenerator struct{}

func (panicGenerator) Heightmap(ChunkCoord, int) Heightmap { panic("boom") }
func (panicGenerator) Fill(*Chunk, Heightmap)              {}

func TestEnsureTerrainRunsOnce(t *testing.T) {
	c := NewChunk(ChunkCoord{}, 4, 8)
	g := NewFlatGenerator(2)

	filled, err := c.EnsureTerrain(g)
	if err != nil || !filled {
		t.Fatalf("first EnsureTerrain: filled=%v err=%v", filled, err)
	}
	c.SetBlock(0, 2, 0, Air)

	filled, err = c.EnsureTerrain(g)
	if err != nil || filled {
		t.Fatalf("second EnsureTerrain: filled=%v err=%v", filled, err)
	}
	if m := c.Block(0, 2, 0); m != Air {
		t.Fatalf("terrain was regenerated over an edit: got %v", m)
	}
}

func TestEnsureTerrainRecoversPanic(t *testing.T) {
	c := NewChunk(ChunkCoord{X: 3}, 4, 4)
	filled, err := c.EnsureTerrain(panicGenerator{})
	if err == nil || filled {
		t.Fatalf("got filled=%v err=%v, want error", filled, err)
	}
	if c.IsGenerated() {
		t.Fatal("chunk marked generated after a failed fill")
	}
}

func TestEditBeforeTerrainSurvivesFill(t *testing.T) {
	c := NewChunk(ChunkCoord{}, 4, 8)
	if !c.SetBlock(1, 1, 1, Stone) {
		t.Fatal("SetBlock before terrain reported no change")
	}
	// Air over a cell the fill will make solid still counts as a write.
	if !c.SetBlock(2, 0, 2, Air) {
		t.Fatal("SetBlock(air) before terrain reported no change")
	}
	if c.SetBlock(2, 0, 2, Air) {
		t.Fatal("repeated SetBlock before terrain should report no change")
	}

	if filled, err := c.EnsureTerrain(NewFlatGenerator(2)); err != nil || !filled {
		t.Fatalf("EnsureTerrain: filled=%v err=%v", filled, err)
	}
	if m := c.Block(1, 1, 1); m != Stone {
		t.Fatalf("block(1,1,1): got %v, want stone", m)
	}
	if m := c.Block(2, 0, 2); m != Air {
		t.Fatalf("block(2,0,2): got %v, want air", m)
	}
	if m := c.Block(0, 1, 0); m != Dirt {
		t.Fatalf("unedited block(0,1,0): got %v, want dirt", m)
	}

	// Once generated, writes go straight to the grid again.
	if !c.SetBlock(1, 1, 1, Grass) {
		t.Fatal("SetBlock after terrain reported no change")
	}
	if c.SetBlock(1, 1, 1, Grass) {
		t.Fatal("idempotent SetBlock after terrain should report no change")
	}
}

type editingGenerator struct {
	c *Chunk
}

func (g editingGenerator) Heightmap(coord ChunkCoord, width int) Heightmap {
	return NewFlatGenerator(2).Heightmap(coord, width)
}

func (g editingGenerator) Fill(c *Chunk, hm Heightmap) {
	g.c.SetBlock(3, 0, 3, Grass)
	fillLayers(c, hm, DefaultLayers)
}

func TestEditDuringFillSurvives(t *testing.T) {
	c := NewChunk(ChunkCoord{}, 4, 8)
	if _, err := c.EnsureTerrain(editingGenerator{c: c}); err != nil {
		t.Fatalf("EnsureTerrain: %v", err)
	}
	if m := c.Block(3, 0, 3); m != Grass {
		t.Fatalf("block(3,0,3): got %v, want grass", m)
	}
}
