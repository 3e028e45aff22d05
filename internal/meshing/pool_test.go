package meshing

import (
	"context"
	"errors"
	"testing"
	"time"

	"blockworld/internal/registry"
	"blockworld/internal/world"
)

type panicGenerator struct{}

func (panicGenerator) Heightmap(world.ChunkCoord, int) world.Heightmap { panic("generator exploded") }
func (panicGenerator) Fill(*world.Chunk, world.Heightmap)              {}

func recvResult(t *testing.T, ch <-chan BuildResult) BuildResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for build result")
	}
	return BuildResult{}
}

func TestPoolBuildsChunk(t *testing.T) {
	pool := NewWorkerPool(2, 4)
	defer pool.Shutdown()

	results := make(chan BuildResult, 1)
	coord := world.ChunkCoord{X: 1, Z: 2}
	c := world.NewChunk(coord, 8, 16)
	ok := pool.SubmitJob(BuildJob{
		Coord:     coord,
		Chunk:     c,
		Generator: world.NewFlatGenerator(4),
		Catalog:   registry.Default(),
		Results:   results,
	})
	if !ok {
		t.Fatal("SubmitJob refused on an empty pool")
	}

	r := recvResult(t, results)
	if r.Err != nil {
		t.Fatalf("build error: %v", r.Err)
	}
	if r.Coord != coord || r.Mesh.Coord != coord {
		t.Fatalf("coord: got %v/%v, want %v", r.Coord, r.Mesh.Coord, coord)
	}
	// flat 8x5x8 box: stone, dirt and grass bands on each side, plus top and bottom
	if r.Mesh.QuadCount() != 14 {
		t.Fatalf("flat chunk: got %d quads, want 14", r.Mesh.QuadCount())
	}
	if r.Version != c.Version() || r.Mesh.Version != r.Version {
		t.Fatalf("version: result %d, mesh %d, chunk %d", r.Version, r.Mesh.Version, c.Version())
	}
	if !c.IsGenerated() {
		t.Fatal("chunk not marked generated after build")
	}
}

func TestRunJobReportsGeneratorPanic(t *testing.T) {
	c := world.NewChunk(world.ChunkCoord{}, 4, 4)
	r := RunJob(BuildJob{Chunk: c, Generator: panicGenerator{}, Catalog: registry.Default()})
	if r.Err == nil || r.Mesh != nil {
		t.Fatalf("got mesh=%v err=%v, want error", r.Mesh, r.Err)
	}
	if c.IsGenerated() {
		t.Fatal("failed generation left the chunk marked generated")
	}
}

func TestRunJobRecoversMesherPanic(t *testing.T) {
	c := world.NewChunk(world.ChunkCoord{}, 4, 4)
	c.SetBlock(0, 0, 0, world.Stone)
	// a nil catalog makes the mesher panic
	r := RunJob(BuildJob{Chunk: c})
	if r.Err == nil || r.Mesh != nil {
		t.Fatalf("got mesh=%v err=%v, want recovered panic", r.Mesh, r.Err)
	}
}

func TestRunJobWithoutChunk(t *testing.T) {
	if r := RunJob(BuildJob{Catalog: registry.Default()}); r.Err == nil {
		t.Fatal("expected error for a job without chunk")
	}
}

func TestPoolRejectsAfterShutdown(t *testing.T) {
	pool := NewWorkerPool(1, 1)
	pool.Shutdown()
	pool.Shutdown()

	job := BuildJob{Chunk: world.NewChunk(world.ChunkCoord{}, 2, 2), Catalog: registry.Default()}
	if pool.SubmitJob(job) {
		t.Fatal("SubmitJob accepted a job after shutdown")
	}
	if err := pool.SubmitJobBlocking(context.Background(), job); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("SubmitJobBlocking: got %v, want ErrPoolClosed", err)
	}
}

func TestShutdownWithUnreadResults(t *testing.T) {
	pool := NewWorkerPool(2, 8)
	results := make(chan BuildResult) // never read
	for i := 0; i < 4; i++ {
		pool.SubmitJob(BuildJob{
			Coord:   world.ChunkCoord{X: i},
			Chunk:   world.NewChunk(world.ChunkCoord{X: i}, 4, 4),
			Catalog: registry.Default(),
			Results: results,
		})
	}

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Shutdown blocked on an unread results channel")
	}
}

func TestSubmitJobQueueFull(t *testing.T) {
	pool := NewWorkerPool(1, 1)
	defer pool.Shutdown()

	block := make(chan BuildResult) // keeps the single worker busy
	job := func(x int) BuildJob {
		return BuildJob{
			Coord:   world.ChunkCoord{X: x},
			Chunk:   world.NewChunk(world.ChunkCoord{X: x}, 2, 2),
			Catalog: registry.Default(),
			Results: block,
		}
	}

	accepted := 0
	for i := 0; i < 10; i++ {
		if pool.SubmitJob(job(i)) {
			accepted++
		}
	}
	// at most one job running plus one queued
	if accepted > 2 {
		t.Fatalf("accepted %d jobs, want at most 2", accepted)
	}
	if pool.Workers() != 1 {
		t.Fatalf("workers: got %d, want 1", pool.Workers())
	}
}
