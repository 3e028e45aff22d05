package streaming

import (
	"blockworld/internal/meshing"
	"blockworld/internal/world"
)

// MeshBackend owns the GPU side of chunk meshes. Both methods are only
// called from the goroutine that drains completed builds.
type MeshBackend interface {
	// Upload creates GPU resources for m. On error the mesh is not installed
	// and the chunk is queued for another build.
	Upload(coord world.ChunkCoord, m *meshing.ChunkMesh) error
	// Release frees the GPU resources of a mesh that was replaced or evicted.
	Release(coord world.ChunkCoord, m *meshing.ChunkMesh)
}

// DrawSink receives the chunks to draw this frame.
type DrawSink interface {
	DrawChunk(coord world.ChunkCoord, m *meshing.ChunkMesh)
}

// nopBackend keeps meshes on the CPU only; used by headless tools and tests.
type nopBackend struct{}

func (nopBackend) Upload(world.ChunkCoord, *meshing.ChunkMesh) error { return nil }
func (nopBackend) Release(world.ChunkCoord, *meshing.ChunkMesh)      {}
