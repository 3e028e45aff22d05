package streaming

import (
	"github.com/go-gl/mathgl/mgl32"

	"blockworld/internal/profiling"
	"blockworld/internal/world"
)

// Render distance bounds accepted by SetRadius.
const (
	MinRadius = 1
	MaxRadius = 50
)

// FrameStats summarizes one Update.
type FrameStats struct {
	Center   world.ChunkCoord
	Visited  int
	Added    int
	Removed  int // border ring plus anything evicted after a jump
	Rebuilds int
	Drawn    int
}

// Scheduler keeps the chunks around the viewer active and hands their
// meshes to a DrawSink, once per frame. It is not safe for concurrent use.
type Scheduler struct {
	store  *Store
	sink   DrawSink
	radius int

	last    world.ChunkCoord
	hasLast bool
}

// NewScheduler creates a scheduler streaming store around the viewer with
// the given render distance. sink may be nil for headless use.
func NewScheduler(store *Store, radius int, sink DrawSink) *Scheduler {
	s := &Scheduler{store: store, sink: sink}
	s.SetRadius(radius)
	return s
}

// Radius returns the render distance in chunks.
func (s *Scheduler) Radius() int {
	return s.radius
}

// SetRadius sets the render distance in chunks
func (s *Scheduler) SetRadius(radius int) {
	// Clamp to reasonable values
	if radius < MinRadius {
		radius = MinRadius
	}
	if radius > MaxRadius {
		radius = MaxRadius
	}
	if radius != s.radius {
		s.hasLast = false
	}
	s.radius = radius
}

// Update walks the spiral around the chunk containing pos. Interior
// coordinates are added and rebuilt when dirty, the border ring is removed,
// and every ready mesh is drawn. When the center moved, chunks left outside
// the ring (after a teleport, say) are evicted as well.
func (s *Scheduler) Update(pos mgl32.Vec3) FrameStats {
	defer profiling.Track("streaming.Scheduler.Update")()

	center := world.ChunkCoordAt(pos, s.store.ChunkWidth())
	st := FrameStats{Center: center}

	for _, step := range Spiral(s.radius) {
		coord := center.Offset(step.DX, step.DZ)
		st.Visited++

		if step.Border {
			if s.store.Remove(coord) {
				st.Removed++
			}
			continue
		}

		if s.store.Add(coord) {
			st.Added++
		}
		if s.store.RequestRebuild(coord) {
			st.Rebuilds++
		}
		if m, ok := s.store.MeshFor(coord); ok && !m.Empty() && s.sink != nil {
			s.sink.DrawChunk(coord, m)
			st.Drawn++
		}
	}

	if !s.hasLast || center != s.last {
		st.Removed += s.store.EvictOutside(center, s.radius+1)
		s.last = center
		s.hasLast = true
	}
	return st
}

// Visible returns the coordinates Update keeps active around center, in
// spiral order.
func (s *Scheduler) Visible(center world.ChunkCoord) []world.ChunkCoord {
	steps := Spiral(s.radius)
	out := make([]world.ChunkCoord, 0, len(steps))
	for _, step := range steps {
		if !step.Border {
			out = append(out, center.Offset(step.DX, step.DZ))
		}
	}
	return out
}
