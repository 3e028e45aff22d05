package streaming

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"blockworld/internal/meshing"
	"blockworld/internal/world"
)

type fakeBackend struct {
	mu       sync.Mutex
	uploads  int
	releases int
	live     map[*meshing.ChunkMesh]bool
	failNext bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{live: make(map[*meshing.ChunkMesh]bool)}
}

func (b *fakeBackend) Upload(_ world.ChunkCoord, m *meshing.ChunkMesh) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failNext {
		b.failNext = false
		return errors.New("out of video memory")
	}
	b.uploads++
	b.live[m] = true
	return nil
}

func (b *fakeBackend) Release(_ world.ChunkCoord, m *meshing.ChunkMesh) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releases++
	delete(b.live, m)
}

func (b *fakeBackend) liveCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.live)
}

type recordingSink struct {
	drawn []world.ChunkCoord
}

func (s *recordingSink) DrawChunk(coord world.ChunkCoord, _ *meshing.ChunkMesh) {
	s.drawn = append(s.drawn, coord)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T, backend MeshBackend) *Store {
	t.Helper()
	s := NewStore(Options{
		Generator:   world.NewFlatGenerator(2),
		ChunkWidth:  4,
		ChunkHeight: 8,
		Workers:     2,
		Backend:     backend,
		Logger:      quietLogger(),
	})
	t.Cleanup(s.Close)
	return s
}

// drainUntil drains completed builds until cond holds or the test times out.
func drainUntil(t *testing.T, s *Store, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out draining builds, stats %+v", s.Stats())
		}
		s.DrainCompleted()
		time.Sleep(time.Millisecond)
	}
}
