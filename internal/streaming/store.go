package streaming

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/alitto/pond/v2"
	"golang.org/x/time/rate"

	"blockworld/internal/meshing"
	"blockworld/internal/profiling"
	"blockworld/internal/registry"
	"blockworld/internal/world"
)

// Defaults applied by NewStore for zero Options fields.
const (
	DefaultChunkWidth  = 16
	DefaultChunkHeight = 64
	DefaultQueueSize   = 256
)

// Options configures a Store.
type Options struct {
	Catalog   *registry.Catalog      // default registry.Default()
	Generator world.TerrainGenerator // nil leaves new chunks empty

	ChunkWidth  int
	ChunkHeight int

	Workers   int // build workers, default runtime.NumCPU()
	QueueSize int // pending builds before RequestRebuild starts refusing

	// Limiter bounds how many builds are dispatched per second. Chunks that
	// are refused stay dirty and are picked up on a later frame.
	Limiter *rate.Limiter

	Backend MeshBackend
	Logger  *slog.Logger
}

// Stats is a snapshot of store counters.
type Stats struct {
	Active    int
	Meshed    int
	InFlight  int
	Queued    int
	Submitted uint64
	Installed uint64
	Stale     uint64 // results older than the installed mesh
	Orphaned  uint64 // results for chunks no longer active
	Failed    uint64
	Throttled uint64 // refused by the rate limiter
	QueueFull uint64 // refused because the build queue was full
}

type entry struct {
	chunk    *world.Chunk
	mesh     *meshing.ChunkMesh
	inFlight int
}

// Store owns the active chunks keyed by coordinate and the latest mesh of
// each. Add, Remove, RequestRebuild, DrainCompleted and EvictOutside belong
// to the frame goroutine; SetBlock, MeshFor and the read accessors may be
// called from anywhere.
type Store struct {
	cat     *registry.Catalog
	gen     world.TerrainGenerator
	width   int
	height  int
	limiter *rate.Limiter
	backend MeshBackend
	log     *slog.Logger

	pool    *meshing.WorkerPool
	results chan meshing.BuildResult

	mu      sync.RWMutex
	entries map[world.ChunkCoord]*entry
	stats   Stats
}

// NewStore creates a store and starts its build workers.
func NewStore(opts Options) *Store {
	if opts.Catalog == nil {
		opts.Catalog = registry.Default()
	}
	if opts.ChunkWidth <= 0 {
		opts.ChunkWidth = DefaultChunkWidth
	}
	if opts.ChunkHeight <= 0 {
		opts.ChunkHeight = DefaultChunkHeight
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Backend == nil {
		opts.Backend = nopBackend{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Store{
		cat:     opts.Catalog,
		gen:     opts.Generator,
		width:   opts.ChunkWidth,
		height:  opts.ChunkHeight,
		limiter: opts.Limiter,
		backend: opts.Backend,
		log:     opts.Logger,
		pool:    meshing.NewWorkerPool(opts.Workers, opts.QueueSize),
		// Room for every queued job plus one running job per worker, so
		// workers rarely wait on a slow frame.
		results: make(chan meshing.BuildResult, opts.QueueSize+opts.Workers),
		entries: make(map[world.ChunkCoord]*entry),
	}
}

// ChunkWidth returns the chunk size along X and Z.
func (s *Store) ChunkWidth() int { return s.width }

// ChunkHeight returns the chunk size along Y.
func (s *Store) ChunkHeight() int { return s.height }

// Catalog returns the catalog meshes are built with.
func (s *Store) Catalog() *registry.Catalog { return s.cat }

// Add creates an empty, dirty chunk at coord. It reports false if the
// coordinate was already active.
func (s *Store) Add(coord world.ChunkCoord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[coord]; ok {
		return false
	}
	s.entries[coord] = &entry{chunk: world.NewChunk(coord, s.width, s.height)}
	return true
}

// Remove drops the chunk at coord and releases its mesh. Builds still in
// flight for it are discarded when they complete. Removing an absent
// coordinate is a no-op.
func (s *Store) Remove(coord world.ChunkCoord) bool {
	s.mu.Lock()
	e, ok := s.entries[coord]
	if ok {
		delete(s.entries, coord)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	if e.mesh != nil {
		s.backend.Release(coord, e.mesh)
	}
	return true
}

// Has reports whether coord is active.
func (s *Store) Has(coord world.ChunkCoord) bool {
	s.mu.RLock()
	_, ok := s.entries[coord]
	s.mu.RUnlock()
	return ok
}

// Chunk returns the active chunk at coord.
func (s *Store) Chunk(coord world.ChunkCoord) (*world.Chunk, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[coord]
	if !ok {
		return nil, false
	}
	return e.chunk, true
}

// Len returns the number of active chunks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Coords returns the active coordinates sorted by X, then Z.
func (s *Store) Coords() []world.ChunkCoord {
	s.mu.RLock()
	out := make([]world.ChunkCoord, 0, len(s.entries))
	for c := range s.entries {
		out = append(out, c)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Z < out[j].Z
	})
	return out
}

// MeshFor returns the current mesh of coord. A missing mesh means the chunk
// has not finished its first build; never blocks on builds.
func (s *Store) MeshFor(coord world.ChunkCoord) (*meshing.ChunkMesh, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[coord]
	if !ok || e.mesh == nil {
		return nil, false
	}
	return e.mesh, true
}

// RequestRebuild dispatches a build for coord if the chunk is dirty. The
// dirty flag is cleared before dispatch; a SetBlock during the build raises
// it again so the edit gets its own build. Returns whether a build started.
func (s *Store) RequestRebuild(coord world.ChunkCoord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[coord]
	if !ok || !e.chunk.IsDirty() {
		return false
	}
	if s.limiter != nil && !s.limiter.Allow() {
		s.stats.Throttled++
		return false
	}
	if !e.chunk.TakeDirty() {
		return false
	}

	job := meshing.BuildJob{
		Coord:     coord,
		Chunk:     e.chunk,
		Generator: s.gen,
		Catalog:   s.cat,
		Results:   s.results,
	}
	if !s.pool.SubmitJob(job) {
		e.chunk.MarkDirty()
		s.stats.QueueFull++
		return false
	}
	e.inFlight++
	s.stats.Submitted++
	return true
}

// RebuildDirty requests a build for every dirty active chunk and returns
// how many were dispatched.
func (s *Store) RebuildDirty() int {
	n := 0
	for _, c := range s.Coords() {
		if s.RequestRebuild(c) {
			n++
		}
	}
	return n
}

// DrainCompleted installs every build result that is ready, without
// waiting, and returns how many meshes were installed.
func (s *Store) DrainCompleted() int {
	defer profiling.Track("streaming.DrainCompleted")()
	installed := 0
	for {
		select {
		case res := <-s.results:
			if s.install(res) {
				installed++
			}
		default:
			return installed
		}
	}
}

// install applies one build result. Results for removed chunks and results
// older than the installed mesh are dropped.
func (s *Store) install(res meshing.BuildResult) bool {
	s.mu.Lock()
	e, ok := s.entries[res.Coord]
	if !ok || e.chunk != res.Chunk {
		s.stats.Orphaned++
		s.mu.Unlock()
		return false
	}
	if e.inFlight > 0 {
		e.inFlight--
	}

	if res.Err != nil {
		s.stats.Failed++
		s.mu.Unlock()
		s.log.Warn("chunk build failed", "coord", res.Coord, "error", res.Err)
		e.chunk.MarkDirty()
		return false
	}
	if e.mesh != nil && res.Version < e.mesh.Version {
		s.stats.Stale++
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()

	if len(res.Mesh.Unknown) > 0 {
		s.log.Warn("chunk has materials missing from the catalog",
			"coord", res.Coord, "materials", res.Mesh.Unknown)
	}
	if err := s.backend.Upload(res.Coord, res.Mesh); err != nil {
		s.log.Error("mesh upload failed", "coord", res.Coord, "error", err)
		s.mu.Lock()
		s.stats.Failed++
		s.mu.Unlock()
		e.chunk.MarkDirty()
		return false
	}

	s.mu.Lock()
	old := e.mesh
	e.mesh = res.Mesh
	s.stats.Installed++
	s.mu.Unlock()

	if old != nil {
		s.backend.Release(res.Coord, old)
	}
	return true
}

// SetBlock writes a block in local coordinates of the chunk at coord. It
// reports false if the chunk is not active or the block did not change.
func (s *Store) SetBlock(coord world.ChunkCoord, x, y, z int, m world.Material) bool {
	c, ok := s.Chunk(coord)
	if !ok {
		return false
	}
	return c.SetBlock(x, y, z, m)
}

// SetBlockWorld writes a block at world block coordinates.
func (s *Store) SetBlockWorld(wx, wy, wz int, m world.Material) bool {
	coord, lx, lz := world.ChunkCoordOfBlock(wx, wz, s.width)
	return s.SetBlock(coord, lx, wy, lz, m)
}

// BlockWorld reads a block at world block coordinates. Inactive chunks read
// as air.
func (s *Store) BlockWorld(wx, wy, wz int) world.Material {
	coord, lx, lz := world.ChunkCoordOfBlock(wx, wz, s.width)
	c, ok := s.Chunk(coord)
	if !ok {
		return world.Air
	}
	return c.Block(lx, wy, lz)
}

// HighestSolid returns the Y of the topmost non-air block in the world
// column wx,wz, or -1 if the column is empty or its chunk is not active.
func (s *Store) HighestSolid(wx, wz int) int {
	coord, lx, lz := world.ChunkCoordOfBlock(wx, wz, s.width)
	c, ok := s.Chunk(coord)
	if !ok {
		return -1
	}
	for y := c.Height() - 1; y >= 0; y-- {
		if !c.Block(lx, y, lz).IsAir() {
			return y
		}
	}
	return -1
}

// EvictOutside removes every chunk farther than radius (Chebyshev) from
// center. Returns number of removed chunks.
func (s *Store) EvictOutside(center world.ChunkCoord, radius int) int {
	defer profiling.Track("streaming.EvictOutside")()
	var far []world.ChunkCoord
	s.mu.RLock()
	for c := range s.entries {
		if c.Chebyshev(center) > radius {
			far = append(far, c)
		}
	}
	s.mu.RUnlock()

	removed := 0
	for _, c := range far {
		if s.Remove(c) {
			removed++
		}
	}
	return removed
}

// Stats returns current counters.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.stats
	st.Active = len(s.entries)
	for _, e := range s.entries {
		if e.mesh != nil {
			st.Meshed++
		}
		st.InFlight += e.inFlight
	}
	st.Queued = s.pool.QueueLength()
	return st
}

// Prime synchronously builds the given coordinates in parallel and installs
// their meshes, e.g. for the spawn area before the first frame. It adds
// coordinates that are not active yet. The first build error is returned
// after all builds have finished; successful meshes are installed anyway.
func (s *Store) Prime(ctx context.Context, coords []world.ChunkCoord) error {
	defer profiling.Track("streaming.Prime")()

	jobs := make([]meshing.BuildJob, 0, len(coords))
	for _, c := range coords {
		s.Add(c)
		s.mu.Lock()
		e := s.entries[c]
		if e.chunk.TakeDirty() {
			e.inFlight++
			jobs = append(jobs, meshing.BuildJob{Coord: c, Chunk: e.chunk, Generator: s.gen, Catalog: s.cat})
		}
		s.mu.Unlock()
	}

	pool := pond.NewPool(s.pool.Workers())
	defer pool.StopAndWait()

	results := make([]meshing.BuildResult, len(jobs))
	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				results[i] = meshing.BuildResult{Coord: job.Coord, Chunk: job.Chunk, Err: err}
				return
			}
			results[i] = meshing.RunJob(job)
		})
	}
	wg.Wait()

	var firstErr error
	for _, res := range results {
		if res.Err != nil && firstErr == nil {
			firstErr = fmt.Errorf("prime %v: %w", res.Coord, res.Err)
		}
		s.install(res)
	}
	return firstErr
}

// Close stops the build workers. Results still in flight are dropped.
func (s *Store) Close() {
	s.pool.Shutdown()
}
