package meshing

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"blockworld/internal/registry"
	"blockworld/internal/world"
)

// ErrPoolClosed is returned by SubmitJobBlocking once the pool is shut down.
var ErrPoolClosed = errors.New("meshing: worker pool closed")

// BuildJob asks a worker to fill terrain (if the chunk has none yet) and
// mesh a snapshot of the chunk.
type BuildJob struct {
	Coord     world.ChunkCoord
	Chunk     *world.Chunk
	Generator world.TerrainGenerator // nil skips terrain
	Catalog   *registry.Catalog
	// Results receives exactly one BuildResult unless the pool shuts down first.
	Results chan<- BuildResult
}

// BuildResult carries a finished mesh, or the reason there is none, back
// to the frame loop.
type BuildResult struct {
	Coord   world.ChunkCoord
	Chunk   *world.Chunk // the chunk that was built, to tell re-added coordinates apart
	Mesh    *ChunkMesh
	Version uint64
	Err     error
}

// WorkerPool manages goroutines for chunk builds
type WorkerPool struct {
	jobQueue chan BuildJob
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewWorkerPool creates a new build worker pool
func NewWorkerPool(workers int, queueSize int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	ctx, cancel := context.WithCancel(context.Background())

	pool := &WorkerPool{
		jobQueue: make(chan BuildJob, queueSize),
		workers:  workers,
		ctx:      ctx,
		cancel:   cancel,
	}

	for i := range workers {
		pool.wg.Add(1)
		go pool.worker(i)
	}

	return pool
}

// SubmitJob submits a build job to the pool.
// Returns true if job was submitted successfully, false if the queue is full
// or the pool has been shut down.
func (p *WorkerPool) SubmitJob(job BuildJob) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false // Queue is full
	}
}

// SubmitJobBlocking submits a job and blocks until it's queued, ctx is done
// or the pool shuts down.
func (p *WorkerPool) SubmitJobBlocking(ctx context.Context, job BuildJob) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobQueue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrPoolClosed
	}
}

// worker is the worker goroutine that processes build jobs
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := RunJob(job)

			// A consumer that went away must not wedge shutdown.
			select {
			case job.Results <- result:
			case <-p.ctx.Done():
				return
			}

		case <-p.ctx.Done():
			return
		}
	}
}

// RunJob executes one build on the calling goroutine: terrain first, then a
// snapshot mesh. A panic anywhere in the job becomes BuildResult.Err.
func RunJob(job BuildJob) (res BuildResult) {
	res.Coord = job.Coord
	res.Chunk = job.Chunk
	defer func() {
		if r := recover(); r != nil {
			res.Mesh = nil
			res.Err = fmt.Errorf("build chunk %v: panic: %v\n%s", job.Coord, r, debug.Stack())
		}
	}()

	if job.Chunk == nil {
		res.Err = fmt.Errorf("build chunk %v: no chunk", job.Coord)
		return res
	}
	if _, err := job.Chunk.EnsureTerrain(job.Generator); err != nil {
		res.Err = err
		return res
	}

	grid, version := job.Chunk.Snapshot()
	mesh := Build(grid, job.Catalog)
	mesh.Coord = job.Coord
	mesh.Version = version

	res.Mesh = mesh
	res.Version = version
	return res
}

// Shutdown stops the workers and waits for them. Queued jobs that have not
// started are dropped; results of running jobs are dropped if nobody reads
// them.
func (p *WorkerPool) Shutdown() {
	// Cancel first so blocked submitters release the read lock.
	p.cancel()
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobQueue)
	p.mu.Unlock()
	p.wg.Wait()
}

// QueueLength returns the current number of jobs in the queue
func (p *WorkerPool) QueueLength() int {
	return len(p.jobQueue)
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int {
	return p.workers
}
