// Package task_splitter fans a contiguous index range out over a bounded set of workers
// and joins them before returning. It is the only source of parallelism in the frame loop.
package task_splitter

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"golang.org/x/sync/errgroup"
)

// DefaultChunkThreshold is the range length below which Run stays on the calling goroutine.
const DefaultChunkThreshold = 256

// ErrWorkerFailed is returned by Run when any chunk returns an error or panics.
var ErrWorkerFailed = errors.New("task_splitter: worker failed")

// Range is a half-open index range [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// ChunkFunc processes the indices in [start, end). It must only write to state owned by
// those indices.
type ChunkFunc func(start, end int) error

// Splitter runs a ChunkFunc over [0, n) split into contiguous chunks, one per worker.
// Run is synchronous: every chunk has finished by the time it returns.
type Splitter interface {
	// Workers returns the number of chunks a large range is split into.
	//
	// Returns:
	//   - int: the worker count (at least 1)
	Workers() int

	// ChunkThreshold returns the range length below which work runs serially.
	//
	// Returns:
	//   - int: the threshold
	ChunkThreshold() int

	// Run partitions [0, n) and executes fn on each chunk, blocking until all chunks return.
	// If any chunk fails the call fails with ErrWorkerFailed; all other chunks still run to
	// completion before Run returns.
	//
	// Parameters:
	//   - n: the number of indices
	//   - fn: the chunk function
	//
	// Returns:
	//   - error: nil, or an error wrapping ErrWorkerFailed
	Run(n int, fn ChunkFunc) error

	// Close stops the worker pool the splitter created for WithPersistentWorkers. A pool
	// passed in with WithWorkerPool is released but left running. Later Run calls spawn
	// goroutines per call. Close must not be called concurrently with Run.
	Close()
}

type splitter struct {
	workers        int
	chunkThreshold int

	persistent bool
	pool       worker.DynamicWorkerPool
	ownsPool   bool
}

var _ Splitter = &splitter{}

// NewSplitter creates a Splitter. By default it uses one worker per CPU, a chunk
// threshold of DefaultChunkThreshold and spawns goroutines per call.
//
// Parameters:
//   - options: functional options to configure the splitter
//
// Returns:
//   - Splitter: the configured splitter
func NewSplitter(options ...SplitterBuilderOption) Splitter {
	s := &splitter{
		workers:        max(runtime.NumCPU(), 1),
		chunkThreshold: DefaultChunkThreshold,
	}
	for _, opt := range options {
		opt(s)
	}

	// Created after options so WithWorkers can size the pool.
	if s.persistent && s.pool == nil {
		s.pool = worker.NewDynamicWorkerPool(s.workers, 256, 1*time.Second)
		s.ownsPool = true
	}
	return s
}

func (s *splitter) Workers() int {
	return s.workers
}

func (s *splitter) ChunkThreshold() int {
	return s.chunkThreshold
}

func (s *splitter) Close() {
	if s.pool == nil {
		return
	}
	if s.ownsPool {
		s.pool.Stop()
	}
	s.pool = nil
	s.ownsPool = false
}

func (s *splitter) Run(n int, fn ChunkFunc) error {
	if n <= 0 {
		return nil
	}
	if n < s.chunkThreshold || s.workers == 1 {
		return runChunk(Range{Start: 0, End: n}, fn)
	}

	ranges := Partition(n, s.workers)
	if s.pool != nil {
		return s.runPooled(ranges, fn)
	}

	var g errgroup.Group
	for _, r := range ranges {
		g.Go(func() error {
			return runChunk(r, fn)
		})
	}
	return g.Wait()
}

// runPooled submits each chunk to the persistent pool and waits on a WaitGroup barrier.
// pool.Wait is not used because it blocks until idle workers time out.
func (s *splitter) runPooled(ranges []Range, fn ChunkFunc) error {
	var wg sync.WaitGroup
	errs := make([]error, len(ranges))
	for i, r := range ranges {
		wg.Add(1)
		s.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				errs[i] = runChunk(r, fn)
				return nil, errs[i]
			},
		})
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// runChunk executes fn over r and converts both returned errors and panics into
// ErrWorkerFailed carrying the chunk bounds.
func runChunk(r Range, fn ChunkFunc) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%w: chunk [%d, %d) panicked: %v", ErrWorkerFailed, r.Start, r.End, v)
		}
	}()
	if e := fn(r.Start, r.End); e != nil {
		return fmt.Errorf("%w: chunk [%d, %d): %w", ErrWorkerFailed, r.Start, r.End, e)
	}
	return nil
}

// Partition splits [0, n) into min(max(k, 1), n) contiguous ranges whose lengths differ
// by at most one. The ranges cover [0, n) exactly with no gaps or overlaps; n <= 0 yields
// an empty slice.
//
// Parameters:
//   - n: the number of indices
//   - k: the requested number of chunks
//
// Returns:
//   - []Range: the chunks in ascending order
func Partition(n, k int) []Range {
	if n <= 0 {
		return []Range{}
	}
	k = min(max(k, 1), n)

	ranges := make([]Range, 0, k)
	base, rem := n/k, n%k
	start := 0
	for i := 0; i < k; i++ {
		size := base
		if i < rem {
			size++
		}
		ranges = append(ranges, Range{Start: start, End: start + size})
		start += size
	}
	return ranges
}
