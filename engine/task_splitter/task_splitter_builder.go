package task_splitter

import "github.com/Carmen-Shannon/automation/tools/worker"

// SplitterBuilderOption is a functional option for configuring a Splitter.
type SplitterBuilderOption func(*splitter)

// WithWorkers sets the number of chunks a range is split into. Values below 1 are clamped to 1.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - SplitterBuilderOption: option function to apply
func WithWorkers(n int) SplitterBuilderOption {
	return func(s *splitter) {
		s.workers = max(n, 1)
	}
}

// WithChunkThreshold sets the range length below which Run executes on the calling goroutine.
//
// Parameters:
//   - threshold: the minimum range length for a parallel fan-out
//
// Returns:
//   - SplitterBuilderOption: option function to apply
func WithChunkThreshold(threshold int) SplitterBuilderOption {
	return func(s *splitter) {
		s.chunkThreshold = max(threshold, 0)
	}
}

// WithPersistentWorkers makes the splitter keep a worker pool alive across calls instead of
// spawning goroutines on every Run. Run still joins every chunk before returning.
//
// Parameters:
//   - enabled: true to use a persistent pool
//
// Returns:
//   - SplitterBuilderOption: option function to apply
func WithPersistentWorkers(enabled bool) SplitterBuilderOption {
	return func(s *splitter) {
		s.persistent = enabled
	}
}

// WithWorkerPool runs chunks on an existing pool shared with other subsystems.
//
// Parameters:
//   - pool: the pool to submit chunks to
//
// Returns:
//   - SplitterBuilderOption: option function to apply
func WithWorkerPool(pool worker.DynamicWorkerPool) SplitterBuilderOption {
	return func(s *splitter) {
		s.pool = pool
		s.persistent = pool != nil
	}
}
