package task_splitter

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/stretchr/testify/require"
)

func TestPartitionCoversRange(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 7, 64, 100, 10001} {
		for _, k := range []int{-3, 0, 1, 2, 3, 4, 8, 16, 1000} {
			t.Run(fmt.Sprintf("n=%d/k=%d", n, k), func(t *testing.T) {
				ranges := Partition(n, k)
				if n == 0 {
					require.Empty(t, ranges)
					return
				}

				require.LessOrEqual(t, len(ranges), max(k, 1))
				require.LessOrEqual(t, len(ranges), n)

				next := 0
				minLen, maxLen := n, 0
				for _, r := range ranges {
					require.Equal(t, next, r.Start, "gap or overlap")
					require.Greater(t, r.Len(), 0)
					minLen = min(minLen, r.Len())
					maxLen = max(maxLen, r.Len())
					next = r.End
				}
				require.Equal(t, n, next)
				require.LessOrEqual(t, maxLen-minLen, 1)
			})
		}
	}
}

func TestRunVisitsEveryIndexOnce(t *testing.T) {
	for idx, s := range []Splitter{
		NewSplitter(WithWorkers(4), WithChunkThreshold(1)),
		NewSplitter(WithWorkers(1)),
		NewSplitter(WithWorkers(3), WithChunkThreshold(1), WithPersistentWorkers(true)),
	} {
		t.Run(fmt.Sprintf("%d", idx), func(t *testing.T) {
			const n = 10000
			hits := make([]int32, n)
			require.NoError(t, s.Run(n, func(start, end int) error {
				for i := start; i < end; i++ {
					hits[i]++
				}
				return nil
			}))
			for i, h := range hits {
				require.Equal(t, int32(1), h, "index %d", i)
			}
		})
	}
}

func TestRunBelowThresholdIsSerial(t *testing.T) {
	s := NewSplitter(WithWorkers(8), WithChunkThreshold(100))

	var calls []Range
	require.NoError(t, s.Run(50, func(start, end int) error {
		calls = append(calls, Range{Start: start, End: end})
		return nil
	}))
	require.Equal(t, []Range{{Start: 0, End: 50}}, calls)
}

func TestRunEmptyRange(t *testing.T) {
	s := NewSplitter()
	called := false
	require.NoError(t, s.Run(0, func(int, int) error {
		called = true
		return nil
	}))
	require.False(t, called)
}

// splitters returns one splitter per execution path, each with four workers and no serial
// threshold: goroutines per call, an owned pool and a shared pool.
func splitters(t *testing.T) []Splitter {
	t.Helper()
	shared := worker.NewDynamicWorkerPool(4, 16, time.Second)
	t.Cleanup(shared.Stop)

	out := []Splitter{
		NewSplitter(WithWorkers(4), WithChunkThreshold(1)),
		NewSplitter(WithWorkers(4), WithChunkThreshold(1), WithPersistentWorkers(true)),
		NewSplitter(WithWorkers(4), WithChunkThreshold(1), WithWorkerPool(shared)),
	}
	for _, s := range out {
		t.Cleanup(s.Close)
	}
	return out
}

func TestRunFailureJoinsAllChunks(t *testing.T) {
	boom := errors.New("boom")
	for idx, s := range splitters(t) {
		t.Run(fmt.Sprintf("%d", idx), func(t *testing.T) {
			// repeat so a pooled run that returns before its stragglers is caught
			for range 50 {
				var finished atomic.Int32
				err := s.Run(400, func(start, end int) error {
					defer finished.Add(1)
					if start == 0 {
						return boom
					}
					return nil
				})
				require.ErrorIs(t, err, ErrWorkerFailed)
				require.ErrorIs(t, err, boom)
				require.Contains(t, err.Error(), "[0, 100)")
				require.Equal(t, int32(4), finished.Load())
			}
		})
	}
}

func TestRunRecoversPanics(t *testing.T) {
	for idx, s := range splitters(t) {
		t.Run(fmt.Sprintf("%d", idx), func(t *testing.T) {
			var mu sync.Mutex
			seen := 0
			err := s.Run(40, func(start, end int) error {
				mu.Lock()
				seen++
				mu.Unlock()
				if start > 0 {
					panic("bad candidate")
				}
				return nil
			})
			require.ErrorIs(t, err, ErrWorkerFailed)
			require.Contains(t, err.Error(), "[10, 20) panicked: bad candidate")
			require.Equal(t, 4, seen)

			// the pool survives a panicking chunk
			require.NoError(t, s.Run(40, func(int, int) error { return nil }))
		})
	}
}

func TestClose(t *testing.T) {
	shared := worker.NewDynamicWorkerPool(2, 16, time.Second)
	t.Cleanup(shared.Stop)

	for idx, s := range []Splitter{
		NewSplitter(WithWorkers(2), WithChunkThreshold(1)),
		NewSplitter(WithWorkers(2), WithChunkThreshold(1), WithPersistentWorkers(true)),
		NewSplitter(WithWorkers(2), WithChunkThreshold(1), WithWorkerPool(shared)),
	} {
		t.Run(fmt.Sprintf("%d", idx), func(t *testing.T) {
			s.Close()
			s.Close()

			var visited atomic.Int32
			require.NoError(t, s.Run(10, func(start, end int) error {
				visited.Add(int32(end - start))
				return nil
			}))
			require.Equal(t, int32(10), visited.Load())
		})
	}

	// a shared pool keeps serving after a splitter using it closes
	done := make(chan struct{})
	shared.SubmitTask(worker.Task{Do: func() (any, error) {
		close(done)
		return nil, nil
	}})
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("shared pool stopped")
	}
}

func TestNewSplitterDefaults(t *testing.T) {
	s := NewSplitter(WithWorkers(-1))
	require.Equal(t, 1, s.Workers())
	require.Equal(t, DefaultChunkThreshold, s.ChunkThreshold())
}
