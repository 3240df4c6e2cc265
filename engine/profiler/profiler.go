// Package profiler samples frame rate, frame cost and memory statistics for the frame loop.
package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-frame/common"
)

// Stats is one profiler sample.
type Stats struct {
	FPS          float64
	AvgFrame     time.Duration
	MaxFrame     time.Duration
	HeapMB       float64
	AllocRateMB  float64
	GCCount      uint32
	LastPauseUs  uint64
	MaxPauseUs   uint64
	SysMB        float64
	FramesInTick int
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Logs a sample at a configurable interval. Not safe for concurrent use.
type Profiler struct {
	frameCount     int
	frameTotal     time.Duration
	frameMax       time.Duration
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats

	now func() time.Time
}

// ProfilerOption configures a Profiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often a sample is taken. Non-positive values keep the default.
//
// Parameters:
//   - d: the sample interval
//
// Returns:
//   - ProfilerOption: option function to apply
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithClock replaces time.Now.
//
// Parameters:
//   - now: the clock
//
// Returns:
//   - ProfilerOption: option function to apply
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}

// NewProfiler creates a new Profiler. The sample interval defaults to 1 second.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, option := range options {
		option(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame with the time the frame took, excluding pacing.
// Logs a sample when the interval has elapsed.
//
// Parameters:
//   - frame: the cost of the frame
//
// Returns:
//   - bool: true if a sample was taken this tick
func (p *Profiler) Tick(frame time.Duration) bool {
	p.frameCount++
	p.frameTotal += frame
	p.frameMax = max(p.frameMax, frame)

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		FPS:          float64(p.frameCount) / elapsed.Seconds(),
		AvgFrame:     p.frameTotal / time.Duration(p.frameCount),
		MaxFrame:     p.frameMax,
		HeapMB:       float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:        float64(p.memStats.Sys) / 1024 / 1024,
		AllocRateMB:  float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:      p.memStats.NumGC,
		FramesInTick: p.frameCount,
	}

	if gcCount := p.memStats.NumGC; gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses
		s.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			s.MaxPauseUs = max(s.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	common.Logger().Info("profiler",
		"fps", s.FPS,
		"avg_frame", s.AvgFrame,
		"max_frame", s.MaxFrame,
		"heap_mb", s.HeapMB,
		"alloc_rate_mb_s", s.AllocRateMB,
		"gc", s.GCCount,
		"gc_last_us", s.LastPauseUs,
		"gc_max_us", s.MaxPauseUs,
		"sys_mb", s.SysMB,
	)

	p.last = s
	p.frameCount = 0
	p.frameTotal = 0
	p.frameMax = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Stats returns the most recent sample.
func (p *Profiler) Stats() Stats {
	return p.last
}
