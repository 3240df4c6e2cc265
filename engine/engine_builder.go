package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-frame/engine/profiler"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer"
	"github.com/Carmen-Shannon/oxy-frame/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, a profiler sample is logged every second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default profiler.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithFrameTime sets the frame budget. Frames finishing early sleep for the remainder.
// Values <= 0 uncap the loop.
//
// Parameters:
//   - d: the frame budget (default 33ms)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameTime(d time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.frameTime = max(d, 0)
	}
}

// WithMaxFrames stops the loop after n frames. Zero runs until the window closes or Quit.
//
// Parameters:
//   - n: the frame count
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMaxFrames(n uint64) EngineBuilderOption {
	return func(e *engine) {
		e.maxFrames = n
	}
}

// WithWindow sets the window the loop polls. Without a window the loop runs headless.
//
// Parameters:
//   - w: an open Window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRecorder sets the command recorder the renderer draws into.
//
// Parameters:
//   - rec: the recorder
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRecorder(rec renderer.CommandRecorder) EngineBuilderOption {
	return func(e *engine) {
		if rec != nil {
			e.recorder = rec
		}
	}
}
