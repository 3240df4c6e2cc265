// Package engine runs the frame loop: it polls the window, updates the scene, hands the
// frame to the renderer and paces the loop to a fixed frame budget.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/profiler"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/render_pass"
	"github.com/Carmen-Shannon/oxy-frame/engine/window"
)

// DefaultFrameTime is the frame budget used when none is configured.
const DefaultFrameTime = 33 * time.Millisecond

var (
	// ErrSceneUpdate wraps a scene update failure; the loop stops.
	ErrSceneUpdate = errors.New("engine: scene update failed")

	// ErrRendererUpdate wraps a renderer update or draw failure; the loop stops.
	ErrRendererUpdate = errors.New("engine: renderer update failed")

	// ErrRunning is returned by Run when the loop is already running.
	ErrRunning = errors.New("engine: already running")
)

// FrameScene is the per-frame producer the loop drives.
type FrameScene interface {
	Update(deltaTime float32) error
	renderer.FrameSource
}

// FrameRenderer is the per-frame consumer the loop drives.
type FrameRenderer interface {
	Update(src renderer.FrameSource) error
	Draw(rec renderer.CommandRecorder) error
}

// resizer is implemented by renderers whose pass must follow the window size.
type resizer interface {
	Resize(width, height uint32)
}

// engine implements the Engine interface.
type engine struct {
	ctx *Context

	window   window.Window
	recorder renderer.CommandRecorder

	frameTime        time.Duration
	maxFrames        uint64
	profiler         *profiler.Profiler
	profilingEnabled bool

	running  atomic.Bool
	frames   atomic.Uint64
	quit     chan struct{}
	quitOnce *sync.Once

	now   func() time.Time
	sleep func(time.Duration)
}

// Engine drives a scene and a renderer frame by frame on the calling goroutine.
type Engine interface {
	// Context returns the context the engine was created with.
	Context() *Context

	// Window returns the polled window, or nil when running headless.
	Window() window.Window

	// Run executes frames until the window closes, Quit is called or a frame fails. Each
	// frame polls the window, updates s, updates r from s, draws r and then sleeps for the
	// rest of the frame budget. Any update failure is fatal.
	//
	// Parameters:
	//   - s: the scene
	//   - r: the renderer
	//
	// Returns:
	//   - error: nil on a normal stop, otherwise wrapping ErrSceneUpdate or ErrRendererUpdate
	Run(s FrameScene, r FrameRenderer) error

	// Quit stops the loop after the current frame. Safe to call more than once and from
	// any goroutine.
	Quit()

	// Running reports whether Run is executing.
	Running() bool

	// Frames returns the number of completed frames.
	Frames() uint64
}

var _ Engine = &engine{}

// NewEngine creates an Engine. The frame budget and profiling default to the context's
// configuration.
//
// Parameters:
//   - ctx: the engine context
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(ctx *Context, options ...EngineBuilderOption) Engine {
	e := &engine{
		ctx:              ctx,
		recorder:         nopRecorder{},
		frameTime:        common.Coalesce(ctx.Config.FrameTime, DefaultFrameTime),
		profilingEnabled: ctx.Config.Profiling,
		quit:             make(chan struct{}),
		quitOnce:         &sync.Once{},
		now:              time.Now,
		sleep:            time.Sleep,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithClock(e.now))
	}
	return e
}

func (e *engine) Context() *Context {
	return e.ctx
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Running() bool {
	return e.running.Load()
}

func (e *engine) Frames() uint64 {
	return e.frames.Load()
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quit)
	})
}

func (e *engine) Run(s FrameScene, r FrameRenderer) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer e.running.Store(false)

	if rs, ok := r.(resizer); ok && e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			common.Logger().Debug("engine: window resized", "width", width, "height", height)
			rs.Resize(uint32(max(width, 0)), uint32(max(height, 0)))
		})
	}

	common.Logger().Info("engine: loop start", "frame_time", e.frameTime, "profiling", e.profilingEnabled)
	err := e.loop(s, r)
	if err != nil {
		common.Logger().Error("engine: loop stopped", "frame", e.frames.Load(), "error", err)
	} else {
		common.Logger().Info("engine: loop stop", "frames", e.frames.Load())
	}
	return err
}

func (e *engine) loop(s FrameScene, r FrameRenderer) error {
	last := e.now()
	for {
		select {
		case <-e.quit:
			return nil
		default:
		}
		if e.window != nil && !e.window.PollEvents() {
			return nil
		}

		start := e.now()
		dt := float32(start.Sub(last).Seconds())
		last = start

		if err := s.Update(dt); err != nil {
			return fmt.Errorf("%w: %w", ErrSceneUpdate, err)
		}
		if err := r.Update(s); err != nil {
			return fmt.Errorf("%w: %w", ErrRendererUpdate, err)
		}
		if err := r.Draw(e.recorder); err != nil {
			return fmt.Errorf("%w: draw: %w", ErrRendererUpdate, err)
		}

		frames := e.frames.Add(1)
		cost := e.now().Sub(start)
		if e.profilingEnabled {
			e.profiler.Tick(cost)
		}
		if e.maxFrames > 0 && frames >= e.maxFrames {
			return nil
		}
		if remaining := e.frameTime - cost; remaining > 0 {
			e.sleep(remaining)
		}
	}
}

// nopRecorder accepts every command. It stands in until a presentation backend records
// into real command buffers.
type nopRecorder struct{}

func (nopRecorder) BeginPass(render_pass.Pass, []render_pass.ClearValue) error { return nil }
func (nopRecorder) BindPipeline(pipeline.Pipeline) error                       { return nil }
func (nopRecorder) EndPass() error                                             { return nil }
