// Package renderer consumes a frame produced by the scene: it owns the render pass and the
// pipelines bound to each queue type, stages the scene's uniform payloads and replays the
// sorted queues through a command recorder.
package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/render_queue"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/render_pass"
	"github.com/Carmen-Shannon/oxy-frame/engine/scene"
)

var (
	// ErrNotPrepared is returned by Draw before a pass exists.
	ErrNotPrepared = errors.New("renderer: not prepared")

	// ErrNoFrame is returned by Draw before the first successful Update.
	ErrNoFrame = errors.New("renderer: no frame staged")

	// ErrForeignPipeline is returned when a pipeline was built against another pass.
	ErrForeignPipeline = errors.New("renderer: pipeline built for another pass")
)

// PassFactory builds the render pass the renderer draws into, at the renderer's current
// extent.
type PassFactory func(dev device.Device, width, height uint32) (render_pass.Pass, error)

// PipelineFactory builds the pipeline of one queue type against the current pass. Queue
// types registered with a factory survive a pass rebuild.
type PipelineFactory func(dev device.Device, pass render_pass.Pass) (pipeline.Pipeline, error)

// FrameSource is the per-frame output of a scene.
type FrameSource interface {
	Queue() *render_queue.RenderQueue
	Arena() *render_queue.FrameArena
	Uniforms() []scene.BufferWrite
}

// CommandRecorder receives the commands of one frame.
type CommandRecorder interface {
	// BeginPass opens the render pass with its per-attachment clear values.
	BeginPass(pass render_pass.Pass, clear []render_pass.ClearValue) error

	// BindPipeline makes p current for the following draws.
	BindPipeline(p pipeline.Pipeline) error

	// EndPass closes the render pass.
	EndPass() error
}

// DrawCall is the render_queue.DrawContext handed to every draw callback.
type DrawCall struct {
	Recorder CommandRecorder
	Pipeline pipeline.Pipeline
	Queue    render_queue.QueueType
	Uniforms map[string][]byte
}

type renderer struct {
	mu  *sync.Mutex
	dev device.Device

	passFactory PassFactory
	pass        render_pass.Pass
	dirty       bool
	width       uint32
	height      uint32

	pipelines map[render_queue.QueueType]pipeline.Pipeline
	factories map[render_queue.QueueType]PipelineFactory

	staged map[string][]byte
	queue  *render_queue.RenderQueue
	arena  *render_queue.FrameArena
}

// Renderer draws scene frames. Prepare, RegisterPipeline, Update and Draw are serialized
// by the renderer; the frame loop calls Update then Draw once per frame.
type Renderer interface {
	// Prepare builds the render pass if none exists yet.
	//
	// Returns:
	//   - error: the pass factory error, wrapped
	Prepare() error

	// Pass returns the current render pass, nil before Prepare.
	Pass() render_pass.Pass

	// RegisterPipeline binds p to queue type t, replacing and destroying any previous
	// pipeline of that type. The renderer owns p from then on.
	//
	// Parameters:
	//   - t: the queue type p draws
	//   - p: a pipeline built against the current pass
	//
	// Returns:
	//   - error: ErrNotPrepared or ErrForeignPipeline
	RegisterPipeline(t render_queue.QueueType, p pipeline.Pipeline) error

	// RegisterPipelineFactory builds the pipeline of queue type t now and again after
	// every pass rebuild.
	//
	// Parameters:
	//   - t: the queue type
	//   - f: the factory
	//
	// Returns:
	//   - error: ErrNotPrepared or the factory error
	RegisterPipelineFactory(t render_queue.QueueType, f PipelineFactory) error

	// Pipeline returns the pipeline of queue type t, or nil.
	Pipeline(t render_queue.QueueType) pipeline.Pipeline

	// Invalidate marks the attachment topology as changed. The pass and every pipeline are
	// rebuilt at the next Update.
	Invalidate()

	// Resize sets the extent the pass is built at. A changed extent invalidates the pass;
	// the same extent, or one with a zero side, is ignored.
	//
	// Parameters:
	//   - width, height: the new framebuffer size in pixels
	Resize(width, height uint32)

	// Extent returns the extent the next pass will be built at.
	Extent() (uint32, uint32)

	// Update rebuilds the pass if invalidated and stages the frame's uniform payloads.
	//
	// Parameters:
	//   - src: the frame produced by the scene
	//
	// Returns:
	//   - error: a rebuild failure; nothing is staged in that case
	Update(src FrameSource) error

	// Staged returns a copy of the staged payload of the named buffer.
	Staged(name string) []byte

	// Draw records every queue type that has a pipeline, in render_queue.QueueTypes order.
	// Entries are replayed in list order and never reordered.
	//
	// Parameters:
	//   - rec: the command recorder
	//
	// Returns:
	//   - error: the first recorder or draw callback error, wrapped
	Draw(rec CommandRecorder) error

	// Destroy releases every pipeline, then the pass.
	Destroy()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer on dev. Without WithPassFactory the renderer draws into a
// single subpass with one colour and one depth attachment.
//
// Parameters:
//   - dev: the graphics device
//   - options: functional options
//
// Returns:
//   - Renderer: the new renderer
func NewRenderer(dev device.Device, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:          &sync.Mutex{},
		dev:         dev,
		passFactory: DefaultPassFactory(),
		width:       DefaultWidth,
		height:      DefaultHeight,
		pipelines:   make(map[render_queue.QueueType]pipeline.Pipeline),
		factories:   make(map[render_queue.QueueType]PipelineFactory),
		staged:      make(map[string][]byte),
	}
	for _, option := range options {
		option(r)
	}
	return r
}

func (r *renderer) Prepare() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pass != nil {
		return nil
	}
	return r.buildPass()
}

func (r *renderer) Pass() render_pass.Pass {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pass
}

func (r *renderer) RegisterPipeline(t render_queue.QueueType, p pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pass == nil {
		return ErrNotPrepared
	}
	if p.Pass() != r.pass {
		return fmt.Errorf("%w: %s", ErrForeignPipeline, p.Key())
	}
	delete(r.factories, t)
	r.setPipeline(t, p)
	return nil
}

func (r *renderer) RegisterPipelineFactory(t render_queue.QueueType, f PipelineFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pass == nil {
		return ErrNotPrepared
	}
	p, err := f(r.dev, r.pass)
	if err != nil {
		return fmt.Errorf("renderer: %s pipeline: %w", t, err)
	}
	r.factories[t] = f
	r.setPipeline(t, p)
	return nil
}

func (r *renderer) Pipeline(t render_queue.QueueType) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelines[t]
}

func (r *renderer) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dirty = true
}

func (r *renderer) Resize(width, height uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if width == 0 || height == 0 {
		common.Logger().Debug("renderer: ignoring empty extent", "width", width, "height", height)
		return
	}
	if width == r.width && height == r.height {
		return
	}
	r.width, r.height = width, height
	r.dirty = true
}

func (r *renderer) Extent() (uint32, uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) Update(src FrameSource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.dirty || r.pass == nil {
		if err := r.rebuild(); err != nil {
			return err
		}
	}

	for _, w := range src.Uniforms() {
		r.staged[w.Name] = append(r.staged[w.Name][:0], w.Data...)
	}
	r.queue = src.Queue()
	r.arena = src.Arena()
	return nil
}

func (r *renderer) Staged(name string) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.staged[name]
	if !ok {
		return nil
	}
	return append([]byte{}, data...)
}

func (r *renderer) Draw(rec CommandRecorder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pass == nil {
		return ErrNotPrepared
	}
	if r.queue == nil {
		return ErrNoFrame
	}

	if err := rec.BeginPass(r.pass, r.pass.ClearValues()); err != nil {
		return fmt.Errorf("renderer: begin pass: %w", err)
	}
	for _, t := range render_queue.QueueTypes() {
		p, ok := r.pipelines[t]
		if !ok || r.queue.Len(t) == 0 {
			continue
		}
		if err := rec.BindPipeline(p); err != nil {
			return fmt.Errorf("renderer: bind %s: %w", p.Key(), err)
		}
		call := &DrawCall{Recorder: rec, Pipeline: p, Queue: t, Uniforms: r.staged}
		for i, e := range r.queue.Entries(t) {
			if e.Draw == nil {
				continue
			}
			if err := e.Draw(call, r.arena.Get(e.Payload)); err != nil {
				return fmt.Errorf("renderer: %s entry %d: %w", t, i, err)
			}
		}
	}
	if err := rec.EndPass(); err != nil {
		return fmt.Errorf("renderer: end pass: %w", err)
	}
	return nil
}

func (r *renderer) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.releasePipelines()
	if r.pass != nil {
		r.pass.Destroy()
		r.pass = nil
	}
}

func (r *renderer) setPipeline(t render_queue.QueueType, p pipeline.Pipeline) {
	if old, ok := r.pipelines[t]; ok && old != p {
		old.Destroy()
	}
	r.pipelines[t] = p
}

func (r *renderer) releasePipelines() {
	for t, p := range r.pipelines {
		p.Destroy()
		delete(r.pipelines, t)
	}
}

func (r *renderer) buildPass() error {
	pass, err := r.passFactory(r.dev, r.width, r.height)
	if err != nil {
		return fmt.Errorf("renderer: pass: %w", err)
	}
	r.pass = pass
	common.Logger().Debug("renderer: pass built", "width", r.width, "height", r.height, "attachments", len(pass.Attachments()), "subpasses", pass.SubpassCount())
	return nil
}

// rebuild replaces the pass and rebuilds every factory-backed pipeline. Pipelines
// registered directly cannot follow the new pass and are dropped.
func (r *renderer) rebuild() error {
	pass, err := r.passFactory(r.dev, r.width, r.height)
	if err != nil {
		return fmt.Errorf("renderer: pass: %w", err)
	}

	rebuilt := make(map[render_queue.QueueType]pipeline.Pipeline, len(r.factories))
	for t, f := range r.factories {
		p, err := f(r.dev, pass)
		if err != nil {
			for _, built := range rebuilt {
				built.Destroy()
			}
			pass.Destroy()
			return fmt.Errorf("renderer: %s pipeline: %w", t, err)
		}
		rebuilt[t] = p
	}

	for t := range r.pipelines {
		if _, ok := rebuilt[t]; !ok {
			common.Logger().Debug("renderer: dropping pipeline without factory", "queue", t.String())
		}
	}
	r.releasePipelines()
	if r.pass != nil {
		r.pass.Destroy()
	}
	r.pass = pass
	r.pipelines = rebuilt
	r.dirty = false
	common.Logger().Debug("renderer: pass rebuilt", "width", r.width, "height", r.height, "pipelines", len(rebuilt))
	return nil
}
