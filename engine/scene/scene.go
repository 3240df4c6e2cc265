// Package scene runs the CPU side of every frame: it gathers draw candidates from the
// world, culls them against the camera frustum on the task splitter, builds the sorted
// render queue over a frame arena and produces the uniform payloads the renderer uploads.
package scene

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/camera"
	"github.com/Carmen-Shannon/oxy-frame/engine/drawable"
	"github.com/Carmen-Shannon/oxy-frame/engine/light"
	"github.com/Carmen-Shannon/oxy-frame/engine/render_queue"
	"github.com/Carmen-Shannon/oxy-frame/engine/task_splitter"
	"github.com/Carmen-Shannon/oxy-frame/engine/world"
)

// Named uniform buffers produced every frame.
const (
	BufferCamera            = "camera"
	BufferTransformsStatic  = "transforms_static"
	BufferTransformsSkinned = "transforms_skinned"
	BufferLights            = "lights"
)

// TransformStride is the size of one entry in the transform buffers (a column-major mat4).
const TransformStride = 64

var (
	// ErrNoCamera is returned by Update when the scene has no camera.
	ErrNoCamera = errors.New("scene: no camera")

	// ErrInvalidDrawable is returned when a candidate references a drawable missing from the store.
	ErrInvalidDrawable = errors.New("scene: invalid drawable")
)

// Candidate is the per-frame record of one drawable that may be visible.
type Candidate struct {
	Node           world.Handle
	Drawable       drawable.Handle
	WorldTransform [16]float32
	WorldBox       common.AABB
	Visible        bool
}

// Counts holds the number of queued static and skinned drawables.
type Counts struct {
	Static  int
	Skinned int
}

// Total returns Static + Skinned.
func (c Counts) Total() int {
	return c.Static + c.Skinned
}

// BufferWrite is one named uniform payload.
type BufferWrite struct {
	Name string
	Data []byte
}

// VisibleLight is a light that passed the frustum test this frame.
type VisibleLight struct {
	Node  world.Handle
	Light light.Light
	GPU   light.GPULight
}

type scene struct {
	mu *sync.Mutex

	name     string
	world    *world.World
	camera   camera.Camera
	splitter task_splitter.Splitter

	queueType    render_queue.QueueType
	drawFunc     render_queue.DrawFunc
	ambientColor [3]float32

	candidates []Candidate
	visible    []bool
	lights     []VisibleLight
	gpuLights  []light.GPULight
	arena      *render_queue.FrameArena
	queue      *render_queue.RenderQueue
	counts     Counts

	cameraUniform     []byte
	transformsStatic  []byte
	transformsSkinned []byte
	lightUniforms     []byte
}

// Scene owns one world view and produces a frame's draw data from it.
// Update must not run concurrently with itself; accessors are safe to call between updates.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// World returns the object graph the scene reads.
	World() *world.World

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// SetCamera replaces the scene's camera.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// AmbientColor returns the scene's ambient light color.
	AmbientColor() [3]float32

	// SetAmbientColor sets the scene's ambient light color.
	//
	// Parameters:
	//   - color: the ambient RGB color
	SetAmbientColor(color [3]float32)

	// Update runs the frame pipeline: transforms, candidate gathering, parallel culling,
	// light culling, queue build and uniform payloads. A culling failure commits no
	// visibility flag. Callers treat any error as fatal for the frame loop.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	//
	// Returns:
	//   - error: ErrNoCamera, a wrapped task_splitter.ErrWorkerFailed, or ErrInvalidDrawable
	Update(deltaTime float32) error

	// Candidates returns this frame's candidates in gather order.
	Candidates() []Candidate

	// Queue returns the render queue.
	Queue() *render_queue.RenderQueue

	// Arena returns the frame arena the queue entries index into.
	Arena() *render_queue.FrameArena

	// Counts returns this frame's static and skinned counts.
	Counts() Counts

	// CameraUniform returns the marshaled camera block.
	CameraUniform() []byte

	// TransformUniforms returns the static and skinned transform buffers, each sized
	// exactly count * TransformStride.
	TransformUniforms() (static, skinned []byte)

	// LightUniforms returns the marshaled light header and array.
	LightUniforms() []byte

	// VisibleLights returns the lights that passed this frame's frustum test.
	VisibleLights() []VisibleLight

	// Uniforms returns every named payload for the renderer to upload.
	Uniforms() []BufferWrite
}

var _ Scene = &scene{}

// NewScene creates a Scene over w viewed through cam.
//
// Parameters:
//   - w: the object graph
//   - cam: the camera, may be nil until SetCamera
//   - options: functional options
//
// Returns:
//   - Scene: the new scene
func NewScene(w *world.World, cam camera.Camera, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:           &sync.Mutex{},
		name:         "scene",
		world:        w,
		camera:       cam,
		queueType:    render_queue.QueueColour,
		ambientColor: [3]float32{0.1, 0.1, 0.1},
		arena:        render_queue.NewFrameArena(0),
		queue:        render_queue.NewRenderQueue(),
	}
	for _, option := range options {
		option(s)
	}
	if s.world == nil {
		s.world = world.New()
	}
	if s.splitter == nil {
		s.splitter = task_splitter.NewSplitter()
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) World() *world.World {
	return s.world
}

func (s *scene) Camera() camera.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera = cam
}

func (s *scene) AmbientColor() [3]float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ambientColor
}

func (s *scene) SetAmbientColor(color [3]float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ambientColor = color
}

func (s *scene) Update(deltaTime float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.camera == nil {
		return ErrNoCamera
	}

	s.world.UpdateTransforms()
	s.camera.Update()
	frustum := s.camera.Frustum()

	if err := s.gatherCandidates(); err != nil {
		return err
	}
	if err := s.cullCandidates(&frustum); err != nil {
		return err
	}
	s.cullLights(&frustum)

	s.arena.Reset()
	counts, err := BuildQueue(s.candidates, s.world.Drawables(), s.arena, s.queue, s.queueType, s.drawFunc)
	if err != nil {
		return err
	}
	s.counts = counts

	s.buildUniforms()

	common.Logger().Debug("scene frame built",
		"scene", s.name,
		"candidates", len(s.candidates),
		"queued", s.queue.Len(s.queueType),
		"static", counts.Static,
		"skinned", counts.Skinned,
		"lights", len(s.lights),
		"dt", deltaTime,
	)
	return nil
}

// gatherCandidates rebuilds the candidate list from the active nodes carrying a drawable
// and clears the render bit of every drawable in the store.
func (s *scene) gatherCandidates() error {
	store := s.world.Drawables()
	store.ClearVisibility(drawable.VisibleRender)

	s.candidates = s.candidates[:0]
	var err error
	s.world.VisitActive(func(h world.Handle) {
		if err != nil {
			return
		}
		dh, ok := s.world.Drawable(h)
		if !ok {
			return
		}
		d := store.Get(dh)
		if d == nil {
			err = fmt.Errorf("%w: node %d references drawable %d", ErrInvalidDrawable, h, dh)
			return
		}
		wt := s.world.WorldTransform(h)
		s.candidates = append(s.candidates, Candidate{
			Node:           h,
			Drawable:       dh,
			WorldTransform: wt,
			WorldBox:       d.LocalBox.Transform(wt),
		})
	})
	return err
}

// cullCandidates tests every candidate against the frustum on the splitter. Workers write
// into a scratch slice inside their own range; the results are committed to candidates and
// drawables only after every chunk succeeded.
func (s *scene) cullCandidates(frustum *common.Frustum) error {
	n := len(s.candidates)
	if cap(s.visible) < n {
		s.visible = make([]bool, n)
	}
	s.visible = s.visible[:n]

	candidates := s.candidates
	visible := s.visible
	err := s.splitter.Run(n, func(start, end int) error {
		for i := start; i < end; i++ {
			visible[i] = frustum.IntersectsAABB(candidates[i].WorldBox)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scene: visibility: %w", err)
	}

	store := s.world.Drawables()
	for i := range candidates {
		candidates[i].Visible = visible[i]
		if visible[i] {
			store.Get(candidates[i].Drawable).Visibility |= drawable.VisibleRender
		}
	}
	return nil
}

// cullLights collects the enabled lights of active nodes whose influence sphere reaches
// the frustum. Directional lights always pass.
func (s *scene) cullLights(frustum *common.Frustum) {
	s.lights = s.lights[:0]
	s.world.VisitActive(func(h world.Handle) {
		l := s.world.Light(h)
		if l == nil || !l.Enabled() {
			return
		}
		wt := s.world.WorldTransform(h)
		if sphere, bounded := l.Bounds(wt); bounded && !frustum.IntersectsSphere(sphere) {
			return
		}
		s.lights = append(s.lights, VisibleLight{Node: h, Light: l, GPU: l.ToGPU(wt)})
	})
}

// buildUniforms marshals the camera, transform and light payloads for this frame.
func (s *scene) buildUniforms() {
	u := s.camera.Uniform()
	s.cameraUniform = u.Marshal()

	s.transformsStatic = resize(s.transformsStatic, s.counts.Static*TransformStride)
	s.transformsSkinned = resize(s.transformsSkinned, s.counts.Skinned*TransformStride)
	for i := range s.arena.Len() {
		r := s.arena.Get(render_queue.FrameIndex(i))
		dst := s.transformsStatic
		if r.Variant&drawable.VariantHasSkin != 0 {
			dst = s.transformsSkinned
		}
		common.PutMat4(dst[int(r.TransformOffset)*TransformStride:], r.WorldTransform)
	}

	s.gpuLights = s.gpuLights[:0]
	for i := range s.lights {
		s.gpuLights = append(s.gpuLights, s.lights[i].GPU)
	}
	s.lightUniforms = light.MarshalLightBuffer(s.gpuLights, s.ambientColor)
}

func (s *scene) Candidates() []Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidates
}

func (s *scene) Queue() *render_queue.RenderQueue {
	return s.queue
}

func (s *scene) Arena() *render_queue.FrameArena {
	return s.arena
}

func (s *scene) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts
}

func (s *scene) CameraUniform() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cameraUniform
}

func (s *scene) TransformUniforms() (static, skinned []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transformsStatic, s.transformsSkinned
}

func (s *scene) LightUniforms() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lightUniforms
}

func (s *scene) VisibleLights() []VisibleLight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lights
}

func (s *scene) Uniforms() []BufferWrite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return []BufferWrite{
		{Name: BufferCamera, Data: s.cameraUniform},
		{Name: BufferTransformsStatic, Data: s.transformsStatic},
		{Name: BufferTransformsSkinned, Data: s.transformsSkinned},
		{Name: BufferLights, Data: s.lightUniforms},
	}
}

// resize returns buf with length n, reusing its storage when large enough.
func resize(buf []byte, n int) []byte {
	if cap(buf) < n {
		return make([]byte, n)
	}
	return buf[:n]
}
