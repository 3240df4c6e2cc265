package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-frame/common"
)

type cameraImpl struct {
	mu *sync.Mutex

	position [3]float32
	target   [3]float32
	up       [3]float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	modelMatrix          [16]float32
	viewMatrix           [16]float32
	projectionMatrix     [16]float32
	viewProjectionMatrix [16]float32
	mvpMatrix            [16]float32
}

// Camera holds the perspective settings and eye placement for a scene and derives the
// matrices the frame pipeline needs: the view-projection used for frustum extraction and
// the camera uniform payload uploaded each frame.
// Safe for concurrent use.
type Camera interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - [3]float32: the eye position
	Position() [3]float32

	// Target returns the look-at point.
	//
	// Returns:
	//   - [3]float32: the target position
	Target() [3]float32

	// Up returns the camera's up vector.
	//
	// Returns:
	//   - [3]float32: the up vector
	Up() [3]float32

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// ViewMatrix returns the current 4x4 view matrix (column-major).
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the current 4x4 projection matrix (column-major).
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns projection * view (column-major).
	ViewProjectionMatrix() [16]float32

	// Frustum returns the six inward-facing planes of the current view-projection.
	//
	// Returns:
	//   - common.Frustum: the extracted frustum
	Frustum() common.Frustum

	// Uniform returns the camera uniform payload for the current matrices.
	//
	// Returns:
	//   - GPUCameraUniform: the uniform payload
	Uniform() GPUCameraUniform

	// SetPosition moves the eye and recomputes matrices.
	//
	// Parameters:
	//   - x, y, z: world-space coordinates
	SetPosition(x, y, z float32)

	// SetTarget changes the look-at point and recomputes matrices.
	//
	// Parameters:
	//   - x, y, z: world-space coordinates
	SetTarget(x, y, z float32)

	// SetAspect sets the aspect ratio and recomputes matrices.
	//
	// Parameters:
	//   - aspect: width / height
	SetAspect(aspect float32)

	// SetClipPlanes sets the near and far plane distances and recomputes matrices.
	//
	// Parameters:
	//   - near: near plane distance
	//   - far: far plane distance
	SetClipPlanes(near, far float32)

	// Update recomputes every derived matrix. Setters already call it; the frame pipeline
	// calls it once more at the start of each frame.
	Update()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a Camera at (0, 0, 5) looking at the origin with a 45 degree
// field of view.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:          &sync.Mutex{},
		position:    [3]float32{0, 0, 5},
		up:          [3]float32{0, 1, 0},
		fov:         45.0 * (math.Pi / 180.0),
		aspect:      1.0,
		near:        0.1,
		far:         100.0,
		modelMatrix: common.IdentityMatrix(),
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Position() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Target() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Up() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Frustum() common.Frustum {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.ExtractFrustumFromMatrix(c.viewProjectionMatrix[:])
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUCameraUniform{
		MVP:        c.mvpMatrix,
		Position:   c.position,
		Projection: c.projectionMatrix,
		Model:      c.modelMatrix,
		View:       c.viewMatrix,
		ZNear:      c.near,
		ZFar:       c.far,
	}
}

func (c *cameraImpl) SetPosition(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = [3]float32{x, y, z}
	c.updateMatrices()
}

func (c *cameraImpl) SetTarget(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = [3]float32{x, y, z}
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetClipPlanes(near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.far = far
	c.updateMatrices()
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()
}

// updateMatrices recalculates view, projection, view-projection and model-view-projection.
// The model matrix stays identity; per-object transforms travel in the transform buffers.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	common.LookAt(c.viewMatrix[:],
		c.position[0], c.position[1], c.position[2],
		c.target[0], c.target[1], c.target[2],
		c.up[0], c.up[1], c.up[2],
	)

	common.Perspective(c.projectionMatrix[:],
		c.fov, c.aspect, c.near, c.far,
	)

	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
	common.Mul4(c.mvpMatrix[:], c.viewProjectionMatrix[:], c.modelMatrix[:])
}
