package light

import (
	"github.com/Carmen-Shannon/oxy-frame/common"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional represents a light with no position, only direction.
	// It lights the whole scene and is never culled.
	LightTypeDirectional LightType = iota

	// LightTypePoint represents a light that emits in all directions from a position.
	// Attenuates with distance up to a configurable range.
	LightTypePoint

	// LightTypeSpot represents a light that emits in a cone from a position along a direction.
	// Attenuates with both distance and angle from the cone axis.
	LightTypeSpot
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType    LightType
	position     [3]float32
	direction    [3]float32
	color        [3]float32
	intensity    float32
	lightRange   float32
	innerCone    float32 // stored as cos(angle in radians)
	outerCone    float32 // stored as cos(angle in radians)
	enabled      bool
	castsShadows bool
}

// Light defines the interface for a light source attached to a world node.
//
// Position and direction are expressed in the space of the owning node; the scene
// transforms them by the node's world matrix every frame before culling and before
// marshaling them into the light uniform buffer.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type (directional, point, or spot)
	Type() LightType

	// Position returns the node-space position of the light.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Direction returns the normalized node-space direction of the light.
	//
	// Returns:
	//   - [3]float32: normalized direction as (x, y, z)
	Direction() [3]float32

	// Color returns the RGB color of the light.
	Color() [3]float32

	// Intensity returns the scalar intensity multiplier for the light.
	Intensity() float32

	// Range returns the maximum attenuation distance for point and spot lights.
	Range() float32

	// InnerCone returns the cosine of the inner cone half-angle for spot lights.
	InnerCone() float32

	// OuterCone returns the cosine of the outer cone half-angle for spot lights.
	OuterCone() float32

	// Enabled returns whether this light is active for rendering.
	// Disabled lights are skipped during culling.
	Enabled() bool

	// CastsShadows returns whether this light is eligible for shadow map generation.
	CastsShadows() bool

	// Bounds returns the world-space sphere the light can affect.
	//
	// Parameters:
	//   - world: the column-major world matrix of the owning node
	//
	// Returns:
	//   - common.Sphere: the influence sphere
	//   - bool: false for directional lights, which are unbounded
	Bounds(world [16]float32) (common.Sphere, bool)

	// ToGPU converts the light into its GPU representation in world space.
	//
	// Parameters:
	//   - world: the column-major world matrix of the owning node
	//
	// Returns:
	//   - GPULight: the GPU-aligned representation
	ToGPU(world [16]float32) GPULight

	// SetPosition sets the offset of the light from its node's origin.
	SetPosition(x, y, z float32)

	// SetDirection sets the node-space direction of the light and normalizes it. A zero
	// vector is ignored.
	SetDirection(x, y, z float32)

	// SetColor sets the RGB color of the light.
	SetColor(r, g, b float32)

	// SetIntensity sets the scalar intensity multiplier.
	SetIntensity(intensity float32)

	// SetRange sets the maximum attenuation distance, which is also the Bounds radius.
	// Negative values clamp to zero.
	SetRange(lightRange float32)

	// SetSpotCone sets the inner and outer cone half-angles for spot lights, clamped and
	// ordered the same way as WithSpotCone.
	//
	// Parameters:
	//   - innerDeg: inner cone half-angle in degrees
	//   - outerDeg: outer cone half-angle in degrees
	SetSpotCone(innerDeg, outerDeg float32)

	// SetEnabled enables or disables the light for rendering.
	SetEnabled(enabled bool)

	// SetCastsShadows sets whether the light is eligible for shadow mapping.
	SetCastsShadows(castsShadows bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with sensible defaults and
// any provided options applied.
//
// Parameters:
//   - lightType: the kind of light to create (directional, point, or spot)
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType:  lightType,
		direction:  [3]float32{0, -1, 0},
		color:      [3]float32{1, 1, 1},
		intensity:  1.0,
		lightRange: 10.0,
		innerCone:  cosDeg(25),
		outerCone:  cosDeg(35),
		enabled:    true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() [3]float32 {
	return l.position
}

func (l *lightImpl) Direction() [3]float32 {
	return l.direction
}

func (l *lightImpl) Color() [3]float32 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Range() float32 {
	return l.lightRange
}

func (l *lightImpl) InnerCone() float32 {
	return l.innerCone
}

func (l *lightImpl) OuterCone() float32 {
	return l.outerCone
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) CastsShadows() bool {
	return l.castsShadows
}

func (l *lightImpl) Bounds(world [16]float32) (common.Sphere, bool) {
	if l.lightType == LightTypeDirectional {
		return common.Sphere{}, false
	}
	return common.Sphere{
		Center: common.TransformPoint(world, l.position),
		Radius: l.lightRange,
	}, true
}

func (l *lightImpl) ToGPU(world [16]float32) GPULight {
	shadowVal := uint32(0)
	if l.castsShadows {
		shadowVal = 1
	}
	return GPULight{
		Position:     common.TransformPoint(world, l.position),
		LightType:    uint32(l.lightType),
		Color:        l.color,
		Intensity:    l.intensity,
		Direction:    transformDirection(world, l.direction),
		LightRange:   l.lightRange,
		InnerCone:    l.innerCone,
		OuterCone:    l.outerCone,
		CastsShadows: shadowVal,
	}
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.position = [3]float32{x, y, z}
}

func (l *lightImpl) SetDirection(x, y, z float32) {
	l.direction = aim(l.direction, x, y, z)
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.color = [3]float32{r, g, b}
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetRange(lightRange float32) {
	l.lightRange = max(lightRange, 0)
}

func (l *lightImpl) SetSpotCone(innerDeg, outerDeg float32) {
	l.innerCone, l.outerCone = spotCone(innerDeg, outerDeg)
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

func (l *lightImpl) SetCastsShadows(castsShadows bool) {
	l.castsShadows = castsShadows
}

// transformDirection rotates d by the upper 3x3 of the column-major matrix m and
// renormalizes the result. A matrix collapsing d keeps d.
func transformDirection(m [16]float32, d [3]float32) [3]float32 {
	x := m[0]*d[0] + m[4]*d[1] + m[8]*d[2]
	y := m[1]*d[0] + m[5]*d[1] + m[9]*d[2]
	z := m[2]*d[0] + m[6]*d[1] + m[10]*d[2]
	return aim(d, x, y, z)
}
