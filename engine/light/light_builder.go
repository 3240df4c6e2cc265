package light

import "math"

// LightBuilderOption configures a light before it is attached to a world node.
type LightBuilderOption func(*lightImpl)

// WithOffset places the light relative to the origin of the node it is attached to. The
// node's world matrix moves it every frame, so a light that should sit on its node keeps
// the zero offset. Directional lights ignore it.
//
// Parameters:
//   - x, y, z: the node-space offset
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithOffset(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = [3]float32{x, y, z}
	}
}

// WithAim sets the node-space direction of directional and spot lights. A zero vector
// keeps the default of straight down the node's -Y axis.
//
// Parameters:
//   - x, y, z: the direction, normalized on store
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithAim(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.direction = aim(l.direction, x, y, z)
	}
}

// WithEmission sets the linear RGB colour and the intensity multiplier together.
//
// Parameters:
//   - r, g, b: the colour
//   - intensity: the multiplier, clamped at zero
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithEmission(r, g, b, intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = [3]float32{r, g, b}
		l.intensity = max(intensity, 0)
	}
}

// WithRange sets the reach of point and spot lights. It is the radius of the sphere
// returned by Bounds, so a light is culled once that sphere leaves the frustum.
//
// Parameters:
//   - lightRange: the radius, clamped at zero
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithRange(lightRange float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.lightRange = max(lightRange, 0)
	}
}

// WithSpotCone sets the cone half-angles of a spot light in degrees.
//
// Parameters:
//   - innerDeg: full intensity inside this angle
//   - outerDeg: no light past this angle
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithSpotCone(innerDeg, outerDeg float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.innerCone, l.outerCone = spotCone(innerDeg, outerDeg)
	}
}

// Disabled creates the light switched off. Disabled lights never reach the visible set.
func Disabled() LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = false
	}
}

// WithShadows marks the light as a shadow caster.
func WithShadows() LightBuilderOption {
	return func(l *lightImpl) {
		l.castsShadows = true
	}
}

// aim normalizes (x, y, z), falling back to current for a zero vector.
func aim(current [3]float32, x, y, z float32) [3]float32 {
	lengthSq := x*x + y*y + z*z
	if lengthSq == 0 {
		return current
	}
	inv := float32(1 / math.Sqrt(float64(lengthSq)))
	return [3]float32{x * inv, y * inv, z * inv}
}

// spotCone clamps both half-angles to [0, 90] degrees, orders them so the inner cone
// never exceeds the outer one and returns their cosines.
func spotCone(innerDeg, outerDeg float32) (float32, float32) {
	innerDeg = min(max(innerDeg, 0), 90)
	outerDeg = min(max(outerDeg, 0), 90)
	if innerDeg > outerDeg {
		innerDeg, outerDeg = outerDeg, innerDeg
	}
	return cosDeg(innerDeg), cosDeg(outerDeg)
}

func cosDeg(deg float32) float32 {
	return float32(math.Cos(float64(deg) * math.Pi / 180))
}
