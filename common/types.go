// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import "math"

// AABB is an axis-aligned bounding box described by its minimum and maximum corners.
// A box whose Min equals its Max is a point; a box with Min > Max on an axis is treated
// as if the two corners were swapped on that axis.
type AABB struct {
	Min [3]float32
	Max [3]float32
}

// Sphere is a bounding sphere used for light volumes.
type Sphere struct {
	Center [3]float32
	Radius float32
}

// NewAABB builds a box from two opposite corners in any order.
//
// Parameters:
//   - a: the first corner
//   - b: the opposite corner
//
// Returns:
//   - AABB: the normalized box spanning both corners
func NewAABB(a, b [3]float32) AABB {
	return AABB{Min: a, Max: b}.Normalized()
}

// Normalized returns a copy of the box with Min <= Max on every axis.
//
// Returns:
//   - AABB: the re-ordered box
func (b AABB) Normalized() AABB {
	out := b
	for i := 0; i < 3; i++ {
		if out.Min[i] > out.Max[i] {
			out.Min[i], out.Max[i] = out.Max[i], out.Min[i]
		}
	}
	return out
}

// Center returns the midpoint of the box.
//
// Returns:
//   - [3]float32: the box center
func (b AABB) Center() [3]float32 {
	return [3]float32{
		(b.Min[0] + b.Max[0]) * 0.5,
		(b.Min[1] + b.Max[1]) * 0.5,
		(b.Min[2] + b.Max[2]) * 0.5,
	}
}

// Extents returns the half-size of the box on each axis.
//
// Returns:
//   - [3]float32: the half extents
func (b AABB) Extents() [3]float32 {
	n := b.Normalized()
	return [3]float32{
		(n.Max[0] - n.Min[0]) * 0.5,
		(n.Max[1] - n.Min[1]) * 0.5,
		(n.Max[2] - n.Min[2]) * 0.5,
	}
}

// IsPoint reports whether the box has zero volume on all three axes.
//
// Returns:
//   - bool: true if Min equals Max
func (b AABB) IsPoint() bool {
	return b.Min == b.Max
}

// Transform returns the axis-aligned box that encloses this box after it has been
// transformed by the column-major matrix m. Uses Arvo's method so only the six
// extremal products per row are evaluated instead of all eight corners.
//
// Parameters:
//   - m: the column-major 4x4 transform
//
// Returns:
//   - AABB: the world-space enclosing box
func (b AABB) Transform(m [16]float32) AABB {
	src := b.Normalized()
	var out AABB
	for i := 0; i < 3; i++ {
		// translation lives in the fourth column
		out.Min[i] = m[12+i]
		out.Max[i] = m[12+i]
		for j := 0; j < 3; j++ {
			e := m[j*4+i]
			lo := e * src.Min[j]
			hi := e * src.Max[j]
			if lo > hi {
				lo, hi = hi, lo
			}
			out.Min[i] += lo
			out.Max[i] += hi
		}
	}
	return out
}

// BoundingSphere returns the sphere that encloses the box.
//
// Returns:
//   - Sphere: the enclosing sphere
func (b AABB) BoundingSphere() Sphere {
	e := b.Extents()
	r := float32(math.Sqrt(float64(e[0]*e[0] + e[1]*e[1] + e[2]*e[2])))
	return Sphere{Center: b.Center(), Radius: r}
}
