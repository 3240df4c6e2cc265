package common

import (
	"math"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   [3]float32
	Distance float32
}

// SignedDistance returns the signed distance from the plane to the point. Positive
// values lie on the side the normal points to.
//
// Parameters:
//   - pt: the point to measure
//
// Returns:
//   - float32: the signed distance
func (p Plane) SignedDistance(pt [3]float32) float32 {
	return p.Normal[0]*pt[0] + p.Normal[1]*pt[1] + p.Normal[2]*pt[2] + p.Distance
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustumFromMatrix extracts frustum planes from a view-projection matrix.
// The matrix should be the combined Projection * View matrix with a [0, 1] clip-space
// depth range, as produced by Perspective.
// Uses the Gribb/Hartmann method for plane extraction.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: 16 float32 values representing the view-projection matrix (column-major)
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustumFromMatrix(viewProj []float32) Frustum {
	var f Frustum

	// row(i) of a column-major matrix is (m[i], m[4+i], m[8+i], m[12+i])
	row := func(i int) [4]float32 {
		return [4]float32{viewProj[i], viewProj[4+i], viewProj[8+i], viewProj[12+i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	set := func(idx int, v [4]float32) {
		f.Planes[idx] = Plane{Normal: [3]float32{v[0], v[1], v[2]}, Distance: v[3]}
	}
	add := func(a, b [4]float32, s float32) [4]float32 {
		return [4]float32{a[0] + s*b[0], a[1] + s*b[1], a[2] + s*b[2], a[3] + s*b[3]}
	}

	set(FrustumLeft, add(r3, r0, 1))
	set(FrustumRight, add(r3, r0, -1))
	set(FrustumBottom, add(r3, r1, 1))
	set(FrustumTop, add(r3, r1, -1))
	// depth is in [0, w], so the near plane is row2 on its own
	set(FrustumNear, r2)
	set(FrustumFar, add(r3, r2, -1))

	for i := range f.Planes {
		f.normalizePlane(i)
	}

	return f
}

// IntersectsAABB reports whether any part of the box lies inside the frustum. The box is
// rejected only when it sits entirely on the outer side of at least one plane, tested
// with the corner furthest along each plane normal. Degenerate boxes are reordered first,
// so a zero-volume box reduces to a point test and the result is always deterministic.
// No allocation; safe for concurrent use.
//
// Parameters:
//   - box: the world-space box to test
//
// Returns:
//   - bool: false if the box is fully outside some plane, true otherwise
func (f *Frustum) IntersectsAABB(box AABB) bool {
	b := box.Normalized()
	for i := range f.Planes {
		p := &f.Planes[i]
		var v [3]float32
		for a := 0; a < 3; a++ {
			if p.Normal[a] >= 0 {
				v[a] = b.Max[a]
			} else {
				v[a] = b.Min[a]
			}
		}
		if p.SignedDistance(v) < 0 {
			return false
		}
	}
	return true
}

// IntersectsSphere reports whether the sphere overlaps the frustum.
//
// Parameters:
//   - s: the sphere to test
//
// Returns:
//   - bool: false if the sphere is fully outside some plane
func (f *Frustum) IntersectsSphere(s Sphere) bool {
	for i := range f.Planes {
		if f.Planes[i].SignedDistance(s.Center) < -s.Radius {
			return false
		}
	}
	return true
}

// normalizePlane normalizes a frustum plane so that the normal has unit length.
func (f *Frustum) normalizePlane(index int) {
	p := &f.Planes[index]
	length := float32(math.Sqrt(float64(
		p.Normal[0]*p.Normal[0] +
			p.Normal[1]*p.Normal[1] +
			p.Normal[2]*p.Normal[2],
	)))

	if length > 0 {
		invLen := 1.0 / length
		p.Normal[0] *= invLen
		p.Normal[1] *= invLen
		p.Normal[2] *= invLen
		p.Distance *= invLen
	}
}
