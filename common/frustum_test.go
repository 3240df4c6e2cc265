package common

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// cubeFrustum returns a frustum whose inside is the box [-1, 1] on every axis.
func cubeFrustum() Frustum {
	return Frustum{Planes: [6]Plane{
		FrustumLeft:   {Normal: [3]float32{1, 0, 0}, Distance: 1},
		FrustumRight:  {Normal: [3]float32{-1, 0, 0}, Distance: 1},
		FrustumBottom: {Normal: [3]float32{0, 1, 0}, Distance: 1},
		FrustumTop:    {Normal: [3]float32{0, -1, 0}, Distance: 1},
		FrustumNear:   {Normal: [3]float32{0, 0, 1}, Distance: 1},
		FrustumFar:    {Normal: [3]float32{0, 0, -1}, Distance: 1},
	}}
}

func cameraFrustum() Frustum {
	var view, proj, vp [16]float32
	LookAt(view[:], 0, 0, 5, 0, 0, 0, 0, 1, 0)
	Perspective(proj[:], math.Pi/3, 1, 0.1, 100)
	Mul4(vp[:], proj[:], view[:])
	return ExtractFrustumFromMatrix(vp[:])
}

func TestFrustumIntersectsAABB(t *testing.T) {
	f := cubeFrustum()
	for idx, tc := range []struct {
		box  AABB
		want bool
	}{
		{AABB{Min: [3]float32{-0.5, -0.5, -0.5}, Max: [3]float32{0.5, 0.5, 0.5}}, true},
		{AABB{Min: [3]float32{2, -0.5, -0.5}, Max: [3]float32{3, 0.5, 0.5}}, false},
		{AABB{Min: [3]float32{-3, -0.5, -0.5}, Max: [3]float32{-2, 0.5, 0.5}}, false},
		{AABB{Min: [3]float32{0, 5, 0}, Max: [3]float32{1, 6, 1}}, false},
		{AABB{Min: [3]float32{0, 0, -9}, Max: [3]float32{1, 1, -8}}, false},
		// straddles the right plane
		{AABB{Min: [3]float32{0.5, 0, 0}, Max: [3]float32{4, 0.5, 0.5}}, true},
		// touches the right plane exactly
		{AABB{Min: [3]float32{1, 0, 0}, Max: [3]float32{2, 0.5, 0.5}}, true},
		// encloses the whole frustum
		{AABB{Min: [3]float32{-10, -10, -10}, Max: [3]float32{10, 10, 10}}, true},
		// zero-volume boxes
		{AABB{}, true},
		{AABB{Min: [3]float32{5, 0, 0}, Max: [3]float32{5, 0, 0}}, false},
		// inverted corners are reordered
		{AABB{Min: [3]float32{0.5, 0.5, 0.5}, Max: [3]float32{-0.5, -0.5, -0.5}}, true},
		{AABB{Min: [3]float32{3, 0.5, 0.5}, Max: [3]float32{2, -0.5, -0.5}}, false},
	} {
		t.Run(fmt.Sprintf("%d", idx), func(t *testing.T) {
			require.Equal(t, tc.want, f.IntersectsAABB(tc.box))
		})
	}
}

func TestFrustumIntersectsAABBIsDeterministic(t *testing.T) {
	f := cameraFrustum()
	box := AABB{Min: [3]float32{1, 1, 1}, Max: [3]float32{1, 1, 1}}
	first := f.IntersectsAABB(box)
	for i := 0; i < 100; i++ {
		require.Equal(t, first, f.IntersectsAABB(box))
	}
}

func TestExtractFrustumFromCamera(t *testing.T) {
	f := cameraFrustum()

	unit := AABB{Min: [3]float32{-0.5, -0.5, -0.5}, Max: [3]float32{0.5, 0.5, 0.5}}
	require.True(t, f.IntersectsAABB(unit))

	behind := AABB{Min: [3]float32{-0.5, -0.5, 9.5}, Max: [3]float32{0.5, 0.5, 10.5}}
	require.False(t, f.IntersectsAABB(behind))

	farAway := AABB{Min: [3]float32{-0.5, -0.5, -200}, Max: [3]float32{0.5, 0.5, -199}}
	require.False(t, f.IntersectsAABB(farAway))

	side := AABB{Min: [3]float32{999, -0.5, -0.5}, Max: [3]float32{1000, 0.5, 0.5}}
	require.False(t, f.IntersectsAABB(side))

	for i, p := range f.Planes {
		n := p.Normal
		length := math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2]))
		require.InDelta(t, 1.0, length, 1e-5, "plane %d", i)
	}
}

func TestFrustumIntersectsSphere(t *testing.T) {
	f := cubeFrustum()
	require.True(t, f.IntersectsSphere(Sphere{Radius: 0.1}))
	require.False(t, f.IntersectsSphere(Sphere{Center: [3]float32{3, 0, 0}, Radius: 1}))
	require.True(t, f.IntersectsSphere(Sphere{Center: [3]float32{3, 0, 0}, Radius: 2.5}))
}
