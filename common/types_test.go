package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func requireVec3InDelta(t *testing.T, want, got [3]float32) {
	t.Helper()
	for i := 0; i < 3; i++ {
		require.InDelta(t, want[i], got[i], 1e-5, "axis %d", i)
	}
}

func TestAABBTransformTranslate(t *testing.T) {
	var m [16]float32
	BuildModelMatrix(m[:], 1, 2, 3, 0, 0, 0, 1, 1, 1)

	box := AABB{Min: [3]float32{-0.5, -0.5, -0.5}, Max: [3]float32{0.5, 0.5, 0.5}}
	out := box.Transform(m)
	requireVec3InDelta(t, [3]float32{0.5, 1.5, 2.5}, out.Min)
	requireVec3InDelta(t, [3]float32{1.5, 2.5, 3.5}, out.Max)
}

func TestAABBTransformRotateScale(t *testing.T) {
	var m [16]float32
	BuildModelMatrix(m[:], 0, 0, 0, 0, math.Pi/2, 0, 1, 1, 1)

	box := AABB{Min: [3]float32{0, 0, 0}, Max: [3]float32{2, 1, 1}}
	out := box.Transform(m)
	requireVec3InDelta(t, [3]float32{0, 0, -2}, out.Min)
	requireVec3InDelta(t, [3]float32{1, 1, 0}, out.Max)

	BuildModelMatrix(m[:], 0, 0, 0, 0, 0, 0, 2, 3, 4)
	out = AABB{Min: [3]float32{-1, -1, -1}, Max: [3]float32{1, 1, 1}}.Transform(m)
	requireVec3InDelta(t, [3]float32{-2, -3, -4}, out.Min)
	requireVec3InDelta(t, [3]float32{2, 3, 4}, out.Max)
}

func TestAABBNormalizedAndPoint(t *testing.T) {
	b := NewAABB([3]float32{1, -1, 3}, [3]float32{-1, 1, 2})
	require.Equal(t, [3]float32{-1, -1, 2}, b.Min)
	require.Equal(t, [3]float32{1, 1, 3}, b.Max)
	require.False(t, b.IsPoint())
	require.True(t, AABB{}.IsPoint())

	s := AABB{Min: [3]float32{-1, -1, -1}, Max: [3]float32{1, 1, 1}}.BoundingSphere()
	require.Equal(t, [3]float32{0, 0, 0}, s.Center)
	require.InDelta(t, math.Sqrt(3), s.Radius, 1e-5)
}

func TestPutMat4(t *testing.T) {
	buf := make([]byte, 64)
	PutMat4(buf, IdentityMatrix())
	require.Equal(t, []byte{0, 0, 0x80, 0x3f}, buf[0:4])
	require.Equal(t, []byte{0, 0, 0, 0}, buf[4:8])
	require.Equal(t, []byte{0, 0, 0x80, 0x3f}, buf[60:64])
}

func TestTransformPoint(t *testing.T) {
	var m [16]float32
	BuildModelMatrix(m[:], 1, 2, 3, 0, 0, 0, 2, 2, 2)
	requireVec3InDelta(t, [3]float32{3, 4, 5}, TransformPoint(m, [3]float32{1, 1, 1}))
}
