package light

import (
	"encoding/binary"
	"fmt"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/stretchr/testify/require"
)

func TestLightBounds(t *testing.T) {
	world := common.IdentityMatrix()
	world[12], world[13], world[14] = 10, 0, -2

	for idx, tc := range []struct {
		light   Light
		bounded bool
		center  [3]float32
		radius  float32
	}{
		{light: NewLight(LightTypeDirectional), bounded: false},
		{light: NewLight(LightTypePoint, WithOffset(1, 2, 3), WithRange(4)), bounded: true, center: [3]float32{11, 2, 1}, radius: 4},
		{light: NewLight(LightTypeSpot, WithRange(7)), bounded: true, center: [3]float32{10, 0, -2}, radius: 7},
	} {
		t.Run(fmt.Sprintf("%d", idx), func(t *testing.T) {
			s, ok := tc.light.Bounds(world)
			require.Equal(t, tc.bounded, ok)
			if ok {
				require.Equal(t, tc.center, s.Center)
				require.Equal(t, tc.radius, s.Radius)
			}
		})
	}
}

func TestToGPUAppliesWorldTransform(t *testing.T) {
	var world [16]float32
	common.BuildModelMatrix(world[:], 0, 5, 0, 0, 0, 0, 1, 1, 1)
	l := NewLight(LightTypeSpot, WithOffset(1, 0, 0), WithAim(0, 0, -2), WithShadows())

	g := l.ToGPU(world)
	require.Equal(t, [3]float32{1, 5, 0}, g.Position)
	require.Equal(t, [3]float32{0, 0, -1}, g.Direction)
	require.Equal(t, uint32(LightTypeSpot), g.LightType)
	require.Equal(t, uint32(1), g.CastsShadows)
}

func TestBuilderOptions(t *testing.T) {
	for idx, tc := range []struct {
		options    []LightBuilderOption
		direction  [3]float32
		color      [3]float32
		intensity  float32
		lightRange float32
		inner      float32
		outer      float32
		enabled    bool
		shadows    bool
	}{
		{
			direction: [3]float32{0, -1, 0}, color: [3]float32{1, 1, 1}, intensity: 1, lightRange: 10,
			inner: cosDeg(25), outer: cosDeg(35), enabled: true,
		},
		{
			options:   []LightBuilderOption{WithAim(0, 0, 0), WithRange(-3), WithEmission(1, 0.5, 0, -2)},
			direction: [3]float32{0, -1, 0}, color: [3]float32{1, 0.5, 0}, intensity: 0, lightRange: 0,
			inner: cosDeg(25), outer: cosDeg(35), enabled: true,
		},
		{
			options:   []LightBuilderOption{WithAim(3, 0, 0), WithSpotCone(40, 20), Disabled(), WithShadows()},
			direction: [3]float32{1, 0, 0}, color: [3]float32{1, 1, 1}, intensity: 1, lightRange: 10,
			inner: cosDeg(20), outer: cosDeg(40), shadows: true,
		},
		{
			options:   []LightBuilderOption{WithSpotCone(-10, 120)},
			direction: [3]float32{0, -1, 0}, color: [3]float32{1, 1, 1}, intensity: 1, lightRange: 10,
			inner: 1, outer: cosDeg(90), enabled: true,
		},
	} {
		t.Run(fmt.Sprintf("%d", idx), func(t *testing.T) {
			l := NewLight(LightTypeSpot, tc.options...)
			require.Equal(t, tc.direction, l.Direction())
			require.Equal(t, tc.color, l.Color())
			require.Equal(t, tc.intensity, l.Intensity())
			require.Equal(t, tc.lightRange, l.Range())
			require.InDelta(t, tc.inner, l.InnerCone(), 1e-6)
			require.InDelta(t, tc.outer, l.OuterCone(), 1e-6)
			require.Equal(t, tc.enabled, l.Enabled())
			require.Equal(t, tc.shadows, l.CastsShadows())
		})
	}
}

func TestOffsetFollowsNode(t *testing.T) {
	l := NewLight(LightTypePoint, WithOffset(0, 1, 0), WithRange(3))
	require.Equal(t, [3]float32{0, 1, 0}, l.Position())

	for idx, tc := range []struct {
		x, y, z float32
		center  [3]float32
	}{
		{center: [3]float32{0, 1, 0}},
		{x: 4, y: 0, z: -6, center: [3]float32{4, 1, -6}},
	} {
		t.Run(fmt.Sprintf("%d", idx), func(t *testing.T) {
			var world [16]float32
			common.BuildModelMatrix(world[:], tc.x, tc.y, tc.z, 0, 0, 0, 1, 1, 1)
			s, ok := l.Bounds(world)
			require.True(t, ok)
			require.Equal(t, tc.center, s.Center)
			require.Equal(t, float32(3), s.Radius)
			require.Equal(t, tc.center, l.ToGPU(world).Position)
		})
	}

	// setters apply the same rules as the options
	l.SetDirection(0, 0, 0)
	require.Equal(t, [3]float32{0, -1, 0}, l.Direction())
	l.SetRange(-1)
	require.Equal(t, float32(0), l.Range())
}

func TestMarshalLightBuffer(t *testing.T) {
	lights := []GPULight{
		{Position: [3]float32{1, 2, 3}, LightType: 1, Intensity: 2},
		{LightType: 2, LightRange: 9},
	}
	buf := MarshalLightBuffer(lights, [3]float32{0.1, 0.2, 0.3})

	require.Len(t, buf, GPULightHeaderSize+2*GPULightSize)
	require.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[12:16]))
	require.Equal(t, float32(0.2), math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8])))
	require.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(buf[16+8:])))
	require.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[16+12:]))
	require.Equal(t, float32(2), math.Float32frombits(binary.LittleEndian.Uint32(buf[16+28:])))
	require.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[80+12:]))
	require.Equal(t, float32(9), math.Float32frombits(binary.LittleEndian.Uint32(buf[80+44:])))
}

func TestMarshalLightBufferCapsCount(t *testing.T) {
	lights := make([]GPULight, MaxGPULights+3)
	buf := MarshalLightBuffer(lights, [3]float32{})
	require.Len(t, buf, GPULightHeaderSize+MaxGPULights*GPULightSize)
	require.Equal(t, uint32(MaxGPULights), binary.LittleEndian.Uint32(buf[12:16]))
}
