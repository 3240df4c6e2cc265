package pipeline

import (
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/device/devicetest"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/shader"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestLayoutBuildIsRetryable(t *testing.T) {
	dev := devicetest.New()
	l := NewLayout(dev,
		WithPushConstant(vk.ShaderStageFlags(vk.ShaderStageVertexBit|vk.ShaderStageFragmentBit), 0, 16),
		WithPushConstant(vk.ShaderStageFlags(vk.ShaderStageFragmentBit), 16, 4),
	)

	// nothing to release yet
	l.Destroy()
	require.Equal(t, 0, dev.Destroyed(devicetest.OpPipelineLayout))

	dev.Fail(devicetest.OpPipelineLayout, vk.ErrorOutOfHostMemory)
	err := l.Build()
	require.ErrorIs(t, err, device.ErrDevice)
	require.False(t, l.Built())

	dev.Succeed(devicetest.OpPipelineLayout)
	require.NoError(t, l.Build())
	require.NoError(t, l.Build())
	require.True(t, l.Built())
	require.Len(t, dev.PipelineLayouts, 1)

	ranges := l.PushConstantRanges()
	require.Len(t, ranges, 2)
	require.Equal(t, uint32(16), ranges[1].Offset)
	ranges[0].Size = 99
	require.Equal(t, uint32(16), l.PushConstantRanges()[0].Size)
	require.Empty(t, l.DescriptorSetLayouts())
}

const setsSource = `
struct Camera {
    view_proj: mat4x4<f32>,
}

@group(0) @binding(0) var<uniform> camera: Camera;
@group(0) @binding(1) var<storage, read> transforms: array<mat4x4<f32>>;
@group(2) @binding(0) var diffuse: texture_2d<f32>;
`

func TestLayoutReflectedSets(t *testing.T) {
	dev := devicetest.New()
	reflection := shader.Reflect(setsSource)
	require.Equal(t, uint32(3), reflection.SetCount())

	l := NewLayout(dev,
		WithReflectedSets(reflection),
		WithDescriptorSetLayouts(vk.DescriptorSetLayout(vk.NullHandle)),
	)
	require.Len(t, l.DescriptorSetLayouts(), 1)
	require.NoError(t, l.Build())

	require.Len(t, dev.SetLayouts, 3)
	for idx, want := range []uint32{2, 0, 1} {
		t.Run(fmt.Sprintf("%d", idx), func(t *testing.T) {
			require.Equal(t, want, dev.SetLayouts[idx].BindingCount)
		})
	}
	require.Equal(t, vk.DescriptorTypeUniformBuffer, dev.SetLayouts[0].PBindings[0].DescriptorType)
	require.Equal(t, vk.DescriptorTypeStorageBuffer, dev.SetLayouts[0].PBindings[1].DescriptorType)

	require.Len(t, dev.PipelineLayouts, 1)
	require.Equal(t, uint32(4), dev.PipelineLayouts[0].SetLayoutCount)
	require.Len(t, l.DescriptorSetLayouts(), 4)

	l.Destroy()
	l.Destroy()
	require.Equal(t, 3, dev.Destroyed(devicetest.OpSetLayout))
	require.Equal(t, 1, dev.Destroyed(devicetest.OpPipelineLayout))
}

func TestLayoutReflectedSetsReleasedOnFailure(t *testing.T) {
	for idx, tc := range []struct {
		fail      string
		created   int
		destroyed int
	}{
		{fail: devicetest.OpSetLayout, created: 0, destroyed: 0},
		{fail: devicetest.OpPipelineLayout, created: 3, destroyed: 3},
	} {
		t.Run(fmt.Sprintf("%d", idx), func(t *testing.T) {
			dev := devicetest.New()
			l := NewLayout(dev, WithReflectedSets(shader.Reflect(setsSource)))

			dev.Fail(tc.fail, vk.ErrorOutOfDeviceMemory)
			err := l.Build()
			require.ErrorIs(t, err, device.ErrDevice)
			require.False(t, l.Built())
			require.Len(t, dev.SetLayouts, tc.created)
			require.Equal(t, tc.destroyed, dev.Destroyed(devicetest.OpSetLayout))
			require.Empty(t, l.DescriptorSetLayouts())

			dev.Succeed(tc.fail)
			require.NoError(t, l.Build())
			require.Len(t, dev.SetLayouts, tc.created+3)
			require.Len(t, l.DescriptorSetLayouts(), 3)
		})
	}
}
