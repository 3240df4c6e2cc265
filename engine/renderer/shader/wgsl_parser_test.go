package shader

import (
	"fmt"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

const reflectSource = `
struct CameraUniform {
    mvp: mat4x4<f32>,
    position: vec3<f32>,
    projection: mat4x4<f32>,
    model: mat4x4<f32>,
    view: mat4x4<f32>,
    z_near: f32,
    z_far: f32,
}

struct Light {
    position: vec3<f32>,
    light_type: u32,
    color: vec3<f32>,
    intensity: f32,
    direction: vec3<f32>,
    light_range: f32,
    inner_cone: f32,
    outer_cone: f32,
    casts_shadows: u32,
    _pad: u32,
}

// struct Ignored { @location(0) a: f32 }

struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3f,
    @location(2) uv: vec2<f32>,
}

struct InstanceInput {
    @location(3) tint: vec4<f32>,
    @location(4) id: u32,
}

struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@group(1) @binding(1) var diffuse_sampler: sampler;
@group(1) @binding(0) var diffuse: texture_2d<f32>;
@group(0) @binding(1) var<storage, read> lights: array<Light>;
@group(0) @binding(0) var<uniform> camera: CameraUniform;
@group(0) @binding(2) var<storage, read> transforms: array<mat4x4<f32>, 4>;

/* @vertex fn commented_out() {} */

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`

func TestReflectEntryPoints(t *testing.T) {
	r := Reflect(reflectSource)
	require.Equal(t, "vs_main", r.VertexEntry)
	require.Equal(t, "fs_main", r.FragmentEntry)

	empty := Reflect("fn helper() {}")
	require.Empty(t, empty.VertexEntry)
	require.Empty(t, empty.FragmentEntry)
	require.Empty(t, empty.VertexLayouts)
	require.Empty(t, empty.Bindings)
}

func TestReflectVertexLayouts(t *testing.T) {
	r := Reflect(reflectSource)
	require.Len(t, r.VertexLayouts, 2)

	vertex := r.VertexLayouts[0]
	require.Equal(t, uint64(32), vertex.ArrayStride)
	require.Len(t, vertex.Attributes, 3)
	for idx, tc := range []struct {
		location uint32
		format   wgpu.VertexFormat
		offset   uint64
	}{
		{location: 0, format: wgpu.VertexFormatFloat32x3, offset: 0},
		{location: 1, format: wgpu.VertexFormatFloat32x3, offset: 12},
		{location: 2, format: wgpu.VertexFormatFloat32x2, offset: 24},
	} {
		t.Run(fmt.Sprintf("%d", idx), func(t *testing.T) {
			attr := vertex.Attributes[idx]
			require.Equal(t, tc.location, attr.ShaderLocation)
			require.Equal(t, tc.format, attr.Format)
			require.Equal(t, tc.offset, attr.Offset)
		})
	}

	instance := r.VertexLayouts[1]
	require.Equal(t, uint64(20), instance.ArrayStride)
	require.Equal(t, wgpu.VertexFormatUint32, instance.Attributes[1].Format)
}

func TestReflectSetCount(t *testing.T) {
	for idx, tc := range []struct {
		source string
		want   uint32
	}{
		{source: reflectSource, want: 2},
		{source: "fn helper() {}", want: 0},
		{source: "@group(2) @binding(0) var diffuse: texture_2d<f32>;", want: 3},
	} {
		t.Run(fmt.Sprintf("%d", idx), func(t *testing.T) {
			r := Reflect(tc.source)
			require.Equal(t, tc.want, r.SetCount())
			if tc.want > 0 {
				require.Empty(t, r.DescriptorSetLayoutBindings(tc.want))
			}
		})
	}
}

func TestReflectBindings(t *testing.T) {
	r := Reflect(reflectSource)
	require.Len(t, r.Bindings, 5)

	for idx, tc := range []struct {
		group   uint32
		binding uint32
		name    string
		kind    vk.DescriptorType
		size    uint64
	}{
		{group: 0, binding: 0, name: "camera", kind: vk.DescriptorTypeUniformBuffer, size: 288},
		{group: 0, binding: 1, name: "lights", kind: vk.DescriptorTypeStorageBuffer, size: 64},
		{group: 0, binding: 2, name: "transforms", kind: vk.DescriptorTypeStorageBuffer, size: 256},
		{group: 1, binding: 0, name: "diffuse", kind: vk.DescriptorTypeSampledImage, size: 0},
		{group: 1, binding: 1, name: "diffuse_sampler", kind: vk.DescriptorTypeSampler, size: 0},
	} {
		t.Run(fmt.Sprintf("%d", idx), func(t *testing.T) {
			b := r.Bindings[idx]
			require.Equal(t, tc.group, b.Group)
			require.Equal(t, tc.binding, b.Binding)
			require.Equal(t, tc.name, b.Name)
			require.Equal(t, tc.kind, b.Type)
			require.Equal(t, tc.size, b.Size)
		})
	}

	b, ok := r.Binding("camera")
	require.True(t, ok)
	require.Equal(t, uint32(0), b.Binding)
	_, ok = r.Binding("missing")
	require.False(t, ok)

	set := r.DescriptorSetLayoutBindings(1)
	require.Len(t, set, 2)
	require.Equal(t, vk.DescriptorTypeSampledImage, set[0].DescriptorType)
	require.Equal(t, uint32(1), set[0].DescriptorCount)
	require.Nil(t, r.DescriptorSetLayoutBindings(7))
}

func TestStripComments(t *testing.T) {
	for idx, tc := range []struct {
		in   string
		want string
	}{
		{in: "a // b", want: "a \n"},
		{in: "a /* b */ c", want: "a  c\n"},
		{in: "a /* b /* c */ d */ e", want: "a  e\n"},
		{in: "a\nb", want: "a\nb\n"},
	} {
		t.Run(fmt.Sprintf("%d", idx), func(t *testing.T) {
			require.Equal(t, tc.want, stripComments(tc.in))
		})
	}
}

func TestSplitAtTopLevelCommas(t *testing.T) {
	parts := splitAtTopLevelCommas("a: f32, b: array<Light, 6>, c: vec2<f32>")
	require.Len(t, parts, 3)
	require.Equal(t, " b: array<Light, 6>", parts[1])
}
