package shader

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	vk "github.com/vulkan-go/vulkan"
)

// ErrUnsupportedVertexFormat is returned for vertex formats with no Vulkan counterpart here.
var ErrUnsupportedVertexFormat = errors.New("shader: unsupported vertex format")

var vertexFormats = map[wgpu.VertexFormat]vk.Format{
	wgpu.VertexFormatFloat32:   vk.FormatR32Sfloat,
	wgpu.VertexFormatFloat32x2: vk.FormatR32g32Sfloat,
	wgpu.VertexFormatFloat32x3: vk.FormatR32g32b32Sfloat,
	wgpu.VertexFormatFloat32x4: vk.FormatR32g32b32a32Sfloat,
	wgpu.VertexFormatSint32:    vk.FormatR32Sint,
	wgpu.VertexFormatSint32x2:  vk.FormatR32g32Sint,
	wgpu.VertexFormatSint32x3:  vk.FormatR32g32b32Sint,
	wgpu.VertexFormatSint32x4:  vk.FormatR32g32b32a32Sint,
	wgpu.VertexFormatUint32:    vk.FormatR32Uint,
	wgpu.VertexFormatUint32x2:  vk.FormatR32g32Uint,
	wgpu.VertexFormatUint32x3:  vk.FormatR32g32b32Uint,
	wgpu.VertexFormatUint32x4:  vk.FormatR32g32b32a32Uint,
	wgpu.VertexFormatFloat16x2: vk.FormatR16g16Sfloat,
	wgpu.VertexFormatFloat16x4: vk.FormatR16g16b16a16Sfloat,
}

// InputBinding is one vertex attribute as the pipeline consumes it.
type InputBinding struct {
	Location uint32
	Binding  uint32
	Format   vk.Format
	Offset   uint32
	Stride   uint32
	Rate     vk.VertexInputRate
}

// InputBindings flattens vertex buffer layouts into input bindings. The layout index is the
// vertex buffer binding.
//
// Parameters:
//   - layouts: the layouts, usually Reflection.VertexLayouts
//
// Returns:
//   - []InputBinding: one entry per attribute, in layout then attribute order
//   - error: ErrUnsupportedVertexFormat naming the location
func InputBindings(layouts []wgpu.VertexBufferLayout) ([]InputBinding, error) {
	var out []InputBinding
	for binding, layout := range layouts {
		rate := vk.VertexInputRateVertex
		if layout.StepMode == wgpu.VertexStepModeInstance {
			rate = vk.VertexInputRateInstance
		}
		for _, attr := range layout.Attributes {
			format, ok := vertexFormats[attr.Format]
			if !ok {
				return nil, fmt.Errorf("%w: location %d", ErrUnsupportedVertexFormat, attr.ShaderLocation)
			}
			out = append(out, InputBinding{
				Location: attr.ShaderLocation,
				Binding:  uint32(binding),
				Format:   format,
				Offset:   uint32(attr.Offset),
				Stride:   uint32(layout.ArrayStride),
				Rate:     rate,
			})
		}
	}
	return out, nil
}
