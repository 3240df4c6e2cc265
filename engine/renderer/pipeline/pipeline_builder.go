package pipeline

import (
	vk "github.com/vulkan-go/vulkan"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during Build.
type PipelineBuilderOption func(*pipeline)

// WithKey names the pipeline for lookups and logs.
//
// Parameters:
//   - key: the pipeline key
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithKey(key string) PipelineBuilderOption {
	return func(p *pipeline) {
		p.key = key
	}
}

// WithSubpass selects the subpass of the pass the pipeline is used in. Defaults to 0.
//
// Parameters:
//   - subpass: the subpass index
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithSubpass(subpass uint32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.subpass = subpass
	}
}

// WithLayout uses a declared layout instead of one owned by the pipeline and covering the
// program's reflected sets. The layout is built on demand and stays owned by the caller.
//
// Parameters:
//   - l: the layout
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithLayout(l Layout) PipelineBuilderOption {
	return func(p *pipeline) {
		p.layout = l
	}
}

// WithDepthTestEnabled sets whether depth testing is enabled. Defaults to true.
//
// Parameters:
//   - enabled: whether depth testing is enabled
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithDepthTestEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthTestEnabled = enabled
	}
}

// WithDepthWriteEnabled sets whether depth writes are enabled. Defaults to false.
//
// Parameters:
//   - enabled: whether depth writes are enabled
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithDepthWriteEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthWriteEnabled = enabled
	}
}

// WithDepthCompareOp sets the depth comparison. Defaults to less-or-equal.
//
// Parameters:
//   - op: the compare op
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithDepthCompareOp(op vk.CompareOp) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthCompareOp = op
	}
}

// WithDepthBias enables depth bias with the given constant and slope factors.
//
// Parameters:
//   - bias: the constant depth bias
//   - slopeScale: the slope-scaled depth bias
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithDepthBias(bias, slopeScale float32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthBias = bias
		p.depthBiasSlopeScale = slopeScale
	}
}

// WithCullMode sets the face culling mode. Defaults to back faces.
//
// Parameters:
//   - mode: the cull mode
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithCullMode(mode vk.CullModeFlagBits) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithFrontFace sets the front face winding. Defaults to counter-clockwise.
//
// Parameters:
//   - face: the winding
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithFrontFace(face vk.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = face
	}
}

// WithTopology sets the primitive topology. Defaults to triangle lists.
//
// Parameters:
//   - topology: the topology
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithTopology(topology vk.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}

// WithPrimitiveRestart enables primitive restart for strip topologies.
//
// Parameters:
//   - enabled: whether primitive restart is enabled
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithPrimitiveRestart(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.primitiveRestart = enabled
	}
}

// WithPolygonMode sets the rasterization fill mode. Defaults to fill.
//
// Parameters:
//   - mode: the polygon mode
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithPolygonMode(mode vk.PolygonMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.polygonMode = mode
	}
}

// WithBlendEnabled turns on source-alpha blending for every colour attachment of the
// subpass.
//
// Parameters:
//   - enabled: whether blending is enabled
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithBlendEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendEnabled = enabled
	}
}

// WithWriteMask sets the colour write mask of the generated blend attachments. Defaults to
// RGBA.
//
// Parameters:
//   - mask: the write mask
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithWriteMask(mask vk.ColorComponentFlags) PipelineBuilderOption {
	return func(p *pipeline) {
		p.writeMask = mask
	}
}

// WithBlendAttachments replaces the generated blend attachments. There must be exactly one
// per colour attachment of the subpass.
//
// Parameters:
//   - states: the blend states, in colour attachment order
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithBlendAttachments(states ...vk.PipelineColorBlendAttachmentState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendOverride = append([]vk.PipelineColorBlendAttachmentState(nil), states...)
	}
}

// WithDynamicViewport leaves viewport and scissor to be set while recording.
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithDynamicViewport() PipelineBuilderOption {
	return func(p *pipeline) {
		p.dynamicViewport = true
	}
}
