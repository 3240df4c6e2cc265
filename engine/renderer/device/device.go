// Package device is the thin layer between the render builders and the graphics driver.
// Builders assemble Vulkan create-infos and hand them to a Device; the Device returns
// opaque handles that are passed back verbatim for recording and destruction.
package device

import (
	vk "github.com/vulkan-go/vulkan"
)

// Device creates and destroys the GPU objects the render core needs.
// Implementations must be safe to call from the goroutine that owns setup; they are not
// required to be safe for concurrent use.
type Device interface {
	// CreateRenderPass creates a render pass from a fully populated create-info.
	//
	// Parameters:
	//   - info: the create-info
	//
	// Returns:
	//   - vk.RenderPass: the handle
	//   - error: wrapping ErrDevice if the driver rejected the call
	CreateRenderPass(info *vk.RenderPassCreateInfo) (vk.RenderPass, error)

	// DestroyRenderPass releases a render pass.
	DestroyRenderPass(pass vk.RenderPass)

	// CreateFramebuffer creates a framebuffer bound to a render pass.
	//
	// Parameters:
	//   - info: the create-info
	//
	// Returns:
	//   - vk.Framebuffer: the handle
	//   - error: wrapping ErrDevice if the driver rejected the call
	CreateFramebuffer(info *vk.FramebufferCreateInfo) (vk.Framebuffer, error)

	// DestroyFramebuffer releases a framebuffer.
	DestroyFramebuffer(fb vk.Framebuffer)

	// CreatePipelineLayout creates a pipeline layout.
	//
	// Parameters:
	//   - info: the create-info
	//
	// Returns:
	//   - vk.PipelineLayout: the handle
	//   - error: wrapping ErrDevice if the driver rejected the call
	CreatePipelineLayout(info *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, error)

	// DestroyPipelineLayout releases a pipeline layout.
	DestroyPipelineLayout(layout vk.PipelineLayout)

	// CreateDescriptorSetLayout creates the layout of one descriptor set.
	//
	// Parameters:
	//   - info: the create-info
	//
	// Returns:
	//   - vk.DescriptorSetLayout: the handle
	//   - error: wrapping ErrDevice if the driver rejected the call
	CreateDescriptorSetLayout(info *vk.DescriptorSetLayoutCreateInfo) (vk.DescriptorSetLayout, error)

	// DestroyDescriptorSetLayout releases a descriptor set layout.
	DestroyDescriptorSetLayout(layout vk.DescriptorSetLayout)

	// CreateGraphicsPipeline creates one graphics pipeline.
	//
	// Parameters:
	//   - info: the create-info
	//
	// Returns:
	//   - vk.Pipeline: the handle
	//   - error: wrapping ErrDevice if the driver rejected the call
	CreateGraphicsPipeline(info *vk.GraphicsPipelineCreateInfo) (vk.Pipeline, error)

	// DestroyPipeline releases a pipeline.
	DestroyPipeline(pipeline vk.Pipeline)

	// CreateShaderModule creates a shader module from SPIR-V words.
	//
	// Parameters:
	//   - code: the SPIR-V module
	//
	// Returns:
	//   - vk.ShaderModule: the handle
	//   - error: wrapping ErrDevice if the driver rejected the call
	CreateShaderModule(code []uint32) (vk.ShaderModule, error)

	// DestroyShaderModule releases a shader module.
	DestroyShaderModule(module vk.ShaderModule)
}

type vulkanDevice struct {
	device vk.Device
}

var _ Device = &vulkanDevice{}

// NewVulkanDevice wraps a logical device created elsewhere.
//
// Parameters:
//   - dev: the logical device
//
// Returns:
//   - Device: the wrapper
func NewVulkanDevice(dev vk.Device) Device {
	return &vulkanDevice{device: dev}
}

func (d *vulkanDevice) CreateRenderPass(info *vk.RenderPassCreateInfo) (vk.RenderPass, error) {
	var pass vk.RenderPass
	if res := vk.CreateRenderPass(d.device, info, nil, &pass); res != vk.Success {
		return nil, NewError("create render pass", res)
	}
	return pass, nil
}

func (d *vulkanDevice) DestroyRenderPass(pass vk.RenderPass) {
	if pass != nil {
		vk.DestroyRenderPass(d.device, pass, nil)
	}
}

func (d *vulkanDevice) CreateFramebuffer(info *vk.FramebufferCreateInfo) (vk.Framebuffer, error) {
	var fb vk.Framebuffer
	if res := vk.CreateFramebuffer(d.device, info, nil, &fb); res != vk.Success {
		return nil, NewError("create framebuffer", res)
	}
	return fb, nil
}

func (d *vulkanDevice) DestroyFramebuffer(fb vk.Framebuffer) {
	if fb != nil {
		vk.DestroyFramebuffer(d.device, fb, nil)
	}
}

func (d *vulkanDevice) CreatePipelineLayout(info *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, error) {
	var layout vk.PipelineLayout
	if res := vk.CreatePipelineLayout(d.device, info, nil, &layout); res != vk.Success {
		return nil, NewError("create pipeline layout", res)
	}
	return layout, nil
}

func (d *vulkanDevice) DestroyPipelineLayout(layout vk.PipelineLayout) {
	if layout != nil {
		vk.DestroyPipelineLayout(d.device, layout, nil)
	}
}

func (d *vulkanDevice) CreateDescriptorSetLayout(info *vk.DescriptorSetLayoutCreateInfo) (vk.DescriptorSetLayout, error) {
	var layout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(d.device, info, nil, &layout); res != vk.Success {
		return nil, NewError("create descriptor set layout", res)
	}
	return layout, nil
}

func (d *vulkanDevice) DestroyDescriptorSetLayout(layout vk.DescriptorSetLayout) {
	if layout != nil {
		vk.DestroyDescriptorSetLayout(d.device, layout, nil)
	}
}

func (d *vulkanDevice) CreateGraphicsPipeline(info *vk.GraphicsPipelineCreateInfo) (vk.Pipeline, error) {
	pipelines := make([]vk.Pipeline, 1)
	res := vk.CreateGraphicsPipelines(d.device, vk.PipelineCache(vk.NullHandle), 1,
		[]vk.GraphicsPipelineCreateInfo{*info}, nil, pipelines)
	if res != vk.Success {
		return nil, NewError("create graphics pipeline", res)
	}
	return pipelines[0], nil
}

func (d *vulkanDevice) DestroyPipeline(pipeline vk.Pipeline) {
	if pipeline != nil {
		vk.DestroyPipeline(d.device, pipeline, nil)
	}
}

func (d *vulkanDevice) CreateShaderModule(code []uint32) (vk.ShaderModule, error) {
	info := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code) * 4),
		PCode:    code,
	}
	var module vk.ShaderModule
	if res := vk.CreateShaderModule(d.device, &info, nil, &module); res != vk.Success {
		return nil, NewError("create shader module", res)
	}
	return module, nil
}

func (d *vulkanDevice) DestroyShaderModule(module vk.ShaderModule) {
	if module != nil {
		vk.DestroyShaderModule(d.device, module, nil)
	}
}
