// Package devicetest provides an in-memory device.Device for tests. It records every
// create-info it receives and can be told to reject a call, so builders can be exercised
// without a GPU. Returned handles are always nil.
package devicetest

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/device"
	vk "github.com/vulkan-go/vulkan"
)

// Operation names accepted by Fail and Destroyed.
const (
	OpRenderPass     = "render pass"
	OpFramebuffer    = "framebuffer"
	OpPipelineLayout = "pipeline layout"
	OpPipeline       = "graphics pipeline"
	OpShaderModule   = "shader module"
	OpSetLayout      = "descriptor set layout"
)

// Device is a recording fake of device.Device.
type Device struct {
	mu *sync.Mutex

	RenderPasses    []vk.RenderPassCreateInfo
	Framebuffers    []vk.FramebufferCreateInfo
	PipelineLayouts []vk.PipelineLayoutCreateInfo
	Pipelines       []vk.GraphicsPipelineCreateInfo
	ShaderModules   [][]uint32
	SetLayouts      []vk.DescriptorSetLayoutCreateInfo

	failures  map[string]vk.Result
	destroyed map[string]int
}

var _ device.Device = &Device{}

// New creates an empty fake device.
//
// Returns:
//   - *Device: the fake
func New() *Device {
	return &Device{
		mu:        &sync.Mutex{},
		failures:  make(map[string]vk.Result),
		destroyed: make(map[string]int),
	}
}

// Fail makes every following create call for op return res.
//
// Parameters:
//   - op: one of the Op constants
//   - res: the result to report, e.g. vk.ErrorOutOfDeviceMemory
func (d *Device) Fail(op string, res vk.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[op] = res
}

// Succeed clears a failure installed with Fail.
//
// Parameters:
//   - op: one of the Op constants
func (d *Device) Succeed(op string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.failures, op)
}

// Destroyed returns how many objects of kind op were destroyed.
//
// Parameters:
//   - op: one of the Op constants
//
// Returns:
//   - int: the destroy count
func (d *Device) Destroyed(op string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.destroyed[op]
}

func (d *Device) check(op string) error {
	if res, ok := d.failures[op]; ok {
		return device.NewError("create "+op, res)
	}
	return nil
}

func (d *Device) CreateRenderPass(info *vk.RenderPassCreateInfo) (vk.RenderPass, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(OpRenderPass); err != nil {
		return nil, err
	}
	d.RenderPasses = append(d.RenderPasses, *info)
	return nil, nil
}

func (d *Device) DestroyRenderPass(vk.RenderPass) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyed[OpRenderPass]++
}

func (d *Device) CreateFramebuffer(info *vk.FramebufferCreateInfo) (vk.Framebuffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(OpFramebuffer); err != nil {
		return nil, err
	}
	d.Framebuffers = append(d.Framebuffers, *info)
	return nil, nil
}

func (d *Device) DestroyFramebuffer(vk.Framebuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyed[OpFramebuffer]++
}

func (d *Device) CreatePipelineLayout(info *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(OpPipelineLayout); err != nil {
		return nil, err
	}
	d.PipelineLayouts = append(d.PipelineLayouts, *info)
	return nil, nil
}

func (d *Device) DestroyPipelineLayout(vk.PipelineLayout) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyed[OpPipelineLayout]++
}

func (d *Device) CreateDescriptorSetLayout(info *vk.DescriptorSetLayoutCreateInfo) (vk.DescriptorSetLayout, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(OpSetLayout); err != nil {
		return nil, err
	}
	d.SetLayouts = append(d.SetLayouts, *info)
	return nil, nil
}

func (d *Device) DestroyDescriptorSetLayout(vk.DescriptorSetLayout) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyed[OpSetLayout]++
}

func (d *Device) CreateGraphicsPipeline(info *vk.GraphicsPipelineCreateInfo) (vk.Pipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(OpPipeline); err != nil {
		return nil, err
	}
	d.Pipelines = append(d.Pipelines, *info)
	return nil, nil
}

func (d *Device) DestroyPipeline(vk.Pipeline) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyed[OpPipeline]++
}

func (d *Device) CreateShaderModule(code []uint32) (vk.ShaderModule, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(OpShaderModule); err != nil {
		return nil, err
	}
	d.ShaderModules = append(d.ShaderModules, append([]uint32(nil), code...))
	return nil, nil
}

func (d *Device) DestroyShaderModule(vk.ShaderModule) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyed[OpShaderModule]++
}
