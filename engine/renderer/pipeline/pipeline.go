// Package pipeline builds Vulkan graphics pipelines against a finalized render pass.
package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/render_pass"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/shader"
	vk "github.com/vulkan-go/vulkan"
)

var (
	// ErrPassNotFinalized is returned when Build is given no finalized pass.
	ErrPassNotFinalized = errors.New("pipeline: pass not finalized")

	// ErrBlendAttachmentMismatch is returned when the blend attachment count differs from
	// the colour attachment count of the subpass.
	ErrBlendAttachmentMismatch = errors.New("pipeline: blend attachment count mismatch")

	// ErrPipelineCreation wraps a device rejection of the pipeline or its layout.
	ErrPipelineCreation = errors.New("pipeline: creation failed")

	// ErrInvalidSubpass is returned for a subpass index the pass does not have.
	ErrInvalidSubpass = errors.New("pipeline: invalid subpass")

	// ErrNoVertexStage is returned for a program without a vertex stage.
	ErrNoVertexStage = errors.New("pipeline: program has no vertex stage")
)

// VertexInput is the vertex input state of a pipeline.
type VertexInput struct {
	Bindings   []vk.VertexInputBindingDescription
	Attributes []vk.VertexInputAttributeDescription
}

type pipeline struct {
	key     string
	dev     device.Device
	handle  vk.Pipeline
	pass    render_pass.Pass
	subpass uint32
	program shader.Program

	layout     Layout
	ownsLayout bool

	vertexInput VertexInput
	once        *sync.Once

	depthTestEnabled    bool
	depthWriteEnabled   bool
	depthCompareOp      vk.CompareOp
	depthBias           float32
	depthBiasSlopeScale float32
	cullMode            vk.CullModeFlagBits
	frontFace           vk.FrontFace
	topology            vk.PrimitiveTopology
	primitiveRestart    bool
	polygonMode         vk.PolygonMode
	blendEnabled        bool
	writeMask           vk.ColorComponentFlags
	blendOverride       []vk.PipelineColorBlendAttachmentState
	dynamicViewport     bool
}

// Pipeline is an immutable graphics pipeline bound to one subpass of one pass. The pass
// must outlive the pipeline.
type Pipeline interface {
	// Key returns the pipeline key.
	Key() string

	// Handle returns the device handle.
	Handle() vk.Pipeline

	// Pass returns the pass the pipeline was built against.
	Pass() render_pass.Pass

	// Subpass returns the subpass index.
	Subpass() uint32

	// Layout returns the pipeline layout.
	Layout() Layout

	// Program returns the shader program.
	Program() shader.Program

	// Width returns the width of the pass render area.
	Width() uint32

	// Height returns the height of the pass render area.
	Height() uint32

	// VertexInput returns the vertex input state, attributes sorted by location.
	VertexInput() VertexInput

	// Destroy releases the device pipeline and a layout the pipeline created itself.
	// Safe to call more than once.
	Destroy()
}

var _ Pipeline = &pipeline{}

// Build creates a graphics pipeline for program on a subpass of pass.
//
// Defaults: depth test on, depth write off, less-or-equal compare, back-face culling,
// counter-clockwise front faces, triangle lists, fill mode, blending off, viewport and
// scissor covering the pass extent.
//
// Parameters:
//   - dev: the device
//   - pass: a finalized pass
//   - program: the shader program
//   - options: functional options
//
// Returns:
//   - Pipeline: the pipeline
//   - error: ErrPassNotFinalized, ErrInvalidSubpass, ErrNoVertexStage,
//     ErrBlendAttachmentMismatch or ErrPipelineCreation
func Build(dev device.Device, pass render_pass.Pass, program shader.Program, options ...PipelineBuilderOption) (Pipeline, error) {
	p := &pipeline{
		dev:              dev,
		pass:             pass,
		program:          program,
		once:             &sync.Once{},
		depthTestEnabled: true,
		depthCompareOp:   vk.CompareOpLessOrEqual,
		cullMode:         vk.CullModeBackBit,
		frontFace:        vk.FrontFaceCounterClockwise,
		topology:         vk.PrimitiveTopologyTriangleList,
		polygonMode:      vk.PolygonModeFill,
		writeMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit |
			vk.ColorComponentBBit | vk.ColorComponentABit),
	}
	for _, option := range options {
		option(p)
	}
	if p.key == "" && program != nil {
		p.key = program.Key()
	}

	if pass == nil {
		return nil, fmt.Errorf("%w: %s", ErrPassNotFinalized, p.key)
	}
	if int(p.subpass) >= pass.SubpassCount() {
		return nil, fmt.Errorf("%w: %s: subpass %d of %d", ErrInvalidSubpass, p.key, p.subpass, pass.SubpassCount())
	}
	if program == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoVertexStage, p.key)
	}
	if _, ok := program.Stage(shader.ShaderTypeVertex); !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoVertexStage, p.key)
	}

	blend, err := p.blendAttachments()
	if err != nil {
		return nil, err
	}
	p.vertexInput = vertexInput(program.Inputs())

	if p.layout == nil {
		p.layout = NewLayout(dev, WithReflectedSets(program.Reflection()))
		p.ownsLayout = true
	}
	if err := p.layout.Build(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPipelineCreation, p.key, err)
	}

	info := p.createInfo(blend)
	handle, err := dev.CreateGraphicsPipeline(&info)
	if err != nil {
		if p.ownsLayout {
			p.layout.Destroy()
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrPipelineCreation, p.key, err)
	}
	p.handle = handle

	common.Logger().Debug("pipeline built",
		"key", p.key,
		"subpass", p.subpass,
		"attributes", len(p.vertexInput.Attributes),
		"blend_attachments", len(blend),
	)
	return p, nil
}

// blendAttachments returns one state per colour attachment of the subpass.
func (p *pipeline) blendAttachments() ([]vk.PipelineColorBlendAttachmentState, error) {
	want := p.pass.ColourAttachmentCount(p.subpass)
	if p.blendOverride != nil {
		if len(p.blendOverride) != want {
			return nil, fmt.Errorf("%w: %s: %d blend attachments for %d colour attachments",
				ErrBlendAttachmentMismatch, p.key, len(p.blendOverride), want)
		}
		return append([]vk.PipelineColorBlendAttachmentState(nil), p.blendOverride...), nil
	}

	states := p.pass.ColourBlendAttachments(p.subpass)
	if len(states) != want {
		return nil, fmt.Errorf("%w: %s: %d blend attachments for %d colour attachments",
			ErrBlendAttachmentMismatch, p.key, len(states), want)
	}
	for i := range states {
		states[i].ColorWriteMask = p.writeMask
		if p.blendEnabled {
			states[i].BlendEnable = vk.True
			states[i].SrcColorBlendFactor = vk.BlendFactorSrcAlpha
			states[i].DstColorBlendFactor = vk.BlendFactorOneMinusSrcAlpha
			states[i].ColorBlendOp = vk.BlendOpAdd
			states[i].SrcAlphaBlendFactor = vk.BlendFactorOne
			states[i].DstAlphaBlendFactor = vk.BlendFactorOneMinusSrcAlpha
			states[i].AlphaBlendOp = vk.BlendOpAdd
		}
	}
	return states, nil
}

// vertexInput sorts the inputs by location, keeping declaration order for ties, and
// derives one binding description per vertex buffer binding in first-use order.
func vertexInput(inputs []shader.InputBinding) VertexInput {
	sorted := append([]shader.InputBinding(nil), inputs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Location < sorted[j].Location
	})

	var out VertexInput
	seen := make(map[uint32]bool)
	for _, in := range sorted {
		out.Attributes = append(out.Attributes, vk.VertexInputAttributeDescription{
			Location: in.Location,
			Binding:  in.Binding,
			Format:   in.Format,
			Offset:   in.Offset,
		})
		if seen[in.Binding] {
			continue
		}
		seen[in.Binding] = true
		out.Bindings = append(out.Bindings, vk.VertexInputBindingDescription{
			Binding:   in.Binding,
			Stride:    in.Stride,
			InputRate: in.Rate,
		})
	}
	return out
}

// samples returns the sample count of the first attachment the subpass writes.
func (p *pipeline) samples() vk.SampleCountFlagBits {
	sp := p.pass.Subpasses()[p.subpass]
	attachments := p.pass.Attachments()
	switch {
	case len(sp.ColourRefs) > 0:
		return attachments[sp.ColourRefs[0].Attachment].Samples
	case sp.HasDepth:
		return attachments[sp.DepthRef.Attachment].Samples
	}
	return vk.SampleCount1Bit
}

func (p *pipeline) createInfo(blend []vk.PipelineColorBlendAttachmentState) vk.GraphicsPipelineCreateInfo {
	var stages []vk.PipelineShaderStageCreateInfo
	for _, s := range p.program.Stages() {
		stages = append(stages, vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  s.Type.StageBit(),
			Module: s.Module,
			PName:  s.EntryPoint + "\x00",
		})
	}

	vertexInputState := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(p.vertexInput.Bindings)),
		PVertexBindingDescriptions:      append([]vk.VertexInputBindingDescription(nil), p.vertexInput.Bindings...),
		VertexAttributeDescriptionCount: uint32(len(p.vertexInput.Attributes)),
		PVertexAttributeDescriptions:    append([]vk.VertexInputAttributeDescription(nil), p.vertexInput.Attributes...),
	}

	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               p.topology,
		PrimitiveRestartEnable: boolean(p.primitiveRestart),
	}

	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}
	var dynamicState *vk.PipelineDynamicStateCreateInfo
	if p.dynamicViewport {
		dynamicState = &vk.PipelineDynamicStateCreateInfo{
			SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
			DynamicStateCount: 2,
			PDynamicStates:    []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor},
		}
	} else {
		width, height := p.pass.Width(), p.pass.Height()
		viewportState.PViewports = []vk.Viewport{{
			Width:    float32(width),
			Height:   float32(height),
			MinDepth: 0,
			MaxDepth: 1,
		}}
		viewportState.PScissors = []vk.Rect2D{{
			Extent: vk.Extent2D{Width: width, Height: height},
		}}
	}

	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             p.polygonMode,
		CullMode:                vk.CullModeFlags(p.cullMode),
		FrontFace:               p.frontFace,
		DepthBiasEnable:         boolean(p.depthBias != 0 || p.depthBiasSlopeScale != 0),
		DepthBiasConstantFactor: p.depthBias,
		DepthBiasSlopeFactor:    p.depthBiasSlopeScale,
		LineWidth:               1.0,
	}

	multisample := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: p.samples(),
	}

	var depthStencil *vk.PipelineDepthStencilStateCreateInfo
	if p.pass.Subpasses()[p.subpass].HasDepth {
		depthStencil = &vk.PipelineDepthStencilStateCreateInfo{
			SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
			DepthTestEnable:  boolean(p.depthTestEnabled),
			DepthWriteEnable: boolean(p.depthWriteEnabled),
			DepthCompareOp:   p.depthCompareOp,
			MaxDepthBounds:   1,
		}
	}

	colourBlend := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		AttachmentCount: uint32(len(blend)),
		PAttachments:    blend,
	}

	return vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInputState,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisample,
		PDepthStencilState:  depthStencil,
		PColorBlendState:    &colourBlend,
		PDynamicState:       dynamicState,
		Layout:              p.layout.Handle(),
		RenderPass:          p.pass.Handle(),
		Subpass:             p.subpass,
		BasePipelineIndex:   -1,
	}
}

func boolean(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

func (p *pipeline) Key() string {
	return p.key
}

func (p *pipeline) Handle() vk.Pipeline {
	return p.handle
}

func (p *pipeline) Pass() render_pass.Pass {
	return p.pass
}

func (p *pipeline) Subpass() uint32 {
	return p.subpass
}

func (p *pipeline) Layout() Layout {
	return p.layout
}

func (p *pipeline) Program() shader.Program {
	return p.program
}

func (p *pipeline) Width() uint32 {
	return p.pass.Width()
}

func (p *pipeline) Height() uint32 {
	return p.pass.Height()
}

func (p *pipeline) VertexInput() VertexInput {
	return VertexInput{
		Bindings:   append([]vk.VertexInputBindingDescription(nil), p.vertexInput.Bindings...),
		Attributes: append([]vk.VertexInputAttributeDescription(nil), p.vertexInput.Attributes...),
	}
}

func (p *pipeline) Destroy() {
	p.once.Do(func() {
		p.dev.DestroyPipeline(p.handle)
		if p.ownsLayout {
			p.layout.Destroy()
		}
	})
}
