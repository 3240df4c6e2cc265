// Package render_pass builds Vulkan render passes declaratively. A Builder collects
// attachments, subpasses and synchronization intents, resolves attachment references and
// the barriers between subpasses, and finalizes into an immutable Pass that pipelines and
// framebuffers are built against.
package render_pass

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/device"
	vk "github.com/vulkan-go/vulkan"
)

// ClearFlags selects load and store behaviour for the colour/depth aspect and the stencil
// aspect of an attachment independently. Unset bits mean "don't care".
type ClearFlags uint32

const (
	// ClearColour clears the colour or depth aspect on load.
	ClearColour ClearFlags = 1 << iota
	// StoreColour keeps the colour or depth aspect after the pass.
	StoreColour
	// ClearStencil clears the stencil aspect on load.
	ClearStencil
	// StoreStencil keeps the stencil aspect after the pass.
	StoreStencil

	// ClearNone loads and stores nothing.
	ClearNone ClearFlags = 0
)

// Attachment is one image slot of a pass.
type Attachment struct {
	Reference      uint32
	Format         vk.Format
	Samples        vk.SampleCountFlagBits
	LoadOp         vk.AttachmentLoadOp
	StoreOp        vk.AttachmentStoreOp
	StencilLoadOp  vk.AttachmentLoadOp
	StencilStoreOp vk.AttachmentStoreOp
	InitialLayout  vk.ImageLayout
	FinalLayout    vk.ImageLayout
}

// IsDepthStencil reports whether the attachment has a depth or stencil format.
func (a Attachment) IsDepthStencil() bool {
	return IsDepthStencilFormat(a.Format)
}

func (a Attachment) description() vk.AttachmentDescription {
	return vk.AttachmentDescription{
		Format:         a.Format,
		Samples:        a.Samples,
		LoadOp:         a.LoadOp,
		StoreOp:        a.StoreOp,
		StencilLoadOp:  a.StencilLoadOp,
		StencilStoreOp: a.StencilStoreOp,
		InitialLayout:  a.InitialLayout,
		FinalLayout:    a.FinalLayout,
	}
}

// Subpass is one rendering phase. References index the pass attachment table.
type Subpass struct {
	ColourRefs []vk.AttachmentReference
	InputRefs  []vk.AttachmentReference
	DepthRef   vk.AttachmentReference
	HasDepth   bool
}

func (s Subpass) clone() Subpass {
	out := s
	out.ColourRefs = append([]vk.AttachmentReference(nil), s.ColourRefs...)
	out.InputRefs = append([]vk.AttachmentReference(nil), s.InputRefs...)
	return out
}

// ClearValue is the clear value of one attachment, in attachment order.
type ClearValue struct {
	Colour  [4]float32
	Depth   float32
	Stencil uint32
	IsDepth bool
}

// Vulkan converts the clear value for vk.RenderPassBeginInfo.
//
// Returns:
//   - vk.ClearValue: the packed clear value
func (c ClearValue) Vulkan() vk.ClearValue {
	if c.IsDepth {
		return vk.NewClearDepthStencil(c.Depth, c.Stencil)
	}
	return vk.NewClearValue(c.Colour[:])
}

type pass struct {
	dev    device.Device
	handle vk.RenderPass
	once   *sync.Once

	width  uint32
	height uint32

	attachments  []Attachment
	subpasses    []Subpass
	dependencies []vk.SubpassDependency
	clearValues  []ClearValue
}

// Pass is a finalized render pass. It never changes after Finalize and is safe to share
// between goroutines; every slice accessor returns a copy.
type Pass interface {
	// Handle returns the device handle.
	Handle() vk.RenderPass

	// Width returns the render area width, matching the framebuffers built for the pass.
	Width() uint32

	// Height returns the render area height.
	Height() uint32

	// Attachments returns the attachment table in index order.
	Attachments() []Attachment

	// Subpasses returns the subpasses in declaration order.
	Subpasses() []Subpass

	// Dependencies returns every dependency handed to the device.
	Dependencies() []vk.SubpassDependency

	// ColourBlendAttachments returns one blend state per colour attachment of the subpass,
	// in reference order, with blending disabled.
	//
	// Parameters:
	//   - subpass: the subpass index
	//
	// Returns:
	//   - []vk.PipelineColorBlendAttachmentState: the blend states, nil for an unknown subpass
	ColourBlendAttachments(subpass uint32) []vk.PipelineColorBlendAttachmentState

	// ColourAttachmentCount returns the number of colour attachments of the subpass.
	ColourAttachmentCount(subpass uint32) int

	// SubpassCount returns the number of subpasses.
	SubpassCount() int

	// ClearValues returns one clear value per attachment, in attachment order.
	ClearValues() []ClearValue

	// HasColourAttachment reports whether any attachment has a colour format.
	HasColourAttachment() bool

	// HasDepthAttachment reports whether any attachment has a depth or stencil format.
	HasDepthAttachment() bool

	// Destroy releases the device render pass. Safe to call more than once.
	Destroy()
}

var _ Pass = &pass{}

func (p *pass) Handle() vk.RenderPass {
	return p.handle
}

func (p *pass) Width() uint32 {
	return p.width
}

func (p *pass) Height() uint32 {
	return p.height
}

func (p *pass) Attachments() []Attachment {
	return append([]Attachment(nil), p.attachments...)
}

func (p *pass) Subpasses() []Subpass {
	out := make([]Subpass, len(p.subpasses))
	for i := range p.subpasses {
		out[i] = p.subpasses[i].clone()
	}
	return out
}

func (p *pass) Dependencies() []vk.SubpassDependency {
	return append([]vk.SubpassDependency(nil), p.dependencies...)
}

func (p *pass) ColourBlendAttachments(subpass uint32) []vk.PipelineColorBlendAttachmentState {
	if int(subpass) >= len(p.subpasses) {
		return nil
	}
	refs := p.subpasses[subpass].ColourRefs
	out := make([]vk.PipelineColorBlendAttachmentState, len(refs))
	for i := range refs {
		out[i] = vk.PipelineColorBlendAttachmentState{
			BlendEnable: vk.False,
			ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit |
				vk.ColorComponentBBit | vk.ColorComponentABit),
		}
	}
	return out
}

func (p *pass) ColourAttachmentCount(subpass uint32) int {
	if int(subpass) >= len(p.subpasses) {
		return 0
	}
	return len(p.subpasses[subpass].ColourRefs)
}

func (p *pass) SubpassCount() int {
	return len(p.subpasses)
}

func (p *pass) ClearValues() []ClearValue {
	return append([]ClearValue(nil), p.clearValues...)
}

func (p *pass) HasColourAttachment() bool {
	for _, a := range p.attachments {
		if !a.IsDepthStencil() {
			return true
		}
	}
	return false
}

func (p *pass) HasDepthAttachment() bool {
	for _, a := range p.attachments {
		if a.IsDepthStencil() {
			return true
		}
	}
	return false
}

func (p *pass) Destroy() {
	p.once.Do(func() {
		p.dev.DestroyRenderPass(p.handle)
	})
}
