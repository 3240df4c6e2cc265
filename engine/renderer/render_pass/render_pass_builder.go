package render_pass

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/device"
	vk "github.com/vulkan-go/vulkan"
)

var (
	// ErrPassFinalized is returned by every declare call after Finalize succeeded.
	ErrPassFinalized = errors.New("render_pass: pass already finalized")

	// ErrDanglingReference is returned when an input attachment names a reference no
	// output attachment declared.
	ErrDanglingReference = errors.New("render_pass: dangling reference")

	// ErrInvalidAttachmentReference is returned when a subpass names an undeclared reference.
	ErrInvalidAttachmentReference = errors.New("render_pass: invalid attachment reference")

	// ErrNoSubpasses is returned by Finalize when no subpass was declared.
	ErrNoSubpasses = errors.New("render_pass: no subpasses")

	// ErrNoAttachments is returned when a subpass is declared before any attachment.
	ErrNoAttachments = errors.New("render_pass: no attachments")

	// ErrInvalidDependency is returned for dependency flags that do not name exactly one
	// of top-of-pipe, bottom-of-pipe or merged, or that cannot apply to the current subpass.
	ErrInvalidDependency = errors.New("render_pass: invalid dependency")
)

// State is the position of a Builder in its lifecycle.
type State int

const (
	StateEmpty State = iota
	StateAttachmentsDeclared
	StateSubpassesDeclared
	StateFinalized
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateAttachmentsDeclared:
		return "attachments-declared"
	case StateSubpassesDeclared:
		return "subpasses-declared"
	case StateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// outputRef is what an output declaration records for its reference id.
type outputRef struct {
	attachment uint32
	layout     vk.ImageLayout
	readLayout vk.ImageLayout
}

type builder struct {
	mu *sync.Mutex

	dev   device.Device
	state State

	width       uint32
	height      uint32
	clearColour [4]float32
	depthClear  float32

	attachments  []Attachment
	outputs      map[uint32]outputRef
	inputs       map[uint32]vk.AttachmentReference
	depthIndex   int
	subpasses    []Subpass
	dependencies []vk.SubpassDependency
}

// Builder accumulates the declaration of one render pass.
//
// Every failing call leaves the builder exactly as it was, so the caller may correct the
// declaration and continue. Builders are meant for single-goroutine setup code.
type Builder interface {
	// State returns the current lifecycle state.
	State() State

	// AddOutputAttachment declares an attachment written under reference id ref. Declaring
	// a reference twice is a no-op. Only one depth/stencil attachment is kept per pass; a
	// second one under a different reference is ignored and its reference resolves to the
	// first.
	//
	// Parameters:
	//   - format: the pixel format
	//   - ref: the reference id subpasses use
	//   - clear: load/store behaviour for colour/depth and stencil
	//   - samples: the sample count
	//
	// Returns:
	//   - error: ErrPassFinalized
	AddOutputAttachment(format vk.Format, ref uint32, clear ClearFlags, samples vk.SampleCountFlagBits) error

	// AddAttachment declares a single-sample attachment cleared on load under the next
	// free reference id.
	//
	// Parameters:
	//   - format: the pixel format
	//
	// Returns:
	//   - uint32: the reference id assigned
	//   - error: ErrPassFinalized
	AddAttachment(format vk.Format) (uint32, error)

	// AddInputAttachment declares that ref is read as an input attachment. The reference
	// takes the read layout recorded when its output was declared.
	//
	// Parameters:
	//   - ref: the reference id of a declared output
	//
	// Returns:
	//   - error: ErrDanglingReference or ErrPassFinalized
	AddInputAttachment(ref uint32) error

	// AddSubpass appends a subpass. Every reference is resolved before anything is stored;
	// an output reference naming the depth attachment fills the depth slot.
	//
	// Parameters:
	//   - inputRefs: references read as input attachments
	//   - outputRefs: references written by the subpass
	//   - options: subpass options such as WithDepthReference
	//
	// Returns:
	//   - error: ErrInvalidAttachmentReference, ErrNoAttachments or ErrPassFinalized
	AddSubpass(inputRefs, outputRefs []uint32, options ...SubpassOption) error

	// AddDependency synthesizes a barrier for the most recent subpass together with its
	// mirror.
	//
	// Parameters:
	//   - flags: one of DependencyTopOfPipe, DependencyBottomOfPipe, DependencyMerged,
	//     optionally combined with DependencyColourRead and DependencyDepthRead
	//
	// Returns:
	//   - error: ErrInvalidDependency or ErrPassFinalized
	AddDependency(flags DependencyFlags) error

	// Finalize resolves layouts and implicit barriers and creates the device render pass.
	// A device failure leaves the builder unfinalized so the call can be retried.
	//
	// Returns:
	//   - Pass: the immutable pass
	//   - error: ErrNoSubpasses, ErrPassFinalized or a device error
	Finalize() (Pass, error)
}

var _ Builder = &builder{}

// NewBuilder creates an empty render pass builder.
//
// Parameters:
//   - dev: the device the pass is created on
//   - options: functional options
//
// Returns:
//   - Builder: the builder
func NewBuilder(dev device.Device, options ...BuilderOption) Builder {
	b := &builder{
		mu:          &sync.Mutex{},
		dev:         dev,
		width:       800,
		height:      600,
		clearColour: [4]float32{0, 0, 0, 1},
		depthClear:  1.0,
		outputs:     make(map[uint32]outputRef),
		inputs:      make(map[uint32]vk.AttachmentReference),
		depthIndex:  -1,
	}
	for _, option := range options {
		option(b)
	}
	return b
}

func (b *builder) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *builder) AddOutputAttachment(format vk.Format, ref uint32, clear ClearFlags, samples vk.SampleCountFlagBits) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addOutput(format, ref, clear, samples)
}

func (b *builder) addOutput(format vk.Format, ref uint32, clear ClearFlags, samples vk.SampleCountFlagBits) error {
	if b.state == StateFinalized {
		return ErrPassFinalized
	}
	if _, ok := b.outputs[ref]; ok {
		return nil
	}

	if IsDepthStencilFormat(format) && b.depthIndex >= 0 {
		kept := b.attachments[b.depthIndex]
		common.Logger().Debug("render pass keeps a single depth attachment",
			"ignored_ref", ref,
			"kept_ref", kept.Reference,
		)
		b.outputs[ref] = b.outputs[kept.Reference]
		return nil
	}

	if samples == 0 {
		samples = vk.SampleCount1Bit
	}
	a := Attachment{
		Reference:      ref,
		Format:         format,
		Samples:        samples,
		LoadOp:         loadOp(clear&ClearColour != 0),
		StoreOp:        storeOp(clear&StoreColour != 0),
		StencilLoadOp:  loadOp(clear&ClearStencil != 0),
		StencilStoreOp: storeOp(clear&StoreStencil != 0),
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    FinalTransitionLayout(format),
	}

	index := uint32(len(b.attachments))
	b.attachments = append(b.attachments, a)
	if IsDepthStencilFormat(format) {
		b.depthIndex = int(index)
	}
	b.outputs[ref] = outputRef{
		attachment: index,
		layout:     AttachmentLayout(format),
		readLayout: FinalTransitionLayout(format),
	}
	if b.state == StateEmpty {
		b.state = StateAttachmentsDeclared
	}
	return nil
}

func (b *builder) AddAttachment(format vk.Format) (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateFinalized {
		return 0, ErrPassFinalized
	}

	var ref uint32
	for r := range b.outputs {
		if r >= ref {
			ref = r + 1
		}
	}
	if err := b.addOutput(format, ref, ClearColour, vk.SampleCount1Bit); err != nil {
		return 0, err
	}
	return ref, nil
}

func (b *builder) AddInputAttachment(ref uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateFinalized {
		return ErrPassFinalized
	}

	out, ok := b.outputs[ref]
	if !ok {
		return fmt.Errorf("%w: input %d has no output declaration", ErrDanglingReference, ref)
	}
	b.inputs[ref] = vk.AttachmentReference{Attachment: out.attachment, Layout: out.readLayout}
	return nil
}

func (b *builder) AddSubpass(inputRefs, outputRefs []uint32, options ...SubpassOption) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateFinalized {
		return ErrPassFinalized
	}
	if len(b.attachments) == 0 {
		return ErrNoAttachments
	}

	cfg := subpassConfig{}
	for _, option := range options {
		option(&cfg)
	}

	index := len(b.subpasses)
	var sp Subpass

	if cfg.hasDepth {
		out, ok := b.outputs[cfg.depthRef]
		if !ok || !b.attachments[out.attachment].IsDepthStencil() {
			return fmt.Errorf("%w: depth %d in subpass %d", ErrInvalidAttachmentReference, cfg.depthRef, index)
		}
		sp.DepthRef = vk.AttachmentReference{Attachment: out.attachment, Layout: out.layout}
		sp.HasDepth = true
	}

	for _, ref := range inputRefs {
		in, ok := b.inputs[ref]
		if !ok {
			out, found := b.outputs[ref]
			if !found {
				return fmt.Errorf("%w: input %d in subpass %d", ErrInvalidAttachmentReference, ref, index)
			}
			in = vk.AttachmentReference{Attachment: out.attachment, Layout: out.readLayout}
		}
		sp.InputRefs = append(sp.InputRefs, in)
	}

	for _, ref := range outputRefs {
		out, ok := b.outputs[ref]
		if !ok {
			return fmt.Errorf("%w: output %d in subpass %d", ErrInvalidAttachmentReference, ref, index)
		}
		ar := vk.AttachmentReference{Attachment: out.attachment, Layout: out.layout}
		if b.attachments[out.attachment].IsDepthStencil() {
			if !sp.HasDepth {
				sp.DepthRef = ar
				sp.HasDepth = true
			}
			continue
		}
		if !containsRef(sp.ColourRefs, ar) {
			sp.ColourRefs = append(sp.ColourRefs, ar)
		}
	}

	b.subpasses = append(b.subpasses, sp)
	b.state = StateSubpassesDeclared
	common.Logger().Debug("render pass subpass declared",
		"subpass", index,
		"colour", len(sp.ColourRefs),
		"input", len(sp.InputRefs),
		"depth", sp.HasDepth,
	)
	return nil
}

func (b *builder) AddDependency(flags DependencyFlags) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateFinalized {
		return ErrPassFinalized
	}
	if !flags.valid() {
		return fmt.Errorf("%w: flags %#x", ErrInvalidDependency, uint32(flags))
	}
	if len(b.subpasses) == 0 {
		return fmt.Errorf("%w: no subpass declared", ErrInvalidDependency)
	}
	current := uint32(len(b.subpasses) - 1)
	if flags&DependencyMerged != 0 && current == 0 {
		return fmt.Errorf("%w: merged dependency on the first subpass", ErrInvalidDependency)
	}

	pair := barrierPair(flags, current)
	b.dependencies = appendUnique(b.dependencies, pair[:]...)
	return nil
}

func (b *builder) Finalize() (Pass, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateFinalized {
		return nil, ErrPassFinalized
	}
	if len(b.subpasses) == 0 {
		return nil, ErrNoSubpasses
	}

	deps := append([]vk.SubpassDependency(nil), b.dependencies...)
	if len(deps) == 0 {
		pair := barrierPair(b.defaultDependencyFlags(), 0)
		deps = appendUnique(deps, pair[:]...)
	}
	deps = b.inputBarriers(deps)

	attachments := make([]Attachment, len(b.attachments))
	descriptions := make([]vk.AttachmentDescription, len(b.attachments))
	clearValues := make([]ClearValue, len(b.attachments))
	for i, a := range b.attachments {
		a.FinalLayout = FinalTransitionLayout(a.Format)
		attachments[i] = a
		descriptions[i] = a.description()
		if a.IsDepthStencil() {
			clearValues[i] = ClearValue{Depth: b.depthClear, IsDepth: true}
		} else {
			clearValues[i] = ClearValue{Colour: b.clearColour}
		}
	}

	subpasses := make([]Subpass, len(b.subpasses))
	subpassDescriptions := make([]vk.SubpassDescription, len(b.subpasses))
	for i := range b.subpasses {
		sp := b.subpasses[i].clone()
		subpasses[i] = sp
		desc := vk.SubpassDescription{
			PipelineBindPoint:    vk.PipelineBindPointGraphics,
			InputAttachmentCount: uint32(len(sp.InputRefs)),
			PInputAttachments:    sp.InputRefs,
			ColorAttachmentCount: uint32(len(sp.ColourRefs)),
			PColorAttachments:    sp.ColourRefs,
		}
		if sp.HasDepth {
			depth := sp.DepthRef
			desc.PDepthStencilAttachment = &depth
		}
		subpassDescriptions[i] = desc
	}

	info := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(descriptions)),
		PAttachments:    descriptions,
		SubpassCount:    uint32(len(subpassDescriptions)),
		PSubpasses:      subpassDescriptions,
		DependencyCount: uint32(len(deps)),
		PDependencies:   deps,
	}
	handle, err := b.dev.CreateRenderPass(&info)
	if err != nil {
		return nil, fmt.Errorf("render_pass: finalize: %w", err)
	}

	b.state = StateFinalized
	common.Logger().Debug("render pass finalized",
		"attachments", len(attachments),
		"subpasses", len(subpasses),
		"dependencies", len(deps),
	)
	return &pass{
		dev:          b.dev,
		handle:       handle,
		once:         &sync.Once{},
		width:        b.width,
		height:       b.height,
		attachments:  attachments,
		subpasses:    subpasses,
		dependencies: append([]vk.SubpassDependency(nil), deps...),
		clearValues:  clearValues,
	}, nil
}

// defaultDependencyFlags is the external-in intent used when no dependency was declared,
// reading whichever attachment kinds the pass has.
func (b *builder) defaultDependencyFlags() DependencyFlags {
	flags := DependencyTopOfPipe
	for _, a := range b.attachments {
		if a.IsDepthStencil() {
			flags |= DependencyDepthRead
		} else {
			flags |= DependencyColourRead
		}
	}
	return flags
}

// inputBarriers adds a merged barrier pair for every input attachment that an earlier
// subpass writes, using the most recent writer.
func (b *builder) inputBarriers(deps []vk.SubpassDependency) []vk.SubpassDependency {
	for i := 1; i < len(b.subpasses); i++ {
		for _, in := range b.subpasses[i].InputRefs {
			writer := -1
			for j := i - 1; j >= 0 && writer < 0; j-- {
				if writes(b.subpasses[j], in.Attachment) {
					writer = j
				}
			}
			if writer < 0 {
				continue
			}
			depth := b.attachments[in.Attachment].IsDepthStencil()
			entry := barrier(uint32(writer), uint32(i), writerSide(depth), inputReaderSide)
			deps = appendUnique(deps, entry, Mirror(entry))
			common.Logger().Debug("render pass input barrier synthesized",
				"writer", writer,
				"reader", i,
				"attachment", in.Attachment,
			)
		}
	}
	return deps
}

// writes reports whether the subpass writes the attachment index.
func writes(sp Subpass, attachment uint32) bool {
	if sp.HasDepth && sp.DepthRef.Attachment == attachment {
		return true
	}
	for _, r := range sp.ColourRefs {
		if r.Attachment == attachment {
			return true
		}
	}
	return false
}

func containsRef(refs []vk.AttachmentReference, r vk.AttachmentReference) bool {
	for _, existing := range refs {
		if existing.Attachment == r.Attachment {
			return true
		}
	}
	return false
}

func loadOp(clear bool) vk.AttachmentLoadOp {
	if clear {
		return vk.AttachmentLoadOpClear
	}
	return vk.AttachmentLoadOpDontCare
}

func storeOp(store bool) vk.AttachmentStoreOp {
	if store {
		return vk.AttachmentStoreOpStore
	}
	return vk.AttachmentStoreOpDontCare
}
