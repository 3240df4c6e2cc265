package pipeline

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/shader"
	vk "github.com/vulkan-go/vulkan"
)

type layout struct {
	mu *sync.Mutex

	dev        device.Device
	handle     vk.PipelineLayout
	built      bool
	destroyed  bool
	ranges     []vk.PushConstantRange
	setLayouts []vk.DescriptorSetLayout

	// reflected holds one binding list per set created by Build, owned by the layout.
	reflected [][]vk.DescriptorSetLayoutBinding
	ownedSets []vk.DescriptorSetLayout
}

// Layout is a pipeline layout: push-constant ranges and descriptor set layouts, declared
// before any pipeline using it is built.
type Layout interface {
	// Build creates the device layout. Later calls are no-ops; a failed call can be retried.
	//
	// Returns:
	//   - error: a device error
	Build() error

	// Built reports whether Build succeeded.
	Built() bool

	// Handle returns the device handle, nil before Build.
	Handle() vk.PipelineLayout

	// PushConstantRanges returns the declared push-constant ranges.
	PushConstantRanges() []vk.PushConstantRange

	// DescriptorSetLayouts returns the set layouts in set order: the ones created from a
	// reflection after Build, then the ones given with WithDescriptorSetLayouts.
	DescriptorSetLayouts() []vk.DescriptorSetLayout

	// Destroy releases the device layout and the set layouts it created. Safe to call more
	// than once.
	Destroy()
}

var _ Layout = &layout{}

// LayoutBuilderOption is a functional option for NewLayout.
type LayoutBuilderOption func(*layout)

// WithPushConstant declares a push-constant range.
//
// Parameters:
//   - stages: the stages reading the range
//   - offset: the byte offset
//   - size: the byte size
//
// Returns:
//   - LayoutBuilderOption: option function to apply
func WithPushConstant(stages vk.ShaderStageFlags, offset, size uint32) LayoutBuilderOption {
	return func(l *layout) {
		l.ranges = append(l.ranges, vk.PushConstantRange{
			StageFlags: stages,
			Offset:     offset,
			Size:       size,
		})
	}
}

// WithDescriptorSetLayouts appends descriptor set layouts, in set order.
//
// Parameters:
//   - layouts: the set layouts
//
// Returns:
//   - LayoutBuilderOption: option function to apply
func WithDescriptorSetLayouts(layouts ...vk.DescriptorSetLayout) LayoutBuilderOption {
	return func(l *layout) {
		l.setLayouts = append(l.setLayouts, layouts...)
	}
}

// WithReflectedSets makes Build create one descriptor set layout per group of the
// reflection, groups below the highest unused one getting an empty set. These sets take
// indices 0..n-1, ahead of any WithDescriptorSetLayouts layout, and are destroyed with the
// layout.
//
// Parameters:
//   - reflection: the reflected shader interface, usually Program.Reflection()
//
// Returns:
//   - LayoutBuilderOption: option function to apply
func WithReflectedSets(reflection shader.Reflection) LayoutBuilderOption {
	return func(l *layout) {
		n := reflection.SetCount()
		l.reflected = make([][]vk.DescriptorSetLayoutBinding, n)
		for g := uint32(0); g < n; g++ {
			l.reflected[g] = reflection.DescriptorSetLayoutBindings(g)
		}
	}
}

// NewLayout declares a pipeline layout. Nothing is created until Build.
//
// Parameters:
//   - dev: the device
//   - options: functional options
//
// Returns:
//   - Layout: the layout
func NewLayout(dev device.Device, options ...LayoutBuilderOption) Layout {
	l := &layout{
		mu:  &sync.Mutex{},
		dev: dev,
	}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *layout) Build() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.built {
		return nil
	}

	owned := make([]vk.DescriptorSetLayout, 0, len(l.reflected))
	for g, bindings := range l.reflected {
		setInfo := vk.DescriptorSetLayoutCreateInfo{
			SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
			BindingCount: uint32(len(bindings)),
			PBindings:    append([]vk.DescriptorSetLayoutBinding(nil), bindings...),
		}
		set, err := l.dev.CreateDescriptorSetLayout(&setInfo)
		if err != nil {
			l.releaseSets(owned)
			return fmt.Errorf("pipeline: layout: set %d: %w", g, err)
		}
		owned = append(owned, set)
	}

	sets := append(append([]vk.DescriptorSetLayout(nil), owned...), l.setLayouts...)
	info := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         uint32(len(sets)),
		PSetLayouts:            sets,
		PushConstantRangeCount: uint32(len(l.ranges)),
		PPushConstantRanges:    append([]vk.PushConstantRange(nil), l.ranges...),
	}
	handle, err := l.dev.CreatePipelineLayout(&info)
	if err != nil {
		l.releaseSets(owned)
		return fmt.Errorf("pipeline: layout: %w", err)
	}
	l.handle = handle
	l.ownedSets = owned
	l.built = true
	return nil
}

func (l *layout) releaseSets(sets []vk.DescriptorSetLayout) {
	for _, set := range sets {
		l.dev.DestroyDescriptorSetLayout(set)
	}
}

func (l *layout) Built() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.built
}

func (l *layout) Handle() vk.PipelineLayout {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.handle
}

func (l *layout) PushConstantRanges() []vk.PushConstantRange {
	return append([]vk.PushConstantRange(nil), l.ranges...)
}

func (l *layout) DescriptorSetLayouts() []vk.DescriptorSetLayout {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append(append([]vk.DescriptorSetLayout(nil), l.ownedSets...), l.setLayouts...)
}

func (l *layout) Destroy() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.built || l.destroyed {
		return
	}
	l.dev.DestroyPipelineLayout(l.handle)
	l.releaseSets(l.ownedSets)
	l.ownedSets = nil
	l.destroyed = true
}
