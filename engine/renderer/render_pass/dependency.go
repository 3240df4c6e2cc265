package render_pass

import (
	vk "github.com/vulkan-go/vulkan"
)

// DependencyFlags selects a synchronization intent for AddDependency. Exactly one of
// DependencyTopOfPipe, DependencyBottomOfPipe or DependencyMerged must be set; the read
// flags refine the stages and access masks on the side of the current subpass.
type DependencyFlags uint32

const (
	// DependencyTopOfPipe orders the subpass after everything submitted before the pass.
	DependencyTopOfPipe DependencyFlags = 1 << iota
	// DependencyBottomOfPipe orders everything submitted after the pass after the subpass.
	DependencyBottomOfPipe
	// DependencyMerged orders the subpass after the previous subpass, which it reads.
	DependencyMerged
	// DependencyColourRead marks colour attachment access by the subpass.
	DependencyColourRead
	// DependencyDepthRead marks depth/stencil attachment access by the subpass.
	DependencyDepthRead

	dependencyKindMask = DependencyTopOfPipe | DependencyBottomOfPipe | DependencyMerged
	dependencyReadMask = DependencyColourRead | DependencyDepthRead
)

// valid reports whether exactly one kind bit is set and no unknown bit is.
func (f DependencyFlags) valid() bool {
	if f&^(dependencyKindMask|dependencyReadMask) != 0 {
		return false
	}
	kind := f & dependencyKindMask
	return kind != 0 && kind&(kind-1) == 0
}

// barrierSide is the stage and access mask of one end of a dependency.
type barrierSide struct {
	stage  vk.PipelineStageFlags
	access vk.AccessFlags
}

// externalSide is everything outside the pass.
var externalSide = barrierSide{
	stage:  vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit),
	access: vk.AccessFlags(vk.AccessMemoryReadBit),
}

// writerSide is a subpass that produced attachments a later subpass reads.
func writerSide(depth bool) barrierSide {
	s := barrierSide{
		stage:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		access: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}
	if depth {
		s.stage = vk.PipelineStageFlags(vk.PipelineStageLateFragmentTestsBit)
		s.access = vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit)
	}
	return s
}

// inputReaderSide is a subpass reading attachments as input attachments.
var inputReaderSide = barrierSide{
	stage:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
	access: vk.AccessFlags(vk.AccessInputAttachmentReadBit),
}

// subpassSide returns the current-subpass end of a dependency for the given flags.
func subpassSide(flags DependencyFlags) barrierSide {
	var s barrierSide
	if flags&DependencyMerged != 0 {
		s = inputReaderSide
	}
	if flags&DependencyColourRead != 0 {
		s.stage |= vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
		s.access |= vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit)
	}
	if flags&DependencyDepthRead != 0 {
		s.stage |= vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit | vk.PipelineStageLateFragmentTestsBit)
		s.access |= vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit)
	}
	if s.stage == 0 {
		s.stage = vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
		s.access = vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit)
	}
	return s
}

// barrier builds a by-region dependency from src to dst.
func barrier(srcSubpass, dstSubpass uint32, src, dst barrierSide) vk.SubpassDependency {
	return vk.SubpassDependency{
		SrcSubpass:      srcSubpass,
		DstSubpass:      dstSubpass,
		SrcStageMask:    src.stage,
		DstStageMask:    dst.stage,
		SrcAccessMask:   src.access,
		DstAccessMask:   dst.access,
		DependencyFlags: vk.DependencyFlags(vk.DependencyByRegionBit),
	}
}

// Mirror returns d with source and destination swapped: subpass, stage mask and access
// mask all trade places.
//
// Parameters:
//   - d: the dependency to mirror
//
// Returns:
//   - vk.SubpassDependency: the mirrored dependency
func Mirror(d vk.SubpassDependency) vk.SubpassDependency {
	return vk.SubpassDependency{
		SrcSubpass:      d.DstSubpass,
		DstSubpass:      d.SrcSubpass,
		SrcStageMask:    d.DstStageMask,
		DstStageMask:    d.SrcStageMask,
		SrcAccessMask:   d.DstAccessMask,
		DstAccessMask:   d.SrcAccessMask,
		DependencyFlags: d.DependencyFlags,
	}
}

// barrierPair returns the entry barrier for flags on subpass current and its mirror.
// flags must be valid; DependencyMerged requires current > 0.
func barrierPair(flags DependencyFlags, current uint32) [2]vk.SubpassDependency {
	inner := subpassSide(flags)
	var entry vk.SubpassDependency
	switch {
	case flags&DependencyTopOfPipe != 0:
		entry = barrier(vk.SubpassExternal, current, externalSide, inner)
	case flags&DependencyBottomOfPipe != 0:
		entry = barrier(current, vk.SubpassExternal, inner, externalSide)
	default:
		entry = barrier(current-1, current, writerSide(flags&DependencyDepthRead != 0), inner)
	}
	return [2]vk.SubpassDependency{entry, Mirror(entry)}
}

// appendUnique appends the dependencies of pair that are not already in deps.
func appendUnique(deps []vk.SubpassDependency, pair ...vk.SubpassDependency) []vk.SubpassDependency {
	for _, d := range pair {
		found := false
		for _, existing := range deps {
			if sameDependency(existing, d) {
				found = true
				break
			}
		}
		if !found {
			deps = append(deps, d)
		}
	}
	return deps
}

// sameDependency compares the exported fields of two dependencies.
func sameDependency(a, b vk.SubpassDependency) bool {
	return a.SrcSubpass == b.SrcSubpass &&
		a.DstSubpass == b.DstSubpass &&
		a.SrcStageMask == b.SrcStageMask &&
		a.DstStageMask == b.DstStageMask &&
		a.SrcAccessMask == b.SrcAccessMask &&
		a.DstAccessMask == b.DstAccessMask &&
		a.DependencyFlags == b.DependencyFlags
}
