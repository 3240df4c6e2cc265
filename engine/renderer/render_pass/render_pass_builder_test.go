package render_pass

import (
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/device/devicetest"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

const (
	colourFormat = vk.FormatB8g8r8a8Unorm
	depthFormat  = vk.FormatD32Sfloat
)

// colourDepthBuilder declares colour ref 0 and depth ref 1 with a single subpass writing both.
func colourDepthBuilder(t *testing.T, dev device.Device) Builder {
	t.Helper()
	b := NewBuilder(dev, WithExtent(1280, 720))
	require.NoError(t, b.AddOutputAttachment(colourFormat, 0, ClearColour|StoreColour, vk.SampleCount1Bit))
	require.NoError(t, b.AddOutputAttachment(depthFormat, 1, ClearColour, vk.SampleCount1Bit))
	require.NoError(t, b.AddSubpass(nil, []uint32{0, 1}))
	return b
}

func hasDependency(deps []vk.SubpassDependency, d vk.SubpassDependency) bool {
	for _, existing := range deps {
		if sameDependency(existing, d) {
			return true
		}
	}
	return false
}

func TestBuilderStates(t *testing.T) {
	dev := devicetest.New()
	b := NewBuilder(dev)
	require.Equal(t, StateEmpty, b.State())

	require.NoError(t, b.AddOutputAttachment(colourFormat, 0, ClearColour, vk.SampleCount1Bit))
	require.Equal(t, StateAttachmentsDeclared, b.State())

	require.NoError(t, b.AddSubpass(nil, []uint32{0}))
	require.Equal(t, StateSubpassesDeclared, b.State())

	p, err := b.Finalize()
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Equal(t, StateFinalized, b.State())
	require.Equal(t, "finalized", b.State().String())
}

func TestFinalizeSingleSubpass(t *testing.T) {
	dev := devicetest.New()
	b := colourDepthBuilder(t, dev)

	p, err := b.Finalize()
	require.NoError(t, err)
	require.Len(t, dev.RenderPasses, 1)

	require.Equal(t, uint32(1280), p.Width())
	require.Equal(t, uint32(720), p.Height())
	require.True(t, p.HasColourAttachment())
	require.True(t, p.HasDepthAttachment())
	require.Equal(t, 1, p.SubpassCount())

	attachments := p.Attachments()
	require.Len(t, attachments, 2)
	require.Equal(t, vk.ImageLayoutShaderReadOnlyOptimal, attachments[0].FinalLayout)
	require.Equal(t, vk.ImageLayoutDepthStencilReadOnlyOptimal, attachments[1].FinalLayout)
	require.Equal(t, vk.AttachmentLoadOpClear, attachments[0].LoadOp)
	require.Equal(t, vk.AttachmentStoreOpStore, attachments[0].StoreOp)
	require.Equal(t, vk.AttachmentStoreOpDontCare, attachments[1].StoreOp)

	sp := p.Subpasses()[0]
	require.Len(t, sp.ColourRefs, 1)
	require.Equal(t, vk.ImageLayoutColorAttachmentOptimal, sp.ColourRefs[0].Layout)
	require.True(t, sp.HasDepth)
	require.Equal(t, uint32(1), sp.DepthRef.Attachment)
	require.Equal(t, vk.ImageLayoutDepthStencilAttachmentOptimal, sp.DepthRef.Layout)

	// no dependency declared: default external pair
	deps := p.Dependencies()
	require.Len(t, deps, 2)
	require.Equal(t, vk.SubpassExternal, deps[0].SrcSubpass)
	require.Equal(t, uint32(0), deps[0].DstSubpass)
	require.True(t, sameDependency(Mirror(deps[0]), deps[1]))

	info := dev.RenderPasses[0]
	require.Equal(t, uint32(2), info.AttachmentCount)
	require.Equal(t, uint32(1), info.SubpassCount)
	require.Equal(t, uint32(2), info.DependencyCount)
	require.NotNil(t, info.PSubpasses[0].PDepthStencilAttachment)

	clears := p.ClearValues()
	require.Len(t, clears, 2)
	require.False(t, clears[0].IsDepth)
	require.True(t, clears[1].IsDepth)
	require.Equal(t, float32(1), clears[1].Depth)

	require.Len(t, p.ColourBlendAttachments(0), 1)
	require.Nil(t, p.ColourBlendAttachments(4))
}

func TestAddOutputAttachmentDuplicates(t *testing.T) {
	b := NewBuilder(devicetest.New())
	require.NoError(t, b.AddOutputAttachment(colourFormat, 3, ClearColour, vk.SampleCount1Bit))
	require.NoError(t, b.AddOutputAttachment(vk.FormatR8g8b8a8Unorm, 3, ClearNone, vk.SampleCount4Bit))

	// second depth attachment under a new ref aliases the first
	require.NoError(t, b.AddOutputAttachment(depthFormat, 4, ClearColour, vk.SampleCount1Bit))
	require.NoError(t, b.AddOutputAttachment(vk.FormatD24UnormS8Uint, 5, ClearColour, vk.SampleCount1Bit))
	require.NoError(t, b.AddSubpass(nil, []uint32{3, 5}))

	p, err := b.Finalize()
	require.NoError(t, err)
	attachments := p.Attachments()
	require.Len(t, attachments, 2)
	require.Equal(t, colourFormat, attachments[0].Format)
	require.Equal(t, vk.SampleCount1Bit, attachments[0].Samples)
	require.Equal(t, depthFormat, attachments[1].Format)

	sp := p.Subpasses()[0]
	require.True(t, sp.HasDepth)
	require.Equal(t, uint32(1), sp.DepthRef.Attachment)
}

func TestAddAttachment(t *testing.T) {
	b := NewBuilder(devicetest.New())
	ref, err := b.AddAttachment(colourFormat)
	require.NoError(t, err)
	require.Equal(t, uint32(0), ref)

	require.NoError(t, b.AddOutputAttachment(colourFormat, 7, ClearNone, vk.SampleCount1Bit))
	ref, err = b.AddAttachment(depthFormat)
	require.NoError(t, err)
	require.Equal(t, uint32(8), ref)

	require.NoError(t, b.AddSubpass(nil, []uint32{0, 7, 8}))
	p, err := b.Finalize()
	require.NoError(t, err)
	attachments := p.Attachments()
	require.Equal(t, vk.AttachmentLoadOpClear, attachments[0].LoadOp)
	require.Equal(t, vk.AttachmentLoadOpDontCare, attachments[1].LoadOp)
	require.Equal(t, 2, p.ColourAttachmentCount(0))
}

func TestAddInputAttachment(t *testing.T) {
	b := NewBuilder(devicetest.New())
	err := b.AddInputAttachment(2)
	require.ErrorIs(t, err, ErrDanglingReference)
	require.Equal(t, StateEmpty, b.State())

	require.NoError(t, b.AddOutputAttachment(depthFormat, 2, ClearColour, vk.SampleCount1Bit))
	require.NoError(t, b.AddInputAttachment(2))

	impl := b.(*builder)
	require.Equal(t, vk.ImageLayoutDepthStencilReadOnlyOptimal, impl.inputs[2].Layout)
}

func TestAddSubpassErrors(t *testing.T) {
	b := NewBuilder(devicetest.New())
	require.ErrorIs(t, b.AddSubpass(nil, []uint32{0}), ErrNoAttachments)

	require.NoError(t, b.AddOutputAttachment(colourFormat, 0, ClearColour, vk.SampleCount1Bit))
	require.NoError(t, b.AddOutputAttachment(depthFormat, 1, ClearColour, vk.SampleCount1Bit))

	for idx, tc := range []struct {
		inputs  []uint32
		outputs []uint32
		options []SubpassOption
	}{
		{outputs: []uint32{0, 9}},
		{inputs: []uint32{9}, outputs: []uint32{0}},
		{outputs: []uint32{0}, options: []SubpassOption{WithDepthReference(9)}},
		{outputs: []uint32{0}, options: []SubpassOption{WithDepthReference(0)}},
	} {
		t.Run(fmt.Sprintf("%d", idx), func(t *testing.T) {
			err := b.AddSubpass(tc.inputs, tc.outputs, tc.options...)
			require.ErrorIs(t, err, ErrInvalidAttachmentReference)
			require.Empty(t, b.(*builder).subpasses)
			require.Equal(t, StateAttachmentsDeclared, b.State())
		})
	}

	require.NoError(t, b.AddSubpass(nil, []uint32{0}, WithDepthReference(1)))
	require.Len(t, b.(*builder).subpasses, 1)
}

func TestAddDependencyValidation(t *testing.T) {
	for idx, tc := range []struct {
		flags     DependencyFlags
		subpasses int
		wantErr   bool
	}{
		{flags: DependencyTopOfPipe, subpasses: 1},
		{flags: DependencyBottomOfPipe | DependencyColourRead, subpasses: 1},
		{flags: DependencyMerged | DependencyDepthRead, subpasses: 2},
		{flags: 0, subpasses: 1, wantErr: true},
		{flags: DependencyColourRead, subpasses: 1, wantErr: true},
		{flags: DependencyTopOfPipe | DependencyBottomOfPipe, subpasses: 1, wantErr: true},
		{flags: DependencyTopOfPipe | 1<<12, subpasses: 1, wantErr: true},
		{flags: DependencyMerged, subpasses: 1, wantErr: true},
		{flags: DependencyTopOfPipe, subpasses: 0, wantErr: true},
	} {
		t.Run(fmt.Sprintf("%d", idx), func(t *testing.T) {
			b := NewBuilder(devicetest.New())
			require.NoError(t, b.AddOutputAttachment(colourFormat, 0, ClearColour, vk.SampleCount1Bit))
			for i := 0; i < tc.subpasses; i++ {
				require.NoError(t, b.AddSubpass(nil, []uint32{0}))
			}

			err := b.AddDependency(tc.flags)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidDependency)
				require.Empty(t, b.(*builder).dependencies)
				return
			}
			require.NoError(t, err)
			require.Len(t, b.(*builder).dependencies, 2)
		})
	}
}

func TestDependenciesAreMirrored(t *testing.T) {
	b := NewBuilder(devicetest.New())
	require.NoError(t, b.AddOutputAttachment(colourFormat, 0, ClearColour|StoreColour, vk.SampleCount1Bit))
	require.NoError(t, b.AddOutputAttachment(vk.FormatR16g16b16a16Sfloat, 1, ClearColour, vk.SampleCount1Bit))
	require.NoError(t, b.AddOutputAttachment(depthFormat, 2, ClearColour, vk.SampleCount1Bit))
	require.NoError(t, b.AddInputAttachment(1))

	require.NoError(t, b.AddSubpass(nil, []uint32{1, 2}))
	require.NoError(t, b.AddDependency(DependencyTopOfPipe|DependencyColourRead|DependencyDepthRead))
	require.NoError(t, b.AddSubpass([]uint32{1}, []uint32{0}))
	require.NoError(t, b.AddDependency(DependencyMerged|DependencyColourRead))
	require.NoError(t, b.AddDependency(DependencyBottomOfPipe|DependencyColourRead))
	// declaring the same intent twice adds nothing
	require.NoError(t, b.AddDependency(DependencyBottomOfPipe|DependencyColourRead))

	p, err := b.Finalize()
	require.NoError(t, err)

	deps := p.Dependencies()
	require.NotEmpty(t, deps)
	for _, d := range deps {
		require.True(t, hasDependency(deps, Mirror(d)))
		require.Equal(t, vk.DependencyFlags(vk.DependencyByRegionBit), d.DependencyFlags)
	}

	reader := barrier(0, 1, writerSide(false), inputReaderSide)
	require.True(t, hasDependency(deps, reader))
	require.True(t, hasDependency(deps, Mirror(reader)))

	sp := p.Subpasses()[1]
	require.Len(t, sp.InputRefs, 1)
	require.Equal(t, uint32(1), sp.InputRefs[0].Attachment)
	require.Equal(t, vk.ImageLayoutShaderReadOnlyOptimal, sp.InputRefs[0].Layout)
}

func TestInputBarrierUsesMostRecentWriter(t *testing.T) {
	b := NewBuilder(devicetest.New())
	require.NoError(t, b.AddOutputAttachment(colourFormat, 0, ClearColour, vk.SampleCount1Bit))
	require.NoError(t, b.AddOutputAttachment(depthFormat, 1, ClearColour, vk.SampleCount1Bit))
	require.NoError(t, b.AddSubpass(nil, []uint32{1}))
	require.NoError(t, b.AddSubpass(nil, []uint32{0, 1}))
	require.NoError(t, b.AddSubpass([]uint32{1}, []uint32{0}))

	p, err := b.Finalize()
	require.NoError(t, err)

	deps := p.Dependencies()
	require.True(t, hasDependency(deps, barrier(1, 2, writerSide(true), inputReaderSide)))
	require.False(t, hasDependency(deps, barrier(0, 2, writerSide(true), inputReaderSide)))
	// default pair plus one synthesized pair
	require.Len(t, deps, 4)
}

func TestDeclareAfterFinalize(t *testing.T) {
	b := colourDepthBuilder(t, devicetest.New())
	_, err := b.Finalize()
	require.NoError(t, err)

	_, err = b.Finalize()
	require.ErrorIs(t, err, ErrPassFinalized)
	require.ErrorIs(t, b.AddOutputAttachment(colourFormat, 5, ClearColour, vk.SampleCount1Bit), ErrPassFinalized)
	require.ErrorIs(t, b.AddInputAttachment(0), ErrPassFinalized)
	require.ErrorIs(t, b.AddSubpass(nil, []uint32{0}), ErrPassFinalized)
	require.ErrorIs(t, b.AddDependency(DependencyTopOfPipe), ErrPassFinalized)
	_, err = b.AddAttachment(colourFormat)
	require.ErrorIs(t, err, ErrPassFinalized)
}

func TestFinalizeWithoutSubpasses(t *testing.T) {
	b := NewBuilder(devicetest.New())
	require.NoError(t, b.AddOutputAttachment(colourFormat, 0, ClearColour, vk.SampleCount1Bit))
	_, err := b.Finalize()
	require.ErrorIs(t, err, ErrNoSubpasses)
	require.Equal(t, StateAttachmentsDeclared, b.State())
}

func TestFinalizeDeviceFailureIsRetryable(t *testing.T) {
	dev := devicetest.New()
	b := colourDepthBuilder(t, dev)

	dev.Fail(devicetest.OpRenderPass, vk.ErrorOutOfDeviceMemory)
	_, err := b.Finalize()
	require.Error(t, err)
	require.ErrorIs(t, err, device.ErrDevice)
	require.Equal(t, StateSubpassesDeclared, b.State())
	require.Empty(t, dev.RenderPasses)

	dev.Succeed(devicetest.OpRenderPass)
	p, err := b.Finalize()
	require.NoError(t, err)
	require.Len(t, dev.RenderPasses, 1)
	require.Len(t, p.Dependencies(), 2)

	p.Destroy()
	p.Destroy()
	require.Equal(t, 1, dev.Destroyed(devicetest.OpRenderPass))
}

func TestPassAccessorsReturnCopies(t *testing.T) {
	p, err := colourDepthBuilder(t, devicetest.New()).Finalize()
	require.NoError(t, err)

	sp := p.Subpasses()
	sp[0].ColourRefs[0].Attachment = 42
	require.Equal(t, uint32(0), p.Subpasses()[0].ColourRefs[0].Attachment)

	a := p.Attachments()
	a[0].Format = vk.FormatUndefined
	require.Equal(t, colourFormat, p.Attachments()[0].Format)
}
