package render_pass

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/device/devicetest"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestNewFrameBuffer(t *testing.T) {
	dev := devicetest.New()
	p, err := colourDepthBuilder(t, dev).Finalize()
	require.NoError(t, err)

	_, err = NewFrameBuffer(dev, p, make([]vk.ImageView, 1), 1280, 720, 1)
	require.ErrorIs(t, err, ErrAttachmentCount)
	require.Empty(t, dev.Framebuffers)

	fb, err := NewFrameBuffer(dev, p, make([]vk.ImageView, 2), 1280, 720, 0)
	require.NoError(t, err)
	require.Equal(t, uint32(1280), fb.Width())
	require.Equal(t, uint32(720), fb.Height())
	require.Len(t, dev.Framebuffers, 1)
	require.Equal(t, uint32(1), dev.Framebuffers[0].Layers)
	require.Equal(t, uint32(2), dev.Framebuffers[0].AttachmentCount)

	fb.Destroy()
	fb.Destroy()
	require.Equal(t, 1, dev.Destroyed(devicetest.OpFramebuffer))

	dev.Fail(devicetest.OpFramebuffer, vk.ErrorOutOfHostMemory)
	_, err = NewFrameBuffer(dev, p, make([]vk.ImageView, 2), 1280, 720, 1)
	require.ErrorIs(t, err, device.ErrDevice)
}
