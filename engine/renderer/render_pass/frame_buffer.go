package render_pass

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/device"
	vk "github.com/vulkan-go/vulkan"
)

// ErrAttachmentCount is returned when the number of views does not match the pass.
var ErrAttachmentCount = errors.New("render_pass: image view count does not match attachments")

type frameBuffer struct {
	dev    device.Device
	handle vk.Framebuffer
	once   *sync.Once

	width  uint32
	height uint32
}

// FrameBuffer binds image views to the attachments of a Pass.
type FrameBuffer interface {
	// Handle returns the device handle.
	Handle() vk.Framebuffer

	// Width returns the framebuffer width.
	Width() uint32

	// Height returns the framebuffer height.
	Height() uint32

	// Destroy releases the device framebuffer. Safe to call more than once.
	Destroy()
}

var _ FrameBuffer = &frameBuffer{}

// NewFrameBuffer creates a framebuffer for pass with one view per attachment, in
// attachment order.
//
// Parameters:
//   - dev: the device
//   - pass: a finalized pass
//   - views: the image views
//   - width: the width in pixels
//   - height: the height in pixels
//   - layers: the layer count, 0 means 1
//
// Returns:
//   - FrameBuffer: the framebuffer
//   - error: ErrAttachmentCount or a device error
func NewFrameBuffer(dev device.Device, pass Pass, views []vk.ImageView, width, height, layers uint32) (FrameBuffer, error) {
	if len(views) != len(pass.Attachments()) {
		return nil, fmt.Errorf("%w: %d views for %d attachments", ErrAttachmentCount, len(views), len(pass.Attachments()))
	}
	if layers == 0 {
		layers = 1
	}

	info := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      pass.Handle(),
		AttachmentCount: uint32(len(views)),
		PAttachments:    append([]vk.ImageView(nil), views...),
		Width:           width,
		Height:          height,
		Layers:          layers,
	}
	handle, err := dev.CreateFramebuffer(&info)
	if err != nil {
		return nil, fmt.Errorf("render_pass: framebuffer: %w", err)
	}

	return &frameBuffer{
		dev:    dev,
		handle: handle,
		once:   &sync.Once{},
		width:  width,
		height: height,
	}, nil
}

func (f *frameBuffer) Handle() vk.Framebuffer {
	return f.handle
}

func (f *frameBuffer) Width() uint32 {
	return f.width
}

func (f *frameBuffer) Height() uint32 {
	return f.height
}

func (f *frameBuffer) Destroy() {
	f.once.Do(func() {
		f.dev.DestroyFramebuffer(f.handle)
	})
}
