package renderer

import (
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/render_pass"
	vk "github.com/vulkan-go/vulkan"
)

// Default extent of a renderer created without WithExtent.
const (
	DefaultWidth  uint32 = 800
	DefaultHeight uint32 = 600
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPassFactory sets the function that builds the render pass, on Prepare and after
// every Invalidate or Resize.
//
// Parameters:
//   - f: the pass factory
//
// Returns:
//   - RendererBuilderOption: a function that applies the pass factory option to a renderer
func WithPassFactory(f PassFactory) RendererBuilderOption {
	return func(r *renderer) {
		if f != nil {
			r.passFactory = f
		}
	}
}

// WithExtent sets the initial render area. Zero sides keep the default.
//
// Parameters:
//   - width, height: the framebuffer size in pixels
//
// Returns:
//   - RendererBuilderOption: a function that applies the extent option to a renderer
func WithExtent(width, height uint32) RendererBuilderOption {
	return func(r *renderer) {
		if width > 0 && height > 0 {
			r.width, r.height = width, height
		}
	}
}

// DefaultPassFactory returns a factory for a single subpass writing a BGRA colour attachment
// (cleared and stored) and a 32-bit depth attachment (cleared, discarded), sized to the
// extent it is called with.
//
// Parameters:
//   - options: extra pass builder options, e.g. render_pass.WithClearColour
//
// Returns:
//   - PassFactory: the factory
func DefaultPassFactory(options ...render_pass.BuilderOption) PassFactory {
	return func(dev device.Device, width, height uint32) (render_pass.Pass, error) {
		opts := append([]render_pass.BuilderOption{render_pass.WithExtent(width, height)}, options...)
		b := render_pass.NewBuilder(dev, opts...)
		if err := b.AddOutputAttachment(vk.FormatB8g8r8a8Unorm, 0, render_pass.ClearColour|render_pass.StoreColour, vk.SampleCount1Bit); err != nil {
			return nil, err
		}
		if err := b.AddOutputAttachment(vk.FormatD32Sfloat, 1, render_pass.ClearColour, vk.SampleCount1Bit); err != nil {
			return nil, err
		}
		if err := b.AddSubpass(nil, []uint32{0, 1}); err != nil {
			return nil, err
		}
		return b.Finalize()
	}
}
