package render_pass

// BuilderOption is a functional option for configuring a Builder.
type BuilderOption func(*builder)

// WithExtent sets the render area of the pass. Defaults to 800x600.
//
// Parameters:
//   - width: the width in pixels
//   - height: the height in pixels
//
// Returns:
//   - BuilderOption: option function to apply
func WithExtent(width, height uint32) BuilderOption {
	return func(b *builder) {
		b.width = width
		b.height = height
	}
}

// WithClearColour sets the clear value used for every colour attachment.
//
// Parameters:
//   - colour: RGBA clear colour
//
// Returns:
//   - BuilderOption: option function to apply
func WithClearColour(colour [4]float32) BuilderOption {
	return func(b *builder) {
		b.clearColour = colour
	}
}

// WithDepthClear sets the clear value used for the depth attachment. Defaults to 1.
//
// Parameters:
//   - depth: the depth clear value
//
// Returns:
//   - BuilderOption: option function to apply
func WithDepthClear(depth float32) BuilderOption {
	return func(b *builder) {
		b.depthClear = depth
	}
}

type subpassConfig struct {
	depthRef uint32
	hasDepth bool
}

// SubpassOption is a functional option for AddSubpass.
type SubpassOption func(*subpassConfig)

// WithDepthReference names the depth attachment of the subpass explicitly.
//
// Parameters:
//   - ref: the reference id of a declared depth/stencil output
//
// Returns:
//   - SubpassOption: option function to apply
func WithDepthReference(ref uint32) SubpassOption {
	return func(c *subpassConfig) {
		c.depthRef = ref
		c.hasDepth = true
	}
}
