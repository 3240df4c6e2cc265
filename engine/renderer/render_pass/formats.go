package render_pass

import (
	vk "github.com/vulkan-go/vulkan"
)

// IsDepthFormat reports whether format carries a depth component.
func IsDepthFormat(format vk.Format) bool {
	switch format {
	case vk.FormatD16Unorm,
		vk.FormatX8D24UnormPack32,
		vk.FormatD32Sfloat,
		vk.FormatD16UnormS8Uint,
		vk.FormatD24UnormS8Uint,
		vk.FormatD32SfloatS8Uint:
		return true
	}
	return false
}

// IsStencilFormat reports whether format carries a stencil component.
func IsStencilFormat(format vk.Format) bool {
	switch format {
	case vk.FormatS8Uint,
		vk.FormatD16UnormS8Uint,
		vk.FormatD24UnormS8Uint,
		vk.FormatD32SfloatS8Uint:
		return true
	}
	return false
}

// IsDepthStencilFormat reports whether format has a depth or a stencil component.
func IsDepthStencilFormat(format vk.Format) bool {
	return IsDepthFormat(format) || IsStencilFormat(format)
}

// FinalTransitionLayout returns the layout an attachment is left in when the pass ends,
// which is also the layout later subpasses read it with: depth/stencil formats become
// depth-read-only, every other format becomes shader-readable.
//
// Parameters:
//   - format: the attachment format
//
// Returns:
//   - vk.ImageLayout: the final layout
func FinalTransitionLayout(format vk.Format) vk.ImageLayout {
	if IsDepthStencilFormat(format) {
		return vk.ImageLayoutDepthStencilReadOnlyOptimal
	}
	return vk.ImageLayoutShaderReadOnlyOptimal
}

// AttachmentLayout returns the layout an attachment is written in during a subpass.
//
// Parameters:
//   - format: the attachment format
//
// Returns:
//   - vk.ImageLayout: the attachment layout
func AttachmentLayout(format vk.Format) vk.ImageLayout {
	if IsDepthStencilFormat(format) {
		return vk.ImageLayoutDepthStencilAttachmentOptimal
	}
	return vk.ImageLayoutColorAttachmentOptimal
}
