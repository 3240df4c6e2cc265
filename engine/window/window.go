// Package window provides the GLFW window the frame loop polls and the Vulkan loader hooks
// the device context is created from.
package window

import (
	"unsafe"
)

// Window provides platform windowing for a Vulkan renderer.
type Window interface {
	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyDownCallback sets the callback for key press events.
	//
	// Parameters:
	//   - callback: function receiving the GLFW key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// PollEvents processes pending window events without blocking.
	//
	// Returns:
	//   - bool: true if the window is still running afterwards
	PollEvents() bool

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// RequiredInstanceExtensions returns the Vulkan instance extensions needed to present
	// to this window.
	//
	// Returns:
	//   - []string: extension names
	RequiredInstanceExtensions() []string

	// InstanceProcAddr returns the Vulkan loader entry point, for device.NewVulkanContext.
	//
	// Returns:
	//   - unsafe.Pointer: vkGetInstanceProcAddr
	InstanceProcAddr() unsafe.Pointer

	// Size returns the current framebuffer size in pixels.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	Size() (int, int)

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window is not open
	Close() error
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	title string

	minWidth  int
	minHeight int
	maxWidth  int
	maxHeight int

	// width and height track the framebuffer, which differs from the window size on high-DPI displays.
	width  int
	height int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	onResize  func(width, height int)
	onKeyDown func(keyCode uint32)
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a new Window. Applies default values first, then each option
// in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: GLFW initialization or window creation failure
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:     "oxy-frame",
		minWidth:  200,
		minHeight: 200,
		maxWidth:  3840,
		maxHeight: 2160,
		width:     800,
		height:    600,
	}
	for _, opt := range options {
		opt(w)
	}
	w.width = clamp(w.width, w.minWidth, w.maxWidth)
	w.height = clamp(w.height, w.minHeight, w.maxHeight)
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) PollEvents() bool {
	return platformProcessMessages(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) RequiredInstanceExtensions() []string {
	return platformInstanceExtensions(w)
}

func (w *engineWindow) InstanceProcAddr() unsafe.Pointer {
	return platformInstanceProcAddr()
}

func (w *engineWindow) Size() (int, int) {
	return w.width, w.height
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func clamp(v, lo, hi int) int {
	if lo > 0 && v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}
