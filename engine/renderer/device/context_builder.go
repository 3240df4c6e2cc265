package device

// ContextBuilderOption is a functional option for configuring a VulkanContext.
type ContextBuilderOption func(*vulkanContext)

// WithApplicationName sets the application name reported to the driver.
//
// Parameters:
//   - name: the application name
//
// Returns:
//   - ContextBuilderOption: option function to apply
func WithApplicationName(name string) ContextBuilderOption {
	return func(c *vulkanContext) {
		c.appName = name
	}
}

// WithAPIVersion sets the Vulkan API version requested from the instance.
//
// Parameters:
//   - version: a version built with vk.MakeVersion
//
// Returns:
//   - ContextBuilderOption: option function to apply
func WithAPIVersion(version uint32) ContextBuilderOption {
	return func(c *vulkanContext) {
		c.apiVersion = version
	}
}

// WithValidationLayers enables instance layers such as VK_LAYER_KHRONOS_validation.
//
// Parameters:
//   - layers: the layer names
//
// Returns:
//   - ContextBuilderOption: option function to apply
func WithValidationLayers(layers ...string) ContextBuilderOption {
	return func(c *vulkanContext) {
		c.layers = append(c.layers, layers...)
	}
}

// WithDeviceExtensions enables logical device extensions such as VK_KHR_swapchain.
//
// Parameters:
//   - extensions: the extension names
//
// Returns:
//   - ContextBuilderOption: option function to apply
func WithDeviceExtensions(extensions ...string) ContextBuilderOption {
	return func(c *vulkanContext) {
		c.deviceExtensions = append(c.deviceExtensions, extensions...)
	}
}
