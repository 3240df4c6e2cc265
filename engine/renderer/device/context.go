package device

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-frame/common"
	vk "github.com/vulkan-go/vulkan"
)

// ErrNoSuitableDevice is returned when no physical device exposes a graphics queue.
var ErrNoSuitableDevice = errors.New("device: no physical device with a graphics queue")

type vulkanContext struct {
	appName          string
	apiVersion       uint32
	layers           []string
	deviceExtensions []string

	instance       vk.Instance
	physicalDevice vk.PhysicalDevice
	logicalDevice  vk.Device
	graphicsQueue  vk.Queue
	graphicsFamily uint32
	device         Device
}

// VulkanContext owns the Vulkan instance and logical device one engine renders with.
// It is created once by the application and handed to the engine explicitly.
type VulkanContext interface {
	// Instance returns the Vulkan instance.
	Instance() vk.Instance

	// PhysicalDevice returns the selected physical device.
	PhysicalDevice() vk.PhysicalDevice

	// GraphicsQueue returns the graphics queue of the logical device.
	GraphicsQueue() vk.Queue

	// GraphicsQueueFamily returns the queue family index of GraphicsQueue.
	GraphicsQueueFamily() uint32

	// Device returns the Device wrapping the logical device.
	Device() Device

	// Destroy releases the logical device and the instance.
	Destroy()
}

var _ VulkanContext = &vulkanContext{}

// NewVulkanContext loads Vulkan through procAddr, creates an instance with the given
// extensions, picks the first physical device with a graphics queue and creates a logical
// device with one graphics queue.
//
// Parameters:
//   - procAddr: the vkGetInstanceProcAddr pointer, usually from glfw.GetVulkanGetInstanceProcAddress
//   - extensions: instance extensions required by the window system
//   - options: functional options
//
// Returns:
//   - VulkanContext: the context
//   - error: wrapping ErrDevice or ErrNoSuitableDevice on failure; partial state is released
func NewVulkanContext(procAddr unsafe.Pointer, extensions []string, options ...ContextBuilderOption) (VulkanContext, error) {
	c := &vulkanContext{
		appName:    "oxy-frame",
		apiVersion: vk.MakeVersion(1, 0, 0),
	}
	for _, option := range options {
		option(c)
	}

	vk.SetGetInstanceProcAddr(procAddr)
	if err := vk.Init(); err != nil {
		return nil, fmt.Errorf("%w: init loader: %w", ErrDevice, err)
	}

	if err := c.createInstance(extensions); err != nil {
		return nil, err
	}
	if err := c.pickPhysicalDevice(); err != nil {
		c.Destroy()
		return nil, err
	}
	if err := c.createLogicalDevice(); err != nil {
		c.Destroy()
		return nil, err
	}

	common.Logger().Info("vulkan context ready",
		"app", c.appName,
		"graphics_family", c.graphicsFamily,
		"instance_extensions", len(extensions),
	)
	return c, nil
}

func (c *vulkanContext) createInstance(extensions []string) error {
	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   cString(c.appName),
		ApplicationVersion: vk.MakeVersion(0, 1, 0),
		PEngineName:        cString("oxy-frame"),
		EngineVersion:      vk.MakeVersion(0, 1, 0),
		ApiVersion:         c.apiVersion,
	}
	info := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: cStrings(extensions),
		EnabledLayerCount:       uint32(len(c.layers)),
		PpEnabledLayerNames:     cStrings(c.layers),
	}

	var instance vk.Instance
	if res := vk.CreateInstance(&info, nil, &instance); res != vk.Success {
		return NewError("create instance", res)
	}
	c.instance = instance

	if err := vk.InitInstance(instance); err != nil {
		return fmt.Errorf("%w: init instance: %w", ErrDevice, err)
	}
	return nil
}

func (c *vulkanContext) pickPhysicalDevice() error {
	var count uint32
	if res := vk.EnumeratePhysicalDevices(c.instance, &count, nil); res != vk.Success {
		return NewError("enumerate physical devices", res)
	}
	if count == 0 {
		return ErrNoSuitableDevice
	}
	devices := make([]vk.PhysicalDevice, count)
	if res := vk.EnumeratePhysicalDevices(c.instance, &count, devices); res != vk.Success {
		return NewError("enumerate physical devices", res)
	}

	for _, dev := range devices {
		var familyCount uint32
		vk.GetPhysicalDeviceQueueFamilyProperties(dev, &familyCount, nil)
		props := make([]vk.QueueFamilyProperties, familyCount)
		vk.GetPhysicalDeviceQueueFamilyProperties(dev, &familyCount, props)
		for i := range props {
			props[i].Deref()
			if props[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
				c.physicalDevice = dev
				c.graphicsFamily = uint32(i)
				return nil
			}
		}
	}
	return ErrNoSuitableDevice
}

func (c *vulkanContext) createLogicalDevice() error {
	queueInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: c.graphicsFamily,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}}
	info := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(c.deviceExtensions)),
		PpEnabledExtensionNames: cStrings(c.deviceExtensions),
	}

	var dev vk.Device
	if res := vk.CreateDevice(c.physicalDevice, &info, nil, &dev); res != vk.Success {
		return NewError("create device", res)
	}
	c.logicalDevice = dev

	var queue vk.Queue
	vk.GetDeviceQueue(dev, c.graphicsFamily, 0, &queue)
	c.graphicsQueue = queue
	c.device = NewVulkanDevice(dev)
	return nil
}

func (c *vulkanContext) Instance() vk.Instance {
	return c.instance
}

func (c *vulkanContext) PhysicalDevice() vk.PhysicalDevice {
	return c.physicalDevice
}

func (c *vulkanContext) GraphicsQueue() vk.Queue {
	return c.graphicsQueue
}

func (c *vulkanContext) GraphicsQueueFamily() uint32 {
	return c.graphicsFamily
}

func (c *vulkanContext) Device() Device {
	return c.device
}

func (c *vulkanContext) Destroy() {
	if c.logicalDevice != nil {
		vk.DeviceWaitIdle(c.logicalDevice)
		vk.DestroyDevice(c.logicalDevice, nil)
		c.logicalDevice = nil
		c.device = nil
	}
	if c.instance != nil {
		vk.DestroyInstance(c.instance, nil)
		c.instance = nil
	}
}

// cString returns s terminated with a NUL byte as the loader expects.
func cString(s string) string {
	if len(s) > 0 && s[len(s)-1] == 0 {
		return s
	}
	return s + "\x00"
}

func cStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = cString(s)
	}
	return out
}
