package vulkan

import (
	"fmt"
	"runtime"

	vk "github.com/goki/vulkan"

	"github.com/KyleNBurke/vulkan-engine/engine/core"
)

type VulkanDevice struct {
	PhysicalDevice vk.PhysicalDevice
	LogicalDevice  vk.Device

	SwapchainSupport *VulkanSwapchainSupportInfo

	GraphicsQueueIndex int32
	PresentQueueIndex  int32

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue

	Properties vk.PhysicalDeviceProperties
	Memory     vk.PhysicalDeviceMemoryProperties

	DepthFormat vk.Format
}

type VulkanSwapchainSupportInfo struct {
	Capabilities     vk.SurfaceCapabilities
	FormatCount      uint32
	Formats          []vk.SurfaceFormat
	PresentModeCount uint32
	PresentModes     []vk.PresentMode
}

func DeviceCreate(context *VulkanContext) (*VulkanDevice, error) {
	device := &VulkanDevice{
		GraphicsQueueIndex: -1,
		PresentQueueIndex:  -1,
	}

	if err := device.selectPhysicalDevice(context); err != nil {
		return nil, err
	}

	// One queue create info per distinct family.
	queueIndices := []int32{device.GraphicsQueueIndex}
	if device.PresentQueueIndex != device.GraphicsQueueIndex {
		queueIndices = append(queueIndices, device.PresentQueueIndex)
	}

	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(queueIndices))
	for i, index := range queueIndices {
		queueCreateInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: uint32(index),
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	extensions := []string{vk.KhrSwapchainExtensionName}
	if runtime.GOOS == "darwin" {
		extensions = append(extensions, "VK_KHR_portability_subset")
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensions),
	}

	var logicalDevice vk.Device
	if res := vk.CreateDevice(device.PhysicalDevice, &deviceCreateInfo, context.Allocator, &logicalDevice); res != vk.Success {
		err := fmt.Errorf("failed to create logical device")
		core.LogError(err.Error())
		return nil, err
	}
	device.LogicalDevice = logicalDevice

	var graphicsQueue vk.Queue
	vk.GetDeviceQueue(device.LogicalDevice, uint32(device.GraphicsQueueIndex), 0, &graphicsQueue)
	device.GraphicsQueue = graphicsQueue

	var presentQueue vk.Queue
	vk.GetDeviceQueue(device.LogicalDevice, uint32(device.PresentQueueIndex), 0, &presentQueue)
	device.PresentQueue = presentQueue

	core.LogInfo("Logical device created.")
	return device, nil
}

func (d *VulkanDevice) selectPhysicalDevice(context *VulkanContext) error {
	var physicalDeviceCount uint32
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to enumerate physical devices")
		core.LogError(err.Error())
		return err
	}
	if physicalDeviceCount == 0 {
		err := fmt.Errorf("no devices which support Vulkan were found")
		core.LogError(err.Error())
		return err
	}

	physicalDevices := make([]vk.PhysicalDevice, physicalDeviceCount)
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, physicalDevices); res != vk.Success {
		err := fmt.Errorf("failed to enumerate physical devices")
		core.LogError(err.Error())
		return err
	}

	for _, candidate := range physicalDevices {
		graphicsIndex, presentIndex := queueFamilyIndices(candidate, context.Surface)
		if graphicsIndex < 0 || presentIndex < 0 {
			continue
		}

		support, err := DeviceQuerySwapchainSupport(candidate, context.Surface)
		if err != nil {
			continue
		}
		if support.FormatCount == 0 || support.PresentModeCount == 0 {
			continue
		}

		d.PhysicalDevice = candidate
		d.GraphicsQueueIndex = graphicsIndex
		d.PresentQueueIndex = presentIndex
		d.SwapchainSupport = support

		var properties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(candidate, &properties)
		properties.Deref()
		properties.Limits.Deref()
		d.Properties = properties

		var memory vk.PhysicalDeviceMemoryProperties
		vk.GetPhysicalDeviceMemoryProperties(candidate, &memory)
		memory.Deref()
		d.Memory = memory

		core.LogInfo("Selected device: '%s'.", string(properties.DeviceName[:FindFirstZeroInByteArray(properties.DeviceName[:])]))
		return nil
	}

	err := fmt.Errorf("no physical device found which meets the requirements")
	core.LogError(err.Error())
	return err
}

func queueFamilyIndices(device vk.PhysicalDevice, surface vk.Surface) (int32, int32) {
	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, queueFamilies)

	graphicsIndex := int32(-1)
	presentIndex := int32(-1)

	for i := uint32(0); i < queueFamilyCount; i++ {
		queueFamilies[i].Deref()

		if graphicsIndex == -1 && queueFamilies[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			graphicsIndex = int32(i)
		}

		var supportsPresent vk.Bool32
		vk.GetPhysicalDeviceSurfaceSupport(device, i, surface, &supportsPresent)
		if presentIndex == -1 && supportsPresent == vk.True {
			presentIndex = int32(i)
		}
	}

	return graphicsIndex, presentIndex
}

// DeviceQuerySwapchainSupport re-reads the surface capabilities. Called on
// creation and again on every resize since the capabilities carry the
// current extent.
func DeviceQuerySwapchainSupport(device vk.PhysicalDevice, surface vk.Surface) (*VulkanSwapchainSupportInfo, error) {
	support := &VulkanSwapchainSupportInfo{}

	var capabilities vk.SurfaceCapabilities
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(device, surface, &capabilities); res != vk.Success {
		err := fmt.Errorf("failed to query surface capabilities")
		core.LogError(err.Error())
		return nil, err
	}
	capabilities.Deref()
	capabilities.CurrentExtent.Deref()
	capabilities.MinImageExtent.Deref()
	capabilities.MaxImageExtent.Deref()
	support.Capabilities = capabilities

	if res := vk.GetPhysicalDeviceSurfaceFormats(device, surface, &support.FormatCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to query surface formats")
		core.LogError(err.Error())
		return nil, err
	}
	support.Formats = make([]vk.SurfaceFormat, support.FormatCount)
	vk.GetPhysicalDeviceSurfaceFormats(device, surface, &support.FormatCount, support.Formats)
	for i := range support.Formats {
		support.Formats[i].Deref()
	}

	if res := vk.GetPhysicalDeviceSurfacePresentModes(device, surface, &support.PresentModeCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to query surface present modes")
		core.LogError(err.Error())
		return nil, err
	}
	support.PresentModes = make([]vk.PresentMode, support.PresentModeCount)
	vk.GetPhysicalDeviceSurfacePresentModes(device, surface, &support.PresentModeCount, support.PresentModes)

	return support, nil
}

// DeviceDetectDepthFormat checks that the depth format used by the render
// pass supports optimal-tiling depth attachments.
func DeviceDetectDepthFormat(device *VulkanDevice) bool {
	candidates := []vk.Format{
		vk.FormatD32Sfloat,
		vk.FormatD32SfloatS8Uint,
		vk.FormatD24UnormS8Uint,
	}

	flags := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
	for _, format := range candidates {
		var properties vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(device.PhysicalDevice, format, &properties)
		properties.Deref()

		if properties.LinearTilingFeatures&flags == flags || properties.OptimalTilingFeatures&flags == flags {
			device.DepthFormat = format
			return true
		}
	}

	return false
}

// MinUniformBufferOffsetAlignment is the alignment every uniform block in
// the packed frame buffers must honor.
func (d *VulkanDevice) MinUniformBufferOffsetAlignment() uint64 {
	return uint64(d.Properties.Limits.MinUniformBufferOffsetAlignment)
}

func (d *VulkanDevice) Destroy(context *VulkanContext) {
	if d.LogicalDevice != nil {
		vk.DestroyDevice(d.LogicalDevice, context.Allocator)
		d.LogicalDevice = nil
	}
}

func FindFirstZeroInByteArray(arr []byte) int {
	for i, b := range arr {
		if b == 0 {
			return i
		}
	}
	return len(arr)
}
