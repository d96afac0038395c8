package vulkan

import (
	"fmt"
	"runtime"

	vk "github.com/goki/vulkan"

	"github.com/KyleNBurke/vulkan-engine/engine/core"
	"github.com/KyleNBurke/vulkan-engine/engine/platform"
)

// VulkanContext owns the objects every other wrapper in this package needs:
// the instance, the presentation surface and the device with its queues.
type VulkanContext struct {
	FramebufferWidth  uint32
	FramebufferHeight uint32

	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	Device *VulkanDevice
}

func NewContext(applicationName string, plat *platform.Platform) (*VulkanContext, error) {
	context := &VulkanContext{
		Allocator: nil,
	}

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 2, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(applicationName),
		PEngineName:        VulkanSafeString("Vulkan Engine"),
		EngineVersion:      uint32(vk.MakeVersion(1, 0, 0)),
	}

	requiredExtensions := []string{vk.KhrSurfaceExtensionName}
	requiredExtensions = append(requiredExtensions, plat.RequiredInstanceExtensions()...)
	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions, "VK_KHR_portability_enumeration")
	}

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(requiredExtensions)),
		PpEnabledExtensionNames: VulkanSafeStrings(requiredExtensions),
	}
	if runtime.GOOS == "darwin" {
		createInfo.Flags |= vk.InstanceCreateFlags(vk.InstanceCreateEnumeratePortabilityBit)
	}

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, context.Allocator, &instance); res != vk.Success {
		err := fmt.Errorf("failed to create vulkan instance")
		core.LogError(err.Error())
		return nil, err
	}
	context.Instance = instance

	if err := vk.InitInstance(instance); err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	surface, err := plat.CreateSurface(instance)
	if err != nil {
		err = fmt.Errorf("failed to create vulkan surface: %w", err)
		core.LogError(err.Error())
		return nil, err
	}
	context.Surface = surface

	device, err := DeviceCreate(context)
	if err != nil {
		return nil, err
	}
	context.Device = device

	width, height := plat.FramebufferSize()
	context.FramebufferWidth = width
	context.FramebufferHeight = height

	return context, nil
}

func (vc *VulkanContext) Destroy() {
	if vc.Device != nil {
		vc.Device.Destroy(vc)
	}
	vk.DestroySurface(vc.Instance, vc.Surface, vc.Allocator)
	vk.DestroyInstance(vc.Instance, vc.Allocator)
}

// FindMemoryIndex locates a device memory type matching both the type filter
// and the requested property flags.
func (vc *VulkanContext) FindMemoryIndex(typeFilter, propertyFlags uint32) int32 {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(vc.Device.PhysicalDevice, &memoryProperties)
	memoryProperties.Deref()

	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		memoryProperties.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && (uint32(memoryProperties.MemoryTypes[i].PropertyFlags)&propertyFlags) == propertyFlags {
			return int32(i)
		}
	}
	core.LogFatal("Unable to find a suitable memory type!")
	return -1
}
