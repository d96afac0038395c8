package vulkan

import (
	"fmt"
	"math"

	vk "github.com/goki/vulkan"

	"github.com/KyleNBurke/vulkan-engine/engine/core"
)

// SwapchainFrame bundles the per-image presentation state. Fence records
// the in flight frame fence that last rendered to this image so a new
// acquire can wait for it; NullFence until the image is first used.
type SwapchainFrame struct {
	View        vk.ImageView
	Framebuffer *VulkanFramebuffer
	Fence       vk.Fence
}

type VulkanSwapchain struct {
	Handle      vk.Swapchain
	ImageFormat vk.SurfaceFormat
	Extent      vk.Extent2D

	ImageCount uint32
	Images     []vk.Image
	Frames     []*SwapchainFrame

	DepthAttachment *VulkanImage
}

func SwapchainCreate(context *VulkanContext, renderPass *VulkanRenderPass, width, height uint32) (*VulkanSwapchain, error) {
	return createSwapchain(context, renderPass, width, height)
}

// SwapchainRecreate tears the swapchain down wholesale and builds a new
// one. The device must be idle.
func (vs *VulkanSwapchain) SwapchainRecreate(context *VulkanContext, renderPass *VulkanRenderPass, width, height uint32) (*VulkanSwapchain, error) {
	vs.destroySwapchain(context)
	return createSwapchain(context, renderPass, width, height)
}

func (vs *VulkanSwapchain) SwapchainDestroy(context *VulkanContext) {
	vs.destroySwapchain(context)
}

// SwapchainAcquireNextImageIndex acquires the next presentable image.
// Returns core.ErrSurfaceChanged when the surface no longer matches the
// swapchain, in which case the caller abandons the frame.
func (vs *VulkanSwapchain) SwapchainAcquireNextImageIndex(context *VulkanContext, timeoutNs uint64, imageAvailableSemaphore vk.Semaphore) (uint32, error) {
	var imageIndex uint32
	result := vk.AcquireNextImage(context.Device.LogicalDevice, vs.Handle, timeoutNs, imageAvailableSemaphore, vk.NullFence, &imageIndex)

	if result == vk.ErrorOutOfDate {
		return 0, core.ErrSurfaceChanged
	}
	if result != vk.Success && result != vk.Suboptimal {
		err := fmt.Errorf("failed to acquire swapchain image")
		core.LogError(err.Error())
		return 0, err
	}

	return imageIndex, nil
}

// SwapchainPresent queues the image for presentation once rendering
// signals the semaphore. A suboptimal or out of date result reports a
// surface change instead of failing.
func (vs *VulkanSwapchain) SwapchainPresent(context *VulkanContext, presentQueue vk.Queue, renderCompleteSemaphore vk.Semaphore, presentImageIndex uint32) (bool, error) {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{renderCompleteSemaphore},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{vs.Handle},
		PImageIndices:      []uint32{presentImageIndex},
	}

	result := vk.QueuePresent(presentQueue, &presentInfo)
	if result == vk.ErrorOutOfDate || result == vk.Suboptimal {
		return true, nil
	}
	if result != vk.Success {
		err := fmt.Errorf("failed to present swapchain image")
		core.LogError(err.Error())
		return false, err
	}

	return false, nil
}

// ChooseSurfaceFormat prefers BGRA8 unorm with an sRGB color space, else
// takes the first format offered. The render pass and the swapchain must
// agree on this choice.
func ChooseSurfaceFormat(support *VulkanSwapchainSupportInfo) vk.SurfaceFormat {
	for i := 0; i < int(support.FormatCount); i++ {
		format := support.Formats[i]
		if format.Format == vk.FormatB8g8r8a8Unorm && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format
		}
	}
	return support.Formats[0]
}

func createSwapchain(context *VulkanContext, renderPass *VulkanRenderPass, width, height uint32) (*VulkanSwapchain, error) {
	swapchain := &VulkanSwapchain{}

	// The surface capabilities change with the window, re-query them.
	support, err := DeviceQuerySwapchainSupport(context.Device.PhysicalDevice, context.Surface)
	if err != nil {
		return nil, err
	}
	context.Device.SwapchainSupport = support

	swapchain.ImageFormat = ChooseSurfaceFormat(support)

	// Mailbox when available, else the first reported mode.
	presentMode := support.PresentModes[0]
	for i := 0; i < int(support.PresentModeCount); i++ {
		if support.PresentModes[i] == vk.PresentModeMailbox {
			presentMode = vk.PresentModeMailbox
			break
		}
	}

	swapchainExtent := vk.Extent2D{Width: width, Height: height}
	if support.Capabilities.CurrentExtent.Width != math.MaxUint32 {
		swapchainExtent = support.Capabilities.CurrentExtent
	}

	// Clamp to the range the device allows.
	min := support.Capabilities.MinImageExtent
	max := support.Capabilities.MaxImageExtent
	swapchainExtent.Width = MathClamp(swapchainExtent.Width, min.Width, max.Width)
	swapchainExtent.Height = MathClamp(swapchainExtent.Height, min.Height, max.Height)
	swapchain.Extent = swapchainExtent

	imageCount := support.Capabilities.MinImageCount + 1
	if support.Capabilities.MaxImageCount > 0 && imageCount > support.Capabilities.MaxImageCount {
		imageCount = support.Capabilities.MaxImageCount
	}

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchainExtent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     support.Capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
	}

	if context.Device.GraphicsQueueIndex != context.Device.PresentQueueIndex {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = 2
		swapchainCreateInfo.PQueueFamilyIndices = []uint32{
			uint32(context.Device.GraphicsQueueIndex),
			uint32(context.Device.PresentQueueIndex),
		}
	} else {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var swapchainHandle vk.Swapchain
	if res := vk.CreateSwapchain(context.Device.LogicalDevice, &swapchainCreateInfo, context.Allocator, &swapchainHandle); res != vk.Success {
		err := fmt.Errorf("failed to create swapchain")
		core.LogError(err.Error())
		return nil, err
	}
	swapchain.Handle = swapchainHandle

	// Images
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to get swapchain images")
		core.LogError(err.Error())
		return nil, err
	}
	swapchain.Images = make([]vk.Image, swapchain.ImageCount)
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, swapchain.Images); res != vk.Success {
		err := fmt.Errorf("failed to get swapchain images")
		core.LogError(err.Error())
		return nil, err
	}

	// Depth buffering is non-negotiable for the forward pass.
	if !DeviceDetectDepthFormat(context.Device) {
		context.Device.DepthFormat = vk.FormatUndefined
		core.LogFatal("Required format for depth buffering not supported!")
	}

	depthAttachment, err := ImageCreate(
		context,
		vk.ImageType2d,
		swapchainExtent.Width,
		swapchainExtent.Height,
		context.Device.DepthFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectDepthBit))
	if err != nil {
		return nil, err
	}
	swapchain.DepthAttachment = depthAttachment

	// One view, framebuffer and last-use fence slot per image.
	swapchain.Frames = make([]*SwapchainFrame, swapchain.ImageCount)
	for i := 0; i < int(swapchain.ImageCount); i++ {
		view, err := ImageViewCreate(context, swapchain.ImageFormat.Format, swapchain.Images[i], vk.ImageAspectFlags(vk.ImageAspectColorBit))
		if err != nil {
			return nil, err
		}

		framebuffer, err := FramebufferCreate(context, renderPass, swapchainExtent.Width, swapchainExtent.Height, []vk.ImageView{view, depthAttachment.View})
		if err != nil {
			return nil, err
		}

		swapchain.Frames[i] = &SwapchainFrame{
			View:        view,
			Framebuffer: framebuffer,
			Fence:       vk.NullFence,
		}
	}

	core.LogInfo("Swapchain created (%dx%d, %d images).", swapchainExtent.Width, swapchainExtent.Height, swapchain.ImageCount)
	return swapchain, nil
}

func (vs *VulkanSwapchain) destroySwapchain(context *VulkanContext) {
	vk.DeviceWaitIdle(context.Device.LogicalDevice)

	vs.DepthAttachment.ImageDestroy(context)

	// Only destroy the views; the images belong to the swapchain.
	for _, frame := range vs.Frames {
		frame.Framebuffer.Destroy(context)
		vk.DestroyImageView(context.Device.LogicalDevice, frame.View, context.Allocator)
	}

	vk.DestroySwapchain(context.Device.LogicalDevice, vs.Handle, context.Allocator)
}
