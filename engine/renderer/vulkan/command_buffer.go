package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/KyleNBurke/vulkan-engine/engine/core"
)

func CommandPoolCreate(context *VulkanContext) (vk.CommandPool, error) {
	createInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: uint32(context.Device.GraphicsQueueIndex),
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}

	var pool vk.CommandPool
	if res := vk.CreateCommandPool(context.Device.LogicalDevice, &createInfo, context.Allocator, &pool); res != vk.Success {
		err := fmt.Errorf("failed to create command pool")
		core.LogError(err.Error())
		return vk.NullCommandPool, err
	}
	return pool, nil
}

// AllocateCommandBuffers allocates count command buffers in one call.
func AllocateCommandBuffers(context *VulkanContext, pool vk.CommandPool, level vk.CommandBufferLevel, count uint32) ([]vk.CommandBuffer, error) {
	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              level,
		CommandBufferCount: count,
	}

	commandBuffers := make([]vk.CommandBuffer, count)
	if res := vk.AllocateCommandBuffers(context.Device.LogicalDevice, &allocateInfo, commandBuffers); res != vk.Success {
		err := fmt.Errorf("failed to allocate command buffers")
		core.LogError(err.Error())
		return nil, err
	}
	return commandBuffers, nil
}

// BeginCommandBuffer starts recording with the requested usage flags.
func BeginCommandBuffer(commandBuffer vk.CommandBuffer, flags vk.CommandBufferUsageFlags, inheritance *vk.CommandBufferInheritanceInfo) error {
	var inheritanceInfos []vk.CommandBufferInheritanceInfo
	if inheritance != nil {
		inheritanceInfos = []vk.CommandBufferInheritanceInfo{*inheritance}
	}
	beginInfo := vk.CommandBufferBeginInfo{
		SType:            vk.StructureTypeCommandBufferBeginInfo,
		Flags:            flags,
		PInheritanceInfo: inheritanceInfos,
	}

	if res := vk.BeginCommandBuffer(commandBuffer, &beginInfo); res != vk.Success {
		err := fmt.Errorf("failed to begin command buffer")
		core.LogError(err.Error())
		return err
	}
	return nil
}

func EndCommandBuffer(commandBuffer vk.CommandBuffer) error {
	if res := vk.EndCommandBuffer(commandBuffer); res != vk.Success {
		err := fmt.Errorf("failed to end command buffer")
		core.LogError(err.Error())
		return err
	}
	return nil
}

// SubmitAndWaitIdle submits a recorded one-shot command buffer, waits for
// the queue to drain and frees the buffer.
func SubmitAndWaitIdle(context *VulkanContext, pool vk.CommandPool, queue vk.Queue, commandBuffer vk.CommandBuffer) error {
	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{commandBuffer},
	}

	if res := vk.QueueSubmit(queue, 1, []vk.SubmitInfo{submitInfo}, vk.NullFence); res != vk.Success {
		err := fmt.Errorf("failed to submit command buffer to queue")
		core.LogError(err.Error())
		return err
	}

	if res := vk.QueueWaitIdle(queue); res != vk.Success {
		err := fmt.Errorf("queue failed to wait idle")
		core.LogError(err.Error())
		return err
	}

	vk.FreeCommandBuffers(context.Device.LogicalDevice, pool, 1, []vk.CommandBuffer{commandBuffer})
	return nil
}
