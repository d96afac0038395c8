package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/KyleNBurke/vulkan-engine/engine/core"
)

// InFlightFrame is everything one frame owns while the GPU may still be
// reading it: sync primitives, command buffers, the host-visible dynamic
// buffer and the descriptor sets pointing into it.
type InFlightFrame struct {
	ImageAvailable vk.Semaphore
	RenderFinished vk.Semaphore
	Fence          *VulkanFence

	PrimaryCommandBuffer          vk.CommandBuffer
	BasicSecondaryCommandBuffer   vk.CommandBuffer
	LambertSecondaryCommandBuffer vk.CommandBuffer
	TextSecondaryCommandBuffer    vk.CommandBuffer

	Buffer *VulkanBuffer

	FrameDataDescriptorSet vk.DescriptorSet
	MeshDataDescriptorSet  vk.DescriptorSet
	TextDataDescriptorSet  vk.DescriptorSet
}

func createInFlightFrames(
	context *VulkanContext,
	descriptorPool vk.DescriptorPool,
	commandPool vk.CommandPool,
	frameDataLayout vk.DescriptorSetLayout,
	meshDataLayout vk.DescriptorSetLayout,
	textDataLayout vk.DescriptorSetLayout) ([InFlightFramesCount]*InFlightFrame, error) {

	var frames [InFlightFramesCount]*InFlightFrame

	primaryCommandBuffers, err := AllocateCommandBuffers(context, commandPool, vk.CommandBufferLevelPrimary, InFlightFramesCount)
	if err != nil {
		return frames, err
	}

	secondaryCommandBuffers, err := AllocateCommandBuffers(context, commandPool, vk.CommandBufferLevelSecondary, InFlightFramesCount*3)
	if err != nil {
		return frames, err
	}

	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}

	for i := 0; i < InFlightFramesCount; i++ {
		frame := &InFlightFrame{
			PrimaryCommandBuffer:          primaryCommandBuffers[i],
			BasicSecondaryCommandBuffer:   secondaryCommandBuffers[i*3],
			LambertSecondaryCommandBuffer: secondaryCommandBuffers[i*3+1],
			TextSecondaryCommandBuffer:    secondaryCommandBuffers[i*3+2],
		}

		var imageAvailable vk.Semaphore
		if res := vk.CreateSemaphore(context.Device.LogicalDevice, &semaphoreCreateInfo, context.Allocator, &imageAvailable); res != vk.Success {
			err := fmt.Errorf("failed to create semaphore")
			core.LogError(err.Error())
			return frames, err
		}
		frame.ImageAvailable = imageAvailable

		var renderFinished vk.Semaphore
		if res := vk.CreateSemaphore(context.Device.LogicalDevice, &semaphoreCreateInfo, context.Allocator, &renderFinished); res != vk.Success {
			err := fmt.Errorf("failed to create semaphore")
			core.LogError(err.Error())
			return frames, err
		}
		frame.RenderFinished = renderFinished

		// Signaled so the first frame does not wait.
		fence, err := NewFence(context, true)
		if err != nil {
			return frames, err
		}
		frame.Fence = fence

		sets, err := DescriptorSetsAllocate(context, descriptorPool, []vk.DescriptorSetLayout{frameDataLayout, meshDataLayout, textDataLayout})
		if err != nil {
			return frames, err
		}
		frame.FrameDataDescriptorSet = sets[0]
		frame.MeshDataDescriptorSet = sets[1]
		frame.TextDataDescriptorSet = sets[2]

		// Sized for the frame header alone; grows on first use with
		// actual scene content.
		buffer, err := NewBuffer(
			context,
			FrameDataMemorySize,
			vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)|vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)|vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
			vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit))
		if err != nil {
			return frames, err
		}
		frame.Buffer = buffer

		frame.updateDescriptorSets(context)

		frames[i] = frame
	}

	return frames, nil
}

// updateDescriptorSets rewrites all four buffer bindings against the
// current buffer handle. Required after every reallocation since the old
// handle dies with the old buffer.
func (f *InFlightFrame) updateDescriptorSets(context *VulkanContext) {
	writes := []vk.WriteDescriptorSet{
		writeBufferDescriptor(f.FrameDataDescriptorSet, 0, vk.DescriptorTypeUniformBuffer, f.Buffer.Handle, FrameDataMemorySize),
		writeBufferDescriptor(f.MeshDataDescriptorSet, 0, vk.DescriptorTypeUniformBufferDynamic, f.Buffer.Handle, MeshUniformSize),
		writeBufferDescriptor(f.TextDataDescriptorSet, 0, vk.DescriptorTypeUniformBufferDynamic, f.Buffer.Handle, TextMatrixUniformSize),
		writeBufferDescriptor(f.TextDataDescriptorSet, 1, vk.DescriptorTypeUniformBufferDynamic, f.Buffer.Handle, AtlasIndexUniformSize),
	}

	vk.UpdateDescriptorSets(context.Device.LogicalDevice, uint32(len(writes)), writes, 0, nil)
}

func (f *InFlightFrame) destroy(context *VulkanContext) {
	f.Buffer.Destroy(context)
	f.Fence.FenceDestroy(context)
	vk.DestroySemaphore(context.Device.LogicalDevice, f.RenderFinished, context.Allocator)
	vk.DestroySemaphore(context.Device.LogicalDevice, f.ImageAvailable, context.Allocator)
}
