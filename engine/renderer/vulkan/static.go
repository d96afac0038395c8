package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/KyleNBurke/vulkan-engine/engine/core"
	"github.com/KyleNBurke/vulkan-engine/engine/scene"
)

// MeshRenderingResources is the state shared by the basic and lambert
// pipelines: their descriptor set layouts, the common pipeline layout and
// the device local static mesh buffer with its cached draw table.
type MeshRenderingResources struct {
	FrameDataDescriptorSetLayout vk.DescriptorSetLayout
	MeshDataDescriptorSetLayout  vk.DescriptorSetLayout
	PipelineLayout               vk.PipelineLayout

	StaticMeshBuffer        *VulkanBuffer
	StaticMeshDescriptorSet vk.DescriptorSet

	// Replaced wholesale by every static submission; the offsets are only
	// valid against the buffer generation they were computed for.
	StaticRenderInfo []StaticRenderInfo
}

func createMeshRenderingResources(context *VulkanContext, descriptorPool vk.DescriptorPool) (*MeshRenderingResources, error) {
	resources := &MeshRenderingResources{}

	frameDataLayout, err := DescriptorSetLayoutCreate(context, []vk.DescriptorSetLayoutBinding{{
		Binding:         0,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
	}})
	if err != nil {
		return nil, err
	}
	resources.FrameDataDescriptorSetLayout = frameDataLayout

	meshDataLayout, err := DescriptorSetLayoutCreate(context, []vk.DescriptorSetLayoutBinding{{
		Binding:         0,
		DescriptorType:  vk.DescriptorTypeUniformBufferDynamic,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
	}})
	if err != nil {
		return nil, err
	}
	resources.MeshDataDescriptorSetLayout = meshDataLayout

	pipelineLayoutCreateInfo := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 2,
		PSetLayouts:    []vk.DescriptorSetLayout{frameDataLayout, meshDataLayout},
	}

	var pipelineLayout vk.PipelineLayout
	if res := vk.CreatePipelineLayout(context.Device.LogicalDevice, &pipelineLayoutCreateInfo, context.Allocator, &pipelineLayout); res != vk.Success {
		err := fmt.Errorf("failed to create mesh rendering pipeline layout")
		core.LogError(err.Error())
		return nil, err
	}
	resources.PipelineLayout = pipelineLayout

	// Zero capacity until the first static submission.
	resources.StaticMeshBuffer = NewNullBuffer(
		vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)|vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)|vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)|vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))

	sets, err := DescriptorSetsAllocate(context, descriptorPool, []vk.DescriptorSetLayout{meshDataLayout})
	if err != nil {
		return nil, err
	}
	resources.StaticMeshDescriptorSet = sets[0]

	return resources, nil
}

func (m *MeshRenderingResources) destroy(context *VulkanContext) {
	m.StaticMeshBuffer.Destroy(context)
	vk.DestroyPipelineLayout(context.Device.LogicalDevice, m.PipelineLayout, context.Allocator)
	vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, m.MeshDataDescriptorSetLayout, context.Allocator)
	vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, m.FrameDataDescriptorSetLayout, context.Allocator)
}

// SubmitStaticMeshes uploads the given meshes to the device local static
// buffer, replacing whatever was submitted before. Rendering must not be
// in flight, so the graphics queue is drained first. Offsets are computed
// fresh every call since a buffer reallocation invalidates old ones.
func (r *Renderer) SubmitStaticMeshes(s *scene.Scene, meshes []*scene.StaticMesh, instanced []*scene.StaticInstancedMesh) error {
	context := r.context

	vk.QueueWaitIdle(context.Device.GraphicsQueue)

	renderInfo, size := r.packer.LayoutStatic(s, meshes, instanced)
	r.meshResources.StaticRenderInfo = renderInfo

	if size == 0 {
		return nil
	}

	staging, err := NewBuffer(
		context,
		uint64(size),
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit))
	if err != nil {
		return err
	}
	defer staging.Destroy(context)

	data := r.packer.PackStatic(s, meshes, instanced, renderInfo, size)
	if err := staging.MapAndWrite(context, data); err != nil {
		return err
	}

	staticBuffer := r.meshResources.StaticMeshBuffer
	if uint64(size) > staticBuffer.Capacity {
		if err := staticBuffer.Reallocate(context, uint64(size)); err != nil {
			return err
		}

		write := writeBufferDescriptor(r.meshResources.StaticMeshDescriptorSet, 0, vk.DescriptorTypeUniformBufferDynamic, staticBuffer.Handle, MeshUniformSize)
		vk.UpdateDescriptorSets(context.Device.LogicalDevice, 1, []vk.WriteDescriptorSet{write}, 0, nil)
	}

	commandBuffers, err := AllocateCommandBuffers(context, r.commandPool, vk.CommandBufferLevelPrimary, 1)
	if err != nil {
		return err
	}
	commandBuffer := commandBuffers[0]

	if err := BeginCommandBuffer(commandBuffer, vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit), nil); err != nil {
		return err
	}

	region := vk.BufferCopy{
		SrcOffset: 0,
		DstOffset: 0,
		Size:      vk.DeviceSize(size),
	}
	vk.CmdCopyBuffer(commandBuffer, staging.Handle, staticBuffer.Handle, 1, []vk.BufferCopy{region})

	if err := EndCommandBuffer(commandBuffer); err != nil {
		return err
	}

	vk.QueueWaitIdle(context.Device.GraphicsQueue)
	if err := SubmitAndWaitIdle(context, r.commandPool, context.Device.GraphicsQueue, commandBuffer); err != nil {
		return err
	}

	core.LogInfo("Submitted %d static draw(s), %d bytes.", len(renderInfo), size)
	return nil
}
