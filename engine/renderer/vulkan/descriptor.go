package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/KyleNBurke/vulkan-engine/engine/core"
)

// DescriptorPoolCreate sizes the pool for everything the renderer ever
// allocates:
//   - one frame data uniform descriptor per in flight frame
//   - a mesh/text dynamic uniform pair per in flight frame, plus one for
//     the static mesh buffer
//   - the single font atlas sampler and the sampled image array
//
// Sets: frame, mesh and text data per in flight frame, one static mesh
// set and one sampler-and-atlases set.
func DescriptorPoolCreate(context *VulkanContext) (vk.DescriptorPool, error) {
	poolSizes := []vk.DescriptorPoolSize{
		{
			Type:            vk.DescriptorTypeUniformBuffer,
			DescriptorCount: InFlightFramesCount,
		},
		{
			Type:            vk.DescriptorTypeUniformBufferDynamic,
			DescriptorCount: InFlightFramesCount*2 + 1,
		},
		{
			Type:            vk.DescriptorTypeSampler,
			DescriptorCount: 1,
		},
		{
			Type:            vk.DescriptorTypeSampledImage,
			DescriptorCount: MaxFonts,
		},
	}

	createInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
		MaxSets:       3*InFlightFramesCount + 2,
	}

	var pool vk.DescriptorPool
	if res := vk.CreateDescriptorPool(context.Device.LogicalDevice, &createInfo, context.Allocator, &pool); res != vk.Success {
		err := fmt.Errorf("failed to create descriptor pool")
		core.LogError(err.Error())
		return vk.NullDescriptorPool, err
	}
	return pool, nil
}

// DescriptorSetLayoutCreate builds a single-binding layout, the shape every
// uniform set in this renderer has.
func DescriptorSetLayoutCreate(context *VulkanContext, bindings []vk.DescriptorSetLayoutBinding) (vk.DescriptorSetLayout, error) {
	createInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}

	var layout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(context.Device.LogicalDevice, &createInfo, context.Allocator, &layout); res != vk.Success {
		err := fmt.Errorf("failed to create descriptor set layout")
		core.LogError(err.Error())
		return vk.NullDescriptorSetLayout, err
	}
	return layout, nil
}

func DescriptorSetsAllocate(context *VulkanContext, pool vk.DescriptorPool, layouts []vk.DescriptorSetLayout) ([]vk.DescriptorSet, error) {
	allocateInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pool,
		DescriptorSetCount: uint32(len(layouts)),
		PSetLayouts:        layouts,
	}

	sets := make([]vk.DescriptorSet, len(layouts))
	if res := vk.AllocateDescriptorSets(context.Device.LogicalDevice, &allocateInfo, &sets[0]); res != vk.Success {
		err := fmt.Errorf("failed to allocate descriptor sets")
		core.LogError(err.Error())
		return nil, err
	}
	return sets, nil
}

// writeBufferDescriptor builds one buffer write at binding with a fixed
// range; dynamic offsets supplied at bind time select the object.
func writeBufferDescriptor(set vk.DescriptorSet, binding uint32, descriptorType vk.DescriptorType, buffer vk.Buffer, byteRange uint64) vk.WriteDescriptorSet {
	return vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      binding,
		DstArrayElement: 0,
		DescriptorCount: 1,
		DescriptorType:  descriptorType,
		PBufferInfo: []vk.DescriptorBufferInfo{{
			Buffer: buffer,
			Offset: 0,
			Range:  vk.DeviceSize(byteRange),
		}},
	}
}
