package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/KyleNBurke/vulkan-engine/engine/core"
)

// VulkanBuffer couples a buffer handle with its memory allocation. Capacity
// only ever grows; callers reallocate when a frame or submission needs more
// room and the old contents are never preserved.
type VulkanBuffer struct {
	Handle   vk.Buffer
	Memory   vk.DeviceMemory
	Capacity uint64

	usage      vk.BufferUsageFlags
	properties vk.MemoryPropertyFlags
}

func NewBuffer(context *VulkanContext, capacity uint64, usage vk.BufferUsageFlags, properties vk.MemoryPropertyFlags) (*VulkanBuffer, error) {
	buffer := &VulkanBuffer{
		usage:      usage,
		properties: properties,
	}
	if err := buffer.allocate(context, capacity); err != nil {
		return nil, err
	}
	return buffer, nil
}

// NewNullBuffer creates a zero-capacity placeholder. The handle stays nil
// until the first Reallocate, so it must not be bound before then.
func NewNullBuffer(usage vk.BufferUsageFlags, properties vk.MemoryPropertyFlags) *VulkanBuffer {
	return &VulkanBuffer{
		usage:      usage,
		properties: properties,
	}
}

// Reallocate replaces the buffer and its memory with a larger allocation.
// The previous contents are discarded; callers are expected to rewrite the
// whole buffer and any descriptor sets referencing it.
func (b *VulkanBuffer) Reallocate(context *VulkanContext, capacity uint64) error {
	b.Destroy(context)
	return b.allocate(context, capacity)
}

func (b *VulkanBuffer) allocate(context *VulkanContext, capacity uint64) error {
	createInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(capacity),
		Usage:       b.usage,
		SharingMode: vk.SharingModeExclusive,
	}

	var handle vk.Buffer
	if res := vk.CreateBuffer(context.Device.LogicalDevice, &createInfo, context.Allocator, &handle); res != vk.Success {
		err := fmt.Errorf("failed to create buffer of size %d", capacity)
		core.LogError(err.Error())
		return err
	}

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, handle, &requirements)
	requirements.Deref()

	memoryIndex := context.FindMemoryIndex(requirements.MemoryTypeBits, uint32(b.properties))

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(memoryIndex),
	}

	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocateInfo, context.Allocator, &memory); res != vk.Success {
		vk.DestroyBuffer(context.Device.LogicalDevice, handle, context.Allocator)
		err := fmt.Errorf("failed to allocate %d bytes of buffer memory", capacity)
		core.LogError(err.Error())
		return err
	}

	if res := vk.BindBufferMemory(context.Device.LogicalDevice, handle, memory, 0); res != vk.Success {
		err := fmt.Errorf("failed to bind buffer memory")
		core.LogError(err.Error())
		return err
	}

	b.Handle = handle
	b.Memory = memory
	b.Capacity = capacity
	return nil
}

// MapAndWrite maps the whole allocation, copies data at the start, flushes
// and unmaps. The buffer must be host visible.
func (b *VulkanBuffer) MapAndWrite(context *VulkanContext, data []byte) error {
	var ptr unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, b.Memory, 0, vk.DeviceSize(vk.WholeSize), 0, &ptr); res != vk.Success {
		err := fmt.Errorf("failed to map buffer memory")
		core.LogError(err.Error())
		return err
	}

	vk.Memcopy(ptr, data)

	ranges := []vk.MappedMemoryRange{{
		SType:  vk.StructureTypeMappedMemoryRange,
		Memory: b.Memory,
		Offset: 0,
		Size:   vk.DeviceSize(vk.WholeSize),
	}}
	if res := vk.FlushMappedMemoryRanges(context.Device.LogicalDevice, 1, ranges); res != vk.Success {
		err := fmt.Errorf("failed to flush mapped buffer memory")
		core.LogError(err.Error())
		return err
	}

	vk.UnmapMemory(context.Device.LogicalDevice, b.Memory)
	return nil
}

func (b *VulkanBuffer) Destroy(context *VulkanContext) {
	if b.Memory != nil {
		vk.FreeMemory(context.Device.LogicalDevice, b.Memory, context.Allocator)
		b.Memory = nil
	}
	if b.Handle != nil {
		vk.DestroyBuffer(context.Device.LogicalDevice, b.Handle, context.Allocator)
		b.Handle = nil
	}
	b.Capacity = 0
}
