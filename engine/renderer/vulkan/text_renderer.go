package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/KyleNBurke/vulkan-engine/engine/assets"
	"github.com/KyleNBurke/vulkan-engine/engine/core"
	"github.com/KyleNBurke/vulkan-engine/engine/scene"
)

// MaxFonts bounds the font atlas texture array; the shader indexes it with
// the per-text atlas index uniform.
const MaxFonts = 10

// Text vertex layout: screen position (2 floats) and texture coordinate
// (2 floats), 16 bytes per vertex.
const textVertexStride = 16

// TextRenderer owns everything specific to drawing glyph quads: the font
// pool, the submitted atlas textures, the sampler descriptor set and the
// text pipeline.
type TextRenderer struct {
	Fonts *scene.Pool[*assets.Font]

	TextDataDescriptorSetLayout vk.DescriptorSetLayout

	samplerAndAtlasesLayout        vk.DescriptorSetLayout
	SamplerAndAtlasesDescriptorSet vk.DescriptorSet

	PipelineLayout vk.PipelineLayout
	Pipeline       *VulkanPipeline

	sampler vk.Sampler
	atlases []*VulkanImage

	shaderDir string
}

func NewTextRenderer(context *VulkanContext, shaderDir string, descriptorPool vk.DescriptorPool, renderPass *VulkanRenderPass, extent vk.Extent2D) (*TextRenderer, error) {
	tr := &TextRenderer{
		Fonts:     scene.NewPool[*assets.Font](),
		shaderDir: shaderDir,
	}

	// Per-text data: the UI matrix at binding 0 and the atlas index at
	// binding 1, both selected with dynamic offsets.
	textDataLayout, err := DescriptorSetLayoutCreate(context, []vk.DescriptorSetLayoutBinding{
		{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeUniformBufferDynamic,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		},
		{
			Binding:         1,
			DescriptorType:  vk.DescriptorTypeUniformBufferDynamic,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
	})
	if err != nil {
		return nil, err
	}
	tr.TextDataDescriptorSetLayout = textDataLayout

	samplerAndAtlasesLayout, err := DescriptorSetLayoutCreate(context, []vk.DescriptorSetLayoutBinding{
		{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
		{
			Binding:         1,
			DescriptorType:  vk.DescriptorTypeSampledImage,
			DescriptorCount: MaxFonts,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
	})
	if err != nil {
		return nil, err
	}
	tr.samplerAndAtlasesLayout = samplerAndAtlasesLayout

	sets, err := DescriptorSetsAllocate(context, descriptorPool, []vk.DescriptorSetLayout{samplerAndAtlasesLayout})
	if err != nil {
		return nil, err
	}
	tr.SamplerAndAtlasesDescriptorSet = sets[0]

	samplerCreateInfo := vk.SamplerCreateInfo{
		SType:        vk.StructureTypeSamplerCreateInfo,
		MagFilter:    vk.FilterLinear,
		MinFilter:    vk.FilterLinear,
		AddressModeU: vk.SamplerAddressModeClampToEdge,
		AddressModeV: vk.SamplerAddressModeClampToEdge,
		AddressModeW: vk.SamplerAddressModeClampToEdge,
	}

	var sampler vk.Sampler
	if res := vk.CreateSampler(context.Device.LogicalDevice, &samplerCreateInfo, context.Allocator, &sampler); res != vk.Success {
		err := fmt.Errorf("failed to create font atlas sampler")
		core.LogError(err.Error())
		return nil, err
	}
	tr.sampler = sampler

	samplerWrite := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          tr.SamplerAndAtlasesDescriptorSet,
		DstBinding:      0,
		DstArrayElement: 0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeSampler,
		PImageInfo: []vk.DescriptorImageInfo{{
			Sampler: sampler,
		}},
	}
	vk.UpdateDescriptorSets(context.Device.LogicalDevice, 1, []vk.WriteDescriptorSet{samplerWrite}, 0, nil)

	pipelineLayoutCreateInfo := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 2,
		PSetLayouts:    []vk.DescriptorSetLayout{samplerAndAtlasesLayout, textDataLayout},
	}

	var pipelineLayout vk.PipelineLayout
	if res := vk.CreatePipelineLayout(context.Device.LogicalDevice, &pipelineLayoutCreateInfo, context.Allocator, &pipelineLayout); res != vk.Success {
		err := fmt.Errorf("failed to create text pipeline layout")
		core.LogError(err.Error())
		return nil, err
	}
	tr.PipelineLayout = pipelineLayout

	pipeline, err := tr.createPipeline(context, renderPass, extent)
	if err != nil {
		return nil, err
	}
	tr.Pipeline = pipeline

	return tr, nil
}

func (tr *TextRenderer) createPipeline(context *VulkanContext, renderPass *VulkanRenderPass, extent vk.Extent2D) (*VulkanPipeline, error) {
	vert, err := ShaderModuleCreate(context, tr.shaderDir, "text.vert.spv")
	if err != nil {
		return nil, err
	}
	frag, err := ShaderModuleCreate(context, tr.shaderDir, "text.frag.spv")
	if err != nil {
		return nil, err
	}

	defer func() {
		vk.DestroyShaderModule(context.Device.LogicalDevice, vert, context.Allocator)
		vk.DestroyShaderModule(context.Device.LogicalDevice, frag, context.Allocator)
	}()

	return NewGraphicsPipeline(context, &VulkanPipelineConfig{
		RenderPass:     renderPass,
		PipelineLayout: tr.PipelineLayout,
		Stride:         textVertexStride,
		Attributes: []vk.VertexInputAttributeDescription{
			{
				Binding:  0,
				Location: 0,
				Format:   vk.FormatR32g32Sfloat,
				Offset:   0,
			},
			{
				Binding:  0,
				Location: 1,
				Format:   vk.FormatR32g32Sfloat,
				Offset:   8,
			},
		},
		Stages: []vk.PipelineShaderStageCreateInfo{
			ShaderStageCreateInfo(vert, vk.ShaderStageVertexBit),
			ShaderStageCreateInfo(frag, vk.ShaderStageFragmentBit),
		},
		Extent:     extent,
		AlphaBlend: true,
	})
}

// ResolveFont satisfies the packer's FontResolver contract.
func (tr *TextRenderer) ResolveFont(handle scene.Handle) (scene.Font, int) {
	font := *tr.Fonts.MustGet(handle)
	return font, font.SubmissionIndex
}

// SubmitFonts uploads every pooled font atlas to the GPU and rewrites the
// sampled image array. Previously submitted atlases are replaced
// wholesale; the caller must guarantee the GPU is not reading them.
func (tr *TextRenderer) SubmitFonts(context *VulkanContext, commandPool vk.CommandPool) error {
	if tr.Fonts.Len() > MaxFonts {
		err := fmt.Errorf("cannot submit %d fonts, the atlas array holds %d", tr.Fonts.Len(), MaxFonts)
		core.LogError(err.Error())
		return err
	}

	vk.QueueWaitIdle(context.Device.GraphicsQueue)

	for _, atlas := range tr.atlases {
		atlas.ImageDestroy(context)
	}
	tr.atlases = tr.atlases[:0]

	var submitErr error
	index := 0
	tr.Fonts.ForEach(func(fontPtr **assets.Font) {
		if submitErr != nil {
			return
		}
		font := *fontPtr

		atlas, err := tr.uploadAtlas(context, commandPool, font)
		if err != nil {
			submitErr = err
			return
		}

		tr.atlases = append(tr.atlases, atlas)
		font.SubmissionIndex = index
		index++
	})
	if submitErr != nil {
		return submitErr
	}

	if len(tr.atlases) == 0 {
		return nil
	}

	imageInfos := make([]vk.DescriptorImageInfo, len(tr.atlases))
	for i, atlas := range tr.atlases {
		imageInfos[i] = vk.DescriptorImageInfo{
			ImageView:   atlas.View,
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		}
	}

	atlasesWrite := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          tr.SamplerAndAtlasesDescriptorSet,
		DstBinding:      1,
		DstArrayElement: 0,
		DescriptorCount: uint32(len(imageInfos)),
		DescriptorType:  vk.DescriptorTypeSampledImage,
		PImageInfo:      imageInfos,
	}
	vk.UpdateDescriptorSets(context.Device.LogicalDevice, 1, []vk.WriteDescriptorSet{atlasesWrite}, 0, nil)

	core.LogInfo("Submitted %d font atlas(es).", len(tr.atlases))
	return nil
}

// uploadAtlas stages the single-channel pixels into a device local image
// and transitions it for sampling.
func (tr *TextRenderer) uploadAtlas(context *VulkanContext, commandPool vk.CommandPool, font *assets.Font) (*VulkanImage, error) {
	width, height := font.AtlasSize()

	image, err := ImageCreate(
		context,
		vk.ImageType2d,
		uint32(width),
		uint32(height),
		vk.FormatR8Unorm,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit)|vk.ImageUsageFlags(vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return nil, err
	}

	staging, err := NewBuffer(
		context,
		uint64(len(font.AtlasPixels)),
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit))
	if err != nil {
		image.ImageDestroy(context)
		return nil, err
	}
	defer staging.Destroy(context)

	if err := staging.MapAndWrite(context, font.AtlasPixels); err != nil {
		image.ImageDestroy(context)
		return nil, err
	}

	commandBuffers, err := AllocateCommandBuffers(context, commandPool, vk.CommandBufferLevelPrimary, 1)
	if err != nil {
		image.ImageDestroy(context)
		return nil, err
	}
	commandBuffer := commandBuffers[0]

	if err := BeginCommandBuffer(commandBuffer, vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit), nil); err != nil {
		image.ImageDestroy(context)
		return nil, err
	}

	transitionImageLayout(commandBuffer, image.Handle,
		vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal,
		0, vk.AccessFlags(vk.AccessTransferWriteBit),
		vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit), vk.PipelineStageFlags(vk.PipelineStageTransferBit))

	region := vk.BufferImageCopy{
		BufferOffset:      0,
		BufferRowLength:   0,
		BufferImageHeight: 0,
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			MipLevel:       0,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
		ImageExtent: vk.Extent3D{
			Width:  uint32(width),
			Height: uint32(height),
			Depth:  1,
		},
	}
	vk.CmdCopyBufferToImage(commandBuffer, staging.Handle, image.Handle, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})

	transitionImageLayout(commandBuffer, image.Handle,
		vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal,
		vk.AccessFlags(vk.AccessTransferWriteBit), vk.AccessFlags(vk.AccessShaderReadBit),
		vk.PipelineStageFlags(vk.PipelineStageTransferBit), vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit))

	if err := EndCommandBuffer(commandBuffer); err != nil {
		image.ImageDestroy(context)
		return nil, err
	}

	if err := SubmitAndWaitIdle(context, commandPool, context.Device.GraphicsQueue, commandBuffer); err != nil {
		image.ImageDestroy(context)
		return nil, err
	}

	return image, nil
}

func transitionImageLayout(
	commandBuffer vk.CommandBuffer,
	image vk.Image,
	oldLayout, newLayout vk.ImageLayout,
	srcAccess, dstAccess vk.AccessFlags,
	srcStage, dstStage vk.PipelineStageFlags) {

	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
		SrcAccessMask: srcAccess,
		DstAccessMask: dstAccess,
	}

	vk.CmdPipelineBarrier(commandBuffer, srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

// HandleResize rebuilds the text pipeline against the new extent.
func (tr *TextRenderer) HandleResize(context *VulkanContext, renderPass *VulkanRenderPass, extent vk.Extent2D) error {
	tr.Pipeline.Destroy(context)

	pipeline, err := tr.createPipeline(context, renderPass, extent)
	if err != nil {
		return err
	}
	tr.Pipeline = pipeline
	return nil
}

func (tr *TextRenderer) Destroy(context *VulkanContext) {
	for _, atlas := range tr.atlases {
		atlas.ImageDestroy(context)
	}
	tr.atlases = nil

	tr.Pipeline.Destroy(context)
	vk.DestroyPipelineLayout(context.Device.LogicalDevice, tr.PipelineLayout, context.Allocator)
	vk.DestroySampler(context.Device.LogicalDevice, tr.sampler, context.Allocator)
	vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, tr.samplerAndAtlasesLayout, context.Allocator)
	vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, tr.TextDataDescriptorSetLayout, context.Allocator)
}
