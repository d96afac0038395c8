package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/KyleNBurke/vulkan-engine/engine/core"
)

type VulkanPipeline struct {
	Handle vk.Pipeline
}

type VulkanPipelineConfig struct {
	RenderPass     *VulkanRenderPass
	PipelineLayout vk.PipelineLayout
	Stride         uint32
	Attributes     []vk.VertexInputAttributeDescription
	Stages         []vk.PipelineShaderStageCreateInfo
	Extent         vk.Extent2D
	DepthTest      bool
	AlphaBlend     bool
}

// NewGraphicsPipeline builds a fixed-function pipeline for the forward
// pass. Viewport and scissor are baked in; pipelines are rebuilt with the
// swapchain on resize.
func NewGraphicsPipeline(context *VulkanContext, config *VulkanPipelineConfig) (*VulkanPipeline, error) {
	viewport := vk.Viewport{
		X:        0.0,
		Y:        0.0,
		Width:    float32(config.Extent.Width),
		Height:   float32(config.Extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}

	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: config.Extent,
	}

	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		PViewports:    []vk.Viewport{viewport},
		ScissorCount:  1,
		PScissors:     []vk.Rect2D{scissor},
	}

	rasterizerCreateInfo := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		LineWidth:               1.0,
		CullMode:                vk.CullModeFlags(vk.CullModeBackBit),
		FrontFace:               vk.FrontFaceClockwise,
		DepthBiasEnable:         vk.False,
	}

	multisamplingCreateInfo := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		SampleShadingEnable:  vk.False,
		RasterizationSamples: vk.SampleCount1Bit,
	}

	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:             vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:   vk.False,
		DepthWriteEnable:  vk.False,
		StencilTestEnable: vk.False,
	}
	if config.DepthTest {
		depthStencil.DepthTestEnable = vk.True
		depthStencil.DepthWriteEnable = vk.True
		depthStencil.DepthCompareOp = vk.CompareOpLess
		depthStencil.DepthBoundsTestEnable = vk.False
	}

	colorBlendAttachmentState := vk.PipelineColorBlendAttachmentState{
		BlendEnable: vk.False,
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit) | vk.ColorComponentFlags(vk.ColorComponentGBit) |
			vk.ColorComponentFlags(vk.ColorComponentBBit) | vk.ColorComponentFlags(vk.ColorComponentABit),
	}
	if config.AlphaBlend {
		colorBlendAttachmentState.BlendEnable = vk.True
		colorBlendAttachmentState.SrcColorBlendFactor = vk.BlendFactorSrcAlpha
		colorBlendAttachmentState.DstColorBlendFactor = vk.BlendFactorOneMinusSrcAlpha
		colorBlendAttachmentState.ColorBlendOp = vk.BlendOpAdd
		colorBlendAttachmentState.SrcAlphaBlendFactor = vk.BlendFactorOne
		colorBlendAttachmentState.DstAlphaBlendFactor = vk.BlendFactorZero
		colorBlendAttachmentState.AlphaBlendOp = vk.BlendOpAdd
	}

	colorBlendStateCreateInfo := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{colorBlendAttachmentState},
	}

	bindingDescription := vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    config.Stride,
		InputRate: vk.VertexInputRateVertex,
	}

	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   1,
		PVertexBindingDescriptions:      []vk.VertexInputBindingDescription{bindingDescription},
		VertexAttributeDescriptionCount: uint32(len(config.Attributes)),
		PVertexAttributeDescriptions:    config.Attributes,
	}

	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
	}

	pipelineCreateInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(config.Stages)),
		PStages:             config.Stages,
		PVertexInputState:   &vertexInputInfo,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizerCreateInfo,
		PMultisampleState:   &multisamplingCreateInfo,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlendStateCreateInfo,
		Layout:              config.PipelineLayout,
		RenderPass:          config.RenderPass.Handle,
		Subpass:             0,
		BasePipelineHandle:  vk.NullPipeline,
		BasePipelineIndex:   -1,
	}

	pipelines := make([]vk.Pipeline, 1)
	res := vk.CreateGraphicsPipelines(
		context.Device.LogicalDevice,
		vk.NullPipelineCache,
		1,
		[]vk.GraphicsPipelineCreateInfo{pipelineCreateInfo},
		context.Allocator,
		pipelines)
	if res != vk.Success {
		err := fmt.Errorf("failed to create graphics pipeline")
		core.LogError(err.Error())
		return nil, err
	}

	return &VulkanPipeline{Handle: pipelines[0]}, nil
}

func (pipeline *VulkanPipeline) Destroy(context *VulkanContext) {
	if pipeline.Handle != nil {
		vk.DestroyPipeline(context.Device.LogicalDevice, pipeline.Handle, context.Allocator)
		pipeline.Handle = nil
	}
}

// Mesh vertex layout: interleaved position (3 floats) and normal
// (3 floats), 24 bytes per vertex.
const meshVertexStride = 24

var meshPositionAttribute = vk.VertexInputAttributeDescription{
	Binding:  0,
	Location: 0,
	Format:   vk.FormatR32g32b32Sfloat,
	Offset:   0,
}

var meshNormalAttribute = vk.VertexInputAttributeDescription{
	Binding:  0,
	Location: 1,
	Format:   vk.FormatR32g32b32Sfloat,
	Offset:   12,
}

// NewMeshPipelines builds the basic and lambert pipelines sharing the mesh
// rendering layout. The basic pipeline only consumes positions, lambert
// also consumes normals.
func NewMeshPipelines(context *VulkanContext, shaderDir string, pipelineLayout vk.PipelineLayout, extent vk.Extent2D, renderPass *VulkanRenderPass) (*VulkanPipeline, *VulkanPipeline, error) {
	basicVert, err := ShaderModuleCreate(context, shaderDir, "basic.vert.spv")
	if err != nil {
		return nil, nil, err
	}
	basicFrag, err := ShaderModuleCreate(context, shaderDir, "basic.frag.spv")
	if err != nil {
		return nil, nil, err
	}
	lambertVert, err := ShaderModuleCreate(context, shaderDir, "lambert.vert.spv")
	if err != nil {
		return nil, nil, err
	}
	lambertFrag, err := ShaderModuleCreate(context, shaderDir, "lambert.frag.spv")
	if err != nil {
		return nil, nil, err
	}

	defer func() {
		vk.DestroyShaderModule(context.Device.LogicalDevice, basicVert, context.Allocator)
		vk.DestroyShaderModule(context.Device.LogicalDevice, basicFrag, context.Allocator)
		vk.DestroyShaderModule(context.Device.LogicalDevice, lambertVert, context.Allocator)
		vk.DestroyShaderModule(context.Device.LogicalDevice, lambertFrag, context.Allocator)
	}()

	basicPipeline, err := NewGraphicsPipeline(context, &VulkanPipelineConfig{
		RenderPass:     renderPass,
		PipelineLayout: pipelineLayout,
		Stride:         meshVertexStride,
		Attributes:     []vk.VertexInputAttributeDescription{meshPositionAttribute},
		Stages: []vk.PipelineShaderStageCreateInfo{
			ShaderStageCreateInfo(basicVert, vk.ShaderStageVertexBit),
			ShaderStageCreateInfo(basicFrag, vk.ShaderStageFragmentBit),
		},
		Extent:    extent,
		DepthTest: true,
	})
	if err != nil {
		return nil, nil, err
	}

	lambertPipeline, err := NewGraphicsPipeline(context, &VulkanPipelineConfig{
		RenderPass:     renderPass,
		PipelineLayout: pipelineLayout,
		Stride:         meshVertexStride,
		Attributes:     []vk.VertexInputAttributeDescription{meshPositionAttribute, meshNormalAttribute},
		Stages: []vk.PipelineShaderStageCreateInfo{
			ShaderStageCreateInfo(lambertVert, vk.ShaderStageVertexBit),
			ShaderStageCreateInfo(lambertFrag, vk.ShaderStageFragmentBit),
		},
		Extent:    extent,
		DepthTest: true,
	})
	if err != nil {
		basicPipeline.Destroy(context)
		return nil, nil, err
	}

	core.LogDebug("Mesh rendering pipelines created.")
	return basicPipeline, lambertPipeline, nil
}
