package vulkan

import (
	"errors"
	"fmt"
	stdmath "math"
	"path/filepath"

	vk "github.com/goki/vulkan"

	"github.com/KyleNBurke/vulkan-engine/engine/assets"
	"github.com/KyleNBurke/vulkan-engine/engine/core"
	"github.com/KyleNBurke/vulkan-engine/engine/math"
	"github.com/KyleNBurke/vulkan-engine/engine/scene"
)

// Renderer drives the forward pass: it packs scenes into per-frame
// buffers, records the command buffers and owns every Vulkan object the
// pass needs.
type Renderer struct {
	context        *VulkanContext
	renderPass     *VulkanRenderPass
	swapchain      *VulkanSwapchain
	descriptorPool vk.DescriptorPool
	commandPool    vk.CommandPool

	meshResources   *MeshRenderingResources
	textRenderer    *TextRenderer
	basicPipeline   *VulkanPipeline
	lambertPipeline *VulkanPipeline

	inFlightFrames       [InFlightFramesCount]*InFlightFrame
	currentInFlightFrame int

	packer             *FramePacker
	uiProjectionMatrix math.Mat3
	submitFonts        bool
	shaderDir          string

	// Source file to handle, so watcher events can find the loaded font.
	fontSources map[string]scene.Handle
}

func NewRenderer(context *VulkanContext, shaderDir string, framebufferWidth, framebufferHeight uint32) (*Renderer, error) {
	r := &Renderer{
		context:     context,
		shaderDir:   shaderDir,
		fontSources: make(map[string]scene.Handle),
	}

	// The render pass and the swapchain must agree on formats, so both
	// are derived from the same surface query.
	support, err := DeviceQuerySwapchainSupport(context.Device.PhysicalDevice, context.Surface)
	if err != nil {
		return nil, err
	}
	context.Device.SwapchainSupport = support
	surfaceFormat := ChooseSurfaceFormat(support)

	if !DeviceDetectDepthFormat(context.Device) {
		core.LogFatal("Required format for depth buffering not supported!")
	}

	renderPass, err := RenderPassCreate(context, surfaceFormat.Format, context.Device.DepthFormat)
	if err != nil {
		return nil, err
	}
	r.renderPass = renderPass

	swapchain, err := SwapchainCreate(context, renderPass, framebufferWidth, framebufferHeight)
	if err != nil {
		return nil, err
	}
	r.swapchain = swapchain

	descriptorPool, err := DescriptorPoolCreate(context)
	if err != nil {
		return nil, err
	}
	r.descriptorPool = descriptorPool

	commandPool, err := CommandPoolCreate(context)
	if err != nil {
		return nil, err
	}
	r.commandPool = commandPool

	meshResources, err := createMeshRenderingResources(context, descriptorPool)
	if err != nil {
		return nil, err
	}
	r.meshResources = meshResources

	textRenderer, err := NewTextRenderer(context, shaderDir, descriptorPool, renderPass, swapchain.Extent)
	if err != nil {
		return nil, err
	}
	r.textRenderer = textRenderer

	basicPipeline, lambertPipeline, err := NewMeshPipelines(context, shaderDir, meshResources.PipelineLayout, swapchain.Extent, renderPass)
	if err != nil {
		return nil, err
	}
	r.basicPipeline = basicPipeline
	r.lambertPipeline = lambertPipeline

	inFlightFrames, err := createInFlightFrames(
		context,
		descriptorPool,
		commandPool,
		meshResources.FrameDataDescriptorSetLayout,
		meshResources.MeshDataDescriptorSetLayout,
		textRenderer.TextDataDescriptorSetLayout)
	if err != nil {
		return nil, err
	}
	r.inFlightFrames = inFlightFrames

	r.packer = NewFramePacker(int(context.Device.MinUniformBufferOffsetAlignment()))
	r.uiProjectionMatrix = math.NewMat3UIProjection(float32(framebufferWidth), float32(framebufferHeight))

	core.LogInfo("Renderer initialized.")
	return r, nil
}

// SwapchainExtent reports the current swapchain size, which may differ
// from the requested framebuffer size after clamping. Callers recompute
// externally held projection matrices from it.
func (r *Renderer) SwapchainExtent() (uint32, uint32) {
	return r.swapchain.Extent.Width, r.swapchain.Extent.Height
}

// AddFont loads a BMFont and registers it for atlas submission before the
// next frame.
func (r *Renderer) AddFont(filePath string) (scene.Handle, error) {
	font, err := assets.LoadFont(filePath)
	if err != nil {
		return scene.Handle{}, err
	}
	handle := r.textRenderer.Fonts.Add(font)
	r.fontSources[filepath.Clean(filePath)] = handle
	r.submitFonts = true
	core.LogInfo("Font %s queued for atlas submission.", font.ID)
	return handle, nil
}

func (r *Renderer) RemoveFont(handle scene.Handle) {
	r.textRenderer.Fonts.Remove(handle)
	for path, h := range r.fontSources {
		if h == handle {
			delete(r.fontSources, path)
			break
		}
	}
	r.submitFonts = true
}

// ReloadFont swaps a changed font file back into the pool under its
// existing handle and identifier, so texts referencing it pick up the new
// metrics on the next frame. Reports whether the path belongs to a loaded
// font.
func (r *Renderer) ReloadFont(filePath string) bool {
	handle, ok := r.fontSources[filepath.Clean(filePath)]
	if !ok {
		return false
	}

	font, err := assets.LoadFont(filePath)
	if err != nil {
		core.LogWarn("Keeping the previous version of font %s.", filePath)
		return true
	}

	current := r.textRenderer.Fonts.MustGet(handle)
	font.ID = (*current).ID
	*current = font
	r.submitFonts = true
	core.LogInfo("Reloaded font %s.", font.ID)
	return true
}

// secondaryCommandBufferFor routes a draw to the secondary command buffer
// of its material group. Normal shares the basic group's pipeline since
// both only consume positions from the shared vertex layout.
func (frame *InFlightFrame) secondaryCommandBufferFor(material scene.Material) vk.CommandBuffer {
	routes := [...]vk.CommandBuffer{
		scene.MaterialBasic:   frame.BasicSecondaryCommandBuffer,
		scene.MaterialNormal:  frame.BasicSecondaryCommandBuffer,
		scene.MaterialLambert: frame.LambertSecondaryCommandBuffer,
	}
	return routes[material]
}

// HandleResize rebuilds everything sized by the framebuffer: the
// swapchain with its framebuffers, every pipeline and the UI projection.
func (r *Renderer) HandleResize(framebufferWidth, framebufferHeight uint32) error {
	context := r.context
	vk.DeviceWaitIdle(context.Device.LogicalDevice)

	r.basicPipeline.Destroy(context)
	r.lambertPipeline.Destroy(context)

	swapchain, err := r.swapchain.SwapchainRecreate(context, r.renderPass, framebufferWidth, framebufferHeight)
	if err != nil {
		return err
	}
	r.swapchain = swapchain

	if err := r.textRenderer.HandleResize(context, r.renderPass, swapchain.Extent); err != nil {
		return err
	}

	basicPipeline, lambertPipeline, err := NewMeshPipelines(context, r.shaderDir, r.meshResources.PipelineLayout, swapchain.Extent, r.renderPass)
	if err != nil {
		return err
	}
	r.basicPipeline = basicPipeline
	r.lambertPipeline = lambertPipeline

	r.uiProjectionMatrix.Elements[0][0] = 2.0 / float32(framebufferWidth)
	r.uiProjectionMatrix.Elements[1][1] = 2.0 / float32(framebufferHeight)

	context.FramebufferWidth = framebufferWidth
	context.FramebufferHeight = framebufferHeight

	core.LogInfo("Swapchain recreated (%dx%d).", framebufferWidth, framebufferHeight)
	return nil
}

// Render draws one frame. The returned bool reports a surface change; the
// caller must rebuild the swapchain via HandleResize before rendering
// again.
func (r *Renderer) Render(s *scene.Scene) (bool, error) {
	context := r.context

	if r.submitFonts {
		if err := r.textRenderer.SubmitFonts(context, r.commandPool); err != nil {
			return false, err
		}
		r.submitFonts = false
	}

	frame := r.inFlightFrames[r.currentInFlightFrame]

	// This frame's resources may still feed the GPU; the fence is the
	// only thing preventing the packer from overwriting them.
	if !frame.Fence.FenceWait(context, stdmath.MaxUint64) {
		core.LogWarn("In flight frame fence wait failed, skipping frame.")
		return false, nil
	}

	imageIndex, err := r.swapchain.SwapchainAcquireNextImageIndex(context, stdmath.MaxUint64, frame.ImageAvailable)
	if err != nil {
		if errors.Is(err, core.ErrSurfaceChanged) {
			// Abandon the frame entirely, nothing was recorded yet.
			return true, nil
		}
		return false, err
	}

	swapchainFrame := r.swapchain.Frames[imageIndex]

	// The image itself may still be referenced by an older frame.
	if swapchainFrame.Fence != vk.NullFence {
		WaitFenceHandle(context, swapchainFrame.Fence)
	}
	swapchainFrame.Fence = frame.Fence.Handle

	// Pack the scene.
	camera := &s.Camera
	if camera.AutoUpdateViewMatrix {
		camera.Transform.UpdateMatrix()
	}
	inverseViewMatrix := camera.Transform.Matrix.Inverse()

	size := r.packer.Layout(s, r.textRenderer)

	if uint64(size) > frame.Buffer.Capacity {
		if err := frame.Buffer.Reallocate(context, uint64(size)); err != nil {
			return false, err
		}
		frame.updateDescriptorSets(context)
	}

	data := r.packer.Pack(s, inverseViewMatrix, r.uiProjectionMatrix, size)
	if err := frame.Buffer.MapAndWrite(context, data); err != nil {
		return false, err
	}

	// Record the three secondary command buffers inside the pass.
	inheritanceInfo := vk.CommandBufferInheritanceInfo{
		SType:       vk.StructureTypeCommandBufferInheritanceInfo,
		RenderPass:  r.renderPass.Handle,
		Subpass:     0,
		Framebuffer: swapchainFrame.Framebuffer.Handle,
	}
	secondaryFlags := vk.CommandBufferUsageFlags(vk.CommandBufferUsageRenderPassContinueBit) | vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)

	if err := BeginCommandBuffer(frame.BasicSecondaryCommandBuffer, secondaryFlags, &inheritanceInfo); err != nil {
		return false, err
	}
	vk.CmdBindPipeline(frame.BasicSecondaryCommandBuffer, vk.PipelineBindPointGraphics, r.basicPipeline.Handle)
	vk.CmdBindDescriptorSets(frame.BasicSecondaryCommandBuffer, vk.PipelineBindPointGraphics, r.meshResources.PipelineLayout,
		0, 1, []vk.DescriptorSet{frame.FrameDataDescriptorSet}, 0, nil)

	if err := BeginCommandBuffer(frame.LambertSecondaryCommandBuffer, secondaryFlags, &inheritanceInfo); err != nil {
		return false, err
	}
	vk.CmdBindPipeline(frame.LambertSecondaryCommandBuffer, vk.PipelineBindPointGraphics, r.lambertPipeline.Handle)
	vk.CmdBindDescriptorSets(frame.LambertSecondaryCommandBuffer, vk.PipelineBindPointGraphics, r.meshResources.PipelineLayout,
		0, 1, []vk.DescriptorSet{frame.FrameDataDescriptorSet}, 0, nil)

	if err := BeginCommandBuffer(frame.TextSecondaryCommandBuffer, secondaryFlags, &inheritanceInfo); err != nil {
		return false, err
	}
	vk.CmdBindPipeline(frame.TextSecondaryCommandBuffer, vk.PipelineBindPointGraphics, r.textRenderer.Pipeline.Handle)
	vk.CmdBindDescriptorSets(frame.TextSecondaryCommandBuffer, vk.PipelineBindPointGraphics, r.textRenderer.PipelineLayout,
		0, 1, []vk.DescriptorSet{r.textRenderer.SamplerAndAtlasesDescriptorSet}, 0, nil)

	// Dynamic mesh draws.
	for _, mesh := range s.Meshes {
		commandBuffer := frame.secondaryCommandBufferFor(mesh.Material)
		geometry := s.GeometryOf(mesh.GeometryHandle)

		vk.CmdBindIndexBuffer(commandBuffer, frame.Buffer.Handle, vk.DeviceSize(mesh.IndexOffset), vk.IndexTypeUint16)
		vk.CmdBindVertexBuffers(commandBuffer, 0, 1, []vk.Buffer{frame.Buffer.Handle}, []vk.DeviceSize{vk.DeviceSize(mesh.AttributeOffset)})
		vk.CmdBindDescriptorSets(commandBuffer, vk.PipelineBindPointGraphics, r.meshResources.PipelineLayout,
			1, 1, []vk.DescriptorSet{frame.MeshDataDescriptorSet}, 1, []uint32{uint32(mesh.UniformOffset)})
		vk.CmdDrawIndexed(commandBuffer, uint32(len(geometry.VertexIndices())), 1, 0, 0, 0)
	}

	// Text draws.
	for _, text := range s.Texts {
		vk.CmdBindIndexBuffer(frame.TextSecondaryCommandBuffer, frame.Buffer.Handle, vk.DeviceSize(text.IndexOffset), vk.IndexTypeUint16)
		vk.CmdBindVertexBuffers(frame.TextSecondaryCommandBuffer, 0, 1, []vk.Buffer{frame.Buffer.Handle}, []vk.DeviceSize{vk.DeviceSize(text.AttributeOffset)})
		vk.CmdBindDescriptorSets(frame.TextSecondaryCommandBuffer, vk.PipelineBindPointGraphics, r.textRenderer.PipelineLayout,
			1, 1, []vk.DescriptorSet{frame.TextDataDescriptorSet}, 2, []uint32{uint32(text.MatrixUniformOffset), uint32(text.AtlasIndexUniformOffset)})
		vk.CmdDrawIndexed(frame.TextSecondaryCommandBuffer, uint32(len(text.VertexIndices())), 1, 0, 0, 0)
	}

	// Static mesh draws from the cached submission table, interleaved
	// with the dynamic draws by material.
	staticBuffer := r.meshResources.StaticMeshBuffer
	for _, info := range r.meshResources.StaticRenderInfo {
		commandBuffer := frame.secondaryCommandBufferFor(info.Material)

		vk.CmdBindIndexBuffer(commandBuffer, staticBuffer.Handle, vk.DeviceSize(info.IndexOffset), vk.IndexTypeUint16)
		vk.CmdBindVertexBuffers(commandBuffer, 0, 1, []vk.Buffer{staticBuffer.Handle}, []vk.DeviceSize{vk.DeviceSize(info.AttributeOffset)})
		vk.CmdBindDescriptorSets(commandBuffer, vk.PipelineBindPointGraphics, r.meshResources.PipelineLayout,
			1, 1, []vk.DescriptorSet{r.meshResources.StaticMeshDescriptorSet}, 1, []uint32{uint32(info.UniformOffset)})
		vk.CmdDrawIndexed(commandBuffer, uint32(info.IndexCount), 1, 0, 0, 0)
	}

	if err := EndCommandBuffer(frame.BasicSecondaryCommandBuffer); err != nil {
		return false, err
	}
	if err := EndCommandBuffer(frame.LambertSecondaryCommandBuffer); err != nil {
		return false, err
	}
	if err := EndCommandBuffer(frame.TextSecondaryCommandBuffer); err != nil {
		return false, err
	}

	// The primary command buffer wraps the pass around the three
	// secondaries.
	if err := BeginCommandBuffer(frame.PrimaryCommandBuffer, vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit), nil); err != nil {
		return false, err
	}
	r.renderPass.Begin(frame.PrimaryCommandBuffer, swapchainFrame.Framebuffer.Handle, r.swapchain.Extent)
	vk.CmdExecuteCommands(frame.PrimaryCommandBuffer, 3, []vk.CommandBuffer{
		frame.BasicSecondaryCommandBuffer,
		frame.LambertSecondaryCommandBuffer,
		frame.TextSecondaryCommandBuffer,
	})
	r.renderPass.End(frame.PrimaryCommandBuffer)
	if err := EndCommandBuffer(frame.PrimaryCommandBuffer); err != nil {
		return false, err
	}

	// Submit, waiting for the image at the color attachment stage and
	// signalling render finished plus this frame's fence.
	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{frame.ImageAvailable},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{frame.PrimaryCommandBuffer},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{frame.RenderFinished},
	}

	if err := frame.Fence.FenceReset(context); err != nil {
		return false, err
	}
	if res := vk.QueueSubmit(context.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, frame.Fence.Handle); res != vk.Success {
		err := fmt.Errorf("failed to submit frame command buffer")
		core.LogError(err.Error())
		return false, err
	}

	surfaceChanged, err := r.swapchain.SwapchainPresent(context, context.Device.PresentQueue, frame.RenderFinished, imageIndex)
	if err != nil {
		return false, err
	}

	r.currentInFlightFrame = (r.currentInFlightFrame + 1) % InFlightFramesCount

	return surfaceChanged, nil
}

// Shutdown tears the renderer down after the device goes idle.
func (r *Renderer) Shutdown() {
	context := r.context
	vk.DeviceWaitIdle(context.Device.LogicalDevice)

	for _, frame := range r.inFlightFrames {
		frame.destroy(context)
	}

	r.basicPipeline.Destroy(context)
	r.lambertPipeline.Destroy(context)
	r.textRenderer.Destroy(context)
	r.meshResources.destroy(context)

	vk.DestroyCommandPool(context.Device.LogicalDevice, r.commandPool, context.Allocator)
	vk.DestroyDescriptorPool(context.Device.LogicalDevice, r.descriptorPool, context.Allocator)

	r.swapchain.SwapchainDestroy(context)
	r.renderPass.Destroy(context)

	core.LogInfo("Renderer shut down.")
}
