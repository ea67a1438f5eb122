package vulkan

import (
	"github.com/cockroachdb/errors"

	"github.com/RotatingArtDev/FNA3D/common"
)

// Presentation staleness sentinels. Neither is a failure: both mean the surface no
// longer matches the swapchain and the swapchain must be recreated in place.
var (
	// ErrOutOfDate reports that the surface has changed incompatibly and the
	// swapchain can no longer present.
	ErrOutOfDate = errors.New("swapchain out of date")
	// ErrSuboptimal reports that the swapchain still works but no longer matches
	// the surface properties exactly.
	ErrSuboptimal = errors.New("swapchain suboptimal")
)

// isStale reports whether err is a presentation staleness signal rather than a
// real failure.
func isStale(err error) bool {
	return errors.Is(err, ErrOutOfDate) || errors.Is(err, ErrSuboptimal)
}

// Backend is the capability surface over the native graphics API: one method per
// native operation the driver core performs. The shipping implementation is
// newNativeBackend; tests substitute a controllable fake satisfying the same
// interface so every protocol property can be exercised without a GPU.
//
// Handle arguments always belong to the Backend that issued them. Methods that
// can fail natively return an error carrying the native result context; Cmd*
// recording methods cannot fail and return nothing.
type Backend interface {
	// CreateInstance creates the API instance; the Backend performs its
	// instance-scoped entry-point load before returning.
	CreateInstance(info InstanceInfo) (Instance, error)
	DestroyInstance(instance Instance)
	// CreateSurface creates the presentation surface by handing the native
	// instance handle to the windowing layer's creation callback.
	CreateSurface(instance Instance, create SurfaceProviderFunc) (Surface, error)
	DestroySurface(instance Instance, surface Surface)
	EnumeratePhysicalDevices(instance Instance) ([]PhysicalDevice, error)
	PhysicalDeviceProperties(device PhysicalDevice) PhysicalDeviceProperties
	PhysicalDeviceFeatures(device PhysicalDevice) PhysicalDeviceFeatures
	PhysicalDeviceMemoryProperties(device PhysicalDevice) MemoryProperties
	QueueFamilyProperties(device PhysicalDevice) []QueueFamily
	SurfaceSupport(device PhysicalDevice, familyIndex uint32, surface Surface) (bool, error)
	SurfaceCapabilities(device PhysicalDevice, surface Surface) (SurfaceCapabilities, error)
	SurfaceFormats(device PhysicalDevice, surface Surface) ([]SurfaceFormatEntry, error)
	SurfacePresentModes(device PhysicalDevice, surface Surface) ([]PresentMode, error)

	// CreateLogicalDevice creates the usable device; the Backend performs its
	// device-scoped entry-point load before returning.
	CreateLogicalDevice(device PhysicalDevice, info DeviceInfo) (LogicalDevice, error)
	DestroyLogicalDevice(device LogicalDevice)
	DeviceQueue(device LogicalDevice, familyIndex, queueIndex uint32) Queue
	DeviceWaitIdle(device LogicalDevice) error

	CreateSwapchain(device LogicalDevice, info SwapchainInfo) (Swapchain, error)
	DestroySwapchain(device LogicalDevice, swapchain Swapchain)
	SwapchainImages(device LogicalDevice, swapchain Swapchain) ([]Image, error)
	// AcquireNextImage blocks without timeout until an image is available. A
	// returned ErrOutOfDate or ErrSuboptimal carries a valid-but-stale surface.
	AcquireNextImage(device LogicalDevice, swapchain Swapchain, signal Semaphore) (uint32, error)
	QueuePresent(queue Queue, info PresentInfo) error
	QueueSubmit(queue Queue, info SubmitInfo) error

	AllocateMemory(device LogicalDevice, size uint64, memoryTypeIndex uint32) (DeviceMemory, error)
	FreeMemory(device LogicalDevice, memory DeviceMemory)
	// MapMemory maps the whole allocation and returns a host slice of the given
	// size aliasing it. The mapping stays valid until FreeMemory.
	MapMemory(device LogicalDevice, memory DeviceMemory, size uint64) ([]byte, error)

	CreateBuffer(device LogicalDevice, info BufferInfo) (Buffer, error)
	DestroyBuffer(device LogicalDevice, buffer Buffer)
	BufferMemoryRequirements(device LogicalDevice, buffer Buffer) MemoryRequirements
	BindBufferMemory(device LogicalDevice, buffer Buffer, memory DeviceMemory) error

	CreateImage(device LogicalDevice, info ImageInfo) (Image, error)
	DestroyImage(device LogicalDevice, image Image)
	ImageMemoryRequirements(device LogicalDevice, image Image) MemoryRequirements
	BindImageMemory(device LogicalDevice, image Image, memory DeviceMemory) error
	CreateImageView(device LogicalDevice, info ImageViewInfo) (ImageView, error)
	DestroyImageView(device LogicalDevice, view ImageView)

	CreateSampler(device LogicalDevice, info SamplerInfo) (Sampler, error)
	DestroySampler(device LogicalDevice, sampler Sampler)

	CreateShaderModule(device LogicalDevice, code []uint32) (ShaderModule, error)
	DestroyShaderModule(device LogicalDevice, module ShaderModule)

	CreateRenderPass(device LogicalDevice, info RenderPassInfo) (RenderPass, error)
	DestroyRenderPass(device LogicalDevice, pass RenderPass)
	CreateFramebuffer(device LogicalDevice, info FramebufferInfo) (Framebuffer, error)
	DestroyFramebuffer(device LogicalDevice, framebuffer Framebuffer)

	CreatePipelineCache(device LogicalDevice) (PipelineCache, error)
	DestroyPipelineCache(device LogicalDevice, cache PipelineCache)
	CreatePipelineLayout(device LogicalDevice, layouts []DescriptorSetLayout) (PipelineLayout, error)
	DestroyPipelineLayout(device LogicalDevice, layout PipelineLayout)
	CreateGraphicsPipeline(device LogicalDevice, cache PipelineCache, info GraphicsPipelineInfo) (Pipeline, error)
	DestroyPipeline(device LogicalDevice, pipeline Pipeline)

	CreateDescriptorSetLayout(device LogicalDevice, info DescriptorSetLayoutInfo) (DescriptorSetLayout, error)
	DestroyDescriptorSetLayout(device LogicalDevice, layout DescriptorSetLayout)
	CreateDescriptorPool(device LogicalDevice, info DescriptorPoolInfo) (DescriptorPool, error)
	DestroyDescriptorPool(device LogicalDevice, pool DescriptorPool)
	ResetDescriptorPool(device LogicalDevice, pool DescriptorPool) error
	AllocateDescriptorSet(device LogicalDevice, pool DescriptorPool, layout DescriptorSetLayout) (DescriptorSet, error)
	UpdateDescriptorSet(device LogicalDevice, set DescriptorSet, writes []DescriptorWrite)

	CreateCommandPool(device LogicalDevice, queueFamilyIndex uint32) (CommandPool, error)
	DestroyCommandPool(device LogicalDevice, pool CommandPool)
	ResetCommandPool(device LogicalDevice, pool CommandPool) error
	AllocateCommandBuffer(device LogicalDevice, pool CommandPool) (CommandBuffer, error)
	BeginCommandBuffer(buffer CommandBuffer) error
	EndCommandBuffer(buffer CommandBuffer) error

	CreateFence(device LogicalDevice, signaled bool) (Fence, error)
	DestroyFence(device LogicalDevice, fence Fence)
	// WaitForFence blocks without timeout until the fence is signaled.
	WaitForFence(device LogicalDevice, fence Fence) error
	ResetFence(device LogicalDevice, fence Fence) error
	CreateSemaphore(device LogicalDevice) (Semaphore, error)
	DestroySemaphore(device LogicalDevice, semaphore Semaphore)

	CreateQueryPool(device LogicalDevice, queryCount uint32) (QueryPool, error)
	DestroyQueryPool(device LogicalDevice, pool QueryPool)
	QueryResult(device LogicalDevice, pool QueryPool, index uint32) (value uint64, available bool, err error)

	CmdBeginRenderPass(buffer CommandBuffer, begin RenderPassBegin)
	CmdEndRenderPass(buffer CommandBuffer)
	CmdBindPipeline(buffer CommandBuffer, pipeline Pipeline)
	CmdBindVertexBuffers(buffer CommandBuffer, firstBinding uint32, buffers []Buffer, offsets []uint64)
	CmdBindIndexBuffer(buffer CommandBuffer, index Buffer, offset uint64, elementSize common.IndexElementSize)
	CmdBindDescriptorSet(buffer CommandBuffer, layout PipelineLayout, set DescriptorSet)
	CmdSetViewport(buffer CommandBuffer, viewport common.Viewport)
	CmdSetScissor(buffer CommandBuffer, scissor common.Rect)
	CmdSetBlendConstants(buffer CommandBuffer, blendFactor common.Color)
	CmdSetStencilReference(buffer CommandBuffer, reference uint32)
	CmdClearAttachments(buffer CommandBuffer, info ClearAttachmentsInfo)
	CmdDraw(buffer CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32)
	CmdDrawIndexed(buffer CommandBuffer, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32)
	CmdCopyBuffer(buffer CommandBuffer, src Buffer, srcOffset uint64, dst Buffer, dstOffset, size uint64)
	CmdCopyBufferToImage(buffer CommandBuffer, src Buffer, dst Image, layout ImageLayout, region BufferImageCopy)
	CmdCopyImageToBuffer(buffer CommandBuffer, src Image, layout ImageLayout, dst Buffer, region BufferImageCopy)
	// CmdTransitionImageLayout records the pipeline barrier moving the image
	// subresource range between layouts, deriving stage and access masks from the
	// layout pair.
	CmdTransitionImageLayout(buffer CommandBuffer, image Image, aspect ImageAspectFlags, baseMip, mipCount, baseLayer, layerCount uint32, oldLayout, newLayout ImageLayout)
	// CmdResolveImage resolves a multisampled color image into its single-sample
	// destination. Source must be in transfer-src and destination in transfer-dst
	// layout.
	CmdResolveImage(buffer CommandBuffer, src, dst Image, width, height uint32)
	CmdBeginQuery(buffer CommandBuffer, pool QueryPool, index uint32)
	CmdEndQuery(buffer CommandBuffer, pool QueryPool, index uint32)
	CmdResetQueryPool(buffer CommandBuffer, pool QueryPool, index, count uint32)
}

// SurfaceProviderFunc creates a presentation surface for a native instance handle
// and returns the raw surface handle. It decouples the Backend from the windowing
// layer's concrete type; the Backend supplies its own native instance value.
type SurfaceProviderFunc func(nativeInstance any) (uintptr, error)
