package vulkan

import (
	"github.com/RotatingArtDev/FNA3D/common"
)

// Backend object handles. Every handle is an opaque 64-bit reference issued by the
// Backend in use; the zero value is the null handle and means "not yet created" or
// "already torn down". Handles from one Backend must never be passed to another.
type (
	Instance            uint64
	Surface             uint64
	PhysicalDevice      uint64
	LogicalDevice       uint64
	Queue               uint64
	Swapchain           uint64
	Image               uint64
	ImageView           uint64
	Framebuffer         uint64
	RenderPass          uint64
	Buffer              uint64
	DeviceMemory        uint64
	Sampler             uint64
	ShaderModule        uint64
	PipelineLayout      uint64
	Pipeline            uint64
	PipelineCache       uint64
	DescriptorSetLayout uint64
	DescriptorPool      uint64
	DescriptorSet       uint64
	CommandPool         uint64
	CommandBuffer       uint64
	Fence               uint64
	Semaphore           uint64
	QueryPool           uint64
)

// Format enumerates the native image/attachment formats the driver traffics in.
type Format int32

const (
	FormatUndefined Format = iota
	FormatR8G8B8A8Unorm
	FormatB8G8R8A8Unorm
	FormatB8G8R8A8Srgb
	FormatR8G8B8A8Srgb
	FormatB5G6R5Unorm
	FormatB5G5R5A1Unorm
	FormatB4G4R4A4Unorm
	FormatBC1RGBAUnorm
	FormatBC2Unorm
	FormatBC3Unorm
	FormatBC7Unorm
	FormatR8G8Snorm
	FormatR8G8B8A8Snorm
	FormatA2R10G10B10Unorm
	FormatR16G16Unorm
	FormatR16G16B16A16Unorm
	FormatR8Unorm
	FormatR32Sfloat
	FormatR32G32Sfloat
	FormatR32G32B32A32Sfloat
	FormatR16Sfloat
	FormatR16G16Sfloat
	FormatR16G16B16A16Sfloat
	FormatD16Unorm
	FormatD24UnormS8Uint
	FormatD32Sfloat
)

// ColorSpace enumerates surface color spaces.
type ColorSpace int32

const (
	ColorSpaceSrgbNonlinear ColorSpace = iota
	ColorSpaceOther
)

// PresentMode enumerates swapchain presentation modes.
type PresentMode int32

const (
	PresentModeImmediate PresentMode = iota
	PresentModeMailbox
	PresentModeFifo
	PresentModeFifoRelaxed
)

// DeviceType classifies an enumerated physical device.
type DeviceType int32

const (
	DeviceTypeOther DeviceType = iota
	DeviceTypeIntegratedGPU
	DeviceTypeDiscreteGPU
	DeviceTypeVirtualGPU
	DeviceTypeCPU
)

// QueueFlags is a bit mask of queue family capabilities.
type QueueFlags uint32

const (
	QueueGraphics QueueFlags = 1 << iota
	QueueCompute
	QueueTransfer
)

// MemoryPropertyFlags is a bit mask of memory type properties.
type MemoryPropertyFlags uint32

const (
	MemoryDeviceLocal MemoryPropertyFlags = 1 << iota
	MemoryHostVisible
	MemoryHostCoherent
	MemoryHostCached
)

// BufferUsageFlags is a bit mask of native buffer usages.
type BufferUsageFlags uint32

const (
	BufferUsageTransferSrc BufferUsageFlags = 1 << iota
	BufferUsageTransferDst
	BufferUsageUniform
	BufferUsageIndex
	BufferUsageVertex
)

// ImageUsageFlags is a bit mask of native image usages.
type ImageUsageFlags uint32

const (
	ImageUsageTransferSrc ImageUsageFlags = 1 << iota
	ImageUsageTransferDst
	ImageUsageSampled
	ImageUsageColorAttachment
	ImageUsageDepthStencilAttachment
)

// ImageAspectFlags selects the plane of an image a view or barrier addresses.
type ImageAspectFlags uint32

const (
	AspectColor ImageAspectFlags = 1 << iota
	AspectDepth
	AspectStencil
)

// ImageLayout enumerates the native image layouts the driver transitions through.
type ImageLayout int32

const (
	LayoutUndefined ImageLayout = iota
	LayoutGeneral
	LayoutColorAttachment
	LayoutDepthStencilAttachment
	LayoutShaderReadOnly
	LayoutTransferSrc
	LayoutTransferDst
	LayoutPresentSrc
)

// ImageViewType enumerates the dimensionality of an image view.
type ImageViewType int32

const (
	ImageViewType2D ImageViewType = iota
	ImageViewType3D
	ImageViewTypeCube
)

// DescriptorType enumerates the descriptor kinds the driver binds.
type DescriptorType int32

const (
	DescriptorUniformBuffer DescriptorType = iota
	DescriptorCombinedImageSampler
)

// Extent2D is a native 2D extent in pixels.
type Extent2D struct {
	Width  uint32
	Height uint32
}

// Extent3D is a native 3D extent in pixels.
type Extent3D struct {
	Width  uint32
	Height uint32
	Depth  uint32
}

// PhysicalDeviceProperties is the cached description of an enumerated GPU.
type PhysicalDeviceProperties struct {
	Name       string
	DeviceType DeviceType
	APIVersion uint32
}

// PhysicalDeviceFeatures carries the optional device features the driver enables.
type PhysicalDeviceFeatures struct {
	SamplerAnisotropy bool
	FillModeNonSolid  bool
	DepthClamp        bool
	OcclusionQueryPrecise bool
	MaxSamplerAnisotropy  float32
	MaxMultiSampleCount   int32
}

// QueueFamily describes one queue family of a physical device.
type QueueFamily struct {
	Flags QueueFlags
	Count uint32
}

// MemoryType is one (property-flags, heap) pairing of a physical device.
type MemoryType struct {
	PropertyFlags MemoryPropertyFlags
	HeapIndex     uint32
}

// MemoryProperties is the physical device's memory type table.
type MemoryProperties struct {
	Types []MemoryType
}

// MemoryRequirements reports the backing-allocation constraints of a buffer or image.
type MemoryRequirements struct {
	Size           uint64
	Alignment      uint64
	MemoryTypeBits uint32
}

// SurfaceCapabilities is the fresh per-call surface capability query result.
type SurfaceCapabilities struct {
	MinImageCount    uint32
	MaxImageCount    uint32
	CurrentExtent    Extent2D
	MinImageExtent   Extent2D
	MaxImageExtent   Extent2D
	CurrentTransform uint32
}

// SurfaceFormatEntry is one supported (format, color space) pair of a surface.
type SurfaceFormatEntry struct {
	Format     Format
	ColorSpace ColorSpace
}

// InstanceInfo configures native instance creation.
type InstanceInfo struct {
	ApplicationName    string
	ApplicationVersion uint32
	EngineName         string
	EngineVersion      uint32
	APIVersion         uint32
	Extensions         []string
	Layers             []string
}

// DeviceQueueInfo requests one queue from one family at logical device creation.
type DeviceQueueInfo struct {
	FamilyIndex uint32
	Priority    float32
}

// DeviceInfo configures logical device creation.
type DeviceInfo struct {
	Queues     []DeviceQueueInfo
	Extensions []string
	Features   PhysicalDeviceFeatures
}

// SwapchainInfo configures swapchain creation. OldSwapchain, when non-zero, chains
// the swapchain being replaced so the native driver can hand off its resources.
type SwapchainInfo struct {
	Surface       Surface
	MinImageCount uint32
	Format        Format
	ColorSpace    ColorSpace
	Extent        Extent2D
	Usage         ImageUsageFlags
	PreTransform  uint32
	PresentMode   PresentMode
	OldSwapchain  Swapchain
}

// BufferInfo configures native buffer creation.
type BufferInfo struct {
	Size  uint64
	Usage BufferUsageFlags
}

// ImageInfo configures native image creation.
type ImageInfo struct {
	ViewType    ImageViewType
	Format      Format
	Extent      Extent3D
	MipLevels   uint32
	ArrayLayers uint32
	Samples     int32
	Usage       ImageUsageFlags
}

// ImageViewInfo configures image view creation over an existing image.
type ImageViewInfo struct {
	Image      Image
	ViewType   ImageViewType
	Format     Format
	Aspect     ImageAspectFlags
	BaseMip    uint32
	MipCount   uint32
	BaseLayer  uint32
	LayerCount uint32
}

// RenderPassInfo configures render pass creation. A zero DepthFormat omits the
// depth attachment. PresentAfter selects a final layout suitable for presentation
// instead of shader sampling.
type RenderPassInfo struct {
	ColorFormat  Format
	DepthFormat  Format
	SampleCount  int32
	LoadClear    bool
	PresentAfter bool
}

// FramebufferInfo configures framebuffer creation against a compatible render pass.
type FramebufferInfo struct {
	RenderPass  RenderPass
	Attachments []ImageView
	Extent      Extent2D
}

// RenderPassBegin configures opening a render pass instance in a command buffer.
type RenderPassBegin struct {
	RenderPass   RenderPass
	Framebuffer  Framebuffer
	Extent       Extent2D
	ClearColor   common.Vec4
	ClearDepth   float32
	ClearStencil uint32
}

// SamplerInfo configures sampler creation from abstract sampler state.
type SamplerInfo struct {
	State         common.SamplerState
	MaxAnisotropy float32
	MaxLod        float32
}

// VertexBindingInfo describes one vertex buffer binding slot of a pipeline.
type VertexBindingInfo struct {
	Binding     uint32
	Stride      uint32
	PerInstance bool
}

// VertexAttributeInfo describes one vertex attribute of a pipeline.
type VertexAttributeInfo struct {
	Location uint32
	Binding  uint32
	Format   common.VertexElementFormat
	Offset   uint32
}

// GraphicsPipelineInfo configures graphics pipeline creation. Viewport, scissor,
// blend constants and stencil reference are always dynamic state.
type GraphicsPipelineInfo struct {
	VertexShader     ShaderModule
	FragmentShader   ShaderModule
	VertexBindings   []VertexBindingInfo
	VertexAttributes []VertexAttributeInfo
	Topology         common.PrimitiveType
	Blend            common.BlendState
	DepthStencil     common.DepthStencilState
	Rasterizer       common.RasterizerState
	SampleCount      int32
	MultiSampleMask  int32
	Layout           PipelineLayout
	RenderPass       RenderPass
}

// DescriptorSetLayoutInfo configures the driver's fixed two-stage binding layout.
type DescriptorSetLayoutInfo struct {
	VertexUniform        bool
	FragmentUniform      bool
	VertexSamplerCount   int32
	FragmentSamplerCount int32
}

// DescriptorPoolInfo configures per-frame descriptor pool creation.
type DescriptorPoolInfo struct {
	MaxSets          uint32
	UniformBuffers   uint32
	CombinedSamplers uint32
}

// DescriptorWrite is one descriptor update within a set.
type DescriptorWrite struct {
	Binding uint32
	Type    DescriptorType
	Buffer  Buffer
	Offset  uint64
	Range   uint64
	View    ImageView
	Sampler Sampler
}

// BufferImageCopy describes one buffer-to-image or image-to-buffer transfer region.
type BufferImageCopy struct {
	BufferOffset uint64
	Aspect       ImageAspectFlags
	MipLevel     uint32
	BaseLayer    uint32
	LayerCount   uint32
	Offset       [3]int32
	Extent       Extent3D
}

// SubmitInfo configures one queue submission of a single command buffer.
type SubmitInfo struct {
	CommandBuffer   CommandBuffer
	WaitSemaphore   Semaphore
	SignalSemaphore Semaphore
	Fence           Fence
}

// PresentInfo configures one presentation request.
type PresentInfo struct {
	Swapchain     Swapchain
	ImageIndex    uint32
	WaitSemaphore Semaphore
}

// ClearAttachmentsInfo configures an in-pass clear of the current attachments.
type ClearAttachmentsInfo struct {
	Options      common.ClearOptions
	Rect         common.Rect
	Color        common.Vec4
	Depth        float32
	Stencil      uint32
	HasDepth     bool
}
