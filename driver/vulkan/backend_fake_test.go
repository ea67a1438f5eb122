package vulkan

import (
	"fmt"
	"unsafe"

	"github.com/RotatingArtDev/FNA3D/common"
	"github.com/RotatingArtDev/FNA3D/driver"
)

// fakeBackend is a controllable in-memory Backend. It issues handles from a
// counter, tracks which are live, records every call in order, and can be
// scripted to fail specific operations or return staleness from acquire and
// present. No native API is touched, so the full driver protocol runs in plain
// unit tests.
type fakeBackend struct {
	next  uint64
	calls []string

	// live maps every issued destroyable handle to its kind; destroy removes it.
	live map[uint64]string

	// failures forces the named create operation to return the given error.
	failures map[string]error

	// acquireResults and presentResults are consumed one per call; nil means
	// success. An exhausted queue also means success.
	acquireResults []error
	presentResults []error

	caps        SurfaceCapabilities
	formats     []SurfaceFormatEntry
	modes       []PresentMode
	families    []QueueFamily
	memoryTypes []MemoryType
	deviceType  DeviceType
	imageCount  int

	// presentSupport scripts per-family surface support; nil means every
	// family presents.
	presentSupport []bool

	swapchainInfos []SwapchainInfo
	memorySize     map[DeviceMemory]uint64
	memoryMapped   map[DeviceMemory][]byte
	bufferSize     map[Buffer]uint64

	// fenceSignaled models fence state: a wait on an unsignaled fence would
	// block forever on real hardware, so the fake returns an error instead.
	fenceSignaled map[Fence]bool
}

var _ Backend = &fakeBackend{}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		live:     make(map[uint64]string),
		failures: make(map[string]error),
		caps: SurfaceCapabilities{
			MinImageCount:  2,
			CurrentExtent:  Extent2D{Width: matchAnyExtent, Height: matchAnyExtent},
			MinImageExtent: Extent2D{Width: 1, Height: 1},
			MaxImageExtent: Extent2D{Width: 4096, Height: 4096},
		},
		formats:     []SurfaceFormatEntry{{Format: FormatB8G8R8A8Unorm, ColorSpace: ColorSpaceSrgbNonlinear}},
		modes:       []PresentMode{PresentModeFifo},
		families:    []QueueFamily{{Flags: QueueGraphics, Count: 1}},
		memoryTypes: []MemoryType{{PropertyFlags: MemoryDeviceLocal}, {PropertyFlags: MemoryHostVisible | MemoryHostCoherent}},
		deviceType:  DeviceTypeDiscreteGPU,
		imageCount:  3,

		memorySize:    make(map[DeviceMemory]uint64),
		memoryMapped:  make(map[DeviceMemory][]byte),
		bufferSize:    make(map[Buffer]uint64),
		fenceSignaled: make(map[Fence]bool),
	}
}

func (f *fakeBackend) record(op string) {
	f.calls = append(f.calls, op)
}

// callIndex returns the position of the first call equal to op at or after from,
// or -1.
func (f *fakeBackend) callIndex(op string, from int) int {
	for i := from; i < len(f.calls); i++ {
		if f.calls[i] == op {
			return i
		}
	}
	return -1
}

func (f *fakeBackend) callCount(op string) int {
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (f *fakeBackend) issue(kind string) uint64 {
	f.next++
	f.live[f.next] = kind
	return f.next
}

func (f *fakeBackend) retire(kind string, id uint64) {
	if f.live[id] != kind {
		panic(fmt.Sprintf("destroy of %s handle %d, which is %q", kind, id, f.live[id]))
	}
	delete(f.live, id)
}

func (f *fakeBackend) create(op, kind string) (uint64, error) {
	f.record(op)
	if err := f.failures[op]; err != nil {
		return 0, err
	}
	return f.issue(kind), nil
}

// liveCount returns the number of live handles of the given kind, or of every
// kind when kind is empty.
func (f *fakeBackend) liveCount(kind string) int {
	n := 0
	for _, k := range f.live {
		if kind == "" || k == kind {
			n++
		}
	}
	return n
}

func (f *fakeBackend) CreateInstance(info InstanceInfo) (Instance, error) {
	id, err := f.create("CreateInstance", "instance")
	return Instance(id), err
}

func (f *fakeBackend) DestroyInstance(instance Instance) {
	f.record("DestroyInstance")
	f.retire("instance", uint64(instance))
}

func (f *fakeBackend) CreateSurface(instance Instance, create SurfaceProviderFunc) (Surface, error) {
	id, err := f.create("CreateSurface", "surface")
	return Surface(id), err
}

func (f *fakeBackend) DestroySurface(instance Instance, surface Surface) {
	f.record("DestroySurface")
	f.retire("surface", uint64(surface))
}

func (f *fakeBackend) EnumeratePhysicalDevices(instance Instance) ([]PhysicalDevice, error) {
	f.record("EnumeratePhysicalDevices")
	f.next++
	return []PhysicalDevice{PhysicalDevice(f.next)}, nil
}

func (f *fakeBackend) PhysicalDeviceProperties(device PhysicalDevice) PhysicalDeviceProperties {
	return PhysicalDeviceProperties{Name: "Fake GPU", DeviceType: f.deviceType}
}

func (f *fakeBackend) PhysicalDeviceFeatures(device PhysicalDevice) PhysicalDeviceFeatures {
	return PhysicalDeviceFeatures{
		SamplerAnisotropy:     true,
		FillModeNonSolid:      true,
		DepthClamp:            true,
		OcclusionQueryPrecise: true,
		MaxSamplerAnisotropy:  16,
		MaxMultiSampleCount:   8,
	}
}

func (f *fakeBackend) PhysicalDeviceMemoryProperties(device PhysicalDevice) MemoryProperties {
	return MemoryProperties{Types: f.memoryTypes}
}

func (f *fakeBackend) QueueFamilyProperties(device PhysicalDevice) []QueueFamily {
	return f.families
}

func (f *fakeBackend) SurfaceSupport(device PhysicalDevice, familyIndex uint32, surface Surface) (bool, error) {
	f.record("SurfaceSupport")
	if f.presentSupport == nil {
		return true, nil
	}
	if int(familyIndex) >= len(f.presentSupport) {
		return false, nil
	}
	return f.presentSupport[familyIndex], nil
}

func (f *fakeBackend) SurfaceCapabilities(device PhysicalDevice, surface Surface) (SurfaceCapabilities, error) {
	f.record("SurfaceCapabilities")
	return f.caps, nil
}

func (f *fakeBackend) SurfaceFormats(device PhysicalDevice, surface Surface) ([]SurfaceFormatEntry, error) {
	return f.formats, nil
}

func (f *fakeBackend) SurfacePresentModes(device PhysicalDevice, surface Surface) ([]PresentMode, error) {
	return f.modes, nil
}

func (f *fakeBackend) CreateLogicalDevice(device PhysicalDevice, info DeviceInfo) (LogicalDevice, error) {
	id, err := f.create("CreateLogicalDevice", "device")
	return LogicalDevice(id), err
}

func (f *fakeBackend) DestroyLogicalDevice(device LogicalDevice) {
	f.record("DestroyLogicalDevice")
	f.retire("device", uint64(device))
}

func (f *fakeBackend) DeviceQueue(device LogicalDevice, familyIndex, queueIndex uint32) Queue {
	f.next++
	return Queue(f.next)
}

func (f *fakeBackend) DeviceWaitIdle(device LogicalDevice) error {
	f.record("DeviceWaitIdle")
	return nil
}

func (f *fakeBackend) CreateSwapchain(device LogicalDevice, info SwapchainInfo) (Swapchain, error) {
	f.swapchainInfos = append(f.swapchainInfos, info)
	id, err := f.create("CreateSwapchain", "swapchain")
	return Swapchain(id), err
}

func (f *fakeBackend) DestroySwapchain(device LogicalDevice, swapchain Swapchain) {
	f.record("DestroySwapchain")
	f.retire("swapchain", uint64(swapchain))
}

func (f *fakeBackend) SwapchainImages(device LogicalDevice, swapchain Swapchain) ([]Image, error) {
	f.record("SwapchainImages")
	images := make([]Image, f.imageCount)
	for i := range images {
		f.next++
		images[i] = Image(f.next)
	}
	return images, nil
}

func (f *fakeBackend) AcquireNextImage(device LogicalDevice, swapchain Swapchain, signal Semaphore) (uint32, error) {
	f.record("AcquireNextImage")
	if len(f.acquireResults) > 0 {
		err := f.acquireResults[0]
		f.acquireResults = f.acquireResults[1:]
		return 0, err
	}
	return 0, nil
}

func (f *fakeBackend) QueuePresent(queue Queue, info PresentInfo) error {
	f.record("QueuePresent")
	if len(f.presentResults) > 0 {
		err := f.presentResults[0]
		f.presentResults = f.presentResults[1:]
		return err
	}
	return nil
}

func (f *fakeBackend) QueueSubmit(queue Queue, info SubmitInfo) error {
	f.record("QueueSubmit")
	if info.Fence != 0 {
		f.fenceSignaled[info.Fence] = true
	}
	return nil
}

func (f *fakeBackend) AllocateMemory(device LogicalDevice, size uint64, memoryTypeIndex uint32) (DeviceMemory, error) {
	id, err := f.create("AllocateMemory", "memory")
	if err == nil {
		f.memorySize[DeviceMemory(id)] = size
	}
	return DeviceMemory(id), err
}

func (f *fakeBackend) FreeMemory(device LogicalDevice, memory DeviceMemory) {
	f.record("FreeMemory")
	f.retire("memory", uint64(memory))
	delete(f.memorySize, memory)
	delete(f.memoryMapped, memory)
}

func (f *fakeBackend) MapMemory(device LogicalDevice, memory DeviceMemory, size uint64) ([]byte, error) {
	f.record("MapMemory")
	if mapped, ok := f.memoryMapped[memory]; ok {
		return mapped, nil
	}
	mapped := make([]byte, size)
	f.memoryMapped[memory] = mapped
	return mapped, nil
}

func (f *fakeBackend) CreateBuffer(device LogicalDevice, info BufferInfo) (Buffer, error) {
	id, err := f.create("CreateBuffer", "buffer")
	if err == nil {
		f.bufferSize[Buffer(id)] = info.Size
	}
	return Buffer(id), err
}

func (f *fakeBackend) DestroyBuffer(device LogicalDevice, buffer Buffer) {
	f.record("DestroyBuffer")
	f.retire("buffer", uint64(buffer))
	delete(f.bufferSize, buffer)
}

func (f *fakeBackend) BufferMemoryRequirements(device LogicalDevice, buffer Buffer) MemoryRequirements {
	return MemoryRequirements{
		Size:           f.bufferSize[buffer],
		Alignment:      256,
		MemoryTypeBits: (1 << uint32(len(f.memoryTypes))) - 1,
	}
}

func (f *fakeBackend) BindBufferMemory(device LogicalDevice, buffer Buffer, memory DeviceMemory) error {
	f.record("BindBufferMemory")
	return nil
}

func (f *fakeBackend) CreateImage(device LogicalDevice, info ImageInfo) (Image, error) {
	id, err := f.create("CreateImage", "image")
	return Image(id), err
}

func (f *fakeBackend) DestroyImage(device LogicalDevice, image Image) {
	f.record("DestroyImage")
	f.retire("image", uint64(image))
}

func (f *fakeBackend) ImageMemoryRequirements(device LogicalDevice, image Image) MemoryRequirements {
	return MemoryRequirements{
		Size:           1 << 20,
		Alignment:      256,
		MemoryTypeBits: (1 << uint32(len(f.memoryTypes))) - 1,
	}
}

func (f *fakeBackend) BindImageMemory(device LogicalDevice, image Image, memory DeviceMemory) error {
	f.record("BindImageMemory")
	return nil
}

func (f *fakeBackend) CreateImageView(device LogicalDevice, info ImageViewInfo) (ImageView, error) {
	id, err := f.create("CreateImageView", "view")
	return ImageView(id), err
}

func (f *fakeBackend) DestroyImageView(device LogicalDevice, view ImageView) {
	f.record("DestroyImageView")
	f.retire("view", uint64(view))
}

func (f *fakeBackend) CreateSampler(device LogicalDevice, info SamplerInfo) (Sampler, error) {
	id, err := f.create("CreateSampler", "sampler")
	return Sampler(id), err
}

func (f *fakeBackend) DestroySampler(device LogicalDevice, sampler Sampler) {
	f.record("DestroySampler")
	f.retire("sampler", uint64(sampler))
}

func (f *fakeBackend) CreateShaderModule(device LogicalDevice, code []uint32) (ShaderModule, error) {
	id, err := f.create("CreateShaderModule", "shader")
	return ShaderModule(id), err
}

func (f *fakeBackend) DestroyShaderModule(device LogicalDevice, module ShaderModule) {
	f.record("DestroyShaderModule")
	f.retire("shader", uint64(module))
}

func (f *fakeBackend) CreateRenderPass(device LogicalDevice, info RenderPassInfo) (RenderPass, error) {
	id, err := f.create("CreateRenderPass", "renderpass")
	return RenderPass(id), err
}

func (f *fakeBackend) DestroyRenderPass(device LogicalDevice, pass RenderPass) {
	f.record("DestroyRenderPass")
	f.retire("renderpass", uint64(pass))
}

func (f *fakeBackend) CreateFramebuffer(device LogicalDevice, info FramebufferInfo) (Framebuffer, error) {
	id, err := f.create("CreateFramebuffer", "framebuffer")
	return Framebuffer(id), err
}

func (f *fakeBackend) DestroyFramebuffer(device LogicalDevice, framebuffer Framebuffer) {
	f.record("DestroyFramebuffer")
	f.retire("framebuffer", uint64(framebuffer))
}

func (f *fakeBackend) CreatePipelineCache(device LogicalDevice) (PipelineCache, error) {
	id, err := f.create("CreatePipelineCache", "pipelinecache")
	return PipelineCache(id), err
}

func (f *fakeBackend) DestroyPipelineCache(device LogicalDevice, cache PipelineCache) {
	f.record("DestroyPipelineCache")
	f.retire("pipelinecache", uint64(cache))
}

func (f *fakeBackend) CreatePipelineLayout(device LogicalDevice, layouts []DescriptorSetLayout) (PipelineLayout, error) {
	id, err := f.create("CreatePipelineLayout", "pipelinelayout")
	return PipelineLayout(id), err
}

func (f *fakeBackend) DestroyPipelineLayout(device LogicalDevice, layout PipelineLayout) {
	f.record("DestroyPipelineLayout")
	f.retire("pipelinelayout", uint64(layout))
}

func (f *fakeBackend) CreateGraphicsPipeline(device LogicalDevice, cache PipelineCache, info GraphicsPipelineInfo) (Pipeline, error) {
	id, err := f.create("CreateGraphicsPipeline", "pipeline")
	return Pipeline(id), err
}

func (f *fakeBackend) DestroyPipeline(device LogicalDevice, pipeline Pipeline) {
	f.record("DestroyPipeline")
	f.retire("pipeline", uint64(pipeline))
}

func (f *fakeBackend) CreateDescriptorSetLayout(device LogicalDevice, info DescriptorSetLayoutInfo) (DescriptorSetLayout, error) {
	id, err := f.create("CreateDescriptorSetLayout", "setlayout")
	return DescriptorSetLayout(id), err
}

func (f *fakeBackend) DestroyDescriptorSetLayout(device LogicalDevice, layout DescriptorSetLayout) {
	f.record("DestroyDescriptorSetLayout")
	f.retire("setlayout", uint64(layout))
}

func (f *fakeBackend) CreateDescriptorPool(device LogicalDevice, info DescriptorPoolInfo) (DescriptorPool, error) {
	id, err := f.create("CreateDescriptorPool", "descriptorpool")
	return DescriptorPool(id), err
}

func (f *fakeBackend) DestroyDescriptorPool(device LogicalDevice, pool DescriptorPool) {
	f.record("DestroyDescriptorPool")
	f.retire("descriptorpool", uint64(pool))
}

func (f *fakeBackend) ResetDescriptorPool(device LogicalDevice, pool DescriptorPool) error {
	f.record("ResetDescriptorPool")
	return nil
}

func (f *fakeBackend) AllocateDescriptorSet(device LogicalDevice, pool DescriptorPool, layout DescriptorSetLayout) (DescriptorSet, error) {
	f.record("AllocateDescriptorSet")
	f.next++
	return DescriptorSet(f.next), nil
}

func (f *fakeBackend) UpdateDescriptorSet(device LogicalDevice, set DescriptorSet, writes []DescriptorWrite) {
	f.record("UpdateDescriptorSet")
}

func (f *fakeBackend) CreateCommandPool(device LogicalDevice, queueFamilyIndex uint32) (CommandPool, error) {
	id, err := f.create("CreateCommandPool", "commandpool")
	return CommandPool(id), err
}

func (f *fakeBackend) DestroyCommandPool(device LogicalDevice, pool CommandPool) {
	f.record("DestroyCommandPool")
	f.retire("commandpool", uint64(pool))
}

func (f *fakeBackend) ResetCommandPool(device LogicalDevice, pool CommandPool) error {
	f.record("ResetCommandPool")
	return nil
}

func (f *fakeBackend) AllocateCommandBuffer(device LogicalDevice, pool CommandPool) (CommandBuffer, error) {
	f.record("AllocateCommandBuffer")
	f.next++
	return CommandBuffer(f.next), nil
}

func (f *fakeBackend) BeginCommandBuffer(buffer CommandBuffer) error {
	f.record("BeginCommandBuffer")
	return nil
}

func (f *fakeBackend) EndCommandBuffer(buffer CommandBuffer) error {
	f.record("EndCommandBuffer")
	return nil
}

func (f *fakeBackend) CreateFence(device LogicalDevice, signaled bool) (Fence, error) {
	id, err := f.create("CreateFence", "fence")
	if err == nil {
		f.fenceSignaled[Fence(id)] = signaled
	}
	return Fence(id), err
}

func (f *fakeBackend) DestroyFence(device LogicalDevice, fence Fence) {
	f.record("DestroyFence")
	f.retire("fence", uint64(fence))
	delete(f.fenceSignaled, fence)
}

func (f *fakeBackend) WaitForFence(device LogicalDevice, fence Fence) error {
	f.record("WaitForFence")
	if !f.fenceSignaled[fence] {
		return fmt.Errorf("wait on unsignaled fence %d would block forever", fence)
	}
	return nil
}

func (f *fakeBackend) ResetFence(device LogicalDevice, fence Fence) error {
	f.record("ResetFence")
	f.fenceSignaled[fence] = false
	return nil
}

func (f *fakeBackend) CreateSemaphore(device LogicalDevice) (Semaphore, error) {
	id, err := f.create("CreateSemaphore", "semaphore")
	return Semaphore(id), err
}

func (f *fakeBackend) DestroySemaphore(device LogicalDevice, semaphore Semaphore) {
	f.record("DestroySemaphore")
	f.retire("semaphore", uint64(semaphore))
}

func (f *fakeBackend) CreateQueryPool(device LogicalDevice, queryCount uint32) (QueryPool, error) {
	id, err := f.create("CreateQueryPool", "querypool")
	return QueryPool(id), err
}

func (f *fakeBackend) DestroyQueryPool(device LogicalDevice, pool QueryPool) {
	f.record("DestroyQueryPool")
	f.retire("querypool", uint64(pool))
}

func (f *fakeBackend) QueryResult(device LogicalDevice, pool QueryPool, index uint32) (uint64, bool, error) {
	f.record("QueryResult")
	return 42, true, nil
}

func (f *fakeBackend) CmdBeginRenderPass(buffer CommandBuffer, begin RenderPassBegin) {
	f.record("CmdBeginRenderPass")
}

func (f *fakeBackend) CmdEndRenderPass(buffer CommandBuffer) {
	f.record("CmdEndRenderPass")
}

func (f *fakeBackend) CmdBindPipeline(buffer CommandBuffer, pipeline Pipeline) {
	f.record("CmdBindPipeline")
}

func (f *fakeBackend) CmdBindVertexBuffers(buffer CommandBuffer, firstBinding uint32, buffers []Buffer, offsets []uint64) {
	f.record("CmdBindVertexBuffers")
}

func (f *fakeBackend) CmdBindIndexBuffer(buffer CommandBuffer, index Buffer, offset uint64, elementSize common.IndexElementSize) {
	f.record("CmdBindIndexBuffer")
}

func (f *fakeBackend) CmdBindDescriptorSet(buffer CommandBuffer, layout PipelineLayout, set DescriptorSet) {
	f.record("CmdBindDescriptorSet")
}

func (f *fakeBackend) CmdSetViewport(buffer CommandBuffer, viewport common.Viewport) {
	f.record("CmdSetViewport")
}

func (f *fakeBackend) CmdSetScissor(buffer CommandBuffer, scissor common.Rect) {
	f.record("CmdSetScissor")
}

func (f *fakeBackend) CmdSetBlendConstants(buffer CommandBuffer, blendFactor common.Color) {
	f.record("CmdSetBlendConstants")
}

func (f *fakeBackend) CmdSetStencilReference(buffer CommandBuffer, reference uint32) {
	f.record("CmdSetStencilReference")
}

func (f *fakeBackend) CmdClearAttachments(buffer CommandBuffer, info ClearAttachmentsInfo) {
	f.record("CmdClearAttachments")
}

func (f *fakeBackend) CmdDraw(buffer CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	f.record("CmdDraw")
}

func (f *fakeBackend) CmdDrawIndexed(buffer CommandBuffer, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	f.record("CmdDrawIndexed")
}

func (f *fakeBackend) CmdCopyBuffer(buffer CommandBuffer, src Buffer, srcOffset uint64, dst Buffer, dstOffset, size uint64) {
	f.record("CmdCopyBuffer")
}

func (f *fakeBackend) CmdCopyBufferToImage(buffer CommandBuffer, src Buffer, dst Image, layout ImageLayout, region BufferImageCopy) {
	f.record("CmdCopyBufferToImage")
}

func (f *fakeBackend) CmdCopyImageToBuffer(buffer CommandBuffer, src Image, layout ImageLayout, dst Buffer, region BufferImageCopy) {
	f.record("CmdCopyImageToBuffer")
}

func (f *fakeBackend) CmdTransitionImageLayout(buffer CommandBuffer, image Image, aspect ImageAspectFlags, baseMip, mipCount, baseLayer, layerCount uint32, oldLayout, newLayout ImageLayout) {
	f.record("CmdTransitionImageLayout")
}

func (f *fakeBackend) CmdResolveImage(buffer CommandBuffer, src, dst Image, width, height uint32) {
	f.record("CmdResolveImage")
}

func (f *fakeBackend) CmdBeginQuery(buffer CommandBuffer, pool QueryPool, index uint32) {
	f.record("CmdBeginQuery")
}

func (f *fakeBackend) CmdEndQuery(buffer CommandBuffer, pool QueryPool, index uint32) {
	f.record("CmdEndQuery")
}

func (f *fakeBackend) CmdResetQueryPool(buffer CommandBuffer, pool QueryPool, index, count uint32) {
	f.record("CmdResetQueryPool")
}

// stubProvider is a windowless driver.SurfaceProvider for bootstrap tests.
type stubProvider struct {
	width  int32
	height int32
}

func (p *stubProvider) InstanceProcAddr() unsafe.Pointer   { return nil }
func (p *stubProvider) InstanceExtensions() []string       { return []string{"VK_KHR_surface"} }
func (p *stubProvider) CreateSurface(any) (uintptr, error) { return 1, nil }
func (p *stubProvider) DrawableSize() (int32, int32)       { return p.width, p.height }

var _ driver.SurfaceProvider = &stubProvider{}

// testParams returns presentation parameters targeting the stub provider.
func testParams() driver.PresentationParameters {
	return driver.PresentationParameters{
		BackBufferWidth:    800,
		BackBufferHeight:   600,
		BackBufferFormat:   common.SurfaceFormatColor,
		DeviceWindowHandle: &stubProvider{width: 800, height: 600},
		DepthStencilFormat: common.DepthFormatD24S8,
		PresentInterval:    common.PresentIntervalDefault,
	}
}

// newTestDevice bootstraps a renderer over a fresh fake backend.
func newTestDevice(backend *fakeBackend) (*renderer, error) {
	device, err := createDevice(backend, testParams(), false)
	if err != nil {
		return nil, err
	}
	return device.(*renderer), nil
}
