// package vulkan implements the Vulkan backend driver: it translates the abstract
// rendering device surface in package driver into explicit native API calls,
// managing device bootstrap, swapchain presentation, the in-flight frame ring and
// GPU memory/resource lifetime. All native calls go through the Backend capability
// interface; newNativeBackend supplies the shipping implementation.
package vulkan

import (
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/RotatingArtDev/FNA3D/common"
	"github.com/RotatingArtDev/FNA3D/driver"
)

const (
	// maxFramesInFlight is the frame ring size: how many frames the CPU may
	// record ahead of GPU completion. Fixed at build time.
	maxFramesInFlight = 3

	maxTextureSamplers       = 16
	maxVertexTextureSamplers = 4
	maxVertexAttributes      = 16
	maxRenderTargets         = 8

	// stagingBufferSize is the per-frame staging arena for texture and static
	// buffer uploads.
	stagingBufferSize = 8 * 1024 * 1024

	// maxOcclusionQueries bounds the occlusion query pool created at bootstrap.
	maxOcclusionQueries = 256

	swapchainExtensionName = "VK_KHR_swapchain"
	validationLayerName    = "VK_LAYER_KHRONOS_validation"
)

// apiVersion returns a packed native API version number.
func apiVersion(major, minor, patch uint32) uint32 {
	return major<<22 | minor<<12 | patch
}

// textureSamplerSlot is the bound texture/sampler pair of one shader slot.
type textureSamplerSlot struct {
	texture driver.TextureHandle
	sampler Sampler
}

// renderer is the root aggregate of one created device. It exclusively owns the
// bootstrap chain handles, the swapchain, the frame ring, the resource registries
// and all derived caches, and is driven from a single thread.
type renderer struct {
	backend Backend
	logger  *slog.Logger

	debugMode bool
	params    driver.PresentationParameters

	instance         Instance
	surface          Surface
	physicalDevice   PhysicalDevice
	deviceProperties PhysicalDeviceProperties
	deviceFeatures   PhysicalDeviceFeatures
	memoryProperties MemoryProperties
	graphicsFamily   uint32
	presentFamily    uint32
	device           LogicalDevice
	graphicsQueue    Queue
	presentQueue     Queue
	pipelineCache    PipelineCache

	swapchain *swapchainData
	frames    [maxFramesInFlight]*frameData
	frameIndex int

	// currentCommandBuffer is the single system-wide recording target. It is
	// non-zero only between a successful beginFrame and the matching endFrame.
	currentCommandBuffer CommandBuffer
	frameActive          bool
	renderPassActive     bool

	// Attributes of the open render pass, valid while renderPassActive.
	activePass        RenderPass
	activeExtent      Extent2D
	activeSampleCount int32
	activeHasDepth    bool
	boundPipeline     Pipeline

	buffers       registry[*bufferData]
	textures      registry[*textureData]
	renderbuffers registry[*renderbufferData]
	effects       registry[*effectData]
	queries       registry[*queryData]

	samplerCache       map[samplerKey]Sampler
	pipelines          map[pipelineKey]Pipeline
	passCache          map[passKey]RenderPass
	targetFramebuffers map[targetKey]Framebuffer

	occlusionPool QueryPool
	occlusionFree []uint32

	// Bound render state. Changing any field that feeds pipeline creation marks
	// the pipeline dirty; the next draw flushes it.
	blendState        common.BlendState
	depthStencilState common.DepthStencilState
	rasterizerState   common.RasterizerState
	blendFactor       common.Color
	multiSampleMask   int32
	referenceStencil  int32
	viewport          common.Viewport
	scissor           common.Rect
	vertexBindings    []driver.VertexBufferBinding
	topology          common.PrimitiveType
	samplers          [maxTextureSamplers]textureSamplerSlot
	vertexSamplers    [maxVertexTextureSamplers]textureSamplerSlot
	currentEffect     driver.EffectHandle
	pipelineDirty     bool

	// Render target state. Empty targets means the backbuffer pass.
	renderTargets      []driver.RenderTargetBinding
	targetDepthFormat  common.DepthFormat
	targetDepthView    ImageView

	// Clear values deferred until the next render pass begins.
	pendingClear bool
	clearOptions common.ClearOptions
	clearColor   common.Vec4
	clearDepth   float32
	clearStencil uint32
}

var _ driver.Device = &renderer{}

// Driver is the backend descriptor the host registers to create Vulkan devices.
var Driver = driver.Driver{
	Name:         "Vulkan",
	CreateDevice: CreateDevice,
}

// CreateDevice performs the full device bootstrap against the real native API and
// returns the opaque device.
//
// Parameters:
//   - params: the presentation parameters, including the windowing-layer surface provider
//   - debugMode: when true, enables the validation layer and verbose driver logging
//
// Returns:
//   - driver.Device: the created device, nil on failure
//   - error: the first fatal bootstrap error, after full rollback of partial state
func CreateDevice(params driver.PresentationParameters, debugMode bool) (driver.Device, error) {
	if params.DeviceWindowHandle == nil {
		return nil, errors.New("presentation parameters carry no window surface provider")
	}
	backend, err := newNativeBackend(params.DeviceWindowHandle.InstanceProcAddr())
	if err != nil {
		return nil, errors.Wrap(err, "load native entry points")
	}
	return createDevice(backend, params, debugMode)
}

// createDevice runs the bootstrap chain over an arbitrary Backend. Each acquired
// sub-resource pushes its release onto an ordered rollback list that unwinds in
// reverse on any failure, so every exit path releases exactly what was created.
func createDevice(backend Backend, params driver.PresentationParameters, debugMode bool) (driver.Device, error) {
	logger := slog.Default().With("driver", "vulkan")

	r := &renderer{
		backend:      backend,
		logger:       logger,
		debugMode:    debugMode,
		params:       params,
		samplerCache: make(map[samplerKey]Sampler),
		pipelines:    make(map[pipelineKey]Pipeline),
		passCache:    make(map[passKey]RenderPass),
	}
	r.blendState = defaultBlendState
	r.depthStencilState = defaultDepthStencilState
	r.rasterizerState = defaultRasterizerState
	r.multiSampleMask = -1

	var rollback []func()
	fail := func(err error) (driver.Device, error) {
		for i := len(rollback) - 1; i >= 0; i-- {
			rollback[i]()
		}
		return nil, err
	}

	provider := params.DeviceWindowHandle

	extensions := provider.InstanceExtensions()
	if len(extensions) == 0 {
		return fail(errors.New("window system reported no surface extensions"))
	}
	var layers []string
	if debugMode {
		layers = []string{validationLayerName}
	}
	instance, err := backend.CreateInstance(InstanceInfo{
		ApplicationName:    "FNA3D",
		ApplicationVersion: apiVersion(1, 0, 0),
		EngineName:         "FNA3D",
		EngineVersion:      apiVersion(1, 0, 0),
		APIVersion:         apiVersion(1, 1, 0),
		Extensions:         extensions,
		Layers:             layers,
	})
	if err != nil {
		return fail(errors.Wrap(err, "create instance"))
	}
	r.instance = instance
	rollback = append(rollback, func() { backend.DestroyInstance(instance) })

	surface, err := backend.CreateSurface(instance, provider.CreateSurface)
	if err != nil {
		return fail(errors.Wrap(err, "create presentation surface"))
	}
	r.surface = surface
	rollback = append(rollback, func() { backend.DestroySurface(instance, surface) })

	if err := r.selectPhysicalDevice(); err != nil {
		return fail(err)
	}
	if err := r.findQueueFamilies(); err != nil {
		return fail(err)
	}

	device, err := r.createLogicalDevice()
	if err != nil {
		return fail(err)
	}
	r.device = device
	rollback = append(rollback, func() { backend.DestroyLogicalDevice(device) })

	r.graphicsQueue = backend.DeviceQueue(device, r.graphicsFamily, 0)
	r.presentQueue = backend.DeviceQueue(device, r.presentFamily, 0)

	// Registered before the call: createSwapchain caches its render pass in
	// passCache, which must drain even when a later swapchain step fails.
	rollback = append(rollback, func() { r.drainPassCache() })
	if err := r.createSwapchain(params.BackBufferWidth, params.BackBufferHeight); err != nil {
		return fail(errors.Wrap(err, "create swapchain"))
	}
	rollback = append(rollback, func() { r.destroySwapchain() })

	// Registered before the call: destroyFrameResources tolerates partially
	// built slots, so a mid-ring failure still unwinds cleanly.
	rollback = append(rollback, func() { r.destroyFrameResources() })
	if err := r.createFrameResources(); err != nil {
		return fail(errors.Wrap(err, "create frame resources"))
	}

	// The pipeline cache is a pure optimization: losing it costs pipeline
	// compilation time, never correctness, so failure here is non-fatal.
	cache, err := backend.CreatePipelineCache(device)
	if err != nil {
		r.logger.Warn("pipeline cache creation failed, continuing without", "error", err)
	} else {
		r.pipelineCache = cache
		rollback = append(rollback, func() { backend.DestroyPipelineCache(device, cache) })
	}

	pool, err := backend.CreateQueryPool(device, maxOcclusionQueries)
	if err != nil {
		return fail(errors.Wrap(err, "create occlusion query pool"))
	}
	r.occlusionPool = pool
	r.occlusionFree = make([]uint32, 0, maxOcclusionQueries)
	for i := int32(maxOcclusionQueries) - 1; i >= 0; i-- {
		r.occlusionFree = append(r.occlusionFree, uint32(i))
	}

	r.logger.Info("device created",
		"gpu", r.deviceProperties.Name,
		"graphicsFamily", r.graphicsFamily,
		"presentFamily", r.presentFamily,
		"swapchainImages", len(r.swapchain.images),
	)
	return r, nil
}

// selectPhysicalDevice enumerates GPUs and picks one: the first device
// unconditionally, overridden by the first discrete GPU if any exists. Properties,
// features and memory properties of the winner are cached for the device lifetime.
func (r *renderer) selectPhysicalDevice() error {
	devices, err := r.backend.EnumeratePhysicalDevices(r.instance)
	if err != nil {
		return errors.Wrap(err, "enumerate physical devices")
	}
	if len(devices) == 0 {
		return errors.New("no graphics devices found")
	}
	chosen := devices[0]
	for _, candidate := range devices {
		if r.backend.PhysicalDeviceProperties(candidate).DeviceType == DeviceTypeDiscreteGPU {
			chosen = candidate
			break
		}
	}
	r.physicalDevice = chosen
	r.deviceProperties = r.backend.PhysicalDeviceProperties(chosen)
	r.deviceFeatures = r.backend.PhysicalDeviceFeatures(chosen)
	r.memoryProperties = r.backend.PhysicalDeviceMemoryProperties(chosen)
	return nil
}

// findQueueFamilies scans the queue family list linearly, recording the last
// family seen with graphics support and the last family seen with present support
// on the created surface, stopping early once both are found. Graphics and present
// may land on different families.
func (r *renderer) findQueueFamilies() error {
	families := r.backend.QueueFamilyProperties(r.physicalDevice)
	foundGraphics := false
	foundPresent := false
	for i := range families {
		if families[i].Flags&QueueGraphics != 0 {
			r.graphicsFamily = uint32(i)
			foundGraphics = true
		}
		supported, err := r.backend.SurfaceSupport(r.physicalDevice, uint32(i), r.surface)
		if err != nil {
			return errors.Wrap(err, "query surface support")
		}
		if supported {
			r.presentFamily = uint32(i)
			foundPresent = true
		}
		if foundGraphics && foundPresent {
			break
		}
	}
	if !foundGraphics {
		return errors.New("no graphics-capable queue family")
	}
	if !foundPresent {
		return errors.New("no present-capable queue family")
	}
	return nil
}

// createLogicalDevice creates the usable device with one queue per distinct
// family, the swapchain extension, and the optional features the driver relies on.
func (r *renderer) createLogicalDevice() (LogicalDevice, error) {
	queues := []DeviceQueueInfo{{FamilyIndex: r.graphicsFamily, Priority: 1}}
	if r.presentFamily != r.graphicsFamily {
		queues = append(queues, DeviceQueueInfo{FamilyIndex: r.presentFamily, Priority: 1})
	}
	device, err := r.backend.CreateLogicalDevice(r.physicalDevice, DeviceInfo{
		Queues:     queues,
		Extensions: []string{swapchainExtensionName},
		Features: PhysicalDeviceFeatures{
			SamplerAnisotropy:     r.deviceFeatures.SamplerAnisotropy,
			FillModeNonSolid:      r.deviceFeatures.FillModeNonSolid,
			DepthClamp:            r.deviceFeatures.DepthClamp,
			OcclusionQueryPrecise: r.deviceFeatures.OcclusionQueryPrecise,
		},
	})
	if err != nil {
		return 0, errors.Wrap(err, "create logical device")
	}
	return device, nil
}

// Destroy tears the device down atomically in reverse creation order. Safe to call
// once; the renderer is unusable afterwards.
func (r *renderer) Destroy() error {
	if err := r.backend.DeviceWaitIdle(r.device); err != nil {
		return errors.Wrap(err, "wait for device idle")
	}

	for _, b := range r.buffers.drain() {
		r.destroyBufferData(b)
	}
	for _, t := range r.textures.drain() {
		r.destroyTextureData(t)
	}
	for _, rb := range r.renderbuffers.drain() {
		r.destroyRenderbufferData(rb)
	}
	for _, e := range r.effects.drain() {
		r.destroyEffectData(e)
	}
	r.queries.drain()

	for _, pipeline := range r.pipelines {
		r.backend.DestroyPipeline(r.device, pipeline)
	}
	r.pipelines = nil
	for _, sampler := range r.samplerCache {
		r.backend.DestroySampler(r.device, sampler)
	}
	r.samplerCache = nil
	for _, framebuffer := range r.targetFramebuffers {
		r.backend.DestroyFramebuffer(r.device, framebuffer)
	}
	r.targetFramebuffers = nil
	r.drainPassCache()

	if r.occlusionPool != 0 {
		r.backend.DestroyQueryPool(r.device, r.occlusionPool)
		r.occlusionPool = 0
	}

	r.destroyFrameResources()
	r.destroySwapchain()

	if r.pipelineCache != 0 {
		r.backend.DestroyPipelineCache(r.device, r.pipelineCache)
		r.pipelineCache = 0
	}
	if r.device != 0 {
		r.backend.DestroyLogicalDevice(r.device)
		r.device = 0
	}
	if r.surface != 0 {
		r.backend.DestroySurface(r.instance, r.surface)
		r.surface = 0
	}
	if r.instance != 0 {
		r.backend.DestroyInstance(r.instance)
		r.instance = 0
	}
	return nil
}

// drainPassCache destroys every cached render pass, including the default pass
// created alongside the swapchain. Used by teardown and by bootstrap rollback.
func (r *renderer) drainPassCache() {
	for _, pass := range r.passCache {
		r.backend.DestroyRenderPass(r.device, pass)
	}
	r.passCache = make(map[passKey]RenderPass)
}

// disposeIdle is the single synchronization point of every dispose path: the
// device drains completely before any native handle is destroyed, guaranteeing
// the GPU no longer reads or writes the resource.
func (r *renderer) disposeIdle() error {
	return errors.Wrap(r.backend.DeviceWaitIdle(r.device), "wait for device idle")
}
