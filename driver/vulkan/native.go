package vulkan

import (
	"math"
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"github.com/RotatingArtDev/FNA3D/common"
)

// nativeBackend is the shipping Backend over the C API bindings. It issues
// opaque handles from a single table and resolves them back to raw API objects
// at each call; like the renderer it is driven from one thread, so the table
// needs no locking.
type nativeBackend struct {
	nextID  uint64
	objects map[uint64]any
}

// newNativeBackend seats the loader's root resolver and performs the global-tier
// entry-point load.
func newNativeBackend(procAddr unsafe.Pointer) (Backend, error) {
	if procAddr == nil {
		return nil, errors.New("no instance proc address resolver")
	}
	vk.SetGetInstanceProcAddr(procAddr)
	if err := vk.Init(); err != nil {
		return nil, errors.Wrap(err, "initialize native loader")
	}
	return &nativeBackend{objects: make(map[uint64]any)}, nil
}

func (b *nativeBackend) put(obj any) uint64 {
	b.nextID++
	b.objects[b.nextID] = obj
	return b.nextID
}

func (b *nativeBackend) drop(id uint64) {
	delete(b.objects, id)
}

func fetch[T any](b *nativeBackend, id uint64) T {
	v, _ := b.objects[id].(T)
	return v
}

func vkErr(op string, ret vk.Result) error {
	if ret == vk.Success {
		return nil
	}
	return errors.Wrap(vk.Error(ret), op)
}

func (b *nativeBackend) CreateInstance(info InstanceInfo) (Instance, error) {
	var inst vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			PApplicationName:   nullTerm(info.ApplicationName),
			ApplicationVersion: info.ApplicationVersion,
			PEngineName:        nullTerm(info.EngineName),
			EngineVersion:      info.EngineVersion,
			ApiVersion:         info.APIVersion,
		},
		EnabledExtensionCount:   uint32(len(info.Extensions)),
		PpEnabledExtensionNames: nullTermAll(info.Extensions),
		EnabledLayerCount:       uint32(len(info.Layers)),
		PpEnabledLayerNames:     nullTermAll(info.Layers),
	}, nil, &inst)
	if err := vkErr("create instance", ret); err != nil {
		return 0, err
	}
	vk.InitInstance(inst)
	return Instance(b.put(inst)), nil
}

func (b *nativeBackend) DestroyInstance(instance Instance) {
	vk.DestroyInstance(fetch[vk.Instance](b, uint64(instance)), nil)
	b.drop(uint64(instance))
}

func (b *nativeBackend) CreateSurface(instance Instance, create SurfaceProviderFunc) (Surface, error) {
	raw, err := create(fetch[vk.Instance](b, uint64(instance)))
	if err != nil {
		return 0, errors.Wrap(err, "create window surface")
	}
	return Surface(b.put(vk.SurfaceFromPointer(raw))), nil
}

func (b *nativeBackend) DestroySurface(instance Instance, surface Surface) {
	vk.DestroySurface(fetch[vk.Instance](b, uint64(instance)), fetch[vk.Surface](b, uint64(surface)), nil)
	b.drop(uint64(surface))
}

func (b *nativeBackend) EnumeratePhysicalDevices(instance Instance) ([]PhysicalDevice, error) {
	inst := fetch[vk.Instance](b, uint64(instance))
	var count uint32
	if err := vkErr("count physical devices", vk.EnumeratePhysicalDevices(inst, &count, nil)); err != nil {
		return nil, err
	}
	raw := make([]vk.PhysicalDevice, count)
	if err := vkErr("enumerate physical devices", vk.EnumeratePhysicalDevices(inst, &count, raw)); err != nil {
		return nil, err
	}
	devices := make([]PhysicalDevice, len(raw))
	for i, d := range raw {
		devices[i] = PhysicalDevice(b.put(d))
	}
	return devices, nil
}

func (b *nativeBackend) PhysicalDeviceProperties(device PhysicalDevice) PhysicalDeviceProperties {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(fetch[vk.PhysicalDevice](b, uint64(device)), &props)
	props.Deref()
	return PhysicalDeviceProperties{
		Name:       vk.ToString(props.DeviceName[:]),
		DeviceType: deviceTypeFromVk(props.DeviceType),
		APIVersion: uint32(props.ApiVersion),
	}
}

func (b *nativeBackend) PhysicalDeviceFeatures(device PhysicalDevice) PhysicalDeviceFeatures {
	dev := fetch[vk.PhysicalDevice](b, uint64(device))
	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(dev, &features)
	features.Deref()
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(dev, &props)
	props.Deref()
	props.Limits.Deref()
	return PhysicalDeviceFeatures{
		SamplerAnisotropy:     features.SamplerAnisotropy == vk.True,
		FillModeNonSolid:      features.FillModeNonSolid == vk.True,
		DepthClamp:            features.DepthClamp == vk.True,
		OcclusionQueryPrecise: features.OcclusionQueryPrecise == vk.True,
		MaxSamplerAnisotropy:  props.Limits.MaxSamplerAnisotropy,
		MaxMultiSampleCount:   maxSampleCountFromVk(props.Limits.FramebufferColorSampleCounts),
	}
}

func (b *nativeBackend) PhysicalDeviceMemoryProperties(device PhysicalDevice) MemoryProperties {
	var props vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(fetch[vk.PhysicalDevice](b, uint64(device)), &props)
	props.Deref()
	types := make([]MemoryType, props.MemoryTypeCount)
	for i := uint32(0); i < props.MemoryTypeCount; i++ {
		props.MemoryTypes[i].Deref()
		types[i] = MemoryType{
			PropertyFlags: memoryFlagsFromVk(props.MemoryTypes[i].PropertyFlags),
			HeapIndex:     props.MemoryTypes[i].HeapIndex,
		}
	}
	return MemoryProperties{Types: types}
}

func (b *nativeBackend) QueueFamilyProperties(device PhysicalDevice) []QueueFamily {
	dev := fetch[vk.PhysicalDevice](b, uint64(device))
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(dev, &count, nil)
	raw := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(dev, &count, raw)
	families := make([]QueueFamily, count)
	for i := range raw {
		raw[i].Deref()
		families[i] = QueueFamily{
			Flags: queueFlagsFromVk(raw[i].QueueFlags),
			Count: raw[i].QueueCount,
		}
	}
	return families
}

func (b *nativeBackend) SurfaceSupport(device PhysicalDevice, familyIndex uint32, surface Surface) (bool, error) {
	var supported vk.Bool32
	ret := vk.GetPhysicalDeviceSurfaceSupport(
		fetch[vk.PhysicalDevice](b, uint64(device)), familyIndex,
		fetch[vk.Surface](b, uint64(surface)), &supported)
	if err := vkErr("query surface support", ret); err != nil {
		return false, err
	}
	return supported == vk.True, nil
}

func (b *nativeBackend) SurfaceCapabilities(device PhysicalDevice, surface Surface) (SurfaceCapabilities, error) {
	var caps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(
		fetch[vk.PhysicalDevice](b, uint64(device)),
		fetch[vk.Surface](b, uint64(surface)), &caps)
	if err := vkErr("query surface capabilities", ret); err != nil {
		return SurfaceCapabilities{}, err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return SurfaceCapabilities{
		MinImageCount:    caps.MinImageCount,
		MaxImageCount:    caps.MaxImageCount,
		CurrentExtent:    Extent2D{Width: caps.CurrentExtent.Width, Height: caps.CurrentExtent.Height},
		MinImageExtent:   Extent2D{Width: caps.MinImageExtent.Width, Height: caps.MinImageExtent.Height},
		MaxImageExtent:   Extent2D{Width: caps.MaxImageExtent.Width, Height: caps.MaxImageExtent.Height},
		CurrentTransform: uint32(caps.CurrentTransform),
	}, nil
}

func (b *nativeBackend) SurfaceFormats(device PhysicalDevice, surface Surface) ([]SurfaceFormatEntry, error) {
	dev := fetch[vk.PhysicalDevice](b, uint64(device))
	surf := fetch[vk.Surface](b, uint64(surface))
	var count uint32
	if err := vkErr("count surface formats", vk.GetPhysicalDeviceSurfaceFormats(dev, surf, &count, nil)); err != nil {
		return nil, err
	}
	raw := make([]vk.SurfaceFormat, count)
	if err := vkErr("query surface formats", vk.GetPhysicalDeviceSurfaceFormats(dev, surf, &count, raw)); err != nil {
		return nil, err
	}
	formats := make([]SurfaceFormatEntry, 0, count)
	for i := range raw {
		raw[i].Deref()
		formats = append(formats, SurfaceFormatEntry{
			Format:     formatFromVk(raw[i].Format),
			ColorSpace: colorSpaceFromVk(raw[i].ColorSpace),
		})
	}
	return formats, nil
}

func (b *nativeBackend) SurfacePresentModes(device PhysicalDevice, surface Surface) ([]PresentMode, error) {
	dev := fetch[vk.PhysicalDevice](b, uint64(device))
	surf := fetch[vk.Surface](b, uint64(surface))
	var count uint32
	if err := vkErr("count present modes", vk.GetPhysicalDeviceSurfacePresentModes(dev, surf, &count, nil)); err != nil {
		return nil, err
	}
	raw := make([]vk.PresentMode, count)
	if err := vkErr("query present modes", vk.GetPhysicalDeviceSurfacePresentModes(dev, surf, &count, raw)); err != nil {
		return nil, err
	}
	modes := make([]PresentMode, len(raw))
	for i, m := range raw {
		modes[i] = presentModeFromVk(m)
	}
	return modes, nil
}

func (b *nativeBackend) CreateLogicalDevice(device PhysicalDevice, info DeviceInfo) (LogicalDevice, error) {
	queueInfos := make([]vk.DeviceQueueCreateInfo, len(info.Queues))
	for i, q := range info.Queues {
		queueInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: q.FamilyIndex,
			QueueCount:       1,
			PQueuePriorities: []float32{q.Priority},
		}
	}
	var dev vk.Device
	ret := vk.CreateDevice(fetch[vk.PhysicalDevice](b, uint64(device)), &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(info.Extensions)),
		PpEnabledExtensionNames: nullTermAll(info.Extensions),
		PEnabledFeatures: []vk.PhysicalDeviceFeatures{{
			SamplerAnisotropy:     vkBool(info.Features.SamplerAnisotropy),
			FillModeNonSolid:      vkBool(info.Features.FillModeNonSolid),
			DepthClamp:            vkBool(info.Features.DepthClamp),
			OcclusionQueryPrecise: vkBool(info.Features.OcclusionQueryPrecise),
		}},
	}, nil, &dev)
	if err := vkErr("create logical device", ret); err != nil {
		return 0, err
	}
	return LogicalDevice(b.put(dev)), nil
}

func (b *nativeBackend) DestroyLogicalDevice(device LogicalDevice) {
	vk.DestroyDevice(fetch[vk.Device](b, uint64(device)), nil)
	b.drop(uint64(device))
}

func (b *nativeBackend) DeviceQueue(device LogicalDevice, familyIndex, queueIndex uint32) Queue {
	var queue vk.Queue
	vk.GetDeviceQueue(fetch[vk.Device](b, uint64(device)), familyIndex, queueIndex, &queue)
	return Queue(b.put(queue))
}

func (b *nativeBackend) DeviceWaitIdle(device LogicalDevice) error {
	return vkErr("device wait idle", vk.DeviceWaitIdle(fetch[vk.Device](b, uint64(device))))
}

func (b *nativeBackend) CreateSwapchain(device LogicalDevice, info SwapchainInfo) (Swapchain, error) {
	var old vk.Swapchain
	if info.OldSwapchain != 0 {
		old = fetch[vk.Swapchain](b, uint64(info.OldSwapchain))
	}
	var sc vk.Swapchain
	ret := vk.CreateSwapchain(fetch[vk.Device](b, uint64(device)), &vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          fetch[vk.Surface](b, uint64(info.Surface)),
		MinImageCount:    info.MinImageCount,
		ImageFormat:      vkFormat(info.Format),
		ImageColorSpace:  vk.ColorSpaceSrgbNonlinear,
		ImageExtent:      vk.Extent2D{Width: info.Extent.Width, Height: info.Extent.Height},
		ImageArrayLayers: 1,
		ImageUsage:       vkImageUsage(info.Usage),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     vk.SurfaceTransformFlagBits(info.PreTransform),
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      vkPresentMode(info.PresentMode),
		Clipped:          vk.True,
		OldSwapchain:     old,
	}, nil, &sc)
	if err := vkErr("create swapchain", ret); err != nil {
		return 0, err
	}
	return Swapchain(b.put(sc)), nil
}

func (b *nativeBackend) DestroySwapchain(device LogicalDevice, swapchain Swapchain) {
	vk.DestroySwapchain(fetch[vk.Device](b, uint64(device)), fetch[vk.Swapchain](b, uint64(swapchain)), nil)
	b.drop(uint64(swapchain))
}

func (b *nativeBackend) SwapchainImages(device LogicalDevice, swapchain Swapchain) ([]Image, error) {
	dev := fetch[vk.Device](b, uint64(device))
	sc := fetch[vk.Swapchain](b, uint64(swapchain))
	var count uint32
	if err := vkErr("count swapchain images", vk.GetSwapchainImages(dev, sc, &count, nil)); err != nil {
		return nil, err
	}
	raw := make([]vk.Image, count)
	if err := vkErr("query swapchain images", vk.GetSwapchainImages(dev, sc, &count, raw)); err != nil {
		return nil, err
	}
	images := make([]Image, len(raw))
	for i, img := range raw {
		images[i] = Image(b.put(img))
	}
	return images, nil
}

func (b *nativeBackend) AcquireNextImage(device LogicalDevice, swapchain Swapchain, signal Semaphore) (uint32, error) {
	var index uint32
	ret := vk.AcquireNextImage(
		fetch[vk.Device](b, uint64(device)),
		fetch[vk.Swapchain](b, uint64(swapchain)),
		math.MaxUint64,
		fetch[vk.Semaphore](b, uint64(signal)),
		vk.NullFence, &index)
	switch ret {
	case vk.Success:
		return index, nil
	case vk.ErrorOutOfDate:
		return index, ErrOutOfDate
	case vk.Suboptimal:
		return index, ErrSuboptimal
	default:
		return index, vkErr("acquire next image", ret)
	}
}

func (b *nativeBackend) QueuePresent(queue Queue, info PresentInfo) error {
	ret := vk.QueuePresent(fetch[vk.Queue](b, uint64(queue)), &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{fetch[vk.Semaphore](b, uint64(info.WaitSemaphore))},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{fetch[vk.Swapchain](b, uint64(info.Swapchain))},
		PImageIndices:      []uint32{info.ImageIndex},
	})
	switch ret {
	case vk.Success:
		return nil
	case vk.ErrorOutOfDate:
		return ErrOutOfDate
	case vk.Suboptimal:
		return ErrSuboptimal
	default:
		return vkErr("queue present", ret)
	}
}

func (b *nativeBackend) QueueSubmit(queue Queue, info SubmitInfo) error {
	submit := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{fetch[vk.CommandBuffer](b, uint64(info.CommandBuffer))},
	}
	if info.WaitSemaphore != 0 {
		submit.WaitSemaphoreCount = 1
		submit.PWaitSemaphores = []vk.Semaphore{fetch[vk.Semaphore](b, uint64(info.WaitSemaphore))}
		submit.PWaitDstStageMask = []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		}
	}
	if info.SignalSemaphore != 0 {
		submit.SignalSemaphoreCount = 1
		submit.PSignalSemaphores = []vk.Semaphore{fetch[vk.Semaphore](b, uint64(info.SignalSemaphore))}
	}
	fence := vk.NullFence
	if info.Fence != 0 {
		fence = fetch[vk.Fence](b, uint64(info.Fence))
	}
	return vkErr("queue submit", vk.QueueSubmit(fetch[vk.Queue](b, uint64(queue)), 1, []vk.SubmitInfo{submit}, fence))
}

func (b *nativeBackend) AllocateMemory(device LogicalDevice, size uint64, memoryTypeIndex uint32) (DeviceMemory, error) {
	var memory vk.DeviceMemory
	ret := vk.AllocateMemory(fetch[vk.Device](b, uint64(device)), &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  vk.DeviceSize(size),
		MemoryTypeIndex: memoryTypeIndex,
	}, nil, &memory)
	if err := vkErr("allocate memory", ret); err != nil {
		return 0, err
	}
	return DeviceMemory(b.put(memory)), nil
}

func (b *nativeBackend) FreeMemory(device LogicalDevice, memory DeviceMemory) {
	vk.FreeMemory(fetch[vk.Device](b, uint64(device)), fetch[vk.DeviceMemory](b, uint64(memory)), nil)
	b.drop(uint64(memory))
}

func (b *nativeBackend) MapMemory(device LogicalDevice, memory DeviceMemory, size uint64) ([]byte, error) {
	var ptr unsafe.Pointer
	ret := vk.MapMemory(fetch[vk.Device](b, uint64(device)), fetch[vk.DeviceMemory](b, uint64(memory)),
		0, vk.DeviceSize(size), 0, &ptr)
	if err := vkErr("map memory", ret); err != nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(ptr), size), nil
}

func (b *nativeBackend) CreateBuffer(device LogicalDevice, info BufferInfo) (Buffer, error) {
	var buffer vk.Buffer
	ret := vk.CreateBuffer(fetch[vk.Device](b, uint64(device)), &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(info.Size),
		Usage:       vkBufferUsage(info.Usage),
		SharingMode: vk.SharingModeExclusive,
	}, nil, &buffer)
	if err := vkErr("create buffer", ret); err != nil {
		return 0, err
	}
	return Buffer(b.put(buffer)), nil
}

func (b *nativeBackend) DestroyBuffer(device LogicalDevice, buffer Buffer) {
	vk.DestroyBuffer(fetch[vk.Device](b, uint64(device)), fetch[vk.Buffer](b, uint64(buffer)), nil)
	b.drop(uint64(buffer))
}

func (b *nativeBackend) BufferMemoryRequirements(device LogicalDevice, buffer Buffer) MemoryRequirements {
	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(fetch[vk.Device](b, uint64(device)), fetch[vk.Buffer](b, uint64(buffer)), &reqs)
	reqs.Deref()
	return MemoryRequirements{
		Size:           uint64(reqs.Size),
		Alignment:      uint64(reqs.Alignment),
		MemoryTypeBits: reqs.MemoryTypeBits,
	}
}

func (b *nativeBackend) BindBufferMemory(device LogicalDevice, buffer Buffer, memory DeviceMemory) error {
	return vkErr("bind buffer memory", vk.BindBufferMemory(
		fetch[vk.Device](b, uint64(device)),
		fetch[vk.Buffer](b, uint64(buffer)),
		fetch[vk.DeviceMemory](b, uint64(memory)), 0))
}

func (b *nativeBackend) CreateImage(device LogicalDevice, info ImageInfo) (Image, error) {
	var flags vk.ImageCreateFlags
	if info.ViewType == ImageViewTypeCube {
		flags = vk.ImageCreateFlags(vk.ImageCreateCubeCompatibleBit)
	}
	var image vk.Image
	ret := vk.CreateImage(fetch[vk.Device](b, uint64(device)), &vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		Flags:     flags,
		ImageType: vkImageType(info.ViewType),
		Format:    vkFormat(info.Format),
		Extent: vk.Extent3D{
			Width:  info.Extent.Width,
			Height: info.Extent.Height,
			Depth:  info.Extent.Depth,
		},
		MipLevels:     info.MipLevels,
		ArrayLayers:   info.ArrayLayers,
		Samples:       vkSampleCount(info.Samples),
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vkImageUsage(info.Usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &image)
	if err := vkErr("create image", ret); err != nil {
		return 0, err
	}
	return Image(b.put(image)), nil
}

func (b *nativeBackend) DestroyImage(device LogicalDevice, image Image) {
	vk.DestroyImage(fetch[vk.Device](b, uint64(device)), fetch[vk.Image](b, uint64(image)), nil)
	b.drop(uint64(image))
}

func (b *nativeBackend) ImageMemoryRequirements(device LogicalDevice, image Image) MemoryRequirements {
	var reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(fetch[vk.Device](b, uint64(device)), fetch[vk.Image](b, uint64(image)), &reqs)
	reqs.Deref()
	return MemoryRequirements{
		Size:           uint64(reqs.Size),
		Alignment:      uint64(reqs.Alignment),
		MemoryTypeBits: reqs.MemoryTypeBits,
	}
}

func (b *nativeBackend) BindImageMemory(device LogicalDevice, image Image, memory DeviceMemory) error {
	return vkErr("bind image memory", vk.BindImageMemory(
		fetch[vk.Device](b, uint64(device)),
		fetch[vk.Image](b, uint64(image)),
		fetch[vk.DeviceMemory](b, uint64(memory)), 0))
}

func (b *nativeBackend) CreateImageView(device LogicalDevice, info ImageViewInfo) (ImageView, error) {
	var view vk.ImageView
	ret := vk.CreateImageView(fetch[vk.Device](b, uint64(device)), &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    fetch[vk.Image](b, uint64(info.Image)),
		ViewType: vkImageViewType(info.ViewType),
		Format:   vkFormat(info.Format),
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vkAspect(info.Aspect),
			BaseMipLevel:   info.BaseMip,
			LevelCount:     info.MipCount,
			BaseArrayLayer: info.BaseLayer,
			LayerCount:     info.LayerCount,
		},
	}, nil, &view)
	if err := vkErr("create image view", ret); err != nil {
		return 0, err
	}
	return ImageView(b.put(view)), nil
}

func (b *nativeBackend) DestroyImageView(device LogicalDevice, view ImageView) {
	vk.DestroyImageView(fetch[vk.Device](b, uint64(device)), fetch[vk.ImageView](b, uint64(view)), nil)
	b.drop(uint64(view))
}

func (b *nativeBackend) CreateSampler(device LogicalDevice, info SamplerInfo) (Sampler, error) {
	mag, min, mip := vkFilters(info.State.Filter)
	var sampler vk.Sampler
	ret := vk.CreateSampler(fetch[vk.Device](b, uint64(device)), &vk.SamplerCreateInfo{
		SType:            vk.StructureTypeSamplerCreateInfo,
		MagFilter:        mag,
		MinFilter:        min,
		MipmapMode:       mip,
		AddressModeU:     vkAddressMode(info.State.AddressU),
		AddressModeV:     vkAddressMode(info.State.AddressV),
		AddressModeW:     vkAddressMode(info.State.AddressW),
		MipLodBias:       info.State.MipMapLevelOfDetailBias,
		AnisotropyEnable: vkBool(info.MaxAnisotropy > 1),
		MaxAnisotropy:    info.MaxAnisotropy,
		MaxLod:           info.MaxLod,
		BorderColor:      vk.BorderColorFloatOpaqueBlack,
	}, nil, &sampler)
	if err := vkErr("create sampler", ret); err != nil {
		return 0, err
	}
	return Sampler(b.put(sampler)), nil
}

func (b *nativeBackend) DestroySampler(device LogicalDevice, sampler Sampler) {
	vk.DestroySampler(fetch[vk.Device](b, uint64(device)), fetch[vk.Sampler](b, uint64(sampler)), nil)
	b.drop(uint64(sampler))
}

func (b *nativeBackend) CreateShaderModule(device LogicalDevice, code []uint32) (ShaderModule, error) {
	var module vk.ShaderModule
	ret := vk.CreateShaderModule(fetch[vk.Device](b, uint64(device)), &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code)) * 4,
		PCode:    code,
	}, nil, &module)
	if err := vkErr("create shader module", ret); err != nil {
		return 0, err
	}
	return ShaderModule(b.put(module)), nil
}

func (b *nativeBackend) DestroyShaderModule(device LogicalDevice, module ShaderModule) {
	vk.DestroyShaderModule(fetch[vk.Device](b, uint64(device)), fetch[vk.ShaderModule](b, uint64(module)), nil)
	b.drop(uint64(module))
}

func (b *nativeBackend) CreateRenderPass(device LogicalDevice, info RenderPassInfo) (RenderPass, error) {
	colorLoad := vk.AttachmentLoadOpDontCare
	if info.LoadClear {
		colorLoad = vk.AttachmentLoadOpClear
	}
	colorFinal := vk.ImageLayoutColorAttachmentOptimal
	if info.PresentAfter {
		colorFinal = vk.ImageLayoutPresentSrc
	}
	attachments := []vk.AttachmentDescription{{
		Format:         vkFormat(info.ColorFormat),
		Samples:        vkSampleCount(info.SampleCount),
		LoadOp:         colorLoad,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    colorFinal,
	}}
	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments: []vk.AttachmentReference{{
			Attachment: 0,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}},
	}
	if info.DepthFormat != FormatUndefined {
		attachments = append(attachments, vk.AttachmentDescription{
			Format:         vkFormat(info.DepthFormat),
			Samples:        vkSampleCount(info.SampleCount),
			LoadOp:         colorLoad,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  colorLoad,
			StencilStoreOp: vk.AttachmentStoreOpStore,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		})
		subpass.PDepthStencilAttachment = &vk.AttachmentReference{
			Attachment: 1,
			Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
		}
	}
	var pass vk.RenderPass
	ret := vk.CreateRenderPass(fetch[vk.Device](b, uint64(device)), &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies: []vk.SubpassDependency{{
			SrcSubpass:    vk.SubpassExternal,
			DstSubpass:    0,
			SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
			DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
			DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
		}},
	}, nil, &pass)
	if err := vkErr("create render pass", ret); err != nil {
		return 0, err
	}
	return RenderPass(b.put(pass)), nil
}

func (b *nativeBackend) DestroyRenderPass(device LogicalDevice, pass RenderPass) {
	vk.DestroyRenderPass(fetch[vk.Device](b, uint64(device)), fetch[vk.RenderPass](b, uint64(pass)), nil)
	b.drop(uint64(pass))
}

func (b *nativeBackend) CreateFramebuffer(device LogicalDevice, info FramebufferInfo) (Framebuffer, error) {
	attachments := make([]vk.ImageView, len(info.Attachments))
	for i, view := range info.Attachments {
		attachments[i] = fetch[vk.ImageView](b, uint64(view))
	}
	var framebuffer vk.Framebuffer
	ret := vk.CreateFramebuffer(fetch[vk.Device](b, uint64(device)), &vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      fetch[vk.RenderPass](b, uint64(info.RenderPass)),
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		Width:           info.Extent.Width,
		Height:          info.Extent.Height,
		Layers:          1,
	}, nil, &framebuffer)
	if err := vkErr("create framebuffer", ret); err != nil {
		return 0, err
	}
	return Framebuffer(b.put(framebuffer)), nil
}

func (b *nativeBackend) DestroyFramebuffer(device LogicalDevice, framebuffer Framebuffer) {
	vk.DestroyFramebuffer(fetch[vk.Device](b, uint64(device)), fetch[vk.Framebuffer](b, uint64(framebuffer)), nil)
	b.drop(uint64(framebuffer))
}

func (b *nativeBackend) CreatePipelineCache(device LogicalDevice) (PipelineCache, error) {
	var cache vk.PipelineCache
	ret := vk.CreatePipelineCache(fetch[vk.Device](b, uint64(device)), &vk.PipelineCacheCreateInfo{
		SType: vk.StructureTypePipelineCacheCreateInfo,
	}, nil, &cache)
	if err := vkErr("create pipeline cache", ret); err != nil {
		return 0, err
	}
	return PipelineCache(b.put(cache)), nil
}

func (b *nativeBackend) DestroyPipelineCache(device LogicalDevice, cache PipelineCache) {
	vk.DestroyPipelineCache(fetch[vk.Device](b, uint64(device)), fetch[vk.PipelineCache](b, uint64(cache)), nil)
	b.drop(uint64(cache))
}

func (b *nativeBackend) CreatePipelineLayout(device LogicalDevice, layouts []DescriptorSetLayout) (PipelineLayout, error) {
	setLayouts := make([]vk.DescriptorSetLayout, len(layouts))
	for i, l := range layouts {
		setLayouts[i] = fetch[vk.DescriptorSetLayout](b, uint64(l))
	}
	var layout vk.PipelineLayout
	ret := vk.CreatePipelineLayout(fetch[vk.Device](b, uint64(device)), &vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(setLayouts)),
		PSetLayouts:    setLayouts,
	}, nil, &layout)
	if err := vkErr("create pipeline layout", ret); err != nil {
		return 0, err
	}
	return PipelineLayout(b.put(layout)), nil
}

func (b *nativeBackend) DestroyPipelineLayout(device LogicalDevice, layout PipelineLayout) {
	vk.DestroyPipelineLayout(fetch[vk.Device](b, uint64(device)), fetch[vk.PipelineLayout](b, uint64(layout)), nil)
	b.drop(uint64(layout))
}

func (b *nativeBackend) CreateGraphicsPipeline(device LogicalDevice, cache PipelineCache, info GraphicsPipelineInfo) (Pipeline, error) {
	bindings := make([]vk.VertexInputBindingDescription, len(info.VertexBindings))
	for i, binding := range info.VertexBindings {
		rate := vk.VertexInputRateVertex
		if binding.PerInstance {
			rate = vk.VertexInputRateInstance
		}
		bindings[i] = vk.VertexInputBindingDescription{
			Binding:   binding.Binding,
			Stride:    binding.Stride,
			InputRate: rate,
		}
	}
	attributes := make([]vk.VertexInputAttributeDescription, len(info.VertexAttributes))
	for i, attr := range info.VertexAttributes {
		attributes[i] = vk.VertexInputAttributeDescription{
			Location: attr.Location,
			Binding:  attr.Binding,
			Format:   vkVertexFormats[attr.Format],
			Offset:   attr.Offset,
		}
	}

	blend := info.Blend
	front := vk.StencilOpState{
		FailOp:      vkStencilOps[info.DepthStencil.StencilFail],
		PassOp:      vkStencilOps[info.DepthStencil.StencilPass],
		DepthFailOp: vkStencilOps[info.DepthStencil.StencilDepthBufferFail],
		CompareOp:   vkCompareOps[info.DepthStencil.StencilFunction],
		CompareMask: uint32(info.DepthStencil.StencilMask),
		WriteMask:   uint32(info.DepthStencil.StencilWriteMask),
	}
	back := front
	if info.DepthStencil.TwoSidedStencilMode {
		back = vk.StencilOpState{
			FailOp:      vkStencilOps[info.DepthStencil.CCWStencilFail],
			PassOp:      vkStencilOps[info.DepthStencil.CCWStencilPass],
			DepthFailOp: vkStencilOps[info.DepthStencil.CCWStencilDepthBufferFail],
			CompareOp:   vkCompareOps[info.DepthStencil.CCWStencilFunction],
			CompareMask: uint32(info.DepthStencil.StencilMask),
			WriteMask:   uint32(info.DepthStencil.StencilWriteMask),
		}
	}

	depthBiasEnable := info.Rasterizer.DepthBias != 0 || info.Rasterizer.SlopeScaleDepthBias != 0

	pipelines := make([]vk.Pipeline, 1)
	var vkCache vk.PipelineCache
	if cache != 0 {
		vkCache = fetch[vk.PipelineCache](b, uint64(cache))
	}
	ret := vk.CreateGraphicsPipelines(fetch[vk.Device](b, uint64(device)), vkCache, 1,
		[]vk.GraphicsPipelineCreateInfo{{
			SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
			StageCount: 2,
			PStages: []vk.PipelineShaderStageCreateInfo{{
				SType:  vk.StructureTypePipelineShaderStageCreateInfo,
				Stage:  vk.ShaderStageVertexBit,
				Module: fetch[vk.ShaderModule](b, uint64(info.VertexShader)),
				PName:  "main\x00",
			}, {
				SType:  vk.StructureTypePipelineShaderStageCreateInfo,
				Stage:  vk.ShaderStageFragmentBit,
				Module: fetch[vk.ShaderModule](b, uint64(info.FragmentShader)),
				PName:  "main\x00",
			}},
			PVertexInputState: &vk.PipelineVertexInputStateCreateInfo{
				SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
				VertexBindingDescriptionCount:   uint32(len(bindings)),
				PVertexBindingDescriptions:      bindings,
				VertexAttributeDescriptionCount: uint32(len(attributes)),
				PVertexAttributeDescriptions:    attributes,
			},
			PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
				SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
				Topology: vkTopologies[info.Topology],
			},
			PViewportState: &vk.PipelineViewportStateCreateInfo{
				SType:         vk.StructureTypePipelineViewportStateCreateInfo,
				ViewportCount: 1,
				ScissorCount:  1,
			},
			PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
				SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
				PolygonMode:             vkPolygonMode(info.Rasterizer.FillMode),
				CullMode:                vkCullMode(info.Rasterizer.CullMode),
				FrontFace:               vk.FrontFaceCounterClockwise,
				DepthBiasEnable:         vkBool(depthBiasEnable),
				DepthBiasConstantFactor: info.Rasterizer.DepthBias,
				DepthBiasSlopeFactor:    info.Rasterizer.SlopeScaleDepthBias,
				LineWidth:               1,
			},
			PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
				SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
				RasterizationSamples: vkSampleCount(info.SampleCount),
				PSampleMask:          []vk.SampleMask{vk.SampleMask(uint32(info.MultiSampleMask))},
			},
			PDepthStencilState: &vk.PipelineDepthStencilStateCreateInfo{
				SType:             vk.StructureTypePipelineDepthStencilStateCreateInfo,
				DepthTestEnable:   vkBool(info.DepthStencil.DepthBufferEnable),
				DepthWriteEnable:  vkBool(info.DepthStencil.DepthBufferWriteEnable),
				DepthCompareOp:    vkCompareOps[info.DepthStencil.DepthBufferFunction],
				StencilTestEnable: vkBool(info.DepthStencil.StencilEnable),
				Front:             front,
				Back:              back,
			},
			PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
				SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
				AttachmentCount: 1,
				PAttachments: []vk.PipelineColorBlendAttachmentState{{
					BlendEnable:         vk.True,
					SrcColorBlendFactor: vkBlendFactors[blend.ColorSourceBlend],
					DstColorBlendFactor: vkBlendFactors[blend.ColorDestinationBlend],
					ColorBlendOp:        vkBlendOps[blend.ColorBlendFunction],
					SrcAlphaBlendFactor: vkBlendFactors[blend.AlphaSourceBlend],
					DstAlphaBlendFactor: vkBlendFactors[blend.AlphaDestinationBlend],
					AlphaBlendOp:        vkBlendOps[blend.AlphaBlendFunction],
					ColorWriteMask:      vkColorWriteMask(blend.ColorWriteEnable),
				}},
			},
			PDynamicState: &vk.PipelineDynamicStateCreateInfo{
				SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
				DynamicStateCount: 4,
				PDynamicStates: []vk.DynamicState{
					vk.DynamicStateViewport,
					vk.DynamicStateScissor,
					vk.DynamicStateBlendConstants,
					vk.DynamicStateStencilReference,
				},
			},
			Layout:     fetch[vk.PipelineLayout](b, uint64(info.Layout)),
			RenderPass: fetch[vk.RenderPass](b, uint64(info.RenderPass)),
		}}, nil, pipelines)
	if err := vkErr("create graphics pipeline", ret); err != nil {
		return 0, err
	}
	return Pipeline(b.put(pipelines[0])), nil
}

func (b *nativeBackend) DestroyPipeline(device LogicalDevice, pipeline Pipeline) {
	vk.DestroyPipeline(fetch[vk.Device](b, uint64(device)), fetch[vk.Pipeline](b, uint64(pipeline)), nil)
	b.drop(uint64(pipeline))
}

func (b *nativeBackend) CreateDescriptorSetLayout(device LogicalDevice, info DescriptorSetLayoutInfo) (DescriptorSetLayout, error) {
	var bindings []vk.DescriptorSetLayoutBinding
	if info.VertexUniform {
		bindings = append(bindings, vk.DescriptorSetLayoutBinding{
			Binding:         bindingVertexUniform,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		})
	}
	if info.FragmentUniform {
		bindings = append(bindings, vk.DescriptorSetLayoutBinding{
			Binding:         bindingFragmentUniform,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		})
	}
	for i := int32(0); i < info.VertexSamplerCount; i++ {
		bindings = append(bindings, vk.DescriptorSetLayoutBinding{
			Binding:         uint32(bindingVertexSamplers + i),
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		})
	}
	for i := int32(0); i < info.FragmentSamplerCount; i++ {
		bindings = append(bindings, vk.DescriptorSetLayoutBinding{
			Binding:         uint32(bindingFragmentSamplers + i),
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		})
	}
	var layout vk.DescriptorSetLayout
	ret := vk.CreateDescriptorSetLayout(fetch[vk.Device](b, uint64(device)), &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}, nil, &layout)
	if err := vkErr("create descriptor set layout", ret); err != nil {
		return 0, err
	}
	return DescriptorSetLayout(b.put(layout)), nil
}

func (b *nativeBackend) DestroyDescriptorSetLayout(device LogicalDevice, layout DescriptorSetLayout) {
	vk.DestroyDescriptorSetLayout(fetch[vk.Device](b, uint64(device)), fetch[vk.DescriptorSetLayout](b, uint64(layout)), nil)
	b.drop(uint64(layout))
}

func (b *nativeBackend) CreateDescriptorPool(device LogicalDevice, info DescriptorPoolInfo) (DescriptorPool, error) {
	var pool vk.DescriptorPool
	ret := vk.CreateDescriptorPool(fetch[vk.Device](b, uint64(device)), &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       info.MaxSets,
		PoolSizeCount: 2,
		PPoolSizes: []vk.DescriptorPoolSize{
			{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: info.UniformBuffers},
			{Type: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: info.CombinedSamplers},
		},
	}, nil, &pool)
	if err := vkErr("create descriptor pool", ret); err != nil {
		return 0, err
	}
	return DescriptorPool(b.put(pool)), nil
}

func (b *nativeBackend) DestroyDescriptorPool(device LogicalDevice, pool DescriptorPool) {
	vk.DestroyDescriptorPool(fetch[vk.Device](b, uint64(device)), fetch[vk.DescriptorPool](b, uint64(pool)), nil)
	b.drop(uint64(pool))
}

func (b *nativeBackend) ResetDescriptorPool(device LogicalDevice, pool DescriptorPool) error {
	return vkErr("reset descriptor pool", vk.ResetDescriptorPool(
		fetch[vk.Device](b, uint64(device)), fetch[vk.DescriptorPool](b, uint64(pool)), 0))
}

func (b *nativeBackend) AllocateDescriptorSet(device LogicalDevice, pool DescriptorPool, layout DescriptorSetLayout) (DescriptorSet, error) {
	var set vk.DescriptorSet
	ret := vk.AllocateDescriptorSets(fetch[vk.Device](b, uint64(device)), &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     fetch[vk.DescriptorPool](b, uint64(pool)),
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{fetch[vk.DescriptorSetLayout](b, uint64(layout))},
	}, &set)
	if err := vkErr("allocate descriptor set", ret); err != nil {
		return 0, err
	}
	return DescriptorSet(b.put(set)), nil
}

func (b *nativeBackend) UpdateDescriptorSet(device LogicalDevice, set DescriptorSet, writes []DescriptorWrite) {
	dst := fetch[vk.DescriptorSet](b, uint64(set))
	vkWrites := make([]vk.WriteDescriptorSet, len(writes))
	for i, write := range writes {
		out := vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          dst,
			DstBinding:      write.Binding,
			DescriptorCount: 1,
		}
		switch write.Type {
		case DescriptorUniformBuffer:
			out.DescriptorType = vk.DescriptorTypeUniformBuffer
			out.PBufferInfo = []vk.DescriptorBufferInfo{{
				Buffer: fetch[vk.Buffer](b, uint64(write.Buffer)),
				Offset: vk.DeviceSize(write.Offset),
				Range:  vk.DeviceSize(write.Range),
			}}
		case DescriptorCombinedImageSampler:
			out.DescriptorType = vk.DescriptorTypeCombinedImageSampler
			out.PImageInfo = []vk.DescriptorImageInfo{{
				Sampler:     fetch[vk.Sampler](b, uint64(write.Sampler)),
				ImageView:   fetch[vk.ImageView](b, uint64(write.View)),
				ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
			}}
		}
		vkWrites[i] = out
	}
	vk.UpdateDescriptorSets(fetch[vk.Device](b, uint64(device)), uint32(len(vkWrites)), vkWrites, 0, nil)
}

func (b *nativeBackend) CreateCommandPool(device LogicalDevice, queueFamilyIndex uint32) (CommandPool, error) {
	var pool vk.CommandPool
	ret := vk.CreateCommandPool(fetch[vk.Device](b, uint64(device)), &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: queueFamilyIndex,
	}, nil, &pool)
	if err := vkErr("create command pool", ret); err != nil {
		return 0, err
	}
	return CommandPool(b.put(pool)), nil
}

func (b *nativeBackend) DestroyCommandPool(device LogicalDevice, pool CommandPool) {
	vk.DestroyCommandPool(fetch[vk.Device](b, uint64(device)), fetch[vk.CommandPool](b, uint64(pool)), nil)
	b.drop(uint64(pool))
}

func (b *nativeBackend) ResetCommandPool(device LogicalDevice, pool CommandPool) error {
	return vkErr("reset command pool", vk.ResetCommandPool(
		fetch[vk.Device](b, uint64(device)), fetch[vk.CommandPool](b, uint64(pool)), 0))
}

func (b *nativeBackend) AllocateCommandBuffer(device LogicalDevice, pool CommandPool) (CommandBuffer, error) {
	buffers := make([]vk.CommandBuffer, 1)
	ret := vk.AllocateCommandBuffers(fetch[vk.Device](b, uint64(device)), &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        fetch[vk.CommandPool](b, uint64(pool)),
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, buffers)
	if err := vkErr("allocate command buffer", ret); err != nil {
		return 0, err
	}
	return CommandBuffer(b.put(buffers[0])), nil
}

func (b *nativeBackend) BeginCommandBuffer(buffer CommandBuffer) error {
	return vkErr("begin command buffer", vk.BeginCommandBuffer(
		fetch[vk.CommandBuffer](b, uint64(buffer)), &vk.CommandBufferBeginInfo{
			SType: vk.StructureTypeCommandBufferBeginInfo,
			Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
		}))
}

func (b *nativeBackend) EndCommandBuffer(buffer CommandBuffer) error {
	return vkErr("end command buffer", vk.EndCommandBuffer(fetch[vk.CommandBuffer](b, uint64(buffer))))
}

func (b *nativeBackend) CreateFence(device LogicalDevice, signaled bool) (Fence, error) {
	var flags vk.FenceCreateFlags
	if signaled {
		flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var fence vk.Fence
	ret := vk.CreateFence(fetch[vk.Device](b, uint64(device)), &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: flags,
	}, nil, &fence)
	if err := vkErr("create fence", ret); err != nil {
		return 0, err
	}
	return Fence(b.put(fence)), nil
}

func (b *nativeBackend) DestroyFence(device LogicalDevice, fence Fence) {
	vk.DestroyFence(fetch[vk.Device](b, uint64(device)), fetch[vk.Fence](b, uint64(fence)), nil)
	b.drop(uint64(fence))
}

func (b *nativeBackend) WaitForFence(device LogicalDevice, fence Fence) error {
	return vkErr("wait for fence", vk.WaitForFences(
		fetch[vk.Device](b, uint64(device)), 1,
		[]vk.Fence{fetch[vk.Fence](b, uint64(fence))}, vk.True, math.MaxUint64))
}

func (b *nativeBackend) ResetFence(device LogicalDevice, fence Fence) error {
	return vkErr("reset fence", vk.ResetFences(
		fetch[vk.Device](b, uint64(device)), 1,
		[]vk.Fence{fetch[vk.Fence](b, uint64(fence))}))
}

func (b *nativeBackend) CreateSemaphore(device LogicalDevice) (Semaphore, error) {
	var semaphore vk.Semaphore
	ret := vk.CreateSemaphore(fetch[vk.Device](b, uint64(device)), &vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}, nil, &semaphore)
	if err := vkErr("create semaphore", ret); err != nil {
		return 0, err
	}
	return Semaphore(b.put(semaphore)), nil
}

func (b *nativeBackend) DestroySemaphore(device LogicalDevice, semaphore Semaphore) {
	vk.DestroySemaphore(fetch[vk.Device](b, uint64(device)), fetch[vk.Semaphore](b, uint64(semaphore)), nil)
	b.drop(uint64(semaphore))
}

func (b *nativeBackend) CreateQueryPool(device LogicalDevice, queryCount uint32) (QueryPool, error) {
	var pool vk.QueryPool
	ret := vk.CreateQueryPool(fetch[vk.Device](b, uint64(device)), &vk.QueryPoolCreateInfo{
		SType:      vk.StructureTypeQueryPoolCreateInfo,
		QueryType:  vk.QueryTypeOcclusion,
		QueryCount: queryCount,
	}, nil, &pool)
	if err := vkErr("create query pool", ret); err != nil {
		return 0, err
	}
	return QueryPool(b.put(pool)), nil
}

func (b *nativeBackend) DestroyQueryPool(device LogicalDevice, pool QueryPool) {
	vk.DestroyQueryPool(fetch[vk.Device](b, uint64(device)), fetch[vk.QueryPool](b, uint64(pool)), nil)
	b.drop(uint64(pool))
}

func (b *nativeBackend) QueryResult(device LogicalDevice, pool QueryPool, index uint32) (uint64, bool, error) {
	var results [2]uint64
	ret := vk.GetQueryPoolResults(
		fetch[vk.Device](b, uint64(device)),
		fetch[vk.QueryPool](b, uint64(pool)),
		index, 1,
		uint64(unsafe.Sizeof(results)), unsafe.Pointer(&results[0]),
		vk.DeviceSize(unsafe.Sizeof(results)),
		vk.QueryResultFlags(vk.QueryResult64Bit|vk.QueryResultWithAvailabilityBit))
	if ret == vk.NotReady {
		return 0, false, nil
	}
	if err := vkErr("query pool results", ret); err != nil {
		return 0, false, err
	}
	return results[0], results[1] != 0, nil
}

func (b *nativeBackend) CmdBeginRenderPass(buffer CommandBuffer, begin RenderPassBegin) {
	vk.CmdBeginRenderPass(fetch[vk.CommandBuffer](b, uint64(buffer)), &vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  fetch[vk.RenderPass](b, uint64(begin.RenderPass)),
		Framebuffer: fetch[vk.Framebuffer](b, uint64(begin.Framebuffer)),
		RenderArea: vk.Rect2D{
			Extent: vk.Extent2D{Width: begin.Extent.Width, Height: begin.Extent.Height},
		},
	}, vk.SubpassContentsInline)
}

func (b *nativeBackend) CmdEndRenderPass(buffer CommandBuffer) {
	vk.CmdEndRenderPass(fetch[vk.CommandBuffer](b, uint64(buffer)))
}

func (b *nativeBackend) CmdBindPipeline(buffer CommandBuffer, pipeline Pipeline) {
	vk.CmdBindPipeline(fetch[vk.CommandBuffer](b, uint64(buffer)),
		vk.PipelineBindPointGraphics, fetch[vk.Pipeline](b, uint64(pipeline)))
}

func (b *nativeBackend) CmdBindVertexBuffers(buffer CommandBuffer, firstBinding uint32, buffers []Buffer, offsets []uint64) {
	vkBuffers := make([]vk.Buffer, len(buffers))
	vkOffsets := make([]vk.DeviceSize, len(offsets))
	for i := range buffers {
		vkBuffers[i] = fetch[vk.Buffer](b, uint64(buffers[i]))
		vkOffsets[i] = vk.DeviceSize(offsets[i])
	}
	vk.CmdBindVertexBuffers(fetch[vk.CommandBuffer](b, uint64(buffer)),
		firstBinding, uint32(len(vkBuffers)), vkBuffers, vkOffsets)
}

func (b *nativeBackend) CmdBindIndexBuffer(buffer CommandBuffer, index Buffer, offset uint64, elementSize common.IndexElementSize) {
	vk.CmdBindIndexBuffer(fetch[vk.CommandBuffer](b, uint64(buffer)),
		fetch[vk.Buffer](b, uint64(index)), vk.DeviceSize(offset), vkIndexType(elementSize))
}

func (b *nativeBackend) CmdBindDescriptorSet(buffer CommandBuffer, layout PipelineLayout, set DescriptorSet) {
	vk.CmdBindDescriptorSets(fetch[vk.CommandBuffer](b, uint64(buffer)),
		vk.PipelineBindPointGraphics, fetch[vk.PipelineLayout](b, uint64(layout)),
		0, 1, []vk.DescriptorSet{fetch[vk.DescriptorSet](b, uint64(set))}, 0, nil)
}

func (b *nativeBackend) CmdSetViewport(buffer CommandBuffer, viewport common.Viewport) {
	vk.CmdSetViewport(fetch[vk.CommandBuffer](b, uint64(buffer)), 0, 1, []vk.Viewport{{
		X:        float32(viewport.X),
		Y:        float32(viewport.Y),
		Width:    float32(viewport.W),
		Height:   float32(viewport.H),
		MinDepth: viewport.MinDepth,
		MaxDepth: viewport.MaxDepth,
	}})
}

func (b *nativeBackend) CmdSetScissor(buffer CommandBuffer, scissor common.Rect) {
	vk.CmdSetScissor(fetch[vk.CommandBuffer](b, uint64(buffer)), 0, 1, []vk.Rect2D{{
		Offset: vk.Offset2D{X: scissor.X, Y: scissor.Y},
		Extent: vk.Extent2D{Width: uint32(scissor.W), Height: uint32(scissor.H)},
	}})
}

func (b *nativeBackend) CmdSetBlendConstants(buffer CommandBuffer, blendFactor common.Color) {
	constants := [4]float32{blendFactor.R, blendFactor.G, blendFactor.B, blendFactor.A}
	vk.CmdSetBlendConstants(fetch[vk.CommandBuffer](b, uint64(buffer)), &constants)
}

func (b *nativeBackend) CmdSetStencilReference(buffer CommandBuffer, reference uint32) {
	vk.CmdSetStencilReference(fetch[vk.CommandBuffer](b, uint64(buffer)),
		vk.StencilFaceFlags(vk.StencilFrontAndBack), reference)
}

func (b *nativeBackend) CmdClearAttachments(buffer CommandBuffer, info ClearAttachmentsInfo) {
	var attachments []vk.ClearAttachment
	if info.Options&common.ClearOptionsTarget != 0 {
		var value vk.ClearValue
		value.SetColor([]float32{info.Color.X, info.Color.Y, info.Color.Z, info.Color.W})
		attachments = append(attachments, vk.ClearAttachment{
			AspectMask:      vk.ImageAspectFlags(vk.ImageAspectColorBit),
			ColorAttachment: 0,
			ClearValue:      value,
		})
	}
	if info.HasDepth && info.Options&(common.ClearOptionsDepth|common.ClearOptionsStencil) != 0 {
		var aspect vk.ImageAspectFlags
		if info.Options&common.ClearOptionsDepth != 0 {
			aspect |= vk.ImageAspectFlags(vk.ImageAspectDepthBit)
		}
		if info.Options&common.ClearOptionsStencil != 0 {
			aspect |= vk.ImageAspectFlags(vk.ImageAspectStencilBit)
		}
		var value vk.ClearValue
		value.SetDepthStencil(info.Depth, info.Stencil)
		attachments = append(attachments, vk.ClearAttachment{
			AspectMask: aspect,
			ClearValue: value,
		})
	}
	if len(attachments) == 0 {
		return
	}
	vk.CmdClearAttachments(fetch[vk.CommandBuffer](b, uint64(buffer)),
		uint32(len(attachments)), attachments, 1, []vk.ClearRect{{
			Rect: vk.Rect2D{
				Offset: vk.Offset2D{X: info.Rect.X, Y: info.Rect.Y},
				Extent: vk.Extent2D{Width: uint32(info.Rect.W), Height: uint32(info.Rect.H)},
			},
			LayerCount: 1,
		}})
}

func (b *nativeBackend) CmdDraw(buffer CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	vk.CmdDraw(fetch[vk.CommandBuffer](b, uint64(buffer)), vertexCount, instanceCount, firstVertex, firstInstance)
}

func (b *nativeBackend) CmdDrawIndexed(buffer CommandBuffer, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	vk.CmdDrawIndexed(fetch[vk.CommandBuffer](b, uint64(buffer)), indexCount, instanceCount, firstIndex, vertexOffset, firstInstance)
}

func (b *nativeBackend) CmdCopyBuffer(buffer CommandBuffer, src Buffer, srcOffset uint64, dst Buffer, dstOffset, size uint64) {
	vk.CmdCopyBuffer(fetch[vk.CommandBuffer](b, uint64(buffer)),
		fetch[vk.Buffer](b, uint64(src)), fetch[vk.Buffer](b, uint64(dst)),
		1, []vk.BufferCopy{{
			SrcOffset: vk.DeviceSize(srcOffset),
			DstOffset: vk.DeviceSize(dstOffset),
			Size:      vk.DeviceSize(size),
		}})
}

func vkBufferImageCopy(region BufferImageCopy) vk.BufferImageCopy {
	return vk.BufferImageCopy{
		BufferOffset: vk.DeviceSize(region.BufferOffset),
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:     vkAspect(region.Aspect),
			MipLevel:       region.MipLevel,
			BaseArrayLayer: region.BaseLayer,
			LayerCount:     region.LayerCount,
		},
		ImageOffset: vk.Offset3D{X: region.Offset[0], Y: region.Offset[1], Z: region.Offset[2]},
		ImageExtent: vk.Extent3D{
			Width:  region.Extent.Width,
			Height: region.Extent.Height,
			Depth:  region.Extent.Depth,
		},
	}
}

func (b *nativeBackend) CmdCopyBufferToImage(buffer CommandBuffer, src Buffer, dst Image, layout ImageLayout, region BufferImageCopy) {
	vk.CmdCopyBufferToImage(fetch[vk.CommandBuffer](b, uint64(buffer)),
		fetch[vk.Buffer](b, uint64(src)), fetch[vk.Image](b, uint64(dst)),
		vkLayout(layout), 1, []vk.BufferImageCopy{vkBufferImageCopy(region)})
}

func (b *nativeBackend) CmdCopyImageToBuffer(buffer CommandBuffer, src Image, layout ImageLayout, dst Buffer, region BufferImageCopy) {
	vk.CmdCopyImageToBuffer(fetch[vk.CommandBuffer](b, uint64(buffer)),
		fetch[vk.Image](b, uint64(src)), vkLayout(layout),
		fetch[vk.Buffer](b, uint64(dst)), 1, []vk.BufferImageCopy{vkBufferImageCopy(region)})
}

// layoutStageAccess derives the pipeline stage and access mask implied by an
// image layout, for barrier construction.
func layoutStageAccess(layout vk.ImageLayout) (vk.PipelineStageFlags, vk.AccessFlags) {
	switch layout {
	case vk.ImageLayoutTransferDstOptimal:
		return vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			vk.AccessFlags(vk.AccessTransferWriteBit)
	case vk.ImageLayoutTransferSrcOptimal:
		return vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			vk.AccessFlags(vk.AccessTransferReadBit)
	case vk.ImageLayoutShaderReadOnlyOptimal:
		return vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
			vk.AccessFlags(vk.AccessShaderReadBit)
	case vk.ImageLayoutColorAttachmentOptimal:
		return vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
			vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit)
	case vk.ImageLayoutDepthStencilAttachmentOptimal:
		return vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit),
			vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit)
	case vk.ImageLayoutPresentSrc:
		return vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit), 0
	default:
		return vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit), 0
	}
}

func (b *nativeBackend) CmdTransitionImageLayout(buffer CommandBuffer, image Image, aspect ImageAspectFlags, baseMip, mipCount, baseLayer, layerCount uint32, oldLayout, newLayout ImageLayout) {
	srcStage, srcAccess := layoutStageAccess(vkLayout(oldLayout))
	dstStage, dstAccess := layoutStageAccess(vkLayout(newLayout))
	vk.CmdPipelineBarrier(fetch[vk.CommandBuffer](b, uint64(buffer)),
		srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{{
			SType:               vk.StructureTypeImageMemoryBarrier,
			SrcAccessMask:       srcAccess,
			DstAccessMask:       dstAccess,
			OldLayout:           vkLayout(oldLayout),
			NewLayout:           vkLayout(newLayout),
			SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
			DstQueueFamilyIndex: vk.QueueFamilyIgnored,
			Image:               fetch[vk.Image](b, uint64(image)),
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vkAspect(aspect),
				BaseMipLevel:   baseMip,
				LevelCount:     mipCount,
				BaseArrayLayer: baseLayer,
				LayerCount:     layerCount,
			},
		}})
}

func (b *nativeBackend) CmdResolveImage(buffer CommandBuffer, src, dst Image, width, height uint32) {
	layers := vk.ImageSubresourceLayers{
		AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
		LayerCount: 1,
	}
	vk.CmdResolveImage(fetch[vk.CommandBuffer](b, uint64(buffer)),
		fetch[vk.Image](b, uint64(src)), vk.ImageLayoutTransferSrcOptimal,
		fetch[vk.Image](b, uint64(dst)), vk.ImageLayoutTransferDstOptimal,
		1, []vk.ImageResolve{{
			SrcSubresource: layers,
			DstSubresource: layers,
			Extent:         vk.Extent3D{Width: width, Height: height, Depth: 1},
		}})
}

func (b *nativeBackend) CmdBeginQuery(buffer CommandBuffer, pool QueryPool, index uint32) {
	vk.CmdBeginQuery(fetch[vk.CommandBuffer](b, uint64(buffer)),
		fetch[vk.QueryPool](b, uint64(pool)), index,
		vk.QueryControlFlags(vk.QueryControlPreciseBit))
}

func (b *nativeBackend) CmdEndQuery(buffer CommandBuffer, pool QueryPool, index uint32) {
	vk.CmdEndQuery(fetch[vk.CommandBuffer](b, uint64(buffer)),
		fetch[vk.QueryPool](b, uint64(pool)), index)
}

func (b *nativeBackend) CmdResetQueryPool(buffer CommandBuffer, pool QueryPool, index, count uint32) {
	vk.CmdResetQueryPool(fetch[vk.CommandBuffer](b, uint64(buffer)),
		fetch[vk.QueryPool](b, uint64(pool)), index, count)
}
