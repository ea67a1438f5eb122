package vulkan

import (
	"github.com/cockroachdb/errors"

	"github.com/RotatingArtDev/FNA3D/common"
	"github.com/RotatingArtDev/FNA3D/driver"
)

// textureData is one live texture: native image, its single device-local backing
// allocation, and the sampled view. layout tracks the image's current native
// layout across upload barriers.
type textureData struct {
	image  Image
	view   ImageView
	memory DeviceMemory

	format       common.SurfaceFormat
	nativeFormat Format
	width        int32
	height       int32
	depth        int32
	levelCount   int32
	layerCount   int32
	layout       ImageLayout

	renderTarget bool
	cube         bool
	is3D         bool
}

// createTexture builds image, memory and view in dependency order, rolling back
// partially created sub-resources in reverse on any failure.
func (r *renderer) createTexture(viewType ImageViewType, format common.SurfaceFormat, width, height, depth, levelCount int32, renderTarget bool) (driver.TextureHandle, error) {
	nativeFormat := nativeSurfaceFormat(format)
	if nativeFormat == FormatUndefined {
		return driver.TextureHandle{}, errors.Newf("unsupported surface format %d", format)
	}
	if width <= 0 || height <= 0 || depth <= 0 || levelCount <= 0 {
		return driver.TextureHandle{}, errors.Newf("invalid texture dimensions %dx%dx%d levels %d", width, height, depth, levelCount)
	}

	layers := uint32(1)
	imageDepth := uint32(depth)
	if viewType == ImageViewTypeCube {
		layers = 6
		imageDepth = 1
	}
	usage := ImageUsageSampled | ImageUsageTransferDst
	if renderTarget {
		usage |= ImageUsageColorAttachment | ImageUsageTransferSrc
	}

	image, err := r.backend.CreateImage(r.device, ImageInfo{
		ViewType:    viewType,
		Format:      nativeFormat,
		Extent:      Extent3D{Width: uint32(width), Height: uint32(height), Depth: imageDepth},
		MipLevels:   uint32(levelCount),
		ArrayLayers: layers,
		Samples:     1,
		Usage:       usage,
	})
	if err != nil {
		return driver.TextureHandle{}, errors.Wrap(err, "create image")
	}

	memory, err := r.allocateImageMemory(image)
	if err != nil {
		r.backend.DestroyImage(r.device, image)
		return driver.TextureHandle{}, err
	}

	view, err := r.backend.CreateImageView(r.device, ImageViewInfo{
		Image:      image,
		ViewType:   viewType,
		Format:     nativeFormat,
		Aspect:     AspectColor,
		MipCount:   uint32(levelCount),
		LayerCount: layers,
	})
	if err != nil {
		r.backend.FreeMemory(r.device, memory)
		r.backend.DestroyImage(r.device, image)
		return driver.TextureHandle{}, errors.Wrap(err, "create image view")
	}

	t := &textureData{
		image:        image,
		view:         view,
		memory:       memory,
		format:       format,
		nativeFormat: nativeFormat,
		width:        width,
		height:       height,
		depth:        depth,
		levelCount:   levelCount,
		layerCount:   int32(layers),
		layout:       LayoutUndefined,
		renderTarget: renderTarget,
		cube:         viewType == ImageViewTypeCube,
		is3D:         viewType == ImageViewType3D,
	}
	return driver.TextureHandle(r.textures.add(t)), nil
}

// destroyTextureData releases view before image before memory.
func (r *renderer) destroyTextureData(t *textureData) {
	if t.view != 0 {
		r.backend.DestroyImageView(r.device, t.view)
	}
	if t.image != 0 {
		r.backend.DestroyImage(r.device, t.image)
	}
	if t.memory != 0 {
		r.backend.FreeMemory(r.device, t.memory)
	}
}

// setTextureData stages data and records the transfer into the given subresource
// region, transitioning the image through the transfer layout and back to shader
// read.
func (r *renderer) setTextureData(t *textureData, x, y, z, w, h, d, level int32, layer uint32, data []byte) error {
	expected := surfaceFormatByteSize(t.format, w, h) * d
	if int32(len(data)) < expected {
		return errors.Newf("texture upload too small: got %d bytes, region needs %d", len(data), expected)
	}
	return r.withUploadCommands(func(cb CommandBuffer) error {
		src, srcOffset, err := r.stageUpload(data)
		if err != nil {
			return err
		}
		r.backend.CmdTransitionImageLayout(cb, t.image, AspectColor, 0, uint32(t.levelCount), 0, uint32(t.layerCount), t.layout, LayoutTransferDst)
		r.backend.CmdCopyBufferToImage(cb, src, t.image, LayoutTransferDst, BufferImageCopy{
			BufferOffset: srcOffset,
			Aspect:       AspectColor,
			MipLevel:     uint32(level),
			BaseLayer:    layer,
			LayerCount:   1,
			Offset:       [3]int32{x, y, z},
			Extent:       Extent3D{Width: uint32(w), Height: uint32(h), Depth: uint32(d)},
		})
		r.backend.CmdTransitionImageLayout(cb, t.image, AspectColor, 0, uint32(t.levelCount), 0, uint32(t.layerCount), LayoutTransferDst, LayoutShaderReadOnly)
		t.layout = LayoutShaderReadOnly
		return nil
	})
}

// CreateTexture2D creates a 2D sampled texture, optionally usable as a render target.
//
// Parameters:
//   - format: the abstract surface format
//   - width: the level-0 width in pixels
//   - height: the level-0 height in pixels
//   - levelCount: the mip level count
//   - isRenderTarget: when true, the texture also serves as a color attachment
//
// Returns:
//   - driver.TextureHandle: the created texture's handle
//   - error: nil on success
func (r *renderer) CreateTexture2D(format common.SurfaceFormat, width, height, levelCount int32, isRenderTarget bool) (driver.TextureHandle, error) {
	return r.createTexture(ImageViewType2D, format, width, height, 1, levelCount, isRenderTarget)
}

// CreateTexture3D creates a 3D sampled texture.
func (r *renderer) CreateTexture3D(format common.SurfaceFormat, width, height, depth, levelCount int32) (driver.TextureHandle, error) {
	return r.createTexture(ImageViewType3D, format, width, height, depth, levelCount, false)
}

// CreateTextureCube creates a cube texture of six size-by-size faces.
func (r *renderer) CreateTextureCube(format common.SurfaceFormat, size, levelCount int32, isRenderTarget bool) (driver.TextureHandle, error) {
	return r.createTexture(ImageViewTypeCube, format, size, size, 1, levelCount, isRenderTarget)
}

// AddDisposeTexture unregisters the texture, waits for the device to go idle and
// destroys its native handles. Any sampler slot still referencing the texture is
// cleared, and render-target framebuffers built on it are dropped.
func (r *renderer) AddDisposeTexture(texture driver.TextureHandle) error {
	t, ok := r.textures.remove(driver.Handle(texture))
	if !ok {
		return errors.New("dispose of unknown texture")
	}
	if err := r.disposeIdle(); err != nil {
		return err
	}
	for i := range r.samplers {
		if r.samplers[i].texture == texture {
			r.samplers[i] = textureSamplerSlot{}
		}
	}
	for i := range r.vertexSamplers {
		if r.vertexSamplers[i].texture == texture {
			r.vertexSamplers[i] = textureSamplerSlot{}
		}
	}
	r.dropTargetFramebuffers(t.view)
	r.destroyTextureData(t)
	return nil
}

func (r *renderer) SetTextureData2D(texture driver.TextureHandle, x, y, w, h, level int32, data []byte) error {
	entry, ok := r.textures.get(driver.Handle(texture))
	if !ok {
		return errors.New("set data on unknown texture")
	}
	return r.setTextureData(*entry, x, y, 0, w, h, 1, level, 0, data)
}

func (r *renderer) SetTextureData3D(texture driver.TextureHandle, x, y, z, w, h, d, level int32, data []byte) error {
	entry, ok := r.textures.get(driver.Handle(texture))
	if !ok {
		return errors.New("set data on unknown texture")
	}
	t := *entry
	if !t.is3D {
		return errors.New("3D upload to a non-3D texture")
	}
	return r.setTextureData(t, x, y, z, w, h, d, level, 0, data)
}

func (r *renderer) SetTextureDataCube(texture driver.TextureHandle, x, y, w, h int32, face common.CubeMapFace, level int32, data []byte) error {
	entry, ok := r.textures.get(driver.Handle(texture))
	if !ok {
		return errors.New("set data on unknown texture")
	}
	t := *entry
	if !t.cube {
		return errors.New("cube upload to a non-cube texture")
	}
	return r.setTextureData(t, x, y, 0, w, h, 1, level, uint32(face), data)
}

// GetTextureData2D reads back a texture region into data. Readback is fully
// synchronous: the device drains, the copy executes, and the function returns
// with the bytes in place.
func (r *renderer) GetTextureData2D(texture driver.TextureHandle, x, y, w, h, level int32, data []byte) error {
	entry, ok := r.textures.get(driver.Handle(texture))
	if !ok {
		return errors.New("get data on unknown texture")
	}
	t := *entry
	size := surfaceFormatByteSize(t.format, w, h)
	if int32(len(data)) < size {
		return errors.Newf("texture readback destination too small: got %d bytes, region needs %d", len(data), size)
	}

	readback, err := r.backend.CreateBuffer(r.device, BufferInfo{
		Size:  uint64(size),
		Usage: BufferUsageTransferDst,
	})
	if err != nil {
		return errors.Wrap(err, "create readback buffer")
	}
	memory, allocatedSize, err := r.allocateBufferMemory(readback, MemoryHostVisible|MemoryHostCoherent)
	if err != nil {
		r.backend.DestroyBuffer(r.device, readback)
		return err
	}
	release := func() {
		r.backend.DestroyBuffer(r.device, readback)
		r.backend.FreeMemory(r.device, memory)
	}
	mapped, err := r.backend.MapMemory(r.device, memory, allocatedSize)
	if err != nil {
		release()
		return errors.Wrap(err, "map readback buffer")
	}

	if err := r.backend.DeviceWaitIdle(r.device); err != nil {
		release()
		return errors.Wrap(err, "wait for device idle before readback")
	}
	frame := r.frames[r.frameIndex]
	cb, err := r.backend.AllocateCommandBuffer(r.device, frame.commandPool)
	if err != nil {
		release()
		return errors.Wrap(err, "allocate readback command buffer")
	}
	if err := r.backend.BeginCommandBuffer(cb); err != nil {
		release()
		return errors.Wrap(err, "begin readback command buffer")
	}
	r.backend.CmdTransitionImageLayout(cb, t.image, AspectColor, 0, uint32(t.levelCount), 0, uint32(t.layerCount), t.layout, LayoutTransferSrc)
	r.backend.CmdCopyImageToBuffer(cb, t.image, LayoutTransferSrc, readback, BufferImageCopy{
		Aspect:     AspectColor,
		MipLevel:   uint32(level),
		LayerCount: 1,
		Offset:     [3]int32{x, y, 0},
		Extent:     Extent3D{Width: uint32(w), Height: uint32(h), Depth: 1},
	})
	r.backend.CmdTransitionImageLayout(cb, t.image, AspectColor, 0, uint32(t.levelCount), 0, uint32(t.layerCount), LayoutTransferSrc, LayoutShaderReadOnly)
	if err := r.backend.EndCommandBuffer(cb); err != nil {
		release()
		return errors.Wrap(err, "end readback command buffer")
	}
	if err := r.backend.QueueSubmit(r.graphicsQueue, SubmitInfo{CommandBuffer: cb}); err != nil {
		release()
		return errors.Wrap(err, "submit readback")
	}
	if err := r.backend.DeviceWaitIdle(r.device); err != nil {
		release()
		return errors.Wrap(err, "wait for readback completion")
	}
	t.layout = LayoutShaderReadOnly

	copy(data, mapped[:size])
	release()
	return nil
}
