package vulkan

import (
	"github.com/cockroachdb/errors"

	"github.com/RotatingArtDev/FNA3D/common"
	"github.com/RotatingArtDev/FNA3D/driver"
)

// renderbufferData is one live color or depth/stencil renderbuffer: a dedicated
// attachment image with its backing allocation and attachment view.
type renderbufferData struct {
	image  Image
	view   ImageView
	memory DeviceMemory

	width            int32
	height           int32
	multiSampleCount int32
	nativeFormat     Format
	depthFormat      common.DepthFormat
	isDepth          bool

	// resolveTexture is the texture a multisampled color renderbuffer resolves
	// into, nil for depth/stencil renderbuffers.
	resolveTexture driver.TextureHandle
}

func (r *renderer) genRenderbuffer(nativeFormat Format, aspect ImageAspectFlags, usage ImageUsageFlags, width, height, multiSampleCount int32) (*renderbufferData, driver.RenderbufferHandle, error) {
	if width <= 0 || height <= 0 {
		return nil, driver.RenderbufferHandle{}, errors.Newf("invalid renderbuffer dimensions %dx%d", width, height)
	}
	samples := common.Coalesce(multiSampleCount, 1)

	image, err := r.backend.CreateImage(r.device, ImageInfo{
		ViewType:    ImageViewType2D,
		Format:      nativeFormat,
		Extent:      Extent3D{Width: uint32(width), Height: uint32(height), Depth: 1},
		MipLevels:   1,
		ArrayLayers: 1,
		Samples:     samples,
		Usage:       usage,
	})
	if err != nil {
		return nil, driver.RenderbufferHandle{}, errors.Wrap(err, "create renderbuffer image")
	}
	memory, err := r.allocateImageMemory(image)
	if err != nil {
		r.backend.DestroyImage(r.device, image)
		return nil, driver.RenderbufferHandle{}, err
	}
	view, err := r.backend.CreateImageView(r.device, ImageViewInfo{
		Image:      image,
		ViewType:   ImageViewType2D,
		Format:     nativeFormat,
		Aspect:     aspect,
		MipCount:   1,
		LayerCount: 1,
	})
	if err != nil {
		r.backend.FreeMemory(r.device, memory)
		r.backend.DestroyImage(r.device, image)
		return nil, driver.RenderbufferHandle{}, errors.Wrap(err, "create renderbuffer view")
	}

	rb := &renderbufferData{
		image:            image,
		view:             view,
		memory:           memory,
		width:            width,
		height:           height,
		multiSampleCount: samples,
		nativeFormat:     nativeFormat,
	}
	return rb, driver.RenderbufferHandle(r.renderbuffers.add(rb)), nil
}

func (r *renderer) destroyRenderbufferData(rb *renderbufferData) {
	if rb.view != 0 {
		r.backend.DestroyImageView(r.device, rb.view)
	}
	if rb.image != 0 {
		r.backend.DestroyImage(r.device, rb.image)
	}
	if rb.memory != 0 {
		r.backend.FreeMemory(r.device, rb.memory)
	}
}

// GenColorRenderbuffer creates a color renderbuffer, optionally multisampled, for
// use as a render-target attachment that later resolves into texture.
func (r *renderer) GenColorRenderbuffer(width, height int32, format common.SurfaceFormat, multiSampleCount int32, texture driver.TextureHandle) (driver.RenderbufferHandle, error) {
	nativeFormat := nativeSurfaceFormat(format)
	if nativeFormat == FormatUndefined {
		return driver.RenderbufferHandle{}, errors.Newf("unsupported surface format %d", format)
	}
	rb, handle, err := r.genRenderbuffer(nativeFormat, AspectColor, ImageUsageColorAttachment|ImageUsageTransferSrc, width, height, multiSampleCount)
	if err != nil {
		return driver.RenderbufferHandle{}, err
	}
	rb.resolveTexture = texture
	return handle, nil
}

// GenDepthStencilRenderbuffer creates a depth/stencil renderbuffer.
func (r *renderer) GenDepthStencilRenderbuffer(width, height int32, format common.DepthFormat, multiSampleCount int32) (driver.RenderbufferHandle, error) {
	nativeFormat := nativeDepthFormat(format)
	if nativeFormat == FormatUndefined {
		return driver.RenderbufferHandle{}, errors.Newf("unsupported depth format %d", format)
	}
	rb, handle, err := r.genRenderbuffer(nativeFormat, depthAspect(format), ImageUsageDepthStencilAttachment, width, height, multiSampleCount)
	if err != nil {
		return driver.RenderbufferHandle{}, err
	}
	rb.isDepth = true
	rb.depthFormat = format
	return handle, nil
}

// AddDisposeRenderbuffer unregisters the renderbuffer, waits for the device to go
// idle and destroys its native handles.
func (r *renderer) AddDisposeRenderbuffer(renderbuffer driver.RenderbufferHandle) error {
	rb, ok := r.renderbuffers.remove(driver.Handle(renderbuffer))
	if !ok {
		return errors.New("dispose of unknown renderbuffer")
	}
	if err := r.disposeIdle(); err != nil {
		return err
	}
	r.dropTargetFramebuffers(rb.view)
	r.destroyRenderbufferData(rb)
	return nil
}
