package vulkan

import (
	"github.com/cockroachdb/errors"

	"github.com/RotatingArtDev/FNA3D/common"
)

// matchAnyExtent is the surface capability sentinel meaning "the surface takes
// whatever extent the swapchain requests".
const matchAnyExtent = 0xFFFFFFFF

// swapchainData is the presentable image set and its derived per-image state.
// Recreated in place on surface staleness; a recreation retires every image index
// acquired from the previous handle.
type swapchainData struct {
	handle       Swapchain
	format       Format
	colorSpace   ColorSpace
	extent       Extent2D
	images       []Image
	views        []ImageView
	framebuffers []Framebuffer
	renderPass   RenderPass

	depthFormat common.DepthFormat
	depthImage  Image
	depthMemory DeviceMemory
	depthView   ImageView

	// currentImage is the index acquired for the frame being recorded. Only
	// meaningful while a frame is active.
	currentImage uint32
}

// chooseSurfaceFormat scans for an exact (32-bit BGRA unorm, sRGB-nonlinear)
// match; absent that it falls back to the first format the driver reported,
// verbatim. The fallback is best effort, not an error.
func chooseSurfaceFormat(formats []SurfaceFormatEntry) SurfaceFormatEntry {
	for _, entry := range formats {
		if entry.Format == FormatB8G8R8A8Unorm && entry.ColorSpace == ColorSpaceSrgbNonlinear {
			return entry
		}
	}
	return formats[0]
}

// choosePresentMode defaults to FIFO, which every surface supports, and upgrades
// to mailbox only when the surface lists it.
func choosePresentMode(modes []PresentMode) PresentMode {
	for _, mode := range modes {
		if mode == PresentModeMailbox {
			return mode
		}
	}
	return PresentModeFifo
}

// chooseExtent resolves the swapchain extent: a fixed current extent reported by
// the surface wins verbatim over the caller's request; otherwise the requested
// dimensions clamp independently into the surface's supported range.
func chooseExtent(caps SurfaceCapabilities, width, height int32) Extent2D {
	if caps.CurrentExtent.Width != matchAnyExtent {
		return caps.CurrentExtent
	}
	return Extent2D{
		Width:  common.Clamp(uint32(width), caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: common.Clamp(uint32(height), caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// createSwapchain builds or rebuilds the swapchain for the requested dimensions,
// replacing r.swapchain in place. Re-callable at any frame boundary; the previous
// handle is chained as OldSwapchain so the native driver can hand off resources,
// then retired together with its views and framebuffers.
func (r *renderer) createSwapchain(width, height int32) error {
	caps, err := r.backend.SurfaceCapabilities(r.physicalDevice, r.surface)
	if err != nil {
		return errors.Wrap(err, "query surface capabilities")
	}
	formats, err := r.backend.SurfaceFormats(r.physicalDevice, r.surface)
	if err != nil {
		return errors.Wrap(err, "query surface formats")
	}
	if len(formats) == 0 {
		return errors.New("surface reports no formats")
	}
	modes, err := r.backend.SurfacePresentModes(r.physicalDevice, r.surface)
	if err != nil {
		return errors.Wrap(err, "query surface present modes")
	}
	if len(modes) == 0 {
		return errors.New("surface reports no present modes")
	}

	format := chooseSurfaceFormat(formats)
	mode := choosePresentMode(modes)
	extent := chooseExtent(caps, width, height)

	// One image beyond the minimum keeps the CPU a frame ahead while the GPU
	// drains. MaxImageCount of zero means unbounded.
	imageCount := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && imageCount > caps.MaxImageCount {
		imageCount = caps.MaxImageCount
	}

	var oldSwapchain Swapchain
	if r.swapchain != nil {
		oldSwapchain = r.swapchain.handle
	}

	handle, err := r.backend.CreateSwapchain(r.device, SwapchainInfo{
		Surface:       r.surface,
		MinImageCount: imageCount,
		Format:        format.Format,
		ColorSpace:    format.ColorSpace,
		Extent:        extent,
		Usage:         ImageUsageColorAttachment | ImageUsageTransferDst,
		PreTransform:  caps.CurrentTransform,
		PresentMode:   mode,
		OldSwapchain:  oldSwapchain,
	})
	if err != nil {
		return errors.Wrap(err, "create swapchain")
	}

	// The old swapchain handle was consumed as OldSwapchain; its views and
	// framebuffers are ours to release now that the replacement exists.
	if r.swapchain != nil {
		r.releaseSwapchainImages(r.swapchain)
		r.backend.DestroySwapchain(r.device, r.swapchain.handle)
		r.swapchain = nil
	}

	images, err := r.backend.SwapchainImages(r.device, handle)
	if err != nil {
		r.backend.DestroySwapchain(r.device, handle)
		return errors.Wrap(err, "query swapchain images")
	}

	views := make([]ImageView, 0, len(images))
	for _, image := range images {
		view, err := r.backend.CreateImageView(r.device, ImageViewInfo{
			Image:      image,
			ViewType:   ImageViewType2D,
			Format:     format.Format,
			Aspect:     AspectColor,
			MipCount:   1,
			LayerCount: 1,
		})
		if err != nil {
			for _, created := range views {
				r.backend.DestroyImageView(r.device, created)
			}
			r.backend.DestroySwapchain(r.device, handle)
			return errors.Wrap(err, "create swapchain image view")
		}
		views = append(views, view)
	}

	sc := &swapchainData{
		handle:     handle,
		format:     format.Format,
		colorSpace: format.ColorSpace,
		extent:     extent,
		images:     images,
		views:      views,
	}

	release := func() {
		r.releaseSwapchainImages(sc)
		r.backend.DestroySwapchain(r.device, handle)
	}

	if r.params.DepthStencilFormat != common.DepthFormatNone {
		if err := r.createSwapchainDepthBuffer(sc); err != nil {
			release()
			return err
		}
	}

	pass, err := r.renderPassFor(passKey{
		colorFormat:  format.Format,
		depthFormat:  nativeDepthFormat(sc.depthFormat),
		presentAfter: true,
	})
	if err != nil {
		release()
		return err
	}
	sc.renderPass = pass

	sc.framebuffers = make([]Framebuffer, 0, len(views))
	for _, view := range views {
		attachments := []ImageView{view}
		if sc.depthView != 0 {
			attachments = append(attachments, sc.depthView)
		}
		framebuffer, err := r.backend.CreateFramebuffer(r.device, FramebufferInfo{
			RenderPass:  pass,
			Attachments: attachments,
			Extent:      extent,
		})
		if err != nil {
			release()
			return errors.Wrap(err, "create swapchain framebuffer")
		}
		sc.framebuffers = append(sc.framebuffers, framebuffer)
	}

	r.swapchain = sc
	if r.debugMode {
		r.logger.Debug("swapchain created",
			"width", extent.Width,
			"height", extent.Height,
			"images", len(images),
			"format", format.Format,
			"presentMode", mode,
		)
	}
	return nil
}

// createSwapchainDepthBuffer builds the shared depth/stencil attachment backing
// every swapchain framebuffer.
func (r *renderer) createSwapchainDepthBuffer(sc *swapchainData) error {
	depthFormat := r.params.DepthStencilFormat
	image, err := r.backend.CreateImage(r.device, ImageInfo{
		ViewType:    ImageViewType2D,
		Format:      nativeDepthFormat(depthFormat),
		Extent:      Extent3D{Width: sc.extent.Width, Height: sc.extent.Height, Depth: 1},
		MipLevels:   1,
		ArrayLayers: 1,
		Samples:     1,
		Usage:       ImageUsageDepthStencilAttachment,
	})
	if err != nil {
		return errors.Wrap(err, "create depth image")
	}
	memory, err := r.allocateImageMemory(image)
	if err != nil {
		r.backend.DestroyImage(r.device, image)
		return err
	}
	view, err := r.backend.CreateImageView(r.device, ImageViewInfo{
		Image:      image,
		ViewType:   ImageViewType2D,
		Format:     nativeDepthFormat(depthFormat),
		Aspect:     depthAspect(depthFormat),
		MipCount:   1,
		LayerCount: 1,
	})
	if err != nil {
		r.backend.FreeMemory(r.device, memory)
		r.backend.DestroyImage(r.device, image)
		return errors.Wrap(err, "create depth image view")
	}
	sc.depthFormat = depthFormat
	sc.depthImage = image
	sc.depthMemory = memory
	sc.depthView = view
	return nil
}

// releaseSwapchainImages destroys the per-image state of sc (framebuffers, views,
// depth buffer) but not the swapchain handle itself.
func (r *renderer) releaseSwapchainImages(sc *swapchainData) {
	for _, framebuffer := range sc.framebuffers {
		r.backend.DestroyFramebuffer(r.device, framebuffer)
	}
	sc.framebuffers = nil
	if sc.depthView != 0 {
		r.backend.DestroyImageView(r.device, sc.depthView)
		sc.depthView = 0
	}
	if sc.depthImage != 0 {
		r.backend.DestroyImage(r.device, sc.depthImage)
		sc.depthImage = 0
	}
	if sc.depthMemory != 0 {
		r.backend.FreeMemory(r.device, sc.depthMemory)
		sc.depthMemory = 0
	}
	for _, view := range sc.views {
		r.backend.DestroyImageView(r.device, view)
	}
	sc.views = nil
	sc.images = nil
}

// destroySwapchain releases the swapchain and all per-image state. Views go before
// the handle.
func (r *renderer) destroySwapchain() {
	if r.swapchain == nil {
		return
	}
	r.releaseSwapchainImages(r.swapchain)
	r.backend.DestroySwapchain(r.device, r.swapchain.handle)
	r.swapchain = nil
}

// recreateSwapchain rebuilds the swapchain at the current drawable size in
// response to surface staleness.
func (r *renderer) recreateSwapchain() error {
	width, height := r.params.BackBufferWidth, r.params.BackBufferHeight
	if r.params.DeviceWindowHandle != nil {
		width, height = r.params.DeviceWindowHandle.DrawableSize()
	}
	return r.createSwapchain(width, height)
}
