package vulkan

import (
	"github.com/RotatingArtDev/FNA3D/common"
	"github.com/RotatingArtDev/FNA3D/driver"
)

// ResetBackbuffer applies new presentation parameters to the live device by
// rebuilding the swapchain in place. Resources, effects and bound state survive
// the reset.
func (r *renderer) ResetBackbuffer(params driver.PresentationParameters) error {
	if params.DeviceWindowHandle != nil {
		r.params.DeviceWindowHandle = params.DeviceWindowHandle
	}
	r.params.BackBufferWidth = params.BackBufferWidth
	r.params.BackBufferHeight = params.BackBufferHeight
	r.params.BackBufferFormat = params.BackBufferFormat
	r.params.DepthStencilFormat = params.DepthStencilFormat
	r.params.MultiSampleCount = params.MultiSampleCount
	r.params.PresentInterval = params.PresentInterval
	return r.recreateSwapchain()
}

func (r *renderer) GetBackbufferSize() (int32, int32) {
	return int32(r.swapchain.extent.Width), int32(r.swapchain.extent.Height)
}

func (r *renderer) GetBackbufferSurfaceFormat() common.SurfaceFormat {
	return r.params.BackBufferFormat
}

func (r *renderer) GetBackbufferDepthFormat() common.DepthFormat {
	return r.swapchain.depthFormat
}

func (r *renderer) GetBackbufferMultiSampleCount() int32 {
	return r.params.MultiSampleCount
}

// Compressed-format support is mandatory on this backend's baseline hardware.
func (r *renderer) SupportsDXT1() bool { return true }
func (r *renderer) SupportsS3TC() bool { return true }
func (r *renderer) SupportsBC7() bool  { return true }

func (r *renderer) SupportsHardwareInstancing() bool { return true }
func (r *renderer) SupportsNoOverwrite() bool        { return true }
func (r *renderer) SupportsSRGBRenderTargets() bool  { return true }

func (r *renderer) GetMaxTextureSlots() (int32, int32) {
	return maxTextureSamplers, maxVertexTextureSamplers
}

// GetMaxMultiSampleCount clamps the preferred sample count to what the device
// supports, capped at 8, rounding down to a power of two.
func (r *renderer) GetMaxMultiSampleCount(format common.SurfaceFormat, multiSampleCount int32) int32 {
	supported := r.deviceFeatures.MaxMultiSampleCount
	if supported > 8 {
		supported = 8
	}
	if multiSampleCount > supported {
		multiSampleCount = supported
	}
	for candidate := int32(8); candidate >= 1; candidate >>= 1 {
		if multiSampleCount >= candidate {
			return candidate
		}
	}
	return 0
}

// SetStringMarker labels the command stream for capture tools. Only surfaces in
// debug mode, as a log line.
func (r *renderer) SetStringMarker(text string) {
	if r.debugMode {
		r.logger.Debug("marker", "text", text)
	}
}
