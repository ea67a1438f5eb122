package vulkan

import (
	"github.com/RotatingArtDev/FNA3D/common"
)

// surfaceFormatToNative maps every abstract surface format to the native image
// format the driver stores it as, indexed by common.SurfaceFormat.
var surfaceFormatToNative = [...]Format{
	common.SurfaceFormatColor:           FormatR8G8B8A8Unorm,
	common.SurfaceFormatBgr565:          FormatB5G6R5Unorm,
	common.SurfaceFormatBgra5551:        FormatB5G5R5A1Unorm,
	common.SurfaceFormatBgra4444:        FormatB4G4R4A4Unorm,
	common.SurfaceFormatDxt1:            FormatBC1RGBAUnorm,
	common.SurfaceFormatDxt3:            FormatBC2Unorm,
	common.SurfaceFormatDxt5:            FormatBC3Unorm,
	common.SurfaceFormatNormalizedByte2: FormatR8G8Snorm,
	common.SurfaceFormatNormalizedByte4: FormatR8G8B8A8Snorm,
	common.SurfaceFormatRgba1010102:     FormatA2R10G10B10Unorm,
	common.SurfaceFormatRg32:            FormatR16G16Unorm,
	common.SurfaceFormatRgba64:          FormatR16G16B16A16Unorm,
	common.SurfaceFormatAlpha8:          FormatR8Unorm,
	common.SurfaceFormatSingle:          FormatR32Sfloat,
	common.SurfaceFormatVector2:         FormatR32G32Sfloat,
	common.SurfaceFormatVector4:         FormatR32G32B32A32Sfloat,
	common.SurfaceFormatHalfSingle:      FormatR16Sfloat,
	common.SurfaceFormatHalfVector2:     FormatR16G16Sfloat,
	common.SurfaceFormatHalfVector4:     FormatR16G16B16A16Sfloat,
	common.SurfaceFormatHdrBlendable:    FormatR16G16B16A16Sfloat,
	common.SurfaceFormatColorBgraExt:    FormatB8G8R8A8Unorm,
	common.SurfaceFormatColorSrgbExt:    FormatR8G8B8A8Srgb,
}

// depthFormatToNative maps every abstract depth format to its native format,
// indexed by common.DepthFormat. D24 promotes to the combined depth/stencil
// format; plain 24-bit depth has no dedicated native format here.
var depthFormatToNative = [...]Format{
	common.DepthFormatNone:  FormatUndefined,
	common.DepthFormatD16:   FormatD16Unorm,
	common.DepthFormatD24:   FormatD24UnormS8Uint,
	common.DepthFormatD24S8: FormatD24UnormS8Uint,
}

func nativeSurfaceFormat(format common.SurfaceFormat) Format {
	if int(format) < 0 || int(format) >= len(surfaceFormatToNative) {
		return FormatUndefined
	}
	return surfaceFormatToNative[format]
}

func nativeDepthFormat(format common.DepthFormat) Format {
	if int(format) < 0 || int(format) >= len(depthFormatToNative) {
		return FormatUndefined
	}
	return depthFormatToNative[format]
}

// depthAspect returns the aspect mask a depth format's views and barriers use.
func depthAspect(format common.DepthFormat) ImageAspectFlags {
	switch format {
	case common.DepthFormatD24, common.DepthFormatD24S8:
		return AspectDepth | AspectStencil
	case common.DepthFormatD16:
		return AspectDepth
	default:
		return 0
	}
}

// blockCompressed reports whether the format stores 4x4 texel blocks.
func blockCompressed(format common.SurfaceFormat) bool {
	switch format {
	case common.SurfaceFormatDxt1, common.SurfaceFormatDxt3, common.SurfaceFormatDxt5:
		return true
	default:
		return false
	}
}

// surfaceFormatByteSize returns the byte size of a w by h region of the format,
// honoring 4x4 block layout for the compressed formats.
func surfaceFormatByteSize(format common.SurfaceFormat, w, h int32) int32 {
	if blockCompressed(format) {
		blockSize := int32(16)
		if format == common.SurfaceFormatDxt1 {
			blockSize = 8
		}
		blocksWide := (w + 3) / 4
		blocksHigh := (h + 3) / 4
		return blocksWide * blocksHigh * blockSize
	}
	var perPixel int32
	switch format {
	case common.SurfaceFormatAlpha8:
		perPixel = 1
	case common.SurfaceFormatBgr565, common.SurfaceFormatBgra5551,
		common.SurfaceFormatBgra4444, common.SurfaceFormatNormalizedByte2,
		common.SurfaceFormatHalfSingle:
		perPixel = 2
	case common.SurfaceFormatRgba64, common.SurfaceFormatVector2,
		common.SurfaceFormatHalfVector4, common.SurfaceFormatHdrBlendable:
		perPixel = 8
	case common.SurfaceFormatVector4:
		perPixel = 16
	default:
		perPixel = 4
	}
	return w * h * perPixel
}
