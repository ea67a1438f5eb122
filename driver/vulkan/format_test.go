package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RotatingArtDev/FNA3D/common"
)

func TestNativeSurfaceFormat(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(FormatR8G8B8A8Unorm, nativeSurfaceFormat(common.SurfaceFormatColor))
	assert.Equal(FormatBC1RGBAUnorm, nativeSurfaceFormat(common.SurfaceFormatDxt1))
	assert.Equal(FormatB8G8R8A8Unorm, nativeSurfaceFormat(common.SurfaceFormatColorBgraExt))
	assert.Equal(FormatUndefined, nativeSurfaceFormat(common.SurfaceFormat(-1)))
	assert.Equal(FormatUndefined, nativeSurfaceFormat(common.SurfaceFormat(1000)))
}

func TestNativeDepthFormatPromotesD24(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(FormatUndefined, nativeDepthFormat(common.DepthFormatNone))
	assert.Equal(FormatD16Unorm, nativeDepthFormat(common.DepthFormatD16))
	assert.Equal(FormatD24UnormS8Uint, nativeDepthFormat(common.DepthFormatD24))
	assert.Equal(FormatD24UnormS8Uint, nativeDepthFormat(common.DepthFormatD24S8))
}

func TestDepthAspect(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(AspectDepth, depthAspect(common.DepthFormatD16))
	assert.Equal(AspectDepth|AspectStencil, depthAspect(common.DepthFormatD24))
	assert.Equal(AspectDepth|AspectStencil, depthAspect(common.DepthFormatD24S8))
	assert.Equal(ImageAspectFlags(0), depthAspect(common.DepthFormatNone))
}

func TestSurfaceFormatByteSize(t *testing.T) {
	assert := assert.New(t)

	assert.EqualValues(4*4*4, surfaceFormatByteSize(common.SurfaceFormatColor, 4, 4))
	assert.EqualValues(64*64, surfaceFormatByteSize(common.SurfaceFormatAlpha8, 64, 64))
	assert.EqualValues(2*2*16, surfaceFormatByteSize(common.SurfaceFormatVector4, 2, 2))

	// Compressed formats count 4x4 blocks; partial blocks round up.
	assert.EqualValues(8, surfaceFormatByteSize(common.SurfaceFormatDxt1, 4, 4))
	assert.EqualValues(16, surfaceFormatByteSize(common.SurfaceFormatDxt5, 4, 4))
	assert.EqualValues(4*8, surfaceFormatByteSize(common.SurfaceFormatDxt1, 16, 4))
	assert.EqualValues(2*2*8, surfaceFormatByteSize(common.SurfaceFormatDxt1, 5, 5))
}
