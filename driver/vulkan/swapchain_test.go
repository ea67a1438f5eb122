package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChooseSurfaceFormatPrefersExactMatch(t *testing.T) {
	assert := assert.New(t)

	formats := []SurfaceFormatEntry{
		{Format: FormatR8G8B8A8Unorm, ColorSpace: ColorSpaceSrgbNonlinear},
		{Format: FormatB8G8R8A8Unorm, ColorSpace: ColorSpaceOther},
		{Format: FormatB8G8R8A8Unorm, ColorSpace: ColorSpaceSrgbNonlinear},
	}
	chosen := chooseSurfaceFormat(formats)
	assert.Equal(FormatB8G8R8A8Unorm, chosen.Format)
	assert.Equal(ColorSpaceSrgbNonlinear, chosen.ColorSpace)
}

func TestChooseSurfaceFormatFallsBackToFirstReported(t *testing.T) {
	formats := []SurfaceFormatEntry{
		{Format: FormatR16G16B16A16Sfloat, ColorSpace: ColorSpaceOther},
		{Format: FormatR8G8B8A8Unorm, ColorSpace: ColorSpaceSrgbNonlinear},
	}
	assert.Equal(t, formats[0], chooseSurfaceFormat(formats))
}

func TestChoosePresentModeUpgradesToMailbox(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(PresentModeFifo, choosePresentMode([]PresentMode{PresentModeFifo}))
	assert.Equal(PresentModeFifo, choosePresentMode([]PresentMode{PresentModeImmediate, PresentModeFifoRelaxed}))
	assert.Equal(PresentModeMailbox, choosePresentMode([]PresentMode{PresentModeFifo, PresentModeMailbox}))
}

func TestChooseExtentFixedExtentWinsVerbatim(t *testing.T) {
	caps := SurfaceCapabilities{
		CurrentExtent:  Extent2D{Width: 1024, Height: 768},
		MinImageExtent: Extent2D{Width: 1, Height: 1},
		MaxImageExtent: Extent2D{Width: 640, Height: 480},
	}
	// Even outside the min/max range, the surface's fixed extent is used as is.
	assert.Equal(t, Extent2D{Width: 1024, Height: 768}, chooseExtent(caps, 800, 600))
}

func TestChooseExtentClampsIndependently(t *testing.T) {
	caps := SurfaceCapabilities{
		CurrentExtent:  Extent2D{Width: matchAnyExtent, Height: matchAnyExtent},
		MinImageExtent: Extent2D{Width: 200, Height: 200},
		MaxImageExtent: Extent2D{Width: 1000, Height: 1000},
	}
	assert.Equal(t, Extent2D{Width: 800, Height: 600}, chooseExtent(caps, 800, 600))
	assert.Equal(t, Extent2D{Width: 200, Height: 1000}, chooseExtent(caps, 100, 4000))
}

func TestSwapchainImageCountClampsToSurfaceMaximum(t *testing.T) {
	assert := assert.New(t)

	backend := newFakeBackend()
	backend.caps.MinImageCount = 2
	backend.caps.MaxImageCount = 2

	device, err := newTestDevice(backend)
	require.NoError(t, err)
	require.Len(t, backend.swapchainInfos, 1)
	assert.EqualValues(2, backend.swapchainInfos[0].MinImageCount)
	require.NoError(t, device.Destroy())
}

func TestSwapchainRequestsOneImageBeyondMinimum(t *testing.T) {
	backend := newFakeBackend()
	backend.caps.MinImageCount = 2
	backend.caps.MaxImageCount = 0 // unbounded

	device, err := newTestDevice(backend)
	require.NoError(t, err)
	require.Len(t, backend.swapchainInfos, 1)
	assert.EqualValues(t, 3, backend.swapchainInfos[0].MinImageCount)
	require.NoError(t, device.Destroy())
}

func TestRecreateSwapchainIsIdempotentAndBalanced(t *testing.T) {
	assert := assert.New(t)

	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	views := backend.liveCount("view")
	framebuffers := backend.liveCount("framebuffer")

	// Repeated recreation replaces the swapchain in place without accumulating
	// views, framebuffers or swapchain handles.
	for i := 0; i < 3; i++ {
		require.NoError(t, device.recreateSwapchain())
		assert.Equal(1, backend.liveCount("swapchain"))
		assert.Equal(views, backend.liveCount("view"))
		assert.Equal(framebuffers, backend.liveCount("framebuffer"))
	}
	assert.Equal(4, backend.callCount("CreateSwapchain"))

	require.NoError(t, device.Destroy())
	assert.Equal(0, backend.liveCount(""))
}

func TestRecreateSwapchainUsesDrawableSize(t *testing.T) {
	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	provider := device.params.DeviceWindowHandle.(*stubProvider)
	provider.width, provider.height = 320, 240
	require.NoError(t, device.recreateSwapchain())

	assert.Equal(t, Extent2D{Width: 320, Height: 240}, device.swapchain.extent)
	require.NoError(t, device.Destroy())
}
