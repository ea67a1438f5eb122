package vulkan

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RotatingArtDev/FNA3D/common"
)

func TestCreateDeviceBootstrap(t *testing.T) {
	assert := assert.New(t)

	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	assert.Equal(1, backend.liveCount("instance"))
	assert.Equal(1, backend.liveCount("surface"))
	assert.Equal(1, backend.liveCount("device"))
	assert.Equal(1, backend.liveCount("swapchain"))
	assert.Equal(1, backend.liveCount("querypool"))
	assert.Equal(1, backend.liveCount("pipelinecache"))

	// One view and framebuffer per presentable image, plus the shared depth view.
	assert.Equal(backend.imageCount+1, backend.liveCount("view"))
	assert.Equal(backend.imageCount, backend.liveCount("framebuffer"))

	// Frame ring slots carry a command pool, fence, semaphore pair, staging
	// buffer and descriptor pool each.
	assert.Equal(maxFramesInFlight, backend.liveCount("commandpool"))
	assert.Equal(maxFramesInFlight, backend.liveCount("fence"))
	assert.Equal(2*maxFramesInFlight, backend.liveCount("semaphore"))
	assert.Equal(maxFramesInFlight, backend.liveCount("buffer"))
	assert.Equal(maxFramesInFlight, backend.liveCount("descriptorpool"))

	require.NoError(t, device.Destroy())
}

func TestCreateDeviceRollsBackOnFailure(t *testing.T) {
	steps := []string{
		"CreateInstance",
		"CreateSurface",
		"CreateLogicalDevice",
		"CreateSwapchain",
		"CreateFramebuffer",
		"CreateCommandPool",
		"CreateFence",
		"CreateQueryPool",
	}
	for _, step := range steps {
		t.Run(step, func(t *testing.T) {
			backend := newFakeBackend()
			backend.failures[step] = errors.New("forced failure")

			_, err := newTestDevice(backend)
			require.Error(t, err)
			assert.Equal(t, 0, backend.liveCount(""), "handles leaked past rollback: %v", backend.live)
		})
	}
}

func TestDestroyWaitsIdleOnceAndReleasesEverything(t *testing.T) {
	assert := assert.New(t)

	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	// Leave some live resources so teardown has real work to do.
	_, err = device.GenVertexBuffer(true, common.BufferUsageNone, 1024)
	require.NoError(t, err)
	_, err = device.CreateTexture2D(common.SurfaceFormatColor, 64, 64, 1, false)
	require.NoError(t, err)

	before := backend.callCount("DeviceWaitIdle")
	require.NoError(t, device.Destroy())
	assert.Equal(before+1, backend.callCount("DeviceWaitIdle"))
	assert.Equal(0, backend.liveCount(""), "handles leaked past teardown: %v", backend.live)
}

func TestDestroyTeardownOrder(t *testing.T) {
	assert := assert.New(t)

	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	mark := len(backend.calls)
	require.NoError(t, device.Destroy())

	idle := backend.callIndex("DeviceWaitIdle", mark)
	commandPool := backend.callIndex("DestroyCommandPool", mark)
	swapchain := backend.callIndex("DestroySwapchain", mark)
	pipelineCache := backend.callIndex("DestroyPipelineCache", mark)
	logicalDevice := backend.callIndex("DestroyLogicalDevice", mark)
	surface := backend.callIndex("DestroySurface", mark)
	instance := backend.callIndex("DestroyInstance", mark)

	// Idle first, then frame ring, swapchain, pipeline cache, device, surface,
	// instance.
	assert.Less(idle, commandPool)
	assert.Less(commandPool, swapchain)
	assert.Less(swapchain, pipelineCache)
	assert.Less(pipelineCache, logicalDevice)
	assert.Less(logicalDevice, surface)
	assert.Less(surface, instance)
}

func TestDisposeWaitsIdleExactlyOnce(t *testing.T) {
	assert := assert.New(t)

	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	buffer, err := device.GenVertexBuffer(false, common.BufferUsageNone, 256)
	require.NoError(t, err)

	before := backend.callCount("DeviceWaitIdle")
	require.NoError(t, device.AddDisposeVertexBuffer(buffer))
	assert.Equal(before+1, backend.callCount("DeviceWaitIdle"))

	// The handle is dead now; a second dispose fails without another idle wait.
	require.Error(t, device.AddDisposeVertexBuffer(buffer))
	assert.Equal(before+1, backend.callCount("DeviceWaitIdle"))

	require.NoError(t, device.Destroy())
}

func TestFindQueueFamiliesLastMatchWinsAndStopsEarly(t *testing.T) {
	assert := assert.New(t)

	backend := newFakeBackend()
	backend.families = []QueueFamily{
		{Flags: QueueGraphics, Count: 1},
		{Flags: QueueGraphics, Count: 1},
		{Flags: QueueGraphics, Count: 1},
		{Flags: QueueGraphics, Count: 1},
	}
	backend.presentSupport = []bool{false, false, true, true}

	device, err := newTestDevice(backend)
	require.NoError(t, err)

	// Every earlier graphics family is overwritten by the later one, and the
	// scan halts once a presenting family lands, never reaching family 3.
	assert.EqualValues(2, device.graphicsFamily)
	assert.EqualValues(2, device.presentFamily)
	assert.Equal(3, backend.callCount("SurfaceSupport"))

	require.NoError(t, device.Destroy())
}

func TestFindQueueFamiliesSplitsGraphicsAndPresent(t *testing.T) {
	assert := assert.New(t)

	backend := newFakeBackend()
	backend.families = []QueueFamily{
		{Flags: QueueGraphics, Count: 1},
		{Flags: QueueCompute, Count: 1},
		{Flags: QueueGraphics, Count: 1},
	}
	backend.presentSupport = []bool{false, true, false}

	device, err := newTestDevice(backend)
	require.NoError(t, err)

	// Graphics keeps advancing past the presenting compute family.
	assert.EqualValues(2, device.graphicsFamily)
	assert.EqualValues(1, device.presentFamily)

	require.NoError(t, device.Destroy())
}

func TestFindQueueFamiliesFailsWithoutPresentSupport(t *testing.T) {
	backend := newFakeBackend()
	backend.presentSupport = []bool{false}

	_, err := newTestDevice(backend)
	require.Error(t, err)
	assert.Equal(t, 0, backend.liveCount(""), "handles leaked past rollback: %v", backend.live)
}

func TestSelectPhysicalDevicePrefersDiscrete(t *testing.T) {
	backend := newFakeBackend()
	backend.deviceType = DeviceTypeIntegratedGPU

	device, err := newTestDevice(backend)
	require.NoError(t, err)
	assert.Equal(t, "Fake GPU", device.deviceProperties.Name)
	assert.Equal(t, DeviceTypeIntegratedGPU, device.deviceProperties.DeviceType)
	require.NoError(t, device.Destroy())
}

func TestGetMaxMultiSampleCountClampsToDeviceLimit(t *testing.T) {
	assert := assert.New(t)

	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	assert.EqualValues(8, device.GetMaxMultiSampleCount(common.SurfaceFormatColor, 16))
	assert.EqualValues(4, device.GetMaxMultiSampleCount(common.SurfaceFormatColor, 4))
	// Non-power-of-two requests round down.
	assert.EqualValues(4, device.GetMaxMultiSampleCount(common.SurfaceFormatColor, 7))

	require.NoError(t, device.Destroy())
}
