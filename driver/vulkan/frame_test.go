package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RotatingArtDev/FNA3D/common"
)

func TestBeginFrameWaitsOnlyAfterSlotSubmission(t *testing.T) {
	assert := assert.New(t)

	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	// Fences start signaled; opening each fresh ring slot must not block.
	require.NoError(t, device.BeginFrame())
	assert.Equal(0, backend.callCount("WaitForFence"))

	for i := 1; i < maxFramesInFlight; i++ {
		require.NoError(t, device.SwapBuffers())
		assert.Equal(0, backend.callCount("WaitForFence"))
	}

	// The ring wraps to a submitted slot now; its fence must be waited out and
	// reset before reuse.
	require.NoError(t, device.SwapBuffers())
	assert.Equal(1, backend.callCount("WaitForFence"))
	assert.Equal(1, backend.callCount("ResetFence"))

	require.NoError(t, device.Destroy())
}

func TestFrameRingNeverWaitsOnAnUnsignaledFence(t *testing.T) {
	assert := assert.New(t)

	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	// The fake errors on any fence wait that real hardware would block on, so a
	// sustained frame loop proves every wait follows the slot's submission.
	loops := 3 * maxFramesInFlight
	require.NoError(t, device.BeginFrame())
	for i := 0; i < loops; i++ {
		require.NoError(t, device.SwapBuffers())
	}
	// The first ring lap opens fresh slots without waiting; every later begin
	// waits out exactly one prior submission.
	assert.Equal(loops-(maxFramesInFlight-1), backend.callCount("WaitForFence"))

	// Direct check of the instrument: a reset fence with no submission pending
	// is exactly the wait the ring must never issue.
	frame := device.frames[device.frameIndex]
	require.NoError(t, backend.ResetFence(device.device, frame.fence))
	assert.Error(backend.WaitForFence(device.device, frame.fence))
	require.NoError(t, backend.QueueSubmit(device.graphicsQueue, SubmitInfo{Fence: frame.fence}))

	require.NoError(t, device.Destroy())
}

func TestStaleAcquireRecreatesSwapchainAndSkipsFrame(t *testing.T) {
	assert := assert.New(t)

	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	firstSwapchain := device.swapchain.handle
	backend.acquireResults = []error{ErrOutOfDate}

	require.NoError(t, device.BeginFrame())
	assert.False(device.frameActive, "stale acquire must skip the frame")
	assert.Equal(2, backend.callCount("CreateSwapchain"))

	// The replacement chains the previous handle for native resource hand-off.
	infos := backend.swapchainInfos
	require.Len(t, infos, 2)
	assert.Equal(firstSwapchain, infos[1].OldSwapchain)
	assert.NotEqual(firstSwapchain, device.swapchain.handle)

	// Nothing was recorded for the skipped frame.
	assert.Equal(0, backend.callCount("BeginCommandBuffer"))

	// The next frame opens normally.
	require.NoError(t, device.BeginFrame())
	assert.True(device.frameActive)

	require.NoError(t, device.Destroy())
}

func TestStalePresentRecreatesSwapchainAndAdvancesRing(t *testing.T) {
	assert := assert.New(t)

	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	require.NoError(t, device.BeginFrame())
	backend.presentResults = []error{ErrSuboptimal}

	require.NoError(t, device.SwapBuffers())
	assert.Equal(1, device.frameIndex, "submitted frame advances the ring despite the stale present")
	assert.Equal(2, backend.callCount("CreateSwapchain"))
	assert.True(device.frameActive, "the next frame opens after the recreation")

	require.NoError(t, device.Destroy())
}

func TestSwapBuffersClosesClearOnlyFrameThroughBackbufferPass(t *testing.T) {
	assert := assert.New(t)

	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	require.NoError(t, device.BeginFrame())
	device.Clear(common.ClearOptionsTarget, common.Vec4{X: 1}, 1.0, 0)
	require.NoError(t, device.SwapBuffers())

	// A frame with no draws still runs the backbuffer pass so the image reaches
	// its presentable layout, applying the deferred clear on the way.
	pass := backend.callIndex("CmdBeginRenderPass", 0)
	clear := backend.callIndex("CmdClearAttachments", 0)
	end := backend.callIndex("CmdEndRenderPass", 0)
	submit := backend.callIndex("QueueSubmit", 0)
	present := backend.callIndex("QueuePresent", 0)

	require.NotEqual(t, -1, pass)
	assert.Less(pass, clear)
	assert.Less(clear, end)
	assert.Less(end, submit)
	assert.Less(submit, present)

	require.NoError(t, device.Destroy())
}

func TestBeginFrameIsIdempotentWithinAFrame(t *testing.T) {
	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	require.NoError(t, device.BeginFrame())
	acquires := backend.callCount("AcquireNextImage")
	require.NoError(t, device.BeginFrame())
	assert.Equal(t, acquires, backend.callCount("AcquireNextImage"))

	require.NoError(t, device.Destroy())
}
