package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RotatingArtDev/FNA3D/common"
)

func TestDynamicBufferWritesThroughPersistentMapping(t *testing.T) {
	assert := assert.New(t)

	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	buffer, err := device.GenVertexBuffer(true, common.BufferUsageNone, 64)
	require.NoError(t, err)

	payload := []byte{1, 2, 3, 4}
	require.NoError(t, device.SetVertexBufferData(buffer, 8, payload, common.SetDataOptionsNone))
	assert.Equal(0, backend.callCount("CmdCopyBuffer"), "dynamic writes bypass the transfer queue")

	readback := make([]byte, 4)
	require.NoError(t, device.GetVertexBufferData(buffer, 8, readback))
	assert.Equal(payload, readback)

	require.NoError(t, device.Destroy())
}

func TestStaticBufferUploadsOutsideFrameBracketWithIdleWaits(t *testing.T) {
	assert := assert.New(t)

	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	buffer, err := device.GenIndexBuffer(false, common.BufferUsageNone, 64)
	require.NoError(t, err)

	before := backend.callCount("DeviceWaitIdle")
	require.NoError(t, device.SetIndexBufferData(buffer, 0, []byte{1, 2, 3, 4}, common.SetDataOptionsNone))
	assert.Equal(1, backend.callCount("CmdCopyBuffer"))
	assert.Equal(before+2, backend.callCount("DeviceWaitIdle"), "frameless uploads wait before and after")

	require.NoError(t, device.Destroy())
}

func TestStaticBufferUploadInsideFrameRecordsIntoFrameBuffer(t *testing.T) {
	assert := assert.New(t)

	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	buffer, err := device.GenVertexBuffer(false, common.BufferUsageNone, 64)
	require.NoError(t, err)

	require.NoError(t, device.BeginFrame())
	before := backend.callCount("DeviceWaitIdle")
	require.NoError(t, device.SetVertexBufferData(buffer, 0, []byte{9, 8, 7}, common.SetDataOptionsNone))
	assert.Equal(1, backend.callCount("CmdCopyBuffer"))
	assert.Equal(before, backend.callCount("DeviceWaitIdle"), "in-frame uploads ride the frame submission")

	require.NoError(t, device.SwapBuffers())
	require.NoError(t, device.Destroy())
}

func TestBufferWriteBoundsAreValidated(t *testing.T) {
	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	buffer, err := device.GenVertexBuffer(true, common.BufferUsageNone, 16)
	require.NoError(t, err)

	assert.Error(t, device.SetVertexBufferData(buffer, 12, []byte{0, 0, 0, 0, 0}, common.SetDataOptionsNone))
	assert.Error(t, device.SetVertexBufferData(buffer, -1, []byte{0}, common.SetDataOptionsNone))
	assert.Error(t, device.GetVertexBufferData(buffer, 16, []byte{0}))

	require.NoError(t, device.Destroy())
}

func TestStaticBufferReadbackIsRejected(t *testing.T) {
	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	buffer, err := device.GenVertexBuffer(false, common.BufferUsageNone, 16)
	require.NoError(t, err)
	assert.Error(t, device.GetVertexBufferData(buffer, 0, make([]byte, 4)))

	require.NoError(t, device.Destroy())
}

func TestOversizedUploadUsesTransientBufferRetiredOnSlotReuse(t *testing.T) {
	assert := assert.New(t)

	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	buffer, err := device.GenVertexBuffer(false, common.BufferUsageNone, stagingBufferSize+16)
	require.NoError(t, err)

	require.NoError(t, device.BeginFrame())
	buffers := backend.callCount("CreateBuffer")
	payload := make([]byte, stagingBufferSize+16)
	require.NoError(t, device.SetVertexBufferData(buffer, 0, payload, common.SetDataOptionsNone))
	assert.Equal(buffers+1, backend.callCount("CreateBuffer"), "payloads beyond the arena get a dedicated buffer")

	// Cycling the ring back to this slot frees the transient buffer.
	destroys := backend.callCount("DestroyBuffer")
	for i := 0; i < maxFramesInFlight; i++ {
		require.NoError(t, device.SwapBuffers())
	}
	assert.Equal(destroys+1, backend.callCount("DestroyBuffer"))

	require.NoError(t, device.Destroy())
}
