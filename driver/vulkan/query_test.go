package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RotatingArtDev/FNA3D/driver"
)

func TestOcclusionQueryLifecycle(t *testing.T) {
	assert := assert.New(t)

	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	query, err := device.CreateQuery()
	require.NoError(t, err)

	require.NoError(t, device.BeginFrame())
	require.NoError(t, device.QueryBegin(query))
	assert.Equal(1, backend.callCount("CmdResetQueryPool"))
	assert.Equal(1, backend.callCount("CmdBeginQuery"))
	require.NoError(t, device.QueryEnd(query))
	assert.Equal(1, backend.callCount("CmdEndQuery"))
	require.NoError(t, device.SwapBuffers())

	complete, err := device.QueryComplete(query)
	require.NoError(t, err)
	assert.True(complete)
	count, err := device.QueryPixelCount(query)
	require.NoError(t, err)
	assert.Equal(int32(42), count)

	require.NoError(t, device.AddDisposeQuery(query))
	require.NoError(t, device.Destroy())
}

func TestQueryBeginRequiresActiveFrame(t *testing.T) {
	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	query, err := device.CreateQuery()
	require.NoError(t, err)
	assert.Error(t, device.QueryBegin(query))

	require.NoError(t, device.Destroy())
}

func TestQueryEndWithoutBeginFails(t *testing.T) {
	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	query, err := device.CreateQuery()
	require.NoError(t, err)
	require.NoError(t, device.BeginFrame())
	assert.Error(t, device.QueryEnd(query))

	require.NoError(t, device.SwapBuffers())
	require.NoError(t, device.Destroy())
}

func TestDisposedQuerySlotIsReused(t *testing.T) {
	assert := assert.New(t)

	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	first, err := device.CreateQuery()
	require.NoError(t, err)
	entry, ok := device.queries.get(driver.Handle(first))
	require.True(t, ok)
	firstIndex := (*entry).index
	require.NoError(t, device.AddDisposeQuery(first))

	second, err := device.CreateQuery()
	require.NoError(t, err)
	entry, ok = device.queries.get(driver.Handle(second))
	require.True(t, ok)
	assert.Equal(firstIndex, (*entry).index)

	require.NoError(t, device.AddDisposeQuery(second))
	require.NoError(t, device.Destroy())
}
