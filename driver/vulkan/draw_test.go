package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RotatingArtDev/FNA3D/common"
	"github.com/RotatingArtDev/FNA3D/driver"
)

func testEffectCode() driver.EffectCode {
	return driver.EffectCode{
		VertexShader:        []uint32{0x07230203, 1, 2, 3},
		FragmentShader:      []uint32{0x07230203, 4, 5, 6},
		VertexUniformSize:   64,
		FragmentUniformSize: 16,
	}
}

func testVertexBinding(buffer driver.BufferHandle) driver.VertexBufferBinding {
	return driver.VertexBufferBinding{
		Buffer: buffer,
		Declaration: common.VertexDeclaration{
			Stride: 24,
			Elements: []common.VertexElement{
				{Offset: 0, Format: common.VertexElementFormatVector3, Usage: common.VertexElementUsagePosition},
				{Offset: 12, Format: common.VertexElementFormatVector3, Usage: common.VertexElementUsageNormal},
			},
		},
	}
}

func TestDrawPrimitivesRecordsDrawAndCompilesPipelineOnce(t *testing.T) {
	assert := assert.New(t)

	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	effect, err := device.CreateEffect(testEffectCode())
	require.NoError(t, err)
	buffer, err := device.GenVertexBuffer(true, common.BufferUsageNone, 24*3)
	require.NoError(t, err)

	require.NoError(t, device.BeginFrame())
	require.NoError(t, device.ApplyEffect(effect, 0))
	require.NoError(t, device.ApplyVertexBufferBindings([]driver.VertexBufferBinding{testVertexBinding(buffer)}, true, 0))

	require.NoError(t, device.DrawPrimitives(common.PrimitiveTypeTriangleList, 0, 1))
	assert.Equal(1, backend.callCount("CmdDraw"))
	assert.Equal(1, backend.callCount("CreateGraphicsPipeline"))

	// An identical second draw reuses the cached pipeline without rebinding it.
	require.NoError(t, device.DrawPrimitives(common.PrimitiveTypeTriangleList, 0, 1))
	assert.Equal(2, backend.callCount("CmdDraw"))
	assert.Equal(1, backend.callCount("CreateGraphicsPipeline"))
	assert.Equal(1, backend.callCount("CmdBindPipeline"))

	require.NoError(t, device.SwapBuffers())
	require.NoError(t, device.Destroy())
}

func TestTopologyChangeCompilesANewPipeline(t *testing.T) {
	assert := assert.New(t)

	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	effect, err := device.CreateEffect(testEffectCode())
	require.NoError(t, err)
	buffer, err := device.GenVertexBuffer(true, common.BufferUsageNone, 24*4)
	require.NoError(t, err)

	require.NoError(t, device.BeginFrame())
	require.NoError(t, device.ApplyEffect(effect, 0))
	require.NoError(t, device.ApplyVertexBufferBindings([]driver.VertexBufferBinding{testVertexBinding(buffer)}, true, 0))

	require.NoError(t, device.DrawPrimitives(common.PrimitiveTypeTriangleList, 0, 1))
	require.NoError(t, device.DrawPrimitives(common.PrimitiveTypeLineList, 0, 1))
	assert.Equal(2, backend.callCount("CreateGraphicsPipeline"))

	// Switching back hits the cache.
	require.NoError(t, device.DrawPrimitives(common.PrimitiveTypeTriangleList, 0, 1))
	assert.Equal(2, backend.callCount("CreateGraphicsPipeline"))

	require.NoError(t, device.SwapBuffers())
	require.NoError(t, device.Destroy())
}

func TestDrawWithoutEffectFails(t *testing.T) {
	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	require.NoError(t, device.BeginFrame())
	assert.Error(t, device.DrawPrimitives(common.PrimitiveTypeTriangleList, 0, 1))

	require.NoError(t, device.SwapBuffers())
	require.NoError(t, device.Destroy())
}

func TestDrawOutsideFrameFails(t *testing.T) {
	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	effect, err := device.CreateEffect(testEffectCode())
	require.NoError(t, err)
	require.NoError(t, device.ApplyEffect(effect, 0))
	assert.Error(t, device.DrawPrimitives(common.PrimitiveTypeTriangleList, 0, 1))

	require.NoError(t, device.Destroy())
}

func TestCreateEffectRejectsMissingStages(t *testing.T) {
	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	_, err = device.CreateEffect(driver.EffectCode{VertexShader: []uint32{1}})
	assert.Error(t, err)
	_, err = device.CreateEffect(driver.EffectCode{FragmentShader: []uint32{1}})
	assert.Error(t, err)

	require.NoError(t, device.Destroy())
}

func TestDisposeEffectDropsItsPipelines(t *testing.T) {
	assert := assert.New(t)

	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	effect, err := device.CreateEffect(testEffectCode())
	require.NoError(t, err)
	buffer, err := device.GenVertexBuffer(true, common.BufferUsageNone, 24*3)
	require.NoError(t, err)

	require.NoError(t, device.BeginFrame())
	require.NoError(t, device.ApplyEffect(effect, 0))
	require.NoError(t, device.ApplyVertexBufferBindings([]driver.VertexBufferBinding{testVertexBinding(buffer)}, true, 0))
	require.NoError(t, device.DrawPrimitives(common.PrimitiveTypeTriangleList, 0, 1))
	require.NoError(t, device.SwapBuffers())

	require.NoError(t, device.AddDisposeEffect(effect))
	assert.Equal(1, backend.callCount("DestroyPipeline"))
	assert.Equal(0, backend.liveCount("pipeline"))

	require.NoError(t, device.Destroy())
}

func TestClearInsidePassRecordsImmediately(t *testing.T) {
	assert := assert.New(t)

	backend := newFakeBackend()
	device, err := newTestDevice(backend)
	require.NoError(t, err)

	effect, err := device.CreateEffect(testEffectCode())
	require.NoError(t, err)
	buffer, err := device.GenVertexBuffer(true, common.BufferUsageNone, 24*3)
	require.NoError(t, err)

	require.NoError(t, device.BeginFrame())
	require.NoError(t, device.ApplyEffect(effect, 0))
	require.NoError(t, device.ApplyVertexBufferBindings([]driver.VertexBufferBinding{testVertexBinding(buffer)}, true, 0))
	require.NoError(t, device.DrawPrimitives(common.PrimitiveTypeTriangleList, 0, 1))

	device.Clear(common.ClearOptionsTarget, common.Vec4{X: 1}, 1, 0)
	assert.Equal(1, backend.callCount("CmdClearAttachments"))
	assert.Greater(backend.callIndex("CmdClearAttachments", 0), backend.callIndex("CmdDraw", 0))

	require.NoError(t, device.SwapBuffers())
	require.NoError(t, device.Destroy())
}
