package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RotatingArtDev/FNA3D/driver"
)

func TestRegistryAddGetRemove(t *testing.T) {
	assert := assert.New(t)

	var r registry[string]
	h := r.add("alpha")
	assert.EqualValues(1, h.Generation, "generations start at 1")
	assert.Equal(1, r.size())

	value, ok := r.get(h)
	require.True(t, ok)
	assert.Equal("alpha", *value)

	removed, ok := r.remove(h)
	require.True(t, ok)
	assert.Equal("alpha", removed)
	assert.Equal(0, r.size())

	_, ok = r.get(h)
	assert.False(ok)
}

func TestRegistryZeroHandleNeverResolves(t *testing.T) {
	var r registry[int]
	r.add(7)

	_, ok := r.get(driver.Handle{})
	assert.False(t, ok)
}

func TestRegistryStaleHandleStopsResolvingAfterSlotReuse(t *testing.T) {
	assert := assert.New(t)

	var r registry[string]
	stale := r.add("old")
	_, ok := r.remove(stale)
	require.True(t, ok)

	// The slot is recycled under a bumped generation.
	fresh := r.add("new")
	assert.Equal(stale.Index, fresh.Index)
	assert.Equal(stale.Generation+1, fresh.Generation)

	_, ok = r.get(stale)
	assert.False(ok, "a handle held past disposal must not resolve")
	_, ok = r.remove(stale)
	assert.False(ok)

	value, ok := r.get(fresh)
	require.True(t, ok)
	assert.Equal("new", *value)
}

func TestRegistryDrainReturnsNewestFirstAndEmpties(t *testing.T) {
	assert := assert.New(t)

	var r registry[int]
	first := r.add(1)
	r.add(2)
	r.add(3)

	drained := r.drain()
	assert.Equal([]int{3, 2, 1}, drained)
	assert.Equal(0, r.size())

	_, ok := r.get(first)
	assert.False(ok)

	// Drained slots are recyclable.
	h := r.add(4)
	value, ok := r.get(h)
	require.True(t, ok)
	assert.Equal(4, *value)
}
