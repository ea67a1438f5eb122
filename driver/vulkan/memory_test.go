package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindMemoryTypeFirstSupersetWins(t *testing.T) {
	assert := assert.New(t)

	r := &renderer{memoryProperties: MemoryProperties{Types: []MemoryType{
		{PropertyFlags: MemoryDeviceLocal},
		{PropertyFlags: MemoryHostVisible},
		{PropertyFlags: MemoryHostVisible | MemoryHostCoherent},
		{PropertyFlags: MemoryHostVisible | MemoryHostCoherent | MemoryHostCached},
	}}}

	index, ok := r.findMemoryType(0b1111, MemoryHostVisible|MemoryHostCoherent)
	require.True(t, ok)
	assert.EqualValues(2, index, "the first type whose flags are a superset wins")

	// Extra flags on the winning type do not disqualify it.
	index, ok = r.findMemoryType(0b1000, MemoryHostVisible|MemoryHostCoherent)
	require.True(t, ok)
	assert.EqualValues(3, index)
}

func TestFindMemoryTypeHonorsTypeFilter(t *testing.T) {
	r := &renderer{memoryProperties: MemoryProperties{Types: []MemoryType{
		{PropertyFlags: MemoryDeviceLocal},
		{PropertyFlags: MemoryDeviceLocal},
	}}}

	// Bit 0 is masked out, so only index 1 qualifies.
	index, ok := r.findMemoryType(0b10, MemoryDeviceLocal)
	require.True(t, ok)
	assert.EqualValues(t, 1, index)
}

func TestFindMemoryTypeReportsNoMatch(t *testing.T) {
	r := &renderer{memoryProperties: MemoryProperties{Types: []MemoryType{
		{PropertyFlags: MemoryDeviceLocal},
	}}}

	_, ok := r.findMemoryType(0b1, MemoryHostVisible)
	assert.False(t, ok)

	_, ok = r.findMemoryType(0, MemoryDeviceLocal)
	assert.False(t, ok)
}
