package vulkan

import (
	"github.com/cockroachdb/errors"
)

// findMemoryType scans the cached physical-device memory type table linearly and
// returns the first index whose bit is set in typeFilter and whose property flags
// are a superset of properties. The second return is false when no type qualifies;
// callers must check it.
func (r *renderer) findMemoryType(typeFilter uint32, properties MemoryPropertyFlags) (uint32, bool) {
	for i, memoryType := range r.memoryProperties.Types {
		if typeFilter&(1<<uint32(i)) == 0 {
			continue
		}
		if memoryType.PropertyFlags&properties == properties {
			return uint32(i), true
		}
	}
	return 0, false
}

// allocateBufferMemory creates one dedicated allocation satisfying the buffer's
// requirements with the given properties and binds it. There is no pooling or
// sub-allocation: allocation count scales with resource count.
func (r *renderer) allocateBufferMemory(buffer Buffer, properties MemoryPropertyFlags) (DeviceMemory, uint64, error) {
	requirements := r.backend.BufferMemoryRequirements(r.device, buffer)
	index, ok := r.findMemoryType(requirements.MemoryTypeBits, properties)
	if !ok {
		return 0, 0, errors.Newf("no memory type satisfies filter %#x with properties %#x", requirements.MemoryTypeBits, properties)
	}
	memory, err := r.backend.AllocateMemory(r.device, requirements.Size, index)
	if err != nil {
		return 0, 0, errors.Wrap(err, "allocate buffer memory")
	}
	if err := r.backend.BindBufferMemory(r.device, buffer, memory); err != nil {
		r.backend.FreeMemory(r.device, memory)
		return 0, 0, errors.Wrap(err, "bind buffer memory")
	}
	return memory, requirements.Size, nil
}

// allocateImageMemory creates one dedicated device-local allocation for the image
// and binds it. Images are always device-local; there is no dynamic image concept.
func (r *renderer) allocateImageMemory(image Image) (DeviceMemory, error) {
	requirements := r.backend.ImageMemoryRequirements(r.device, image)
	index, ok := r.findMemoryType(requirements.MemoryTypeBits, MemoryDeviceLocal)
	if !ok {
		return 0, errors.Newf("no device-local memory type satisfies filter %#x", requirements.MemoryTypeBits)
	}
	memory, err := r.backend.AllocateMemory(r.device, requirements.Size, index)
	if err != nil {
		return 0, errors.Wrap(err, "allocate image memory")
	}
	if err := r.backend.BindImageMemory(r.device, image, memory); err != nil {
		r.backend.FreeMemory(r.device, memory)
		return 0, errors.Wrap(err, "bind image memory")
	}
	return memory, nil
}
