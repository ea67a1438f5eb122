package vulkan

import (
	"github.com/cockroachdb/errors"

	"github.com/RotatingArtDev/FNA3D/common"
)

// retiredAllocation is a transient upload buffer that outlived the staging arena;
// it is destroyed once the owning frame slot's fence clears.
type retiredAllocation struct {
	buffer Buffer
	memory DeviceMemory
}

// stageUpload copies data into the current frame's staging arena and returns the
// source buffer and offset for the transfer. Payloads that do not fit the arena
// get a dedicated transient buffer retired when the frame slot is next reused.
func (r *renderer) stageUpload(data []byte) (Buffer, uint64, error) {
	frame := r.frames[r.frameIndex]

	offset := common.AlignUp(frame.stagingOffset, 16)
	if offset+uint64(len(data)) <= stagingBufferSize {
		copy(frame.stagingMapped[offset:], data)
		frame.stagingOffset = offset + uint64(len(data))
		return frame.stagingBuffer, offset, nil
	}

	buffer, err := r.backend.CreateBuffer(r.device, BufferInfo{
		Size:  uint64(len(data)),
		Usage: BufferUsageTransferSrc,
	})
	if err != nil {
		return 0, 0, errors.Wrap(err, "create transient upload buffer")
	}
	memory, size, err := r.allocateBufferMemory(buffer, MemoryHostVisible|MemoryHostCoherent)
	if err != nil {
		r.backend.DestroyBuffer(r.device, buffer)
		return 0, 0, err
	}
	mapped, err := r.backend.MapMemory(r.device, memory, size)
	if err != nil {
		r.backend.FreeMemory(r.device, memory)
		r.backend.DestroyBuffer(r.device, buffer)
		return 0, 0, errors.Wrap(err, "map transient upload buffer")
	}
	copy(mapped, data)
	frame.retired = append(frame.retired, retiredAllocation{buffer: buffer, memory: memory})
	return buffer, 0, nil
}

// freeRetired destroys the frame's transient upload buffers. Callers must
// guarantee the GPU is done with them (fence cleared or device idle).
func (r *renderer) freeRetired(frame *frameData) {
	for _, retired := range frame.retired {
		r.backend.DestroyBuffer(r.device, retired.buffer)
		r.backend.FreeMemory(r.device, retired.memory)
	}
	frame.retired = nil
}

// withUploadCommands hands fn a command buffer positioned for transfer recording.
// With a frame active that is the current frame's buffer; otherwise a transient
// buffer is recorded and submitted immediately, bracketed by device-idle waits so
// the staging arena of the current slot is safe to reuse.
func (r *renderer) withUploadCommands(fn func(cb CommandBuffer) error) error {
	if r.frameActive {
		return fn(r.currentCommandBuffer)
	}

	if err := r.backend.DeviceWaitIdle(r.device); err != nil {
		return errors.Wrap(err, "wait for device idle before upload")
	}
	frame := r.frames[r.frameIndex]
	r.freeRetired(frame)
	frame.stagingOffset = 0

	cb, err := r.backend.AllocateCommandBuffer(r.device, frame.commandPool)
	if err != nil {
		return errors.Wrap(err, "allocate upload command buffer")
	}
	if err := r.backend.BeginCommandBuffer(cb); err != nil {
		return errors.Wrap(err, "begin upload command buffer")
	}
	if err := fn(cb); err != nil {
		return err
	}
	if err := r.backend.EndCommandBuffer(cb); err != nil {
		return errors.Wrap(err, "end upload command buffer")
	}
	if err := r.backend.QueueSubmit(r.graphicsQueue, SubmitInfo{CommandBuffer: cb}); err != nil {
		return errors.Wrap(err, "submit upload command buffer")
	}
	if err := r.backend.DeviceWaitIdle(r.device); err != nil {
		return errors.Wrap(err, "wait for upload completion")
	}
	return nil
}

// uploadToBuffer records a staged copy of data into a device-local buffer.
func (r *renderer) uploadToBuffer(dst Buffer, dstOffset uint64, data []byte) error {
	return r.withUploadCommands(func(cb CommandBuffer) error {
		src, srcOffset, err := r.stageUpload(data)
		if err != nil {
			return err
		}
		r.backend.CmdCopyBuffer(cb, src, srcOffset, dst, dstOffset, uint64(len(data)))
		return nil
	})
}
