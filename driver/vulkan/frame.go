package vulkan

import (
	"github.com/cockroachdb/errors"
)

// frameData is one slot of the in-flight frame ring. Each slot owns its command
// pool and single primary buffer, a completion fence, the acquire/present
// semaphore pair, a persistently mapped staging arena and a descriptor pool.
// Slots are reused every ring cycle and destroyed only at full teardown.
type frameData struct {
	commandPool    CommandPool
	commandBuffer  CommandBuffer
	fence          Fence
	imageAvailable Semaphore
	renderFinished Semaphore

	// submitted marks the fence as pending a GPU signal; the next reuse of the
	// slot must wait on it first.
	submitted bool

	stagingBuffer Buffer
	stagingMemory DeviceMemory
	stagingMapped []byte
	stagingOffset uint64

	// retired holds transient upload buffers from this slot's last cycle,
	// destroyed after the fence confirms the GPU is done with them.
	retired []retiredAllocation

	descriptorPool DescriptorPool
}

// createFrameResources builds every slot of the frame ring. Fences start signaled
// so the first use of each slot never blocks.
func (r *renderer) createFrameResources() error {
	for i := 0; i < maxFramesInFlight; i++ {
		frame := &frameData{}
		r.frames[i] = frame

		pool, err := r.backend.CreateCommandPool(r.device, r.graphicsFamily)
		if err != nil {
			return errors.Wrap(err, "create command pool")
		}
		frame.commandPool = pool

		buffer, err := r.backend.AllocateCommandBuffer(r.device, pool)
		if err != nil {
			return errors.Wrap(err, "allocate command buffer")
		}
		frame.commandBuffer = buffer

		fence, err := r.backend.CreateFence(r.device, true)
		if err != nil {
			return errors.Wrap(err, "create frame fence")
		}
		frame.fence = fence

		if frame.imageAvailable, err = r.backend.CreateSemaphore(r.device); err != nil {
			return errors.Wrap(err, "create image-available semaphore")
		}
		if frame.renderFinished, err = r.backend.CreateSemaphore(r.device); err != nil {
			return errors.Wrap(err, "create render-finished semaphore")
		}

		staging, err := r.backend.CreateBuffer(r.device, BufferInfo{
			Size:  stagingBufferSize,
			Usage: BufferUsageTransferSrc,
		})
		if err != nil {
			return errors.Wrap(err, "create staging buffer")
		}
		frame.stagingBuffer = staging
		memory, size, err := r.allocateBufferMemory(staging, MemoryHostVisible|MemoryHostCoherent)
		if err != nil {
			return err
		}
		frame.stagingMemory = memory
		if frame.stagingMapped, err = r.backend.MapMemory(r.device, memory, size); err != nil {
			return errors.Wrap(err, "map staging buffer")
		}

		if frame.descriptorPool, err = r.backend.CreateDescriptorPool(r.device, DescriptorPoolInfo{
			MaxSets:          256,
			UniformBuffers:   512,
			CombinedSamplers: 512,
		}); err != nil {
			return errors.Wrap(err, "create frame descriptor pool")
		}
	}
	return nil
}

// destroyFrameResources releases every ring slot, tolerating partially built
// slots from a failed bootstrap.
func (r *renderer) destroyFrameResources() {
	for i, frame := range r.frames {
		if frame == nil {
			continue
		}
		r.freeRetired(frame)
		if frame.descriptorPool != 0 {
			r.backend.DestroyDescriptorPool(r.device, frame.descriptorPool)
		}
		if frame.stagingBuffer != 0 {
			r.backend.DestroyBuffer(r.device, frame.stagingBuffer)
		}
		if frame.stagingMemory != 0 {
			r.backend.FreeMemory(r.device, frame.stagingMemory)
		}
		if frame.renderFinished != 0 {
			r.backend.DestroySemaphore(r.device, frame.renderFinished)
		}
		if frame.imageAvailable != 0 {
			r.backend.DestroySemaphore(r.device, frame.imageAvailable)
		}
		if frame.fence != 0 {
			r.backend.DestroyFence(r.device, frame.fence)
		}
		if frame.commandPool != 0 {
			r.backend.DestroyCommandPool(r.device, frame.commandPool)
		}
		r.frames[i] = nil
	}
}

// beginFrame opens the current ring slot: waits out the slot's prior submission,
// acquires the next presentable image and starts command recording. If the
// acquire reports the surface stale, the swapchain is recreated and the frame is
// skipped entirely; the caller's draw calls for this tick are dropped.
func (r *renderer) beginFrame() error {
	frame := r.frames[r.frameIndex]

	if frame.submitted {
		if err := r.backend.WaitForFence(r.device, frame.fence); err != nil {
			return errors.Wrap(err, "wait for frame fence")
		}
		if err := r.backend.ResetFence(r.device, frame.fence); err != nil {
			return errors.Wrap(err, "reset frame fence")
		}
		frame.submitted = false
	}
	r.freeRetired(frame)

	imageIndex, err := r.backend.AcquireNextImage(r.device, r.swapchain.handle, frame.imageAvailable)
	if isStale(err) {
		if recreateErr := r.recreateSwapchain(); recreateErr != nil {
			return errors.Wrap(recreateErr, "recreate swapchain after stale acquire")
		}
		if r.debugMode {
			r.logger.Debug("stale surface on acquire, frame skipped")
		}
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "acquire swapchain image")
	}
	r.swapchain.currentImage = imageIndex

	if err := r.backend.ResetCommandPool(r.device, frame.commandPool); err != nil {
		return errors.Wrap(err, "reset command pool")
	}
	if err := r.backend.BeginCommandBuffer(frame.commandBuffer); err != nil {
		return errors.Wrap(err, "begin command buffer")
	}
	if err := r.backend.ResetDescriptorPool(r.device, frame.descriptorPool); err != nil {
		return errors.Wrap(err, "reset frame descriptor pool")
	}
	frame.stagingOffset = 0

	r.currentCommandBuffer = frame.commandBuffer
	r.frameActive = true
	r.boundPipeline = 0
	return nil
}

// endFrame closes any open render pass, submits the recorded commands and
// presents the acquired image. Presentation staleness is not a failure; it
// triggers an in-place swapchain recreation. The ring index advances whenever a
// frame was submitted, regardless of the present outcome.
func (r *renderer) endFrame() error {
	if !r.frameActive {
		return nil
	}
	frame := r.frames[r.frameIndex]

	// A frame with no draws never opened a pass. The acquired image still has to
	// go through the backbuffer pass to reach its presentable layout, and any
	// deferred clear is applied on the way.
	if !r.renderPassActive && len(r.renderTargets) == 0 {
		if err := r.beginPass(); err != nil {
			return errors.Wrap(err, "close empty frame")
		}
	}
	if r.renderPassActive {
		r.backend.CmdEndRenderPass(r.currentCommandBuffer)
		r.renderPassActive = false
	}
	if err := r.backend.EndCommandBuffer(frame.commandBuffer); err != nil {
		return errors.Wrap(err, "end command buffer")
	}
	if err := r.backend.QueueSubmit(r.graphicsQueue, SubmitInfo{
		CommandBuffer:   frame.commandBuffer,
		WaitSemaphore:   frame.imageAvailable,
		SignalSemaphore: frame.renderFinished,
		Fence:           frame.fence,
	}); err != nil {
		return errors.Wrap(err, "submit frame")
	}
	frame.submitted = true

	err := r.backend.QueuePresent(r.presentQueue, PresentInfo{
		Swapchain:     r.swapchain.handle,
		ImageIndex:    r.swapchain.currentImage,
		WaitSemaphore: frame.renderFinished,
	})
	r.currentCommandBuffer = 0
	r.frameActive = false
	r.frameIndex = (r.frameIndex + 1) % maxFramesInFlight

	if isStale(err) {
		if recreateErr := r.recreateSwapchain(); recreateErr != nil {
			return errors.Wrap(recreateErr, "recreate swapchain after stale present")
		}
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "present frame")
	}
	return nil
}

// BeginFrame opens the next frame if one is not already open.
func (r *renderer) BeginFrame() error {
	if r.frameActive {
		return nil
	}
	return r.beginFrame()
}

// SwapBuffers submits and presents the current frame, then opens the next one.
func (r *renderer) SwapBuffers() error {
	if err := r.endFrame(); err != nil {
		return err
	}
	return r.beginFrame()
}
