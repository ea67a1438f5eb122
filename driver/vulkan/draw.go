package vulkan

import (
	"github.com/cockroachdb/errors"

	"github.com/RotatingArtDev/FNA3D/common"
	"github.com/RotatingArtDev/FNA3D/driver"
)

// Fixed descriptor binding convention shared by every effect: uniforms first,
// then vertex samplers, then fragment samplers.
const (
	bindingVertexUniform   = 0
	bindingFragmentUniform = 1
	bindingVertexSamplers  = 2
	bindingFragmentSamplers = bindingVertexSamplers + maxVertexTextureSamplers
)

// targetColorView resolves one render-target binding to its attachment view,
// native format and sample count.
func (r *renderer) targetColorView(target driver.RenderTargetBinding) (ImageView, Format, int32, error) {
	if !driver.Handle(target.Renderbuffer).IsNil() {
		entry, ok := r.renderbuffers.get(driver.Handle(target.Renderbuffer))
		if !ok {
			return 0, FormatUndefined, 0, errors.New("render target references unknown renderbuffer")
		}
		rb := *entry
		return rb.view, rb.nativeFormat, rb.multiSampleCount, nil
	}
	entry, ok := r.textures.get(driver.Handle(target.Texture))
	if !ok {
		return 0, FormatUndefined, 0, errors.New("render target references unknown texture")
	}
	t := *entry
	return t.view, t.nativeFormat, 1, nil
}

// beginPass opens the render pass for the currently bound target set if none is
// open: the swapchain backbuffer pass when no targets are bound, otherwise an
// offscreen pass composed from the bound attachments. A clear deferred from
// outside the pass applies immediately after the pass begins.
func (r *renderer) beginPass() error {
	if r.renderPassActive {
		return nil
	}
	if !r.frameActive {
		return errors.New("recording outside an active frame")
	}

	var pass RenderPass
	var framebuffer Framebuffer
	var extent Extent2D
	var sampleCount int32 = 1
	hasDepth := false

	if len(r.renderTargets) == 0 {
		sc := r.swapchain
		pass = sc.renderPass
		framebuffer = sc.framebuffers[sc.currentImage]
		extent = sc.extent
		hasDepth = sc.depthView != 0
	} else {
		colorViews := make([]ImageView, 0, len(r.renderTargets))
		var colorFormat Format
		for i, target := range r.renderTargets {
			view, format, samples, err := r.targetColorView(target)
			if err != nil {
				return err
			}
			colorViews = append(colorViews, view)
			if i == 0 {
				colorFormat = format
				sampleCount = samples
				extent = Extent2D{Width: uint32(target.Width), Height: uint32(target.Height)}
			}
		}
		hasDepth = r.targetDepthView != 0
		depthFormat := FormatUndefined
		if hasDepth {
			depthFormat = nativeDepthFormat(r.targetDepthFormat)
		}
		var err error
		if pass, err = r.renderPassFor(passKey{
			colorFormat: colorFormat,
			depthFormat: depthFormat,
			sampleCount: sampleCount,
		}); err != nil {
			return err
		}
		if framebuffer, err = r.targetFramebufferFor(pass, colorViews, r.targetDepthView, extent); err != nil {
			return err
		}
	}

	r.backend.CmdBeginRenderPass(r.currentCommandBuffer, RenderPassBegin{
		RenderPass:  pass,
		Framebuffer: framebuffer,
		Extent:      extent,
	})
	r.renderPassActive = true
	r.activePass = pass
	r.activeExtent = extent
	r.activeSampleCount = sampleCount
	r.activeHasDepth = hasDepth

	if r.pendingClear {
		r.pendingClear = false
		r.clearAttachments(r.clearOptions, r.clearColor, r.clearDepth, r.clearStencil)
	}
	return nil
}

func (r *renderer) clearAttachments(options common.ClearOptions, color common.Vec4, depth float32, stencil uint32) {
	r.backend.CmdClearAttachments(r.currentCommandBuffer, ClearAttachmentsInfo{
		Options: options,
		Rect: common.Rect{
			W: int32(r.activeExtent.Width),
			H: int32(r.activeExtent.Height),
		},
		Color:    color,
		Depth:    depth,
		Stencil:  stencil,
		HasDepth: r.activeHasDepth,
	})
}

// Clear clears the selected aspects of the current target set. Inside an open
// render pass the clear records immediately; outside one it is deferred and
// applies when the next pass begins.
func (r *renderer) Clear(options common.ClearOptions, color common.Vec4, depth float32, stencil int32) {
	if r.renderPassActive {
		r.clearAttachments(options, color, depth, uint32(stencil))
		return
	}
	r.pendingClear = true
	r.clearOptions = options
	r.clearColor = color
	r.clearDepth = depth
	r.clearStencil = uint32(stencil)
}

// allocateDrawDescriptors allocates and fills a descriptor set for the current
// draw from the frame's pool: effect uniforms plus every bound sampler slot.
func (r *renderer) allocateDrawDescriptors(effect *effectData) (DescriptorSet, error) {
	frame := r.frames[r.frameIndex]
	set, err := r.backend.AllocateDescriptorSet(r.device, frame.descriptorPool, effect.setLayout)
	if err != nil {
		return 0, errors.Wrap(err, "allocate draw descriptor set")
	}

	var writes []DescriptorWrite
	if effect.vertexUniform != 0 {
		writes = append(writes, DescriptorWrite{
			Binding: bindingVertexUniform,
			Type:    DescriptorUniformBuffer,
			Buffer:  effect.vertexUniform,
			Range:   uint64(effect.code.VertexUniformSize),
		})
	}
	if effect.fragmentUniform != 0 {
		writes = append(writes, DescriptorWrite{
			Binding: bindingFragmentUniform,
			Type:    DescriptorUniformBuffer,
			Buffer:  effect.fragmentUniform,
			Range:   uint64(effect.code.FragmentUniformSize),
		})
	}
	appendSampler := func(base uint32, index int, slot textureSamplerSlot) {
		entry, ok := r.textures.get(driver.Handle(slot.texture))
		if !ok {
			return
		}
		writes = append(writes, DescriptorWrite{
			Binding: base + uint32(index),
			Type:    DescriptorCombinedImageSampler,
			View:    (*entry).view,
			Sampler: slot.sampler,
		})
	}
	for i, slot := range r.vertexSamplers {
		if !driver.Handle(slot.texture).IsNil() {
			appendSampler(bindingVertexSamplers, i, slot)
		}
	}
	for i, slot := range r.samplers {
		if !driver.Handle(slot.texture).IsNil() {
			appendSampler(bindingFragmentSamplers, i, slot)
		}
	}
	if len(writes) > 0 {
		r.backend.UpdateDescriptorSet(r.device, set, writes)
	}
	return set, nil
}

// flushDrawState opens the pass if needed, binds the pipeline for the bound
// state, fills and binds the draw's descriptor set, records the dynamic state and
// binds the vertex buffers.
func (r *renderer) flushDrawState() error {
	if err := r.beginPass(); err != nil {
		return err
	}
	cb := r.currentCommandBuffer

	pipeline, layout, err := r.fetchPipeline(r.activePass, r.activeSampleCount)
	if err != nil {
		return err
	}
	if r.pipelineDirty || pipeline != r.boundPipeline {
		r.backend.CmdBindPipeline(cb, pipeline)
		r.boundPipeline = pipeline
		r.pipelineDirty = false
	}

	entry, _ := r.effects.get(driver.Handle(r.currentEffect))
	set, err := r.allocateDrawDescriptors(*entry)
	if err != nil {
		return err
	}
	r.backend.CmdBindDescriptorSet(cb, layout, set)

	viewport := r.viewport
	if viewport.W == 0 && viewport.H == 0 {
		viewport = common.Viewport{W: int32(r.activeExtent.Width), H: int32(r.activeExtent.Height), MaxDepth: 1}
	}
	r.backend.CmdSetViewport(cb, viewport)
	scissor := common.Rect{W: int32(r.activeExtent.Width), H: int32(r.activeExtent.Height)}
	if r.rasterizerState.ScissorTestEnable && r.scissor.W > 0 && r.scissor.H > 0 {
		scissor = r.scissor
	}
	r.backend.CmdSetScissor(cb, scissor)
	r.backend.CmdSetBlendConstants(cb, r.blendFactor)
	r.backend.CmdSetStencilReference(cb, uint32(r.referenceStencil))

	if len(r.vertexBindings) > 0 {
		buffers := make([]Buffer, 0, len(r.vertexBindings))
		offsets := make([]uint64, 0, len(r.vertexBindings))
		for _, binding := range r.vertexBindings {
			bufferEntry, ok := r.buffers.get(driver.Handle(binding.Buffer))
			if !ok {
				return errors.New("draw references unknown vertex buffer")
			}
			buffers = append(buffers, (*bufferEntry).handle)
			offsets = append(offsets, uint64(binding.VertexOffset)*uint64(binding.Declaration.Stride))
		}
		r.backend.CmdBindVertexBuffers(cb, 0, buffers, offsets)
	}
	return nil
}

func (r *renderer) setTopology(topology common.PrimitiveType) {
	if r.topology != topology {
		r.topology = topology
		r.pipelineDirty = true
	}
}

// DrawPrimitives draws non-indexed primitives from the bound vertex buffers.
//
// Parameters:
//   - primitiveType: the primitive assembly mode
//   - vertexStart: the first vertex to read
//   - primitiveCount: the number of primitives to draw
//
// Returns:
//   - error: nil on success
func (r *renderer) DrawPrimitives(primitiveType common.PrimitiveType, vertexStart, primitiveCount int32) error {
	r.setTopology(primitiveType)
	if err := r.flushDrawState(); err != nil {
		return err
	}
	r.backend.CmdDraw(r.currentCommandBuffer, uint32(primitiveType.VertexCount(primitiveCount)), 1, uint32(vertexStart), 0)
	return nil
}

func (r *renderer) drawIndexed(primitiveType common.PrimitiveType, baseVertex, startIndex, primitiveCount, instanceCount int32, indices driver.BufferHandle, indexElementSize common.IndexElementSize) error {
	indexEntry, ok := r.buffers.get(driver.Handle(indices))
	if !ok {
		return errors.New("draw references unknown index buffer")
	}
	r.setTopology(primitiveType)
	if err := r.flushDrawState(); err != nil {
		return err
	}
	cb := r.currentCommandBuffer
	r.backend.CmdBindIndexBuffer(cb, (*indexEntry).handle, 0, indexElementSize)
	r.backend.CmdDrawIndexed(cb, uint32(primitiveType.VertexCount(primitiveCount)), uint32(instanceCount), uint32(startIndex), baseVertex, 0)
	return nil
}

// DrawIndexedPrimitives draws indexed primitives from the bound vertex buffers.
func (r *renderer) DrawIndexedPrimitives(primitiveType common.PrimitiveType, baseVertex, minVertexIndex, numVertices, startIndex, primitiveCount int32, indices driver.BufferHandle, indexElementSize common.IndexElementSize) error {
	return r.drawIndexed(primitiveType, baseVertex, startIndex, primitiveCount, 1, indices, indexElementSize)
}

// DrawInstancedPrimitives draws instanceCount copies of the indexed geometry.
func (r *renderer) DrawInstancedPrimitives(primitiveType common.PrimitiveType, baseVertex, minVertexIndex, numVertices, startIndex, primitiveCount, instanceCount int32, indices driver.BufferHandle, indexElementSize common.IndexElementSize) error {
	return r.drawIndexed(primitiveType, baseVertex, startIndex, primitiveCount, instanceCount, indices, indexElementSize)
}

// ApplyVertexBufferBindings binds the vertex buffer set for subsequent draws.
func (r *renderer) ApplyVertexBufferBindings(bindings []driver.VertexBufferBinding, bindingsUpdated bool, baseVertex int32) error {
	if bindingsUpdated {
		r.vertexBindings = append(r.vertexBindings[:0], bindings...)
		r.pipelineDirty = true
	}
	return nil
}

// SetRenderTargets rebinds the target set for subsequent draws: an empty set
// selects the backbuffer. Any open render pass closes first.
func (r *renderer) SetRenderTargets(renderTargets []driver.RenderTargetBinding, depthStencilBuffer driver.RenderbufferHandle, depthFormat common.DepthFormat) error {
	if r.renderPassActive {
		r.backend.CmdEndRenderPass(r.currentCommandBuffer)
		r.renderPassActive = false
	}
	r.renderTargets = append(r.renderTargets[:0], renderTargets...)
	r.targetDepthFormat = depthFormat
	r.targetDepthView = 0
	if !driver.Handle(depthStencilBuffer).IsNil() {
		entry, ok := r.renderbuffers.get(driver.Handle(depthStencilBuffer))
		if !ok {
			return errors.New("render target set references unknown depth renderbuffer")
		}
		r.targetDepthView = (*entry).view
	}
	r.boundPipeline = 0
	r.pipelineDirty = true
	return nil
}

// ResolveTarget finishes rendering to a target: a multisampled renderbuffer
// resolves into its texture, and the target texture transitions to shader read
// for sampling. Must be called after the target is unbound.
func (r *renderer) ResolveTarget(target driver.RenderTargetBinding) error {
	if !r.frameActive {
		return errors.New("resolve outside an active frame")
	}
	if r.renderPassActive {
		r.backend.CmdEndRenderPass(r.currentCommandBuffer)
		r.renderPassActive = false
	}
	cb := r.currentCommandBuffer

	textureEntry, ok := r.textures.get(driver.Handle(target.Texture))
	if !ok {
		return errors.New("resolve references unknown texture")
	}
	t := *textureEntry

	if !driver.Handle(target.Renderbuffer).IsNil() {
		rbEntry, ok := r.renderbuffers.get(driver.Handle(target.Renderbuffer))
		if !ok {
			return errors.New("resolve references unknown renderbuffer")
		}
		rb := *rbEntry
		if rb.multiSampleCount > 1 {
			r.backend.CmdTransitionImageLayout(cb, rb.image, AspectColor, 0, 1, 0, 1, LayoutColorAttachment, LayoutTransferSrc)
			r.backend.CmdTransitionImageLayout(cb, t.image, AspectColor, 0, uint32(t.levelCount), 0, uint32(t.layerCount), t.layout, LayoutTransferDst)
			r.backend.CmdResolveImage(cb, rb.image, t.image, uint32(rb.width), uint32(rb.height))
			r.backend.CmdTransitionImageLayout(cb, rb.image, AspectColor, 0, 1, 0, 1, LayoutTransferSrc, LayoutColorAttachment)
			r.backend.CmdTransitionImageLayout(cb, t.image, AspectColor, 0, uint32(t.levelCount), 0, uint32(t.layerCount), LayoutTransferDst, LayoutShaderReadOnly)
			t.layout = LayoutShaderReadOnly
			return nil
		}
	}

	r.backend.CmdTransitionImageLayout(cb, t.image, AspectColor, 0, uint32(t.levelCount), 0, uint32(t.layerCount), t.layout, LayoutShaderReadOnly)
	t.layout = LayoutShaderReadOnly
	return nil
}
