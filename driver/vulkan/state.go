package vulkan

import (
	"github.com/RotatingArtDev/FNA3D/common"
)

// SetViewport sets the viewport for subsequent draws. Viewport is dynamic
// pipeline state, so no pipeline rebuild happens.
func (r *renderer) SetViewport(viewport common.Viewport) {
	r.viewport = viewport
	if r.renderPassActive {
		r.backend.CmdSetViewport(r.currentCommandBuffer, viewport)
	}
}

// SetScissorRect sets the scissor rectangle. It only takes effect while the
// rasterizer state enables scissor testing.
func (r *renderer) SetScissorRect(scissor common.Rect) {
	r.scissor = scissor
	if r.renderPassActive && r.rasterizerState.ScissorTestEnable {
		r.backend.CmdSetScissor(r.currentCommandBuffer, scissor)
	}
}

func (r *renderer) GetBlendFactor() common.Color {
	return r.blendFactor
}

func (r *renderer) SetBlendFactor(blendFactor common.Color) {
	if r.blendFactor == blendFactor {
		return
	}
	r.blendFactor = blendFactor
	if r.renderPassActive {
		r.backend.CmdSetBlendConstants(r.currentCommandBuffer, blendFactor)
	}
}

func (r *renderer) GetMultiSampleMask() int32 {
	return r.multiSampleMask
}

// SetMultiSampleMask sets the coverage mask applied to multisampled draws. The
// mask feeds pipeline creation, so changing it rebuilds the pipeline at the next
// draw.
func (r *renderer) SetMultiSampleMask(mask int32) {
	if r.multiSampleMask == mask {
		return
	}
	r.multiSampleMask = mask
	r.pipelineDirty = true
}

func (r *renderer) GetReferenceStencil() int32 {
	return r.referenceStencil
}

func (r *renderer) SetReferenceStencil(ref int32) {
	if r.referenceStencil == ref {
		return
	}
	r.referenceStencil = ref
	if r.renderPassActive {
		r.backend.CmdSetStencilReference(r.currentCommandBuffer, uint32(ref))
	}
}

// SetBlendState replaces the bound blend state. The embedded blend factor and
// multisample mask apply through their dynamic setters; everything else feeds
// pipeline creation.
func (r *renderer) SetBlendState(blendState common.BlendState) {
	if r.blendState != blendState {
		r.blendState = blendState
		r.pipelineDirty = true
	}
	r.SetBlendFactor(blendState.BlendFactor)
	r.SetMultiSampleMask(blendState.MultiSampleMask)
}

func (r *renderer) SetDepthStencilState(depthStencilState common.DepthStencilState) {
	if r.depthStencilState != depthStencilState {
		r.depthStencilState = depthStencilState
		r.pipelineDirty = true
	}
	r.SetReferenceStencil(depthStencilState.ReferenceStencil)
}

func (r *renderer) ApplyRasterizerState(rasterizerState common.RasterizerState) {
	if r.rasterizerState == rasterizerState {
		return
	}
	r.rasterizerState = rasterizerState
	r.pipelineDirty = true
}
