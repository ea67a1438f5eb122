package vulkan

import (
	"hash/fnv"

	"github.com/cockroachdb/errors"

	"github.com/RotatingArtDev/FNA3D/common"
	"github.com/RotatingArtDev/FNA3D/driver"
)

// Default bound render state, matching the abstract API's documented defaults.
var (
	defaultBlendState = common.BlendState{
		ColorSourceBlend:      common.BlendOne,
		ColorDestinationBlend: common.BlendZero,
		ColorBlendFunction:    common.BlendFunctionAdd,
		AlphaSourceBlend:      common.BlendOne,
		AlphaDestinationBlend: common.BlendZero,
		AlphaBlendFunction:    common.BlendFunctionAdd,
		ColorWriteEnable:      common.ColorWriteChannelsAll,
		ColorWriteEnable1:     common.ColorWriteChannelsAll,
		ColorWriteEnable2:     common.ColorWriteChannelsAll,
		ColorWriteEnable3:     common.ColorWriteChannelsAll,
		MultiSampleMask:       -1,
	}
	defaultDepthStencilState = common.DepthStencilState{
		DepthBufferEnable:      true,
		DepthBufferWriteEnable: true,
		DepthBufferFunction:    common.CompareFunctionLessEqual,
		StencilFail:            common.StencilOperationKeep,
		StencilDepthBufferFail: common.StencilOperationKeep,
		StencilPass:            common.StencilOperationKeep,
		StencilFunction:        common.CompareFunctionAlways,
		StencilMask:            -1,
		StencilWriteMask:       -1,
	}
	defaultRasterizerState = common.RasterizerState{
		FillMode:             common.FillModeSolid,
		CullMode:             common.CullModeCullCounterClockwiseFace,
		MultiSampleAntiAlias: true,
	}
)

// passKey identifies a cached render pass by attachment layout.
type passKey struct {
	colorFormat  Format
	depthFormat  Format
	sampleCount  int32
	presentAfter bool
}

// renderPassFor returns the cached render pass for key, creating it on first use.
func (r *renderer) renderPassFor(key passKey) (RenderPass, error) {
	if pass, ok := r.passCache[key]; ok {
		return pass, nil
	}
	pass, err := r.backend.CreateRenderPass(r.device, RenderPassInfo{
		ColorFormat:  key.colorFormat,
		DepthFormat:  key.depthFormat,
		SampleCount:  common.Coalesce(key.sampleCount, 1),
		PresentAfter: key.presentAfter,
	})
	if err != nil {
		return 0, errors.Wrap(err, "create render pass")
	}
	r.passCache[key] = pass
	return pass, nil
}

// targetKey identifies a cached render-target framebuffer by its attachment views
// and the pass it was built against.
type targetKey struct {
	colorViews [maxRenderTargets]ImageView
	depthView  ImageView
	renderPass RenderPass
}

// targetFramebufferFor returns the cached framebuffer for the given offscreen
// attachment set, creating it on first use.
func (r *renderer) targetFramebufferFor(pass RenderPass, colorViews []ImageView, depthView ImageView, extent Extent2D) (Framebuffer, error) {
	if r.targetFramebuffers == nil {
		r.targetFramebuffers = make(map[targetKey]Framebuffer)
	}
	key := targetKey{depthView: depthView, renderPass: pass}
	copy(key.colorViews[:], colorViews)
	if framebuffer, ok := r.targetFramebuffers[key]; ok {
		return framebuffer, nil
	}
	attachments := append([]ImageView{}, colorViews...)
	if depthView != 0 {
		attachments = append(attachments, depthView)
	}
	framebuffer, err := r.backend.CreateFramebuffer(r.device, FramebufferInfo{
		RenderPass:  pass,
		Attachments: attachments,
		Extent:      extent,
	})
	if err != nil {
		return 0, errors.Wrap(err, "create render-target framebuffer")
	}
	r.targetFramebuffers[key] = framebuffer
	return framebuffer, nil
}

// dropTargetFramebuffers destroys cached framebuffers referencing view. Called on
// texture/renderbuffer disposal, after the device-idle wait.
func (r *renderer) dropTargetFramebuffers(view ImageView) {
	for key, framebuffer := range r.targetFramebuffers {
		referenced := key.depthView == view
		for _, colorView := range key.colorViews {
			if colorView == view {
				referenced = true
				break
			}
		}
		if referenced {
			r.backend.DestroyFramebuffer(r.device, framebuffer)
			delete(r.targetFramebuffers, key)
		}
	}
}

// pipelineKey identifies a compiled graphics pipeline by everything that feeds
// its creation. Vertex layout is folded to a hash so the key stays comparable.
type pipelineKey struct {
	effect           driver.EffectHandle
	blend            common.BlendState
	depthStencil     common.DepthStencilState
	rasterizer       common.RasterizerState
	topology         common.PrimitiveType
	sampleCount      int32
	multiSampleMask  int32
	renderPass       RenderPass
	vertexLayoutHash uint64
}

// vertexLayout converts the bound vertex buffer bindings into pipeline binding
// and attribute descriptions, assigning shader locations in declaration order.
func vertexLayout(bindings []driver.VertexBufferBinding) ([]VertexBindingInfo, []VertexAttributeInfo) {
	var bindingInfos []VertexBindingInfo
	var attributes []VertexAttributeInfo
	location := uint32(0)
	for i, binding := range bindings {
		bindingInfos = append(bindingInfos, VertexBindingInfo{
			Binding:     uint32(i),
			Stride:      uint32(binding.Declaration.Stride),
			PerInstance: binding.InstanceFrequency > 0,
		})
		for _, element := range binding.Declaration.Elements {
			attributes = append(attributes, VertexAttributeInfo{
				Location: location,
				Binding:  uint32(i),
				Format:   element.Format,
				Offset:   uint32(element.Offset),
			})
			location++
		}
	}
	return bindingInfos, attributes
}

func hashVertexLayout(bindings []driver.VertexBufferBinding) uint64 {
	h := fnv.New64a()
	write32 := func(v int32) {
		h.Write([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
	}
	for _, binding := range bindings {
		write32(binding.Declaration.Stride)
		write32(binding.InstanceFrequency)
		for _, element := range binding.Declaration.Elements {
			write32(element.Offset)
			write32(int32(element.Format))
			write32(int32(element.Usage))
			write32(element.UsageIndex)
		}
	}
	return h.Sum64()
}

// fetchPipeline returns the pipeline for the currently bound state against the
// given render pass, compiling and caching it on first use.
func (r *renderer) fetchPipeline(pass RenderPass, sampleCount int32) (Pipeline, PipelineLayout, error) {
	if driver.Handle(r.currentEffect).IsNil() {
		return 0, 0, errors.New("draw with no effect applied")
	}
	entry, ok := r.effects.get(driver.Handle(r.currentEffect))
	if !ok {
		return 0, 0, errors.New("draw with a disposed effect")
	}
	effect := *entry

	key := pipelineKey{
		effect:           r.currentEffect,
		blend:            r.blendState,
		depthStencil:     r.depthStencilState,
		rasterizer:       r.rasterizerState,
		topology:         r.topology,
		sampleCount:      sampleCount,
		multiSampleMask:  r.multiSampleMask,
		renderPass:       pass,
		vertexLayoutHash: hashVertexLayout(r.vertexBindings),
	}
	if pipeline, ok := r.pipelines[key]; ok {
		return pipeline, effect.pipelineLayout, nil
	}

	bindings, attributes := vertexLayout(r.vertexBindings)
	pipeline, err := r.backend.CreateGraphicsPipeline(r.device, r.pipelineCache, GraphicsPipelineInfo{
		VertexShader:     effect.vertexModule,
		FragmentShader:   effect.fragmentModule,
		VertexBindings:   bindings,
		VertexAttributes: attributes,
		Topology:         r.topology,
		Blend:            r.blendState,
		DepthStencil:     r.depthStencilState,
		Rasterizer:       r.rasterizerState,
		SampleCount:      sampleCount,
		MultiSampleMask:  r.multiSampleMask,
		Layout:           effect.pipelineLayout,
		RenderPass:       pass,
	})
	if err != nil {
		return 0, 0, errors.Wrap(err, "create graphics pipeline")
	}
	r.pipelines[key] = pipeline
	return pipeline, effect.pipelineLayout, nil
}
