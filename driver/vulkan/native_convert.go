package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/RotatingArtDev/FNA3D/common"
)

// Conversion tables between the driver's abstract enums and the raw API values.
// Kept out of the Backend method bodies so the call sites read like the protocol.

var vkFormats = [...]vk.Format{
	FormatUndefined:          vk.FormatUndefined,
	FormatR8G8B8A8Unorm:      vk.FormatR8g8b8a8Unorm,
	FormatB8G8R8A8Unorm:      vk.FormatB8g8r8a8Unorm,
	FormatB8G8R8A8Srgb:       vk.FormatB8g8r8a8Srgb,
	FormatR8G8B8A8Srgb:       vk.FormatR8g8b8a8Srgb,
	FormatB5G6R5Unorm:        vk.FormatR5g6b5UnormPack16,
	FormatB5G5R5A1Unorm:      vk.FormatA1r5g5b5UnormPack16,
	FormatB4G4R4A4Unorm:      vk.FormatB4g4r4a4UnormPack16,
	FormatBC1RGBAUnorm:       vk.FormatBc1RgbaUnormBlock,
	FormatBC2Unorm:           vk.FormatBc2UnormBlock,
	FormatBC3Unorm:           vk.FormatBc3UnormBlock,
	FormatBC7Unorm:           vk.FormatBc7UnormBlock,
	FormatR8G8Snorm:          vk.FormatR8g8Snorm,
	FormatR8G8B8A8Snorm:      vk.FormatR8g8b8a8Snorm,
	FormatA2R10G10B10Unorm:   vk.FormatA2r10g10b10UnormPack32,
	FormatR16G16Unorm:        vk.FormatR16g16Unorm,
	FormatR16G16B16A16Unorm:  vk.FormatR16g16b16a16Unorm,
	FormatR8Unorm:            vk.FormatR8Unorm,
	FormatR32Sfloat:          vk.FormatR32Sfloat,
	FormatR32G32Sfloat:       vk.FormatR32g32Sfloat,
	FormatR32G32B32A32Sfloat: vk.FormatR32g32b32a32Sfloat,
	FormatR16Sfloat:          vk.FormatR16Sfloat,
	FormatR16G16Sfloat:       vk.FormatR16g16Sfloat,
	FormatR16G16B16A16Sfloat: vk.FormatR16g16b16a16Sfloat,
	FormatD16Unorm:           vk.FormatD16Unorm,
	FormatD24UnormS8Uint:     vk.FormatD24UnormS8Uint,
	FormatD32Sfloat:          vk.FormatD32Sfloat,
}

func vkFormat(f Format) vk.Format {
	if int(f) < 0 || int(f) >= len(vkFormats) {
		return vk.FormatUndefined
	}
	return vkFormats[f]
}

// formatFromVk maps the surface formats a driver commonly reports back into the
// abstract enum. Unrecognized formats collapse to FormatUndefined.
func formatFromVk(f vk.Format) Format {
	for abstract, native := range vkFormats {
		if native == f && native != vk.FormatUndefined {
			return Format(abstract)
		}
	}
	return FormatUndefined
}

func colorSpaceFromVk(cs vk.ColorSpace) ColorSpace {
	if cs == vk.ColorSpaceSrgbNonlinear {
		return ColorSpaceSrgbNonlinear
	}
	return ColorSpaceOther
}

func vkPresentMode(m PresentMode) vk.PresentMode {
	switch m {
	case PresentModeImmediate:
		return vk.PresentModeImmediate
	case PresentModeMailbox:
		return vk.PresentModeMailbox
	case PresentModeFifoRelaxed:
		return vk.PresentModeFifoRelaxed
	default:
		return vk.PresentModeFifo
	}
}

func presentModeFromVk(m vk.PresentMode) PresentMode {
	switch m {
	case vk.PresentModeImmediate:
		return PresentModeImmediate
	case vk.PresentModeMailbox:
		return PresentModeMailbox
	case vk.PresentModeFifoRelaxed:
		return PresentModeFifoRelaxed
	default:
		return PresentModeFifo
	}
}

func deviceTypeFromVk(t vk.PhysicalDeviceType) DeviceType {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return DeviceTypeIntegratedGPU
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return DeviceTypeDiscreteGPU
	case vk.PhysicalDeviceTypeVirtualGpu:
		return DeviceTypeVirtualGPU
	case vk.PhysicalDeviceTypeCpu:
		return DeviceTypeCPU
	default:
		return DeviceTypeOther
	}
}

func queueFlagsFromVk(f vk.QueueFlags) QueueFlags {
	var out QueueFlags
	if f&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
		out |= QueueGraphics
	}
	if f&vk.QueueFlags(vk.QueueComputeBit) != 0 {
		out |= QueueCompute
	}
	if f&vk.QueueFlags(vk.QueueTransferBit) != 0 {
		out |= QueueTransfer
	}
	return out
}

func memoryFlagsFromVk(f vk.MemoryPropertyFlags) MemoryPropertyFlags {
	var out MemoryPropertyFlags
	if f&vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit) != 0 {
		out |= MemoryDeviceLocal
	}
	if f&vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) != 0 {
		out |= MemoryHostVisible
	}
	if f&vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit) != 0 {
		out |= MemoryHostCoherent
	}
	if f&vk.MemoryPropertyFlags(vk.MemoryPropertyHostCachedBit) != 0 {
		out |= MemoryHostCached
	}
	return out
}

func vkBufferUsage(u BufferUsageFlags) vk.BufferUsageFlags {
	var out vk.BufferUsageFlags
	if u&BufferUsageTransferSrc != 0 {
		out |= vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit)
	}
	if u&BufferUsageTransferDst != 0 {
		out |= vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)
	}
	if u&BufferUsageUniform != 0 {
		out |= vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit)
	}
	if u&BufferUsageIndex != 0 {
		out |= vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)
	}
	if u&BufferUsageVertex != 0 {
		out |= vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)
	}
	return out
}

func vkImageUsage(u ImageUsageFlags) vk.ImageUsageFlags {
	var out vk.ImageUsageFlags
	if u&ImageUsageTransferSrc != 0 {
		out |= vk.ImageUsageFlags(vk.ImageUsageTransferSrcBit)
	}
	if u&ImageUsageTransferDst != 0 {
		out |= vk.ImageUsageFlags(vk.ImageUsageTransferDstBit)
	}
	if u&ImageUsageSampled != 0 {
		out |= vk.ImageUsageFlags(vk.ImageUsageSampledBit)
	}
	if u&ImageUsageColorAttachment != 0 {
		out |= vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit)
	}
	if u&ImageUsageDepthStencilAttachment != 0 {
		out |= vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit)
	}
	return out
}

func vkAspect(a ImageAspectFlags) vk.ImageAspectFlags {
	var out vk.ImageAspectFlags
	if a&AspectColor != 0 {
		out |= vk.ImageAspectFlags(vk.ImageAspectColorBit)
	}
	if a&AspectDepth != 0 {
		out |= vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	}
	if a&AspectStencil != 0 {
		out |= vk.ImageAspectFlags(vk.ImageAspectStencilBit)
	}
	return out
}

func vkLayout(l ImageLayout) vk.ImageLayout {
	switch l {
	case LayoutGeneral:
		return vk.ImageLayoutGeneral
	case LayoutColorAttachment:
		return vk.ImageLayoutColorAttachmentOptimal
	case LayoutDepthStencilAttachment:
		return vk.ImageLayoutDepthStencilAttachmentOptimal
	case LayoutShaderReadOnly:
		return vk.ImageLayoutShaderReadOnlyOptimal
	case LayoutTransferSrc:
		return vk.ImageLayoutTransferSrcOptimal
	case LayoutTransferDst:
		return vk.ImageLayoutTransferDstOptimal
	case LayoutPresentSrc:
		return vk.ImageLayoutPresentSrc
	default:
		return vk.ImageLayoutUndefined
	}
}

func vkSampleCount(samples int32) vk.SampleCountFlagBits {
	switch {
	case samples >= 8:
		return vk.SampleCount8Bit
	case samples >= 4:
		return vk.SampleCount4Bit
	case samples >= 2:
		return vk.SampleCount2Bit
	default:
		return vk.SampleCount1Bit
	}
}

var vkBlendFactors = [...]vk.BlendFactor{
	common.BlendOne:                     vk.BlendFactorOne,
	common.BlendZero:                    vk.BlendFactorZero,
	common.BlendSourceColor:             vk.BlendFactorSrcColor,
	common.BlendInverseSourceColor:      vk.BlendFactorOneMinusSrcColor,
	common.BlendSourceAlpha:             vk.BlendFactorSrcAlpha,
	common.BlendInverseSourceAlpha:      vk.BlendFactorOneMinusSrcAlpha,
	common.BlendDestinationColor:        vk.BlendFactorDstColor,
	common.BlendInverseDestinationColor: vk.BlendFactorOneMinusDstColor,
	common.BlendDestinationAlpha:        vk.BlendFactorDstAlpha,
	common.BlendInverseDestinationAlpha: vk.BlendFactorOneMinusDstAlpha,
	common.BlendBlendFactor:             vk.BlendFactorConstantColor,
	common.BlendInverseBlendFactor:      vk.BlendFactorOneMinusConstantColor,
	common.BlendSourceAlphaSaturation:   vk.BlendFactorSrcAlphaSaturate,
}

var vkBlendOps = [...]vk.BlendOp{
	common.BlendFunctionAdd:             vk.BlendOpAdd,
	common.BlendFunctionSubtract:        vk.BlendOpSubtract,
	common.BlendFunctionReverseSubtract: vk.BlendOpReverseSubtract,
	common.BlendFunctionMax:             vk.BlendOpMax,
	common.BlendFunctionMin:             vk.BlendOpMin,
}

var vkCompareOps = [...]vk.CompareOp{
	common.CompareFunctionAlways:       vk.CompareOpAlways,
	common.CompareFunctionNever:        vk.CompareOpNever,
	common.CompareFunctionLess:         vk.CompareOpLess,
	common.CompareFunctionLessEqual:    vk.CompareOpLessOrEqual,
	common.CompareFunctionEqual:        vk.CompareOpEqual,
	common.CompareFunctionGreaterEqual: vk.CompareOpGreaterOrEqual,
	common.CompareFunctionGreater:      vk.CompareOpGreater,
	common.CompareFunctionNotEqual:     vk.CompareOpNotEqual,
}

var vkStencilOps = [...]vk.StencilOp{
	common.StencilOperationKeep:                vk.StencilOpKeep,
	common.StencilOperationZero:                vk.StencilOpZero,
	common.StencilOperationReplace:             vk.StencilOpReplace,
	common.StencilOperationIncrement:           vk.StencilOpIncrementAndWrap,
	common.StencilOperationDecrement:           vk.StencilOpDecrementAndWrap,
	common.StencilOperationIncrementSaturation: vk.StencilOpIncrementAndClamp,
	common.StencilOperationDecrementSaturation: vk.StencilOpDecrementAndClamp,
	common.StencilOperationInvert:              vk.StencilOpInvert,
}

func vkPolygonMode(m common.FillMode) vk.PolygonMode {
	if m == common.FillModeWireFrame {
		return vk.PolygonModeLine
	}
	return vk.PolygonModeFill
}

// Front faces are always counter-clockwise, so the winding-order cull modes map
// directly onto front/back culling.
func vkCullMode(m common.CullMode) vk.CullModeFlags {
	switch m {
	case common.CullModeCullClockwiseFace:
		return vk.CullModeFlags(vk.CullModeBackBit)
	case common.CullModeCullCounterClockwiseFace:
		return vk.CullModeFlags(vk.CullModeFrontBit)
	default:
		return vk.CullModeFlags(vk.CullModeNone)
	}
}

var vkTopologies = [...]vk.PrimitiveTopology{
	common.PrimitiveTypeTriangleList:  vk.PrimitiveTopologyTriangleList,
	common.PrimitiveTypeTriangleStrip: vk.PrimitiveTopologyTriangleStrip,
	common.PrimitiveTypeLineList:      vk.PrimitiveTopologyLineList,
	common.PrimitiveTypeLineStrip:     vk.PrimitiveTopologyLineStrip,
	common.PrimitiveTypePointListExt:  vk.PrimitiveTopologyPointList,
}

var vkVertexFormats = [...]vk.Format{
	common.VertexElementFormatSingle:           vk.FormatR32Sfloat,
	common.VertexElementFormatVector2:          vk.FormatR32g32Sfloat,
	common.VertexElementFormatVector3:          vk.FormatR32g32b32Sfloat,
	common.VertexElementFormatVector4:          vk.FormatR32g32b32a32Sfloat,
	common.VertexElementFormatColor:            vk.FormatR8g8b8a8Unorm,
	common.VertexElementFormatByte4:            vk.FormatR8g8b8a8Uint,
	common.VertexElementFormatShort2:           vk.FormatR16g16Sint,
	common.VertexElementFormatShort4:           vk.FormatR16g16b16a16Sint,
	common.VertexElementFormatNormalizedShort2: vk.FormatR16g16Snorm,
	common.VertexElementFormatNormalizedShort4: vk.FormatR16g16b16a16Snorm,
	common.VertexElementFormatHalfVector2:      vk.FormatR16g16Sfloat,
	common.VertexElementFormatHalfVector4:      vk.FormatR16g16b16a16Sfloat,
}

// Sampler filter triples: magnification, minification, mip mode.
func vkFilters(f common.TextureFilter) (vk.Filter, vk.Filter, vk.SamplerMipmapMode) {
	switch f {
	case common.TextureFilterPoint:
		return vk.FilterNearest, vk.FilterNearest, vk.SamplerMipmapModeNearest
	case common.TextureFilterLinearMipPoint:
		return vk.FilterLinear, vk.FilterLinear, vk.SamplerMipmapModeNearest
	case common.TextureFilterPointMipLinear:
		return vk.FilterNearest, vk.FilterNearest, vk.SamplerMipmapModeLinear
	case common.TextureFilterMinLinearMagPointMipLinear:
		return vk.FilterNearest, vk.FilterLinear, vk.SamplerMipmapModeLinear
	case common.TextureFilterMinLinearMagPointMipPoint:
		return vk.FilterNearest, vk.FilterLinear, vk.SamplerMipmapModeNearest
	case common.TextureFilterMinPointMagLinearMipLinear:
		return vk.FilterLinear, vk.FilterNearest, vk.SamplerMipmapModeLinear
	case common.TextureFilterMinPointMagLinearMipPoint:
		return vk.FilterLinear, vk.FilterNearest, vk.SamplerMipmapModeNearest
	default:
		return vk.FilterLinear, vk.FilterLinear, vk.SamplerMipmapModeLinear
	}
}

func vkAddressMode(m common.TextureAddressMode) vk.SamplerAddressMode {
	switch m {
	case common.TextureAddressModeClamp:
		return vk.SamplerAddressModeClampToEdge
	case common.TextureAddressModeMirror:
		return vk.SamplerAddressModeMirroredRepeat
	default:
		return vk.SamplerAddressModeRepeat
	}
}

func vkColorWriteMask(c common.ColorWriteChannels) vk.ColorComponentFlags {
	var out vk.ColorComponentFlags
	if c&common.ColorWriteChannelsRed != 0 {
		out |= vk.ColorComponentFlags(vk.ColorComponentRBit)
	}
	if c&common.ColorWriteChannelsGreen != 0 {
		out |= vk.ColorComponentFlags(vk.ColorComponentGBit)
	}
	if c&common.ColorWriteChannelsBlue != 0 {
		out |= vk.ColorComponentFlags(vk.ColorComponentBBit)
	}
	if c&common.ColorWriteChannelsAlpha != 0 {
		out |= vk.ColorComponentFlags(vk.ColorComponentABit)
	}
	return out
}

func vkIndexType(s common.IndexElementSize) vk.IndexType {
	if s == common.IndexElementSize32Bit {
		return vk.IndexTypeUint32
	}
	return vk.IndexTypeUint16
}

func vkImageViewType(t ImageViewType) vk.ImageViewType {
	switch t {
	case ImageViewType3D:
		return vk.ImageViewType3d
	case ImageViewTypeCube:
		return vk.ImageViewTypeCube
	default:
		return vk.ImageViewType2d
	}
}

func vkImageType(t ImageViewType) vk.ImageType {
	if t == ImageViewType3D {
		return vk.ImageType3d
	}
	return vk.ImageType2d
}

func vkBool(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

// maxSampleCountFromVk extracts the largest framebuffer color sample count from
// the device's supported-counts mask.
func maxSampleCountFromVk(counts vk.SampleCountFlags) int32 {
	switch {
	case counts&vk.SampleCountFlags(vk.SampleCount8Bit) != 0:
		return 8
	case counts&vk.SampleCountFlags(vk.SampleCount4Bit) != 0:
		return 4
	case counts&vk.SampleCountFlags(vk.SampleCount2Bit) != 0:
		return 2
	default:
		return 1
	}
}

// nullTerm returns s with the trailing NUL the C API expects.
func nullTerm(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\x00' {
		return s
	}
	return s + "\x00"
}

func nullTermAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = nullTerm(s)
	}
	return out
}
