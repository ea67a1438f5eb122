package common

// Blend enumerates the source/destination blend factors of the abstract API.
type Blend int32

const (
	BlendOne Blend = iota
	BlendZero
	BlendSourceColor
	BlendInverseSourceColor
	BlendSourceAlpha
	BlendInverseSourceAlpha
	BlendDestinationColor
	BlendInverseDestinationColor
	BlendDestinationAlpha
	BlendInverseDestinationAlpha
	BlendBlendFactor
	BlendInverseBlendFactor
	BlendSourceAlphaSaturation
)

// BlendFunction enumerates how source and destination terms are combined.
type BlendFunction int32

const (
	BlendFunctionAdd BlendFunction = iota
	BlendFunctionSubtract
	BlendFunctionReverseSubtract
	BlendFunctionMax
	BlendFunctionMin
)

// ColorWriteChannels is a bit mask of the color channels a render target write touches.
type ColorWriteChannels int32

const (
	ColorWriteChannelsNone  ColorWriteChannels = 0
	ColorWriteChannelsRed   ColorWriteChannels = 1
	ColorWriteChannelsGreen ColorWriteChannels = 2
	ColorWriteChannelsBlue  ColorWriteChannels = 4
	ColorWriteChannelsAlpha ColorWriteChannels = 8
	ColorWriteChannelsAll   ColorWriteChannels = 15
)

// BlendState is the full fixed-function blend configuration for a draw.
type BlendState struct {
	ColorSourceBlend          Blend
	ColorDestinationBlend     Blend
	ColorBlendFunction        BlendFunction
	AlphaSourceBlend          Blend
	AlphaDestinationBlend     Blend
	AlphaBlendFunction        BlendFunction
	ColorWriteEnable          ColorWriteChannels
	ColorWriteEnable1         ColorWriteChannels
	ColorWriteEnable2         ColorWriteChannels
	ColorWriteEnable3         ColorWriteChannels
	BlendFactor               Color
	MultiSampleMask           int32
}

// CompareFunction enumerates depth/stencil comparison predicates.
type CompareFunction int32

const (
	CompareFunctionAlways CompareFunction = iota
	CompareFunctionNever
	CompareFunctionLess
	CompareFunctionLessEqual
	CompareFunctionEqual
	CompareFunctionGreaterEqual
	CompareFunctionGreater
	CompareFunctionNotEqual
)

// StencilOperation enumerates stencil buffer update operations.
type StencilOperation int32

const (
	StencilOperationKeep StencilOperation = iota
	StencilOperationZero
	StencilOperationReplace
	StencilOperationIncrement
	StencilOperationDecrement
	StencilOperationIncrementSaturation
	StencilOperationDecrementSaturation
	StencilOperationInvert
)

// DepthStencilState is the full fixed-function depth/stencil configuration for a draw.
type DepthStencilState struct {
	DepthBufferEnable       bool
	DepthBufferWriteEnable  bool
	DepthBufferFunction     CompareFunction
	StencilEnable           bool
	StencilMask             int32
	StencilWriteMask        int32
	TwoSidedStencilMode     bool
	StencilFail             StencilOperation
	StencilDepthBufferFail  StencilOperation
	StencilPass             StencilOperation
	StencilFunction         CompareFunction
	CCWStencilFail          StencilOperation
	CCWStencilDepthBufferFail StencilOperation
	CCWStencilPass          StencilOperation
	CCWStencilFunction      CompareFunction
	ReferenceStencil        int32
}

// FillMode enumerates polygon rasterization fill policies.
type FillMode int32

const (
	FillModeSolid FillMode = iota
	FillModeWireFrame
)

// CullMode enumerates face culling policies, expressed in winding-order terms.
type CullMode int32

const (
	CullModeNone CullMode = iota
	CullModeCullClockwiseFace
	CullModeCullCounterClockwiseFace
)

// RasterizerState is the fixed-function rasterizer configuration for a draw.
type RasterizerState struct {
	FillMode             FillMode
	CullMode             CullMode
	DepthBias            float32
	SlopeScaleDepthBias  float32
	ScissorTestEnable    bool
	MultiSampleAntiAlias bool
}

// TextureFilter enumerates minification/magnification/mip filter combinations.
type TextureFilter int32

const (
	TextureFilterLinear TextureFilter = iota
	TextureFilterPoint
	TextureFilterAnisotropic
	TextureFilterLinearMipPoint
	TextureFilterPointMipLinear
	TextureFilterMinLinearMagPointMipLinear
	TextureFilterMinLinearMagPointMipPoint
	TextureFilterMinPointMagLinearMipLinear
	TextureFilterMinPointMagLinearMipPoint
)

// TextureAddressMode enumerates sampler coordinate wrapping policies.
type TextureAddressMode int32

const (
	TextureAddressModeWrap TextureAddressMode = iota
	TextureAddressModeClamp
	TextureAddressModeMirror
)

// SamplerState is the full sampler configuration bound alongside a texture slot.
type SamplerState struct {
	Filter        TextureFilter
	AddressU      TextureAddressMode
	AddressV      TextureAddressMode
	AddressW      TextureAddressMode
	MipMapLevelOfDetailBias float32
	MaxAnisotropy int32
	MaxMipLevel   int32
}

// VertexElementFormat enumerates the component layout of a single vertex attribute.
type VertexElementFormat int32

const (
	VertexElementFormatSingle VertexElementFormat = iota
	VertexElementFormatVector2
	VertexElementFormatVector3
	VertexElementFormatVector4
	VertexElementFormatColor
	VertexElementFormatByte4
	VertexElementFormatShort2
	VertexElementFormatShort4
	VertexElementFormatNormalizedShort2
	VertexElementFormatNormalizedShort4
	VertexElementFormatHalfVector2
	VertexElementFormatHalfVector4
)

// VertexElementUsage enumerates the shader semantic a vertex attribute feeds.
type VertexElementUsage int32

const (
	VertexElementUsagePosition VertexElementUsage = iota
	VertexElementUsageColor
	VertexElementUsageTextureCoordinate
	VertexElementUsageNormal
	VertexElementUsageBinormal
	VertexElementUsageTangent
	VertexElementUsageBlendIndices
	VertexElementUsageBlendWeight
	VertexElementUsagePointSize
	VertexElementUsageDepth
	VertexElementUsageFog
	VertexElementUsageSample
	VertexElementUsageTessellateFactor
)

// VertexElement describes one attribute within a vertex declaration.
type VertexElement struct {
	Offset      int32
	Format      VertexElementFormat
	Usage       VertexElementUsage
	UsageIndex  int32
}

// VertexDeclaration describes the layout of a single vertex buffer binding.
type VertexDeclaration struct {
	Stride   int32
	Elements []VertexElement
}
