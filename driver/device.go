// package driver defines the public contract between the host rendering API and a
// concrete GPU backend driver. A driver publishes a Driver descriptor whose
// CreateDevice entry performs the full bootstrap and returns an opaque Device. The
// Device interface is the entire dispatch surface the host may call; every method
// must be implemented, unsupported operations signal so explicitly rather than
// faulting.
package driver

import (
	"unsafe"

	"github.com/RotatingArtDev/FNA3D/common"
)

// Handle is a stable generational reference to a driver-owned resource. The zero
// value is the nil handle. Handles remain safe to hold after disposal; a disposed
// handle simply no longer resolves.
type Handle struct {
	Index      uint32
	Generation uint32
}

// IsNil reports whether h is the zero handle.
func (h Handle) IsNil() bool {
	return h == Handle{}
}

// Typed resource handles returned by Device creation calls.
type (
	// BufferHandle references a vertex or index buffer.
	BufferHandle Handle
	// TextureHandle references a 2D, 3D or cube texture.
	TextureHandle Handle
	// RenderbufferHandle references a color or depth/stencil renderbuffer.
	RenderbufferHandle Handle
	// EffectHandle references a compiled shader effect.
	EffectHandle Handle
	// QueryHandle references an occlusion query.
	QueryHandle Handle
)

// SurfaceProvider is the outbound contract to the windowing layer: everything the
// driver needs from a native window to create a presentation surface.
type SurfaceProvider interface {
	// InstanceProcAddr returns the root entry-point resolver of the platform
	// graphics loader. Must be valid before any other driver call.
	InstanceProcAddr() unsafe.Pointer
	// InstanceExtensions returns the instance extension names the window system
	// requires for surface creation.
	InstanceExtensions() []string
	// CreateSurface creates a presentation surface bound to the window for the
	// given native instance handle and returns the raw surface handle.
	CreateSurface(instance any) (uintptr, error)
	// DrawableSize returns the current framebuffer size in pixels.
	DrawableSize() (width, height int32)
}

// PresentationParameters configures the backbuffer and presentation surface of a
// created device.
type PresentationParameters struct {
	// BackBufferWidth is the requested backbuffer width in pixels.
	BackBufferWidth int32
	// BackBufferHeight is the requested backbuffer height in pixels.
	BackBufferHeight int32
	// BackBufferFormat is the requested backbuffer surface format.
	BackBufferFormat common.SurfaceFormat
	// MultiSampleCount is the requested backbuffer sample count, 0 or 1 for none.
	MultiSampleCount int32
	// DeviceWindowHandle is the windowing-layer surface provider the swapchain
	// presents to.
	DeviceWindowHandle SurfaceProvider
	// DepthStencilFormat is the requested depth/stencil format, DepthFormatNone to omit.
	DepthStencilFormat common.DepthFormat
	// PresentInterval is the presentation pacing policy.
	PresentInterval common.PresentInterval
}

// VertexBufferBinding pairs a vertex buffer with its declaration and per-draw offsets.
type VertexBufferBinding struct {
	Buffer            BufferHandle
	Declaration       common.VertexDeclaration
	VertexOffset      int32
	InstanceFrequency int32
}

// RenderTargetBinding describes one color attachment of a render-target set.
type RenderTargetBinding struct {
	Texture      TextureHandle
	Renderbuffer RenderbufferHandle
	Width        int32
	Height       int32
	Format       common.SurfaceFormat
	IsCube       bool
	CubeFace     common.CubeMapFace
	LevelCount   int32
}

// EffectCode is the opaque compiled-shader blob consumed by CreateEffect. Shader
// compilation and reflection happen outside the driver; the driver only ingests
// the finished stage bytecode and its binding footprint.
type EffectCode struct {
	// VertexShader is the compiled vertex stage bytecode, 32-bit words.
	VertexShader []uint32
	// FragmentShader is the compiled fragment stage bytecode, 32-bit words.
	FragmentShader []uint32
	// VertexUniformSize is the byte size of the vertex stage uniform block, 0 for none.
	VertexUniformSize int32
	// FragmentUniformSize is the byte size of the fragment stage uniform block, 0 for none.
	FragmentUniformSize int32
}

// Driver describes one registered backend implementation.
type Driver struct {
	// Name identifies the backend ("Vulkan").
	Name string
	// CreateDevice performs the full bootstrap and returns the opaque device, or
	// an error with no device created.
	CreateDevice func(params PresentationParameters, debugMode bool) (Device, error)
}

// Device is the abstract rendering device: the complete public surface a host
// state-tracker drives. One Device exists per successful CreateDevice call and is
// driven from a single thread.
type Device interface {
	// Destroy tears the device down atomically: waits for the GPU to go idle,
	// then releases every live resource, the frame ring, the swapchain and the
	// bootstrap chain in reverse creation order.
	Destroy() error

	// BeginFrame opens the next frame: waits for the frame slot's prior
	// submission to complete, acquires a presentable image and starts command
	// recording. If the surface is stale the swapchain is recreated and the
	// frame is skipped.
	BeginFrame() error
	// SwapBuffers submits and presents the current frame, then opens the next one.
	SwapBuffers() error

	Clear(options common.ClearOptions, color common.Vec4, depth float32, stencil int32)
	DrawPrimitives(primitiveType common.PrimitiveType, vertexStart, primitiveCount int32) error
	DrawIndexedPrimitives(primitiveType common.PrimitiveType, baseVertex, minVertexIndex, numVertices, startIndex, primitiveCount int32, indices BufferHandle, indexElementSize common.IndexElementSize) error
	DrawInstancedPrimitives(primitiveType common.PrimitiveType, baseVertex, minVertexIndex, numVertices, startIndex, primitiveCount, instanceCount int32, indices BufferHandle, indexElementSize common.IndexElementSize) error

	SetViewport(viewport common.Viewport)
	SetScissorRect(scissor common.Rect)
	GetBlendFactor() common.Color
	SetBlendFactor(blendFactor common.Color)
	GetMultiSampleMask() int32
	SetMultiSampleMask(mask int32)
	GetReferenceStencil() int32
	SetReferenceStencil(ref int32)
	SetBlendState(blendState common.BlendState)
	SetDepthStencilState(depthStencilState common.DepthStencilState)
	ApplyRasterizerState(rasterizerState common.RasterizerState)
	VerifySampler(index int32, texture TextureHandle, sampler common.SamplerState) error
	VerifyVertexSampler(index int32, texture TextureHandle, sampler common.SamplerState) error
	ApplyVertexBufferBindings(bindings []VertexBufferBinding, bindingsUpdated bool, baseVertex int32) error

	SetRenderTargets(renderTargets []RenderTargetBinding, depthStencilBuffer RenderbufferHandle, depthFormat common.DepthFormat) error
	ResolveTarget(target RenderTargetBinding) error

	ResetBackbuffer(params PresentationParameters) error
	GetBackbufferSize() (width, height int32)
	GetBackbufferSurfaceFormat() common.SurfaceFormat
	GetBackbufferDepthFormat() common.DepthFormat
	GetBackbufferMultiSampleCount() int32

	CreateTexture2D(format common.SurfaceFormat, width, height, levelCount int32, isRenderTarget bool) (TextureHandle, error)
	CreateTexture3D(format common.SurfaceFormat, width, height, depth, levelCount int32) (TextureHandle, error)
	CreateTextureCube(format common.SurfaceFormat, size, levelCount int32, isRenderTarget bool) (TextureHandle, error)
	AddDisposeTexture(texture TextureHandle) error
	SetTextureData2D(texture TextureHandle, x, y, w, h, level int32, data []byte) error
	SetTextureData3D(texture TextureHandle, x, y, z, w, h, d, level int32, data []byte) error
	SetTextureDataCube(texture TextureHandle, x, y, w, h int32, face common.CubeMapFace, level int32, data []byte) error
	GetTextureData2D(texture TextureHandle, x, y, w, h, level int32, data []byte) error

	GenColorRenderbuffer(width, height int32, format common.SurfaceFormat, multiSampleCount int32, texture TextureHandle) (RenderbufferHandle, error)
	GenDepthStencilRenderbuffer(width, height int32, format common.DepthFormat, multiSampleCount int32) (RenderbufferHandle, error)
	AddDisposeRenderbuffer(renderbuffer RenderbufferHandle) error

	GenVertexBuffer(dynamic bool, usage common.BufferUsage, sizeInBytes int32) (BufferHandle, error)
	AddDisposeVertexBuffer(buffer BufferHandle) error
	SetVertexBufferData(buffer BufferHandle, offsetInBytes int32, data []byte, options common.SetDataOptions) error
	GetVertexBufferData(buffer BufferHandle, offsetInBytes int32, data []byte) error
	GenIndexBuffer(dynamic bool, usage common.BufferUsage, sizeInBytes int32) (BufferHandle, error)
	AddDisposeIndexBuffer(buffer BufferHandle) error
	SetIndexBufferData(buffer BufferHandle, offsetInBytes int32, data []byte, options common.SetDataOptions) error
	GetIndexBufferData(buffer BufferHandle, offsetInBytes int32, data []byte) error

	CreateEffect(code EffectCode) (EffectHandle, error)
	CloneEffect(effect EffectHandle) (EffectHandle, error)
	AddDisposeEffect(effect EffectHandle) error
	ApplyEffect(effect EffectHandle, pass uint32) error

	CreateQuery() (QueryHandle, error)
	AddDisposeQuery(query QueryHandle) error
	QueryBegin(query QueryHandle) error
	QueryEnd(query QueryHandle) error
	QueryComplete(query QueryHandle) (bool, error)
	QueryPixelCount(query QueryHandle) (int32, error)

	SupportsDXT1() bool
	SupportsS3TC() bool
	SupportsBC7() bool
	SupportsHardwareInstancing() bool
	SupportsNoOverwrite() bool
	SupportsSRGBRenderTargets() bool
	GetMaxTextureSlots() (textures, vertexTextures int32)
	GetMaxMultiSampleCount(format common.SurfaceFormat, multiSampleCount int32) int32
	SetStringMarker(text string)
}
