// package common contains common types that are used throughout this driver. They are not interface-wrapped structs, just plain structs and
// enumerations that express the device-agnostic rendering API surface.
package common

// SurfaceFormat enumerates the texture and backbuffer pixel formats of the abstract API.
type SurfaceFormat int32

const (
	SurfaceFormatColor SurfaceFormat = iota
	SurfaceFormatBgr565
	SurfaceFormatBgra5551
	SurfaceFormatBgra4444
	SurfaceFormatDxt1
	SurfaceFormatDxt3
	SurfaceFormatDxt5
	SurfaceFormatNormalizedByte2
	SurfaceFormatNormalizedByte4
	SurfaceFormatRgba1010102
	SurfaceFormatRg32
	SurfaceFormatRgba64
	SurfaceFormatAlpha8
	SurfaceFormatSingle
	SurfaceFormatVector2
	SurfaceFormatVector4
	SurfaceFormatHalfSingle
	SurfaceFormatHalfVector2
	SurfaceFormatHalfVector4
	SurfaceFormatHdrBlendable
	SurfaceFormatColorBgraExt
	SurfaceFormatColorSrgbExt
)

// DepthFormat enumerates the depth/stencil buffer formats of the abstract API.
type DepthFormat int32

const (
	DepthFormatNone DepthFormat = iota
	DepthFormatD16
	DepthFormatD24
	DepthFormatD24S8
)

// PrimitiveType enumerates how vertex streams are assembled into primitives.
type PrimitiveType int32

const (
	PrimitiveTypeTriangleList PrimitiveType = iota
	PrimitiveTypeTriangleStrip
	PrimitiveTypeLineList
	PrimitiveTypeLineStrip
	PrimitiveTypePointListExt
)

// VertexCount returns the number of vertices consumed by primitiveCount primitives of type p.
//
// Parameters:
//   - primitiveCount: the number of primitives being drawn
//
// Returns:
//   - int32: the vertex count the primitive assembly will read
func (p PrimitiveType) VertexCount(primitiveCount int32) int32 {
	switch p {
	case PrimitiveTypeTriangleList:
		return primitiveCount * 3
	case PrimitiveTypeTriangleStrip:
		return primitiveCount + 2
	case PrimitiveTypeLineList:
		return primitiveCount * 2
	case PrimitiveTypeLineStrip:
		return primitiveCount + 1
	default:
		return primitiveCount
	}
}

// IndexElementSize enumerates the width of index buffer elements.
type IndexElementSize int32

const (
	IndexElementSize16Bit IndexElementSize = iota
	IndexElementSize32Bit
)

// Bytes returns the per-element byte width.
func (s IndexElementSize) Bytes() int32 {
	if s == IndexElementSize32Bit {
		return 4
	}
	return 2
}

// BufferUsage is the abstract API's buffer usage hint.
type BufferUsage int32

const (
	BufferUsageNone BufferUsage = iota
	BufferUsageWriteOnly
)

// SetDataOptions controls how buffer data uploads interact with in-flight GPU reads.
type SetDataOptions int32

const (
	SetDataOptionsNone SetDataOptions = iota
	SetDataOptionsDiscard
	SetDataOptionsNoOverwrite
)

// ClearOptions is a bit mask selecting which framebuffer aspects a clear call affects.
type ClearOptions int32

const (
	ClearOptionsTarget  ClearOptions = 1
	ClearOptionsDepth   ClearOptions = 2
	ClearOptionsStencil ClearOptions = 4
)

// CubeMapFace enumerates the six faces of a cube texture.
type CubeMapFace int32

const (
	CubeMapFacePositiveX CubeMapFace = iota
	CubeMapFaceNegativeX
	CubeMapFacePositiveY
	CubeMapFaceNegativeY
	CubeMapFacePositiveZ
	CubeMapFaceNegativeZ
)

// PresentInterval enumerates the presentation pacing policies.
type PresentInterval int32

const (
	PresentIntervalDefault PresentInterval = iota
	PresentIntervalOne
	PresentIntervalTwo
	PresentIntervalImmediate
)

// Color is a normalized RGBA color value.
type Color struct {
	R float32
	G float32
	B float32
	A float32
}

// Vec4 is a plain four-component vector, used for blend factors and clear colors.
type Vec4 struct {
	X float32
	Y float32
	Z float32
	W float32
}

// Rect is an integer rectangle in framebuffer coordinates.
type Rect struct {
	X int32
	Y int32
	W int32
	H int32
}

// Viewport describes the viewport transform applied to rasterized output.
type Viewport struct {
	X        int32
	Y        int32
	W        int32
	H        int32
	MinDepth float32
	MaxDepth float32
}
