// Package gl defines the slice of the OpenGL surface consumed by the
// texture matrix core: object handles, the enum subset the core touches,
// and the Context interface a host embedding must implement.
//
// The package deliberately contains no driver code. Hosts bind Context to
// a real WebGL/OpenGL ES context; tests bind it to gltest.
package gl

import "context"

// Enum is a GL enumerant. Values match the Khronos registry so a host
// binding can pass them through unchanged.
type Enum uint32

// Texture targets and parameters.
const (
	TEXTURE_2D Enum = 0x0DE1

	TEXTURE_MAG_FILTER Enum = 0x2800
	TEXTURE_MIN_FILTER Enum = 0x2801
	TEXTURE_WRAP_S     Enum = 0x2802
	TEXTURE_WRAP_T     Enum = 0x2803

	NEAREST       Enum = 0x2600
	CLAMP_TO_EDGE Enum = 0x812F
)

// Pixel formats and internal formats.
const (
	RED       Enum = 0x1903
	RGBA      Enum = 0x1908
	LUMINANCE Enum = 0x1909

	R16F    Enum = 0x822D
	R32F    Enum = 0x822E
	RGBA16F Enum = 0x881A
	RGBA32F Enum = 0x8814
)

// Texel component types. HALF_FLOAT_OES is the pre-3.0 extension value and
// differs from the core HALF_FLOAT enumerant.
const (
	UNSIGNED_BYTE  Enum = 0x1401
	FLOAT          Enum = 0x1406
	HALF_FLOAT     Enum = 0x140B
	HALF_FLOAT_OES Enum = 0x8D61
)

// Framebuffer objects.
const (
	FRAMEBUFFER          Enum = 0x8D40
	COLOR_ATTACHMENT0    Enum = 0x8CE0
	FRAMEBUFFER_COMPLETE Enum = 0x8CD5
)

// Buffer objects.
const (
	PIXEL_PACK_BUFFER Enum = 0x88EB
	STATIC_DRAW       Enum = 0x88E4
	STREAM_READ       Enum = 0x88E1
)

// Context queries.
const (
	MAX_TEXTURE_SIZE Enum = 0x0D33
)

// Error codes returned by GetError.
const (
	NO_ERROR                      Enum = 0x0000
	INVALID_ENUM                  Enum = 0x0500
	INVALID_VALUE                 Enum = 0x0501
	INVALID_OPERATION             Enum = 0x0502
	OUT_OF_MEMORY                 Enum = 0x0505
	INVALID_FRAMEBUFFER_OPERATION Enum = 0x0506
	CONTEXT_LOST                  Enum = 0x9242
)

// Texture is a texture object handle. The zero value is "no texture".
type Texture struct {
	V uint32
}

// Valid reports whether the handle refers to an object.
func (t Texture) Valid() bool { return t.V != 0 }

// Buffer is a buffer object handle. The zero value is "no buffer".
type Buffer struct {
	V uint32
}

// Valid reports whether the handle refers to an object.
func (b Buffer) Valid() bool { return b.V != 0 }

// Framebuffer is a framebuffer object handle. The zero value is the
// default framebuffer.
type Framebuffer struct {
	V uint32
}

// Valid reports whether the handle refers to an object.
func (f Framebuffer) Valid() bool { return f.V != 0 }

// Context is the GL command surface the core issues calls against.
// It mirrors the WebGL subset the core needs, nothing more.
//
// Implementation notes:
//   - Calls are submitted from a single goroutine; implementations do not
//     need to be safe for concurrent use.
//   - Pixel data crosses the boundary as raw bytes in the byte order of
//     the texel type; the layout package owns all conversions.
//   - Errors are reported through GetError in GL fashion. Implementations
//     must queue error codes rather than panic.
type Context interface {
	// CreateTexture generates a texture object handle.
	CreateTexture() Texture
	// DeleteTexture releases a texture object.
	DeleteTexture(t Texture)
	// BindTexture binds t to target, or unbinds when t is the zero handle.
	BindTexture(target Enum, t Texture)
	// TexParameteri sets an integer texture parameter on the bound texture.
	TexParameteri(target, pname Enum, param Enum)
	// TexImage2D defines the bound texture's storage and optionally fills
	// it. A nil data slice allocates uninitialized storage.
	TexImage2D(target Enum, level int, internalFormat Enum, width, height int, format, xtype Enum, data []byte)
	// TexSubImage2D overwrites a region of the bound texture's storage.
	TexSubImage2D(target Enum, level, x, y, width, height int, format, xtype Enum, data []byte)

	// CreateFramebuffer generates a framebuffer object handle.
	CreateFramebuffer() Framebuffer
	// DeleteFramebuffer releases a framebuffer object.
	DeleteFramebuffer(f Framebuffer)
	// BindFramebuffer binds f to target, or the default framebuffer when f
	// is the zero handle.
	BindFramebuffer(target Enum, f Framebuffer)
	// FramebufferTexture2D attaches a texture level to the bound framebuffer.
	FramebufferTexture2D(target, attachment, texTarget Enum, t Texture, level int)
	// CheckFramebufferStatus reports the completeness of the bound framebuffer.
	CheckFramebufferStatus(target Enum) Enum

	// CreateBuffer generates a buffer object handle.
	CreateBuffer() Buffer
	// DeleteBuffer releases a buffer object.
	DeleteBuffer(b Buffer)
	// BindBuffer binds b to target, or unbinds when b is the zero handle.
	BindBuffer(target Enum, b Buffer)
	// BufferDataSize allocates size bytes of uninitialized storage for the
	// buffer bound to target.
	BufferDataSize(target Enum, size int, usage Enum)
	// GetBufferSubData copies len(dst) bytes from the buffer bound to
	// target, starting at offset, into dst. Blocks until the data is ready.
	GetBufferSubData(target Enum, offset int, dst []byte)

	// ReadPixels reads a rectangle from the bound framebuffer into dst.
	ReadPixels(x, y, width, height int, format, xtype Enum, dst []byte)
	// ReadPixelsToBuffer reads a rectangle from the bound framebuffer into
	// the buffer bound to PIXEL_PACK_BUFFER at offset. Returns immediately;
	// completion is observed through the buffer.
	ReadPixelsToBuffer(x, y, width, height int, format, xtype Enum, offset int)

	// GetInteger returns an integer context parameter such as MAX_TEXTURE_SIZE.
	GetInteger(pname Enum) int
	// GetError dequeues and returns the oldest recorded error, or NO_ERROR.
	GetError() Enum
}

// HalfFloatExtension is the OES_texture_half_float family. Its only job is
// to supply the vendor texel type enumerant, which differs from the core
// HALF_FLOAT value.
type HalfFloatExtension interface {
	// HalfFloatType returns the texel type enum half-float uploads must use.
	HalfFloatType() Enum
}

// AsyncReadExtension exposes non-blocking buffer readback, the analogue of
// WEBGL_get_buffer_sub_data_async. GetBufferSubDataAsync suspends the
// calling goroutine until the GPU has finished all commands writing the
// buffer, then copies the range into dst.
//
// The GPU-side read is not cancelable: when ctx expires first the call
// returns the context error, dst contents are undefined, and the buffer
// must still be deleted by the caller.
type AsyncReadExtension interface {
	GetBufferSubDataAsync(ctx context.Context, target Enum, offset int, dst []byte) error
}
