// Package gltest provides an in-memory gl.Context for tests and tooling.
//
// The fake models just enough driver behavior for the texture core:
// texture/buffer/framebuffer object stores, parameter recording, and
// ReadPixels synthesis following GL conversion rules (single-channel
// texels read back as (r, 0, 0, 1) RGBA, half-float storage converts to
// float32 on FLOAT reads, byte reads of float storage return the raw
// little-endian bytes of each texel's first channel).
package gltest

import (
	"context"
	"sync"
	"time"

	"github.com/fxnlabs/webgl-matrix/pkg/gl"
	"github.com/fxnlabs/webgl-matrix/pkg/layout"
)

type textureObject struct {
	width, height  int
	internalFormat gl.Enum
	format         gl.Enum
	xtype          gl.Enum
	params         map[gl.Enum]gl.Enum
	data           []byte
}

type bufferObject struct {
	usage gl.Enum
	data  []byte
}

type framebufferObject struct {
	attachment gl.Texture
}

// Context is an in-memory gl.Context. The zero value is not usable; call
// NewContext. All methods are safe for concurrent use so asynchronous
// readback completion can run on its own goroutine.
type Context struct {
	mu sync.Mutex

	maxTextureSize int
	nextID         uint32

	textures     map[uint32]*textureObject
	buffers      map[uint32]*bufferObject
	framebuffers map[uint32]*framebufferObject

	boundTexture     gl.Texture
	boundFramebuffer gl.Framebuffer
	boundBuffers     map[gl.Enum]gl.Buffer

	errors []gl.Enum
	calls  []string
}

// NewContext returns a fake context with a 16384 texture size limit.
func NewContext() *Context {
	return &Context{
		maxTextureSize: 16384,
		textures:       make(map[uint32]*textureObject),
		buffers:        make(map[uint32]*bufferObject),
		framebuffers:   make(map[uint32]*framebufferObject),
		boundBuffers:   make(map[gl.Enum]gl.Buffer),
	}
}

// SetMaxTextureSize overrides the value GetInteger reports for
// MAX_TEXTURE_SIZE.
func (c *Context) SetMaxTextureSize(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxTextureSize = n
}

// InjectError queues an error code as if a GL call had failed; the next
// GetError (or gl.CheckError drain) returns it.
func (c *Context) InjectError(code gl.Enum) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, code)
}

// CallLog returns the names of all GL calls issued so far.
func (c *Context) CallLog() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// TextureCount returns the number of live texture objects.
func (c *Context) TextureCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.textures)
}

// BufferCount returns the number of live buffer objects.
func (c *Context) BufferCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buffers)
}

// TextureParams returns the recorded parameters of a texture.
func (c *Context) TextureParams(t gl.Texture) map[gl.Enum]gl.Enum {
	c.mu.Lock()
	defer c.mu.Unlock()
	tex, ok := c.textures[t.V]
	if !ok {
		return nil
	}
	params := make(map[gl.Enum]gl.Enum, len(tex.params))
	for k, v := range tex.params {
		params[k] = v
	}
	return params
}

// TextureInfo reports a texture's storage definition.
func (c *Context) TextureInfo(t gl.Texture) (width, height int, internalFormat, format, xtype gl.Enum, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tex, found := c.textures[t.V]
	if !found {
		return 0, 0, 0, 0, 0, false
	}
	return tex.width, tex.height, tex.internalFormat, tex.format, tex.xtype, true
}

func (c *Context) record(op string) {
	c.calls = append(c.calls, op)
}

func (c *Context) fail(code gl.Enum) {
	c.errors = append(c.errors, code)
}

func channelCount(format gl.Enum) int {
	switch format {
	case gl.RED, gl.LUMINANCE:
		return 1
	case gl.RGBA:
		return 4
	default:
		return 0
	}
}

func bytesPerComponent(xtype gl.Enum) int {
	switch xtype {
	case gl.UNSIGNED_BYTE:
		return 1
	case gl.HALF_FLOAT, gl.HALF_FLOAT_OES:
		return 2
	case gl.FLOAT:
		return 4
	default:
		return 0
	}
}

// CreateTexture implements gl.Context.
func (c *Context) CreateTexture() gl.Texture {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("CreateTexture")
	c.nextID++
	c.textures[c.nextID] = &textureObject{params: make(map[gl.Enum]gl.Enum)}
	return gl.Texture{V: c.nextID}
}

// DeleteTexture implements gl.Context.
func (c *Context) DeleteTexture(t gl.Texture) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("DeleteTexture")
	delete(c.textures, t.V)
	if c.boundTexture == t {
		c.boundTexture = gl.Texture{}
	}
}

// BindTexture implements gl.Context.
func (c *Context) BindTexture(target gl.Enum, t gl.Texture) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("BindTexture")
	if t.Valid() {
		if _, ok := c.textures[t.V]; !ok {
			c.fail(gl.INVALID_OPERATION)
			return
		}
	}
	c.boundTexture = t
}

// TexParameteri implements gl.Context.
func (c *Context) TexParameteri(target, pname gl.Enum, param gl.Enum) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("TexParameteri")
	tex, ok := c.textures[c.boundTexture.V]
	if !ok {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	tex.params[pname] = param
}

// TexImage2D implements gl.Context.
func (c *Context) TexImage2D(target gl.Enum, level int, internalFormat gl.Enum, width, height int, format, xtype gl.Enum, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("TexImage2D")
	tex, ok := c.textures[c.boundTexture.V]
	if !ok {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	if width > c.maxTextureSize || height > c.maxTextureSize {
		c.fail(gl.INVALID_VALUE)
		return
	}
	channels := channelCount(format)
	stride := bytesPerComponent(xtype)
	if channels == 0 || stride == 0 {
		c.fail(gl.INVALID_ENUM)
		return
	}
	size := width * height * channels * stride
	if data != nil && len(data) < size {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	tex.width, tex.height = width, height
	tex.internalFormat, tex.format, tex.xtype = internalFormat, format, xtype
	tex.data = make([]byte, size)
	copy(tex.data, data)
}

// TexSubImage2D implements gl.Context.
func (c *Context) TexSubImage2D(target gl.Enum, level, x, y, width, height int, format, xtype gl.Enum, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("TexSubImage2D")
	tex, ok := c.textures[c.boundTexture.V]
	if !ok || tex.data == nil {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	if x < 0 || y < 0 || x+width > tex.width || y+height > tex.height {
		c.fail(gl.INVALID_VALUE)
		return
	}
	if format != tex.format || xtype != tex.xtype {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	channels := channelCount(format)
	stride := bytesPerComponent(xtype)
	rowBytes := width * channels * stride
	if len(data) < height*rowBytes {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	for row := 0; row < height; row++ {
		dstOff := ((y+row)*tex.width + x) * channels * stride
		copy(tex.data[dstOff:dstOff+rowBytes], data[row*rowBytes:(row+1)*rowBytes])
	}
}

// CreateFramebuffer implements gl.Context.
func (c *Context) CreateFramebuffer() gl.Framebuffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("CreateFramebuffer")
	c.nextID++
	c.framebuffers[c.nextID] = &framebufferObject{}
	return gl.Framebuffer{V: c.nextID}
}

// DeleteFramebuffer implements gl.Context.
func (c *Context) DeleteFramebuffer(f gl.Framebuffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("DeleteFramebuffer")
	delete(c.framebuffers, f.V)
	if c.boundFramebuffer == f {
		c.boundFramebuffer = gl.Framebuffer{}
	}
}

// BindFramebuffer implements gl.Context.
func (c *Context) BindFramebuffer(target gl.Enum, f gl.Framebuffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("BindFramebuffer")
	if f.Valid() {
		if _, ok := c.framebuffers[f.V]; !ok {
			c.fail(gl.INVALID_OPERATION)
			return
		}
	}
	c.boundFramebuffer = f
}

// FramebufferTexture2D implements gl.Context.
func (c *Context) FramebufferTexture2D(target, attachment, texTarget gl.Enum, t gl.Texture, level int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("FramebufferTexture2D")
	fb, ok := c.framebuffers[c.boundFramebuffer.V]
	if !ok {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	fb.attachment = t
}

// CheckFramebufferStatus implements gl.Context.
func (c *Context) CheckFramebufferStatus(target gl.Enum) gl.Enum {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("CheckFramebufferStatus")
	fb, ok := c.framebuffers[c.boundFramebuffer.V]
	if !ok || !fb.attachment.Valid() {
		return 0x8CD7 // FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT
	}
	if _, ok := c.textures[fb.attachment.V]; !ok {
		return 0x8CD7
	}
	return gl.FRAMEBUFFER_COMPLETE
}

// CreateBuffer implements gl.Context.
func (c *Context) CreateBuffer() gl.Buffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("CreateBuffer")
	c.nextID++
	c.buffers[c.nextID] = &bufferObject{}
	return gl.Buffer{V: c.nextID}
}

// DeleteBuffer implements gl.Context.
func (c *Context) DeleteBuffer(b gl.Buffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("DeleteBuffer")
	delete(c.buffers, b.V)
	for target, bound := range c.boundBuffers {
		if bound == b {
			delete(c.boundBuffers, target)
		}
	}
}

// BindBuffer implements gl.Context.
func (c *Context) BindBuffer(target gl.Enum, b gl.Buffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("BindBuffer")
	if b.Valid() {
		if _, ok := c.buffers[b.V]; !ok {
			c.fail(gl.INVALID_OPERATION)
			return
		}
		c.boundBuffers[target] = b
		return
	}
	delete(c.boundBuffers, target)
}

// BufferDataSize implements gl.Context.
func (c *Context) BufferDataSize(target gl.Enum, size int, usage gl.Enum) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("BufferDataSize")
	buf, ok := c.buffers[c.boundBuffers[target].V]
	if !ok {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	buf.usage = usage
	buf.data = make([]byte, size)
}

// GetBufferSubData implements gl.Context.
func (c *Context) GetBufferSubData(target gl.Enum, offset int, dst []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("GetBufferSubData")
	buf, ok := c.buffers[c.boundBuffers[target].V]
	if !ok || offset+len(dst) > len(buf.data) {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	copy(dst, buf.data[offset:])
}

// ReadPixels implements gl.Context.
func (c *Context) ReadPixels(x, y, width, height int, format, xtype gl.Enum, dst []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("ReadPixels")
	pixels, ok := c.readLocked(x, y, width, height, format, xtype)
	if !ok {
		return
	}
	copy(dst, pixels)
}

// ReadPixelsToBuffer implements gl.Context.
func (c *Context) ReadPixelsToBuffer(x, y, width, height int, format, xtype gl.Enum, offset int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("ReadPixelsToBuffer")
	buf, ok := c.buffers[c.boundBuffers[gl.PIXEL_PACK_BUFFER].V]
	if !ok {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	pixels, ok := c.readLocked(x, y, width, height, format, xtype)
	if !ok {
		return
	}
	if offset+len(pixels) > len(buf.data) {
		c.fail(gl.INVALID_OPERATION)
		return
	}
	copy(buf.data[offset:], pixels)
}

// readLocked synthesizes an RGBA readback from the texture attached to the
// bound framebuffer. Caller holds c.mu.
func (c *Context) readLocked(x, y, width, height int, format, xtype gl.Enum) ([]byte, bool) {
	fb, ok := c.framebuffers[c.boundFramebuffer.V]
	if !ok {
		c.fail(gl.INVALID_FRAMEBUFFER_OPERATION)
		return nil, false
	}
	tex, ok := c.textures[fb.attachment.V]
	if !ok || tex.data == nil {
		c.fail(gl.INVALID_FRAMEBUFFER_OPERATION)
		return nil, false
	}
	if format != gl.RGBA {
		c.fail(gl.INVALID_ENUM)
		return nil, false
	}
	if x < 0 || y < 0 || x+width > tex.width || y+height > tex.height {
		c.fail(gl.INVALID_VALUE)
		return nil, false
	}

	switch xtype {
	case gl.FLOAT:
		out := make([]byte, width*height*4*4)
		for row := 0; row < height; row++ {
			for col := 0; col < width; col++ {
				texel := (y+row)*tex.width + (x + col)
				r, g, b, a := c.texelRGBA(tex, texel)
				base := (row*width + col) * 16
				putFloat32(out[base:], r)
				putFloat32(out[base+4:], g)
				putFloat32(out[base+8:], b)
				putFloat32(out[base+12:], a)
			}
		}
		return out, true

	case gl.UNSIGNED_BYTE:
		out := make([]byte, width*height*4)
		if tex.xtype == gl.UNSIGNED_BYTE {
			for row := 0; row < height; row++ {
				for col := 0; col < width; col++ {
					texel := (y+row)*tex.width + (x + col)
					base := (row*width + col) * 4
					copy(out[base:base+4], tex.data[texel*4:texel*4+4])
				}
			}
			return out, true
		}
		// Byte read of float storage: each texel yields the little-endian
		// bytes of its first channel, the form the quantized download path
		// reinterprets.
		for row := 0; row < height; row++ {
			for col := 0; col < width; col++ {
				texel := (y+row)*tex.width + (x + col)
				r, _, _, _ := c.texelRGBA(tex, texel)
				base := (row*width + col) * 4
				b := layout.Float32Bytes(r)
				copy(out[base:base+4], b[:])
			}
		}
		return out, true

	default:
		c.fail(gl.INVALID_ENUM)
		return nil, false
	}
}

// texelRGBA returns the RGBA value of one texel following GL read
// conversion rules: absent green/blue channels read 0, absent alpha reads 1.
func (c *Context) texelRGBA(tex *textureObject, texel int) (r, g, b, a float32) {
	channels := channelCount(tex.format)
	stride := bytesPerComponent(tex.xtype)
	base := texel * channels * stride

	component := func(ch int) float32 {
		off := base + ch*stride
		switch tex.xtype {
		case gl.FLOAT:
			return layout.Float32At(tex.data, off/4)
		case gl.HALF_FLOAT, gl.HALF_FLOAT_OES:
			bits := uint16(tex.data[off]) | uint16(tex.data[off+1])<<8
			return layout.Float16From(bits)
		default:
			return float32(tex.data[off])
		}
	}

	r = component(0)
	if channels == 4 {
		return r, component(1), component(2), component(3)
	}
	return r, 0, 0, 1
}

func putFloat32(dst []byte, v float32) {
	b := layout.Float32Bytes(v)
	copy(dst, b[:])
}

// GetInteger implements gl.Context.
func (c *Context) GetInteger(pname gl.Enum) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("GetInteger")
	if pname == gl.MAX_TEXTURE_SIZE {
		return c.maxTextureSize
	}
	return 0
}

// GetError implements gl.Context.
func (c *Context) GetError() gl.Enum {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.errors) == 0 {
		return gl.NO_ERROR
	}
	code := c.errors[0]
	c.errors = c.errors[1:]
	return code
}

// HalfFloatOES is the fake OES_texture_half_float extension.
type HalfFloatOES struct{}

// HalfFloatType implements gl.HalfFloatExtension.
func (HalfFloatOES) HalfFloatType() gl.Enum { return gl.HALF_FLOAT_OES }

// AsyncReader is the fake asynchronous readback extension. Completion runs
// on its own goroutine after Delay, so callers genuinely suspend.
type AsyncReader struct {
	Context *Context
	Delay   time.Duration
}

// GetBufferSubDataAsync implements gl.AsyncReadExtension.
func (a *AsyncReader) GetBufferSubDataAsync(ctx context.Context, target gl.Enum, offset int, dst []byte) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if a.Delay > 0 {
			time.Sleep(a.Delay)
		}
		a.Context.GetBufferSubData(target, offset, dst)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
