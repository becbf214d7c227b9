package gpgpu

import (
	"context"
	"fmt"
	"time"

	"github.com/fxnlabs/webgl-matrix/internal/metrics"
	"github.com/fxnlabs/webgl-matrix/pkg/capability"
	"github.com/fxnlabs/webgl-matrix/pkg/gl"
	"github.com/fxnlabs/webgl-matrix/pkg/layout"
	"github.com/fxnlabs/webgl-matrix/pkg/matconv"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Engine moves matrices between host memory and textures. It owns one
// lazily created framebuffer used to source readbacks; everything else it
// touches belongs to the caller.
//
// An Engine is driven from a single goroutine. Each texture must be owned
// exclusively by its caller for the duration of a transfer; the engine
// takes no locks.
type Engine struct {
	ctx   gl.Context
	cfg   *capability.TextureConfig
	async gl.AsyncReadExtension
	log   *zap.Logger
	fbo   gl.Framebuffer
}

// NewEngine returns a transfer engine for ctx using the resolved
// descriptor. async may be nil; DownloadMatrixAsync then fails with
// ErrNoAsyncRead. A nil logger defaults to zap.NewNop.
func NewEngine(ctx gl.Context, cfg *capability.TextureConfig, async gl.AsyncReadExtension, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{ctx: ctx, cfg: cfg, async: async, log: log.Named("transfer")}
}

// Close releases the engine's readback framebuffer.
func (e *Engine) Close() {
	if e.fbo.Valid() {
		e.ctx.DeleteFramebuffer(e.fbo)
		e.fbo = gl.Framebuffer{}
	}
}

func (e *Engine) transferErr(op string, err error) error {
	metrics.TransferErrors.WithLabelValues(op).Inc()
	return fmt.Errorf("%w: %s: %v", ErrTransfer, op, err)
}

func (e *Engine) observe(op string, bytes int, direction string, start time.Time) {
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0
	metrics.TransferBytes.WithLabelValues(direction).Add(float64(bytes))
	metrics.TransferDuration.WithLabelValues(op).Observe(elapsed)
	e.log.Debug("transfer complete",
		zap.String("op", op), zap.Int("bytes", bytes), zap.Float64("ms", elapsed))
}

// uploadBytes converts an encoded float buffer into the wire form of the
// upload texel type: float32 bytes, or binary16 bytes when the descriptor
// resolved to a half-float type.
func (e *Engine) uploadBytes(encoded []float32) []byte {
	if e.cfg.UploadType != gl.FLOAT {
		return layout.EncodeUint16Bytes(layout.EncodeFloat16(encoded))
	}
	return layout.EncodeFloat32Bytes(encoded)
}

// UploadMatrix writes a rows x cols matrix into tex using the unpacked
// layout. The texture's full extent is rewritten; there are no partial
// updates across calls.
func (e *Engine) UploadMatrix(tex gl.Texture, rows, cols int, matrix []float32) error {
	if len(matrix) != rows*cols {
		return fmt.Errorf("%w: matrix holds %d values, want %dx%d=%d", layout.ErrShapeMismatch, len(matrix), rows, cols, rows*cols)
	}
	start := time.Now()
	width, height := layout.UnpackedShape(rows, cols, e.cfg.MaxTextureSize)

	encoded := make([]float32, width*height*e.cfg.UploadChannels)
	if err := layout.EncodeUnpackedInto(encoded, matrix, e.cfg.UploadChannels); err != nil {
		return err
	}
	data := e.uploadBytes(encoded)

	e.ctx.BindTexture(gl.TEXTURE_2D, tex)
	e.ctx.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, width, height, e.cfg.UploadFormat, e.cfg.UploadType, data)
	e.ctx.BindTexture(gl.TEXTURE_2D, gl.Texture{})
	if err := gl.CheckError(e.ctx, "UploadMatrix"); err != nil {
		return e.transferErr("upload", err)
	}
	e.observe("upload", len(data), "upload", start)
	return nil
}

// UploadPackedMatrix writes a rows x cols matrix into tex using the packed
// layout, four logical values per texel.
func (e *Engine) UploadPackedMatrix(tex gl.Texture, rows, cols int, matrix []float32) error {
	start := time.Now()
	packed, err := layout.EncodePackedRGBA(matrix, rows, cols)
	if err != nil {
		return err
	}
	width, height := layout.PackedShape(rows, cols)
	data := e.uploadBytes(packed)

	e.ctx.BindTexture(gl.TEXTURE_2D, tex)
	e.ctx.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, width, height, gl.RGBA, e.cfg.UploadType, data)
	e.ctx.BindTexture(gl.TEXTURE_2D, gl.Texture{})
	if err := gl.CheckError(e.ctx, "UploadPackedMatrix"); err != nil {
		return e.transferErr("uploadPacked", err)
	}
	e.observe("uploadPacked", len(data), "upload", start)
	return nil
}

// UploadPixelData writes raw RGBA texel bytes into a pixelData texture.
func (e *Engine) UploadPixelData(tex gl.Texture, rows, cols int, pixels []byte) error {
	if len(pixels) != rows*cols*4 {
		return fmt.Errorf("%w: pixel buffer holds %d bytes, want %dx%dx4=%d", layout.ErrShapeMismatch, len(pixels), rows, cols, rows*cols*4)
	}
	start := time.Now()
	e.ctx.BindTexture(gl.TEXTURE_2D, tex)
	e.ctx.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, cols, rows, gl.RGBA, gl.UNSIGNED_BYTE, pixels)
	e.ctx.BindTexture(gl.TEXTURE_2D, gl.Texture{})
	if err := gl.CheckError(e.ctx, "UploadPixelData"); err != nil {
		return e.transferErr("uploadPixelData", err)
	}
	e.observe("uploadPixelData", len(pixels), "upload", start)
	return nil
}

// bindReadFramebuffer attaches tex to the engine's readback framebuffer,
// creating it on first use, and verifies completeness.
func (e *Engine) bindReadFramebuffer(tex gl.Texture, op string) error {
	if !e.fbo.Valid() {
		e.fbo = e.ctx.CreateFramebuffer()
	}
	e.ctx.BindFramebuffer(gl.FRAMEBUFFER, e.fbo)
	e.ctx.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, tex, 0)
	if status := e.ctx.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		e.unbindReadFramebuffer()
		return e.transferErr(op, fmt.Errorf("framebuffer incomplete: %s", gl.EnumName(status)))
	}
	return nil
}

func (e *Engine) unbindReadFramebuffer() {
	e.ctx.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, gl.Texture{}, 0)
	e.ctx.BindFramebuffer(gl.FRAMEBUFFER, gl.Framebuffer{})
}

// decodeUnpackedPixels turns a raw readback buffer into the logical matrix
// per the descriptor's download mode.
func (e *Engine) decodeUnpackedPixels(pixels []byte, size int) ([]float32, error) {
	if e.cfg.DownloadMode == capability.DownloadQuantizedByte {
		// Each texel's four bytes are the little-endian bit pattern of one
		// float32. Reinterpret, never rescale.
		if len(pixels) < size*4 {
			return nil, fmt.Errorf("%w: byte readback holds %d bytes, need %d", layout.ErrShapeMismatch, len(pixels), size*4)
		}
		matrix := make([]float32, size)
		for i := range matrix {
			matrix[i] = layout.Float32At(pixels, i)
		}
		return matrix, nil
	}
	floats, err := layout.DecodeFloat32Bytes(pixels)
	if err != nil {
		return nil, err
	}
	return layout.DecodeUnpacked(floats, e.cfg.DownloadUnpackChannels, size)
}

// downloadSize returns the readback buffer size in bytes for an unpacked
// width x height extent under the current download mode.
func (e *Engine) downloadSize(width, height int) int {
	if e.cfg.DownloadMode == capability.DownloadQuantizedByte {
		return width * height * 4
	}
	return width * height * 4 * 4
}

// DownloadMatrix synchronously reads tex back into a rows x cols matrix
// using the unpacked layout. The call blocks until the driver has finished
// all pending work on the texture.
func (e *Engine) DownloadMatrix(tex gl.Texture, rows, cols int) ([]float32, error) {
	start := time.Now()
	width, height := layout.UnpackedShape(rows, cols, e.cfg.MaxTextureSize)
	if err := e.bindReadFramebuffer(tex, "download"); err != nil {
		return nil, err
	}
	defer e.unbindReadFramebuffer()

	pixels := make([]byte, e.downloadSize(width, height))
	e.ctx.ReadPixels(0, 0, width, height, e.cfg.DownloadFormat, e.cfg.DownloadType, pixels)
	if err := gl.CheckError(e.ctx, "DownloadMatrix"); err != nil {
		return nil, e.transferErr("download", err)
	}

	matrix, err := e.decodeUnpackedPixels(pixels, rows*cols)
	if err != nil {
		return nil, err
	}
	e.observe("download", len(pixels), "download", start)
	return matrix, nil
}

// DownloadMatrixAsync reads tex back through a pixel-pack buffer, handing
// the wait to the async-read extension so the calling goroutine suspends
// instead of stalling the pipeline. The read is issued after all prior
// commands touching the texture; once issued it runs to completion on the
// GPU even if ctx expires, in which case the call returns the context
// error and no partial matrix.
func (e *Engine) DownloadMatrixAsync(ctx context.Context, tex gl.Texture, rows, cols int) ([]float32, error) {
	if e.async == nil {
		return nil, ErrNoAsyncRead
	}
	start := time.Now()
	width, height := layout.UnpackedShape(rows, cols, e.cfg.MaxTextureSize)
	if err := e.bindReadFramebuffer(tex, "downloadAsync"); err != nil {
		return nil, err
	}
	defer e.unbindReadFramebuffer()

	size := e.downloadSize(width, height)
	buf := e.ctx.CreateBuffer()
	defer e.ctx.DeleteBuffer(buf)

	e.ctx.BindBuffer(gl.PIXEL_PACK_BUFFER, buf)
	e.ctx.BufferDataSize(gl.PIXEL_PACK_BUFFER, size, gl.STREAM_READ)
	e.ctx.ReadPixelsToBuffer(0, 0, width, height, e.cfg.DownloadFormat, e.cfg.DownloadType, 0)
	if err := gl.CheckError(e.ctx, "DownloadMatrixAsync"); err != nil {
		e.ctx.BindBuffer(gl.PIXEL_PACK_BUFFER, gl.Buffer{})
		return nil, e.transferErr("downloadAsync", err)
	}

	pixels := make([]byte, size)
	err := e.async.GetBufferSubDataAsync(ctx, gl.PIXEL_PACK_BUFFER, 0, pixels)
	e.ctx.BindBuffer(gl.PIXEL_PACK_BUFFER, gl.Buffer{})
	if err != nil {
		return nil, e.transferErr("downloadAsync", err)
	}

	matrix, err := e.decodeUnpackedPixels(pixels, rows*cols)
	if err != nil {
		return nil, err
	}
	e.observe("downloadAsync", size, "download", start)
	return matrix, nil
}

// DownloadMatrixFromBuffer reads a matrix out of a pixel-pack buffer that
// an earlier GPU command filled, blocking until the data is available.
func (e *Engine) DownloadMatrixFromBuffer(buf gl.Buffer, rows, cols int) ([]float32, error) {
	start := time.Now()
	width, height := layout.UnpackedShape(rows, cols, e.cfg.MaxTextureSize)
	pixels := make([]byte, e.downloadSize(width, height))

	e.ctx.BindBuffer(gl.PIXEL_PACK_BUFFER, buf)
	e.ctx.GetBufferSubData(gl.PIXEL_PACK_BUFFER, 0, pixels)
	e.ctx.BindBuffer(gl.PIXEL_PACK_BUFFER, gl.Buffer{})
	if err := gl.CheckError(e.ctx, "DownloadMatrixFromBuffer"); err != nil {
		return nil, e.transferErr("downloadBuffer", err)
	}

	matrix, err := e.decodeUnpackedPixels(pixels, rows*cols)
	if err != nil {
		return nil, err
	}
	e.observe("downloadBuffer", len(pixels), "download", start)
	return matrix, nil
}

// DownloadPackedMatrix synchronously reads a packed texture back into a
// rows x cols matrix.
func (e *Engine) DownloadPackedMatrix(tex gl.Texture, rows, cols int) ([]float32, error) {
	start := time.Now()
	width, height := layout.PackedShape(rows, cols)
	if err := e.bindReadFramebuffer(tex, "downloadPacked"); err != nil {
		return nil, err
	}
	defer e.unbindReadFramebuffer()

	pixels := make([]byte, width*height*4*4)
	e.ctx.ReadPixels(0, 0, width, height, gl.RGBA, gl.FLOAT, pixels)
	if err := gl.CheckError(e.ctx, "DownloadPackedMatrix"); err != nil {
		return nil, e.transferErr("downloadPacked", err)
	}

	floats, err := layout.DecodeFloat32Bytes(pixels)
	if err != nil {
		return nil, err
	}
	matrix, err := layout.DecodePackedRGBA(floats, rows, cols)
	if err != nil {
		return nil, err
	}
	e.observe("downloadPacked", len(pixels), "download", start)
	return matrix, nil
}

// DownloadColorMatrix synchronously reads raw RGBA bytes from tex and
// returns the first channels of each texel as literal 0-255 values.
func (e *Engine) DownloadColorMatrix(tex gl.Texture, rows, cols, channels int) ([]float32, error) {
	start := time.Now()
	if err := e.bindReadFramebuffer(tex, "downloadColor"); err != nil {
		return nil, err
	}
	defer e.unbindReadFramebuffer()

	pixels := make([]byte, rows*cols*4)
	e.ctx.ReadPixels(0, 0, cols, rows, gl.RGBA, gl.UNSIGNED_BYTE, pixels)
	if err := gl.CheckError(e.ctx, "DownloadColorMatrix"); err != nil {
		return nil, e.transferErr("downloadColor", err)
	}

	matrix, err := layout.DecodeColorRGBA(pixels, rows, cols, channels)
	if err != nil {
		return nil, err
	}
	e.observe("downloadColor", len(pixels), "download", start)
	return matrix, nil
}

// UploadDense uploads a gonum Dense matrix using the unpacked layout.
func (e *Engine) UploadDense(tex gl.Texture, d *mat.Dense) error {
	data, rows, cols := matconv.DenseToFloat32(d)
	return e.UploadMatrix(tex, rows, cols, data)
}

// DownloadDense downloads an unpacked texture into a gonum Dense matrix.
func (e *Engine) DownloadDense(tex gl.Texture, rows, cols int) (*mat.Dense, error) {
	data, err := e.DownloadMatrix(tex, rows, cols)
	if err != nil {
		return nil, err
	}
	return matconv.DenseFromFloat32(data, rows, cols)
}
