package gpgpu

import (
	"context"
	"testing"
	"time"

	"github.com/fxnlabs/webgl-matrix/fixtures"
	"github.com/fxnlabs/webgl-matrix/pkg/capability"
	"github.com/fxnlabs/webgl-matrix/pkg/gl"
	"github.com/fxnlabs/webgl-matrix/pkg/gl/gltest"
	"github.com/fxnlabs/webgl-matrix/pkg/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

type rig struct {
	ctx     *gltest.Context
	manager *Manager
	engine  *Engine
}

func newRig(t *testing.T, profile []byte) *rig {
	t.Helper()
	ctx := gltest.NewContext()
	cfg := resolveProfile(t, profile)
	engine := NewEngine(ctx, cfg, &gltest.AsyncReader{Context: ctx}, nil)
	t.Cleanup(engine.Close)
	return &rig{ctx: ctx, manager: NewManager(ctx, cfg, nil), engine: engine}
}

func TestRoundTripUnpackedAcrossProfiles(t *testing.T) {
	// Every value is exactly representable in binary16, so the half-float
	// profile round-trips bit-for-bit too.
	matrix := []float32{1, 2, 3.5, -4, 0.25, 1024}

	for name, profile := range fixtures.Profiles() {
		t.Run(name, func(t *testing.T) {
			r := newRig(t, profile)
			tex, err := r.manager.Allocate(2, 3, RoleUpload)
			require.NoError(t, err)

			require.NoError(t, r.engine.UploadMatrix(tex, 2, 3, matrix))
			got, err := r.engine.DownloadMatrix(tex, 2, 3)
			require.NoError(t, err)
			assert.Equal(t, matrix, got)
		})
	}
}

func TestRoundTripPacked(t *testing.T) {
	shapes := [][2]int{{1, 1}, {2, 2}, {3, 3}, {5, 7}}
	for _, s := range shapes {
		rows, cols := s[0], s[1]
		r := newRig(t, fixtures.ProfileWebGL2)

		matrix := make([]float32, rows*cols)
		for i := range matrix {
			matrix[i] = float32(i + 1)
		}

		tex, err := r.manager.Allocate(rows, cols, RolePacked)
		require.NoError(t, err)
		require.NoError(t, r.engine.UploadPackedMatrix(tex, rows, cols, matrix))

		got, err := r.engine.DownloadPackedMatrix(tex, rows, cols)
		require.NoError(t, err)
		assert.Equal(t, matrix, got, "shape %dx%d", rows, cols)
	}
}

func TestPackedTwoByTwoIsOneTexel(t *testing.T) {
	r := newRig(t, fixtures.ProfileWebGL2)
	tex, err := r.manager.Allocate(2, 2, RolePacked)
	require.NoError(t, err)

	width, height, _, _, _, ok := r.ctx.TextureInfo(tex)
	require.True(t, ok)
	assert.Equal(t, 1, width)
	assert.Equal(t, 1, height)

	require.NoError(t, r.engine.UploadPackedMatrix(tex, 2, 2, []float32{1, 2, 3, 4}))
	got, err := r.engine.DownloadPackedMatrix(tex, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4}, got)
}

func TestQuantizedByteDownloadReinterprets(t *testing.T) {
	// webgl1_byte reads back UNSIGNED_BYTE texels holding float32 bit
	// patterns. 1.5 must come back as exactly 1.5.
	r := newRig(t, fixtures.ProfileWebGL1Byte)
	tex, err := r.manager.Allocate(1, 2, RoleUpload)
	require.NoError(t, err)

	require.NoError(t, r.engine.UploadMatrix(tex, 1, 2, []float32{1.5, -2.75}))
	got, err := r.engine.DownloadMatrix(tex, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, -2.75}, got)
}

func TestUploadMatrixShapeMismatch(t *testing.T) {
	r := newRig(t, fixtures.ProfileWebGL2)
	tex, err := r.manager.Allocate(2, 2, RoleUpload)
	require.NoError(t, err)

	err = r.engine.UploadMatrix(tex, 2, 2, []float32{1, 2, 3})
	assert.ErrorIs(t, err, layout.ErrShapeMismatch)

	err = r.engine.UploadPackedMatrix(tex, 2, 2, []float32{1})
	assert.ErrorIs(t, err, layout.ErrShapeMismatch)
}

func TestColorMatrixRoundTrip(t *testing.T) {
	r := newRig(t, fixtures.ProfileWebGL2)
	tex, err := r.manager.Allocate(1, 2, RolePixelData)
	require.NoError(t, err)

	pixels := []byte{10, 20, 30, 255, 40, 50, 60, 255}
	require.NoError(t, r.engine.UploadPixelData(tex, 1, 2, pixels))

	got, err := r.engine.DownloadColorMatrix(tex, 1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []float32{10, 20, 30, 40, 50, 60}, got)
}

func TestUploadPixelDataShapeMismatch(t *testing.T) {
	r := newRig(t, fixtures.ProfileWebGL2)
	tex, err := r.manager.Allocate(1, 2, RolePixelData)
	require.NoError(t, err)

	err = r.engine.UploadPixelData(tex, 1, 2, []byte{1, 2, 3})
	assert.ErrorIs(t, err, layout.ErrShapeMismatch)
}

func TestDownloadMatrixAsync(t *testing.T) {
	matrix := []float32{1, 2, 3, 4, 5, 6}

	for name, profile := range fixtures.Profiles() {
		t.Run(name, func(t *testing.T) {
			r := newRig(t, profile)
			tex, err := r.manager.Allocate(3, 2, RoleUpload)
			require.NoError(t, err)
			require.NoError(t, r.engine.UploadMatrix(tex, 3, 2, matrix))

			sync, err := r.engine.DownloadMatrix(tex, 3, 2)
			require.NoError(t, err)

			async, err := r.engine.DownloadMatrixAsync(context.Background(), tex, 3, 2)
			require.NoError(t, err)
			assert.Equal(t, sync, async)
			assert.Zero(t, r.ctx.BufferCount(), "pixel-pack buffer must be released")
		})
	}
}

func TestDownloadMatrixAsyncWithoutExtension(t *testing.T) {
	ctx := gltest.NewContext()
	engine := NewEngine(ctx, resolveProfile(t, fixtures.ProfileWebGL2), nil, nil)
	defer engine.Close()

	_, err := engine.DownloadMatrixAsync(context.Background(), gl.Texture{V: 1}, 1, 1)
	assert.ErrorIs(t, err, ErrNoAsyncRead)
}

func TestDownloadMatrixAsyncContextExpiry(t *testing.T) {
	glctx := gltest.NewContext()
	cfg := resolveProfile(t, fixtures.ProfileWebGL2)
	manager := NewManager(glctx, cfg, nil)
	engine := NewEngine(glctx, cfg, &gltest.AsyncReader{Context: glctx, Delay: 200 * time.Millisecond}, nil)
	defer engine.Close()

	tex, err := manager.Allocate(2, 2, RoleUpload)
	require.NoError(t, err)
	require.NoError(t, engine.UploadMatrix(tex, 2, 2, []float32{1, 2, 3, 4}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	got, err := engine.DownloadMatrixAsync(ctx, tex, 2, 2)
	assert.ErrorIs(t, err, ErrTransfer)
	assert.Nil(t, got, "an expired download returns no partial matrix")
}

func TestDownloadMatrixFromBuffer(t *testing.T) {
	r := newRig(t, fixtures.ProfileWebGL2)
	tex, err := r.manager.Allocate(2, 2, RoleUpload)
	require.NoError(t, err)
	matrix := []float32{9, 8, 7, 6}
	require.NoError(t, r.engine.UploadMatrix(tex, 2, 2, matrix))

	// Fill a pixel-pack buffer the way a prior GPU command would.
	fbo := r.ctx.CreateFramebuffer()
	r.ctx.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	r.ctx.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, tex, 0)
	buf := r.ctx.CreateBuffer()
	r.ctx.BindBuffer(gl.PIXEL_PACK_BUFFER, buf)
	r.ctx.BufferDataSize(gl.PIXEL_PACK_BUFFER, 2*2*4*4, gl.STREAM_READ)
	r.ctx.ReadPixelsToBuffer(0, 0, 2, 2, gl.RGBA, gl.FLOAT, 0)
	r.ctx.BindBuffer(gl.PIXEL_PACK_BUFFER, gl.Buffer{})
	r.ctx.BindFramebuffer(gl.FRAMEBUFFER, gl.Framebuffer{})
	r.ctx.DeleteFramebuffer(fbo)

	got, err := r.engine.DownloadMatrixFromBuffer(buf, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, matrix, got)
}

func TestDownloadSurfacesGLError(t *testing.T) {
	r := newRig(t, fixtures.ProfileWebGL2)
	tex, err := r.manager.Allocate(2, 2, RoleUpload)
	require.NoError(t, err)
	require.NoError(t, r.engine.UploadMatrix(tex, 2, 2, []float32{1, 2, 3, 4}))

	r.ctx.InjectError(gl.CONTEXT_LOST)
	_, err = r.engine.DownloadMatrix(tex, 2, 2)
	assert.ErrorIs(t, err, ErrTransfer)
	assert.Contains(t, err.Error(), "CONTEXT_LOST")
}

func TestDownloadUnallocatedTextureFails(t *testing.T) {
	r := newRig(t, fixtures.ProfileWebGL2)
	_, err := r.engine.DownloadMatrix(gl.Texture{V: 999}, 2, 2)
	assert.ErrorIs(t, err, ErrTransfer)
}

func TestUploadSurfacesGLError(t *testing.T) {
	r := newRig(t, fixtures.ProfileWebGL2)
	tex, err := r.manager.Allocate(2, 2, RoleUpload)
	require.NoError(t, err)

	r.ctx.InjectError(gl.OUT_OF_MEMORY)
	err = r.engine.UploadMatrix(tex, 2, 2, []float32{1, 2, 3, 4})
	assert.ErrorIs(t, err, ErrTransfer)
}

func TestDenseRoundTrip(t *testing.T) {
	r := newRig(t, fixtures.ProfileWebGL2)
	tex, err := r.manager.Allocate(2, 3, RoleUpload)
	require.NoError(t, err)

	d := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, r.engine.UploadDense(tex, d))

	got, err := r.engine.DownloadDense(tex, 2, 3)
	require.NoError(t, err)
	assert.True(t, mat.Equal(d, got), "got %v", mat.Formatted(got))
}

func TestEngineCloseReleasesFramebuffer(t *testing.T) {
	r := newRig(t, fixtures.ProfileWebGL2)
	tex, err := r.manager.Allocate(1, 1, RoleUpload)
	require.NoError(t, err)
	require.NoError(t, r.engine.UploadMatrix(tex, 1, 1, []float32{1}))

	_, err = r.engine.DownloadMatrix(tex, 1, 1)
	require.NoError(t, err)

	r.engine.Close()
	r.engine.Close() // idempotent
}

func BenchmarkUploadDownload(b *testing.B) {
	ctx := gltest.NewContext()
	p, err := capability.ParseProfile(fixtures.ProfileWebGL2)
	if err != nil {
		b.Fatal(err)
	}
	cfg, err := capability.Resolve(p.Set(), nil)
	if err != nil {
		b.Fatal(err)
	}
	manager := NewManager(ctx, cfg, nil)
	engine := NewEngine(ctx, cfg, nil, nil)
	defer engine.Close()

	const size = 256
	matrix := make([]float32, size*size)
	for i := range matrix {
		matrix[i] = float32(i)
	}
	tex, err := manager.Allocate(size, size, RoleUpload)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := engine.UploadMatrix(tex, size, size, matrix); err != nil {
			b.Fatal(err)
		}
		if _, err := engine.DownloadMatrix(tex, size, size); err != nil {
			b.Fatal(err)
		}
	}
}
