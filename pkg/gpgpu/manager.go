// Package gpgpu manages GPU texture resources and moves matrix data
// between host memory and textures. It is the only package that issues GL
// calls; the layout package supplies every host-side conversion.
package gpgpu

import (
	"fmt"

	"github.com/fxnlabs/webgl-matrix/internal/metrics"
	"github.com/fxnlabs/webgl-matrix/pkg/capability"
	"github.com/fxnlabs/webgl-matrix/pkg/gl"
	"github.com/fxnlabs/webgl-matrix/pkg/layout"
	"go.uber.org/zap"
)

// Role selects what a texture will be used for. It determines the shape
// function, channel count, and format/type triple of the allocation.
type Role int

const (
	// RoleUpload holds unpacked matrix data written from the host.
	RoleUpload Role = iota
	// RoleRender is an unpacked render target for GPU computation.
	RoleRender
	// RolePacked holds the packed layout: four logical values per texel.
	RolePacked
	// RolePixelData holds raw RGBA bytes, typically image-derived.
	RolePixelData
)

func (r Role) String() string {
	switch r {
	case RoleUpload:
		return "upload"
	case RoleRender:
		return "render"
	case RolePacked:
		return "packed"
	case RolePixelData:
		return "pixelData"
	default:
		return "unknown"
	}
}

// Manager allocates and configures texture objects per the resolved
// capability descriptor. Texture lifetime stays with the caller; the
// manager never retains handles.
type Manager struct {
	ctx gl.Context
	cfg *capability.TextureConfig
	log *zap.Logger
}

// NewManager returns a manager issuing calls against ctx using the given
// descriptor. A nil logger defaults to zap.NewNop.
func NewManager(ctx gl.Context, cfg *capability.TextureConfig, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{ctx: ctx, cfg: cfg, log: log.Named("gpgpu")}
}

// textureShape returns the physical dimensions for a role.
func (m *Manager) textureShape(rows, cols int, role Role) (width, height int) {
	if role == RolePacked {
		return layout.PackedShape(rows, cols)
	}
	if role == RolePixelData {
		return cols, rows
	}
	return layout.UnpackedShape(rows, cols, m.cfg.MaxTextureSize)
}

// formatTriple returns internal format, pixel format, and texel type for a
// role. Half-float internal storage is selected when the descriptor's
// upload type resolved to a half-float type.
func (m *Manager) formatTriple(role Role) (internal, format, xtype gl.Enum) {
	switch role {
	case RolePixelData:
		return gl.RGBA, gl.RGBA, gl.UNSIGNED_BYTE
	case RolePacked:
		return m.cfg.InternalFormatPacked, gl.RGBA, m.cfg.UploadType
	case RoleRender:
		internal = m.cfg.InternalFormatFloat
		if m.cfg.RenderType != gl.FLOAT {
			internal = m.cfg.InternalFormatHalfFloat
		}
		return internal, m.cfg.UploadFormat, m.cfg.RenderType
	default: // RoleUpload
		internal = m.cfg.InternalFormatFloat
		if m.cfg.UploadType != gl.FLOAT {
			internal = m.cfg.InternalFormatHalfFloat
		}
		return internal, m.cfg.UploadFormat, m.cfg.UploadType
	}
}

// Allocate creates and configures a texture sized for a rows x cols
// logical matrix in the given role. Dimensions are validated against the
// platform maximum before any GL call. The texture is configured with
// clamp-to-edge wrapping, nearest filtering, and no mipmaps, then unbound;
// no data is uploaded.
func (m *Manager) Allocate(rows, cols int, role Role) (gl.Texture, error) {
	width, height := m.textureShape(rows, cols, role)
	if width > m.cfg.MaxTextureSize || height > m.cfg.MaxTextureSize {
		return gl.Texture{}, fmt.Errorf("%w: %dx%d texels for %dx%d matrix (role %s, max %d)",
			ErrTextureSize, width, height, rows, cols, role, m.cfg.MaxTextureSize)
	}

	internal, format, xtype := m.formatTriple(role)

	tex := m.ctx.CreateTexture()
	m.ctx.BindTexture(gl.TEXTURE_2D, tex)
	m.ctx.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	m.ctx.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	m.ctx.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	m.ctx.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	m.ctx.TexImage2D(gl.TEXTURE_2D, 0, internal, width, height, format, xtype, nil)
	m.ctx.BindTexture(gl.TEXTURE_2D, gl.Texture{})

	if err := gl.CheckError(m.ctx, "Allocate"); err != nil {
		m.ctx.DeleteTexture(tex)
		return gl.Texture{}, fmt.Errorf("%w: %v", ErrTransfer, err)
	}

	metrics.TextureAllocations.WithLabelValues(role.String()).Inc()
	metrics.TextureAllocationTexels.Set(float64(width * height))
	m.log.Debug("allocated texture",
		zap.Int("rows", rows), zap.Int("cols", cols),
		zap.Int("width", width), zap.Int("height", height),
		zap.String("role", role.String()),
		zap.String("internalFormat", gl.EnumName(internal)),
		zap.String("type", gl.EnumName(xtype)))
	return tex, nil
}

// Dispose releases a texture allocated by this manager.
func (m *Manager) Dispose(tex gl.Texture) {
	if tex.Valid() {
		m.ctx.DeleteTexture(tex)
	}
}
