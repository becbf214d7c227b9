package capability

import (
	"errors"
	"fmt"

	"github.com/fxnlabs/webgl-matrix/pkg/gl"
)

// ErrUnsupported reports a capability combination this core cannot run on.
var ErrUnsupported = errors.New("capability: unsupported configuration")

// DownloadMode selects how readback pixels are interpreted. It is decided
// once per context by Resolve and threaded through the transfer engine;
// nothing re-queries capabilities per call.
type DownloadMode int

const (
	// DownloadFloat reads RGBA/FLOAT pixels, one float32 per channel.
	DownloadFloat DownloadMode = iota
	// DownloadQuantizedByte reads RGBA/UNSIGNED_BYTE pixels whose four
	// channels are the little-endian bytes of one float32. The bytes are
	// reinterpreted bit-for-bit, never rescaled; exact round trips require
	// that the texel bytes were produced from float32 values.
	DownloadQuantizedByte
)

func (m DownloadMode) String() string {
	if m == DownloadQuantizedByte {
		return "quantized-byte"
	}
	return "float"
}

// TextureConfig is the texture format descriptor derived from a Set. It is
// immutable and safe to share across every operation against the context
// it was resolved for.
type TextureConfig struct {
	// Internal storage formats by precision/layout.
	InternalFormatFloat     gl.Enum
	InternalFormatHalfFloat gl.Enum
	InternalFormatPacked    gl.Enum

	// Upload side: pixel format, texel type, and how many channels of each
	// texel carry data (1 on the modern tier, 4 on legacy RGBA).
	UploadFormat   gl.Enum
	UploadType     gl.Enum
	UploadChannels int

	// HalfFloatType is the texel type for half-float storage: the core
	// HALF_FLOAT enum on the modern tier, the vendor extension value on
	// legacy. Zero when half-float is unavailable.
	HalfFloatType gl.Enum

	// RenderType is the texel type render targets must use.
	RenderType gl.Enum

	// Download side. DownloadUnpackChannels is always 4: drivers return
	// RGBA regardless of the stored format, so decoders fold back to one
	// logical channel themselves.
	DownloadFormat         gl.Enum
	DownloadType           gl.Enum
	DownloadMode           DownloadMode
	DownloadUnpackChannels int

	MaxTextureSize int
}

// Resolve derives the texture format descriptor from a capability set and
// an optional half-float extension. It is pure: identical inputs always
// produce identical descriptors, and no context state is touched.
//
// A failed resolution is final. The core never substitutes a different
// numeric precision behind the caller's back.
func Resolve(set Set, hf gl.HalfFloatExtension) (*TextureConfig, error) {
	maxSize := set.MaxTextureSize
	if maxSize <= 0 {
		maxSize = DefaultMaxTextureSize
	}

	cfg := &TextureConfig{
		DownloadFormat:         gl.RGBA,
		DownloadUnpackChannels: 4,
		MaxTextureSize:         maxSize,
	}

	switch set.Tier {
	case TierModern:
		// Sized single-channel formats are core; no extension gating.
		cfg.InternalFormatFloat = gl.R32F
		cfg.InternalFormatHalfFloat = gl.R16F
		cfg.InternalFormatPacked = gl.RGBA32F
		cfg.UploadFormat = gl.RED
		cfg.UploadType = gl.FLOAT
		cfg.UploadChannels = 1
		cfg.HalfFloatType = gl.HALF_FLOAT
		cfg.RenderType = gl.FLOAT

	case TierLegacy:
		cfg.InternalFormatFloat = gl.RGBA
		cfg.InternalFormatHalfFloat = gl.RGBA
		cfg.InternalFormatPacked = gl.RGBA
		cfg.UploadFormat = gl.RGBA
		cfg.UploadChannels = 4
		if set.HalfFloat && hf != nil {
			cfg.HalfFloatType = hf.HalfFloatType()
		}
		if set.FloatRenderable {
			cfg.UploadType = gl.FLOAT
			cfg.RenderType = gl.FLOAT
		} else {
			if cfg.HalfFloatType == 0 {
				return nil, fmt.Errorf("%w: legacy tier with neither float rendering nor a half-float extension", ErrUnsupported)
			}
			cfg.UploadType = cfg.HalfFloatType
			cfg.RenderType = cfg.HalfFloatType
		}

	default:
		return nil, fmt.Errorf("%w: unknown GL tier %q", ErrUnsupported, set.Tier)
	}

	if set.FloatDownload {
		cfg.DownloadType = gl.FLOAT
		cfg.DownloadMode = DownloadFloat
	} else {
		cfg.DownloadType = gl.UNSIGNED_BYTE
		cfg.DownloadMode = DownloadQuantizedByte
	}

	return cfg, nil
}
