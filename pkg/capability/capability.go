// Package capability resolves what the current GPU context can do into an
// immutable texture format descriptor. Capabilities are probed (or loaded
// from a profile) once per context; every downstream component receives
// the resolved values explicitly instead of consulting ambient state.
package capability

import "github.com/fxnlabs/webgl-matrix/pkg/gl"

// Tier is the GL feature generation of the context.
type Tier string

const (
	// TierLegacy is WebGL1/ES2-class: RGBA-only float textures gated on
	// extensions.
	TierLegacy Tier = "legacy"
	// TierModern is WebGL2/ES3-class: sized single-channel float formats
	// are core.
	TierModern Tier = "modern"
)

// DefaultMaxTextureSize is assumed when a provider carries no explicit
// limit and the context was not queried.
const DefaultMaxTextureSize = 16384

// Provider exposes the feature flags of an environment. Hosts implement
// it against their feature-detection layer; tests and tooling use Profile.
type Provider interface {
	// GLTier reports the context's GL generation.
	GLTier() Tier
	// FloatRenderable reports whether float textures can be render targets.
	FloatRenderable() bool
	// FloatDownload reports whether ReadPixels supports the FLOAT type.
	FloatDownload() bool
	// HalfFloat reports whether a half-float texture extension is present.
	HalfFloat() bool
}

// Set is the immutable capability record for one GPU context. Resolve
// consumes it; nothing mutates it afterward. A Set is only invalidated by
// recreating the context it describes.
type Set struct {
	Tier            Tier
	FloatRenderable bool
	FloatDownload   bool
	HalfFloat       bool
	MaxTextureSize  int
}

// FromProvider snapshots a provider's flags into a Set with the default
// texture size limit.
func FromProvider(p Provider) Set {
	return Set{
		Tier:            p.GLTier(),
		FloatRenderable: p.FloatRenderable(),
		FloatDownload:   p.FloatDownload(),
		HalfFloat:       p.HalfFloat(),
		MaxTextureSize:  DefaultMaxTextureSize,
	}
}

// WithMaxTextureSize returns a copy of the set carrying the given limit.
func (s Set) WithMaxTextureSize(n int) Set {
	s.MaxTextureSize = n
	return s
}

// QueryMaxTextureSize asks the context for its texture dimension limit.
func QueryMaxTextureSize(ctx gl.Context) int {
	return ctx.GetInteger(gl.MAX_TEXTURE_SIZE)
}
