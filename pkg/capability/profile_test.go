package capability

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fxnlabs/webgl-matrix/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProfile(t *testing.T) {
	profile, err := ParseProfile([]byte(`
name: test
gl: legacy
floatRender: true
floatRead: false
halfFloatExt: true
maxTextureSize: 4096
`))
	require.NoError(t, err)

	assert.Equal(t, "test", profile.Name)
	assert.Equal(t, TierLegacy, profile.GLTier())
	assert.True(t, profile.FloatRenderable())
	assert.False(t, profile.FloatDownload())
	assert.True(t, profile.HalfFloat())

	set := profile.Set()
	assert.Equal(t, TierLegacy, set.Tier)
	assert.Equal(t, 4096, set.MaxTextureSize)
}

func TestParseProfileUnknownTier(t *testing.T) {
	_, err := ParseProfile([]byte("name: bad\ngl: directx\n"))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestParseProfileInvalidYAML(t *testing.T) {
	_, err := ParseProfile([]byte("{not yaml"))
	assert.Error(t, err)
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, fixtures.ProfileWebGL2, 0o644))

	profile, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "webgl2", profile.Name)
	assert.Equal(t, TierModern, profile.GLTier())
}

func TestLoadProfileMissingFile(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestEmbeddedProfilesResolve(t *testing.T) {
	for name, data := range fixtures.Profiles() {
		t.Run(name, func(t *testing.T) {
			profile, err := ParseProfile(data)
			require.NoError(t, err)
			assert.Equal(t, name, profile.Name)

			var hf halfFloatExt
			cfg, err := Resolve(profile.Set(), hf)
			require.NoError(t, err)
			assert.Equal(t, 4, cfg.DownloadUnpackChannels)

			// Identical inputs always produce identical descriptors.
			again, err := Resolve(profile.Set(), hf)
			require.NoError(t, err)
			assert.Equal(t, cfg, again)
		})
	}
}

func TestFromProviderDefaultsMaxSize(t *testing.T) {
	profile := &Profile{Name: "p", GL: TierModern}
	set := FromProvider(profile)
	assert.Equal(t, DefaultMaxTextureSize, set.MaxTextureSize)
	assert.Equal(t, 1024, set.WithMaxTextureSize(1024).MaxTextureSize)
}
