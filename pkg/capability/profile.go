package capability

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is a capability set in YAML form. Profiles stand in for live
// feature probing: tooling and tests load one instead of interrogating a
// real context. Profile implements Provider.
type Profile struct {
	Name           string `yaml:"name"`
	GL             Tier   `yaml:"gl"`
	FloatRender    bool   `yaml:"floatRender"`
	FloatRead      bool   `yaml:"floatRead"`
	HalfFloatExt   bool   `yaml:"halfFloatExt"`
	MaxTextureSize int    `yaml:"maxTextureSize"`
}

// GLTier implements Provider.
func (p *Profile) GLTier() Tier { return p.GL }

// FloatRenderable implements Provider.
func (p *Profile) FloatRenderable() bool { return p.FloatRender }

// FloatDownload implements Provider.
func (p *Profile) FloatDownload() bool { return p.FloatRead }

// HalfFloat implements Provider.
func (p *Profile) HalfFloat() bool { return p.HalfFloatExt }

// Set converts the profile into an immutable capability set.
func (p *Profile) Set() Set {
	s := FromProvider(p)
	if p.MaxTextureSize > 0 {
		s = s.WithMaxTextureSize(p.MaxTextureSize)
	}
	return s
}

// ParseProfile unmarshals a YAML profile.
func ParseProfile(data []byte) (*Profile, error) {
	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	if profile.GL != TierLegacy && profile.GL != TierModern {
		return nil, fmt.Errorf("%w: profile %q has unknown GL tier %q", ErrUnsupported, profile.Name, profile.GL)
	}
	return &profile, nil
}

// LoadProfile reads a YAML capability profile from disk.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseProfile(data)
}
