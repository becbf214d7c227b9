// Package fixtures embeds capability profiles describing common GPU
// environments, for tests and the glprobe tool.
package fixtures

import (
	_ "embed"
)

//go:embed profiles/webgl2.yaml
var ProfileWebGL2 []byte

//go:embed profiles/webgl1_float.yaml
var ProfileWebGL1Float []byte

//go:embed profiles/webgl1_halffloat.yaml
var ProfileWebGL1HalfFloat []byte

//go:embed profiles/webgl1_byte.yaml
var ProfileWebGL1Byte []byte

// Profiles maps preset names to their embedded YAML.
func Profiles() map[string][]byte {
	return map[string][]byte{
		"webgl2":           ProfileWebGL2,
		"webgl1_float":     ProfileWebGL1Float,
		"webgl1_halffloat": ProfileWebGL1HalfFloat,
		"webgl1_byte":      ProfileWebGL1Byte,
	}
}
