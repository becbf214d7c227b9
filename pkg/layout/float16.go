package layout

import "math"

// IEEE-754 binary16 conversion. A Go host must produce half-float texel
// data itself when the resolved upload type is a half-float type; the
// conversion truncates the mantissa, matching what GL drivers do when
// clients upload FLOAT data to half-float storage.

const (
	f16SignMask     = 0x8000
	f16ExponentMask = 0x7C00
	f16MantissaMask = 0x03FF
)

// Float16Bits converts a float32 to its binary16 bit pattern. Values
// below the subnormal range flush to signed zero; values above the
// representable range become infinity.
func Float16Bits(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16(bits>>16) & f16SignMask
	exponent := (bits >> 23) & 0xFF
	mantissa := bits & 0x7FFFFF

	if exponent == 0xFF {
		if mantissa == 0 {
			return sign | f16ExponentMask
		}
		nan := sign | f16ExponentMask | uint16(mantissa>>13)
		if nan&f16MantissaMask == 0 {
			nan |= 1 // keep NaN from collapsing to infinity
		}
		return nan
	}

	exp := int(exponent) - 127 + 15
	if exp <= 0 {
		return sign
	}
	if exp >= 0x1F {
		return sign | f16ExponentMask
	}
	return sign | uint16(exp)<<10 | uint16(mantissa>>13)
}

// Float16From converts a binary16 bit pattern to float32. The conversion
// is exact for every binary16 value, subnormals included.
func Float16From(bits uint16) float32 {
	sign := uint32(bits&f16SignMask) << 16
	exponent := (bits & f16ExponentMask) >> 10
	mantissa := bits & f16MantissaMask

	if exponent == 0 {
		if mantissa == 0 {
			return math.Float32frombits(sign)
		}
		exp := uint32(1)
		for mantissa&0x200 == 0 {
			mantissa <<= 1
			exp++
		}
		mantissa &= 0x1FF
		return math.Float32frombits(sign | (127-15-exp+1)<<23 | uint32(mantissa)<<13)
	}
	if exponent == 0x1F {
		if mantissa == 0 {
			return math.Float32frombits(sign | 0x7F800000)
		}
		return math.Float32frombits(sign | 0x7FC00000 | uint32(mantissa)<<13)
	}
	return math.Float32frombits(sign | (uint32(exponent)+127-15)<<23 | uint32(mantissa)<<13)
}

// EncodeFloat16 converts a float32 buffer to binary16 bit patterns.
func EncodeFloat16(values []float32) []uint16 {
	out := make([]uint16, len(values))
	for i, v := range values {
		out[i] = Float16Bits(v)
	}
	return out
}

// DecodeFloat16 converts binary16 bit patterns back to float32.
func DecodeFloat16(bits []uint16) []float32 {
	out := make([]float32, len(bits))
	for i, v := range bits {
		out[i] = Float16From(v)
	}
	return out
}
