package layout

import "math"

// Byte-level float transport. GL hands pixel data across the boundary as
// raw bytes; these helpers pin the layout to little-endian IEEE-754 with
// explicit byte arithmetic so the encoding is identical on every host.
//
// The quantized-byte download path depends on this being a bit-pattern
// reinterpretation: each texel's four UNSIGNED_BYTE channels are the bytes
// of one float32. Rescaling byte values into [0,1] would be a different
// (lossy) operation and is deliberately not provided.

// Float32FromBytes reassembles a float32 from its four little-endian bytes.
func Float32FromBytes(b0, b1, b2, b3 byte) float32 {
	bits := uint32(b0) | uint32(b1)<<8 | uint32(b2)<<16 | uint32(b3)<<24
	return math.Float32frombits(bits)
}

// Float32At reads the little-endian float32 starting at index i*4 of b.
func Float32At(b []byte, i int) float32 {
	return Float32FromBytes(b[i*4], b[i*4+1], b[i*4+2], b[i*4+3])
}

// Float32Bytes returns the four little-endian bytes of v.
func Float32Bytes(v float32) [4]byte {
	bits := math.Float32bits(v)
	return [4]byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)}
}

// Uint16Bytes returns the two little-endian bytes of v.
func Uint16Bytes(v uint16) [2]byte {
	return [2]byte{byte(v), byte(v >> 8)}
}

// EncodeFloat32Bytes flattens values into a little-endian byte buffer,
// four bytes per value.
func EncodeFloat32Bytes(values []float32) []byte {
	b := make([]byte, len(values)*4)
	for i, v := range values {
		bits := math.Float32bits(v)
		b[i*4] = byte(bits)
		b[i*4+1] = byte(bits >> 8)
		b[i*4+2] = byte(bits >> 16)
		b[i*4+3] = byte(bits >> 24)
	}
	return b
}

// DecodeFloat32Bytes parses a little-endian byte buffer into float32
// values. The buffer length must be a multiple of four.
func DecodeFloat32Bytes(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, shapeErr("float byte buffer length %d is not a multiple of 4", len(b))
	}
	values := make([]float32, len(b)/4)
	for i := range values {
		values[i] = Float32At(b, i)
	}
	return values, nil
}

// EncodeUint16Bytes flattens values into a little-endian byte buffer,
// two bytes per value. Used for half-float texel uploads.
func EncodeUint16Bytes(values []uint16) []byte {
	b := make([]byte, len(values)*2)
	for i, v := range values {
		b[i*2] = byte(v)
		b[i*2+1] = byte(v >> 8)
	}
	return b
}
