package layout

import "errors"

// ErrShapeMismatch reports a buffer whose length disagrees with the
// declared matrix or texture dimensions.
var ErrShapeMismatch = errors.New("layout: shape mismatch")

// EncodeUnpacked lays out matrix values one per texel: each value goes to
// channel 0 of its texel stride, remaining channels stay zero. With
// channels == 1 this is an identity copy.
func EncodeUnpacked(matrix []float32, channels int) []float32 {
	dst := make([]float32, UnpackedArraySize(len(matrix), channels))
	if channels == 1 {
		copy(dst, matrix)
		return dst
	}
	for i, v := range matrix {
		dst[i*channels] = v
	}
	return dst
}

// EncodeUnpackedInto writes the unpacked layout of matrix into dst, which
// may be larger than matrix needs when the texture was folded to a
// squarish shape; the tail keeps whatever dst already holds.
func EncodeUnpackedInto(dst, matrix []float32, channels int) error {
	if len(dst) < UnpackedArraySize(len(matrix), channels) {
		return shapeErr("unpacked destination holds %d values, need %d", len(dst), len(matrix)*channels)
	}
	if channels == 1 {
		copy(dst, matrix)
		return nil
	}
	for i, v := range matrix {
		dst[i*channels] = v
	}
	return nil
}

// DecodeUnpacked extracts size logical values from an unpacked physical
// buffer by selecting channel 0 of each texel stride. The source may be
// longer than size*channels (folded textures read back their full extent).
func DecodeUnpacked(unpacked []float32, channels, size int) ([]float32, error) {
	if len(unpacked) < UnpackedArraySize(size, channels) {
		return nil, shapeErr("unpacked source holds %d values, need %d", len(unpacked), size*channels)
	}
	matrix := make([]float32, size)
	if channels == 1 {
		copy(matrix, unpacked[:size])
		return matrix, nil
	}
	for i := range matrix {
		matrix[i] = unpacked[i*channels]
	}
	return matrix, nil
}

// EncodePackedRGBA folds a rows x cols matrix into the packed layout: the
// texel at (px, py) carries the 2x2 logical block anchored at
// (2*py, 2*px) in channel order R=(r,c), G=(r,c+1), B=(r+1,c),
// A=(r+1,c+1). Block positions past the matrix bounds are zero.
func EncodePackedRGBA(matrix []float32, rows, cols int) ([]float32, error) {
	if len(matrix) != rows*cols {
		return nil, shapeErr("matrix holds %d values, want %dx%d=%d", len(matrix), rows, cols, rows*cols)
	}
	w, h := PackedShape(rows, cols)
	packed := make([]float32, w*h*4)
	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			r, c := 2*py, 2*px
			texel := (py*w + px) * 4
			packed[texel] = matrix[r*cols+c]
			if c+1 < cols {
				packed[texel+1] = matrix[r*cols+c+1]
			}
			if r+1 < rows {
				packed[texel+2] = matrix[(r+1)*cols+c]
				if c+1 < cols {
					packed[texel+3] = matrix[(r+1)*cols+c+1]
				}
			}
		}
	}
	return packed, nil
}

// DecodePackedRGBA reverses EncodePackedRGBA. Zero-fill positions past the
// matrix bounds are discarded; the bounds check is per logical index, so a
// physically larger readback buffer never leaks padding into the result.
func DecodePackedRGBA(packed []float32, rows, cols int) ([]float32, error) {
	if len(packed) < PackedArraySize(rows, cols) {
		return nil, shapeErr("packed source holds %d values, need %d for %dx%d", len(packed), PackedArraySize(rows, cols), rows, cols)
	}
	w, h := PackedShape(rows, cols)
	matrix := make([]float32, rows*cols)
	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			r, c := 2*py, 2*px
			texel := (py*w + px) * 4
			matrix[r*cols+c] = packed[texel]
			if c+1 < cols {
				matrix[r*cols+c+1] = packed[texel+1]
			}
			if r+1 < rows {
				matrix[(r+1)*cols+c] = packed[texel+2]
				if c+1 < cols {
					matrix[(r+1)*cols+c+1] = packed[texel+3]
				}
			}
		}
	}
	return matrix, nil
}

// DecodeColorRGBA interprets raw RGBA texel bytes as literal 0-255 logical
// values, taking the first channels bytes of each texel. This is the
// readback path for image-derived data; there is no float reinterpretation
// and no range rescaling.
func DecodeColorRGBA(pixels []byte, rows, cols, channels int) ([]float32, error) {
	if channels < 1 || channels > 4 {
		return nil, shapeErr("color decode supports 1 to 4 channels, got %d", channels)
	}
	if len(pixels) < rows*cols*4 {
		return nil, shapeErr("pixel source holds %d bytes, need %d for %dx%d RGBA", len(pixels), rows*cols*4, rows, cols)
	}
	matrix := make([]float32, rows*cols*channels)
	for i := 0; i < rows*cols; i++ {
		for ch := 0; ch < channels; ch++ {
			matrix[i*channels+ch] = float32(pixels[i*4+ch])
		}
	}
	return matrix, nil
}
