// Package layout implements the texture-layout codec: pure functions that
// map a row-major float32 matrix onto the two physical pixel layouts
// (unpacked single-channel and packed four-channel RGBA) and back.
//
// Nothing in this package touches a GL context. All functions operate on
// flat slices so they can be unit-tested exhaustively and reused by both
// the transfer engine and host-side tooling.
package layout

import (
	"fmt"
	"math"
)

// PackedShape returns the texture dimensions for the packed layout, where
// each texel's RGBA channels hold a 2x2 block of logical values.
func PackedShape(rows, cols int) (width, height int) {
	return (cols + 1) / 2, (rows + 1) / 2
}

// UnpackedShape returns the texture dimensions for the unpacked layout.
// When the logical shape fits directly it is used as-is (width=cols,
// height=rows); otherwise the values are folded into a squarish grid with
// width capped at maxSize. The returned area always satisfies
// width*height >= rows*cols.
func UnpackedShape(rows, cols, maxSize int) (width, height int) {
	if cols <= maxSize && rows <= maxSize {
		return cols, rows
	}
	size := rows * cols
	width = int(math.Ceil(math.Sqrt(float64(size))))
	if width > maxSize {
		width = maxSize
	}
	height = (size + width - 1) / width
	return width, height
}

// UnpackedArraySize returns the length of the physical buffer holding size
// logical values at the given channel stride.
func UnpackedArraySize(size, channels int) int {
	return size * channels
}

// PackedArraySize returns the length of the RGBA buffer for a packed
// texture covering a rows x cols matrix.
func PackedArraySize(rows, cols int) int {
	w, h := PackedShape(rows, cols)
	return w * h * 4
}

func shapeErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrShapeMismatch, fmt.Sprintf(format, args...))
}
