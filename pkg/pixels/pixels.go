// Package pixels converts images into the RGBA texel bytes the pixelData
// texture role consumes.
package pixels

import (
	"image"

	"github.com/fxnlabs/webgl-matrix/pkg/layout"
	xdraw "golang.org/x/image/draw"
)

// RGBABytes converts an image into tightly packed RGBA texel bytes with
// its logical shape (rows = height, cols = width).
func RGBABytes(img image.Image) (pixels []byte, rows, cols int) {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(rgba, rgba.Bounds(), img, b.Min, xdraw.Src)
	return rgba.Pix, b.Dy(), b.Dx()
}

// Scale resizes an image to cols x rows texels with nearest-neighbor
// sampling, matching the nearest filtering the textures themselves use.
func Scale(img image.Image, rows, cols int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, cols, rows))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// MatrixFromImage flattens an image into a logical matrix of literal
// 0-255 channel values, channels per texel, row-major.
func MatrixFromImage(img image.Image, channels int) ([]float32, int, int, error) {
	pixels, rows, cols := RGBABytes(img)
	matrix, err := layout.DecodeColorRGBA(pixels, rows, cols, channels)
	if err != nil {
		return nil, 0, 0, err
	}
	return matrix, rows, cols, nil
}
