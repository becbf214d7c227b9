// Package matconv bridges the flat row-major float32 buffers the texture
// core speaks and the float64 matrix types callers tend to hold.
package matconv

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Float64ToFloat32 converts a slice of float64 to float32.
func Float64ToFloat32(input []float64) []float32 {
	output := make([]float32, len(input))
	for i, v := range input {
		output[i] = float32(v)
	}
	return output
}

// Float32ToFloat64 converts a slice of float32 to float64.
func Float32ToFloat64(input []float32) []float64 {
	output := make([]float64, len(input))
	for i, v := range input {
		output[i] = float64(v)
	}
	return output
}

// DenseToFloat32 flattens a gonum Dense matrix into a row-major float32
// buffer with its shape.
func DenseToFloat32(d *mat.Dense) ([]float32, int, int) {
	rows, cols := d.Dims()
	out := make([]float32, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out[i*cols+j] = float32(d.At(i, j))
		}
	}
	return out, rows, cols
}

// DenseFromFloat32 builds a gonum Dense matrix from a row-major float32
// buffer of length rows*cols.
func DenseFromFloat32(data []float32, rows, cols int) (*mat.Dense, error) {
	if len(data) != rows*cols {
		return nil, fmt.Errorf("matconv: buffer holds %d values, want %dx%d=%d", len(data), rows, cols, rows*cols)
	}
	return mat.NewDense(rows, cols, Float32ToFloat64(data)), nil
}

// MatrixToFloat32 flattens a 2D float64 matrix to row-major float32.
func MatrixToFloat32(matrix [][]float64) []float32 {
	if len(matrix) == 0 {
		return []float32{}
	}
	rows, cols := len(matrix), len(matrix[0])
	result := make([]float32, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			result[i*cols+j] = float32(matrix[i][j])
		}
	}
	return result
}

// MatrixFromFloat32 expands a row-major float32 buffer into a 2D float64
// matrix. Returns nil when the length disagrees with the shape.
func MatrixFromFloat32(array []float32, rows, cols int) [][]float64 {
	if len(array) != rows*cols {
		return nil
	}
	matrix := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		matrix[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			matrix[i][j] = float64(array[i*cols+j])
		}
	}
	return matrix
}
