package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matrix(n int) []float32 {
	m := make([]float32, n)
	for i := range m {
		m[i] = float32(i + 1)
	}
	return m
}

func TestUnpackedRoundTrip(t *testing.T) {
	for _, channels := range []int{1, 4} {
		t.Run(map[int]string{1: "single channel", 4: "rgba"}[channels], func(t *testing.T) {
			m := matrix(3 * 5)
			encoded := EncodeUnpacked(m, channels)
			assert.Len(t, encoded, 15*channels)

			decoded, err := DecodeUnpacked(encoded, channels, 15)
			require.NoError(t, err)
			assert.Equal(t, m, decoded)
		})
	}
}

func TestEncodeUnpackedSpreadsChannels(t *testing.T) {
	encoded := EncodeUnpacked([]float32{7, 8}, 4)
	assert.Equal(t, []float32{7, 0, 0, 0, 8, 0, 0, 0}, encoded)
}

func TestEncodeUnpackedInto(t *testing.T) {
	t.Run("padded destination", func(t *testing.T) {
		// Folded textures read back more texels than the matrix holds.
		dst := make([]float32, 8)
		require.NoError(t, EncodeUnpackedInto(dst, []float32{1, 2, 3}, 1))
		assert.Equal(t, []float32{1, 2, 3, 0, 0, 0, 0, 0}, dst)
	})

	t.Run("short destination", func(t *testing.T) {
		err := EncodeUnpackedInto(make([]float32, 2), []float32{1, 2, 3}, 1)
		assert.ErrorIs(t, err, ErrShapeMismatch)
	})
}

func TestDecodeUnpackedTrimsFoldedTail(t *testing.T) {
	decoded, err := DecodeUnpacked([]float32{1, 2, 3, 0, 0}, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, decoded)
}

func TestDecodeUnpackedShortSource(t *testing.T) {
	_, err := DecodeUnpacked([]float32{1, 2}, 4, 3)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestEncodePackedRGBASingleTexel(t *testing.T) {
	// [[1,2],[3,4]] folds into one texel carrying R=1 G=2 B=3 A=4.
	packed, err := EncodePackedRGBA([]float32{1, 2, 3, 4}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4}, packed)

	decoded, err := DecodePackedRGBA(packed, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4}, decoded)
}

func TestEncodePackedRGBAOddDimensions(t *testing.T) {
	// 3x3 packs into 2x2 texels with the trailing row/column of each
	// boundary block zero-filled.
	m := matrix(9)
	packed, err := EncodePackedRGBA(m, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, []float32{
		1, 2, 4, 5, // texel (0,0): rows 0-1, cols 0-1
		3, 0, 6, 0, // texel (1,0): col 3 out of bounds
		7, 8, 0, 0, // texel (0,1): row 3 out of bounds
		9, 0, 0, 0, // texel (1,1): corner
	}, packed)

	decoded, err := DecodePackedRGBA(packed, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, m, decoded)
}

func TestPackedRoundTrip(t *testing.T) {
	shapes := [][2]int{{1, 1}, {1, 5}, {5, 1}, {2, 2}, {3, 3}, {4, 6}, {7, 9}, {16, 16}}
	for _, s := range shapes {
		rows, cols := s[0], s[1]
		m := matrix(rows * cols)
		packed, err := EncodePackedRGBA(m, rows, cols)
		require.NoError(t, err)
		decoded, err := DecodePackedRGBA(packed, rows, cols)
		require.NoError(t, err)
		assert.Equal(t, m, decoded, "shape %dx%d", rows, cols)
	}
}

func TestDecodePackedIgnoresPaddingValues(t *testing.T) {
	// Garbage in the zero-fill slots must never reach the decoded matrix.
	packed, err := EncodePackedRGBA(matrix(1), 1, 1)
	require.NoError(t, err)
	packed[1], packed[2], packed[3] = 99, 98, 97
	decoded, err := DecodePackedRGBA(packed, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, decoded)
}

func TestEncodePackedRGBAShapeMismatch(t *testing.T) {
	_, err := EncodePackedRGBA([]float32{1, 2, 3}, 2, 2)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestDecodeColorRGBA(t *testing.T) {
	pixels := []byte{
		10, 20, 30, 255,
		40, 50, 60, 255,
	}

	t.Run("single channel", func(t *testing.T) {
		m, err := DecodeColorRGBA(pixels, 1, 2, 1)
		require.NoError(t, err)
		assert.Equal(t, []float32{10, 40}, m)
	})

	t.Run("three channels keep literal byte values", func(t *testing.T) {
		m, err := DecodeColorRGBA(pixels, 1, 2, 3)
		require.NoError(t, err)
		// Raw 0-255 values, never divided by 255.
		assert.Equal(t, []float32{10, 20, 30, 40, 50, 60}, m)
	})

	t.Run("invalid channel count", func(t *testing.T) {
		_, err := DecodeColorRGBA(pixels, 1, 2, 5)
		assert.ErrorIs(t, err, ErrShapeMismatch)
	})

	t.Run("short buffer", func(t *testing.T) {
		_, err := DecodeColorRGBA(pixels[:4], 1, 2, 1)
		assert.ErrorIs(t, err, ErrShapeMismatch)
	})
}

func BenchmarkEncodePackedRGBA(b *testing.B) {
	m := matrix(512 * 512)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = EncodePackedRGBA(m, 512, 512)
	}
}

func BenchmarkDecodePackedRGBA(b *testing.B) {
	m := matrix(512 * 512)
	packed, _ := EncodePackedRGBA(m, 512, 512)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = DecodePackedRGBA(packed, 512, 512)
	}
}
