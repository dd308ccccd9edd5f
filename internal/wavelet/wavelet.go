// Package wavelet implements the in-place 2-D Haar decomposition over an
// L x P frame: a 1-D Haar transform along rows to completion,
// then along columns to completion. Both L and P must be powers of two,
// enforced upstream by fpconfig.Validate.
package wavelet

import "math"

// haarNorm is the orthonormal Haar coefficient 1/sqrt(2).
var haarNorm = float32(1 / math.Sqrt2)

// Decompose transforms flat (row-major, length rows*cols) in place: rows
// first, then columns.
func Decompose(flat []float32, rows, cols int) {
	for r := 0; r < rows; r++ {
		haar1D(flat[r*cols : (r+1)*cols])
	}

	col := make([]float32, rows)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			col[r] = flat[r*cols+c]
		}
		haar1D(col)
		for r := 0; r < rows; r++ {
			flat[r*cols+c] = col[r]
		}
	}
}

// haar1D applies the 1-D Haar transform to v (length a power of two) in
// place.
func haar1D(v []float32) {
	n := len(v)
	scratch := make([]float32, n)
	for length := n; length >= 2; length /= 2 {
		half := length / 2
		for i := 0; i < half; i++ {
			a, b := v[2*i], v[2*i+1]
			scratch[i] = (a + b) * haarNorm
			scratch[half+i] = (a - b) * haarNorm
		}
		copy(v[:length], scratch[:length])
	}
}
