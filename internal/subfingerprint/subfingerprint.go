// Package subfingerprint selects the top-K wavelet coefficients by absolute
// magnitude and encodes them into a 2*L*P-bit signature.
package subfingerprint

import "sort"

// Bits is a subfingerprint: an ordered bit vector of length 2*L*P. bit[2i]
// is the selection flag for coefficient i, bit[2i+1] is its sign flag
// (meaningful only when selected).
type Bits []bool

// Extract ranks coeffs (length L*P, row-major post-Haar) by descending
// |c_i|, lower index breaking ties, and encodes the top-k into a
// 2*len(coeffs)-bit vector.
func Extract(coeffs []float32, k int) Bits {
	n := len(coeffs)
	if k > n {
		k = n
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ma, mb := abs32(coeffs[idx[a]]), abs32(coeffs[idx[b]])
		if ma != mb {
			return ma > mb
		}
		return idx[a] < idx[b]
	})

	bits := make(Bits, 2*n)
	for _, i := range idx[:k] {
		bits[2*i] = true
		bits[2*i+1] = coeffs[i] < 0
	}
	return bits
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// Selected returns the number of coefficients with their selection bit
// set (equal to min(K, L*P)).
func (b Bits) Selected() int {
	n := 0
	for i := 0; i < len(b); i += 2 {
		if b[i] {
			n++
		}
	}
	return n
}
