// Package fingerprint implements the ordered sequence of subfingerprints
// that summarises an audio stream, equality, and Hamming-based similarity
// scoring.
package fingerprint

import (
	"github.com/media-luna/fingerprint/internal/fpkind"
	"github.com/media-luna/fingerprint/internal/subfingerprint"
)

// Fingerprint is an ordered sequence of subfingerprints, all sharing the
// same L*P layout. The layout is fixed after the first Append. Ownership:
// the orchestrator owns the Fingerprint during processing; Copy returns a
// clone for callers once processing has finished.
type Fingerprint struct {
	length int // L*P, fixed after first append; 0 means unset
	subfps []subfingerprint.Bits
}

// New returns an empty Fingerprint. Its L*P layout is fixed by the first
// call to Append.
func New() *Fingerprint {
	return &Fingerprint{}
}

// Length returns L*P (0 if no subfingerprint has been appended yet).
func (f *Fingerprint) Length() int { return f.length }

// Count returns the number of subfingerprints appended so far.
func (f *Fingerprint) Count() int { return len(f.subfps) }

// Append adds b to the fingerprint. The first call fixes Length() to
// len(b)/2; later calls with a mismatched length return ArgumentInvalid.
func (f *Fingerprint) Append(b subfingerprint.Bits) error {
	lp := len(b) / 2
	if f.length == 0 && len(f.subfps) == 0 {
		f.length = lp
	} else if lp != f.length {
		return fpkind.Newf(fpkind.ArgumentInvalid, "subfingerprint length %d does not match fingerprint length %d", lp, f.length)
	}
	cp := make(subfingerprint.Bits, len(b))
	copy(cp, b)
	f.subfps = append(f.subfps, cp)
	return nil
}

// At returns the bit-vector for subfingerprint i.
func (f *Fingerprint) At(i int) subfingerprint.Bits { return f.subfps[i] }

// Copy returns a deep copy of f.
func (f *Fingerprint) Copy() *Fingerprint {
	cp := &Fingerprint{length: f.length, subfps: make([]subfingerprint.Bits, len(f.subfps))}
	for i, b := range f.subfps {
		bc := make(subfingerprint.Bits, len(b))
		copy(bc, b)
		cp.subfps[i] = bc
	}
	return cp
}

// Equal reports whether f and other have the same L*P, the same
// subfingerprint count, and identical bits at every position.
func (f *Fingerprint) Equal(other *Fingerprint) bool {
	if other == nil || f.length != other.length || len(f.subfps) != len(other.subfps) {
		return false
	}
	for i, b := range f.subfps {
		ob := other.subfps[i]
		if len(b) != len(ob) {
			return false
		}
		for j := range b {
			if b[j] != ob[j] {
				return false
			}
		}
	}
	return true
}

// SubfingerprintSimilarity compares a and b over the first r' = min(r,
// len(a), len(b)) bit positions and returns the fraction that match, in
// [0,1].
func SubfingerprintSimilarity(a, b subfingerprint.Bits, r int) float64 {
	rp := r
	if len(a) < rp {
		rp = len(a)
	}
	if len(b) < rp {
		rp = len(b)
	}
	if rp <= 0 {
		return 0
	}
	matches := 0
	for j := 0; j < rp; j++ {
		if a[j] == b[j] {
			matches++
		}
	}
	return float64(matches) / float64(rp)
}

// Similarity computes the mean subfingerprint similarity, over comparison
// range r, across the first n = min(f.Count(), other.Count())
// subfingerprints. Returns 0 if n == 0.
func (f *Fingerprint) Similarity(other *Fingerprint, r int) (float64, error) {
	if r <= 0 {
		return 0, fpkind.Newf(fpkind.ArgumentInvalid, "comparison range r=%d must be positive", r)
	}
	n := f.Count()
	if other.Count() < n {
		n = other.Count()
	}
	if n == 0 {
		return 0, nil
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += SubfingerprintSimilarity(f.At(i), other.At(i), r)
	}
	return sum / float64(n), nil
}
