// Package spectral applies a periodic Hann window and a real-to-complex FFT
// to a time-domain frame, producing a magnitude spectrum.
package spectral

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Analyzer precomputes the Hann window for a fixed frame size W and reuses
// it across frames.
type Analyzer struct {
	w      int
	window []float64
}

// NewAnalyzer builds an Analyzer for frames of length w.
func NewAnalyzer(w int) *Analyzer {
	return &Analyzer{w: w, window: hann(w)}
}

// hann returns a periodic Hann window of length n.
func hann(n int) []float64 {
	win := make([]float64, n)
	for i := range win {
		theta := 2 * math.Pi * float64(i) / float64(n)
		win[i] = 0.5 - 0.5*math.Cos(theta)
	}
	return win
}

// Magnitudes windows frame (length W), runs a real FFT, and returns the
// magnitude spectrum m[k] = sqrt(re^2 + im^2) for k in [0, W/2). The DC bin
// is retained; normalization is left to the caller.
func (a *Analyzer) Magnitudes(frame []float32) []float64 {
	windowed := make([]float64, a.w)
	for i, v := range frame {
		windowed[i] = float64(v) * a.window[i]
	}

	spectrum := fft.FFTReal(windowed)

	half := a.w / 2
	mag := make([]float64, half)
	for k := 0; k < half; k++ {
		mag[k] = cmplx.Abs(spectrum[k])
	}
	return mag
}

// WindowSize returns the configured frame length W.
func (a *Analyzer) WindowSize() int { return a.w }
