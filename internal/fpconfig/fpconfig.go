// Package fpconfig holds the configuration surface for the fingerprinting
// pipeline: window size, stride, pitch band count, subfingerprint length,
// top-K wavelet selection, and sample rates.
package fpconfig

import (
	"math/bits"

	"github.com/media-luna/fingerprint/internal/fpkind"
)

// Default values matching a 5512Hz processing rate with a 1024-sample window.
const (
	DefaultWindowSize      = 1024
	DefaultAnalysisStride  = 512
	DefaultPitchSteps      = 32
	DefaultSubfpLength     = 32
	DefaultTopWavelets     = 200
	DefaultProcessingRate  = 5512
	DefaultRecordingRate   = 44100
	PitchBandLowHz         = 318.0
	PitchBandHighHz        = 2000.0
)

// Config controls the fingerprint extraction pipeline. Once processing
// starts, mutating a Config used by a Detective is an error.
type Config struct {
	// WindowSize (W) is the number of samples per FFT. Must be a power of
	// two.
	WindowSize int `yaml:"window_size"`
	// AnalysisStride (S) is the number of samples advanced between
	// successive FFTs.
	AnalysisStride int `yaml:"analysis_stride"`
	// PitchSteps (P) is the number of logarithmic frequency bands.
	PitchSteps int `yaml:"pitch_steps"`
	// SubfingerprintLength (L) is the number of FFT rows per
	// subfingerprint; the frame matrix is L x P. Must be a power of two.
	SubfingerprintLength int `yaml:"subfingerprint_length"`
	// TopWavelets (K) is the count of strongest coefficients retained per
	// subfingerprint.
	TopWavelets int `yaml:"top_wavelets"`
	// ProcessingSampleRate is the rate, in Hz, samples are resampled to
	// before entering the pipeline.
	ProcessingSampleRate int `yaml:"processing_sample_rate"`
	// RecordingSampleRate is the capture rate for live sample sources.
	// Consumed entirely by the external sample source, not the core.
	RecordingSampleRate int `yaml:"recording_sample_rate"`
}

// DefaultConfig returns the recommended default configuration. Pure
// function, no package-level mutable state.
func DefaultConfig() Config {
	return Config{
		WindowSize:           DefaultWindowSize,
		AnalysisStride:       DefaultAnalysisStride,
		PitchSteps:           DefaultPitchSteps,
		SubfingerprintLength: DefaultSubfpLength,
		TopWavelets:          DefaultTopWavelets,
		ProcessingSampleRate: DefaultProcessingRate,
		RecordingSampleRate:  DefaultRecordingRate,
	}
}

// FrameRows returns L*P, the size of the flattened wavelet coefficient
// matrix.
func (c Config) FrameRows() int { return c.SubfingerprintLength * c.PitchSteps }

// SubfingerprintBits returns 2*L*P, the bit length of one subfingerprint.
func (c Config) SubfingerprintBits() int { return 2 * c.FrameRows() }

// Validate enforces the dimensional invariants the pipeline relies on:
// power-of-two window size and pitch-band count (required by the in-place
// Haar transform), a stride no larger than the window, and a top-K
// selection that fits within one frame. Non-power-of-two L or P is
// rejected outright rather than zero-padded.
func (c Config) Validate() error {
	if !isPowerOfTwo(c.WindowSize) {
		return fpkind.Newf(fpkind.ArgumentInvalid, "window_size %d must be a power of two", c.WindowSize)
	}
	if c.AnalysisStride <= 0 {
		return fpkind.Newf(fpkind.ArgumentInvalid, "analysis_stride %d must be positive", c.AnalysisStride)
	}
	if c.AnalysisStride > c.WindowSize {
		return fpkind.Newf(fpkind.ArgumentInvalid, "analysis_stride %d cannot exceed window_size %d", c.AnalysisStride, c.WindowSize)
	}
	if !isPowerOfTwo(c.PitchSteps) {
		return fpkind.Newf(fpkind.ArgumentInvalid, "pitch_steps %d must be a power of two", c.PitchSteps)
	}
	if !isPowerOfTwo(c.SubfingerprintLength) {
		return fpkind.Newf(fpkind.ArgumentInvalid, "subfingerprint_length %d must be a power of two", c.SubfingerprintLength)
	}
	if c.TopWavelets <= 0 {
		return fpkind.Newf(fpkind.ArgumentInvalid, "top_wavelets %d must be positive", c.TopWavelets)
	}
	if c.TopWavelets > c.FrameRows() {
		return fpkind.Newf(fpkind.ArgumentInvalid, "top_wavelets %d cannot exceed L*P %d", c.TopWavelets, c.FrameRows())
	}
	if c.ProcessingSampleRate <= 0 {
		return fpkind.Newf(fpkind.ArgumentInvalid, "processing_sample_rate %d must be positive", c.ProcessingSampleRate)
	}
	return nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && bits.OnesCount(uint(n)) == 1
}
