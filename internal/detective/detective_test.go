package detective

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/media-luna/fingerprint/internal/fpconfig"
	"github.com/media-luna/fingerprint/internal/fpkind"
	"github.com/media-luna/fingerprint/internal/source"
)

func sine(freqHz float64, seconds float64, sampleRate int) []float32 {
	n := int(seconds * float64(sampleRate))
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(math.Sin(2 * math.Pi * freqHz * float64(i) / float64(sampleRate)))
	}
	return out
}

func silence(n int) []float32 {
	return make([]float32, n)
}

func scale(samples []float32, factor float32) []float32 {
	out := make([]float32, len(samples))
	for i, v := range samples {
		out[i] = v * factor
	}
	return out
}

func concat(a, b []float32) []float32 {
	out := make([]float32, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

func newSrc(samples []float32, rate int) source.Source {
	return source.NewSliceSource(samples, rate)
}

func TestStateMachineTransitions(t *testing.T) {
	cfg := fpconfig.DefaultConfig()
	d, err := New(cfg)
	require.NoError(t, err)
	if d.State() != Idle {
		t.Fatalf("new Detective should start Idle, got %s", d.State())
	}

	src := newSrc(silence(4096), cfg.ProcessingSampleRate)
	require.NoError(t, d.Start(src))
	if d.State() != Running {
		t.Fatalf("after Start, state = %s, want running", d.State())
	}

	require.NoError(t, d.Pause())
	if d.State() != Paused {
		t.Fatalf("after Pause, state = %s, want paused", d.State())
	}
	if err := d.Pause(); !fpkind.Is(err, fpkind.ArgumentInvalid) {
		t.Fatalf("double Pause should be ArgumentInvalid, got %v", err)
	}

	require.NoError(t, d.Resume())
	if d.State() != Running {
		t.Fatalf("after Resume, state = %s, want running", d.State())
	}

	if _, err := d.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if d.State() != Stopped {
		t.Fatalf("after Stop, state = %s, want stopped", d.State())
	}

	require.NoError(t, d.Reset())
	if d.State() != Idle {
		t.Fatalf("after Reset, state = %s, want idle", d.State())
	}
}

func TestConfigureOnlyAllowedInIdle(t *testing.T) {
	cfg := fpconfig.DefaultConfig()
	d, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, d.Start(newSrc(silence(4096), cfg.ProcessingSampleRate)))

	if err := d.Configure(cfg); !fpkind.Is(err, fpkind.ArgumentInvalid) {
		t.Fatalf("Configure while running should be ArgumentInvalid, got %v", err)
	}
}

func TestStartFromNonIdleIsError(t *testing.T) {
	cfg := fpconfig.DefaultConfig()
	d, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, d.Start(newSrc(silence(4096), cfg.ProcessingSampleRate)))

	if err := d.Start(newSrc(silence(4096), cfg.ProcessingSampleRate)); !fpkind.Is(err, fpkind.ArgumentInvalid) {
		t.Fatalf("Start while running should be ArgumentInvalid, got %v", err)
	}
}

// Too few samples to fill one L-row frame buffer (4096 samples give only 7
// FFT rows against L=32) produce an empty fingerprint rather than an error.
func TestInsufficientSamplesYieldsEmptyFingerprint(t *testing.T) {
	cfg := fpconfig.DefaultConfig()
	cfg.WindowSize = 1024
	cfg.AnalysisStride = 512
	cfg.PitchSteps = 32
	cfg.SubfingerprintLength = 32
	cfg.TopWavelets = 200

	d, err := New(cfg)
	require.NoError(t, err)
	fp, err := d.Process(newSrc(silence(4096), cfg.ProcessingSampleRate))
	require.NoError(t, err)
	if fp.Count() != 0 {
		t.Fatalf("Count() = %d, want 0 for insufficient samples", fp.Count())
	}
}

func TestSineProducesAtLeastOneSubfingerprint(t *testing.T) {
	cfg := fpconfig.DefaultConfig()
	samples := sine(1000, 16, cfg.ProcessingSampleRate)

	d, err := New(cfg)
	require.NoError(t, err)
	fp, err := d.Process(newSrc(samples, cfg.ProcessingSampleRate))
	require.NoError(t, err)

	if fp.Count() < 1 {
		t.Fatalf("Count() = %d, want >= 1", fp.Count())
	}

	selfScore, err := fp.Similarity(fp, cfg.SubfingerprintBits())
	require.NoError(t, err)
	if selfScore != 1.0 {
		t.Fatalf("self-similarity = %v, want 1.0", selfScore)
	}

	d2, err := New(cfg)
	require.NoError(t, err)
	fp2, err := d2.Process(newSrc(append([]float32(nil), samples...), cfg.ProcessingSampleRate))
	require.NoError(t, err)
	identicalScore, err := fp.Similarity(fp2, cfg.SubfingerprintBits())
	require.NoError(t, err)
	if identicalScore != 1.0 {
		t.Fatalf("similarity to an identically-generated stream = %v, want 1.0", identicalScore)
	}

	dSilence, err := New(cfg)
	require.NoError(t, err)
	fpSilence, err := dSilence.Process(newSrc(silence(len(samples)), cfg.ProcessingSampleRate))
	require.NoError(t, err)
	silenceScore, err := fp.Similarity(fpSilence, cfg.SubfingerprintBits())
	require.NoError(t, err)
	if silenceScore > 0.6 {
		t.Fatalf("similarity to silence = %v, want <= 0.6", silenceScore)
	}
}

func TestConcatenatedSignalRepeatsSubfingerprint(t *testing.T) {
	cfg := fpconfig.DefaultConfig()
	samples := sine(1000, 16, cfg.ProcessingSampleRate)
	doubled := concat(samples, samples)

	d, err := New(cfg)
	require.NoError(t, err)
	fp, err := d.Process(newSrc(doubled, cfg.ProcessingSampleRate))
	require.NoError(t, err)

	half := fp.Count() / 2
	if half == 0 {
		t.Skip("not enough subfingerprints produced to locate the repeat boundary")
	}

	r := cfg.SubfingerprintBits()
	from0 := fp.At(0)
	fromHalf := fp.At(half)
	matches := 0
	n := len(from0)
	if r < n {
		n = r
	}
	for i := 0; i < n; i++ {
		if from0[i] == fromHalf[i] {
			matches++
		}
	}
	score := float64(matches) / float64(n)
	if score < 0.95 {
		t.Fatalf("subfingerprint 0 vs subfingerprint count/2 bitwise match = %v, want >= 0.95", score)
	}
}

func TestScaledSignalProducesEqualFingerprint(t *testing.T) {
	cfg := fpconfig.DefaultConfig()
	samples := sine(1000, 16, cfg.ProcessingSampleRate)
	scaled := scale(samples, 0.5)

	d, err := New(cfg)
	require.NoError(t, err)
	fp, err := d.Process(newSrc(samples, cfg.ProcessingSampleRate))
	require.NoError(t, err)

	d2, err := New(cfg)
	require.NoError(t, err)
	fp2, err := d2.Process(newSrc(scaled, cfg.ProcessingSampleRate))
	require.NoError(t, err)

	if !fp.Equal(fp2) {
		t.Fatal("scaling the signal by a constant should not change the fingerprint")
	}
}

func TestDifferentPitchSimilarityIsLow(t *testing.T) {
	cfg := fpconfig.DefaultConfig()
	a := sine(1000, 8, cfg.ProcessingSampleRate)
	b := sine(1500, 8, cfg.ProcessingSampleRate)

	score, err := Compare(cfg, newSrc(a, cfg.ProcessingSampleRate), newSrc(b, cfg.ProcessingSampleRate), cfg.SubfingerprintBits())
	require.NoError(t, err)
	if score >= 0.8 {
		t.Fatalf("similarity between 1kHz and 1.5kHz sines = %v, want < 0.8", score)
	}
}

type failingSource struct {
	rate int
	n    int
	fail error
}

func (f *failingSource) SampleRate() int { return f.rate }
func (f *failingSource) Next() (float32, error) {
	if f.n <= 0 {
		return 0, f.fail
	}
	f.n--
	return 0, nil
}

func TestSourceFailureRetainsSubfingerprintsSoFar(t *testing.T) {
	cfg := fpconfig.DefaultConfig()
	failErr := fpkind.New(fpkind.SourceFailure, "disk read error")
	src := &failingSource{rate: cfg.ProcessingSampleRate, n: 4096, fail: failErr}

	d, err := New(cfg)
	require.NoError(t, err)
	fp, err := d.Process(src)
	if err == nil {
		t.Fatal("expected a source failure error")
	}
	if !fpkind.Is(err, fpkind.SourceFailure) {
		t.Fatalf("expected SourceFailure, got %v", err)
	}
	if fp == nil {
		t.Fatal("fingerprint accumulated so far should still be returned")
	}
	if d.State() != Stopped {
		t.Fatalf("state after source failure = %s, want stopped", d.State())
	}
}
