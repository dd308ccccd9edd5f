// Package source defines the abstract sample source contract consumed by
// the fingerprinting pipeline. A Source yields a lazy,
// finite or infinite, non-restartable sequence of mono float32 samples at a
// known rate. Audio decoding, live microphone capture, and any networked
// collaborator are external to this package; they just need to implement
// Source.
package source

import "io"

// Source produces mono float32 samples at SampleRate(). Next returns
// io.EOF once the stream is exhausted. Implementations never deliver
// partial samples: a failed read returns (0, err) with err != io.EOF.
type Source interface {
	// SampleRate returns the rate, in Hz, samples are produced at.
	SampleRate() int
	// Next returns the next sample, or io.EOF when the source is
	// drained. Any other error is a source failure (fpkind.SourceFailure
	// at the call site).
	Next() (float32, error)
}

// Batch reads up to len(buf) samples from s, returning the number read.
// It stops early on end-of-stream or error, mirroring io.Reader semantics
// adapted to a single-sample-at-a-time Source.
func Batch(s Source, buf []float32) (int, error) {
	for i := range buf {
		v, err := s.Next()
		if err != nil {
			return i, err
		}
		buf[i] = v
	}
	return len(buf), nil
}

// Drain reads every remaining sample from s into a single slice. Intended
// for small test fixtures and bounded (file) sources, not live capture.
func Drain(s Source) ([]float32, error) {
	var out []float32
	buf := make([]float32, 4096)
	for {
		n, err := Batch(s, buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}

// SliceSource is a Source backed by an in-memory slice. Used by tests and
// by callers that have already decoded an entire signal into memory.
type SliceSource struct {
	rate    int
	samples []float32
	pos     int
}

// NewSliceSource wraps samples, advertised at the given sample rate.
func NewSliceSource(samples []float32, rate int) *SliceSource {
	return &SliceSource{rate: rate, samples: samples}
}

func (s *SliceSource) SampleRate() int { return s.rate }

func (s *SliceSource) Next() (float32, error) {
	if s.pos >= len(s.samples) {
		return 0, io.EOF
	}
	v := s.samples[s.pos]
	s.pos++
	return v, nil
}

// Remaining reports how many samples are left to read.
func (s *SliceSource) Remaining() int { return len(s.samples) - s.pos }

// concatSource plays each source in turn, advancing to the next once the
// current one returns io.EOF.
type concatSource struct {
	rate    int
	sources []Source
	i       int
}

// Concat chains sources into a single Source that plays each to completion
// before moving to the next, advertising the first source's sample rate.
// Concat of zero sources is an immediately-exhausted Source.
func Concat(sources ...Source) Source {
	rate := 0
	if len(sources) > 0 {
		rate = sources[0].SampleRate()
	}
	return &concatSource{rate: rate, sources: sources}
}

func (c *concatSource) SampleRate() int { return c.rate }

func (c *concatSource) Next() (float32, error) {
	for c.i < len(c.sources) {
		v, err := c.sources[c.i].Next()
		if err == io.EOF {
			c.i++
			continue
		}
		return v, err
	}
	return 0, io.EOF
}

// limitSource caps src to at most n samples, regardless of how many src
// could still produce.
type limitSource struct {
	src       Source
	remaining int
}

// Limit wraps src so that Next returns io.EOF after n samples have been
// read, even if src has more buffered or available.
func Limit(src Source, n int) Source {
	return &limitSource{src: src, remaining: n}
}

func (l *limitSource) SampleRate() int { return l.src.SampleRate() }

func (l *limitSource) Next() (float32, error) {
	if l.remaining <= 0 {
		return 0, io.EOF
	}
	v, err := l.src.Next()
	if err != nil {
		return 0, err
	}
	l.remaining--
	return v, nil
}
