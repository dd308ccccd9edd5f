// Streaming downsampling for live sources: a Source decorator that
// block-average decimates so it composes with MicrophoneSource's unbounded
// stream.
package audio

import (
	"io"

	"github.com/media-luna/fingerprint/internal/source"
)

// liveResampler decimates a Source producing at a higher rate down to
// targetRate by averaging consecutive blocks of ratio samples.
type liveResampler struct {
	src        source.Source
	ratio      int
	targetRate int
}

// ResampleLive wraps src, averaging each block of samples down to one. The
// block length is src.SampleRate()/targetRate by integer division (at least
// 1); when the rates are not an exact multiple, the output runs at
// src.SampleRate()/block Hz while SampleRate still reports targetRate.
func ResampleLive(src source.Source, targetRate int) source.Source {
	ratio := src.SampleRate() / targetRate
	if ratio < 1 {
		ratio = 1
	}
	return &liveResampler{src: src, ratio: ratio, targetRate: targetRate}
}

func (r *liveResampler) SampleRate() int { return r.targetRate }

func (r *liveResampler) Next() (float32, error) {
	if r.ratio <= 1 {
		return r.src.Next()
	}
	var sum float32
	n := 0
	for i := 0; i < r.ratio; i++ {
		v, err := r.src.Next()
		if err != nil {
			if err == io.EOF && i > 0 {
				break
			}
			return 0, err
		}
		sum += v
		n++
	}
	return sum / float32(n), nil
}
