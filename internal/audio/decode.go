// Package audio is the external collaborator that turns an audio file or a
// live microphone into an internal/source.Source of mono float32 samples at
// the configured processing rate. It is a thin shim: all fingerprint
// domain knowledge lives in the sibling pipeline packages.
package audio

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
	"github.com/pkg/errors"

	"github.com/media-luna/fingerprint/internal/fpkind"
)

// FileSource decodes path (wav, mp3, or flac, dispatched on extension) and
// resamples to targetRate, mixing stereo down to mono by averaging channels.
type FileSource struct {
	rate     int
	streamer beep.StreamSeekCloser
	resample *beep.Resampler
	closed   bool
}

// OpenFile opens and decodes path, resampling to targetRate Hz.
func OpenFile(path string, targetRate int) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fpkind.Wrap(fpkind.SourceFailure, err, "opening audio file")
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	default:
		f.Close()
		return nil, fpkind.Newf(fpkind.ArgumentInvalid, "unsupported audio extension %q", filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return nil, fpkind.Wrap(fpkind.SourceFailure, err, "decoding audio file")
	}

	resampled := beep.Resample(4, format.SampleRate, beep.SampleRate(targetRate), streamer)

	return &FileSource{rate: targetRate, streamer: streamer, resample: resampled}, nil
}

// SampleRate returns the resampled rate this FileSource produces at.
func (fs *FileSource) SampleRate() int { return fs.rate }

// Next returns the next mono sample, mixing stereo channels by averaging.
func (fs *FileSource) Next() (float32, error) {
	if fs.closed {
		return 0, io.EOF
	}
	var frame [1][2]float64
	n, ok := fs.resample.Stream(frame[:])
	if n == 0 || !ok {
		return 0, io.EOF
	}
	mono := (frame[0][0] + frame[0][1]) / 2
	return float32(mono), nil
}

// Close releases the underlying decoder.
func (fs *FileSource) Close() error {
	if fs.closed {
		return nil
	}
	fs.closed = true
	if err := fs.streamer.Close(); err != nil {
		return errors.Wrap(err, "closing audio stream")
	}
	return nil
}
