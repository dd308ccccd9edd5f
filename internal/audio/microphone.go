// Live microphone capture: portaudio opens a mono input stream at
// recording_sample_rate and an audio callback appends incoming frames to a
// buffer, exposed as an internal/source.Source so it plugs directly into
// internal/detective's unbounded (live) mode.
package audio

import (
	"io"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/media-luna/fingerprint/internal/fpkind"
)

// FramesPerBuffer is the portaudio callback's buffer size.
const FramesPerBuffer = 1024

// MicrophoneSource captures mono audio from the default input device and
// serves it as a Source. Call Close to release the underlying stream.
type MicrophoneSource struct {
	stream *portaudio.Stream
	rate   int

	mu     sync.Mutex
	cond   *sync.Cond
	buf    []float32
	err    error
	closed bool
}

// OpenMicrophone opens the default input device at recordingRate Hz, mono.
func OpenMicrophone(recordingRate int) (*MicrophoneSource, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fpkind.Wrap(fpkind.SourceFailure, err, "initializing portaudio")
	}

	device, err := portaudio.DefaultInputDevice()
	if err != nil {
		portaudio.Terminate()
		return nil, fpkind.Wrap(fpkind.SourceFailure, err, "getting default input device")
	}

	ms := &MicrophoneSource{rate: recordingRate}
	ms.cond = sync.NewCond(&ms.mu)

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      float64(recordingRate),
		FramesPerBuffer: FramesPerBuffer,
	}

	stream, err := portaudio.OpenStream(params, ms.callback)
	if err != nil {
		portaudio.Terminate()
		return nil, fpkind.Wrap(fpkind.SourceFailure, err, "opening audio stream")
	}
	ms.stream = stream

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fpkind.Wrap(fpkind.SourceFailure, err, "starting audio stream")
	}

	return ms, nil
}

// callback appends incoming audio to the buffer and wakes any waiting
// reader. Buffered audio has no retention cap here — retention is the
// windower's job, not the source's.
func (ms *MicrophoneSource) callback(in []float32) {
	ms.mu.Lock()
	ms.buf = append(ms.buf, in...)
	ms.cond.Signal()
	ms.mu.Unlock()
}

// SampleRate returns the capture rate.
func (ms *MicrophoneSource) SampleRate() int { return ms.rate }

// Next blocks until a sample is available or the source is closed; once
// closed, it returns the remaining buffered samples and then io.EOF.
func (ms *MicrophoneSource) Next() (float32, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for len(ms.buf) == 0 && ms.err == nil && !ms.closed {
		ms.cond.Wait()
	}
	if len(ms.buf) > 0 {
		v := ms.buf[0]
		ms.buf = ms.buf[1:]
		return v, nil
	}
	if ms.err != nil {
		return 0, ms.err
	}
	return 0, io.EOF
}

// Close stops capture and releases portaudio resources.
func (ms *MicrophoneSource) Close() error {
	ms.mu.Lock()
	ms.closed = true
	ms.cond.Broadcast()
	ms.mu.Unlock()

	if err := ms.stream.Stop(); err != nil {
		return fpkind.Wrap(fpkind.SourceFailure, err, "stopping audio stream")
	}
	if err := ms.stream.Close(); err != nil {
		return fpkind.Wrap(fpkind.SourceFailure, err, "closing audio stream")
	}
	return portaudio.Terminate()
}
