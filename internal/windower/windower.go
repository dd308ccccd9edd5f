// Package windower turns a sample source into overlapping frames of size W
// stepped by S.
package windower

import (
	"io"

	"github.com/media-luna/fingerprint/internal/source"
)

// Windower maintains a ring buffer of at least W samples and emits a frame
// each time S new samples have arrived. The trailing partial frame at
// end-of-stream is discarded. Pause/resume is the caller's responsibility:
// accumulated samples remain buffered across calls to Next.
type Windower struct {
	w, s int
	buf  []float32 // buffered, not-yet-consumed samples
	src  source.Source
	eof  bool
}

// New creates a Windower reading window-size w frames stepped by s samples
// from src.
func New(src source.Source, w, s int) *Windower {
	return &Windower{
		w:   w,
		s:   s,
		buf: make([]float32, 0, w),
		src: src,
	}
}

// Next returns the next W-sample frame, advancing the read cursor by S. It
// returns io.EOF once no further full frame can be produced; any trailing
// partial frame is discarded.
func (win *Windower) Next() ([]float32, error) {
	for len(win.buf) < win.w {
		if win.eof {
			return nil, io.EOF
		}
		v, err := win.src.Next()
		if err == io.EOF {
			win.eof = true
			continue
		}
		if err != nil {
			return nil, err
		}
		win.buf = append(win.buf, v)
	}

	frame := make([]float32, win.w)
	copy(frame, win.buf[:win.w])

	step := win.s
	if step > len(win.buf) {
		step = len(win.buf)
	}
	win.buf = win.buf[step:]

	return frame, nil
}

// Buffered reports how many samples are currently held, pending the next
// full frame.
func (win *Windower) Buffered() int { return len(win.buf) }
