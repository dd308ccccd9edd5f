// Package detective implements the pipeline orchestrator: it
// owns configuration and a private fingerprint under construction, drives
// windower -> spectral -> pitchband -> frame -> wavelet -> subfingerprint
// -> fingerprint, and exposes the Idle/Running/Paused/Stopped state
// machine.
package detective

import (
	"io"
	"sync"
	"time"

	"github.com/media-luna/fingerprint/internal/fingerprint"
	"github.com/media-luna/fingerprint/internal/fpconfig"
	"github.com/media-luna/fingerprint/internal/fpkind"
	"github.com/media-luna/fingerprint/internal/frame"
	"github.com/media-luna/fingerprint/internal/pitchband"
	"github.com/media-luna/fingerprint/internal/source"
	"github.com/media-luna/fingerprint/internal/spectral"
	"github.com/media-luna/fingerprint/internal/subfingerprint"
	"github.com/media-luna/fingerprint/internal/wavelet"
	"github.com/media-luna/fingerprint/internal/windower"
)

// State is one of the four Detective lifecycle states.
type State int

const (
	Idle State = iota
	Running
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Detective drives the fingerprint extraction pipeline. The control plane
// (Start/Pause/Resume/Stop/Reset/State/Count) is serialised through mu: the
// pipeline itself runs single-threaded, and only control flags are shared
// across goroutines.
type Detective struct {
	mu    sync.Mutex
	state State
	cfg   fpconfig.Config

	win    *windower.Windower
	an     *spectral.Analyzer
	binner *pitchband.Binner
	fr     *frame.Frame
	fp     *fingerprint.Fingerprint
}

// New creates a Detective with the given configuration, in state Idle.
func New(cfg fpconfig.Config) (*Detective, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Detective{
		cfg:   cfg,
		state: Idle,
		fp:    fingerprint.New(),
	}, nil
}

// Configure replaces the Detective's configuration. Allowed only in Idle.
func (d *Detective) Configure(cfg fpconfig.Config) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Idle {
		return fpkind.Newf(fpkind.ArgumentInvalid, "cannot configure while %s", d.state)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	d.cfg = cfg
	return nil
}

// State returns the current lifecycle state.
func (d *Detective) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Count returns the number of subfingerprints produced so far.
func (d *Detective) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fp.Count()
}

// Start attaches src and transitions Idle -> Running, initializing the
// per-configuration pipeline stages (windower, analyzer, binner, frame).
func (d *Detective) Start(src source.Source) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Idle {
		return fpkind.Newf(fpkind.ArgumentInvalid, "cannot start while %s", d.state)
	}
	d.win = windower.New(src, d.cfg.WindowSize, d.cfg.AnalysisStride)
	d.an = spectral.NewAnalyzer(d.cfg.WindowSize)
	d.binner = pitchband.NewBinner(d.cfg.PitchSteps, d.cfg.WindowSize, d.cfg.ProcessingSampleRate)
	d.fr = frame.New(d.cfg.SubfingerprintLength, d.cfg.PitchSteps)
	d.state = Running
	return nil
}

// Pause halts consumption, retaining buffered samples. Only valid while
// Running.
func (d *Detective) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Running {
		return fpkind.Newf(fpkind.ArgumentInvalid, "cannot pause while %s", d.state)
	}
	d.state = Paused
	return nil
}

// Resume resumes consumption. Only valid while Paused.
func (d *Detective) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Paused {
		return fpkind.Newf(fpkind.ArgumentInvalid, "cannot resume while %s", d.state)
	}
	d.state = Running
	return nil
}

// Stop transitions Running|Paused -> Stopped. A full frame buffer is
// flushed into one final subfingerprint; a partial one is discarded
// without contributing a truncated subfingerprint. It returns
// the fingerprint accumulated so far.
func (d *Detective) Stop() (*fingerprint.Fingerprint, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Running && d.state != Paused {
		return nil, fpkind.Newf(fpkind.ArgumentInvalid, "cannot stop while %s", d.state)
	}
	if d.fr != nil && d.fr.Full() {
		if err := d.emitSubfingerprint(); err != nil {
			return nil, err
		}
	}
	d.state = Stopped
	return d.fp.Copy(), nil
}

// Reset clears the frame buffer and fingerprint, keeping configuration,
// and transitions Stopped -> Idle.
func (d *Detective) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Stopped {
		return fpkind.Newf(fpkind.ArgumentInvalid, "cannot reset while %s", d.state)
	}
	d.fp = fingerprint.New()
	d.fr = nil
	d.win = nil
	d.state = Idle
	return nil
}

// emitSubfingerprint drives D (frame already full) -> E -> F -> appends to
// G, then resets the frame buffer. Caller must hold mu.
func (d *Detective) emitSubfingerprint() error {
	flat := append([]float32(nil), d.fr.Flat()...)
	rows, cols := d.fr.Rows(), d.fr.Cols()

	wavelet.Decompose(flat, rows, cols)

	bits := subfingerprint.Extract(flat, d.cfg.TopWavelets)
	if err := d.fp.Append(bits); err != nil {
		return err
	}
	d.fr.Reset()
	return nil
}

// Process runs the bounded (file) processing mode to completion: pulls
// frames from src until drained, driving A->B->C->D->E->F->G, then
// transitions to Stopped and returns the accumulated fingerprint. If the
// source fails mid-stream, subfingerprints already appended are retained
// and returned alongside the error.
func (d *Detective) Process(src source.Source) (*fingerprint.Fingerprint, error) {
	if err := d.Start(src); err != nil {
		return nil, err
	}

	for {
		d.mu.Lock()
		win := d.win
		d.mu.Unlock()

		frameSamples, err := win.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			d.mu.Lock()
			d.state = Stopped
			out := d.fp.Copy()
			d.mu.Unlock()
			return out, fpkind.Wrap(fpkind.SourceFailure, err, "sample source failed")
		}

		d.mu.Lock()
		for d.state == Paused {
			d.mu.Unlock()
			time.Sleep(time.Millisecond)
			d.mu.Lock()
		}
		if d.state == Running {
			if err := d.feedFrame(frameSamples); err != nil {
				d.mu.Unlock()
				return nil, err
			}
		}
		d.mu.Unlock()
	}

	return d.Stop()
}

// feedFrame drives B->C->D for one FFT frame, emitting a subfingerprint
// whenever the frame buffer fills. Caller must hold mu.
func (d *Detective) feedFrame(frameSamples []float32) error {
	mag := d.an.Magnitudes(frameSamples)
	row := d.binner.Row(mag)
	d.fr.Append(row)
	if d.fr.Full() {
		return d.emitSubfingerprint()
	}
	return nil
}

// Compare fingerprints srcA and srcB independently with a fresh Detective
// each (bounded mode), then returns their fingerprint-similarity over
// comparison range r.
func Compare(cfg fpconfig.Config, srcA, srcB source.Source, r int) (float64, error) {
	da, err := New(cfg)
	if err != nil {
		return 0, err
	}
	fpA, err := da.Process(srcA)
	if err != nil {
		return 0, err
	}

	db, err := New(cfg)
	if err != nil {
		return 0, err
	}
	fpB, err := db.Process(srcB)
	if err != nil {
		return 0, err
	}

	return fpA.Similarity(fpB, r)
}

// Feed drives the pipeline for one step of unbounded (live) processing: it
// reads from the source until another W-sample frame is formed (blocking
// for as long as the source blocks), then consumes that frame and advances
// the pipeline. At end of stream it returns nil. Intended to be called
// repeatedly by a live capture loop between stride advances, so Pause is
// observed at a whole-frame boundary rather than mid-frame.
func (d *Detective) Feed() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Running {
		return nil
	}
	frameSamples, err := d.win.Next()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fpkind.Wrap(fpkind.SourceFailure, err, "sample source failed")
	}
	return d.feedFrame(frameSamples)
}
