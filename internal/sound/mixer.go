package sound

import (
	"math"
	"sync"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/oklog/ulid/v2"
)

// GraphOptions control the mixing graph built for one playback.
type GraphOptions struct {
	// Volume is the linear gain in [0, 1]. BuildGraph maps the zero
	// value to 1; PlayURL and PlayFile instead treat it as silence
	// and skip the graph entirely.
	Volume float64

	// Pan is the stereo position in [-1, 1], 0 centered. A pan node is
	// only inserted when non-zero.
	Pan float64

	// Rate is the playback speed multiplier. Defaults to 1.
	Rate float64
}

func (o GraphOptions) withDefaults() GraphOptions {
	if o.Volume == 0 {
		o.Volume = 1
	}
	if o.Rate == 0 {
		o.Rate = 1
	}
	return o
}

// Playback is a one-shot chain of audio nodes bound to a single
// buffer. Its nodes are not reusable; Start may be called once, and
// the handle needs no explicit teardown after the source ends.
type Playback struct {
	// ID identifies this playback in logs.
	ID string

	mu      sync.Mutex
	out     Output
	stream  beep.Streamer
	volume  float64
	pan     float64
	rate    float64
	started bool
	done    chan struct{}
}

// Start submits the graph to the output. Fire-and-forget; subsequent
// calls are no-ops.
func (p *Playback) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return
	}
	p.started = true

	p.out.Play(beep.Seq(p.stream, beep.Callback(func() {
		close(p.done)
	})))
}

// Done is closed when the source has finished streaming.
func (p *Playback) Done() <-chan struct{} {
	return p.done
}

// Volume returns the linear gain applied to this playback.
func (p *Playback) Volume() float64 { return p.volume }

// Pan returns the stereo position applied to this playback.
func (p *Playback) Pan() float64 { return p.pan }

// Rate returns the playback speed multiplier.
func (p *Playback) Rate() float64 { return p.rate }

// BuildGraph constructs the playback chain for a decoded buffer:
// source, rate adjustment, optional stereo pan, and a gain stage
// feeding the shared output.
func (e *Engine) BuildGraph(buf *beep.Buffer, opts GraphOptions) (*Playback, error) {
	if err := e.ensureInitialized(); err != nil {
		return nil, err
	}

	opts = opts.withDefaults()

	var streamer beep.Streamer = buf.Streamer(0, buf.Len())

	if buf.Format().SampleRate != e.SampleRate() {
		streamer = beep.Resample(4, buf.Format().SampleRate, e.SampleRate(), streamer)
	}
	if opts.Rate != 1 {
		streamer = beep.ResampleRatio(4, opts.Rate, streamer)
	}
	if opts.Pan != 0 {
		streamer = &effects.Pan{Streamer: streamer, Pan: opts.Pan}
	}

	// Base 2 with a log2 exponent makes the applied gain exactly the
	// linear volume value. Zero volumes never reach the graph; the
	// orchestrator short-circuits them.
	streamer = &effects.Volume{
		Streamer: streamer,
		Base:     2,
		Volume:   math.Log2(opts.Volume),
	}

	return &Playback{
		ID:     ulid.Make().String(),
		out:    e.out,
		stream: streamer,
		volume: opts.Volume,
		pan:    opts.Pan,
		rate:   opts.Rate,
		done:   make(chan struct{}),
	}, nil
}
