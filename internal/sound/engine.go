package sound

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// Output is the playback sink, allowing tests to capture submitted
// streamers instead of opening real audio hardware.
type Output interface {
	Init(sampleRate beep.SampleRate, bufferSize int) error
	Play(s ...beep.Streamer)
}

// SpeakerOutput implements Output using the beep speaker.
type SpeakerOutput struct{}

func (SpeakerOutput) Init(sampleRate beep.SampleRate, bufferSize int) error {
	if err := speaker.Init(sampleRate, bufferSize); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}
	return nil
}

func (SpeakerOutput) Play(s ...beep.Streamer) {
	speaker.Play(s...)
}

// Engine owns the shared audio output for the process. It is created
// once at startup and passed by handle; the underlying output is
// initialized lazily on the first playback and never recreated.
type Engine struct {
	mu     sync.Mutex
	logger *slog.Logger
	out    Output

	initialized bool
	sampleRate  beep.SampleRate
}

// NewEngine creates an engine over the given output. A nil output
// plays through the real speaker.
func NewEngine(out Output, logger *slog.Logger) *Engine {
	if out == nil {
		out = SpeakerOutput{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		logger:     logger,
		out:        out,
		sampleRate: beep.SampleRate(44100),
	}
}

// SampleRate returns the engine's output sample rate.
func (e *Engine) SampleRate() beep.SampleRate {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sampleRate
}

// ensureInitialized initializes the output if not already done.
func (e *Engine) ensureInitialized() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return nil
	}

	// Use a reasonable buffer size for low latency
	bufferSize := e.sampleRate.N(time.Millisecond * 100)

	if err := e.out.Init(e.sampleRate, bufferSize); err != nil {
		return err
	}

	e.initialized = true
	e.logger.Debug("audio output initialized", "sample_rate", e.sampleRate)
	return nil
}
