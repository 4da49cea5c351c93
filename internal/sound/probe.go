package sound

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrDurationUnavailable is returned when a source's duration could
// not be determined within the probe timeout.
var ErrDurationUnavailable = errors.New("duration unavailable")

const (
	// DefaultProbeTimeout bounds how long a duration probe may take.
	// The original behaviour was an unbounded poll; the explicit
	// timeout turns a hang into a reportable outcome.
	DefaultProbeTimeout = 10 * time.Second

	// DefaultProbeInterval is how often probe readiness is checked.
	DefaultProbeInterval = 100 * time.Millisecond
)

// DurationProbe determines the playable length of an audio URL
// without starting playback.
type DurationProbe struct {
	logger   *slog.Logger
	fetcher  Fetcher
	clock    clockwork.Clock
	timeout  time.Duration
	interval time.Duration
}

// ProbeOption customizes a DurationProbe.
type ProbeOption func(*DurationProbe)

// WithProbeTimeout overrides the probe timeout.
func WithProbeTimeout(d time.Duration) ProbeOption {
	return func(p *DurationProbe) { p.timeout = d }
}

// WithProbeInterval overrides the readiness poll interval.
func WithProbeInterval(d time.Duration) ProbeOption {
	return func(p *DurationProbe) { p.interval = d }
}

// WithProbeClock substitutes the clock used for polling and timeout.
func WithProbeClock(clock clockwork.Clock) ProbeOption {
	return func(p *DurationProbe) { p.clock = clock }
}

// NewDurationProbe creates a probe that fetches through the given
// fetcher.
func NewDurationProbe(fetcher Fetcher, logger *slog.Logger, opts ...ProbeOption) *DurationProbe {
	if logger == nil {
		logger = slog.Default()
	}
	p := &DurationProbe{
		logger:   logger,
		fetcher:  fetcher,
		clock:    clockwork.NewRealClock(),
		timeout:  DefaultProbeTimeout,
		interval: DefaultProbeInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type probeResult struct {
	duration time.Duration
	err      error
}

// Duration fetches a URL, decodes its audio header, and returns the
// playable length. It polls for readiness at the probe interval and
// gives up with ErrDurationUnavailable once the timeout elapses.
func (p *DurationProbe) Duration(ctx context.Context, rawURL string) (time.Duration, error) {
	resultCh := make(chan probeResult, 1)

	go func() {
		resultCh <- p.probe(ctx, rawURL)
	}()

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()
	deadline := p.clock.Now().Add(p.timeout)

	for {
		select {
		case res := <-resultCh:
			return res.duration, res.err
		case <-ctx.Done():
			return 0, fmt.Errorf("duration probe cancelled: %w", ctx.Err())
		case <-ticker.Chan():
			if !p.clock.Now().Before(deadline) {
				p.logger.Warn("duration probe timed out", "url", rawURL, "timeout", p.timeout)
				return 0, fmt.Errorf("%w: probe timed out after %s", ErrDurationUnavailable, p.timeout)
			}
		}
	}
}

// probe does the blocking fetch and decode.
func (p *DurationProbe) probe(ctx context.Context, rawURL string) probeResult {
	data, err := p.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return probeResult{err: fmt.Errorf("%w: %w", ErrDurationUnavailable, err)}
	}

	buf, err := decode(data, urlBase(rawURL))
	if err != nil {
		return probeResult{err: err}
	}

	return probeResult{duration: buf.Format().SampleRate.D(buf.Len())}
}
