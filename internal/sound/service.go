package sound

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/jonboulle/clockwork"

	"github.com/mekkanized/soundcue/internal/presence"
)

// DefaultCooldown is how long the event play-lock is held after a
// playback attempt resolves. It prevents audible doubling when many
// events fire in a tight burst, e.g. batched notifications. The value
// is empirically tuned; do not change it without signal it is wrong.
const DefaultCooldown = 25 * time.Millisecond

// Settings is the read-only view of the application settings store
// this module needs.
type Settings interface {
	// MasterVolume returns the global volume scalar in [0, 1].
	MasterVolume() float64

	// NotUseSound reports the global "do not play sounds" flag.
	NotUseSound() bool

	// OnlyWhenActive reports whether sounds should only play while the
	// client is visible.
	OnlyWhenActive() bool

	// Binding returns the sound descriptor bound to an event category.
	Binding(ev Event) Descriptor
}

// Service orchestrates event sound playback: it applies the mute and
// volume policy, loads buffers through the loader, and debounces
// rapid repeated event triggers. Construct one per process and pass
// it by handle.
type Service struct {
	logger   *slog.Logger
	settings Settings
	gate     presence.Gate
	loader   *Loader
	engine   *Engine
	clock    clockwork.Clock
	cooldown time.Duration

	// Process-wide debounce lock for event sounds. Intentionally a
	// single flag shared across all event categories.
	mu         sync.Mutex
	playLocked bool
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithClock substitutes the clock used for the debounce cooldown.
func WithClock(clock clockwork.Clock) ServiceOption {
	return func(s *Service) { s.clock = clock }
}

// WithCooldown overrides the debounce cooldown.
func WithCooldown(d time.Duration) ServiceOption {
	return func(s *Service) { s.cooldown = d }
}

// NewService creates the playback service. A nil gate is permissive.
func NewService(settings Settings, gate presence.Gate, loader *Loader, engine *Engine,
	logger *slog.Logger, opts ...ServiceOption,
) *Service {
	if gate == nil {
		gate = presence.Permissive()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		logger:   logger,
		settings: settings,
		gate:     gate,
		loader:   loader,
		engine:   engine,
		clock:    clockwork.NewRealClock(),
		cooldown: DefaultCooldown,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Muted evaluates the mute policy fresh: the global "do not play"
// flag, and the only-when-active flag combined with current
// visibility.
func (s *Service) Muted() bool {
	if s.settings.NotUseSound() {
		return true
	}
	if s.settings.OnlyWhenActive() && !s.gate.Visible() {
		return true
	}
	return false
}

// PlayEvent plays the sound bound to an event category. It no-ops
// when no sound is bound, when the debounce lock is held, or when the
// user has not interacted with the client yet. Decode failures are
// returned; everything else is best-effort silence. The returned
// playback is nil when nothing was played and may be ignored.
func (s *Service) PlayEvent(ctx context.Context, ev Event) (*Playback, error) {
	desc := s.settings.Binding(ev)
	if !desc.Playable() {
		return nil, nil
	}

	s.mu.Lock()
	if s.playLocked {
		s.mu.Unlock()
		return nil, nil
	}
	if !s.gate.Interacted() {
		s.mu.Unlock()
		return nil, nil
	}
	s.playLocked = true
	s.mu.Unlock()

	pb, err := s.playDescriptor(ctx, desc)
	if err != nil {
		s.releaseAfterCooldown()
		return nil, err
	}

	if pb == nil {
		// Nothing played; still hold the lock for the cooldown so a
		// burst of events resolves to at most one attempt.
		s.releaseAfterCooldown()
		return nil, nil
	}

	go func() {
		<-pb.Done()
		s.releaseAfterCooldown()
	}()
	return pb, nil
}

// PlayDescriptor plays an arbitrary descriptor subject to the mute
// and volume policy. Fire-and-forget: it returns once playback has
// started (or been skipped, in which case the playback is nil).
func (s *Service) PlayDescriptor(ctx context.Context, desc Descriptor) (*Playback, error) {
	return s.playDescriptor(ctx, desc)
}

// playDescriptor applies policy, loads, and starts playback. A nil
// playback with nil error means nothing was played.
func (s *Service) playDescriptor(ctx context.Context, desc Descriptor) (*Playback, error) {
	if !desc.Playable() {
		return nil, nil
	}
	if s.Muted() {
		return nil, nil
	}

	master := s.settings.MasterVolume()
	if master == 0 || desc.Volume == 0 {
		return nil, nil
	}

	buf, err := s.loader.Load(ctx, desc, true)
	if err != nil {
		return nil, err
	}
	if buf == nil {
		return nil, nil
	}

	pb, err := s.engine.BuildGraph(buf, GraphOptions{
		Volume: desc.Volume * master,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("playing sound",
		"playback_id", pb.ID, "key", desc.CacheKey(), "volume", pb.Volume())
	pb.Start()
	return pb, nil
}

// PlayURL plays an arbitrary URL, bypassing the event bindings and
// mute policy. Used for ad hoc previews. A zero or negative
// opts.Volume short-circuits without fetching; it is not mapped to
// the BuildGraph default, so callers must pass an explicit volume.
func (s *Service) PlayURL(ctx context.Context, rawURL string, opts GraphOptions) (*Playback, error) {
	if opts.Volume <= 0 {
		return nil, nil
	}

	buf, err := s.loadURL(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	pb, err := s.engine.BuildGraph(buf, opts)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("playing url",
		"playback_id", pb.ID, "url", rawURL,
		"volume", pb.Volume(), "pan", pb.Pan(), "rate", pb.Rate())
	pb.Start()
	return pb, nil
}

// PlayFile plays a local audio file, bypassing the event bindings and
// mute policy. Zero-volume handling matches PlayURL.
func (s *Service) PlayFile(ctx context.Context, path string, opts GraphOptions) (*Playback, error) {
	if opts.Volume <= 0 {
		return nil, nil
	}

	buf, err := s.loader.LoadFile(path)
	if err != nil {
		return nil, err
	}

	pb, err := s.engine.BuildGraph(buf, opts)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("playing file",
		"playback_id", pb.ID, "path", path,
		"volume", pb.Volume(), "pan", pb.Pan(), "rate", pb.Rate())
	pb.Start()
	return pb, nil
}

// loadURL fetches and decodes a URL without touching the cache.
func (s *Service) loadURL(ctx context.Context, rawURL string) (*beep.Buffer, error) {
	desc := Descriptor{Type: TypeUpload, FileURL: rawURL, Volume: 1}
	buf, err := s.loader.Load(ctx, desc, false)
	if err != nil {
		return nil, err
	}
	if buf == nil {
		return nil, ErrSoundNotFound
	}
	return buf, nil
}

// releaseAfterCooldown frees the debounce lock once the cooldown has
// elapsed.
func (s *Service) releaseAfterCooldown() {
	s.clock.AfterFunc(s.cooldown, func() {
		s.mu.Lock()
		s.playLocked = false
		s.mu.Unlock()
	})
}
