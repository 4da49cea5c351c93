// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/mekkanized/soundcue/internal/sound"
)

// Default configuration values.
const (
	DefaultMasterVolume  = 100
	DefaultAssetsDir     = "assets"
	DefaultCooldown      = Duration(25 * time.Millisecond)
	DefaultProbeTimeout  = Duration(10 * time.Second)
	DefaultProbeInterval = Duration(100 * time.Millisecond)
	DefaultAPITimeout    = Duration(30 * time.Second)
)

// Duration is a time.Duration that can be unmarshaled from
// human-readable strings like "25ms" or "10s", or from integer
// milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '25ms', '10s' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config represents the soundcue configuration. It implements
// sound.Settings as the module's read-only settings collaborator.
type Config struct {
	Audio  AudioConfig             `toml:"audio"`
	Sounds map[string]SoundBinding `toml:"sounds"`
	API    APIConfig               `toml:"api"`
	Probe  ProbeConfig             `toml:"probe"`
}

// AudioConfig contains global playback settings.
type AudioConfig struct {
	// MasterVolume is the global volume, 0-100.
	MasterVolume int `toml:"master_volume"`

	// NotUseSound disables all sound playback.
	NotUseSound bool `toml:"not_use_sound"`

	// OnlyWhenActive restricts playback to while the client is
	// visible.
	OnlyWhenActive bool `toml:"only_when_active"`

	// AssetsDir is the directory holding bundled sound assets.
	AssetsDir string `toml:"assets_dir"`

	// Cooldown is the debounce window for event sounds.
	Cooldown Duration `toml:"cooldown"`
}

// SoundBinding binds an event category to a sound.
type SoundBinding struct {
	// Type is "none", "bundled" or "upload".
	Type string `toml:"type"`

	// Name is the bundled catalog identifier (bundled only).
	Name string `toml:"name"`

	// FileID and FileURL identify an uploaded file (upload only).
	FileID  string `toml:"file_id"`
	FileURL string `toml:"file_url"`

	// Volume is the per-event volume, 0-100. Unset means 100.
	Volume *int `toml:"volume"`
}

// APIConfig contains settings for the backing service API.
type APIConfig struct {
	BaseURL string   `toml:"base_url"`
	Timeout Duration `toml:"timeout"`
}

// ProbeConfig contains duration probe settings.
type ProbeConfig struct {
	Timeout  Duration `toml:"timeout"`
	Interval Duration `toml:"interval"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			MasterVolume:   DefaultMasterVolume,
			NotUseSound:    false,
			OnlyWhenActive: false,
			AssetsDir:      DefaultAssetsDir,
			Cooldown:       DefaultCooldown,
		},
		Sounds: make(map[string]SoundBinding),
		API: APIConfig{
			Timeout: DefaultAPITimeout,
		},
		Probe: ProbeConfig{
			Timeout:  DefaultProbeTimeout,
			Interval: DefaultProbeInterval,
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "soundcue", "config.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if the file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// MasterVolume returns the global volume scalar in [0, 1].
func (c *Config) MasterVolume() float64 {
	return clampVolume(c.Audio.MasterVolume)
}

// NotUseSound reports the global "do not play sounds" flag.
func (c *Config) NotUseSound() bool {
	return c.Audio.NotUseSound
}

// OnlyWhenActive reports whether sounds should only play while the
// client is visible.
func (c *Config) OnlyWhenActive() bool {
	return c.Audio.OnlyWhenActive
}

// Binding returns the sound descriptor bound to an event category.
// Unbound events descend to no sound.
func (c *Config) Binding(ev sound.Event) sound.Descriptor {
	b, ok := c.Sounds[string(ev)]
	if !ok {
		return sound.Descriptor{Type: sound.TypeNone}
	}

	volume := 1.0
	if b.Volume != nil {
		volume = clampVolume(*b.Volume)
	}

	switch b.Type {
	case string(sound.TypeBundled):
		return sound.Descriptor{
			Type:   sound.TypeBundled,
			Name:   b.Name,
			Volume: volume,
		}
	case string(sound.TypeUpload):
		return sound.Descriptor{
			Type:    sound.TypeUpload,
			FileID:  b.FileID,
			FileURL: b.FileURL,
			Volume:  volume,
		}
	default:
		return sound.Descriptor{Type: sound.TypeNone}
	}
}

// clampVolume converts a 0-100 config volume to a [0, 1] scalar.
func clampVolume(v int) float64 {
	if v <= 0 {
		return 0
	}
	if v >= 100 {
		return 1
	}
	return float64(v) / 100
}
