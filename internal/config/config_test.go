package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mekkanized/soundcue/internal/sound"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 100, cfg.Audio.MasterVolume)
	assert.False(t, cfg.Audio.NotUseSound)
	assert.False(t, cfg.Audio.OnlyWhenActive)
	assert.Equal(t, "assets", cfg.Audio.AssetsDir)
	assert.Equal(t, 25*time.Millisecond, cfg.Audio.Cooldown.Duration())
	assert.Equal(t, 10*time.Second, cfg.Probe.Timeout.Duration())
	assert.Equal(t, 100*time.Millisecond, cfg.Probe.Interval.Duration())
	assert.Empty(t, cfg.Sounds)
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Audio.MasterVolume, cfg.Audio.MasterVolume)
}

func TestLoadConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[audio]
master_volume = 80
not_use_sound = true
only_when_active = true
assets_dir = "/usr/share/soundcue"
cooldown = "40ms"

[api]
base_url = "https://social.example.com"
timeout = "5s"

[probe]
timeout = "3s"
interval = "50ms"

[sounds.notification]
type = "bundled"
name = "pop"
volume = 50

[sounds.reaction]
type = "upload"
file_id = "9abc"
file_url = "https://files.example.com/9abc.mp3"

[sounds.post]
type = "none"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 80, cfg.Audio.MasterVolume)
	assert.True(t, cfg.Audio.NotUseSound)
	assert.True(t, cfg.Audio.OnlyWhenActive)
	assert.Equal(t, "/usr/share/soundcue", cfg.Audio.AssetsDir)
	assert.Equal(t, 40*time.Millisecond, cfg.Audio.Cooldown.Duration())
	assert.Equal(t, "https://social.example.com", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout.Duration())
	assert.Equal(t, 3*time.Second, cfg.Probe.Timeout.Duration())
	assert.Equal(t, 50*time.Millisecond, cfg.Probe.Interval.Duration())
}

func TestDuration_AcceptsIntegerMilliseconds(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("25")))
	assert.Equal(t, 25*time.Millisecond, d.Duration())

	require.NoError(t, d.UnmarshalText([]byte("1h30m")))
	assert.Equal(t, 90*time.Minute, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("soon")))
}

func TestMasterVolume(t *testing.T) {
	cfg := DefaultConfig()

	cfg.Audio.MasterVolume = 100
	assert.Equal(t, 1.0, cfg.MasterVolume())

	cfg.Audio.MasterVolume = 50
	assert.Equal(t, 0.5, cfg.MasterVolume())

	cfg.Audio.MasterVolume = 0
	assert.Equal(t, 0.0, cfg.MasterVolume())

	// Out-of-range values clamp.
	cfg.Audio.MasterVolume = 150
	assert.Equal(t, 1.0, cfg.MasterVolume())
	cfg.Audio.MasterVolume = -5
	assert.Equal(t, 0.0, cfg.MasterVolume())
}

func TestBinding(t *testing.T) {
	vol := 50
	cfg := DefaultConfig()
	cfg.Sounds = map[string]SoundBinding{
		"notification": {Type: "bundled", Name: "pop", Volume: &vol},
		"reaction":     {Type: "upload", FileID: "9abc", FileURL: "https://files.example.com/9abc.mp3"},
		"post":         {Type: "none"},
		"channel":      {Type: "mystery"},
	}

	desc := cfg.Binding(sound.EventNotification)
	assert.Equal(t, sound.TypeBundled, desc.Type)
	assert.Equal(t, "pop", desc.Name)
	assert.Equal(t, 0.5, desc.Volume)

	desc = cfg.Binding(sound.EventReaction)
	assert.Equal(t, sound.TypeUpload, desc.Type)
	assert.Equal(t, "9abc", desc.FileID)
	assert.Equal(t, "https://files.example.com/9abc.mp3", desc.FileURL)
	// Volume defaults to full when unset.
	assert.Equal(t, 1.0, desc.Volume)

	assert.Equal(t, sound.TypeNone, cfg.Binding(sound.EventPost).Type)
	assert.Equal(t, sound.TypeNone, cfg.Binding(sound.EventChannel).Type)
	assert.Equal(t, sound.TypeNone, cfg.Binding(sound.EventOwnPost).Type)
}
