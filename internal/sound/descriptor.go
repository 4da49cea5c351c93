// Package sound provides event sound playback for the client: loading
// and caching decoded audio buffers, building per-playback gain/pan
// graphs, and applying the user's volume and mute policy.
package sound

import "fmt"

// Type identifies where a sound comes from.
type Type string

const (
	// TypeNone means no sound is configured.
	TypeNone Type = "none"
	// TypeBundled refers to a sound from the packaged catalog.
	TypeBundled Type = "bundled"
	// TypeUpload refers to a user-uploaded file resolved by URL.
	TypeUpload Type = "upload"
)

// Descriptor describes a single configurable sound. It is read from
// configuration and immutable afterwards.
type Descriptor struct {
	Type Type

	// Name is the bundled catalog identifier (TypeBundled only).
	Name string

	// FileID and FileURL identify a user-uploaded file (TypeUpload
	// only). FileURL may be stale; FileID is used to re-resolve it.
	FileID  string
	FileURL string

	// Volume is the per-sound volume in [0, 1].
	Volume float64
}

// Playable reports whether the descriptor can resolve to a byte
// source at all. A false result is the expected "nothing to play"
// state, not an error.
func (d Descriptor) Playable() bool {
	switch d.Type {
	case TypeBundled:
		return d.Name != ""
	case TypeUpload:
		// A file ID alone does not play: re-resolution is a fallback
		// for a stored URL that fails to fetch, never a substitute
		// for one.
		return d.FileURL != ""
	default:
		return false
	}
}

// CacheKey returns the buffer cache key for the descriptor: the
// catalog name for bundled sounds, the file ID for uploads. Empty for
// unresolvable descriptors.
func (d Descriptor) CacheKey() string {
	switch d.Type {
	case TypeBundled:
		return d.Name
	case TypeUpload:
		return d.FileID
	default:
		return ""
	}
}

// Event is an application event category a sound can be bound to.
type Event string

const (
	EventOwnPost      Event = "own-post"
	EventPost         Event = "post"
	EventAntenna      Event = "antenna"
	EventChannel      Event = "channel"
	EventNotification Event = "notification"
	EventReaction     Event = "reaction"
)

// Events returns all event categories in a stable order.
func Events() []Event {
	return []Event{
		EventOwnPost,
		EventPost,
		EventAntenna,
		EventChannel,
		EventNotification,
		EventReaction,
	}
}

// ParseEvent validates an event category name.
func ParseEvent(s string) (Event, error) {
	for _, ev := range Events() {
		if string(ev) == s {
			return ev, nil
		}
	}
	return "", fmt.Errorf("unknown event category %q", s)
}
