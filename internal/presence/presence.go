// Package presence reports whether the client is visible to the user
// and whether the user has interacted with it, backing the playback
// autoplay and only-when-active guards.
package presence

import (
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
)

// Gate answers the two questions the playback policy asks of the host
// platform.
type Gate interface {
	// Visible reports whether the client is currently visible to the
	// user.
	Visible() bool

	// Interacted reports whether the user has interacted with the
	// client since startup (autoplay permission gate).
	Interacted() bool
}

// Static is a Gate with fixed answers, used headless and in tests.
type Static struct {
	IsVisible     bool
	HasInteracted bool
}

func (s Static) Visible() bool    { return s.IsVisible }
func (s Static) Interacted() bool { return s.HasInteracted }

// Permissive returns a gate that always allows playback.
func Permissive() Gate {
	return Static{IsVisible: true, HasInteracted: true}
}

const (
	screenSaverService = "org.freedesktop.ScreenSaver"
	screenSaverPath    = "/org/freedesktop/ScreenSaver"
	screenSaverMethod  = "org.freedesktop.ScreenSaver.GetActive"
)

// DBusGate answers visibility from the desktop session: an active
// screensaver or lock screen means the client is not visible. On a
// desktop session the user has interacted by definition, so
// Interacted is always true.
type DBusGate struct {
	mu     sync.Mutex
	logger *slog.Logger
	conn   *dbus.Conn
}

// NewDBusGate connects to the session bus. When the bus is
// unavailable (headless, non-Linux), it returns a permissive static
// gate instead of failing.
func NewDBusGate(logger *slog.Logger) Gate {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := dbus.SessionBus()
	if err != nil {
		logger.Debug("session bus unavailable, presence gate is permissive", "error", err)
		return Permissive()
	}

	return &DBusGate{logger: logger, conn: conn}
}

// Visible reports false while the screensaver or lock screen is
// active. Query errors degrade to visible so sounds are not silently
// dropped on desktops without a screensaver service.
func (g *DBusGate) Visible() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	obj := g.conn.Object(screenSaverService, screenSaverPath)

	var active bool
	if err := obj.Call(screenSaverMethod, 0).Store(&active); err != nil {
		g.logger.Debug("screensaver query failed", "error", err)
		return true
	}
	return !active
}

// Interacted always reports true for a desktop session.
func (g *DBusGate) Interacted() bool {
	return true
}
