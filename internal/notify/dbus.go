//go:build linux

package notify

import (
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/wicaksana/showdeck/internal/catalog"
)

const (
	dbusNotifyDest      = "org.freedesktop.Notifications"
	dbusNotifyPath      = "/org/freedesktop/Notifications"
	dbusNotifyInterface = "org.freedesktop.Notifications"

	// urgencyLow per the freedesktop notification hint values.
	urgencyLow = byte(0)
)

// dbusNotifier talks to org.freedesktop.Notifications and remembers the
// last notification id so the next track replaces it in place.
type dbusNotifier struct {
	obj dbus.BusObject

	mu     sync.Mutex
	lastID uint32
}

// New connects to the session bus. When no bus is reachable the
// returned notifier silently drops notifications; a headless run is
// not an error.
func New() (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return &stubNotifier{}, nil //nolint:nilerr // headless fallback
	}
	return &dbusNotifier{obj: conn.Object(dbusNotifyDest, dbusNotifyPath)}, nil
}

func (n *dbusNotifier) TrackStarted(tr *catalog.Track) error {
	summary, body, icon := payload(tr)

	n.mu.Lock()
	replaces := n.lastID
	n.mu.Unlock()

	hints := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(urgencyLow),
		"desktop-entry": dbus.MakeVariant("showdeck"),
	}

	// Notify(app_name, replaces_id, app_icon, summary, body, actions,
	// hints, expire_timeout) -> id
	call := n.obj.Call(
		dbusNotifyInterface+".Notify",
		0,
		"Showdeck",
		replaces,
		icon,
		summary,
		body,
		[]string{},
		hints,
		int32(displayTimeoutMs),
	)
	if call.Err != nil {
		return call.Err
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return err
	}

	n.mu.Lock()
	n.lastID = id
	n.mu.Unlock()
	return nil
}

func (n *dbusNotifier) Close() error {
	n.mu.Lock()
	id := n.lastID
	n.lastID = 0
	n.mu.Unlock()
	if id == 0 {
		return nil
	}
	return n.obj.Call(dbusNotifyInterface+".CloseNotification", 0, id).Err
}

// stubNotifier drops notifications when no session bus is available.
type stubNotifier struct{}

func (s *stubNotifier) TrackStarted(_ *catalog.Track) error { return nil }

func (s *stubNotifier) Close() error { return nil }
