//go:build !linux

package notify

import "github.com/wicaksana/showdeck/internal/catalog"

// New returns a no-op notifier on platforms without desktop
// notifications.
func New() (Notifier, error) {
	return &stubNotifier{}, nil
}

type stubNotifier struct{}

func (s *stubNotifier) TrackStarted(_ *catalog.Track) error { return nil }

func (s *stubNotifier) Close() error { return nil }
