// Package notify mirrors track changes to desktop notifications.
package notify

import "github.com/wicaksana/showdeck/internal/catalog"

// displayTimeoutMs keeps the now-playing toast short-lived; it carries
// no actions the user could miss.
const displayTimeoutMs = 3000

// Notifier shows now-playing notifications. Each track replaces the
// previous notification so rapid track changes do not stack.
type Notifier interface {
	TrackStarted(tr *catalog.Track) error
	// Close dismisses the current notification, if any.
	Close() error
}

// payload derives the notification fields from a track. The cover
// image doubles as the notification icon when the track has one.
func payload(tr *catalog.Track) (summary, body, icon string) {
	summary = tr.Title
	if summary == "" {
		summary = "Now playing"
	}
	return summary, tr.Artist, tr.Cover
}
