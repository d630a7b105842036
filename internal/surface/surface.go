// Package surface defines the projection boundary between the playback
// coordinator and whatever renders it. A Surface is one playlist's
// display region; the coordinator only ever pushes state into it and
// never reads it back.
package surface

import (
	"fmt"
	"sync"
	"time"

	"github.com/wicaksana/showdeck/internal/log"
)

// Metadata is the display payload for a track.
type Metadata struct {
	Cover  string
	Title  string
	Artist string
}

// Surface is one playlist's display region. Implementations must be
// idempotent: projecting the same state twice renders the same thing.
type Surface interface {
	// ShowMetadata sets cover, title and artist.
	ShowMetadata(m Metadata)
	// SetProgress sets the progress fraction in [0,1] and the formatted
	// elapsed/duration texts.
	SetProgress(fraction float64, elapsed, total string)
	// SetTransport shows the pause control when playing is true, the
	// play control otherwise.
	SetTransport(playing bool)
	// HighlightTrack marks the thumbnail whose normalized reference
	// equals key as active, clearing any other. An empty key clears all.
	HighlightTrack(key string)
	// ShowError renders an error state in place of track metadata.
	ShowError(msg string)
	// SetVolume mirrors the shared volume level to this surface's
	// volume control.
	SetVolume(level float64)
}

// Registry maps playlist ids to their surfaces and tracks which one is
// currently visible. Lookups of unregistered ids are logged no-ops so a
// missing display region never propagates an error into playback.
type Registry struct {
	mu       sync.RWMutex
	surfaces map[string]Surface
	visible  string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{surfaces: make(map[string]Surface)}
}

// Register adds or replaces the surface for a playlist id.
func (r *Registry) Register(id string, s Surface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.surfaces[id] = s
}

// SetVisible records which playlist surface is currently shown.
func (r *Registry) SetVisible(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visible = id
}

// VisibleID returns the currently visible playlist id.
func (r *Registry) VisibleID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.visible
}

// Visible resolves the currently visible surface. Callers must resolve
// fresh on every use rather than caching the result, so updates keep
// landing on whichever surface the user has navigated to.
func (r *Registry) Visible() (Surface, string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.surfaces[r.visible]
	if !ok {
		if r.visible != "" {
			log.Warnf("surface: no surface registered for visible playlist %q", r.visible)
		}
		return nil, r.visible
	}
	return s, r.visible
}

// Get resolves the surface for a playlist id, logging when it is absent.
func (r *Registry) Get(id string) Surface {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.surfaces[id]
	if !ok {
		log.Warnf("surface: no surface registered for playlist %q", id)
		return nil
	}
	return s
}

// ForEach visits every registered surface.
func (r *Registry) ForEach(fn func(id string, s Surface)) {
	r.mu.RLock()
	ids := make([]string, 0, len(r.surfaces))
	for id := range r.surfaces {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	for _, id := range ids {
		r.mu.RLock()
		s := r.surfaces[id]
		r.mu.RUnlock()
		if s != nil {
			fn(id, s)
		}
	}
}

// FormatTime renders a duration as m:ss, the way the progress readouts
// display it. Negative durations render as 0:00.
func FormatTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// Fraction converts a position/duration pair into a [0,1] progress
// fraction, returning 0 when the duration is unknown or non-positive.
func Fraction(pos, dur time.Duration) float64 {
	if dur <= 0 {
		return 0
	}
	f := float64(pos) / float64(dur)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
