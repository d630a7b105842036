// Package session holds the canonical playback state: which track is
// active, on which backend, whether it is actually playing, and at what
// volume. All mutations go through the operations here; the UI only
// raises intents and receives projections.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/wicaksana/showdeck/internal/backend"
	"github.com/wicaksana/showdeck/internal/catalog"
	"github.com/wicaksana/showdeck/internal/log"
	"github.com/wicaksana/showdeck/internal/surface"
	"github.com/wicaksana/showdeck/internal/ytid"
)

const (
	// defaultTick is the progress sampling cadence.
	defaultTick = 500 * time.Millisecond

	// unmuteFloor is the restore level used when unmuting from a state
	// where no previous audible volume is known.
	unmuteFloor = 0.1

	msgInvalidVideo = "Invalid Video ID"
	msgLoadError    = "Error loading track"
	msgNoSongs      = "No songs available"
)

// Options tune a new session.
type Options struct {
	// Volume is the initial shared volume in [0,1].
	Volume float64
	// TickInterval overrides the progress sampling cadence.
	TickInterval time.Duration
}

// Session is the single playback coordinator instance. It is created
// once at startup and only ever reset, never destroyed.
//
// The mutex guards the session fields only; backend commands are issued
// outside the lock because adapters confirm state changes by calling
// back into the session.
type Session struct {
	mu sync.Mutex

	local backend.Interface
	video backend.Interface
	cat   *catalog.Catalog
	reg   *surface.Registry

	active        *catalog.Track
	kind          backend.Kind
	playing       bool
	volume        float64
	restoreVolume float64

	// generation invalidates deferred work (timer ticks, async backend
	// confirmations) scheduled for a superseded selection.
	generation int
	tick       time.Duration
	progStop   chan struct{}
}

// New wires a session over the two backend adapters.
func New(local, video backend.Interface, cat *catalog.Catalog, reg *surface.Registry, opts Options) *Session {
	vol := opts.Volume
	if vol <= 0 || vol > 1 {
		vol = 0.7
	}
	tick := opts.TickInterval
	if tick <= 0 {
		tick = defaultTick
	}

	s := &Session{
		local:         local,
		video:         video,
		cat:           cat,
		reg:           reg,
		kind:          backend.KindNone,
		volume:        vol,
		restoreVolume: vol,
		tick:          tick,
	}

	local.SetCallbacks(backend.Callbacks{
		OnPlaying: func() { s.confirmPlaying(backend.KindLocalAudio) },
		OnPaused:  func() { s.confirmPaused(backend.KindLocalAudio) },
		OnEnded:   func() { s.confirmEnded(backend.KindLocalAudio) },
		OnError:   func(err error) { s.confirmError(backend.KindLocalAudio, err) },
	})
	video.SetCallbacks(backend.Callbacks{
		OnPlaying: func() { s.confirmPlaying(backend.KindExternalVideo) },
		OnPaused:  func() { s.confirmPaused(backend.KindExternalVideo) },
		OnEnded:   func() { s.confirmEnded(backend.KindExternalVideo) },
		OnError:   func(err error) { s.confirmError(backend.KindExternalVideo, err) },
	})

	return s
}

// --- state queries ---

// ActiveTrack returns the currently selected track, or nil.
func (s *Session) ActiveTrack() *catalog.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Kind returns the active backend kind.
func (s *Session) Kind() backend.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind
}

// IsPlaying reports the backend-confirmed play state.
func (s *Session) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Volume returns the shared volume level.
func (s *Session) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// --- operations ---

// SelectAndPlay makes track the active selection. Selecting the track
// that is already active on its backend resumes it rather than
// reloading. Otherwise the currently active backend is stopped first,
// then the new backend is loaded and, with autoPlay, started. Display
// metadata is projected immediately, before the backend confirms.
func (s *Session) SelectAndPlay(track *catalog.Track, autoPlay bool) error {
	if track == nil {
		return nil
	}

	// Unresolvable references are a display error on the track's own
	// surface; global play state is untouched.
	if track.Source == catalog.ExternalVideo {
		if _, err := ytid.Normalize(track.Ref); err != nil {
			s.showTrackError(track, msgInvalidVideo)
			return backend.ErrInvalidVideoID
		}
	}

	target := kindFor(track.Source)

	s.mu.Lock()
	if s.active != nil && s.active.SameAs(*track) && s.kind == target {
		b := s.backendLocked(target)
		alreadyPlaying := s.playing
		s.mu.Unlock()
		if !autoPlay || alreadyPlaying {
			return nil
		}
		if err := b.Play(); err != nil {
			s.playRejected(target, err)
		}
		return nil
	}

	s.generation++
	s.stopProgressLocked()
	prevKind := s.kind
	s.active = track
	s.kind = target
	s.playing = false
	vol := s.volume
	b := s.backendLocked(target)
	var prev backend.Interface
	if prevKind != backend.KindNone && prevKind != target {
		prev = s.backendLocked(prevKind)
	}
	s.mu.Unlock()

	// The old source must be silenced before the new backend is told
	// to start; two sources must never race for the speaker.
	if prev != nil {
		if prevKind == backend.KindLocalAudio {
			prev.Pause()
		} else {
			prev.Stop()
		}
	}

	s.projectSelection(track)

	b.SetVolume(vol)
	if err := b.Load(track.Ref); err != nil {
		log.Errorf("session: load %q: %v", track.Ref, err)
		if errors.Is(err, backend.ErrInvalidVideoID) {
			s.showTrackError(track, msgInvalidVideo)
		} else {
			s.showTrackError(track, msgLoadError)
		}
		return err
	}

	if autoPlay {
		if err := b.Play(); err != nil {
			s.playRejected(target, err)
		}
	}
	return nil
}

// Pause pauses the active backend without changing the selection.
func (s *Session) Pause() {
	s.mu.Lock()
	b := s.backendLocked(s.kind)
	s.mu.Unlock()
	if b != nil {
		b.Pause()
	}
}

// Resume restarts the active backend if a track is selected and not
// already playing.
func (s *Session) Resume() {
	s.mu.Lock()
	kind := s.kind
	playing := s.playing
	b := s.backendLocked(kind)
	s.mu.Unlock()
	if b == nil || playing {
		return
	}
	if err := b.Play(); err != nil {
		s.playRejected(kind, err)
	}
}

// Stop pauses the active backend. With clearSelection the session
// resets to its none state and every playlist surface falls back to its
// default display.
func (s *Session) Stop(clearSelection bool) {
	s.mu.Lock()
	prevKind := s.kind
	local := s.local
	video := s.video
	if clearSelection {
		s.generation++
		s.active = nil
		s.kind = backend.KindNone
		s.playing = false
	}
	s.stopProgressLocked()
	s.mu.Unlock()

	switch prevKind {
	case backend.KindLocalAudio:
		local.Pause()
		if clearSelection {
			local.Seek(0)
		}
	case backend.KindExternalVideo:
		// The kept selection must stay resumable, and a video stop
		// discards the loaded id. Only a clearing stop tears it down.
		if clearSelection {
			video.Stop()
		} else {
			video.Pause()
		}
	case backend.KindNone:
		// A defensive stop with nothing active still resets displays.
	}

	if clearSelection {
		s.projectDefaults()
	}
}

// SeekToFraction seeks to f of the active track's duration. A no-op
// when nothing is active or the duration is unknown.
func (s *Session) SeekToFraction(f float64) {
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}

	s.mu.Lock()
	b := s.backendLocked(s.kind)
	s.mu.Unlock()
	if b == nil {
		return
	}
	dur := b.Duration()
	if dur <= 0 {
		return
	}
	pos := time.Duration(f * float64(dur))
	b.Seek(pos)
	s.pushProgress(b)
}

// Position returns the active backend's current position and duration,
// zeros when nothing is active.
func (s *Session) Position() (pos, dur time.Duration) {
	s.mu.Lock()
	b := s.backendLocked(s.kind)
	s.mu.Unlock()
	if b == nil {
		return 0, 0
	}
	return b.CurrentTime(), b.Duration()
}

// SeekBy moves the active track's position by delta, clamped to the
// track bounds.
func (s *Session) SeekBy(delta time.Duration) {
	s.mu.Lock()
	b := s.backendLocked(s.kind)
	s.mu.Unlock()
	if b == nil {
		return
	}
	dur := b.Duration()
	pos := b.CurrentTime() + delta
	if pos < 0 {
		pos = 0
	}
	if dur > 0 && pos > dur {
		pos = dur
	}
	b.Seek(pos)
	s.pushProgress(b)
}

// SetVolume sets the shared volume, mirrors it to the active backend
// (audibly unmuting it) and to every volume surface, and feeds the
// mute-restore level while the volume is audible.
func (s *Session) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}

	s.mu.Lock()
	s.volume = v
	if v > 0 {
		s.restoreVolume = v
	}
	b := s.backendLocked(s.kind)
	reg := s.reg
	s.mu.Unlock()

	if b != nil {
		b.SetVolume(v)
	}
	reg.ForEach(func(_ string, sf surface.Surface) {
		sf.SetVolume(v)
	})
}

// ToggleMute silences the session, or restores the last audible volume.
// Muting from an already-zero volume remembers a small floor so unmute
// is never a no-op.
func (s *Session) ToggleMute() {
	s.mu.Lock()
	muted := s.volume <= 0
	if !muted {
		s.restoreVolume = s.volume
	} else if s.restoreVolume <= 0 {
		s.restoreVolume = unmuteFloor
	}
	target := 0.0
	if muted {
		target = s.restoreVolume
	}
	s.mu.Unlock()

	s.SetVolume(target)
}

// SyncVisible re-projects the current session state onto the currently
// visible playlist surface. Used when the user switches playlists while
// a track keeps playing: the new surface picks up metadata, progress,
// transport and highlight without interrupting playback.
func (s *Session) SyncVisible() {
	s.mu.Lock()
	track := s.active
	playing := s.playing
	b := s.backendLocked(s.kind)
	reg := s.reg
	s.mu.Unlock()

	sf, id := reg.Visible()
	if sf == nil {
		return
	}

	if track == nil {
		s.projectDefaultFor(id, sf)
		return
	}

	sf.ShowMetadata(surface.Metadata{Cover: track.Cover, Title: track.Title, Artist: track.Artist})
	sf.HighlightTrack(track.Key())
	sf.SetTransport(playing)
	s.pushProgress(b)
}

// --- backend confirmations ---

// confirmPlaying is invoked by a backend once playback actually starts.
// Confirmations from a backend that is no longer the active one are
// stale and ignored.
func (s *Session) confirmPlaying(kind backend.Kind) {
	s.mu.Lock()
	if s.kind != kind {
		s.mu.Unlock()
		return
	}
	s.playing = true
	s.startProgressLocked()
	reg := s.reg
	s.mu.Unlock()

	if sf, _ := reg.Visible(); sf != nil {
		sf.SetTransport(true)
	}
}

func (s *Session) confirmPaused(kind backend.Kind) {
	s.mu.Lock()
	if s.kind != kind {
		s.mu.Unlock()
		return
	}
	s.playing = false
	s.stopProgressLocked()
	reg := s.reg
	s.mu.Unlock()

	if sf, _ := reg.Visible(); sf != nil {
		sf.SetTransport(false)
	}
}

// confirmEnded additionally resets the visible progress readout.
func (s *Session) confirmEnded(kind backend.Kind) {
	s.mu.Lock()
	if s.kind != kind {
		s.mu.Unlock()
		return
	}
	s.playing = false
	s.stopProgressLocked()
	reg := s.reg
	s.mu.Unlock()

	if sf, _ := reg.Visible(); sf != nil {
		sf.SetTransport(false)
		sf.SetProgress(0, surface.FormatTime(0), surface.FormatTime(0))
	}
}

// confirmError renders the failure on the active track's surface but
// keeps the selection so the user can retry.
func (s *Session) confirmError(kind backend.Kind, err error) {
	s.mu.Lock()
	if s.kind != kind {
		s.mu.Unlock()
		return
	}
	log.Errorf("session: %s backend: %v", kind, err)
	s.playing = false
	s.stopProgressLocked()
	track := s.active
	reg := s.reg
	s.mu.Unlock()

	if track != nil {
		if sf := reg.Get(track.PlaylistID); sf != nil {
			sf.ShowError(msgLoadError)
		}
	}
	if sf, _ := reg.Visible(); sf != nil {
		sf.SetTransport(false)
	}
}

// playRejected handles a rejected play command: the affordance must
// never show a playing state the backend did not reach.
func (s *Session) playRejected(kind backend.Kind, err error) {
	log.Warnf("session: play rejected on %s: %v", kind, err)
	s.mu.Lock()
	if s.kind == kind {
		s.playing = false
		s.stopProgressLocked()
	}
	reg := s.reg
	s.mu.Unlock()

	if sf, _ := reg.Visible(); sf != nil {
		sf.SetTransport(false)
	}
}

// --- projections ---

// projectSelection gives immediate visual feedback for a new selection,
// before the backend has confirmed anything.
func (s *Session) projectSelection(track *catalog.Track) {
	key := track.Key()
	s.reg.ForEach(func(_ string, sf surface.Surface) {
		sf.HighlightTrack(key)
	})
	if sf := s.reg.Get(track.PlaylistID); sf != nil {
		sf.ShowMetadata(surface.Metadata{Cover: track.Cover, Title: track.Title, Artist: track.Artist})
		sf.SetProgress(0, surface.FormatTime(0), surface.FormatTime(0))
		sf.SetTransport(false)
	}
}

// projectDefaults resets every playlist surface to its default display:
// the first track's metadata, or an empty-playlist message.
func (s *Session) projectDefaults() {
	for i := range s.cat.Playlists {
		pl := &s.cat.Playlists[i]
		sf := s.reg.Get(pl.ID)
		if sf == nil {
			continue
		}
		s.projectDefaultFor(pl.ID, sf)
	}
}

func (s *Session) projectDefaultFor(id string, sf surface.Surface) {
	sf.HighlightTrack("")
	sf.SetTransport(false)
	sf.SetProgress(0, surface.FormatTime(0), surface.FormatTime(0))

	pl := s.cat.Get(id)
	if pl == nil {
		return
	}
	if first := pl.First(); first != nil {
		sf.ShowMetadata(surface.Metadata{Cover: first.Cover, Title: first.Title, Artist: first.Artist})
	} else {
		sf.ShowMetadata(surface.Metadata{Title: msgNoSongs})
	}
}

func (s *Session) showTrackError(track *catalog.Track, msg string) {
	if sf := s.reg.Get(track.PlaylistID); sf != nil {
		sf.ShowError(msg)
	}
}

// pushProgress pushes one immediate progress update to the visible
// surface, outside the timer cadence.
func (s *Session) pushProgress(b backend.Interface) {
	if b == nil {
		return
	}
	sf, _ := s.reg.Visible()
	if sf == nil {
		return
	}
	pos, dur := b.CurrentTime(), b.Duration()
	if dur <= 0 {
		sf.SetProgress(0, surface.FormatTime(0), surface.FormatTime(0))
		return
	}
	sf.SetProgress(surface.Fraction(pos, dur), surface.FormatTime(pos), surface.FormatTime(dur))
}

func (s *Session) backendLocked(kind backend.Kind) backend.Interface {
	switch kind {
	case backend.KindLocalAudio:
		return s.local
	case backend.KindExternalVideo:
		return s.video
	default:
		return nil
	}
}

func kindFor(src catalog.SourceKind) backend.Kind {
	if src == catalog.ExternalVideo {
		return backend.KindExternalVideo
	}
	return backend.KindLocalAudio
}
