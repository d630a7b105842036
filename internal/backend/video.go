package backend

import (
	"fmt"
	"sync"
	"time"

	"github.com/wicaksana/showdeck/internal/ytid"
)

// VideoDriver is the embedded external player behind the video adapter.
// Init is asynchronous: the driver becomes usable only once it reports
// Ready. Callbacks may fire on driver-owned goroutines or synchronously
// from within a driver command, so the adapter never holds its own lock
// across a driver call.
type VideoDriver interface {
	Init(ev DriverEvents) error
	Load(id string, autoplay bool)
	Play()
	Pause()
	Stop()
	SeekTo(seconds float64)
	SetVolume(percent int)
	Mute()
	UnMute()
	CurrentTime() float64
	Duration() float64
	CurrentID() string
	Close() error
}

// DriverEvents receives the driver's asynchronous notifications.
type DriverEvents struct {
	OnReady       func()
	OnStateChange func(State)
	OnError       func(error)
}

type initState int

const (
	initIdle initState = iota
	initPending
	initReady
)

// Video adapts a lazily-initialized external player. Commands issued
// before the driver is ready are queued in a one-slot pending load and
// replayed when the Ready callback fires.
//
// drv is set once at construction and never guarded: the mutex covers
// the adapter's own state only, and is always released before a driver
// command is issued.
type Video struct {
	mu sync.Mutex

	drv   VideoDriver
	init  initState
	state State

	curID       string
	pendingID   string
	pendingAuto bool

	level float64
	cb    Callbacks
}

// NewVideo creates the external-video adapter over drv. The driver is
// not initialized until the first Load.
func NewVideo(drv VideoDriver) *Video {
	return &Video{
		drv:   drv,
		state: Unstarted,
		level: 1.0,
	}
}

func (v *Video) Kind() Kind { return KindExternalVideo }

// SetCallbacks registers state-change confirmations.
func (v *Video) SetCallbacks(cb Callbacks) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cb = cb
}

// Load normalizes ref and cues the video. All URL spellings of one
// video normalize to the same id, so reloading the current video is a
// no-op unless it already ended. Before the driver is ready the id is
// held in the pending slot.
func (v *Video) Load(ref string) error {
	id, err := ytid.Normalize(ref)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidVideoID, ref)
	}

	v.mu.Lock()
	if v.init == initReady && id == v.curID && v.state != Ended && v.state != Unstarted {
		v.mu.Unlock()
		return nil
	}

	if v.init != initReady {
		v.pendingID = id
		v.pendingAuto = false
		return v.startInitUnlocking()
	}

	v.curID = id
	v.state = Unstarted
	level := v.level
	v.mu.Unlock()

	v.applyVolume(level)
	v.drv.Load(id, false)
	return nil
}

// Play starts or resumes. A play before the driver is ready upgrades
// the pending load to autoplay; the Ready callback replays it.
func (v *Video) Play() error {
	v.mu.Lock()
	if v.init != initReady {
		if v.pendingID == "" {
			v.mu.Unlock()
			return ErrNotLoaded
		}
		v.pendingAuto = true
		return v.startInitUnlocking()
	}
	if v.curID == "" {
		v.mu.Unlock()
		return ErrNotLoaded
	}

	state, id, level := v.state, v.curID, v.level
	v.mu.Unlock()

	switch state {
	case Playing, Buffering:
		return nil
	case Unstarted:
		// First start after a cue-only load.
		v.applyVolume(level)
		v.drv.Load(id, true)
	default:
		v.drv.Play()
	}
	return nil
}

// Pause pauses when actually playing or buffering.
func (v *Video) Pause() {
	v.mu.Lock()
	if v.init != initReady {
		v.pendingAuto = false
		v.mu.Unlock()
		return
	}
	pause := v.state == Playing || v.state == Buffering
	v.mu.Unlock()

	if pause {
		v.drv.Pause()
	}
}

// Stop halts the driver and clears the pending slot.
func (v *Video) Stop() {
	v.mu.Lock()
	v.pendingID = ""
	v.pendingAuto = false
	stop := v.init == initReady && v.curID != ""
	v.curID = ""
	v.state = Unstarted
	v.mu.Unlock()

	if stop {
		v.drv.Stop()
	}
}

// Seek jumps to an absolute position.
func (v *Video) Seek(pos time.Duration) {
	v.mu.Lock()
	ok := v.init == initReady && v.curID != ""
	v.mu.Unlock()
	if !ok {
		return
	}
	secs := pos.Seconds()
	if secs < 0 {
		secs = 0
	}
	v.drv.SeekTo(secs)
}

// SetVolume applies a [0,1] level, unmuting the driver for non-zero
// levels since setting volume is expected to audibly unmute.
func (v *Video) SetVolume(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}

	v.mu.Lock()
	v.level = level
	ready := v.init == initReady
	v.mu.Unlock()

	if ready {
		v.applyVolume(level)
	}
}

func (v *Video) applyVolume(level float64) {
	if level <= 0 {
		v.drv.Mute()
		return
	}
	v.drv.UnMute()
	v.drv.SetVolume(int(level * 100))
}

// CurrentTime returns the driver's reported position.
func (v *Video) CurrentTime() time.Duration {
	v.mu.Lock()
	ready := v.init == initReady
	v.mu.Unlock()
	if !ready {
		return 0
	}
	return secondsToDuration(v.drv.CurrentTime())
}

// Duration returns the driver's reported duration.
func (v *Video) Duration() time.Duration {
	v.mu.Lock()
	ready := v.init == initReady
	v.mu.Unlock()
	if !ready {
		return 0
	}
	return secondsToDuration(v.drv.Duration())
}

// IsPlaying counts buffering as playing, matching the driver's own
// notion of an active video.
func (v *Video) IsPlaying() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state == Playing || v.state == Buffering
}

// State returns the adapter's mirrored player state.
func (v *Video) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// startInitUnlocking kicks off driver initialization at most once. The
// caller holds v.mu; it is released before Init runs because drivers
// may fire Ready synchronously from Init.
func (v *Video) startInitUnlocking() error {
	if v.init != initIdle {
		v.mu.Unlock()
		return nil
	}
	v.init = initPending
	v.mu.Unlock()

	err := v.drv.Init(DriverEvents{
		OnReady:       v.handleReady,
		OnStateChange: v.handleStateChange,
		OnError:       v.handleError,
	})
	if err != nil {
		v.mu.Lock()
		v.init = initIdle
		v.mu.Unlock()
		return err
	}
	return nil
}

// handleReady replays the pending load, if any.
func (v *Video) handleReady() {
	v.mu.Lock()
	v.init = initReady
	id, auto := v.pendingID, v.pendingAuto
	v.pendingID = ""
	v.pendingAuto = false
	if id != "" {
		v.curID = id
		v.state = Unstarted
	}
	level := v.level
	v.mu.Unlock()

	v.applyVolume(level)
	if id != "" {
		v.drv.Load(id, auto)
	}
}

// handleStateChange mirrors the driver state and confirms play state to
// the session. Cued and Unstarted read as "not playing"; Ended is
// reported separately so the session can reset the progress display.
func (v *Video) handleStateChange(s State) {
	v.mu.Lock()
	prev := v.state
	v.state = s
	cb := v.cb
	v.mu.Unlock()

	switch s {
	case Playing:
		if cb.OnPlaying != nil {
			cb.OnPlaying()
		}
	case Paused, Cued, Unstarted:
		if prev != s && cb.OnPaused != nil {
			cb.OnPaused()
		}
	case Ended:
		if cb.OnEnded != nil {
			cb.OnEnded()
		}
	case Buffering:
		// Transient; Playing follows if the start succeeds.
	}
}

func (v *Video) handleError(err error) {
	v.mu.Lock()
	v.state = Unstarted
	cb := v.cb.OnError
	v.mu.Unlock()

	if cb != nil {
		cb(err)
	}
}

func secondsToDuration(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}

// Verify Video implements Interface at compile time.
var _ Interface = (*Video)(nil)
