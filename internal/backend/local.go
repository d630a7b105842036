package backend

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

// Local plays audio files through the speaker. One shared instance
// exists per process, matching the single shared playable element of
// the original design.
type Local struct {
	mu sync.Mutex

	src      string
	state    State
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	file     *os.File
	level    float64
	loadGen  int
	cb       Callbacks
}

var speakerInitialized bool

// NewLocal creates the local-file adapter.
func NewLocal() *Local {
	return &Local{
		state: Unstarted,
		level: 1.0,
	}
}

func (l *Local) Kind() Kind { return KindLocalAudio }

// SetCallbacks registers state-change confirmations.
func (l *Local) SetCallbacks(cb Callbacks) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cb = cb
}

// Load decodes path and cues it paused. Loading the currently loaded
// path is a no-op unless that load already ended, so re-selecting the
// same track does not restart the decode pipeline.
func (l *Local) Load(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if path == l.src && l.streamer != nil && l.state != Ended {
		return nil
	}

	l.teardownLocked()

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".mp3" && ext != ".flac" {
		return fmt.Errorf("unsupported format: %s", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	}
	if err != nil {
		f.Close()
		return err
	}

	if !speakerInitialized {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			streamer.Close()
			f.Close()
			return err
		}
		speakerInitialized = true
	}

	l.src = path
	l.file = f
	l.streamer = streamer
	l.format = format
	l.ctrl = &beep.Ctrl{Streamer: streamer, Paused: true}
	l.volume = &effects.Volume{Streamer: l.ctrl, Base: 2, Volume: levelToVolume(l.level), Silent: l.level <= 0}
	l.state = Cued
	l.loadGen++

	gen := l.loadGen
	speaker.Play(beep.Seq(l.volume, beep.Callback(func() {
		l.finished(gen)
	})))

	return nil
}

// finished runs when the stream drains. The generation guard makes a
// stale callback from a replaced load a no-op.
func (l *Local) finished(gen int) {
	l.mu.Lock()
	if gen != l.loadGen || l.streamer == nil {
		l.mu.Unlock()
		return
	}
	l.state = Ended
	cb := l.cb.OnEnded
	l.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// Play starts or resumes the cued stream.
func (l *Local) Play() error {
	l.mu.Lock()
	if l.ctrl == nil {
		l.mu.Unlock()
		return ErrNotLoaded
	}
	if l.state == Playing {
		l.mu.Unlock()
		return nil
	}
	if l.state == Ended {
		// Ended streams restart from the top, like a reloaded element.
		speaker.Lock()
		_ = l.streamer.Seek(0)
		speaker.Unlock()
	}
	speaker.Lock()
	l.ctrl.Paused = false
	speaker.Unlock()
	l.state = Playing
	cb := l.cb.OnPlaying
	l.mu.Unlock()

	if cb != nil {
		cb()
	}
	return nil
}

// Pause pauses without releasing the stream.
func (l *Local) Pause() {
	l.mu.Lock()
	if l.ctrl == nil || l.state != Playing {
		l.mu.Unlock()
		return
	}
	speaker.Lock()
	l.ctrl.Paused = true
	speaker.Unlock()
	l.state = Paused
	cb := l.cb.OnPaused
	l.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// Stop releases the stream and resets to Unstarted.
func (l *Local) Stop() {
	l.mu.Lock()
	wasPlaying := l.state == Playing
	l.teardownLocked()
	cb := l.cb.OnPaused
	l.mu.Unlock()

	if wasPlaying && cb != nil {
		cb()
	}
}

func (l *Local) teardownLocked() {
	if l.streamer == nil {
		l.src = ""
		l.state = Unstarted
		return
	}
	speaker.Clear()
	l.streamer.Close()
	l.streamer = nil
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
	l.ctrl = nil
	l.volume = nil
	l.src = ""
	l.state = Unstarted
	l.loadGen++
}

// Seek moves to an absolute position, clamped to the stream length.
func (l *Local) Seek(pos time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.streamer == nil {
		return
	}
	n := l.format.SampleRate.N(pos)
	n = max(n, 0)
	if maxN := l.streamer.Len(); n > maxN {
		n = maxN
	}
	speaker.Lock()
	_ = l.streamer.Seek(n)
	speaker.Unlock()
}

// SetVolume applies a [0,1] level. Setting any level unsilences the
// stream; level 0 silences it.
func (l *Local) SetVolume(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	if l.volume == nil {
		return
	}
	speaker.Lock()
	l.volume.Silent = level <= 0
	l.volume.Volume = levelToVolume(level)
	speaker.Unlock()
}

// CurrentTime returns the playback position of the loaded stream.
func (l *Local) CurrentTime() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := l.format.SampleRate.D(l.streamer.Position())
	speaker.Unlock()
	return pos
}

// Duration returns the total length of the loaded stream.
func (l *Local) Duration() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.streamer == nil {
		return 0
	}
	return l.format.SampleRate.D(l.streamer.Len())
}

// IsPlaying reports "not paused and not ended".
func (l *Local) IsPlaying() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == Playing
}

// levelToVolume converts a 0.0-1.0 level to beep's logarithmic scale:
// 1.0 -> 0, 0.5 -> -1, 0.25 -> -2.
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}

// Verify Local implements Interface at compile time.
var _ Interface = (*Local)(nil)
