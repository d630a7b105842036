package session

import (
	"time"

	"github.com/wicaksana/showdeck/internal/backend"
	"github.com/wicaksana/showdeck/internal/surface"
)

// The progress reporter samples the active backend on a fixed cadence
// and pushes formatted values to whichever playlist surface is visible
// at that moment. The session owns the reporter: starting a new track,
// pausing or ending always stops any prior loop before optionally
// starting a new one, so at most one loop ever exists.

// startProgressLocked spawns the sampling loop. Caller holds s.mu.
func (s *Session) startProgressLocked() {
	s.stopProgressLocked()
	stop := make(chan struct{})
	s.progStop = stop
	go s.progressLoop(s.generation, stop)
}

// stopProgressLocked halts the sampling loop. Caller holds s.mu.
func (s *Session) stopProgressLocked() {
	if s.progStop != nil {
		close(s.progStop)
		s.progStop = nil
	}
}

func (s *Session) progressLoop(gen int, stop chan struct{}) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !s.progressTick(gen) {
				return
			}
		}
	}
}

// progressTick samples once. The generation check makes ticks scheduled
// for a superseded selection no-ops, and the visible surface is
// re-resolved fresh every tick so a user browsing playlists keeps the
// readout on the surface they are looking at.
func (s *Session) progressTick(gen int) bool {
	s.mu.Lock()
	if gen != s.generation || !s.playing || s.kind == backend.KindNone {
		s.mu.Unlock()
		return false
	}
	b := s.backendLocked(s.kind)
	reg := s.reg
	s.mu.Unlock()

	pos, dur := b.CurrentTime(), b.Duration()

	sf, _ := reg.Visible()
	if sf == nil {
		return true
	}
	if dur <= 0 {
		sf.SetProgress(0, surface.FormatTime(0), surface.FormatTime(0))
		return true
	}
	sf.SetProgress(surface.Fraction(pos, dur), surface.FormatTime(pos), surface.FormatTime(dur))
	return true
}
