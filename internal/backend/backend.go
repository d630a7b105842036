// Package backend unifies the two playable-media engines (local audio
// files, external embedded video) behind one adapter contract. All call
// sites in the session depend only on Interface.
package backend

import (
	"errors"
	"time"
)

// Kind identifies which backend is active.
type Kind int

const (
	KindNone Kind = iota
	KindLocalAudio
	KindExternalVideo
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindLocalAudio:
		return "LocalAudio"
	case KindExternalVideo:
		return "ExternalVideo"
	default:
		return "Unknown"
	}
}

// State mirrors the lifecycle of a loaded media item. Local audio only
// moves through Unstarted, Playing, Paused and Ended; the external video
// adapter uses the full set, mirroring the embedded player's own states.
type State int

const (
	Unstarted State = iota
	Cued
	Buffering
	Playing
	Paused
	Ended
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Unstarted:
		return "Unstarted"
	case Cued:
		return "Cued"
	case Buffering:
		return "Buffering"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	case Ended:
		return "Ended"
	default:
		return "Unknown"
	}
}

// ErrInvalidVideoID is returned by Load when an external-video reference
// cannot be normalized to a canonical id.
var ErrInvalidVideoID = errors.New("invalid video id")

// ErrNotLoaded is returned by Play when no media has been loaded.
var ErrNotLoaded = errors.New("no media loaded")

// Callbacks are invoked by a backend when its actual play state changes.
// Play requests can be rejected (decode failure, driver error), so the
// session trusts these confirmations rather than its own commands.
// Callbacks may fire from backend-owned goroutines; receivers must do
// their own locking.
type Callbacks struct {
	OnPlaying func()
	OnPaused  func()
	OnEnded   func()
	OnError   func(error)
}

// Interface is the uniform adapter contract over both engines.
type Interface interface {
	Kind() Kind

	// Load prepares ref for playback without starting it. Loading a
	// reference identical to the current one must not restart the
	// decode pipeline.
	Load(ref string) error

	Play() error
	Pause()
	Stop()
	Seek(pos time.Duration)
	SetVolume(level float64)

	CurrentTime() time.Duration
	Duration() time.Duration
	IsPlaying() bool

	SetCallbacks(cb Callbacks)
}
