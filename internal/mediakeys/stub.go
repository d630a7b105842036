//go:build !linux

package mediakeys

import (
	"time"

	"github.com/wicaksana/showdeck/internal/catalog"
)

// Controller is the slice of the playback session driven from media
// keys.
type Controller interface {
	IsPlaying() bool
	ActiveTrack() *catalog.Track
	Pause()
	Resume()
	Stop(clearSelection bool)
	SeekBy(delta time.Duration)
	SeekToFraction(f float64)
	Position() (pos, dur time.Duration)
	Volume() float64
	SetVolume(v float64)
}

// Adapter is a no-op on non-Linux platforms.
type Adapter struct{}

// New returns a no-op adapter on non-Linux platforms.
func New(_ Controller) (*Adapter, error) {
	return &Adapter{}, nil
}

// Close is a no-op on non-Linux platforms.
func (a *Adapter) Close() error {
	return nil
}
