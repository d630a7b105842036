//go:build linux

// Package mediakeys exposes the playback session on the desktop's MPRIS
// D-Bus interface so hardware media keys and desktop widgets control it.
package mediakeys

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

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

// Adapter connects the session to MPRIS over D-Bus.
type Adapter struct {
	server *server.Server
	done   chan struct{}
}

// New creates and starts a new MPRIS adapter.
func New(ctrl Controller) (*Adapter, error) {
	a := &Adapter{
		done: make(chan struct{}),
	}

	rootAdapter := &rootAdapter{}
	playerAdapter := &playerAdapter{ctrl: ctrl}

	a.server = server.NewServer("showdeck", rootAdapter, playerAdapter)

	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	close(a.done)
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Showdeck", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/mp3"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter.
type playerAdapter struct {
	ctrl Controller
}

func (p *playerAdapter) Next() error {
	return nil // No queue semantics; tracks are picked from playlists
}

func (p *playerAdapter) Previous() error {
	return nil
}

func (p *playerAdapter) Pause() error {
	p.ctrl.Pause()
	return nil
}

func (p *playerAdapter) PlayPause() error {
	if p.ctrl.IsPlaying() {
		p.ctrl.Pause()
	} else {
		p.ctrl.Resume()
	}
	return nil
}

func (p *playerAdapter) Stop() error {
	p.ctrl.Stop(false)
	return nil
}

func (p *playerAdapter) Play() error {
	p.ctrl.Resume()
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	p.ctrl.SeekBy(time.Duration(offset) * time.Microsecond)
	return nil
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	_, dur := p.ctrl.Position()
	if dur <= 0 {
		return nil
	}
	target := time.Duration(position) * time.Microsecond
	p.ctrl.SeekToFraction(float64(target) / float64(dur))
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch {
	case p.ctrl.IsPlaying():
		return types.PlaybackStatusPlaying, nil
	case p.ctrl.ActiveTrack() != nil:
		return types.PlaybackStatusPaused, nil
	default:
		return types.PlaybackStatusStopped, nil
	}
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	track := p.ctrl.ActiveTrack()
	if track == nil {
		return types.Metadata{}, nil
	}

	_, dur := p.ctrl.Position()

	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(track.Key())),
		Length:  types.Microseconds(dur.Microseconds()),
		Title:   track.Title,
		Artist:  []string{track.Artist},
	}

	if track.Cover != "" {
		meta.ArtUrl = "file://" + track.Cover
	}

	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return p.ctrl.Volume(), nil
}

func (p *playerAdapter) SetVolume(v float64) error {
	p.ctrl.SetVolume(v)
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	pos, _ := p.ctrl.Position()
	return pos.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.ctrl.ActiveTrack() != nil, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

func formatTrackID(key string) string {
	h := fnv.New64a()
	h.Write([]byte(key))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
