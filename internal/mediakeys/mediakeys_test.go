//go:build linux

package mediakeys

import (
	"testing"
	"time"

	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wicaksana/showdeck/internal/catalog"
)

type fakeController struct {
	playing bool
	track   *catalog.Track
	pos     time.Duration
	dur     time.Duration
	volume  float64

	calls     []string
	fractions []float64
	deltas    []time.Duration
}

func (f *fakeController) IsPlaying() bool                          { return f.playing }
func (f *fakeController) ActiveTrack() *catalog.Track              { return f.track }
func (f *fakeController) Pause()                                   { f.calls = append(f.calls, "pause") }
func (f *fakeController) Resume()                                  { f.calls = append(f.calls, "resume") }
func (f *fakeController) Stop(bool)                                { f.calls = append(f.calls, "stop") }
func (f *fakeController) SeekBy(d time.Duration)                   { f.deltas = append(f.deltas, d) }
func (f *fakeController) SeekToFraction(fr float64)                { f.fractions = append(f.fractions, fr) }
func (f *fakeController) Position() (time.Duration, time.Duration) { return f.pos, f.dur }
func (f *fakeController) Volume() float64                          { return f.volume }
func (f *fakeController) SetVolume(v float64)                      { f.volume = v }

func TestPlayPause(t *testing.T) {
	ctrl := &fakeController{playing: true}
	p := &playerAdapter{ctrl: ctrl}

	require.NoError(t, p.PlayPause())
	assert.Equal(t, []string{"pause"}, ctrl.calls)

	ctrl.playing = false
	require.NoError(t, p.PlayPause())
	assert.Equal(t, []string{"pause", "resume"}, ctrl.calls)
}

func TestPlaybackStatus(t *testing.T) {
	ctrl := &fakeController{}
	p := &playerAdapter{ctrl: ctrl}

	status, err := p.PlaybackStatus()
	require.NoError(t, err)
	assert.Equal(t, types.PlaybackStatusStopped, status)

	ctrl.track = &catalog.Track{Source: catalog.LocalFile, Ref: "/audio/track1.mp3"}
	status, err = p.PlaybackStatus()
	require.NoError(t, err)
	assert.Equal(t, types.PlaybackStatusPaused, status)

	ctrl.playing = true
	status, err = p.PlaybackStatus()
	require.NoError(t, err)
	assert.Equal(t, types.PlaybackStatusPlaying, status)
}

func TestSetPosition(t *testing.T) {
	ctrl := &fakeController{pos: 30 * time.Second, dur: 2 * time.Minute}
	p := &playerAdapter{ctrl: ctrl}

	require.NoError(t, p.SetPosition("", types.Microseconds((60 * time.Second).Microseconds())))
	require.Len(t, ctrl.fractions, 1)
	assert.InDelta(t, 0.5, ctrl.fractions[0], 1e-9)

	// Unknown duration is a no-op.
	ctrl.dur = 0
	require.NoError(t, p.SetPosition("", 1000))
	assert.Len(t, ctrl.fractions, 1)
}

func TestMetadata(t *testing.T) {
	ctrl := &fakeController{
		track: &catalog.Track{
			Source: catalog.LocalFile,
			Ref:    "/audio/track1.mp3",
			Title:  "Track One",
			Artist: "Some Artist",
			Cover:  "/covers/track1.jpg",
		},
		dur: 3 * time.Minute,
	}
	p := &playerAdapter{ctrl: ctrl}

	meta, err := p.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "Track One", meta.Title)
	assert.Equal(t, []string{"Some Artist"}, meta.Artist)
	assert.Equal(t, "file:///covers/track1.jpg", meta.ArtUrl)
	assert.Equal(t, types.Microseconds((3 * time.Minute).Microseconds()), meta.Length)

	ctrl.track = nil
	meta, err = p.Metadata()
	require.NoError(t, err)
	assert.Empty(t, meta.Title)
}
