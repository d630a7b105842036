package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wicaksana/showdeck/internal/backend"
	"github.com/wicaksana/showdeck/internal/catalog"
	"github.com/wicaksana/showdeck/internal/surface"
)

type fixture struct {
	session *Session
	local   *backend.Mock
	video   *backend.Mock
	log     *backend.CallLog
	cat     *catalog.Catalog
	reg     *surface.Registry
	latest  *surface.Mock
	remixes *surface.Mock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cat := &catalog.Catalog{
		Playlists: []catalog.Playlist{
			{
				ID:   "latestUpload",
				Name: "Latest Upload",
				Tracks: []catalog.Track{
					{Source: catalog.LocalFile, Ref: "/audio/track1.mp3", Title: "Track One", Artist: "Artist A", PlaylistID: "latestUpload"},
					{Source: catalog.ExternalVideo, Ref: "abc12345678", Title: "Track Two", Artist: "Artist B", PlaylistID: "latestUpload"},
				},
			},
			{
				ID:   "remixes",
				Name: "Remixes",
				Tracks: []catalog.Track{
					{Source: catalog.LocalFile, Ref: "/audio/remix1.mp3", Title: "Remix One", Artist: "Artist C", PlaylistID: "remixes"},
				},
			},
			{ID: "unreleased", Name: "Unreleased"},
		},
	}

	callLog := &backend.CallLog{}
	local := backend.NewMock(backend.KindLocalAudio, "local", callLog)
	video := backend.NewMock(backend.KindExternalVideo, "video", callLog)

	reg := surface.NewRegistry()
	latest := surface.NewMockSurface()
	remixes := surface.NewMockSurface()
	reg.Register("latestUpload", latest)
	reg.Register("remixes", remixes)
	reg.Register("unreleased", surface.NewMockSurface())
	reg.SetVisible("latestUpload")

	s := New(local, video, cat, reg, Options{Volume: 0.7, TickInterval: 10 * time.Millisecond})

	return &fixture{
		session: s,
		local:   local,
		video:   video,
		log:     callLog,
		cat:     cat,
		reg:     reg,
		latest:  latest,
		remixes: remixes,
	}
}

func (f *fixture) track(pid string, i int) *catalog.Track {
	return &f.cat.Get(pid).Tracks[i]
}

func TestSelectAndPlay_LocalTrack(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.session.SelectAndPlay(f.track("latestUpload", 0), true))

	assert.Equal(t, backend.KindLocalAudio, f.session.Kind())
	assert.True(t, f.session.IsPlaying())
	assert.Equal(t, "/audio/track1.mp3", f.local.Loaded())

	snap := f.latest.Snapshot()
	assert.Equal(t, "Track One", snap.Meta.Title)
	assert.Equal(t, "Artist A", snap.Meta.Artist)
	assert.True(t, snap.Playing, "pause control visible on the active surface")
	assert.Equal(t, "/audio/track1.mp3", snap.Highlighted)
}

// Mutual exclusion: switching backends never leaves both reporting a
// playing state, and the old backend is silenced before the new one is
// told to start.
func TestSelectAndPlay_BackendSwitchOrdering(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.session.SelectAndPlay(f.track("latestUpload", 0), true))
	require.True(t, f.local.IsPlaying())

	require.NoError(t, f.session.SelectAndPlay(f.track("latestUpload", 1), true))

	assert.False(t, f.local.IsPlaying())
	assert.True(t, f.video.IsPlaying())

	// Ordering, not just eventual state: local.pause precedes any
	// video command.
	calls := f.log.Calls()
	pauseAt, loadAt := -1, -1
	for i, c := range calls {
		switch c {
		case "local.pause":
			if pauseAt < 0 {
				pauseAt = i
			}
		case "video.load abc12345678":
			loadAt = i
		}
	}
	require.GreaterOrEqual(t, pauseAt, 0, "local backend never paused: %v", calls)
	require.GreaterOrEqual(t, loadAt, 0, "video backend never loaded: %v", calls)
	assert.Less(t, pauseAt, loadAt, "local must pause before video load: %v", calls)
}

func TestSelectAndPlay_NeverBothPlaying(t *testing.T) {
	f := newFixture(t)

	seq := []struct {
		pid string
		idx int
	}{
		{"latestUpload", 0},
		{"latestUpload", 1},
		{"remixes", 0},
		{"latestUpload", 1},
		{"latestUpload", 0},
	}
	for _, step := range seq {
		require.NoError(t, f.session.SelectAndPlay(f.track(step.pid, step.idx), true))
		both := f.local.IsPlaying() && f.video.IsPlaying()
		assert.False(t, both, "both backends playing after selecting %s[%d]", step.pid, step.idx)
	}
}

func TestSelectAndPlay_SameTrackResumes(t *testing.T) {
	f := newFixture(t)
	tr := f.track("latestUpload", 0)

	require.NoError(t, f.session.SelectAndPlay(tr, true))
	f.session.Pause()
	require.False(t, f.session.IsPlaying())
	loadsBefore := len(f.log.Calls())

	require.NoError(t, f.session.SelectAndPlay(tr, true))

	assert.True(t, f.session.IsPlaying())
	assert.Equal(t, "/audio/track1.mp3", f.local.Loaded(), "no reload on re-select")
	for _, c := range f.log.Calls()[loadsBefore:] {
		assert.NotContains(t, c, "load", "re-selecting the active track must not reload: %v", c)
	}
}

func TestSelectAndPlay_CueWithoutAutoplay(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.session.SelectAndPlay(f.track("latestUpload", 0), false))

	assert.False(t, f.session.IsPlaying())
	assert.Equal(t, "/audio/track1.mp3", f.local.Loaded())
	assert.False(t, f.latest.Snapshot().Playing)
}

func TestSelectAndPlay_RejectedPlayForcesNotPlaying(t *testing.T) {
	f := newFixture(t)
	f.local.SetPlayError(errors.New("autoplay blocked"))

	require.NoError(t, f.session.SelectAndPlay(f.track("latestUpload", 0), true))

	assert.False(t, f.session.IsPlaying())
	assert.False(t, f.latest.Snapshot().Playing, "affordance must match reality after rejection")
	assert.NotNil(t, f.session.ActiveTrack(), "selection survives a rejected play")
}

func TestSelectAndPlay_InvalidVideoID(t *testing.T) {
	f := newFixture(t)
	bad := &catalog.Track{Source: catalog.ExternalVideo, Ref: "nope", PlaylistID: "latestUpload"}

	require.NoError(t, f.session.SelectAndPlay(f.track("latestUpload", 0), true))
	err := f.session.SelectAndPlay(bad, true)

	assert.ErrorIs(t, err, backend.ErrInvalidVideoID)
	assert.Equal(t, "Invalid Video ID", f.latest.Snapshot().ErrorMsg)
	// Global play state untouched: the previous track keeps playing.
	assert.True(t, f.session.IsPlaying())
	assert.Equal(t, "/audio/track1.mp3", f.session.ActiveTrack().Ref)
}

func TestStop_ClearSelectionResetsToDefaults(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.SelectAndPlay(f.track("latestUpload", 0), true))

	f.session.Stop(true)

	assert.Equal(t, backend.KindNone, f.session.Kind())
	assert.Nil(t, f.session.ActiveTrack())
	assert.False(t, f.session.IsPlaying())

	snap := f.latest.Snapshot()
	assert.Equal(t, "Track One", snap.Meta.Title, "default display is the first track")
	assert.Empty(t, snap.Highlighted)
	assert.False(t, snap.Playing)

	// An empty playlist falls back to the no-songs message.
	empty := f.reg.Get("unreleased").(*surface.Mock).Snapshot()
	assert.Equal(t, "No songs available", empty.Meta.Title)
}

func TestStop_PreserveSelectionJustPauses(t *testing.T) {
	f := newFixture(t)
	tr := f.track("latestUpload", 0)
	require.NoError(t, f.session.SelectAndPlay(tr, true))

	f.session.Stop(false)

	assert.False(t, f.session.IsPlaying())
	assert.Equal(t, tr, f.session.ActiveTrack())
	assert.Equal(t, backend.KindLocalAudio, f.session.Kind())
}

// A keep-selection stop of a video track must leave it resumable: the
// video backend is paused, not stopped, so the loaded id survives.
func TestStop_PreserveSelectionKeepsVideoResumable(t *testing.T) {
	f := newFixture(t)
	tr := f.track("latestUpload", 1)
	require.NoError(t, f.session.SelectAndPlay(tr, true))

	f.session.Stop(false)

	require.False(t, f.session.IsPlaying())
	assert.Equal(t, "abc12345678", f.video.Loaded(), "video must stay loaded")

	f.session.Resume()
	assert.True(t, f.session.IsPlaying(), "resume after keep-selection stop")

	// Re-selecting the stopped track resumes rather than reloading.
	f.session.Pause()
	before := len(f.log.Calls())
	require.NoError(t, f.session.SelectAndPlay(tr, true))
	assert.True(t, f.session.IsPlaying())
	for _, c := range f.log.Calls()[before:] {
		assert.NotContains(t, c, "load", "re-select after stop must not reload: %v", c)
	}
}

func TestResume_PausedTrack(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.SelectAndPlay(f.track("latestUpload", 0), true))
	f.session.Pause()
	require.False(t, f.session.IsPlaying())

	f.session.Resume()

	assert.True(t, f.session.IsPlaying())
}

func TestResume_NoBackendIsNoop(t *testing.T) {
	f := newFixture(t)
	f.session.Resume()
	assert.False(t, f.session.IsPlaying())
	assert.Empty(t, f.log.Calls())
}

func TestSetVolume_MirrorsEverywhere(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.SelectAndPlay(f.track("latestUpload", 0), true))

	f.session.SetVolume(0.4)

	assert.InDelta(t, 0.4, f.session.Volume(), 1e-9)
	assert.InDelta(t, 0.4, f.local.Level(), 1e-9, "active backend volume")
	assert.InDelta(t, 0.4, f.latest.Snapshot().Volume, 1e-9)
	assert.InDelta(t, 0.4, f.remixes.Snapshot().Volume, 1e-9, "every volume surface mirrors")
}

func TestSetVolume_Clamps(t *testing.T) {
	f := newFixture(t)

	f.session.SetVolume(1.7)
	assert.InDelta(t, 1.0, f.session.Volume(), 1e-9)

	f.session.SetVolume(-0.2)
	assert.InDelta(t, 0.0, f.session.Volume(), 1e-9)
}

func TestToggleMute_RoundTrip(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.SelectAndPlay(f.track("latestUpload", 0), true))

	f.session.SetVolume(0.55)

	f.session.ToggleMute()
	assert.InDelta(t, 0.0, f.session.Volume(), 1e-9)
	assert.InDelta(t, 0.0, f.latest.Snapshot().Volume, 1e-9)

	f.session.ToggleMute()
	assert.InDelta(t, 0.55, f.session.Volume(), 1e-9, "exact pre-mute volume restored")
	assert.InDelta(t, 0.55, f.local.Level(), 1e-9)
}

func TestToggleMute_FromZeroRestoresLastAudible(t *testing.T) {
	f := newFixture(t)

	f.session.SetVolume(0)
	f.session.ToggleMute()

	// Setting zero never feeds the restore level, so unmuting comes
	// back at the last audible volume, here the initial default.
	assert.InDelta(t, 0.7, f.session.Volume(), 1e-9)
}

func TestSeekToFraction(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.SelectAndPlay(f.track("latestUpload", 0), true))
	f.local.SetDuration(200 * time.Second)

	f.session.SeekToFraction(0.5)

	assert.Equal(t, 100*time.Second, f.local.CurrentTime())
}

func TestSeekToFraction_UnknownDurationIsNoop(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.SelectAndPlay(f.track("latestUpload", 0), true))
	f.local.SetDuration(0)
	f.local.SetPosition(5 * time.Second)

	f.session.SeekToFraction(0.5)

	assert.Equal(t, 5*time.Second, f.local.CurrentTime(), "seek with unknown duration must not move")
}

func TestSeekBy_Clamps(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.SelectAndPlay(f.track("latestUpload", 0), true))
	f.local.SetDuration(60 * time.Second)
	f.local.SetPosition(2 * time.Second)

	f.session.SeekBy(-5 * time.Second)
	assert.Equal(t, time.Duration(0), f.local.CurrentTime())

	f.local.SetPosition(58 * time.Second)
	f.session.SeekBy(5 * time.Second)
	assert.Equal(t, 60*time.Second, f.local.CurrentTime())
}

func TestEnded_ResetsVisibleProgress(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.SelectAndPlay(f.track("latestUpload", 0), true))
	f.local.SetDuration(100 * time.Second)
	f.local.SetPosition(100 * time.Second)

	f.local.SimulateEnded()

	assert.False(t, f.session.IsPlaying())
	snap := f.latest.Snapshot()
	assert.Zero(t, snap.Fraction_)
	assert.Equal(t, "0:00", snap.Elapsed)
	assert.False(t, snap.Playing)
	// Selection survives so play restarts the same track.
	assert.NotNil(t, f.session.ActiveTrack())
}

func TestBackendRuntimeError_KeepsSelection(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.SelectAndPlay(f.track("latestUpload", 1), true))

	f.video.SimulateError(errors.New("video restricted"))

	assert.False(t, f.session.IsPlaying())
	assert.Equal(t, "Error loading track", f.latest.Snapshot().ErrorMsg)
	assert.NotNil(t, f.session.ActiveTrack(), "selection kept for retry")
}

func TestStaleConfirmation_Ignored(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.SelectAndPlay(f.track("latestUpload", 1), true))
	require.NoError(t, f.session.SelectAndPlay(f.track("latestUpload", 0), true))

	// A late ended event from the superseded video backend must not
	// disturb the local track now playing.
	f.video.SimulateEnded()

	assert.True(t, f.session.IsPlaying())
	assert.Equal(t, backend.KindLocalAudio, f.session.Kind())
}

func TestSyncVisible_ProjectsOntoNewSurface(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.SelectAndPlay(f.track("latestUpload", 0), true))
	f.local.SetDuration(100 * time.Second)
	f.local.SetPosition(40 * time.Second)

	f.reg.SetVisible("remixes")
	f.session.SyncVisible()

	snap := f.remixes.Snapshot()
	assert.Equal(t, "Track One", snap.Meta.Title)
	assert.True(t, snap.Playing)
	assert.InDelta(t, 0.4, snap.Fraction_, 1e-9)
	assert.Equal(t, "0:40", snap.Elapsed)
	assert.Equal(t, "1:40", snap.Total)
	assert.True(t, f.session.IsPlaying(), "projection never touches playback")
}

func TestSyncVisible_NoTrackShowsDefault(t *testing.T) {
	f := newFixture(t)

	f.reg.SetVisible("remixes")
	f.session.SyncVisible()

	assert.Equal(t, "Remix One", f.remixes.Snapshot().Meta.Title)
}
