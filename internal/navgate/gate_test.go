package navgate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wicaksana/showdeck/internal/backend"
	"github.com/wicaksana/showdeck/internal/catalog"
	"github.com/wicaksana/showdeck/internal/session"
	"github.com/wicaksana/showdeck/internal/surface"
)

type recordedController struct {
	calls []string
}

func (c *recordedController) Stop(clearSelection bool) {
	if clearSelection {
		c.calls = append(c.calls, "stop/clear")
	} else {
		c.calls = append(c.calls, "stop")
	}
}

func (c *recordedController) SyncVisible() {
	c.calls = append(c.calls, "sync")
}

type recordedVisuals struct {
	calls []string
}

func (v *recordedVisuals) PauseSlideshowVideos() { v.calls = append(v.calls, "pause-slideshows") }
func (v *recordedVisuals) DiscardPromoEmbed()    { v.calls = append(v.calls, "discard-promo") }
func (v *recordedVisuals) InitSubcategory(id string) {
	v.calls = append(v.calls, "init "+id)
}

func newTestGate() (*Gate, *recordedController, *recordedVisuals, *surface.Registry) {
	ctrl := &recordedController{}
	vis := &recordedVisuals{}
	reg := surface.NewRegistry()
	reg.Register("latestUpload", surface.NewMockSurface())
	reg.Register("remixes", surface.NewMockSurface())
	g := New(ctrl, reg, vis, "music", "latestUpload")
	return g, ctrl, vis, reg
}

func TestEnterCategory_NonMusicStopsEverything(t *testing.T) {
	g, ctrl, vis, _ := newTestGate()
	g.EnterCategory("merch")

	assert.Equal(t, []string{"pause-slideshows", "discard-promo"}, vis.calls)
	assert.Equal(t, []string{"stop/clear"}, ctrl.calls)
	assert.Equal(t, "merch", g.Context().ActiveCategory)
}

func TestEnterCategory_IntoMusicClearsThenShowsDefaultPlaylist(t *testing.T) {
	g, ctrl, _, reg := newTestGate()
	g.EnterCategory("merch")
	ctrl.calls = nil

	g.EnterCategory("music")

	assert.Equal(t, []string{"stop/clear", "sync"}, ctrl.calls)
	assert.Equal(t, "latestUpload", reg.VisibleID())
}

func TestEnterCategory_MusicReentryOnlyReprojects(t *testing.T) {
	g, ctrl, vis, _ := newTestGate()
	g.EnterCategory("music")
	ctrl.calls = nil
	vis.calls = nil

	g.EnterCategory("music")

	assert.Equal(t, []string{"sync"}, ctrl.calls)
	assert.Empty(t, vis.calls, "re-entry must not touch visual players")
}

func TestEnterSubcategory_ClearsAndInitsDefault(t *testing.T) {
	g, ctrl, vis, _ := newTestGate()
	g.EnterCategory("videos")
	ctrl.calls = nil
	vis.calls = nil

	g.EnterSubcategory("behind-the-scenes")

	assert.Equal(t, []string{"pause-slideshows", "discard-promo", "init behind-the-scenes"}, vis.calls)
	assert.Equal(t, []string{"stop/clear"}, ctrl.calls)
	assert.Equal(t, "behind-the-scenes", g.Context().ActiveSubcategory)
}

func TestEnterSubcategory_IgnoredInMusic(t *testing.T) {
	g, ctrl, vis, _ := newTestGate()
	g.EnterCategory("music")
	ctrl.calls = nil
	vis.calls = nil

	g.EnterSubcategory("anything")

	assert.Empty(t, ctrl.calls)
	assert.Empty(t, vis.calls)
	assert.Empty(t, g.Context().ActiveSubcategory)
}

func TestEnterPlaylist_NeverTouchesPlayback(t *testing.T) {
	g, ctrl, _, reg := newTestGate()
	g.EnterCategory("music")
	ctrl.calls = nil

	g.EnterPlaylist("remixes")

	assert.Equal(t, []string{"sync"}, ctrl.calls)
	assert.Equal(t, "remixes", reg.VisibleID())
	assert.Equal(t, "remixes", g.Context().ActivePlaylistID)
}

func TestEnterPlaylist_IgnoredOutsideMusic(t *testing.T) {
	g, ctrl, _, reg := newTestGate()
	g.EnterCategory("merch")
	ctrl.calls = nil

	g.EnterPlaylist("remixes")

	assert.Empty(t, ctrl.calls)
	assert.Empty(t, reg.VisibleID())
	assert.Equal(t, "latestUpload", g.Context().ActivePlaylistID,
		"remembered playlist unchanged outside the music category")
}

func TestPromoSelected_KeepsMusicOnlyWhenMusicActive(t *testing.T) {
	g, ctrl, vis, _ := newTestGate()
	g.EnterCategory("videos")
	ctrl.calls = nil
	vis.calls = nil

	g.PromoSelected()
	assert.Equal(t, []string{"stop/clear"}, ctrl.calls)
	assert.Equal(t, []string{"pause-slideshows", "discard-promo"}, vis.calls)

	g.EnterCategory("music")
	ctrl.calls = nil
	g.PromoSelected()
	assert.Empty(t, ctrl.calls, "an active music track survives a promo click")
}

// The integration tests below drive a real playback session to verify
// that browsing playlists preserves playback while leaving a category
// tears it down completely.

func newIntegrationGate(t *testing.T) (*Gate, *session.Session, *catalog.Catalog, map[string]*surface.Mock) {
	t.Helper()

	cat := &catalog.Catalog{
		Playlists: []catalog.Playlist{
			{
				ID:   "latestUpload",
				Name: "Latest Upload",
				Tracks: []catalog.Track{
					{Source: catalog.LocalFile, Ref: "/audio/track1.mp3", Title: "Track One", Artist: "A", PlaylistID: "latestUpload"},
				},
			},
			{
				ID:   "remixes",
				Name: "Remixes",
				Tracks: []catalog.Track{
					{Source: catalog.LocalFile, Ref: "/audio/remix1.mp3", Title: "Remix One", Artist: "A", PlaylistID: "remixes"},
				},
			},
		},
	}

	callLog := &backend.CallLog{}
	local := backend.NewMock(backend.KindLocalAudio, "local", callLog)
	video := backend.NewMock(backend.KindExternalVideo, "video", callLog)

	reg := surface.NewRegistry()
	surfaces := map[string]*surface.Mock{
		"latestUpload": surface.NewMockSurface(),
		"remixes":      surface.NewMockSurface(),
	}
	for id, m := range surfaces {
		reg.Register(id, m)
	}

	s := session.New(local, video, cat, reg, session.Options{Volume: 0.7, TickInterval: 10 * time.Millisecond})

	g := New(s, reg, &recordedVisuals{}, "music", "latestUpload")
	return g, s, cat, surfaces
}

func TestPlaylistSwitchPreservesPlayback(t *testing.T) {
	g, s, cat, surfaces := newIntegrationGate(t)
	g.EnterCategory("music")

	track := cat.Get("latestUpload").First()
	require.NotNil(t, track)
	require.NoError(t, s.SelectAndPlay(track, true))
	require.True(t, s.IsPlaying())

	g.EnterPlaylist("remixes")

	assert.True(t, s.IsPlaying(), "playlist browsing must not interrupt playback")
	active := s.ActiveTrack()
	require.NotNil(t, active)
	assert.Equal(t, "Track One", active.Title)
	assert.True(t, surfaces["remixes"].Snapshot().Playing,
		"transport state projected onto the newly visible surface")
}

func TestCategorySwitchClearsSession(t *testing.T) {
	g, s, cat, _ := newIntegrationGate(t)
	g.EnterCategory("music")

	track := cat.Get("latestUpload").First()
	require.NotNil(t, track)
	require.NoError(t, s.SelectAndPlay(track, true))
	require.True(t, s.IsPlaying())

	g.EnterCategory("merch")

	assert.False(t, s.IsPlaying())
	assert.Nil(t, s.ActiveTrack())
	assert.Equal(t, backend.KindNone, s.Kind())
}
