// Package navgate decides the fate of the playback session on every
// navigation event: torn down, paused-but-preserved, or left untouched.
package navgate

import (
	"sync"

	"github.com/wicaksana/showdeck/internal/log"
	"github.com/wicaksana/showdeck/internal/surface"
)

// Context tracks which section of the site is visible. Only the gate
// mutates it.
type Context struct {
	ActiveCategory    string
	ActiveSubcategory string
	ActivePlaylistID  string
}

// Controller is the slice of the playback session the gate drives.
type Controller interface {
	Stop(clearSelection bool)
	SyncVisible()
}

// Visuals is the host hook for the non-session media the gate also has
// to silence: slideshow videos and the promo embed.
type Visuals interface {
	// PauseSlideshowVideos pauses every playing slideshow video.
	PauseSlideshowVideos()
	// DiscardPromoEmbed clears the promo player's embedded source.
	DiscardPromoEmbed()
	// InitSubcategory shows a sub-category's default content: the
	// slideshow's current slide or the promo section's first thumbnail.
	InitSubcategory(id string)
}

// Gate applies the navigation rules in order.
type Gate struct {
	mu sync.Mutex

	session Controller
	reg     *surface.Registry
	visuals Visuals

	musicCategory   string
	defaultPlaylist string
	ctx             Context
}

// New creates a gate. musicCategory names the one category whose
// navigation must never interrupt a playing track; defaultPlaylist is
// the playlist shown on first arrival into it.
func New(session Controller, reg *surface.Registry, visuals Visuals, musicCategory, defaultPlaylist string) *Gate {
	return &Gate{
		session:         session,
		reg:             reg,
		visuals:         visuals,
		musicCategory:   musicCategory,
		defaultPlaylist: defaultPlaylist,
		ctx:             Context{ActivePlaylistID: defaultPlaylist},
	}
}

// Context returns a copy of the navigation context.
func (g *Gate) Context() Context {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ctx
}

// EnterCategory handles a top-level category switch. Any cross-category
// move stops all media and clears the session; re-entering the music
// category while already there only re-projects.
func (g *Gate) EnterCategory(id string) {
	g.mu.Lock()
	sameMusic := id == g.musicCategory && g.ctx.ActiveCategory == g.musicCategory
	g.ctx.ActiveCategory = id
	g.ctx.ActiveSubcategory = ""
	intoMusic := id == g.musicCategory
	playlist := g.ctx.ActivePlaylistID
	g.mu.Unlock()

	log.Debugf("navgate: enter category %q", id)

	if sameMusic {
		g.session.SyncVisible()
		return
	}

	g.stopAllMedia(false)

	if intoMusic {
		// A fresh arrival starts from a clean slate on the remembered
		// playlist.
		g.reg.SetVisible(playlist)
		g.session.SyncVisible()
	} else {
		g.reg.SetVisible("")
	}
}

// EnterSubcategory handles a sub-category switch within a non-music
// category: all media stops, the session clears, and the sub-category's
// default content is initialized. The music category has no
// sub-categories; the call is ignored there.
func (g *Gate) EnterSubcategory(id string) {
	g.mu.Lock()
	inMusic := g.ctx.ActiveCategory == g.musicCategory
	if !inMusic {
		g.ctx.ActiveSubcategory = id
	}
	g.mu.Unlock()

	if inMusic {
		return
	}

	log.Debugf("navgate: enter subcategory %q", id)
	g.stopAllMedia(true)
	g.visuals.InitSubcategory(id)
}

// EnterPlaylist switches which playlist is visible inside the music
// category. The playback session is not touched: its state is only
// re-projected onto the newly visible surface, so browsing playlists
// never interrupts a playing track.
func (g *Gate) EnterPlaylist(id string) {
	g.mu.Lock()
	inMusic := g.ctx.ActiveCategory == g.musicCategory
	if inMusic {
		g.ctx.ActivePlaylistID = id
	}
	g.mu.Unlock()

	if !inMusic {
		return
	}

	log.Debugf("navgate: enter playlist %q", id)
	g.reg.SetVisible(id)
	g.session.SyncVisible()
}

// PromoSelected handles a video-promo thumbnail click: all media stops
// except an already-playing music track when the active category is
// music. Promos only exist in non-music categories, but the stop is
// defensive about it.
func (g *Gate) PromoSelected() {
	g.stopAllMedia(true)
}

// stopAllMedia pauses the visual players and discards the promo embed,
// then clears the music session unless it should be kept alive because
// the music category is the active one.
func (g *Gate) stopAllMedia(keepMusicIfActive bool) {
	g.mu.Lock()
	inMusic := g.ctx.ActiveCategory == g.musicCategory
	g.mu.Unlock()

	g.visuals.PauseSlideshowVideos()
	g.visuals.DiscardPromoEmbed()

	if keepMusicIfActive && inMusic {
		return
	}
	g.session.Stop(true)
}
