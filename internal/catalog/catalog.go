// Package catalog holds the static track descriptors and playlist
// groupings the coordinator plays from. Descriptors are loaded once at
// startup and never mutated afterwards.
package catalog

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/wicaksana/showdeck/internal/ytid"
)

// SourceKind identifies which backend a track plays on.
type SourceKind int

const (
	LocalFile SourceKind = iota
	ExternalVideo
)

// String returns the source kind name.
func (k SourceKind) String() string {
	switch k {
	case LocalFile:
		return "LocalFile"
	case ExternalVideo:
		return "ExternalVideo"
	default:
		return "Unknown"
	}
}

// Track is one playable item. Ref is either a playable file path or a
// raw external-video reference (bare id or any URL spelling).
type Track struct {
	Source     SourceKind
	Ref        string
	Cover      string
	Title      string
	Artist     string
	PlaylistID string
}

// Key returns the normalized identity used for "is this the same track"
// comparisons: the file path for local tracks, the canonical video id
// for external ones. Unparseable video refs fall back to the raw string
// so a broken entry still compares equal to itself.
func (t Track) Key() string {
	if t.Source == ExternalVideo {
		if id, err := ytid.Normalize(t.Ref); err == nil {
			return id
		}
	}
	return t.Ref
}

// SameAs reports whether two descriptors name the same media source.
// Two different URL spellings of one video compare equal.
func (t Track) SameAs(other Track) bool {
	return t.Source == other.Source && t.Key() == other.Key()
}

// Playlist is one named grouping of tracks.
type Playlist struct {
	ID     string
	Name   string
	Tracks []Track
}

// First returns the playlist's first track, or nil if it is empty.
func (p *Playlist) First() *Track {
	if len(p.Tracks) == 0 {
		return nil
	}
	return &p.Tracks[0]
}

// Catalog is the full set of playlists, in display order.
type Catalog struct {
	Playlists []Playlist
}

// Get returns the playlist with the given id, or nil.
func (c *Catalog) Get(id string) *Playlist {
	for i := range c.Playlists {
		if c.Playlists[i].ID == id {
			return &c.Playlists[i]
		}
	}
	return nil
}

// Find returns the track in playlist pid whose normalized reference
// matches key, or nil.
func (c *Catalog) Find(pid, key string) *Track {
	pl := c.Get(pid)
	if pl == nil {
		return nil
	}
	for i := range pl.Tracks {
		if pl.Tracks[i].Key() == key {
			return &pl.Tracks[i]
		}
	}
	return nil
}

// File format mirrors the config package's koanf conventions.

type fileTrack struct {
	File   string `koanf:"file"`
	Video  string `koanf:"video"`
	Cover  string `koanf:"cover"`
	Title  string `koanf:"title"`
	Artist string `koanf:"artist"`
}

type filePlaylist struct {
	ID     string      `koanf:"id"`
	Name   string      `koanf:"name"`
	Tracks []fileTrack `koanf:"track"`
}

type fileCatalog struct {
	Playlists []filePlaylist `koanf:"playlist"`
}

// Load reads a catalog TOML file. A missing file is an error; an empty
// playlist list is not (the UI shows "No songs available").
func Load(path string) (*Catalog, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}

	var fc fileCatalog
	if err := k.Unmarshal("", &fc); err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", path, err)
	}

	cat := &Catalog{}
	for _, fp := range fc.Playlists {
		if fp.ID == "" {
			return nil, fmt.Errorf("catalog: playlist without id in %s", path)
		}
		pl := Playlist{ID: fp.ID, Name: fp.Name}
		if pl.Name == "" {
			pl.Name = fp.ID
		}
		for _, ft := range fp.Tracks {
			tr, err := ft.toTrack(fp.ID)
			if err != nil {
				return nil, err
			}
			pl.Tracks = append(pl.Tracks, tr)
		}
		cat.Playlists = append(cat.Playlists, pl)
	}
	return cat, nil
}

func (ft fileTrack) toTrack(playlistID string) (Track, error) {
	tr := Track{
		Cover:      ft.Cover,
		Title:      ft.Title,
		Artist:     ft.Artist,
		PlaylistID: playlistID,
	}
	switch {
	case ft.File != "" && ft.Video != "":
		return tr, fmt.Errorf("catalog: track %q has both file and video", ft.Title)
	case ft.File != "":
		tr.Source = LocalFile
		tr.Ref = ft.File
	case ft.Video != "":
		tr.Source = ExternalVideo
		tr.Ref = ft.Video
	default:
		return tr, fmt.Errorf("catalog: track %q has neither file nor video", ft.Title)
	}
	return tr, nil
}
