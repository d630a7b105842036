package catalog

import (
	"os"
	"path/filepath"

	"github.com/dhowden/tag"
)

// FillLocalTags fills missing Title/Artist on local tracks from the
// file's embedded tags. Files that cannot be opened or parsed are left
// as-is; a missing title falls back to the file name.
func (c *Catalog) FillLocalTags() {
	for pi := range c.Playlists {
		for ti := range c.Playlists[pi].Tracks {
			fillTrackTags(&c.Playlists[pi].Tracks[ti])
		}
	}
}

func fillTrackTags(t *Track) {
	if t.Source != LocalFile {
		return
	}
	if t.Title != "" && t.Artist != "" {
		return
	}

	if m := readFileTags(t.Ref); m != nil {
		if t.Title == "" {
			t.Title = m.Title()
		}
		if t.Artist == "" {
			t.Artist = m.Artist()
		}
	}
	if t.Title == "" {
		t.Title = filepath.Base(t.Ref)
	}
}

func readFileTags(path string) tag.Metadata {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil
	}
	return m
}
