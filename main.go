package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wicaksana/showdeck/internal/app"
	"github.com/wicaksana/showdeck/internal/backend"
	"github.com/wicaksana/showdeck/internal/catalog"
	"github.com/wicaksana/showdeck/internal/config"
	"github.com/wicaksana/showdeck/internal/errmsg"
	"github.com/wicaksana/showdeck/internal/log"
	"github.com/wicaksana/showdeck/internal/mediakeys"
	"github.com/wicaksana/showdeck/internal/mpv"
	"github.com/wicaksana/showdeck/internal/navgate"
	"github.com/wicaksana/showdeck/internal/session"
	"github.com/wicaksana/showdeck/internal/stderr"
	"github.com/wicaksana/showdeck/internal/surface"
)

func main() {
	// Capture fd-2 writes from the audio C libraries before they
	// initialize; raw stderr corrupts the TUI.
	if err := stderr.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "stderr capture unavailable: %v\n", err)
	}
	defer stderr.Stop()

	if err := run(); err != nil {
		stderr.WriteOriginal(fmt.Sprintf("Error: %v\n", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.Log.Dir != "" {
		if err := log.Setup(cfg.Log.Dir, cfg.Log.Level); err != nil {
			fmt.Fprintf(os.Stderr, "file logging unavailable: %v\n", err)
		}
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpCatalogLoad, err))
	}
	resolveMediaRoot(cat, cfg.MediaRoot)
	cat.FillLocalTags()

	local := backend.NewLocal()
	driver := mpv.New(cfg.MpvBinary(), cfg.Mpv.SocketPath)
	video := backend.NewVideo(driver)
	defer func() { _ = driver.Close() }()

	reg := surface.NewRegistry()
	panes := app.BuildPanes(cat, reg)

	pb := cfg.GetPlaybackConfig()
	sess := session.New(local, video, cat, reg, session.Options{
		Volume:       pb.Volume,
		TickInterval: pb.ProgressTick(),
	})
	defer sess.Stop(false)

	visuals := app.NewVisuals()
	defaultPlaylist := ""
	if len(cat.Playlists) > 0 {
		defaultPlaylist = cat.Playlists[0].ID
	}
	gate := navgate.New(sess, reg, visuals, app.CategoryMusic, defaultPlaylist)

	keys, err := mediakeys.New(sess)
	if err != nil {
		log.Warnf("%s", errmsg.Format(errmsg.OpMediaKeys, err))
	} else {
		defer func() { _ = keys.Close() }()
	}

	m := app.New(cfg, sess, gate, reg, panes, visuals)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}

// resolveMediaRoot rebases relative local track paths onto root.
func resolveMediaRoot(cat *catalog.Catalog, root string) {
	if root == "" {
		return
	}
	for pi := range cat.Playlists {
		for ti := range cat.Playlists[pi].Tracks {
			tr := &cat.Playlists[pi].Tracks[ti]
			if tr.Source == catalog.LocalFile && !filepath.IsAbs(tr.Ref) {
				tr.Ref = filepath.Join(root, tr.Ref)
			}
		}
	}
}
