// Package app hosts the playback coordinator in a terminal UI: playlist
// panes are the visible surfaces, key presses drive the session and the
// navigation gate.
package app

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/wicaksana/showdeck/internal/catalog"
	"github.com/wicaksana/showdeck/internal/config"
	"github.com/wicaksana/showdeck/internal/errmsg"
	"github.com/wicaksana/showdeck/internal/log"
	"github.com/wicaksana/showdeck/internal/navgate"
	"github.com/wicaksana/showdeck/internal/notify"
	"github.com/wicaksana/showdeck/internal/session"
	"github.com/wicaksana/showdeck/internal/stderr"
	"github.com/wicaksana/showdeck/internal/surface"
)

// CategoryMusic is the one category whose navigation never interrupts
// playback.
const (
	CategoryMusic  = "music"
	CategoryExtras = "extras"
)

const volumeStep = 0.05

// extrasSections are the sub-sections of the extras category, cycled
// with tab. Selecting inside the promos section plays a promo.
var extrasSections = []string{"slideshow", "promos"}

var (
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("240"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("205"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type tickMsg time.Time

type stderrMsg string

// Model is the root application model.
type Model struct {
	cfg  *config.Config
	sess *session.Session
	gate *navgate.Gate
	reg  *surface.Registry

	panes      []*Pane
	paneIdx    int
	sectionIdx int

	category  string
	visuals   *Visuals
	seekStep  time.Duration
	startedAt time.Time

	notifier notify.Notifier

	width  int
	height int

	footerMsg string
}

// New assembles the model over an already-wired session and gate. panes
// must be registered in reg under their playlist ids.
func New(cfg *config.Config, sess *session.Session, gate *navgate.Gate, reg *surface.Registry, panes []*Pane, visuals *Visuals) Model {
	m := Model{
		cfg:       cfg,
		sess:      sess,
		gate:      gate,
		reg:       reg,
		panes:     panes,
		category:  CategoryMusic,
		visuals:   visuals,
		seekStep:  cfg.GetPlaybackConfig().SeekStep(),
		startedAt: time.Now(),
	}
	if n, err := notify.New(); err == nil {
		m.notifier = n
	}
	gate.EnterCategory(CategoryMusic)
	m.paneIdx = m.indexOf(gate.Context().ActivePlaylistID)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), listenStderr())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		return m, tickCmd()

	case stderrMsg:
		m.footerMsg = string(msg)
		return m, listenStderr()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.sess.Stop(false)
		if m.notifier != nil {
			_ = m.notifier.Close()
		}
		return m, tea.Quit

	case "1":
		m.category = CategoryMusic
		m.gate.EnterCategory(CategoryMusic)
		m.paneIdx = m.indexOf(m.gate.Context().ActivePlaylistID)

	case "2":
		m.category = CategoryExtras
		m.gate.EnterCategory(CategoryExtras)
		m.sectionIdx = 0
		m.gate.EnterSubcategory(extrasSections[0])

	case "tab", "l":
		if m.category == CategoryExtras {
			m.switchSection(1)
		} else {
			m.switchPane(1)
		}

	case "shift+tab", "h":
		if m.category == CategoryExtras {
			m.switchSection(-1)
		} else {
			m.switchPane(-1)
		}

	case "right":
		m.sess.SeekBy(m.seekStep)

	case "left":
		m.sess.SeekBy(-m.seekStep)

	case "up", "k":
		if p := m.currentPane(); p != nil {
			p.MoveCursor(-1)
		}

	case "down", "j":
		if p := m.currentPane(); p != nil {
			p.MoveCursor(1)
		}

	case "enter":
		if m.category != CategoryMusic {
			// A promo click silences everything else, then starts the
			// promo embed.
			if extrasSections[m.sectionIdx] == "promos" {
				m.gate.PromoSelected()
				m.visuals.ActivatePromo()
			}
			return m, nil
		}
		p := m.currentPane()
		if p == nil {
			return m, nil
		}
		if tr := p.SelectedTrack(); tr != nil {
			if err := m.sess.SelectAndPlay(tr, true); err != nil {
				log.Warnf("app: select %q: %v", tr.Title, err)
				m.footerMsg = errmsg.FormatWith(errmsg.OpPlaybackStart, tr.Title, err)
			} else if m.notifier != nil {
				if err := m.notifier.TrackStarted(tr); err != nil {
					log.Debugf("app: notify: %v", err)
				}
			}
		}

	case " ":
		// Toggle resumes the active selection; it never re-selects.
		if m.sess.IsPlaying() {
			m.sess.Pause()
		} else if m.sess.ActiveTrack() != nil {
			m.sess.Resume()
		}

	case "s":
		m.sess.Stop(false)

	case "+", "=":
		m.sess.SetVolume(m.sess.Volume() + volumeStep)

	case "-":
		m.sess.SetVolume(m.sess.Volume() - volumeStep)

	case "m":
		m.sess.ToggleMute()
	}

	return m, nil
}

// switchPane moves playlist tabs through the gate so playback is only
// re-projected, never interrupted.
func (m *Model) switchPane(delta int) {
	if m.category != CategoryMusic || len(m.panes) == 0 {
		return
	}
	m.paneIdx = (m.paneIdx + delta + len(m.panes)) % len(m.panes)
	m.gate.EnterPlaylist(m.panes[m.paneIdx].ID())
}

// switchSection cycles extras sub-sections through the gate, which
// clears any leftover playback on each switch.
func (m *Model) switchSection(delta int) {
	m.sectionIdx = (m.sectionIdx + delta + len(extrasSections)) % len(extrasSections)
	m.gate.EnterSubcategory(extrasSections[m.sectionIdx])
}

func (m Model) currentPane() *Pane {
	if m.category != CategoryMusic || m.paneIdx < 0 || m.paneIdx >= len(m.panes) {
		return nil
	}
	return m.panes[m.paneIdx]
}

func (m Model) indexOf(playlistID string) int {
	for i, p := range m.panes {
		if p.ID() == playlistID {
			return i
		}
	}
	return 0
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.tabsView())
	b.WriteString("\n\n")

	switch m.category {
	case CategoryExtras:
		b.WriteString(m.visuals.View())
	default:
		if p := m.currentPane(); p != nil {
			b.WriteString(p.View(m.width))
		}
	}

	b.WriteString("\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) tabsView() string {
	var tabs []string

	for i, p := range m.panes {
		style := tabStyle
		if m.category == CategoryMusic && i == m.paneIdx {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(p.Title()))
	}

	style := tabStyle
	if m.category == CategoryExtras {
		style = activeTabStyle
	}
	tabs = append(tabs, style.Render("Extras"))

	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) footerView() string {
	if m.footerMsg != "" {
		return footerStyle.Render(m.footerMsg)
	}
	help := "enter play · space pause · ←/→ seek · +/- vol · m mute · tab playlist · q quit"
	return footerStyle.Render(help + " · up " + humanize.Time(m.startedAt))
}

func tickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// listenStderr forwards captured C-library stderr lines to the footer.
func listenStderr() tea.Cmd {
	return func() tea.Msg {
		line, ok := <-stderr.Messages
		if !ok {
			return nil
		}
		return stderrMsg(line)
	}
}

// BuildPanes creates and registers a pane per playlist.
func BuildPanes(cat *catalog.Catalog, reg *surface.Registry) []*Pane {
	panes := make([]*Pane, 0, len(cat.Playlists))
	for _, pl := range cat.Playlists {
		p := NewPane(pl)
		reg.Register(pl.ID, p)
		panes = append(panes, p)
	}
	return panes
}
