package app

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/wicaksana/showdeck/internal/catalog"
	"github.com/wicaksana/showdeck/internal/surface"
)

var (
	paneTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	activeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	cursorStyle    = lipgloss.NewStyle().Reverse(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Pane renders one playlist and receives the session's projections for
// it. Projections arrive from the session's goroutines; the TUI thread
// reads a snapshot each frame.
type Pane struct {
	mu sync.Mutex

	playlistID string
	title      string
	tracks     []catalog.Track

	cursor int

	meta        surface.Metadata
	fraction    float64
	elapsed     string
	total       string
	playing     bool
	highlighted string
	errMsg      string
	volume      float64
}

// NewPane creates a pane for pl.
func NewPane(pl catalog.Playlist) *Pane {
	return &Pane{
		playlistID: pl.ID,
		title:      pl.Name,
		tracks:     pl.Tracks,
		elapsed:    "0:00",
		total:      "0:00",
	}
}

func (p *Pane) ID() string    { return p.playlistID }
func (p *Pane) Title() string { return p.title }

// MoveCursor moves the keyboard selection, clamped to the track list.
func (p *Pane) MoveCursor(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cursor += delta
	if p.cursor < 0 {
		p.cursor = 0
	}
	if max := len(p.tracks) - 1; p.cursor > max {
		p.cursor = max
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// SelectedTrack returns the track under the cursor, or nil.
func (p *Pane) SelectedTrack() *catalog.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cursor < 0 || p.cursor >= len(p.tracks) {
		return nil
	}
	return &p.tracks[p.cursor]
}

// --- surface.Surface ---

func (p *Pane) ShowMetadata(meta surface.Metadata) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.meta = meta
	p.errMsg = ""
}

func (p *Pane) SetProgress(fraction float64, elapsed, total string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fraction = fraction
	p.elapsed = elapsed
	p.total = total
}

func (p *Pane) SetTransport(playing bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = playing
}

func (p *Pane) HighlightTrack(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.highlighted = key
}

func (p *Pane) ShowError(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errMsg = msg
}

func (p *Pane) SetVolume(level float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = level
}

// View renders the pane at the given inner width.
func (p *Pane) View(width int) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if width < 10 {
		width = 10
	}

	var b strings.Builder
	b.WriteString(paneTitleStyle.Render(p.title))
	b.WriteString("\n\n")

	if len(p.tracks) == 0 {
		b.WriteString(dimStyle.Render("No songs available"))
		b.WriteString("\n")
	}

	for i := range p.tracks {
		tr := &p.tracks[i]
		marker := "  "
		line := fmt.Sprintf("%s · %s", tr.Title, tr.Artist)
		if tr.Key() == p.highlighted {
			marker = "▶ "
			line = activeStyle.Render(line)
		}
		row := marker + line
		if i == p.cursor {
			row = cursorStyle.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if p.errMsg != "" {
		b.WriteString(errStyle.Render(p.errMsg))
		b.WriteString("\n")
	} else {
		b.WriteString(p.metaLineLocked())
		b.WriteString("\n")
	}
	b.WriteString(p.progressLineLocked(width))
	b.WriteString("\n")

	return b.String()
}

func (p *Pane) metaLineLocked() string {
	if p.meta.Title == "" {
		return dimStyle.Render("Nothing selected")
	}
	line := p.meta.Title
	if p.meta.Artist != "" {
		line += " · " + p.meta.Artist
	}
	return line
}

// progressLineLocked draws "⏸ 0:42 [====>    ] 3:07  vol 70%".
func (p *Pane) progressLineLocked(width int) string {
	status := "⏸"
	if p.playing {
		status = "▶"
	}

	vol := fmt.Sprintf("vol %d%%", int(p.volume*100+0.5))
	prefix := fmt.Sprintf("%s %s ", status, p.elapsed)
	suffix := fmt.Sprintf(" %s  %s", p.total, vol)

	barWidth := width - lipgloss.Width(prefix) - lipgloss.Width(suffix) - 2
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(p.fraction * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	bar := "[" + strings.Repeat("=", filled) + strings.Repeat(" ", barWidth-filled) + "]"

	return prefix + bar + suffix
}

// Verify Pane implements Surface at compile time.
var _ surface.Surface = (*Pane)(nil)
