package app

import (
	"strings"
	"sync"

	"github.com/wicaksana/showdeck/internal/log"
)

// Visuals is the terminal host's stand-in for the slideshow and
// promo players the gate silences on navigation. The TUI embeds no
// video players, so pausing and discarding reduce to clearing the
// rendered extras state.
type Visuals struct {
	mu sync.Mutex

	subcategory string
	promoActive bool
}

// NewVisuals creates the host visuals collaborator.
func NewVisuals() *Visuals {
	return &Visuals{}
}

func (v *Visuals) PauseSlideshowVideos() {
	// Nothing to pause in a terminal host.
}

func (v *Visuals) DiscardPromoEmbed() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.promoActive {
		log.Debugf("app: discarding promo embed")
	}
	v.promoActive = false
}

func (v *Visuals) InitSubcategory(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.subcategory = id
	v.promoActive = false
}

// ActivatePromo marks a promo as selected.
func (v *Visuals) ActivatePromo() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.promoActive = true
}

// View renders the extras category body.
func (v *Visuals) View() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	var b strings.Builder
	b.WriteString("Extras\n\n")
	if v.subcategory != "" {
		b.WriteString("Section: " + v.subcategory + "\n")
	}
	if v.promoActive {
		b.WriteString("Promo playing\n")
	} else {
		b.WriteString(dimStyle.Render("Nothing playing here. Music keeps going in its own tab."))
		b.WriteString("\n")
	}
	return b.String()
}
