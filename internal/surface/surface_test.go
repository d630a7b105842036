package surface

import (
	"testing"
	"time"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{7 * time.Second, "0:07"},
		{65 * time.Second, "1:05"},
		{10 * time.Minute, "10:00"},
		{-3 * time.Second, "0:00"},
		{3599 * time.Second, "59:59"},
		{3600 * time.Second, "60:00"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.d); got != tt.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFraction(t *testing.T) {
	tests := []struct {
		name string
		pos  time.Duration
		dur  time.Duration
		want float64
	}{
		{"half", 30 * time.Second, time.Minute, 0.5},
		{"zero duration", 30 * time.Second, 0, 0},
		{"negative duration", 30 * time.Second, -time.Second, 0},
		{"past end clamps", 90 * time.Second, time.Minute, 1},
		{"negative position clamps", -time.Second, time.Minute, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fraction(tt.pos, tt.dur); got != tt.want {
				t.Errorf("Fraction(%v, %v) = %v, want %v", tt.pos, tt.dur, got, tt.want)
			}
		})
	}
}

func TestRegistry_VisibleResolution(t *testing.T) {
	r := NewRegistry()
	a := NewMockSurface()
	b := NewMockSurface()
	r.Register("latestUpload", a)
	r.Register("remixes", b)

	r.SetVisible("latestUpload")
	s, id := r.Visible()
	if s != a || id != "latestUpload" {
		t.Fatalf("Visible() = %v, %q; want latestUpload surface", s, id)
	}

	// Switching visibility re-resolves to the other surface.
	r.SetVisible("remixes")
	s, id = r.Visible()
	if s != b || id != "remixes" {
		t.Fatalf("Visible() = %v, %q; want remixes surface", s, id)
	}
}

func TestRegistry_MissingSurfaceIsNoop(t *testing.T) {
	r := NewRegistry()
	r.SetVisible("ghost")

	if s, _ := r.Visible(); s != nil {
		t.Errorf("Visible() for unregistered id = %v, want nil", s)
	}
	if s := r.Get("ghost"); s != nil {
		t.Errorf("Get() for unregistered id = %v, want nil", s)
	}
}

func TestRegistry_ForEach(t *testing.T) {
	r := NewRegistry()
	r.Register("a", NewMockSurface())
	r.Register("b", NewMockSurface())

	seen := map[string]bool{}
	r.ForEach(func(id string, s Surface) {
		seen[id] = s != nil
	})
	if !seen["a"] || !seen["b"] {
		t.Errorf("ForEach visited %v, want both a and b", seen)
	}
}
