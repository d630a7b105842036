package surface

import "sync"

// Mock is a recording surface for tests.
type Mock struct {
	mu sync.Mutex

	Meta        Metadata
	Fraction_   float64
	Elapsed     string
	Total       string
	Playing     bool
	Highlighted string
	ErrorMsg    string
	Volume      float64

	ProgressCalls int
	MetaCalls     int
}

// NewMockSurface creates a recording surface.
func NewMockSurface() *Mock {
	return &Mock{}
}

func (m *Mock) ShowMetadata(meta Metadata) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Meta = meta
	m.ErrorMsg = ""
	m.MetaCalls++
}

func (m *Mock) SetProgress(fraction float64, elapsed, total string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fraction_ = fraction
	m.Elapsed = elapsed
	m.Total = total
	m.ProgressCalls++
}

func (m *Mock) SetTransport(playing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Playing = playing
}

func (m *Mock) HighlightTrack(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Highlighted = key
}

func (m *Mock) ShowError(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ErrorMsg = msg
}

func (m *Mock) SetVolume(level float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Volume = level
}

// Snapshot returns a copy of the recorded state under lock.
func (m *Mock) Snapshot() Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Mock{
		Meta:          m.Meta,
		Fraction_:     m.Fraction_,
		Elapsed:       m.Elapsed,
		Total:         m.Total,
		Playing:       m.Playing,
		Highlighted:   m.Highlighted,
		ErrorMsg:      m.ErrorMsg,
		Volume:        m.Volume,
		ProgressCalls: m.ProgressCalls,
		MetaCalls:     m.MetaCalls,
	}
}

// Verify Mock implements Surface at compile time.
var _ Surface = (*Mock)(nil)
