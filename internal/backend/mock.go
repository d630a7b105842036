package backend

import (
	"sync"
	"time"
)

// CallLog records backend commands across adapters, in order. Sharing
// one log between two mocks lets tests assert cross-backend ordering,
// not just eventual state.
type CallLog struct {
	mu    sync.Mutex
	calls []string
}

func (c *CallLog) add(call string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.calls = append(c.calls, call)
	c.mu.Unlock()
}

// Calls returns a copy of the recorded calls.
func (c *CallLog) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.calls))
	copy(out, c.calls)
	return out
}

// Mock is a test double for a backend adapter. Play and pause succeed
// synchronously and confirm through the registered callbacks, the way
// the real adapters do.
type Mock struct {
	kind     Kind
	name     string
	log      *CallLog
	loaded   string
	playing  bool
	position time.Duration
	duration time.Duration
	level    float64
	loadErr  error
	playErr  error
	cb       Callbacks
}

// NewMock creates a mock of the given kind. name prefixes entries in
// the shared call log.
func NewMock(kind Kind, name string, log *CallLog) *Mock {
	return &Mock{kind: kind, name: name, log: log, level: 1.0}
}

func (m *Mock) Kind() Kind { return m.kind }

func (m *Mock) SetCallbacks(cb Callbacks) { m.cb = cb }

func (m *Mock) Load(ref string) error {
	m.log.add(m.name + ".load " + ref)
	if m.loadErr != nil {
		return m.loadErr
	}
	if ref != m.loaded {
		m.position = 0
	}
	m.loaded = ref
	return nil
}

func (m *Mock) Play() error {
	m.log.add(m.name + ".play")
	if m.playErr != nil {
		return m.playErr
	}
	if m.loaded == "" {
		return ErrNotLoaded
	}
	m.playing = true
	if m.cb.OnPlaying != nil {
		m.cb.OnPlaying()
	}
	return nil
}

func (m *Mock) Pause() {
	m.log.add(m.name + ".pause")
	if !m.playing {
		return
	}
	m.playing = false
	if m.cb.OnPaused != nil {
		m.cb.OnPaused()
	}
}

func (m *Mock) Stop() {
	m.log.add(m.name + ".stop")
	wasPlaying := m.playing
	m.playing = false
	m.loaded = ""
	m.position = 0
	if wasPlaying && m.cb.OnPaused != nil {
		m.cb.OnPaused()
	}
}

func (m *Mock) Seek(pos time.Duration) {
	m.log.add(m.name + ".seek")
	m.position = pos
}

func (m *Mock) SetVolume(level float64) {
	m.log.add(m.name + ".volume")
	m.level = level
}

func (m *Mock) CurrentTime() time.Duration { return m.position }

func (m *Mock) Duration() time.Duration { return m.duration }

func (m *Mock) IsPlaying() bool { return m.playing }

// Test helpers

func (m *Mock) SetDuration(d time.Duration) { m.duration = d }

func (m *Mock) SetPosition(d time.Duration) { m.position = d }

func (m *Mock) SetLoadError(err error) { m.loadErr = err }

func (m *Mock) SetPlayError(err error) { m.playErr = err }

func (m *Mock) Loaded() string { return m.loaded }

func (m *Mock) Level() float64 { return m.level }

// SimulateEnded drives the ended confirmation, as if the media drained.
func (m *Mock) SimulateEnded() {
	m.playing = false
	if m.cb.OnEnded != nil {
		m.cb.OnEnded()
	}
}

// SimulateError drives the runtime-error confirmation.
func (m *Mock) SimulateError(err error) {
	m.playing = false
	if m.cb.OnError != nil {
		m.cb.OnError(err)
	}
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)

// MockDriver is a scripted VideoDriver for exercising the video
// adapter's lazy initialization and pending-load replay.
type MockDriver struct {
	mu        sync.Mutex
	ev        DriverEvents
	initCalls int
	autoReady bool
	loads     []string
	autoplays []bool
	current   string
	position  float64
	duration  float64
	volume    int
	muted     bool
}

// NewMockDriver creates a driver that stays initializing until Ready is
// called, or reports ready immediately when autoReady is set.
func NewMockDriver(autoReady bool) *MockDriver {
	return &MockDriver{autoReady: autoReady}
}

func (d *MockDriver) Init(ev DriverEvents) error {
	d.mu.Lock()
	d.ev = ev
	d.initCalls++
	auto := d.autoReady
	d.mu.Unlock()
	if auto {
		ev.OnReady()
	}
	return nil
}

// Ready fires the ready callback, as the real player does
// asynchronously after Init.
func (d *MockDriver) Ready() {
	d.mu.Lock()
	ev := d.ev
	d.mu.Unlock()
	if ev.OnReady != nil {
		ev.OnReady()
	}
}

// ChangeState fires a driver state-change notification.
func (d *MockDriver) ChangeState(s State) {
	d.mu.Lock()
	ev := d.ev
	d.mu.Unlock()
	if ev.OnStateChange != nil {
		ev.OnStateChange(s)
	}
}

// Fail fires the driver error notification.
func (d *MockDriver) Fail(err error) {
	d.mu.Lock()
	ev := d.ev
	d.mu.Unlock()
	if ev.OnError != nil {
		ev.OnError(err)
	}
}

func (d *MockDriver) Load(id string, autoplay bool) {
	d.mu.Lock()
	d.loads = append(d.loads, id)
	d.autoplays = append(d.autoplays, autoplay)
	d.current = id
	d.position = 0
	d.mu.Unlock()
}

func (d *MockDriver) Play() { d.ChangeState(Playing) }

func (d *MockDriver) Pause() { d.ChangeState(Paused) }

func (d *MockDriver) Stop() {
	d.mu.Lock()
	d.current = ""
	d.position = 0
	d.mu.Unlock()
}

func (d *MockDriver) SeekTo(seconds float64) {
	d.mu.Lock()
	d.position = seconds
	d.mu.Unlock()
}

func (d *MockDriver) SetVolume(percent int) {
	d.mu.Lock()
	d.volume = percent
	d.mu.Unlock()
}

func (d *MockDriver) Mute() {
	d.mu.Lock()
	d.muted = true
	d.mu.Unlock()
}

func (d *MockDriver) UnMute() {
	d.mu.Lock()
	d.muted = false
	d.mu.Unlock()
}

func (d *MockDriver) CurrentTime() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.position
}

func (d *MockDriver) Duration() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.duration
}

func (d *MockDriver) CurrentID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

func (d *MockDriver) Close() error { return nil }

// Test helpers

func (d *MockDriver) SetDuration(seconds float64) {
	d.mu.Lock()
	d.duration = seconds
	d.mu.Unlock()
}

func (d *MockDriver) SetPosition(seconds float64) {
	d.mu.Lock()
	d.position = seconds
	d.mu.Unlock()
}

func (d *MockDriver) Loads() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.loads))
	copy(out, d.loads)
	return out
}

func (d *MockDriver) Autoplays() []bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]bool, len(d.autoplays))
	copy(out, d.autoplays)
	return out
}

func (d *MockDriver) InitCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initCalls
}

func (d *MockDriver) Volume() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.volume
}

func (d *MockDriver) Muted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.muted
}

// Verify MockDriver implements VideoDriver at compile time.
var _ VideoDriver = (*MockDriver)(nil)
