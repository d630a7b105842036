// Package mpv drives an external mpv process over its JSON-IPC socket
// as the video playback engine. mpv resolves watch URLs through yt-dlp,
// so external video tracks play without any embedded web view.
package mpv

import (
	"crypto/rand"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/wicaksana/showdeck/internal/backend"
	"github.com/wicaksana/showdeck/internal/log"
)

const (
	socketWaitRetries = 20
	socketWaitDelay   = 300 * time.Millisecond
)

// Driver implements backend.VideoDriver over mpv's JSON-IPC protocol.
type Driver struct {
	binary     string
	socketPath string

	cmd    *exec.Cmd
	exited chan struct{} // closed when the mpv process exits
	ipcMu  sync.Mutex    // serializes IPC command writes

	mu     sync.Mutex // protects the fields below
	events backend.DriverEvents
	curID  string
	paused bool
	loaded bool

	listener *eventListener
}

// New creates a driver for the given mpv binary. An empty socketPath
// picks a random per-process socket under the temp dir.
func New(binary, socketPath string) *Driver {
	if binary == "" {
		binary = "mpv"
	}
	return &Driver{
		binary:     binary,
		socketPath: socketPath,
		exited:     make(chan struct{}),
	}
}

// Socket returns the IPC socket path.
func (d *Driver) Socket() string {
	return d.socketPath
}

// Init starts the mpv process idle and waits for its IPC socket in the
// background. Ready fires once the socket accepts commands; a process
// that never comes up reports through OnError instead.
func (d *Driver) Init(ev backend.DriverEvents) error {
	d.mu.Lock()
	d.events = ev
	d.mu.Unlock()

	if d.socketPath == "" {
		randomBytes := make([]byte, 4)
		if _, err := rand.Read(randomBytes); err != nil {
			return fmt.Errorf("mpv: generate socket name: %w", err)
		}
		d.socketPath = filepath.Join(os.TempDir(), fmt.Sprintf("showdeck-%x.sock", randomBytes))
	}

	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", d.socketPath),
		"--idle=yes",
		"--force-window=yes",
	}

	d.cmd = exec.Command(d.binary, args...)
	d.cmd.Stdout = nil
	d.cmd.Stderr = nil
	d.cmd.Stdin = nil

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("mpv: start %s: %w", d.binary, err)
	}

	// Reap the process to prevent zombies.
	go func() {
		_ = d.cmd.Wait()
		close(d.exited)
	}()

	go d.finishInit()
	return nil
}

// finishInit waits for the socket, wires the event listener, and
// reports Ready.
func (d *Driver) finishInit() {
	if err := d.waitForSocket(); err != nil {
		select {
		case <-d.exited:
		default:
			log.Warnf("mpv: killing process, socket never became ready")
			_ = d.cmd.Process.Kill()
		}
		d.dispatchError(fmt.Errorf("mpv: socket not ready: %w", err))
		return
	}

	listener := newEventListener(d.socketPath, d.handleEvent)
	if err := listener.Start(); err != nil {
		d.dispatchError(fmt.Errorf("mpv: event listener: %w", err))
		return
	}

	d.mu.Lock()
	d.listener = listener
	ready := d.events.OnReady
	d.mu.Unlock()

	log.Infof("mpv: ready on socket %s", d.socketPath)
	if ready != nil {
		ready()
	}
}

// waitForSocket polls until the mpv IPC socket accepts connections.
func (d *Driver) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-d.exited:
			return fmt.Errorf("process exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", d.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", d.socketPath, socketWaitRetries)
}

// Load replaces the current file with the video's watch URL. Without
// autoplay the file is cued paused.
func (d *Driver) Load(id string, autoplay bool) {
	d.mu.Lock()
	d.curID = id
	d.loaded = true
	d.paused = !autoplay
	d.mu.Unlock()

	if _, err := d.sendCommand([]interface{}{"set_property", "pause", !autoplay}); err != nil {
		d.dispatchError(err)
		return
	}
	if _, err := d.sendCommand([]interface{}{"loadfile", watchURL(id), "replace"}); err != nil {
		d.dispatchError(err)
		return
	}
	if !autoplay {
		d.dispatchState(backend.Cued)
	}
}

func (d *Driver) Play() {
	if _, err := d.sendCommand([]interface{}{"set_property", "pause", false}); err != nil {
		d.dispatchError(err)
	}
}

func (d *Driver) Pause() {
	if _, err := d.sendCommand([]interface{}{"set_property", "pause", true}); err != nil {
		d.dispatchError(err)
	}
}

// Stop unloads the current file; mpv stays idle for the next load.
func (d *Driver) Stop() {
	d.mu.Lock()
	d.curID = ""
	d.loaded = false
	d.mu.Unlock()

	if _, err := d.sendCommand([]interface{}{"stop"}); err != nil {
		log.Debugf("mpv: stop: %v", err)
	}
}

func (d *Driver) SeekTo(seconds float64) {
	if _, err := d.sendCommand([]interface{}{"seek", seconds, "absolute"}); err != nil {
		log.Debugf("mpv: seek: %v", err)
	}
}

func (d *Driver) SetVolume(percent int) {
	if _, err := d.sendCommand([]interface{}{"set_property", "volume", float64(percent)}); err != nil {
		log.Debugf("mpv: set volume: %v", err)
	}
}

func (d *Driver) Mute() {
	if _, err := d.sendCommand([]interface{}{"set_property", "mute", true}); err != nil {
		log.Debugf("mpv: mute: %v", err)
	}
}

func (d *Driver) UnMute() {
	if _, err := d.sendCommand([]interface{}{"set_property", "mute", false}); err != nil {
		log.Debugf("mpv: unmute: %v", err)
	}
}

// CurrentTime returns the playback position in seconds, 0 when nothing
// is loaded.
func (d *Driver) CurrentTime() float64 {
	return d.getFloatProperty("time-pos")
}

// Duration returns the media duration in seconds, 0 while unknown.
func (d *Driver) Duration() float64 {
	return d.getFloatProperty("duration")
}

func (d *Driver) CurrentID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.curID
}

// Close quits mpv, waiting briefly before killing it outright.
func (d *Driver) Close() error {
	d.mu.Lock()
	listener := d.listener
	d.listener = nil
	d.mu.Unlock()
	if listener != nil {
		listener.Stop()
	}

	if d.socketPath == "" {
		return nil
	}

	_, _ = d.sendCommand([]interface{}{"quit"})

	select {
	case <-d.exited:
	case <-time.After(3 * time.Second):
		if d.cmd != nil && d.cmd.Process != nil {
			_ = d.cmd.Process.Kill()
		}
	}

	_ = os.Remove(d.socketPath)
	return nil
}

// handleEvent maps mpv property changes onto adapter states.
func (d *Driver) handleEvent(name string, data interface{}) {
	d.mu.Lock()
	loaded := d.loaded
	d.mu.Unlock()
	if !loaded {
		return
	}

	switch name {
	case "pause":
		paused, ok := data.(bool)
		if !ok {
			return
		}
		d.mu.Lock()
		d.paused = paused
		d.mu.Unlock()
		if paused {
			d.dispatchState(backend.Paused)
		} else {
			d.dispatchState(backend.Playing)
		}
	case "seeking":
		seeking, ok := data.(bool)
		if !ok {
			return
		}
		if seeking {
			d.dispatchState(backend.Buffering)
			return
		}
		d.mu.Lock()
		paused := d.paused
		d.mu.Unlock()
		if paused {
			d.dispatchState(backend.Paused)
		} else {
			d.dispatchState(backend.Playing)
		}
	case "eof-reached":
		if reached, ok := data.(bool); ok && reached {
			d.dispatchState(backend.Ended)
		}
	}
}

func (d *Driver) dispatchState(s backend.State) {
	d.mu.Lock()
	cb := d.events.OnStateChange
	d.mu.Unlock()
	if cb != nil {
		cb(s)
	}
}

func (d *Driver) dispatchError(err error) {
	log.Errorf("mpv: %v", err)
	d.mu.Lock()
	cb := d.events.OnError
	d.mu.Unlock()
	if cb != nil {
		cb(err)
	}
}

func (d *Driver) getFloatProperty(name string) float64 {
	data, err := d.sendCommand([]interface{}{"get_property", name})
	if err != nil {
		return 0
	}
	val, ok := data.(float64)
	if !ok {
		return 0
	}
	return val
}

// watchURL expands a canonical video id to the URL mpv hands yt-dlp.
func watchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// Verify Driver implements the adapter contract at compile time.
var _ backend.VideoDriver = (*Driver)(nil)
