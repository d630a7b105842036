//go:build !windows

// Package stderr captures output from C audio libraries (ALSA, minimp3)
// that write directly to file descriptor 2, bypassing Go's os.Stderr.
// Left uncaptured, those writes corrupt the TUI layout.
package stderr

import (
	"bufio"
	"os"
	"strings"
	"syscall"

	"github.com/wicaksana/showdeck/internal/log"
)

// Messages receives captured stderr lines. The host reads from this
// channel to surface them in the footer.
var Messages = make(chan string, 100)

var (
	origStderr int
	pipeRead   *os.File
	pipeWrite  *os.File
	started    bool
)

// Start begins capturing stderr. Must be called early in main(), before
// the audio backend initializes. On failure the program continues with
// uncaptured stderr.
func Start() error {
	if started {
		return nil
	}

	r, w, err := os.Pipe()
	if err != nil {
		return err
	}

	origStderr, err = syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return err
	}

	// Redirect fd 2 to the pipe's write end.
	if err = syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(origStderr)
		r.Close()
		w.Close()
		return err
	}

	pipeRead = r
	pipeWrite = w
	started = true

	go func() {
		scanner := bufio.NewScanner(pipeRead)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			log.Debugf("stderr: %s", line)
			select {
			case Messages <- line:
			default:
				// Channel full, drop rather than block the reader.
			}
		}
	}()

	return nil
}

// WriteOriginal writes directly to the original stderr, bypassing
// capture. Used for fatal errors that must stay visible under the TUI.
func WriteOriginal(msg string) {
	if origStderr > 0 {
		_, _ = syscall.Write(origStderr, []byte(msg))
	}
}

// Stop restores the original stderr on program exit.
func Stop() {
	if !started {
		return
	}

	_ = syscall.Dup2(origStderr, int(os.Stderr.Fd()))
	_ = syscall.Close(origStderr)

	pipeWrite.Close()
	pipeRead.Close()

	close(Messages)
	started = false
}
