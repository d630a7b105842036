// Package log routes diagnostics to a log file. The terminal is owned
// by the UI, so nothing here may ever write to stdout or stderr.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

var logger = newSilentLogger()

func newSilentLogger() *logrus.Logger {
	l := logrus.New()
	// Discard until Setup opens a file; the TUI must stay clean even
	// for messages emitted before setup.
	l.SetOutput(io.Discard)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// Setup opens a dated log file under dir and begins writing there.
// With an empty dir, logging stays disabled.
func Setup(dir, level string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	name := fmt.Sprintf("%s.log", time.Now().Format("2006-01-02"))
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("log: %w", err)
	}
	logger.SetOutput(f)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	return nil
}

func Debugf(format string, args ...any) { logger.Debugf(format, args...) }

func Infof(format string, args ...any) { logger.Infof(format, args...) }

func Warnf(format string, args ...any) { logger.Warnf(format, args...) }

func Errorf(format string, args ...any) { logger.Errorf(format, args...) }
