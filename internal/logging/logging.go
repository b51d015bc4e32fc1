// Package logging installs the process-wide xlog formatter and level.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

var (
	mu      sync.Mutex
	logFile *os.File
	stderr  io.Writer = os.Stderr
)

// Init routes log output to stderr and, when logPath is set, appends to that
// file as well. Stdout is left untouched for the MCP stdio stream.
func Init(logPath string, debug bool) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	writers := []io.Writer{stderr}
	if logPath != "" {
		if dir := filepath.Dir(logPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return errors.Wrapf(err, "create log directory %q", dir)
			}
		}
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return errors.Wrapf(err, "open log file %q", logPath)
		}
		logFile = file
		writers = append(writers, logFile)
	}

	xlog.SetFormatter(xlog.NewStringFormatter(io.MultiWriter(writers...)))
	xlog.SetGlobalLogLevel(Level(debug))
	return nil
}

// Level returns the global level for the debug setting.
func Level(debug bool) xlog.LogLevel {
	if debug {
		return xlog.DEBUG
	}
	return xlog.INFO
}

// Close detaches and closes the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	xlog.SetFormatter(xlog.NewStringFormatter(stderr))
	err := logFile.Close()
	logFile = nil
	return err
}
