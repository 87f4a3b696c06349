// Package uplog appends diagnostics to a local update.log in the install
// directory. The applier runs before the host's logging facility exists, so
// this logger owns its own file and never reports failures to callers: if
// the file cannot be opened, records are discarded.
package uplog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// FileName is the diagnostic log filename inside the install directory.
const FileName = "update.log"

// Logger is a slog.Logger bound to the install directory's update.log.
type Logger struct {
	*slog.Logger
	f *os.File
}

// Open returns a logger appending to update.log in dir.
func Open(dir string) *Logger {
	// #nosec G304 -- fixed filename inside the install dir
	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	}
	return &Logger{Logger: slog.New(slog.NewTextHandler(f, nil)), f: f}
}

// Close releases the underlying file, if one was opened.
func (l *Logger) Close() {
	if l.f != nil {
		_ = l.f.Close()
	}
}
