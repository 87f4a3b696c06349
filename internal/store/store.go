// Package store owns the filesystem artifacts the update subsystem keeps in
// the install directory: the staged archive, the version marker, and the
// persisted check-timestamp state. The applier and fetcher never share
// in-process state; these files are their only handoff.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// PendingArchiveName is the fixed filename a staged update waits under.
	PendingArchiveName = "mcplink_update.zip"

	versionFileName = "VERSION.txt"
	stateFileName   = "update_state.json"

	// DefaultVersion is reported when no marker exists. A missing marker is
	// a normal first-install state, not an error.
	DefaultVersion = "0.0.0"
)

// PendingArchive returns the path of a staged update archive in dir, or ""
// when none is waiting.
func PendingArchive(dir string) string {
	path := filepath.Join(dir, PendingArchiveName)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// CurrentVersion reads the version marker. Absent, unreadable, or empty
// markers report DefaultVersion.
func CurrentVersion(dir string) string {
	// #nosec G304 -- fixed filename inside the install dir
	data, err := os.ReadFile(filepath.Join(dir, versionFileName))
	if err != nil {
		return DefaultVersion
	}
	v := strings.TrimSpace(string(data))
	if v == "" {
		return DefaultVersion
	}
	return v
}

// WriteVersion persists the version marker.
func WriteVersion(dir, version string) error {
	return os.WriteFile(filepath.Join(dir, versionFileName), []byte(version+"\n"), 0o644)
}

// CheckState records when the fetcher last decided to check for updates.
type CheckState struct {
	LastUpdateCheck time.Time `json:"lastUpdateCheck"`
}

// LoadCheckState reads the persisted check state. Missing or corrupt state
// reads as the zero value, which callers treat as "never checked".
func LoadCheckState(dir string) CheckState {
	// #nosec G304 -- fixed filename inside the install dir
	data, err := os.ReadFile(filepath.Join(dir, stateFileName))
	if err != nil {
		return CheckState{}
	}
	var st CheckState
	if err := json.Unmarshal(data, &st); err != nil {
		return CheckState{}
	}
	return st
}

// SaveCheckState persists the check state.
func SaveCheckState(dir string, st CheckState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, stateFileName), data, 0o644)
}
