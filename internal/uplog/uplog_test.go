package uplog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenWritesRecords(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	log := Open(dir)
	log.Info("update applied", "from", "1.0.0", "to", "2.0.0")
	log.Close()

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	for _, want := range []string{"update applied", "from=1.0.0", "to=2.0.0"} {
		if !strings.Contains(line, want) {
			t.Fatalf("log line %q should contain %q", line, want)
		}
	}
}

func TestOpenAppends(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := Open(dir)
	first.Info("first run")
	first.Close()
	second := Open(dir)
	second.Info("second run")
	second.Close()

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "first run") || !strings.Contains(string(data), "second run") {
		t.Fatalf("log should contain both runs: %q", data)
	}
}

func TestOpenUnwritableDirDiscards(t *testing.T) {
	t.Parallel()

	log := Open(filepath.Join(t.TempDir(), "does", "not", "exist"))
	// Must not panic, and Close must be safe without an underlying file.
	log.Info("dropped on the floor")
	log.Close()
}
