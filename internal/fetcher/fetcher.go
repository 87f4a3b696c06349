// Package fetcher checks the update mirrors and stages a new archive for
// the next startup. It runs only after the program is fully up, never from
// the pre-load path, and it never verifies or applies what it downloads:
// verification belongs entirely to the applier, which keeps this
// network-facing code outside the trust boundary that overwrites files.
package fetcher

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aurafriday/mcplink-update/internal/host/mirror"
	"github.com/aurafriday/mcplink-update/internal/hostenv"
	"github.com/aurafriday/mcplink-update/internal/model"
	"github.com/aurafriday/mcplink-update/internal/store"
	"github.com/aurafriday/mcplink-update/internal/uplog"
)

// Download outcomes. A not-found response means the mirrors have nothing
// newer for this version/platform; only genuine transport or server errors
// justify trying the backup mirror.
type outcome int

const (
	outcomeDownloaded outcome = iota
	outcomeNoUpdate
	outcomeError
)

// Fetcher stages updates from the mirrors named by its target config.
type Fetcher struct {
	Target    model.UpdateTarget
	UserAgent string
}

// MaybeDownload checks the mirrors if minInterval has elapsed since the
// last recorded check, stages any downloaded archive under the pending
// filename, and returns its path ("" when nothing was staged). Every
// failure degrades to "try again next interval"; nothing propagates to the
// caller.
func (f *Fetcher) MaybeDownload(dir string, minInterval time.Duration) string {
	st := store.LoadCheckState(dir)
	if !st.LastUpdateCheck.IsZero() && time.Since(st.LastUpdateCheck) < minInterval {
		return ""
	}

	log := uplog.Open(dir)
	defer log.Close()

	version := store.CurrentVersion(dir)
	platform := hostenv.PlatformSuffix()
	log.Info("checking for updates", "version", version, "platform", platform)

	// Persist the check time before any network call so a slow or hanging
	// request cannot trigger repeated concurrent checks.
	if err := store.SaveCheckState(dir, store.CheckState{LastUpdateCheck: time.Now().UTC()}); err != nil {
		log.Warn("could not persist check state", "error", err)
	}

	primary := renderURL(f.Target.Endpoints.PrimaryURLTemplate, version, platform)
	switch f.tryDownload(primary, dir, log) {
	case outcomeDownloaded:
		return filepath.Join(dir, f.archiveName())
	case outcomeNoUpdate:
		log.Info("no update available")
		return ""
	}

	backup := renderURL(f.Target.Endpoints.BackupURLTemplate, version, platform)
	switch f.tryDownload(backup, dir, log) {
	case outcomeDownloaded:
		return filepath.Join(dir, f.archiveName())
	case outcomeNoUpdate:
		log.Info("no update available")
	default:
		log.Warn("update check failed: mirrors unavailable")
	}
	return ""
}

func (f *Fetcher) archiveName() string {
	if f.Target.ArchiveName != "" {
		return f.Target.ArchiveName
	}
	return store.PendingArchiveName
}

func renderURL(tpl, version, platform string) string {
	return strings.NewReplacer("{version}", version, "{platform}", platform).Replace(tpl)
}

func (f *Fetcher) tryDownload(url, dir string, log *uplog.Logger) outcome {
	log.Info("trying mirror", "url", url)
	// #nosec G107 -- url rendered from the embedded target config
	resp, err := mirror.Get(url, f.UserAgent)
	if err != nil {
		log.Warn("download error", "url", url, "error", err)
		return outcomeError
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return outcomeNoUpdate
	default:
		log.Warn("unexpected status from mirror", "url", url, "status", resp.StatusCode)
		return outcomeError
	}

	staged := filepath.Join(dir, f.archiveName())
	out, err := os.Create(staged)
	if err != nil {
		log.Warn("stage archive", "path", staged, "error", err)
		return outcomeError
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		_ = os.Remove(staged)
		log.Warn("write staged archive", "path", staged, "error", err)
		return outcomeError
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(staged)
		log.Warn("close staged archive", "path", staged, "error", err)
		return outcomeError
	}
	log.Info("update downloaded", "archive", staged)
	return outcomeDownloaded
}
