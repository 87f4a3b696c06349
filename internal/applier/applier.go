// Package applier applies a staged update archive over the install
// directory. CheckAndApply must run at the very start of program
// initialization, before any other first-party module is loaded: its safety
// argument is that no code from the (possibly stale, possibly unverified)
// directory has been read into memory yet.
package applier

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aurafriday/mcplink-update/internal/model"
	"github.com/aurafriday/mcplink-update/internal/store"
	"github.com/aurafriday/mcplink-update/internal/uplog"
	"github.com/aurafriday/mcplink-update/internal/verify"
)

// ErrArchiveCorrupt marks extraction-layer failures, distinct from an
// invalid signature. The archive is retained either way.
var ErrArchiveCorrupt = errors.New("archive corrupt")

// manifestName is the archive entry carrying the release manifest.
const manifestName = "manifest.json"

// Applier applies staged updates verified against one public key.
type Applier struct {
	PublicKey string
}

// CheckAndApply looks for a staged archive in dir using the production key
// and applies it if its signature verifies. True means an update was
// extracted and the rest of startup may be loading just-updated code.
func CheckAndApply(dir string) bool {
	a := Applier{PublicKey: verify.PublicKey}
	return a.CheckAndApply(dir)
}

// CheckAndApply is the single pre-load entry point. It never fails outward:
// every internal error becomes a false return and a line in update.log. A
// directory without a staged archive is left untouched.
func (a *Applier) CheckAndApply(dir string) bool {
	archivePath := store.PendingArchive(dir)
	if archivePath == "" {
		return false
	}
	log := uplog.Open(dir)
	defer log.Close()
	log.Info("found pending update", "archive", archivePath)
	return a.apply(archivePath, dir, log)
}

func (a *Applier) apply(archivePath, dir string, log *uplog.Logger) bool {
	// #nosec G304 -- fixed filename inside the install dir
	data, err := os.ReadFile(archivePath)
	if err != nil {
		log.Error("read update archive", "error", err)
		return false
	}

	// The one rule with no exception path: extraction never happens after a
	// failed or unverifiable signature. The archive stays on disk for
	// inspection.
	if err := verify.Check(data, a.PublicKey); err != nil {
		log.Error("signature verification failed, refusing update", "archive", archivePath, "error", err)
		return false
	}
	log.Info("signature verification passed")

	oldVersion := store.CurrentVersion(dir)
	if err := extract(data, dir); err != nil {
		if errors.Is(err, ErrArchiveCorrupt) {
			log.Error("update rejected: corrupt archive", "error", err)
		} else {
			log.Error("extraction failed", "error", err)
		}
		// Partial extraction is recoverable by retry on a later start; the
		// archive is kept so the next run can try again.
		return false
	}
	newVersion := store.CurrentVersion(dir)

	if err := os.Remove(archivePath); err != nil {
		// The update is already live; a stuck archive file is only a warning.
		log.Warn("could not delete applied archive", "archive", archivePath, "error", err)
	} else {
		log.Info("deleted applied archive", "archive", archivePath)
	}
	log.Info("update applied", "from", oldVersion, "to", newVersion)
	return true
}

// StagedVersion reads the manifest version out of a staged archive without
// extracting or verifying it.
func StagedVersion(archivePath string) (string, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrArchiveCorrupt, err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != manifestName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("%w: open %s: %v", ErrArchiveCorrupt, manifestName, err)
		}
		defer rc.Close()
		var m model.Manifest
		if err := decodeManifest(rc, &m); err != nil {
			return "", err
		}
		return m.Version, nil
	}
	return "", fmt.Errorf("%w: no %s entry", ErrArchiveCorrupt, manifestName)
}

func decodeManifest(r io.Reader, m *model.Manifest) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrArchiveCorrupt, manifestName, err)
	}
	if err := json.Unmarshal(data, m); err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrArchiveCorrupt, manifestName, err)
	}
	return nil
}

// extract unpacks every entry of the archive into dir, overwriting files at
// their stored relative paths and creating directories as needed. A failure
// partway leaves earlier entries in place; callers treat that as
// retry-recoverable rather than rolling back.
func extract(data []byte, dir string) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrArchiveCorrupt, err)
	}
	for _, f := range zr.File {
		if err := extractEntry(f, dir); err != nil {
			return err
		}
	}
	return nil
}

func extractEntry(f *zip.File, dir string) error {
	target, err := entryPath(dir, f.Name)
	if err != nil {
		return err
	}
	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", f.Name, err)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: open entry %s: %v", ErrArchiveCorrupt, f.Name, err)
	}
	defer rc.Close()
	// #nosec G304 -- target is contained in dir by entryPath
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	// #nosec G110 -- archive was signature-verified before extraction
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("%w: extract %s: %v", ErrArchiveCorrupt, f.Name, err)
	}
	return out.Close()
}

// entryPath maps an archive entry name onto dir, rejecting entries that
// would escape it.
func entryPath(dir, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: entry %q escapes install dir", ErrArchiveCorrupt, name)
	}
	return filepath.Join(dir, cleaned), nil
}
