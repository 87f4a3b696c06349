// Command make-update packages a directory into a signed update archive.
//
// The archive is a standard zip whose entries are the release files plus a
// STORED manifest.json; the signature token lives in the archive comment so
// patching the signature never disturbs entry checksums. The resulting file
// is what the mirrors serve and what the applier verifies on the next start.
package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aurafriday/mcplink-update/internal/model"
	"github.com/aurafriday/mcplink-update/internal/store"
	"github.com/aurafriday/mcplink-update/internal/verify"
)

const manifestName = "manifest.json"

func main() {
	src := flag.String("src", "", "directory containing the release files")
	out := flag.String("out", store.PendingArchiveName, "output archive path")
	keyFile := flag.String("key", "", "private key file (exponent|modulus, base-256 encoded)")
	pubFile := flag.String("pub", "", "public key file for the post-sign self-check (default: compiled-in key when the modulus matches)")
	releaseVersion := flag.String("release-version", "", "version to record in the manifest (default: VERSION.txt in -src)")
	flag.Parse()

	if err := run(*src, *out, *keyFile, *pubFile, *releaseVersion); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(src, out, keyFile, pubFile, releaseVersion string) error {
	src = strings.TrimSpace(src)
	if src == "" {
		return errors.New("-src directory is required")
	}
	if keyFile == "" {
		return errors.New("-key file is required")
	}
	// #nosec G304 -- keyFile named by the operator running the signer
	keyData, err := os.ReadFile(keyFile)
	if err != nil {
		return fmt.Errorf("read key: %w", err)
	}
	key := strings.TrimSpace(string(keyData))

	if releaseVersion == "" {
		releaseVersion = store.CurrentVersion(src)
	}

	placeholder, err := verify.Placeholder(key)
	if err != nil {
		return fmt.Errorf("size signature span: %w", err)
	}

	unsigned, err := buildArchive(src, releaseVersion, placeholder)
	if err != nil {
		return err
	}

	signed, err := verify.Sign(unsigned, key)
	if err != nil {
		return fmt.Errorf("sign archive: %w", err)
	}
	if pub := selfCheckKey(key, pubFile); pub != "" {
		if !verify.Verify(signed, pub) {
			return errors.New("self-check failed: signed archive does not verify")
		}
	} else {
		fmt.Fprintln(os.Stderr, "warning: no public key available, skipping post-sign self-check")
	}

	if err := os.WriteFile(out, signed, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Printf("Wrote %s (version %s, %d bytes)\n", out, releaseVersion, len(signed))
	return nil
}

// selfCheckKey picks the public key used to re-verify the freshly signed
// archive: an explicit -pub file wins, otherwise the compiled-in key when
// the private key shares its modulus.
func selfCheckKey(privateKey, pubFile string) string {
	if pubFile != "" {
		// #nosec G304 -- pubFile named by the operator running the signer
		data, err := os.ReadFile(pubFile)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(data))
	}
	privParts := strings.SplitN(privateKey, "|", 2)
	pubParts := strings.SplitN(verify.PublicKey, "|", 2)
	if len(privParts) == 2 && privParts[1] == pubParts[1] {
		return verify.PublicKey
	}
	return ""
}

// buildArchive zips every file under src, prepends the manifest entry, and
// reserves the signature span in the archive comment.
func buildArchive(src, releaseVersion, placeholder string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	manifest, err := json.Marshal(model.Manifest{Version: releaseVersion})
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	// STORED so the manifest stays greppable as literal text in the raw
	// archive bytes.
	mw, err := zw.CreateHeader(&zip.FileHeader{Name: manifestName, Method: zip.Store})
	if err != nil {
		return nil, fmt.Errorf("create manifest entry: %w", err)
	}
	if _, err := mw.Write(manifest); err != nil {
		return nil, fmt.Errorf("write manifest entry: %w", err)
	}

	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if name == manifestName {
			return fmt.Errorf("%s already exists in -src; it is generated by this tool", manifestName)
		}
		w, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("create entry %s: %w", name, err)
		}
		// #nosec G304 -- path enumerated from the operator's -src directory
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write entry %s: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := zw.SetComment(placeholder); err != nil {
		return nil, fmt.Errorf("set signature comment: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
