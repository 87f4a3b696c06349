// Command mcplink-update is the secure self-update subsystem of the
// MCP-Link host plugin, exposed as a CLI so the host's startup and runtime
// glue can call it:
//
//	mcplink-update -apply    run first, before anything else loads
//	mcplink-update -fetch    run in the background once the host is up
//
// Both entry points convert every internal failure into an exit code plus a
// line in the install directory's update.log; neither ever raises an
// uncaught failure across the host boundary.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aurafriday/mcplink-update/internal/applier"
	"github.com/aurafriday/mcplink-update/internal/fetcher"
	"github.com/aurafriday/mcplink-update/internal/host/mirror"
	"github.com/aurafriday/mcplink-update/internal/model"
	"github.com/aurafriday/mcplink-update/internal/selfupdate"
	"github.com/aurafriday/mcplink-update/internal/store"
	"github.com/aurafriday/mcplink-update/internal/verify"
	"github.com/aurafriday/mcplink-update/pkg/update"
)

var version = "dev"

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("mcplink-update", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dir := fs.String("dir", "", "install directory (default: directory of this executable)")
	apply := fs.Bool("apply", false, "verify and apply a pending update archive")
	fetch := fs.Bool("fetch", false, "check mirrors and stage an update for the next start")
	interval := fs.Int("interval", 0, "minimum hours between update checks (default from embedded target)")
	status := fs.Bool("status", false, "report installed and staged versions")
	verifyFile := fs.String("verify", "", "verify the embedded signature of a file and exit")
	minisignKey := fs.String("minisign-key", "", "minisign public key file; with -verify, also check FILE.minisig")
	showVersion := fs.Bool("version", false, "print version")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *showVersion {
		fmt.Fprintln(stdout, "mcplink-update", version)
		return 0
	}

	if *verifyFile != "" {
		return runVerify(*verifyFile, *minisignKey, stdout, stderr)
	}

	target, err := loadEmbeddedUpdateTarget()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	installDir := *dir
	if installDir == "" {
		installDir, err = selfupdate.InstallDir()
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
	}

	switch {
	case *apply:
		return runApply(installDir, stdout)
	case *fetch:
		return runFetch(*target, installDir, *interval, stdout)
	case *status:
		return runStatus(installDir, stdout)
	}

	fs.Usage()
	return 1
}

func runApply(installDir string, stdout io.Writer) int {
	if applier.CheckAndApply(installDir) {
		fmt.Fprintf(stdout, "Update applied; now at version %s\n", store.CurrentVersion(installDir))
	} else {
		fmt.Fprintln(stdout, "No update applied")
	}
	// Outcomes are reported through update.log; the host treats both results
	// as a normal start.
	return 0
}

func runFetch(target model.UpdateTarget, installDir string, intervalHours int, stdout io.Writer) int {
	if intervalHours <= 0 {
		intervalHours = target.CheckIntervalHours
	}
	if intervalHours <= 0 {
		intervalHours = 24
	}
	applyEndpointOverrides(&target)

	f := fetcher.Fetcher{Target: target, UserAgent: mirror.UserAgent(version)}
	if staged := f.MaybeDownload(installDir, time.Duration(intervalHours)*time.Hour); staged != "" {
		fmt.Fprintf(stdout, "Staged %s (verified and applied on next start)\n", staged)
	} else {
		fmt.Fprintln(stdout, "Nothing staged")
	}
	return 0
}

// applyEndpointOverrides lets tests and staging environments point the
// fetcher at alternate mirrors without rebuilding the embedded target.
func applyEndpointOverrides(target *model.UpdateTarget) {
	if u := strings.TrimSpace(os.Getenv("MCPLINK_UPDATE_PRIMARY_URL")); u != "" {
		target.Endpoints.PrimaryURLTemplate = u
	}
	if u := strings.TrimSpace(os.Getenv("MCPLINK_UPDATE_BACKUP_URL")); u != "" {
		target.Endpoints.BackupURLTemplate = u
	}
}

func runStatus(installDir string, stdout io.Writer) int {
	current := store.CurrentVersion(installDir)
	staged := store.PendingArchive(installDir)
	if staged == "" {
		fmt.Fprintf(stdout, "Installed version %s; no update staged\n", update.FormatVersionDisplay(current))
		return 0
	}
	stagedVersion, err := applier.StagedVersion(staged)
	if err != nil {
		fmt.Fprintf(stdout, "Installed version %s; staged archive unreadable (%v)\n", update.FormatVersionDisplay(current), err)
		return 0
	}
	_, msg := update.Decide(current, stagedVersion)
	fmt.Fprintln(stdout, msg)
	return 0
}

func runVerify(path, minisignKey string, stdout, stderr io.Writer) int {
	// #nosec G304 -- path names the file the user asked to verify
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "error: read %s: %v\n", path, err)
		return 1
	}
	if !verify.Verify(data, verify.PublicKey) {
		fmt.Fprintf(stderr, "signature verification FAILED for %s\n", path)
		return 1
	}
	fmt.Fprintln(stdout, "Embedded signature verified OK")

	if minisignKey != "" {
		if err := verify.VerifyMinisign(data, path+".minisig", minisignKey); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, "Minisign sidecar verified OK")
	}
	return 0
}
