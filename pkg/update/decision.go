package update

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Decision classifies what applying a staged archive would do.
type Decision string

const (
	DecisionProceed   Decision = "proceed"   // staged version is newer (or not comparable)
	DecisionReinstall Decision = "reinstall" // staged version equals the installed one
	DecisionDowngrade Decision = "downgrade" // staged version is older
)

// FormatVersionDisplay formats a version string for display, adding a "v"
// prefix if needed.
func FormatVersionDisplay(v string) string {
	if v == "" || v == "dev" || v == "0.0.0" {
		return v
	}
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// CompareVersions compares two version strings as semver, tolerating a
// leading "v". Returns -1 if current < staged, 0 if equal, 1 if current >
// staged.
func CompareVersions(current, staged string) (int, error) {
	cv, err := parseVersion(current)
	if err != nil {
		return 0, fmt.Errorf("parsing current version %q: %w", current, err)
	}
	sv, err := parseVersion(staged)
	if err != nil {
		return 0, fmt.Errorf("parsing staged version %q: %w", staged, err)
	}
	return cv.Compare(sv), nil
}

func parseVersion(version string) (*semver.Version, error) {
	return semver.NewVersion(strings.TrimPrefix(strings.TrimSpace(version), "v"))
}

// Decide classifies a staged archive version against the installed one and
// returns a human message for status output. Versions that do not parse as
// semver never block anything: the archive will still be signature-verified
// before apply, so the decision degrades to proceed with a note.
func Decide(current, staged string) (Decision, string) {
	cmp, err := CompareVersions(current, staged)
	if err != nil {
		msg := fmt.Sprintf("Version comparison skipped (installed=%q, staged=%q); archive will be verified before apply.", current, staged)
		return DecisionProceed, msg
	}
	switch {
	case cmp < 0:
		msg := fmt.Sprintf("Update staged: %s → %s (applies on next start)", FormatVersionDisplay(current), FormatVersionDisplay(staged))
		return DecisionProceed, msg
	case cmp > 0:
		msg := fmt.Sprintf("Staged archive is older than installed: %s → %s", FormatVersionDisplay(current), FormatVersionDisplay(staged))
		return DecisionDowngrade, msg
	default:
		msg := fmt.Sprintf("Staged archive matches installed version %s (reinstall)", FormatVersionDisplay(staged))
		return DecisionReinstall, msg
	}
}
