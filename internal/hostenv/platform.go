// Package hostenv derives properties of the host the plugin runs on.
package hostenv

import "runtime"

// Platform buckets used in update artifact names. The host application only
// ships for Windows and macOS; anything else downloads the Windows artifact
// rather than failing the check.
const (
	PlatformWindows  = "windows"
	PlatformMacIntel = "mac-intel"
	PlatformMacARM   = "mac-arm"
)

// PlatformSuffix buckets the current host into one of the update artifact
// platforms.
func PlatformSuffix() string {
	return platformSuffix(runtime.GOOS, runtime.GOARCH)
}

func platformSuffix(goos, goarch string) string {
	switch goos {
	case "windows":
		return PlatformWindows
	case "darwin":
		switch goarch {
		case "arm64":
			return PlatformMacARM
		default:
			return PlatformMacIntel
		}
	default:
		return PlatformWindows
	}
}
