package selfupdate

import (
	"fmt"
	"os"
	"path/filepath"
)

// InstallDir resolves the directory holding the running executable, with
// symlinks resolved. It is the default install directory when the caller
// does not name one.
func InstallDir() (string, error) {
	exePath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("determine current executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exePath); err == nil {
		exePath = resolved
	}
	return filepath.Dir(exePath), nil
}
