// Package appdir resolves the per-user local application data directory.
package appdir

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// AppName is the directory created under the platform's local data root.
const AppName = "RotMGStash"

// LocalDataRoot returns the platform's per-user local data root:
// %LOCALAPPDATA% on Windows, ~/Library/Application Support on macOS,
// and XDG_DATA_HOME (falling back to ~/.local/share) elsewhere.
func LocalDataRoot() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return dir, nil
		}
		return "", fmt.Errorf("LOCALAPPDATA is not set")
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	}

	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share"), nil
}

// DataDir returns the application data directory. A non-empty override wins.
func DataDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	root, err := LocalDataRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, AppName), nil
}

// EnsureDir creates a directory and all parent directories if they don't exist.
// Directories are created with 0700 permissions.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}
