package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// UserHomeDir returns the current user's home directory.
// If the home directory cannot be determined, it returns "." as a fallback.
func UserHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// AppDir returns the OSAI state directory (~/.osai), with optional
// path elements joined below it.
func AppDir(elem ...string) string {
	parts := append([]string{UserHomeDir(), ".osai"}, elem...)
	return filepath.Join(parts...)
}

// ExpandPath resolves a ~/ prefix against the home directory. Absolute
// paths pass through unchanged; other relative paths are cleaned and stay
// relative to the working directory.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(UserHomeDir(), path[2:])
	}
	return filepath.Clean(path)
}
