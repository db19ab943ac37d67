// Package paths resolves the apexlens working directory and normalizes
// trace file paths for cache keys and group membership.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

const workDirName = ".apexlens"

// WorkDir returns the apexlens working directory under the given root,
// creating it if necessary.
func WorkDir(root string) (string, error) {
	dir := filepath.Join(root, workDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// CachePath returns the scan cache database path under the given root
func CachePath(root string) string {
	return filepath.Join(root, workDirName, "scancache.db")
}

// LogPath returns the default log file path under the given root
func LogPath(root string) string {
	return filepath.Join(root, workDirName, "apexlens.log")
}

// CanonicalizePath converts an absolute trace path to a folder-relative
// canonical path:
// - Resolves symlinks to real paths
// - Makes the path relative to the scanned folder root
// - Converts backslashes to forward slashes
func CanonicalizePath(absolutePath string, folderRoot string) (string, error) {
	resolved, err := filepath.EvalSymlinks(absolutePath)
	if err != nil {
		// If the file doesn't exist yet, use the path as-is
		if os.IsNotExist(err) {
			resolved = absolutePath
		} else {
			return "", err
		}
	}

	rootResolved, err := filepath.EvalSymlinks(folderRoot)
	if err != nil {
		if os.IsNotExist(err) {
			rootResolved = folderRoot
		} else {
			return "", err
		}
	}

	relativePath, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(relativePath), nil
}

// IsWithinFolder checks if a path is inside the scanned folder root
func IsWithinFolder(path string, folderRoot string) bool {
	canonical, err := CanonicalizePath(path, folderRoot)
	if err != nil {
		return false
	}
	return !strings.HasPrefix(canonical, "..")
}

// JoinFolderPath joins a folder root with a canonical trace path
func JoinFolderPath(folderRoot string, canonicalPath string) string {
	normalized := strings.ReplaceAll(canonicalPath, "\\", "/")
	parts := strings.Split(normalized, "/")
	return filepath.Join(append([]string{folderRoot}, parts...)...)
}
