package config

import "os"

// Warner receives non-fatal warnings.
type Warner interface {
	Warnf(format string, args ...any) string
}

// ResolveDir picks the directory charts are saved to.
//
// An explicit directory is used when it exists; otherwise a warning is
// emitted and the system temp directory is returned. Without an explicit
// directory the default working directory is tried the same way. With
// neither, the system temp directory is returned silently.
func ResolveDir(explicit, defaultDir string, warn Warner) string {
	switch {
	case explicit != "":
		if isDir(explicit) {
			return explicit
		}
		warnf(warn, "directory %s does not exist, using the temporary directory %s", explicit, os.TempDir())
	case defaultDir != "":
		if isDir(defaultDir) {
			return defaultDir
		}
		warnf(warn, "default working directory %s does not exist, using the temporary directory %s", defaultDir, os.TempDir())
	}
	return os.TempDir()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func warnf(w Warner, format string, args ...any) {
	if w != nil {
		w.Warnf(format, args...)
	}
}
