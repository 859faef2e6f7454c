package utils

import (
	"fmt"
	"os"
	"runtime"
	"time"
)

// RenameWithRetry performs an atomic file rename with retry logic for Windows.
// The snapshot rewrite lands via rename, and on Windows that can fail with
// "Access is denied" while Obsidian or a sync client holds a handle on
// data.json. Retries with exponential backoff to ride out transient locks.
//
// maxRetries 0 means try once; initialDelay doubles after each attempt.
// Returns nil on success or the last error once retries are exhausted.
func RenameWithRetry(oldPath, newPath string, maxRetries int, initialDelay time.Duration) error {
	var lastErr error
	attempts := 0
	delay := initialDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		attempts++
		err := os.Rename(oldPath, newPath)
		if err == nil {
			return nil
		}
		lastErr = err

		// On non-Windows the error is likely permanent; don't retry.
		if runtime.GOOS != "windows" {
			break
		}

		if attempt < maxRetries {
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("rename failed after %d attempt(s): %w", attempts, lastErr)
}

// DefaultRenameRetry calls RenameWithRetry with defaults suited to a vault
// under sync: 3 retries starting at 100ms (700ms max wait).
func DefaultRenameRetry(oldPath, newPath string) error {
	return RenameWithRetry(oldPath, newPath, 3, 100*time.Millisecond)
}

// ExpandHome expands a leading ~ or ~/ in a path to the user's home
// directory. Paths without the prefix are returned unchanged, as is the
// input when the home directory cannot be determined.
func ExpandHome(path string) string {
	if path != "~" && !hasHomePrefix(path) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	return home + path[1:]
}

func hasHomePrefix(path string) bool {
	return len(path) >= 2 && path[0] == '~' && (path[1] == '/' || path[1] == '\\')
}
