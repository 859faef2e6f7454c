package snapshot

import (
	"encoding/json"
	"io"
	"os"

	"github.com/todobridge/tbclean/internal/utils"
)

// Load reads and parses the snapshot document at path. A missing file or a
// parse failure yields a CleanupError carrying the underlying diagnostic;
// both abort the run before anything else happens.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from the CLI
	if err != nil {
		if os.IsNotExist(err) {
			return nil, WrapCleanupError(err, "Could not find data.json at %s", path)
		}
		return nil, WrapCleanupError(err, "Failed to read data.json at %s: %v", path, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, WrapCleanupError(err, "Failed to parse JSON data at %s: %v", path, err)
	}
	return &snap, nil
}

// Save serializes the document as 2-space indented JSON with non-ASCII
// characters kept literal and a trailing newline, matching how the bridge
// plugin writes the file. The bytes go to a sibling .tmp file first and an
// atomic rename puts them in place, so a crash mid-write can never leave
// data.json half-written.
func Save(path string, snap *Snapshot) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath) // #nosec G304 - sibling of the CLI-provided path
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(snap); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := utils.DefaultRenameRetry(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Backup copies source to destination before any mutation, preserving file
// mode and mtime. An empty destination defaults to source + ".bak".
// Returns the destination actually written.
func Backup(source, destination string) (string, error) {
	if destination == "" {
		destination = source + ".bak"
	}

	info, err := os.Stat(source)
	if err != nil {
		return "", err
	}

	in, err := os.Open(source) // #nosec G304 - path comes from the CLI
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm()) // #nosec G304
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}

	// Mirror the original's timestamps so the backup is a faithful stand-in.
	_ = os.Chtimes(destination, info.ModTime(), info.ModTime())

	return destination, nil
}
