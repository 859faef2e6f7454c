// Package vault inspects the Obsidian vault backing the Todoist Bridge cache.
// It resolves the vault root once at startup and flags cached tasks whose
// backing note is missing or no longer carries the todoist marker.
package vault

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/todobridge/tbclean/internal/debug"
	"github.com/todobridge/tbclean/internal/snapshot"
	"github.com/todobridge/tbclean/internal/utils"
)

// markerPrefix is the literal key the bridge plugin writes into a note to tie
// it to a task, as in "todoist_id:: 12345".
const markerPrefix = `todoist_id::\s*`

// ResolveRoot picks the vault root for automatic checks. The explicit path
// (if given) wins, with ~ expanded; otherwise each candidate is tried in
// order. A path only resolves if it exists on disk. Returns "" when nothing
// resolves, in which case automatic checks are unavailable.
func ResolveRoot(explicit string, candidates ...string) string {
	if explicit != "" {
		expanded := utils.ExpandHome(explicit)
		if pathExists(expanded) {
			return expanded
		}
		return ""
	}
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		expanded := utils.ExpandHome(candidate)
		if pathExists(expanded) {
			return expanded
		}
	}
	return ""
}

// CheckOptions selects which automatic consistency checks run.
type CheckOptions struct {
	// DropMissingPath flags tasks with no note path, or whose note file
	// does not exist under the vault root.
	DropMissingPath bool
	// DropMissingMarker flags tasks whose note exists but no longer
	// contains the todoist_id marker for that task.
	DropMissingMarker bool
}

// GatherAutoRemovals inspects each cached task against the vault and returns
// a map from task identifier to the ordered list of reasons it was flagged.
// A task can accumulate more than one reason (a missing note trips both the
// path check and the marker check). Tasks with nothing wrong are absent from
// the result.
//
// With both checks disabled the result is empty and no root is needed.
// With either check enabled and no resolvable root, the run cannot continue.
func GatherAutoRemovals(tasks []snapshot.Task, root string, opts CheckOptions) (map[string][]string, error) {
	reasons := make(map[string][]string)
	if !opts.DropMissingPath && !opts.DropMissingMarker {
		return reasons, nil
	}
	if root == "" {
		return nil, snapshot.NewCleanupError("Vault root not available; provide --vault-root to enable automatic checks.")
	}

	var flagged []string // ids in the order first flagged, for verbose output
	addReason := func(id, why string) {
		if _, seen := reasons[id]; !seen {
			flagged = append(flagged, id)
		}
		reasons[id] = append(reasons[id], why)
	}

	for _, task := range tasks {
		taskID := task.ID()
		notePath := ""
		if rel := task.NotePath(); rel != "" {
			notePath = filepath.Join(root, filepath.FromSlash(rel))
		}

		if opts.DropMissingPath {
			if notePath == "" {
				addReason(taskID, "missing note path")
			} else if !pathExists(notePath) {
				addReason(taskID, "note file not found")
			}
		}

		if opts.DropMissingMarker {
			if notePath != "" && pathExists(notePath) {
				if markerMissing(notePath, taskID) {
					addReason(taskID, "todoist marker missing in note")
				}
			} else {
				addReason(taskID, "todoist marker unavailable (missing note)")
			}
		}
	}

	for _, id := range flagged {
		debug.Logf("Auto-removal candidate %s: %s\n", id, strings.Join(reasons[id], ", "))
	}

	return reasons, nil
}

// markerMissing reports whether the note at notePath lacks the todoist marker
// for taskID. Unreadable notes count as missing the marker. The file is
// matched as raw bytes, so notes with stray non-UTF-8 content are tolerated
// rather than rejected.
func markerMissing(notePath, taskID string) bool {
	text, err := os.ReadFile(notePath) // #nosec G304 - path derived from the vault root
	if err != nil {
		return true
	}
	pattern := regexp.MustCompile(markerPrefix + regexp.QuoteMeta(taskID))
	return !pattern.Match(text)
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
