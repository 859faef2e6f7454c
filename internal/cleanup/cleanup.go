// Package cleanup applies a removal set to the snapshot document: task
// records are dropped and every fileMetadata entry is purged of references
// to the removed identifiers, keeping todoistCount in sync.
package cleanup

import (
	"github.com/todobridge/tbclean/internal/snapshot"
)

// Summary reports what a removal pass did.
type Summary struct {
	TasksBefore    int `json:"tasks_before"`
	TasksAfter     int `json:"tasks_after"`
	UpdatedEntries int `json:"updated_entries"`
	// PrunedEntries counts metadata entries whose task list became empty.
	// They are counted here, not deleted; PruneEmptyMetadata deletes.
	PrunedEntries int `json:"pruned_entries"`
}

// Removed returns the number of task records dropped.
func (s Summary) Removed() int {
	return s.TasksBefore - s.TasksAfter
}

// RemoveTasks deletes every task whose identifier is in ids and purges those
// identifiers from all metadata entries. Removal is a best-effort set
// difference: identifiers not present anywhere are silently ignored, and the
// pass never fails.
func RemoveTasks(snap *snapshot.Snapshot, ids map[string]bool) Summary {
	var summary Summary

	tasks := snap.Tasks()
	summary.TasksBefore = len(tasks)
	kept := make([]snapshot.Task, 0, len(tasks))
	for _, task := range tasks {
		if !ids[task.ID()] {
			kept = append(kept, task)
		}
	}
	snap.SetTasks(kept)
	summary.TasksAfter = len(kept)

	for _, meta := range snap.Metadata() {
		old := meta.TaskIDs()
		filtered := make([]string, 0, len(old))
		for _, id := range old {
			if !ids[id] {
				filtered = append(filtered, id)
			}
		}
		if len(filtered) != len(old) {
			meta.SetTaskIDs(filtered)
			summary.UpdatedEntries++
			if len(filtered) == 0 {
				summary.PrunedEntries++
			}
		}
	}

	return summary
}

// PruneEmptyMetadata deletes every metadata entry whose task list is empty,
// null, or absent, returning the count removed. Runs only on explicit
// request; RemoveTasks alone never deletes entries.
func PruneEmptyMetadata(snap *snapshot.Snapshot) int {
	var toRemove []string
	for notePath, meta := range snap.Metadata() {
		if len(meta.TaskIDs()) == 0 {
			toRemove = append(toRemove, notePath)
		}
	}
	for _, notePath := range toRemove {
		snap.DeleteMetadata(notePath)
	}
	return len(toRemove)
}
