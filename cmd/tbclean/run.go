package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/todobridge/tbclean/internal/cleanup"
	"github.com/todobridge/tbclean/internal/config"
	"github.com/todobridge/tbclean/internal/debug"
	"github.com/todobridge/tbclean/internal/report"
	"github.com/todobridge/tbclean/internal/snapshot"
	"github.com/todobridge/tbclean/internal/ui"
	"github.com/todobridge/tbclean/internal/utils"
	"github.com/todobridge/tbclean/internal/vault"
)

// DryRunCandidate is one entry of the dry-run preview: a task slated for
// removal and every reason that put it there.
type DryRunCandidate struct {
	ID      string   `json:"id"`
	Reasons []string `json:"reasons"`
}

// DryRunResponse is the --json shape of a dry-run preview.
type DryRunResponse struct {
	DryRun     bool              `json:"dry_run"`
	Candidates []DryRunCandidate `json:"candidates"`
}

// NothingToDoResponse is returned when no task IDs were selected.
type NothingToDoResponse struct {
	RemovedTasks int    `json:"removed_tasks"`
	Message      string `json:"message"`
}

// CleanupResponse summarizes a completed live run.
type CleanupResponse struct {
	RemovedTasks   int    `json:"removed_tasks"`
	UpdatedEntries int    `json:"updated_entries"`
	PrunedEntries  int    `json:"pruned_entries,omitempty"`
	Backup         string `json:"backup,omitempty"`
}

// runCleanup is the whole pipeline: load the snapshot, aggregate the removal
// set from its three sources, then either preview (dry-run) or back up,
// mutate, and persist. Every failure path fires before the snapshot on disk
// is touched.
func runCleanup() error {
	debug.SetVerbose(verboseFlag)
	debug.SetQuiet(quietFlag)

	dataPath := utils.ExpandHome(config.DataJSON())

	snap, err := snapshot.Load(dataPath)
	if err != nil {
		return err
	}

	reportIDs, err := report.ExtractIDs(reportFlag)
	if err != nil {
		return err
	}
	manualIDs := cleanup.IDsFromArgs(removeIDs)

	localCfg := config.LoadLocalConfig(filepath.Dir(dataPath))
	root := vault.ResolveRoot(vaultRootFlag,
		config.VaultRoot(), localCfg.VaultRoot, config.DefaultVaultRoot())

	autoReasons, err := vault.GatherAutoRemovals(snap.Tasks(), root, vault.CheckOptions{
		DropMissingPath:   dropMissingPath,
		DropMissingMarker: dropMissingMarker,
	})
	if err != nil {
		return err
	}

	ids := cleanup.UnionIDs(reportIDs, manualIDs, autoReasons)

	if len(ids) == 0 {
		if jsonOutput {
			outputJSON(NothingToDoResponse{Message: "No task IDs selected for removal. Nothing to do."})
		} else {
			debug.PrintlnNormal("No task IDs selected for removal. Nothing to do.")
		}
		return nil
	}

	sorted := cleanup.SortedIDs(ids)
	debug.Printf("Tasks selected for removal (%d): %s\n", len(ids), strings.Join(sorted, ", "))

	if dryRun {
		printDryRun(sorted, reportIDs, manualIDs, autoReasons)
		return nil
	}

	backupDest := ""
	if !config.NoBackup() {
		backupDest, err = snapshot.Backup(dataPath, backupPathFlag)
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}
		debug.Printf("Backup created at %s\n", backupDest)
	}

	summary := cleanup.RemoveTasks(snap, ids)

	prunedCount := 0
	if pruneEmpty {
		prunedCount = cleanup.PruneEmptyMetadata(snap)
	}

	if err := snapshot.Save(dataPath, snap); err != nil {
		return fmt.Errorf("failed to write %s: %w", dataPath, err)
	}

	if jsonOutput {
		outputJSON(CleanupResponse{
			RemovedTasks:   summary.Removed(),
			UpdatedEntries: summary.UpdatedEntries,
			PrunedEntries:  prunedCount,
			Backup:         backupDest,
		})
		return nil
	}

	debug.PrintNormal("Removed %d task(s) from data.json.\n", summary.Removed())
	debug.PrintNormal("Updated %d file metadata entrie(s).\n", summary.UpdatedEntries)
	if prunedCount > 0 {
		debug.PrintNormal("Pruned %d empty metadata entrie(s).\n", prunedCount)
	}
	return nil
}

// printDryRun emits the preview: one line per candidate with every
// contributing reason (report membership, explicit request, auto checks).
func printDryRun(sorted []string, reportIDs, manualIDs map[string]bool, autoReasons map[string][]string) {
	if jsonOutput {
		resp := DryRunResponse{DryRun: true, Candidates: make([]DryRunCandidate, 0, len(sorted))}
		for _, id := range sorted {
			resp.Candidates = append(resp.Candidates, DryRunCandidate{
				ID:      id,
				Reasons: removalReasons(id, reportIDs, manualIDs, autoReasons),
			})
		}
		outputJSON(resp)
		return
	}

	fmt.Println(ui.RenderWarn("Dry-run mode: the following tasks would be removed:"))
	for _, id := range sorted {
		reasons := removalReasons(id, reportIDs, manualIDs, autoReasons)
		reasonStr := "(no reason recorded)"
		if len(reasons) > 0 {
			reasonStr = strings.Join(reasons, ", ")
		}
		fmt.Printf("  - %s: %s\n", id, ui.RenderMuted(reasonStr))
	}
}

func removalReasons(id string, reportIDs, manualIDs map[string]bool, autoReasons map[string][]string) []string {
	var reasons []string
	if reportIDs[id] {
		reasons = append(reasons, "listed in report")
	}
	if manualIDs[id] {
		reasons = append(reasons, "explicit request")
	}
	reasons = append(reasons, autoReasons[id]...)
	return reasons
}
