package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todobridge/tbclean/internal/snapshot"
)

const testDoc = `{
  "todoistTasksData": {"tasks": [
    {"id": "1", "path": "a.md"},
    {"id": "2", "path": ""}
  ]},
  "fileMetadata": {
    "a.md": {"todoistTasks": ["1"], "todoistCount": 1}
  }
}`

// setupRun points the pipeline at a fresh snapshot file and resets all
// flag-bound globals when the test finishes.
func setupRun(t *testing.T, doc string) string {
	t.Helper()
	dataPath := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(dataPath, []byte(doc), 0644))
	viper.Set("data-json", dataPath)

	t.Cleanup(func() {
		viper.Set("data-json", "data.json")
		viper.Set("no-backup", false)
		vaultRootFlag = ""
		reportFlag = ""
		removeIDs = nil
		dropMissingPath = false
		dropMissingMarker = false
		pruneEmpty = false
		backupPathFlag = ""
		noBackupFlag = false
		dryRun = false
		jsonOutput = false
		verboseFlag = false
		quietFlag = false
	})
	return dataPath
}

func TestDryRunDoesNotModifyFile(t *testing.T) {
	dataPath := setupRun(t, testDoc)
	removeIDs = []string{"1", "2"}
	dryRun = true

	require.NoError(t, runCleanup())

	after, err := os.ReadFile(dataPath)
	require.NoError(t, err)
	assert.Equal(t, testDoc, string(after), "dry-run modified the snapshot")

	_, err = os.Stat(dataPath + ".bak")
	assert.True(t, os.IsNotExist(err), "dry-run created a backup")
}

func TestNothingToDo(t *testing.T) {
	dataPath := setupRun(t, testDoc)

	require.NoError(t, runCleanup())

	after, err := os.ReadFile(dataPath)
	require.NoError(t, err)
	assert.Equal(t, testDoc, string(after))
}

func TestLiveRunRemovesAndBacksUp(t *testing.T) {
	dataPath := setupRun(t, testDoc)
	removeIDs = []string{"2"}

	require.NoError(t, runCleanup())

	backup, err := os.ReadFile(dataPath + ".bak")
	require.NoError(t, err, "backup not created")
	assert.Equal(t, testDoc, string(backup), "backup differs from pre-mutation snapshot")

	snap, err := snapshot.Load(dataPath)
	require.NoError(t, err)
	require.Len(t, snap.Tasks(), 1)
	assert.Equal(t, "1", snap.Tasks()[0].ID())
	assert.Equal(t, []string{"1"}, snap.Metadata()["a.md"].TaskIDs())
}

func TestLiveRunNoBackup(t *testing.T) {
	dataPath := setupRun(t, testDoc)
	removeIDs = []string{"2"}
	viper.Set("no-backup", true)

	require.NoError(t, runCleanup())

	_, err := os.Stat(dataPath + ".bak")
	assert.True(t, os.IsNotExist(err), "backup created despite --no-backup")
}

func TestLiveRunPruneEmptyMetadata(t *testing.T) {
	dataPath := setupRun(t, testDoc)
	removeIDs = []string{"1"}
	pruneEmpty = true

	require.NoError(t, runCleanup())

	snap, err := snapshot.Load(dataPath)
	require.NoError(t, err)
	assert.NotContains(t, snap.Metadata(), "a.md")
}

func TestStrayPositionalArgsRejected(t *testing.T) {
	setupRun(t, testDoc)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	// A space-separated second ID must error out, not silently vanish
	// from the removal set.
	rootCmd.SetArgs([]string{"--remove-ids", "123", "456"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "456")
}

func TestCommaSeparatedRemoveIDs(t *testing.T) {
	doc := `{
  "todoistTasksData": {"tasks": [{"id": "123"}, {"id": "456"}]},
  "fileMetadata": {}
}`
	dataPath := setupRun(t, doc)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	rootCmd.SetArgs([]string{"--remove-ids", "123,456"})
	require.NoError(t, rootCmd.Execute())

	snap, err := snapshot.Load(dataPath)
	require.NoError(t, err)
	assert.Empty(t, snap.Tasks(), "both comma-separated IDs should be removed")
}

func TestMissingSnapshotFails(t *testing.T) {
	setupRun(t, testDoc)
	viper.Set("data-json", filepath.Join(t.TempDir(), "absent.json"))
	removeIDs = []string{"1"}

	err := runCleanup()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "Could not find data.json"))
}
