package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/todobridge/tbclean/internal/config"
	"github.com/todobridge/tbclean/internal/ui"
)

var (
	// Version is the current version of tbclean (overridden by ldflags at build time)
	Version = "0.3.0"
	// Build can be set via ldflags at compile time
	Build = "dev"
)

var (
	dataJSONFlag      string
	vaultRootFlag     string
	reportFlag        string
	removeIDs         []string
	dropMissingPath   bool
	dropMissingMarker bool
	pruneEmpty        bool
	backupPathFlag    string
	noBackupFlag      bool
	dryRun            bool
	jsonOutput        bool
	verboseFlag       bool
	quietFlag         bool
)

var rootCmd = &cobra.Command{
	Use:   "tbclean",
	Short: "tbclean - Clean inconsistent Todoist Bridge cache entries",
	Long: `Tidy the Todoist Bridge cache (data.json).

Removes task entries known to be inconsistent with Todoist or the Obsidian
vault, optionally guided by a database-check report, and keeps the file
metadata collection in sync. Can verify that referenced notes still contain
the expected todoist_id markers.

EXAMPLES:
  tbclean --remove-ids 123,456                  # Remove two tasks explicitly
  tbclean --report check.txt --dry-run          # Preview report-driven cleanup
  tbclean --drop-missing-marker                 # Drop tasks whose note lost its marker
  tbclean --drop-missing-path --prune-empty-metadata

SAFETY:
- A .bak copy of data.json is written before any change (disable with --no-backup)
- data.json is rewritten atomically; a crash cannot leave it half-written
- Use --dry-run to preview with the reason behind every removal
- Use --json for programmatic output`,
	// Task IDs only travel via --remove-ids; a stray positional is a typo
	// that must not be silently dropped from the removal set.
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("tbclean version %s (%s)\n", Version, Build)
			return nil
		}
		return runCleanup()
	},
}

func init() {
	if err := config.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize config: %v\n", err)
	}

	rootCmd.Flags().StringVar(&dataJSONFlag, "data-json", "data.json", "Path to data.json")
	rootCmd.Flags().StringVar(&vaultRootFlag, "vault-root", "", "Path to the Obsidian vault root")
	rootCmd.Flags().StringVar(&reportFlag, "report", "", "Path to a database-check report to auto-select task IDs")
	rootCmd.Flags().StringSliceVar(&removeIDs, "remove-ids", nil, "Explicit task IDs to remove")
	rootCmd.Flags().BoolVar(&dropMissingPath, "drop-missing-path", false, "Remove tasks whose note file path is missing")
	rootCmd.Flags().BoolVar(&dropMissingMarker, "drop-missing-marker", false, "Remove tasks whose note is missing the todoist marker")
	rootCmd.Flags().BoolVar(&pruneEmpty, "prune-empty-metadata", false, "Remove file metadata entries that end up empty after cleanup")
	rootCmd.Flags().StringVar(&backupPathFlag, "backup-path", "", "Backup destination (default: <data-json>.bak)")
	rootCmd.Flags().BoolVar(&noBackupFlag, "no-backup", false, "Skip automatic creation of a .bak backup file")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be removed without saving changes")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose logging")
	rootCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")
	rootCmd.Flags().BoolP("version", "V", false, "Print version information")

	// Flag > env > config file > default, resolved once through viper.
	_ = viper.BindPFlag("data-json", rootCmd.Flags().Lookup("data-json"))
	_ = viper.BindPFlag("no-backup", rootCmd.Flags().Lookup("no-backup"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.RenderFail("error:"), err)
		os.Exit(1)
	}
}
