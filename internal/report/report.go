// Package report extracts task identifiers from a Todoist Bridge
// database-check report. The report is free text; any occurrence of
// "todoist_id:" followed by digits names a task known to be inconsistent.
package report

import (
	"bufio"
	"os"
	"regexp"

	"github.com/todobridge/tbclean/internal/snapshot"
)

var idPattern = regexp.MustCompile(`todoist_id:\s*(\d+)`)

// ExtractIDs collects every task identifier mentioned in the report at path.
// An empty path means no report was supplied and yields an empty set; a
// non-empty path that doesn't exist is a CleanupError. Duplicates collapse
// and malformed mentions (non-digit ids) contribute nothing.
func ExtractIDs(path string) (map[string]bool, error) {
	ids := make(map[string]bool)
	if path == "" {
		return ids, nil
	}

	f, err := os.Open(path) // #nosec G304 - path comes from the CLI
	if err != nil {
		if os.IsNotExist(err) {
			return nil, snapshot.WrapCleanupError(err, "Report file not found: %s", path)
		}
		return nil, snapshot.WrapCleanupError(err, "Failed to read report file %s: %v", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		for _, match := range idPattern.FindAllStringSubmatch(scanner.Text(), -1) {
			ids[match[1]] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, snapshot.WrapCleanupError(err, "Failed to read report file %s: %v", path, err)
	}
	return ids, nil
}
