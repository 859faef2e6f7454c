package cleanup

import (
	"sort"
	"strings"
)

// IDsFromArgs normalizes explicitly supplied identifiers: surrounding
// whitespace is trimmed and empties are discarded.
func IDsFromArgs(values []string) map[string]bool {
	ids := make(map[string]bool)
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			ids[trimmed] = true
		}
	}
	return ids
}

// UnionIDs merges the three identifier sources into the final removal set:
// report-derived ids, explicit ids, and automatic-check flagged ids. The
// empty string never survives into the result, whichever source produced it.
func UnionIDs(reportIDs, explicitIDs map[string]bool, autoReasons map[string][]string) map[string]bool {
	ids := make(map[string]bool)
	for id := range reportIDs {
		ids[id] = true
	}
	for id := range explicitIDs {
		ids[id] = true
	}
	for id := range autoReasons {
		ids[id] = true
	}
	delete(ids, "")
	return ids
}

// SortedIDs returns the set's members in lexical order for stable output.
func SortedIDs(ids map[string]bool) []string {
	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)
	return sorted
}
