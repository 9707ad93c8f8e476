// Package diffing compares two normalized snapshots and reports what
// changed. It is pure: no I/O, and it is only ever invoked when a prior
// snapshot exists. First observations are handled upstream.
package diffing

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/harukimoto/driftwatch/internal/model"
)

const (
	// maxExcerptLines caps the stored diff body. Display-time truncation is
	// the compactor's job; this cap only bounds storage.
	maxExcerptLines = 400
	// maxLineLen truncates pathological single lines (minified payloads).
	maxLineLen = 200
)

// noiseMarkers is the fixed denylist of substrings whose lines are removed
// from both sides before diffing. Applied symmetrically, it cannot introduce
// spurious added/removed lines. These are feed/page metadata that change on
// every regeneration without any content change.
var noiseMarkers = []string{
	"lastbuilddate",
	"<generator",
	`rel="self"`,
	"<ttl>",
}

// StripNoise removes every line containing a denylisted marker.
func StripNoise(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if isNoise(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func isNoise(line string) bool {
	l := strings.ToLower(line)
	for _, m := range noiseMarkers {
		if strings.Contains(l, m) {
			return true
		}
	}
	return false
}

// Diff produces the unified-diff change body and line statistics for the two
// texts. Headers and hunk markers are excluded from the excerpt; statistics
// count every changed line even when the excerpt is capped.
func Diff(oldText, newText string) (string, model.DiffStats) {
	ud := difflib.UnifiedDiff{
		A:       difflib.SplitLines(StripNoise(oldText)),
		B:       difflib.SplitLines(StripNoise(newText)),
		Context: 3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", model.DiffStats{}
	}

	var stats model.DiffStats
	var excerpt []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "---") || strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "@@") {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "++"):
			stats.Added++
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "--"):
			stats.Removed++
		default:
			continue
		}
		if len(excerpt) < maxExcerptLines {
			if len(line) > maxLineLen {
				line = line[:maxLineLen]
			}
			excerpt = append(excerpt, line)
		}
	}
	stats.Churn = stats.Added + stats.Removed

	return strings.TrimSpace(strings.Join(excerpt, "\n")), stats
}
