package evidence

import "strings"

// DisplayLines is the line budget for the display snippet. Compaction kicks
// in only when a diff exceeds it.
const DisplayLines = 40

// CompactSnippet reduces a large diff excerpt to the display budget,
// re-ranking lines so that ones matching the classifier's keyword vocabulary
// survive truncation. Relative order is preserved within each group. The
// caller keeps the original excerpt untouched: identity computation always
// runs over the pre-compaction text, so compaction-rule changes never change
// record ids.
func CompactSnippet(excerpt string, vocabulary []string) string {
	lines := strings.Split(excerpt, "\n")
	if len(lines) <= DisplayLines {
		return excerpt
	}

	lowered := make([]string, len(vocabulary))
	for i, v := range vocabulary {
		lowered[i] = strings.ToLower(v)
	}

	var ranked, rest []string
	for _, line := range lines {
		if matchesAny(strings.ToLower(line), lowered) {
			ranked = append(ranked, line)
		} else {
			rest = append(rest, line)
		}
	}
	ranked = append(ranked, rest...)
	return strings.Join(ranked[:DisplayLines], "\n")
}

func matchesAny(line string, vocabulary []string) bool {
	for _, v := range vocabulary {
		if strings.Contains(line, v) {
			return true
		}
	}
	return false
}
