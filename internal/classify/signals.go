package classify

import (
	"strings"

	"github.com/harukimoto/driftwatch/internal/model"
)

// signal is one keyword heuristic. A signal matches when any of its patterns
// occurs in the lowercased diff excerpt; it is counted once per diff. Strong
// signals exempt a diff from bulk-update suppression.
type signal struct {
	reason   string
	weight   int
	strong   bool
	patterns []string
}

func (s signal) matches(lowerText string) bool {
	for _, p := range s.patterns {
		if strings.Contains(lowerText, p) {
			return true
		}
	}
	return false
}

// breakingPatterns is the shared vocabulary of breaking-change language used
// by changelog-style and generic sources.
var breakingPatterns = []string{
	"breaking",
	"deprecat",
	"will be removed",
	"removed",
	"sunset",
	"migration required",
	"end of life",
	"eol",
}

var specSignals = []signal{
	{
		reason: "spec:security-scheme-change", weight: 40, strong: true,
		patterns: []string{"securityschemes", "security scheme", "bearerauth", "oauth"},
	},
	{
		reason: "spec:deprecation", weight: 25, strong: true,
		patterns: []string{"deprecat"},
	},
	{
		reason: "spec:removal", weight: 25, strong: true,
		patterns: []string{"removed", "remove"},
	},
	{
		reason: "spec:required-field-change", weight: 15,
		patterns: []string{"required"},
	},
	{
		reason: "spec:version-bump", weight: 10,
		patterns: []string{"version:"},
	},
}

var changelogSignals = []signal{
	{reason: "changelog:breaking-language", weight: 50, strong: true, patterns: breakingPatterns},
}

var newsSignals = []signal{
	{
		reason: "news:policy-or-pricing", weight: 30,
		patterns: []string{"policy", "pricing", "price"},
	},
	{
		reason: "news:security-or-privacy", weight: 30,
		patterns: []string{"security", "privacy", "compliance", "trust", "safety"},
	},
	{
		reason: "news:terms-or-enterprise", weight: 30,
		patterns: []string{"terms", "enterprise"},
	},
}

var genericSignals = []signal{
	{reason: "breaking-language", weight: 50, strong: true, patterns: breakingPatterns},
}

func signalsFor(cat model.SourceCategory) []signal {
	switch cat {
	case model.CategorySpec:
		return specSignals
	case model.CategoryChangelog:
		return changelogSignals
	case model.CategoryNews:
		return newsSignals
	}
	return genericSignals
}

// Vocabulary returns the keyword patterns of a category's signals. The
// snippet compactor ranks diff lines by this same vocabulary, so display
// compaction and scoring agree on what is high-signal.
func Vocabulary(cat model.SourceCategory) []string {
	sigs := signalsFor(cat)
	var vocab []string
	for _, s := range sigs {
		vocab = append(vocab, s.patterns...)
	}
	return vocab
}
