package model

import "fmt"

// Impact is the severity assigned to a detected change. The four levels and
// their string forms are part of the store schema.
type Impact string

const (
	ImpactBreaking Impact = "Breaking"
	ImpactHigh     Impact = "High"
	ImpactMedium   Impact = "Medium"
	ImpactLow      Impact = "Low"
)

// Impacts lists the levels from most to least severe.
var Impacts = []Impact{ImpactBreaking, ImpactHigh, ImpactMedium, ImpactLow}

// ParseImpact converts a configuration string to an Impact.
func ParseImpact(s string) (Impact, error) {
	switch Impact(s) {
	case ImpactBreaking, ImpactHigh, ImpactMedium, ImpactLow:
		return Impact(s), nil
	}
	return "", fmt.Errorf("unknown impact %q (want Breaking, High, Medium or Low)", s)
}

// DocumentKind selects the canonicalization strategy for a target's raw text.
// The set is closed: configuration load rejects anything else.
type DocumentKind string

const (
	KindFeed    DocumentKind = "feed"    // RSS/Atom entry canonicalization
	KindOpenAPI DocumentKind = "openapi" // structured document, sorted re-serialization
	KindHTML    DocumentKind = "html"    // plain-text extraction
	KindOpaque  DocumentKind = "opaque"  // passthrough; diffed on raw lines
)

// SourceCategory drives the classifier's signal tables. Resolved once at
// configuration load from the target's kind, name and URL.
type SourceCategory string

const (
	CategorySpec      SourceCategory = "spec"
	CategoryChangelog SourceCategory = "changelog"
	CategoryNews      SourceCategory = "news"
	CategoryGeneric   SourceCategory = "generic"
)

// Target is one monitored source. Immutable after configuration load.
type Target struct {
	Name          string
	URL           string
	DefaultImpact Impact
	Kind          DocumentKind
	Category      SourceCategory
	Disabled      bool
}

// DiffStats are the line counts of one diff. Churn = Added + Removed.
type DiffStats struct {
	Added   int
	Removed int
	Churn   int
}

// ChangeRecord is the unit of evidence kept in the store. Field names match
// the historical state.json schema consumed by the report generators.
//
// PubDate and TS denote the same instant, the run time, not the change's
// origin time. RunID is shared by every record of one execution.
type ChangeRecord struct {
	ID          string   `json:"id"`
	Impact      Impact   `json:"impact"`
	Score       int      `json:"score"`
	Reasons     []string `json:"reasons"`
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Added       int      `json:"added"`
	Removed     int      `json:"removed"`
	Churn       int      `json:"churn"`
	Snippet     string   `json:"snippet"`
	SnippetFull string   `json:"snippet_full"`
	Summary     string   `json:"summary,omitempty"`
	Suppressed  bool     `json:"suppressed,omitempty"`
	PubDate     string   `json:"pubDate"`
	TS          string   `json:"ts"`
	RunID       string   `json:"run_id"`
}
