// Package report renders derived, non-authoritative artifacts from the
// committed evidence store. Suppressed records never surface here.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/harukimoto/driftwatch/internal/evidence"
	"github.com/harukimoto/driftwatch/internal/model"
)

const disclaimer = "> Detection log only. Absence of a detected difference is unconfirmed, " +
	"never a verified negative. Always check the primary source."

// Visible returns the records that may surface in reports: everything not
// suppressed, order preserved (newest first).
func Visible(records []model.ChangeRecord) []model.ChangeRecord {
	var out []model.ChangeRecord
	for _, r := range records {
		if !r.Suppressed {
			out = append(out, r)
		}
	}
	return out
}

// Important returns the visible Breaking and High records.
func Important(records []model.ChangeRecord) []model.ChangeRecord {
	var out []model.ChangeRecord
	for _, r := range Visible(records) {
		if r.Impact == model.ImpactBreaking || r.Impact == model.ImpactHigh {
			out = append(out, r)
		}
	}
	return out
}

// WriteMarkdown renders the change report: visible records grouped by
// source, then a snapshot-provenance table of SHA-256 digests so the report
// can be cross-checked against the committed snapshots it was generated
// from. The digest is display-only; identity and dedup never use it.
func WriteMarkdown(w io.Writer, store *evidence.Store, generatedAt time.Time) error {
	records := Visible(store.Records())

	var b strings.Builder
	b.WriteString("# driftwatch change report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", generatedAt.UTC().Format(time.RFC3339))
	b.WriteString(disclaimer + "\n\n")

	if len(records) == 0 {
		b.WriteString("No adopted changes on record.\n")
	}

	// Group by source, preserving newest-first order of both groups and
	// records within a group.
	var sources []string
	bySource := make(map[string][]model.ChangeRecord)
	for _, r := range records {
		if _, seen := bySource[r.Name]; !seen {
			sources = append(sources, r.Name)
		}
		bySource[r.Name] = append(bySource[r.Name], r)
	}

	for _, src := range sources {
		fmt.Fprintf(&b, "## %s\n\n", src)
		for i, r := range bySource[src] {
			fmt.Fprintf(&b, "### Change %d: [%s] (score=%d)\n\n", i+1, r.Impact, r.Score)
			fmt.Fprintf(&b, "- **id**: `%s`\n", r.ID)
			fmt.Fprintf(&b, "- **detected**: %s\n", r.TS)
			fmt.Fprintf(&b, "- **url**: %s\n", r.URL)
			fmt.Fprintf(&b, "- **diff**: +%d / -%d (churn=%d)\n", r.Added, r.Removed, r.Churn)
			if len(r.Reasons) > 0 {
				fmt.Fprintf(&b, "- **reasons**: %s\n", strings.Join(r.Reasons, " / "))
			}
			b.WriteString("\n")
			if r.Summary != "" {
				for _, line := range strings.Split(r.Summary, "\n") {
					fmt.Fprintf(&b, "> %s\n", line)
				}
				b.WriteString("\n")
			}
			if r.Snippet != "" {
				b.WriteString("```diff\n")
				b.WriteString(r.Snippet)
				b.WriteString("\n```\n\n")
			}
		}
	}

	// Provenance: digests of the snapshots backing the listed sources.
	if len(sources) > 0 {
		b.WriteString("## Snapshot provenance\n\n")
		b.WriteString("| Source | Snapshot SHA-256 |\n")
		b.WriteString("|--------|------------------|\n")
		for _, src := range sources {
			digest, err := store.SnapshotDigest(src)
			if err != nil {
				return err
			}
			if digest == "" {
				digest = "(no snapshot)"
			}
			fmt.Fprintf(&b, "| %s | `%s` |\n", sanitizeCell(src), digest)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// sanitizeCell keeps a Markdown table cell on one line with pipes escaped.
func sanitizeCell(s string) string {
	s = strings.NewReplacer("\r", " ", "\n", " ", "\t", " ", "|", `\|`).Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
