package report

import (
	"strings"
	"testing"
	"time"

	"github.com/harukimoto/driftwatch/internal/evidence"
	"github.com/harukimoto/driftwatch/internal/model"
)

func sampleRecord(id, name string, impact model.Impact) model.ChangeRecord {
	return model.ChangeRecord{
		ID:      id,
		Impact:  impact,
		Score:   90,
		Reasons: []string{"spec:definition-changed", "spec:security-scheme-change"},
		Name:    name,
		URL:     "https://example.com/openapi.yaml",
		Added:   3,
		Churn:   3,
		Snippet: "+  securitySchemes:",
		PubDate: "Sun, 23 Aug 2026 12:00:00 GMT",
		TS:      "2026-08-23T12:00:00Z",
		RunID:   "abc123",
	}
}

func TestVisible_ExcludesSuppressed(t *testing.T) {
	recs := []model.ChangeRecord{
		sampleRecord("a", "S", model.ImpactBreaking),
		{ID: "b", Name: "S", Impact: model.ImpactLow, Suppressed: true},
		sampleRecord("c", "S", model.ImpactLow),
	}
	got := Visible(recs)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("Visible = %+v", got)
	}
}

func TestImportant_KeepsBreakingAndHighOnly(t *testing.T) {
	recs := []model.ChangeRecord{
		sampleRecord("a", "S", model.ImpactBreaking),
		sampleRecord("b", "S", model.ImpactHigh),
		sampleRecord("c", "S", model.ImpactMedium),
		sampleRecord("d", "S", model.ImpactLow),
		{ID: "e", Name: "S", Impact: model.ImpactBreaking, Suppressed: true},
	}
	got := Important(recs)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("Important = %+v", got)
	}
}

func TestWriteMarkdown(t *testing.T) {
	store, err := evidence.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	rec := sampleRecord("deadbeef", "API Spec", model.ImpactBreaking)
	rec.Summary = "The diff appears to add auth.\nClients may be affected."
	store.Admit(rec)
	suppressed := sampleRecord("cafe", "API Spec", model.ImpactLow)
	suppressed.Suppressed = true
	store.Admit(suppressed)
	if err := store.UpdateSnapshot("API Spec", "snapshot body"); err != nil {
		t.Fatalf("UpdateSnapshot: %v", err)
	}

	var b strings.Builder
	if err := WriteMarkdown(&b, store, time.Date(2026, 8, 23, 13, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}
	out := b.String()

	for _, want := range []string{
		"## API Spec",
		"### Change 1: [Breaking] (score=90)",
		"- **id**: `deadbeef`",
		"- **reasons**: spec:definition-changed / spec:security-scheme-change",
		"> The diff appears to add auth.",
		"```diff\n+  securitySchemes:",
		"## Snapshot provenance",
		"Always check the primary source",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "cafe") {
		t.Error("suppressed record surfaced in the report")
	}

	digest, err := store.SnapshotDigest("API Spec")
	if err != nil {
		t.Fatalf("SnapshotDigest: %v", err)
	}
	if !strings.Contains(out, digest) {
		t.Error("provenance table missing snapshot digest")
	}
}

func TestWriteMarkdown_EmptyStore(t *testing.T) {
	store, err := evidence.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	var b strings.Builder
	if err := WriteMarkdown(&b, store, time.Now()); err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}
	if !strings.Contains(b.String(), "No adopted changes on record.") {
		t.Fatalf("empty report body:\n%s", b.String())
	}
}

func TestSanitizeCell(t *testing.T) {
	if got := sanitizeCell("a|b\nc\td"); got != `a\|b c d` {
		t.Fatalf("sanitizeCell = %q", got)
	}
}
