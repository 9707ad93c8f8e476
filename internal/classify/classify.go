// Package classify is the sole arbiter of what reaches a human. It maps a
// diff excerpt plus target metadata to a severity, a numeric score and the
// reasons behind them. It is total and deterministic: every input yields a
// definite result, and identical inputs always yield identical results.
//
// The threshold and suppression constants below are contract, not tuning
// knobs: changing any of them requires updating every regression fixture,
// because together they define the severity taxonomy.
package classify

import (
	"strings"

	"github.com/harukimoto/driftwatch/internal/model"
)

// Severity thresholds over the accumulated score.
const (
	ThresholdBreaking = 80
	ThresholdHigh     = 50
	ThresholdMedium   = 20
)

// Suppression heuristics.
const (
	// BulkChurnThreshold: at or above this churn with no strong signal, the
	// diff is treated as a large but content-free rewrite.
	BulkChurnThreshold = 30
	// WindowDropChurnMax: a removals-only diff at or below this churn is a
	// bounded feed window dropping its oldest entries, not a real edit.
	WindowDropChurnMax = 10
)

// Classification is the classifier's verdict for one diff.
type Classification struct {
	Impact     model.Impact
	Score      int
	Reasons    []string
	Suppressed bool
}

// Classify scores the diff excerpt for the target's source category and
// derives the severity. Suppression heuristics run after scoring and can
// force Low with a distinguishing reason.
func Classify(t model.Target, excerpt string, stats model.DiffStats) Classification {
	text := strings.ToLower(excerpt)

	score, reasons := baseSignal(t)
	strong := false
	for _, sig := range signalsFor(t.Category) {
		if !sig.matches(text) {
			continue
		}
		score += sig.weight
		reasons = append(reasons, sig.reason)
		if sig.strong {
			strong = true
		}
	}

	cl := Classification{
		Impact:  impactFor(score),
		Score:   score,
		Reasons: reasons,
	}

	switch {
	case stats.Added == 0 && stats.Removed > 0 && stats.Churn <= WindowDropChurnMax:
		cl.Impact = model.ImpactLow
		cl.Suppressed = true
		cl.Reasons = append(cl.Reasons, "suppress:window-drop")
	case stats.Churn >= BulkChurnThreshold && !strong:
		cl.Impact = model.ImpactLow
		cl.Suppressed = true
		cl.Reasons = append(cl.Reasons, "suppress:bulk-update")
	}

	return cl
}

// baseSignal contributes the category's unconditional score. Generic sources
// carry no reason: a diff that matches nothing falls through to the target's
// configured default severity with an empty reasons list.
func baseSignal(t model.Target) (int, []string) {
	switch t.Category {
	case model.CategorySpec:
		return 50, []string{"spec:definition-changed"}
	case model.CategoryChangelog:
		return 50, []string{"changelog:update"}
	case model.CategoryNews:
		return 20, []string{"news:update"}
	}
	return defaultImpactScore[t.DefaultImpact], nil
}

// defaultImpactScore places each configured default inside its own severity
// band so that impactFor maps it back to exactly that level.
var defaultImpactScore = map[model.Impact]int{
	model.ImpactBreaking: 85,
	model.ImpactHigh:     60,
	model.ImpactMedium:   30,
	model.ImpactLow:      10,
}

// impactFor derives the severity from the score. Boundaries are exact:
// 80→Breaking, 50→High, 20→Medium, 79→High.
func impactFor(score int) model.Impact {
	switch {
	case score >= ThresholdBreaking:
		return model.ImpactBreaking
	case score >= ThresholdHigh:
		return model.ImpactHigh
	case score >= ThresholdMedium:
		return model.ImpactMedium
	}
	return model.ImpactLow
}
