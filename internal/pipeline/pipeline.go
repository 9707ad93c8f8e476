// Package pipeline drives one run: every configured target, sequentially,
// through Fetch → Normalize → Diff → Classify → Summarize → Persist. There
// is no parallelism anywhere; component decomposition is for clarity only.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harukimoto/driftwatch/internal/classify"
	"github.com/harukimoto/driftwatch/internal/diffing"
	"github.com/harukimoto/driftwatch/internal/evidence"
	"github.com/harukimoto/driftwatch/internal/logging"
	"github.com/harukimoto/driftwatch/internal/model"
	"github.com/harukimoto/driftwatch/internal/normalize"
	"github.com/harukimoto/driftwatch/internal/summarize"
)

// Fetcher retrieves a target's raw document text, blocking until done or
// failed.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Status is the per-target health state of a run. Never conflated with the
// observed Outcome: a target can be ok and unchanged, or failed and
// unresolved, but "failed" and "no difference" are different facts.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Outcome is what the run observed for a target. Absence of a detected
// difference is unconfirmed, never a verified negative.
type Outcome string

const (
	OutcomeBaseline   Outcome = "baseline"   // first observation, snapshot established
	OutcomeUnchanged  Outcome = "unchanged"  // no difference detected
	OutcomeChanged    Outcome = "changed"    // change adopted into the store
	OutcomeSuppressed Outcome = "suppressed" // change classified as noise, snapshot advanced
	OutcomeUnresolved Outcome = "unresolved" // target not observed this run
)

// TargetResult is one target's disposition for a run.
type TargetResult struct {
	Name     string
	Status   Status
	Outcome  Outcome
	Stage    string // failing stage when Status == StatusFailed
	Impact   model.Impact
	RecordID string // set when a new record was admitted
	Err      error
}

// RunReport aggregates a full run.
type RunReport struct {
	RunID      string
	Results    []TargetResult
	Added      int
	Suppressed int
	Breakdown  map[model.Impact]int
}

// Pipeline wires the components for sequential execution.
type Pipeline struct {
	targets    []model.Target
	fetcher    Fetcher
	store      *evidence.Store
	summarizer summarize.Summarizer
	now        func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a Pipeline over the given immutable target list.
func New(targets []model.Target, f Fetcher, s *evidence.Store, sum summarize.Summarizer, opts ...Option) *Pipeline {
	p := &Pipeline{
		targets:    targets,
		fetcher:    f,
		store:      s,
		summarizer: sum,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes every target once. Per-target fetch failures are contained;
// a store write failure is fatal and aborts the run (the store must never be
// left half-written silently). Store and snapshots are flushed per target,
// so an interruption after target k preserves the records of targets 1..k.
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	rep := &RunReport{
		RunID:     newRunToken(),
		Breakdown: make(map[model.Impact]int),
	}

	for _, t := range p.targets {
		res, err := p.processTarget(ctx, t, rep.RunID)
		if err != nil {
			return rep, err
		}
		switch res.Status {
		case StatusOK:
			logging.TargetOK(res.Name, string(res.Outcome), "impact", string(res.Impact))
		case StatusFailed:
			logging.TargetFailed(res.Name, res.Stage, res.Err)
		case StatusSkipped:
			logging.TargetSkipped(res.Name, "disabled")
		}
		if res.RecordID != "" {
			if res.Outcome == OutcomeSuppressed {
				rep.Suppressed++
			} else {
				rep.Added++
				rep.Breakdown[res.Impact]++
			}
		}
		rep.Results = append(rep.Results, res)
	}

	// Materialize the state file even on a run that admitted nothing, so
	// downstream report generation always has an artifact to read.
	if err := p.store.Flush(); err != nil {
		return rep, err
	}
	return rep, nil
}

// processTarget runs the full sequence for one target. Only persistence
// errors propagate; everything else is contained in the TargetResult.
func (p *Pipeline) processTarget(ctx context.Context, t model.Target, runID string) (TargetResult, error) {
	res := TargetResult{Name: t.Name}

	if t.Disabled {
		res.Status = StatusSkipped
		res.Outcome = OutcomeUnresolved
		return res, nil
	}

	raw, err := p.fetcher.Fetch(ctx, t.URL)
	if err != nil {
		res.Status = StatusFailed
		res.Stage = "fetch"
		res.Outcome = OutcomeUnresolved
		res.Err = err
		return res, nil
	}

	normalized := normalize.Apply(t.Kind, raw)

	prior, hasPrior, err := p.store.Snapshot(t.Name)
	if err != nil {
		res.Status = StatusFailed
		res.Stage = "snapshot"
		res.Outcome = OutcomeUnresolved
		res.Err = err
		return res, nil
	}

	if !hasPrior {
		// First observation establishes the baseline and produces no record.
		if err := p.store.UpdateSnapshot(t.Name, normalized); err != nil {
			return res, err
		}
		res.Status = StatusOK
		res.Outcome = OutcomeBaseline
		return res, nil
	}

	excerpt, stats := diffing.Diff(prior, normalized)
	if excerpt == "" {
		res.Status = StatusOK
		res.Outcome = OutcomeUnchanged
		return res, nil
	}

	cl := classify.Classify(t, excerpt, stats)

	summary := ""
	if !cl.Suppressed && (cl.Impact == model.ImpactBreaking || cl.Impact == model.ImpactHigh) {
		if s, err := p.summarizer.Summarize(ctx, summarize.Request{
			Name:    t.Name,
			URL:     t.URL,
			Snippet: excerpt,
			Impact:  cl.Impact,
		}); err != nil {
			// Fail open: the record persists in full with an empty summary.
			slog.Warn("summarization degraded", "name", t.Name, "error", err)
		} else {
			summary = s
		}
	}

	nowUTC := p.now().UTC()
	rec := model.ChangeRecord{
		ID:          evidence.Identify(t.URL, excerpt),
		Impact:      cl.Impact,
		Score:       cl.Score,
		Reasons:     cl.Reasons,
		Name:        t.Name,
		URL:         t.URL,
		Added:       stats.Added,
		Removed:     stats.Removed,
		Churn:       stats.Churn,
		Snippet:     evidence.CompactSnippet(excerpt, classify.Vocabulary(t.Category)),
		SnippetFull: excerpt,
		Summary:     summary,
		Suppressed:  cl.Suppressed,
		PubDate:     nowUTC.Format("Mon, 02 Jan 2006 15:04:05 GMT"),
		TS:          nowUTC.Format(time.RFC3339),
		RunID:       runID,
	}

	admit := !cl.Suppressed || evidence.RetainSuppressed
	admitted := false
	if admit {
		admitted = p.store.Admit(rec)
		p.store.Evict()
		if err := p.store.Flush(); err != nil {
			return res, err
		}
	}

	// The snapshot advances whether the change was adopted, suppressed or
	// already known (duplicate id): the same diff must not re-flag on the
	// next run. Store first, snapshot second: a crash in between is healed
	// by the id dedup when the diff recurs.
	if err := p.store.UpdateSnapshot(t.Name, normalized); err != nil {
		return res, err
	}

	res.Status = StatusOK
	res.Impact = cl.Impact
	if cl.Suppressed {
		res.Outcome = OutcomeSuppressed
	} else {
		res.Outcome = OutcomeChanged
	}
	if admitted {
		res.RecordID = rec.ID
	}
	return res, nil
}

// newRunToken returns the run-correlation identifier shared by every record
// of one execution: 32 lowercase hex characters, freshly random per run.
func newRunToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
