// Package evidence owns the durable change history and the per-target
// snapshots used as diff baselines. It is the only stateful component of the
// pipeline.
package evidence

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/harukimoto/driftwatch/internal/model"
)

const (
	// MaxItems bounds the retained history. Older records are evicted first.
	MaxItems = 50

	// RetainSuppressed keeps suppressed (noise) decisions in the bounded
	// store as an audit trail. They are excluded from every rendered report
	// regardless. Flip to false to stop them competing for history slots.
	RetainSuppressed = true

	stateFileName = "state.json"
	snapshotDir   = "snapshots"
)

// Store is the ordered, newest-first, capacity-bounded change history plus
// the per-target snapshot files. Single-process, no locking: the pipeline is
// strictly sequential.
type Store struct {
	dir     string
	records []model.ChangeRecord
	ids     map[string]bool
}

// Open loads the store rooted at dir, creating the directory layout on first
// use. A malformed existing state file is a fatal error: the store must
// never silently drop history by overwriting what it cannot read.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("evidence: state dir is required")
	}
	if err := os.MkdirAll(filepath.Join(dir, snapshotDir), 0o755); err != nil {
		return nil, fmt.Errorf("evidence: create %s: %w", dir, err)
	}

	s := &Store{dir: dir, ids: make(map[string]bool)}

	statePath := s.statePath()
	data, err := os.ReadFile(statePath)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("evidence: read %s: %w", statePath, err)
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		return nil, fmt.Errorf("evidence: corrupt state %s: %w", statePath, err)
	}
	for _, r := range s.records {
		if r.ID == "" {
			return nil, fmt.Errorf("evidence: corrupt state %s: record without id", statePath)
		}
		if s.ids[r.ID] {
			return nil, fmt.Errorf("evidence: corrupt state %s: duplicate id %s", statePath, r.ID)
		}
		s.ids[r.ID] = true
	}
	return s, nil
}

func (s *Store) statePath() string {
	return filepath.Join(s.dir, stateFileName)
}

// Identify computes the content address for a change: SHA-1 over
// url + "\n" + the pre-compaction snippet, as lowercase hex. Stable across
// runs and independent of display-compaction policy, so the same (url, diff)
// pair always yields the same id.
func Identify(url, snippetFull string) string {
	sum := sha1.Sum([]byte(url + "\n" + snippetFull))
	return hex.EncodeToString(sum[:])
}

// Admit appends the record at the front (newest-first) unless a record with
// the same id already exists, in which case it is a no-op returning false.
// This is the pipeline's exactly-once guarantee.
func (s *Store) Admit(rec model.ChangeRecord) bool {
	if s.ids[rec.ID] {
		return false
	}
	s.records = append([]model.ChangeRecord{rec}, s.records...)
	s.ids[rec.ID] = true
	return true
}

// Evict discards oldest records until the store is at or under capacity.
// Returns the number of records removed.
func (s *Store) Evict() int {
	removed := 0
	for len(s.records) > MaxItems {
		last := s.records[len(s.records)-1]
		delete(s.ids, last.ID)
		s.records = s.records[:len(s.records)-1]
		removed++
	}
	return removed
}

// Records returns a copy of the history, newest first.
func (s *Store) Records() []model.ChangeRecord {
	out := make([]model.ChangeRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of retained records.
func (s *Store) Len() int { return len(s.records) }

// Flush durably writes the record history. The write is atomic (temp file +
// rename), so a crash mid-flush leaves the prior committed state intact.
func (s *Store) Flush() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("evidence: marshal state: %w", err)
	}
	if err := atomicWrite(s.statePath(), append(data, '\n')); err != nil {
		return fmt.Errorf("evidence: flush state: %w", err)
	}
	return nil
}

// Snapshot returns the last-committed normalized text for a target, with
// ok=false when no baseline exists yet.
func (s *Store) Snapshot(name string) (text string, ok bool, err error) {
	data, err := os.ReadFile(s.SnapshotPath(name))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("evidence: read snapshot for %q: %w", name, err)
	}
	return string(data), true, nil
}

// UpdateSnapshot unconditionally overwrites the stored snapshot for a
// target. Called whenever a run adopts or suppresses a change (and on first
// observation); never when the diff was empty.
func (s *Store) UpdateSnapshot(name, normalizedText string) error {
	if err := atomicWrite(s.SnapshotPath(name), []byte(normalizedText)); err != nil {
		return fmt.Errorf("evidence: write snapshot for %q: %w", name, err)
	}
	return nil
}

// SnapshotPath returns the snapshot file for a target display name.
func (s *Store) SnapshotPath(name string) string {
	return filepath.Join(s.dir, snapshotDir, Slug(name)+".txt")
}

// SnapshotDigest returns the SHA-256 of the snapshot file's raw bytes, for
// provenance display in generated reports only, never for identity or
// dedup. Returns "" when no snapshot exists.
func (s *Store) SnapshotDigest(name string) (string, error) {
	data, err := os.ReadFile(s.SnapshotPath(name))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("evidence: digest snapshot for %q: %w", name, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Slug derives the deterministic snapshot file stem from a target display
// name: accent folding, lowercase, whitespace→underscore, everything outside
// [a-z0-9_-] stripped. Collision-resistant enough for a hand-curated target
// list; duplicates are rejected at configuration load anyway.
func Slug(name string) string {
	folded := norm.NFKD.String(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range folded {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining marks left over from NFKD decomposition
		case unicode.IsSpace(r):
			b.WriteByte('_')
		case r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "unnamed"
	}
	return b.String()
}

// atomicWrite writes data to path via a temp file in the same directory,
// fsync and rename.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
