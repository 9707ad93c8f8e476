// Package normalize turns raw source documents into a stable textual form
// so that ordering and formatting noise never registers as a change.
//
// Every normalizer is a pure text→text function. On any internal parse
// failure it returns its input unchanged: a broken document must degrade to
// noisy diffing, never abort the pipeline.
package normalize

import (
	"strings"

	"github.com/harukimoto/driftwatch/internal/model"
)

// Normalizer canonicalizes one document kind.
type Normalizer interface {
	Kind() model.DocumentKind
	Normalize(raw string) string
}

// For returns the Normalizer for a document kind. The kind set is closed and
// validated at configuration load; anything unexpected falls through to the
// opaque passthrough.
func For(kind model.DocumentKind) Normalizer {
	switch kind {
	case model.KindFeed:
		return Feed{}
	case model.KindOpenAPI:
		return Document{}
	case model.KindHTML:
		return HTMLText{}
	default:
		return Opaque{}
	}
}

// Apply runs the kind's normalizer and then the universal line cleanup.
func Apply(kind model.DocumentKind, raw string) string {
	return Clean(For(kind).Normalize(raw))
}

// Clean applies the format-independent normalization shared by every kind:
// CRLF→LF and per-line trailing-whitespace removal.
func Clean(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}

// Opaque is the explicit passthrough variant for targets with no declared
// kind. Such targets are diffed on raw line content and are therefore more
// exposed to incidental noise.
type Opaque struct{}

func (Opaque) Kind() model.DocumentKind { return model.KindOpaque }

func (Opaque) Normalize(raw string) string { return raw }
