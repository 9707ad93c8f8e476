package normalize

import (
	"sort"
	"strings"

	"github.com/mmcdole/gofeed"
	"golang.org/x/text/unicode/norm"

	"github.com/harukimoto/driftwatch/internal/model"
)

// maxEntryBody bounds the retained entry body so verbose feeds do not drown
// the diff in prose.
const maxEntryBody = 280

// Feed canonicalizes RSS and Atom documents. Only a fixed per-entry field
// subset is retained (title, link, id, date, bounded body); feed-level
// volatile metadata (build timestamps, self links, generator tags) is
// never rendered at all. Entries are sorted by (link, id, title), so pure
// reordering of otherwise-identical entries yields identical output.
type Feed struct{}

func (Feed) Kind() model.DocumentKind { return model.KindFeed }

type feedEntry struct {
	title string
	link  string
	id    string
	date  string
	body  string
}

func (Feed) Normalize(raw string) string {
	parsed, err := gofeed.NewParser().ParseString(raw)
	if err != nil || parsed == nil {
		return raw
	}

	entries := make([]feedEntry, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		if it == nil {
			continue
		}
		body := it.Description
		if body == "" {
			body = it.Content
		}
		date := it.Published
		if date == "" {
			date = it.Updated
		}
		entries = append(entries, feedEntry{
			title: foldLine(it.Title),
			link:  strings.TrimSpace(it.Link),
			id:    strings.TrimSpace(it.GUID),
			date:  strings.TrimSpace(date),
			body:  truncateRunes(foldLine(body), maxEntryBody),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.link != b.link {
			return a.link < b.link
		}
		if a.id != b.id {
			return a.id < b.id
		}
		return a.title < b.title
	})

	var b strings.Builder
	for _, e := range entries {
		b.WriteString("entry\n")
		b.WriteString("  title: " + e.title + "\n")
		b.WriteString("  link: " + e.link + "\n")
		b.WriteString("  id: " + e.id + "\n")
		b.WriteString("  date: " + e.date + "\n")
		b.WriteString("  body: " + e.body + "\n")
	}
	return b.String()
}

// foldLine NFKC-normalizes text and collapses all internal whitespace runs
// (including newlines) to single spaces, yielding one stable line.
func foldLine(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
