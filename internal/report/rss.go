package report

import (
	"io"
	"strings"
	"text/template"

	"github.com/harukimoto/driftwatch/internal/model"
)

// rssTemplate emits RSS 2.0. Record fields pass through xmlesc, so snippet
// content cannot break the document.
const rssTemplate = `<?xml version="1.0" encoding="UTF-8" ?>
<rss version="2.0">
<channel>
<title>{{xmlesc .Title}}</title>
<link>{{xmlesc .Link}}</link>
<description>{{xmlesc .Description}}</description>
{{- range .Items}}
<item>
<title>[{{.Impact}}] {{xmlesc .Name}}</title>
<link>{{xmlesc .URL}}</link>
<guid isPermaLink="false">{{.ID}}</guid>
<description>{{xmlesc .Snippet}}</description>
<pubDate>{{.PubDate}}</pubDate>
</item>
{{- end}}
</channel>
</rss>
`

var rssTmpl = template.Must(template.New("rss").Funcs(template.FuncMap{
	"xmlesc": xmlEscape,
}).Parse(rssTemplate))

type rssData struct {
	Title       string
	Link        string
	Description string
	Items       []model.ChangeRecord
}

// WriteRSS renders the given records as an RSS feed. Callers pass the
// already-filtered slice (Important or Visible).
func WriteRSS(w io.Writer, records []model.ChangeRecord, title, siteURL, description string) error {
	return rssTmpl.Execute(w, rssData{
		Title:       title,
		Link:        siteURL,
		Description: description,
		Items:       records,
	})
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func xmlEscape(s string) string {
	return xmlReplacer.Replace(s)
}
