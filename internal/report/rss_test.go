package report

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/harukimoto/driftwatch/internal/model"
)

func TestWriteRSS_WellFormedAndEscaped(t *testing.T) {
	rec := sampleRecord("id-1", "News & Updates", model.ImpactHigh)
	rec.Snippet = "+<lastBuildDate> \"quoted\" & more"

	var b strings.Builder
	err := WriteRSS(&b, []model.ChangeRecord{rec}, "driftwatch <alerts>", "https://example.com?a=1&b=2", "desc")
	if err != nil {
		t.Fatalf("WriteRSS: %v", err)
	}
	out := b.String()

	// Escaped content must not leak raw markup.
	if strings.Contains(out, "<lastBuildDate>") {
		t.Fatalf("snippet markup not escaped:\n%s", out)
	}
	if !strings.Contains(out, "News &amp; Updates") {
		t.Fatalf("ampersand not escaped:\n%s", out)
	}
	if !strings.Contains(out, "[High]") {
		t.Fatalf("impact tag missing from item title:\n%s", out)
	}
	if !strings.Contains(out, `<guid isPermaLink="false">id-1</guid>`) {
		t.Fatalf("guid missing:\n%s", out)
	}

	// The whole document must parse as XML.
	var doc struct {
		Channel struct {
			Title string `xml:"title"`
			Items []struct {
				Title   string `xml:"title"`
				GUID    string `xml:"guid"`
				PubDate string `xml:"pubDate"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	if err := xml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not well-formed XML: %v\n%s", err, out)
	}
	if doc.Channel.Title != "driftwatch <alerts>" {
		t.Fatalf("channel title = %q", doc.Channel.Title)
	}
	if len(doc.Channel.Items) != 1 || doc.Channel.Items[0].GUID != "id-1" {
		t.Fatalf("items = %+v", doc.Channel.Items)
	}
	if doc.Channel.Items[0].PubDate != rec.PubDate {
		t.Fatalf("pubDate = %q", doc.Channel.Items[0].PubDate)
	}
}

func TestWriteRSS_EmptyRecordList(t *testing.T) {
	var b strings.Builder
	if err := WriteRSS(&b, nil, "t", "u", "d"); err != nil {
		t.Fatalf("WriteRSS: %v", err)
	}
	if strings.Contains(b.String(), "<item>") {
		t.Fatalf("empty feed contains items:\n%s", b.String())
	}
}

func TestXMLEscape(t *testing.T) {
	if got := xmlEscape(`<a href="x">&'</a>`); got != "&lt;a href=&quot;x&quot;&gt;&amp;&apos;&lt;/a&gt;" {
		t.Fatalf("xmlEscape = %q", got)
	}
}
