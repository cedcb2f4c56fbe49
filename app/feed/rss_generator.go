package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"
)

// RSSGenerator renders a digest as an RSS 2.0 feed, one item per entry.
type RSSGenerator struct {
	siteURL string
	version string
}

func NewRSSGenerator(siteURL, version string) *RSSGenerator {
	return &RSSGenerator{
		siteURL: siteURL,
		version: version,
	}
}

func (g *RSSGenerator) Run(digest Digest) ([]byte, error) {
	generatedAt := digest.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", "News Digest", 4)
	g.writeElement(&buf, "link", g.siteURL, 4)
	g.writeElement(&buf, "description", fmt.Sprintf("Key facts from %d articles", len(digest.Entries)), 4)
	g.writeElement(&buf, "lastBuildDate", generatedAt.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", "News-Digest/"+g.version, 4)

	for _, entry := range digest.Entries {
		g.writeItem(&buf, entry, generatedAt)
	}

	buf.WriteString("  </channel>\n</rss>\n")

	return buf.Bytes(), nil
}

func (g *RSSGenerator) writeItem(buf *bytes.Buffer, entry Summary, generatedAt time.Time) {
	buf.WriteString("    <item>\n")

	if entry.URL != "" {
		buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", isURL(entry.URL)))
		xml.EscapeText(buf, []byte(entry.URL))
		buf.WriteString("</guid>\n")
	}

	g.writeElement(buf, "title", cmp.Or(entry.Title, entry.URL), 6)
	g.writeElement(buf, "link", entry.URL, 6)

	description := strings.Join(entry.Facts, "\n")
	if description == "" {
		description = "No summary available"
	}
	g.writeElement(buf, "description", description, 6)

	if len(entry.Facts) > 0 {
		// Facts are escaped before they enter the CDATA section
		buf.WriteString("      <content:encoded><![CDATA[<ul>")
		for _, fact := range entry.Facts {
			buf.WriteString("<li>")
			buf.WriteString(strings.ReplaceAll(html.EscapeString(fact), "]]>", "]]&gt;"))
			buf.WriteString("</li>")
		}
		buf.WriteString("</ul>]]></content:encoded>\n")
	}

	g.writeElement(buf, "pubDate", generatedAt.Format(time.RFC1123Z), 6)
	g.writeElement(buf, "category", cmp.Or(entry.FeedTitle, entry.FeedName), 6)

	buf.WriteString("    </item>\n")
}

// writeElement writes an XML element with proper escaping
func (g *RSSGenerator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	buf.WriteString(strings.Repeat(" ", indent))
	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
