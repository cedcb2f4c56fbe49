package feed

import (
	"bytes"
	"cmp"
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/digest.html.tmpl
var templateFS embed.FS

var digestTemplate = template.Must(template.ParseFS(templateFS, "templates/digest.html.tmpl"))

const (
	dateLayout      = "Monday, January 2, 2006"
	timestampLayout = "2006-01-02 15:04 MST"
)

type Generator struct {
	dashboardURL string
	version      string
}

func NewGenerator(dashboardURL, version string) *Generator {
	return &Generator{
		dashboardURL: dashboardURL,
		version:      version,
	}
}

type pageData struct {
	Date         string
	Generated    string
	GeneratedISO string
	DashboardURL string
	Version      string
	Entries      []cardData
}

type cardData struct {
	Title       string
	Facts       []string
	URL         string
	SourceLink  string
	SourceLabel string
}

// Run renders the digest page. Entries are rendered in the given order.
func (g *Generator) Run(digest Digest) ([]byte, error) {
	generatedAt := digest.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}
	generatedAt = generatedAt.In(time.Local)

	data := pageData{
		Date:         generatedAt.Format(dateLayout),
		Generated:    generatedAt.Format(timestampLayout),
		GeneratedISO: generatedAt.Format(time.RFC3339),
		DashboardURL: g.dashboardURL,
		Version:      g.version,
		Entries:      make([]cardData, 0, len(digest.Entries)),
	}

	for _, entry := range digest.Entries {
		data.Entries = append(data.Entries, cardData{
			Title:       cmp.Or(entry.Title, entry.URL),
			Facts:       entry.Facts,
			URL:         entry.URL,
			SourceLink:  cmp.Or(entry.FeedLink, entry.URL),
			SourceLabel: cmp.Or(entry.FeedTitle, entry.FeedName, "Source"),
		})
	}

	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render digest: %w", err)
	}

	return buf.Bytes(), nil
}
