package feed

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultMaxChars = 12000

	minArticleChars = 500
	prefixKeyChars  = 120
	blockSelector   = "p, h1, h2, h3, li, blockquote"
	readabilityName = "readability"
)

var removedSelectors = []string{
	"script",
	"style",
	"noscript",
	"header",
	"footer",
	"nav",
	"aside",
	".advert",
	".ads",
	".newsletter",
	".subscribe",
	".paywall",
	".promo",
}

type ContentExtractor struct {
	maxChars            int
	readabilityFallback bool
	scorers             []Scorer
}

func NewContentExtractor(maxChars int, readabilityFallback bool) *ContentExtractor {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &ContentExtractor{
		maxChars:            maxChars,
		readabilityFallback: readabilityFallback,
		scorers:             DefaultScorers(),
	}
}

// Run turns raw article HTML into ordered plain text blocks separated by
// blank lines, capped at the character budget.
func (e *ContentExtractor) Run(data []byte, sourceURL string) (*Article, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ExtractionError{URL: sourceURL, Reason: "HTML data is empty"}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ExtractionError{URL: sourceURL, Reason: "failed to parse HTML", Err: err}
	}

	doc.Find(strings.Join(removedSelectors, ", ")).Remove()

	container, scorer := e.pickContainer(doc)

	var blocks []string
	container.Find(blockSelector).Each(func(_ int, sel *goquery.Selection) {
		blocks = append(blocks, sel.Text())
	})

	text := joinBlocks(blocks)
	chars := utf8.RuneCountInString(text)

	if chars < minArticleChars && e.readabilityFallback {
		slog.Debug("Extraction too short, trying readability", "url", sourceURL, "chars", chars, "scorer", scorer)

		if fallback, ok := e.readabilityText(data, sourceURL); ok {
			text = fallback
			chars = utf8.RuneCountInString(text)
			scorer = readabilityName
		}
	}

	if chars < minArticleChars {
		return nil, &ExtractionError{
			URL:    sourceURL,
			Chars:  chars,
			Reason: fmt.Sprintf("extracted text too short (%d chars)", chars),
		}
	}

	text = truncateRunes(text, e.maxChars)

	return &Article{
		SourceURL:   sourceURL,
		Text:        text,
		ApproxChars: utf8.RuneCountInString(text),
		Scorer:      scorer,
	}, nil
}

func (e *ContentExtractor) pickContainer(doc *goquery.Document) (*goquery.Selection, string) {
	for _, scorer := range e.scorers {
		sel, score := scorer.Score(doc)
		if sel != nil && score > scorer.Threshold() {
			return sel, scorer.Name()
		}
	}
	return doc.Selection, "document"
}

func (e *ContentExtractor) readabilityText(data []byte, sourceURL string) (string, bool) {
	pageURL, _ := url.Parse(sourceURL)

	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		slog.Debug("Readability extraction failed", "url", sourceURL, "error", err)
		return "", false
	}

	text := joinBlocks(strings.Split(article.TextContent, "\n"))
	if utf8.RuneCountInString(text) < minArticleChars {
		return "", false
	}

	return text, true
}

// joinBlocks normalizes each block and drops blocks whose leading prefix was
// already emitted.
func joinBlocks(blocks []string) string {
	seen := make(map[string]struct{}, len(blocks))
	lines := make([]string, 0, len(blocks))

	for _, block := range blocks {
		line := strings.Join(strings.Fields(norm.NFC.String(block)), " ")
		if line == "" {
			continue
		}

		key := truncateRunes(line, prefixKeyChars)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		lines = append(lines, line)
	}

	return strings.TrimSpace(strings.Join(lines, "\n\n"))
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
