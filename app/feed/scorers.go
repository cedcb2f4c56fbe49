package feed

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Scorer proposes a container for the article body. A scorer wins when its
// score is strictly greater than its threshold.
type Scorer interface {
	Name() string
	Threshold() int
	Score(doc *goquery.Document) (*goquery.Selection, int)
}

var articleSelectors = []string{
	"article",
	"[itemprop='articleBody']",
	".article__content",
	".article-content",
	".single-article__content",
	".entry-content",
	".post-content",
	".content__article-body",
	".td-post-content",
	".c-article-content",
	".l-article__body",
}

const selectorThreshold = 200

// DefaultScorers returns the ranked scorer chain: known article containers
// first, then the largest div, then the whole body.
func DefaultScorers() []Scorer {
	scorers := make([]Scorer, 0, len(articleSelectors)+2)
	for _, selector := range articleSelectors {
		scorers = append(scorers, &SelectorScorer{Selector: selector})
	}
	return append(scorers, &LargestBlockScorer{Tag: "div"}, &BodyScorer{})
}

// SelectorScorer scores the first element matching Selector.
type SelectorScorer struct {
	Selector string
}

func (s *SelectorScorer) Name() string {
	return "selector:" + s.Selector
}

func (s *SelectorScorer) Threshold() int {
	return selectorThreshold
}

func (s *SelectorScorer) Score(doc *goquery.Document) (*goquery.Selection, int) {
	sel := doc.Find(s.Selector).First()
	if sel.Length() == 0 {
		return nil, 0
	}
	return sel, textLength(sel)
}

// LargestBlockScorer picks the Tag element with the most text. Ties keep the
// earliest element in document order.
type LargestBlockScorer struct {
	Tag string
}

func (s *LargestBlockScorer) Name() string {
	return "largest-block"
}

func (s *LargestBlockScorer) Threshold() int {
	return 0
}

func (s *LargestBlockScorer) Score(doc *goquery.Document) (*goquery.Selection, int) {
	var best *goquery.Selection
	bestLen := 0

	doc.Find(s.Tag).Each(func(_ int, sel *goquery.Selection) {
		if n := textLength(sel); n > bestLen {
			bestLen = n
			best = sel
		}
	})

	return best, bestLen
}

// BodyScorer always wins.
type BodyScorer struct{}

func (s *BodyScorer) Name() string {
	return "body"
}

func (s *BodyScorer) Threshold() int {
	return -1
}

func (s *BodyScorer) Score(doc *goquery.Document) (*goquery.Selection, int) {
	body := doc.Find("body").First()
	if body.Length() == 0 {
		return doc.Selection, textLength(doc.Selection)
	}
	return body, textLength(body)
}

func textLength(sel *goquery.Selection) int {
	return utf8.RuneCountInString(strings.TrimSpace(sel.Text()))
}
