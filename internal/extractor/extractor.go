// Package extractor pulls raw field text out of a rendered document using
// the catalog's CSS selectors. It only ever reads text content; pages that
// encode prices in attributes are out of scope.
package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/priceduck/pricewatch/internal/models"
	"github.com/priceduck/pricewatch/internal/scrape"
)

var priceLikePattern = regexp.MustCompile(`[$€£₹]?\s*\d+(?:[.,]\d{2})?`)

// Extractor captures raw field text from rendered HTML. Stateless.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract captures the configured fields from the document. When a selector
// matches several elements the first in document order is used; zero matches
// leave the field empty. A missing price fails the extraction with
// SelectorNotFound after the period-parent fallback has been tried.
func (e *Extractor) Extract(content string, selectors models.FieldSelectors) (*models.RawFieldCapture, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, scrape.Wrap(scrape.ReasonParseError, err)
	}

	capture := &models.RawFieldCapture{
		Price:    directText(doc, selectors.Price),
		Currency: directText(doc, selectors.Currency),
		Period:   directText(doc, selectors.Period),
		PlanName: directText(doc, selectors.PlanName),
	}

	// Some pages inject the amount into the period element's container after
	// render, leaving the configured price node empty. The parent text is a
	// usable capture when it looks price-like.
	if capture.Price == "" && capture.Period != "" && selectors.Period != "" {
		if parent := periodParentText(doc, selectors.Period); priceLikePattern.MatchString(parent) {
			capture.Price = parent
		}
	}

	if capture.Price == "" {
		return nil, scrape.Errorf(scrape.ReasonSelectorNotFound, "price selector %q matched no element with text", selectors.Price)
	}

	return capture, nil
}

// directText returns the collapsed text of the first element matching the
// selector, counting only the element's own text nodes, not descendants.
func directText(doc *goquery.Document, selector string) string {
	if selector == "" {
		return ""
	}

	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return ""
	}

	var b strings.Builder
	sel.Contents().Each(func(_ int, node *goquery.Selection) {
		if goquery.NodeName(node) == "#text" {
			b.WriteString(node.Text())
		}
	})

	return collapse(b.String())
}

func periodParentText(doc *goquery.Document, periodSelector string) string {
	parent := doc.Find(periodSelector).First().Parent()
	if parent.Length() == 0 {
		return ""
	}
	return collapse(parent.Text())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
