package listing

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hdnguyen/secondhand-scout/internal/config"
)

// HTMLExtractor extracts candidates using CSS selectors. The price selector
// is searched on the item container's parent, matching the target site's
// markup where the price sits next to the name container.
type HTMLExtractor struct {
	selectors        config.Selectors
	pricePlaceholder string
}

func NewHTMLExtractor(selectors config.Selectors, pricePlaceholder string) *HTMLExtractor {
	if selectors.Item == "" {
		selectors = config.DefaultSelectors
	}
	if selectors.Link == "" {
		selectors.Link = config.DefaultSelectors.Link
	}
	if selectors.Price == "" {
		selectors.Price = config.DefaultSelectors.Price
	}
	if pricePlaceholder == "" {
		pricePlaceholder = config.DefaultPricePlaceholder
	}
	return &HTMLExtractor{selectors: selectors, pricePlaceholder: pricePlaceholder}
}

func (e *HTMLExtractor) Extract(raw string) ([]Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse listing page: %w", err)
	}

	candidates := []Candidate{}
	doc.Find(e.selectors.Item).Each(func(_ int, item *goquery.Selection) {
		link := item.Find(e.selectors.Link).First()
		href, ok := link.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return
		}

		// A missing price element never drops the candidate.
		price := strings.TrimSpace(item.Parent().Find(e.selectors.Price).First().Text())
		if price == "" {
			price = e.pricePlaceholder
		}

		candidates = append(candidates, Candidate{
			Link:  href,
			Name:  strings.TrimSpace(link.Text()),
			Price: price,
		})
	})
	return candidates, nil
}
