package listing

import (
	"testing"

	"github.com/hdnguyen/secondhand-scout/internal/config"
)

const samplePage = `
<div class="row">
  <div class="product-item">
    <div class="product-detail-name">
      <a href="/san-pham/iphone-13-cu">iPhone 13 cũ 128GB</a>
    </div>
    <span class="product-detail-price">6.500.000₫</span>
  </div>
  <div class="product-item">
    <div class="product-detail-name">
      <a href="https://2handland.com/san-pham/loa-bluetooth">Loa bluetooth JBL</a>
    </div>
  </div>
  <div class="product-item">
    <div class="product-detail-name">
      <a>Khối không có link</a>
    </div>
  </div>
</div>
`

func TestExtractCandidates(t *testing.T) {
	extractor := NewHTMLExtractor(config.DefaultSelectors, "Liên hệ")

	candidates, err := extractor.Extract(samplePage)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d: %+v", len(candidates), candidates)
	}

	first := candidates[0]
	if first.Link != "/san-pham/iphone-13-cu" || first.Name != "iPhone 13 cũ 128GB" || first.Price != "6.500.000₫" {
		t.Fatalf("unexpected first candidate: %+v", first)
	}

	// Missing price element degrades to the placeholder, never drops the item.
	second := candidates[1]
	if second.Link != "https://2handland.com/san-pham/loa-bluetooth" || second.Price != "Liên hệ" {
		t.Fatalf("unexpected second candidate: %+v", second)
	}
}

func TestExtractEmptyPage(t *testing.T) {
	extractor := NewHTMLExtractor(config.DefaultSelectors, "Liên hệ")

	candidates, err := extractor.Extract("<html><body><p>no products</p></body></html>")
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("expected no candidates, got %+v", candidates)
	}
}

func TestExtractCustomSelectors(t *testing.T) {
	extractor := NewHTMLExtractor(config.Selectors{
		Item:  "li.card",
		Link:  "a.title",
		Price: "em.cost",
	}, "unknown")

	page := `<ul><li class="card"><a class="title" href="/item/1">Bàn gỗ</a></li><em class="cost">200k</em></ul>`
	candidates, err := extractor.Extract(page)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Price != "200k" || candidates[0].Name != "Bàn gỗ" {
		t.Fatalf("unexpected candidates: %+v", candidates)
	}
}
