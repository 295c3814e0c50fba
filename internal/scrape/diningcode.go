package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/lks21c/dining/internal/core/model"
)

// jsonLDRe pulls embedded JSON-LD blocks out of a list page. The schema
// blocks are the one stable part of the markup.
var jsonLDRe = regexp.MustCompile(`(?is)<script[^>]*type="application/ld\+json"[^>]*>(.*?)</script>`)

// DiningCode scrapes diningcode.com list pages. It is the reference
// structured adapter: records carry only a name and profile URL; coordinates
// come later from the geocoding cascade.
type DiningCode struct {
	fetcher *Fetcher
	baseURL string
	maxOut  int
}

func NewDiningCode(fetcher *Fetcher, maxPerSource int) *DiningCode {
	if maxPerSource <= 0 {
		maxPerSource = 20
	}
	return &DiningCode{
		fetcher: fetcher,
		baseURL: "https://www.diningcode.com",
		maxOut:  maxPerSource,
	}
}

func (d *DiningCode) Name() string { return "diningcode" }

func (d *DiningCode) Crawl(ctx context.Context, searchTerm string) ([]model.RawRecord, error) {
	listURL := fmt.Sprintf("%s/list.dc?query=%s", d.baseURL, url.QueryEscape(searchTerm))
	html, err := d.fetcher.Get(ctx, listURL)
	if err != nil {
		return nil, fmt.Errorf("diningcode fetch: %w", err)
	}

	records := extractJSONLDPlaces(html, d.Name())
	if len(records) > d.maxOut {
		records = records[:d.maxOut]
	}
	return records, nil
}

func extractJSONLDPlaces(html, source string) []model.RawRecord {
	var records []model.RawRecord

	for _, m := range jsonLDRe.FindAllStringSubmatch(html, -1) {
		var doc struct {
			ItemListElement []struct {
				Name string `json:"name"`
				URL  string `json:"url"`
			} `json:"itemListElement"`
		}
		if err := json.Unmarshal([]byte(m[1]), &doc); err != nil {
			continue // malformed block yields zero records, not an error
		}

		for _, item := range doc.ItemListElement {
			name := strings.TrimSpace(item.Name)
			if name == "" {
				continue
			}
			records = append(records, model.RawRecord{
				Name:      name,
				Source:    source,
				SourceURL: item.URL,
			})
		}
	}

	return records
}
