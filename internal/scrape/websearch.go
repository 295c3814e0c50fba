package scrape

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
)

// WebResult is one organic search result: the raw material for the
// LLM-extraction adapters.
type WebResult struct {
	Title   string
	URL     string
	Snippet string
}

var (
	resultRe  = regexp.MustCompile(`(?is)<a[^>]+href="(https?://[^"]+)"[^>]*>.{0,200}?<h3[^>]*>(.*?)</h3>`)
	snippetRe = regexp.MustCompile(`(?is)<div[^>]*class="[^"]*(?:VwiC3b|snippet)[^"]*"[^>]*>(.*?)</div>`)
	tagRe     = regexp.MustCompile(`(?s)<[^>]+>`)
)

// WebSearch runs a query against a search results page and extracts organic
// results. Parsing is regex-based and tolerant: anything that does not look
// like a result is skipped, and a page with no recognizable results is just
// an empty slice.
type WebSearch struct {
	fetcher *Fetcher
	baseURL string
}

func NewWebSearch(fetcher *Fetcher) *WebSearch {
	return &WebSearch{
		fetcher: fetcher,
		baseURL: "https://www.google.com/search",
	}
}

func (w *WebSearch) Search(ctx context.Context, query string) ([]WebResult, error) {
	u := fmt.Sprintf("%s?q=%s&hl=ko&num=10", w.baseURL, url.QueryEscape(query))
	page, err := w.fetcher.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("web search fetch: %w", err)
	}
	return parseResults(page), nil
}

func parseResults(page string) []WebResult {
	var results []WebResult

	matches := resultRe.FindAllStringSubmatchIndex(page, -1)
	for i, m := range matches {
		href := page[m[2]:m[3]]
		title := cleanText(page[m[4]:m[5]])
		if title == "" || !strings.HasPrefix(href, "http") {
			continue
		}

		// The snippet sits between this result and the next one.
		tail := page[m[1]:]
		if i+1 < len(matches) {
			tail = page[m[1]:matches[i+1][0]]
		}
		snippet := ""
		if sm := snippetRe.FindStringSubmatch(tail); sm != nil {
			snippet = cleanText(sm[1])
		}

		results = append(results, WebResult{Title: title, URL: href, Snippet: snippet})
	}

	return results
}

func cleanText(s string) string {
	s = tagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(s)
}
