package scrape

import (
	"context"
	"fmt"
	"strings"

	"github.com/lks21c/dining/internal/core/common"
	"github.com/lks21c/dining/internal/core/model"
	"github.com/lks21c/dining/internal/llm"
)

const instagramExtractPrompt = `아래 Instagram 검색 결과에서 언급된 맛집 이름을 추출하세요.
해시태그에서 맛집 이름을 찾을 수 있습니다.
JSON 배열로 반환: [{"name": "가게이름", "snippet": "관련 설명"}]
맛집 이름만 추출하고 다른 텍스트는 포함하지 마세요.
맛집을 찾을 수 없으면 빈 배열 []을 반환하세요.

%s`

// Instagram mines post snippets surfaced by a site-restricted web search and
// has the LLM pull place names out of the free text. It never yields
// coordinates; the geocoding cascade fills those in downstream.
type Instagram struct {
	search *WebSearch
	llm    llm.LLMClient
	maxOut int
}

func NewInstagram(search *WebSearch, client llm.LLMClient, maxPerSource int) *Instagram {
	if maxPerSource <= 0 {
		maxPerSource = 10
	}
	return &Instagram{search: search, llm: client, maxOut: maxPerSource}
}

func (a *Instagram) Name() string { return "instagram" }

func (a *Instagram) Crawl(ctx context.Context, searchTerm string) ([]model.RawRecord, error) {
	results, err := a.search.Search(ctx, fmt.Sprintf("site:instagram.com %s 맛집", searchTerm))
	if err != nil {
		return nil, fmt.Errorf("instagram search: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	limit := len(results)
	if limit > 5 {
		limit = 5
	}
	var sb strings.Builder
	for i, r := range results[:limit] {
		if i > 0 {
			sb.WriteString("\n---\n")
		}
		fmt.Fprintf(&sb, "게시물: %s\n설명: %s\nURL: %s", r.Title, r.Snippet, r.URL)
	}

	response, err := a.llm.Generate(ctx, fmt.Sprintf(instagramExtractPrompt, sb.String()))
	if err != nil {
		return nil, fmt.Errorf("instagram extraction: %w", err)
	}

	items, err := common.ParseJSONArray[struct {
		Name    string `json:"name"`
		Snippet string `json:"snippet"`
	}](response)
	if err != nil {
		return nil, fmt.Errorf("instagram extraction parse: %w", err)
	}

	var records []model.RawRecord
	for _, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			continue
		}
		records = append(records, model.RawRecord{
			Name:      strings.TrimSpace(item.Name),
			Source:    a.Name(),
			Snippet:   item.Snippet,
			SourceURL: results[0].URL,
		})
		if len(records) == a.maxOut {
			break
		}
	}

	return records, nil
}
