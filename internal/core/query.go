package core

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const locationPrompt = `사용자 요청에서 지명/장소명을 추출하세요.
"~에", "~에서", "~근처", "~앞", "~주변" 등의 위치 표현에서 장소명만 추출합니다.
위치 표현이 없으면 "NONE"을 반환합니다.
장소명만 반환, 다른 텍스트 금지.

예시:
- "용산구청에 차대고 갈만한 맛집" → "용산구청"
- "홍대 근처 카페" → "홍대"
- "강남역 주변 맛집" → "강남역"
- "혼밥하기 좋은 조용한 곳" → "NONE"
- "4인 가족 이태원 맛집" → "이태원"

사용자 요청: `

const searchTermsPrompt = `사용자의 맛집 검색 요청을 크롤링용 한국어 검색 키워드로 변환하세요.
위치 + 음식 종류/분위기를 포함한 간결한 검색어를 만드세요.

예시:
- "용산구청 근처 이탈리안 맛집" → "용산 이탈리안 맛집"
- "강남역 혼밥하기 좋은 곳" → "강남역 혼밥 맛집"
- "홍대 데이트 분위기 좋은 레스토랑" → "홍대 데이트 레스토랑"

검색 키워드만 반환하세요. 다른 텍스트 금지.

사용자 요청: `

// extractLocation pulls a concrete place name out of the query, or returns
// the empty string when the query carries no location expression.
func (a *Aggregator) extractLocation(ctx context.Context, query string) string {
	raw, err := a.LLM.Generate(ctx, locationPrompt+query)
	if err != nil {
		a.Logger.Warn("location extraction failed", zap.Error(err))
		return ""
	}
	loc := strings.Trim(strings.TrimSpace(raw), `"`)
	if loc == "" || strings.EqualFold(loc, "NONE") {
		return ""
	}
	return loc
}

// searchTerms rewrites the query into a compact crawl keyword. The original
// query is a perfectly usable fallback, so failures are silent downgrades.
func (a *Aggregator) searchTerms(ctx context.Context, query string) string {
	raw, err := a.LLM.Generate(ctx, searchTermsPrompt+query)
	if err != nil {
		a.Logger.Warn("search term generation failed", zap.Error(err))
		return query
	}
	terms := strings.Trim(strings.TrimSpace(raw), `"`)
	if terms == "" {
		return query
	}
	return terms
}
