package rank

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/lks21c/dining/internal/core/common"
	"github.com/lks21c/dining/internal/core/geo"
	"github.com/lks21c/dining/internal/core/model"
	"github.com/lks21c/dining/internal/llm"
)

const systemPrompt = `당신은 한국 외출 플래너 AI 어시스턴트입니다.
사용자의 자연어 요청을 분석하여 맛집, 카페, 주차장을 통합 추천하고 최적 동선의 코스를 제안합니다.
%s
역할:
1. 사용자 맥락 파싱 (누구와, 목적, 분위기, 예산, 위치)
2. 사용자의 모든 조건을 AND로 결합하여 필터링:
   - 위치 조건: 주어진 장소 목록은 이미 위치 필터링됨
   - 대상 조건: 누구와 가는지에 맞는 분위기/가격대 선택
   - 목적 조건: 차로 이동 → 주차장 필수, 데이트 → 분위기 좋은 곳
3. 각 조건을 모두 만족하는 장소만 추천 (조건에 맞지 않으면 추천하지 않음)
4. 방문 순서 제안 (주차 → 식사 → 카페 등)
5. 각 장소의 추천 이유에 어떤 조건을 충족하는지 명시

응답은 반드시 다음 JSON 형식으로:
{
  "summary": "전체 추천 한 줄 요약",
  "persona": "사용자 맥락 요약 (예: 40대 부부, 용산구청 근처, 차량 이동)",
  "courses": [
    {
      "title": "코스 이름",
      "stops": [
        { "order": 1, "id": "P1", "type": "parking", "reason": "추천 이유 (어떤 조건 충족)" },
        { "order": 2, "id": "R3", "type": "restaurant", "reason": "추천 이유" },
        { "order": 3, "id": "C2", "type": "cafe", "reason": "추천 이유" }
      ],
      "route_summary": "주차 → 도보 5분 → 이탈리안 디너 → 도보 3분 → 카페"
    }
  ]
}

규칙:
- 코스는 1~2개, 코스당 3~5개 장소
- 차로 이동하는 경우 주차장을 첫 번째로 추천
- type은 반드시 "restaurant", "cafe", "bar", "bakery", "parking" 중 하나
- id는 입력된 장소 목록의 ID를 그대로 사용
- JSON만 응답, 다른 텍스트 금지
- 조건에 맞는 장소가 부족하면 가장 가까운 대안을 추천하되, 이유에 "대안" 명시`

const anchorInstruction = `
앵커 위치: %s (%.4f, %.4f)
- 각 장소까지의 거리(m)가 데이터에 포함되어 있습니다.
- 앵커 기준으로 최소 이동 동선을 구성하세요.
- 걸어서 이동 가능한 범위(도보 15분, ~1km)를 우선하세요.
`

// Ranker turns a candidate place list and a free-text query into ordered
// recommendation courses via an LLM, with a deterministic keyword fallback
// when the call fails.
type Ranker struct {
	llm    llm.LLMClient
	logger *zap.Logger
}

func New(client llm.LLMClient, logger *zap.Logger) *Ranker {
	return &Ranker{llm: client, logger: logger}
}

type llmResponse struct {
	Summary string `json:"summary"`
	Persona string `json:"persona"`
	Courses []struct {
		Title        string             `json:"title"`
		Stops        []model.CourseStop `json:"stops"`
		RouteSummary string             `json:"route_summary"`
	} `json:"courses"`
}

// Rank returns the recommendation plus a user-visible warning. The warning is
// empty when the LLM responded; on failure the keyword fallback fills the
// courses and the warning says whether the error looked like a credential
// problem or a transient one.
func (r *Ranker) Rank(ctx context.Context, query string, places []model.Place, anchor *model.Anchor) (model.Recommendation, string) {
	if len(places) == 0 {
		return model.Recommendation{}, ""
	}

	idMap := make(map[string]*model.Place, len(places))
	lines := make([]string, len(places))
	for i := range places {
		p := &places[i]
		cid := compactID(p.Type, i)
		idMap[cid] = p
		lines[i] = encodePlace(cid, p, anchor)
	}

	prompt := buildPrompt(query, lines, anchor)

	raw, err := r.llm.Generate(ctx, prompt)
	if err != nil {
		r.logger.Warn("ranking LLM call failed, using keyword fallback", zap.Error(err))
		return keywordFallback(query, places), warningFor(err)
	}

	parsed, err := common.ParseJSON[llmResponse](raw)
	if err != nil {
		r.logger.Warn("ranking LLM returned malformed JSON, using keyword fallback", zap.Error(err))
		return keywordFallback(query, places), warningFor(err)
	}

	rec := model.Recommendation{Summary: parsed.Summary, Persona: parsed.Persona}
	for _, c := range parsed.Courses {
		course := model.Course{Title: c.Title, RouteSummary: c.RouteSummary}
		for _, stop := range c.Stops {
			p, ok := idMap[stop.ID]
			if !ok {
				continue
			}
			stop.ID = p.ID
			stop.Type = p.Type
			course.Stops = append(course.Stops, stop)
		}
		if len(course.Stops) > 0 {
			rec.Courses = append(rec.Courses, course)
		}
	}

	if len(rec.Courses) == 0 {
		return keywordFallback(query, places), "추천 결과가 비어 있어 키워드 기반으로 대체했습니다."
	}
	return rec, ""
}

func buildPrompt(query string, lines []string, anchor *model.Anchor) string {
	anchorPart := ""
	if anchor != nil {
		anchorPart = fmt.Sprintf(anchorInstruction, anchor.Name, anchor.Lat, anchor.Lng)
	}
	var b strings.Builder
	fmt.Fprintf(&b, systemPrompt, anchorPart)
	b.WriteString("\n\n장소 목록:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n사용자 요청: ")
	b.WriteString(query)
	return b.String()
}

func compactID(placeType string, index int) string {
	prefix := "R"
	switch placeType {
	case model.TypeCafe:
		prefix = "C"
	case model.TypeBar:
		prefix = "B"
	case model.TypeBakery:
		prefix = "K"
	case model.TypeParking:
		prefix = "P"
	}
	return fmt.Sprintf("%s%d", prefix, index)
}

// encodePlace produces the compact pipe-delimited line the prompt consumes,
// one place per line to keep token cost low.
func encodePlace(id string, p *model.Place, anchor *model.Anchor) string {
	distStr := ""
	if anchor != nil {
		d := geo.DistanceMeters(anchor.Lat, anchor.Lng, p.Lat, p.Lng)
		distStr = fmt.Sprintf("|%dm", int(math.Round(d)))
	}

	if p.Type == model.TypeParking {
		return fmt.Sprintf("%s|%s|%s|%d원/시|%d대|%s%s",
			id, p.Name, p.ParkingType, p.HourlyRate, p.Capacity, p.OperatingHours, distStr)
	}

	desc := p.Description
	if r := []rune(desc); len(r) > 40 {
		desc = string(r[:40])
	}
	return fmt.Sprintf("%s|%s|%s|%s|★%.1f|리뷰%d%s",
		id, p.Name, p.Category, desc, p.Rating, p.ReviewCount, distStr)
}

// warningFor distinguishes credential problems from transient ones so the UI
// can suggest the right remedy.
func warningFor(err error) string {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "401") || strings.Contains(msg, "403") ||
		strings.Contains(msg, "api key") || strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "authentication") {
		return "추천 AI 인증에 실패하여 키워드 기반 결과를 표시합니다. API 키 설정을 확인하세요."
	}
	return "추천 AI 호출에 실패하여 키워드 기반 결과를 표시합니다. 잠시 후 다시 시도하세요."
}

// keywordFallback scores candidates by token overlap between the query and
// the place's text fields. Places with no overlap lose to a plain top-rated
// pick that excludes parking lots.
func keywordFallback(query string, places []model.Place) model.Recommendation {
	keywords := strings.Fields(strings.ToLower(query))

	type scored struct {
		place *model.Place
		score int
	}
	ranked := make([]scored, 0, len(places))
	for i := range places {
		p := &places[i]
		text := strings.ToLower(strings.Join([]string{
			p.Name, p.Description, p.Category, p.Tags, p.ParkingType, p.OperatingHours,
		}, " "))
		s := 0
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				s++
			}
		}
		if s > 0 {
			ranked = append(ranked, scored{place: p, score: s})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}

	if len(ranked) == 0 {
		return popularFallback(places)
	}

	course := model.Course{Title: "키워드 추천"}
	names := make([]string, 0, len(ranked))
	for i, s := range ranked {
		course.Stops = append(course.Stops, model.CourseStop{
			Order:  i + 1,
			ID:     s.place.ID,
			Type:   s.place.Type,
			Reason: matchedKeywords(query, s.place),
		})
		names = append(names, s.place.Name)
	}
	course.RouteSummary = strings.Join(names, " → ")

	return model.Recommendation{Persona: query, Courses: []model.Course{course}}
}

func popularFallback(places []model.Place) model.Recommendation {
	eligible := make([]model.Place, 0, len(places))
	for _, p := range places {
		if p.Type != model.TypeParking {
			eligible = append(eligible, p)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool { return eligible[i].Rating > eligible[j].Rating })
	if len(eligible) > 3 {
		eligible = eligible[:3]
	}
	if len(eligible) == 0 {
		return model.Recommendation{}
	}

	course := model.Course{Title: "인기 추천"}
	names := make([]string, 0, len(eligible))
	for i, p := range eligible {
		reason := "인기 맛집"
		if p.Type == model.TypeCafe {
			reason = "인기 카페"
		}
		course.Stops = append(course.Stops, model.CourseStop{
			Order: i + 1, ID: p.ID, Type: p.Type, Reason: reason,
		})
		names = append(names, p.Name)
	}
	course.RouteSummary = strings.Join(names, " → ")

	return model.Recommendation{Persona: "일반 추천", Courses: []model.Course{course}}
}

func matchedKeywords(query string, p *model.Place) string {
	text := strings.ToLower(p.Name + " " + p.Description)
	var hits []string
	for _, kw := range strings.Fields(strings.ToLower(query)) {
		if strings.Contains(text, kw) {
			hits = append(hits, kw)
		}
	}
	if len(hits) == 0 {
		return "조건 근접 대안"
	}
	return "키워드 매칭: " + strings.Join(hits, ", ")
}
