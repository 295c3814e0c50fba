package rank

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lks21c/dining/internal/core/model"
)

type mockLLM struct {
	response string
	err      error
	prompts  []string
}

func (m *mockLLM) Generate(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func samplePlaces() []model.Place {
	return []model.Place{
		{ID: "p-1", Name: "이태원 파스타", Type: model.TypeRestaurant, Category: "양식",
			Description: "데이트하기 좋은 분위기", Lat: 37.534, Lng: 126.994, Rating: 4.5},
		{ID: "p-2", Name: "한남동 카페", Type: model.TypeCafe, Category: "카페",
			Description: "조용한 디저트 카페", Lat: 37.535, Lng: 126.998, Rating: 4.2},
		{ID: "p-3", Name: "용산구청 주차장", Type: model.TypeParking, ParkingType: "공영",
			Lat: 37.532, Lng: 126.990, HourlyRate: 1000, Capacity: 50},
	}
}

func TestRankMapsCompactIDsBack(t *testing.T) {
	llm := &mockLLM{response: `{
		"summary": "용산 데이트 코스",
		"persona": "커플, 차량 이동",
		"courses": [{
			"title": "저녁 코스",
			"stops": [
				{"order": 1, "id": "P2", "type": "parking", "reason": "차량 이동"},
				{"order": 2, "id": "R0", "type": "restaurant", "reason": "분위기"},
				{"order": 3, "id": "C1", "type": "cafe", "reason": "디저트"},
				{"order": 4, "id": "R9", "type": "restaurant", "reason": "없는 ID"}
			],
			"route_summary": "주차 → 식사 → 카페"
		}]
	}`}
	r := New(llm, zap.NewNop())

	rec, warning := r.Rank(context.Background(), "용산 데이트", samplePlaces(), nil)

	assert.Empty(t, warning)
	assert.Equal(t, "커플, 차량 이동", rec.Persona)
	require.Len(t, rec.Courses, 1)
	stops := rec.Courses[0].Stops
	require.Len(t, stops, 3) // unknown compact id dropped
	assert.Equal(t, "p-3", stops[0].ID)
	assert.Equal(t, model.TypeParking, stops[0].Type)
	assert.Equal(t, "p-1", stops[1].ID)
	assert.Equal(t, "p-2", stops[2].ID)
}

func TestRankIncludesAnchorDistance(t *testing.T) {
	llm := &mockLLM{response: `{"persona": "x", "courses": [
		{"stops": [{"order": 1, "id": "R0", "type": "restaurant", "reason": "r"}], "route_summary": "s"}
	]}`}
	r := New(llm, zap.NewNop())
	anchor := &model.Anchor{Lat: 37.532, Lng: 126.990, Name: "용산구청"}

	_, _ = r.Rank(context.Background(), "맛집", samplePlaces(), anchor)

	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "용산구청")
	assert.Regexp(t, `R0\|이태원 파스타.*\|\d+m`, llm.prompts[0])
}

func TestRankFallsBackOnLLMError(t *testing.T) {
	llm := &mockLLM{err: errors.New("context deadline exceeded")}
	r := New(llm, zap.NewNop())

	rec, warning := r.Rank(context.Background(), "파스타 맛집", samplePlaces(), nil)

	assert.NotEmpty(t, warning)
	assert.NotContains(t, warning, "API 키")
	require.NotEmpty(t, rec.Courses)
	require.NotEmpty(t, rec.Courses[0].Stops)
	assert.Equal(t, "p-1", rec.Courses[0].Stops[0].ID) // keyword 파스타 matched
}

func TestRankAuthErrorWarning(t *testing.T) {
	llm := &mockLLM{err: errors.New("status 401 Unauthorized")}
	r := New(llm, zap.NewNop())

	_, warning := r.Rank(context.Background(), "맛집", samplePlaces(), nil)

	assert.Contains(t, warning, "API 키")
}

func TestRankFallsBackOnMalformedJSON(t *testing.T) {
	llm := &mockLLM{response: "죄송합니다, JSON을 만들 수 없습니다"}
	r := New(llm, zap.NewNop())

	rec, warning := r.Rank(context.Background(), "카페", samplePlaces(), nil)

	assert.NotEmpty(t, warning)
	assert.NotEmpty(t, rec.Courses)
}

func TestKeywordFallbackPopularWhenNoOverlap(t *testing.T) {
	rec := keywordFallback("zzz qqq", samplePlaces())

	require.Len(t, rec.Courses, 1)
	stops := rec.Courses[0].Stops
	require.Len(t, stops, 2) // parking excluded from popularity ranking
	assert.Equal(t, "p-1", stops[0].ID)
	assert.Equal(t, "p-2", stops[1].ID)
	assert.Equal(t, "일반 추천", rec.Persona)
}

func TestRankEmptyPlaces(t *testing.T) {
	llm := &mockLLM{}
	r := New(llm, zap.NewNop())

	rec, warning := r.Rank(context.Background(), "맛집", nil, nil)

	assert.Empty(t, warning)
	assert.Empty(t, rec.Courses)
	assert.Empty(t, llm.prompts) // no LLM call for an empty candidate list
}
