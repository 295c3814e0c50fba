package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lks21c/dining/internal/classify"
	"github.com/lks21c/dining/internal/config"
	"github.com/lks21c/dining/internal/core"
	"github.com/lks21c/dining/internal/core/model"
	"github.com/lks21c/dining/internal/geocode"
	"github.com/lks21c/dining/internal/rank"
	"github.com/lks21c/dining/internal/scrape"
	"github.com/lks21c/dining/internal/store"
)

// mockLLM serves location extraction, search terms and parking discovery;
// ranking and classification calls fail so the deterministic fallbacks kick
// in and handler tests stay self-contained.
type mockLLM struct {
	location string
}

func (m *mockLLM) Generate(_ context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "지명/장소명을 추출"):
		if m.location == "" {
			return "NONE", nil
		}
		return m.location, nil
	case strings.Contains(prompt, "검색 키워드로 변환"):
		return "이태원 맛집", nil
	case strings.Contains(prompt, "공영주차장"):
		return "[]", nil
	}
	return "", errors.New("LLM unavailable")
}

type staticGeocoder struct{}

func (staticGeocoder) Geocode(_ context.Context, query string) *geocode.Result {
	if query == "이태원" {
		return &geocode.Result{Lat: 37.534, Lng: 126.994, Address: "서울 용산구 이태원동"}
	}
	return nil
}

type staticAdapter struct {
	records []model.RawRecord
}

func (staticAdapter) Name() string { return "diningcode" }

func (a staticAdapter) Crawl(context.Context, string) ([]model.RawRecord, error) {
	return a.records, nil
}

func newTestServer(t *testing.T, llmClient *mockLLM, adapters ...scrape.Adapter) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	st, err := store.Open(config.DBConfig{Type: "sqlite", DSN: ":memory:"}, logger)
	require.NoError(t, err)

	agg := core.NewAggregator(
		llmClient,
		staticGeocoder{},
		st,
		classify.New(llmClient, logger),
		rank.New(llmClient, logger),
		adapters,
		config.CrawlConfig{CacheMaxAgeHours: 24, SearchRadiusKm: 1.5},
		logger,
	)
	return &Server{Aggregator: agg, Store: st, Logger: logger}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func lat(v float64) *float64 { return &v }

func TestSearchHandler(t *testing.T) {
	adapter := staticAdapter{records: []model.RawRecord{
		{Name: "이태원 파스타", Source: "diningcode", Lat: lat(37.534), Lng: lat(126.994),
			Description: "이태원 맛집"},
	}}
	srv := newTestServer(t, &mockLLM{location: "이태원"}, adapter)
	r := srv.SetupRouter()

	w := doJSON(t, r, http.MethodPost, "/api/search", gin.H{"query": "이태원 맛집"})
	require.Equal(t, http.StatusOK, w.Code)

	var result model.SearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.NotNil(t, result.Center)
	assert.Equal(t, "이태원", result.Center.Name)
	assert.NotEmpty(t, result.Courses)
	// ranking LLM is down in this harness, so the keyword fallback warned
	assert.NotEmpty(t, result.Warning)
}

func TestSearchHandlerMissingQuery(t *testing.T) {
	srv := newTestServer(t, &mockLLM{})
	r := srv.SetupRouter()

	w := doJSON(t, r, http.MethodPost, "/api/search", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchHandlerUnresolvableLocation(t *testing.T) {
	srv := newTestServer(t, &mockLLM{})
	r := srv.SetupRouter()

	w := doJSON(t, r, http.MethodPost, "/api/search", gin.H{"query": "혼밥하기 좋은 곳"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "위치를 확인할 수 없습니다")
}

func TestCrawlHandler(t *testing.T) {
	adapter := staticAdapter{records: []model.RawRecord{
		{Name: "이태원 파스타", Source: "diningcode", Lat: lat(37.534), Lng: lat(126.994)},
	}}
	srv := newTestServer(t, &mockLLM{}, adapter)
	r := srv.SetupRouter()

	w := doJSON(t, r, http.MethodPost, "/api/crawl", gin.H{"keyword": "이태원"})
	require.Equal(t, http.StatusOK, w.Code)

	var result core.CrawlResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "이태원", result.Keyword)
	assert.Equal(t, 1, result.PlaceCount)
}

func TestCrawlHandlerMissingKeyword(t *testing.T) {
	srv := newTestServer(t, &mockLLM{})
	r := srv.SetupRouter()

	w := doJSON(t, r, http.MethodPost, "/api/crawl", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlacesHandler(t *testing.T) {
	srv := newTestServer(t, &mockLLM{})
	r := srv.SetupRouter()

	lots := []model.Place{{Name: "용산구청 주차장", Lat: 37.5324, Lng: 126.9906}}
	require.Equal(t, 1, srv.Store.SaveParkingLots(context.Background(), lots))

	w := doJSON(t, r, http.MethodGet, "/api/places", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Places []model.Place `json:"places"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Places, 1)
	assert.Equal(t, "용산구청 주차장", body.Places[0].Name)
}

func TestPlacesHandlerBoundsFilter(t *testing.T) {
	srv := newTestServer(t, &mockLLM{})
	r := srv.SetupRouter()

	lots := []model.Place{
		{Name: "용산구청 주차장", Lat: 37.5324, Lng: 126.9906},
		{Name: "잠실 주차장", Lat: 37.5133, Lng: 127.1001},
	}
	require.Equal(t, 2, srv.Store.SaveParkingLots(context.Background(), lots))

	w := doJSON(t, r, http.MethodGet,
		"/api/places?swLat=37.52&swLng=126.98&neLat=37.55&neLng=127.00", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Places []model.Place `json:"places"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Places, 1)
	assert.Equal(t, "용산구청 주차장", body.Places[0].Name)
}

func TestPlacesHandlerPartialBounds(t *testing.T) {
	srv := newTestServer(t, &mockLLM{})
	r := srv.SetupRouter()

	w := doJSON(t, r, http.MethodGet, "/api/places?swLat=37.52", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
