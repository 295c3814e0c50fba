package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type mockLLM struct {
	Response string
	Err      error
}

func (m *mockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

const diningcodeListPage = `<html><head>
<script type="application/ld+json">
{
  "@type": "ItemList",
  "itemListElement": [
    {"@type": "Restaurant", "name": "온양집 ", "url": "https://www.diningcode.com/profile?rid=1"},
    {"@type": "Restaurant", "name": "육전식당", "url": "https://www.diningcode.com/profile?rid=2"},
    {"@type": "Restaurant", "name": ""}
  ]
}
</script>
<script type="application/ld+json">not json at all</script>
</head><body></body></html>`

func TestDiningCodeCrawl(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/list.dc", r.URL.Path)
		assert.Equal(t, "강남 맛집", r.URL.Query().Get("query"))
		w.Write([]byte(diningcodeListPage))
	}))
	defer srv.Close()

	d := NewDiningCode(NewFetcher(2*time.Second, 100), 20)
	d.baseURL = srv.URL

	records, err := d.Crawl(context.Background(), "강남 맛집")
	assert.NoError(t, err)
	assert.Len(t, records, 2) // empty name skipped, malformed block skipped
	assert.Equal(t, "온양집", records[0].Name)
	assert.Equal(t, "diningcode", records[0].Source)
	assert.Equal(t, "https://www.diningcode.com/profile?rid=1", records[0].SourceURL)
}

func TestDiningCodeCap(t *testing.T) {
	page := `<script type="application/ld+json">{"itemListElement":[` +
		`{"name":"a1"},{"name":"a2"},{"name":"a3"},{"name":"a4"}]}</script>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	d := NewDiningCode(NewFetcher(2*time.Second, 100), 3)
	d.baseURL = srv.URL

	records, err := d.Crawl(context.Background(), "x")
	assert.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestDiningCodeFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	d := NewDiningCode(NewFetcher(2*time.Second, 100), 20)
	d.baseURL = srv.URL

	records, err := d.Crawl(context.Background(), "x")
	assert.Error(t, err)
	assert.Nil(t, records)
}

const searchResultsPage = `<html><body>
<div class="g">
 <a href="https://www.instagram.com/p/abc/"><h3>이태원 파스타 맛집 모음</h3></a>
 <div class="VwiC3b">#이태원맛집 #강남파스타 둘 다 최고였어요</div>
</div>
<div class="g">
 <a href="https://www.instagram.com/p/def/"><h3>혼밥 <em>국밥</em> 추천</h3></a>
 <div class="VwiC3b">순대국밥 존맛</div>
</div>
<a href="/relative/ignored"><h3>skip me</h3></a>
</body></html>`

func TestWebSearchParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchResultsPage))
	}))
	defer srv.Close()

	ws := NewWebSearch(NewFetcher(2*time.Second, 100))
	ws.baseURL = srv.URL

	results, err := ws.Search(context.Background(), "이태원 맛집")
	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "이태원 파스타 맛집 모음", results[0].Title)
	assert.Equal(t, "https://www.instagram.com/p/abc/", results[0].URL)
	assert.Contains(t, results[0].Snippet, "이태원맛집")
	assert.Equal(t, "혼밥 국밥 추천", results[1].Title) // nested tags stripped
}

func TestInstagramCrawl(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchResultsPage))
	}))
	defer srv.Close()

	ws := NewWebSearch(NewFetcher(2*time.Second, 100))
	ws.baseURL = srv.URL

	llm := &mockLLM{Response: `[{"name":"파스타집","snippet":"분위기 좋음"},{"name":"  "},{"name":"국밥집"}]`}
	a := NewInstagram(ws, llm, 10)

	records, err := a.Crawl(context.Background(), "이태원")
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "파스타집", records[0].Name)
	assert.Equal(t, "instagram", records[0].Source)
	assert.Equal(t, "분위기 좋음", records[0].Snippet)
}

func TestInstagramNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>nothing here</body></html>`))
	}))
	defer srv.Close()

	ws := NewWebSearch(NewFetcher(2*time.Second, 100))
	ws.baseURL = srv.URL

	a := NewInstagram(ws, &mockLLM{Response: "[]"}, 10)
	records, err := a.Crawl(context.Background(), "이태원")
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestInstagramLLMFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchResultsPage))
	}))
	defer srv.Close()

	ws := NewWebSearch(NewFetcher(2*time.Second, 100))
	ws.baseURL = srv.URL

	a := NewInstagram(ws, &mockLLM{Err: errors.New("model unavailable")}, 10)
	_, err := a.Crawl(context.Background(), "이태원")
	assert.Error(t, err)
}
