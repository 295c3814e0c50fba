package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lks21c/dining/internal/classify"
	"github.com/lks21c/dining/internal/config"
	"github.com/lks21c/dining/internal/core"
	"github.com/lks21c/dining/internal/core/geo"
	"github.com/lks21c/dining/internal/geocode"
	"github.com/lks21c/dining/internal/llm"
	"github.com/lks21c/dining/internal/rank"
	"github.com/lks21c/dining/internal/scrape"
	"github.com/lks21c/dining/internal/store"
)

type Server struct {
	Aggregator *core.Aggregator
	Store      *store.Store
	Logger     *zap.Logger
}

func NewServer(logger *zap.Logger) *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Warn("could not load config file, using defaults",
			zap.String("path", cfgPath), zap.Error(err))
		cfg = config.Default()
	}
	applyEnvOverrides(cfg)

	st, err := store.Open(cfg.DB, logger)
	if err != nil {
		logger.Fatal("failed to open place store", zap.Error(err))
	}

	llmClient, err := llm.NewClient(context.Background(), cfg.LLM)
	if err != nil {
		logger.Fatal("failed to initialize LLM client", zap.Error(err))
	}

	geocoder := geocode.New(cfg.Geocode, logger)

	fetcher := scrape.NewFetcher(
		time.Duration(cfg.Crawl.RequestTimeoutSecs)*time.Second,
		cfg.Crawl.RatePerSec,
	)
	adapters := []scrape.Adapter{
		scrape.NewDiningCode(fetcher, cfg.Crawl.MaxPerSource),
		scrape.NewInstagram(scrape.NewWebSearch(fetcher), llmClient, cfg.Crawl.MaxPerSource),
	}

	agg := core.NewAggregator(
		llmClient,
		geocoder,
		st,
		classify.New(llmClient, logger),
		rank.New(llmClient, logger),
		adapters,
		cfg.Crawl,
		logger,
	)

	return &Server{Aggregator: agg, Store: st, Logger: logger}
}

func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("NAVER_CLIENT_ID"); v != "" {
		cfg.Geocode.NaverClientID = v
	}
	if v := os.Getenv("NAVER_CLIENT_SECRET"); v != "" {
		cfg.Geocode.NaverClientSecret = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DB.Type = "postgres"
		cfg.DB.DSN = v
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "ollama"
		cfg.LLM.Model = "gpt-oss:latest"
		cfg.LLM.BaseURL = "http://localhost:11434"
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	api := r.Group("/api")
	api.POST("/search", s.Search)
	api.POST("/crawl", s.Crawl)
	api.GET("/places", s.Places)

	return r
}

type SearchRequest struct {
	Query  string      `json:"query"`
	Bounds *geo.Bounds `json:"bounds"`
}

func (s *Server) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	result, err := s.Aggregator.Search(c.Request.Context(), req.Query, req.Bounds)
	if errors.Is(err, core.ErrNoLocation) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "위치를 확인할 수 없습니다. 지도에서 검색하거나 위치를 포함해 주세요.",
		})
		return
	}
	if err != nil {
		s.Logger.Error("search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "검색 처리 중 오류가 발생했습니다."})
		return
	}

	c.JSON(http.StatusOK, result)
}

type CrawlRequest struct {
	Keyword string      `json:"keyword"`
	Bounds  *geo.Bounds `json:"bounds"`
}

func (s *Server) Crawl(c *gin.Context) {
	var req CrawlRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keyword required"})
		return
	}

	result, err := s.Aggregator.Crawl(c.Request.Context(), req.Keyword, req.Bounds)
	if err != nil {
		s.Logger.Error("crawl failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "크롤링 중 오류가 발생했습니다."})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Places returns every place known for the requested viewport: seed rows,
// parking lots and cached crawled entries.
func (s *Server) Places(c *gin.Context) {
	bounds, ok := boundsFromQuery(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bounds"})
		return
	}

	places, err := s.Aggregator.Places(c.Request.Context(), bounds)
	if err != nil {
		s.Logger.Error("place listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "장소 조회 중 오류가 발생했습니다."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"places": places, "totalCount": len(places)})
}

// boundsFromQuery parses optional swLat/swLng/neLat/neLng query params.
// All four must be present to form bounds; none at all means "everything."
func boundsFromQuery(c *gin.Context) (*geo.Bounds, bool) {
	raw := [4]string{
		c.Query("swLat"), c.Query("swLng"), c.Query("neLat"), c.Query("neLng"),
	}
	if raw[0] == "" && raw[1] == "" && raw[2] == "" && raw[3] == "" {
		return nil, true
	}

	var vals [4]float64
	for i, s := range raw {
		if s == "" {
			return nil, false
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		vals[i] = v
	}
	return &geo.Bounds{SWLat: vals[0], SWLng: vals[1], NELat: vals[2], NELng: vals[3]}, true
}
