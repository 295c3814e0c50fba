package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lks21c/dining/internal/config"
)

const naverGeocodeURL = "https://naveropenapi.apigw.ntruss.com/map-geocode/v2/geocode"

// Geocoder resolves free-text queries to coordinates through a cascade:
// static landmark table, then the Naver geocoding API, then Nominatim. Every
// tier swallows its own failures; total failure yields nil, never an error.
type Geocoder struct {
	cfg        config.GeocodeConfig
	httpClient *http.Client
	logger     *zap.Logger

	// Endpoint overrides for tests.
	naverURL     string
	naverRevURL  string
	nominatimURL string
}

func New(cfg config.GeocodeConfig, logger *zap.Logger) *Geocoder {
	return &Geocoder{
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: 8 * time.Second},
		logger:       logger,
		naverURL:     naverGeocodeURL,
		naverRevURL:  naverReverseURL,
		nominatimURL: strings.TrimRight(cfg.NominatimBaseURL, "/") + "/search",
	}
}

// Geocode runs the cascade. A landmark hit never touches the network.
func (g *Geocoder) Geocode(ctx context.Context, query string) *Result {
	if r := lookupLandmark(query); r != nil {
		return r
	}

	if r := g.naverGeocode(ctx, query); r != nil {
		return r
	}

	if r := g.nominatimGeocode(ctx, query); r != nil {
		return r
	}

	g.logger.Warn("geocode failed for query", zap.String("query", query))
	return nil
}

// lookupLandmark tries an exact match, then substring containment in either
// direction. Queries containing digits skip the substring pass so full street
// addresses with house numbers never false-positive on a landmark key.
func lookupLandmark(query string) *Result {
	if r, ok := landmarks[query]; ok {
		return &r
	}
	if strings.ContainsAny(query, "0123456789") {
		return nil
	}
	for key, r := range landmarks {
		if strings.Contains(query, key) || strings.Contains(key, query) {
			v := r
			return &v
		}
	}
	return nil
}

func (g *Geocoder) naverGeocode(ctx context.Context, query string) *Result {
	if g.cfg.NaverClientID == "" || g.cfg.NaverClientSecret == "" {
		return nil
	}

	u := fmt.Sprintf("%s?query=%s", g.naverURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("X-NCP-APIGW-API-KEY-ID", g.cfg.NaverClientID)
	req.Header.Set("X-NCP-APIGW-API-KEY", g.cfg.NaverClientSecret)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Debug("naver geocode request failed", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var body struct {
		Addresses []struct {
			X            string `json:"x"`
			Y            string `json:"y"`
			RoadAddress  string `json:"roadAddress"`
			JibunAddress string `json:"jibunAddress"`
		} `json:"addresses"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil
	}
	if len(body.Addresses) == 0 {
		return nil
	}

	addr := body.Addresses[0]
	lat, errY := strconv.ParseFloat(addr.Y, 64)
	lng, errX := strconv.ParseFloat(addr.X, 64)
	if errY != nil || errX != nil {
		return nil
	}

	formatted := addr.RoadAddress
	if formatted == "" {
		formatted = addr.JibunAddress
	}
	if formatted == "" {
		formatted = query
	}

	return &Result{Lat: lat, Lng: lng, Address: formatted}
}

func (g *Geocoder) nominatimGeocode(ctx context.Context, query string) *Result {
	params := url.Values{}
	params.Set("q", query+" 서울")
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("countrycodes", "kr")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.nominatimURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", g.cfg.UserAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Debug("nominatim request failed", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var body []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil
	}
	if len(body) == 0 {
		return nil
	}

	lat, errLat := strconv.ParseFloat(body[0].Lat, 64)
	lng, errLon := strconv.ParseFloat(body[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return nil
	}

	addr := body[0].DisplayName
	if addr == "" {
		addr = query
	}

	return &Result{Lat: lat, Lng: lng, Address: addr}
}
