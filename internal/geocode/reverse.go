package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"go.uber.org/zap"
)

const naverReverseURL = "https://naveropenapi.apigw.ntruss.com/map-reversegeocode/v2/gc"

// Area is the two administrative levels a reverse lookup resolves to:
// district (구) and sub-district (동).
type Area struct {
	Gu   string `json:"gu"`
	Dong string `json:"dong"`
}

var guRe = regexp.MustCompile(`([\x{AC00}-\x{D7A3}]+구)`)

// ReverseGeocode maps coordinates to district names via the Naver reverse
// API, falling back to the nearest landmark when the API is unavailable or
// unconfigured. Returns nil only when both paths produce nothing.
func (g *Geocoder) ReverseGeocode(ctx context.Context, lat, lng float64) *Area {
	if a := g.naverReverse(ctx, lat, lng); a != nil {
		return a
	}
	return nearestLandmarkArea(lat, lng)
}

func (g *Geocoder) naverReverse(ctx context.Context, lat, lng float64) *Area {
	if g.cfg.NaverClientID == "" || g.cfg.NaverClientSecret == "" {
		return nil
	}

	u := fmt.Sprintf("%s?coords=%f,%f&orders=legalcode&output=json", g.naverRevURL, lng, lat)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("X-NCP-APIGW-API-KEY-ID", g.cfg.NaverClientID)
	req.Header.Set("X-NCP-APIGW-API-KEY", g.cfg.NaverClientSecret)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Debug("naver reverse geocode failed", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var body struct {
		Results []struct {
			Region struct {
				Area2 struct {
					Name string `json:"name"`
				} `json:"area2"`
				Area3 struct {
					Name string `json:"name"`
				} `json:"area3"`
			} `json:"region"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil
	}
	if len(body.Results) == 0 {
		return nil
	}

	gu := body.Results[0].Region.Area2.Name
	dong := body.Results[0].Region.Area3.Name
	if gu == "" && dong == "" {
		return nil
	}
	return &Area{Gu: gu, Dong: dong}
}

// nearestLandmarkArea scans the landmark table for the closest entry by
// squared lat/lng distance. Euclidean is fine at city scale; this is a label
// fallback, not navigation.
func nearestLandmarkArea(lat, lng float64) *Area {
	var (
		nearest string
		minDist = -1.0
	)

	for name, r := range landmarks {
		dLat := r.Lat - lat
		dLng := r.Lng - lng
		dist := dLat*dLat + dLng*dLng
		if minDist < 0 || dist < minDist {
			minDist = dist
			nearest = name
		}
	}

	if nearest == "" {
		return nil
	}

	landmark := landmarks[nearest]
	gu := ""
	if m := guRe.FindStringSubmatch(landmark.Address); m != nil {
		gu = m[1]
	}

	// The landmark name itself is the closest thing to a sub-district label.
	return &Area{Gu: gu, Dong: nearest}
}
