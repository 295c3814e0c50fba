package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lks21c/dining/internal/core/common"
	"github.com/lks21c/dining/internal/core/model"
)

// Seoul bounding box used to reject hallucinated parking coordinates.
const (
	seoulLatMin = 37.45
	seoulLatMax = 37.70
	seoulLngMin = 126.76
	seoulLngMax = 127.18
)

const parkingPrompt = `당신은 서울시 공영주차장 정보를 정확하게 제공하는 전문가입니다.
반드시 JSON 배열로만 응답하세요. 다른 텍스트 없이 JSON만 응답하세요.

[
  {
    "name": "주차장 이름",
    "address": "서울특별시 OO구 OO로 123",
    "lat": 37.xxxx,
    "lng": 126.xxxx 또는 127.xxxx,
    "capacity": 주차면수(숫자, 모르면 50),
    "hourlyRate": 시간당요금(원, 숫자, 모르면 1000),
    "operatingHours": "HH:MM~HH:MM",
    "type": "공영" 또는 "노상" 또는 "노외"
  }
]

규칙:
- 해당 지역의 공영주차장, 공공주차장을 최대한 많이 알려주세요
- 구청 주차장, 공원 주차장, 주민센터 주차장, 체육관 주차장, 역 근처 공영주차장 등 포함
- address는 도로명주소 "서울특별시 OO구 OO로 123" 형식
- lat, lng는 실제 위치의 정확한 좌표 (소수점 4자리)
- 서울 위도 범위: 37.45~37.70, 경도 범위: 126.76~127.18
- 반경 1km 이내에 있는 주차장을 우선적으로 알려주세요

"%s" 근방 1km 이내에 있는 공영주차장 목록을 모두 알려주세요.`

type parkingItem struct {
	Name           string  `json:"name"`
	Address        string  `json:"address"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	Capacity       int     `json:"capacity"`
	HourlyRate     int     `json:"hourlyRate"`
	OperatingHours string  `json:"operatingHours"`
	Type           string  `json:"type"`
}

// discoverParking asks the LLM for public parking lots near the keyword.
// Entries outside Seoul's coordinate envelope are discarded; a failed call
// just yields no lots.
func (a *Aggregator) discoverParking(ctx context.Context, keyword string) []model.Place {
	raw, err := a.LLM.Generate(ctx, fmt.Sprintf(parkingPrompt, keyword))
	if err != nil {
		a.Logger.Warn("parking discovery failed", zap.Error(err))
		return nil
	}

	items, err := common.ParseJSONArray[parkingItem](raw)
	if err != nil {
		a.Logger.Warn("parking discovery returned malformed JSON", zap.Error(err))
		return nil
	}

	var lots []model.Place
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		if it.Lat < seoulLatMin || it.Lat > seoulLatMax ||
			it.Lng < seoulLngMin || it.Lng > seoulLngMax {
			continue
		}
		lots = append(lots, model.Place{
			Name:           name,
			Address:        it.Address,
			Lat:            it.Lat,
			Lng:            it.Lng,
			Type:           model.TypeParking,
			ParkingType:    it.Type,
			Capacity:       it.Capacity,
			HourlyRate:     it.HourlyRate,
			OperatingHours: it.OperatingHours,
		})
	}
	return lots
}
