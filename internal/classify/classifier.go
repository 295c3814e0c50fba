package classify

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/lks21c/dining/internal/core/common"
	"github.com/lks21c/dining/internal/core/model"
	"github.com/lks21c/dining/internal/llm"
)

// Batches stay small so a single prompt never blows the model's payload
// limit; 30 entities per call matches what the upstream data sizes need.
const batchSize = 30

const systemPrompt = `당신은 한국 음식점/가게를 분류하는 전문가입니다.
각 가게를 아래 4가지 중 하나로 분류하세요:

- "restaurant": 일반 음식점, 맛집 (한식, 중식, 일식, 양식, 분식, 고기, 해산물 등)
- "cafe": 카페, 커피숍, 차 전문점, 디저트카페, 브런치카페
- "bar": 술집, 주점, 이자카야, 포차, 호프, 와인바, 칵테일바, 펍
- "bakery": 빵집, 베이커리, 제과점, 도넛, 케이크숍, 베이글

분류 힌트:
- 이름에 "커피", "카페", "coffee" → cafe
- 이름에 "빵", "베이글", "베이커리", "bakery" → bakery
- 이름에 "포차", "주점", "이자카야", "펍", "bar" → bar

JSON 배열로만 응답하세요:
[{"name":"가게명","type":"restaurant|cafe|bar|bakery"}]

분류할 가게 목록:
%s`

// Entity is the compact shape sent to the oracle.
type Entity struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Tags        string `json:"tags"`
	Description string `json:"desc"`
}

// Classifier assigns a business-type label to each entity via the LLM.
type Classifier struct {
	llm    llm.LLMClient
	logger *zap.Logger
}

func New(client llm.LLMClient, logger *zap.Logger) *Classifier {
	return &Classifier{llm: client, logger: logger}
}

// Classify returns a name→type map. The map may be partial: a failed batch
// contributes nothing and is logged, never aborting the remaining batches.
// Callers default unclassified entities to restaurant.
func (c *Classifier) Classify(ctx context.Context, entities []Entity) map[string]string {
	result := make(map[string]string)
	if len(entities) == 0 {
		return result
	}

	for start := 0; start < len(entities); start += batchSize {
		end := start + batchSize
		if end > len(entities) {
			end = len(entities)
		}
		c.classifyBatch(ctx, entities[start:end], result)
	}

	return result
}

func (c *Classifier) classifyBatch(ctx context.Context, batch []Entity, result map[string]string) {
	items := make([]Entity, len(batch))
	for i, e := range batch {
		if r := []rune(e.Description); len(r) > 60 {
			e.Description = string(r[:60])
		}
		items[i] = e
	}

	payload, err := json.Marshal(items)
	if err != nil {
		c.logger.Warn("classify batch encode failed", zap.Error(err))
		return
	}

	response, err := c.llm.Generate(ctx, fmt.Sprintf(systemPrompt, payload))
	if err != nil {
		c.logger.Warn("classify batch failed", zap.Int("size", len(batch)), zap.Error(err))
		return
	}

	parsed, err := common.ParseJSONArray[struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}](response)
	if err != nil {
		c.logger.Warn("classify batch parse failed", zap.Error(err))
		return
	}

	for _, p := range parsed {
		switch p.Type {
		case model.TypeRestaurant, model.TypeCafe, model.TypeBar, model.TypeBakery:
			result[p.Name] = p.Type
		}
	}
}
