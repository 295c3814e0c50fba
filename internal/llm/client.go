package llm

import (
	"context"
)

// LLMClient is the minimal contract the oracles (classification, ranking)
// and the query location extractor depend on.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
