package scrape

import (
	"context"

	"github.com/lks21c/dining/internal/core/model"
)

// Adapter turns one provider's payload for a search term into the common raw
// record shape. Implementations keep all provider-specific parsing behind
// this boundary; a failed crawl returns (nil, err) and the orchestrator
// records it as a non-fatal source error.
type Adapter interface {
	Name() string
	Crawl(ctx context.Context, searchTerm string) ([]model.RawRecord, error)
}
