package dedupe

import (
	"github.com/lks21c/dining/internal/core/geo"
	"github.com/lks21c/dining/internal/core/model"
)

// Two same-named records further apart than this are distinct places (chain
// branches that both got geocoded).
const samePlaceMaxDistanceM = 200

// SamePlace decides whether a raw record observes the entity. Names must
// match after normalization; when both sides carry coordinates the points
// must additionally be within 200 m. A side with missing coordinates passes
// on the name match alone, which keeps partially-geocoded duplicates from
// splitting.
func SamePlace(e *model.MergedEntity, r *model.RawRecord) bool {
	if NormalizeName(e.Name) != NormalizeName(r.Name) {
		return false
	}
	if e.HasCoords() && r.Lat != nil && r.Lng != nil {
		return geo.DistanceMeters(*e.Lat, *e.Lng, *r.Lat, *r.Lng) <= samePlaceMaxDistanceM
	}
	return true
}

// Deduplicate groups raw records into merged entities. Each record is matched
// against existing entities in insertion order and merged into the first hit;
// the linear scan is O(n²) but batches are a few dozen records per request.
// Input order is significant: the first-seen record becomes the base of its
// entity and wins field ties, so callers wanting reproducible output must
// feed a deterministic ordering.
func Deduplicate(records []model.RawRecord) []model.MergedEntity {
	entities := make([]*model.MergedEntity, 0, len(records))

	for i := range records {
		r := &records[i]

		var match *model.MergedEntity
		for _, e := range entities {
			if SamePlace(e, r) {
				match = e
				break
			}
		}

		if match == nil {
			entities = append(entities, newEntity(r))
			continue
		}
		merge(match, r)
	}

	out := make([]model.MergedEntity, len(entities))
	for i, e := range entities {
		out[i] = *e
	}
	return out
}

func newEntity(r *model.RawRecord) *model.MergedEntity {
	return &model.MergedEntity{
		Name:        r.Name,
		Category:    r.Category,
		Description: r.Description,
		Address:     r.Address,
		Lat:         r.Lat,
		Lng:         r.Lng,
		Rating:      r.Rating,
		ReviewCount: r.ReviewCount,
		Tags:        r.Tags,
		Sources:     []model.SourceAttribution{attribution(r)},
	}
}

// merge folds a duplicate record into an existing entity. Sources accumulate
// (first writer per provider wins); identity fields backfill only when the
// entity is still missing a value.
func merge(e *model.MergedEntity, r *model.RawRecord) {
	seen := false
	for _, s := range e.Sources {
		if s.Source == r.Source {
			seen = true
			break
		}
	}
	if !seen {
		e.Sources = append(e.Sources, attribution(r))
	}

	if e.Lat == nil && r.Lat != nil {
		e.Lat = r.Lat
	}
	if e.Lng == nil && r.Lng != nil {
		e.Lng = r.Lng
	}
	if e.Address == "" {
		e.Address = r.Address
	}
	if e.Category == "" {
		e.Category = r.Category
	}
	if e.Rating == nil && r.Rating != nil {
		e.Rating = r.Rating
	}
	if e.ReviewCount == nil && r.ReviewCount != nil {
		e.ReviewCount = r.ReviewCount
	}
	if e.Description == "" {
		e.Description = r.Description
	}
	if e.Tags == "" {
		e.Tags = r.Tags
	}
}

func attribution(r *model.RawRecord) model.SourceAttribution {
	return model.SourceAttribution{
		Source:      r.Source,
		SourceURL:   r.SourceURL,
		Rating:      r.Rating,
		ReviewCount: r.ReviewCount,
		Snippet:     r.Snippet,
		Metadata:    r.Metadata,
	}
}
