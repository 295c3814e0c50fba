package model

// RawRecord is one provider's raw observation of a place, produced by a
// source adapter and consumed exactly once by the dedup engine.
type RawRecord struct {
	Name        string   `json:"name"`
	Category    string   `json:"category,omitempty"`
	Description string   `json:"description,omitempty"`
	Address     string   `json:"address,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount *int     `json:"review_count,omitempty"`
	Source      string   `json:"source"`
	SourceURL   string   `json:"source_url,omitempty"`
	Snippet     string   `json:"snippet,omitempty"`
	Tags        string   `json:"tags,omitempty"` // comma separated, e.g. "청국장, 주물럭"
	Metadata    string   `json:"metadata,omitempty"` // opaque JSON, e.g. {"score": 87.5}
}

// SourceAttribution is a single provider's contribution to a merged entity.
type SourceAttribution struct {
	Source      string   `json:"source"`
	SourceURL   string   `json:"source_url,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount *int     `json:"review_count,omitempty"`
	Snippet     string   `json:"snippet,omitempty"`
	Metadata    string   `json:"metadata,omitempty"`
}

// MergedEntity is the deduplicated, canonical view of a place for one
// aggregation run. Identity fields come from the first-seen record and are
// backfilled from later duplicates; Sources holds at most one attribution per
// distinct provider.
type MergedEntity struct {
	Name        string              `json:"name"`
	Category    string              `json:"category,omitempty"`
	Description string              `json:"description,omitempty"`
	Address     string              `json:"address,omitempty"`
	Lat         *float64            `json:"lat,omitempty"`
	Lng         *float64            `json:"lng,omitempty"`
	Rating      *float64            `json:"rating,omitempty"`
	ReviewCount *int                `json:"review_count,omitempty"`
	Tags        string              `json:"tags,omitempty"`
	PlaceType   string              `json:"place_type,omitempty"`
	Sources     []SourceAttribution `json:"sources"`
}

// HasCoords reports whether both coordinates are present.
func (e *MergedEntity) HasCoords() bool {
	return e.Lat != nil && e.Lng != nil
}

// PlaceType labels assigned by the classification oracle.
const (
	TypeRestaurant = "restaurant"
	TypeCafe       = "cafe"
	TypeBar        = "bar"
	TypeBakery     = "bakery"
	TypeParking    = "parking"
)

// Place is the unified candidate shape handed to the ranking oracle. Seed
// rows, cached rows and freshly crawled entities all collapse into it.
type Place struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Address     string  `json:"address,omitempty"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Type        string  `json:"type"`
	Category    string  `json:"category,omitempty"`
	Tags        string  `json:"tags,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	ReviewCount int     `json:"review_count,omitempty"`

	// Parking-only fields.
	ParkingType    string `json:"parking_type,omitempty"`
	Capacity       int    `json:"capacity,omitempty"`
	HourlyRate     int    `json:"hourly_rate,omitempty"`
	OperatingHours string `json:"operating_hours,omitempty"`
}

// Anchor is an optional reference point for a search (e.g. the geocoded
// location mentioned in the query).
type Anchor struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name"`
}
