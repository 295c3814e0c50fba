package store

import (
	"time"
)

// Place is one cached crawled place. Name is the de facto natural key: upsert
// matches on exact name, and the unique index backstops concurrent creators.
type Place struct {
	ID          string `gorm:"primaryKey;size:36"`
	Name        string `gorm:"uniqueIndex;not null"`
	Category    string
	Description string
	Address     string
	Lat         *float64
	Lng         *float64
	Tags        string
	PlaceType   *string // nullable until the classifier has seen it
	CreatedAt   time.Time
	UpdatedAt   time.Time // staleness clock for cache reads

	Sources []PlaceSource `gorm:"foreignKey:PlaceID"`
}

// PlaceSource is one provider's contribution to a cached place, unique per
// (place, source) so re-crawls update rather than duplicate.
type PlaceSource struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	PlaceID     string `gorm:"size:36;not null;uniqueIndex:idx_place_source"`
	Source      string `gorm:"not null;uniqueIndex:idx_place_source"`
	SourceURL   string
	Rating      *float64
	ReviewCount *int
	Snippet     string
	Metadata    string
	CrawledAt   time.Time
}

// SeedPlace is a curated catalog row (restaurant or cafe). Seed rows win name
// collisions against crawled data during result merging.
type SeedPlace struct {
	ID               string `gorm:"primaryKey;size:36"`
	Name             string `gorm:"index;not null"`
	Type             string `gorm:"not null"` // restaurant or cafe
	Category         string
	Description      string
	Address          string
	Lat              float64 `gorm:"index"`
	Lng              float64 `gorm:"index"`
	Rating           float64
	ReviewCount      int
	PriceRange       string
	Atmosphere       string
	GoodFor          string
	ParkingAvailable bool
	CreatedAt        time.Time
}

// ParkingLot mirrors the original seed schema's public parking table.
type ParkingLot struct {
	ID             string `gorm:"primaryKey;size:36"`
	Name           string `gorm:"uniqueIndex;not null"`
	Type           string // 공영, 노상, 노외
	Address        string
	Lat            float64 `gorm:"index"`
	Lng            float64 `gorm:"index"`
	Capacity       int
	HourlyRate     int
	Description    string
	OperatingHours string
	CreatedAt      time.Time
}
