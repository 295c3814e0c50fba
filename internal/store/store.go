package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lks21c/dining/internal/config"
	"github.com/lks21c/dining/internal/core/geo"
	"github.com/lks21c/dining/internal/core/model"
)

// Store is the idempotent persistence layer for crawled places plus read
// access to the seed catalog. It is a best-effort cache, not a source of
// truth: per-entity write failures are logged and skipped.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

func Open(cfg config.DBConfig, logger *zap.Logger) (*Store, error) {
	dialector, err := dialect(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&Place{}, &PlaceSource{}, &SeedPlace{}, &ParkingLot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

func dialect(cfg config.DBConfig) (gorm.Dialector, error) {
	switch cfg.Type {
	case "sqlite":
		return sqlite.Open(cfg.DSN), nil
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported db type %q", cfg.Type)
	}
}

// Upsert persists merged entities one at a time. For an existing place (exact
// name match) descriptive fields update only where the incoming value is
// non-empty; attribution rows go through a native ON CONFLICT upsert on
// (place_id, source), so re-running with the same input changes nothing but
// timestamps.
func (s *Store) Upsert(ctx context.Context, entities []model.MergedEntity) {
	for i := range entities {
		if err := s.upsertOne(ctx, &entities[i]); err != nil {
			s.logger.Error("failed to save place",
				zap.String("name", entities[i].Name), zap.Error(err))
		}
	}
}

func (s *Store) upsertOne(ctx context.Context, e *model.MergedEntity) error {
	db := s.db.WithContext(ctx)
	now := time.Now().UTC()

	var existing Place
	err := db.Where("name = ?", e.Name).First(&existing).Error
	switch {
	case err == nil:
		vals := map[string]interface{}{"updated_at": now}
		if e.Category != "" {
			vals["category"] = e.Category
		}
		if e.Description != "" {
			vals["description"] = e.Description
		}
		if e.Address != "" {
			vals["address"] = e.Address
		}
		if e.Lat != nil {
			vals["lat"] = *e.Lat
		}
		if e.Lng != nil {
			vals["lng"] = *e.Lng
		}
		if e.Tags != "" {
			vals["tags"] = e.Tags
		}
		if e.PlaceType != "" {
			vals["place_type"] = e.PlaceType
		}
		if err := db.Model(&existing).Updates(vals).Error; err != nil {
			return err
		}
		return s.upsertSources(db, existing.ID, e.Sources, now)

	case errors.Is(err, gorm.ErrRecordNotFound):
		place := Place{
			ID:          uuid.New().String(),
			Name:        e.Name,
			Category:    e.Category,
			Description: e.Description,
			Address:     e.Address,
			Lat:         e.Lat,
			Lng:         e.Lng,
			Tags:        e.Tags,
		}
		if e.PlaceType != "" {
			place.PlaceType = &e.PlaceType
		}
		if err := db.Create(&place).Error; err != nil {
			return err
		}
		return s.upsertSources(db, place.ID, e.Sources, now)

	default:
		return err
	}
}

func (s *Store) upsertSources(db *gorm.DB, placeID string, sources []model.SourceAttribution, now time.Time) error {
	for _, src := range sources {
		row := PlaceSource{
			PlaceID:     placeID,
			Source:      src.Source,
			SourceURL:   src.SourceURL,
			Rating:      src.Rating,
			ReviewCount: src.ReviewCount,
			Snippet:     src.Snippet,
			Metadata:    src.Metadata,
			CrawledAt:   now,
		}
		err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "place_id"}, {Name: "source"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"source_url", "rating", "review_count", "snippet", "metadata", "crawled_at",
			}),
		}).Create(&row).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// FindCached returns cached places fresher than maxAgeHours that carry
// coordinates, optionally restricted to bounds. Used to skip re-crawling an
// area the pipeline recently covered.
func (s *Store) FindCached(ctx context.Context, bounds *geo.Bounds, maxAgeHours int) ([]model.MergedEntity, error) {
	since := time.Now().UTC().Add(-time.Duration(maxAgeHours) * time.Hour)

	q := s.db.WithContext(ctx).
		Preload("Sources").
		Where("updated_at >= ?", since).
		Where("lat IS NOT NULL AND lng IS NOT NULL")
	if bounds != nil {
		q = q.Where("lat BETWEEN ? AND ?", bounds.SWLat, bounds.NELat).
			Where("lng BETWEEN ? AND ?", bounds.SWLng, bounds.NELng)
	}

	var rows []Place
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load cached places: %w", err)
	}

	entities := make([]model.MergedEntity, 0, len(rows))
	for i := range rows {
		entities = append(entities, toEntity(&rows[i]))
	}
	return entities, nil
}

func toEntity(p *Place) model.MergedEntity {
	e := model.MergedEntity{
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		Address:     p.Address,
		Lat:         p.Lat,
		Lng:         p.Lng,
		Tags:        p.Tags,
	}
	if p.PlaceType != nil {
		e.PlaceType = *p.PlaceType
	}
	for _, src := range p.Sources {
		e.Sources = append(e.Sources, model.SourceAttribution{
			Source:      src.Source,
			SourceURL:   src.SourceURL,
			Rating:      src.Rating,
			ReviewCount: src.ReviewCount,
			Snippet:     src.Snippet,
			Metadata:    src.Metadata,
		})
		if e.Rating == nil {
			e.Rating = src.Rating
		}
		if e.ReviewCount == nil {
			e.ReviewCount = src.ReviewCount
		}
	}
	return e
}

// SavePlaceTypes writes classifier output back onto cached rows.
func (s *Store) SavePlaceTypes(ctx context.Context, types map[string]string) {
	for name, placeType := range types {
		err := s.db.WithContext(ctx).
			Model(&Place{}).
			Where("name = ?", name).
			Update("place_type", placeType).Error
		if err != nil {
			s.logger.Warn("failed to persist place type",
				zap.String("name", name), zap.Error(err))
		}
	}
}

// SeedPlaces returns catalog restaurants/cafes, optionally inside bounds.
func (s *Store) SeedPlaces(ctx context.Context, bounds *geo.Bounds) ([]model.Place, error) {
	q := s.db.WithContext(ctx).Model(&SeedPlace{})
	if bounds != nil {
		q = q.Where("lat BETWEEN ? AND ?", bounds.SWLat, bounds.NELat).
			Where("lng BETWEEN ? AND ?", bounds.SWLng, bounds.NELng)
	}

	var rows []SeedPlace
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load seed places: %w", err)
	}

	places := make([]model.Place, 0, len(rows))
	for _, r := range rows {
		places = append(places, model.Place{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			Address:     r.Address,
			Lat:         r.Lat,
			Lng:         r.Lng,
			Type:        r.Type,
			Category:    r.Category,
			Rating:      r.Rating,
			ReviewCount: r.ReviewCount,
		})
	}
	return places, nil
}

// ParkingLots returns seed parking rows, optionally inside bounds.
func (s *Store) ParkingLots(ctx context.Context, bounds *geo.Bounds) ([]model.Place, error) {
	q := s.db.WithContext(ctx).Model(&ParkingLot{})
	if bounds != nil {
		q = q.Where("lat BETWEEN ? AND ?", bounds.SWLat, bounds.NELat).
			Where("lng BETWEEN ? AND ?", bounds.SWLng, bounds.NELng)
	}

	var rows []ParkingLot
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load parking lots: %w", err)
	}

	places := make([]model.Place, 0, len(rows))
	for _, r := range rows {
		places = append(places, model.Place{
			ID:             r.ID,
			Name:           r.Name,
			Description:    r.Description,
			Address:        r.Address,
			Lat:            r.Lat,
			Lng:            r.Lng,
			Type:           model.TypeParking,
			ParkingType:    r.Type,
			Capacity:       r.Capacity,
			HourlyRate:     r.HourlyRate,
			OperatingHours: r.OperatingHours,
		})
	}
	return places, nil
}

// SaveParkingLots inserts newly discovered lots, skipping names already
// present. Returns the number actually added.
func (s *Store) SaveParkingLots(ctx context.Context, lots []model.Place) int {
	added := 0
	for _, lot := range lots {
		var count int64
		if err := s.db.WithContext(ctx).Model(&ParkingLot{}).
			Where("name = ?", lot.Name).Count(&count).Error; err != nil {
			s.logger.Warn("parking lookup failed", zap.String("name", lot.Name), zap.Error(err))
			continue
		}
		if count > 0 {
			continue
		}

		parkingType := lot.ParkingType
		if parkingType == "" {
			parkingType = "공영"
		}
		description := lot.Description
		if description == "" {
			description = lot.Address
		}
		row := ParkingLot{
			ID:             uuid.New().String(),
			Name:           lot.Name,
			Type:           parkingType,
			Address:        lot.Address,
			Lat:            lot.Lat,
			Lng:            lot.Lng,
			Capacity:       lot.Capacity,
			HourlyRate:     lot.HourlyRate,
			Description:    description,
			OperatingHours: lot.OperatingHours,
		}
		if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
			s.logger.Warn("failed to save parking lot", zap.String("name", lot.Name), zap.Error(err))
			continue
		}
		added++
	}
	return added
}
