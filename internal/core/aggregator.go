package core

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lks21c/dining/internal/classify"
	"github.com/lks21c/dining/internal/config"
	"github.com/lks21c/dining/internal/core/dedupe"
	"github.com/lks21c/dining/internal/core/geo"
	"github.com/lks21c/dining/internal/core/model"
	"github.com/lks21c/dining/internal/geocode"
	"github.com/lks21c/dining/internal/llm"
	"github.com/lks21c/dining/internal/scrape"
)

// ErrNoLocation is returned when neither the query nor the request supplies
// enough information to scope the search to an area.
var ErrNoLocation = errors.New("location could not be resolved from query or bounds")

// Geocoder resolves a free-text place query to coordinates, nil when unknown.
type Geocoder interface {
	Geocode(ctx context.Context, query string) *geocode.Result
}

// PlaceStore is the persistence surface the pipeline depends on.
type PlaceStore interface {
	Upsert(ctx context.Context, entities []model.MergedEntity)
	FindCached(ctx context.Context, bounds *geo.Bounds, maxAgeHours int) ([]model.MergedEntity, error)
	SavePlaceTypes(ctx context.Context, types map[string]string)
	SeedPlaces(ctx context.Context, bounds *geo.Bounds) ([]model.Place, error)
	ParkingLots(ctx context.Context, bounds *geo.Bounds) ([]model.Place, error)
	SaveParkingLots(ctx context.Context, lots []model.Place) int
}

// Classifier labels entities with a business type; the map may be partial.
type Classifier interface {
	Classify(ctx context.Context, entities []classify.Entity) map[string]string
}

// Ranker orders candidate places into recommendation courses.
type Ranker interface {
	Rank(ctx context.Context, query string, places []model.Place, anchor *model.Anchor) (model.Recommendation, string)
}

// Aggregator runs the whole search/crawl pipeline: adapter fan-out, dedup,
// geocoding, classification, caching and ranking. Every dependency is
// injected so requests share no process-global state.
type Aggregator struct {
	LLM        llm.LLMClient
	Geo        Geocoder
	Store      PlaceStore
	Classifier Classifier
	Ranker     Ranker
	Adapters   []scrape.Adapter
	Logger     *zap.Logger

	CacheMaxAgeHours int
	SearchRadiusKm   float64
}

func NewAggregator(
	llmClient llm.LLMClient,
	geocoder Geocoder,
	store PlaceStore,
	classifier Classifier,
	ranker Ranker,
	adapters []scrape.Adapter,
	cfg config.CrawlConfig,
	logger *zap.Logger,
) *Aggregator {
	return &Aggregator{
		LLM:              llmClient,
		Geo:              geocoder,
		Store:            store,
		Classifier:       classifier,
		Ranker:           ranker,
		Adapters:         adapters,
		Logger:           logger,
		CacheMaxAgeHours: cfg.CacheMaxAgeHours,
		SearchRadiusKm:   cfg.SearchRadiusKm,
	}
}

// Search answers one free-text discovery request end to end.
func (a *Aggregator) Search(ctx context.Context, query string, bounds *geo.Bounds) (*model.SearchResult, error) {
	var center *model.Anchor

	if loc := a.extractLocation(ctx, query); loc != "" {
		if res := a.Geo.Geocode(ctx, loc); res != nil {
			b := geo.FromCenter(res.Lat, res.Lng, a.SearchRadiusKm)
			bounds = &b
			center = &model.Anchor{Lat: res.Lat, Lng: res.Lng, Name: loc}
		}
	}
	if bounds == nil {
		return nil, ErrNoLocation
	}

	terms := a.searchTerms(ctx, query)

	cached, err := a.Store.FindCached(ctx, bounds, a.CacheMaxAgeHours)
	if err != nil {
		a.Logger.Warn("cache read failed", zap.Error(err))
	}

	records := a.crawlAdapters(ctx, terms)
	merged := dedupe.Deduplicate(records)
	a.backfillCoordinates(ctx, merged, terms)

	crawled := boundsFilter(merged, bounds)
	a.classifyEntities(ctx, crawled, cached)

	a.Store.Upsert(ctx, crawled)

	candidates := a.assembleCandidates(ctx, bounds, cached, crawled)
	if len(candidates) == 0 {
		return &model.SearchResult{
			Places:  []model.Place{},
			Courses: []model.Course{},
			Center:  center,
			Warning: "이 지역에 등록된 장소가 없습니다.",
		}, nil
	}

	rec, warning := a.Ranker.Rank(ctx, query, candidates, center)

	return &model.SearchResult{
		Summary: rec.Summary,
		Persona: rec.Persona,
		Courses: rec.Courses,
		Places:  referencedPlaces(rec, candidates),
		Center:  center,
		Warning: warning,
	}, nil
}

// Places lists everything known for a viewport: seed rows, parking lots and
// fresh cached places, name-deduplicated with seed rows winning.
func (a *Aggregator) Places(ctx context.Context, bounds *geo.Bounds) ([]model.Place, error) {
	cached, err := a.Store.FindCached(ctx, bounds, a.CacheMaxAgeHours)
	if err != nil {
		return nil, err
	}
	places := a.assembleCandidates(ctx, bounds, cached, nil)
	if places == nil {
		places = []model.Place{}
	}
	return places, nil
}

// CrawlResult reports what one crawl request added.
type CrawlResult struct {
	Keyword      string `json:"keyword"`
	PlaceCount   int    `json:"count"`
	ParkingAdded int    `json:"parkingAdded"`
}

// Crawl refreshes the place cache for a keyword: restaurant crawl and
// parking discovery run in parallel, then the usual dedup/geocode/classify
// steps persist whatever survived.
func (a *Aggregator) Crawl(ctx context.Context, keyword string, bounds *geo.Bounds) (*CrawlResult, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, errors.New("keyword required")
	}

	var (
		wg      sync.WaitGroup
		records []model.RawRecord
		lots    []model.Place
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		records = a.crawlAdapters(ctx, keyword)
	}()
	go func() {
		defer wg.Done()
		lots = a.discoverParking(ctx, keyword)
	}()
	wg.Wait()

	parkingAdded := 0
	if len(lots) > 0 {
		parkingAdded = a.Store.SaveParkingLots(ctx, lots)
	}

	placeCount := 0
	if len(records) > 0 {
		merged := dedupe.Deduplicate(records)
		a.backfillCoordinates(ctx, merged, keyword)
		results := boundsFilter(merged, bounds)
		a.classifyEntities(ctx, results, nil)
		a.Store.Upsert(ctx, results)
		placeCount = len(results)
	}

	a.Logger.Info("crawl finished",
		zap.String("keyword", keyword),
		zap.Int("places", placeCount),
		zap.Int("parking_added", parkingAdded))

	return &CrawlResult{Keyword: keyword, PlaceCount: placeCount, ParkingAdded: parkingAdded}, nil
}

// crawlAdapters fans out to every adapter concurrently and concatenates the
// results in registration order so dedup's first-seen-wins behavior stays
// deterministic. A failing adapter contributes nothing and never aborts the
// others.
func (a *Aggregator) crawlAdapters(ctx context.Context, searchTerm string) []model.RawRecord {
	results := make([][]model.RawRecord, len(a.Adapters))

	var wg sync.WaitGroup
	for i, adapter := range a.Adapters {
		wg.Add(1)
		go func(i int, adapter scrape.Adapter) {
			defer wg.Done()
			records, err := adapter.Crawl(ctx, searchTerm)
			if err != nil {
				a.Logger.Warn("adapter failed",
					zap.String("adapter", adapter.Name()), zap.Error(err))
				return
			}
			results[i] = records
		}(i, adapter)
	}
	wg.Wait()

	var combined []model.RawRecord
	for _, rs := range results {
		combined = append(combined, rs...)
	}
	return combined
}

// backfillCoordinates resolves coordinates for entities that left dedup
// without any, preferring the scraped address and falling back to the search
// context plus the name. Entities the cascade cannot place stay uncoordinated.
func (a *Aggregator) backfillCoordinates(ctx context.Context, entities []model.MergedEntity, searchContext string) {
	for i := range entities {
		e := &entities[i]
		if e.HasCoords() || e.Name == "" {
			continue
		}
		query := e.Address
		if query == "" {
			query = searchContext + " " + e.Name
		}
		res := a.Geo.Geocode(ctx, query)
		if res == nil {
			continue
		}
		e.Lat = &res.Lat
		e.Lng = &res.Lng
		if e.Address == "" {
			e.Address = res.Address
		}
	}
}

// boundsFilter drops uncoordinated entities, then applies the bounds. When
// the bounds filter would empty an otherwise non-empty set, the coordinated
// set is kept as is rather than silently returning nothing.
func boundsFilter(entities []model.MergedEntity, bounds *geo.Bounds) []model.MergedEntity {
	coordinated := make([]model.MergedEntity, 0, len(entities))
	for _, e := range entities {
		if e.HasCoords() {
			coordinated = append(coordinated, e)
		}
	}
	if bounds == nil {
		return coordinated
	}

	inBounds := make([]model.MergedEntity, 0, len(coordinated))
	for _, e := range coordinated {
		if bounds.Contains(*e.Lat, *e.Lng) {
			inBounds = append(inBounds, e)
		}
	}
	if len(inBounds) > 0 {
		return inBounds
	}
	return coordinated
}

// classifyEntities labels crawled entities plus any cached ones still missing
// a type. Entities the oracle skipped default to restaurant; labels for rows
// that already live in the cache are persisted separately.
func (a *Aggregator) classifyEntities(ctx context.Context, crawled []model.MergedEntity, cached []model.MergedEntity) {
	var pending []classify.Entity
	for i := range crawled {
		e := &crawled[i]
		pending = append(pending, classify.Entity{
			Name: e.Name, Category: e.Category, Tags: e.Tags, Description: e.Description,
		})
	}
	cachedPending := make(map[string]bool)
	for i := range cached {
		e := &cached[i]
		if e.PlaceType != "" {
			continue
		}
		pending = append(pending, classify.Entity{
			Name: e.Name, Category: e.Category, Tags: e.Tags, Description: e.Description,
		})
		cachedPending[e.Name] = true
	}
	if len(pending) == 0 {
		return
	}

	typeMap := a.Classifier.Classify(ctx, pending)

	for i := range crawled {
		e := &crawled[i]
		if t, ok := typeMap[e.Name]; ok {
			e.PlaceType = t
		} else {
			e.PlaceType = model.TypeRestaurant
		}
	}

	persist := make(map[string]string)
	for i := range cached {
		e := &cached[i]
		if !cachedPending[e.Name] {
			continue
		}
		t, ok := typeMap[e.Name]
		if !ok {
			t = model.TypeRestaurant
		}
		e.PlaceType = t
		persist[e.Name] = t
	}
	if len(persist) > 0 {
		a.Store.SavePlaceTypes(ctx, persist)
	}
}

// assembleCandidates builds the unified list handed to the ranker: curated
// seed rows and parking lots first, then cached entities, then freshly
// crawled ones. Name collisions are resolved case-insensitively in that
// order, so seed data always wins over crawled duplicates.
func (a *Aggregator) assembleCandidates(ctx context.Context, bounds *geo.Bounds, cached, crawled []model.MergedEntity) []model.Place {
	seen := make(map[string]bool)
	var out []model.Place

	add := func(p model.Place) {
		key := strings.ToLower(strings.TrimSpace(p.Name))
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, p)
	}

	seeds, err := a.Store.SeedPlaces(ctx, bounds)
	if err != nil {
		a.Logger.Warn("seed read failed", zap.Error(err))
	}
	for _, p := range seeds {
		add(p)
	}

	lots, err := a.Store.ParkingLots(ctx, bounds)
	if err != nil {
		a.Logger.Warn("parking read failed", zap.Error(err))
	}
	for _, p := range lots {
		add(p)
	}

	for i := range cached {
		add(entityToPlace(&cached[i]))
	}
	for i := range crawled {
		add(entityToPlace(&crawled[i]))
	}
	return out
}

func entityToPlace(e *model.MergedEntity) model.Place {
	if !e.HasCoords() {
		return model.Place{}
	}

	desc := e.Description
	if desc == "" {
		for _, s := range e.Sources {
			if s.Snippet != "" {
				desc = s.Snippet
				break
			}
		}
	}
	if desc == "" && len(e.Sources) > 0 {
		names := make([]string, 0, len(e.Sources))
		for _, s := range e.Sources {
			names = append(names, s.Source)
		}
		desc = strings.Join(names, ", ") + "에서 추천"
	}

	placeType := e.PlaceType
	if placeType == "" {
		placeType = model.TypeRestaurant
	}
	category := e.Category
	if category == "" {
		category = "맛집"
	}

	p := model.Place{
		ID:          "crawled_" + slug(e.Name) + "_" + uuid.New().String()[:8],
		Name:        e.Name,
		Description: desc,
		Address:     e.Address,
		Lat:         *e.Lat,
		Lng:         *e.Lng,
		Type:        placeType,
		Category:    category,
		Tags:        e.Tags,
	}
	if e.Rating != nil {
		p.Rating = *e.Rating
	}
	if e.ReviewCount != nil {
		p.ReviewCount = *e.ReviewCount
	}
	return p
}

func slug(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "_"))
}

// referencedPlaces returns the candidates the courses actually point at, in
// first-mention order.
func referencedPlaces(rec model.Recommendation, candidates []model.Place) []model.Place {
	byID := make(map[string]*model.Place, len(candidates))
	for i := range candidates {
		byID[candidates[i].ID] = &candidates[i]
	}

	seen := make(map[string]bool)
	out := []model.Place{}
	for _, course := range rec.Courses {
		for _, stop := range course.Stops {
			if p, ok := byID[stop.ID]; ok && !seen[stop.ID] {
				seen[stop.ID] = true
				out = append(out, *p)
			}
		}
	}
	return out
}
