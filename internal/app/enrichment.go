package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"trip_planner/internal/adapters/observability"
	"trip_planner/internal/domain"
)

const (
	sourceActivities = "activities"
	sourceHotels     = "hotels"
)

type hotelSampler interface {
	Hotels(ctx context.Context, cityCode string, n int) ([]domain.HotelRecord, error)
}

type CollectorConfig struct {
	ActivitiesPerCity int
	HotelsPerCity     int
	Workers           int
	// FetchTimeout bounds a single source call; Budget bounds the whole
	// Collect call. Cities still waiting when Budget runs out get empty lists.
	FetchTimeout time.Duration
	Budget       time.Duration
}

// EnrichmentCollector gathers activities and hotels per city. Cities are
// fetched concurrently; one city's failure never affects another.
type EnrichmentCollector struct {
	activities domain.ActivitySource
	hotels     hotelSampler
	cfg        CollectorConfig
}

func NewEnrichmentCollector(a domain.ActivitySource, h hotelSampler, cfg CollectorConfig) *EnrichmentCollector {
	if cfg.ActivitiesPerCity <= 0 {
		cfg.ActivitiesPerCity = 5
	}
	if cfg.HotelsPerCity <= 0 {
		cfg.HotelsPerCity = 3
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &EnrichmentCollector{activities: a, hotels: h, cfg: cfg}
}

// Collect returns one entry per city, in candidate order.
func (c *EnrichmentCollector) Collect(ctx context.Context, cities []domain.CityCandidate) domain.EnrichmentBundle {
	if c.cfg.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Budget)
		defer cancel()
	}
	out := make([]domain.CityEnrichment, len(cities))

	var g errgroup.Group
	g.SetLimit(c.cfg.Workers)
	for i, city := range cities {
		i, city := i, city
		g.Go(func() error {
			e := domain.CityEnrichment{City: city.DisplayName, LookupCode: city.LookupCode}
			if err := ctx.Err(); err != nil {
				c.logFailure(city, sourceActivities, err)
				c.logFailure(city, sourceHotels, err)
				e.Activities, e.Hotels = []domain.ActivityRecord{}, []domain.HotelRecord{}
			} else {
				e.Activities = c.fetchActivities(ctx, city)
				e.Hotels = c.fetchHotels(ctx, city)
			}
			out[i] = e
			return nil
		})
	}
	_ = g.Wait()

	return domain.EnrichmentBundle{Cities: out}
}

func (c *EnrichmentCollector) fetchActivities(ctx context.Context, city domain.CityCandidate) []domain.ActivityRecord {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	as, err := c.activities.Activities(ctx, city.DisplayName, c.cfg.ActivitiesPerCity)
	if err != nil {
		c.logFailure(city, sourceActivities, err)
		return []domain.ActivityRecord{}
	}
	if len(as) > c.cfg.ActivitiesPerCity {
		as = as[:c.cfg.ActivitiesPerCity]
	}
	observe(sourceActivities, len(as))
	return as
}

func (c *EnrichmentCollector) fetchHotels(ctx context.Context, city domain.CityCandidate) []domain.HotelRecord {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	hs, err := c.hotels.Hotels(ctx, city.LookupCode, c.cfg.HotelsPerCity)
	if err != nil {
		c.logFailure(city, sourceHotels, err)
		return []domain.HotelRecord{}
	}
	if hs == nil {
		hs = []domain.HotelRecord{}
	}
	observe(sourceHotels, len(hs))
	return hs
}

func (c *EnrichmentCollector) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.FetchTimeout > 0 {
		return context.WithTimeout(ctx, c.cfg.FetchTimeout)
	}
	return context.WithCancel(ctx)
}

func (c *EnrichmentCollector) logFailure(city domain.CityCandidate, source string, err error) {
	ferr := &domain.EnrichmentFetchError{City: city.DisplayName, Source: source, Err: err}
	log.Warn().Err(ferr).
		Str("city", city.DisplayName).
		Str("city_code", city.LookupCode).
		Str("source", source).
		Msg("enrichment fetch failed; using empty result")
	observability.ObserveEnrichment(source, "error")
}

func observe(source string, n int) {
	if n == 0 {
		observability.ObserveEnrichment(source, "empty")
		return
	}
	observability.ObserveEnrichment(source, "ok")
}
