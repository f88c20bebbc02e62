package app

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"trip_planner/internal/domain"
)

// ItineraryService runs the pipeline: validate, expand, enrich, synthesize.
type ItineraryService struct {
	expander    *DestinationExpander
	collector   *EnrichmentCollector
	synthesizer *Synthesizer
	trips       domain.TripStore
	now         func() time.Time
}

func NewItineraryService(e *DestinationExpander, c *EnrichmentCollector, s *Synthesizer, trips domain.TripStore) *ItineraryService {
	return &ItineraryService{expander: e, collector: c, synthesizer: s, trips: trips, now: time.Now}
}

// Synthesize fails only with *domain.ValidationError or
// *domain.ItineraryGenerationError. Nothing external is called before the
// payload validates.
func (s *ItineraryService) Synthesize(ctx context.Context, raw map[string]any) (domain.Synthesis, error) {
	prefs, err := ValidatePreferences(raw)
	if err != nil {
		return domain.Synthesis{}, err
	}

	cities, err := s.expander.TopCities(ctx, prefs.DestinationPreferences.CountryName, prefs.NumberOfCities)
	if err != nil {
		return domain.Synthesis{}, err
	}
	log.Debug().Str("country", prefs.DestinationPreferences.CountryName).Int("cities", len(cities)).Msg("cities resolved")

	bundle := s.collector.Collect(ctx, cities)

	it, err := s.synthesizer.Generate(ctx, prefs, bundle)
	if err != nil {
		return domain.Synthesis{}, err
	}
	return domain.Synthesis{Preferences: prefs, Cities: cities, Enrichment: bundle, Itinerary: it}, nil
}

// CreateTrip synthesizes an itinerary for req and stores it as a trip.
func (s *ItineraryService) CreateTrip(ctx context.Context, req domain.TripRequest) (domain.Trip, error) {
	if strings.TrimSpace(req.Title) == "" {
		return domain.Trip{}, &domain.ValidationError{Field: "title"}
	}

	raw := make(map[string]any, len(req.Preferences)+1)
	for k, v := range req.Preferences {
		raw[k] = v
	}
	if req.Description != "" {
		raw["description"] = req.Description
	}

	syn, err := s.Synthesize(ctx, raw)
	if err != nil {
		return domain.Trip{}, err
	}

	prefs, err := json.Marshal(syn.Preferences)
	if err != nil {
		return domain.Trip{}, err
	}
	t := domain.Trip{
		OwnerID:     req.OwnerID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Public:      req.Public,
		Preferences: prefs,
		Itinerary:   syn.Itinerary,
		Enrichment:  syn.Enrichment,
		CreatedAt:   s.now().UTC().Truncate(time.Second),
	}
	id, err := s.trips.SaveTrip(ctx, t)
	if err != nil {
		return domain.Trip{}, err
	}
	t.ID = id
	log.Info().Int64("trip_id", id).Str("owner", req.OwnerID).Int("cities", syn.Enrichment.Len()).Msg("trip created")
	return t, nil
}
