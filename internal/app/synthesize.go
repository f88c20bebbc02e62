package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"trip_planner/internal/adapters/observability"
	"trip_planner/internal/domain"
	"trip_planner/internal/llmjson"
)

type SynthesizerConfig struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Synthesizer turns preferences and enrichment into an itinerary document.
type Synthesizer struct {
	gen domain.Generator
	cfg SynthesizerConfig
}

func NewSynthesizer(g domain.Generator, cfg SynthesizerConfig) *Synthesizer {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 8000
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	return &Synthesizer{gen: g, cfg: cfg}
}

// Generate fails only with *domain.ItineraryGenerationError.
func (s *Synthesizer) Generate(ctx context.Context, p domain.TravelPreferences, b domain.EnrichmentBundle) (domain.Itinerary, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	text, err := s.gen.Complete(ctx, domain.CompletionRequest{
		Model:       s.cfg.Model,
		System:      itinerarySystemPrompt,
		Prompt:      RenderItineraryPrompt(p, b),
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		observability.ObserveItinerary("call_error")
		log.Error().Err(err).Str("model", s.cfg.Model).Msg("itinerary generation call failed")
		return domain.Itinerary{}, &domain.ItineraryGenerationError{Cause: err}
	}

	doc, err := llmjson.ParseDocument(text)
	if err != nil {
		observability.ObserveItinerary("parse_error")
		log.Error().Err(err).Str("raw", text).Msg("itinerary response is not a JSON object")
		return domain.Itinerary{}, &domain.ItineraryGenerationError{Raw: text, Cause: err}
	}

	it, err := domain.NewItinerary(doc)
	if err != nil {
		observability.ObserveItinerary("parse_error")
		return domain.Itinerary{}, &domain.ItineraryGenerationError{Raw: text, Cause: err}
	}
	observability.ObserveItinerary("ok")
	return it, nil
}
