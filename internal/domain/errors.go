package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrNoActivities  = errors.New("no activities found")
	ErrCityNotListed = errors.New("city not listed")
	ErrNoHotels      = errors.New("no hotels found")
)

// ValidationError names the first offending field of a request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("field %q is required", e.Field)
	}
	return fmt.Sprintf("field %q %s", e.Field, e.Reason)
}

// EnrichmentFetchError is a per-city, per-source failure. It is logged and
// replaced by an empty result; callers never see it.
type EnrichmentFetchError struct {
	City   string
	Source string // activities|hotels
	Err    error
}

func (e *EnrichmentFetchError) Error() string {
	return fmt.Sprintf("enrich %s for %q: %v", e.Source, e.City, e.Err)
}

func (e *EnrichmentFetchError) Unwrap() error { return e.Err }

// CityResolutionError means the destination expander produced nothing usable.
type CityResolutionError struct {
	Country string
	Err     error
}

func (e *CityResolutionError) Error() string {
	return fmt.Sprintf("resolve cities for %q: %v", e.Country, e.Err)
}

func (e *CityResolutionError) Unwrap() error { return e.Err }

// ItineraryGenerationError is fatal to the request. Error() is safe to show to
// users; Raw and Cause are for logs only.
type ItineraryGenerationError struct {
	Raw   string
	Cause error
}

func (e *ItineraryGenerationError) Error() string { return "itinerary could not be generated" }

func (e *ItineraryGenerationError) Unwrap() error { return e.Cause }
