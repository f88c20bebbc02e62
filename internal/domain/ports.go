package domain

import (
	"context"
	"time"
)

// CompletionRequest is one call to the generation source.
type CompletionRequest struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

type Generator interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type ActivitySource interface {
	Activities(ctx context.Context, city string, limit int) ([]ActivityRecord, error)
}

// LodgingDirectory returns raw hotel objects for a city code.
type LodgingDirectory interface {
	HotelsByCity(ctx context.Context, cityCode string) ([]map[string]any, error)
}

type HotelStore interface {
	UpsertHotels(ctx context.Context, hs []HotelRecord) error
	ListHotelsByCity(ctx context.Context, cityCode string) ([]HotelRecord, error)
}

type TripStore interface {
	SaveTrip(ctx context.Context, t Trip) (int64, error)
	GetTrip(ctx context.Context, id int64) (Trip, error)
	ListTripsByOwner(ctx context.Context, ownerID string, limit int) ([]Trip, error)
}

// Cache is a key/value store with optional expiry. A zero ttl never expires.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}
