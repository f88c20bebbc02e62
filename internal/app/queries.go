package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"trip_planner/internal/domain"
)

type TripQueryService struct {
	trips    domain.TripStore
	hotels   domain.HotelStore
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewTripQueryService(t domain.TripStore, h domain.HotelStore, c domain.Cache, ttl time.Duration) *TripQueryService {
	return &TripQueryService{trips: t, hotels: h, cache: c, cacheTTL: ttl}
}

func (s *TripQueryService) GetTrip(ctx context.Context, id int64) (domain.Trip, error) {
	key := fmt.Sprintf("trip:%d", id)
	var t domain.Trip
	if ok, err := s.cache.Get(ctx, key, &t); ok && err == nil {
		return t, nil
	}
	t, err := s.trips.GetTrip(ctx, id)
	if err != nil {
		return domain.Trip{}, err
	}

	// optional size guard
	if b, _ := json.Marshal(t); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, t, s.cacheTTL)
	}
	return t, nil
}

// MaxOwnerTrips caps ListOwnerTrips.
const MaxOwnerTrips = 50

// ListOwnerTrips returns an owner's trips, newest first. Trip lists are not
// cached; a new trip must show up on the next read.
func (s *TripQueryService) ListOwnerTrips(ctx context.Context, ownerID string) ([]domain.Trip, error) {
	owner := strings.TrimSpace(ownerID)
	if owner == "" {
		return nil, &domain.ValidationError{Field: "X-User-ID"}
	}
	ts, err := s.trips.ListTripsByOwner(ctx, owner, MaxOwnerTrips)
	if err != nil {
		return nil, err
	}
	if ts == nil {
		ts = []domain.Trip{}
	}
	return ts, nil
}

// ListCityHotels returns the persisted pool for a city code without topping
// it up.
func (s *TripQueryService) ListCityHotels(ctx context.Context, cityCode string) ([]domain.HotelRecord, error) {
	code := strings.ToUpper(strings.TrimSpace(cityCode))
	if code == "" {
		return nil, &domain.ValidationError{Field: "city"}
	}
	hs, err := s.hotels.ListHotelsByCity(ctx, code)
	if err != nil {
		return nil, err
	}
	if hs == nil {
		hs = []domain.HotelRecord{}
	}
	return hs, nil
}
