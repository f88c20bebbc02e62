package app

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/rs/zerolog/log"

	"trip_planner/internal/adapters/observability"
	"trip_planner/internal/domain"
)

// HotelPool serves hotels from the persisted city pool, topping it up from the
// lodging directory when it holds fewer than requested.
type HotelPool struct {
	store domain.HotelStore
	dir   domain.LodgingDirectory
	intn  func(n int) int
}

type PoolOption func(*HotelPool)

// WithRand replaces the sampling source; intn must return a value in [0, n).
func WithRand(intn func(n int) int) PoolOption {
	return func(p *HotelPool) { p.intn = intn }
}

func NewHotelPool(store domain.HotelStore, dir domain.LodgingDirectory, opts ...PoolOption) *HotelPool {
	p := &HotelPool{store: store, dir: dir, intn: rand.Intn}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Hotels returns up to n records for cityCode drawn uniformly without
// replacement. The directory is not called when the pool already holds n.
func (p *HotelPool) Hotels(ctx context.Context, cityCode string, n int) ([]domain.HotelRecord, error) {
	code := strings.ToUpper(strings.TrimSpace(cityCode))
	if code == "" || n < 1 {
		return []domain.HotelRecord{}, nil
	}

	cached, err := p.store.ListHotelsByCity(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("hotel pool %s: %w", code, err)
	}
	if len(cached) >= n {
		observability.ObserveHotelPool("hit")
		return p.sample(cached, n), nil
	}

	observability.ObserveHotelPool("topup")
	fetched, err := p.fetch(ctx, code)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(cached))
	for _, h := range cached {
		known[h.ID] = struct{}{}
	}
	pool := cached
	var fresh []domain.HotelRecord
	for _, h := range fetched {
		if _, ok := known[h.ID]; ok {
			continue
		}
		known[h.ID] = struct{}{}
		fresh = append(fresh, h)
		pool = append(pool, h)
	}

	if len(fresh) > 0 {
		if err := p.store.UpsertHotels(ctx, fresh); err != nil {
			log.Warn().Err(err).Str("city_code", code).Int("count", len(fresh)).Msg("hotel pool upsert failed")
		}
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("city %s: %w", code, domain.ErrNoHotels)
	}
	return p.sample(pool, n), nil
}

// Refresh re-reads the full directory listing for cityCode and upserts it.
func (p *HotelPool) Refresh(ctx context.Context, cityCode string) (int, error) {
	code := strings.ToUpper(strings.TrimSpace(cityCode))
	hs, err := p.fetch(ctx, code)
	if err != nil {
		return 0, err
	}
	if err := p.store.UpsertHotels(ctx, hs); err != nil {
		return 0, fmt.Errorf("hotel pool %s: %w", code, err)
	}
	return len(hs), nil
}

func (p *HotelPool) fetch(ctx context.Context, code string) ([]domain.HotelRecord, error) {
	raw, err := p.dir.HotelsByCity(ctx, code)
	if err != nil {
		return nil, err
	}
	out := make([]domain.HotelRecord, 0, len(raw))
	dropped := 0
	for _, r := range raw {
		h, ok := mapHotel(r, code)
		if !ok {
			dropped++
			continue
		}
		out = append(out, h)
	}
	if dropped > 0 {
		log.Debug().Str("city_code", code).Int("dropped", dropped).Msg("directory entries without id or name")
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("city %s: %w", code, domain.ErrNoHotels)
	}
	return out, nil
}

// sample is a partial Fisher-Yates over a copy of in.
func (p *HotelPool) sample(in []domain.HotelRecord, n int) []domain.HotelRecord {
	if n > len(in) {
		n = len(in)
	}
	cp := make([]domain.HotelRecord, len(in))
	copy(cp, in)
	for i := 0; i < n; i++ {
		j := i + p.intn(len(cp)-i)
		cp[i], cp[j] = cp[j], cp[i]
	}
	return cp[:n]
}
