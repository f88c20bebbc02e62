package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"trip_planner/internal/domain"
)

// ---- fakes ----

// fakeGen answers city requests and itinerary requests separately, keyed by
// the system prompt language.
type fakeGen struct {
	mu        sync.Mutex
	cities    string
	cityErr   error
	itinerary string
	itinErr   error
	calls     []domain.CompletionRequest
}

func (g *fakeGen) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
	if strings.Contains(req.System, "geografía") {
		return g.cities, g.cityErr
	}
	return g.itinerary, g.itinErr
}

func (g *fakeGen) Calls() []domain.CompletionRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]domain.CompletionRequest(nil), g.calls...)
}

// lastItineraryPrompt returns the most recent non-city prompt.
func (g *fakeGen) lastItineraryPrompt() string {
	calls := g.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if !strings.Contains(calls[i].System, "geografía") {
			return calls[i].Prompt
		}
	}
	return ""
}

type fakeActivities struct {
	mu     sync.Mutex
	byCity map[string][]domain.ActivityRecord
	fail   map[string]error
	calls  int
	// block makes every call wait for ctx to end.
	block bool
}

func (f *fakeActivities) Activities(ctx context.Context, city string, limit int) ([]domain.ActivityRecord, error) {
	if f.block {
		f.mu.Lock()
		f.calls++
		f.mu.Unlock()
		<-ctx.Done()
		return nil, ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.fail[city]; err != nil {
		return nil, err
	}
	as, ok := f.byCity[city]
	if !ok {
		return nil, domain.ErrNoActivities
	}
	return as, nil
}

type fakeDirectory struct {
	mu     sync.Mutex
	byCode map[string][]map[string]any
	fail   map[string]error
	calls  int
}

func (f *fakeDirectory) HotelsByCity(ctx context.Context, code string) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.fail[code]; err != nil {
		return nil, err
	}
	return f.byCode[code], nil
}

func (f *fakeDirectory) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeHotelStore struct {
	mu       sync.Mutex
	byCode   map[string][]domain.HotelRecord
	upserted []domain.HotelRecord
	listErr  error
}

func (s *fakeHotelStore) UpsertHotels(ctx context.Context, hs []domain.HotelRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byCode == nil {
		s.byCode = map[string][]domain.HotelRecord{}
	}
	s.upserted = append(s.upserted, hs...)
	for _, h := range hs {
		s.byCode[h.CityCode] = append(s.byCode[h.CityCode], h)
	}
	return nil
}

func (s *fakeHotelStore) ListHotelsByCity(ctx context.Context, code string) ([]domain.HotelRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]domain.HotelRecord(nil), s.byCode[code]...), nil
}

type fakeTrips struct {
	mu    sync.Mutex
	saved map[int64]domain.Trip
	next  int64
	gets  int
}

func (f *fakeTrips) SaveTrip(ctx context.Context, t domain.Trip) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saved == nil {
		f.saved = map[int64]domain.Trip{}
	}
	f.next++
	t.ID = f.next
	f.saved[t.ID] = t
	return t.ID, nil
}

func (f *fakeTrips) GetTrip(ctx context.Context, id int64) (domain.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	t, ok := f.saved[id]
	if !ok {
		return domain.Trip{}, domain.ErrNotFound
	}
	return t, nil
}

func (f *fakeTrips) ListTripsByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Trip
	for id := f.next; id > 0 && len(out) < limit; id-- {
		if t, ok := f.saved[id]; ok && t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

// ---- helpers ----

func validPayload() map[string]any {
	const body = `{
		"travelDates": {"startDate": "2025-04-01", "endDate": "2025-04-03"},
		"destinationPreferences": {"type": "city", "country": "JP", "countryName": "Japan"},
		"budget": {"total": 3000, "allocation": "equilibrado"},
		"interests": ["historia", "gastronomía"],
		"accommodationPreferences": {"type": "hotel", "amenities": ["wifi"]},
		"transportPreferences": {"preferredMode": "tren"},
		"foodPreferences": {"cuisine": ["japonesa"]},
		"travelCompanion": {"type": "pareja", "ages": [30, 32]},
		"activityLevel": {"pace": "moderado"},
		"numberOfCities": 2
	}`
	var m map[string]any
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		panic(err)
	}
	return m
}

// without returns a deep copy of m with the dotted path removed.
func without(m map[string]any, path string) map[string]any {
	b, _ := json.Marshal(m)
	var cp map[string]any
	_ = json.Unmarshal(b, &cp)
	parts := strings.Split(path, ".")
	cur := cp
	for _, p := range parts[:len(parts)-1] {
		cur = cur[p].(map[string]any)
	}
	delete(cur, parts[len(parts)-1])
	return cp
}

func hotel(id, code string) domain.HotelRecord {
	return domain.HotelRecord{ID: id, Name: "Hotel " + id, Address: "Calle " + id, Rating: "4", CityCode: code, Amenities: []string{}}
}

var errBoom = errors.New("boom")
