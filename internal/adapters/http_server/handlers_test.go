package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpserver "trip_planner/internal/adapters/http_server"
	"trip_planner/internal/domain"
)

// ---- fakes ----

type fakePipeline struct {
	delay   time.Duration
	synErr  error
	tripErr error
	lastRaw map[string]any
	lastReq domain.TripRequest
}

func (f *fakePipeline) Synthesize(ctx context.Context, raw map[string]any) (domain.Synthesis, error) {
	f.lastRaw = raw
	time.Sleep(f.delay)
	if f.synErr != nil {
		return domain.Synthesis{}, f.synErr
	}
	it, _ := domain.NewItinerary([]byte(`{"dia1":{"fecha":"2025-04-01"}}`))
	return domain.Synthesis{
		Cities:    []domain.CityCandidate{{DisplayName: "tokio", LookupCode: "TYO"}},
		Itinerary: it,
	}, nil
}

func (f *fakePipeline) CreateTrip(ctx context.Context, req domain.TripRequest) (domain.Trip, error) {
	f.lastReq = req
	if f.tripErr != nil {
		return domain.Trip{}, f.tripErr
	}
	it, _ := domain.NewItinerary([]byte(`{"dia1":{}}`))
	return domain.Trip{ID: 9, Title: req.Title, OwnerID: req.OwnerID, Itinerary: it, Preferences: []byte(`{}`)}, nil
}

type fakeQueries struct{ trips map[int64]domain.Trip }

func (f *fakeQueries) GetTrip(ctx context.Context, id int64) (domain.Trip, error) {
	t, ok := f.trips[id]
	if !ok {
		return domain.Trip{}, domain.ErrNotFound
	}
	return t, nil
}

func (f *fakeQueries) ListCityHotels(ctx context.Context, code string) ([]domain.HotelRecord, error) {
	return []domain.HotelRecord{{ID: "H1", Name: "Uno", CityCode: strings.ToUpper(code)}}, nil
}

func (f *fakeQueries) ListOwnerTrips(ctx context.Context, owner string) ([]domain.Trip, error) {
	if owner == "" {
		return nil, &domain.ValidationError{Field: "X-User-ID"}
	}
	var out []domain.Trip
	for _, t := range f.trips {
		if t.OwnerID == owner {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeActivitySource struct {
	lastLimit int
}

func (f *fakeActivitySource) Activities(ctx context.Context, city string, limit int) ([]domain.ActivityRecord, error) {
	f.lastLimit = limit
	switch city {
	case "atlantida":
		return nil, domain.ErrCityNotListed
	case "pueblo":
		return nil, domain.ErrNoActivities
	case "caida":
		return nil, domain.ErrUnauthorized
	}
	return []domain.ActivityRecord{{Title: "Free tour", Price: "Gratis"}, {Title: "Museo", Price: "12 €"}}, nil
}

func newRouter(p *fakePipeline) http.Handler {
	it, _ := domain.NewItinerary([]byte(`{"dia1":{}}`))
	s := httpserver.New(5 * time.Second)
	s.MountHandlers(&httpserver.Handlers{
		P: p,
		Q: &fakeQueries{trips: map[int64]domain.Trip{1: {ID: 1, OwnerID: "u-1", Title: "Kioto", Itinerary: it, Preferences: []byte(`{}`)}}},
		A: &fakeActivitySource{},
	})
	return s.Mux()
}

func do(h http.Handler, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ---- tests ----

func TestSynthesize_OK(t *testing.T) {
	p := &fakePipeline{}
	rec := do(newRouter(p), http.MethodPost, "/v1/itineraries", `{"numberOfCities":2}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var out struct {
		Cities    []domain.CityCandidate     `json:"cities"`
		Itinerary map[string]json.RawMessage `json:"itinerary"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Cities) != 1 || out.Itinerary["dia1"] == nil {
		t.Fatalf("unexpected body %s", rec.Body)
	}
	if p.lastRaw["numberOfCities"] != float64(2) {
		t.Fatalf("payload not forwarded: %+v", p.lastRaw)
	}
}

func TestSynthesize_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"validation", &domain.ValidationError{Field: "budget.total"}, http.StatusBadRequest, `field "budget.total" is required`},
		{"generation", &domain.ItineraryGenerationError{Raw: "secret raw text"}, http.StatusBadGateway, "itinerary could not be generated"},
		{"other", context.DeadlineExceeded, http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(newRouter(&fakePipeline{synErr: tc.err}), http.MethodPost, "/v1/itineraries", `{}`, nil)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Fatalf("unexpected content type %q", ct)
			}
			if tc.detail != "" && !strings.Contains(rec.Body.String(), tc.detail) {
				t.Fatalf("body %s missing %q", rec.Body, tc.detail)
			}
			if strings.Contains(rec.Body.String(), "secret raw text") {
				t.Fatalf("raw generation output leaked")
			}
		})
	}
}

func TestSynthesize_InvalidBody(t *testing.T) {
	for _, body := range []string{`not json`, `[1,2]`, `null`} {
		rec := do(newRouter(&fakePipeline{}), http.MethodPost, "/v1/itineraries", body, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%q: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestSynthesize_BodyTooLarge(t *testing.T) {
	big := `{"additionalPreferences":"` + strings.Repeat("x", 2<<20) + `"}`
	rec := do(newRouter(&fakePipeline{}), http.MethodPost, "/v1/itineraries", big, nil)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}

func TestCreateTrip_SplitsTripFieldsFromPreferences(t *testing.T) {
	p := &fakePipeline{}
	rec := do(newRouter(p), http.MethodPost, "/v1/trips",
		`{"title":"Japón","description":"Luna de miel","public":true,"budget":{"total":100}}`,
		map[string]string{"X-User-ID": "u-7"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}
	if rec.Header().Get("Location") != "/v1/trips/9" {
		t.Fatalf("unexpected Location %q", rec.Header().Get("Location"))
	}
	req := p.lastReq
	if req.Title != "Japón" || req.Description != "Luna de miel" || !req.Public || req.OwnerID != "u-7" {
		t.Fatalf("unexpected request %+v", req)
	}
	if _, ok := req.Preferences["title"]; ok || req.Preferences["budget"] == nil {
		t.Fatalf("unexpected preferences %+v", req.Preferences)
	}
}

func TestGetTrip_ETag(t *testing.T) {
	h := newRouter(&fakePipeline{})

	rec := do(h, http.MethodGet, "/v1/trips/1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	etag := rec.Header().Get("ETag")
	if !strings.HasPrefix(etag, `W/"`) {
		t.Fatalf("expected weak ETag, got %q", etag)
	}

	rec = do(h, http.MethodGet, "/v1/trips/1", "", map[string]string{"If-None-Match": etag})
	if rec.Code != http.StatusNotModified || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 304, got %d", rec.Code)
	}
}

func TestGetTrip_Errors(t *testing.T) {
	h := newRouter(&fakePipeline{})
	if rec := do(h, http.MethodGet, "/v1/trips/abc", "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/v1/trips/404", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListHotels(t *testing.T) {
	h := newRouter(&fakePipeline{})
	if rec := do(h, http.MethodGet, "/v1/hotels", "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without city, got %d", rec.Code)
	}
	rec := do(h, http.MethodGet, "/v1/hotels?city=tyo", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"city":"TYO"`) {
		t.Fatalf("unexpected %d %s", rec.Code, rec.Body)
	}
}

func TestListOwnerTrips(t *testing.T) {
	h := newRouter(&fakePipeline{})

	rec := do(h, http.MethodGet, "/v1/trips", "", map[string]string{"X-User-ID": "u-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var out struct {
		Items []domain.Trip `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil || len(out.Items) != 1 || out.Items[0].ID != 1 {
		t.Fatalf("unexpected body %s (%v)", rec.Body, err)
	}

	if rec := do(h, http.MethodGet, "/v1/trips", "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing owner: expected 400, got %d", rec.Code)
	}
}

func TestListActivities(t *testing.T) {
	cases := []struct {
		name   string
		query  string
		status int
		items  int
	}{
		{"listed", "?city=tokio", http.StatusOK, 2},
		{"limit", "?city=tokio&limit=1", http.StatusOK, 1},
		{"not listed", "?city=atlantida", http.StatusNotFound, -1},
		{"no activities", "?city=pueblo", http.StatusOK, 0},
		{"upstream failure", "?city=caida", http.StatusBadGateway, -1},
		{"missing city", "", http.StatusBadRequest, -1},
		{"bad limit", "?city=tokio&limit=0", http.StatusBadRequest, -1},
		{"limit too large", "?city=tokio&limit=51", http.StatusBadRequest, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(newRouter(&fakePipeline{}), http.MethodGet, "/v1/activities"+tc.query, "", nil)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body)
			}
			if tc.items < 0 {
				if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
					t.Fatalf("unexpected content type %q", ct)
				}
				return
			}
			var out struct {
				Items []domain.ActivityRecord `json:"items"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if out.Items == nil || len(out.Items) != tc.items {
				t.Fatalf("expected %d items, got %s", tc.items, rec.Body)
			}
		})
	}
}

func TestListActivities_DefaultLimit(t *testing.T) {
	src := &fakeActivitySource{}
	s := httpserver.New(5 * time.Second)
	s.MountHandlers(&httpserver.Handlers{P: &fakePipeline{}, Q: &fakeQueries{}, A: src})
	if rec := do(s.Mux(), http.MethodGet, "/v1/activities?city=tokio", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if src.lastLimit != 5 {
		t.Fatalf("default limit = %d", src.lastLimit)
	}
}

func TestHealthz(t *testing.T) {
	rec := do(newRouter(&fakePipeline{}), http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected %d %q", rec.Code, rec.Body.String())
	}
}

func TestTimeout_WritesProblemDocument(t *testing.T) {
	s := httpserver.New(50 * time.Millisecond)
	s.MountHandlers(&httpserver.Handlers{P: &fakePipeline{delay: 300 * time.Millisecond}, Q: &fakeQueries{}})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/itineraries", strings.NewReader(`{"a":1}`))
	s.Mux().ServeHTTP(rr, req)

	if rr.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content type = %q", ct)
	}
	var p map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &p); err != nil || p["status"] != float64(504) {
		t.Fatalf("body = %s (%v)", rr.Body.String(), err)
	}
}
