// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"trip_planner/internal/domain"
)

const maxBody = 1 << 20

type Pipeline interface {
	Synthesize(ctx context.Context, raw map[string]any) (domain.Synthesis, error)
	CreateTrip(ctx context.Context, req domain.TripRequest) (domain.Trip, error)
}

type Queries interface {
	GetTrip(ctx context.Context, id int64) (domain.Trip, error)
	ListOwnerTrips(ctx context.Context, ownerID string) ([]domain.Trip, error)
	ListCityHotels(ctx context.Context, cityCode string) ([]domain.HotelRecord, error)
}

// Handlers serves the API. A is optional; without it /v1/activities is not
// mounted.
type Handlers struct {
	P Pipeline
	Q Queries
	A domain.ActivitySource
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/itineraries", h.synthesize)
	s.mux.Post("/v1/trips", h.createTrip)
	s.mux.Get("/v1/trips", h.listOwnerTrips)
	s.mux.Get("/v1/trips/{id}", h.getTrip)
	s.mux.Get("/v1/hotels", h.listHotels)
	if h.A != nil {
		s.mux.Get("/v1/activities", h.listActivities)
	}
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps pipeline errors onto problem documents. Generation
// diagnostics never reach the client.
func writeError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	var ge *domain.ItineraryGenerationError
	switch {
	case errors.As(err, &ve):
		writeProblem(w, http.StatusBadRequest, "Invalid request", ve.Error())
	case errors.As(err, &ge):
		writeProblem(w, http.StatusBadGateway, "Generation failed", ge.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "resource not found")
	default:
		log.Error().Err(err).Msg("unhandled request error")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// decodeBody reads a JSON object of at most maxBody bytes. It writes the
// problem response itself and reports false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var body map[string]any
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&body)
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &mbe):
		writeProblem(w, http.StatusRequestEntityTooLarge, "Payload too large", "request body exceeds 1 MiB")
		return nil, false
	case err != nil:
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", "request body must be a JSON object")
		return nil, false
	case body == nil:
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", "request body must be a JSON object")
		return nil, false
	}
	return body, true
}

func (h *Handlers) synthesize(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}
	out, err := h.P.Synthesize(r.Context(), body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) createTrip(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}

	req := domain.TripRequest{OwnerID: strings.TrimSpace(r.Header.Get("X-User-ID"))}
	if v, ok := body["title"].(string); ok {
		req.Title = v
	}
	if v, ok := body["description"].(string); ok {
		req.Description = v
	}
	if v, ok := body["public"].(bool); ok {
		req.Public = v
	}
	for _, k := range []string{"title", "description", "public"} {
		delete(body, k)
	}
	req.Preferences = body

	trip, err := h.P.CreateTrip(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/trips/"+strconv.FormatInt(trip.ID, 10))
	writeJSON(w, http.StatusCreated, trip)
}

func (h *Handlers) getTrip(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	trip, err := h.Q.GetTrip(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	etag, body := calcETagAndBody(trip)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getTrip body")
	}
}

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("city")
	if strings.TrimSpace(code) == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid city", "city query parameter is required")
		return
	}
	hs, err := h.Q.ListCityHotels(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"city": strings.ToUpper(strings.TrimSpace(code)), "items": hs})
}

func (h *Handlers) listOwnerTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := h.Q.ListOwnerTrips(r.Context(), r.Header.Get("X-User-ID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": trips})
}

const (
	defaultActivityLimit = 5
	maxActivityLimit     = 50
)

// listActivities proxies the activity source for one city. A city the source
// does not list is 404; a listed city without activities is an empty list.
func (h *Handlers) listActivities(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid city", "city query parameter is required")
		return
	}
	limit := defaultActivityLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxActivityLimit {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be between 1 and 50")
			return
		}
		limit = n
	}

	as, err := h.A.Activities(r.Context(), city, limit)
	switch {
	case errors.Is(err, domain.ErrCityNotListed):
		writeProblem(w, http.StatusNotFound, "Not Found", "city is not listed by the activity source")
		return
	case errors.Is(err, domain.ErrNoActivities):
		as = []domain.ActivityRecord{}
	case err != nil:
		log.Warn().Err(err).Str("city", city).Msg("activity source failed")
		writeProblem(w, http.StatusBadGateway, "Bad Gateway", "activity source unavailable")
		return
	}
	if len(as) > limit {
		as = as[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]any{"city": city, "items": as})
}
