package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"strconv"
	"strings"

	"trip_planner/internal/domain"
)

// RequiredPreferenceFields is checked in order; the first missing path wins.
var RequiredPreferenceFields = []string{
	"travelDates",
	"travelDates.startDate",
	"travelDates.endDate",
	"destinationPreferences",
	"destinationPreferences.countryName",
	"destinationPreferences.type",
	"budget",
	"budget.total",
	"accommodationPreferences",
	"accommodationPreferences.type",
	"transportPreferences",
	"transportPreferences.preferredMode",
	"travelCompanion",
	"travelCompanion.type",
	"activityLevel",
	"activityLevel.pace",
}

// ValidatePreferences checks the raw payload and builds the typed
// preferences. It never performs I/O.
func ValidatePreferences(raw map[string]any) (domain.TravelPreferences, error) {
	for _, path := range RequiredPreferenceFields {
		if missing(lookupAny(raw, path)) {
			return domain.TravelPreferences{}, &domain.ValidationError{Field: path}
		}
	}

	dt, ok := lookupAny(raw, "destinationPreferences.type").(string)
	kind, known := domain.ParseDestinationType(dt)
	if !ok || !known {
		return domain.TravelPreferences{}, &domain.ValidationError{
			Field:  "destinationPreferences.type",
			Reason: "must be one of beach, mountain, city, countryside, adventure, other",
		}
	}

	n, err := numberOfCities(raw["numberOfCities"])
	if err != nil {
		return domain.TravelPreferences{}, err
	}

	// numberOfCities may arrive as a string; it is resolved above.
	body := make(map[string]any, len(raw))
	for k, v := range raw {
		if k != "numberOfCities" {
			body[k] = v
		}
	}
	coerceScalars(body)
	b, err := json.Marshal(body)
	if err != nil {
		return domain.TravelPreferences{}, &domain.ValidationError{Field: "preferences", Reason: "is not valid JSON"}
	}
	var p domain.TravelPreferences
	if err := json.Unmarshal(b, &p); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) && te.Field != "" {
			return domain.TravelPreferences{}, &domain.ValidationError{Field: te.Field, Reason: "has the wrong type"}
		}
		return domain.TravelPreferences{}, &domain.ValidationError{Field: "preferences", Reason: "is malformed"}
	}
	p.DestinationPreferences.Type = kind
	p.NumberOfCities = n
	return p, nil
}

// coerceScalars accepts a numeric string for budget.total and a number for
// accommodationPreferences.stars. Nested maps are cloned before rewriting.
func coerceScalars(body map[string]any) {
	if b, ok := body["budget"].(map[string]any); ok {
		if s, ok := b["total"].(string); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
				b = maps.Clone(b)
				b["total"] = f
				body["budget"] = b
			}
		}
	}
	if a, ok := body["accommodationPreferences"].(map[string]any); ok {
		var stars string
		switch v := a["stars"].(type) {
		case float64:
			stars = strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			stars = strconv.Itoa(v)
		case json.Number:
			stars = v.String()
		default:
			return
		}
		a = maps.Clone(a)
		a["stars"] = stars
		body["accommodationPreferences"] = a
	}
}

func missing(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

func numberOfCities(v any) (int, error) {
	bad := &domain.ValidationError{Field: "numberOfCities", Reason: "must be a positive integer"}
	tooMany := &domain.ValidationError{Field: "numberOfCities", Reason: fmt.Sprintf("must be at most %d", domain.MaxNumberOfCities)}
	var f float64
	switch t := v.(type) {
	case nil:
		return domain.DefaultNumberOfCities, nil
	case float64:
		f = t
	case int:
		f = float64(t)
	case json.Number:
		x, err := t.Float64()
		if err != nil {
			return 0, bad
		}
		f = x
	case string:
		if strings.TrimSpace(t) == "" {
			return domain.DefaultNumberOfCities, nil
		}
		x, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, bad
		}
		f = float64(x)
	default:
		return 0, bad
	}
	if f < 1 || f != math.Trunc(f) {
		return 0, bad
	}
	if f > domain.MaxNumberOfCities {
		return 0, tooMany
	}
	return int(f), nil
}
