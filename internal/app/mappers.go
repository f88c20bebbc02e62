package app

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"trip_planner/internal/domain"
)

/********** alias registries (single source of truth) **********/

// cityAliases covers the key spellings the generation source has been seen to
// use for city pairs.
var cityAliases = map[string][]string{
	"display": {"nombre", "spanish", "ciudad", "name", "displayName"},
	"code":    {"codigo", "código", "english", "code", "iata", "iataCode", "lookupCode"},
}

var hotelAliases = map[string][]string{
	"id":       {"hotelId", "id", "hotel.hotelId"},
	"name":     {"name", "hotel.name"},
	"cityCode": {"iataCode", "cityCode", "address.cityCode"},
	"city":     {"address.cityName", "cityName"},
	"country":  {"address.countryCode", "countryCode"},
	"updated":  {"lastUpdate", "last_update"},
}

const notAvailable = "No disponible"

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, sep)
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// scalarString renders a string or number at path; "" when absent.
func scalarString(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case json.Number:
		return v.String()
	}
	return ""
}

// firstSliceStrings: accept []any with either strings or {url/src/name}.
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		if raw, ok := lookupAny(m, k).([]any); ok {
			out := make([]string, 0, len(raw))
			for _, it := range raw {
				switch t := it.(type) {
				case string:
					if t != "" {
						out = append(out, t)
					}
				case map[string]any:
					if n, ok := t["name"].(string); ok && n != "" {
						out = append(out, n)
						continue
					}
					if d, ok := t["description"].(string); ok && d != "" {
						out = append(out, d)
					}
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

/********** hotel mapper **********/

// mapHotel normalizes one lodging directory object. ok is false when the
// object has no id or name.
func mapHotel(p map[string]any, cityCode string) (domain.HotelRecord, bool) {
	h := domain.HotelRecord{
		ID:   firstNonEmptyAlias(p, hotelAliases, "id"),
		Name: firstNonEmptyAlias(p, hotelAliases, "name"),
	}
	if h.ID == "" || h.Name == "" {
		return domain.HotelRecord{}, false
	}

	h.CityCode = strings.ToUpper(firstNonEmptyAlias(p, hotelAliases, "cityCode"))
	if h.CityCode == "" {
		h.CityCode = strings.ToUpper(cityCode)
	}

	// Address lines are frequently missing or partial; compose whatever exists.
	var lines []string
	if raw, ok := lookupAny(p, "address.lines").([]any); ok {
		for _, l := range raw {
			if s, ok := l.(string); ok {
				lines = append(lines, s)
			}
		}
	}
	h.Address = joinNonEmpty(", ",
		joinNonEmpty(", ", lines...),
		lookupStr(p, "address.postalCode"),
		firstNonEmptyAlias(p, hotelAliases, "city"),
		firstNonEmptyAlias(p, hotelAliases, "country"),
	)
	if h.Address == "" {
		h.Address = notAvailable
	}

	h.Rating = scalarString(p, "rating")
	if h.Rating == "" {
		h.Rating = notAvailable
	}

	h.Amenities = firstSliceStrings(p, "amenities", "hotel.amenities")
	if h.Amenities == nil {
		h.Amenities = []string{}
	}

	h.Price = joinNonEmpty(" ", scalarString(p, "price.total"), lookupStr(p, "price.currency"))
	if h.Price == "" {
		h.Price = notAvailable
	}

	lat := getFloatFlexible(p, "geoCode.latitude", "latitude")
	lon := getFloatFlexible(p, "geoCode.longitude", "longitude")
	if lat != nil && lon != nil {
		h.Geo = &domain.Coords{Lat: *lat, Lon: *lon}
	}

	if s := firstNonEmptyAlias(p, hotelAliases, "updated"); s != "" {
		if t, err := parseUpdate(s); err == nil {
			h.LastUpdate = &t
		}
	}

	raw, err := json.Marshal(p)
	if err != nil {
		log.Error().Err(err).
			Str("context", "mapHotel").
			Str("hotel_id", h.ID).
			Msg("failed to marshal hotel to JSON")
	}
	h.RawJSON = raw
	return h, true
}

func parseUpdate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
