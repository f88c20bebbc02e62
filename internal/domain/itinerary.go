package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Itinerary is the day-keyed document produced by the generation source.
// It is stored exactly as generated (compacted); Days gives an ordered view.
type Itinerary struct {
	raw json.RawMessage
}

// NewItinerary accepts a JSON object and nothing else.
func NewItinerary(b []byte) (Itinerary, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return Itinerary{}, err
	}
	if buf.Len() == 0 || buf.Bytes()[0] != '{' {
		return Itinerary{}, errNotObject
	}
	return Itinerary{raw: buf.Bytes()}, nil
}

func (it Itinerary) Raw() json.RawMessage { return it.raw }

func (it Itinerary) IsZero() bool { return len(it.raw) == 0 }

func (it Itinerary) MarshalJSON() ([]byte, error) {
	if len(it.raw) == 0 {
		return []byte("null"), nil
	}
	return it.raw, nil
}

func (it *Itinerary) UnmarshalJSON(b []byte) error {
	if string(bytes.TrimSpace(b)) == "null" {
		*it = Itinerary{}
		return nil
	}
	v, err := NewItinerary(b)
	if err != nil {
		return err
	}
	*it = v
	return nil
}

// Day is the shape the generation request asks for. Keys follow the Spanish
// prompt.
type Day struct {
	Key        string        `json:"-"`
	Date       string        `json:"fecha"`
	Activities []DayActivity `json:"actividades"`
	Lodging    string        `json:"alojamiento"`
	Transport  string        `json:"transporte"`
}

type DayActivity struct {
	Time     string `json:"hora"`
	Activity string `json:"actividad"`
	Location string `json:"ubicación"`
}

var errNotObject = errors.New("itinerary is not a JSON object")

// Days decodes the top-level object in document order.
func (it Itinerary) Days() ([]Day, error) {
	dec := json.NewDecoder(bytes.NewReader(it.raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errNotObject
	}
	var out []Day
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var d Day
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("day %q: %w", key, err)
		}
		d.Key = key
		out = append(out, d)
	}
	return out, nil
}

// TripRequest is what a caller submits to create a trip.
type TripRequest struct {
	OwnerID     string
	Title       string
	Description string
	Public      bool
	Preferences map[string]any
}

// Trip is the persisted trip record.
type Trip struct {
	ID          int64            `json:"id"`
	OwnerID     string           `json:"ownerId,omitempty"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Public      bool             `json:"public"`
	Preferences json.RawMessage  `json:"preferences"`
	Itinerary   Itinerary        `json:"itinerary"`
	Enrichment  EnrichmentBundle `json:"enrichment"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// Synthesis is the result of one pipeline run.
type Synthesis struct {
	Preferences TravelPreferences `json:"-"`
	Cities      []CityCandidate   `json:"cities"`
	Enrichment  EnrichmentBundle  `json:"enrichment"`
	Itinerary   Itinerary         `json:"itinerary"`
}
