package domain

import "time"

// CityCandidate is one city resolved by the destination expander.
// DisplayName is lowercase and accent-free; LookupCode is an uppercase
// IATA-style city code.
type CityCandidate struct {
	DisplayName string `json:"displayName"`
	LookupCode  string `json:"lookupCode"`
}

type ActivityRecord struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	ImageURL    string `json:"imageUrl"`
	Rating      string `json:"rating"`
	ReviewCount string `json:"reviews"`
	Price       string `json:"price"`
}

// HotelRecord is one entry of the persisted, city-keyed hotel pool.
type HotelRecord struct {
	ID         string     `json:"hotelId"`
	Name       string     `json:"name"`
	Address    string     `json:"address"`
	Rating     string     `json:"rating"`
	Amenities  []string   `json:"amenities"`
	Price      string     `json:"price"`
	CityCode   string     `json:"cityCode"`
	Geo        *Coords    `json:"geoCode,omitempty"`
	LastUpdate *time.Time `json:"lastUpdate,omitempty"`
	RawJSON    []byte     `json:"-"` // full directory payload
}

type Coords struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// CityEnrichment holds what was gathered for one candidate city. Empty
// slices mean the fetch failed or returned nothing; the city is still kept.
type CityEnrichment struct {
	City       string           `json:"city"`
	LookupCode string           `json:"lookupCode"`
	Activities []ActivityRecord `json:"activities"`
	Hotels     []HotelRecord    `json:"hotels"`
}

// EnrichmentBundle is keyed by city display name. Cities keep candidate order
// so rendering does not depend on fetch completion order.
type EnrichmentBundle struct {
	Cities []CityEnrichment `json:"cities"`
}

func (b EnrichmentBundle) City(name string) (CityEnrichment, bool) {
	for _, c := range b.Cities {
		if c.City == name {
			return c, true
		}
	}
	return CityEnrichment{}, false
}

func (b EnrichmentBundle) Len() int { return len(b.Cities) }
