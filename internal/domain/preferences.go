package domain

import "strings"

// DestinationType is the kind of trip the traveller is after.
type DestinationType string

const (
	DestinationBeach       DestinationType = "beach"
	DestinationMountain    DestinationType = "mountain"
	DestinationCity        DestinationType = "city"
	DestinationCountryside DestinationType = "countryside"
	DestinationAdventure   DestinationType = "adventure"
	DestinationOther       DestinationType = "other"
)

// Spanish labels are what the web client historically sent.
var destinationLabels = map[string]DestinationType{
	"beach":       DestinationBeach,
	"playa":       DestinationBeach,
	"mountain":    DestinationMountain,
	"montaña":     DestinationMountain,
	"montana":     DestinationMountain,
	"city":        DestinationCity,
	"ciudad":      DestinationCity,
	"countryside": DestinationCountryside,
	"campo":       DestinationCountryside,
	"adventure":   DestinationAdventure,
	"aventura":    DestinationAdventure,
	"other":       DestinationOther,
	"otro":        DestinationOther,
}

// ParseDestinationType accepts English or Spanish labels, case-insensitively.
func ParseDestinationType(s string) (DestinationType, bool) {
	t, ok := destinationLabels[strings.ToLower(strings.TrimSpace(s))]
	return t, ok
}

const (
	DefaultNumberOfCities = 3
	MaxNumberOfCities     = 10
)

// TravelPreferences is only ever built by the preference validator; optional
// fields are pointers or possibly-empty slices and are defaulted at render time.
type TravelPreferences struct {
	TravelDates              TravelDates              `json:"travelDates"`
	DestinationPreferences   DestinationPreferences   `json:"destinationPreferences"`
	Budget                   Budget                   `json:"budget"`
	Interests                []string                 `json:"interests,omitempty"`
	AccommodationPreferences AccommodationPreferences `json:"accommodationPreferences"`
	TransportPreferences     TransportPreferences     `json:"transportPreferences"`
	FoodPreferences          FoodPreferences          `json:"foodPreferences"`
	TravelCompanion          TravelCompanion          `json:"travelCompanion"`
	ActivityLevel            ActivityLevel            `json:"activityLevel"`
	AdditionalPreferences    *string                  `json:"additionalPreferences,omitempty"`
	NumberOfCities           int                      `json:"numberOfCities"`

	// Description is the trip description; it is not a preference but is
	// rendered into the itinerary request.
	Description *string `json:"description,omitempty"`
}

// TravelDates are kept as the client sent them. No ordering is enforced.
type TravelDates struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type DestinationPreferences struct {
	Type        DestinationType `json:"type"`
	Country     *string         `json:"country,omitempty"`
	CountryName string          `json:"countryName"`
	Region      *string         `json:"region,omitempty"`
	Climate     *string         `json:"climate,omitempty"`
}

type Budget struct {
	Total      float64 `json:"total"`
	Allocation *string `json:"allocation,omitempty"`
}

type AccommodationPreferences struct {
	Type      string   `json:"type"`
	Stars     *string  `json:"stars,omitempty"`
	Location  *string  `json:"location,omitempty"`
	Amenities []string `json:"amenities,omitempty"`
}

type TransportPreferences struct {
	PreferredMode string  `json:"preferredMode"`
	Mobility      *string `json:"mobility,omitempty"`
	SpecialNeeds  *string `json:"specialNeeds,omitempty"`
}

type FoodPreferences struct {
	Cuisine             []string `json:"cuisine,omitempty"`
	DietaryRestrictions *string  `json:"dietaryRestrictions,omitempty"`
	CulinaryExperiences []string `json:"culinaryExperiences,omitempty"`
}

type TravelCompanion struct {
	Type                string  `json:"type"`
	Ages                []int   `json:"ages,omitempty"`
	SpecialRequirements *string `json:"specialRequirements,omitempty"`
}

type ActivityLevel struct {
	Pace               string  `json:"pace"`
	FreeTimePreference *string `json:"freeTimePreference,omitempty"`
}
