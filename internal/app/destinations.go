package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"trip_planner/internal/domain"
	"trip_planner/internal/llmjson"
)

const (
	citySystemPrompt = "Eres un experto en geografía y turismo."
	cityMaxTokens    = 400
	cityTemperature  = 0.3
)

var errNoUsableCities = errors.New("no usable city entries")

// DestinationExpander resolves a country into candidate cities through the
// generation source.
type DestinationExpander struct {
	gen     domain.Generator
	model   string
	timeout time.Duration
}

func NewDestinationExpander(g domain.Generator, model string, timeout time.Duration) *DestinationExpander {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &DestinationExpander{gen: g, model: model, timeout: timeout}
}

// TopCities returns at most n candidates for country. Only n<1 is an error;
// generation or parse failures are logged and yield an empty list.
func (e *DestinationExpander) TopCities(ctx context.Context, country string, n int) ([]domain.CityCandidate, error) {
	if n < 1 {
		return nil, &domain.ValidationError{Field: "numberOfCities", Reason: "must be at least 1"}
	}

	cities, err := e.resolve(ctx, country, n)
	if err != nil {
		cerr := &domain.CityResolutionError{Country: country, Err: err}
		log.Warn().Err(cerr).Str("country", country).Int("requested", n).Msg("city resolution failed; continuing without cities")
		return []domain.CityCandidate{}, nil
	}
	return cities, nil
}

func (e *DestinationExpander) resolve(ctx context.Context, country string, n int) ([]domain.CityCandidate, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	text, err := e.gen.Complete(ctx, domain.CompletionRequest{
		Model:       e.model,
		System:      citySystemPrompt,
		Prompt:      cityPrompt(country, n),
		MaxTokens:   cityMaxTokens,
		Temperature: cityTemperature,
	})
	if err != nil {
		return nil, err
	}

	arr, err := llmjson.FirstArray(text)
	if err != nil {
		return nil, err
	}
	var entries []any
	if err := json.Unmarshal([]byte(arr), &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", llmjson.ErrInvalid, err)
	}

	out := parseCities(entries, n)
	if len(out) == 0 {
		return nil, errNoUsableCities
	}
	return out, nil
}

func cityPrompt(country string, n int) string {
	return fmt.Sprintf(`Proporciona una lista en formato JSON de las %d ciudades más importantes de %s.
Para cada ciudad indica su nombre en español, sin acentos y en minúscula, y su código de ciudad IATA en mayúsculas.
La respuesta debe ser únicamente un array JSON, sin texto adicional.

Ejemplo de formato:
[{"nombre": "ciudad1", "codigo": "AAA"}, {"nombre": "ciudad2", "codigo": "BBB"}]`, n, country)
}

// parseCities keeps entries carrying both fields, collapses duplicate display
// names (first wins) and truncates to n.
func parseCities(entries []any, n int) []domain.CityCandidate {
	size := min(n, len(entries))
	out := make([]domain.CityCandidate, 0, size)
	seen := make(map[string]struct{}, size)
	for _, it := range entries {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		c := domain.CityCandidate{
			DisplayName: NormalizeCityName(firstNonEmptyAlias(m, cityAliases, "display")),
			LookupCode:  strings.ToUpper(firstNonEmptyAlias(m, cityAliases, "code")),
		}
		if c.DisplayName == "" || c.LookupCode == "" {
			continue
		}
		if _, dup := seen[c.DisplayName]; dup {
			continue
		}
		seen[c.DisplayName] = struct{}{}
		out = append(out, c)
		if len(out) == n {
			break
		}
	}
	return out
}

// NormalizeCityName lowercases s, strips accents and collapses whitespace.
func NormalizeCityName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}
