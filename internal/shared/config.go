package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	OpenAIKey       string
	OpenAIBase      string
	CityModel       string
	ItineraryModel  string
	AmadeusBase     string
	AmadeusKey      string
	AmadeusSecret   string
	CivitatisBase   string
	OutboundRPS     int
	FetchTimeout    time.Duration
	EnrichBudget    time.Duration
	GenerateTimeout time.Duration

	EnrichWorkers     int
	ActivitiesPerCity int
	HotelsPerCity     int
	CacheTTL          time.Duration

	WarmCityCodes []string
	WarmWorkers   int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-integer setting")
		}
		return def
	}
	fetchSec := atoi("FETCH_TIMEOUT_SECONDS", 20)
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/trips?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", ""),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),

		OpenAIKey:       env("OPENAI_API_KEY", ""),
		OpenAIBase:      env("OPENAI_BASE_URL", ""),
		CityModel:       env("OPENAI_CITY_MODEL", "gpt-4o-mini"),
		ItineraryModel:  env("OPENAI_ITINERARY_MODEL", "gpt-4o"),
		AmadeusBase:     env("AMADEUS_BASE_URL", "https://test.api.amadeus.com"),
		AmadeusKey:      env("AMADEUS_API_KEY", ""),
		AmadeusSecret:   env("AMADEUS_API_SECRET", ""),
		CivitatisBase:   env("CIVITATIS_BASE_URL", "https://www.civitatis.com"),
		OutboundRPS:     atoi("OUTBOUND_RPS", 5),
		FetchTimeout:    time.Duration(fetchSec) * time.Second,
		EnrichBudget:    time.Duration(atoi("ENRICH_BUDGET_SECONDS", 2*fetchSec)) * time.Second,
		GenerateTimeout: time.Duration(atoi("GENERATION_TIMEOUT_SECONDS", 120)) * time.Second,

		EnrichWorkers:     atoi("ENRICH_WORKERS", 4),
		ActivitiesPerCity: atoi("ACTIVITIES_PER_CITY", 5),
		HotelsPerCity:     atoi("HOTELS_PER_CITY", 3),
		CacheTTL:          time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,

		WarmCityCodes: CityCodes(env("WARM_CITY_CODES", "")),
		WarmWorkers:   atoi("WARM_WORKERS", 4),
	}
	if c.OpenAIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is empty")
	}
	if c.AmadeusKey == "" || c.AmadeusSecret == "" {
		log.Warn().Msg("AMADEUS_API_KEY or AMADEUS_API_SECRET is empty")
	}
	return c
}

// requestSlack covers trip persistence and writing the response.
const requestSlack = 10 * time.Second

// RequestTimeout is the server-side deadline for one request: city
// resolution, the enrichment budget and generation run back to back.
func (c Config) RequestTimeout() time.Duration {
	return c.FetchTimeout + c.EnrichBudget + c.GenerateTimeout + requestSlack
}

// CityCodes splits a comma or space separated list, uppercased and deduplicated.
func CityCodes(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == ';' }) {
		code := strings.ToUpper(strings.TrimSpace(f))
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
