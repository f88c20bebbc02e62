package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"trip_planner/internal/adapters/amadeus"
	"trip_planner/internal/adapters/civitatis"
	server "trip_planner/internal/adapters/http_server"
	"trip_planner/internal/adapters/memcache"
	"trip_planner/internal/adapters/observability"
	"trip_planner/internal/adapters/openai"
	redisad "trip_planner/internal/adapters/redis"
	"trip_planner/internal/app"
	"trip_planner/internal/domain"
	"trip_planner/internal/shared"
	mysqlrepo "trip_planner/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(reg)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := newCache(cfg)

	gen, err := openai.New(cfg.OpenAIKey, cfg.OpenAIBase, cfg.GenerateTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize generation client")
	}
	dir, err := amadeus.New(cfg.AmadeusBase, cfg.AmadeusKey, cfg.AmadeusSecret, cache, cfg.OutboundRPS, cfg.FetchTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize lodging directory client")
	}
	acts := civitatis.New(cfg.CivitatisBase, cfg.OutboundRPS, cfg.FetchTimeout)

	pipeline := app.NewItineraryService(
		app.NewDestinationExpander(gen, cfg.CityModel, cfg.FetchTimeout),
		app.NewEnrichmentCollector(acts, app.NewHotelPool(repo, dir), app.CollectorConfig{
			ActivitiesPerCity: cfg.ActivitiesPerCity,
			HotelsPerCity:     cfg.HotelsPerCity,
			Workers:           cfg.EnrichWorkers,
			FetchTimeout:      cfg.FetchTimeout,
			Budget:            cfg.EnrichBudget,
		}),
		app.NewSynthesizer(gen, app.SynthesizerConfig{Model: cfg.ItineraryModel, Timeout: cfg.GenerateTimeout}),
		repo,
	)
	q := app.NewTripQueryService(repo, repo, cache, cfg.CacheTTL)

	// http
	srv := server.New(cfg.RequestTimeout())
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{P: pipeline, Q: q, A: acts})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}

// newCache uses Redis when REDIS_ADDR is set and an in-process cache otherwise.
func newCache(cfg shared.Config) domain.Cache {
	if cfg.RedisAddr == "" {
		log.Warn().Msg("REDIS_ADDR is empty; using in-process cache")
		return memcache.New(10 * time.Minute)
	}
	rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
	}
	return rc
}
