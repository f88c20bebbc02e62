package main

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"trip_planner/internal/adapters/amadeus"
	"trip_planner/internal/adapters/memcache"
	"trip_planner/internal/adapters/observability"
	redisad "trip_planner/internal/adapters/redis"
	"trip_planner/internal/app"
	"trip_planner/internal/domain"
	"trip_planner/internal/shared"
	mysqlrepo "trip_planner/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	if len(cfg.WarmCityCodes) == 0 {
		log.Fatal().Msg("WARM_CITY_CODES is empty; nothing to warm")
	}
	log.Info().
		Str("base", cfg.AmadeusBase).
		Int("workers", cfg.WarmWorkers).
		Strs("cities", cfg.WarmCityCodes).
		Msg("hotel pool warmer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	// the bearer token is shared with the API when both point at the same Redis
	var tokens domain.Cache = memcache.New(time.Minute)
	if cfg.RedisAddr != "" {
		tokens = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	}
	dir, err := amadeus.New(cfg.AmadeusBase, cfg.AmadeusKey, cfg.AmadeusSecret, tokens, cfg.OutboundRPS, cfg.FetchTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize lodging directory client")
	}
	pool := app.NewHotelPool(repo, dir)

	workers := cfg.WarmWorkers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var failed atomic.Int32

	for _, code := range cfg.WarmCityCodes {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			defer sem.Release(1)

			fctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
			defer cancel()
			n, err := pool.Refresh(fctx, code)
			if err != nil {
				failed.Add(1)
				log.Warn().Str("city_code", code).Err(err).Msg("warm failed")
				return
			}
			log.Info().Str("city_code", code).Int("hotels", n).Msg("warm ok")
		}(code)
	}

	wg.Wait()
	log.Info().Int32("failed", failed.Load()).Int("total", len(cfg.WarmCityCodes)).Msg("warming completed")
}
