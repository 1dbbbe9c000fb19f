package main

import (
	"context"
	"database/sql"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"wildtrail/internal/adapters/catalogapi"
	"wildtrail/internal/adapters/observability"
	redisad "wildtrail/internal/adapters/redis"
	"wildtrail/internal/app"
	"wildtrail/internal/domain"
	"wildtrail/internal/shared"
	mysqlrepo "wildtrail/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel, "ingestor")

	log.Info().
		Str("base", cfg.CatalogAPIBase).
		Int("workers", cfg.Workers).
		Msg("ingestor starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	client, err := catalogapi.New(cfg.CatalogAPIBase, cfg.CatalogAPIKey, cfg.CatalogAPIRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize catalog API client")
	}
	rc := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer rc.Close()
	ing := app.NewIngestionService(client, repo, redisad.New(rc))

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0

	for _, tab := range domain.Tabs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("ingestion interrupted")
			break
		}

		wg.Add(1)
		go func(tab domain.Tab) {
			defer wg.Done()
			defer sem.Release(1)

			res, err := ing.IngestTab(ctx, tab)
			if err != nil {
				log.Warn().Str("tab", string(tab)).Err(err).Msg("ingest failed")
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			log.Info().
				Str("tab", string(tab)).
				Int("fetched", res.Fetched).
				Int("stored", res.Stored).
				Int("skipped", res.Skipped).
				Msg("ingest ok")
		}(tab)
	}

	wg.Wait()
	if failed > 0 {
		log.Fatal().Int("failed_tabs", failed).Msg("ingestion finished with errors")
	}
	log.Info().Msg("ingestion completed")
}
