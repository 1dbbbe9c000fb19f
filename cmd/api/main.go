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

	"wildtrail/internal/adapters/catalogapi"
	server "wildtrail/internal/adapters/http_server"
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

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel, "api")

	observability.Serve(cfg.MetricsAddr)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	rc := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer rc.Close()
	cache := redisad.New(rc)

	var submitter domain.BookingSubmitter
	if cfg.CatalogAPIBase != "" && cfg.CatalogAPIKey != "" {
		client, err := catalogapi.New(cfg.CatalogAPIBase, cfg.CatalogAPIKey, cfg.CatalogAPIRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize catalog API client")
		}
		submitter = client
	} else {
		log.Warn().Msg("no catalog API configured: bookings are stored locally only")
	}

	settings := shared.NewSettings(cfg.Site)
	cfg.WatchSite(settings)

	catalog := app.NewCatalogService(repo, cache, cfg.CacheTTL)
	bookings := app.NewBookingService(repo, submitter)

	// http
	srv := server.New(cfg.CORSOrigins)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Catalog:  catalog,
		Browse:   app.NewBrowseService(catalog, redisad.NewSessionStore(rc), bookings, settings, cfg.SessionTTL),
		Bookings: bookings,
		Contact:  app.NewContactService(repo),
		Settings: settings,
		Ready: func(ctx context.Context) error {
			if err := repo.Ping(ctx); err != nil {
				return err
			}
			return cache.Ping(ctx)
		},
	}, server.RouteOptions{AdminTokenHash: cfg.AdminTokenHash, ContactRPM: cfg.ContactRPM})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
