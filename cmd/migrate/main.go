package main

import (
	"context"
	"database/sql"
	"flag"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"wildtrail/internal/adapters/observability"
	redisad "wildtrail/internal/adapters/redis"
	"wildtrail/internal/app"
	"wildtrail/internal/domain"
	"wildtrail/internal/shared"
	mysqlrepo "wildtrail/internal/storage/mysql"
)

func main() {
	seed := flag.Bool("seed", false, "load the sample catalog after migrating")
	flag.Parse()

	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel, "migrate")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}

	applied, err := mysqlrepo.Migrate(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	log.Info().Strs("applied", applied).Msg("migrations up to date")

	if !*seed {
		return
	}
	rc := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer rc.Close()
	var cache domain.Cache
	if err := rc.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unreachable: cached tabs not invalidated")
	} else {
		cache = redisad.New(rc)
	}
	n, err := app.SeedCatalog(ctx, mysqlrepo.New(db), cache)
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Int("items", n).Msg("seed done")
}
