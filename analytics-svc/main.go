package main

import (
	"context"
	"log"
	"time"

	httpapi "qrmenu/analytics-svc/internal/api/http"
	"qrmenu/analytics-svc/internal/service"
	"qrmenu/analytics-svc/internal/storage"
	"qrmenu/config"
	"qrmenu/pkg/logger"
	"qrmenu/pkg/metrics"
	"qrmenu/pkg/server"
	"qrmenu/schema"
)

func main() {
	cfg := config.MustLoad("analytics-svc")
	logg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatal("Failed to init logger:", err)
	}
	logg = logg.Named(cfg.Service)
	defer logg.Sync()

	if cfg.Auth.JWTSecret == "" {
		logg.Fatal("auth.jwt_secret must be set")
	}

	db := config.MustInitPostgres(cfg.DB, logg)
	defer db.Close()

	verifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := schema.Verify(verifyCtx, db); err != nil {
		logg.Fatalw("database schema check failed, run `migrate up`", "error", err)
	}
	cancel()

	rdb := config.MustInitRedis(cfg.Redis, logg)
	defer rdb.Close()

	analytics := service.NewAnalyticsService(
		storage.NewPopularityReader(rdb),
		storage.NewPostgresRepository(db),
		logg,
	)
	handler := httpapi.NewHandler(analytics, logg, []byte(cfg.Auth.JWTSecret))

	var m *metrics.HTTP
	if cfg.Metrics.Enabled {
		m = metrics.NewHTTP(cfg.Service)
	}

	ctx, stop := server.SignalContext()
	defer stop()

	srv := server.New(cfg.HTTP.Addr, httpapi.NewRouter(handler, m))
	if err := server.Run(ctx, srv, cfg.HTTP.ShutdownTimeout, logg); err != nil {
		logg.Fatalw("analytics-svc stopped", "error", err)
	}
}
