package main

import (
	"context"
	"log"
	"time"

	"qrmenu/config"
	httpapi "qrmenu/menu-svc/internal/api/http"
	"qrmenu/menu-svc/internal/service"
	"qrmenu/menu-svc/internal/storage"
	"qrmenu/pkg/logger"
	"qrmenu/pkg/metrics"
	"qrmenu/pkg/server"
	"qrmenu/schema"

	"github.com/go-playground/validator/v10"
)

func main() {
	cfg := config.MustLoad("menu-svc")
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

	images, err := storage.NewImageStore(context.Background(), cfg.Storage)
	if err != nil {
		logg.Fatalw("failed to init object storage", "provider", cfg.Storage.Provider, "error", err)
	}

	repo := storage.NewPostgresRepository(db)
	secret := []byte(cfg.Auth.JWTSecret)

	handler := httpapi.NewHandler(
		service.NewAuthService(repo, secret, cfg.Auth.TokenTTL),
		service.NewRestaurantService(repo),
		service.NewMenuService(repo, repo, repo),
		service.NewTableService(repo),
		service.NewQRService(cfg.PublicBaseURL, service.DefaultQRGenerator{}, repo, repo),
		service.NewDraftService(storage.NewRedisDraftStore(rdb, storage.DraftTTL)),
		service.NewImageService(images),
		validator.New(),
		logg,
		secret,
	)

	var m *metrics.HTTP
	if cfg.Metrics.Enabled {
		m = metrics.NewHTTP(cfg.Service)
	}

	ctx, stop := server.SignalContext()
	defer stop()

	srv := server.New(cfg.HTTP.Addr, httpapi.NewRouter(handler, m))
	if err := server.Run(ctx, srv, cfg.HTTP.ShutdownTimeout, logg); err != nil {
		logg.Fatalw("menu-svc stopped", "error", err)
	}
}
