package main

import (
	"context"
	"log"
	"time"

	"qrmenu/config"
	httpapi "qrmenu/order-svc/internal/api/http"
	"qrmenu/order-svc/internal/service"
	"qrmenu/order-svc/internal/storage"
	"qrmenu/pkg/events"
	"qrmenu/pkg/logger"
	"qrmenu/pkg/metrics"
	"qrmenu/pkg/server"
	"qrmenu/schema"

	"github.com/go-playground/validator/v10"
)

func main() {
	cfg := config.MustLoad("order-svc")
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

	writer := config.NewKafkaWriter(cfg.Kafka)
	defer writer.Close()
	publisher := events.NewKafkaPublisher(writer)

	repo := storage.NewPostgresRepository(db)
	store := storage.NewRedisStore(rdb)

	handler := httpapi.NewHandler(
		service.NewDeviceService(store, store, repo, publisher, logg),
		service.NewCartService(store, store, repo),
		service.NewOrderService(repo, store, store, publisher, logg),
		validator.New(),
		logg,
		[]byte(cfg.Auth.JWTSecret),
	)

	var m *metrics.HTTP
	if cfg.Metrics.Enabled {
		m = metrics.NewHTTP(cfg.Service)
	}

	ctx, stop := server.SignalContext()
	defer stop()

	logg.Infow("publishing order events", "broker", cfg.Kafka.Broker, "topic", cfg.Kafka.OrdersTopic)
	srv := server.New(cfg.HTTP.Addr, httpapi.NewRouter(handler, m))
	if err := server.Run(ctx, srv, cfg.HTTP.ShutdownTimeout, logg); err != nil {
		logg.Fatalw("order-svc stopped", "error", err)
	}
}
