package main

import (
	"log"

	"qrmenu/config"
	httpapi "qrmenu/feed-svc/internal/api/http"
	"qrmenu/feed-svc/internal/service"
	"qrmenu/feed-svc/internal/storage"
	"qrmenu/pkg/logger"
	"qrmenu/pkg/metrics"
	"qrmenu/pkg/server"
)

func main() {
	cfg := config.MustLoad("feed-svc")
	logg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatal("Failed to init logger:", err)
	}
	logg = logg.Named(cfg.Service)
	defer logg.Sync()

	if cfg.Auth.JWTSecret == "" {
		logg.Fatal("auth.jwt_secret must be set")
	}

	rdb := config.MustInitRedis(cfg.Redis, logg)
	defer rdb.Close()

	reader := config.NewKafkaReader(cfg.Kafka, "feed-svc")
	defer reader.Close()

	hub := service.NewHub()
	consumer := service.NewConsumer(reader, storage.NewPopularityStore(rdb), hub, logg)
	handler := httpapi.NewHandler(hub, logg, []byte(cfg.Auth.JWTSecret))

	var m *metrics.HTTP
	if cfg.Metrics.Enabled {
		m = metrics.NewHTTP(cfg.Service)
		if err := m.Register(hub.Collectors()...); err != nil {
			logg.Fatalw("failed to register hub metrics", "error", err)
		}
	}

	ctx, stop := server.SignalContext()
	defer stop()

	logg.Infow("consuming order events", "broker", cfg.Kafka.Broker, "topic", cfg.Kafka.OrdersTopic)
	srv := server.New(cfg.HTTP.Addr, httpapi.NewRouter(handler, m))
	if err := server.Run(ctx, srv, cfg.HTTP.ShutdownTimeout, logg, consumer.Run); err != nil {
		logg.Fatalw("feed-svc stopped", "error", err)
	}
}
