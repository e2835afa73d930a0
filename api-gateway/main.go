package main

import (
	"log"
	"net/http"
	"time"

	"qrmenu/api-gateway/internal/gateway"
	"qrmenu/config"
	"qrmenu/pkg/logger"
	"qrmenu/pkg/metrics"
	"qrmenu/pkg/server"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	cfg := config.MustLoad("api-gateway")
	logg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatal("Failed to init logger:", err)
	}
	logg = logg.Named(cfg.Service)
	defer logg.Sync()

	gw := gateway.NewGateway(cfg.Gateway, &http.Client{Timeout: 30 * time.Second}, logg)

	r := mux.NewRouter()
	if cfg.Metrics.Enabled {
		m := metrics.NewHTTP(cfg.Service)
		r.Use(m.Middleware)
		r.Handle("/metrics", m.Handler()).Methods("GET")
	}
	gw.SetupRoutes(r)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	ctx, stop := server.SignalContext()
	defer stop()

	logg.Infow("routing",
		"menu", cfg.Gateway.MenuSvcURL,
		"orders", cfg.Gateway.OrderSvcURL,
		"feed", cfg.Gateway.FeedSvcURL,
		"analytics", cfg.Gateway.AnalyticsSvcURL,
	)
	srv := server.New(cfg.HTTP.Addr, c.Handler(r))
	if err := server.Run(ctx, srv, cfg.HTTP.ShutdownTimeout, logg); err != nil {
		logg.Fatalw("api-gateway stopped", "error", err)
	}
}
