package httpapi

import (
	"net/http"

	"qrmenu/pkg/metrics"
	"qrmenu/pkg/pathid"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func NewRouter(handler *Handler, m *metrics.HTTP) http.Handler {
	r := mux.NewRouter()
	if m != nil {
		r.Use(m.Middleware)
		r.Handle("/metrics", m.Handler()).Methods("GET")
	}
	r.Use(pathid.Middleware)
	handler.RegisterRoutes(r)
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(r)
}
