// Package httpapi exposes the monitor CRUD surface consumed by the
// frontend. The scheduler core never talks to this package; both sides
// meet only in the store.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/sitepulse/sitepulse/internal/domain/monitor"
)

type Server struct {
	log    *zap.Logger
	repo   monitor.Repo
	health func(context.Context) error
}

func NewServer(log *zap.Logger, repo monitor.Repo, health func(context.Context) error) *Server {
	return &Server{log: log, repo: repo, health: health}
}

func (s *Server) Handler(corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", s.handleHealth)
	r.Route("/monitors", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Get("/{id}", s.handleGet)
		r.Delete("/{id}", s.handleDelete)
	})

	return otelhttp.NewHandler(r, "httpapi")
}
