/*
server.go - HTTP router for the batch report server

PURPOSE:
  Configures the chi router and middleware for the optional report
  mode: once a batch has finished, the final account snapshots and the
  rejection log can be served over HTTP for inspection. The server
  never ingests transactions.

ROUTER: chi
  Lightweight, context-based, with the middleware we need.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address behind proxies
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Read-only cross-origin access

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/payments/main.go: Server startup after the batch completes
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a router exposing the finished batch.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", h.Health)
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.ListAccounts)
			r.Get("/{client}", h.GetAccount)
		})
		r.Get("/rejections", h.ListRejections)
	})

	return r
}
