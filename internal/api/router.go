// Package api wires the HTTP surface of the local finance service.
package api

import (
	"net/http"
	"time"

	"github.com/dvloznov/finance-copilot/internal/api/handlers"
	"github.com/dvloznov/finance-copilot/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// requestTimeout bounds every request, including assistant round trips with
// their retries.
const requestTimeout = 60 * time.Second

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Entities  *handlers.EntitiesHandler
	Money     *handlers.MoneyHandler
	Assistant *handlers.AssistantHandler
	Reports   *handlers.ReportsHandler
}

// NewRouter creates the chi router serving /health and the /api tree.
func NewRouter(h Handlers, log zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.HeaderRequestID},
		ExposedHeaders: []string{middleware.HeaderRequestID},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	r.Route("/api", func(r chi.Router) {
		if h.Entities != nil {
			h.Entities.Routes(r)
		}
		if h.Money != nil {
			r.Route("/money", h.Money.Routes)
		}
		if h.Assistant != nil {
			r.Route("/assistant", h.Assistant.Routes)
		}
		if h.Reports != nil {
			h.Reports.Routes(r)
		}
	})

	return r
}
