package httpserver

import (
	"net/http"
	"time"

	"weather-acquisition-go/internal/config"
	"weather-acquisition-go/internal/metrics"
	"weather-acquisition-go/internal/transport/httpserver/handler"
	"weather-acquisition-go/internal/transport/httpserver/middleware"
	"weather-acquisition-go/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the collection API. metricsHandler may be nil, in which
// case /metrics is not served.
func NewRouter(cfg config.Config, handlers *handler.Handlers, m *metrics.Metrics, metricsHandler http.Handler, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log, m))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.NewCORS(cfg.CORSOrigins))

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	collectionPath := cfg.CollectionName
	if collectionPath == "" {
		collectionPath = "datasources"
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)
		r.Route("/"+collectionPath, handlers.DataSources.Routes)
	})

	return r
}
