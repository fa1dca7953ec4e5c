package middleware

import (
	"net/http"
	"time"

	"weather-acquisition-go/internal/metrics"
	"weather-acquisition-go/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger logs one line per request and records it in m when m is set.
// The route label is the matched chi pattern so ids do not explode cardinality.
func RequestLogger(log logger.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				duration := time.Since(start)
				route := r.URL.Path
				if rctx := chi.RouteContext(r.Context()); rctx != nil {
					if pattern := rctx.RoutePattern(); pattern != "" {
						route = pattern
					}
				}

				log.Info("http: request",
					"method", r.Method,
					"path", r.URL.Path,
					"route", route,
					"status", ww.Status(),
					"size", ww.BytesWritten(),
					"duration", duration,
					"request_id", chimw.GetReqID(r.Context()),
				)
				m.RecordHTTPRequest(r.Context(), r.Method, route, ww.Status(), duration)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
