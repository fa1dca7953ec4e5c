package httpserver

import (
	"net/http"
	"time"

	"weather-acquisition-go/internal/config"
)

// WriteTimeout stays above the router's 30s request timeout so the timeout
// response can still be written.
func New(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
