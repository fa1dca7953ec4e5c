package app

import (
	"fmt"
	"net/http"

	"weather-acquisition-go/internal/config"
	"weather-acquisition-go/internal/db"
	"weather-acquisition-go/internal/domain/collection"
	"weather-acquisition-go/internal/domain/datasources"
	"weather-acquisition-go/internal/metrics"
	"weather-acquisition-go/internal/repository/inmemory"
	"weather-acquisition-go/internal/repository/remote"
	"weather-acquisition-go/internal/repository/store"
	"weather-acquisition-go/internal/transport/httpserver"
	"weather-acquisition-go/internal/transport/httpserver/handler"
	"weather-acquisition-go/pkg/logger"
	"gorm.io/gorm"
)

const serviceName = "weather-acquisition"

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
	repo       collection.Repository[datasources.DataSource]
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg, log)
}

func NewWithConfig(cfg config.Config, log logger.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{cfg: cfg}

	log.Info("app: initializing repository", "backend", cfg.Backend)
	repo, err := a.newRepository(log)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	var m *metrics.Metrics
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		log.Info("app: initializing metrics")
		m, metricsHandler, err = metrics.Setup(serviceName)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("metrics setup: %w", err)
		}
		repo = metrics.Instrument(repo, m, cfg.CollectionName)
	}
	a.repo = repo

	log.Info("app: initializing router")
	dataSources := handler.NewEntityHandler[datasources.DataSource, *datasources.DataSource](repo, cfg.CollectionName, log)
	router := httpserver.NewRouter(cfg, handler.New(dataSources, log), m, metricsHandler, log)

	log.Info("app: initializing http server")
	a.httpServer = httpserver.New(cfg, router)

	return a, nil
}

func (a *App) newRepository(log logger.Logger) (collection.Repository[datasources.DataSource], error) {
	switch a.cfg.Backend {
	case config.BackendRemote:
		log.Info("app: proxying collection", "base_url", a.cfg.Remote.BaseURL)
		return remote.New[datasources.DataSource, *datasources.DataSource](remote.Config{
			BaseURL: a.cfg.Remote.BaseURL,
			Timeout: a.cfg.Remote.Timeout,
		})
	default:
		log.Info("app: initializing database")
		dbConn, err := db.Open(a.cfg.DB, log)
		if err != nil {
			return nil, err
		}
		a.db = dbConn

		if err := db.Migrate(dbConn, a.cfg.DB.MigrationsDir, &datasources.DataSource{}); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}

		tracker := inmemory.NewIdentityMap[datasources.DataSource](a.cfg.Store.TrackingTTL)
		return store.New[datasources.DataSource, *datasources.DataSource](dbConn, store.WithTracker[datasources.DataSource](tracker)), nil
	}
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Repository() collection.Repository[datasources.DataSource] {
	return a.repo
}

func (a *App) Close() error {
	return db.Close(a.db)
}
