package handler

import (
	"net/http"

	"weather-acquisition-go/internal/domain/datasources"
	"weather-acquisition-go/pkg/logger"
)

type Handlers struct {
	DataSources *EntityHandler[datasources.DataSource, *datasources.DataSource]
	log         logger.Logger
}

func New(dataSources *EntityHandler[datasources.DataSource, *datasources.DataSource], log logger.Logger) *Handlers {
	return &Handlers{
		DataSources: dataSources,
		log:         log,
	}
}

type healthResponse struct {
	Status string `json:"status"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
