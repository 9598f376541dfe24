package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sentinelops/sentinel/internal/domain/alert"
	"github.com/sentinelops/sentinel/internal/ingest"
	"github.com/sentinelops/sentinel/internal/pipeline"
	"github.com/sentinelops/sentinel/internal/pkg/errors"
	"github.com/sentinelops/sentinel/internal/pkg/logger"
	"github.com/sentinelops/sentinel/internal/pkg/utils"
)

// EventHandler accepts raw alert events and runs them through the pipeline
type EventHandler struct {
	pipeline *pipeline.Service
	logger   *logger.Logger
}

func NewEventHandler(p *pipeline.Service, log *logger.Logger) *EventHandler {
	return &EventHandler{pipeline: p, logger: log}
}

// Ingest processes one incoming alert event
func (h *EventHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var ev alert.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	result, err := h.pipeline.ProcessAlertEvent(r.Context(), &ev)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to process alert event")
		return
	}

	status := http.StatusCreated
	if result.Action == ingest.ActionUpdated || result.Filtered {
		status = http.StatusOK
	}

	utils.WriteSuccess(w, status, result)
}
