package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sentinelops/sentinel/internal/pipeline"
	"github.com/sentinelops/sentinel/internal/pkg/errors"
	"github.com/sentinelops/sentinel/internal/pkg/logger"
	"github.com/sentinelops/sentinel/internal/pkg/utils"
)

type CorrelationHandler struct {
	pipeline *pipeline.Service
	logger   *logger.Logger
}

func NewCorrelationHandler(p *pipeline.Service, log *logger.Logger) *CorrelationHandler {
	return &CorrelationHandler{pipeline: p, logger: log}
}

type feedbackRequest struct {
	IsAccurate *bool `json:"is_accurate"`
}

// Feedback records an accuracy judgment for a correlation
func (h *CorrelationHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}
	if req.IsAccurate == nil {
		utils.WriteError(w, errors.BadRequest("is_accurate is required"))
		return
	}

	if err := h.pipeline.FeedbackCorrelation(r.Context(), id, *req.IsAccurate); err != nil {
		utils.WriteAppError(w, err, "Failed to record correlation feedback")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"correlation_id": id,
		"is_accurate":    *req.IsAccurate,
	})
}
