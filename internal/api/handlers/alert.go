package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sentinelops/sentinel/internal/domain/alert"
	domaincorr "github.com/sentinelops/sentinel/internal/domain/correlation"
	"github.com/sentinelops/sentinel/internal/pipeline"
	"github.com/sentinelops/sentinel/internal/pkg/errors"
	"github.com/sentinelops/sentinel/internal/pkg/logger"
	"github.com/sentinelops/sentinel/internal/pkg/utils"
)

type AlertHandler struct {
	pipeline     *pipeline.Service
	alerts       alert.Repository
	correlations domaincorr.Repository
	logger       *logger.Logger
}

func NewAlertHandler(p *pipeline.Service, alerts alert.Repository, correlations domaincorr.Repository, log *logger.Logger) *AlertHandler {
	return &AlertHandler{pipeline: p, alerts: alerts, correlations: correlations, logger: log}
}

// List returns alerts with pagination and filtering
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	params := utils.ParsePaginationParams(r)

	filter := alert.Filter{
		Severity: r.URL.Query().Get("severity"),
		Status:   r.URL.Query().Get("status"),
		Source:   r.URL.Query().Get("source"),
		RuleID:   r.URL.Query().Get("rule_id"),
	}

	alerts, total, err := h.alerts.List(r.Context(), filter, params.PageSize, params.Offset)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to list alerts")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(alerts, params.Page, params.PageSize, total))
}

// Get returns a single alert with its recorded correlations
func (h *AlertHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	a, err := h.alerts.GetByID(r.Context(), id)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to get alert")
		return
	}

	correlations, err := h.correlations.ListByAlert(r.Context(), id)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to list correlations")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"alert":        a,
		"correlations": correlations,
	})
}

type actorRequest struct {
	UserID string `json:"user_id"`
}

// Acknowledge marks an alert acknowledged
func (h *AlertHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req actorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}
	if req.UserID == "" {
		utils.WriteError(w, errors.BadRequest("user_id is required"))
		return
	}

	result, err := h.pipeline.AcknowledgeAlert(r.Context(), id, req.UserID)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to acknowledge alert")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, result)
}

// Resolve marks an alert resolved
func (h *AlertHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req actorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}
	if req.UserID == "" {
		utils.WriteError(w, errors.BadRequest("user_id is required"))
		return
	}

	result, err := h.pipeline.ResolveAlert(r.Context(), id, req.UserID)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to resolve alert")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, result)
}

// Summary returns alert counts grouped by status
func (h *AlertHandler) Summary(w http.ResponseWriter, r *http.Request) {
	counts, err := h.alerts.CountByStatus(r.Context())
	if err != nil {
		utils.WriteAppError(w, err, "Failed to summarize alerts")
		return
	}

	total := 0
	for _, c := range counts {
		total += c
	}

	utils.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"total":     total,
		"by_status": counts,
	})
}
