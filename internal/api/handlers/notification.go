package handlers

import (
	"net/http"
	"time"

	"github.com/sentinelops/sentinel/internal/domain/notification"
	"github.com/sentinelops/sentinel/internal/pkg/logger"
	"github.com/sentinelops/sentinel/internal/pkg/utils"
)

type NotificationHandler struct {
	history notification.Repository
	logger  *logger.Logger
}

func NewNotificationHandler(history notification.Repository, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{history: history, logger: log}
}

// List returns notification history with pagination and filtering
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	params := utils.ParsePaginationParams(r)

	filter := notification.Filter{
		AlertID:     r.URL.Query().Get("alert_id"),
		ChannelType: notification.ChannelType(r.URL.Query().Get("channel_type")),
		Status:      notification.Status(r.URL.Query().Get("status")),
	}
	if from := r.URL.Query().Get("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filter.From = &t
		}
	}
	if to := r.URL.Query().Get("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = &t
		}
	}

	items, total, err := h.history.List(r.Context(), filter, params.PageSize, params.Offset)
	if err != nil {
		utils.WriteAppError(w, err, "Failed to list notification history")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(items, params.Page, params.PageSize, total))
}
