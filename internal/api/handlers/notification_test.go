package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sentinelops/sentinel/internal/domain/notification"
	"github.com/sentinelops/sentinel/internal/testutil"
)

func TestNotificationHandler_List(t *testing.T) {
	fx := newHandlerFixture(t)
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fx.history.History["n1"] = &notification.History{
		ID:          "n1",
		AlertID:     "a1",
		ChannelType: notification.ChannelEmail,
		Recipient:   "ops@example.com",
		Status:      notification.StatusDelivered,
		CreatedAt:   createdAt,
	}
	fx.history.History["n2"] = &notification.History{
		ID:          "n2",
		AlertID:     "a2",
		ChannelType: notification.ChannelSMS,
		Recipient:   "+15551234567",
		Status:      notification.StatusFailed,
		CreatedAt:   createdAt.Add(time.Minute),
	}
	handler := NewNotificationHandler(fx.history, testutil.NewLogger())

	tests := []struct {
		name           string
		queryParams    string
		expectedStatus int
		expectedTotal  float64
	}{
		{
			name:           "list all notifications",
			queryParams:    "",
			expectedStatus: http.StatusOK,
			expectedTotal:  2,
		},
		{
			name:           "filter by status",
			queryParams:    "?status=failed",
			expectedStatus: http.StatusOK,
			expectedTotal:  1,
		},
		{
			name:           "filter by channel type",
			queryParams:    "?channel_type=email",
			expectedStatus: http.StatusOK,
			expectedTotal:  1,
		},
		{
			name:           "filter by alert",
			queryParams:    "?alert_id=a2",
			expectedStatus: http.StatusOK,
			expectedTotal:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications"+tt.queryParams, nil)
			rr := httptest.NewRecorder()

			handler.List(rr, req)

			if status := rr.Code; status != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", status, tt.expectedStatus)
			}

			var response map[string]interface{}
			if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			data := response["data"].(map[string]interface{})
			if total := data["total_items"].(float64); total != tt.expectedTotal {
				t.Errorf("total_items = %v, want %v", total, tt.expectedTotal)
			}
		})
	}
}
