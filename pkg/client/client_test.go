package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sentinelops/sentinel/pkg/client"
)

func TestClient_IngestEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/events" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var ev map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		if ev["title"] != "High CPU usage" {
			t.Errorf("title = %v, want High CPU usage", ev["title"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"alert_id":    "a1",
				"action":      "created",
				"fingerprint": "abc123",
			},
		})
	}))
	defer server.Close()

	c := client.NewClient(client.Config{BaseURL: server.URL})

	result, err := c.Events().Ingest(context.Background(), &client.Event{
		Title:    "High CPU usage",
		Source:   "prometheus",
		Severity: "high",
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if result.AlertID != "a1" {
		t.Errorf("AlertID = %v, want a1", result.AlertID)
	}
	if result.Action != "created" {
		t.Errorf("Action = %v, want created", result.Action)
	}
}

func TestClient_ListAlerts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/alerts" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("severity"); got != "high" {
			t.Errorf("severity query = %v, want high", got)
		}
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("page query = %v, want 2", got)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"data":        []map[string]interface{}{{"id": "a1", "severity": "high"}},
				"page":        2,
				"page_size":   10,
				"total_items": 11,
				"total_pages": 2,
			},
		})
	}))
	defer server.Close()

	c := client.NewClient(client.Config{BaseURL: server.URL})

	page, err := c.Alerts().List(context.Background(), &client.AlertListOptions{
		ListOptions: client.ListOptions{Page: 2, PageSize: 10},
		Severity:    "high",
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page.Data) != 1 {
		t.Fatalf("alert count = %d, want 1", len(page.Data))
	}
	if page.Data[0].ID != "a1" {
		t.Errorf("alert id = %v, want a1", page.Data[0].ID)
	}
	if page.TotalItems != 11 {
		t.Errorf("TotalItems = %d, want 11", page.TotalItems)
	}
}

func TestClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error": map[string]interface{}{
				"code":    "NOT_FOUND",
				"message": "Alert not found",
			},
		})
	}))
	defer server.Close()

	c := client.NewClient(client.Config{BaseURL: server.URL})

	_, err := c.Alerts().Get(context.Background(), "missing")
	if err == nil {
		t.Fatal("Get() error = nil, want APIError")
	}

	apiErr, ok := err.(*client.APIError)
	if !ok {
		t.Fatalf("error type = %T, want *client.APIError", err)
	}
	if !apiErr.IsNotFound() {
		t.Errorf("IsNotFound() = false, want true")
	}
	if apiErr.Code != "NOT_FOUND" {
		t.Errorf("Code = %v, want NOT_FOUND", apiErr.Code)
	}
}
