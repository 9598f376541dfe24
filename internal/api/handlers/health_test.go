package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sentinelops/sentinel/internal/testutil"
)

func TestHealthHandler_Healthz(t *testing.T) {
	handler := NewHealthHandler(nil, testutil.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()

	handler.Healthz(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}
}

func TestHealthHandler_Readyz(t *testing.T) {
	db := testutil.NewTestDB(t)
	handler := NewHealthHandler(db.DB, testutil.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rr := httptest.NewRecorder()

	handler.Readyz(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}
}

func TestHealthHandler_Readyz_DatabaseDown(t *testing.T) {
	db := testutil.NewTestDB(t)
	db.Close()
	handler := NewHealthHandler(db.DB, testutil.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rr := httptest.NewRecorder()

	handler.Readyz(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusServiceUnavailable)
	}
}
