package channels

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebhookSender_Send(t *testing.T) {
	var gotBody string
	var gotSignature string
	var gotContentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotSignature = r.Header.Get("X-Sentinel-Signature")
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	sender := NewWebhookSender()
	body := `{"alert_id":"a1","title":"High CPU usage"}`
	config := map[string]interface{}{"url": srv.URL, "secret": "s3cret"}

	result, err := sender.Send(context.Background(), "", "High CPU usage", body, config)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !result.Success {
		t.Fatalf("Send() success = false, error = %s", result.Error)
	}

	if gotBody != body {
		t.Errorf("posted body = %q, want %q", gotBody, body)
	}
	if gotContentType != "application/json" {
		t.Errorf("content type = %q, want application/json", gotContentType)
	}

	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write([]byte(body))
	wantSig := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	if gotSignature != wantSig {
		t.Errorf("signature = %q, want %q", gotSignature, wantSig)
	}

	if result.ResponseData["status_code"] != "200" {
		t.Errorf("response status_code = %q, want 200", result.ResponseData["status_code"])
	}
}

func TestWebhookSender_Send_RecipientFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sender := NewWebhookSender()
	result, err := sender.Send(context.Background(), srv.URL, "subject", "{}", nil)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !result.Success {
		t.Errorf("Send() success = false, error = %s", result.Error)
	}
}

func TestWebhookSender_Send_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sender := NewWebhookSender()
	result, err := sender.Send(context.Background(), "", "s", "{}", map[string]interface{}{"url": srv.URL})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if result.Success {
		t.Error("Send() success = true on 502, want false")
	}
	if result.ResponseData["status_code"] != "502" {
		t.Errorf("response status_code = %q, want 502", result.ResponseData["status_code"])
	}
}

func TestWebhookSender_Send_NoURL(t *testing.T) {
	sender := NewWebhookSender()
	result, err := sender.Send(context.Background(), "", "s", "{}", nil)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if result.Success {
		t.Error("Send() success = true without a URL, want false")
	}
}

func TestWebhookSender_ValidateConfig(t *testing.T) {
	sender := NewWebhookSender()

	if problems := sender.ValidateConfig(map[string]interface{}{"url": "https://example.com/hook"}); len(problems) != 0 {
		t.Errorf("ValidateConfig() = %v, want no problems", problems)
	}
	if problems := sender.ValidateConfig(nil); len(problems) != 1 {
		t.Errorf("ValidateConfig() = %v, want url problem", problems)
	}
}
