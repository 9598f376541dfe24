package channels

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sentinelops/sentinel/internal/domain/notification"
)

// WebhookSender delivers notifications as signed JSON POSTs
type WebhookSender struct {
	httpClient *http.Client
}

// NewWebhookSender creates the webhook transport
func NewWebhookSender() *WebhookSender {
	return &WebhookSender{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Send posts the body to the configured URL. When a secret is configured
// the payload is signed with HMAC-SHA256 in the X-Sentinel-Signature header.
func (s *WebhookSender) Send(ctx context.Context, recipient, subject, body string, config map[string]interface{}) (*notification.SendResult, error) {
	url, _ := config["url"].(string)
	if url == "" {
		url = recipient
	}
	if url == "" {
		return &notification.SendResult{Success: false, Error: "no webhook URL configured"}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader([]byte(body)))
	if err != nil {
		return &notification.SendResult{Success: false, Error: err.Error()}, nil
	}
	req.Header.Set("Content-Type", "application/json")

	if secret, _ := config["secret"].(string); secret != "" {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write([]byte(body))
		req.Header.Set("X-Sentinel-Signature", "sha256="+hex.EncodeToString(mac.Sum(nil)))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &notification.SendResult{Success: false, Error: err.Error()}, nil
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	result := &notification.SendResult{
		ResponseData: map[string]string{
			"status_code": fmt.Sprintf("%d", resp.StatusCode),
			"body":        string(respBody),
		},
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		result.Error = fmt.Sprintf("webhook returned status %d", resp.StatusCode)
		return result, nil
	}

	result.Success = true
	return result, nil
}

// ValidateConfig checks the webhook configuration
func (s *WebhookSender) ValidateConfig(config map[string]interface{}) []string {
	var problems []string
	if v, _ := config["url"].(string); v == "" {
		problems = append(problems, "url is required")
	}
	return problems
}

// Info returns the webhook channel descriptor
func (s *WebhookSender) Info() notification.ChannelInfo {
	return notification.ChannelInfo{
		Type:        notification.ChannelWebhook,
		Description: "Signed JSON webhook delivery",
		Config: []notification.ConfigField{
			{Name: "url", Required: true, Description: "Destination URL"},
			{Name: "secret", Required: false, Description: "HMAC signing secret"},
		},
	}
}
