package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sentinelops/sentinel/internal/domain/notification"
)

// SlackSender delivers notifications to a Slack incoming webhook
type SlackSender struct {
	httpClient *http.Client
}

// NewSlackSender creates the slack transport
func NewSlackSender() *SlackSender {
	return &SlackSender{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Send posts a message to the configured webhook URL
func (s *SlackSender) Send(ctx context.Context, recipient, subject, body string, config map[string]interface{}) (*notification.SendResult, error) {
	webhookURL, _ := config["webhook_url"].(string)
	if webhookURL == "" {
		return &notification.SendResult{Success: false, Error: "no webhook URL configured"}, nil
	}

	payload := map[string]interface{}{
		"text": body,
	}
	if channel, _ := config["channel"].(string); channel != "" {
		payload["channel"] = channel
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return &notification.SendResult{Success: false, Error: err.Error()}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return &notification.SendResult{Success: false, Error: err.Error()}, nil
	}
	req.Header.Set("Content-Type", "application/json")

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

	if resp.StatusCode != http.StatusOK {
		result.Error = fmt.Sprintf("slack API error: %s", string(respBody))
		return result, nil
	}

	result.Success = true
	return result, nil
}

// ValidateConfig checks the slack configuration
func (s *SlackSender) ValidateConfig(config map[string]interface{}) []string {
	var problems []string
	url, _ := config["webhook_url"].(string)
	if url == "" {
		problems = append(problems, "webhook_url is required")
	} else if !strings.HasPrefix(url, "https://") {
		problems = append(problems, "webhook_url must use HTTPS")
	}
	return problems
}

// Info returns the slack channel descriptor
func (s *SlackSender) Info() notification.ChannelInfo {
	return notification.ChannelInfo{
		Type:        notification.ChannelSlack,
		Description: "Slack incoming webhook delivery",
		Config: []notification.ConfigField{
			{Name: "webhook_url", Required: true, Description: "Slack incoming webhook URL"},
			{Name: "channel", Required: false, Description: "Override channel"},
		},
	}
}
