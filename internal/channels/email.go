package channels

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/sentinelops/sentinel/internal/domain/notification"
)

// EmailSender delivers notifications over SMTP
type EmailSender struct{}

// NewEmailSender creates the email transport
func NewEmailSender() *EmailSender {
	return &EmailSender{}
}

// Send delivers a message via the SMTP server in the channel configuration
func (s *EmailSender) Send(ctx context.Context, recipient, subject, body string, config map[string]interface{}) (*notification.SendResult, error) {
	host, _ := config["smtp_host"].(string)
	port := intOption(config, "smtp_port", 587)
	from, _ := config["from"].(string)
	username, _ := config["username"].(string)
	password, _ := config["password"].(string)

	addr := fmt.Sprintf("%s:%d", host, port)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s\r\n",
		from, recipient, subject, body))

	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	// net/smtp has no context support; run the send in a goroutine and
	// honor cancellation from the caller's deadline.
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, from, []string{recipient}, msg)
	}()

	select {
	case <-ctx.Done():
		return &notification.SendResult{Success: false, Error: ctx.Err().Error()}, nil
	case err := <-done:
		if err != nil {
			return &notification.SendResult{Success: false, Error: err.Error()}, nil
		}
		return &notification.SendResult{Success: true}, nil
	}
}

// ValidateConfig checks the SMTP configuration
func (s *EmailSender) ValidateConfig(config map[string]interface{}) []string {
	var problems []string
	if v, _ := config["smtp_host"].(string); v == "" {
		problems = append(problems, "smtp_host is required")
	}
	if v, _ := config["from"].(string); v == "" {
		problems = append(problems, "from is required")
	}
	return problems
}

// Info returns the email channel descriptor
func (s *EmailSender) Info() notification.ChannelInfo {
	return notification.ChannelInfo{
		Type:        notification.ChannelEmail,
		Description: "SMTP email delivery",
		Config: []notification.ConfigField{
			{Name: "smtp_host", Required: true, Description: "SMTP server host"},
			{Name: "smtp_port", Required: false, Description: "SMTP server port, defaults to 587"},
			{Name: "from", Required: true, Description: "Sender address"},
			{Name: "username", Required: false},
			{Name: "password", Required: false},
		},
	}
}

// intOption reads an integer channel option, tolerating JSON's float64
func intOption(config map[string]interface{}, key string, fallback int) int {
	switch v := config[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return fallback
	}
}
