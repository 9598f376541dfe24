package channels

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sentinelops/sentinel/internal/domain/notification"
	"github.com/sentinelops/sentinel/internal/pkg/errors"
	"github.com/sentinelops/sentinel/internal/testutil"
)

func TestRegistry_RegisterGet(t *testing.T) {
	r := NewRegistry()
	sender := testutil.NewMockSender(notification.ChannelEmail)

	if err := r.Register(sender); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, err := r.Get(notification.ChannelEmail)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != notification.Sender(sender) {
		t.Error("Get() returned a different sender")
	}

	if _, err := r.Get(notification.ChannelSMS); !errors.IsNotFound(err) {
		t.Errorf("Get() error = %v for unregistered type, want not found", err)
	}
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(testutil.NewMockSender(notification.ChannelEmail)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	err := r.Register(testutil.NewMockSender(notification.ChannelEmail))
	if err == nil {
		t.Fatal("Register() error = nil for duplicate type, want conflict")
	}
}

func TestRegistry_Types(t *testing.T) {
	r := NewRegistry()
	r.Register(testutil.NewMockSender(notification.ChannelEmail))
	r.Register(testutil.NewMockSender(notification.ChannelSlack))

	types := r.Types()
	if len(types) != 2 {
		t.Errorf("Types() = %v, want 2 entries", types)
	}
}

func TestStaticProvider(t *testing.T) {
	enabled := &notification.Channel{ID: "c1", Type: notification.ChannelEmail, Name: "ops", Recipient: "ops@example.com", Enabled: true}
	disabled := &notification.Channel{ID: "c2", Type: notification.ChannelSMS, Name: "oncall", Recipient: "+15550100", Enabled: false}
	p := NewStaticProvider([]*notification.Channel{enabled, disabled})
	ctx := context.Background()

	got, err := p.GetByType(ctx, notification.ChannelEmail)
	if err != nil {
		t.Fatalf("GetByType() error = %v", err)
	}
	if got.ID != "c1" {
		t.Errorf("GetByType() = %s, want c1", got.ID)
	}

	if _, err := p.GetByType(ctx, notification.ChannelSMS); !errors.IsNotFound(err) {
		t.Errorf("GetByType() error = %v for disabled channel, want not found", err)
	}

	all, err := p.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List() = %d channels, want both including disabled", len(all))
	}
}

func TestLoadProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.json")
	data := `[{"id":"c1","type":"email","name":"ops","recipient":"ops@example.com","enabled":true}]`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	p, err := LoadProvider(path)
	if err != nil {
		t.Fatalf("LoadProvider() error = %v", err)
	}
	ch, err := p.GetByType(context.Background(), notification.ChannelEmail)
	if err != nil {
		t.Fatalf("GetByType() error = %v", err)
	}
	if ch.Recipient != "ops@example.com" {
		t.Errorf("GetByType() recipient = %s, want ops@example.com", ch.Recipient)
	}

	if _, err := LoadProvider(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("LoadProvider() error = nil for missing file, want error")
	}
}

func TestValidateChannels(t *testing.T) {
	registry := NewRegistry()
	registry.Register(NewWebhookSender())

	valid := NewStaticProvider([]*notification.Channel{{
		ID: "c1", Type: notification.ChannelWebhook, Name: "hook", Enabled: true,
		Configuration: map[string]interface{}{"url": "https://example.com/hook"},
	}})
	if err := ValidateChannels(context.Background(), valid, registry); err != nil {
		t.Errorf("ValidateChannels() error = %v, want nil", err)
	}

	invalid := NewStaticProvider([]*notification.Channel{{
		ID: "c2", Type: notification.ChannelWebhook, Name: "hook", Enabled: true,
	}})
	if err := ValidateChannels(context.Background(), invalid, registry); err == nil {
		t.Error("ValidateChannels() error = nil for missing url, want validation error")
	}

	// Disabled channels and unregistered types are skipped.
	skipped := NewStaticProvider([]*notification.Channel{
		{ID: "c3", Type: notification.ChannelWebhook, Name: "off", Enabled: false},
		{ID: "c4", Type: notification.ChannelPhone, Name: "pager", Enabled: true},
	})
	if err := ValidateChannels(context.Background(), skipped, registry); err != nil {
		t.Errorf("ValidateChannels() error = %v, want nil", err)
	}
}
