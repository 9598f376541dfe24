package channels

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sentinelops/sentinel/internal/domain/notification"
	"github.com/sentinelops/sentinel/internal/pkg/errors"
)

// StaticProvider serves the channel inventory loaded once at startup. The
// inventory is owned by the admin surface; the engine treats it as
// read-only.
type StaticProvider struct {
	byType map[notification.ChannelType]*notification.Channel
	all    []*notification.Channel
}

// NewStaticProvider creates a provider over a fixed channel list
func NewStaticProvider(channels []*notification.Channel) *StaticProvider {
	p := &StaticProvider{
		byType: make(map[notification.ChannelType]*notification.Channel, len(channels)),
		all:    channels,
	}
	for _, ch := range channels {
		if ch.Enabled {
			p.byType[ch.Type] = ch
		}
	}
	return p
}

// LoadProvider reads the channel inventory from a JSON file
func LoadProvider(path string) (*StaticProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read channels file: %w", err)
	}

	var channels []*notification.Channel
	if err := json.Unmarshal(data, &channels); err != nil {
		return nil, fmt.Errorf("failed to parse channels file: %w", err)
	}

	return NewStaticProvider(channels), nil
}

// GetByType returns the enabled channel for a channel type
func (p *StaticProvider) GetByType(ctx context.Context, t notification.ChannelType) (*notification.Channel, error) {
	ch, ok := p.byType[t]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("channel of type %q", t))
	}
	return ch, nil
}

// List returns every configured channel
func (p *StaticProvider) List(ctx context.Context) ([]*notification.Channel, error) {
	return p.all, nil
}

// ValidateChannels checks each channel's configuration against its
// registered sender; failures are configuration errors surfaced at startup.
func ValidateChannels(ctx context.Context, provider notification.ChannelProvider, registry *Registry) error {
	channels, err := provider.List(ctx)
	if err != nil {
		return err
	}

	for _, ch := range channels {
		if !ch.Enabled {
			continue
		}
		sender, err := registry.Get(ch.Type)
		if err != nil {
			continue // external channel types may register later
		}
		if problems := sender.ValidateConfig(ch.Configuration); len(problems) > 0 {
			return errors.ValidationError(
				fmt.Sprintf("invalid configuration for channel %q", ch.Name), problems)
		}
	}
	return nil
}
