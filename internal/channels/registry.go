// Package channels provides the sender registry and the built-in transport
// implementations. External transports (SMS gateways, push providers)
// register their own Sender at startup.
package channels

import (
	"fmt"
	"sync"

	"github.com/sentinelops/sentinel/internal/domain/notification"
	"github.com/sentinelops/sentinel/internal/pkg/errors"
)

// Registry maps channel types to sender implementations. Registration
// happens once at startup; lookups are concurrent.
type Registry struct {
	mu      sync.RWMutex
	senders map[notification.ChannelType]notification.Sender
}

// NewRegistry creates an empty sender registry
func NewRegistry() *Registry {
	return &Registry{
		senders: make(map[notification.ChannelType]notification.Sender),
	}
}

// Register binds a sender to its channel type. Registering a type twice is
// a configuration mistake and fails.
func (r *Registry) Register(s notification.Sender) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := s.Info().Type
	if _, exists := r.senders[t]; exists {
		return errors.Conflict(fmt.Sprintf("sender already registered for channel type %q", t))
	}
	r.senders[t] = s
	return nil
}

// Get resolves the sender for a channel type
func (r *Registry) Get(t notification.ChannelType) (notification.Sender, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.senders[t]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("sender for channel type %q", t))
	}
	return s, nil
}

// Types returns the registered channel types
func (r *Registry) Types() []notification.ChannelType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]notification.ChannelType, 0, len(r.senders))
	for t := range r.senders {
		out = append(out, t)
	}
	return out
}
