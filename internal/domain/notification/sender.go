package notification

import "context"

// Sender is the contract every channel transport implements. Concrete
// implementations are registered per channel type at startup.
type Sender interface {
	// Send delivers a rendered notification to a recipient using the
	// channel's configuration
	Send(ctx context.Context, recipient, subject, body string, config map[string]interface{}) (*SendResult, error)

	// ValidateConfig checks a channel configuration and returns the list
	// of problems found, empty when valid
	ValidateConfig(config map[string]interface{}) []string

	// Info returns the channel's schema descriptor
	Info() ChannelInfo
}

// StatusChecker is implemented by senders whose providers confirm delivery
// asynchronously (for example SMS gateways). The dispatcher polls it for
// notifications still in sent state.
type StatusChecker interface {
	// CheckDeliveryStatus resolves the final delivery status of a
	// previously sent notification from provider response data
	CheckDeliveryStatus(ctx context.Context, notificationID string, responseData map[string]string) (Status, error)
}
