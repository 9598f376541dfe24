package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// NotificationService handles notification history API calls
type NotificationService struct {
	client *Client
}

// NotificationListOptions contains options for listing notification history
type NotificationListOptions struct {
	ListOptions
	AlertID     string
	ChannelType string
	Status      string
}

// List retrieves a page of notification history
func (s *NotificationService) List(ctx context.Context, opts *NotificationListOptions) (*Page[Notification], error) {
	query := url.Values{}

	if opts != nil {
		if opts.Page > 0 {
			query.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.PageSize > 0 {
			query.Set("page_size", strconv.Itoa(opts.PageSize))
		}
		if opts.AlertID != "" {
			query.Set("alert_id", opts.AlertID)
		}
		if opts.ChannelType != "" {
			query.Set("channel_type", opts.ChannelType)
		}
		if opts.Status != "" {
			query.Set("status", opts.Status)
		}
	}

	path := "/api/v1/notifications"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var page Page[Notification]
	if err := s.client.doRequest(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
