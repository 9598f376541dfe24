package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// AlertService handles alert-related API calls
type AlertService struct {
	client *Client
}

// AlertListOptions contains options for listing alerts
type AlertListOptions struct {
	ListOptions
	Severity string
	Status   string
	Source   string
	RuleID   string
}

type actorRequest struct {
	UserID string `json:"user_id"`
}

// List retrieves a page of alerts
func (s *AlertService) List(ctx context.Context, opts *AlertListOptions) (*Page[Alert], error) {
	query := url.Values{}

	if opts != nil {
		if opts.Page > 0 {
			query.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.PageSize > 0 {
			query.Set("page_size", strconv.Itoa(opts.PageSize))
		}
		if opts.Severity != "" {
			query.Set("severity", opts.Severity)
		}
		if opts.Status != "" {
			query.Set("status", opts.Status)
		}
		if opts.Source != "" {
			query.Set("source", opts.Source)
		}
		if opts.RuleID != "" {
			query.Set("rule_id", opts.RuleID)
		}
	}

	path := "/api/v1/alerts"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var page Page[Alert]
	if err := s.client.doRequest(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get retrieves one alert with its correlations
func (s *AlertService) Get(ctx context.Context, id string) (*AlertDetail, error) {
	var detail AlertDetail
	if err := s.client.doRequest(ctx, http.MethodGet, "/api/v1/alerts/"+url.PathEscape(id), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Summary retrieves alert counts grouped by status
func (s *AlertService) Summary(ctx context.Context) (*AlertSummary, error) {
	var summary AlertSummary
	if err := s.client.doRequest(ctx, http.MethodGet, "/api/v1/alerts/summary", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Acknowledge marks an alert acknowledged on behalf of a user
func (s *AlertService) Acknowledge(ctx context.Context, id, userID string) (*AckResult, error) {
	var result AckResult
	path := "/api/v1/alerts/" + url.PathEscape(id) + "/ack"
	if err := s.client.doRequest(ctx, http.MethodPost, path, actorRequest{UserID: userID}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Resolve marks an alert resolved on behalf of a user
func (s *AlertService) Resolve(ctx context.Context, id, userID string) (*ResolveResult, error) {
	var result ResolveResult
	path := "/api/v1/alerts/" + url.PathEscape(id) + "/resolve"
	if err := s.client.doRequest(ctx, http.MethodPost, path, actorRequest{UserID: userID}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
