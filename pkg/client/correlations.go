package client

import (
	"context"
	"net/http"
	"net/url"
)

// CorrelationService handles correlation feedback API calls
type CorrelationService struct {
	client *Client
}

type feedbackRequest struct {
	IsAccurate bool `json:"is_accurate"`
}

// Feedback records an accuracy judgment for a correlation
func (s *CorrelationService) Feedback(ctx context.Context, id string, isAccurate bool) error {
	path := "/api/v1/correlations/" + url.PathEscape(id) + "/feedback"
	return s.client.doRequest(ctx, http.MethodPost, path, feedbackRequest{IsAccurate: isAccurate}, nil)
}
