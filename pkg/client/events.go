package client

import (
	"context"
	"net/http"
)

// EventService handles alert event ingestion
type EventService struct {
	client *Client
}

// Ingest submits one alert event for processing
func (s *EventService) Ingest(ctx context.Context, ev *Event) (*ProcessResult, error) {
	var result ProcessResult
	if err := s.client.doRequest(ctx, http.MethodPost, "/api/v1/events", ev, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
