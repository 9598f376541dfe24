package client_test

import (
	"context"
	"fmt"
	"log"

	"github.com/sentinelops/sentinel/pkg/client"
)

// Example demonstrates basic usage of the sentinel client
func Example() {
	// Create a new client
	c := client.NewClient(client.Config{
		BaseURL: "http://localhost:8080",
	})

	ctx := context.Background()

	// Ingest an alert event
	result, err := c.Events().Ingest(ctx, &client.Event{
		Title:    "High CPU usage",
		Source:   "prometheus",
		Severity: "high",
		Labels:   map[string]string{"service": "api"},
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Alert %s (%s)\n", result.AlertID, result.Action)

	// List open alerts
	page, err := c.Alerts().List(ctx, &client.AlertListOptions{Status: "active"})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Found %d active alerts\n", page.TotalItems)
}

// ExampleAlertService_Acknowledge demonstrates acknowledging an alert
func ExampleAlertService_Acknowledge() {
	c := client.NewClient(client.Config{
		BaseURL: "http://localhost:8080",
	})

	ack, err := c.Alerts().Acknowledge(context.Background(), "alert-id", "user-1")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Acknowledged at %s by %s\n", ack.AcknowledgedAt, ack.AcknowledgedBy)
}

// ExampleCorrelationService_Feedback demonstrates scoring a correlation
func ExampleCorrelationService_Feedback() {
	c := client.NewClient(client.Config{
		BaseURL: "http://localhost:8080",
	})

	if err := c.Correlations().Feedback(context.Background(), "correlation-id", true); err != nil {
		log.Fatal(err)
	}
}

// ExampleNotificationService_List demonstrates filtering notification history
func ExampleNotificationService_List() {
	c := client.NewClient(client.Config{
		BaseURL: "http://localhost:8080",
	})

	page, err := c.Notifications().List(context.Background(), &client.NotificationListOptions{
		Status: "failed",
	})
	if err != nil {
		log.Fatal(err)
	}

	for _, n := range page.Data {
		fmt.Printf("%s -> %s: %s\n", n.ChannelType, n.Recipient, n.ErrorMessage)
	}
}
