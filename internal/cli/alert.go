package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sentinelops/sentinel/pkg/client"
)

func newAlertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alert",
		Short: "Manage alerts",
	}

	cmd.AddCommand(newAlertListCmd())
	cmd.AddCommand(newAlertGetCmd())
	cmd.AddCommand(newAlertSummaryCmd())
	cmd.AddCommand(newAlertAcknowledgeCmd())
	cmd.AddCommand(newAlertResolveCmd())
	cmd.AddCommand(newAlertFeedbackCmd())

	return cmd
}

func newAlertListCmd() *cobra.Command {
	var severity, status, source string
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			result, err := apiClient.Alerts().List(ctx, &client.AlertListOptions{
				ListOptions: client.ListOptions{Page: page, PageSize: pageSize},
				Severity:    severity,
				Status:      status,
				Source:      source,
			})
			if err != nil {
				return fmt.Errorf("failed to list alerts: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(result)
			}

			t := NewTable("ID", "SEVERITY", "STATUS", "SOURCE", "TITLE", "STARTED")
			for _, a := range result.Data {
				t.AddRow(
					a.ID,
					formatSeverity(a.Severity),
					formatStatus(a.Status),
					a.Source,
					truncate(a.Title, 50),
					a.StartsAt.Format("2006-01-02 15:04:05"),
				)
			}
			t.Render()
			fmt.Printf("\nPage %d of %d (%d alerts)\n", result.Page, result.TotalPages, result.TotalItems)
			return nil
		},
	}

	cmd.Flags().StringVar(&severity, "severity", "", "filter by severity")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&source, "source", "", "filter by source")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "page size")

	return cmd
}

func newAlertGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get alert details with correlations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			detail, err := apiClient.Alerts().Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get alert: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(detail)
			}

			a := detail.Alert
			fmt.Printf("ID:          %s\n", a.ID)
			fmt.Printf("Fingerprint: %s\n", a.Fingerprint)
			fmt.Printf("Severity:    %s\n", formatSeverity(a.Severity))
			fmt.Printf("Status:      %s\n", formatStatus(a.Status))
			fmt.Printf("Source:      %s\n", a.Source)
			fmt.Printf("Title:       %s\n", a.Title)
			fmt.Printf("Description: %s\n", a.Description)
			fmt.Printf("Started:     %s\n", a.StartsAt.Format("2006-01-02 15:04:05"))
			if a.AcknowledgedAt != nil {
				fmt.Printf("Acked:       %s by %s\n", a.AcknowledgedAt.Format("2006-01-02 15:04:05"), a.AcknowledgedBy)
			}
			if a.ResolvedAt != nil {
				fmt.Printf("Resolved:    %s by %s\n", a.ResolvedAt.Format("2006-01-02 15:04:05"), a.ResolvedBy)
			}

			if len(detail.Correlations) > 0 {
				fmt.Println("\nCorrelations:")
				t := NewTable("ID", "RELATED ALERT", "TYPE", "CONFIDENCE")
				for _, c := range detail.Correlations {
					t.AddRow(
						c.ID,
						c.CorrelationID,
						c.Type,
						strconv.FormatFloat(c.Confidence, 'f', 2, 64),
					)
				}
				t.Render()
			}
			return nil
		},
	}
}

func newAlertSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show alert counts by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			summary, err := apiClient.Alerts().Summary(ctx)
			if err != nil {
				return fmt.Errorf("failed to get alert summary: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(summary)
			}

			t := NewTable("STATUS", "COUNT")
			for status, count := range summary.ByStatus {
				t.AddRow(formatStatus(status), strconv.Itoa(count))
			}
			t.AddRow("total", strconv.Itoa(summary.Total))
			t.Render()
			return nil
		},
	}
}

func newAlertAcknowledgeCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:     "ack <id>",
		Aliases: []string{"acknowledge"},
		Short:   "Acknowledge an alert",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			result, err := apiClient.Alerts().Acknowledge(ctx, args[0], userID)
			if err != nil {
				return fmt.Errorf("failed to acknowledge alert: %w", err)
			}

			fmt.Printf("Alert %s acknowledged by %s\n", result.AlertID, result.AcknowledgedBy)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "acknowledging user")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newAlertResolveCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "resolve <id>",
		Short: "Resolve an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			result, err := apiClient.Alerts().Resolve(ctx, args[0], userID)
			if err != nil {
				return fmt.Errorf("failed to resolve alert: %w", err)
			}

			fmt.Printf("Alert %s resolved by %s after %.0fs\n", result.AlertID, result.ResolvedBy, result.DurationSeconds)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "resolving user")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newAlertFeedbackCmd() *cobra.Command {
	var accurate, inaccurate bool

	cmd := &cobra.Command{
		Use:   "feedback <correlation-id>",
		Short: "Record accuracy feedback for a correlation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if accurate == inaccurate {
				return fmt.Errorf("exactly one of --accurate or --inaccurate is required")
			}

			ctx := context.Background()
			if err := apiClient.Correlations().Feedback(ctx, args[0], accurate); err != nil {
				return fmt.Errorf("failed to record feedback: %w", err)
			}

			fmt.Printf("Feedback recorded for correlation %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&accurate, "accurate", false, "mark the correlation accurate")
	cmd.Flags().BoolVar(&inaccurate, "inaccurate", false, "mark the correlation inaccurate")

	return cmd
}
