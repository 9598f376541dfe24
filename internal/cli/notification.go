package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sentinelops/sentinel/pkg/client"
)

func newNotificationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notification",
		Aliases: []string{"notifications"},
		Short:   "Inspect notification history",
	}

	cmd.AddCommand(newNotificationListCmd())

	return cmd
}

func newNotificationListCmd() *cobra.Command {
	var alertID, channelType, status string
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notification history",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			result, err := apiClient.Notifications().List(ctx, &client.NotificationListOptions{
				ListOptions: client.ListOptions{Page: page, PageSize: pageSize},
				AlertID:     alertID,
				ChannelType: channelType,
				Status:      status,
			})
			if err != nil {
				return fmt.Errorf("failed to list notifications: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(result)
			}

			t := NewTable("ID", "ALERT", "CHANNEL", "PRIORITY", "STATUS", "ATTEMPTS", "CREATED")
			for _, n := range result.Data {
				t.AddRow(
					n.ID,
					n.AlertID,
					n.ChannelType,
					n.Priority,
					formatStatus(n.Status),
					strconv.Itoa(n.Attempts),
					n.CreatedAt.Format("2006-01-02 15:04:05"),
				)
			}
			t.Render()
			fmt.Printf("\nPage %d of %d (%d notifications)\n", result.Page, result.TotalPages, result.TotalItems)
			return nil
		},
	}

	cmd.Flags().StringVar(&alertID, "alert", "", "filter by alert ID")
	cmd.Flags().StringVar(&channelType, "channel", "", "filter by channel type")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "page size")

	return cmd
}
