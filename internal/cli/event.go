package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sentinelops/sentinel/pkg/client"
)

func newEventCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Ingest alert events",
	}

	cmd.AddCommand(newEventSendCmd())

	return cmd
}

func newEventSendCmd() *cobra.Command {
	var title, description, severity, source string
	var labels, annotations map[string]string
	var fromFile string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one alert event",
		Long: `Send one alert event to the pipeline. The event is built from flags,
or read as JSON from a file with --file (use - for stdin).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var ev client.Event

			if fromFile != "" {
				data, err := readEventFile(fromFile)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(data, &ev); err != nil {
					return fmt.Errorf("invalid event JSON: %w", err)
				}
			} else {
				ev = client.Event{
					Title:       title,
					Description: description,
					Severity:    severity,
					Source:      source,
					Labels:      labels,
					Annotations: annotations,
				}
			}

			ctx := context.Background()
			result, err := apiClient.Events().Ingest(ctx, &ev)
			if err != nil {
				return fmt.Errorf("failed to ingest event: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(result)
			}

			fmt.Printf("Alert:         %s (%s)\n", result.AlertID, result.Action)
			fmt.Printf("Fingerprint:   %s\n", result.Fingerprint)
			if result.Filtered {
				fmt.Printf("Filtered:      yes (%s)\n", result.FilterReason)
			} else {
				fmt.Printf("Correlations:  %d\n", result.CorrelationsFound)
				fmt.Printf("Notifications: %d\n", result.NotificationsSent)
			}
			fmt.Printf("Took:          %.3fs\n", result.ProcessingTimeSeconds)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "event title")
	cmd.Flags().StringVar(&description, "description", "", "event description")
	cmd.Flags().StringVar(&severity, "severity", "medium", "event severity")
	cmd.Flags().StringVar(&source, "source", "", "event source")
	cmd.Flags().StringToStringVar(&labels, "label", nil, "event label (repeatable, key=value)")
	cmd.Flags().StringToStringVar(&annotations, "annotation", nil, "event annotation (repeatable, key=value)")
	cmd.Flags().StringVarP(&fromFile, "file", "f", "", "read event JSON from file (- for stdin)")

	return cmd
}

func readEventFile(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
