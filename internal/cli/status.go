package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check server connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if err := apiClient.Health(ctx); err != nil {
				return fmt.Errorf("server unreachable: %w", err)
			}

			fmt.Printf("Server %s is healthy\n", viper.GetString("server_url"))
			return nil
		},
	}
}
