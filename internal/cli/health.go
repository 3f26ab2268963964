package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/battleship-go/internal/api/response"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the game server is up",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.HealthResponse
			if err := client.Get("/api/v1/health", &result); err != nil {
				return fmt.Errorf("server %s unreachable: %w", cfg.ServerURL, err)
			}

			NewOutput(cfg.Output).Print(result)
			if result.Status != "ok" {
				return fmt.Errorf("server %s reports status %q", cfg.ServerURL, result.Status)
			}
			return nil
		},
	}
}
