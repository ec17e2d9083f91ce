package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/statboard/internal/smoke"
)

// smokeSubcommand returns the smoke subcommand.
func smokeSubcommand() *cobra.Command {
	cfg := smoke.Config{}
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Upload generated datasets to a running server and verify its views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := smoke.Run(cmd.Context(), cfg)
			return err
		},
	}
	cmd.Flags().StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "base URL of the service")
	cmd.Flags().IntVar(&cfg.Sessions, "sessions", smoke.DefaultSessions, "sessions to create and verify")
	cmd.Flags().IntVar(&cfg.Teams, "teams", smoke.DefaultTeams, "teams in the generated dataset")
	cmd.Flags().IntVar(&cfg.PlayersPerTeam, "players", smoke.DefaultPlayersPerTeam, "players per generated team")
	cmd.Flags().IntVar(&cfg.Workers, "workers", 0, "concurrent workers (default CPU cores)")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", smoke.DefaultTimeout, "HTTP request timeout")
	cmd.Flags().StringVar(&cfg.OutputFile, "output", "", "write the generated dataset to this CSV file")
	return cmd
}
